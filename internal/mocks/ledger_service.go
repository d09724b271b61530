package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// LedgerService is a mock type for the handler.LedgerService type.
type LedgerService struct {
	mock.Mock
}

// ListByOwner provides a mock function with given fields: ctx, ownerID, limit
func (_m *LedgerService) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Scan, error) {
	ret := _m.Called(ctx, ownerID, limit)

	var r0 []model.Scan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Scan)
	}

	return r0, ret.Error(1)
}

// Get provides a mock function with given fields: ctx, ownerID, scanID
func (_m *LedgerService) Get(ctx context.Context, ownerID uuid.UUID, scanID uuid.UUID) (model.Scan, error) {
	ret := _m.Called(ctx, ownerID, scanID)

	var r0 model.Scan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.Scan)
	}

	return r0, ret.Error(1)
}

// Stats provides a mock function with given fields: ctx, ownerID
func (_m *LedgerService) Stats(ctx context.Context, ownerID uuid.UUID) (model.ScanStats, error) {
	ret := _m.Called(ctx, ownerID)

	var r0 model.ScanStats
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.ScanStats)
	}

	return r0, ret.Error(1)
}

// NewLedgerService creates a new instance of LedgerService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewLedgerService(t interface {
	mock.TestingT
	Cleanup(func())
}) *LedgerService {
	m := &LedgerService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
