package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// ScanStore is a mock type for the model.ScanStore type.
type ScanStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, scan
func (_m *ScanStore) Create(ctx context.Context, scan model.Scan) (model.Scan, error) {
	ret := _m.Called(ctx, scan)

	var r0 model.Scan
	if rf, ok := ret.Get(0).(func(context.Context, model.Scan) model.Scan); ok {
		r0 = rf(ctx, scan)
	} else {
		r0 = ret.Get(0).(model.Scan)
	}

	return r0, ret.Error(1)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *ScanStore) GetByID(ctx context.Context, id uuid.UUID) (model.Scan, error) {
	ret := _m.Called(ctx, id)

	var r0 model.Scan
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) model.Scan); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Get(0).(model.Scan)
	}

	return r0, ret.Error(1)
}

// ListByOwner provides a mock function with given fields: ctx, ownerID, limit
func (_m *ScanStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Scan, error) {
	ret := _m.Called(ctx, ownerID, limit)

	var r0 []model.Scan
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, int) []model.Scan); ok {
		r0 = rf(ctx, ownerID, limit)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Scan)
	}

	return r0, ret.Error(1)
}

// StatsByOwner provides a mock function with given fields: ctx, ownerID
func (_m *ScanStore) StatsByOwner(ctx context.Context, ownerID uuid.UUID) (model.ScanStats, error) {
	ret := _m.Called(ctx, ownerID)

	var r0 model.ScanStats
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) model.ScanStats); ok {
		r0 = rf(ctx, ownerID)
	} else {
		r0 = ret.Get(0).(model.ScanStats)
	}

	return r0, ret.Error(1)
}

// NewScanStore creates a new instance of ScanStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewScanStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *ScanStore {
	m := &ScanStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
