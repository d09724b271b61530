package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// ScanService is a mock type for the handler.ScanService type.
type ScanService struct {
	mock.Mock
}

// Submit provides a mock function with given fields: ctx, userID, image
func (_m *ScanService) Submit(ctx context.Context, userID uuid.UUID, image model.Image) (model.Classification, error) {
	ret := _m.Called(ctx, userID, image)

	var r0 model.Classification
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.Classification)
	}

	return r0, ret.Error(1)
}

// OpenImage provides a mock function with given fields: ctx, userID, scanID
func (_m *ScanService) OpenImage(ctx context.Context, userID uuid.UUID, scanID uuid.UUID) (io.ReadCloser, string, error) {
	ret := _m.Called(ctx, userID, scanID)

	var r0 io.ReadCloser
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(io.ReadCloser)
	}

	return r0, ret.String(1), ret.Error(2)
}

// UploadMaxBytes provides a mock function with no fields
func (_m *ScanService) UploadMaxBytes() int64 {
	ret := _m.Called()
	return ret.Get(0).(int64)
}

// NewScanService creates a new instance of ScanService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewScanService(t interface {
	mock.TestingT
	Cleanup(func())
}) *ScanService {
	m := &ScanService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
