package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/health"
)

// HealthChecker is a mock type for the handler.HealthChecker type.
type HealthChecker struct {
	mock.Mock
}

// Check provides a mock function with given fields: ctx
func (_m *HealthChecker) Check(ctx context.Context) health.Report {
	ret := _m.Called(ctx)
	return ret.Get(0).(health.Report)
}

// NewHealthChecker creates a new instance of HealthChecker. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewHealthChecker(t interface {
	mock.TestingT
	Cleanup(func())
}) *HealthChecker {
	m := &HealthChecker{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
