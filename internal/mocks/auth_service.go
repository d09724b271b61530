package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// AuthService is a mock type for the handler.AuthService type.
type AuthService struct {
	mock.Mock
}

// Register provides a mock function with given fields: ctx, params
func (_m *AuthService) Register(ctx context.Context, params model.RegisterParams) (uuid.UUID, error) {
	ret := _m.Called(ctx, params)

	var r0 uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(uuid.UUID)
	}

	return r0, ret.Error(1)
}

// Login provides a mock function with given fields: ctx, email, password
func (_m *AuthService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	ret := _m.Called(ctx, email, password)

	var r0 model.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.Session)
	}

	return r0, ret.Error(1)
}

// NewAuthService creates a new instance of AuthService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewAuthService(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthService {
	m := &AuthService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
