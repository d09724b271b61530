package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// Classifier is a mock type for the model.Classifier type.
type Classifier struct {
	mock.Mock
}

// Classify provides a mock function with given fields: ctx, image
func (_m *Classifier) Classify(ctx context.Context, image model.Image) (model.Classification, error) {
	ret := _m.Called(ctx, image)

	var r0 model.Classification
	if rf, ok := ret.Get(0).(func(context.Context, model.Image) model.Classification); ok {
		r0 = rf(ctx, image)
	} else {
		r0 = ret.Get(0).(model.Classification)
	}

	return r0, ret.Error(1)
}

// NewClassifier creates a new instance of Classifier. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewClassifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Classifier {
	m := &Classifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
