// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/codemodder/internal/domain"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a mock whose expectations are asserted on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mck := &MockWorkflow{}
	mck.Mock.Test(t)

	t.Cleanup(func() { mck.AssertExpectations(t) })

	return mck
}

func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) (*m.CodeTF, error) {
	ret := _m.Called(ctx, args)

	var report *m.CodeTF
	if v := ret.Get(0); v != nil {
		report = v.(*m.CodeTF)
	}

	return report, ret.Error(1)
}

func (_m *MockWorkflow) List(codemods []transform.Codemod) error {
	return _m.Called(codemods).Error(0)
}

func (_m *MockWorkflow) View(args domain.ViewArgs) error {
	return _m.Called(args).Error(0)
}

var _ domain.Workflow = (*MockWorkflow)(nil)
