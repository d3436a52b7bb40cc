// Package mocks provides testify mocks of the controller interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/codemodder/internal/controller"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// MockUI is a mock of controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a mock whose expectations are asserted on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mck := &MockUI{}
	mck.Mock.Test(t)

	t.Cleanup(func() { mck.AssertExpectations(t) })

	return mck
}

func (_m *MockUI) Start(options ...controller.StartOption) error {
	args := make([]interface{}, len(options))
	for i, o := range options {
		args[i] = o
	}

	return _m.Called(args...).Error(0)
}

func (_m *MockUI) FileProcessed(result m.FileResult) {
	_m.Called(result)
}

func (_m *MockUI) Close() {
	_m.Called()
}

func (_m *MockUI) Wait() {
	_m.Called()
}

func (_m *MockUI) DisplayReport(report *m.CodeTF) error {
	return _m.Called(report).Error(0)
}

func (_m *MockUI) DisplayCodemods(codemods []transform.Codemod) error {
	return _m.Called(codemods).Error(0)
}

var _ controller.UI = (*MockUI)(nil)
