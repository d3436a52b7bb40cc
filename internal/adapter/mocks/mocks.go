// Package mocks provides testify mocks of the adapter interfaces.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/codemodder/internal/adapter"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// NewMockSourceFSAdapter creates a mock whose expectations are asserted on cleanup.
func NewMockSourceFSAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceFSAdapter {
	mck := &MockSourceFSAdapter{}
	mck.Mock.Test(t)

	t.Cleanup(func() { mck.AssertExpectations(t) })

	return mck
}

func (_m *MockSourceFSAdapter) Get(root m.Path, include, exclude []string) ([]m.Source, error) {
	ret := _m.Called(root, include, exclude)

	var sources []m.Source
	if v := ret.Get(0); v != nil {
		sources = v.([]m.Source)
	}

	return sources, ret.Error(1)
}

func (_m *MockSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	ret := _m.Called(path)

	var content []byte
	if v := ret.Get(0); v != nil {
		content = v.([]byte)
	}

	return content, ret.Error(1)
}

func (_m *MockSourceFSAdapter) WriteFile(path m.Path, content []byte) error {
	return _m.Called(path, content).Error(0)
}

func (_m *MockSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	ret := _m.Called(path)

	var info os.FileInfo
	if v := ret.Get(0); v != nil {
		info = v.(os.FileInfo)
	}

	return info, ret.Error(1)
}

// MockReportStore is a mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a mock whose expectations are asserted on cleanup.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	mck := &MockReportStore{}
	mck.Mock.Test(t)

	t.Cleanup(func() { mck.AssertExpectations(t) })

	return mck
}

func (_m *MockReportStore) SaveReport(path m.Path, report *m.CodeTF) error {
	return _m.Called(path, report).Error(0)
}

func (_m *MockReportStore) LoadReport(path m.Path) (*m.CodeTF, error) {
	ret := _m.Called(path)

	var report *m.CodeTF
	if v := ret.Get(0); v != nil {
		report = v.(*m.CodeTF)
	}

	return report, ret.Error(1)
}

// MockScanner is a mock of adapter.Scanner.
type MockScanner struct {
	mock.Mock
}

// NewMockScanner creates a mock whose expectations are asserted on cleanup.
func NewMockScanner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockScanner {
	mck := &MockScanner{}
	mck.Mock.Test(t)

	t.Cleanup(func() { mck.AssertExpectations(t) })

	return mck
}

func (_m *MockScanner) Scan(ctx context.Context, root m.Path, rules map[string][]byte) (adapter.Findings, error) {
	ret := _m.Called(ctx, root, rules)

	var findings adapter.Findings
	if v := ret.Get(0); v != nil {
		findings = v.(adapter.Findings)
	}

	return findings, ret.Error(1)
}

var (
	_ adapter.SourceFSAdapter = (*MockSourceFSAdapter)(nil)
	_ adapter.ReportStore     = (*MockReportStore)(nil)
	_ adapter.Scanner         = (*MockScanner)(nil)
)
