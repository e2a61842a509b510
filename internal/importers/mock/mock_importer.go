// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/importers (interfaces: Importer,CacheInvalidator)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_importer.go -package=importersmock github.com/KirkDiggler/rpg-compendium/internal/importers Importer,CacheInvalidator
//

// Package importersmock is a generated GoMock package.
package importersmock

import (
	context "context"
	io "io"
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	importers "github.com/KirkDiggler/rpg-compendium/internal/importers"
	gomock "go.uber.org/mock/gomock"
)

// MockImporter is a mock of Importer interface.
type MockImporter struct {
	ctrl     *gomock.Controller
	recorder *MockImporterMockRecorder
	isgomock struct{}
}

// MockImporterMockRecorder is the mock recorder for MockImporter.
type MockImporterMockRecorder struct {
	mock *MockImporter
}

// NewMockImporter creates a new mock instance.
func NewMockImporter(ctrl *gomock.Controller) *MockImporter {
	mock := &MockImporter{ctrl: ctrl}
	mock.recorder = &MockImporterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockImporter) EXPECT() *MockImporterMockRecorder {
	return m.recorder
}

// EntityType mocks base method.
func (m *MockImporter) EntityType() dnd5e.EntityType {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EntityType")
	ret0, _ := ret[0].(dnd5e.EntityType)
	return ret0
}

// EntityType indicates an expected call of EntityType.
func (mr *MockImporterMockRecorder) EntityType() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EntityType", reflect.TypeOf((*MockImporter)(nil).EntityType))
}

// Import mocks base method.
func (m *MockImporter) Import(ctx context.Context, entity dnd5e.Entity) (*importers.RecordResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Import", ctx, entity)
	ret0, _ := ret[0].(*importers.RecordResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Import indicates an expected call of Import.
func (mr *MockImporterMockRecorder) Import(ctx, entity any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Import", reflect.TypeOf((*MockImporter)(nil).Import), ctx, entity)
}

// ImportBatch mocks base method.
func (m *MockImporter) ImportBatch(ctx context.Context, batch *importers.Batch) (*importers.FileResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ImportBatch", ctx, batch)
	ret0, _ := ret[0].(*importers.FileResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ImportBatch indicates an expected call of ImportBatch.
func (mr *MockImporterMockRecorder) ImportBatch(ctx, batch any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ImportBatch", reflect.TypeOf((*MockImporter)(nil).ImportBatch), ctx, batch)
}

// ImportFile mocks base method.
func (m *MockImporter) ImportFile(ctx context.Context, path string) (*importers.FileResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ImportFile", ctx, path)
	ret0, _ := ret[0].(*importers.FileResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ImportFile indicates an expected call of ImportFile.
func (mr *MockImporterMockRecorder) ImportFile(ctx, path any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ImportFile", reflect.TypeOf((*MockImporter)(nil).ImportFile), ctx, path)
}

// ImportReader mocks base method.
func (m *MockImporter) ImportReader(ctx context.Context, r io.Reader, name string) (*importers.FileResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ImportReader", ctx, r, name)
	ret0, _ := ret[0].(*importers.FileResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ImportReader indicates an expected call of ImportReader.
func (mr *MockImporterMockRecorder) ImportReader(ctx, r, name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ImportReader", reflect.TypeOf((*MockImporter)(nil).ImportReader), ctx, r, name)
}

// Name mocks base method.
func (m *MockImporter) Name() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Name")
	ret0, _ := ret[0].(string)
	return ret0
}

// Name indicates an expected call of Name.
func (mr *MockImporterMockRecorder) Name() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockImporter)(nil).Name))
}

// ParseFile mocks base method.
func (m *MockImporter) ParseFile(path string) (*importers.Batch, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ParseFile", path)
	ret0, _ := ret[0].(*importers.Batch)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ParseFile indicates an expected call of ParseFile.
func (mr *MockImporterMockRecorder) ParseFile(path any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ParseFile", reflect.TypeOf((*MockImporter)(nil).ParseFile), path)
}

// MockCacheInvalidator is a mock of CacheInvalidator interface.
type MockCacheInvalidator struct {
	ctrl     *gomock.Controller
	recorder *MockCacheInvalidatorMockRecorder
	isgomock struct{}
}

// MockCacheInvalidatorMockRecorder is the mock recorder for MockCacheInvalidator.
type MockCacheInvalidatorMockRecorder struct {
	mock *MockCacheInvalidator
}

// NewMockCacheInvalidator creates a new mock instance.
func NewMockCacheInvalidator(ctrl *gomock.Controller) *MockCacheInvalidator {
	mock := &MockCacheInvalidator{ctrl: ctrl}
	mock.recorder = &MockCacheInvalidatorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCacheInvalidator) EXPECT() *MockCacheInvalidatorMockRecorder {
	return m.recorder
}

// Invalidate mocks base method.
func (m *MockCacheInvalidator) Invalidate(ctx context.Context, entityType dnd5e.EntityType) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invalidate", ctx, entityType)
	ret0, _ := ret[0].(error)
	return ret0
}

// Invalidate indicates an expected call of Invalidate.
func (mr *MockCacheInvalidatorMockRecorder) Invalidate(ctx, entityType any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invalidate", reflect.TypeOf((*MockCacheInvalidator)(nil).Invalidate), ctx, entityType)
}
