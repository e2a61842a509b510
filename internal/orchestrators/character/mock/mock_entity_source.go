// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character (interfaces: EntitySource)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_entity_source.go -package=charactermock github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character EntitySource
//

// Package charactermock is a generated GoMock package.
package charactermock

import (
	context "context"
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	compendium "github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	gomock "go.uber.org/mock/gomock"
)

// MockEntitySource is a mock of EntitySource interface.
type MockEntitySource struct {
	ctrl     *gomock.Controller
	recorder *MockEntitySourceMockRecorder
	isgomock struct{}
}

// MockEntitySourceMockRecorder is the mock recorder for MockEntitySource.
type MockEntitySourceMockRecorder struct {
	mock *MockEntitySource
}

// NewMockEntitySource creates a new mock instance.
func NewMockEntitySource(ctrl *gomock.Controller) *MockEntitySource {
	mock := &MockEntitySource{ctrl: ctrl}
	mock.recorder = &MockEntitySourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEntitySource) EXPECT() *MockEntitySourceMockRecorder {
	return m.recorder
}

// GetBySlug mocks base method.
func (m *MockEntitySource) GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBySlug", ctx, entityType, slug)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBySlug indicates an expected call of GetBySlug.
func (mr *MockEntitySourceMockRecorder) GetBySlug(ctx, entityType, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBySlug", reflect.TypeOf((*MockEntitySource)(nil).GetBySlug), ctx, entityType, slug)
}
