// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/cache (interfaces: EntityCache)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_cache.go -package=cachemock github.com/KirkDiggler/rpg-compendium/internal/cache EntityCache
//

// Package cachemock is a generated GoMock package.
package cachemock

import (
	context "context"
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	compendium "github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	gomock "go.uber.org/mock/gomock"
)

// MockEntityCache is a mock of EntityCache interface.
type MockEntityCache struct {
	ctrl     *gomock.Controller
	recorder *MockEntityCacheMockRecorder
	isgomock struct{}
}

// MockEntityCacheMockRecorder is the mock recorder for MockEntityCache.
type MockEntityCacheMockRecorder struct {
	mock *MockEntityCache
}

// NewMockEntityCache creates a new mock instance.
func NewMockEntityCache(ctrl *gomock.Controller) *MockEntityCache {
	mock := &MockEntityCache{ctrl: ctrl}
	mock.recorder = &MockEntityCacheMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEntityCache) EXPECT() *MockEntityCacheMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockEntityCache) Get(ctx context.Context, entityType dnd5e.EntityType, id int64) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, entityType, id)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockEntityCacheMockRecorder) Get(ctx, entityType, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockEntityCache)(nil).Get), ctx, entityType, id)
}

// GetBySlug mocks base method.
func (m *MockEntityCache) GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBySlug", ctx, entityType, slug)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBySlug indicates an expected call of GetBySlug.
func (mr *MockEntityCacheMockRecorder) GetBySlug(ctx, entityType, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBySlug", reflect.TypeOf((*MockEntityCache)(nil).GetBySlug), ctx, entityType, slug)
}

// Invalidate mocks base method.
func (m *MockEntityCache) Invalidate(ctx context.Context, entityType dnd5e.EntityType) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invalidate", ctx, entityType)
	ret0, _ := ret[0].(error)
	return ret0
}

// Invalidate indicates an expected call of Invalidate.
func (mr *MockEntityCacheMockRecorder) Invalidate(ctx, entityType any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invalidate", reflect.TypeOf((*MockEntityCache)(nil).Invalidate), ctx, entityType)
}

// InvalidateAll mocks base method.
func (m *MockEntityCache) InvalidateAll(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InvalidateAll", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

// InvalidateAll indicates an expected call of InvalidateAll.
func (mr *MockEntityCacheMockRecorder) InvalidateAll(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InvalidateAll", reflect.TypeOf((*MockEntityCache)(nil).InvalidateAll), ctx)
}

// Warm mocks base method.
func (m *MockEntityCache) Warm(ctx context.Context, types []dnd5e.EntityType) (map[dnd5e.EntityType]int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Warm", ctx, types)
	ret0, _ := ret[0].(map[dnd5e.EntityType]int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Warm indicates an expected call of Warm.
func (mr *MockEntityCacheMockRecorder) Warm(ctx, types any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Warm", reflect.TypeOf((*MockEntityCache)(nil).Warm), ctx, types)
}
