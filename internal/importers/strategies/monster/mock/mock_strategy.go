// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster (interfaces: Strategy,SpellStore)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_strategy.go -package=monstermock github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster Strategy,SpellStore
//

// Package monstermock is a generated GoMock package.
package monstermock

import (
	context "context"
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	monster "github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster"
	compendium "github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	gomock "go.uber.org/mock/gomock"
)

// MockStrategy is a mock of Strategy interface.
type MockStrategy struct {
	ctrl     *gomock.Controller
	recorder *MockStrategyMockRecorder
	isgomock struct{}
}

// MockStrategyMockRecorder is the mock recorder for MockStrategy.
type MockStrategyMockRecorder struct {
	mock *MockStrategy
}

// NewMockStrategy creates a new mock instance.
func NewMockStrategy(ctrl *gomock.Controller) *MockStrategy {
	mock := &MockStrategy{ctrl: ctrl}
	mock.recorder = &MockStrategyMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStrategy) EXPECT() *MockStrategyMockRecorder {
	return m.recorder
}

// AfterCreate mocks base method.
func (m_2 *MockStrategy) AfterCreate(ctx context.Context, store monster.SpellStore, m *dnd5e.Monster) error {
	m_2.ctrl.T.Helper()
	ret := m_2.ctrl.Call(m_2, "AfterCreate", ctx, store, m)
	ret0, _ := ret[0].(error)
	return ret0
}

// AfterCreate indicates an expected call of AfterCreate.
func (mr *MockStrategyMockRecorder) AfterCreate(ctx, store, m any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AfterCreate", reflect.TypeOf((*MockStrategy)(nil).AfterCreate), ctx, store, m)
}

// AppliesTo mocks base method.
func (m_2 *MockStrategy) AppliesTo(m *dnd5e.Monster) bool {
	m_2.ctrl.T.Helper()
	ret := m_2.ctrl.Call(m_2, "AppliesTo", m)
	ret0, _ := ret[0].(bool)
	return ret0
}

// AppliesTo indicates an expected call of AppliesTo.
func (mr *MockStrategyMockRecorder) AppliesTo(m any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppliesTo", reflect.TypeOf((*MockStrategy)(nil).AppliesTo), m)
}

// EnhanceActions mocks base method.
func (m_2 *MockStrategy) EnhanceActions(m *dnd5e.Monster, actions []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	m_2.ctrl.T.Helper()
	ret := m_2.ctrl.Call(m_2, "EnhanceActions", m, actions)
	ret0, _ := ret[0].([]dnd5e.MonsterAction)
	return ret0
}

// EnhanceActions indicates an expected call of EnhanceActions.
func (mr *MockStrategyMockRecorder) EnhanceActions(m, actions any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceActions", reflect.TypeOf((*MockStrategy)(nil).EnhanceActions), m, actions)
}

// EnhanceLegendaryActions mocks base method.
func (m_2 *MockStrategy) EnhanceLegendaryActions(m *dnd5e.Monster, legendary []dnd5e.LegendaryAction) []dnd5e.LegendaryAction {
	m_2.ctrl.T.Helper()
	ret := m_2.ctrl.Call(m_2, "EnhanceLegendaryActions", m, legendary)
	ret0, _ := ret[0].([]dnd5e.LegendaryAction)
	return ret0
}

// EnhanceLegendaryActions indicates an expected call of EnhanceLegendaryActions.
func (mr *MockStrategyMockRecorder) EnhanceLegendaryActions(m, legendary any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceLegendaryActions", reflect.TypeOf((*MockStrategy)(nil).EnhanceLegendaryActions), m, legendary)
}

// EnhanceTraits mocks base method.
func (m_2 *MockStrategy) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	m_2.ctrl.T.Helper()
	ret := m_2.ctrl.Call(m_2, "EnhanceTraits", m, traits)
	ret0, _ := ret[0].([]dnd5e.MonsterAction)
	return ret0
}

// EnhanceTraits indicates an expected call of EnhanceTraits.
func (mr *MockStrategyMockRecorder) EnhanceTraits(m, traits any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceTraits", reflect.TypeOf((*MockStrategy)(nil).EnhanceTraits), m, traits)
}

// Metadata mocks base method.
func (m *MockStrategy) Metadata() monster.Metadata {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Metadata")
	ret0, _ := ret[0].(monster.Metadata)
	return ret0
}

// Metadata indicates an expected call of Metadata.
func (mr *MockStrategyMockRecorder) Metadata() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Metadata", reflect.TypeOf((*MockStrategy)(nil).Metadata))
}

// Name mocks base method.
func (m *MockStrategy) Name() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Name")
	ret0, _ := ret[0].(string)
	return ret0
}

// Name indicates an expected call of Name.
func (mr *MockStrategyMockRecorder) Name() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockStrategy)(nil).Name))
}

// Reset mocks base method.
func (m *MockStrategy) Reset() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Reset")
}

// Reset indicates an expected call of Reset.
func (mr *MockStrategyMockRecorder) Reset() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reset", reflect.TypeOf((*MockStrategy)(nil).Reset))
}

// MockSpellStore is a mock of SpellStore interface.
type MockSpellStore struct {
	ctrl     *gomock.Controller
	recorder *MockSpellStoreMockRecorder
	isgomock struct{}
}

// MockSpellStoreMockRecorder is the mock recorder for MockSpellStore.
type MockSpellStoreMockRecorder struct {
	mock *MockSpellStore
}

// NewMockSpellStore creates a new mock instance.
func NewMockSpellStore(ctrl *gomock.Controller) *MockSpellStore {
	mock := &MockSpellStore{ctrl: ctrl}
	mock.recorder = &MockSpellStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSpellStore) EXPECT() *MockSpellStoreMockRecorder {
	return m.recorder
}

// GetEntity mocks base method.
func (m *MockSpellStore) GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetEntity", ctx, entityType, slug)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetEntity indicates an expected call of GetEntity.
func (mr *MockSpellStoreMockRecorder) GetEntity(ctx, entityType, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetEntity", reflect.TypeOf((*MockSpellStore)(nil).GetEntity), ctx, entityType, slug)
}

// LinkEntitySpell mocks base method.
func (m *MockSpellStore) LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LinkEntitySpell", ctx, entityID, spellID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LinkEntitySpell indicates an expected call of LinkEntitySpell.
func (mr *MockSpellStoreMockRecorder) LinkEntitySpell(ctx, entityID, spellID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LinkEntitySpell", reflect.TypeOf((*MockSpellStore)(nil).LinkEntitySpell), ctx, entityID, spellID)
}
