// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy (interfaces: Strategy)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_strategy.go -package=itemstrategymock github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy Strategy
//

// Package itemstrategymock is a generated GoMock package.
package itemstrategymock

import (
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	itemstrategy "github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy"
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

// AppliesTo mocks base method.
func (m *MockStrategy) AppliesTo(item *dnd5e.Item) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppliesTo", item)
	ret0, _ := ret[0].(bool)
	return ret0
}

// AppliesTo indicates an expected call of AppliesTo.
func (mr *MockStrategyMockRecorder) AppliesTo(item any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppliesTo", reflect.TypeOf((*MockStrategy)(nil).AppliesTo), item)
}

// EnhanceAbilities mocks base method.
func (m *MockStrategy) EnhanceAbilities(item *dnd5e.Item, abilities []dnd5e.ItemAbility) []dnd5e.ItemAbility {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EnhanceAbilities", item, abilities)
	ret0, _ := ret[0].([]dnd5e.ItemAbility)
	return ret0
}

// EnhanceAbilities indicates an expected call of EnhanceAbilities.
func (mr *MockStrategyMockRecorder) EnhanceAbilities(item, abilities any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceAbilities", reflect.TypeOf((*MockStrategy)(nil).EnhanceAbilities), item, abilities)
}

// EnhanceModifiers mocks base method.
func (m *MockStrategy) EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EnhanceModifiers", item, modifiers)
	ret0, _ := ret[0].([]dnd5e.Modifier)
	return ret0
}

// EnhanceModifiers indicates an expected call of EnhanceModifiers.
func (mr *MockStrategyMockRecorder) EnhanceModifiers(item, modifiers any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceModifiers", reflect.TypeOf((*MockStrategy)(nil).EnhanceModifiers), item, modifiers)
}

// EnhanceRelationships mocks base method.
func (m *MockStrategy) EnhanceRelationships(item *dnd5e.Item) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "EnhanceRelationships", item)
}

// EnhanceRelationships indicates an expected call of EnhanceRelationships.
func (mr *MockStrategyMockRecorder) EnhanceRelationships(item any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnhanceRelationships", reflect.TypeOf((*MockStrategy)(nil).EnhanceRelationships), item)
}

// Metadata mocks base method.
func (m *MockStrategy) Metadata() itemstrategy.Metadata {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Metadata")
	ret0, _ := ret[0].(itemstrategy.Metadata)
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
