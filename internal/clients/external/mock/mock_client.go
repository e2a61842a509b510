// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/clients/external (interfaces: Client)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_client.go -package=externalmock github.com/KirkDiggler/rpg-compendium/internal/clients/external Client
//

// Package externalmock is a generated GoMock package.
package externalmock

import (
	context "context"
	reflect "reflect"

	external "github.com/KirkDiggler/rpg-compendium/internal/clients/external"
	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	gomock "go.uber.org/mock/gomock"
)

// MockClient is a mock of Client interface.
type MockClient struct {
	ctrl     *gomock.Controller
	recorder *MockClientMockRecorder
	isgomock struct{}
}

// MockClientMockRecorder is the mock recorder for MockClient.
type MockClientMockRecorder struct {
	mock *MockClient
}

// NewMockClient creates a new mock instance.
func NewMockClient(ctrl *gomock.Controller) *MockClient {
	mock := &MockClient{ctrl: ctrl}
	mock.recorder = &MockClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClient) EXPECT() *MockClientMockRecorder {
	return m.recorder
}

// GetSpell mocks base method.
func (m *MockClient) GetSpell(ctx context.Context, index string) (*dnd5e.Spell, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSpell", ctx, index)
	ret0, _ := ret[0].(*dnd5e.Spell)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetSpell indicates an expected call of GetSpell.
func (mr *MockClientMockRecorder) GetSpell(ctx, index any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSpell", reflect.TypeOf((*MockClient)(nil).GetSpell), ctx, index)
}

// ListSpells mocks base method.
func (m *MockClient) ListSpells(ctx context.Context, input *external.ListSpellsInput) ([]*dnd5e.Spell, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListSpells", ctx, input)
	ret0, _ := ret[0].([]*dnd5e.Spell)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListSpells indicates an expected call of ListSpells.
func (mr *MockClientMockRecorder) ListSpells(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListSpells", reflect.TypeOf((*MockClient)(nil).ListSpells), ctx, input)
}
