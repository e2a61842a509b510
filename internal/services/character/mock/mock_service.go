// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/services/character (interfaces: Service)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_service.go -package=charactermock github.com/KirkDiggler/rpg-compendium/internal/services/character Service
//

// Package charactermock is a generated GoMock package.
package charactermock

import (
	context "context"
	reflect "reflect"

	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	gomock "go.uber.org/mock/gomock"
)

// MockService is a mock of Service interface.
type MockService struct {
	ctrl     *gomock.Controller
	recorder *MockServiceMockRecorder
	isgomock struct{}
}

// MockServiceMockRecorder is the mock recorder for MockService.
type MockServiceMockRecorder struct {
	mock *MockService
}

// NewMockService creates a new mock instance.
func NewMockService(ctrl *gomock.Controller) *MockService {
	mock := &MockService{ctrl: ctrl}
	mock.recorder = &MockServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockService) EXPECT() *MockServiceMockRecorder {
	return m.recorder
}

// AddClass mocks base method.
func (m *MockService) AddClass(ctx context.Context, input *character.AddClassInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddClass", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AddClass indicates an expected call of AddClass.
func (mr *MockServiceMockRecorder) AddClass(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddClass", reflect.TypeOf((*MockService)(nil).AddClass), ctx, input)
}

// CreateCharacter mocks base method.
func (m *MockService) CreateCharacter(ctx context.Context, input *character.CreateCharacterInput) (*character.CreateCharacterOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateCharacter", ctx, input)
	ret0, _ := ret[0].(*character.CreateCharacterOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreateCharacter indicates an expected call of CreateCharacter.
func (mr *MockServiceMockRecorder) CreateCharacter(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateCharacter", reflect.TypeOf((*MockService)(nil).CreateCharacter), ctx, input)
}

// DeleteCharacter mocks base method.
func (m *MockService) DeleteCharacter(ctx context.Context, input *character.DeleteCharacterInput) (*character.DeleteCharacterOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteCharacter", ctx, input)
	ret0, _ := ret[0].(*character.DeleteCharacterOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteCharacter indicates an expected call of DeleteCharacter.
func (mr *MockServiceMockRecorder) DeleteCharacter(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteCharacter", reflect.TypeOf((*MockService)(nil).DeleteCharacter), ctx, input)
}

// Export mocks base method.
func (m *MockService) Export(ctx context.Context, input *character.ExportInput) (*character.ExportOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Export", ctx, input)
	ret0, _ := ret[0].(*character.ExportOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Export indicates an expected call of Export.
func (mr *MockServiceMockRecorder) Export(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Export", reflect.TypeOf((*MockService)(nil).Export), ctx, input)
}

// GetCharacter mocks base method.
func (m *MockService) GetCharacter(ctx context.Context, input *character.GetCharacterInput) (*character.GetCharacterOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetCharacter", ctx, input)
	ret0, _ := ret[0].(*character.GetCharacterOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetCharacter indicates an expected call of GetCharacter.
func (mr *MockServiceMockRecorder) GetCharacter(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetCharacter", reflect.TypeOf((*MockService)(nil).GetCharacter), ctx, input)
}

// Import mocks base method.
func (m *MockService) Import(ctx context.Context, input *character.ImportInput) (*character.ImportOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Import", ctx, input)
	ret0, _ := ret[0].(*character.ImportOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Import indicates an expected call of Import.
func (mr *MockServiceMockRecorder) Import(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Import", reflect.TypeOf((*MockService)(nil).Import), ctx, input)
}

// LevelUp mocks base method.
func (m *MockService) LevelUp(ctx context.Context, input *character.LevelUpInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LevelUp", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LevelUp indicates an expected call of LevelUp.
func (mr *MockServiceMockRecorder) LevelUp(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LevelUp", reflect.TypeOf((*MockService)(nil).LevelUp), ctx, input)
}

// ListCharacters mocks base method.
func (m *MockService) ListCharacters(ctx context.Context, input *character.ListCharactersInput) (*character.ListCharactersOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListCharacters", ctx, input)
	ret0, _ := ret[0].(*character.ListCharactersOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListCharacters indicates an expected call of ListCharacters.
func (mr *MockServiceMockRecorder) ListCharacters(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListCharacters", reflect.TypeOf((*MockService)(nil).ListCharacters), ctx, input)
}

// ListOptions mocks base method.
func (m *MockService) ListOptions(ctx context.Context, input *character.ListOptionsInput) (*character.ListOptionsOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListOptions", ctx, input)
	ret0, _ := ret[0].(*character.ListOptionsOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListOptions indicates an expected call of ListOptions.
func (mr *MockServiceMockRecorder) ListOptions(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListOptions", reflect.TypeOf((*MockService)(nil).ListOptions), ctx, input)
}

// PendingChoices mocks base method.
func (m *MockService) PendingChoices(ctx context.Context, input *character.PendingChoicesInput) (*character.PendingChoicesOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PendingChoices", ctx, input)
	ret0, _ := ret[0].(*character.PendingChoicesOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PendingChoices indicates an expected call of PendingChoices.
func (mr *MockServiceMockRecorder) PendingChoices(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PendingChoices", reflect.TypeOf((*MockService)(nil).PendingChoices), ctx, input)
}

// ResolveChoice mocks base method.
func (m *MockService) ResolveChoice(ctx context.Context, input *character.ResolveChoiceInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResolveChoice", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ResolveChoice indicates an expected call of ResolveChoice.
func (mr *MockServiceMockRecorder) ResolveChoice(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResolveChoice", reflect.TypeOf((*MockService)(nil).ResolveChoice), ctx, input)
}

// SetAbilityScores mocks base method.
func (m *MockService) SetAbilityScores(ctx context.Context, input *character.SetAbilityScoresInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetAbilityScores", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetAbilityScores indicates an expected call of SetAbilityScores.
func (mr *MockServiceMockRecorder) SetAbilityScores(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetAbilityScores", reflect.TypeOf((*MockService)(nil).SetAbilityScores), ctx, input)
}

// SetBackground mocks base method.
func (m *MockService) SetBackground(ctx context.Context, input *character.SetBackgroundInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetBackground", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetBackground indicates an expected call of SetBackground.
func (mr *MockServiceMockRecorder) SetBackground(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetBackground", reflect.TypeOf((*MockService)(nil).SetBackground), ctx, input)
}

// SetClass mocks base method.
func (m *MockService) SetClass(ctx context.Context, input *character.SetClassInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetClass", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetClass indicates an expected call of SetClass.
func (mr *MockServiceMockRecorder) SetClass(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetClass", reflect.TypeOf((*MockService)(nil).SetClass), ctx, input)
}

// SetDetails mocks base method.
func (m *MockService) SetDetails(ctx context.Context, input *character.SetDetailsInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetDetails", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetDetails indicates an expected call of SetDetails.
func (mr *MockServiceMockRecorder) SetDetails(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetDetails", reflect.TypeOf((*MockService)(nil).SetDetails), ctx, input)
}

// SetEquipmentMode mocks base method.
func (m *MockService) SetEquipmentMode(ctx context.Context, input *character.SetEquipmentModeInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetEquipmentMode", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetEquipmentMode indicates an expected call of SetEquipmentMode.
func (mr *MockServiceMockRecorder) SetEquipmentMode(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetEquipmentMode", reflect.TypeOf((*MockService)(nil).SetEquipmentMode), ctx, input)
}

// SetRace mocks base method.
func (m *MockService) SetRace(ctx context.Context, input *character.SetRaceInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetRace", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetRace indicates an expected call of SetRace.
func (mr *MockServiceMockRecorder) SetRace(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetRace", reflect.TypeOf((*MockService)(nil).SetRace), ctx, input)
}

// SetSubclass mocks base method.
func (m *MockService) SetSubclass(ctx context.Context, input *character.SetSubclassInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetSubclass", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetSubclass indicates an expected call of SetSubclass.
func (mr *MockServiceMockRecorder) SetSubclass(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetSubclass", reflect.TypeOf((*MockService)(nil).SetSubclass), ctx, input)
}

// SetSubrace mocks base method.
func (m *MockService) SetSubrace(ctx context.Context, input *character.SetSubraceInput) (*character.UpdateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetSubrace", ctx, input)
	ret0, _ := ret[0].(*character.UpdateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetSubrace indicates an expected call of SetSubrace.
func (mr *MockServiceMockRecorder) SetSubrace(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetSubrace", reflect.TypeOf((*MockService)(nil).SetSubrace), ctx, input)
}

// Stats mocks base method.
func (m *MockService) Stats(ctx context.Context, input *character.StatsInput) (*character.StatsOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Stats", ctx, input)
	ret0, _ := ret[0].(*character.StatsOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Stats indicates an expected call of Stats.
func (mr *MockServiceMockRecorder) Stats(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stats", reflect.TypeOf((*MockService)(nil).Stats), ctx, input)
}

// Validate mocks base method.
func (m *MockService) Validate(ctx context.Context, input *character.ValidateInput) (*character.ValidateOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Validate", ctx, input)
	ret0, _ := ret[0].(*character.ValidateOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Validate indicates an expected call of Validate.
func (mr *MockServiceMockRecorder) Validate(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Validate", reflect.TypeOf((*MockService)(nil).Validate), ctx, input)
}
