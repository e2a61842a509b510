// Code generated by MockGen. DO NOT EDIT.
// Source: github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium (interfaces: Repository,Queries)
//
// Generated by this command:
//
//	mockgen -destination=mock/mock_repository.go -package=compendiummock github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium Repository,Queries
//

// Package compendiummock is a generated GoMock package.
package compendiummock

import (
	context "context"
	reflect "reflect"

	dnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	compendium "github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	gomock "go.uber.org/mock/gomock"
)

// MockRepository is a mock of Repository interface.
type MockRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRepositoryMockRecorder
	isgomock struct{}
}

// MockRepositoryMockRecorder is the mock recorder for MockRepository.
type MockRepositoryMockRecorder struct {
	mock *MockRepository
}

// NewMockRepository creates a new mock instance.
func NewMockRepository(ctrl *gomock.Controller) *MockRepository {
	mock := &MockRepository{ctrl: ctrl}
	mock.recorder = &MockRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRepository) EXPECT() *MockRepositoryMockRecorder {
	return m.recorder
}

// ChildCounts mocks base method.
func (m *MockRepository) ChildCounts(ctx context.Context, entityID int64) (map[string]int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ChildCounts", ctx, entityID)
	ret0, _ := ret[0].(map[string]int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ChildCounts indicates an expected call of ChildCounts.
func (mr *MockRepositoryMockRecorder) ChildCounts(ctx, entityID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ChildCounts", reflect.TypeOf((*MockRepository)(nil).ChildCounts), ctx, entityID)
}

// ClassSpells mocks base method.
func (m *MockRepository) ClassSpells(ctx context.Context, input compendium.ClassSpellsInput) ([]*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ClassSpells", ctx, input)
	ret0, _ := ret[0].([]*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ClassSpells indicates an expected call of ClassSpells.
func (mr *MockRepositoryMockRecorder) ClassSpells(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ClassSpells", reflect.TypeOf((*MockRepository)(nil).ClassSpells), ctx, input)
}

// Close mocks base method.
func (m *MockRepository) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockRepositoryMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockRepository)(nil).Close))
}

// DeleteAll mocks base method.
func (m *MockRepository) DeleteAll(ctx context.Context, entityType dnd5e.EntityType) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteAll", ctx, entityType)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteAll indicates an expected call of DeleteAll.
func (mr *MockRepositoryMockRecorder) DeleteAll(ctx, entityType any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteAll", reflect.TypeOf((*MockRepository)(nil).DeleteAll), ctx, entityType)
}

// GetEntity mocks base method.
func (m *MockRepository) GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetEntity", ctx, entityType, slug)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetEntity indicates an expected call of GetEntity.
func (mr *MockRepositoryMockRecorder) GetEntity(ctx, entityType, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetEntity", reflect.TypeOf((*MockRepository)(nil).GetEntity), ctx, entityType, slug)
}

// GetEntityByID mocks base method.
func (m *MockRepository) GetEntityByID(ctx context.Context, id int64) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetEntityByID", ctx, id)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetEntityByID indicates an expected call of GetEntityByID.
func (mr *MockRepositoryMockRecorder) GetEntityByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetEntityByID", reflect.TypeOf((*MockRepository)(nil).GetEntityByID), ctx, id)
}

// GetReport mocks base method.
func (m *MockRepository) GetReport(ctx context.Context, id string) (*compendium.Report, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetReport", ctx, id)
	ret0, _ := ret[0].(*compendium.Report)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetReport indicates an expected call of GetReport.
func (mr *MockRepositoryMockRecorder) GetReport(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetReport", reflect.TypeOf((*MockRepository)(nil).GetReport), ctx, id)
}

// LinkClassSpell mocks base method.
func (m *MockRepository) LinkClassSpell(ctx context.Context, classID, spellID int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LinkClassSpell", ctx, classID, spellID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LinkClassSpell indicates an expected call of LinkClassSpell.
func (mr *MockRepositoryMockRecorder) LinkClassSpell(ctx, classID, spellID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LinkClassSpell", reflect.TypeOf((*MockRepository)(nil).LinkClassSpell), ctx, classID, spellID)
}

// LinkEntitySpell mocks base method.
func (m *MockRepository) LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LinkEntitySpell", ctx, entityID, spellID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LinkEntitySpell indicates an expected call of LinkEntitySpell.
func (mr *MockRepositoryMockRecorder) LinkEntitySpell(ctx, entityID, spellID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LinkEntitySpell", reflect.TypeOf((*MockRepository)(nil).LinkEntitySpell), ctx, entityID, spellID)
}

// ListEntities mocks base method.
func (m *MockRepository) ListEntities(ctx context.Context, input compendium.ListEntitiesInput) (*compendium.ListEntitiesOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListEntities", ctx, input)
	ret0, _ := ret[0].(*compendium.ListEntitiesOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListEntities indicates an expected call of ListEntities.
func (mr *MockRepositoryMockRecorder) ListEntities(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListEntities", reflect.TypeOf((*MockRepository)(nil).ListEntities), ctx, input)
}

// ListReports mocks base method.
func (m *MockRepository) ListReports(ctx context.Context, kind string, limit int) ([]*compendium.Report, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListReports", ctx, kind, limit)
	ret0, _ := ret[0].([]*compendium.Report)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListReports indicates an expected call of ListReports.
func (mr *MockRepositoryMockRecorder) ListReports(ctx, kind, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListReports", reflect.TypeOf((*MockRepository)(nil).ListReports), ctx, kind, limit)
}

// LookupID mocks base method.
func (m *MockRepository) LookupID(ctx context.Context, table compendium.LookupTable, key string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LookupID", ctx, table, key)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LookupID indicates an expected call of LookupID.
func (mr *MockRepositoryMockRecorder) LookupID(ctx, table, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LookupID", reflect.TypeOf((*MockRepository)(nil).LookupID), ctx, table, key)
}

// Lookups mocks base method.
func (m *MockRepository) Lookups(ctx context.Context, table compendium.LookupTable) (map[string]int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lookups", ctx, table)
	ret0, _ := ret[0].(map[string]int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Lookups indicates an expected call of Lookups.
func (mr *MockRepositoryMockRecorder) Lookups(ctx, table any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lookups", reflect.TypeOf((*MockRepository)(nil).Lookups), ctx, table)
}

// ReplaceChildren mocks base method.
func (m *MockRepository) ReplaceChildren(ctx context.Context, entityID int64, children *compendium.Children) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReplaceChildren", ctx, entityID, children)
	ret0, _ := ret[0].(error)
	return ret0
}

// ReplaceChildren indicates an expected call of ReplaceChildren.
func (mr *MockRepositoryMockRecorder) ReplaceChildren(ctx, entityID, children any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReplaceChildren", reflect.TypeOf((*MockRepository)(nil).ReplaceChildren), ctx, entityID, children)
}

// SaveReport mocks base method.
func (m *MockRepository) SaveReport(ctx context.Context, report *compendium.Report) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SaveReport", ctx, report)
	ret0, _ := ret[0].(error)
	return ret0
}

// SaveReport indicates an expected call of SaveReport.
func (mr *MockRepositoryMockRecorder) SaveReport(ctx, report any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SaveReport", reflect.TypeOf((*MockRepository)(nil).SaveReport), ctx, report)
}

// UpsertEntity mocks base method.
func (m *MockRepository) UpsertEntity(ctx context.Context, input compendium.UpsertEntityInput) (*compendium.UpsertEntityOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertEntity", ctx, input)
	ret0, _ := ret[0].(*compendium.UpsertEntityOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpsertEntity indicates an expected call of UpsertEntity.
func (mr *MockRepositoryMockRecorder) UpsertEntity(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertEntity", reflect.TypeOf((*MockRepository)(nil).UpsertEntity), ctx, input)
}

// WithTx mocks base method.
func (m *MockRepository) WithTx(ctx context.Context, fn func(compendium.Queries) error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WithTx", ctx, fn)
	ret0, _ := ret[0].(error)
	return ret0
}

// WithTx indicates an expected call of WithTx.
func (mr *MockRepositoryMockRecorder) WithTx(ctx, fn any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WithTx", reflect.TypeOf((*MockRepository)(nil).WithTx), ctx, fn)
}

// MockQueries is a mock of Queries interface.
type MockQueries struct {
	ctrl     *gomock.Controller
	recorder *MockQueriesMockRecorder
	isgomock struct{}
}

// MockQueriesMockRecorder is the mock recorder for MockQueries.
type MockQueriesMockRecorder struct {
	mock *MockQueries
}

// NewMockQueries creates a new mock instance.
func NewMockQueries(ctrl *gomock.Controller) *MockQueries {
	mock := &MockQueries{ctrl: ctrl}
	mock.recorder = &MockQueriesMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockQueries) EXPECT() *MockQueriesMockRecorder {
	return m.recorder
}

// ChildCounts mocks base method.
func (m *MockQueries) ChildCounts(ctx context.Context, entityID int64) (map[string]int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ChildCounts", ctx, entityID)
	ret0, _ := ret[0].(map[string]int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ChildCounts indicates an expected call of ChildCounts.
func (mr *MockQueriesMockRecorder) ChildCounts(ctx, entityID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ChildCounts", reflect.TypeOf((*MockQueries)(nil).ChildCounts), ctx, entityID)
}

// ClassSpells mocks base method.
func (m *MockQueries) ClassSpells(ctx context.Context, input compendium.ClassSpellsInput) ([]*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ClassSpells", ctx, input)
	ret0, _ := ret[0].([]*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ClassSpells indicates an expected call of ClassSpells.
func (mr *MockQueriesMockRecorder) ClassSpells(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ClassSpells", reflect.TypeOf((*MockQueries)(nil).ClassSpells), ctx, input)
}

// DeleteAll mocks base method.
func (m *MockQueries) DeleteAll(ctx context.Context, entityType dnd5e.EntityType) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteAll", ctx, entityType)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteAll indicates an expected call of DeleteAll.
func (mr *MockQueriesMockRecorder) DeleteAll(ctx, entityType any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteAll", reflect.TypeOf((*MockQueries)(nil).DeleteAll), ctx, entityType)
}

// GetEntity mocks base method.
func (m *MockQueries) GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetEntity", ctx, entityType, slug)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetEntity indicates an expected call of GetEntity.
func (mr *MockQueriesMockRecorder) GetEntity(ctx, entityType, slug any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetEntity", reflect.TypeOf((*MockQueries)(nil).GetEntity), ctx, entityType, slug)
}

// GetEntityByID mocks base method.
func (m *MockQueries) GetEntityByID(ctx context.Context, id int64) (*compendium.EntityRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetEntityByID", ctx, id)
	ret0, _ := ret[0].(*compendium.EntityRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetEntityByID indicates an expected call of GetEntityByID.
func (mr *MockQueriesMockRecorder) GetEntityByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetEntityByID", reflect.TypeOf((*MockQueries)(nil).GetEntityByID), ctx, id)
}

// LinkClassSpell mocks base method.
func (m *MockQueries) LinkClassSpell(ctx context.Context, classID, spellID int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LinkClassSpell", ctx, classID, spellID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LinkClassSpell indicates an expected call of LinkClassSpell.
func (mr *MockQueriesMockRecorder) LinkClassSpell(ctx, classID, spellID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LinkClassSpell", reflect.TypeOf((*MockQueries)(nil).LinkClassSpell), ctx, classID, spellID)
}

// LinkEntitySpell mocks base method.
func (m *MockQueries) LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LinkEntitySpell", ctx, entityID, spellID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LinkEntitySpell indicates an expected call of LinkEntitySpell.
func (mr *MockQueriesMockRecorder) LinkEntitySpell(ctx, entityID, spellID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LinkEntitySpell", reflect.TypeOf((*MockQueries)(nil).LinkEntitySpell), ctx, entityID, spellID)
}

// ListEntities mocks base method.
func (m *MockQueries) ListEntities(ctx context.Context, input compendium.ListEntitiesInput) (*compendium.ListEntitiesOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListEntities", ctx, input)
	ret0, _ := ret[0].(*compendium.ListEntitiesOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListEntities indicates an expected call of ListEntities.
func (mr *MockQueriesMockRecorder) ListEntities(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListEntities", reflect.TypeOf((*MockQueries)(nil).ListEntities), ctx, input)
}

// LookupID mocks base method.
func (m *MockQueries) LookupID(ctx context.Context, table compendium.LookupTable, key string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LookupID", ctx, table, key)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LookupID indicates an expected call of LookupID.
func (mr *MockQueriesMockRecorder) LookupID(ctx, table, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LookupID", reflect.TypeOf((*MockQueries)(nil).LookupID), ctx, table, key)
}

// Lookups mocks base method.
func (m *MockQueries) Lookups(ctx context.Context, table compendium.LookupTable) (map[string]int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lookups", ctx, table)
	ret0, _ := ret[0].(map[string]int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Lookups indicates an expected call of Lookups.
func (mr *MockQueriesMockRecorder) Lookups(ctx, table any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lookups", reflect.TypeOf((*MockQueries)(nil).Lookups), ctx, table)
}

// ReplaceChildren mocks base method.
func (m *MockQueries) ReplaceChildren(ctx context.Context, entityID int64, children *compendium.Children) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReplaceChildren", ctx, entityID, children)
	ret0, _ := ret[0].(error)
	return ret0
}

// ReplaceChildren indicates an expected call of ReplaceChildren.
func (mr *MockQueriesMockRecorder) ReplaceChildren(ctx, entityID, children any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReplaceChildren", reflect.TypeOf((*MockQueries)(nil).ReplaceChildren), ctx, entityID, children)
}

// UpsertEntity mocks base method.
func (m *MockQueries) UpsertEntity(ctx context.Context, input compendium.UpsertEntityInput) (*compendium.UpsertEntityOutput, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertEntity", ctx, input)
	ret0, _ := ret[0].(*compendium.UpsertEntityOutput)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpsertEntity indicates an expected call of UpsertEntity.
func (mr *MockQueriesMockRecorder) UpsertEntity(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertEntity", reflect.TypeOf((*MockQueries)(nil).UpsertEntity), ctx, input)
}
