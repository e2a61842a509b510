package compendium_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-compendium/internal/cache"
	"github.com/KirkDiggler/rpg-compendium/internal/handlers/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type HandlerTestSuite struct {
	suite.Suite
	ctx     context.Context
	handler *compendium.Handler
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	store := testutils.NewTestStore(s.T())
	testutils.SeedCompendium(s.T(), store)

	var err error
	s.handler, err = compendium.NewHandler(&compendium.HandlerConfig{Store: store})
	s.Require().NoError(err)
}

func request(s *HandlerTestSuite, fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *HandlerTestSuite) code(err error) codes.Code {
	st, ok := status.FromError(err)
	s.Require().True(ok, "expected a status error, got %v", err)
	return st.Code()
}

func (s *HandlerTestSuite) TestConfigValidation() {
	_, err := compendium.NewHandler(&compendium.HandlerConfig{})
	s.ErrorContains(err, "store is required")
	_, err = compendium.NewHandler(nil)
	s.Error(err)
}

func (s *HandlerTestSuite) TestGetEntity() {
	resp, err := s.handler.GetEntity(s.ctx, request(s, map[string]any{"type": "spell", "slug": "fire-bolt"}))
	s.Require().NoError(err)

	entity := resp.GetFields()["entity"].GetStructValue().AsMap()
	s.Equal("spell", entity["type"])
	s.Equal("fire-bolt", entity["slug"])
	s.Equal("Fire Bolt", entity["name"])
	data, ok := entity["data"].(map[string]any)
	s.Require().True(ok)
	s.Equal(float64(0), data["level"])
}

func (s *HandlerTestSuite) TestGetEntitySubrace() {
	resp, err := s.handler.GetEntity(s.ctx, request(s, map[string]any{"type": "race", "slug": testutils.SubraceHigh}))
	s.Require().NoError(err)
	entity := resp.GetFields()["entity"].GetStructValue().AsMap()
	s.Equal("High Elf", entity["name"])

	parent, err := s.handler.GetEntity(s.ctx, request(s, map[string]any{"type": "race", "slug": testutils.RaceElf}))
	s.Require().NoError(err)
	elf := parent.GetFields()["entity"].GetStructValue().AsMap()
	s.NotContains(elf, "parent_id")
	s.Equal(elf["id"], entity["parent_id"])
}

func (s *HandlerTestSuite) TestGetEntityErrors() {
	tests := []struct {
		name   string
		fields map[string]any
		code   codes.Code
	}{
		{name: "missing type", fields: map[string]any{"slug": "fire-bolt"}, code: codes.InvalidArgument},
		{name: "unknown type", fields: map[string]any{"type": "vehicle", "slug": "cart"}, code: codes.InvalidArgument},
		{name: "missing slug", fields: map[string]any{"type": "spell"}, code: codes.InvalidArgument},
		{name: "not found", fields: map[string]any{"type": "spell", "slug": "wish"}, code: codes.NotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.handler.GetEntity(s.ctx, request(s, tt.fields))
			s.Equal(tt.code, s.code(err))
		})
	}
}

func (s *HandlerTestSuite) TestListEntities() {
	resp, err := s.handler.ListEntities(s.ctx, request(s, map[string]any{"type": "race", "name_contains": "elf", "limit": 2}))
	s.Require().NoError(err)

	body := resp.AsMap()
	s.Equal(float64(4), body["total"])
	entities, ok := body["entities"].([]any)
	s.Require().True(ok)
	s.Require().Len(entities, 2)
	s.Equal("Elf", entities[0].(map[string]any)["name"])
	s.Equal("Half-Elf", entities[1].(map[string]any)["name"])
	s.NotContains(entities[0], "data")

	resp, err = s.handler.ListEntities(s.ctx, request(s, map[string]any{"type": "race", "name_contains": "elf", "limit": 2, "offset": 2}))
	s.Require().NoError(err)
	s.Len(resp.GetFields()["entities"].GetListValue().GetValues(), 2)
}

func (s *HandlerTestSuite) TestListEntitiesDefaultLimit() {
	resp, err := s.handler.ListEntities(s.ctx, request(s, map[string]any{"type": "class"}))
	s.Require().NoError(err)
	total := int(resp.GetFields()["total"].GetNumberValue())
	s.Len(resp.GetFields()["entities"].GetListValue().GetValues(), min(total, compendium.DefaultListLimit))
}

func (s *HandlerTestSuite) TestListEntitiesBadPaging() {
	for _, fields := range []map[string]any{
		{"type": "race", "limit": -1},
		{"type": "race", "limit": 2.5},
		{"type": "race", "offset": "ten"},
		{"type": "planet"},
	} {
		_, err := s.handler.ListEntities(s.ctx, request(s, fields))
		s.Equal(codes.InvalidArgument, s.code(err), "%v", fields)
	}
}

func (s *HandlerTestSuite) spellNames(resp *structpb.Struct) ([]string, []float64) {
	var names []string
	var levels []float64
	for _, v := range resp.GetFields()["spells"].GetListValue().GetValues() {
		spell := v.GetStructValue().GetFields()
		names = append(names, spell["name"].GetStringValue())
		levels = append(levels, spell["level"].GetNumberValue())
	}
	return names, levels
}

func (s *HandlerTestSuite) TestListClassSpells() {
	resp, err := s.handler.ListClassSpells(s.ctx, request(s, map[string]any{"class": testutils.ClassWizard, "max_level": 1}))
	s.Require().NoError(err)
	s.Equal(testutils.ClassWizard, resp.GetFields()["class"].GetStringValue())

	names, levels := s.spellNames(resp)
	s.Len(names, 12)
	s.Equal("Fire Bolt", names[0])
	s.Equal("Burning Hands", names[4])
	for i := 1; i < len(levels); i++ {
		s.LessOrEqual(levels[i-1], levels[i])
	}

	resp, err = s.handler.ListClassSpells(s.ctx, request(s, map[string]any{"class": testutils.ClassWizard}))
	s.Require().NoError(err)
	names, _ = s.spellNames(resp)
	s.Len(names, 18)
}

func (s *HandlerTestSuite) TestListClassSpellsSubclass() {
	resp, err := s.handler.ListClassSpells(s.ctx, request(s, map[string]any{"class": testutils.SubclassEvokeEntity, "max_level": 0}))
	s.Require().NoError(err)
	names, _ := s.spellNames(resp)
	s.Equal([]string{"Fire Bolt", "Light", "Mage Hand", "Prestidigitation"}, names)
}

func (s *HandlerTestSuite) TestListClassSpellsErrors() {
	_, err := s.handler.ListClassSpells(s.ctx, request(s, map[string]any{}))
	s.Equal(codes.InvalidArgument, s.code(err))

	_, err = s.handler.ListClassSpells(s.ctx, request(s, map[string]any{"class": testutils.ClassWizard, "max_level": 10}))
	s.Equal(codes.InvalidArgument, s.code(err))

	_, err = s.handler.ListClassSpells(s.ctx, request(s, map[string]any{"class": "artificer"}))
	s.Equal(codes.NotFound, s.code(err))
}

func (s *HandlerTestSuite) TestGetEntityThroughCache() {
	store := testutils.NewTestStore(s.T())
	testutils.SeedCompendium(s.T(), store)
	client, mr := testutils.NewTestRedis(s.T())
	entities, err := cache.New(&cache.Config{Client: client, Store: store})
	s.Require().NoError(err)

	handler, err := compendium.NewHandler(&compendium.HandlerConfig{Store: store, Entities: entities})
	s.Require().NoError(err)

	resp, err := handler.GetEntity(s.ctx, request(s, map[string]any{"type": "class", "slug": testutils.ClassCleric}))
	s.Require().NoError(err)
	s.Equal("Cleric", resp.GetFields()["entity"].GetStructValue().GetFields()["name"].GetStringValue())
	s.NotEmpty(mr.Keys(), "the entity is cached")
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
