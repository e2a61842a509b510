package external

import (
	"context"
	"errors"
	"testing"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	internalErrors "github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// mockSpellAPI is a mock implementation of spellAPI for testing
type mockSpellAPI struct {
	mock.Mock
}

func (m *mockSpellAPI) ListSpells(input *dnd5e.ListSpellsInput) ([]*entities.ReferenceItem, error) {
	args := m.Called(input)
	return args.Get(0).([]*entities.ReferenceItem), args.Error(1)
}

func (m *mockSpellAPI) GetSpell(key string) (*entities.Spell, error) {
	args := m.Called(key)
	return args.Get(0).(*entities.Spell), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api    *mockSpellAPI
	client *client
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = &mockSpellAPI{}
	s.client = newClient(s.api, 2, zap.NewNop())
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) fireBolt() *entities.Spell {
	return &entities.Spell{
		Key:         "fire-bolt",
		Name:        "Fire Bolt",
		SpellLevel:  0,
		CastingTime: "1 action",
		Range:       "120 feet",
		Duration:    "Instantaneous",
	}
}

func (s *ClientTestSuite) TestGetSpell() {
	s.api.On("GetSpell", "fire-bolt").Return(s.fireBolt(), nil)

	spell, err := s.client.GetSpell(s.ctx, "fire-bolt")
	s.Require().NoError(err)
	s.Equal("fire-bolt", spell.Slug)
	s.Equal("srd:fire-bolt", spell.FullSlug)
	s.Equal("Fire Bolt", spell.Name)
	s.Equal(0, spell.Level)
	s.Equal("120 feet", spell.Range)
	s.Equal(SourceCode, spell.Sources[0].Code)
	s.Contains(spell.Description, "Cantrip")
	s.Contains(spell.Description, "Range: 120 feet")
}

func (s *ClientTestSuite) TestGetSpellRequiresIndex() {
	_, err := s.client.GetSpell(s.ctx, "")
	s.True(internalErrors.IsInvalidArgument(err))
}

func (s *ClientTestSuite) TestGetSpellAPIError() {
	s.api.On("GetSpell", "wish").Return((*entities.Spell)(nil), errors.New("boom"))

	_, err := s.client.GetSpell(s.ctx, "wish")
	s.Require().Error(err)
	s.Equal(internalErrors.CodeUnavailable, internalErrors.GetCode(err))
}

func (s *ClientTestSuite) TestListSpells() {
	level := 0
	refs := []*entities.ReferenceItem{
		{Key: "fire-bolt", Name: "Fire Bolt"},
		nil,
		{Key: "light", Name: "Light"},
	}
	s.api.On("ListSpells", &dnd5e.ListSpellsInput{Level: &level, Class: "wizard"}).Return(refs, nil)
	s.api.On("GetSpell", "fire-bolt").Return(s.fireBolt(), nil)
	s.api.On("GetSpell", "light").Return(&entities.Spell{Key: "light", Name: "Light", Ritual: false}, nil)

	spells, err := s.client.ListSpells(s.ctx, &ListSpellsInput{Level: &level, Class: "wizard"})
	s.Require().NoError(err)
	s.Require().Len(spells, 2)
	s.Equal("fire-bolt", spells[0].Slug)
	s.Equal("light", spells[1].Slug)
}

func (s *ClientTestSuite) TestListSpellsAPIError() {
	s.api.On("ListSpells", (*dnd5e.ListSpellsInput)(nil)).
		Return(([]*entities.ReferenceItem)(nil), errors.New("API error"))

	spells, err := s.client.ListSpells(s.ctx, nil)
	s.Require().Error(err)
	s.Nil(spells)
	s.Contains(err.Error(), "failed to list spells from D&D 5e API")
}

func (s *ClientTestSuite) TestListSpellsDetailError() {
	refs := []*entities.ReferenceItem{{Key: "wish", Name: "Wish"}}
	s.api.On("ListSpells", (*dnd5e.ListSpellsInput)(nil)).Return(refs, nil)
	s.api.On("GetSpell", "wish").Return((*entities.Spell)(nil), errors.New("timeout"))

	_, err := s.client.ListSpells(s.ctx, nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to get spell wish")
}

func (s *ClientTestSuite) TestConvertNilSpell() {
	_, err := ConvertSpell(nil)
	s.True(internalErrors.IsInvalidArgument(err))
}

func (s *ClientTestSuite) TestConvertRitualConcentration() {
	spell, err := ConvertSpell(&entities.Spell{
		Key:           "detect-magic",
		Name:          "Detect Magic",
		SpellLevel:    1,
		Ritual:        true,
		Concentration: true,
	})
	s.Require().NoError(err)
	s.True(spell.IsRitual)
	s.True(spell.NeedsConcentration)
	s.Contains(spell.Description, "Level 1 Unknown School spell")
	s.Empty(spell.Effects)
	s.Empty(spell.SavingThrows)
}

func (s *ClientTestSuite) TestBaseDamageForSpellLevel() {
	damage := &entities.SpellDamageAtSlotLevel{FirstLevel: "1d10", ThirdLevel: "8d6", NinthLevel: "40d6"}
	s.Equal("1d10", getBaseDamageForSpellLevel(0, damage))
	s.Equal("8d6", getBaseDamageForSpellLevel(3, damage))
	s.Equal("40d6", getBaseDamageForSpellLevel(9, damage))
	s.Equal("", getBaseDamageForSpellLevel(10, damage))
}

func (s *ClientTestSuite) TestSaveEffect() {
	s.Equal("half", saveEffect("Half"))
	s.Equal("negates", saveEffect("none"))
	s.Equal("", saveEffect("other"))
}

func (s *ClientTestSuite) TestConfigDefaults() {
	cfg := &Config{}
	s.Require().NoError(cfg.Validate())
	s.Equal(8, cfg.Concurrency)
	s.NotNil(cfg.Logger)

	s.Error((&Config{Concurrency: -1}).Validate())
	s.Error((*Config)(nil).Validate())
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
