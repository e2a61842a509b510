package race_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/race"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type SubraceStrategyTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *compendium.Store
	strategy *race.SubraceStrategy
}

func (s *SubraceStrategyTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := compendium.Open(s.ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "races.db")})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })
	s.strategy = race.NewSubraceStrategy()
}

func hillDwarf() *dnd5e.Race {
	r := &dnd5e.Race{
		Record:       dnd5e.Record{Name: "Dwarf (Hill)", Sources: []dnd5e.SourceCitation{{Code: "PHB", Pages: "20"}}},
		BaseRaceName: "Dwarf",
		SizeCode:     "M",
		Speed:        25,
		AbilityBonuses: []dnd5e.AbilityBonus{
			{Ability: "CON", Value: 2},
			{Ability: "WIS", Value: 1},
		},
		BaseTraits:    []dnd5e.Trait{{Name: "Darkvision", Category: "species"}},
		SubraceTraits: []dnd5e.Trait{{Name: "Dwarven Toughness", Category: "subspecies"}},
		Languages:     []dnd5e.LanguageGrant{{Name: "Common"}, {Name: "Dwarvish"}},
		Resistances:   []string{"poison"},
	}
	r.SetIdentity()
	return r
}

func (s *SubraceStrategyTestSuite) TestCreatesStubBaseRace() {
	sub := hillDwarf()
	s.Require().True(s.strategy.AppliesTo(sub))

	result, err := s.strategy.Enhance(s.ctx, s.store, sub)
	s.Require().NoError(err)
	s.Require().NotNil(result.BaseRace)

	base := result.BaseRace
	s.Equal("dwarf", base.Slug)
	s.Equal("phb:dwarf", base.FullSlug)
	s.Equal(result.ParentID, base.ID)
	s.Equal([]dnd5e.AbilityBonus{{Ability: "CON", Value: 2}}, base.AbilityBonuses)
	s.True(base.SubraceRequired)
	s.Equal(25, base.Speed)
	s.Equal([]string{"poison"}, base.Resistances)
	s.Equal("Darkvision", base.Traits[0].Name)

	s.Equal("dwarf-hill", sub.Slug)
	s.Equal("phb:dwarf-hill", sub.FullSlug)
	s.Equal("dwarf", sub.ParentSlug)
	s.Equal([]dnd5e.AbilityBonus{{Ability: "WIS", Value: 1}}, sub.AbilityBonuses)
	s.Equal("Dwarven Toughness", sub.Traits[0].Name)
	s.Nil(sub.Languages)
	s.Nil(sub.Resistances)

	s.Equal(1, s.strategy.Metadata().Metrics["base_races_created"])
	s.Equal(1, s.strategy.Metadata().Metrics["subraces_processed"])
}

func (s *SubraceStrategyTestSuite) TestResolvesExistingBaseRace() {
	elf := &dnd5e.Race{Record: dnd5e.Record{Name: "Elf"}, SizeCode: "M", Speed: 30}
	elf.SetIdentity()
	out, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: elf})
	s.Require().NoError(err)

	sub := &dnd5e.Race{Record: dnd5e.Record{Name: "Drow"}, BaseRaceName: "Elf", SizeCode: "M"}
	sub.SetIdentity()
	result, err := s.strategy.Enhance(s.ctx, s.store, sub)
	s.Require().NoError(err)
	s.Nil(result.BaseRace)
	s.Equal(out.ID, result.ParentID)
	s.Equal("elf-drow", sub.Slug)
	s.Equal(1, s.strategy.Metadata().Metrics["base_races_resolved"])
}

func (s *SubraceStrategyTestSuite) TestCompleteBaseRaceMakesSubraceOptional() {
	sub := &dnd5e.Race{
		Record:         dnd5e.Record{Name: "Half-Elf (Variant)"},
		BaseRaceName:   "Half-Elf",
		SizeCode:       "M",
		AbilityBonuses: []dnd5e.AbilityBonus{{Ability: "CHA", Value: 2}},
		AbilityChoices: []dnd5e.AbilityBonus{{IsChoice: true, ChoiceCount: 2, Value: 1}},
	}
	sub.SetIdentity()
	result, err := s.strategy.Enhance(s.ctx, s.store, sub)
	s.Require().NoError(err)
	s.False(result.BaseRace.SubraceRequired)
	s.Equal(30, result.BaseRace.Speed)
	s.Nil(sub.AbilityBonuses)
}

func (s *SubraceStrategyTestSuite) TestMissingSizeWarns() {
	sub := &dnd5e.Race{Record: dnd5e.Record{Name: "Mystery"}, BaseRaceName: "Unknown"}
	sub.SetIdentity()
	s.strategy.Reset()
	result, err := s.strategy.Enhance(s.ctx, s.store, sub)
	s.Require().NoError(err)
	s.Nil(result)
	s.Len(s.strategy.Metadata().Warnings, 1)
}

func (s *SubraceStrategyTestSuite) TestSubraceName() {
	s.Equal("Hill", race.SubraceName("Dwarf (Hill)"))
	s.Equal("Mark of Warding", race.SubraceName("Dwarf, Mark of Warding"))
	s.Equal("Drow", race.SubraceName("Drow"))
}

func TestSubraceStrategySuite(t *testing.T) {
	suite.Run(t, new(SubraceStrategyTestSuite))
}
