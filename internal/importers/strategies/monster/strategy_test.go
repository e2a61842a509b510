package monster_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type StrategyTestSuite struct {
	suite.Suite
}

func (s *StrategyTestSuite) TestSelectionOrder() {
	testCases := []struct {
		name    string
		monster *dnd5e.Monster
		want    string
	}{
		{
			name:    "spellcasting wins over type",
			monster: &dnd5e.Monster{Type: "fiend (devil)", Spells: []string{"Fireball"}},
			want:    "spellcaster",
		},
		{name: "fiend", monster: &dnd5e.Monster{Type: "fiend (demon)"}, want: "fiend"},
		{name: "swarm of beasts", monster: &dnd5e.Monster{Type: "swarm of Tiny beasts"}, want: "swarm"},
		{name: "beast", monster: &dnd5e.Monster{Type: "beast"}, want: "beast"},
		{name: "dragon", monster: &dnd5e.Monster{Type: "dragon"}, want: "dragon"},
		{name: "shapechanger humanoid", monster: &dnd5e.Monster{Type: "humanoid (human, shapechanger)"}, want: "shapechanger"},
		{name: "fallback", monster: &dnd5e.Monster{Type: "humanoid (any race)"}, want: "default"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, monster.Select(monster.Default(), tc.monster).Name())
		})
	}
}

func (s *StrategyTestSuite) TestCreatureType() {
	s.Equal("humanoid", monster.CreatureType("Humanoid (elf)"))
	s.Equal("swarm", monster.CreatureType("swarm of Medium beasts"))
	s.Equal("undead", monster.CreatureType("undead"))
}

func (s *StrategyTestSuite) TestLegendaryActions() {
	strategy := monster.NewFallback()
	out := strategy.EnhanceLegendaryActions(&dnd5e.Monster{}, []dnd5e.LegendaryAction{
		{Name: "Detect"},
		{Name: "Wing Attack (Costs 2 Actions)"},
		{Name: "Lair Actions", Category: "lair"},
	})
	s.Equal(1, out[0].ActionCost)
	s.False(out[0].IsLairAction)
	s.Equal(2, out[1].ActionCost)
	s.True(out[2].IsLairAction)
}

func (s *StrategyTestSuite) TestRechargeFromName() {
	strategy := monster.NewDragon()
	strategy.Reset()
	out := strategy.EnhanceActions(&dnd5e.Monster{}, []dnd5e.MonsterAction{
		{Name: "Fire Breath (Recharge 5–6)"},
		{Name: "Lightning Breath"},
	})
	s.Equal("Fire Breath", out[0].Name)
	s.Equal("Recharge 5–6", out[0].Recharge)
	s.Len(strategy.Metadata().Warnings, 1)
}

func (s *StrategyTestSuite) TestBeastTagsDeduplicate() {
	strategy := monster.NewBeast()
	strategy.Reset()
	wolf := &dnd5e.Monster{
		Type: "beast",
		Traits: []dnd5e.MonsterAction{
			{Name: "Keen Smell", Description: "The wolf has advantage on Perception checks."},
			{Name: "Keen Sight"},
			{Name: "Keen Hearing"},
			{Name: "Pack Tactics"},
		},
	}
	strategy.EnhanceTraits(wolf, wolf.Traits)

	md := strategy.Metadata()
	s.Equal([]string{"beast", "keen_senses", "pack_tactics"}, md.Tags)
	s.Equal(3, md.Metrics["keen_senses_count"])
	s.Equal(1, md.Metrics["beasts_enhanced"])
	s.Zero(md.Metrics["charge_count"])
}

func (s *StrategyTestSuite) TestImmunityAndConditionTags() {
	golem := &dnd5e.Monster{
		Type:                "construct",
		DamageImmunities:    "fire, poison, psychic",
		ConditionImmunities: "charmed, exhaustion, frightened",
	}
	strategy := monster.NewConstruct()
	strategy.Reset()
	strategy.EnhanceTraits(golem, nil)
	s.Equal([]string{"charm_immune", "construct", "exhaustion_immune", "poison_immune"}, strategy.Metadata().Tags)

	fiend := monster.NewFiend()
	fiend.Reset()
	fiend.EnhanceTraits(&dnd5e.Monster{
		Type:             "fiend",
		DamageImmunities: "fire, poison",
		Traits:           []dnd5e.MonsterAction{{Name: "Magic Resistance"}},
	}, nil)
	md := fiend.Metadata()
	s.Contains(md.Tags, "fire_immune")
	s.Contains(md.Tags, "magic_resistance")
	s.Equal(1, md.Metrics["magic_resistant_fiends"])
}

func (s *StrategyTestSuite) TestResetClearsState() {
	strategy := monster.NewSwarm()
	strategy.EnhanceTraits(&dnd5e.Monster{Type: "swarm of bats"}, nil)
	s.NotEmpty(strategy.Metadata().Tags)
	strategy.Reset()
	s.Empty(strategy.Metadata().Tags)
	s.Empty(strategy.Metadata().Metrics)
}

func (s *StrategyTestSuite) TestSpellcasterAfterCreate() {
	ctx := context.Background()
	store, err := compendium.Open(ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "c.db")})
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	fireball := &dnd5e.Spell{Record: dnd5e.Record{Slug: "fireball", FullSlug: "phb:fireball", Name: "Fireball"}, Level: 3}
	_, err = store.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: fireball})
	s.Require().NoError(err)

	lich := &dnd5e.Monster{
		Record: dnd5e.Record{Slug: "lich", FullSlug: "mm:lich", Name: "Lich"},
		Type:   "undead",
		Spells: []string{"Fireball", "Power Word Kill"},
	}
	_, err = store.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: lich})
	s.Require().NoError(err)

	strategy := monster.NewSpellcaster()
	strategy.Reset()
	s.Require().True(strategy.AppliesTo(lich))
	s.Require().NoError(strategy.AfterCreate(ctx, store, lich))

	md := strategy.Metadata()
	s.Equal(1, md.Metrics["spells_matched"])
	s.Equal(1, md.Metrics["spells_not_found"])
	s.Equal([]string{"spell not found: Power Word Kill"}, md.Warnings)

	counts, err := store.ChildCounts(ctx, lich.ID)
	s.Require().NoError(err)
	s.Equal(1, counts["entity_spells"])
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}
