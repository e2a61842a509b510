package itemstrategy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func intPtr(i int) *int { return &i }

func (s *StrategyTestSuite) TestDefaultOrder() {
	var names []string
	for _, st := range itemstrategy.Default() {
		names = append(names, st.Name())
	}
	s.Equal([]string{
		"ChargedItemStrategy",
		"ScrollStrategy",
		"PotionStrategy",
		"TattooStrategy",
		"LegendaryStrategy",
	}, names)
}

func (s *StrategyTestSuite) TestChargedItemAppliesTo() {
	st := itemstrategy.NewChargedItem()

	s.True(st.AppliesTo(&dnd5e.Item{TypeCode: "WD", IsMagic: true}))
	s.True(st.AppliesTo(&dnd5e.Item{TypeCode: "W", IsMagic: true, ChargesMax: intPtr(3)}))
	s.True(st.AppliesTo(&dnd5e.Item{
		TypeCode:    "G",
		Description: "While holding it, you can cast fireball (3 charges) from it.",
	}))
	s.False(st.AppliesTo(&dnd5e.Item{TypeCode: "WD"}))
	s.False(st.AppliesTo(&dnd5e.Item{TypeCode: "M", Description: "A plain longsword."}))
}

func (s *StrategyTestSuite) TestParseChargedSpells() {
	desc := "While holding it, you can use an action to expend 1 or more of its charges to cast one of the following spells from it: " +
		"burning hands (1 charge), fireball (3 charges), or wall of fire (4 charges)."

	got := itemstrategy.ParseChargedSpells(desc)
	want := []dnd5e.ItemSpell{
		{SpellName: "Burning Hands", ChargesCostMin: 1, ChargesCostMax: 1},
		{SpellName: "Fireball", ChargesCostMin: 3, ChargesCostMax: 3},
		{SpellName: "Wall Of Fire", ChargesCostMin: 4, ChargesCostMax: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		s.Failf("charged spells mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *StrategyTestSuite) TestParseChargedSpellsPerLevel() {
	desc := "You can expend charges to cast cure wounds (1 charge per spell level, up to 4th)."

	got := itemstrategy.ParseChargedSpells(desc)
	s.Require().Len(got, 1)
	s.Equal("Cure Wounds", got[0].SpellName)
	s.Equal(1, got[0].ChargesCostMin)
	s.Equal(4, got[0].ChargesCostMax)
	s.Equal("1 per spell level", got[0].ChargesCostFormula)
}

func (s *StrategyTestSuite) TestChargedItemRelationships() {
	st := itemstrategy.NewChargedItem()
	item := &dnd5e.Item{
		TypeCode:    "ST",
		IsMagic:     true,
		Description: "You can cast lightning bolt (5 charges) from it.",
	}

	st.EnhanceRelationships(item)

	s.Require().Len(item.Spells, 1)
	s.Equal("Lightning Bolt", item.Spells[0].SpellName)
	s.Equal(1, st.Metadata().Metrics["spell_references_found"])
}

func (s *StrategyTestSuite) TestScrollSpellLevel() {
	testCases := []struct {
		name   string
		in     string
		level  int
		wantOK bool
	}{
		{name: "cantrip", in: "Spell Scroll (Cantrip)", level: 0, wantOK: true},
		{name: "first", in: "Spell Scroll (1st Level)", level: 1, wantOK: true},
		{name: "third", in: "Spell Scroll (3rd Level)", level: 3, wantOK: true},
		{name: "ninth", in: "Spell Scroll (9th Level)", level: 9, wantOK: true},
		{name: "not a spell scroll", in: "Scroll of Protection", wantOK: false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			level, ok := itemstrategy.ScrollSpellLevel(tc.in)
			s.Equal(tc.wantOK, ok)
			if tc.wantOK {
				s.Equal(tc.level, level)
			}
		})
	}
}

func (s *StrategyTestSuite) TestScrollAttributes() {
	st := itemstrategy.NewScroll()
	item := &dnd5e.Item{Record: dnd5e.Record{Name: "Spell Scroll (5th Level)"}, TypeCode: "SC"}

	s.Require().True(st.AppliesTo(item))
	st.EnhanceModifiers(item, nil)
	st.EnhanceRelationships(item)

	s.Equal("5", item.Attributes["spell_level"])
	s.Equal("17", item.Attributes["save_dc"])
	s.Equal("+9", item.Attributes["attack_bonus"])
	s.Equal(1, st.Metadata().Metrics["spell_scrolls"])
}

func (s *StrategyTestSuite) TestScrollWarnsOnUnknownName() {
	st := itemstrategy.NewScroll()
	item := &dnd5e.Item{Record: dnd5e.Record{Name: "Spell Scroll (Unknown)"}, TypeCode: "SC"}

	st.EnhanceRelationships(item)

	s.Equal([]string{"Could not extract spell level from scroll name: Spell Scroll (Unknown)"}, st.Metadata().Warnings)

	st.Reset()
	s.Empty(st.Metadata().Warnings)
}

func (s *StrategyTestSuite) TestProtectionScroll() {
	st := itemstrategy.NewScroll()
	item := &dnd5e.Item{
		Record:      dnd5e.Record{Name: "Scroll of Protection from Undead"},
		TypeCode:    "SC",
		Description: "Using an action to read the scroll encloses you in a barrier for 5 minutes.",
	}

	st.EnhanceModifiers(item, nil)
	st.EnhanceRelationships(item)

	md := st.Metadata()
	s.Equal(1, md.Metrics["protection_scrolls"])
	s.Equal("5 minutes", md.Metrics["protection_duration"])
	s.Empty(md.Warnings)
	s.Empty(item.Attributes)
}

func (s *StrategyTestSuite) TestPotionEffectCategory() {
	testCases := []struct {
		name      string
		potion    string
		desc      string
		modifiers []dnd5e.Modifier
		want      string
	}{
		{name: "healing by name", potion: "Potion of Healing", want: itemstrategy.EffectHealing},
		{name: "healing by text", potion: "Elixir", desc: "You regain 2d4 + 2 hit points.", want: itemstrategy.EffectHealing},
		{
			name:      "resistance modifier",
			potion:    "Potion of Fire Resistance",
			modifiers: []dnd5e.Modifier{{Category: "damage_resistance", DamageTypeName: "fire"}},
			want:      itemstrategy.EffectResistance,
		},
		{name: "poison", potion: "Potion of Poison", want: itemstrategy.EffectDebuff},
		{name: "giant strength", potion: "Potion of Hill Giant Strength", want: itemstrategy.EffectBuff},
		{name: "invisibility", potion: "Potion of Invisibility", want: itemstrategy.EffectUtility},
		{name: "advantage", potion: "Potion of Clairvoyance", desc: "You have advantage on Perception checks.", want: itemstrategy.EffectBuff},
		{name: "unclassified", potion: "Philter of Love", desc: "You become charmed.", want: ""},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, itemstrategy.PotionEffectCategory(tc.potion, tc.desc, tc.modifiers))
		})
	}
}

func (s *StrategyTestSuite) TestPotionDuration() {
	st := itemstrategy.NewPotion()
	item := &dnd5e.Item{
		Record:      dnd5e.Record{Name: "Potion of Heroism"},
		TypeCode:    "P",
		Description: "For 1 hour after drinking it, you gain 10 temporary hit points.",
	}

	st.EnhanceModifiers(item, nil)

	s.Equal("1 hour", item.Attributes["duration"])
	s.Equal(itemstrategy.EffectBuff, item.Attributes["effect_category"])
	s.Equal(1, st.Metadata().Metrics["effect_buff"])
}

func (s *StrategyTestSuite) TestTattooActivation() {
	testCases := []struct {
		name string
		desc string
		want []string
	}{
		{name: "action", desc: "As an action, you can cause the tattoo to glow.", want: []string{"action"}},
		{name: "bonus action only", desc: "As a bonus action, you can shape the tattoo.", want: []string{"bonus_action"}},
		{name: "reaction", desc: "As a reaction when you take damage, you gain resistance.", want: []string{"reaction"}},
		{name: "passive", desc: "While the tattoo is on your skin, you have resistance to cold damage.", want: []string{"passive"}},
		{name: "none", desc: "The tattoo depicts a coiled snake.", want: []string{}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, itemstrategy.TattooActivation(tc.desc))
		})
	}
}

func (s *StrategyTestSuite) TestTattooAttributes() {
	st := itemstrategy.NewTattoo()
	item := &dnd5e.Item{
		Record:      dnd5e.Record{Name: "Eldritch Claw Tattoo"},
		TypeCode:    "W",
		Description: "This tattoo covers your arm. As a bonus action, you can make your claws strike.",
	}

	s.Require().True(st.AppliesTo(item))
	st.EnhanceModifiers(item, nil)

	s.Equal("eldritch_claw", item.Attributes["tattoo_type"])
	s.Equal("bonus_action", item.Attributes["activation"])
	s.Equal("arm", item.Attributes["body_location"])
	s.Equal(1, st.Metadata().Metrics["type_eldritch_claw"])
	s.False(st.AppliesTo(&dnd5e.Item{Record: dnd5e.Record{Name: "Longsword"}, TypeCode: "W"}))
}

func (s *StrategyTestSuite) TestLegendarySentientItem() {
	st := itemstrategy.NewLegendary()
	item := &dnd5e.Item{
		Record: dnd5e.Record{Name: "Blackrazor"},
		Rarity: "Legendary",
		Description: "Blackrazor is a sentient chaotic neutral weapon with an Intelligence score of 17. " +
			"It has hearing and darkvision out to a range of 120 feet. The sword is arrogant and greedy. " +
			"Blackrazor can be destroyed only by casting it into the Negative Plane.",
	}

	s.Require().True(st.AppliesTo(item))
	st.EnhanceModifiers(item, nil)
	st.EnhanceRelationships(item)

	md := st.Metadata()
	s.Equal(1, md.Metrics["legendary_items"])
	s.Equal(true, md.Metrics["is_sentient"])
	s.Equal("chaotic neutral", md.Metrics["alignment"])
	s.Equal(true, md.Metrics["has_destruction_method"])
	s.Equal([]string{"arrogant", "greedy"}, md.Metrics["personality_traits"])
	s.Equal("darkvision 120 ft.", item.Attributes["senses"])
}

func (s *StrategyTestSuite) TestLegendaryPlainArtifact() {
	st := itemstrategy.NewLegendary()
	item := &dnd5e.Item{Record: dnd5e.Record{Name: "Orb of Dragonkind"}, Rarity: "artifact", Description: "A crystal globe."}

	st.EnhanceModifiers(item, nil)

	md := st.Metadata()
	s.Equal(1, md.Metrics["artifacts"])
	s.Equal(false, md.Metrics["is_sentient"])
	s.NotContains(md.Metrics, "alignment")
	s.NotContains(md.Metrics, "personality_traits")
	s.False(st.AppliesTo(&dnd5e.Item{Rarity: "rare"}))
}

func (s *StrategyTestSuite) TestMetadataIsACopy() {
	st := itemstrategy.NewPotion()
	st.EnhanceModifiers(&dnd5e.Item{Record: dnd5e.Record{Name: "Potion of Healing"}, TypeCode: "P"}, nil)

	md := st.Metadata()
	md.Metrics["effect_healing"] = 99

	s.Equal(1, st.Metadata().Metrics["effect_healing"])
}
