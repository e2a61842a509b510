package parsers_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

func compendium(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?><compendium version="5">` + body + `</compendium>`)
}

type SpellParserTestSuite struct {
	suite.Suite
	parser *parsers.SpellParser
}

func (s *SpellParserTestSuite) SetupTest() {
	s.parser = parsers.NewSpellParser()
}

const fireballXML = `<spell>
	<name>Fireball</name>
	<level>3</level>
	<school>EV</school>
	<time>1 action</time>
	<range>150 feet</range>
	<components>V, S, M (a tiny ball of bat guano and sulfur)</components>
	<duration>Instantaneous</duration>
	<classes>School: Evocation, Sorcerer, Wizard, Light Domain (Cleric)</classes>
	<text>A bright streak flashes to a point you choose. Each creature in a 20-foot sphere must make a Dexterity saving throw. A target takes 8d6 fire damage on a failed save, or half as much damage on a successful one.</text>
	<text>At Higher Levels: When you cast this spell using a spell slot of 4th level or higher, the damage increases by 1d6 for each slot level above 3rd.</text>
	<text>Source: Player's Handbook (2014) p. 241</text>
	<roll description="Fire Damage">8d6</roll>
	<roll description="Fire Damage" level="4">9d6</roll>
</spell>`

func (s *SpellParserTestSuite) TestParseFireball() {
	spells, err := s.parser.ParseBytes(compendium(fireballXML))
	s.Require().NoError(err)
	s.Require().Len(spells, 1)

	spell := spells[0]
	s.Equal("Fireball", spell.Name)
	s.Equal("fireball", spell.Slug)
	s.Equal("phb:fireball", spell.FullSlug)
	s.Equal(3, spell.Level)
	s.Equal("EV", spell.SchoolCode)
	s.Equal("V, S, M", spell.Components)
	s.Equal("a tiny ball of bat guano and sulfur", spell.MaterialComponents)
	s.False(spell.NeedsConcentration)
	s.False(spell.IsRitual)
	s.Equal([]string{"Sorcerer", "Wizard", "Light Domain (Cleric)"}, spell.Classes)
	s.Empty(spell.Tags)
	s.Equal([]dnd5e.SourceCitation{{Code: "PHB", Pages: "241"}}, spell.Sources)
	s.NotContains(spell.Description, "At Higher Levels")
	s.NotContains(spell.Description, "Source:")
	s.Contains(spell.HigherLevels, "increases by 1d6")

	s.Require().Len(spell.Effects, 2)
	s.Equal("damage", spell.Effects[0].EffectType)
	s.Equal("Fire", spell.Effects[0].DamageType)
	s.Equal(dnd5e.ScalingNone, spell.Effects[0].ScalingType)
	s.Equal("1d6", spell.Effects[0].ScalingIncrement)
	s.Equal(dnd5e.ScalingSpellSlotLevel, spell.Effects[1].ScalingType)
	s.Equal(4, spell.Effects[1].MinSpellSlot)

	s.Require().Len(spell.SavingThrows, 1)
	s.Equal(dnd5e.AbilityDexterity, spell.SavingThrows[0].Ability)
	s.Equal(parsers.SaveHalfDamage, spell.SavingThrows[0].EffectOnSave)
	s.False(spell.SavingThrows[0].Recurring)
}

func (s *SpellParserTestSuite) TestCantripScaling() {
	spells, err := s.parser.ParseBytes(compendium(`<spell>
		<name>Eldritch Blast</name>
		<level>0</level>
		<school>EV</school>
		<duration>Instantaneous</duration>
		<classes>Warlock</classes>
		<text>A beam of crackling energy streaks toward a creature within range. The spell creates more than one beam when you reach higher levels: two beams at 5th level, three beams at 11th level, and four beams at 17th level.</text>
		<roll description="Force Damage" level="0">1d10</roll>
		<roll description="Force Damage" level="5">1d10</roll>
	</spell>`))
	s.Require().NoError(err)
	s.Require().Len(spells, 1)

	effects := spells[0].Effects
	s.Require().Len(effects, 2)
	s.Equal(dnd5e.ScalingCharacterLevel, effects[0].ScalingType)
	s.Equal(0, effects[0].MinCharacterLevel)
	s.Equal(5, effects[1].MinCharacterLevel)
	s.Equal(1, effects[0].ProjectileCount)
	s.Zero(effects[1].ProjectileCount)
}

func (s *SpellParserTestSuite) TestProjectileCount() {
	spells, err := s.parser.ParseBytes(compendium(`<spell>
		<name>Magic Missile</name>
		<level>1</level>
		<school>EV</school>
		<classes>Sorcerer, Wizard</classes>
		<text>You create three glowing darts of magical force. Each dart hits a creature of your choice.</text>
		<roll description="Force Damage">1d4+1</roll>
	</spell>`))
	s.Require().NoError(err)
	s.Require().Len(spells, 1)
	s.Equal(3, spells[0].Effects[0].ProjectileCount)
	s.Equal("phb:magic-missile", spells[0].FullSlug)
}

func (s *SpellParserTestSuite) TestConcentrationRitualAndTags() {
	spells, err := s.parser.ParseBytes(compendium(`<spell>
		<name>Detect Magic</name>
		<level>1</level>
		<school>D</school>
		<ritual>YES</ritual>
		<duration>Concentration, up to 10 minutes</duration>
		<classes>Bard, Cleric, Wizard, Ritual Caster</classes>
		<text>For the duration, you sense the presence of magic within 30 feet of you.</text>
	</spell>`))
	s.Require().NoError(err)
	spell := spells[0]
	s.True(spell.IsRitual)
	s.True(spell.NeedsConcentration)
	s.Equal([]string{"Bard", "Cleric", "Wizard"}, spell.Classes)
	s.Equal([]string{"Ritual Caster"}, spell.Tags)
	s.Empty(spell.SavingThrows)
}

func (s *SpellParserTestSuite) TestMalformedXML() {
	_, err := s.parser.ParseBytes([]byte(`<compendium><spell><name>Broken`))
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *SpellParserTestSuite) TestSavingThrowClassification() {
	testCases := []struct {
		name        string
		description string
		want        []dnd5e.SavingThrow
	}{
		{
			name:        "repeat save ends effect",
			description: "The target must succeed on a Wisdom saving throw or be frightened. At the end of each of its turns, the target can make another Wisdom saving throw to end the effect on itself.",
			want: []dnd5e.SavingThrow{
				{Ability: dnd5e.AbilityWisdom, EffectOnSave: parsers.SaveEndsEffect, Modifier: "none"},
				{Ability: dnd5e.AbilityWisdom, EffectOnSave: parsers.SaveEndsEffect, Recurring: true, Modifier: "none"},
			},
		},
		{
			name:        "condition negated",
			description: "The target must succeed on a Wisdom saving throw or be frightened for 1 minute.",
			want: []dnd5e.SavingThrow{
				{Ability: dnd5e.AbilityWisdom, EffectOnSave: parsers.SaveNegates, Modifier: "none"},
			},
		},
		{
			name:        "advantage when fighting",
			description: "If you or your companions are fighting it, it has advantage on the saving throw. The target must make a Wisdom saving throw or be charmed by you.",
			want: []dnd5e.SavingThrow{
				{Ability: dnd5e.AbilityWisdom, EffectOnSave: parsers.SaveNegates, Modifier: "advantage"},
			},
		},
		{
			name:        "no saves",
			description: "You touch a creature and it regains hit points.",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got := parsers.ParseSavingThrows(tc.description)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				s.Failf("saving throws mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpellParserSuite(t *testing.T) {
	suite.Run(t, new(SpellParserTestSuite))
}
