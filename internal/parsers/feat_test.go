package parsers_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type FeatParserTestSuite struct {
	suite.Suite
	parser *parsers.FeatParser
}

func (s *FeatParserTestSuite) SetupTest() {
	s.parser = parsers.NewFeatParser()
}

func (s *FeatParserTestSuite) parseOne(body string) *dnd5e.Feat {
	feats, err := s.parser.ParseBytes(compendium(body))
	s.Require().NoError(err)
	s.Require().Len(feats, 1)
	return feats[0]
}

func (s *FeatParserTestSuite) TestActor() {
	feat := s.parseOne(`<feat>
		<name>Actor</name>
		<text>Skilled at mimicry and dramatics, you gain the following benefits:</text>
		<text>• Increase your Charisma score by 1, to a maximum of 20.</text>
		<text>• You have advantage on Charisma (Deception) and Charisma (Performance) checks when trying to pass yourself off as a different person.</text>
		<modifier category="ability score">charisma +1</modifier>
	</feat>`)

	s.Equal("phb:actor", feat.FullSlug)
	s.Equal([]dnd5e.SourceCitation{{Code: dnd5e.DefaultSourceCode}}, feat.Sources)
	s.Nil(feat.Prerequisites)
	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierAbilityScore, Value: "+1", AbilityCode: dnd5e.AbilityCharisma},
		{Category: parsers.ModifierSkill, Value: parsers.EffectAdvantage, SkillName: "Deception"},
		{Category: parsers.ModifierSkill, Value: parsers.EffectAdvantage, SkillName: "Performance"},
	}, feat.Modifiers)
	s.Empty(feat.Conditions)
	s.Empty(feat.Proficiencies)
	s.Empty(feat.Spells)
}

func (s *FeatParserTestSuite) TestTough() {
	feat := s.parseOne(`<feat>
		<name>Tough</name>
		<text>Your hit point maximum increases by an amount equal to twice your level when you gain this feat. Whenever you gain a level thereafter, your hit point maximum increases by an additional 2 hit points.</text>
	</feat>`)

	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierHitPoints, Value: "+2", Condition: "per_level"},
	}, feat.Modifiers)
}

func (s *FeatParserTestSuite) TestObservantPassiveScore() {
	feat := s.parseOne(`<feat>
		<name>Observant</name>
		<text>• Increase your Intelligence or Wisdom score by 1, to a maximum of 20.</text>
		<text>• You have a +5 bonus to your passive Wisdom (Perception) and passive Intelligence (Investigation) scores.</text>
		<modifier category="ability score">wisdom +1</modifier>
		<modifier category="bonus">passive +5</modifier>
	</feat>`)

	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierAbilityScore, Value: "+1", AbilityCode: dnd5e.AbilityWisdom},
		{Category: parsers.ModifierPassive, Value: "+5", SkillName: "Perception"},
	}, feat.Modifiers)
}

func (s *FeatParserTestSuite) TestModeratelyArmored() {
	feat := s.parseOne(`<feat>
		<name>Moderately Armored</name>
		<prerequisite>Proficiency with light armor</prerequisite>
		<text>You have trained to master the use of medium armor and shields, gaining the following benefits:</text>
		<text>• Increase your Strength or Dexterity score by 1, to a maximum of 20.</text>
		<text>• You gain proficiency with medium armor and shields.</text>
	</feat>`)

	s.Equal("Proficiency with light armor", feat.PrerequisiteText)
	s.Equal([]dnd5e.Prerequisite{
		{Type: dnd5e.PrerequisiteProficiency, Reference: "light armor", GroupID: 1},
	}, feat.Prerequisites)
	s.Equal([]dnd5e.Modifier{{
		Category:         parsers.ModifierAbilityScore,
		Value:            "+1",
		IsChoice:         true,
		ChoiceCount:      1,
		ChoiceConstraint: "specific:STR,DEX",
	}}, feat.Modifiers)
	s.Equal([]dnd5e.Proficiency{
		{Name: "medium armor", Type: dnd5e.ProficiencyTypeArmor, Grants: true},
		{Name: "shields", Type: dnd5e.ProficiencyTypeArmor, Grants: true},
	}, feat.Proficiencies)
}

func (s *FeatParserTestSuite) TestProficiencyChoice() {
	feat := s.parseOne(`<feat>
		<name>Skilled</name>
		<text>You gain proficiency in any combination of three skills or tools of your choice.</text>
	</feat>`)

	s.Require().Len(feat.Proficiencies, 1)
	prof := feat.Proficiencies[0]
	s.True(prof.IsChoice)
	s.Equal("feat_choice_1", prof.ChoiceGroup)
	s.Equal(3, prof.Quantity)
}

func (s *FeatParserTestSuite) TestConditionsAndResistance() {
	feats, err := s.parser.ParseBytes(compendium(`<feat>
		<name>Dungeon Delver</name>
		<text>You have advantage on Wisdom (Perception) and Intelligence (Investigation) checks made to detect the presence of secret doors.</text>
		<text>You have advantage on saving throws made to avoid or resist traps.</text>
		<text>You have resistance to the damage dealt by traps.</text>
	</feat>
	<feat>
		<name>Crossbow Expert</name>
		<text>Being within 5 feet of a hostile creature doesn't impose disadvantage on your ranged attack rolls.</text>
	</feat>`))
	s.Require().NoError(err)
	s.Require().Len(feats, 2)

	delver := feats[0]
	s.Equal([]dnd5e.ConditionEffect{
		{Condition: "saving throws made to avoid or resist traps", EffectType: parsers.EffectAdvantage},
	}, delver.Conditions)
	s.Equal([]string{"all (the damage dealt by traps)"}, delver.Resistances)
	s.Len(delver.Modifiers, 2)

	s.Equal([]dnd5e.ConditionEffect{
		{Condition: "your ranged attack rolls", EffectType: parsers.EffectNegatesDisadvantage},
	}, feats[1].Conditions)
}

func (s *FeatParserTestSuite) TestFeyTouched() {
	feat := s.parseOne(`<feat>
		<name>Fey Touched</name>
		<text>• Increase your Intelligence, Wisdom, or Charisma score by 1, to a maximum of 20.</text>
		<text>• You learn the misty step spell and one 1st-level spell of your choice. The 1st-level spell must be from the divination or enchantment school of magic. You can cast each of these spells without expending a spell slot. Once you cast either of these spells in this way, you can't cast that spell in this way again until you finish a long rest.</text>
		<text>Source: Tasha's Cauldron of Everything p. 79</text>
	</feat>`)

	s.Equal("tce:fey-touched", feat.FullSlug)
	s.Equal(dnd5e.ResetLongRest, feat.ResetsOn)
	s.NotContains(feat.Description, "Source:")
	s.Equal([]dnd5e.Modifier{{
		Category:         parsers.ModifierAbilityScore,
		Value:            "+1",
		IsChoice:         true,
		ChoiceCount:      1,
		ChoiceConstraint: "specific:INT,WIS,CHA",
	}}, feat.Modifiers)
	s.Equal([]dnd5e.InnateSpell{
		{SpellName: "Misty Step", UsageLimit: "1/long rest"},
		{IsChoice: true, ChoiceCount: 1, MaxLevel: 1, Schools: []string{"divination", "enchantment"}},
	}, feat.Spells)
}

func (s *FeatParserTestSuite) TestLinguist() {
	feat := s.parseOne(`<feat>
		<name>Linguist</name>
		<text>• Increase your Intelligence score by 1, to a maximum of 20.</text>
		<text>• You learn three languages of your choice.</text>
	</feat>`)

	s.Equal([]dnd5e.LanguageGrant{{IsChoice: true, Quantity: 3}}, feat.Languages)
	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierAbilityScore, Value: "+1", AbilityCode: dnd5e.AbilityIntelligence},
	}, feat.Modifiers)
}

func (s *FeatParserTestSuite) TestFeatSpells() {
	testCases := []struct {
		name string
		text string
		want []dnd5e.InnateSpell
	}{
		{
			name: "class cantrips and spell",
			text: "You learn two bard cantrips of your choice. In addition, choose one 1st-level bard spell. You learn that spell and can cast it at its lowest level. Once you cast it, you must finish a long rest before you can cast it again.",
			want: []dnd5e.InnateSpell{
				{IsChoice: true, IsCantrip: true, ChoiceCount: 2, ClassName: "bard"},
				{IsChoice: true, ChoiceCount: 1, MaxLevel: 1, ClassName: "bard"},
			},
		},
		{
			name: "ritual book",
			text: "You acquire a ritual book holding two 1st-level wizard spells of your choice. The spells must have the ritual tag.",
			want: []dnd5e.InnateSpell{
				{IsChoice: true, ChoiceCount: 2, MaxLevel: 1, ClassName: "wizard", RitualOnly: true},
			},
		},
		{
			name: "short rest usage",
			text: "You learn the hex spell. You can cast it once without a spell slot, and you regain the ability when you finish a short or long rest.",
			want: []dnd5e.InnateSpell{
				{SpellName: "Hex", UsageLimit: "1/short rest"},
			},
		},
		{
			name: "no spells",
			text: "You gain a +1 bonus to AC.",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if diff := cmp.Diff(tc.want, parsers.FeatSpells(tc.text)); diff != "" {
				s.Failf("feat spells mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}

func (s *FeatParserTestSuite) TestParsePrerequisites() {
	testCases := []struct {
		name string
		text string
		want []dnd5e.Prerequisite
	}{
		{
			name: "single ability",
			text: "Dexterity 13 or higher",
			want: []dnd5e.Prerequisite{
				{Type: dnd5e.PrerequisiteAbilityScore, Reference: dnd5e.AbilityDexterity, MinimumValue: 13, GroupID: 1},
			},
		},
		{
			name: "alternative abilities",
			text: "Intelligence or Wisdom 13 or higher",
			want: []dnd5e.Prerequisite{
				{Type: dnd5e.PrerequisiteAbilityScore, Reference: dnd5e.AbilityIntelligence, MinimumValue: 13, GroupID: 1},
				{Type: dnd5e.PrerequisiteAbilityScore, Reference: dnd5e.AbilityWisdom, MinimumValue: 13, GroupID: 1},
			},
		},
		{
			name: "proficiency",
			text: "Proficiency with medium armor",
			want: []dnd5e.Prerequisite{
				{Type: dnd5e.PrerequisiteProficiency, Reference: "medium armor", GroupID: 1},
			},
		},
		{
			name: "races with trailing proficiency",
			text: "Dwarf, Gnome, Halfling, Small Race, Proficiency in Acrobatics",
			want: []dnd5e.Prerequisite{
				{Type: dnd5e.PrerequisiteRace, Reference: "Dwarf", GroupID: 1},
				{Type: dnd5e.PrerequisiteRace, Reference: "Gnome", GroupID: 1},
				{Type: dnd5e.PrerequisiteRace, Reference: "Halfling", GroupID: 1},
				{Type: dnd5e.PrerequisiteProficiency, Reference: "Acrobatics", GroupID: 2},
			},
		},
		{
			name: "race or race",
			text: "Elf or Half-Elf",
			want: []dnd5e.Prerequisite{
				{Type: dnd5e.PrerequisiteRace, Reference: "Elf", GroupID: 1},
				{Type: dnd5e.PrerequisiteRace, Reference: "Half-Elf", GroupID: 1},
			},
		},
		{
			name: "free form",
			text: "The ability to cast at least one spell",
			want: []dnd5e.Prerequisite{
				{Description: "The ability to cast at least one spell", GroupID: 1},
			},
		},
		{
			name: "empty",
			text: "  ",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if diff := cmp.Diff(tc.want, parsers.ParsePrerequisites(tc.text)); diff != "" {
				s.Failf("prerequisites mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeatParserSuite(t *testing.T) {
	suite.Run(t, new(FeatParserTestSuite))
}
