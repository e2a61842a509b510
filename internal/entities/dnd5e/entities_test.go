package dnd5e_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

type EntitiesTestSuite struct {
	suite.Suite
}

func (s *EntitiesTestSuite) TestSlugify() {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Fireball", want: "fireball"},
		{name: "spaces", in: "Cure Wounds", want: "cure-wounds"},
		{name: "apostrophe", in: "Tasha's Hideous Laughter", want: "tashas-hideous-laughter"},
		{name: "punctuation runs", in: "Elf (Drow), Dark", want: "elf-drow-dark"},
		{name: "plus sign", in: "Longsword +1", want: "longsword-1"},
		{name: "trailing punctuation", in: "Wish!", want: "wish"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, dnd5e.Slugify(tc.in))
		})
	}
}

func (s *EntitiesTestSuite) TestFullSlug() {
	s.Equal("phb:fireball", dnd5e.FullSlug(nil, "fireball"))
	s.Equal("xge:toll-the-dead", dnd5e.FullSlug([]dnd5e.SourceCitation{{Code: "XGE", Pages: "169"}}, "toll-the-dead"))
}

func (s *EntitiesTestSuite) TestSetIdentity() {
	r := &dnd5e.Record{Name: "Magic Missile", Sources: []dnd5e.SourceCitation{{Code: "PHB"}}}
	r.SetIdentity()
	s.Equal("magic-missile", r.Slug)
	s.Equal("phb:magic-missile", r.FullSlug)

	spell := &dnd5e.Spell{Record: *r}
	s.Equal("phb:magic-missile", spell.GetID())
	s.Equal("spell", spell.GetType())
}

func (s *EntitiesTestSuite) TestAbilityCode() {
	s.Equal(dnd5e.AbilityStrength, dnd5e.AbilityCode("Strength"))
	s.Equal(dnd5e.AbilityDexterity, dnd5e.AbilityCode("dex"))
	s.Equal("", dnd5e.AbilityCode("Strong"))
	s.Equal("", dnd5e.AbilityCode("xx"))
	s.Equal("Wisdom", dnd5e.AbilityName("wis"))
}

func (s *EntitiesTestSuite) TestAbilityModifierAndProficiency() {
	s.Equal(-5, dnd5e.AbilityModifier(1))
	s.Equal(-1, dnd5e.AbilityModifier(8))
	s.Equal(-1, dnd5e.AbilityModifier(9))
	s.Equal(0, dnd5e.AbilityModifier(10))
	s.Equal(2, dnd5e.AbilityModifier(15))
	s.Equal(5, dnd5e.AbilityModifier(20))

	s.Equal(2, dnd5e.ProficiencyBonus(1))
	s.Equal(2, dnd5e.ProficiencyBonus(4))
	s.Equal(3, dnd5e.ProficiencyBonus(5))
	s.Equal(6, dnd5e.ProficiencyBonus(20))
}

func (s *EntitiesTestSuite) TestPointBuyCost() {
	s.Equal(0, dnd5e.PointBuyCost(8))
	s.Equal(5, dnd5e.PointBuyCost(13))
	s.Equal(7, dnd5e.PointBuyCost(14))
	s.Equal(9, dnd5e.PointBuyCost(15))
	s.Equal(-1, dnd5e.PointBuyCost(16))
}

func (s *EntitiesTestSuite) TestRemoveSource() {
	char := &dnd5e.Character{
		Spells: []dnd5e.Grant{
			{Name: "Light", Source: dnd5e.SourceRace},
			{Name: "Fire Bolt", Source: dnd5e.SourceClass},
		},
		Languages: []dnd5e.Grant{
			{Name: "Common", Source: dnd5e.SourceRace},
			{Name: "Elvish", Source: dnd5e.SourceRace},
			{Name: "Dwarvish", Source: dnd5e.SourceBackground},
		},
		AbilityBonuses: []dnd5e.AbilityGrant{
			{Ability: dnd5e.AbilityDexterity, Value: 2, Source: dnd5e.SourceRace},
		},
		AbilityScores: map[string]int{dnd5e.AbilityDexterity: 14},
		Equipment: []dnd5e.GrantedItem{
			{Name: "Dagger", Quantity: 2, Source: dnd5e.SourceClass},
		},
		Selections: map[string][]string{
			"race:language":       {"Elvish"},
			"background:language": {"Dwarvish"},
		},
	}

	s.Equal(16, char.FinalAbilityScores()[dnd5e.AbilityDexterity])

	char.RemoveSource(dnd5e.SourceRace)

	s.Equal([]string{"Fire Bolt"}, dnd5e.GrantsFrom(char.Spells, dnd5e.SourceClass))
	s.Len(char.Spells, 1)
	s.Len(char.Languages, 1)
	s.True(dnd5e.HasGrant(char.Languages, "Dwarvish"))
	s.Empty(char.AbilityBonuses)
	s.Len(char.Equipment, 1)
	s.NotContains(char.Selections, "race:language")
	s.Contains(char.Selections, "background:language")
	s.Equal(14, char.FinalAbilityScores()[dnd5e.AbilityDexterity])
}

func (s *EntitiesTestSuite) TestOptionalFeatureCount() {
	char := &dnd5e.Character{Features: []dnd5e.Grant{
		{Name: "Defense", Type: "optional_feature", ChoiceID: "class:fighter:optional_feature:fighting_style"},
		{Name: "Parry", Type: "optional_feature", ChoiceID: "subclass:fighter:optional_feature:maneuver"},
		{Name: "Riposte", Type: "optional_feature", ChoiceID: "subclass:fighter:optional_feature:maneuver"},
		{Name: "Feint", Type: "optional_feature", ChoiceID: "level_up:fighter:7:optional_feature:maneuver"},
		{Name: "Second Wind", Type: "class_feature"},
	}}

	s.Equal(3, char.OptionalFeatureCount("maneuver"))
	s.Equal(1, char.OptionalFeatureCount("fighting_style"))
	s.Zero(char.OptionalFeatureCount("metamagic"))
}

func (s *EntitiesTestSuite) TestSubclassLevel() {
	class := &dnd5e.CharacterClass{
		Subclasses: []dnd5e.Subclass{
			{Name: "Champion", Features: []dnd5e.ClassFeature{{Level: 7}, {Level: 3}}},
			{Name: "Battle Master", Features: []dnd5e.ClassFeature{{Level: 3}}},
		},
	}
	s.Equal(3, class.SubclassLevel())
	s.Equal(0, (&dnd5e.CharacterClass{}).SubclassLevel())
}

func (s *EntitiesTestSuite) TestPendingChoiceOptions() {
	choice := &dnd5e.PendingChoice{
		ID:      dnd5e.ChoiceID(dnd5e.SourceClass, "fighter", "skills"),
		Options: []dnd5e.ChoiceOption{{ID: "Athletics"}, {ID: "Perception"}},
	}
	s.Equal("class", dnd5e.ChoiceSource(choice.ID))
	s.True(choice.HasOption("athletics"))
	s.False(choice.HasOption("Arcana"))
	s.Equal([]string{"Athletics", "Perception"}, choice.OptionIDs())
}

func TestEntitiesTestSuite(t *testing.T) {
	suite.Run(t, new(EntitiesTestSuite))
}
