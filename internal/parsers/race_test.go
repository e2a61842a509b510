package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type RaceParserTestSuite struct {
	suite.Suite
	parser *parsers.RaceParser
}

func (s *RaceParserTestSuite) SetupTest() {
	s.parser = parsers.NewRaceParser()
}

func (s *RaceParserTestSuite) parse(body string) []*dnd5e.Race {
	races, err := s.parser.ParseBytes(compendium(body))
	s.Require().NoError(err)
	return races
}

func (s *RaceParserTestSuite) TestHillDwarf() {
	races := s.parse(`<race>
		<name>Dwarf (Hill)</name>
		<size>M</size>
		<speed>25</speed>
		<ability>Con 2, Wis 1</ability>
		<weapons>Battleaxe, Handaxe</weapons>
		<resist>poison</resist>
		<trait category="species">
			<name>Dwarven Resilience</name>
			<text>You have advantage on saving throws against poison, and you have resistance against poison damage.</text>
			<text>Source: Player's Handbook (2014) p. 20</text>
		</trait>
		<trait category="species">
			<name>Languages</name>
			<text>You can speak, read, and write Common and Dwarvish. Dwarvish is full of hard consonants.</text>
		</trait>
		<trait category="subspecies">
			<name>Dwarven Toughness</name>
			<text>Your hit point maximum increases by 1, and it increases by 1 every time you gain a level.</text>
		</trait>
	</race>`)
	s.Require().Len(races, 1)
	dwarf := races[0]

	s.Equal("Dwarf (Hill)", dwarf.Name)
	s.Equal("Dwarf", dwarf.BaseRaceName)
	s.Equal("phb:dwarf-hill", dwarf.FullSlug)
	s.Equal("M", dwarf.SizeCode)
	s.Equal(25, dwarf.Speed)
	s.Equal([]dnd5e.AbilityBonus{
		{Ability: dnd5e.AbilityConstitution, Value: 2},
		{Ability: dnd5e.AbilityWisdom, Value: 1},
	}, dwarf.AbilityBonuses)
	s.Len(dwarf.Proficiencies, 2)
	s.Equal(dnd5e.ProficiencyTypeWeapon, dwarf.Proficiencies[0].Type)
	s.Equal([]string{"poison"}, dwarf.Resistances)
	s.Equal([]dnd5e.LanguageGrant{{Name: "Common"}, {Name: "Dwarvish"}}, dwarf.Languages)
	s.Equal([]dnd5e.ConditionEffect{{Condition: "poisoned", EffectType: "advantage"}}, dwarf.Conditions)
	s.Len(dwarf.BaseTraits, 2)
	s.Require().Len(dwarf.SubraceTraits, 1)
	s.Equal("Dwarven Toughness", dwarf.SubraceTraits[0].Name)
	s.Nil(dwarf.Spellcasting)
}

func (s *RaceParserTestSuite) TestChoices() {
	races := s.parse(`<race>
		<name>Half-Elf</name>
		<size>M</size>
		<speed>30</speed>
		<ability>Cha 2</ability>
		<trait>
			<name>Ability Score Increase</name>
			<text>Your Charisma score increases by 2, and two other ability scores of your choice increase by 1.</text>
		</trait>
		<trait>
			<name>Skill Versatility</name>
			<text>You gain proficiency in two skills of your choice.</text>
		</trait>
		<trait>
			<name>Languages</name>
			<text>You can speak, read, and write Common, Elvish, and one extra language of your choice.</text>
		</trait>
	</race>`)
	elf := races[0]

	s.Empty(elf.BaseRaceName)
	s.Equal([]dnd5e.AbilityBonus{
		{IsChoice: true, ChoiceCount: 2, Value: 1, ChoiceConstraint: "different"},
	}, elf.AbilityChoices)
	s.Equal([]dnd5e.Proficiency{{
		Type:        dnd5e.ProficiencyTypeSkill,
		Grants:      true,
		IsChoice:    true,
		ChoiceGroup: "skill_choice_1",
		Quantity:    2,
	}}, elf.Proficiencies)
	s.Equal([]dnd5e.LanguageGrant{
		{IsChoice: true, Quantity: 1},
		{Name: "Common"},
		{Name: "Elvish"},
	}, elf.Languages)
}

func (s *RaceParserTestSuite) TestCantripChoice() {
	races := s.parse(`<race>
		<name>Elf (High)</name>
		<spellAbility>Intelligence</spellAbility>
		<trait category="subspecies">
			<name>Cantrip</name>
			<text>You know one cantrip of your choice from the wizard spell list. Intelligence is your spellcasting ability for it.</text>
		</trait>
	</race>`)
	sc := races[0].Spellcasting
	s.Require().NotNil(sc)
	s.Equal(dnd5e.AbilityIntelligence, sc.Ability)
	s.Equal([]dnd5e.InnateSpell{{IsCantrip: true, IsChoice: true, ChoiceCount: 1, ClassName: "wizard"}}, sc.Spells)
}

func (s *RaceParserTestSuite) TestVariantBundle() {
	races := s.parse(`<race>
		<name>Tiefling, Variants</name>
		<size>M</size>
		<speed>30</speed>
		<spellAbility>Charisma</spellAbility>
		<trait category="species">
			<name>Hellish Resistance</name>
			<text>You have resistance to fire damage.</text>
			<text>Source: Sword Coast Adventurer's Guide p. 118</text>
		</trait>
		<trait category="species">
			<name>Infernal Legacy</name>
			<text>You know the thaumaturgy cantrip.</text>
		</trait>
		<trait category="subspecies">
			<name>Variant: Devil's Tongue</name>
			<text>This trait replaces the Infernal Legacy trait. You know the vicious mockery cantrip.</text>
		</trait>
		<trait category="subspecies">
			<name>Variant: Hellfire</name>
			<text>This trait replaces the Infernal Legacy trait. Once you reach 3rd level, you can cast the burning hands spell once per day as a 2nd-level spell; you regain the ability when you finish a long rest.</text>
		</trait>
		<trait category="subspecies">
			<name>Variant: Appearance</name>
			<text>Your horns are unusually large.</text>
		</trait>
	</race>`)
	s.Require().Len(races, 3)

	names := []string{races[0].Name, races[1].Name, races[2].Name}
	s.Equal([]string{"Feral", "Devil's Tongue", "Hellfire"}, names)
	for _, r := range races {
		s.Equal("Tiefling", r.BaseRaceName)
		s.Equal("SCAG", r.Sources[0].Code)
		s.Equal("Variant: Appearance", r.Traits[len(r.Traits)-1].Name)
	}
	s.Equal("scag:devils-tongue", races[1].FullSlug)

	s.Run("feral keeps the replaced trait", func() {
		var traitNames []string
		for _, t := range races[0].Traits {
			traitNames = append(traitNames, t.Name)
		}
		s.Equal([]string{"Hellish Resistance", "Infernal Legacy", "Variant: Appearance"}, traitNames)
		s.Equal([]dnd5e.InnateSpell{{SpellName: "Thaumaturgy", IsCantrip: true}}, races[0].Spellcasting.Spells)
	})

	s.Run("variants take their own spells", func() {
		s.Equal([]dnd5e.InnateSpell{{SpellName: "Vicious Mockery", IsCantrip: true}}, races[1].Spellcasting.Spells)
		s.Equal([]dnd5e.InnateSpell{{SpellName: "Burning Hands", LevelRequirement: 3, UsageLimit: "1/long rest"}}, races[2].Spellcasting.Spells)
	})
}

func (s *RaceParserTestSuite) TestSplitRaceName() {
	testCases := []struct {
		full     string
		wantBase string
		wantName string
	}{
		{full: "Human", wantBase: "", wantName: "Human"},
		{full: "Dwarf (Hill)", wantBase: "Dwarf", wantName: "Dwarf (Hill)"},
		{full: "Dwarf, Mark of Warding", wantBase: "Dwarf", wantName: "Mark of Warding"},
	}
	for _, tc := range testCases {
		s.Run(tc.full, func() {
			base, name := parsers.SplitRaceName(tc.full)
			s.Equal(tc.wantBase, base)
			s.Equal(tc.wantName, name)
		})
	}
}

func (s *RaceParserTestSuite) TestParseAbilityBonuses() {
	s.Equal([]dnd5e.AbilityBonus{
		{Ability: dnd5e.AbilityStrength, Value: 2},
		{Ability: dnd5e.AbilityCharisma, Value: 1},
	}, parsers.ParseAbilityBonuses("Str +2, Cha 1, Foo 3"))
	s.Nil(parsers.ParseAbilityBonuses(""))
}

func (s *RaceParserTestSuite) TestInnateSpells() {
	spells := parsers.InnateSpells("You know the thaumaturgy cantrip. Once you reach 3rd level, you can cast the hellish rebuke spell as a 2nd-level spell once with this trait; you regain the ability to cast it when you finish a long rest.")
	s.Equal([]dnd5e.InnateSpell{
		{SpellName: "Thaumaturgy", IsCantrip: true},
		{SpellName: "Hellish Rebuke", LevelRequirement: 3, UsageLimit: "1/long rest"},
	}, spells)
	s.Nil(parsers.InnateSpells("You have darkvision."))
}

func TestRaceParserSuite(t *testing.T) {
	suite.Run(t, new(RaceParserTestSuite))
}
