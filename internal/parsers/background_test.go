package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type BackgroundParserTestSuite struct {
	suite.Suite
	parser *parsers.BackgroundParser
}

func (s *BackgroundParserTestSuite) SetupTest() {
	s.parser = parsers.NewBackgroundParser()
}

const guildArtisanXML = `<background>
	<name>Guild Artisan</name>
	<proficiency>Insight, Persuasion</proficiency>
	<trait>
		<name>Description</name>
		<text>You are a member of an artisan's guild.</text>
		<text>• Skill Proficiencies: Insight, Persuasion</text>
		<text>• Tool Proficiencies: One type of artisan's tools</text>
		<text>• Languages: One of your choice</text>
		<text>• Equipment: A set of artisan's tools (one of your choice), a letter of introduction from your guild, a set of traveler's clothes, and a belt pouch containing 15 gp</text>
		<text>Source: Player's Handbook (2014) p. 51</text>
	</trait>
	<trait>
		<name>Feature: Guild Membership</name>
		<text>Your guild offers lodging and food if necessary.</text>
	</trait>
	<trait>
		<name>Suggested Characteristics</name>
		<text>Guild artisans are among the most ordinary people in the world.
		d6 | Guild Business
		1 | Alchemists and apothecaries
		2-3 | Armorers, locksmiths, and finesmiths</text>
	</trait>
</background>`

func (s *BackgroundParserTestSuite) TestGuildArtisan() {
	backgrounds, err := s.parser.ParseBytes(compendium(guildArtisanXML))
	s.Require().NoError(err)
	s.Require().Len(backgrounds, 1)
	bg := backgrounds[0]

	s.Equal("phb:guild-artisan", bg.FullSlug)
	s.Equal([]dnd5e.SourceCitation{{Code: "PHB", Pages: "51"}}, bg.Sources)

	s.Run("proficiencies", func() {
		s.Equal([]dnd5e.Proficiency{
			{Name: "Insight", Type: dnd5e.ProficiencyTypeSkill, Grants: true},
			{Name: "Persuasion", Type: dnd5e.ProficiencyTypeSkill, Grants: true},
			{Name: "artisan's tools", Type: dnd5e.ProficiencyTypeTool, Grants: true, IsChoice: true, Quantity: 1},
		}, bg.Proficiencies)
	})

	s.Run("languages", func() {
		s.Equal([]dnd5e.LanguageGrant{{IsChoice: true, Quantity: 1}}, bg.Languages)
	})

	s.Run("equipment", func() {
		s.Equal([]dnd5e.EquipmentItem{
			{Name: "artisan's tools", Quantity: 1, IsChoice: true, ChoiceDescription: "one of your choice"},
			{Name: "letter of introduction from your guild", Quantity: 1},
			{Name: "traveler's clothes", Quantity: 1},
			{Name: "belt pouch", Quantity: 1},
			{Name: "gp", Quantity: 15},
		}, bg.Equipment)
	})

	s.Run("traits", func() {
		s.Require().Len(bg.Traits, 3)
		s.Empty(bg.Traits[0].Category)
		s.Equal(parsers.TraitCategoryFeature, bg.Traits[1].Category)
		s.Equal(parsers.TraitCategoryCharacteristics, bg.Traits[2].Category)
		s.NotContains(bg.Traits[0].Description, "Source:")
	})

	s.Run("random tables", func() {
		s.Require().Len(bg.RandomTables, 1)
		table := bg.RandomTables[0]
		s.Equal("Guild Business", table.Name)
		s.Equal("d6", table.DiceType)
		s.Equal("Suggested Characteristics", table.TraitName)
		s.Equal([]dnd5e.RandomTableEntry{
			{RollMin: 1, RollMax: 1, Result: "Alchemists and apothecaries"},
			{RollMin: 2, RollMax: 3, Result: "Armorers, locksmiths, and finesmiths", SortOrder: 1},
		}, table.Entries)
	})
}

func (s *BackgroundParserTestSuite) TestLanguageCount() {
	backgrounds, err := s.parser.ParseBytes(compendium(`<background>
		<name>Acolyte</name>
		<proficiency>Insight, Religion</proficiency>
		<trait>
			<name>Description</name>
			<text>You have spent your life in the service of a temple.</text>
			<text>• Languages: Two of your choice</text>
		</trait>
	</background>`))
	s.Require().NoError(err)
	bg := backgrounds[0]

	s.Equal([]dnd5e.LanguageGrant{{IsChoice: true, Quantity: 2}}, bg.Languages)
	s.Equal([]dnd5e.SourceCitation{{Code: dnd5e.DefaultSourceCode}}, bg.Sources)
	s.Nil(bg.Equipment)
	s.Nil(bg.RandomTables)
}

func (s *BackgroundParserTestSuite) TestBackgroundEquipment() {
	s.Equal([]dnd5e.EquipmentItem{
		{Name: "prayer book", Quantity: 1},
		{Name: "sticks of incense", Quantity: 5},
		{Name: "vestments", Quantity: 1},
		{Name: "belt pouch", Quantity: 1},
		{Name: "gp", Quantity: 15},
	}, parsers.BackgroundEquipment("• Equipment: A prayer book, 5 sticks of incense, vestments, and a belt pouch containing 15 gp"))
	s.Nil(parsers.BackgroundEquipment("You have spent your life in the service of a temple."))
}

func TestBackgroundParserSuite(t *testing.T) {
	suite.Run(t, new(BackgroundParserTestSuite))
}
