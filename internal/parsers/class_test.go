package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type ClassParserTestSuite struct {
	suite.Suite
	parser *parsers.ClassParser
}

func (s *ClassParserTestSuite) SetupTest() {
	s.parser = parsers.NewClassParser()
}

const fighterXML = `<class>
	<name>Fighter</name>
	<hd>10</hd>
	<proficiency>Strength, Constitution, Acrobatics, Athletics, Perception</proficiency>
	<numSkills>2</numSkills>
	<armor>Light Armor, Medium Armor, Heavy Armor, Shields</armor>
	<weapons>Simple Weapons, Martial Weapons</weapons>
	<tools>None</tools>
	<wealth>5d4x10</wealth>
	<autolevel level="1">
		<feature>
			<name>Starting Fighter</name>
			<text>As a 1st level Fighter, you begin play with 10 + your Constitution modifier hit points.</text>
			<text>You start with the following equipment, in addition to the equipment granted by your background:</text>
			<text>• (a) chain mail or (b) leather armor, longbow, and 20 arrows</text>
			<text>• a martial weapon and a shield</text>
			<text>• any two simple weapons</text>
			<text>Source: Player's Handbook (2014) p. 70</text>
		</feature>
		<feature>
			<name>Multiclass Fighter</name>
			<text>To multiclass as a Fighter, you must meet the following prerequisites:</text>
			<text>Ability Score Minimum:</text>
			<text>• Strength 13, or</text>
			<text>• Dexterity 13</text>
		</feature>
		<feature>
			<name>Second Wind</name>
			<text>You have a limited well of stamina. Once you use this feature, you must finish a short or long rest before you can use it again.</text>
		</feature>
		<counter>
			<name>Second Wind</name>
			<value>1</value>
			<reset>S</reset>
		</counter>
	</autolevel>
	<autolevel level="3">
		<feature>
			<name>Martial Archetype: Champion</name>
			<text>The archetypal Champion focuses on raw physical power.</text>
		</feature>
		<feature>
			<name>Improved Critical (Champion)</name>
			<text>Your weapon attacks score a critical hit on a roll of 19 or 20.</text>
		</feature>
	</autolevel>
	<autolevel level="4" scoreImprovement="YES">
		<feature>
			<name>Ability Score Improvement</name>
			<text>You can increase one ability score of your choice by 2.</text>
		</feature>
	</autolevel>
</class>`

func (s *ClassParserTestSuite) TestParseFighter() {
	classes, err := s.parser.ParseBytes(compendium(fighterXML))
	s.Require().NoError(err)
	s.Require().Len(classes, 1)

	fighter := classes[0]
	s.Equal("phb:fighter", fighter.FullSlug)
	s.Equal(10, fighter.HitDie)
	s.Empty(fighter.SpellcastingAbility)
	s.Equal("Martial Archetype", fighter.Archetype)
	s.Equal(2, fighter.SkillChoices)
	s.Equal("5d4x10", fighter.StartingWealth)
	s.Equal([]dnd5e.SourceCitation{{Code: "PHB", Pages: "70"}}, fighter.Sources)

	s.Run("proficiencies", func() {
		var armor, weapons, saves, skills []dnd5e.Proficiency
		for _, p := range fighter.Proficiencies {
			switch p.Type {
			case dnd5e.ProficiencyTypeArmor:
				armor = append(armor, p)
			case dnd5e.ProficiencyTypeWeapon:
				weapons = append(weapons, p)
			case dnd5e.ProficiencyTypeSavingThrow:
				saves = append(saves, p)
			case dnd5e.ProficiencyTypeSkill:
				skills = append(skills, p)
			}
		}
		s.Len(armor, 4)
		s.Len(weapons, 2)
		s.Equal([]string{"Strength", "Constitution"}, fighter.SavingThrowProficiencies())
		s.Len(saves, 2)
		s.Require().Len(skills, 3)
		for _, p := range skills {
			s.True(p.IsChoice)
			s.Equal("skill_choice_1", p.ChoiceGroup)
		}
		s.Equal(2, skills[0].Quantity)
		s.Zero(skills[1].Quantity)
	})

	s.Run("multiclass requirements", func() {
		s.Equal([]dnd5e.MulticlassRequirement{
			{Ability: dnd5e.AbilityStrength, Minimum: 13, IsAlternative: true},
			{Ability: dnd5e.AbilityDexterity, Minimum: 13, IsAlternative: true},
		}, fighter.MulticlassRequirements)
	})

	s.Run("subclasses", func() {
		s.Require().Len(fighter.Subclasses, 1)
		champion := fighter.Subclasses[0]
		s.Equal("Champion", champion.Name)
		s.Len(champion.Features, 2)
		s.Equal(3, fighter.SubclassLevel())

		var names []string
		for _, f := range fighter.Features {
			names = append(names, f.Name)
		}
		s.Equal([]string{"Starting Fighter", "Multiclass Fighter", "Second Wind", "Ability Score Improvement"}, names)
		s.Equal(dnd5e.ResetShortRest, fighter.Features[2].ResetsOn)
		s.True(fighter.Features[3].GrantsASI)
	})

	s.Run("counters", func() {
		s.Equal([]dnd5e.Counter{{Name: "Second Wind", Level: 1, Value: 1, ResetTiming: dnd5e.ResetShortRest}}, fighter.Counters)
	})

	s.Run("starting equipment", func() {
		s.Equal([]dnd5e.EquipmentItem{
			{Name: "martial", Quantity: 1, Category: "martial"},
			{Name: "shield", Quantity: 1},
		}, fighter.Equipment)

		s.Require().Len(fighter.EquipmentChoices, 2)
		armor := fighter.EquipmentChoices[0]
		s.Equal(1, armor.Group)
		s.Require().Len(armor.Options, 2)
		s.Equal("a", armor.Options[0].Letter)
		s.Equal([]dnd5e.EquipmentItem{{Name: "chain mail", Quantity: 1}}, armor.Options[0].Items)
		s.Equal([]dnd5e.EquipmentItem{
			{Name: "leather armor", Quantity: 1},
			{Name: "longbow", Quantity: 1},
			{Name: "arrows", Quantity: 20},
		}, armor.Options[1].Items)

		simple := fighter.EquipmentChoices[1]
		s.Equal(2, simple.Group)
		s.Equal([]dnd5e.EquipmentItem{{Name: "simple", Quantity: 2, Category: "simple"}}, simple.Options[0].Items)
	})
}

func (s *ClassParserTestSuite) TestSpellcastingProgression() {
	classes, err := s.parser.ParseBytes(compendium(`<class>
		<name>Bard</name>
		<hd>8</hd>
		<proficiency>Dexterity, Charisma, Acrobatics, Arcana</proficiency>
		<numSkills>3</numSkills>
		<tools>Three musical instruments of your choice</tools>
		<spellAbility>Charisma</spellAbility>
		<autolevel level="1">
			<slots>2,2</slots>
			<counter><name>Spells Known</name><value>4</value></counter>
		</autolevel>
		<autolevel level="2">
			<slots>2,3</slots>
			<counter><name>Spells Known</name><value>5</value></counter>
		</autolevel>
	</class>`))
	s.Require().NoError(err)
	bard := classes[0]

	s.Equal("Charisma", bard.SpellcastingAbility)
	s.Equal([]dnd5e.SpellProgression{
		{Level: 1, CantripsKnown: 2, SpellsKnown: 4, Slots: [9]int{2}},
		{Level: 2, CantripsKnown: 2, SpellsKnown: 5, Slots: [9]int{3}},
	}, bard.SpellProgression)

	row, ok := bard.ProgressionAt(2)
	s.True(ok)
	s.Equal(1, row.MaxSlotLevel())

	tools := bard.Proficiencies[0]
	s.Equal(dnd5e.ProficiencyTypeTool, tools.Type)
	s.True(tools.IsChoice)
	s.Equal("tool_choice_1", tools.ChoiceGroup)
	s.Equal(3, tools.Quantity)
	for _, p := range bard.Proficiencies[1:] {
		if p.Type == dnd5e.ProficiencyTypeSkill {
			s.Equal("skill_choice_2", p.ChoiceGroup)
		}
	}
}

func (s *ClassParserTestSuite) TestOptionalSlotsBelongToSubclass() {
	classes, err := s.parser.ParseBytes(compendium(`<class>
		<name>Fighter</name>
		<hd>10</hd>
		<spellAbility>Intelligence</spellAbility>
		<autolevel level="3">
			<slots optional="YES">2,2</slots>
			<feature><name>Martial Archetype: Eldritch Knight</name><text>Eldritch Knights combine martial mastery with magic.</text></feature>
			<feature><name>Spellcasting (Eldritch Knight)</name><text>You have learned to cast spells.</text></feature>
		</autolevel>
	</class>`))
	s.Require().NoError(err)
	fighter := classes[0]

	s.Empty(fighter.SpellcastingAbility)
	s.Empty(fighter.SpellProgression)
	s.Require().Len(fighter.Subclasses, 1)

	knight := fighter.Subclasses[0]
	s.Equal("Eldritch Knight", knight.Name)
	s.Equal("Intelligence", knight.SpellcastingAbility)
	s.Equal([]dnd5e.SpellProgression{{Level: 3, CantripsKnown: 2, Slots: [9]int{2}}}, knight.SpellProgression)
	s.Len(knight.Features, 2)
	s.Empty(fighter.Features)
}

func (s *ClassParserTestSuite) TestSecretLanguage() {
	classes, err := s.parser.ParseBytes(compendium(`<class>
		<name>Rogue</name>
		<hd>8</hd>
		<autolevel level="1">
			<feature><name>Thieves' Cant</name><text>During your rogue training you learned thieves' cant.</text></feature>
			<feature><name>Sneak Attack (2/turn)</name><text>You know how to strike subtly.</text></feature>
		</autolevel>
	</class>`))
	s.Require().NoError(err)
	rogue := classes[0]

	s.Equal([]dnd5e.LanguageGrant{{Name: "Thieves' Cant"}}, rogue.Languages)
	s.Empty(rogue.Subclasses)
	s.Len(rogue.Features, 2)
}

func TestClassParserSuite(t *testing.T) {
	suite.Run(t, new(ClassParserTestSuite))
}
