package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy"
)

type ItemParserTestSuite struct {
	suite.Suite
	logs   *observer.ObservedLogs
	parser *parsers.ItemParser
}

func (s *ItemParserTestSuite) SetupTest() {
	core, logs := observer.New(zap.DebugLevel)
	s.logs = logs
	s.parser = parsers.NewItemParser(&parsers.ItemParserConfig{Logger: zap.New(core)})
}

func (s *ItemParserTestSuite) parseOne(body string) *dnd5e.Item {
	items, err := s.parser.ParseBytes(compendium(body))
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	return items[0]
}

func (s *ItemParserTestSuite) TestHeavyArmor() {
	item := s.parseOne(`<item>
		<name>Plate Armor</name>
		<type>HA</type>
		<weight>65</weight>
		<value>1500</value>
		<ac>18</ac>
		<strength>15</strength>
		<stealth>YES</stealth>
		<text>If the wearer has a Strength score lower than 15, their speed is reduced by 10 feet.</text>
		<text>Source: Player's Handbook (2014) p. 145</text>
	</item>`)

	s.Equal("phb:plate-armor", item.FullSlug)
	s.Equal("common", item.Rarity)
	s.False(item.IsMagic)
	s.Require().NotNil(item.ArmorClass)
	s.Equal(18, *item.ArmorClass)
	s.Require().NotNil(item.StrengthRequirement)
	s.Equal(15, *item.StrengthRequirement)
	s.True(item.StealthDisadvantage)
	s.Require().NotNil(item.CostCP)
	s.Equal(150000, *item.CostCP)
	s.Require().NotNil(item.Weight)
	s.InDelta(65.0, *item.Weight, 0.001)

	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierSkill, SkillName: "Stealth", AbilityCode: dnd5e.AbilityDexterity, Value: "disadvantage"},
		{Category: parsers.ModifierSpeed, Value: "-10", Condition: "strength < 15"},
	}, item.Modifiers)
	s.Empty(item.Attributes)
	s.Zero(s.logs.Len())
}

func (s *ItemParserTestSuite) TestRangedWeapon() {
	item := s.parseOne(`<item>
		<name>Longbow</name>
		<type>R</type>
		<weight>2</weight>
		<value>50</value>
		<dmg1>1d8</dmg1>
		<dmgType>P</dmgType>
		<property>A, H, 2H</property>
		<range>150/600</range>
		<text>Proficiency: martial, longbow</text>
	</item>`)

	s.Equal("1d8", item.DamageDice)
	s.Equal("P", item.DamageTypeCode)
	s.Equal([]string{"A", "H", "2H"}, item.Properties)
	s.Require().NotNil(item.RangeNormal)
	s.Require().NotNil(item.RangeLong)
	s.Equal(150, *item.RangeNormal)
	s.Equal(600, *item.RangeLong)
	s.Equal(5000, *item.CostCP)
	s.Require().Len(item.Proficiencies, 2)
	s.Equal("martial", item.Proficiencies[0].Name)
	s.False(item.Proficiencies[0].Grants)
}

func (s *ItemParserTestSuite) TestSetScoreAndAttunement() {
	item := s.parseOne(`<item>
		<name>Belt of Hill Giant Strength</name>
		<type>W</type>
		<magic>1</magic>
		<detail>rare (requires attunement)</detail>
		<text>While wearing this belt, your Strength score is 21.</text>
	</item>`)

	s.True(item.IsMagic)
	s.Equal("rare", item.Rarity)
	s.True(item.RequiresAttunement)
	s.Equal([]dnd5e.Modifier{
		{Category: parsers.ModifierAbilityScore, Value: "set:21", AbilityCode: dnd5e.AbilityStrength},
	}, item.Modifiers)
}

func (s *ItemParserTestSuite) TestChargedStaffRunsStrategies() {
	item := s.parseOne(`<item>
		<name>Staff of Fire</name>
		<type>ST</type>
		<magic>1</magic>
		<detail>very rare (requires attunement by a druid, sorcerer, warlock, or wizard)</detail>
		<text>You have resistance to fire damage while you hold this staff.</text>
		<text>The staff has 10 charges. While holding it, you can use an action to expend 1 or more of its charges to cast one of the following spells from it, using your spell save DC: burning hands (1 charge), fireball (3 charges), or wall of fire (4 charges).</text>
		<text>The staff regains 1d6 + 4 expended charges daily at dawn.</text>
	</item>`)

	s.Equal("very rare", item.Rarity)
	s.Require().NotNil(item.ChargesMax)
	s.Equal(10, *item.ChargesMax)
	s.Equal("1d6+4", item.RechargeFormula)
	s.Equal(dnd5e.ResetDawn, item.RechargeTiming)
	s.Contains(item.Modifiers, dnd5e.Modifier{
		Category:       parsers.ModifierDamageResist,
		Value:          "resistance",
		DamageTypeName: "Fire",
		Condition:      "while you hold this staff",
	})

	s.Require().Len(item.Spells, 3)
	s.Equal("Burning Hands", item.Spells[0].SpellName)
	s.Equal(3, item.Spells[1].ChargesCostMin)

	entries := s.logs.FilterMessage("strategy applied").All()
	s.Require().Len(entries, 1)
	s.Equal("ChargedItemStrategy", entries[0].ContextMap()["strategy"])
	s.Equal("Staff of Fire", entries[0].ContextMap()["item"])
}

func (s *ItemParserTestSuite) TestCustomStrategies() {
	parser := parsers.NewItemParser(&parsers.ItemParserConfig{
		Strategies: []itemstrategy.Strategy{itemstrategy.NewPotion()},
	})
	items, err := parser.ParseBytes(compendium(`<item>
		<name>Staff of Fire</name>
		<type>ST</type>
		<magic>1</magic>
		<text>The staff has 10 charges. You can cast fireball (3 charges).</text>
	</item>`))
	s.Require().NoError(err)
	s.Empty(items[0].Spells)
}

func (s *ItemParserTestSuite) TestRollAbilities() {
	item := s.parseOne(`<item>
		<name>Potion of Healing</name>
		<type>P</type>
		<magic>1</magic>
		<detail>common</detail>
		<text>You regain 2d4 + 2 hit points when you drink this potion.</text>
		<roll description="Healing">2d4+2</roll>
	</item>`)

	s.Equal([]dnd5e.ItemAbility{
		{AbilityType: "roll", Name: "Healing", Description: "2d4+2", RollFormula: "2d4+2"},
	}, item.Abilities)
	s.Equal("healing", item.Attributes["effect_category"])
}

func TestItemParserSuite(t *testing.T) {
	suite.Run(t, new(ItemParserTestSuite))
}
