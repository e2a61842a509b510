package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type MonsterParserTestSuite struct {
	suite.Suite
	parser *parsers.MonsterParser
}

func (s *MonsterParserTestSuite) SetupTest() {
	s.parser = parsers.NewMonsterParser()
}

const dragonXML = `<monster>
	<name>Ancient Red Dragon</name>
	<size>G</size>
	<type>dragon</type>
	<alignment>chaotic evil</alignment>
	<ac>22 (natural armor)</ac>
	<hp>507 (26d20+234)</hp>
	<speed>40 ft., climb 40 ft., fly 80 ft.</speed>
	<str>30</str><dex>10</dex><con>29</con><int>18</int><wis>15</wis><cha>27</cha>
	<save>Dex +7, Con +16, Wis +9, Cha +15</save>
	<skill>Perception +16, Stealth +7</skill>
	<immune>fire</immune>
	<senses>blindsight 60 ft., darkvision 120 ft.</senses>
	<passive>26</passive>
	<languages>Common, Draconic</languages>
	<cr>24</cr>
	<trait>
		<name>Legendary Resistance (3/Day)</name>
		<text>If the dragon fails a saving throw, it can choose to succeed instead.</text>
	</trait>
	<action>
		<name>Bite</name>
		<text>Melee Weapon Attack: +17 to hit, reach 15 ft., one target.</text>
		<attack>Bite|17|2d10+10</attack>
	</action>
	<action>
		<name>Fire Breath (Recharge 5-6)</name>
		<text>The dragon exhales fire in a 90-foot cone.</text>
		<recharge>5-6</recharge>
	</action>
	<legendary>
		<name>Detect</name>
		<text>The dragon makes a Wisdom (Perception) check.</text>
	</legendary>
	<legendary>
		<name>Wing Attack (Costs 2 Actions)</name>
		<text>The dragon beats its wings.</text>
	</legendary>
	<legendary category="Lair">
		<name>Magma Eruption</name>
		<text>Magma erupts from a point on the ground.</text>
	</legendary>
	<description>Source: Monster Manual p. 98</description>
	<environment>mountain, hill</environment>
</monster>`

func (s *MonsterParserTestSuite) TestParseDragon() {
	monsters, err := s.parser.ParseBytes(compendium(dragonXML))
	s.Require().NoError(err)
	s.Require().Len(monsters, 1)

	m := monsters[0]
	s.Equal("mm:ancient-red-dragon", m.FullSlug)
	s.Equal([]dnd5e.SourceCitation{{Code: "MM", Pages: "98"}}, m.Sources)
	s.Equal("G", m.SizeCode)
	s.Equal(22, m.ArmorClass)
	s.Equal("natural armor", m.ArmorType)
	s.Equal(507, m.HitPoints)
	s.Equal("26d20+234", m.HitDice)
	s.Equal(dnd5e.MonsterSpeed{Walk: 40, Climb: 40, Fly: 80}, m.Speed)
	s.Equal(30, m.AbilityScores[dnd5e.AbilityStrength])
	s.Equal(27, m.AbilityScores[dnd5e.AbilityCharisma])
	s.Equal(map[string]int{"DEX": 7, "CON": 16, "WIS": 9, "CHA": 15}, m.SavingThrows)
	s.Equal(map[string]int{"Perception": 16, "Stealth": 7}, m.Skills)
	s.Equal("fire", m.DamageImmunities)
	s.Equal([]dnd5e.Sense{{Type: "blindsight", Range: 60}, {Type: "darkvision", Range: 120}}, m.Senses)
	s.Equal(26, m.PassivePerception)
	s.Equal("24", m.ChallengeRating)
	s.Equal(62000, m.ExperiencePoints)
	s.Empty(m.Description)

	s.Require().Len(m.Traits, 1)
	s.Equal(dnd5e.ActionKindTrait, m.Traits[0].Kind)

	s.Require().Len(m.Actions, 2)
	s.Equal([]string{"Bite|17|2d10+10"}, m.Actions[0].AttackData)
	s.Equal("5-6", m.Actions[1].Recharge)
	s.Equal(1, m.Actions[1].SortOrder)

	s.Require().Len(m.LegendaryActions, 3)
	s.Equal(1, m.LegendaryActions[0].ActionCost)
	s.Equal(2, m.LegendaryActions[1].ActionCost)
	s.False(m.LegendaryActions[1].IsLairAction)
	s.True(m.LegendaryActions[2].IsLairAction)
	s.Equal("lair", m.LegendaryActions[2].Category)
}

func (s *MonsterParserTestSuite) TestSpellcaster() {
	monsters, err := s.parser.ParseBytes(compendium(`<monster>
		<name>Mage</name>
		<size>M</size>
		<type>humanoid (any race)</type>
		<ac>12 (15 with mage armor)</ac>
		<hp>40 (9d8)</hp>
		<speed>30 ft.</speed>
		<cr>6</cr>
		<spells>fire bolt, mage hand, fireball</spells>
		<slots>4,3,3</slots>
		<trait>
			<name>Spellcasting</name>
			<text>The mage is a 9th-level spellcaster.</text>
			<text>Source: Monster Manual p. 347</text>
		</trait>
	</monster>`))
	s.Require().NoError(err)
	m := monsters[0]

	s.Equal([]string{"fire bolt", "mage hand", "fireball"}, m.Spells)
	s.Equal([]int{4, 3, 3}, m.SpellSlots)
	s.Equal("15 with mage armor", m.ArmorType)
	s.Equal(2300, m.ExperiencePoints)
	s.Equal("mm:mage", m.FullSlug)
	s.Nil(m.SavingThrows)
}

func (s *MonsterParserTestSuite) TestParseMonsterSpeed() {
	testCases := []struct {
		name  string
		input string
		want  dnd5e.MonsterSpeed
	}{
		{name: "walk only", input: "30 ft.", want: dnd5e.MonsterSpeed{Walk: 30}},
		{name: "hover", input: "0 ft., fly 30 ft. (hover)", want: dnd5e.MonsterSpeed{Fly: 30, CanHover: true}},
		{name: "swim and burrow", input: "10 ft., burrow 20 ft., swim 40 ft.", want: dnd5e.MonsterSpeed{Walk: 10, Burrow: 20, Swim: 40}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, parsers.ParseMonsterSpeed(tc.input))
		})
	}
}

func (s *MonsterParserTestSuite) TestParseMonsterSenses() {
	senses := parsers.ParseMonsterSenses("blindsight 30 ft. (blind beyond this radius), tremorsense 60 ft.")
	s.Equal([]dnd5e.Sense{
		{Type: "blindsight", Range: 30, BlindBeyond: true},
		{Type: "tremorsense", Range: 60},
	}, senses)
}

func (s *MonsterParserTestSuite) TestLegendaryActionCost() {
	s.Equal(1, parsers.LegendaryActionCost("Tail Attack"))
	s.Equal(3, parsers.LegendaryActionCost("Psychic Drain (Costs 3 Actions)"))
	s.Equal(2, parsers.LegendaryActionCost("Wing Attack (costs 2 actions)"))
}

func TestMonsterParserSuite(t *testing.T) {
	suite.Run(t, new(MonsterParserTestSuite))
}
