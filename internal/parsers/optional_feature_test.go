package parsers_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type OptionalFeatureParserTestSuite struct {
	suite.Suite
	parser *parsers.OptionalFeatureParser
}

func (s *OptionalFeatureParserTestSuite) SetupTest() {
	s.parser = parsers.NewOptionalFeatureParser()
}

func (s *OptionalFeatureParserTestSuite) TestSpellElements() {
	features, err := s.parser.ParseBytes(compendium(`<spell>
		<name>Invocation: Agonizing Blast</name>
		<classes>Eldritch Invocations</classes>
		<text>Prerequisite: eldritch blast cantrip</text>
		<text>When you cast eldritch blast, add your Charisma modifier to the damage it deals on a hit.</text>
		<text>Source: Player's Handbook (2014) p. 110</text>
	</spell>
	<spell>
		<name>Elemental Discipline: Fangs of the Fire Snake</name>
		<school>EV</school>
		<time>1 action</time>
		<components>V, S (1 ki point)</components>
		<classes>Monk (Way of the Four Elements)</classes>
		<text>Prerequisite: 6th level</text>
		<text>Your reach with unarmed strikes increases by 10 feet.</text>
	</spell>
	<spell>
		<name>Arcane Shot: Banishing Arrow</name>
		<classes>Fighter (Arcane Archer): Arcane Shot</classes>
		<text>You use abjuration magic to try to temporarily banish your target.</text>
	</spell>`))
	s.Require().NoError(err)
	s.Require().Len(features, 3)

	s.Run("invocation", func() {
		blast := features[0]
		s.Equal(dnd5e.OptionalFeatureEldritchInvocation, blast.FeatureType)
		s.Equal("Agonizing Blast", blast.Name)
		s.Equal("phb:agonizing-blast", blast.FullSlug)
		s.Equal("eldritch blast cantrip", blast.PrerequisiteText)
		s.Zero(blast.LevelRequirement)
		s.Equal("When you cast eldritch blast, add your Charisma modifier to the damage it deals on a hit.", blast.Description)
		s.Equal([]dnd5e.ClassAssociation{{Class: "Warlock"}}, blast.Classes)
		s.Empty(blast.ResourceType)
	})

	s.Run("discipline", func() {
		fangs := features[1]
		s.Equal(dnd5e.OptionalFeatureElementalDiscipline, fangs.FeatureType)
		s.Equal(6, fangs.LevelRequirement)
		s.Equal("EV", fangs.SpellSchoolCode)
		s.Equal("1 action", fangs.CastingTime)
		s.Equal(dnd5e.ResourceKiPoints, fangs.ResourceType)
		s.Equal(1, fangs.ResourceCost)
		s.Equal([]dnd5e.ClassAssociation{{Class: "Monk", Subclass: "Way of the Four Elements"}}, fangs.Classes)
		s.NotContains(fangs.Description, "Prerequisite")
	})

	s.Run("arcane shot", func() {
		s.Equal([]dnd5e.ClassAssociation{{Class: "Fighter", Subclass: "Arcane Archer"}}, features[2].Classes)
	})
}

func (s *OptionalFeatureParserTestSuite) TestFeatElements() {
	features, err := s.parser.ParseBytes(compendium(`<feat>
		<name>Metamagic: Twinned Spell</name>
		<text>To be eligible, a spell must be incapable of targeting more than one creature. You can spend a number of sorcery points equal to the spell's level to target a second creature.</text>
	</feat>
	<feat>
		<name>Maneuver: Trip Attack</name>
		<text>When you hit a creature with a weapon attack, you can expend one superiority die to attempt to knock the target down.</text>
	</feat>
	<feat>
		<name>Fighting Style: Archery</name>
		<prerequisite>Fighting Style Feature</prerequisite>
		<text>You gain a +2 bonus to attack rolls you make with ranged weapons.</text>
	</feat>`))
	s.Require().NoError(err)
	s.Require().Len(features, 3)

	twinned := features[0]
	s.Equal(dnd5e.OptionalFeatureMetamagic, twinned.FeatureType)
	s.Equal(dnd5e.ResourceSorceryPoints, twinned.ResourceType)
	s.Equal("spell_level", twinned.CostFormula)
	s.Equal([]dnd5e.ClassAssociation{{Class: "Sorcerer"}}, twinned.Classes)

	trip := features[1]
	s.Equal(dnd5e.ResourceSuperiorityDie, trip.ResourceType)
	s.Equal(1, trip.ResourceCost)
	s.Equal([]dnd5e.ClassAssociation{{Class: "Fighter", Subclass: "Battle Master"}}, trip.Classes)

	archery := features[2]
	s.Equal("Archery", archery.Name)
	s.Equal("Fighting Style Feature", archery.PrerequisiteText)
	s.Len(archery.Classes, 3)
	s.Empty(archery.ResourceType)
}

func (s *OptionalFeatureParserTestSuite) TestFeatureTypeAndName() {
	testCases := []struct {
		full     string
		wantType string
		wantName string
	}{
		{full: "Maneuver: Riposte", wantType: dnd5e.OptionalFeatureManeuver, wantName: "Riposte"},
		{full: "infusion: Bag of Holding", wantType: dnd5e.OptionalFeatureArtificerInfusion, wantName: "Bag of Holding"},
		{full: "Rune: Cloud Rune", wantType: dnd5e.OptionalFeatureRune, wantName: "Cloud Rune"},
		{full: "Devil's Sight", wantType: dnd5e.OptionalFeatureEldritchInvocation, wantName: "Devil's Sight"},
	}
	for _, tc := range testCases {
		s.Run(tc.full, func() {
			featureType, name := parsers.FeatureTypeAndName(tc.full)
			s.Equal(tc.wantType, featureType)
			s.Equal(tc.wantName, name)
		})
	}
}

func TestOptionalFeatureParserSuite(t *testing.T) {
	suite.Run(t, new(OptionalFeatureParserTestSuite))
}
