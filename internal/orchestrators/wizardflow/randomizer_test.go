package wizardflow_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type RandomizerTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
	rand   *wizardflow.Randomizer
}

func (s *RandomizerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 1)
	s.rand = wizardflow.NewRandomizer(dice.NewSeededRoller(9), s.wizard.Service, nil)
}

func (s *RandomizerTestSuite) TestIntStaysInRange() {
	for range 200 {
		v := s.rand.Int(3, 6)
		s.GreaterOrEqual(v, 3)
		s.LessOrEqual(v, 6)
	}
	s.Equal(4, s.rand.Int(4, 4))
	s.Equal(4, s.rand.Int(4, 1))
}

func (s *RandomizerTestSuite) TestChanceExtremes() {
	for range 50 {
		s.False(s.rand.Chance(0))
		s.True(s.rand.Chance(100))
	}
}

func (s *RandomizerTestSuite) TestPickN() {
	items := []string{"a", "b", "c", "d", "e"}

	got := wizardflow.PickN(s.rand, items, 3)
	s.Len(got, 3)
	s.Len(slices.Compact(slices.Sorted(slices.Values(got))), 3, "picks must be distinct")

	s.ElementsMatch(items, wizardflow.PickN(s.rand, items, 10))
	s.Equal([]string{"a", "b", "c", "d", "e"}, items, "input must not be shuffled in place")
}

func (s *RandomizerTestSuite) TestPickEmpty() {
	s.Empty(wizardflow.Pick(s.rand, []string{}))
}

func (s *RandomizerTestSuite) TestCallsCountDraws() {
	before := s.rand.Calls()
	s.rand.Intn(10)
	s.rand.Intn(10)
	s.Equal(before+2, s.rand.Calls())
}

func (s *RandomizerTestSuite) TestAbilityScoresDealStandardArray() {
	scores := s.rand.AbilityScores()

	s.Len(scores, len(dnd5e.AbilityCodes))
	values := make([]int, 0, len(scores))
	for _, code := range dnd5e.AbilityCodes {
		values = append(values, scores[code])
	}
	s.ElementsMatch([]int{15, 14, 13, 12, 10, 8}, values)
}

func (s *RandomizerTestSuite) TestDifferentRace() {
	for range 20 {
		race, err := s.rand.DifferentRace(s.ctx, testutils.RaceHuman)
		s.Require().NoError(err)
		s.NotEqual(testutils.RaceHuman, race.Slug)
		s.Contains([]string{testutils.RaceElf, testutils.RaceHalfElf}, race.Slug)
	}
}

func (s *RandomizerTestSuite) TestSubrace() {
	sub, err := s.rand.Subrace(s.ctx, testutils.RaceElf)
	s.Require().NoError(err)
	s.Require().NotNil(sub)
	s.Contains([]string{testutils.SubraceHigh, testutils.SubraceWood}, sub.Slug)

	none, err := s.rand.Subrace(s.ctx, testutils.RaceHuman)
	s.Require().NoError(err)
	s.Nil(none)
}

func (s *RandomizerTestSuite) TestClassByType() {
	for range 20 {
		caster, err := s.rand.Class(s.ctx, wizardflow.ClassTypeCaster)
		s.Require().NoError(err)
		s.True(caster.Spellcaster, "%s is not a caster", caster.Slug)

		martial, err := s.rand.Class(s.ctx, wizardflow.ClassTypeMartial)
		s.Require().NoError(err)
		s.Equal(testutils.ClassFighter, martial.Slug)
	}
}

func (s *RandomizerTestSuite) TestDifferentClassRunsOut() {
	_, err := s.rand.DifferentClass(s.ctx, testutils.ClassFighter, wizardflow.ClassTypeMartial)
	s.Error(err)
}

func (s *RandomizerTestSuite) TestDifferentBackground() {
	for range 20 {
		bg, err := s.rand.DifferentBackground(s.ctx, testutils.BackSage)
		s.Require().NoError(err)
		s.NotEqual(testutils.BackSage, bg.Slug)
	}
}

func (s *RandomizerTestSuite) TestNames() {
	s.NotEmpty(s.rand.Name())
	s.NotEmpty(s.rand.Alignment())

	named := wizardflow.NewRandomizer(dice.NewSeededRoller(1), s.wizard.Service, []string{"Tordek"})
	s.Equal("Tordek", named.Name())
}

func (s *RandomizerTestSuite) TestSameSeedSamePicks() {
	a := wizardflow.NewRandomizer(dice.NewSeededRoller(5), s.wizard.Service, nil)
	b := wizardflow.NewRandomizer(dice.NewSeededRoller(5), s.wizard.Service, nil)
	for range 10 {
		ra, err := a.Race(s.ctx)
		s.Require().NoError(err)
		rb, err := b.Race(s.ctx)
		s.Require().NoError(err)
		s.Equal(ra.Slug, rb.Slug)
	}
}

func TestRandomizerSuite(t *testing.T) {
	suite.Run(t, new(RandomizerTestSuite))
}
