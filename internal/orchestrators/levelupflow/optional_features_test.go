package levelupflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type OptionalFeaturesTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
}

func (s *OptionalFeaturesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 17)
}

func (s *OptionalFeaturesTestSuite) runner(rules *config.Rules) *levelupflow.OptionalFeatureRunner {
	runner, err := levelupflow.NewOptionalFeatureRunner(&wizardflow.RunnerConfig{
		Service:     s.wizard.Service,
		Reports:     s.wizard.Store,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("opt"),
	}, rules)
	s.Require().NoError(err)
	return runner
}

func (s *OptionalFeaturesTestSuite) TestFighterTracks() {
	report, err := s.runner(nil).Run(s.ctx, &levelupflow.OptionalFeatureInput{Class: testutils.ClassFighter, TargetLevel: 3, Seed: 40})
	s.Require().NoError(err)

	byFeature := make(map[string]*levelupflow.OptionalFeatureResult)
	for _, res := range report.Results {
		byFeature[res.Feature] = res
	}
	s.Require().Len(byFeature, 4)

	style := byFeature["fighting_style"]
	s.Equal(wizardflow.StatusPassed, style.Status, style.Error)
	s.Equal([]levelupflow.FeatureCheck{
		{Level: 1, Expected: 1, Actual: 1},
		{Level: 3, Expected: 1, Actual: 1},
	}, style.Checks)

	maneuver := byFeature["maneuver"]
	s.Equal(wizardflow.StatusPassed, maneuver.Status, maneuver.Error)
	s.Equal([]levelupflow.FeatureCheck{{Level: 3, Expected: 3, Actual: 3}}, maneuver.Checks)
	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: maneuver.CharacterID})
	s.Require().NoError(err)
	s.Equal("battle-master", got.Character.ClassLink(testutils.ClassFighter).SubclassSlug)

	// no arcane archer or rune knight in the seeded compendium
	s.Equal(wizardflow.StatusSkipped, byFeature["arcane_shot"].Status)
	s.Equal(wizardflow.StatusSkipped, byFeature["rune"].Status)

	s.Equal(2, report.Passed)
	s.Equal(2, report.Skipped)
	s.True(report.Succeeded())

	rows, err := s.wizard.Store.ListReports(s.ctx, levelupflow.OptionalFeaturesReportKind, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(2, rows[0].Passed)
	s.Contains(report.Table(true), "maneuver")
}

func (s *OptionalFeaturesTestSuite) TestCountMismatchFails() {
	rules := &config.Rules{OptionalFeatures: map[string]config.FeatureTrack{
		"fighting_style": {Name: "Fighting Styles", Class: testutils.ClassFighter, Progression: map[int]int{1: 1, 2: 2}},
	}}

	report, err := s.runner(rules).Run(s.ctx, &levelupflow.OptionalFeatureInput{TargetLevel: 2, Seed: 41, Cleanup: true})
	s.Require().NoError(err)

	s.Require().Len(report.Results, 1)
	res := report.Results[0]
	s.Equal(wizardflow.StatusFailed, res.Status)
	s.Equal([]levelupflow.FeatureCheck{
		{Level: 1, Expected: 1, Actual: 1},
		{Level: 2, Expected: 2, Actual: 1},
	}, res.Checks)
	s.Contains(res.Error, "level 2 has 1 fighting_style, want 2")
	s.False(report.Succeeded())

	_, err = s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: res.CharacterID})
	s.True(errors.IsNotFound(err))
}

func (s *OptionalFeaturesTestSuite) TestUnknownClass() {
	_, err := s.runner(nil).Run(s.ctx, &levelupflow.OptionalFeatureInput{Class: "bard"})
	s.True(errors.IsNotFound(err))

	_, err = s.runner(nil).Run(s.ctx, &levelupflow.OptionalFeatureInput{TargetLevel: 21})
	s.True(errors.IsInvalidArgument(err))
}

func TestOptionalFeaturesTestSuite(t *testing.T) {
	suite.Run(t, new(OptionalFeaturesTestSuite))
}
