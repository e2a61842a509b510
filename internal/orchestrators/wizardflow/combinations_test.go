package wizardflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type CombinationsTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
	runner *wizardflow.CombinationRunner
}

func (s *CombinationsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 3)
	var err error
	s.runner, err = wizardflow.NewCombinationRunner(&wizardflow.RunnerConfig{
		Service:     s.wizard.Service,
		Reports:     s.wizard.Store,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("combo"),
	})
	s.Require().NoError(err)
}

func (s *CombinationsTestSuite) TestEveryClassAndSubclass() {
	report, err := s.runner.Run(s.ctx, &wizardflow.CombinationInput{TargetLevel: 3, Seed: 21})
	s.Require().NoError(err)

	var pairs []string
	for _, res := range report.Results {
		pairs = append(pairs, res.Class+"/"+res.Subclass)
		s.Equal(wizardflow.StatusPassed, res.Status, "%s/%s failed at %s: %s", res.Class, res.Subclass, res.Stage, res.Error)
		s.Equal(3, res.ReachedLevel)
	}
	s.ElementsMatch([]string{
		"fighter/champion",
		"fighter/battle-master",
		"wizard/school-of-evocation",
		"cleric/life-domain",
	}, pairs)
	s.Equal(4, report.Passed)
	s.Zero(report.Failed)

	for _, res := range report.Results {
		got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: res.CharacterID})
		s.Require().NoError(err)
		link := got.Character.ClassLink(res.Class)
		s.Require().NotNil(link)
		s.Equal(res.Subclass, link.SubclassSlug)
		s.Empty(got.Character.PendingLevelUp)
	}

	rows, err := s.wizard.Store.ListReports(s.ctx, wizardflow.CombinationsReportKind, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(4, rows[0].Passed)
	s.Contains(report.Table(), "battle-master")
}

func (s *CombinationsTestSuite) TestSingleClassWithCleanup() {
	report, err := s.runner.Run(s.ctx, &wizardflow.CombinationInput{Class: testutils.ClassWizard, TargetLevel: 2, Seed: 5, Cleanup: true})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	s.Equal(testutils.SubclassEvoke, report.Results[0].Subclass)
	s.Equal(wizardflow.StatusPassed, report.Results[0].Status, report.Results[0].Error)

	_, err = s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: report.Results[0].CharacterID})
	s.True(errors.IsNotFound(err))
}

func (s *CombinationsTestSuite) TestUnknownClass() {
	_, err := s.runner.Run(s.ctx, &wizardflow.CombinationInput{Class: "bard"})
	s.True(errors.IsNotFound(err))
}

func (s *CombinationsTestSuite) TestTargetLevelTooHigh() {
	_, err := s.runner.Run(s.ctx, &wizardflow.CombinationInput{TargetLevel: 21})
	s.True(errors.IsInvalidArgument(err))
}

// stubbornWizard fails character creation or ignores level ups
type stubbornWizard struct {
	charactersvc.Service
	createErr     error
	ignoreLevelUp bool
}

func (w *stubbornWizard) CreateCharacter(ctx context.Context, input *charactersvc.CreateCharacterInput) (*charactersvc.CreateCharacterOutput, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	return w.Service.CreateCharacter(ctx, input)
}

func (w *stubbornWizard) LevelUp(ctx context.Context, input *charactersvc.LevelUpInput) (*charactersvc.UpdateOutput, error) {
	if w.ignoreLevelUp {
		return &charactersvc.UpdateOutput{}, nil
	}
	return w.Service.LevelUp(ctx, input)
}

func (s *CombinationsTestSuite) runnerFor(svc charactersvc.Service) *wizardflow.CombinationRunner {
	runner, err := wizardflow.NewCombinationRunner(&wizardflow.RunnerConfig{
		Service:     svc,
		Reports:     s.wizard.Store,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("combo"),
	})
	s.Require().NoError(err)
	return runner
}

func (s *CombinationsTestSuite) TestCreateFailureIsReported() {
	runner := s.runnerFor(&stubbornWizard{Service: s.wizard.Service, createErr: errors.Unavailable("redis is down")})

	report, err := runner.Run(s.ctx, &wizardflow.CombinationInput{Class: testutils.ClassWizard, TargetLevel: 2, Seed: 3})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	res := report.Results[0]
	s.Equal(wizardflow.StatusFailed, res.Status)
	s.Equal("create", res.Stage)
	s.Contains(res.Error, "redis is down")
	s.Zero(res.ReachedLevel)
	s.Equal(1, report.Failed)
	s.Zero(report.Passed)
}

func (s *CombinationsTestSuite) TestVerifyFailureWhenLevelsAreLost() {
	runner := s.runnerFor(&stubbornWizard{Service: s.wizard.Service, ignoreLevelUp: true})

	report, err := runner.Run(s.ctx, &wizardflow.CombinationInput{Class: testutils.ClassWizard, TargetLevel: 2, Seed: 3})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	res := report.Results[0]
	s.Equal(wizardflow.StatusFailed, res.Status)
	s.Equal("verify", res.Stage)
	s.Contains(res.Error, "wizard level is 1, want 2")
	s.NotEmpty(res.CharacterID)
	s.Equal(1, report.Failed)
}

func TestCombinationsSuite(t *testing.T) {
	suite.Run(t, new(CombinationsTestSuite))
}
