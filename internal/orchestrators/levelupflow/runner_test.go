package levelupflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type RunnerTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
	logs   *observer.ObservedLogs
	runner *levelupflow.Runner
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 13)
	core, logs := observer.New(zapcore.InfoLevel)
	s.logs = logs
	var err error
	s.runner, err = levelupflow.NewRunner(&wizardflow.RunnerConfig{
		Service:     s.wizard.Service,
		Reports:     s.wizard.Store,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("lvl"),
		Logger:      zap.New(core),
	})
	s.Require().NoError(err)
}

func (s *RunnerTestSuite) created() int {
	out, err := s.wizard.Service.ListCharacters(s.ctx, &charactersvc.ListCharactersInput{Tag: levelupflow.TagLevelUpFlow})
	s.Require().NoError(err)
	return len(out.Characters)
}

func (s *RunnerTestSuite) TestConfigValidation() {
	_, err := levelupflow.NewRunner(&wizardflow.RunnerConfig{Reports: s.wizard.Store})
	s.True(errors.IsInvalidArgument(err))
	s.ErrorContains(err, "Service")
}

func (s *RunnerTestSuite) TestLinearRun() {
	report, err := s.runner.Run(s.ctx, &levelupflow.RunInput{Count: 2, TargetLevel: 4, Seed: 100, ForceClass: "fighter"})
	s.Require().NoError(err)

	s.Equal("lvl_1", report.RunID)
	s.Equal(2, report.Summary.Total)
	s.Equal(2, report.Summary.Passed, report.ConsoleSummary())
	s.True(report.Succeeded())
	s.Equal(levelupflow.LevelStats{MaxReached: 4, AvgReached: 4, TotalLevelsGained: 6}, report.Summary.LevelStats)
	s.Equal(levelupflow.ModeLinear, report.Options["mode"])
	s.Len(report.Summary.CharactersUsed, 2)
	for i, res := range report.Results {
		s.Equal(int64(100+i), res.Seed)
		s.Equal(i+1, res.Iteration)
	}
	s.Equal(2, s.created())

	stored, err := s.runner.Reports().Load(s.ctx, report.RunID)
	s.Require().NoError(err)
	s.Equal(report.Summary.LevelStats, stored.Summary.LevelStats)
	s.Len(stored.Results[0].Steps, 3)

	rows, err := s.runner.Reports().List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(levelupflow.ReportKind, rows[0].Kind)

	s.Equal(2, s.logs.FilterMessage("level up flow finished").Len())
}

func (s *RunnerTestSuite) TestChaosCleanup() {
	report, err := s.runner.Run(s.ctx, &levelupflow.RunInput{Count: 3, TargetLevel: 5, Seed: 7, Chaos: true, Cleanup: true})
	s.Require().NoError(err)
	s.Equal(3, report.Summary.Passed, report.ConsoleSummary())
	s.Equal(levelupflow.ModeChaos, report.Results[0].Mode)
	s.Zero(s.created())
}

func (s *RunnerTestSuite) TestRealisticWinsOverChaos() {
	input := &levelupflow.RunInput{Realistic: true, Chaos: true}
	s.Equal(levelupflow.ModeRealistic, input.Mode())

	report, err := s.runner.Run(s.ctx, &levelupflow.RunInput{TargetLevel: 3, Seed: 8, Realistic: true, Chaos: true})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	s.NotNil(report.Results[0].Plan)
}

func (s *RunnerTestSuite) TestExistingCharacter() {
	first, err := s.runner.Run(s.ctx, &levelupflow.RunInput{TargetLevel: 2, Seed: 20, ForceClass: "wizard", Cleanup: true})
	s.Require().NoError(err)
	s.Equal(1, first.Summary.Passed, first.ConsoleSummary())
	s.Zero(s.created(), "cleanup removes created characters")

	second, err := s.runner.Run(s.ctx, &levelupflow.RunInput{TargetLevel: 2, Seed: 21, ForceClass: "wizard"})
	s.Require().NoError(err)
	id := second.Results[0].CharacterID

	report, err := s.runner.Run(s.ctx, &levelupflow.RunInput{Count: 5, TargetLevel: 4, Seed: 22, CharacterID: id, Cleanup: true})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1, "an existing character runs once")
	s.Equal(2, report.Results[0].StartLevel)
	s.Equal(4, report.Results[0].FinalLevel)
	s.Equal(id, report.Options["character"])

	_, err = s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: id})
	s.NoError(err, "existing characters are never cleaned up")
}

func (s *RunnerTestSuite) TestCreateFailure() {
	report, err := s.runner.Run(s.ctx, &levelupflow.RunInput{TargetLevel: 3, Seed: 9, ForceClass: "bard"})
	s.Require().NoError(err)
	s.Equal(1, report.Summary.Errors)
	s.False(report.Succeeded())
	s.Require().NotNil(report.Results[0].Error)
	s.Equal(1, report.Results[0].Error.AtLevel)
	s.Contains(report.ConsoleSummary(), "error at level 1")
	s.Equal(1, s.logs.FilterMessage("failed to create character").Len())
}

func (s *RunnerTestSuite) TestTargetLevel() {
	_, err := s.runner.Run(s.ctx, &levelupflow.RunInput{TargetLevel: 21})
	s.True(errors.IsInvalidArgument(err))

	input := &levelupflow.RunInput{Seed: 3, ForceClass: "fighter", TargetLevel: 0}
	report, err := s.runner.Run(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(20, input.TargetLevel)
	s.Equal(20, report.Results[0].FinalLevel, report.ConsoleSummary())
}

func (s *RunnerTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.runner.Run(ctx, &levelupflow.RunInput{Count: 2})
	s.ErrorIs(err, context.Canceled)
}

func TestRunnerSuite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	suite.Run(t, new(RunnerTestSuite))
}
