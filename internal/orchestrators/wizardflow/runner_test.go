package wizardflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type RunnerTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
	runner *wizardflow.Runner
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 7)
	var err error
	s.runner, err = wizardflow.NewRunner(&wizardflow.RunnerConfig{
		Service:     s.wizard.Service,
		Reports:     s.wizard.Store,
		Dice:        s.wizard.Dice,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("run"),
	})
	s.Require().NoError(err)
}

func (s *RunnerTestSuite) flowCharacters() int {
	out, err := s.wizard.Service.ListCharacters(s.ctx, &charactersvc.ListCharactersInput{Tag: wizardflow.TagFlowTest})
	s.Require().NoError(err)
	return len(out.Characters)
}

func (s *RunnerTestSuite) TestConfigValidation() {
	_, err := wizardflow.NewRunner(&wizardflow.RunnerConfig{Service: s.wizard.Service})
	s.True(errors.IsInvalidArgument(err))
	s.ErrorContains(err, "Reports")
}

func (s *RunnerTestSuite) TestLinearRun() {
	report, err := s.runner.Run(s.ctx, &wizardflow.RunInput{Count: 3, Seed: 500})
	s.Require().NoError(err)

	s.Equal(3, report.Summary.Total)
	s.Equal(3, report.Summary.Passed, report.Details(false))
	s.True(report.Succeeded())
	s.Equal("3", report.Options["count"])
	for i, res := range report.Results {
		s.Equal(i+1, res.Iteration)
		s.Equal(int64(500+i), res.Seed)
		s.Equal(wizardflow.FlowLinear, res.FlowType)
	}

	stored, err := s.runner.Reports().Load(s.ctx, report.RunID)
	s.Require().NoError(err)
	s.Equal(report.Summary, stored.Summary)
	s.Equal(3, s.flowCharacters())
}

func (s *RunnerTestSuite) TestSeedReplaysIteration() {
	batch, err := s.runner.Run(s.ctx, &wizardflow.RunInput{Count: 3, Seed: 40, Chaos: true})
	s.Require().NoError(err)

	single, err := s.runner.Run(s.ctx, &wizardflow.RunInput{Count: 1, Seed: 42, Chaos: true})
	s.Require().NoError(err)

	want := batch.Results[2]
	got := single.Results[0]
	s.Equal(len(want.Steps), len(got.Steps))
	for i := range want.Steps {
		s.Equal(want.Steps[i].Action, got.Steps[i].Action)
		s.Equal(want.Steps[i].Detail != "", got.Steps[i].Detail != "")
	}
}

func (s *RunnerTestSuite) TestChaosRunWithCleanup() {
	report, err := s.runner.Run(s.ctx, &wizardflow.RunInput{Count: 4, Seed: 9, Chaos: true, MinSwitches: 2, MaxSwitches: 2, Cleanup: true})
	s.Require().NoError(err)

	s.Equal(4, report.Summary.Passed, report.Details(false))
	s.Equal(8, report.Summary.SwitchesTested)
	s.Zero(s.flowCharacters())
}

func (s *RunnerTestSuite) TestModes() {
	tests := []struct {
		name  string
		input *wizardflow.RunInput
		flow  string
		count int
	}{
		{"all races", &wizardflow.RunInput{AllRaces: true, Chaos: true}, wizardflow.FlowAllRaces, 3},
		{"equipment modes", &wizardflow.RunInput{EquipmentModes: true}, wizardflow.FlowEquipmentChaos, 1},
		{"class types", &wizardflow.RunInput{ClassTypes: [2]string{wizardflow.ClassTypeMartial, wizardflow.ClassTypeCaster}}, wizardflow.FlowClassTypeSwitch, 1},
		{"named switches", &wizardflow.RunInput{Switches: []string{"background"}}, wizardflow.FlowSwitches, 1},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.input.Seed = 77
			report, err := s.runner.Run(s.ctx, tt.input)
			s.Require().NoError(err)
			s.Require().Len(report.Results, tt.count)
			for _, res := range report.Results {
				s.Equal(tt.flow, res.FlowType)
				s.Equal(wizardflow.StatusPassed, res.Status, report.Details(false))
			}
		})
	}
}

func (s *RunnerTestSuite) TestUnknownSwitch() {
	_, err := s.runner.Run(s.ctx, &wizardflow.RunInput{Switches: []string{"deity"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RunnerTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.runner.Run(ctx, &wizardflow.RunInput{Count: 2})
	s.ErrorIs(err, context.Canceled)
}

func (s *RunnerTestSuite) TestDefaultsSeedFromClock() {
	input := &wizardflow.RunInput{}
	report, err := s.runner.Run(s.ctx, input)
	s.Require().NoError(err)
	s.Equal(s.wizard.Clock.Now().Unix(), report.Seed)
	s.Equal(1, input.Count)
	s.Equal(1, input.MinSwitches)
	s.Equal(3, input.MaxSwitches)
}

func TestRunnerSuite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	suite.Run(t, new(RunnerTestSuite))
}
