package wizardflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ReportTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *compendium.Store
	clock     *clock.Fixed
	generator *wizardflow.ReportGenerator
}

func (s *ReportTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutils.NewTestStore(s.T())
	s.clock = clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.generator = wizardflow.NewReportGenerator(s.store, s.clock, idgen.NewSequential("run"))
}

func results() []*wizardflow.FlowResult {
	return []*wizardflow.FlowResult{
		{
			Iteration: 1, Seed: 10, FlowType: wizardflow.FlowChaos, CharacterID: "char-1", Status: wizardflow.StatusPassed, Warnings: 2,
			Steps: []wizardflow.StepResult{
				{Index: 0, Action: wizardflow.ActionCreate, Status: wizardflow.StatusPassed},
				{Index: 1, Action: wizardflow.ActionSwitchRace, Status: wizardflow.StatusPassedWithWarning},
			},
		},
		{
			Iteration: 2, Seed: 11, FlowType: wizardflow.FlowChaos, CharacterID: "char-2", Status: wizardflow.StatusFailed,
			Steps: []wizardflow.StepResult{
				{Index: 0, Action: wizardflow.ActionCreate, Status: wizardflow.StatusPassed},
				{Index: 1, Action: wizardflow.ActionSwitchClass, Description: "SWITCH: Change class (should cascade reset)", Status: wizardflow.StatusFailed,
					Validation: &wizardflow.ValidationResult{
						Status:  wizardflow.StatusFailed,
						Pattern: wizardflow.PatternClassSpellsNotCleared,
						Errors:  []string{"class spells kept after switch: [Light]"},
					},
					Changes: []wizardflow.Change{{Field: "class_slugs", Before: []string{"wizard"}, After: []string{"cleric"}}},
				},
				{Index: 2, Action: wizardflow.ActionSwitchBackground, Status: wizardflow.StatusSkipped},
			},
		},
		{
			Iteration: 3, Seed: 12, FlowType: wizardflow.FlowLinear, Status: wizardflow.StatusError,
			Steps: []wizardflow.StepResult{
				{Index: 0, Action: wizardflow.ActionCreate, Status: wizardflow.StatusError, Error: "unavailable"},
			},
		},
	}
}

func (s *ReportTestSuite) TestGenerate() {
	report := s.generator.Generate(10, map[string]string{"count": "3"}, results())

	s.Equal("run_1", report.RunID)
	s.Equal(s.clock.Now(), report.Timestamp)
	s.Equal(int64(10), report.Seed)
	s.InDelta(100.0/3, report.Summary.PassRate, 0.001)
	summary := report.Summary
	summary.PassRate = 0
	s.Equal(wizardflow.Summary{
		Total:          3,
		Passed:         1,
		Failed:         1,
		Errors:         1,
		Warnings:       2,
		SwitchesTested: 2,
		FailurePatterns: map[string]int{
			wizardflow.PatternClassSpellsNotCleared: 1,
			wizardflow.PatternAPIError:              1,
		},
	}, summary)
	s.False(report.Succeeded())
}

func (s *ReportTestSuite) TestGenerateEmpty() {
	report := s.generator.Generate(1, nil, nil)
	s.Zero(report.Summary.PassRate)
	s.True(report.Succeeded())
}

func (s *ReportTestSuite) TestSaveAndLoad() {
	report := s.generator.Generate(10, map[string]string{"chaos": "true"}, results())
	s.Require().NoError(s.generator.Save(s.ctx, report))

	loaded, err := s.generator.Load(s.ctx, report.RunID)
	s.Require().NoError(err)
	s.Equal(report.Summary, loaded.Summary)
	s.Equal(report.Options, loaded.Options)
	s.Len(loaded.Results, 3)
	s.Equal(wizardflow.PatternClassSpellsNotCleared, loaded.Results[1].Steps[1].Validation.Pattern)

	rows, err := s.generator.List(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(wizardflow.ReportKind, rows[0].Kind)
	s.Equal(1, rows[0].Passed)
	s.Equal(2, rows[0].Failed, "errors count as failures")
}

func (s *ReportTestSuite) TestSaveDuplicate() {
	report := s.generator.Generate(10, nil, results())
	s.Require().NoError(s.generator.Save(s.ctx, report))
	s.True(errors.IsAlreadyExists(s.generator.Save(s.ctx, report)))
}

func (s *ReportTestSuite) TestLoadMissing() {
	_, err := s.generator.Load(s.ctx, "run_404")
	s.True(errors.IsNotFound(err))
}

func (s *ReportTestSuite) TestListNewestFirst() {
	for range 3 {
		s.Require().NoError(s.generator.Save(s.ctx, s.generator.Generate(1, nil, nil)))
		s.clock.Advance(time.Minute)
	}
	rows, err := s.generator.List(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("run_3", rows[0].ID)
	s.Equal("run_2", rows[1].ID)
}

func (s *ReportTestSuite) TestConsoleOutput() {
	report := s.generator.Generate(10, nil, results())

	summary := report.ConsoleSummary()
	s.Contains(summary, "run_1")
	s.Contains(summary, wizardflow.PatternClassSpellsNotCleared)
	s.Contains(summary, "33.3%")

	details := report.Details(true)
	s.Contains(details, "iteration 2")
	s.Contains(details, "class spells kept after switch")
	s.Contains(details, "class_slugs")
	s.Contains(details, "error: unavailable")
	s.NotContains(details, "iteration 1 ")

	s.NotContains(report.Details(false), "class_slugs")
}

func (s *ReportTestSuite) TestListTable() {
	s.Require().NoError(s.generator.Save(s.ctx, s.generator.Generate(77, nil, results())))
	rows, err := s.generator.List(s.ctx, 0)
	s.Require().NoError(err)

	table := wizardflow.ListTable("Wizard flow reports", rows)
	s.Contains(table, "Wizard flow reports")
	s.Contains(table, "run_1")
	s.Contains(table, "77")
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}
