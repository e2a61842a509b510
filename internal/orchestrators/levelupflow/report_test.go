package levelupflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ReportTestSuite struct {
	suite.Suite
	ctx       context.Context
	generator *levelupflow.ReportGenerator
}

func (s *ReportTestSuite) SetupTest() {
	s.ctx = context.Background()
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.generator = levelupflow.NewReportGenerator(testutils.NewTestStore(s.T()), clk, idgen.NewSequential("lvl"))
}

func step(level int, class string, status string) levelupflow.StepResult {
	return levelupflow.StepResult{
		Level:      level,
		ClassSlug:  class,
		Status:     status,
		Validation: &wizardflow.ValidationResult{Status: status},
		After:      &levelupflow.Snapshot{TotalLevel: level},
	}
}

func levelResults() []*levelupflow.Result {
	failed := step(3, "wizard", wizardflow.StatusFailed)
	failed.Validation.Pattern = levelupflow.PatternHPNotIncreased
	failed.Validation.Errors = []string{"max hp went from 14 to 14"}

	return []*levelupflow.Result{
		{
			Iteration: 1, Seed: 5, Mode: levelupflow.ModeLinear, CharacterID: "char_1", StartLevel: 1, FinalLevel: 4,
			Status: wizardflow.StatusPassed, Warnings: 1,
			Steps: []levelupflow.StepResult{
				step(2, "fighter", wizardflow.StatusPassed),
				step(3, "fighter", wizardflow.StatusPassed),
				step(4, "fighter", wizardflow.StatusPassedWithWarning),
			},
		},
		{
			Iteration: 2, Seed: 6, Mode: levelupflow.ModeChaos, CharacterID: "char_2", StartLevel: 1, FinalLevel: 3,
			Status: wizardflow.StatusFailed,
			Steps: []levelupflow.StepResult{
				step(2, "wizard", wizardflow.StatusPassed),
				failed,
			},
		},
		{
			Iteration: 3, Seed: 7, Mode: levelupflow.ModeChaos, CharacterID: "char_3", StartLevel: 1, FinalLevel: 2,
			Status: wizardflow.StatusError,
			Steps: []levelupflow.StepResult{
				step(2, "cleric", wizardflow.StatusPassed),
				{Level: 3, ClassSlug: "cleric", Status: wizardflow.StatusError, Error: "3 level up choices are still pending"},
			},
		},
	}
}

func (s *ReportTestSuite) TestGenerate() {
	report := s.generator.Generate(5, map[string]string{"mode": "chaos"}, levelResults())

	s.Equal("lvl_1", report.RunID)
	sum := report.Summary
	s.Equal(3, sum.Total)
	s.Equal(1, sum.Passed)
	s.Equal(1, sum.Failed)
	s.Equal(1, sum.Errors)
	s.Equal(1, sum.Warnings)
	s.Equal(map[string]int{levelupflow.PatternHPNotIncreased: 1, wizardflow.PatternAPIError: 1}, sum.FailurePatterns)
	s.Equal(levelupflow.LevelStats{MaxReached: 4, AvgReached: 3, TotalLevelsGained: 6}, sum.LevelStats)
	s.Equal([]levelupflow.CharacterUsed{
		{ID: "char_1", Status: wizardflow.StatusPassed, FinalLevel: 4},
		{ID: "char_2", Status: wizardflow.StatusFailed, FinalLevel: 3},
		{ID: "char_3", Status: wizardflow.StatusError, FinalLevel: 2},
	}, sum.CharactersUsed)
	s.InDelta(33.3, sum.PassRate, 0.1)
	s.False(report.Succeeded())
}

func (s *ReportTestSuite) TestAverageRounds() {
	results := levelResults()
	results[2].FinalLevel = 3
	report := s.generator.Generate(1, nil, results)
	s.Equal(3.3, report.Summary.LevelStats.AvgReached)
}

func (s *ReportTestSuite) TestSaveLoadList() {
	report := s.generator.Generate(5, nil, levelResults())
	s.Require().NoError(s.generator.Save(s.ctx, report))
	s.True(errors.IsAlreadyExists(s.generator.Save(s.ctx, report)))

	loaded, err := s.generator.Load(s.ctx, report.RunID)
	s.Require().NoError(err)
	s.Equal(report.Summary, loaded.Summary)
	s.Equal(levelupflow.PatternHPNotIncreased, loaded.Results[1].Steps[1].Validation.Pattern)

	rows, err := s.generator.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(1, rows[0].Passed)
	s.Equal(2, rows[0].Failed)

	_, err = s.generator.Load(s.ctx, "lvl_404")
	s.True(errors.IsNotFound(err))
}

func (s *ReportTestSuite) TestConsoleOutput() {
	report := s.generator.Generate(5, nil, levelResults())

	out := report.ConsoleSummary()
	s.Contains(out, "lvl_1")
	s.Contains(out, "Level stats")
	s.Contains(out, levelupflow.PatternHPNotIncreased)
	s.Contains(out, "level 3 wizard: max hp went from 14 to 14")
	s.Contains(out, "level 3 cleric: 3 level up choices are still pending")
	s.NotContains(out, "char_1 ")

	classes := report.Classes()
	s.Contains(classes, "fighter +3")
	s.Contains(classes, "cleric +1")
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}
