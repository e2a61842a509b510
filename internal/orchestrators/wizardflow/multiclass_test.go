package wizardflow_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type MulticlassTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
}

func (s *MulticlassTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 9)
}

func (s *MulticlassTestSuite) runnerFor(svc charactersvc.Service) *wizardflow.MulticlassRunner {
	runner, err := wizardflow.NewMulticlassRunner(&wizardflow.RunnerConfig{
		Service:     svc,
		Reports:     s.wizard.Store,
		Clock:       s.wizard.Clock,
		IDGenerator: idgen.NewSequential("multi"),
	})
	s.Require().NoError(err)
	return runner
}

func (s *MulticlassTestSuite) combos(list string) []wizardflow.Combination {
	combos, err := wizardflow.ParseCombinations(list)
	s.Require().NoError(err)
	return combos
}

func (s *MulticlassTestSuite) TestParseCombinations() {
	combos, err := wizardflow.ParseCombinations("wizard:5,cleric:5 | phb:fighter:10,rogue:10|")
	s.Require().NoError(err)
	s.Equal([]wizardflow.Combination{
		{{Class: "wizard", Level: 5}, {Class: "cleric", Level: 5}},
		{{Class: "fighter", Level: 10}, {Class: "rogue", Level: 10}},
	}, combos)
	s.Equal("wizard:5,cleric:5", combos[0].String())
	s.Equal("fighter-10-rogue-10.json", combos[1].FileName())

	testCases := []struct {
		name string
		list string
	}{
		{name: "empty", list: " | "},
		{name: "missing level", list: "wizard"},
		{name: "bad level", list: "wizard:five"},
		{name: "zero level", list: "wizard:0"},
		{name: "repeated class", list: "wizard:2,wizard:3"},
		{name: "over the cap", list: "wizard:11,cleric:10"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := wizardflow.ParseCombinations(tc.list)
			s.True(errors.IsInvalidArgument(err), "%v", err)
		})
	}
}

func (s *MulticlassTestSuite) TestBuildAndExport() {
	dir := filepath.Join(s.T().TempDir(), "multiclass")

	report, err := s.runnerFor(s.wizard.Service).Run(s.ctx, &wizardflow.MulticlassInput{
		Combinations: s.combos("fighter:2,wizard:1"),
		Seed:         30,
		Force:        true,
		ExportDir:    dir,
	})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	res := report.Results[0]
	s.Equal(wizardflow.StatusPassed, res.Status, "failed at %s: %s", res.Stage, res.Error)
	s.Equal("Fighter 2 / Wizard 1", res.Name)
	s.Equal(3, res.TotalLevel)
	s.Equal(int64(30), res.Seed)

	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: res.CharacterID})
	s.Require().NoError(err)
	s.Equal(testutils.ClassFighter, got.Character.PrimaryClass().ClassSlug)
	s.Equal(2, got.Character.ClassLink(testutils.ClassFighter).Level)
	s.Equal(1, got.Character.ClassLink(testutils.ClassWizard).Level)
	s.Contains(got.Character.Tags, wizardflow.TagMulticlass)

	s.Equal(filepath.Join(dir, "fighter-2-wizard-1.json"), res.Fixture)
	data, err := os.ReadFile(res.Fixture)
	s.Require().NoError(err)
	fixture := &charactersvc.Fixture{}
	s.Require().NoError(json.Unmarshal(data, fixture))
	s.Require().Len(fixture.Characters, 1)
	s.Equal("Fighter 2 / Wizard 1", fixture.Characters[0].Name)

	rows, err := s.wizard.Store.ListReports(s.ctx, wizardflow.MulticlassReportKind, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(1, rows[0].Passed)
	s.Contains(report.Table(), "Fighter 2 / Wizard 1")
}

func (s *MulticlassTestSuite) TestSeedsAndCleanup() {
	report, err := s.runnerFor(s.wizard.Service).Run(s.ctx, &wizardflow.MulticlassInput{
		Combinations: s.combos("cleric:1,wizard:1|fighter:1,cleric:1"),
		Count:        2,
		Seed:         50,
		Force:        true,
		Cleanup:      true,
	})
	s.Require().NoError(err)

	var seeds []int64
	for _, res := range report.Results {
		seeds = append(seeds, res.Seed)
		s.Equal(wizardflow.StatusPassed, res.Status, "%s failed at %s: %s", res.Combination, res.Stage, res.Error)
		_, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: res.CharacterID})
		s.True(errors.IsNotFound(err))
	}
	s.Equal([]int64{50, 51, 1050, 1051}, seeds)
	s.Equal(4, report.Passed)
}

// requirementWizard refuses unforced multiclassing and records every request
type requirementWizard struct {
	charactersvc.Service
	forced []bool
}

func (w *requirementWizard) AddClass(ctx context.Context, input *charactersvc.AddClassInput) (*charactersvc.UpdateOutput, error) {
	w.forced = append(w.forced, input.Force)
	if !input.Force {
		return nil, errors.FailedPreconditionf("cannot multiclass into %s: INT 13", input.ClassSlug)
	}
	return w.Service.AddClass(ctx, input)
}

func (s *MulticlassTestSuite) TestRequirementsApplyWithoutForce() {
	svc := &requirementWizard{Service: s.wizard.Service}

	report, err := s.runnerFor(svc).Run(s.ctx, &wizardflow.MulticlassInput{
		Combinations: s.combos("fighter:1,wizard:1"),
		Seed:         31,
	})
	s.Require().NoError(err)
	s.Require().Len(report.Results, 1)
	res := report.Results[0]
	s.Equal(wizardflow.StatusFailed, res.Status)
	s.Equal("add wizard", res.Stage)
	s.Contains(res.Error, "INT 13")
	s.Equal(1, res.TotalLevel)
	s.Equal([]bool{false}, svc.forced)
	s.Equal(1, report.Failed)
}

func (s *MulticlassTestSuite) TestUnknownClass() {
	_, err := s.runnerFor(s.wizard.Service).Run(s.ctx, &wizardflow.MulticlassInput{
		Combinations: s.combos("fighter:1,bard:1"),
	})
	s.True(errors.IsNotFound(err))

	_, err = s.runnerFor(s.wizard.Service).Run(s.ctx, &wizardflow.MulticlassInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestMulticlassSuite(t *testing.T) {
	suite.Run(t, new(MulticlassTestSuite))
}
