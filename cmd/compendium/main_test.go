package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/entityfixtures"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type CommandTestSuite struct {
	suite.Suite
	ctx    context.Context
	dbPath string
	mr     *miniredis.Miniredis
}

func (s *CommandTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dbPath = filepath.Join(s.T().TempDir(), "compendium.db")

	store, err := compendium.Open(s.ctx, &compendium.Config{Path: s.dbPath})
	s.Require().NoError(err)
	testutils.SeedCompendium(s.T(), store)
	s.Require().NoError(store.Close())

	s.mr = miniredis.RunT(s.T())
}

func (s *CommandTestSuite) execute(args ...string) error {
	rootCmd.SetArgs(append([]string{"--db", s.dbPath, "--redis", s.mr.Addr()}, args...))
	return rootCmd.ExecuteContext(s.ctx)
}

func (s *CommandTestSuite) openStore() *compendium.Store {
	store, err := compendium.Open(s.ctx, &compendium.Config{Path: s.dbPath, SkipMigrations: true})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = store.Close() })
	return store
}

func (s *CommandTestSuite) TestWizardFlowStoresReport() {
	err := s.execute("test:wizard-flow", "--count", "1", "--seed", "5", "--force-class", testutils.ClassFighter)

	rows, listErr := s.openStore().ListReports(s.ctx, wizardflow.ReportKind, 10)
	s.Require().NoError(listErr)
	s.Require().Len(rows, 1)
	s.Equal(int64(5), rows[0].Seed)
	s.Equal(1, rows[0].Passed+rows[0].Failed)
	if rows[0].Failed == 0 {
		s.NoError(err)
	} else {
		s.Error(err)
	}
}

func (s *CommandTestSuite) TestWizardFlowRejectsBadClassTypes() {
	err := s.execute("test:wizard-flow", "--class-types", "caster")
	s.ErrorContains(err, "two types")
	s.Equal(2, errors.GetCode(err).ExitCode())
	wizardClassTypes = nil
}

func (s *CommandTestSuite) TestWizardFlowUnknownScenario() {
	file := filepath.Join(s.T().TempDir(), "flows.hcl")
	s.Require().NoError(os.WriteFile(file, []byte(`scenario "casters" {
  count = 1
}
`), 0o600))

	err := s.execute("test:wizard-flow", "--scenario", file, "--scenario-name", "martials")
	s.ErrorContains(err, "no scenario named")
	s.Equal(2, errors.GetCode(err).ExitCode())
	wizardScenarioFile, wizardScenarioName = "", ""
}

func (s *CommandTestSuite) TestCacheWarmAndClear() {
	s.Require().NoError(s.execute("cache:warm", "--type", "race"))
	s.NotEmpty(s.mr.Keys())

	s.Require().NoError(s.execute("cache:clear", "--type", "race"))
	s.Empty(s.mr.Keys())
	cacheTypes = nil
}

func (s *CommandTestSuite) TestCacheUnknownType() {
	err := s.execute("cache:warm", "--type", "vehicle")
	s.ErrorContains(err, "unknown entity type")
	s.Equal(2, errors.GetCode(err).ExitCode())
	cacheTypes = nil
}

func (s *CommandTestSuite) TestFixturesRoundTrip() {
	// the character is stored whether or not the flow validated
	_ = s.execute("test:wizard-flow", "--count", "1", "--seed", "11", "--force-class", testutils.ClassWizard)

	file := filepath.Join(s.T().TempDir(), "fixture.json")
	s.Require().NoError(s.execute("fixtures:export", file, "--tag", "smoke"))
	data, err := os.ReadFile(file)
	s.Require().NoError(err)
	s.Contains(string(data), fmt.Sprintf(`"version": %d`, character.FixtureVersion))
	s.Contains(string(data), `"characters"`)

	s.mr.FlushAll()
	s.Require().NoError(s.execute("fixtures:import", file))
}

func (s *CommandTestSuite) TestFixturesImportRejectsGarbage() {
	file := filepath.Join(s.T().TempDir(), "fixture.json")
	s.Require().NoError(os.WriteFile(file, []byte("not json"), 0o600))
	err := s.execute("fixtures:import", file)
	s.ErrorContains(err, "failed to decode")
	s.True(errors.IsInvalidArgument(err))
}

func (s *CommandTestSuite) TestCharactersAuditPurge() {
	s.Require().NoError(s.mr.Set("character:char_bad", "{"))

	s.Require().NoError(s.execute("characters:audit"))
	s.True(s.mr.Exists("character:char_bad"))

	s.Require().NoError(s.execute("characters:audit", "--purge"))
	s.False(s.mr.Exists("character:char_bad"))
	auditPurge = false
}

func (s *CommandTestSuite) TestCounterAuditReportsMismatches() {
	// the seeded compendium carries no counters for the optional feature tracks
	err := s.execute("audit:optional-feature-counters", "--detailed")
	s.ErrorContains(err, "do not match the rules")
	s.Equal(1, errors.GetCode(err).ExitCode())
	auditDetailed = false
}

func (s *CommandTestSuite) TestOptionalFeaturesStoresReport() {
	err := s.execute("test:optional-features", "--class", testutils.ClassFighter, "--level", "3", "--seed", "4")

	rows, listErr := s.openStore().ListReports(s.ctx, levelupflow.OptionalFeaturesReportKind, 10)
	s.Require().NoError(listErr)
	s.Require().Len(rows, 1)
	s.Equal(int64(4), rows[0].Seed)
	if rows[0].Failed == 0 {
		s.NoError(err)
	} else {
		s.Error(err)
	}
	optionalClass, optionalLevel, flowSeed = "", 20, 0
}

func (s *CommandTestSuite) TestMulticlassExportsFixture() {
	dir := filepath.Join(s.T().TempDir(), "multiclass")
	err := s.execute("test:multiclass-combinations", "--combinations", "fighter:1,wizard:1", "--seed", "7", "--export", dir)

	rows, listErr := s.openStore().ListReports(s.ctx, wizardflow.MulticlassReportKind, 10)
	s.Require().NoError(listErr)
	s.Require().Len(rows, 1)
	if rows[0].Failed == 0 {
		s.NoError(err)
		s.FileExists(filepath.Join(dir, "fighter-1-wizard-1.json"))
	} else {
		s.Error(err)
	}
	multiCombinations, multiExport, flowSeed = "", "", 0
}

func (s *CommandTestSuite) TestMulticlassRejectsBadCombination() {
	err := s.execute("test:multiclass-combinations", "--combinations", "wizard")
	s.Error(err)
	s.Equal(2, errors.GetCode(err).ExitCode())
	multiCombinations = ""
}

func (s *CommandTestSuite) TestFixturesExtract() {
	dir := s.T().TempDir()
	s.Require().NoError(s.execute("fixtures:extract", "spell", "--output", dir, "--limit", "5"))
	s.FileExists(filepath.Join(dir, "entities", "spell.json"))
	s.NoFileExists(filepath.Join(dir, "entities", "class.json"))

	err := s.execute("fixtures:extract", "vehicle", "--output", dir)
	s.ErrorContains(err, "unknown entity type")
	s.Equal(2, errors.GetCode(err).ExitCode())
	fixtureOutput, fixtureLimit = "tests/fixtures", entityfixtures.DefaultLimit
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func TestImportAllTable(t *testing.T) {
	out := &importers.ImportAllOutput{
		Duration: 1500 * time.Millisecond,
		Steps: []*importers.StepResult{
			{Group: "classes", Importer: "classes", Files: []*importers.FileOutcome{
				{Path: "class-wizard.xml", Result: &importers.FileResult{Total: 3, Created: 3}},
			}},
			{Group: "feats", Importer: "feats", Files: []*importers.FileOutcome{
				{Path: "feats-bad.xml", Err: os.ErrClosed},
			}},
		},
	}

	table := importAllTable("import-files", out)
	for _, want := range []string{"Import of import-files (1.5s)", "classes", "feats"} {
		if !strings.Contains(table, want) {
			t.Errorf("table is missing %q:\n%s", want, table)
		}
	}

	failures := importFailures(out)
	if !strings.Contains(failures, "feats-bad.xml") || strings.Contains(failures, "class-wizard.xml") {
		t.Errorf("unexpected failures:\n%s", failures)
	}
}
