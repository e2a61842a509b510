package importers_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type RunnerTestSuite struct {
	suite.Suite
	ctx    context.Context
	dir    string
	store  *compendium.Store
	runner *importers.Runner
}

func (s *RunnerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()

	store, err := compendium.Open(s.ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "compendium.db")})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })

	s.runner, err = importers.NewRunner(&importers.RunnerConfig{
		Importer:         &importers.Config{Store: store, Logger: zap.NewNop()},
		ParseConcurrency: 2,
	})
	s.Require().NoError(err)
}

func (s *RunnerTestSuite) write(name, body string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(compendiumXML(body)), 0o600))
}

func (s *RunnerTestSuite) TestImportAllRunsStepsInOrder() {
	// spells sort before classes on disk but must link to them
	s.write("spells-phb.xml", fireballXML)
	s.write("class-wizard-phb.xml", wizardXML)
	s.write("class-sorcerer-phb.xml", `<class><name>Sorcerer</name><hd>6</hd></class>`)
	s.write("spells-phb+xge.xml", `<spell><name>Fireball</name><classes>Sorcerer</classes></spell>`)
	s.write("feats-phb.xml", `<feat><name>Alert</name><text>Always on the lookout for danger.</text></feat>`)
	s.write("notes.txt", "ignored")

	out, err := s.runner.ImportAll(s.ctx, &importers.ImportAllInput{Dir: s.dir})
	s.Require().NoError(err)
	s.Equal(0, out.Failed())

	byImporter := map[string]*importers.StepResult{}
	for _, step := range out.Steps {
		byImporter[step.Importer] = step
	}
	s.Len(byImporter["classes"].Files, 2)
	s.Len(byImporter["spells"].Files, 1)
	s.Len(byImporter["spell-class-mappings"].Files, 1)
	s.Len(byImporter["feats"].Files, 1)
	s.Empty(byImporter["monsters"].Files)

	for _, class := range []string{"wizard", "sorcerer"} {
		rows, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: class})
		s.Require().NoError(err)
		s.Len(rows, 1, class)
	}
}

func (s *RunnerTestSuite) TestOnlyFilter() {
	s.write("spells-phb.xml", fireballXML)
	s.write("feats-phb.xml", `<feat><name>Alert</name></feat>`)

	out, err := s.runner.ImportAll(s.ctx, &importers.ImportAllInput{Dir: s.dir, Only: []string{"feats"}})
	s.Require().NoError(err)
	s.Require().Len(out.Steps, 1)
	s.Equal("feats", out.Steps[0].Group)

	_, err = s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.True(errors.IsNotFound(err))
}

func (s *RunnerTestSuite) TestUnknownOnlyGroup() {
	_, err := s.runner.ImportAll(s.ctx, &importers.ImportAllInput{Dir: s.dir, Only: []string{"vehicles"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RunnerTestSuite) TestMissingDirectory() {
	_, err := s.runner.ImportAll(s.ctx, &importers.ImportAllInput{Dir: filepath.Join(s.dir, "missing")})
	s.True(errors.IsNotFound(err))
}

func (s *RunnerTestSuite) TestMalformedFileFailsOnlyThatFile() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "spells-bad.xml"), []byte("<compendium><spell>"), 0o600))
	s.write("spells-phb.xml", fireballXML)

	out, err := s.runner.ImportAll(s.ctx, &importers.ImportAllInput{Dir: s.dir, Only: []string{"spells"}})
	s.Require().NoError(err)
	s.Equal(1, out.Failed())
	s.Equal(1, out.Steps[0].Success())
	s.Equal(1, out.Steps[0].Fail())
}

func (s *RunnerTestSuite) TestCanceledContext() {
	s.write("spells-phb.xml", fireballXML)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.runner.ImportAll(ctx, &importers.ImportAllInput{Dir: s.dir})
	s.Equal(errors.CodeCanceled, errors.GetCode(err))
}

func (s *RunnerTestSuite) TestImporterLookup() {
	imp, ok := s.runner.Importer("monsters")
	s.True(ok)
	s.Equal(dnd5e.EntityTypeMonster, imp.EntityType())
	s.Contains(s.runner.ImporterNames(), "spell-class-mappings")
	s.Equal([]string{
		"classes", "spells", "races", "items", "backgrounds", "feats", "optional-features", "monsters",
	}, s.runner.Groups())
}

func (s *RunnerTestSuite) TestStepFor() {
	tests := []struct {
		path     string
		importer string
	}{
		{path: "/data/class-wizard-phb.xml", importer: "classes"},
		{path: "spells-phb.xml", importer: "spells"},
		{path: "spells-phb+xge.xml", importer: "spell-class-mappings"},
		{path: "bestiary-mm.xml", importer: "monsters"},
		{path: "optionalfeatures-tce.xml", importer: "optional-features"},
		{path: "notes.xml"},
	}
	for _, tt := range tests {
		s.Run(tt.path, func() {
			step, ok := s.runner.StepFor(tt.path)
			s.Equal(tt.importer != "", ok)
			if ok {
				s.Equal(tt.importer, step.Importer.Name())
			}
		})
	}
}

func (s *RunnerTestSuite) TestImportPath() {
	s.write("class-wizard-phb.xml", wizardXML)
	s.write("spells-phb.xml", fireballXML)

	out, err := s.runner.ImportPath(s.ctx, filepath.Join(s.dir, "class-wizard-phb.xml"))
	s.Require().NoError(err)
	s.False(out.Failed())
	s.Positive(out.Result.Created)

	out, err = s.runner.ImportPath(s.ctx, filepath.Join(s.dir, "spells-phb.xml"))
	s.Require().NoError(err)
	s.Equal("spells", out.Result.Importer)

	_, err = s.runner.ImportPath(s.ctx, filepath.Join(s.dir, "notes.txt"))
	s.True(errors.IsInvalidArgument(err))

	out, err = s.runner.ImportPath(s.ctx, filepath.Join(s.dir, "feats-missing.xml"))
	s.Require().NoError(err)
	s.True(out.Failed())
}

func TestMatchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"spells-phb.xml", "spells-phb+dmg.xml", "spells-xge.xml", "items-phb.xml"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := importers.MatchFiles(dir, "spells-*.xml", []string{"*+*"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "spells-phb.xml"), filepath.Join(dir, "spells-xge.xml")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("MatchFiles() = %v, want %v", got, want)
	}
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}
