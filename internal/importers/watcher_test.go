package importers_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type WatcherTestSuite struct {
	suite.Suite
	ctx      context.Context
	dir      string
	store    *compendium.Store
	runner   *importers.Runner
	outcomes chan *importers.FileOutcome
}

func (s *WatcherTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()

	store, err := compendium.Open(s.ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "compendium.db")})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })

	s.runner, err = importers.NewRunner(&importers.RunnerConfig{
		Importer: &importers.Config{Store: store, Logger: zap.NewNop()},
	})
	s.Require().NoError(err)
	s.outcomes = make(chan *importers.FileOutcome, 10)
}

// start runs a watcher until the returned stop function is called
func (s *WatcherTestSuite) start() func() {
	w, err := importers.NewWatcher(&importers.WatcherConfig{
		Runner:   s.runner,
		Dir:      s.dir,
		Debounce: 40 * time.Millisecond,
		OnImport: func(o *importers.FileOutcome) { s.outcomes <- o },
	})
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	return func() {
		cancel()
		s.NoError(<-done)
	}
}

func (s *WatcherTestSuite) next() *importers.FileOutcome {
	select {
	case o := <-s.outcomes:
		return o
	case <-time.After(5 * time.Second):
		s.FailNow("no import within 5s")
		return nil
	}
}

func (s *WatcherTestSuite) TestImportsWrittenFiles() {
	stop := s.start()
	defer stop()

	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "notes.txt"), []byte("ignored"), 0o600))
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "class-wizard-phb.xml"), []byte(compendiumXML(wizardXML)), 0o600))

	out := s.next()
	s.Equal(filepath.Join(s.dir, "class-wizard-phb.xml"), out.Path)
	s.False(out.Failed())

	_, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeClass, "wizard")
	s.NoError(err)
}

func (s *WatcherTestSuite) TestMalformedFileReported() {
	stop := s.start()
	defer stop()

	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "feats-bad.xml"), []byte("<compendium><feat>"), 0o600))

	out := s.next()
	s.True(out.Failed())
	s.True(errors.IsInvalidArgument(out.Err), "%v", out.Err)
}

func (s *WatcherTestSuite) TestConfigValidation() {
	_, err := importers.NewWatcher(&importers.WatcherConfig{Runner: s.runner})
	s.ErrorContains(err, "dir")

	w, err := importers.NewWatcher(&importers.WatcherConfig{Runner: s.runner, Dir: filepath.Join(s.dir, "missing")})
	s.Require().NoError(err)
	s.True(errors.IsNotFound(w.Run(s.ctx)))
}

func TestWatcherSuite(t *testing.T) {
	suite.Run(t, new(WatcherTestSuite))
}
