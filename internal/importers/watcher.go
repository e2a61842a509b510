package importers

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// DefaultDebounce is how long a file must be quiet before it is imported
const DefaultDebounce = 500 * time.Millisecond

// WatcherConfig contains the dependencies of a Watcher
type WatcherConfig struct {
	Runner *Runner
	Dir    string
	// Debounce delays an import until the file stops changing (optional)
	Debounce time.Duration
	// OnImport receives every outcome (optional)
	OnImport func(*FileOutcome)
	Logger   *zap.Logger
}

// Validate validates the WatcherConfig and sets defaults
func (cfg *WatcherConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(cfg.Runner == nil, "runner")
	errors.ValidateRequired("dir", cfg.Dir, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return nil
}

// Watcher re-imports compendium files as they are written to a directory.
// Files are matched to importers with the same patterns as ImportAll.
type Watcher struct {
	runner   *Runner
	dir      string
	debounce time.Duration
	onImport func(*FileOutcome)
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a Watcher
func NewWatcher(cfg *WatcherConfig) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Watcher{
		runner:   cfg.Runner,
		dir:      cfg.Dir,
		debounce: cfg.Debounce,
		onImport: cfg.OnImport,
		logger:   cfg.Logger.With(zap.String("component", "import-watcher"), zap.String("dir", cfg.Dir)),
		pending:  map[string]time.Time{},
	}, nil
}

// Run watches until ctx is done. It returns nil on cancellation.
// Returns errors.NotFound when the directory cannot be watched
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return errors.NotFoundf("cannot watch %s: %v", w.dir, err)
	}
	w.logger.Info("watching for compendium files")

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", zap.Error(err))
		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.importFile(ctx, path)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if _, ok := w.runner.StepFor(event.Name); !ok {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// due pops the files that have been quiet for the debounce period in step
// order, so a class file written with its spells is imported first
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Or(cmp.Compare(w.runner.stepIndex(a), w.runner.stepIndex(b)), strings.Compare(a, b))
	})
	return out
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	outcome, err := w.runner.ImportPath(ctx, path)
	if err != nil {
		if errors.GetCode(err) != errors.CodeCanceled {
			w.logger.Warn("skipped file", zap.String("path", path), zap.Error(err))
		}
		return
	}

	fields := []zap.Field{zap.String("path", path)}
	if outcome.Result != nil {
		fields = append(fields,
			zap.Int("created", outcome.Result.Created),
			zap.Int("updated", outcome.Result.Updated),
			zap.Int("failed", outcome.Result.Failed))
	}
	if outcome.Err != nil {
		w.logger.Error("failed to import file", append(fields, zap.Error(outcome.Err))...)
	} else {
		w.logger.Info("imported file", fields...)
	}
	if w.onImport != nil {
		w.onImport(outcome)
	}
}
