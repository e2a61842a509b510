package importers

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Step is one stage of a full import: every file in the import directory
// matching Pattern and none of Exclude goes through Importer
type Step struct {
	// Group is the name --only filters on; spells and spell mappings share one
	Group    string
	Pattern  string
	Exclude  []string
	Importer Importer
}

// RunnerConfig contains the dependencies of a Runner
type RunnerConfig struct {
	Importer *Config
	// ParseConcurrency bounds files parsed at once (optional, defaults to 4)
	ParseConcurrency int
}

// Runner imports a directory of compendium files in dependency order
type Runner struct {
	steps       []Step
	importers   map[string]Importer
	concurrency int
	logger      *zap.Logger
}

// NewRunner creates a Runner with every importer
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if err := cfg.Importer.Validate(); err != nil {
		return nil, err
	}

	classes, err := NewClassImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	spells, err := NewSpellImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	mappings, err := NewSpellClassMappingImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	races, err := NewRaceImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	items, err := NewItemImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	backgrounds, err := NewBackgroundImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	feats, err := NewFeatImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	features, err := NewOptionalFeatureImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	monsters, err := NewMonsterImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}

	return NewRunnerWithSteps(cfg, []Step{
		{Group: "classes", Pattern: "class-*.xml", Importer: classes},
		{Group: "spells", Pattern: "spells-*.xml", Exclude: []string{"*+*"}, Importer: spells},
		{Group: "spells", Pattern: "spells-*+*.xml", Importer: mappings},
		{Group: "races", Pattern: "races-*.xml", Importer: races},
		{Group: "items", Pattern: "items-*.xml", Importer: items},
		{Group: "backgrounds", Pattern: "backgrounds-*.xml", Importer: backgrounds},
		{Group: "feats", Pattern: "feats-*.xml", Importer: feats},
		{Group: "optional-features", Pattern: "optionalfeatures-*.xml", Importer: features},
		{Group: "monsters", Pattern: "bestiary-*.xml", Importer: monsters},
	}), nil
}

// NewRunnerWithSteps creates a Runner over explicit steps
func NewRunnerWithSteps(cfg *RunnerConfig, steps []Step) *Runner {
	concurrency := cfg.ParseConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	logger := zap.NewNop()
	if cfg.Importer != nil && cfg.Importer.Logger != nil {
		logger = cfg.Importer.Logger
	}
	r := &Runner{
		steps:       steps,
		importers:   map[string]Importer{},
		concurrency: concurrency,
		logger:      logger.With(zap.String("component", "import-runner")),
	}
	for _, s := range steps {
		r.importers[s.Importer.Name()] = s.Importer
	}
	return r
}

// Importer returns the importer registered under name, e.g. "spells"
func (r *Runner) Importer(name string) (Importer, bool) {
	imp, ok := r.importers[name]
	return imp, ok
}

// ImporterNames lists the registered importers, sorted
func (r *Runner) ImporterNames() []string {
	names := make([]string, 0, len(r.importers))
	for name := range r.importers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Groups lists the step groups in import order
func (r *Runner) Groups() []string {
	var groups []string
	seen := map[string]bool{}
	for _, s := range r.steps {
		if !seen[s.Group] {
			seen[s.Group] = true
			groups = append(groups, s.Group)
		}
	}
	return groups
}

// StepFor returns the first step whose pattern matches the base name of path
func (r *Runner) StepFor(path string) (Step, bool) {
	idx := r.stepIndex(path)
	if idx < 0 {
		return Step{}, false
	}
	return r.steps[idx], true
}

func (r *Runner) stepIndex(path string) int {
	name := filepath.Base(path)
	for i, s := range r.steps {
		if ok, _ := filepath.Match(s.Pattern, name); ok && !excluded(name, s.Exclude) {
			return i
		}
	}
	return -1
}

// ImportPath imports a single file through the importer of its step
// Returns errors.InvalidArgument when no step matches the file name
func (r *Runner) ImportPath(ctx context.Context, path string) (*FileOutcome, error) {
	step, ok := r.StepFor(path)
	if !ok {
		return nil, errors.InvalidArgumentf("%s matches no import pattern", filepath.Base(path))
	}
	outcome := &FileOutcome{Path: path}
	outcome.Result, outcome.Err = step.Importer.ImportFile(ctx, path)
	if errors.GetCode(outcome.Err) == errors.CodeCanceled {
		return nil, outcome.Err
	}
	return outcome, nil
}

// ImportAllInput defines the input for ImportAll
type ImportAllInput struct {
	Dir string
	// Only limits the run to these groups; empty runs every group
	Only []string
}

// FileOutcome is the result of one file in a full import
type FileOutcome struct {
	Path   string
	Result *FileResult
	// Err is set when the file could not be parsed or imported at all
	Err error
}

// Failed reports whether the file or any of its records failed
func (o *FileOutcome) Failed() bool {
	return o.Err != nil || (o.Result != nil && o.Result.Failed > 0)
}

// StepResult summarises one step of a full import
type StepResult struct {
	Group    string
	Importer string
	Files    []*FileOutcome
}

// Success is the number of files imported without failures
func (s *StepResult) Success() int {
	n := 0
	for _, f := range s.Files {
		if !f.Failed() {
			n++
		}
	}
	return n
}

// Fail is the number of files with a failure
func (s *StepResult) Fail() int {
	return len(s.Files) - s.Success()
}

// ImportAllOutput summarises a full import
type ImportAllOutput struct {
	Steps    []*StepResult
	Duration time.Duration
}

// Failed is the number of failed files over every step
func (o *ImportAllOutput) Failed() int {
	n := 0
	for _, s := range o.Steps {
		n += s.Fail()
	}
	return n
}

type plannedFile struct {
	step  int
	path  string
	batch *Batch
	err   error
}

// ImportAll parses every matching file concurrently, then imports them one
// at a time in step order so later steps see the entities of earlier ones
func (r *Runner) ImportAll(ctx context.Context, input *ImportAllInput) (*ImportAllOutput, error) {
	if input == nil || input.Dir == "" {
		return nil, errors.InvalidArgument("import directory is required")
	}
	info, err := os.Stat(input.Dir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFoundf("import directory %s not found", input.Dir)
	}
	if err := r.validateGroups(input.Only); err != nil {
		return nil, err
	}

	start := time.Now()
	files, steps, err := r.plan(input)
	if err != nil {
		return nil, err
	}

	r.logger.Info("parsing import files", zap.Int("files", len(files)), zap.Int("concurrency", r.concurrency))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f.batch, f.err = steps[f.step].Importer.ParseFile(f.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "import canceled")
	}

	out := &ImportAllOutput{}
	byStep := map[int]*StepResult{}
	for idx, s := range steps {
		sr := &StepResult{Group: s.Group, Importer: s.Importer.Name()}
		byStep[idx] = sr
		out.Steps = append(out.Steps, sr)
	}
	for _, f := range files {
		outcome := &FileOutcome{Path: f.path, Err: f.err}
		if f.err == nil {
			outcome.Result, outcome.Err = steps[f.step].Importer.ImportBatch(ctx, f.batch)
			if errors.GetCode(outcome.Err) == errors.CodeCanceled {
				return nil, outcome.Err
			}
		}
		if outcome.Err != nil {
			r.logger.Error("failed to import file", zap.String("path", f.path), zap.Error(outcome.Err))
		}
		byStep[f.step].Files = append(byStep[f.step].Files, outcome)
	}
	out.Duration = time.Since(start)

	r.logger.Info("import complete",
		zap.Duration("duration", out.Duration),
		zap.Int("files", len(files)),
		zap.Int("failed", out.Failed()),
	)
	return out, nil
}

func (r *Runner) validateGroups(only []string) error {
	known := map[string]bool{}
	for _, g := range r.Groups() {
		known[g] = true
	}
	vb := errors.NewValidationBuilder()
	for _, g := range only {
		if !known[g] {
			vb.Fieldf("only", "unknown type %q, expected one of %s", g, strings.Join(r.Groups(), ","))
		}
	}
	return vb.Build()
}

func (r *Runner) plan(input *ImportAllInput) ([]*plannedFile, []Step, error) {
	var steps []Step
	for _, s := range r.steps {
		if len(input.Only) == 0 || slices.Contains(input.Only, s.Group) {
			steps = append(steps, s)
		}
	}

	var files []*plannedFile
	for idx, s := range steps {
		paths, err := MatchFiles(input.Dir, s.Pattern, s.Exclude)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range paths {
			files = append(files, &plannedFile{step: idx, path: p})
		}
	}
	return files, steps, nil
}

// MatchFiles globs pattern in dir, dropping files whose base name matches
// an exclude pattern. Paths are sorted.
func MatchFiles(dir, pattern string, exclude []string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.InvalidArgumentf("bad pattern %q: %v", pattern, err)
	}
	out := paths[:0]
	for _, p := range paths {
		if !excluded(filepath.Base(p), exclude) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
