// Package counteraudit compares the class counters written by the importers
// with the optional feature progressions in the rules
package counteraudit

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// Problems recorded on a check that could not be compared
const (
	ProblemClassNotFound    = "class not found"
	ProblemSubclassNotFound = "subclass not found"
	ProblemCounterNotFound  = "counter not found"
	ProblemMismatch         = "mismatch"
)

// Config holds the dependencies of an auditor
type Config struct {
	Store  compendium.Queries
	Rules  *config.Rules
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.Store == nil, "Store")
	vb.RequiredIf(c.Rules == nil, "Rules")
	if err := vb.Build(); err != nil {
		return err
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Auditor checks counters against the rules
type Auditor struct {
	store  compendium.Queries
	rules  *config.Rules
	logger *zap.Logger
}

// New creates an auditor
func New(cfg *Config) (*Auditor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Auditor{
		store:  cfg.Store,
		rules:  cfg.Rules,
		logger: cfg.Logger.With(zap.String("component", "counter-audit")),
	}, nil
}

// Check is one progression level compared with the stored counter. Level is
// zero when the class or subclass is missing.
type Check struct {
	Feature     string `json:"feature"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Subclass    string `json:"subclass,omitempty"`
	Level       int    `json:"level"`
	Expected    int    `json:"expected"`
	Actual      *int   `json:"actual,omitempty"`
	CounterName string `json:"counter_name,omitempty"`
	Problem     string `json:"problem,omitempty"`
}

// Passed reports whether the stored counter matches the rules
func (c Check) Passed() bool { return c.Problem == "" }

// Report is the outcome of an audit
type Report struct {
	Checks []Check `json:"checks"`
}

// Issues returns the failed checks
func (r *Report) Issues() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed() {
			out = append(out, c)
		}
	}
	return out
}

// Table renders the issues, or every check when detailed is set
func (r *Report) Table(detailed bool) string {
	issues := r.Issues()
	title := fmt.Sprintf("Optional feature counters: %d checks, %d mismatches", len(r.Checks), len(issues))
	table := console.NewTable(title, "Feature", "Level", "Expected", "Actual", "Class", "Subclass", "Counter", "Status")
	rows := issues
	if detailed {
		rows = r.Checks
	}
	for _, c := range rows {
		actual := "-"
		if c.Actual != nil {
			actual = strconv.Itoa(*c.Actual)
		}
		subclass, counter := c.Subclass, c.CounterName
		if subclass == "" {
			subclass = "-"
		}
		if counter == "" {
			counter = "N/A"
		}
		status := "ok"
		if !c.Passed() {
			status = c.Problem
		}
		table.AddRow(c.Feature, strconv.Itoa(c.Level), strconv.Itoa(c.Expected), actual,
			c.Class, subclass, counter, console.Status(c.Passed(), status))
	}
	return table.Render()
}

// Audit checks every optional feature track. A base class track reads the
// counters of the class row; a subclass track reads the subclass row.
func (a *Auditor) Audit(ctx context.Context) (*Report, error) {
	report := &Report{}
	for _, featureType := range slices.Sorted(maps.Keys(a.rules.OptionalFeatures)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		checks, err := a.auditTrack(ctx, featureType, a.rules.OptionalFeatures[featureType])
		if err != nil {
			return nil, err
		}
		report.Checks = append(report.Checks, checks...)
	}
	a.logger.Info("counter audit finished",
		zap.Int("checks", len(report.Checks)),
		zap.Int("issues", len(report.Issues())))
	return report, nil
}

func (a *Auditor) auditTrack(ctx context.Context, featureType string, track config.FeatureTrack) ([]Check, error) {
	base := Check{Feature: featureType, Name: track.Name, Class: track.Class, Subclass: track.Subclass}
	missing := func(problem string) []Check {
		c := base
		c.Problem = problem
		return []Check{c}
	}

	cls, err := a.class(ctx, track.Class)
	if err != nil {
		return nil, err
	}
	if cls == nil {
		return missing(ProblemClassNotFound), nil
	}
	counters := baseCounters(cls.Counters)
	if track.Subclass != "" {
		sub, err := a.class(ctx, importers.SubclassSlug(track.Class, track.Subclass))
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return missing(ProblemSubclassNotFound), nil
		}
		counters = sub.Counters
	}

	counterName := matchingCounterName(counters, track.CounterNames)
	var checks []Check
	for _, level := range slices.Sorted(maps.Keys(track.Progression)) {
		c := base
		c.Level = level
		c.Expected = track.Progression[level]
		c.CounterName = counterName
		if value, ok := counterAt(counters, track.CounterNames, level); ok {
			c.Actual = &value
			if value != c.Expected {
				c.Problem = ProblemMismatch
			}
		} else {
			c.Problem = ProblemCounterNotFound
		}
		a.logger.Debug("counter checked",
			zap.String("feature", featureType),
			zap.Int("level", level),
			zap.Int("expected", c.Expected),
			zap.Bool("passed", c.Passed()))
		checks = append(checks, c)
	}
	return checks, nil
}

// class loads a class row, returning nil when it is not stored
func (a *Auditor) class(ctx context.Context, slug string) (*dnd5e.CharacterClass, error) {
	row, err := a.store.GetEntity(ctx, dnd5e.EntityTypeClass, slug)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load class %s", slug)
	}
	cls := &dnd5e.CharacterClass{}
	if err := row.Decode(cls); err != nil {
		return nil, err
	}
	return cls, nil
}

// baseCounters drops the subclass counters a class row carries
func baseCounters(counters []dnd5e.Counter) []dnd5e.Counter {
	var out []dnd5e.Counter
	for _, c := range counters {
		if c.Subclass == "" {
			out = append(out, c)
		}
	}
	return out
}

// counterAt returns the value of the first named counter set at level
func counterAt(counters []dnd5e.Counter, names []string, level int) (int, bool) {
	for _, name := range names {
		for _, c := range counters {
			if c.Level == level && strings.EqualFold(c.Name, name) {
				return c.Value, true
			}
		}
	}
	return 0, false
}

// matchingCounterName returns which of names the class uses at any level
func matchingCounterName(counters []dnd5e.Counter, names []string) string {
	for _, name := range names {
		for _, c := range counters {
			if strings.EqualFold(c.Name, name) {
				return name
			}
		}
	}
	return ""
}
