package levelupflow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// OptionalFeaturesReportKind is the store kind of optional feature reports
const OptionalFeaturesReportKind = "optional-features"

// OptionalFeatureInput configures an optional feature run
type OptionalFeatureInput struct {
	// Class limits the run to the tracks of one class
	Class string
	// TargetLevel is the last class level checked
	TargetLevel int
	Seed        int64
	Cleanup     bool
}

// FeatureCheck compares the features granted at one class level with the
// rules
type FeatureCheck struct {
	Level    int `json:"level"`
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

// Passed reports whether the character has the expected number of features
func (c FeatureCheck) Passed() bool { return c.Expected == c.Actual }

// OptionalFeatureResult is the outcome of one optional feature track
type OptionalFeatureResult struct {
	Feature      string         `json:"feature"`
	Name         string         `json:"name"`
	Class        string         `json:"class"`
	Subclass     string         `json:"subclass,omitempty"`
	CharacterID  string         `json:"character_id,omitempty"`
	ReachedLevel int            `json:"reached_level"`
	Checks       []FeatureCheck `json:"checks,omitempty"`
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
}

// OptionalFeatureReport is the outcome of an optional feature run
type OptionalFeatureReport struct {
	RunID       string                   `json:"run_id"`
	Seed        int64                    `json:"seed"`
	TargetLevel int                      `json:"target_level"`
	Results     []*OptionalFeatureResult `json:"results"`
	Passed      int                      `json:"passed"`
	Failed      int                      `json:"failed"`
	Skipped     int                      `json:"skipped"`
}

// Succeeded reports whether no track failed
func (r *OptionalFeatureReport) Succeeded() bool { return r.Failed == 0 }

// Table renders one row per track, or one per checked level when verbose
func (r *OptionalFeatureReport) Table(verbose bool) string {
	title := fmt.Sprintf("Optional features to level %d (seed %d): %d passed, %d failed, %d skipped",
		r.TargetLevel, r.Seed, r.Passed, r.Failed, r.Skipped)
	if !verbose {
		table := console.NewTable(title, "Feature", "Class", "Subclass", "Level", "Status", "Error")
		for _, res := range r.Results {
			table.AddRow(res.Feature, res.Class, res.Subclass, strconv.Itoa(res.ReachedLevel),
				console.Status(res.Status != wizardflow.StatusFailed, res.Status), res.Error)
		}
		return table.Render()
	}

	table := console.NewTable(title, "Feature", "Class", "Subclass", "Level", "Expected", "Actual", "Status")
	for _, res := range r.Results {
		if len(res.Checks) == 0 {
			table.AddRow(res.Feature, res.Class, res.Subclass, strconv.Itoa(res.ReachedLevel), "-", "-",
				console.Status(res.Status != wizardflow.StatusFailed, res.Status))
			continue
		}
		for _, c := range res.Checks {
			status := wizardflow.StatusPassed
			if !c.Passed() {
				status = wizardflow.StatusFailed
			}
			table.AddRow(res.Feature, res.Class, res.Subclass, strconv.Itoa(c.Level),
				strconv.Itoa(c.Expected), strconv.Itoa(c.Actual), console.Status(c.Passed(), status))
		}
	}
	return table.Render()
}

// OptionalFeatureRunner levels one character per optional feature track and
// counts the features it is granted at every milestone of the track
type OptionalFeatureRunner struct {
	runner *Runner
	rules  *config.Rules
	logger *zap.Logger
}

// NewOptionalFeatureRunner creates an optional feature runner. Nil rules load
// the embedded rules.
func NewOptionalFeatureRunner(cfg *wizardflow.RunnerConfig, rules *config.Rules) (*OptionalFeatureRunner, error) {
	runner, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		if rules, err = config.LoadRules(); err != nil {
			return nil, errors.Wrap(err, "failed to load rules")
		}
	}
	return &OptionalFeatureRunner{
		runner: runner,
		rules:  rules,
		logger: cfg.Logger.With(zap.String("component", "optional-features")),
	}, nil
}

// Run checks every optional feature track, or the tracks of input.Class.
// Tracks whose class or subclass is not in the compendium are skipped.
func (r *OptionalFeatureRunner) Run(ctx context.Context, input *OptionalFeatureInput) (*OptionalFeatureReport, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetLevel <= 0 {
		input.TargetLevel = dnd5e.MaxLevel
	}
	if input.TargetLevel > dnd5e.MaxLevel {
		return nil, errors.InvalidArgumentf("target level must be at most %d", dnd5e.MaxLevel)
	}
	if input.Seed == 0 {
		input.Seed = r.runner.clock.Now().Unix()
	}

	classes, err := r.runner.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionClass})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}
	known := make(map[string]bool, len(classes.Options))
	for _, o := range classes.Options {
		known[o.Slug] = true
	}

	report := &OptionalFeatureReport{RunID: r.runner.reports.ids.Generate(), Seed: input.Seed, TargetLevel: input.TargetLevel}
	n := 0
	for _, featureType := range slices.Sorted(maps.Keys(r.rules.OptionalFeatures)) {
		track := r.rules.OptionalFeatures[featureType]
		if input.Class != "" && track.Class != input.Class {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := &OptionalFeatureResult{Feature: featureType, Name: track.Name, Class: track.Class, Subclass: track.Subclass}
		switch ok, err := r.available(ctx, known, track); {
		case err != nil:
			return nil, err
		case !ok:
			res.Status = wizardflow.StatusSkipped
			res.Error = "not in the compendium"
		default:
			r.track(ctx, res, featureType, track, input.TargetLevel, input.Seed+int64(n))
			n++
		}

		report.Results = append(report.Results, res)
		switch res.Status {
		case wizardflow.StatusPassed:
			report.Passed++
		case wizardflow.StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		r.logger.Info("optional feature track finished",
			zap.String("feature", featureType),
			zap.String("class", track.Class),
			zap.String("subclass", track.Subclass),
			zap.Int("level", res.ReachedLevel),
			zap.String("status", res.Status))

		r.runner.cleanup(ctx, &RunInput{Cleanup: input.Cleanup}, res.CharacterID)
	}
	if input.Class != "" && len(report.Results) == 0 {
		return nil, errors.NotFoundf("no optional feature tracks for class %s", input.Class)
	}

	err = wizardflow.SaveJSON(ctx, r.runner.reports.store, &compendium.Report{
		ID:     report.RunID,
		Kind:   OptionalFeaturesReportKind,
		Seed:   report.Seed,
		Passed: report.Passed,
		Failed: report.Failed,
	}, report)
	return report, err
}

// available reports whether the class and subclass of a track can be picked
func (r *OptionalFeatureRunner) available(ctx context.Context, classes map[string]bool, track config.FeatureTrack) (bool, error) {
	if !classes[track.Class] {
		return false, nil
	}
	if track.Subclass == "" {
		return true, nil
	}
	subs, err := r.runner.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionSubclass, Parent: track.Class})
	if err != nil {
		return false, errors.Wrapf(err, "failed to list subclasses of %s", track.Class)
	}
	return slices.ContainsFunc(subs.Options, func(o character.Option) bool { return o.Slug == track.Subclass }), nil
}

// milestones are the progression levels up to target, ending with target
func milestones(track config.FeatureTrack, target int) []int {
	var out []int
	for _, l := range slices.Sorted(maps.Keys(track.Progression)) {
		if l < target {
			out = append(out, l)
		}
	}
	return append(out, target)
}

func (r *OptionalFeatureRunner) track(ctx context.Context, res *OptionalFeatureResult, featureType string, track config.FeatureTrack, target int, seed int64) {
	res.Status = wizardflow.StatusPassed
	rand := wizardflow.NewRandomizer(dice.NewSeededRoller(seed), r.runner.svc, r.runner.names)
	id, err := r.runner.create(ctx, rand, &RunInput{ForceClass: track.Class, ForceSubclass: track.Subclass}, 1, seed)
	res.CharacterID = id
	if err != nil {
		res.Status = wizardflow.StatusError
		res.Error = err.Error()
		return
	}

	exec, err := NewExecutor(&ExecutorConfig{Service: r.runner.svc, Randomizer: rand, Logger: r.logger})
	if err != nil {
		res.Status = wizardflow.StatusError
		res.Error = err.Error()
		return
	}
	for _, level := range milestones(track, target) {
		run := exec.Run(ctx, &ExecuteInput{
			CharacterID:   id,
			TargetLevel:   level,
			Mode:          ModeLinear,
			Seed:          seed,
			ForceSubclass: track.Subclass,
		})
		if run.Error != nil {
			res.Status = wizardflow.StatusError
			res.Error = fmt.Sprintf("level %d: %s", run.Error.AtLevel, run.Error.Message)
			return
		}

		got, err := r.runner.svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: id})
		if err != nil {
			res.Status = wizardflow.StatusError
			res.Error = err.Error()
			return
		}
		link := got.Character.ClassLink(track.Class)
		if link == nil {
			res.Status = wizardflow.StatusError
			res.Error = fmt.Sprintf("character has no %s levels", track.Class)
			return
		}
		res.ReachedLevel = link.Level
		check := FeatureCheck{
			Level:    link.Level,
			Expected: track.KnownAt(link.Level),
			Actual:   got.Character.OptionalFeatureCount(featureType),
		}
		res.Checks = append(res.Checks, check)
		if !check.Passed() {
			res.Status = wizardflow.StatusFailed
			if res.Error == "" {
				res.Error = fmt.Sprintf("level %d has %d %s, want %d", check.Level, check.Actual, featureType, check.Expected)
			}
		}
	}
}
