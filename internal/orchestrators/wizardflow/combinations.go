package wizardflow

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// CombinationsReportKind is the store kind of class combination reports
const CombinationsReportKind = "class-combinations"

// CombinationInput configures a class combination run
type CombinationInput struct {
	// TargetLevel is the level every combination is taken to
	TargetLevel int
	// Class limits the run to one class
	Class   string
	Seed    int64
	Cleanup bool
}

// CombinationResult is the outcome of one class and subclass pair
type CombinationResult struct {
	Class        string `json:"class"`
	Subclass     string `json:"subclass,omitempty"`
	CharacterID  string `json:"character_id,omitempty"`
	ReachedLevel int    `json:"reached_level"`
	Status       string `json:"status"`
	Stage        string `json:"stage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CombinationReport is the outcome of a class combination run
type CombinationReport struct {
	RunID       string               `json:"run_id"`
	Seed        int64                `json:"seed"`
	TargetLevel int                  `json:"target_level"`
	Results     []*CombinationResult `json:"results"`
	Passed      int                  `json:"passed"`
	Failed      int                  `json:"failed"`
}

// Table renders one row per combination
func (r *CombinationReport) Table() string {
	table := console.NewTable(fmt.Sprintf("Class combinations to level %d (seed %d)", r.TargetLevel, r.Seed),
		"Class", "Subclass", "Level", "Status", "Stage", "Error")
	for _, res := range r.Results {
		table.AddRow(res.Class, res.Subclass, strconv.Itoa(res.ReachedLevel),
			console.Status(res.Status == StatusPassed, res.Status), res.Stage, res.Error)
	}
	return table.Render()
}

// CombinationRunner builds every class and subclass pair and levels it up
type CombinationRunner struct {
	svc     character.Service
	dice    dice.Service
	names   []string
	clock   clock.Clock
	reports *ReportGenerator
	logger  *zap.Logger
}

// NewCombinationRunner creates a combination runner
func NewCombinationRunner(cfg *RunnerConfig) (*CombinationRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &CombinationRunner{
		svc:     cfg.Service,
		dice:    cfg.Dice,
		names:   cfg.Names,
		clock:   cfg.Clock,
		reports: NewReportGenerator(cfg.Reports, cfg.Clock, cfg.IDGenerator),
		logger:  cfg.Logger.With(zap.String("component", "class-combinations")),
	}, nil
}

// Run creates one character per class and subclass and takes it to the
// target level, picking the subclass when the wizard offers it
func (r *CombinationRunner) Run(ctx context.Context, input *CombinationInput) (*CombinationReport, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetLevel <= 0 {
		input.TargetLevel = 1
	}
	if input.TargetLevel > dnd5e.MaxLevel {
		return nil, errors.InvalidArgumentf("target level must be at most %d", dnd5e.MaxLevel)
	}
	if input.Seed == 0 {
		input.Seed = r.clock.Now().Unix()
	}

	classes, err := r.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionClass})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}

	report := &CombinationReport{RunID: r.reports.ids.Generate(), Seed: input.Seed, TargetLevel: input.TargetLevel}
	n := 0
	for _, cls := range classes.Options {
		if input.Class != "" && cls.Slug != input.Class {
			continue
		}
		subs, err := r.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionSubclass, Parent: cls.Slug})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list subclasses of %s", cls.Slug)
		}
		subclasses := []string{""}
		if len(subs.Options) > 0 {
			subclasses = subclasses[:0]
			for _, s := range subs.Options {
				subclasses = append(subclasses, s.Slug)
			}
		}

		for _, sub := range subclasses {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res := r.combination(ctx, cls, sub, input.TargetLevel, input.Seed+int64(n))
			n++
			report.Results = append(report.Results, res)
			if res.Status == StatusPassed {
				report.Passed++
			} else {
				report.Failed++
			}
			r.logger.Info("combination finished",
				zap.String("class", res.Class),
				zap.String("subclass", res.Subclass),
				zap.Int("level", res.ReachedLevel),
				zap.String("status", res.Status),
				zap.String("stage", res.Stage))

			if input.Cleanup && res.CharacterID != "" {
				if _, err := r.svc.DeleteCharacter(ctx, &character.DeleteCharacterInput{CharacterID: res.CharacterID}); err != nil {
					r.logger.Warn("failed to delete combination character", zap.String("character_id", res.CharacterID), zap.Error(err))
				}
			}
		}
	}
	if input.Class != "" && len(report.Results) == 0 {
		return nil, errors.NotFoundf("class %s not found", input.Class)
	}

	err = SaveJSON(ctx, r.reports.store, &compendium.Report{
		ID:     report.RunID,
		Kind:   CombinationsReportKind,
		Seed:   report.Seed,
		Passed: report.Passed,
		Failed: report.Failed,
	}, report)
	return report, err
}

func (r *CombinationRunner) combination(ctx context.Context, cls character.Option, subclass string, target int, seed int64) *CombinationResult {
	res := &CombinationResult{Class: cls.Slug, Subclass: subclass, Status: StatusPassed}
	fail := func(stage string, err error) *CombinationResult {
		res.Status = StatusFailed
		res.Stage = stage
		res.Error = err.Error()
		return res
	}

	rand := NewRandomizer(dice.NewSeededRoller(seed), r.svc, r.names)
	exec, err := NewExecutor(&ExecutorConfig{Service: r.svc, Randomizer: rand, Dice: r.dice, Logger: r.logger})
	if err != nil {
		return fail("setup", err)
	}
	flow := exec.Run(ctx, NewGenerator(rand).Linear(), RunOptions{
		Seed:          seed,
		ForceClass:    cls.Slug,
		ForceSubclass: subclass,
		Tags:          []string{"combination"},
	})
	res.CharacterID = flow.CharacterID
	if flow.Status != StatusPassed {
		msg := flow.Status
		if f := flow.Failures(); len(f) > 0 {
			msg = fmt.Sprintf("%s at %s", flow.Status, f[0].Action)
			if f[0].Error != "" {
				msg += ": " + f[0].Error
			}
		}
		return fail("create", errors.Internal(msg))
	}

	resolver := NewResolver(r.svc, rand)
	opts := ResolveOptions{ForceSubclass: subclass}
	res.ReachedLevel = 1
	for res.ReachedLevel < target {
		if _, err := r.svc.LevelUp(ctx, &character.LevelUpInput{CharacterID: res.CharacterID, ClassSlug: cls.Slug}); err != nil {
			return fail(fmt.Sprintf("level %d", res.ReachedLevel+1), err)
		}
		res.ReachedLevel++
		if _, err := resolver.ResolvePending(ctx, res.CharacterID, opts); err != nil {
			return fail(fmt.Sprintf("level %d choices", res.ReachedLevel), err)
		}
	}

	got, err := r.svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: res.CharacterID})
	if err != nil {
		return fail("verify", err)
	}
	link := got.Character.ClassLink(cls.Slug)
	switch {
	case link == nil:
		return fail("verify", errors.FailedPreconditionf("character has no %s levels", cls.Slug))
	case link.Level != target:
		return fail("verify", errors.FailedPreconditionf("%s level is %d, want %d", cls.Slug, link.Level, target))
	case subclass != "" && target >= cls.SubclassLevel && link.SubclassSlug != subclass:
		return fail("verify", errors.FailedPreconditionf("subclass is %q, want %s", link.SubclassSlug, subclass))
	}
	return res
}
