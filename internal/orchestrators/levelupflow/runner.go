package levelupflow

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// TagLevelUpFlow marks the characters a run creates
const TagLevelUpFlow = "level-up-flow"

// RunInput configures a batch of level up runs
type RunInput struct {
	Count       int
	TargetLevel int
	Seed        int64
	Chaos       bool
	// Realistic wins over Chaos
	Realistic     bool
	ForceClass    string
	ForceSubclass string
	// CharacterID levels an existing character instead of creating one. It
	// implies a count of 1.
	CharacterID string
	// Cleanup deletes the characters the run created
	Cleanup bool
}

// Mode returns the leveling mode the flags select
func (in *RunInput) Mode() string {
	switch {
	case in.Realistic:
		return ModeRealistic
	case in.Chaos:
		return ModeChaos
	default:
		return ModeLinear
	}
}

func (in *RunInput) options() map[string]string {
	out := map[string]string{
		"count":        strconv.Itoa(in.Count),
		"target_level": strconv.Itoa(in.TargetLevel),
		"mode":         in.Mode(),
	}
	if in.ForceClass != "" {
		out["force_class"] = in.ForceClass
	}
	if in.ForceSubclass != "" {
		out["force_subclass"] = in.ForceSubclass
	}
	if in.CharacterID != "" {
		out["character"] = in.CharacterID
	}
	return out
}

// Runner creates characters through the wizard and levels them up
type Runner struct {
	svc     character.Service
	dice    dice.Service
	names   []string
	clock   clock.Clock
	reports *ReportGenerator
	logger  *zap.Logger
}

// NewRunner creates a runner
func NewRunner(cfg *wizardflow.RunnerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Runner{
		svc:     cfg.Service,
		dice:    cfg.Dice,
		names:   cfg.Names,
		clock:   cfg.Clock,
		reports: NewReportGenerator(cfg.Reports, cfg.Clock, cfg.IDGenerator),
		logger:  cfg.Logger.With(zap.String("component", "level-up-flow")),
	}, nil
}

// Reports returns the runner's report generator
func (r *Runner) Reports() *ReportGenerator { return r.reports }

// Run levels input.Count characters. Iteration i is seeded with
// input.Seed + i - 1.
func (r *Runner) Run(ctx context.Context, input *RunInput) (*Report, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetLevel <= 0 {
		input.TargetLevel = dnd5e.MaxLevel
	}
	if input.TargetLevel > dnd5e.MaxLevel {
		return nil, errors.InvalidArgumentf("target level must be at most %d", dnd5e.MaxLevel)
	}
	if input.Count <= 0 || input.CharacterID != "" {
		input.Count = 1
	}
	if input.Seed == 0 {
		input.Seed = r.clock.Now().Unix()
	}

	var results []*Result
	for i := 1; i <= input.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := input.Seed + int64(i-1)
		rand := wizardflow.NewRandomizer(dice.NewSeededRoller(seed), r.svc, r.names)

		id := input.CharacterID
		if id == "" {
			created, err := r.create(ctx, rand, input, i, seed)
			if err != nil {
				res := &Result{Iteration: i, Seed: seed, Mode: input.Mode(), CharacterID: created}
				res.setError(1, err)
				results = append(results, res)
				r.logger.Warn("failed to create character", zap.Int("iteration", i), zap.Int64("seed", seed), zap.Error(err))
				r.cleanup(ctx, input, created)
				continue
			}
			id = created
		}

		exec, err := NewExecutor(&ExecutorConfig{Service: r.svc, Randomizer: rand, Logger: r.logger})
		if err != nil {
			return nil, err
		}
		res := exec.Run(ctx, &ExecuteInput{
			CharacterID:   id,
			TargetLevel:   input.TargetLevel,
			Mode:          input.Mode(),
			Iteration:     i,
			Seed:          seed,
			ForceSubclass: input.ForceSubclass,
		})
		results = append(results, res)
		r.logger.Info("level up flow finished",
			zap.Int("iteration", i),
			zap.Int64("seed", seed),
			zap.String("mode", res.Mode),
			zap.String("character_id", id),
			zap.Int("final_level", res.FinalLevel),
			zap.String("status", res.Status))

		if input.CharacterID == "" {
			r.cleanup(ctx, input, id)
		}
	}

	report := r.reports.Generate(input.Seed, input.options(), results)
	if err := r.reports.Save(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// create builds a complete level 1 character with the linear wizard flow
// and returns its id, which is set even when the flow did not pass
func (r *Runner) create(ctx context.Context, rand *wizardflow.Randomizer, input *RunInput, iteration int, seed int64) (string, error) {
	exec, err := wizardflow.NewExecutor(&wizardflow.ExecutorConfig{Service: r.svc, Randomizer: rand, Dice: r.dice, Logger: r.logger})
	if err != nil {
		return "", err
	}
	flow := exec.Run(ctx, wizardflow.NewGenerator(rand).Linear(), wizardflow.RunOptions{
		Iteration:     iteration,
		Seed:          seed,
		ForceClass:    input.ForceClass,
		ForceSubclass: input.ForceSubclass,
		Tags:          []string{TagLevelUpFlow},
	})
	if flow.Status != wizardflow.StatusPassed {
		msg := "character creation " + flow.Status
		if f := flow.Failures(); len(f) > 0 {
			msg = fmt.Sprintf("%s at %s", msg, f[0].Action)
			if f[0].Error != "" {
				msg += ": " + f[0].Error
			}
		}
		return flow.CharacterID, errors.FailedPrecondition(msg)
	}
	return flow.CharacterID, nil
}

func (r *Runner) cleanup(ctx context.Context, input *RunInput, id string) {
	if !input.Cleanup || id == "" {
		return
	}
	if _, err := r.svc.DeleteCharacter(ctx, &character.DeleteCharacterInput{CharacterID: id}); err != nil {
		r.logger.Warn("failed to delete level up character", zap.String("character_id", id), zap.Error(err))
	}
}
