package wizardflow

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

const (
	defaultMinSwitches = 1
	defaultMaxSwitches = 3
)

// RunInput configures a batch of flows
type RunInput struct {
	Count          int
	Seed           int64
	Chaos          bool
	Switches       []string
	MinSwitches    int
	MaxSwitches    int
	AllRaces       bool
	EquipmentModes bool
	// ClassTypes holds the from and to class types of a class type switch
	ClassTypes    [2]string
	ForceClass    string
	ForceSubclass string
	// Cleanup deletes the characters once their flow is done
	Cleanup  bool
	Scenario string
}

func (in *RunInput) options() map[string]string {
	out := map[string]string{
		"count":        strconv.Itoa(in.Count),
		"chaos":        strconv.FormatBool(in.Chaos),
		"min_switches": strconv.Itoa(in.MinSwitches),
		"max_switches": strconv.Itoa(in.MaxSwitches),
	}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("switches", strings.Join(in.Switches, ","))
	set("force_class", in.ForceClass)
	set("force_subclass", in.ForceSubclass)
	set("scenario", in.Scenario)
	if in.AllRaces {
		out["all_races"] = "true"
	}
	if in.EquipmentModes {
		out["equipment_modes"] = "true"
	}
	if in.ClassTypes[0] != "" {
		out["class_types"] = in.ClassTypes[0] + "->" + in.ClassTypes[1]
	}
	return out
}

// RunnerConfig holds the dependencies of a runner
type RunnerConfig struct {
	Service character.Service
	Reports ReportStore
	// Dice enables rolled ability scores. Optional.
	Dice dice.Service
	// Names are the character names flows pick from. Optional.
	Names       []string
	Clock       clock.Clock
	IDGenerator idgen.Generator
	Logger      *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *RunnerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.Service == nil, "Service")
	vb.RequiredIf(c.Reports == nil, "Reports")
	if err := vb.Build(); err != nil {
		return err
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Runner runs batches of flows and stores their report
type Runner struct {
	svc     character.Service
	dice    dice.Service
	names   []string
	clock   clock.Clock
	reports *ReportGenerator
	logger  *zap.Logger
}

// NewRunner creates a runner
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Runner{
		svc:     cfg.Service,
		dice:    cfg.Dice,
		names:   cfg.Names,
		clock:   cfg.Clock,
		reports: NewReportGenerator(cfg.Reports, cfg.Clock, cfg.IDGenerator),
		logger:  cfg.Logger.With(zap.String("component", "wizard-flow")),
	}, nil
}

// Reports returns the runner's report generator
func (r *Runner) Reports() *ReportGenerator { return r.reports }

// Run executes input.Count iterations. Iteration i is seeded with
// input.Seed + i - 1 so any single iteration can be replayed on its own.
func (r *Runner) Run(ctx context.Context, input *RunInput) (*Report, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Count <= 0 {
		input.Count = 1
	}
	if input.Seed == 0 {
		input.Seed = r.clock.Now().Unix()
	}
	if input.MinSwitches <= 0 {
		input.MinSwitches = defaultMinSwitches
	}
	if input.MaxSwitches < input.MinSwitches {
		input.MaxSwitches = max(defaultMaxSwitches, input.MinSwitches)
	}

	var results []*FlowResult
	for i := 1; i <= input.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := input.Seed + int64(i-1)
		rand := NewRandomizer(dice.NewSeededRoller(seed), r.svc, r.names)
		flows, err := r.flows(ctx, NewGenerator(rand), input)
		if err != nil {
			return nil, err
		}
		exec, err := NewExecutor(&ExecutorConfig{Service: r.svc, Randomizer: rand, Dice: r.dice, Logger: r.logger})
		if err != nil {
			return nil, err
		}

		for _, flow := range flows {
			res := exec.Run(ctx, flow, RunOptions{
				Iteration:     i,
				Seed:          seed,
				ForceClass:    input.ForceClass,
				ForceSubclass: input.ForceSubclass,
			})
			results = append(results, res)
			r.logger.Info("flow finished",
				zap.Int("iteration", i),
				zap.Int64("seed", seed),
				zap.String("flow", flow.Type),
				zap.Int("switches", flow.SwitchCount()),
				zap.String("status", res.Status),
				zap.String("character_id", res.CharacterID))

			if input.Cleanup && res.CharacterID != "" {
				if _, err := r.svc.DeleteCharacter(ctx, &character.DeleteCharacterInput{CharacterID: res.CharacterID}); err != nil {
					r.logger.Warn("failed to delete flow character", zap.String("character_id", res.CharacterID), zap.Error(err))
				}
			}
		}
	}

	report := r.reports.Generate(input.Seed, input.options(), results)
	if err := r.reports.Save(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// flows picks the flows of one iteration. The first matching mode wins:
// all races, equipment modes, class types, named switches, chaos, linear.
func (r *Runner) flows(ctx context.Context, gen *Generator, input *RunInput) ([]*Flow, error) {
	switch {
	case input.AllRaces:
		out, err := r.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionRace})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list races")
		}
		races := make([]string, 0, len(out.Options))
		for _, o := range out.Options {
			races = append(races, o.Slug)
		}
		return gen.AllRaces(races, input.MinSwitches, input.MaxSwitches), nil
	case input.EquipmentModes:
		return []*Flow{gen.EquipmentModeChaos()}, nil
	case input.ClassTypes[0] != "":
		return []*Flow{gen.ClassTypeSwitch(input.ClassTypes[0], input.ClassTypes[1])}, nil
	case len(input.Switches) > 0:
		flow, err := gen.WithSwitches(input.Switches)
		if err != nil {
			return nil, err
		}
		return []*Flow{flow}, nil
	case input.Chaos:
		return []*Flow{gen.Chaos(input.MinSwitches, input.MaxSwitches)}, nil
	default:
		return []*Flow{gen.Linear()}, nil
	}
}
