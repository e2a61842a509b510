package levelupflow

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// rollHitPointsPercent is how often chaos and realistic modes roll hit
// points instead of taking the average
const rollHitPointsPercent = 50

// ExecutorConfig holds the dependencies of an executor
type ExecutorConfig struct {
	Service    character.Service
	Randomizer *wizardflow.Randomizer
	Logger     *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *ExecutorConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.Service == nil, "Service")
	vb.RequiredIf(c.Randomizer == nil, "Randomizer")
	if err := vb.Build(); err != nil {
		return err
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Executor levels one character to a target level
type Executor struct {
	svc       character.Service
	rand      *wizardflow.Randomizer
	resolver  *wizardflow.Resolver
	validator Validator
	logger    *zap.Logger
}

// NewExecutor creates an executor
func NewExecutor(cfg *ExecutorConfig) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Executor{
		svc:      cfg.Service,
		rand:     cfg.Randomizer,
		resolver: wizardflow.NewResolver(cfg.Service, cfg.Randomizer),
		logger:   cfg.Logger,
	}, nil
}

// ExecuteInput selects the character and how it is leveled
type ExecuteInput struct {
	CharacterID string
	TargetLevel int
	Mode        string
	Iteration   int
	Seed        int64
	// ForceSubclass is picked when a subclass choice offers it
	ForceSubclass string
}

// StepResult records one gained level
type StepResult struct {
	Level          int                          `json:"level"`
	ClassSlug      string                       `json:"class_slug"`
	Multiclass     bool                         `json:"multiclass,omitempty"`
	Status         string                       `json:"status"`
	HPGained       int                          `json:"hp_gained"`
	FeaturesGained []string                     `json:"features_gained,omitempty"`
	Choices        int                          `json:"choices"`
	Validation     *wizardflow.ValidationResult `json:"validation,omitempty"`
	Error          string                       `json:"error,omitempty"`
	Before         *Snapshot                    `json:"before,omitempty"`
	After          *Snapshot                    `json:"after,omitempty"`
}

// RunError is the error that ended a run
type RunError struct {
	AtLevel int    `json:"at_level"`
	Message string `json:"message"`
}

// Result records one leveled character
type Result struct {
	Iteration   int          `json:"iteration"`
	Seed        int64        `json:"seed"`
	Mode        string       `json:"mode"`
	CharacterID string       `json:"character_id"`
	StartLevel  int          `json:"start_level"`
	FinalLevel  int          `json:"final_level"`
	Status      string       `json:"status"`
	Plan        *Plan        `json:"plan,omitempty"`
	Steps       []StepResult `json:"steps"`
	Warnings    int          `json:"warnings"`
	Error       *RunError    `json:"error,omitempty"`
}

func (r *Result) setError(level int, err error) {
	r.Status = wizardflow.StatusError
	r.Error = &RunError{AtLevel: level, Message: err.Error()}
}

// Failures returns the failed and errored steps
func (r *Result) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == wizardflow.StatusFailed || s.Status == wizardflow.StatusError {
			out = append(out, s)
		}
	}
	return out
}

// Patterns returns the failure pattern of every failed step
func (r *Result) Patterns() []string {
	var out []string
	for _, s := range r.Failures() {
		switch {
		case s.Validation != nil && s.Validation.Pattern != "":
			out = append(out, s.Validation.Pattern)
		case s.Status == wizardflow.StatusError:
			out = append(out, wizardflow.PatternAPIError)
		}
	}
	return out
}

// Run levels the character from its current level to the target. A wizard
// error ends the run since levels cannot be skipped; failed checks are
// recorded and leveling continues.
func (e *Executor) Run(ctx context.Context, input *ExecuteInput) *Result {
	result := &Result{
		Iteration:   input.Iteration,
		Seed:        input.Seed,
		Mode:        input.Mode,
		CharacterID: input.CharacterID,
		Status:      wizardflow.StatusPassed,
	}
	logger := e.logger.With(zap.Int("iteration", input.Iteration), zap.String("character_id", input.CharacterID))

	got, err := e.svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: input.CharacterID})
	if err != nil {
		result.setError(1, err)
		return result
	}
	char := got.Character
	result.StartLevel = char.TotalLevel()
	result.FinalLevel = result.StartLevel
	if !char.IsComplete {
		result.setError(result.StartLevel, errors.FailedPrecondition("character is not complete"))
		return result
	}
	if len(char.Classes) == 0 {
		result.setError(result.StartLevel, errors.FailedPrecondition("character has no class"))
		return result
	}

	// starting class first
	var classes []string
	if p := char.PrimaryClass(); p != nil {
		classes = append(classes, p.ClassSlug)
	}
	for _, cl := range char.Classes {
		if !slices.Contains(classes, cl.ClassSlug) {
			classes = append(classes, cl.ClassSlug)
		}
	}

	if input.Mode == ModeRealistic {
		result.Plan = NewRealisticPlan(e.rand, result.StartLevel, input.TargetLevel)
	}
	opts := wizardflow.ResolveOptions{ForceSubclass: input.ForceSubclass}
	if input.Mode != ModeLinear {
		opts.RollHitPointsPercent = rollHitPointsPercent
	}

	for level := result.StartLevel + 1; level <= input.TargetLevel; level++ {
		if err := ctx.Err(); err != nil {
			result.setError(level, err)
			break
		}
		step, err := e.levelUp(ctx, input, result.Plan, &classes, level, opts)
		if err != nil {
			result.setError(level, err)
			logger.Error("level up flow step failed", zap.Int("level", level), zap.Error(err))
			break
		}
		result.Steps = append(result.Steps, *step)
		if step.Validation != nil {
			result.Warnings += len(step.Validation.Warnings)
		}

		switch step.Status {
		case wizardflow.StatusError:
			result.Status = wizardflow.StatusError
			logger.Debug("level up errored", zap.Int("level", level), zap.String("class", step.ClassSlug), zap.String("error", step.Error))
		case wizardflow.StatusFailed:
			result.Status = wizardflow.StatusFailed
			logger.Debug("level up failed",
				zap.Int("level", level),
				zap.String("class", step.ClassSlug),
				zap.String("pattern", step.Validation.Pattern),
				zap.Strings("errors", step.Validation.Errors))
		}
		if step.Status == wizardflow.StatusError {
			break
		}
		if step.After != nil {
			result.FinalLevel = step.After.TotalLevel
		}
	}
	return result
}

// levelUp gains one level. The returned error is for failures outside the
// wizard call itself, which is recorded on the step.
func (e *Executor) levelUp(ctx context.Context, input *ExecuteInput, plan *Plan, classes *[]string, level int, opts wizardflow.ResolveOptions) (*StepResult, error) {
	before, err := Capture(ctx, e.svc, input.CharacterID)
	if err != nil {
		return nil, err
	}
	step := &StepResult{Level: level, Status: wizardflow.StatusPassed, Before: before}

	multiclass := false
	switch input.Mode {
	case ModeChaos:
		multiclass = level > 2 && e.rand.Chance(chaosMulticlassPercent)
	case ModeRealistic:
		multiclass = plan.MulticlassAt(level)
	}
	if multiclass {
		if slug := e.addClass(ctx, input.CharacterID, *classes); slug != "" {
			*classes = append(*classes, slug)
			step.ClassSlug = slug
			step.Multiclass = true
		}
	}

	if !step.Multiclass {
		step.ClassSlug = (*classes)[0]
		if input.Mode != ModeLinear {
			step.ClassSlug = wizardflow.Pick(e.rand, *classes)
		}
		if _, err := e.svc.LevelUp(ctx, &character.LevelUpInput{CharacterID: input.CharacterID, ClassSlug: step.ClassSlug}); err != nil {
			step.Status = wizardflow.StatusError
			step.Error = err.Error()
			return step, nil
		}
	}

	resolved, err := e.resolver.ResolvePending(ctx, input.CharacterID, opts)
	step.Choices = len(resolved)
	if err != nil {
		step.Status = wizardflow.StatusError
		step.Error = err.Error()
		return step, nil
	}

	after, err := Capture(ctx, e.svc, input.CharacterID)
	if err != nil {
		return nil, err
	}
	step.After = after
	step.HPGained = after.MaxHP - before.MaxHP
	step.FeaturesGained = FeaturesGained(before, after)
	step.Validation = e.validator.ValidateLevelUp(before, after, step.ClassSlug, level)
	step.Status = step.Validation.Status
	return step, nil
}

// addClass multiclasses into a random class the character does not have.
// An empty slug means no class could be added.
func (e *Executor) addClass(ctx context.Context, characterID string, held []string) string {
	out, err := e.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: character.OptionClass})
	if err != nil {
		e.logger.Warn("failed to list classes", zap.Error(err))
		return ""
	}
	var candidates []string
	for _, o := range out.Options {
		if !slices.Contains(held, o.Slug) {
			candidates = append(candidates, o.Slug)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	slug := wizardflow.Pick(e.rand, candidates)
	if _, err := e.svc.AddClass(ctx, &character.AddClassInput{CharacterID: characterID, ClassSlug: slug}); err != nil {
		// unmet multiclass requirements fall back to a regular level up
		e.logger.Debug("multiclass refused", zap.String("character_id", characterID), zap.String("class", slug), zap.Error(err))
		return ""
	}
	return slug
}

// LevelDistribution counts steps per class
func LevelDistribution(steps []StepResult) map[string]int {
	out := map[string]int{}
	for _, s := range steps {
		if s.Status != wizardflow.StatusError && s.ClassSlug != "" {
			out[s.ClassSlug]++
		}
	}
	return out
}
