package wizardflow

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// TagFlowTest marks every character a flow creates
const TagFlowTest = "flow-test"

// choice types each resolve step answers
var resolveTypes = map[Action][]dnd5e.ChoiceType{
	ActionResolveProficiencyChoices: {dnd5e.ChoiceTypeProficiency, dnd5e.ChoiceTypeAbilityScore},
	ActionResolveLanguageChoices:    {dnd5e.ChoiceTypeLanguage},
	ActionResolveEquipmentChoices:   {dnd5e.ChoiceTypeEquipment},
	ActionResolveSpellChoices:       {dnd5e.ChoiceTypeSpell, dnd5e.ChoiceTypeOptionalFeature},
}

// leftoverTypes are resolved right before validation. Switches late in a
// flow open choices whose resolve step already ran.
var leftoverTypes = []dnd5e.ChoiceType{
	dnd5e.ChoiceTypeProficiency,
	dnd5e.ChoiceTypeAbilityScore,
	dnd5e.ChoiceTypeLanguage,
	dnd5e.ChoiceTypeEquipment,
	dnd5e.ChoiceTypeSpell,
	dnd5e.ChoiceTypeOptionalFeature,
	dnd5e.ChoiceTypeSubclass,
}

// rolledAbilityPercent is how often a flow rolls ability scores instead of
// dealing the standard array, when dice are available
const rolledAbilityPercent = 25

// ExecutorConfig holds the dependencies of an executor
type ExecutorConfig struct {
	Service    character.Service
	Randomizer *Randomizer
	// Dice enables rolled ability scores. Optional.
	Dice   dice.Service
	Logger *zap.Logger
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

// Executor runs flows against the wizard
type Executor struct {
	svc       character.Service
	rand      *Randomizer
	resolver  *Resolver
	dice      dice.Service
	switches  SwitchValidator
	equipment EquipmentValidator
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
		resolver: NewResolver(cfg.Service, cfg.Randomizer),
		dice:     cfg.Dice,
		logger:   cfg.Logger,
	}, nil
}

// RunOptions apply to a whole flow
type RunOptions struct {
	Iteration     int
	Seed          int64
	ForceClass    string
	ForceSubclass string
	Tags          []string
}

// StepResult records one executed step
type StepResult struct {
	Index       int               `json:"index"`
	Action      Action            `json:"action"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Detail      string            `json:"detail,omitempty"`
	Error       string            `json:"error,omitempty"`
	Validation  *ValidationResult `json:"validation,omitempty"`
	Changes     []Change          `json:"changes,omitempty"`
}

// FlowResult records one executed flow
type FlowResult struct {
	Iteration   int          `json:"iteration"`
	Seed        int64        `json:"seed"`
	FlowType    string       `json:"flow_type"`
	CharacterID string       `json:"character_id,omitempty"`
	Status      string       `json:"status"`
	Steps       []StepResult `json:"steps"`
	Warnings    int          `json:"warnings"`
}

// Failures returns the failed and errored steps
func (r *FlowResult) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed || s.Status == StatusError {
			out = append(out, s)
		}
	}
	return out
}

// Patterns returns the failure pattern of every failed step
func (r *FlowResult) Patterns() []string {
	var out []string
	for _, s := range r.Failures() {
		switch {
		case s.Validation != nil && s.Validation.Pattern != "":
			out = append(out, s.Validation.Pattern)
		case s.Status == StatusError:
			out = append(out, PatternAPIError)
		}
	}
	return out
}

// run holds what a flow has picked so far
type run struct {
	opts        RunOptions
	id          string
	race        string
	class       *character.Option
	background  *character.Option
	mode        string
	choiceItems []string
}

// Run executes flow. Wizard errors end the flow; failed checks are recorded
// and the flow continues.
func (e *Executor) Run(ctx context.Context, flow *Flow, opts RunOptions) *FlowResult {
	result := &FlowResult{Iteration: opts.Iteration, Seed: opts.Seed, FlowType: flow.Type, Status: StatusPassed}
	state := &run{opts: opts}
	logger := e.logger.With(zap.Int("iteration", opts.Iteration), zap.String("flow", flow.Type))

	for i, step := range flow.Steps {
		sr := StepResult{Index: i, Action: step.Action, Description: step.Description, Status: StatusPassed}
		applied, err := e.step(ctx, state, step, &sr)
		switch {
		case err != nil:
			sr.Status = StatusError
			sr.Error = err.Error()
		case !applied:
			sr.Status = StatusSkipped
		case sr.Validation != nil:
			sr.Status = sr.Validation.Status
			result.Warnings += len(sr.Validation.Warnings)
		}
		result.Steps = append(result.Steps, sr)
		result.CharacterID = state.id

		switch sr.Status {
		case StatusError:
			result.Status = StatusError
			logger.Debug("flow step errored", zap.Int("step", i), zap.String("action", string(step.Action)), zap.Error(err))
			return result
		case StatusFailed:
			result.Status = StatusFailed
			logger.Debug("flow step failed",
				zap.Int("step", i),
				zap.String("action", string(step.Action)),
				zap.String("pattern", sr.Validation.Pattern),
				zap.Strings("errors", sr.Validation.Errors))
		}
	}
	return result
}

// step applies one step and reports whether it applied
func (e *Executor) step(ctx context.Context, st *run, step Step, sr *StepResult) (bool, error) {
	switch step.Action {
	case ActionCreate:
		out, err := e.svc.CreateCharacter(ctx, &character.CreateCharacterInput{Tags: append([]string{TagFlowTest}, st.opts.Tags...)})
		if err != nil {
			return false, err
		}
		st.id = out.Character.ID
		sr.Detail = st.id
		return true, nil

	case ActionSetRace:
		return true, e.setRace(ctx, st, step.Params[ParamForceRace], sr)

	case ActionSetSubrace:
		return e.setSubrace(ctx, st, sr)

	case ActionSetClass:
		slug := step.Params[ParamForceClass]
		if slug == "" {
			slug = st.opts.ForceClass
		}
		return true, e.setClass(ctx, st, slug, step.Params[ParamClassType], sr)

	case ActionSetSubclass:
		return e.setSubclass(ctx, st, sr)

	case ActionSetBackground:
		bg, err := e.rand.Background(ctx)
		if err != nil {
			return false, err
		}
		return true, e.setBackground(ctx, st, bg, sr)

	case ActionSetAbilityScores:
		return true, e.setAbilityScores(ctx, st, sr)

	case ActionResolveProficiencyChoices, ActionResolveLanguageChoices, ActionResolveSpellChoices:
		resolved, err := e.resolve(ctx, st, resolveTypes[step.Action], sr)
		return len(resolved) > 0, err

	case ActionResolveEquipmentChoices:
		resolved, err := e.resolve(ctx, st, resolveTypes[step.Action], sr)
		if err != nil || len(resolved) == 0 {
			return false, err
		}
		return true, e.checkEquipment(ctx, st, sr)

	case ActionSetEquipmentMode:
		return true, e.setEquipmentMode(ctx, st, e.rand.EquipmentMode(), sr)

	case ActionSetDetails:
		name := e.rand.Name()
		_, err := e.svc.SetDetails(ctx, &character.SetDetailsInput{CharacterID: st.id, Name: name, Alignment: e.rand.Alignment()})
		sr.Detail = name
		return true, err

	case ActionValidate:
		return true, e.validate(ctx, st, sr)

	case ActionSwitchRace, ActionSwitchBackground, ActionSwitchClass:
		return true, e.switchStep(ctx, st, step, sr)
	}
	return false, errors.InvalidArgumentf("unknown action %q", step.Action)
}

func (e *Executor) setRace(ctx context.Context, st *run, slug string, sr *StepResult) error {
	if slug == "" {
		race, err := e.rand.Race(ctx)
		if err != nil {
			return err
		}
		slug = race.Slug
	}
	if _, err := e.svc.SetRace(ctx, &character.SetRaceInput{CharacterID: st.id, RaceSlug: slug}); err != nil {
		return err
	}
	st.race = slug
	sr.Detail = slug
	return nil
}

func (e *Executor) setSubrace(ctx context.Context, st *run, sr *StepResult) (bool, error) {
	sub, err := e.rand.Subrace(ctx, st.race)
	if err != nil || sub == nil {
		return false, err
	}
	if _, err := e.svc.SetSubrace(ctx, &character.SetSubraceInput{CharacterID: st.id, SubraceSlug: sub.Slug}); err != nil {
		return false, err
	}
	sr.Detail = sub.Slug
	return true, nil
}

func (e *Executor) setClass(ctx context.Context, st *run, slug, classType string, sr *StepResult) error {
	var cls *character.Option
	var err error
	if slug != "" {
		cls, err = e.findOption(ctx, character.OptionClass, slug)
	} else {
		current := ""
		if st.class != nil {
			current = st.class.Slug
		}
		cls, err = e.rand.DifferentClass(ctx, current, classType)
	}
	if err != nil {
		return err
	}
	if _, err := e.svc.SetClass(ctx, &character.SetClassInput{CharacterID: st.id, ClassSlug: cls.Slug}); err != nil {
		return err
	}
	st.class = cls
	st.choiceItems = nil
	sr.Detail = cls.Slug
	return nil
}

// setSubclass applies only to classes that pick their subclass at first level
func (e *Executor) setSubclass(ctx context.Context, st *run, sr *StepResult) (bool, error) {
	if st.class == nil || st.class.SubclassLevel != 1 {
		return false, nil
	}
	slug := st.opts.ForceSubclass
	if slug == "" {
		sub, err := e.rand.Subclass(ctx, st.class.Slug)
		if err != nil || sub == nil {
			return false, err
		}
		slug = sub.Slug
	}

	before, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return false, err
	}
	if _, err := e.svc.SetSubclass(ctx, &character.SetSubclassInput{CharacterID: st.id, SubclassSlug: slug}); err != nil {
		return false, err
	}
	after, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return false, err
	}
	sr.Detail = slug
	sr.Validation = ValidateSubclass(before, after)
	sr.Changes = before.Diff(after)
	return true, nil
}

func (e *Executor) setBackground(ctx context.Context, st *run, bg *character.Option, sr *StepResult) error {
	if _, err := e.svc.SetBackground(ctx, &character.SetBackgroundInput{CharacterID: st.id, BackgroundSlug: bg.Slug}); err != nil {
		return err
	}
	st.background = bg
	sr.Detail = bg.Slug
	return nil
}

func (e *Executor) setAbilityScores(ctx context.Context, st *run, sr *StepResult) error {
	input := &character.SetAbilityScoresInput{CharacterID: st.id}
	if e.dice != nil && e.rand.Chance(rolledAbilityPercent) {
		rolls, err := e.dice.RollAbilityScores(ctx, &dice.RollAbilityScoresInput{EntityID: st.id, Method: dice.MethodStandard})
		if err != nil {
			return err
		}
		order := PickN(e.rand, rolls.Rolls, len(rolls.Rolls))
		input.Method = dnd5e.AbilityMethodRolled
		input.RollAssignments = make(map[string]string, len(dnd5e.AbilityCodes))
		for i, code := range dnd5e.AbilityCodes {
			if i < len(order) {
				input.RollAssignments[code] = order[i].RollID
			}
		}
	} else {
		input.Method = dnd5e.AbilityMethodStandardArray
		input.Scores = e.rand.AbilityScores()
	}
	if _, err := e.svc.SetAbilityScores(ctx, input); err != nil {
		return err
	}
	sr.Detail = input.Method
	return nil
}

func (e *Executor) resolve(ctx context.Context, st *run, types []dnd5e.ChoiceType, sr *StepResult) ([]Resolution, error) {
	resolved, err := e.resolver.ResolvePending(ctx, st.id, ResolveOptions{Types: types, ForceSubclass: st.opts.ForceSubclass})
	for _, r := range resolved {
		if r.Type == dnd5e.ChoiceTypeEquipment {
			st.choiceItems = append(st.choiceItems, r.Items...)
		}
	}
	if len(resolved) > 0 {
		sr.Detail = fmt.Sprintf("resolved %d choices", len(resolved))
	}
	return resolved, err
}

func (e *Executor) setEquipmentMode(ctx context.Context, st *run, mode string, sr *StepResult) error {
	before, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}
	if _, err := e.svc.SetEquipmentMode(ctx, &character.SetEquipmentModeInput{CharacterID: st.id, Mode: mode}); err != nil {
		return err
	}
	after, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}
	st.mode = mode
	st.choiceItems = nil
	sr.Detail = mode
	sr.Changes = before.Diff(after)

	results := []*ValidationResult{
		e.equipment.ValidateModeSwitch(before, after),
		e.equipment.ValidateChoicesAvailable(after, e.expectation(st)),
	}
	if mode == dnd5e.EquipmentModeGold {
		results = append(results, e.equipment.Validate(after, e.expectation(st)))
	}
	sr.Validation = merge(results...)
	return nil
}

func (e *Executor) checkEquipment(ctx context.Context, st *run, sr *StepResult) error {
	snap, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}
	sr.Validation = e.equipment.Validate(snap, e.expectation(st))
	return nil
}

func (e *Executor) expectation(st *run) EquipmentExpectation {
	var want EquipmentExpectation
	if st.background != nil {
		want.BackgroundItems = st.background.Equipment
	}
	if st.class != nil && st.mode == dnd5e.EquipmentModeEquipment {
		want.ClassItems = st.class.Equipment
		want.ChoiceGroups = st.class.EquipmentChoices
		want.ChoiceItems = st.choiceItems
	}
	return want
}

func (e *Executor) validate(ctx context.Context, st *run, sr *StepResult) error {
	leftover, err := e.resolver.ResolvePending(ctx, st.id, ResolveOptions{Types: leftoverTypes, ForceSubclass: st.opts.ForceSubclass})
	if err != nil {
		return err
	}
	for _, r := range leftover {
		if r.Type == dnd5e.ChoiceTypeEquipment {
			st.choiceItems = append(st.choiceItems, r.Items...)
		}
	}

	out, err := e.svc.Validate(ctx, &character.ValidateInput{CharacterID: st.id})
	if err != nil {
		return err
	}
	snap, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}

	c := &checker{warnings: out.Warnings}
	for _, msg := range out.Errors {
		c.fail(PatternValidationFailed, "%s", msg)
	}
	if !out.Valid && len(out.Errors) == 0 {
		c.fail(PatternValidationFailed, "character is not valid")
	}
	sr.Validation = merge(c.result(), e.equipment.Validate(snap, e.expectation(st)))
	sr.Detail = fmt.Sprintf("valid=%t leftover_choices=%d", out.Valid, len(leftover))
	return nil
}

func (e *Executor) switchStep(ctx context.Context, st *run, step Step, sr *StepResult) error {
	before, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}

	switch step.Action {
	case ActionSwitchRace:
		race, err := e.rand.DifferentRace(ctx, st.race)
		if err != nil {
			return err
		}
		if err := e.setRace(ctx, st, race.Slug, sr); err != nil {
			return err
		}
	case ActionSwitchBackground:
		current := ""
		if st.background != nil {
			current = st.background.Slug
		}
		bg, err := e.rand.DifferentBackground(ctx, current)
		if err != nil {
			return err
		}
		if err := e.setBackground(ctx, st, bg, sr); err != nil {
			return err
		}
	case ActionSwitchClass:
		if err := e.setClass(ctx, st, "", step.Params[ParamClassTypeTo], sr); err != nil {
			return err
		}
	}

	after, err := Capture(ctx, e.svc, st.id)
	if err != nil {
		return err
	}
	sr.Changes = before.Diff(after)
	results := []*ValidationResult{e.switches.Validate(step.Action, before, after)}

	// follow-ups a player would do after switching
	switch step.Action {
	case ActionSwitchRace:
		var sub StepResult
		if _, err := e.setSubrace(ctx, st, &sub); err != nil {
			return err
		}
	case ActionSwitchClass:
		var sub StepResult
		applied, err := e.setSubclass(ctx, st, &sub)
		if err != nil {
			return err
		}
		if applied {
			results = append(results, sub.Validation)
		}
	}

	if step.Params[ParamEquipmentModeTest] != "" && st.mode != "" {
		next := dnd5e.EquipmentModeGold
		if st.mode == dnd5e.EquipmentModeGold {
			next = dnd5e.EquipmentModeEquipment
		}
		var modeStep StepResult
		if err := e.setEquipmentMode(ctx, st, next, &modeStep); err != nil {
			return err
		}
		results = append(results, modeStep.Validation)
		if _, err := e.resolve(ctx, st, resolveTypes[ActionResolveEquipmentChoices], &modeStep); err != nil {
			return err
		}
		var check StepResult
		if err := e.checkEquipment(ctx, st, &check); err != nil {
			return err
		}
		results = append(results, check.Validation)
	}

	sr.Validation = merge(results...)
	return nil
}

func (e *Executor) findOption(ctx context.Context, kind, slug string) (*character.Option, error) {
	out, err := e.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: kind})
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(out.Options, func(o character.Option) bool { return o.Slug == slug })
	if i < 0 {
		return nil, errors.NotFoundf("%s %s not found", kind, slug)
	}
	return &out.Options[i], nil
}

// merge combines several results; the first failure names the pattern
func merge(results ...*ValidationResult) *ValidationResult {
	c := &checker{}
	for _, r := range results {
		if r == nil {
			continue
		}
		c.warnings = append(c.warnings, r.Warnings...)
		if r.Status == StatusFailed {
			if c.pattern == "" {
				c.pattern = r.Pattern
			}
			c.errors = append(c.errors, r.Errors...)
		}
	}
	return c.result()
}
