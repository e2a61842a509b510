package wizardflow

import (
	"context"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Hit point choice options offered by the wizard on level up
const (
	hitPointsAverage = "average"
	hitPointsRoll    = "roll"
)

const (
	maxResolvePasses = 20
	maxAbilityScore  = 20
)

// ResolveOptions steer how pending choices are answered
type ResolveOptions struct {
	// Types limits resolution to these choice types; empty means all
	Types []dnd5e.ChoiceType
	// ForceSubclass is picked for subclass choices when offered
	ForceSubclass string
	// RollHitPointsPercent is the chance of rolling hit points instead of
	// taking the average
	RollHitPointsPercent int
}

func (o ResolveOptions) wants(t dnd5e.ChoiceType) bool {
	return len(o.Types) == 0 || slices.Contains(o.Types, t)
}

// Resolution is one answered choice
type Resolution struct {
	ChoiceID   string           `json:"choice_id"`
	Type       dnd5e.ChoiceType `json:"type"`
	Selections []string         `json:"selections"`
	// Items are the equipment items of the selected options
	Items []string `json:"items,omitempty"`
}

// Resolver answers pending choices the way a player clicking through the
// wizard would, never picking a value already taken by another choice
type Resolver struct {
	svc  character.Service
	rand *Randomizer
}

// NewResolver creates a resolver
func NewResolver(svc character.Service, rand *Randomizer) *Resolver {
	return &Resolver{svc: svc, rand: rand}
}

// ResolvePending answers pending choices until none of the wanted types
// remain. A choice that stays pending after being answered is an error.
func (r *Resolver) ResolvePending(ctx context.Context, characterID string, opts ResolveOptions) ([]Resolution, error) {
	var out []Resolution
	answered := map[string]bool{}
	for range maxResolvePasses {
		pending, err := r.svc.PendingChoices(ctx, &character.PendingChoicesInput{CharacterID: characterID})
		if err != nil {
			return out, errors.Wrap(err, "failed to list pending choices")
		}
		idx := slices.IndexFunc(pending.PendingChoices, func(c dnd5e.PendingChoice) bool { return opts.wants(c.Type) })
		if idx < 0 {
			return out, nil
		}
		choice := pending.PendingChoices[idx]
		if answered[choice.ID] {
			return out, errors.FailedPreconditionf("choice %s is still pending after being resolved", choice.ID)
		}

		got, err := r.svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: characterID})
		if err != nil {
			return out, errors.Wrap(err, "failed to load character")
		}
		selections := r.Select(got.Character, &choice, opts)
		if len(selections) == 0 {
			return out, errors.FailedPreconditionf("choice %s has no options left", choice.ID)
		}

		if _, err := r.svc.ResolveChoice(ctx, &character.ResolveChoiceInput{
			CharacterID: characterID,
			ChoiceID:    choice.ID,
			Selections:  selections,
		}); err != nil {
			return out, errors.Wrapf(err, "failed to resolve %s", choice.ID)
		}
		answered[choice.ID] = true
		out = append(out, Resolution{
			ChoiceID:   choice.ID,
			Type:       choice.Type,
			Selections: selections,
			Items:      selectedItems(&choice, selections),
		})
	}
	return out, errors.FailedPreconditionf("choices still pending after %d passes", maxResolvePasses)
}

// Select picks the selections for one choice
func (r *Resolver) Select(char *dnd5e.Character, choice *dnd5e.PendingChoice, opts ResolveOptions) []string {
	switch choice.Type {
	case dnd5e.ChoiceTypeHitPoints:
		if opts.RollHitPointsPercent > 0 && r.rand.Chance(opts.RollHitPointsPercent) && choice.HasOption(hitPointsRoll) {
			return []string{hitPointsRoll}
		}
		return []string{hitPointsAverage}
	case dnd5e.ChoiceTypeASI:
		return r.selectASI(char)
	case dnd5e.ChoiceTypeEquipmentMode:
		return []string{r.rand.EquipmentMode()}
	case dnd5e.ChoiceTypeSubclass:
		if opts.ForceSubclass != "" && choice.HasOption(opts.ForceSubclass) {
			return []string{opts.ForceSubclass}
		}
	}

	need := choice.Remaining
	if need <= 0 {
		need = max(choice.Quantity, 1)
	}
	taken := map[string]bool{}
	if slices.Contains(exclusiveTypes, choice.Type) {
		taken = takenValues(char, choice)
	}
	candidates := make([]string, 0, len(choice.Options))
	for _, o := range choice.Options {
		if !taken[strings.ToLower(o.ID)] {
			candidates = append(candidates, o.ID)
		}
	}
	if len(candidates) < need {
		candidates = choice.OptionIDs()
	}
	return PickN(r.rand, candidates, need)
}

// selectASI raises one ability by 2 or two abilities by 1, keeping every
// score at 20 or below
func (r *Resolver) selectASI(char *dnd5e.Character) []string {
	scores := char.FinalAbilityScores()
	var single, double []string
	for _, code := range dnd5e.AbilityCodes {
		if scores[code] <= maxAbilityScore-2 {
			single = append(single, code)
		}
		if scores[code] < maxAbilityScore {
			double = append(double, code)
		}
	}
	if len(single) > 0 && (len(double) < 2 || r.rand.Chance(50)) {
		code := Pick(r.rand, single)
		return []string{code, code}
	}
	return PickN(r.rand, double, 2)
}

func selectedItems(choice *dnd5e.PendingChoice, selections []string) []string {
	var out []string
	for _, o := range choice.Options {
		if !slices.Contains(selections, o.ID) {
			continue
		}
		for _, it := range o.Items {
			out = append(out, it.Name)
		}
	}
	return out
}

// exclusiveTypes are the choice types whose values a character can only
// hold once
var exclusiveTypes = []dnd5e.ChoiceType{
	dnd5e.ChoiceTypeProficiency,
	dnd5e.ChoiceTypeLanguage,
	dnd5e.ChoiceTypeSpell,
	dnd5e.ChoiceTypeOptionalFeature,
}

// takenValues collects what other choices of the same type already selected
func takenValues(char *dnd5e.Character, choice *dnd5e.PendingChoice) map[string]bool {
	out := map[string]bool{}
	if char == nil {
		return out
	}
	segment := ":" + string(choice.Type) + ":"
	for id, values := range char.Selections {
		if id == choice.ID || !strings.Contains(id+":", segment) {
			continue
		}
		for _, v := range values {
			out[strings.ToLower(v)] = true
		}
	}
	return out
}
