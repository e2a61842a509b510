package character

import (
	"context"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

const (
	minManualScore = 3
	maxManualScore = 18
)

var abilityMethods = []string{
	dnd5e.AbilityMethodManual,
	dnd5e.AbilityMethodStandardArray,
	dnd5e.AbilityMethodPointBuy,
	dnd5e.AbilityMethodRolled,
}

// SetAbilityScores sets the six base scores. Racial and level up bonuses
// are kept separately and are not part of the input.
func (o *Orchestrator) SetAbilityScores(ctx context.Context, input *character.SetAbilityScoresInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterID", input.CharacterID, vb)
	errors.ValidateEnum("method", input.Method, abilityMethods, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	scores := normalizeScores(input.Scores)
	if input.Method == dnd5e.AbilityMethodRolled {
		rolled, err := o.rolledScores(ctx, input.CharacterID, input.RollAssignments)
		if err != nil {
			return nil, err
		}
		scores = rolled
	}
	if err := validateScores(input.Method, scores); err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		char.AbilityMethod = input.Method
		char.AbilityScores = scores
		char.IsComplete = false
		return nil
	})
}

func normalizeScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		code := dnd5e.AbilityCode(k)
		if code == "" {
			code = strings.ToUpper(k)
		}
		out[code] = v
	}
	return out
}

// rolledScores spends the assigned rolls of the character's ability score
// session
func (o *Orchestrator) rolledScores(ctx context.Context, characterID string, assignments map[string]string) (map[string]int, error) {
	byCode := make(map[string]string, len(assignments))
	for k, v := range assignments {
		code := dnd5e.AbilityCode(k)
		if code == "" {
			return nil, errors.InvalidArgumentf("unknown ability %q", k)
		}
		byCode[code] = v
	}

	vb := errors.NewValidationBuilder()
	rollIDs := make([]string, 0, len(dnd5e.AbilityCodes))
	for _, code := range dnd5e.AbilityCodes {
		id, ok := byCode[code]
		if !ok || id == "" {
			vb.Fieldf("rollAssignments", "missing roll for %s", code)
			continue
		}
		rollIDs = append(rollIDs, id)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	out, err := o.dice.UseRolls(ctx, &dice.UseRollsInput{
		EntityID: characterID,
		Context:  dice.ContextAbilityScores,
		RollIDs:  rollIDs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign ability rolls")
	}

	scores := make(map[string]int, len(dnd5e.AbilityCodes))
	for i, code := range dnd5e.AbilityCodes {
		scores[code] = out.Rolls[i].Total
	}
	return scores, nil
}

func validateScores(method string, scores map[string]int) error {
	vb := errors.NewValidationBuilder()
	for k := range scores {
		if !slices.Contains(dnd5e.AbilityCodes, k) {
			vb.Fieldf("scores", "unknown ability %q", k)
		}
	}
	for _, code := range dnd5e.AbilityCodes {
		if _, ok := scores[code]; !ok {
			vb.Fieldf("scores", "missing %s", code)
		}
	}
	if err := vb.Build(); err != nil {
		return err
	}

	switch method {
	case dnd5e.AbilityMethodManual:
		for _, code := range dnd5e.AbilityCodes {
			errors.ValidateRange(code, scores[code], minManualScore, maxManualScore, vb)
		}
	case dnd5e.AbilityMethodStandardArray:
		values := make([]int, 0, len(scores))
		for _, v := range scores {
			values = append(values, v)
		}
		slices.Sort(values)
		want := slices.Clone(dnd5e.StandardArray)
		slices.Sort(want)
		if !slices.Equal(values, want) {
			vb.Field("scores", "must use each standard array value once")
		}
	case dnd5e.AbilityMethodPointBuy:
		spent := 0
		for _, code := range dnd5e.AbilityCodes {
			cost := dnd5e.PointBuyCost(scores[code])
			if cost < 0 {
				vb.Fieldf(code, "must be between 8 and 15 for point buy, got %d", scores[code])
				continue
			}
			spent += cost
		}
		if spent > dnd5e.PointBuyBudget {
			vb.Fieldf("scores", "point buy costs %d, budget is %d", spent, dnd5e.PointBuyBudget)
		}
	}
	return vb.Build()
}
