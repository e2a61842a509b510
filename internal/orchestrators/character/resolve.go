package character

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Hit point choice options
const (
	HitPointsRoll    = "roll"
	HitPointsAverage = "average"
)

// maxAbilityScore caps ability score improvements
const maxAbilityScore = 20

// ResolveChoice applies the selections of a pending choice. Resolving a
// creation choice again replaces what the earlier resolution granted.
func (o *Orchestrator) ResolveChoice(ctx context.Context, input *character.ResolveChoiceInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("characterID", input.CharacterID, vb)
	errors.ValidateRequired("choiceID", input.ChoiceID, vb)
	vb.RequiredIf(len(input.Selections) == 0, "selections")
	if err := vb.Build(); err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		def, levelUp, err := o.findChoice(ctx, char, input.ChoiceID)
		if err != nil {
			return err
		}
		selected, err := matchSelections(def, input.Selections)
		if err != nil {
			return err
		}

		o.logger.Debug("resolving choice",
			zap.String("character_id", char.ID),
			zap.String("choice_id", def.ID),
			zap.Strings("selections", input.Selections))

		switch def.Type {
		case dnd5e.ChoiceTypeEquipmentMode:
			return o.applyEquipmentMode(ctx, char, selected[0].ID)
		case dnd5e.ChoiceTypeSubclass:
			if err := o.applySubclass(ctx, char, def.ClassSlug, selected[0].ID); err != nil {
				return err
			}
			removeLevelUpChoice(char, def.ID)
			return nil
		case dnd5e.ChoiceTypeHitPoints:
			if err := o.resolveHitPoints(ctx, char, def, selected[0].ID); err != nil {
				return err
			}
			removeLevelUpChoice(char, def.ID)
			return nil
		}

		char.RemoveChoice(def.ID)
		if err := applySelections(char, def, selected); err != nil {
			return err
		}
		ids := make([]string, 0, len(selected))
		for _, opt := range selected {
			ids = append(ids, opt.ID)
		}
		char.Selections[def.ID] = ids
		if levelUp {
			removeLevelUpChoice(char, def.ID)
		} else {
			char.IsComplete = false
		}
		return nil
	})
}

// findChoice looks a choice up among the stored level up choices and the
// creation choices
func (o *Orchestrator) findChoice(ctx context.Context, char *dnd5e.Character, id string) (*dnd5e.PendingChoice, bool, error) {
	for i := range char.PendingLevelUp {
		if char.PendingLevelUp[i].ID == id {
			c := char.PendingLevelUp[i]
			return &c, true, nil
		}
	}
	defs, err := o.creationChoices(ctx, char)
	if err != nil {
		return nil, false, err
	}
	for i := range defs {
		if defs[i].ID == id {
			return &defs[i], false, nil
		}
	}
	return nil, false, errors.NotFoundf("choice %s is not available", id).WithMeta("character_id", char.ID)
}

// matchSelections maps each selection onto an option of the choice
func matchSelections(def *dnd5e.PendingChoice, selections []string) ([]dnd5e.ChoiceOption, error) {
	if len(selections) != def.Quantity {
		return nil, errors.InvalidArgumentf("choice %s needs %d selections, got %d", def.ID, def.Quantity, len(selections))
	}

	out := make([]dnd5e.ChoiceOption, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	for _, s := range selections {
		opt, ok := findOption(def, s)
		if !ok {
			return nil, errors.InvalidArgumentf("%q is not an option of choice %s", s, def.ID)
		}
		key := strings.ToLower(opt.ID)
		if seen[key] && def.Type != dnd5e.ChoiceTypeASI {
			return nil, errors.InvalidArgumentf("%q selected more than once for choice %s", s, def.ID)
		}
		seen[key] = true
		out = append(out, opt)
	}
	return out, nil
}

func findOption(def *dnd5e.PendingChoice, selection string) (dnd5e.ChoiceOption, bool) {
	for _, opt := range def.Options {
		if strings.EqualFold(opt.ID, selection) || strings.EqualFold(opt.Name, selection) {
			return opt, true
		}
	}
	return dnd5e.ChoiceOption{}, false
}

func applySelections(char *dnd5e.Character, def *dnd5e.PendingChoice, selected []dnd5e.ChoiceOption) error {
	switch def.Type {
	case dnd5e.ChoiceTypeProficiency:
		for _, opt := range selected {
			char.Proficiencies = append(char.Proficiencies, dnd5e.Grant{
				Name: opt.Name, Source: def.Source, Type: def.Metadata[metaProficiencyType], ChoiceID: def.ID,
			})
		}
	case dnd5e.ChoiceTypeLanguage:
		for _, opt := range selected {
			char.Languages = append(char.Languages, dnd5e.Grant{Name: opt.Name, Source: def.Source, ChoiceID: def.ID})
		}
	case dnd5e.ChoiceTypeSpell:
		for _, opt := range selected {
			char.Spells = append(char.Spells, dnd5e.Grant{
				Name: opt.Name, Source: def.Source, Type: def.Metadata[metaSpellType], Level: def.Level, ChoiceID: def.ID,
			})
		}
	case dnd5e.ChoiceTypeOptionalFeature:
		for _, opt := range selected {
			char.Features = append(char.Features, dnd5e.Grant{
				Name: opt.Name, Source: def.Source, Type: grantTypeOptionalFeature, Level: def.Level, ChoiceID: def.ID,
			})
		}
	case dnd5e.ChoiceTypeEquipment:
		for _, opt := range selected {
			grantItems(char, opt.Items, def.Source, def.ID)
		}
	case dnd5e.ChoiceTypeAbilityScore:
		value, err := strconv.Atoi(def.Metadata[metaAbilityValue])
		if err != nil {
			value = 1
		}
		for _, opt := range selected {
			char.AbilityBonuses = append(char.AbilityBonuses, dnd5e.AbilityGrant{
				Ability: opt.ID, Value: value, Source: def.Source, ChoiceID: def.ID,
			})
		}
	case dnd5e.ChoiceTypeASI:
		scores := char.FinalAbilityScores()
		for _, opt := range selected {
			if scores[opt.ID] >= maxAbilityScore {
				continue
			}
			scores[opt.ID]++
			char.AbilityBonuses = append(char.AbilityBonuses, dnd5e.AbilityGrant{
				Ability: opt.ID, Value: 1, Source: def.Source, ChoiceID: def.ID,
			})
		}
	default:
		return errors.InvalidArgumentf("choice type %s cannot be resolved here", def.Type)
	}
	return nil
}

func (o *Orchestrator) resolveHitPoints(ctx context.Context, char *dnd5e.Character, def *dnd5e.PendingChoice, method string) error {
	hitDie, err := strconv.Atoi(def.Metadata[metaHitDie])
	if err != nil || hitDie == 0 {
		return errors.Internalf("choice %s has no hit die", def.ID)
	}

	roll := dnd5e.HitPointRoll{ClassSlug: def.ClassSlug, Level: def.Level}
	switch method {
	case HitPointsAverage:
		roll.Value = hitDie/2 + 1
	case HitPointsRoll:
		out, err := o.dice.RollHitPoints(ctx, &dice.RollHitPointsInput{
			EntityID:    char.ID,
			HitDie:      hitDie,
			Description: fmt.Sprintf("%s level %d", def.ClassSlug, def.Level),
		})
		if err != nil {
			return errors.Wrap(err, "failed to roll hit points")
		}
		roll.Value = out.HitPoints
		roll.Rolled = true
	}

	char.HitPointRolls = append(char.HitPointRolls, roll)
	char.Selections[def.ID] = []string{method}
	return nil
}
