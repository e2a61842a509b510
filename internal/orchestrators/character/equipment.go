package character

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// ContextStartingWealth is the roll session context for starting gold
const ContextStartingWealth = "starting_wealth"

var equipmentModes = []string{dnd5e.EquipmentModeEquipment, dnd5e.EquipmentModeGold}

// SetEquipmentMode picks between the class starting equipment and rolled
// starting gold. Switching drops whatever the previous mode granted.
func (o *Orchestrator) SetEquipmentMode(ctx context.Context, input *character.SetEquipmentModeInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("mode", input.Mode, equipmentModes, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		return o.applyEquipmentMode(ctx, char, input.Mode)
	})
}

func (o *Orchestrator) applyEquipmentMode(ctx context.Context, char *dnd5e.Character, mode string) error {
	link := char.PrimaryClass()
	if link == nil {
		return errors.FailedPrecondition("class must be set before equipment")
	}
	cls, err := o.class(ctx, link.ClassSlug)
	if err != nil {
		return err
	}

	removeItems(char, dnd5e.SourceClass)
	prefix := equipmentChoicePrefix + ":"
	for id := range char.Selections {
		if strings.HasPrefix(id, prefix) {
			delete(char.Selections, id)
		}
	}
	char.Gold = 0
	char.EquipmentMode = mode
	char.IsComplete = false

	switch mode {
	case dnd5e.EquipmentModeEquipment:
		grantItems(char, cls.Equipment, dnd5e.SourceClass, "")
	case dnd5e.EquipmentModeGold:
		if err := o.rollGold(ctx, char, cls); err != nil {
			return err
		}
	}

	o.logger.Debug("equipment mode set",
		zap.String("character_id", char.ID),
		zap.String("mode", mode),
		zap.Int("gold", char.Gold))
	return nil
}

// rollGold rolls the class starting wealth, e.g. 5d4 x 10 gp for a fighter
func (o *Orchestrator) rollGold(ctx context.Context, char *dnd5e.Character, cls *dnd5e.CharacterClass) error {
	wealth := o.rules.WealthFor(cls.Slug)
	count := max(wealth.Dice, 1)
	multiplier := max(wealth.Multiplier, 1)

	out, err := o.dice.RollDice(ctx, &dice.RollDiceInput{
		EntityID:    char.ID,
		Context:     ContextStartingWealth,
		Notation:    fmt.Sprintf("%dd4", count),
		Description: "starting wealth for " + cls.Name,
	})
	if err != nil {
		return errors.Wrap(err, "failed to roll starting wealth")
	}
	char.Gold = out.Roll.Total * multiplier
	return nil
}
