package character

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Grant types recorded on features
const (
	grantTypeTrait             = "trait"
	grantTypeClassFeature      = "class_feature"
	grantTypeBackgroundFeature = "background_feature"
	grantTypeCantrip           = "cantrip"
	grantTypeSpell             = "spell"
	grantTypeOptionalFeature   = "optional_feature"
)

// subclassGrantType tags subclass features with their class so one class's
// subclass can be replaced without touching another's
func subclassGrantType(classSlug string) string {
	return "subclass:" + classSlug
}

// SetRace replaces the race. Everything granted by the previous race and
// subrace is removed first.
func (o *Orchestrator) SetRace(ctx context.Context, input *character.SetRaceInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	race, err := o.race(ctx, input.RaceSlug)
	if err != nil {
		return nil, err
	}
	if race.IsSubrace() {
		return nil, errors.InvalidArgumentf("%s is a subrace of %s, use SetSubrace", race.Slug, race.ParentSlug)
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		char.RemoveSource(dnd5e.SourceRace)
		char.RemoveSource(dnd5e.SourceSubrace)
		char.RaceSlug = race.Slug
		char.SubraceSlug = ""
		char.IsComplete = false
		applyRace(char, race, dnd5e.SourceRace)

		o.logger.Debug("race set", zap.String("character_id", char.ID), zap.String("race", race.Slug))
		return nil
	})
}

// SetSubrace replaces the subrace of the current race
func (o *Orchestrator) SetSubrace(ctx context.Context, input *character.SetSubraceInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	sub, err := o.race(ctx, input.SubraceSlug)
	if err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		if char.RaceSlug == "" {
			return errors.FailedPrecondition("race must be set before subrace")
		}
		if sub.ParentSlug != char.RaceSlug {
			return errors.InvalidArgumentf("%s is not a subrace of %s", sub.Slug, char.RaceSlug)
		}
		char.RemoveSource(dnd5e.SourceSubrace)
		char.SubraceSlug = sub.Slug
		char.IsComplete = false
		applyRace(char, sub, dnd5e.SourceSubrace)
		return nil
	})
}

func applyRace(char *dnd5e.Character, race *dnd5e.Race, source string) {
	for _, b := range race.AbilityBonuses {
		if b.IsChoice || b.Ability == "" {
			continue
		}
		char.AbilityBonuses = append(char.AbilityBonuses, dnd5e.AbilityGrant{Ability: b.Ability, Value: b.Value, Source: source})
	}
	grantProficiencies(char, race.Proficiencies, source)
	grantLanguages(char, race.Languages, source)
	for _, t := range race.Traits {
		char.Features = append(char.Features, dnd5e.Grant{Name: t.Name, Source: source, Type: grantTypeTrait})
	}
	if race.Spellcasting != nil {
		for _, sp := range race.Spellcasting.Spells {
			if sp.IsChoice || sp.SpellName == "" || sp.LevelRequirement > max(char.TotalLevel(), 1) {
				continue
			}
			kind := grantTypeSpell
			if sp.IsCantrip {
				kind = grantTypeCantrip
			}
			char.Spells = append(char.Spells, dnd5e.Grant{Name: sp.SpellName, Source: source, Type: kind})
		}
	}
}

func grantProficiencies(char *dnd5e.Character, profs []dnd5e.Proficiency, source string) {
	for _, p := range profs {
		if p.IsChoice || p.Name == "" || !p.Grants {
			continue
		}
		char.Proficiencies = append(char.Proficiencies, dnd5e.Grant{Name: p.Name, Source: source, Type: p.Type})
	}
}

func grantLanguages(char *dnd5e.Character, langs []dnd5e.LanguageGrant, source string) {
	for _, l := range langs {
		if l.IsChoice || l.Name == "" {
			continue
		}
		char.Languages = append(char.Languages, dnd5e.Grant{Name: l.Name, Source: source})
	}
}

func grantItems(char *dnd5e.Character, items []dnd5e.EquipmentItem, source, choiceID string) {
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		char.Equipment = append(char.Equipment, dnd5e.GrantedItem{Name: it.Name, Quantity: qty, Source: source, ChoiceID: choiceID})
	}
}

func removeItems(char *dnd5e.Character, source string) {
	char.Equipment = slices.DeleteFunc(char.Equipment, func(it dnd5e.GrantedItem) bool {
		return it.Source == source
	})
}

// SetClass replaces the starting class. Only allowed before the character
// has gained a level.
func (o *Orchestrator) SetClass(ctx context.Context, input *character.SetClassInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	cls, err := o.class(ctx, input.ClassSlug)
	if err != nil {
		return nil, err
	}
	if cls.IsSubclass() {
		return nil, errors.InvalidArgumentf("%s is a subclass, use SetSubclass", cls.Slug)
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		if char.TotalLevel() > 1 {
			return errors.FailedPreconditionf("class cannot change at level %d", char.TotalLevel())
		}
		char.RemoveSource(dnd5e.SourceClass)
		char.RemoveSource(dnd5e.SourceSubclass)
		char.HitPointRolls = nil
		char.PendingLevelUp = nil
		char.Gold = 0
		char.IsComplete = false
		char.Classes = []dnd5e.CharacterClassLink{{ClassSlug: cls.Slug, Level: 1, IsPrimary: true}}

		grantProficiencies(char, cls.Proficiencies, dnd5e.SourceClass)
		grantLanguages(char, cls.Languages, dnd5e.SourceClass)
		grantClassFeatures(char, cls, 1, 1, dnd5e.SourceClass)

		switch char.EquipmentMode {
		case dnd5e.EquipmentModeEquipment:
			grantItems(char, cls.Equipment, dnd5e.SourceClass, "")
		case dnd5e.EquipmentModeGold:
			if err := o.rollGold(ctx, char, cls); err != nil {
				return err
			}
		}

		o.logger.Debug("class set", zap.String("character_id", char.ID), zap.String("class", cls.Slug))
		return nil
	})
}

// grantClassFeatures grants the class features gained from fromLevel to
// toLevel inclusive
func grantClassFeatures(char *dnd5e.Character, cls *dnd5e.CharacterClass, fromLevel, toLevel int, source string) {
	for _, f := range cls.Features {
		if f.Level < fromLevel || f.Level > toLevel || f.IsOptional {
			continue
		}
		char.Features = append(char.Features, dnd5e.Grant{Name: f.Name, Source: source, Type: grantTypeClassFeature, Level: f.Level})
	}
}

// SetSubclass picks the subclass of a class the character has reached the
// subclass level in
func (o *Orchestrator) SetSubclass(ctx context.Context, input *character.SetSubclassInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		return o.applySubclass(ctx, char, input.ClassSlug, input.SubclassSlug)
	})
}

func (o *Orchestrator) applySubclass(ctx context.Context, char *dnd5e.Character, classSlug, subclassSlug string) error {
	link := char.PrimaryClass()
	if classSlug != "" {
		link = char.ClassLink(classSlug)
	}
	if link == nil {
		return errors.FailedPrecondition("class must be set before subclass")
	}
	cls, err := o.class(ctx, link.ClassSlug)
	if err != nil {
		return err
	}
	sub, ok := findSubclass(cls, subclassSlug)
	if !ok {
		return errors.NotFoundf("%s has no subclass %s", cls.Slug, subclassSlug)
	}
	if lvl := cls.SubclassLevel(); link.Level < lvl {
		return errors.FailedPreconditionf("%s picks a subclass at level %d, character has level %d", cls.Slug, lvl, link.Level)
	}

	clearSubclass(char, cls.Slug)
	link.SubclassSlug = subclassSlug
	for _, f := range sub.Features {
		if f.Level > link.Level {
			continue
		}
		char.Features = append(char.Features, dnd5e.Grant{
			Name:   f.Name,
			Source: dnd5e.SourceSubclass,
			Type:   subclassGrantType(cls.Slug),
			Level:  f.Level,
		})
	}

	// subclass feature tracks start as soon as the subclass is known
	for featureType, track := range o.rules.FeatureTracksFor(cls.Slug, subclassSlug) {
		if track.Subclass == "" {
			continue
		}
		n := track.KnownAt(link.Level)
		if n == 0 {
			continue
		}
		choice, err := o.optionalFeatureChoice(ctx, char, cls, subclassSlug, link.Level, featureType, n,
			dnd5e.ChoiceID(dnd5e.SourceSubclass, cls.Slug, string(dnd5e.ChoiceTypeOptionalFeature), featureType),
			dnd5e.SourceSubclass)
		if err != nil {
			return err
		}
		if choice != nil {
			char.PendingLevelUp = append(char.PendingLevelUp, *choice)
		}
	}
	return nil
}

// clearSubclass removes the subclass of one class with its features and
// any choices it opened
func clearSubclass(char *dnd5e.Character, classSlug string) {
	if link := char.ClassLink(classSlug); link != nil {
		link.SubclassSlug = ""
	}
	kind := subclassGrantType(classSlug)
	char.Features = slices.DeleteFunc(char.Features, func(g dnd5e.Grant) bool {
		return g.Source == dnd5e.SourceSubclass && g.Type == kind
	})
	prefix := dnd5e.ChoiceID(dnd5e.SourceSubclass, classSlug) + ":"
	for id := range char.Selections {
		if strings.HasPrefix(id, prefix) {
			char.RemoveChoice(id)
		}
	}
	char.PendingLevelUp = slices.DeleteFunc(char.PendingLevelUp, func(p dnd5e.PendingChoice) bool {
		return strings.HasPrefix(p.ID, prefix) ||
			(p.Type == dnd5e.ChoiceTypeSubclass && p.ClassSlug == classSlug)
	})
}

// SetBackground replaces the background
func (o *Orchestrator) SetBackground(ctx context.Context, input *character.SetBackgroundInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	bg, err := o.background(ctx, input.BackgroundSlug)
	if err != nil {
		return nil, err
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		char.RemoveSource(dnd5e.SourceBackground)
		char.BackgroundSlug = bg.Slug
		char.IsComplete = false

		grantProficiencies(char, bg.Proficiencies, dnd5e.SourceBackground)
		grantLanguages(char, bg.Languages, dnd5e.SourceBackground)
		grantItems(char, bg.Equipment, dnd5e.SourceBackground, "")
		for _, t := range bg.Traits {
			char.Features = append(char.Features, dnd5e.Grant{Name: t.Name, Source: dnd5e.SourceBackground, Type: grantTypeBackgroundFeature})
		}
		return nil
	})
}
