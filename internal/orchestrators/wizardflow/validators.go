package wizardflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Validation outcomes
const (
	StatusPassed            = "passed"
	StatusPassedWithWarning = "passed_with_warnings"
	StatusFailed            = "failed"
	StatusSkipped           = "skipped"
	StatusError             = "error"
)

// Failure patterns
const (
	PatternRaceNotChanged               = "race_not_changed"
	PatternRacialSpellsNotCleared       = "racial_spells_not_cleared"
	PatternRacialFeaturesNotCleared     = "racial_features_not_cleared"
	PatternBackgroundNotChanged         = "background_not_changed"
	PatternBackgroundFeaturesNotCleared = "background_features_not_cleared"
	PatternClassNotChanged              = "class_not_changed"
	PatternClassSpellsNotCleared        = "class_spells_not_cleared"
	PatternClassFeaturesNotCleared      = "class_features_not_cleared"
	PatternBackgroundEquipmentMissing   = "background_equipment_missing"
	PatternGoldMissing                  = "gold_missing"
	PatternClassEquipmentInGoldMode     = "class_equipment_in_gold_mode"
	PatternClassEquipmentMissing        = "class_equipment_missing"
	PatternEquipmentChoiceItemsMissing  = "equipment_choice_items_missing"
	PatternEquipmentChoicesMissing      = "equipment_choices_missing"
	PatternClassEquipmentNotCleared     = "class_equipment_not_cleared"
	PatternGoldNotCleared               = "gold_not_cleared"
	PatternSubclassFeaturesMissing      = "subclass_features_missing"
	PatternValidationFailed             = "validation_failed"
	PatternAPIError                     = "api_error"
)

// ValidationResult is the outcome of one check
type ValidationResult struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
}

// Passed reports whether the check did not fail
func (v *ValidationResult) Passed() bool {
	return v.Status != StatusFailed
}

type checker struct {
	warnings []string
	errors   []string
	pattern  string
}

func (c *checker) fail(pattern, format string, args ...any) {
	if c.pattern == "" {
		c.pattern = pattern
	}
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checker) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) result() *ValidationResult {
	switch {
	case len(c.errors) > 0:
		return &ValidationResult{Status: StatusFailed, Errors: c.errors, Warnings: c.warnings, Pattern: c.pattern}
	case len(c.warnings) > 0:
		return &ValidationResult{Status: StatusPassedWithWarning, Warnings: c.warnings}
	default:
		return &ValidationResult{Status: StatusPassed}
	}
}

// SwitchValidator checks that a switch removed everything the replaced
// choice granted
type SwitchValidator struct{}

// Validate dispatches on the switch action
func (v SwitchValidator) Validate(action Action, before, after *Snapshot) *ValidationResult {
	switch action {
	case ActionSwitchRace:
		return v.ValidateRaceSwitch(before, after)
	case ActionSwitchBackground:
		return v.ValidateBackgroundSwitch(before, after)
	case ActionSwitchClass:
		return v.ValidateClassSwitch(before, after)
	}
	return &ValidationResult{Status: StatusSkipped}
}

// ValidateRaceSwitch checks a race change
func (SwitchValidator) ValidateRaceSwitch(before, after *Snapshot) *ValidationResult {
	c := &checker{}
	if before.RaceSlug == after.RaceSlug {
		c.fail(PatternRaceNotChanged, "race is still %s", after.RaceSlug)
		return c.result()
	}
	for _, src := range []string{dnd5e.SourceRace, dnd5e.SourceSubrace} {
		c.cleared(PatternRacialSpellsNotCleared, src+" spells", before.SpellsBySource[src], after.SpellsBySource[src])
		c.cleared(PatternRacialFeaturesNotCleared, src+" features", before.FeaturesBySource[src], after.FeaturesBySource[src])
	}
	if before.LanguageCount == after.LanguageCount && !after.HasPendingType(dnd5e.ChoiceTypeLanguage) {
		c.warn("language count unchanged at %d", after.LanguageCount)
	}
	if before.Speed == after.Speed {
		c.warn("speed unchanged at %d", after.Speed)
	}
	if before.Size == after.Size {
		c.warn("size unchanged (%s)", after.Size)
	}
	return c.result()
}

// ValidateBackgroundSwitch checks a background change
func (SwitchValidator) ValidateBackgroundSwitch(before, after *Snapshot) *ValidationResult {
	c := &checker{}
	if before.BackgroundSlug == after.BackgroundSlug {
		c.fail(PatternBackgroundNotChanged, "background is still %s", after.BackgroundSlug)
		return c.result()
	}
	src := dnd5e.SourceBackground
	c.cleared(PatternBackgroundFeaturesNotCleared, "background features", before.FeaturesBySource[src], after.FeaturesBySource[src])
	if after.EquipmentMode == dnd5e.EquipmentModeEquipment &&
		slices.Equal(before.EquipmentBySource[src], after.EquipmentBySource[src]) &&
		!after.HasPendingType(dnd5e.ChoiceTypeEquipment) {
		c.warn("background equipment unchanged: %v", after.EquipmentBySource[src])
	}
	return c.result()
}

// ValidateClassSwitch checks a class change
func (SwitchValidator) ValidateClassSwitch(before, after *Snapshot) *ValidationResult {
	c := &checker{}
	if slices.Equal(before.ClassSlugs, after.ClassSlugs) {
		c.fail(PatternClassNotChanged, "class is still %v", after.ClassSlugs)
		return c.result()
	}
	src := dnd5e.SourceClass
	c.cleared(PatternClassSpellsNotCleared, "class spells", before.SpellsBySource[src], after.SpellsBySource[src])
	for _, s := range []string{dnd5e.SourceClass, dnd5e.SourceSubclass} {
		c.cleared(PatternClassFeaturesNotCleared, s+" features", before.FeaturesBySource[s], after.FeaturesBySource[s])
	}
	if slices.Equal(before.Spellcasting, after.Spellcasting) && len(after.Spellcasting) > 0 {
		c.warn("spellcasting unchanged: %v", after.Spellcasting)
	}
	if after.EquipmentMode == dnd5e.EquipmentModeEquipment &&
		slices.Equal(before.ClassEquipment(), after.ClassEquipment()) {
		c.warn("class equipment unchanged: %v", after.ClassEquipment())
	}
	if slices.Equal(before.SaveProficiencies, after.SaveProficiencies) {
		c.warn("saving throw proficiencies unchanged: %v", after.SaveProficiencies)
	}
	return c.result()
}

// cleared fails when the old grants survived the switch: the list is
// unchanged, or every old name is still there next to a duplicate. Names the
// old and new choice both grant only warn.
func (c *checker) cleared(pattern, what string, before, after []string) {
	if len(before) == 0 {
		return
	}
	var shared []string
	for _, name := range before {
		if slices.Contains(after, name) {
			shared = append(shared, name)
		}
	}
	switch {
	case len(shared) == len(before) && (slices.Equal(before, after) || hasDuplicates(after)):
		c.fail(pattern, "%s kept after switch: %v", what, shared)
	case len(shared) > 0:
		c.warn("%s shared by old and new choice: %v", what, shared)
	}
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}

// EquipmentExpectation describes what the class and background hand out
type EquipmentExpectation struct {
	BackgroundItems []string
	// ClassItems are the fixed class items, granted in equipment mode
	ClassItems []string
	// ChoiceItems are the items of the selected (a)/(b) options
	ChoiceItems []string
	// ChoiceGroups counts the class (a)/(b) choices
	ChoiceGroups int
}

var equipmentChoicePrefix = dnd5e.ChoiceID(dnd5e.SourceClass, string(dnd5e.ChoiceTypeEquipment)) + ":"

// EquipmentValidator checks starting equipment against the equipment mode
type EquipmentValidator struct{}

// Validate checks the snapshot carries what the mode promises
func (EquipmentValidator) Validate(snap *Snapshot, want EquipmentExpectation) *ValidationResult {
	c := &checker{}
	bg := snap.EquipmentBySource[dnd5e.SourceBackground]
	for _, name := range want.BackgroundItems {
		if !slices.Contains(bg, name) {
			c.fail(PatternBackgroundEquipmentMissing, "background item %s missing", name)
		}
	}

	class := snap.ClassEquipment()
	switch snap.EquipmentMode {
	case dnd5e.EquipmentModeGold:
		if snap.Gold <= 0 {
			c.fail(PatternGoldMissing, "gold mode without starting gold")
		}
		if len(class) > 0 {
			c.fail(PatternClassEquipmentInGoldMode, "gold mode carries class equipment: %v", class)
		}
	case dnd5e.EquipmentModeEquipment:
		resolved := !snap.HasPendingType(dnd5e.ChoiceTypeEquipment)
		if resolved {
			for _, name := range want.ClassItems {
				if !slices.Contains(class, name) {
					c.fail(PatternClassEquipmentMissing, "class item %s missing", name)
				}
			}
		}
		for _, name := range want.ChoiceItems {
			if !slices.Contains(class, name) {
				c.fail(PatternEquipmentChoiceItemsMissing, "selected item %s missing", name)
			}
		}
	}
	return c.result()
}

// ValidateChoicesAvailable checks every class equipment group is offered
// as a choice right after equipment mode is picked
func (EquipmentValidator) ValidateChoicesAvailable(snap *Snapshot, want EquipmentExpectation) *ValidationResult {
	c := &checker{}
	if snap.EquipmentMode != dnd5e.EquipmentModeEquipment || want.ChoiceGroups == 0 {
		return c.result()
	}
	n := 0
	for _, id := range snap.PendingChoiceIDs {
		if strings.HasPrefix(id, equipmentChoicePrefix) {
			n++
		}
	}
	if n < want.ChoiceGroups {
		c.fail(PatternEquipmentChoicesMissing, "%d of %d equipment choices pending", n, want.ChoiceGroups)
	}
	return c.result()
}

// ValidateModeSwitch checks a change of equipment mode dropped what the
// previous mode granted
func (EquipmentValidator) ValidateModeSwitch(before, after *Snapshot) *ValidationResult {
	c := &checker{}
	switch {
	case before.EquipmentMode == dnd5e.EquipmentModeEquipment && after.EquipmentMode == dnd5e.EquipmentModeGold:
		if len(after.ClassEquipment()) > 0 {
			c.fail(PatternClassEquipmentNotCleared, "class equipment kept after switching to gold: %v", after.ClassEquipment())
		}
		if len(after.EquipmentBySource[dnd5e.SourceBackground]) < len(before.EquipmentBySource[dnd5e.SourceBackground]) {
			c.warn("background equipment shrank from %d to %d items",
				len(before.EquipmentBySource[dnd5e.SourceBackground]), len(after.EquipmentBySource[dnd5e.SourceBackground]))
		}
	case before.EquipmentMode == dnd5e.EquipmentModeGold && after.EquipmentMode == dnd5e.EquipmentModeEquipment:
		if after.Gold > 0 {
			c.fail(PatternGoldNotCleared, "gold %d kept after switching to equipment", after.Gold)
		}
	}
	return c.result()
}

// ValidateSubclass checks choosing a subclass granted its features
func ValidateSubclass(before, after *Snapshot) *ValidationResult {
	c := &checker{}
	if len(after.SubclassSlugs) == 0 {
		c.fail(PatternSubclassFeaturesMissing, "no subclass recorded")
		return c.result()
	}
	if len(after.FeaturesBySource[dnd5e.SourceSubclass]) <= len(before.FeaturesBySource[dnd5e.SourceSubclass]) {
		c.warn("subclass %v granted no features at level %d", after.SubclassSlugs, after.TotalLevel)
	}
	return c.result()
}
