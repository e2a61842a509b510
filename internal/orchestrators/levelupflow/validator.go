package levelupflow

import (
	"fmt"
	"slices"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

// Failure patterns
const (
	PatternTotalLevelNotIncremented = "total_level_not_incremented"
	PatternClassLevelNotIncremented = "class_level_not_incremented"
	PatternHPNotIncreased           = "hp_not_increased"
	PatternProficiencyBonusWrong    = "proficiency_bonus_wrong"
	PatternPendingChoicesRemain     = "pending_choices_remain"
	PatternAbilityScoreOverMax      = "ability_score_over_max"
	PatternSubclassLost             = "subclass_lost"
)

const maxAbilityScore = 20

// Validator checks one level up
type Validator struct{}

// ValidateLevelUp compares the snapshots around a level up of classSlug
// that took the character to level
func (Validator) ValidateLevelUp(before, after *Snapshot, classSlug string, level int) *wizardflow.ValidationResult {
	var errs, warnings []string
	pattern := ""
	fail := func(p, format string, args ...any) {
		if pattern == "" {
			pattern = p
		}
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if after.TotalLevel != before.TotalLevel+1 {
		fail(PatternTotalLevelNotIncremented, "total level went from %d to %d", before.TotalLevel, after.TotalLevel)
	}
	if after.TotalLevel != level {
		warnings = append(warnings, fmt.Sprintf("expected total level %d, got %d", level, after.TotalLevel))
	}
	if got, was := after.ClassLevels[classSlug], before.ClassLevels[classSlug]; got != was+1 {
		fail(PatternClassLevelNotIncremented, "%s level went from %d to %d", classSlug, was, got)
	}
	if after.MaxHP <= before.MaxHP {
		fail(PatternHPNotIncreased, "max hp went from %d to %d", before.MaxHP, after.MaxHP)
	}
	if want := dnd5e.ProficiencyBonus(after.TotalLevel); after.ProficiencyBonus != want {
		fail(PatternProficiencyBonusWrong, "proficiency bonus is %d at level %d, want %d", after.ProficiencyBonus, after.TotalLevel, want)
	}
	if n := after.PendingCount(); n > 0 {
		fail(PatternPendingChoicesRemain, "%d choices still pending: %v", n, after.PendingTypes)
	}
	for _, code := range dnd5e.AbilityCodes {
		if after.AbilityScores[code] > maxAbilityScore {
			fail(PatternAbilityScoreOverMax, "%s is %d", code, after.AbilityScores[code])
		}
	}
	for cls, sub := range before.Subclasses {
		if after.Subclasses[cls] != sub {
			fail(PatternSubclassLost, "%s subclass changed from %s to %q", cls, sub, after.Subclasses[cls])
		}
	}
	if lost := FeaturesGained(after, before); len(lost) > 0 {
		slices.Sort(lost)
		warnings = append(warnings, fmt.Sprintf("features lost: %v", lost))
	}

	switch {
	case len(errs) > 0:
		return &wizardflow.ValidationResult{Status: wizardflow.StatusFailed, Errors: errs, Warnings: warnings, Pattern: pattern}
	case len(warnings) > 0:
		return &wizardflow.ValidationResult{Status: wizardflow.StatusPassedWithWarning, Warnings: warnings}
	default:
		return &wizardflow.ValidationResult{Status: wizardflow.StatusPassed}
	}
}
