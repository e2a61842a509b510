package levelupflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

func fighter(level int, hp int) *levelupflow.Snapshot {
	return &levelupflow.Snapshot{
		TotalLevel:       level,
		ClassLevels:      map[string]int{"fighter": level},
		Subclasses:       map[string]string{},
		MaxHP:            hp,
		ProficiencyBonus: dnd5e.ProficiencyBonus(level),
		AbilityScores:    map[string]int{"STR": 16, "DEX": 14, "CON": 14, "INT": 10, "WIS": 12, "CHA": 8},
		Features:         []string{"Fighting Style", "Second Wind"},
	}
}

func TestNewSnapshot(t *testing.T) {
	char := &dnd5e.Character{
		Classes: []dnd5e.CharacterClassLink{
			{ClassSlug: "fighter", SubclassSlug: "champion", Level: 3, IsPrimary: true},
			{ClassSlug: "wizard", Level: 2},
		},
		AbilityScores: map[string]int{"STR": 15, "INT": 13},
		Features:      []dnd5e.Grant{{Name: "Second Wind"}, {Name: "Arcane Recovery"}},
	}
	stats := &character.Stats{HitPoints: 38, ProficiencyBonus: 3}
	pending := []dnd5e.PendingChoice{
		{Type: dnd5e.ChoiceTypeHitPoints, Remaining: 1},
		{Type: dnd5e.ChoiceTypeSpell, Remaining: 0},
	}

	got := levelupflow.NewSnapshot(char, stats, pending)
	assert.Equal(t, 5, got.TotalLevel)
	assert.Equal(t, map[string]int{"fighter": 3, "wizard": 2}, got.ClassLevels)
	assert.Equal(t, map[string]string{"fighter": "champion"}, got.Subclasses)
	assert.Equal(t, 38, got.MaxHP)
	assert.Equal(t, 3, got.ProficiencyBonus)
	assert.Equal(t, 15, got.AbilityScores["STR"])
	assert.Equal(t, []string{"Arcane Recovery", "Second Wind"}, got.Features)
	assert.Equal(t, []dnd5e.ChoiceType{dnd5e.ChoiceTypeHitPoints}, got.PendingTypes)
	assert.Equal(t, 1, got.PendingCount())
}

func TestNewSnapshotMissingData(t *testing.T) {
	got := levelupflow.NewSnapshot(nil, nil, nil)
	assert.Zero(t, got.TotalLevel)
	assert.Zero(t, got.MaxHP)
	assert.Empty(t, got.ClassLevels)
	assert.Zero(t, got.PendingCount())
}

func TestFeaturesGained(t *testing.T) {
	before := &levelupflow.Snapshot{Features: []string{"Extra Attack", "Second Wind"}}
	after := &levelupflow.Snapshot{Features: []string{"Action Surge", "Extra Attack", "Extra Attack", "Second Wind"}}
	assert.Equal(t, []string{"Action Surge", "Extra Attack"}, levelupflow.FeaturesGained(before, after))
	assert.Empty(t, levelupflow.FeaturesGained(after, after))
}

func TestValidateLevelUp(t *testing.T) {
	tests := []struct {
		name    string
		class   string
		level   int
		mutate  func(after *levelupflow.Snapshot)
		status  string
		pattern string
	}{
		{
			name:   "clean level up",
			class:  "fighter",
			level:  5,
			mutate: func(*levelupflow.Snapshot) {},
			status: wizardflow.StatusPassed,
		},
		{
			name:    "total level unchanged",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.TotalLevel = 4 },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternTotalLevelNotIncremented,
		},
		{
			name:    "other class leveled",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.ClassLevels = map[string]int{"fighter": 4, "wizard": 1} },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternClassLevelNotIncremented,
		},
		{
			name:    "hp unchanged",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.MaxHP = 36 },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternHPNotIncreased,
		},
		{
			name:    "proficiency bonus not raised at 5",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.ProficiencyBonus = 2 },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternProficiencyBonusWrong,
		},
		{
			name:    "choices left",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.PendingTypes = []dnd5e.ChoiceType{dnd5e.ChoiceTypeASI} },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternPendingChoicesRemain,
		},
		{
			name:    "ability over twenty",
			class:   "fighter",
			level:   5,
			mutate:  func(a *levelupflow.Snapshot) { a.AbilityScores["STR"] = 21 },
			status:  wizardflow.StatusFailed,
			pattern: levelupflow.PatternAbilityScoreOverMax,
		},
		{
			name:   "feature lost",
			class:  "fighter",
			level:  5,
			mutate: func(a *levelupflow.Snapshot) { a.Features = []string{"Second Wind", "Extra Attack"} },
			status: wizardflow.StatusPassedWithWarning,
		},
		{
			name:   "level off by one",
			class:  "fighter",
			level:  6,
			mutate: func(*levelupflow.Snapshot) {},
			status: wizardflow.StatusPassedWithWarning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := fighter(4, 36)
			after := fighter(5, 44)
			tt.mutate(after)

			got := levelupflow.Validator{}.ValidateLevelUp(before, after, tt.class, tt.level)
			assert.Equal(t, tt.status, got.Status, "errors %v warnings %v", got.Errors, got.Warnings)
			assert.Equal(t, tt.pattern, got.Pattern)
		})
	}
}

func TestValidateMulticlass(t *testing.T) {
	before := fighter(2, 20)
	after := fighter(3, 25)
	after.ClassLevels = map[string]int{"fighter": 2, "wizard": 1}

	got := levelupflow.Validator{}.ValidateLevelUp(before, after, "wizard", 3)
	assert.True(t, got.Passed(), "a new class goes from 0 to 1: %v", got.Errors)
}

func TestValidateSubclassLost(t *testing.T) {
	before := fighter(3, 28)
	before.Subclasses["fighter"] = "champion"
	after := fighter(4, 36)

	got := levelupflow.Validator{}.ValidateLevelUp(before, after, "fighter", 4)
	require.Equal(t, wizardflow.StatusFailed, got.Status)
	assert.Equal(t, levelupflow.PatternSubclassLost, got.Pattern)
}
