package wizardflow_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

func elfWizard() *dnd5e.Character {
	return &dnd5e.Character{
		ID:             "char-1",
		RaceSlug:       "elf",
		SubraceSlug:    "high-elf",
		BackgroundSlug: "sage",
		Classes:        []dnd5e.CharacterClassLink{{ClassSlug: "wizard", Level: 1, IsPrimary: true}},
		Spells: []dnd5e.Grant{
			{Name: "Mage Hand", Source: dnd5e.SourceSubrace},
			{Name: "Fire Bolt", Source: dnd5e.SourceClass},
			{Name: "Light", Source: dnd5e.SourceClass},
		},
		Features: []dnd5e.Grant{
			{Name: "Darkvision", Source: dnd5e.SourceRace},
			{Name: "Spellcasting", Source: dnd5e.SourceClass},
			{Name: "Arcane Recovery", Source: dnd5e.SourceClass},
		},
		Languages: []dnd5e.Grant{{Name: "Elvish", Source: dnd5e.SourceRace}, {Name: "Common", Source: dnd5e.SourceRace}},
		Equipment: []dnd5e.GrantedItem{
			{Name: "Spellbook", Quantity: 1, Source: dnd5e.SourceClass},
			{Name: "Bottle of Black Ink", Quantity: 1, Source: dnd5e.SourceBackground},
		},
		EquipmentMode: dnd5e.EquipmentModeEquipment,
	}
}

func wizardStats() *charactersvc.Stats {
	return &charactersvc.Stats{
		HitPoints:        7,
		ArmorClass:       12,
		ProficiencyBonus: 2,
		Speed:            30,
		Size:             "Medium",
		AbilityScores:    map[string]int{"STR": 8, "DEX": 16, "CON": 13, "INT": 16, "WIS": 12, "CHA": 10},
		AbilityModifiers: map[string]int{"STR": -1, "DEX": 3, "CON": 1, "INT": 3, "WIS": 1, "CHA": 0},
		SavingThrows:     map[string]int{"STR": -1, "DEX": 3, "CON": 1, "INT": 5, "WIS": 3, "CHA": 0},
		Spellcasting: []charactersvc.SpellcastingStats{
			{ClassSlug: "wizard", Ability: "INT", SaveDC: 13, AttackBonus: 5, Slots: [9]int{2}},
		},
	}
}

func TestNewSnapshot(t *testing.T) {
	pending := []dnd5e.PendingChoice{
		{ID: "subrace:language:0", Type: dnd5e.ChoiceTypeLanguage},
		{ID: "class:equipment:1", Type: dnd5e.ChoiceTypeEquipment},
	}
	snap := wizardflow.NewSnapshot(elfWizard(), pending, wizardStats())

	assert.Equal(t, []string{"wizard"}, snap.ClassSlugs)
	assert.Equal(t, map[string]int{"wizard": 1}, snap.ClassLevels)
	assert.Equal(t, 1, snap.TotalLevel)
	assert.Equal(t, []string{"Fire Bolt", "Light"}, snap.SpellsBySource[dnd5e.SourceClass])
	assert.Equal(t, 3, snap.SpellCount)
	assert.Equal(t, []string{"Common", "Elvish"}, snap.Languages)
	assert.Equal(t, []string{"Arcane Recovery", "Spellcasting"}, snap.FeaturesBySource[dnd5e.SourceClass])
	assert.Equal(t, []string{"Spellbook"}, snap.ClassEquipment())
	assert.Equal(t, []string{"INT", "WIS"}, snap.SaveProficiencies)
	assert.Equal(t, []string{"wizard:INT"}, snap.Spellcasting)
	assert.Equal(t, [9]int{2}, snap.SpellSlots["wizard"])
	assert.Equal(t, []string{"class:equipment:1", "subrace:language:0"}, snap.PendingChoiceIDs)
	assert.Equal(t, []string{"equipment", "language"}, snap.PendingChoiceTypes)
	assert.True(t, snap.HasPendingType(dnd5e.ChoiceTypeLanguage))
	assert.False(t, snap.HasPendingType(dnd5e.ChoiceTypeSpell))
}

func TestSnapshotWithoutStats(t *testing.T) {
	snap := wizardflow.NewSnapshot(&dnd5e.Character{ID: "char-1"}, nil, nil)
	assert.Zero(t, snap.HitPoints)
	assert.Empty(t, snap.SaveProficiencies)
	assert.Empty(t, snap.ClassSlugs)
}

func TestDiff(t *testing.T) {
	before := wizardflow.NewSnapshot(elfWizard(), nil, wizardStats())

	char := elfWizard()
	char.RaceSlug = "human"
	char.SubraceSlug = ""
	char.RemoveSource(dnd5e.SourceSubrace)
	char.RemoveSource(dnd5e.SourceRace)
	after := wizardflow.NewSnapshot(char, nil, wizardStats())

	changes := before.Diff(after)
	fields := make([]string, 0, len(changes))
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	want := []string{
		"feature_count",
		"features_by_source",
		"language_count",
		"languages",
		"race_slug",
		"spell_count",
		"spells_by_source",
		"subrace_slug",
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("changed fields mismatch (-want +got):\n%s", diff)
	}
	for _, c := range changes {
		assert.NotEmpty(t, c.Diff, c.Field)
	}
	assert.True(t, before.Changed(after, "race_slug"))
	assert.False(t, before.Changed(after, "class_slugs"))
}

func TestDiffTreatsNilAndEmptyAlike(t *testing.T) {
	a := wizardflow.NewSnapshot(&dnd5e.Character{ID: "x"}, nil, nil)
	b := wizardflow.NewSnapshot(&dnd5e.Character{ID: "x", Spells: []dnd5e.Grant{}}, []dnd5e.PendingChoice{}, nil)
	require.Empty(t, a.Diff(b))
}

func TestChangeString(t *testing.T) {
	c := wizardflow.Change{Field: "race_slug", Before: "elf", After: "human"}
	assert.Equal(t, "race_slug: elf -> human", c.String())
}
