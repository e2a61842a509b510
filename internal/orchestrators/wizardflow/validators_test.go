package wizardflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

func snap(mutate func(s *wizardflow.Snapshot)) *wizardflow.Snapshot {
	s := &wizardflow.Snapshot{
		RaceSlug:          "elf",
		BackgroundSlug:    "sage",
		ClassSlugs:        []string{"wizard"},
		Speed:             30,
		Size:              "Medium",
		LanguageCount:     2,
		SpellsBySource:    map[string][]string{},
		FeaturesBySource:  map[string][]string{},
		EquipmentBySource: map[string][]string{},
		SaveProficiencies: []string{"INT", "WIS"},
		EquipmentMode:     dnd5e.EquipmentModeEquipment,
	}
	if mutate != nil {
		mutate(s)
	}
	return s
}

func TestValidateRaceSwitch(t *testing.T) {
	before := snap(func(s *wizardflow.Snapshot) {
		s.FeaturesBySource[dnd5e.SourceRace] = []string{"Darkvision", "Fey Ancestry"}
		s.SpellsBySource[dnd5e.SourceSubrace] = []string{"Mage Hand"}
	})

	tests := []struct {
		name     string
		after    *wizardflow.Snapshot
		status   string
		pattern  string
		warnings int
	}{
		{
			name: "clean switch",
			after: snap(func(s *wizardflow.Snapshot) {
				s.RaceSlug = "human"
				s.Speed = 25
				s.Size = "Small"
				s.LanguageCount = 3
			}),
			status: wizardflow.StatusPassed,
		},
		{
			name:    "race unchanged",
			after:   snap(nil),
			status:  wizardflow.StatusFailed,
			pattern: wizardflow.PatternRaceNotChanged,
		},
		{
			name: "subrace spells kept",
			after: snap(func(s *wizardflow.Snapshot) {
				s.RaceSlug = "human"
				s.Speed = 25
				s.Size = "Small"
				s.LanguageCount = 3
				s.SpellsBySource[dnd5e.SourceSubrace] = []string{"Mage Hand"}
			}),
			status:  wizardflow.StatusFailed,
			pattern: wizardflow.PatternRacialSpellsNotCleared,
		},
		{
			name: "racial features kept",
			after: snap(func(s *wizardflow.Snapshot) {
				s.RaceSlug = "half-elf"
				s.Speed = 25
				s.Size = "Small"
				s.LanguageCount = 3
				s.FeaturesBySource[dnd5e.SourceRace] = []string{"Darkvision", "Fey Ancestry"}
			}),
			status:  wizardflow.StatusFailed,
			pattern: wizardflow.PatternRacialFeaturesNotCleared,
		},
		{
			name: "shared trait only warns",
			after: snap(func(s *wizardflow.Snapshot) {
				s.RaceSlug = "half-elf"
				s.FeaturesBySource[dnd5e.SourceRace] = []string{"Darkvision", "Skill Versatility"}
			}),
			status:   wizardflow.StatusPassedWithWarning,
			warnings: 4,
		},
		{
			name: "pending language choice explains unchanged count",
			after: snap(func(s *wizardflow.Snapshot) {
				s.RaceSlug = "human"
				s.Speed = 25
				s.Size = "Small"
				s.PendingChoiceTypes = []string{string(dnd5e.ChoiceTypeLanguage)}
			}),
			status: wizardflow.StatusPassed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wizardflow.SwitchValidator{}.Validate(wizardflow.ActionSwitchRace, before, tt.after)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Len(t, got.Warnings, tt.warnings)
			assert.Equal(t, tt.status != wizardflow.StatusFailed, got.Passed())
		})
	}
}

func TestValidateBackgroundSwitch(t *testing.T) {
	before := snap(func(s *wizardflow.Snapshot) {
		s.FeaturesBySource[dnd5e.SourceBackground] = []string{"Researcher"}
		s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
	})

	got := wizardflow.SwitchValidator{}.Validate(wizardflow.ActionSwitchBackground, before, snap(func(s *wizardflow.Snapshot) {
		s.BackgroundSlug = "acolyte"
		s.FeaturesBySource[dnd5e.SourceBackground] = []string{"Shelter of the Faithful"}
		s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Holy Symbol", "Prayer Book"}
	}))
	assert.Equal(t, wizardflow.StatusPassed, got.Status)

	got = wizardflow.SwitchValidator{}.Validate(wizardflow.ActionSwitchBackground, before, snap(func(s *wizardflow.Snapshot) {
		s.BackgroundSlug = "acolyte"
		s.FeaturesBySource[dnd5e.SourceBackground] = []string{"Researcher"}
		s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
	}))
	assert.Equal(t, wizardflow.StatusFailed, got.Status)
	assert.Equal(t, wizardflow.PatternBackgroundFeaturesNotCleared, got.Pattern)
	assert.Len(t, got.Warnings, 1, "unchanged equipment warns")

	got = wizardflow.SwitchValidator{}.Validate(wizardflow.ActionSwitchBackground, before, before)
	assert.Equal(t, wizardflow.PatternBackgroundNotChanged, got.Pattern)
}

func TestValidateClassSwitch(t *testing.T) {
	before := snap(func(s *wizardflow.Snapshot) {
		s.SpellsBySource[dnd5e.SourceClass] = []string{"Fire Bolt", "Light"}
		s.FeaturesBySource[dnd5e.SourceClass] = []string{"Arcane Recovery", "Spellcasting"}
		s.EquipmentBySource[dnd5e.SourceClass] = []string{"Spellbook"}
		s.Spellcasting = []string{"wizard:INT"}
	})

	tests := []struct {
		name     string
		after    *wizardflow.Snapshot
		status   string
		pattern  string
		warnings int
	}{
		{
			name: "wizard to fighter",
			after: snap(func(s *wizardflow.Snapshot) {
				s.ClassSlugs = []string{"fighter"}
				s.FeaturesBySource[dnd5e.SourceClass] = []string{"Fighting Style", "Second Wind"}
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Explorer's Pack"}
				s.SaveProficiencies = []string{"STR", "CON"}
			}),
			status: wizardflow.StatusPassed,
		},
		{
			name: "wizard to cleric shares spellcasting feature",
			after: snap(func(s *wizardflow.Snapshot) {
				s.ClassSlugs = []string{"cleric"}
				s.FeaturesBySource[dnd5e.SourceClass] = []string{"Spellcasting"}
				s.SaveProficiencies = []string{"WIS", "CHA"}
				s.Spellcasting = []string{"cleric:WIS"}
			}),
			status:   wizardflow.StatusPassedWithWarning,
			warnings: 1,
		},
		{
			name:    "class unchanged",
			after:   before,
			status:  wizardflow.StatusFailed,
			pattern: wizardflow.PatternClassNotChanged,
		},
		{
			name: "class spells kept",
			after: snap(func(s *wizardflow.Snapshot) {
				s.ClassSlugs = []string{"cleric"}
				s.SpellsBySource[dnd5e.SourceClass] = []string{"Fire Bolt", "Light"}
				s.SaveProficiencies = []string{"WIS", "CHA"}
			}),
			status:  wizardflow.StatusFailed,
			pattern: wizardflow.PatternClassSpellsNotCleared,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wizardflow.SwitchValidator{}.ValidateClassSwitch(before, tt.after)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.pattern, got.Pattern)
			assert.Len(t, got.Warnings, tt.warnings)
		})
	}
}

func TestValidateClassSwitchSharedFeature(t *testing.T) {
	cleric := snap(func(s *wizardflow.Snapshot) {
		s.ClassSlugs = []string{"cleric"}
		s.FeaturesBySource[dnd5e.SourceClass] = []string{"Spellcasting"}
		s.SaveProficiencies = []string{"WIS", "CHA"}
	})

	got := wizardflow.SwitchValidator{}.ValidateClassSwitch(cleric, snap(func(s *wizardflow.Snapshot) {
		s.FeaturesBySource[dnd5e.SourceClass] = []string{"Arcane Recovery", "Spellcasting"}
	}))
	assert.Equal(t, wizardflow.StatusPassedWithWarning, got.Status)

	got = wizardflow.SwitchValidator{}.ValidateClassSwitch(cleric, snap(func(s *wizardflow.Snapshot) {
		s.FeaturesBySource[dnd5e.SourceClass] = []string{"Arcane Recovery", "Spellcasting", "Spellcasting"}
	}))
	assert.Equal(t, wizardflow.PatternClassFeaturesNotCleared, got.Pattern)
}

func TestValidateUnknownAction(t *testing.T) {
	got := wizardflow.SwitchValidator{}.Validate(wizardflow.ActionSetDetails, snap(nil), snap(nil))
	assert.Equal(t, wizardflow.StatusSkipped, got.Status)
}

func TestEquipmentValidate(t *testing.T) {
	want := wizardflow.EquipmentExpectation{
		BackgroundItems: []string{"Bottle of Black Ink"},
		ClassItems:      []string{"Spellbook"},
		ChoiceItems:     []string{"Dagger"},
		ChoiceGroups:    1,
	}

	tests := []struct {
		name    string
		snap    *wizardflow.Snapshot
		want    wizardflow.EquipmentExpectation
		pattern string
	}{
		{
			name: "equipment complete",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Dagger", "Spellbook"}
			}),
			want: want,
		},
		{
			name: "background item missing",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Dagger", "Spellbook"}
			}),
			want:    want,
			pattern: wizardflow.PatternBackgroundEquipmentMissing,
		},
		{
			name: "class item missing",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Dagger"}
			}),
			want:    want,
			pattern: wizardflow.PatternClassEquipmentMissing,
		},
		{
			name: "class items not checked while choices pending",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
				s.PendingChoiceTypes = []string{string(dnd5e.ChoiceTypeEquipment)}
			}),
			want: wizardflow.EquipmentExpectation{BackgroundItems: want.BackgroundItems, ClassItems: want.ClassItems},
		},
		{
			name: "selected item missing",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Spellbook"}
			}),
			want:    want,
			pattern: wizardflow.PatternEquipmentChoiceItemsMissing,
		},
		{
			name: "gold mode with gold",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentMode = dnd5e.EquipmentModeGold
				s.Gold = 40
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
			}),
			want: wizardflow.EquipmentExpectation{BackgroundItems: want.BackgroundItems},
		},
		{
			name: "gold mode without gold",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentMode = dnd5e.EquipmentModeGold
				s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
			}),
			want:    wizardflow.EquipmentExpectation{BackgroundItems: want.BackgroundItems},
			pattern: wizardflow.PatternGoldMissing,
		},
		{
			name: "gold mode with class equipment",
			snap: snap(func(s *wizardflow.Snapshot) {
				s.EquipmentMode = dnd5e.EquipmentModeGold
				s.Gold = 40
				s.EquipmentBySource[dnd5e.SourceClass] = []string{"Spellbook"}
			}),
			pattern: wizardflow.PatternClassEquipmentInGoldMode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wizardflow.EquipmentValidator{}.Validate(tt.snap, tt.want)
			assert.Equal(t, tt.pattern, got.Pattern, "errors: %v", got.Errors)
			assert.Equal(t, tt.pattern == "", got.Passed())
		})
	}
}

func TestValidateChoicesAvailable(t *testing.T) {
	want := wizardflow.EquipmentExpectation{ChoiceGroups: 2}
	v := wizardflow.EquipmentValidator{}

	got := v.ValidateChoicesAvailable(snap(func(s *wizardflow.Snapshot) {
		s.PendingChoiceIDs = []string{"class:equipment:1", "class:equipment:2", "race:language:0"}
	}), want)
	assert.Equal(t, wizardflow.StatusPassed, got.Status)

	got = v.ValidateChoicesAvailable(snap(func(s *wizardflow.Snapshot) {
		s.PendingChoiceIDs = []string{"class:equipment:1", "class:equipment_mode"}
	}), want)
	assert.Equal(t, wizardflow.PatternEquipmentChoicesMissing, got.Pattern)

	got = v.ValidateChoicesAvailable(snap(func(s *wizardflow.Snapshot) {
		s.EquipmentMode = dnd5e.EquipmentModeGold
	}), want)
	assert.Equal(t, wizardflow.StatusPassed, got.Status)
}

func TestValidateModeSwitch(t *testing.T) {
	equipment := snap(func(s *wizardflow.Snapshot) {
		s.EquipmentBySource[dnd5e.SourceClass] = []string{"Spellbook"}
		s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
	})
	gold := snap(func(s *wizardflow.Snapshot) {
		s.EquipmentMode = dnd5e.EquipmentModeGold
		s.Gold = 30
		s.EquipmentBySource[dnd5e.SourceBackground] = []string{"Bottle of Black Ink"}
	})
	v := wizardflow.EquipmentValidator{}

	assert.Equal(t, wizardflow.StatusPassed, v.ValidateModeSwitch(equipment, gold).Status)
	assert.Equal(t, wizardflow.StatusPassed, v.ValidateModeSwitch(gold, snap(nil)).Status)

	keptItems := snap(func(s *wizardflow.Snapshot) {
		s.EquipmentMode = dnd5e.EquipmentModeGold
		s.Gold = 30
		s.EquipmentBySource[dnd5e.SourceClass] = []string{"Spellbook"}
	})
	got := v.ValidateModeSwitch(equipment, keptItems)
	assert.Equal(t, wizardflow.PatternClassEquipmentNotCleared, got.Pattern)
	assert.Len(t, got.Warnings, 1, "lost background equipment warns")

	keptGold := snap(func(s *wizardflow.Snapshot) { s.Gold = 30 })
	assert.Equal(t, wizardflow.PatternGoldNotCleared, v.ValidateModeSwitch(gold, keptGold).Pattern)
}

func TestValidateSubclass(t *testing.T) {
	before := snap(nil)
	after := snap(func(s *wizardflow.Snapshot) {
		s.SubclassSlugs = []string{"life-domain"}
		s.FeaturesBySource[dnd5e.SourceSubclass] = []string{"Disciple of Life"}
	})
	assert.Equal(t, wizardflow.StatusPassed, wizardflow.ValidateSubclass(before, after).Status)
	assert.Equal(t, wizardflow.PatternSubclassFeaturesMissing, wizardflow.ValidateSubclass(before, before).Pattern)

	noFeatures := snap(func(s *wizardflow.Snapshot) { s.SubclassSlugs = []string{"champion"} })
	assert.Equal(t, wizardflow.StatusPassedWithWarning, wizardflow.ValidateSubclass(before, noFeatures).Status)
}
