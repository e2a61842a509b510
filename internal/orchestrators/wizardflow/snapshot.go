package wizardflow

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Snapshot is the derived view of a character at one point of a flow
type Snapshot struct {
	CharacterID        string              `json:"character_id"`
	RaceSlug           string              `json:"race_slug"`
	SubraceSlug        string              `json:"subrace_slug"`
	BackgroundSlug     string              `json:"background_slug"`
	ClassSlugs         []string            `json:"class_slugs"`
	SubclassSlugs      []string            `json:"subclass_slugs"`
	ClassLevels        map[string]int      `json:"class_levels"`
	TotalLevel         int                 `json:"total_level"`
	AbilityScores      map[string]int      `json:"ability_scores"`
	AbilityModifiers   map[string]int      `json:"ability_modifiers"`
	Speed              int                 `json:"speed"`
	Size               string              `json:"size"`
	SpellsBySource     map[string][]string `json:"spells_by_source"`
	SpellCount         int                 `json:"spell_count"`
	Languages          []string            `json:"languages"`
	LanguageCount      int                 `json:"language_count"`
	Proficiencies      []string            `json:"proficiencies"`
	ProficiencyCount   int                 `json:"proficiency_count"`
	SaveProficiencies  []string            `json:"save_proficiencies"`
	FeaturesBySource   map[string][]string `json:"features_by_source"`
	FeatureCount       int                 `json:"feature_count"`
	EquipmentBySource  map[string][]string `json:"equipment_by_source"`
	EquipmentCount     int                 `json:"equipment_count"`
	EquipmentMode      string              `json:"equipment_mode"`
	Gold               int                 `json:"gold"`
	PendingChoiceIDs   []string            `json:"pending_choice_ids"`
	PendingChoiceTypes []string            `json:"pending_choice_types"`
	PendingChoiceCount int                 `json:"pending_choice_count"`
	HitPoints          int                 `json:"hit_points"`
	ArmorClass         int                 `json:"armor_class"`
	ProficiencyBonus   int                 `json:"proficiency_bonus"`
	Spellcasting       []string            `json:"spellcasting"`
	SpellSlots         map[string][9]int   `json:"spell_slots"`
	IsComplete         bool                `json:"is_complete"`
}

// Capture builds a snapshot of the character from the wizard
func Capture(ctx context.Context, svc character.Service, characterID string) (*Snapshot, error) {
	got, err := svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	pending, err := svc.PendingChoices(ctx, &character.PendingChoicesInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending choices")
	}
	stats, err := svc.Stats(ctx, &character.StatsInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute stats")
	}
	return NewSnapshot(got.Character, pending.PendingChoices, stats.Stats), nil
}

// NewSnapshot derives a snapshot from a character, its pending choices and
// its stats
func NewSnapshot(char *dnd5e.Character, pending []dnd5e.PendingChoice, stats *character.Stats) *Snapshot {
	s := &Snapshot{
		CharacterID:      char.ID,
		RaceSlug:         char.RaceSlug,
		SubraceSlug:      char.SubraceSlug,
		BackgroundSlug:   char.BackgroundSlug,
		ClassLevels:      map[string]int{},
		TotalLevel:       char.TotalLevel(),
		SpellsBySource:   bySource(char.Spells),
		SpellCount:       len(char.Spells),
		Languages:        sortedNames(char.Languages),
		LanguageCount:    len(char.Languages),
		Proficiencies:    sortedNames(char.Proficiencies),
		ProficiencyCount: len(char.Proficiencies),
		FeaturesBySource: bySource(char.Features),
		FeatureCount:     len(char.Features),
		EquipmentMode:    char.EquipmentMode,
		Gold:             char.Gold,
		IsComplete:       char.IsComplete,
		SpellSlots:       map[string][9]int{},
	}
	for _, l := range char.Classes {
		s.ClassSlugs = append(s.ClassSlugs, l.ClassSlug)
		if l.SubclassSlug != "" {
			s.SubclassSlugs = append(s.SubclassSlugs, l.SubclassSlug)
		}
		s.ClassLevels[l.ClassSlug] = l.Level
	}

	s.EquipmentBySource = map[string][]string{}
	for _, it := range char.Equipment {
		s.EquipmentBySource[it.Source] = append(s.EquipmentBySource[it.Source], it.Name)
	}
	for src := range s.EquipmentBySource {
		slices.Sort(s.EquipmentBySource[src])
	}
	s.EquipmentCount = len(char.Equipment)

	types := map[string]bool{}
	for _, p := range pending {
		s.PendingChoiceIDs = append(s.PendingChoiceIDs, p.ID)
		types[string(p.Type)] = true
	}
	slices.Sort(s.PendingChoiceIDs)
	s.PendingChoiceTypes = slices.Sorted(maps.Keys(types))
	s.PendingChoiceCount = len(pending)

	if stats != nil {
		s.AbilityScores = stats.AbilityScores
		s.AbilityModifiers = stats.AbilityModifiers
		s.Speed = stats.Speed
		s.Size = stats.Size
		s.HitPoints = stats.HitPoints
		s.ArmorClass = stats.ArmorClass
		s.ProficiencyBonus = stats.ProficiencyBonus
		for _, code := range dnd5e.AbilityCodes {
			if stats.SavingThrows[code] > stats.AbilityModifiers[code] {
				s.SaveProficiencies = append(s.SaveProficiencies, code)
			}
		}
		for _, sc := range stats.Spellcasting {
			s.Spellcasting = append(s.Spellcasting, sc.ClassSlug+":"+sc.Ability)
			s.SpellSlots[sc.ClassSlug] = sc.Slots
		}
	}
	return s
}

// HasPendingType reports whether a choice of type t is pending
func (s *Snapshot) HasPendingType(t dnd5e.ChoiceType) bool {
	return slices.Contains(s.PendingChoiceTypes, string(t))
}

// ClassEquipment lists the class equipment carried
func (s *Snapshot) ClassEquipment() []string {
	return s.EquipmentBySource[dnd5e.SourceClass]
}

func bySource(grants []dnd5e.Grant) map[string][]string {
	out := map[string][]string{}
	for _, g := range grants {
		out[g.Source] = append(out[g.Source], g.Name)
	}
	for src := range out {
		slices.Sort(out[src])
	}
	return out
}

func sortedNames(grants []dnd5e.Grant) []string {
	out := make([]string, 0, len(grants))
	for _, g := range grants {
		out = append(out, g.Name)
	}
	slices.Sort(out)
	return out
}

// Change is one field that differs between two snapshots
type Change struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
	Diff   string `json:"diff,omitempty"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.Field, c.Before, c.After)
}

var diffOpts = cmp.Options{cmpopts.EquateEmpty()}

// Diff lists the fields that changed from s to after, ordered by field name
func (s *Snapshot) Diff(after *Snapshot) []Change {
	before, now := s.fields(), after.fields()
	var out []Change
	for _, field := range slices.Sorted(maps.Keys(before)) {
		b, a := before[field], now[field]
		if cmp.Equal(b, a, diffOpts) {
			continue
		}
		out = append(out, Change{Field: field, Before: b, After: a, Diff: cmp.Diff(b, a, diffOpts)})
	}
	return out
}

// Changed reports whether field differs between s and after
func (s *Snapshot) Changed(after *Snapshot, field string) bool {
	return !cmp.Equal(s.fields()[field], after.fields()[field], diffOpts)
}

func (s *Snapshot) fields() map[string]any {
	return map[string]any{
		"race_slug":            s.RaceSlug,
		"subrace_slug":         s.SubraceSlug,
		"background_slug":      s.BackgroundSlug,
		"class_slugs":          s.ClassSlugs,
		"subclass_slugs":       s.SubclassSlugs,
		"class_levels":         s.ClassLevels,
		"total_level":          s.TotalLevel,
		"ability_scores":       s.AbilityScores,
		"ability_modifiers":    s.AbilityModifiers,
		"speed":                s.Speed,
		"size":                 s.Size,
		"spells_by_source":     s.SpellsBySource,
		"spell_count":          s.SpellCount,
		"languages":            s.Languages,
		"language_count":       s.LanguageCount,
		"proficiencies":        s.Proficiencies,
		"proficiency_count":    s.ProficiencyCount,
		"save_proficiencies":   s.SaveProficiencies,
		"features_by_source":   s.FeaturesBySource,
		"feature_count":        s.FeatureCount,
		"equipment_by_source":  s.EquipmentBySource,
		"equipment_count":      s.EquipmentCount,
		"equipment_mode":       s.EquipmentMode,
		"gold":                 s.Gold,
		"pending_choice_ids":   s.PendingChoiceIDs,
		"pending_choice_types": s.PendingChoiceTypes,
		"pending_choice_count": s.PendingChoiceCount,
		"hit_points":           s.HitPoints,
		"armor_class":          s.ArmorClass,
		"proficiency_bonus":    s.ProficiencyBonus,
		"spellcasting":         s.Spellcasting,
		"spell_slots":          s.SpellSlots,
		"is_complete":          s.IsComplete,
	}
}
