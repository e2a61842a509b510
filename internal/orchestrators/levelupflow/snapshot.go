// Package levelupflow levels characters through the wizard one level at a
// time, checking what every level up changed.
package levelupflow

import (
	"context"
	"slices"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	character "github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Snapshot is the part of a character a level up should change
type Snapshot struct {
	TotalLevel       int               `json:"total_level"`
	ClassLevels      map[string]int    `json:"class_levels"`
	Subclasses       map[string]string `json:"subclasses,omitempty"`
	MaxHP            int               `json:"max_hp"`
	ProficiencyBonus int               `json:"proficiency_bonus"`
	AbilityScores    map[string]int    `json:"ability_scores"`
	Features         []string          `json:"features,omitempty"`
	// PendingTypes lists the type of every unresolved choice
	PendingTypes []dnd5e.ChoiceType `json:"pending_types,omitempty"`
}

// PendingCount is the number of unresolved choices
func (s *Snapshot) PendingCount() int { return len(s.PendingTypes) }

// NewSnapshot derives a snapshot. stats may be nil.
func NewSnapshot(char *dnd5e.Character, stats *character.Stats, pending []dnd5e.PendingChoice) *Snapshot {
	s := &Snapshot{
		ClassLevels:   map[string]int{},
		Subclasses:    map[string]string{},
		AbilityScores: map[string]int{},
	}
	if char != nil {
		s.TotalLevel = char.TotalLevel()
		for _, cl := range char.Classes {
			s.ClassLevels[cl.ClassSlug] = cl.Level
			if cl.SubclassSlug != "" {
				s.Subclasses[cl.ClassSlug] = cl.SubclassSlug
			}
		}
		s.AbilityScores = char.FinalAbilityScores()
		for _, f := range char.Features {
			s.Features = append(s.Features, f.Name)
		}
		slices.Sort(s.Features)
	}
	if stats != nil {
		s.MaxHP = stats.HitPoints
		s.ProficiencyBonus = stats.ProficiencyBonus
	}
	for _, p := range pending {
		if p.Remaining > 0 {
			s.PendingTypes = append(s.PendingTypes, p.Type)
		}
	}
	return s
}

// Capture reads a snapshot of a stored character
func Capture(ctx context.Context, svc character.Service, characterID string) (*Snapshot, error) {
	got, err := svc.GetCharacter(ctx, &character.GetCharacterInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	stats, err := svc.Stats(ctx, &character.StatsInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute stats")
	}
	pending, err := svc.PendingChoices(ctx, &character.PendingChoicesInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending choices")
	}
	return NewSnapshot(got.Character, stats.Stats, pending.PendingChoices), nil
}

// FeaturesGained returns the features in after that before did not have
func FeaturesGained(before, after *Snapshot) []string {
	held := map[string]int{}
	for _, f := range before.Features {
		held[f]++
	}
	var out []string
	for _, f := range after.Features {
		if held[f] > 0 {
			held[f]--
			continue
		}
		out = append(out, f)
	}
	return out
}
