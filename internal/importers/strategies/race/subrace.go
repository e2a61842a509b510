// Package race holds the race import strategies
package race

import (
	"context"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// completeRaceAbilityPoints is the ability bonus total at which a base race
// stands on its own and subraces become optional
const completeRaceAbilityPoints = 3

const defaultSpeed = 30

var parenNameRe = regexp.MustCompile(`\(([^)]+)\)`)

// Store is the part of the compendium store the strategy needs
type Store interface {
	GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error)
	UpsertEntity(ctx context.Context, input compendium.UpsertEntityInput) (*compendium.UpsertEntityOutput, error)
}

// Metadata is what the strategy observed for the last race
type Metadata struct {
	Warnings []string
	Metrics  map[string]int
}

// Result tells the importer where the subrace hangs
type Result struct {
	ParentID int64
	// BaseRace is set when a stub base race was created and still needs
	// its child records written
	BaseRace *dnd5e.Race
}

// SubraceStrategy resolves or creates the base race of a subrace and moves
// shared data onto the base
type SubraceStrategy struct {
	warnings []string
	metrics  map[string]int
}

// NewSubraceStrategy creates a SubraceStrategy
func NewSubraceStrategy() *SubraceStrategy {
	return &SubraceStrategy{metrics: map[string]int{}}
}

// Name identifies the strategy in logs
func (s *SubraceStrategy) Name() string { return "subrace" }

// Reset clears what was collected for the previous race
func (s *SubraceStrategy) Reset() {
	s.warnings = nil
	s.metrics = map[string]int{}
}

// Metadata returns a copy of the collected warnings and metrics
func (s *SubraceStrategy) Metadata() Metadata {
	metrics := make(map[string]int, len(s.metrics))
	for k, v := range s.metrics {
		metrics[k] = v
	}
	return Metadata{Warnings: append([]string(nil), s.warnings...), Metrics: metrics}
}

// AppliesTo matches races parsed with a base race name
func (s *SubraceStrategy) AppliesTo(r *dnd5e.Race) bool {
	return r.BaseRaceName != ""
}

// Enhance rewrites r as a subrace of its base race. It returns nil when the
// base race can neither be found nor created.
func (s *SubraceStrategy) Enhance(ctx context.Context, store Store, r *dnd5e.Race) (*Result, error) {
	baseSlug := dnd5e.Slugify(r.BaseRaceName)
	result := &Result{}

	row, err := store.GetEntity(ctx, dnd5e.EntityTypeRace, baseSlug)
	switch {
	case errors.IsNotFound(err):
		stub := s.stubBaseRace(r, baseSlug)
		if stub == nil {
			return nil, nil
		}
		out, err := store.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: stub})
		if err != nil {
			return nil, err
		}
		result.ParentID = out.ID
		result.BaseRace = stub
		s.metrics["base_races_created"]++
	case err != nil:
		return nil, err
	default:
		result.ParentID = row.ID
		baseSlug = row.Slug
		s.metrics["base_races_resolved"]++
	}

	if len(r.SubraceTraits) > 0 || len(r.BaseTraits) > 0 {
		r.Traits = r.SubraceTraits
	}
	r.AbilityBonuses = subraceAbilityBonuses(r.AbilityBonuses)
	r.Resistances = nil
	r.Proficiencies = nil
	r.Languages = nil
	r.Conditions = nil

	r.ParentSlug = baseSlug
	r.Slug = baseSlug + "-" + dnd5e.Slugify(SubraceName(r.Name))
	r.FullSlug = dnd5e.FullSlug(r.Sources, r.Slug)
	s.metrics["subraces_processed"]++
	return result, nil
}

func (s *SubraceStrategy) stubBaseRace(r *dnd5e.Race, slug string) *dnd5e.Race {
	if r.SizeCode == "" {
		s.warnings = append(s.warnings, "cannot create base race "+r.BaseRaceName+": subrace has no size")
		return nil
	}
	speed := r.Speed
	if speed == 0 {
		speed = defaultSpeed
	}
	sources := r.Sources
	if len(sources) == 0 {
		sources = []dnd5e.SourceCitation{{Code: dnd5e.DefaultSourceCode}}
	}
	bonuses := baseAbilityBonuses(r.AbilityBonuses)

	stub := &dnd5e.Race{
		Record: dnd5e.Record{
			Name:    r.BaseRaceName,
			Slug:    slug,
			Sources: sources,
		},
		SizeCode:        r.SizeCode,
		Speed:           speed,
		Traits:          r.BaseTraits,
		AbilityBonuses:  bonuses,
		Proficiencies:   r.Proficiencies,
		Languages:       r.Languages,
		Conditions:      r.Conditions,
		Resistances:     r.Resistances,
		SubraceRequired: abilityPoints(bonuses, r.AbilityChoices) < completeRaceAbilityPoints,
	}
	stub.SetIdentity()
	return stub
}

// SubraceName extracts "Hill" from "Dwarf (Hill)"; other names are returned
// unchanged
func SubraceName(name string) string {
	if m := parenNameRe.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	if _, sub, ok := strings.Cut(name, ","); ok {
		return strings.TrimSpace(sub)
	}
	return name
}

// baseAbilityBonuses keeps the first bonus for the base race
func baseAbilityBonuses(bonuses []dnd5e.AbilityBonus) []dnd5e.AbilityBonus {
	if len(bonuses) <= 1 {
		return bonuses
	}
	return bonuses[:1]
}

// subraceAbilityBonuses keeps everything after the first bonus
func subraceAbilityBonuses(bonuses []dnd5e.AbilityBonus) []dnd5e.AbilityBonus {
	if len(bonuses) <= 1 {
		return nil
	}
	return append([]dnd5e.AbilityBonus(nil), bonuses[1:]...)
}

func abilityPoints(bonuses, choices []dnd5e.AbilityBonus) int {
	total := 0
	for _, b := range bonuses {
		total += abs(b.Value)
	}
	for _, c := range choices {
		count := c.ChoiceCount
		if count == 0 {
			count = 1
		}
		total += count * abs(c.Value)
	}
	return total
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
