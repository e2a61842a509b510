package importers

import (
	"context"
	"io"
	"strconv"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/race"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// RaceImporter imports races. Subraces hang off their base race, which is
// created as a stub when the file only lists subraces.
type RaceImporter struct {
	*importer
	parser   *parsers.RaceParser
	strategy *race.SubraceStrategy
}

// NewRaceImporter creates a RaceImporter
func NewRaceImporter(cfg *Config) (*RaceImporter, error) {
	base, err := newImporter(cfg, "races", dnd5e.EntityTypeRace)
	if err != nil {
		return nil, err
	}
	i := &RaceImporter{
		importer: base,
		parser:   parsers.NewRaceParser(),
		strategy: race.NewSubraceStrategy(),
	}
	base.writer = i
	return i, nil
}

func (i *RaceImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *RaceImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	r, ok := entity.(*dnd5e.Race)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeRace, entity)
	}

	var parentID *int64
	if i.strategy.AppliesTo(r) {
		i.strategy.Reset()
		result, err := i.strategy.Enhance(ctx, q, r)
		if err != nil {
			return err
		}
		md := i.strategy.Metadata()
		rec.Strategy = i.strategy.Name()
		for _, w := range md.Warnings {
			rec.warn(w)
		}
		for k, v := range md.Metrics {
			rec.incr(k, v)
		}
		if result != nil {
			parentID = &result.ParentID
			if result.BaseRace != nil {
				if err := i.writeChildren(ctx, q, result.ParentID, result.BaseRace, rec); err != nil {
					return err
				}
			}
		}
	}

	id, err := upsert(ctx, q, r, parentID, rec)
	if err != nil {
		return err
	}
	return i.writeChildren(ctx, q, id, r, rec)
}

func (i *RaceImporter) writeChildren(ctx context.Context, q compendium.Queries, id int64, r *dnd5e.Race, rec *RecordResult) error {
	b := i.children(rec)
	b.check(compendium.LookupSizes, r.SizeCode)

	mods := abilityBonusModifiers(r.AbilityBonuses)
	mods = append(mods, abilityBonusModifiers(r.AbilityChoices)...)
	mods = append(mods, resistanceModifiers(r.Resistances)...)
	mods = append(mods, r.Modifiers...)

	err := q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:       b.sources(r.Sources),
		Modifiers:     b.modifiers(mods),
		Proficiencies: b.proficiencies(r.Proficiencies),
		Traits:        r.Traits,
		Languages:     b.languages(r.Languages),
		Conditions:    b.conditions(r.Conditions),
	})
	if err != nil {
		return err
	}

	if r.Spellcasting == nil {
		return nil
	}
	var names []string
	for _, s := range r.Spellcasting.Spells {
		if s.SpellName != "" {
			names = append(names, s.SpellName)
		}
	}
	return linkSpells(ctx, q, id, names, rec)
}

// abilityBonusModifiers converts racial ability increases to ability_score
// modifiers
func abilityBonusModifiers(bonuses []dnd5e.AbilityBonus) []dnd5e.Modifier {
	mods := make([]dnd5e.Modifier, 0, len(bonuses))
	for _, b := range bonuses {
		mods = append(mods, dnd5e.Modifier{
			Category:         parsers.ModifierAbilityScore,
			Value:            signed(b.Value),
			AbilityCode:      b.Ability,
			IsChoice:         b.IsChoice,
			ChoiceCount:      b.ChoiceCount,
			ChoiceConstraint: b.ChoiceConstraint,
		})
	}
	return mods
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
