package importers

import (
	"context"
	"io"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// FeatImporter imports feats
type FeatImporter struct {
	*importer
	parser *parsers.FeatParser
}

// NewFeatImporter creates a FeatImporter
func NewFeatImporter(cfg *Config) (*FeatImporter, error) {
	base, err := newImporter(cfg, "feats", dnd5e.EntityTypeFeat)
	if err != nil {
		return nil, err
	}
	i := &FeatImporter{importer: base, parser: parsers.NewFeatParser()}
	base.writer = i
	return i, nil
}

func (i *FeatImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *FeatImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	feat, ok := entity.(*dnd5e.Feat)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeFeat, entity)
	}
	id, err := upsert(ctx, q, feat, nil, rec)
	if err != nil {
		return err
	}

	b := i.children(rec)
	mods := append([]dnd5e.Modifier(nil), feat.Modifiers...)
	mods = append(mods, resistanceModifiers(feat.Resistances)...)
	var counters []dnd5e.Counter
	if feat.ResetsOn != "" {
		counters = append(counters, dnd5e.Counter{Name: feat.Name, Level: 1, Value: 1, ResetTiming: feat.ResetsOn})
	}

	err = q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:       b.sources(feat.Sources),
		Modifiers:     b.modifiers(mods),
		Proficiencies: b.proficiencies(feat.Proficiencies),
		Counters:      counters,
		Languages:     b.languages(feat.Languages),
		Conditions:    b.conditions(feat.Conditions),
		Prerequisites: feat.Prerequisites,
	})
	if err != nil {
		return err
	}

	var names []string
	for _, s := range feat.Spells {
		if s.SpellName != "" {
			names = append(names, s.SpellName)
		}
	}
	return linkSpells(ctx, q, id, names, rec)
}
