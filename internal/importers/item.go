package importers

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

const chargesCounterName = "Charges"

// ItemImporter imports items. Item strategies run inside the parser.
type ItemImporter struct {
	*importer
	parser *parsers.ItemParser
}

// NewItemImporter creates an ItemImporter
func NewItemImporter(cfg *Config) (*ItemImporter, error) {
	base, err := newImporter(cfg, "items", dnd5e.EntityTypeItem)
	if err != nil {
		return nil, err
	}
	i := &ItemImporter{
		importer: base,
		parser:   parsers.NewItemParser(&parsers.ItemParserConfig{Logger: base.logger.With(zap.String("channel", "import-strategy"))}),
	}
	base.writer = i
	return i, nil
}

func (i *ItemImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *ItemImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	item, ok := entity.(*dnd5e.Item)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeItem, entity)
	}
	id, err := upsert(ctx, q, item, nil, rec)
	if err != nil {
		return err
	}

	b := i.children(rec)
	b.check(compendium.LookupDamageTypes, item.DamageTypeCode)

	traits := make([]dnd5e.Trait, 0, len(item.Abilities))
	for _, a := range item.Abilities {
		traits = append(traits, dnd5e.Trait{
			Name:        a.Name,
			Category:    a.AbilityType,
			Description: a.Description,
			SortOrder:   a.SortOrder,
		})
	}
	var counters []dnd5e.Counter
	if item.ChargesMax != nil {
		counters = append(counters, dnd5e.Counter{
			Name:        chargesCounterName,
			Level:       1,
			Value:       *item.ChargesMax,
			ResetTiming: item.RechargeTiming,
		})
	}

	err = q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:       b.sources(item.Sources),
		Modifiers:     b.modifiers(item.Modifiers),
		Proficiencies: b.proficiencies(item.Proficiencies),
		Traits:        traits,
		Counters:      counters,
		RandomTables:  item.RandomTables,
		Tags:          item.Properties,
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(item.Spells))
	for _, s := range item.Spells {
		names = append(names, s.SpellName)
	}
	return linkSpells(ctx, q, id, names, rec)
}
