package importers

import (
	"context"
	"io"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// BackgroundImporter imports backgrounds
type BackgroundImporter struct {
	*importer
	parser *parsers.BackgroundParser
}

// NewBackgroundImporter creates a BackgroundImporter
func NewBackgroundImporter(cfg *Config) (*BackgroundImporter, error) {
	base, err := newImporter(cfg, "backgrounds", dnd5e.EntityTypeBackground)
	if err != nil {
		return nil, err
	}
	i := &BackgroundImporter{importer: base, parser: parsers.NewBackgroundParser()}
	base.writer = i
	return i, nil
}

func (i *BackgroundImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *BackgroundImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	bg, ok := entity.(*dnd5e.Background)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeBackground, entity)
	}
	id, err := upsert(ctx, q, bg, nil, rec)
	if err != nil {
		return err
	}
	b := i.children(rec)
	return q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:       b.sources(bg.Sources),
		Proficiencies: b.proficiencies(bg.Proficiencies),
		Traits:        bg.Traits,
		Languages:     b.languages(bg.Languages),
		RandomTables:  bg.RandomTables,
	})
}
