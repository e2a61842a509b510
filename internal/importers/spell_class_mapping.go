package importers

import (
	"context"
	"io"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// SpellClassMappingImporter adds class associations from the additive
// "spells-<book>+<book>.xml" files. Only spells that already exist are
// touched; every other field of the spell is left alone.
type SpellClassMappingImporter struct {
	*importer
	parser *parsers.SpellParser
}

// NewSpellClassMappingImporter creates a SpellClassMappingImporter
func NewSpellClassMappingImporter(cfg *Config) (*SpellClassMappingImporter, error) {
	base, err := newImporter(cfg, "spell-class-mappings", dnd5e.EntityTypeSpell)
	if err != nil {
		return nil, err
	}
	i := &SpellClassMappingImporter{importer: base, parser: parsers.NewSpellParser()}
	base.writer = i
	return i, nil
}

func (i *SpellClassMappingImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *SpellClassMappingImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	mapping, ok := entity.(*dnd5e.Spell)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeSpell, entity)
	}

	row, err := q.GetEntity(ctx, dnd5e.EntityTypeSpell, mapping.Slug)
	if errors.IsNotFound(err) {
		rec.Skipped = true
		rec.warn("spell not found: " + mapping.Name)
		return nil
	}
	if err != nil {
		return err
	}

	existing := &dnd5e.Spell{}
	if err := row.Decode(existing); err != nil {
		return err
	}
	added := mergeStrings(&existing.Classes, mapping.Classes)
	if added > 0 {
		if _, err := q.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: existing, ParentID: row.ParentID}); err != nil {
			return err
		}
	}
	rec.incr("classes_added", added)
	return linkClasses(ctx, q, row.ID, mapping.Classes, rec)
}

// mergeStrings appends the values of add missing from dst and returns how
// many were appended
func mergeStrings(dst *[]string, add []string) int {
	have := make(map[string]bool, len(*dst))
	for _, v := range *dst {
		have[v] = true
	}
	added := 0
	for _, v := range add {
		if have[v] {
			continue
		}
		have[v] = true
		*dst = append(*dst, v)
		added++
	}
	return added
}
