package importers

import (
	"context"
	"io"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// SpellImporter imports spells and links them to their classes
type SpellImporter struct {
	*importer
	parser *parsers.SpellParser
}

// NewSpellImporter creates a SpellImporter
func NewSpellImporter(cfg *Config) (*SpellImporter, error) {
	base, err := newImporter(cfg, "spells", dnd5e.EntityTypeSpell)
	if err != nil {
		return nil, err
	}
	i := &SpellImporter{importer: base, parser: parsers.NewSpellParser()}
	base.writer = i
	return i, nil
}

func (i *SpellImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *SpellImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	spell, ok := entity.(*dnd5e.Spell)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeSpell, entity)
	}
	id, err := upsert(ctx, q, spell, nil, rec)
	if err != nil {
		return err
	}

	b := i.children(rec)
	b.check(compendium.LookupSpellSchools, spell.SchoolCode)
	err = q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:      b.sources(spell.Sources),
		SpellEffects: b.spellEffects(spell.Effects),
		SavingThrows: b.savingThrows(spell.SavingThrows),
		RandomTables: spell.RandomTables,
		Tags:         spell.Tags,
	})
	if err != nil {
		return err
	}
	return linkClasses(ctx, q, id, spell.Classes, rec)
}

// linkClasses links a spell to each class it lists. "Fighter (Eldritch
// Knight)" links to the fighter.
func linkClasses(ctx context.Context, q compendium.Queries, spellID int64, classes []string, rec *RecordResult) error {
	for _, name := range classes {
		slug := dnd5e.Slugify(BaseClassName(name))
		if slug == "" {
			continue
		}
		class, err := q.GetEntity(ctx, dnd5e.EntityTypeClass, slug)
		if errors.IsNotFound(err) {
			rec.warn("class not found: " + name)
			continue
		}
		if err != nil {
			return err
		}
		created, err := q.LinkClassSpell(ctx, class.ID, spellID)
		if err != nil {
			return err
		}
		if created {
			rec.incr("class_links", 1)
		}
	}
	return nil
}

// BaseClassName strips a parenthesised subclass: "Cleric (Life Domain)" is
// "Cleric"
func BaseClassName(name string) string {
	if before, _, ok := strings.Cut(name, "("); ok {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(name)
}
