package character

//go:generate mockgen -destination=mock/mock_entity_source.go -package=charactermock github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character EntitySource

import (
	"context"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// EntitySource resolves compendium entities by slug. The entity cache
// satisfies it.
type EntitySource interface {
	GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error)
}

type storeSource struct {
	store compendium.Queries
}

// NewStoreSource reads entities straight from the compendium store
func NewStoreSource(store compendium.Queries) EntitySource {
	return &storeSource{store: store}
}

func (s *storeSource) GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	return s.store.GetEntity(ctx, entityType, slug)
}

func (o *Orchestrator) decode(ctx context.Context, entityType dnd5e.EntityType, slug string, v any) error {
	if slug == "" {
		return errors.InvalidArgumentf("%s slug is required", entityType)
	}
	row, err := o.entities.GetBySlug(ctx, entityType, slug)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s %s", entityType, slug)
	}
	return row.Decode(v)
}

func (o *Orchestrator) race(ctx context.Context, slug string) (*dnd5e.Race, error) {
	var r dnd5e.Race
	if err := o.decode(ctx, dnd5e.EntityTypeRace, slug, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (o *Orchestrator) class(ctx context.Context, slug string) (*dnd5e.CharacterClass, error) {
	var c dnd5e.CharacterClass
	if err := o.decode(ctx, dnd5e.EntityTypeClass, slug, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (o *Orchestrator) background(ctx context.Context, slug string) (*dnd5e.Background, error) {
	var b dnd5e.Background
	if err := o.decode(ctx, dnd5e.EntityTypeBackground, slug, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// item looks up equipment by name. Missing items return nil without error:
// starting equipment lists packs and trinkets the compendium does not carry.
func (o *Orchestrator) item(ctx context.Context, name string) (*dnd5e.Item, error) {
	var it dnd5e.Item
	err := o.decode(ctx, dnd5e.EntityTypeItem, dnd5e.Slugify(name), &it)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (o *Orchestrator) listRaces(ctx context.Context) ([]*dnd5e.Race, error) {
	rows, err := o.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: dnd5e.EntityTypeRace})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list races")
	}
	out := make([]*dnd5e.Race, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		var r dnd5e.Race
		if err := row.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}

func (o *Orchestrator) listClasses(ctx context.Context) ([]*dnd5e.CharacterClass, error) {
	rows, err := o.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: dnd5e.EntityTypeClass})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}
	out := make([]*dnd5e.CharacterClass, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		var c dnd5e.CharacterClass
		if err := row.Decode(&c); err != nil {
			return nil, err
		}
		if c.IsSubclass() {
			continue
		}
		out = append(out, &c)
	}
	return out, nil
}

// classSpells lists spells of a class between minLevel and maxLevel
func (o *Orchestrator) classSpells(ctx context.Context, classSlug string, minLevel, maxLevel int) ([]*dnd5e.Spell, error) {
	rows, err := o.store.ClassSpells(ctx, compendium.ClassSpellsInput{ClassSlug: classSlug, MaxLevel: &maxLevel})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list spells for %s", classSlug)
	}
	out := make([]*dnd5e.Spell, 0, len(rows))
	for _, row := range rows {
		var sp dnd5e.Spell
		if err := row.Decode(&sp); err != nil {
			return nil, err
		}
		if sp.Level < minLevel {
			continue
		}
		out = append(out, &sp)
	}
	return out, nil
}

// optionalFeatures lists features of one type available to a class and
// subclass at classLevel
func (o *Orchestrator) optionalFeatures(ctx context.Context, featureType string, cls *dnd5e.CharacterClass, subclassSlug string, classLevel int) ([]*dnd5e.OptionalFeature, error) {
	rows, err := o.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: dnd5e.EntityTypeOptionalFeature})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list optional features")
	}

	var out []*dnd5e.OptionalFeature
	for _, row := range rows.Rows {
		var f dnd5e.OptionalFeature
		if err := row.Decode(&f); err != nil {
			return nil, err
		}
		if f.FeatureType != featureType || f.LevelRequirement > classLevel {
			continue
		}
		if availableTo(f.Classes, cls, subclassSlug) {
			out = append(out, &f)
		}
	}
	return out, nil
}

func availableTo(assocs []dnd5e.ClassAssociation, cls *dnd5e.CharacterClass, subclassSlug string) bool {
	if len(assocs) == 0 {
		return true
	}
	for _, a := range assocs {
		if !strings.EqualFold(a.Class, cls.Name) && !strings.EqualFold(dnd5e.Slugify(a.Class), cls.Slug) {
			continue
		}
		if a.Subclass == "" || dnd5e.Slugify(a.Subclass) == subclassSlug {
			return true
		}
	}
	return false
}

func findSubclass(cls *dnd5e.CharacterClass, slug string) (*dnd5e.Subclass, bool) {
	for i := range cls.Subclasses {
		if dnd5e.Slugify(cls.Subclasses[i].Name) == slug {
			return &cls.Subclasses[i], true
		}
	}
	return nil, false
}
