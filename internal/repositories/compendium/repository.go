// Package compendium provides the relational store for imported rules content
package compendium

//go:generate mockgen -destination=mock/mock_repository.go -package=compendiummock github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium Repository,Queries

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Queries are the entity operations available both on the store and inside a
// transaction started by WithTx
type Queries interface {
	// UpsertEntity inserts or updates the entity row keyed by (type, slug)
	// and records the row id on the entity.
	// Returns errors.InvalidArgument for a nil entity or empty slug
	// Returns errors.AlreadyExists when the full slug collides
	UpsertEntity(ctx context.Context, input UpsertEntityInput) (*UpsertEntityOutput, error)

	// ReplaceChildren clears every child record of the entity then inserts
	// the supplied ones
	ReplaceChildren(ctx context.Context, entityID int64, children *Children) error

	// GetEntity returns the entity stored under (type, slug)
	// Returns errors.NotFound when no row matches
	GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*EntityRow, error)

	// GetEntityByID returns the entity with the given row id
	// Returns errors.NotFound when no row matches
	GetEntityByID(ctx context.Context, id int64) (*EntityRow, error)

	// ListEntities returns entities of one type ordered by name
	ListEntities(ctx context.Context, input ListEntitiesInput) (*ListEntitiesOutput, error)

	// LinkClassSpell associates a spell with a class. Linking twice is a no-op;
	// the result reports whether a new link was written.
	LinkClassSpell(ctx context.Context, classID, spellID int64) (bool, error)

	// LinkEntitySpell associates a castable spell with a non-class entity.
	// Links are cleared by ReplaceChildren.
	LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error)

	// ClassSpells lists the spells linked to a class. A subclass resolves to
	// its parent class.
	// Returns errors.NotFound when the class does not exist
	ClassSpells(ctx context.Context, input ClassSpellsInput) ([]*EntityRow, error)

	// ChildCounts reports how many child rows each table holds for an entity
	ChildCounts(ctx context.Context, entityID int64) (map[string]int, error)

	// DeleteAll removes every entity of a type with its children
	DeleteAll(ctx context.Context, entityType dnd5e.EntityType) (int64, error)

	// LookupID resolves a code or name in a lookup table, case-insensitively
	// Returns errors.InvalidArgument for an unknown table
	// Returns errors.NotFound when the key is not present
	LookupID(ctx context.Context, table LookupTable, key string) (int64, error)

	// Lookups loads a whole lookup table keyed by lowercased code and name
	Lookups(ctx context.Context, table LookupTable) (map[string]int64, error)
}

// Repository is the compendium store
type Repository interface {
	Queries

	// WithTx runs fn in a transaction, committing when fn returns nil
	WithTx(ctx context.Context, fn func(q Queries) error) error

	// SaveReport persists a flow test report
	// Returns errors.AlreadyExists when the report id is taken
	SaveReport(ctx context.Context, report *Report) error

	// GetReport loads a report by id
	// Returns errors.NotFound when no report matches
	GetReport(ctx context.Context, id string) (*Report, error)

	// ListReports returns the newest reports of a kind first
	ListReports(ctx context.Context, kind string, limit int) ([]*Report, error)

	// Close releases the database
	Close() error
}

// UpsertEntityInput defines the input for writing an entity row
type UpsertEntityInput struct {
	Entity   dnd5e.Entity
	ParentID *int64
}

// UpsertEntityOutput defines the output for writing an entity row
type UpsertEntityOutput struct {
	ID      int64
	Created bool
}

// ListEntitiesInput defines the filters for listing entities
type ListEntitiesInput struct {
	Type         dnd5e.EntityType
	NameContains string
	ParentID     *int64
	Limit        int
	Offset       int
}

// ListEntitiesOutput defines the output for listing entities
type ListEntitiesOutput struct {
	Rows  []*EntityRow
	Total int
}

// ClassSpellsInput defines the input for listing a class spell list
type ClassSpellsInput struct {
	ClassSlug string
	// MaxLevel limits the spell level when set; cantrips are level 0
	MaxLevel *int
}

// EntityRow is a stored entity with its JSON payload
type EntityRow struct {
	ID        int64
	Type      dnd5e.EntityType
	Slug      string
	FullSlug  string
	Name      string
	ParentID  *int64
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the payload into v
func (r *EntityRow) Decode(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return errors.WrapWithCodef(err, errors.CodeDataLoss, "failed to decode %s %s", r.Type, r.Slug)
	}
	return nil
}

// Entity decodes the payload into the concrete type for the row
func (r *EntityRow) Entity() (dnd5e.Entity, error) {
	var entity dnd5e.Entity
	switch r.Type {
	case dnd5e.EntityTypeSpell:
		entity = &dnd5e.Spell{}
	case dnd5e.EntityTypeClass:
		entity = &dnd5e.CharacterClass{}
	case dnd5e.EntityTypeItem:
		entity = &dnd5e.Item{}
	case dnd5e.EntityTypeMonster:
		entity = &dnd5e.Monster{}
	case dnd5e.EntityTypeRace:
		entity = &dnd5e.Race{}
	case dnd5e.EntityTypeFeat:
		entity = &dnd5e.Feat{}
	case dnd5e.EntityTypeBackground:
		entity = &dnd5e.Background{}
	case dnd5e.EntityTypeOptionalFeature:
		entity = &dnd5e.OptionalFeature{}
	default:
		return nil, errors.InvalidArgumentf("unknown entity type %q", r.Type)
	}
	if err := r.Decode(entity); err != nil {
		return nil, err
	}
	entity.SetEntityID(r.ID)
	return entity, nil
}

// Report is a persisted flow test report
type Report struct {
	ID        string
	Kind      string
	Seed      int64
	Passed    int
	Failed    int
	Payload   []byte
	CreatedAt time.Time
}
