package compendium

import (
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	store "github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// DefaultListLimit caps ListEntities when the request names no limit
const DefaultListLimit = 50

// MaxListLimit is the largest page ListEntities returns
const MaxListLimit = 500

const maxSpellLevel = 9

// EntitySource resolves a single entity by slug. The entity cache satisfies
// it; without one the handler reads the store.
type EntitySource interface {
	GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*store.EntityRow, error)
}

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	Store    store.Queries
	Entities EntitySource
	Logger   *zap.Logger
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Store == nil {
		return errors.InvalidArgument("store is required")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Handler implements CompendiumService
type Handler struct {
	store    store.Queries
	entities EntitySource
	logger   *zap.Logger
}

var _ Server = (*Handler)(nil)

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Handler{
		store:    cfg.Store,
		entities: cfg.Entities,
		logger:   cfg.Logger,
	}, nil
}

// GetEntity returns one entity with its decoded payload
func (h *Handler) GetEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entityType, err := requireType(req, "type")
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	slug := stringField(req, "slug")
	if slug == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("slug is required"))
	}

	var row *store.EntityRow
	if h.entities != nil {
		row, err = h.entities.GetBySlug(ctx, entityType, slug)
	} else {
		row, err = h.store.GetEntity(ctx, entityType, slug)
	}
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	entity, err := entityValue(row)
	if err != nil {
		h.logger.Error("failed to encode entity", zap.String("type", string(entityType)), zap.String("slug", slug), zap.Error(err))
		return nil, errors.ToGRPCError(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"entity": entity}}, nil
}

// ListEntities returns one page of entities of a type ordered by name.
// Entries carry no payload.
func (h *Handler) ListEntities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entityType, err := requireType(req, "type")
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	limit, _, err := intField(req, "limit")
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	offset, _, err := intField(req, "offset")
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	out, err := h.store.ListEntities(ctx, store.ListEntitiesInput{
		Type:         entityType,
		NameContains: stringField(req, "name_contains"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	entities := make([]*structpb.Value, len(out.Rows))
	for i, row := range out.Rows {
		entities[i] = structpb.NewStructValue(summary(row))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"entities": structpb.NewListValue(&structpb.ListValue{Values: entities}),
		"total":    structpb.NewNumberValue(float64(out.Total)),
	}}, nil
}

// ListClassSpells returns the spell list of a class ordered by level then
// name. A subclass slug resolves to its parent class.
func (h *Handler) ListClassSpells(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	class := stringField(req, "class")
	if class == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("class is required"))
	}
	level, ok, err := intField(req, "max_level")
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	input := store.ClassSpellsInput{ClassSlug: class}
	if ok {
		if level > maxSpellLevel {
			return nil, errors.ToGRPCError(errors.InvalidArgumentf("max_level must be between 0 and %d", maxSpellLevel))
		}
		input.MaxLevel = &level
	}

	rows, err := h.store.ClassSpells(ctx, input)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	spells := make([]*structpb.Value, 0, len(rows))
	for _, row := range rows {
		var spell dnd5e.Spell
		if err := row.Decode(&spell); err != nil {
			return nil, errors.ToGRPCError(err)
		}
		spells = append(spells, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"slug":  structpb.NewStringValue(row.Slug),
			"name":  structpb.NewStringValue(row.Name),
			"level": structpb.NewNumberValue(float64(spell.Level)),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"class":  structpb.NewStringValue(class),
		"spells": structpb.NewListValue(&structpb.ListValue{Values: spells}),
	}}, nil
}

func summary(row *store.EntityRow) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":        structpb.NewNumberValue(float64(row.ID)),
		"type":      structpb.NewStringValue(string(row.Type)),
		"slug":      structpb.NewStringValue(row.Slug),
		"full_slug": structpb.NewStringValue(row.FullSlug),
		"name":      structpb.NewStringValue(row.Name),
	}
	if row.ParentID != nil {
		fields["parent_id"] = structpb.NewNumberValue(float64(*row.ParentID))
	}
	return &structpb.Struct{Fields: fields}
}

func entityValue(row *store.EntityRow) (*structpb.Value, error) {
	var data map[string]any
	if err := json.Unmarshal(row.Payload, &data); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "failed to decode %s %s", row.Type, row.Slug)
	}
	payload, err := structpb.NewStruct(data)
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeInternal, "failed to encode %s %s", row.Type, row.Slug)
	}
	s := summary(row)
	s.Fields["data"] = structpb.NewStructValue(payload)
	return structpb.NewStructValue(s), nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func requireType(req *structpb.Struct, name string) (dnd5e.EntityType, error) {
	raw := stringField(req, name)
	if raw == "" {
		return "", errors.InvalidArgumentf("%s is required", name)
	}
	entityType, ok := dnd5e.ParseEntityType(raw)
	if !ok {
		return "", errors.InvalidArgumentf("unknown entity type %q", raw)
	}
	return entityType, nil
}

// intField reads a non-negative whole number. ok is false when the field is
// absent or null.
func intField(req *structpb.Struct, name string) (int, bool, error) {
	v, present := req.GetFields()[name]
	if !present {
		return 0, false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, false, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, false, errors.InvalidArgumentf("%s must be a non-negative integer", name)
		}
		return int(n), true, nil
	default:
		return 0, false, errors.InvalidArgumentf("%s must be a number", name)
	}
}
