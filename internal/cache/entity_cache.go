// Package cache provides a Redis read-through cache of compendium entities
package cache

//go:generate mockgen -destination=mock/mock_cache.go -package=cachemock github.com/KirkDiggler/rpg-compendium/internal/cache EntityCache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// DefaultTTL is how long a cached entity lives
const DefaultTTL = 15 * time.Minute

const keyPrefix = "entity:"

// EntityCache serves entities from Redis, loading misses from the store
type EntityCache interface {
	// Get returns the entity with the given row id
	// Returns errors.NotFound when the store has no such entity
	Get(ctx context.Context, entityType dnd5e.EntityType, id int64) (*compendium.EntityRow, error)

	// GetBySlug resolves slug to an id and returns the entity
	// Returns errors.NotFound when the store has no such entity
	GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error)

	// Invalidate drops every cached entity of a type
	Invalidate(ctx context.Context, entityType dnd5e.EntityType) error

	// InvalidateAll drops every cached entity
	InvalidateAll(ctx context.Context) error

	// Warm loads every entity of the given types into the cache. An empty
	// list warms every type. Returns the number cached per type.
	Warm(ctx context.Context, types []dnd5e.EntityType) (map[dnd5e.EntityType]int, error)
}

// Config contains configuration for the entity cache
type Config struct {
	Client redisclient.Client
	Store  compendium.Queries
	TTL    time.Duration
	Logger *zap.Logger
}

// Validate validates the Config and sets defaults if not provided
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(cfg.Client == nil, "client")
	vb.RequiredIf(cfg.Store == nil, "store")
	if cfg.TTL < 0 {
		vb.Field("ttl", "must not be negative")
	}
	if err := vb.Build(); err != nil {
		return err
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return nil
}

type redisCache struct {
	client redisclient.Client
	store  compendium.Queries
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Redis-backed entity cache
func New(cfg *Config) (EntityCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisCache{
		client: cfg.Client,
		store:  cfg.Store,
		ttl:    cfg.TTL,
		logger: cfg.Logger.With(zap.String("component", "entity-cache")),
	}, nil
}

// entityData is what gets serialized to Redis
type entityData struct {
	ID        int64            `json:"id"`
	Type      dnd5e.EntityType `json:"type"`
	Slug      string           `json:"slug"`
	FullSlug  string           `json:"full_slug"`
	Name      string           `json:"name"`
	ParentID  *int64           `json:"parent_id,omitempty"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (c *redisCache) Get(ctx context.Context, entityType dnd5e.EntityType, id int64) (*compendium.EntityRow, error) {
	if id <= 0 {
		return nil, errors.InvalidArgument("entity id is required")
	}
	if row, ok := c.lookup(ctx, EntityKey(entityType, id)); ok {
		return row, nil
	}

	row, err := c.store.GetEntityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Type != entityType {
		return nil, errors.NotFoundf("%s %d not found", entityType, id)
	}
	c.put(ctx, row)
	return row, nil
}

func (c *redisCache) GetBySlug(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error) {
	if slug == "" {
		return nil, errors.InvalidArgument("slug is required")
	}

	id, err := c.client.Get(ctx, SlugKey(entityType, slug)).Int64()
	switch {
	case err == nil:
		if row, ok := c.lookup(ctx, EntityKey(entityType, id)); ok {
			return row, nil
		}
	case !redisclient.IsNil(err):
		c.logger.Warn("failed to read slug index", zap.String("slug", slug), zap.Error(err))
	}

	row, err := c.store.GetEntity(ctx, entityType, slug)
	if err != nil {
		return nil, err
	}
	c.put(ctx, row)
	return row, nil
}

func (c *redisCache) Invalidate(ctx context.Context, entityType dnd5e.EntityType) error {
	setKey := TypeKey(entityType)
	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to list cached %s keys", entityType)
	}
	keys = append(keys, setKey)
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to invalidate %s cache", entityType)
	}
	c.logger.Info("invalidated cache", zap.String("type", string(entityType)), zap.Int64("keys", n))
	return nil
}

func (c *redisCache) InvalidateAll(ctx context.Context) error {
	for _, t := range dnd5e.AllEntityTypes() {
		if err := c.Invalidate(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (c *redisCache) Warm(ctx context.Context, types []dnd5e.EntityType) (map[dnd5e.EntityType]int, error) {
	if len(types) == 0 {
		types = dnd5e.AllEntityTypes()
	}
	counts := make(map[dnd5e.EntityType]int, len(types))
	for _, t := range types {
		out, err := c.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: t})
		if err != nil {
			return counts, err
		}
		if len(out.Rows) == 0 {
			counts[t] = 0
			continue
		}

		pipe := c.client.TxPipeline()
		for _, row := range out.Rows {
			if err := c.queue(ctx, pipe, row); err != nil {
				return counts, err
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return counts, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to warm %s cache", t)
		}
		counts[t] = len(out.Rows)
		c.logger.Info("warmed cache", zap.String("type", string(t)), zap.Int("entities", len(out.Rows)))
	}
	return counts, nil
}

// lookup reads a cached entity. Redis errors are logged and treated as a miss.
func (c *redisCache) lookup(ctx context.Context, key string) (*compendium.EntityRow, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !redisclient.IsNil(err) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var data entityData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return &compendium.EntityRow{
		ID:        data.ID,
		Type:      data.Type,
		Slug:      data.Slug,
		FullSlug:  data.FullSlug,
		Name:      data.Name,
		ParentID:  data.ParentID,
		Payload:   data.Payload,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}, true
}

// put caches row, logging failures
func (c *redisCache) put(ctx context.Context, row *compendium.EntityRow) {
	pipe := c.client.TxPipeline()
	if err := c.queue(ctx, pipe, row); err != nil {
		c.logger.Warn("failed to encode cache entry", zap.Int64("id", row.ID), zap.Error(err))
		return
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("cache write failed", zap.Int64("id", row.ID), zap.Error(err))
	}
}

func (c *redisCache) queue(ctx context.Context, pipe redisclient.Pipeliner, row *compendium.EntityRow) error {
	data, err := json.Marshal(entityData{
		ID:        row.ID,
		Type:      row.Type,
		Slug:      row.Slug,
		FullSlug:  row.FullSlug,
		Name:      row.Name,
		ParentID:  row.ParentID,
		Payload:   row.Payload,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s %s", row.Type, row.Slug)
	}

	entityKey := EntityKey(row.Type, row.ID)
	slugKey := SlugKey(row.Type, row.Slug)
	pipe.Set(ctx, entityKey, data, c.ttl)
	pipe.Set(ctx, slugKey, row.ID, c.ttl)
	pipe.SAdd(ctx, TypeKey(row.Type), entityKey, slugKey)
	return nil
}

// EntityKey returns the Redis key of a cached entity
func EntityKey(entityType dnd5e.EntityType, id int64) string {
	return keyPrefix + string(entityType) + ":" + strconv.FormatInt(id, 10)
}

// SlugKey returns the Redis key mapping a slug to an entity id
func SlugKey(entityType dnd5e.EntityType, slug string) string {
	return fmt.Sprintf("%s%s:slug:%s", keyPrefix, entityType, slug)
}

// TypeKey returns the Redis set tracking the cached keys of a type
func TypeKey(entityType dnd5e.EntityType) string {
	return keyPrefix + string(entityType) + ":keys"
}
