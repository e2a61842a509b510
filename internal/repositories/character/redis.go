package character

import (
	"context"
	"encoding/json"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
)

const (
	characterKeyPrefix = "character:"
	allIndexKey        = "character:index:all"
	tagIndexPrefix     = "character:tag:"

	// Error messages
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	logger *zap.Logger
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
	Logger *zap.Logger
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
		logger: logger.With(zap.String("component", "character-repository")),
	}, nil
}

// Key returns the Redis key holding a character
func Key(id string) string {
	return characterKeyPrefix + id
}

// TagKey returns the Redis set indexing characters by tag
func TagKey(tag string) string {
	return tagIndexPrefix + tag
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	char := input.Character
	if char.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := Key(char.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", char.ID)
	}

	now := r.clock.Now().Unix()
	char.CreatedAt = now
	char.UpdatedAt = now

	data, err := json.Marshal(char)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, allIndexKey, char.ID)
	for _, tag := range char.Tags {
		pipe.SAdd(ctx, TagKey(tag), char.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to create character")
	}

	return &CreateOutput{Character: char}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	char, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: char}, nil
}

func (r *redisRepository) load(ctx context.Context, id string) (*dnd5e.Character, error) {
	result, err := r.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, errors.NotFoundf("character with ID %s not found", id)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get character")
	}

	var char dnd5e.Character
	if err := json.Unmarshal(result, &char); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "failed to unmarshal character %s", id)
	}
	return &char, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	char := input.Character
	if char.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.load(ctx, char.ID)
	if err != nil {
		return nil, err
	}

	char.CreatedAt = existing.CreatedAt
	char.UpdatedAt = r.clock.Now().Unix()
	data, err := json.Marshal(char)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, Key(char.ID), data, 0)
	for _, tag := range existing.Tags {
		if !slices.Contains(char.Tags, tag) {
			pipe.SRem(ctx, TagKey(tag), char.ID)
		}
	}
	for _, tag := range char.Tags {
		pipe.SAdd(ctx, TagKey(tag), char.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to update character")
	}

	return &UpdateOutput{Character: char}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existing, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, Key(input.ID))
	pipe.SRem(ctx, allIndexKey, input.ID)
	for _, tag := range existing.Tags {
		pipe.SRem(ctx, TagKey(tag), input.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete character")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	indexKey := allIndexKey
	if input.Tag != "" {
		indexKey = TagKey(input.Tag)
	}

	characters, err := r.listByIndex(ctx, indexKey)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Characters: characters}, nil
}

// listByIndex loads every character in an index set, pruning ids whose
// character has gone
func (r *redisRepository) listByIndex(ctx context.Context, indexKey string) ([]*dnd5e.Character, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to get characters from index %s", indexKey)
	}
	sort.Strings(ids)

	characters := make([]*dnd5e.Character, 0, len(ids))
	for _, id := range ids {
		char, err := r.load(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				r.logger.Warn("character not found, cleaning up index",
					zap.String("character_id", id),
					zap.String("index_key", indexKey))
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get character %s", id)
		}
		characters = append(characters, char)
	}

	r.logger.Debug("listed characters", zap.String("index_key", indexKey), zap.Int("count", len(characters)))
	return characters, nil
}
