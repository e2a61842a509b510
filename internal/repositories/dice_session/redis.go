package dicesession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
)

const (
	// Key pattern: roll_session:{entity_id}:{context}
	sessionKeyPrefix = "roll_session:"
	defaultTTL       = 15 * time.Minute

	errSessionNil     = "session cannot be nil"
	errEntityIDEmpty  = "entity ID cannot be empty"
	errContextEmpty   = "context cannot be empty"
	errSessionExpired = "session has already expired"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for roll sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func validateKey(entityID, context string) error {
	if entityID == "" {
		return errors.InvalidArgument(errEntityIDEmpty)
	}
	if context == "" {
		return errors.InvalidArgument(errContextEmpty)
	}
	return nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	ttl := input.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	session := &Session{
		EntityID:  input.EntityID,
		Context:   input.Context,
		Rolls:     input.Rolls,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := r.save(ctx, session, ttl); err != nil {
		return nil, err
	}

	return &CreateOutput{Session: session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := SessionKey(input.EntityID, input.Context)
	sessionJSON, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, errors.NotFoundf("roll session %s/%s not found", input.EntityID, input.Context)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get session from Redis")
	}

	var session Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal session")
	}

	// Redis expiry and the clock can disagree when the clock is fixed
	if r.clock.Now().After(session.ExpiresAt) {
		_ = r.client.Del(ctx, key).Err()
		return nil, errors.NotFoundf("roll session %s/%s has expired", input.EntityID, input.Context)
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	var rollsDeleted int
	if out, err := r.Get(ctx, GetInput(input)); err == nil {
		rollsDeleted = len(out.Session.Rolls)
	}

	if err := r.client.Del(ctx, SessionKey(input.EntityID, input.Context)).Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete session from Redis")
	}

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

func (r *redisRepository) Update(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.InvalidArgument(errSessionNil)
	}
	if err := validateKey(session.EntityID, session.Context); err != nil {
		return err
	}

	now := r.clock.Now()
	if now.After(session.ExpiresAt) {
		return errors.FailedPrecondition(errSessionExpired)
	}
	return r.save(ctx, session, session.ExpiresAt.Sub(now))
}

func (r *redisRepository) save(ctx context.Context, session *Session, ttl time.Duration) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	key := SessionKey(session.EntityID, session.Context)
	if err := r.client.Set(ctx, key, sessionJSON, ttl).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store session in Redis")
	}
	return nil
}

// SessionKey returns the Redis key of a roll session
func SessionKey(entityID, context string) string {
	return sessionKeyPrefix + entityID + ":" + context
}
