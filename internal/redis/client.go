// Package redis wraps the go-redis client used by the entity cache and the
// character store
package redis

//go:generate mockgen -destination=mocks/redis.go -package=redismocks -source=client.go

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Client is the go-redis client the stores depend on, kept as an interface so
// tests can swap in a mock
type Client interface {
	redis.UniversalClient
}

// Pipeliner is a queued MULTI/EXEC batch
type Pipeliner interface {
	redis.Pipeliner
}

// Options configures Redis client behavior
type Options struct {
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	DB              int
	UseTLS          bool
}

// NewClient creates a Redis client for a single instance. Connections are
// made lazily.
func NewClient(endpoint string, opts *Options) (Client, error) {
	if endpoint == "" {
		return nil, errors.InvalidArgument("redis: endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	redisOpts := &redis.Options{
		Addr:            endpoint,
		DB:              opts.DB,
		MinIdleConns:    opts.MinIdleConns,
		PoolSize:        opts.PoolSize,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
	}

	if opts.UseTLS {
		redisOpts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return redis.NewClient(redisOpts), nil
}

// Connect creates a client and pings it
// Returns errors.Unavailable when the server does not answer
func Connect(ctx context.Context, endpoint string, opts *Options) (Client, error) {
	client, err := NewClient(endpoint, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "redis at %s is unreachable", endpoint)
	}
	return client, nil
}

// IsNil reports whether err is the go-redis "key does not exist" reply
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// IsWrongType reports whether err is a WRONGTYPE reply, e.g. GET on a set
func IsWrongType(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "WRONGTYPE")
}
