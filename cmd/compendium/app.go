package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/cache"
	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
)

// app holds the dependencies a command opened. close releases them.
type app struct {
	store      *compendium.Store
	redis      redisclient.Client
	cache      cache.EntityCache
	characters characterrepo.Repository
	wizard     *character.Orchestrator
	dice       dice.Service
}

type openOptions struct {
	skipMigrate bool
	redis       bool
	wizard      bool
}

func openApp(ctx context.Context, opts openOptions) (*app, error) {
	a := &app{}
	store, err := compendium.Open(ctx, &compendium.Config{
		Path:           cfg.DBPath,
		Logger:         logger,
		SkipMigrations: opts.skipMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.DBPath, err)
	}
	a.store = store

	if !opts.redis && !opts.wizard {
		return a, nil
	}
	a.redis, err = redisclient.Connect(ctx, cfg.RedisAddr, nil)
	if err != nil {
		a.close()
		return nil, err
	}
	a.cache, err = cache.New(&cache.Config{
		Client: a.redis,
		Store:  store,
		TTL:    cfg.CacheTTL,
		Logger: logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	if opts.wizard {
		if err := a.openWizard(); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openWizard() error {
	chars, err := characterrepo.NewRedis(&characterrepo.RedisConfig{Client: a.redis, Logger: logger})
	if err != nil {
		return err
	}
	a.characters = chars
	sessions, err := dicesession.NewRedisRepository(&dicesession.Config{Client: a.redis})
	if err != nil {
		return err
	}
	a.dice, err = dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: sessions,
		IDGenerator:     idgen.NewUUID("roll"),
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	a.wizard, err = character.New(&character.Config{
		CharacterRepo: chars,
		Store:         a.store,
		Entities:      a.cache,
		Dice:          a.dice,
		IDGenerator:   idgen.NewUUID("char"),
		Logger:        logger,
	})
	return err
}

// tryCache connects the entity cache when Redis answers. Imports still run
// without it; cached entries then expire on their TTL.
func (a *app) tryCache(ctx context.Context) importers.CacheInvalidator {
	if a.cache != nil {
		return a.cache
	}
	client, err := redisclient.Connect(ctx, cfg.RedisAddr, nil)
	if err != nil {
		logger.Warn("redis unavailable, cache will not be invalidated", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return nil
	}
	c, err := cache.New(&cache.Config{Client: client, Store: a.store, TTL: cfg.CacheTTL, Logger: logger})
	if err != nil {
		_ = client.Close()
		logger.Warn("failed to create entity cache", zap.Error(err))
		return nil
	}
	a.redis, a.cache = client, c
	return c
}

// runnerConfig is shared by the flow test commands
func (a *app) runnerConfig() *wizardflow.RunnerConfig {
	var names []string
	if rules, err := config.LoadRules(); err == nil {
		names = rules.CharacterNames
	}
	return &wizardflow.RunnerConfig{
		Service:     a.wizard,
		Reports:     a.store,
		Dice:        a.dice,
		Names:       names,
		Clock:       clock.New(),
		IDGenerator: idgen.ShortUUIDGenerator{},
		Logger:      logger,
	}
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
}
