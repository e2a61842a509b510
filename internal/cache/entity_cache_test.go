package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/cache"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type EntityCacheTestSuite struct {
	suite.Suite
	ctx   context.Context
	mr    *miniredis.Miniredis
	store *compendium.Store
	cache cache.EntityCache
	logs  *observer.ObservedLogs

	fireballID int64
}

func (s *EntityCacheTestSuite) SetupTest() {
	s.ctx = context.Background()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.T().Cleanup(mr.Close)

	client, err := redisclient.NewClient(mr.Addr(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })

	store, err := compendium.Open(s.ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "cache.db")})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })

	out, err := store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: &dnd5e.Spell{
		Record: dnd5e.Record{Slug: "fireball", FullSlug: "phb:fireball", Name: "Fireball"},
		Level:  3,
	}})
	s.Require().NoError(err)
	s.fireballID = out.ID

	core, logs := observer.New(zap.InfoLevel)
	s.logs = logs
	s.cache, err = cache.New(&cache.Config{Client: client, Store: store, Logger: zap.New(core)})
	s.Require().NoError(err)
}

func (s *EntityCacheTestSuite) TestNewValidates() {
	_, err := cache.New(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = cache.New(&cache.Config{Store: s.store})
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "client")
}

func (s *EntityCacheTestSuite) TestGetReadsThrough() {
	row, err := s.cache.Get(s.ctx, dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(err)
	s.Equal("fireball", row.Slug)

	key := cache.EntityKey(dnd5e.EntityTypeSpell, s.fireballID)
	s.True(s.mr.Exists(key))
	s.Equal(cache.DefaultTTL, s.mr.TTL(key))

	members, err := s.mr.Members(cache.TypeKey(dnd5e.EntityTypeSpell))
	s.Require().NoError(err)
	s.ElementsMatch([]string{key, cache.SlugKey(dnd5e.EntityTypeSpell, "fireball")}, members)

	// the cached copy is served even once the row is gone
	_, err = s.store.DeleteAll(s.ctx, dnd5e.EntityTypeSpell)
	s.Require().NoError(err)
	row, err = s.cache.Get(s.ctx, dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(err)
	s.Equal("Fireball", row.Name)

	spell := &dnd5e.Spell{}
	s.Require().NoError(row.Decode(spell))
	s.Equal(3, spell.Level)
}

func (s *EntityCacheTestSuite) TestGetBySlug() {
	row, err := s.cache.GetBySlug(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	s.Equal(s.fireballID, row.ID)

	id, err := s.mr.Get(cache.SlugKey(dnd5e.EntityTypeSpell, "fireball"))
	s.Require().NoError(err)
	s.NotEmpty(id)

	_, err = s.cache.GetBySlug(s.ctx, dnd5e.EntityTypeSpell, "wish")
	s.True(errors.IsNotFound(err))
}

func (s *EntityCacheTestSuite) TestGetWrongType() {
	_, err := s.cache.Get(s.ctx, dnd5e.EntityTypeClass, s.fireballID)
	s.True(errors.IsNotFound(err))
}

func (s *EntityCacheTestSuite) TestEntriesExpire() {
	_, err := s.cache.Get(s.ctx, dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(err)

	s.mr.FastForward(cache.DefaultTTL + time.Second)
	s.False(s.mr.Exists(cache.EntityKey(dnd5e.EntityTypeSpell, s.fireballID)))
}

func (s *EntityCacheTestSuite) TestInvalidate() {
	_, err := s.cache.Get(s.ctx, dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(err)

	s.Require().NoError(s.cache.Invalidate(s.ctx, dnd5e.EntityTypeSpell))
	s.False(s.mr.Exists(cache.EntityKey(dnd5e.EntityTypeSpell, s.fireballID)))
	s.False(s.mr.Exists(cache.SlugKey(dnd5e.EntityTypeSpell, "fireball")))
	s.False(s.mr.Exists(cache.TypeKey(dnd5e.EntityTypeSpell)))
	s.Equal(1, s.logs.FilterMessage("invalidated cache").Len())
}

func (s *EntityCacheTestSuite) TestWarmAndInvalidateAll() {
	_, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: &dnd5e.Feat{
		Record: dnd5e.Record{Slug: "alert", FullSlug: "phb:alert", Name: "Alert"},
	}})
	s.Require().NoError(err)

	counts, err := s.cache.Warm(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(1, counts[dnd5e.EntityTypeSpell])
	s.Equal(1, counts[dnd5e.EntityTypeFeat])
	s.Equal(0, counts[dnd5e.EntityTypeMonster])
	s.True(s.mr.Exists(cache.SlugKey(dnd5e.EntityTypeFeat, "alert")))

	s.Require().NoError(s.cache.InvalidateAll(s.ctx))
	s.Empty(s.mr.Keys())
}

func (s *EntityCacheTestSuite) TestRedisDownFallsBackToStore() {
	s.mr.Close()

	row, err := s.cache.GetBySlug(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	s.Equal(s.fireballID, row.ID)

	err = s.cache.Invalidate(s.ctx, dnd5e.EntityTypeSpell)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *EntityCacheTestSuite) TestCorruptEntryIsDiscarded() {
	key := cache.EntityKey(dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(s.mr.Set(key, "{not json"))

	row, err := s.cache.Get(s.ctx, dnd5e.EntityTypeSpell, s.fireballID)
	s.Require().NoError(err)
	s.Equal("fireball", row.Slug)
	s.Equal(1, s.logs.FilterMessage("discarding corrupt cache entry").Len())
}

func TestEntityCacheSuite(t *testing.T) {
	suite.Run(t, new(EntityCacheTestSuite))
}
