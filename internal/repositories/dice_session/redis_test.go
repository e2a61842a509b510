package dicesession_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
)

type RedisSessionTestSuite struct {
	suite.Suite
	ctx   context.Context
	mr    *miniredis.Miniredis
	clock *clock.Fixed
	repo  dicesession.Repository
}

func (s *RedisSessionTestSuite) SetupTest() {
	s.ctx = context.Background()
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.T().Cleanup(mr.Close)

	client, err := redisclient.NewClient(mr.Addr(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })

	s.clock = clock.NewFixed(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	s.repo, err = dicesession.NewRedisRepository(&dicesession.Config{Client: client, Clock: s.clock})
	s.Require().NoError(err)
}

func (s *RedisSessionTestSuite) rolls() []dicesession.Roll {
	return []dicesession.Roll{
		{RollID: "roll_1", Notation: "4d6", Dice: []int{6, 5, 4}, Dropped: []int{1}, Total: 15},
		{RollID: "roll_2", Notation: "4d6", Dice: []int{3, 3, 2}, Dropped: []int{1}, Total: 8},
	}
}

func (s *RedisSessionTestSuite) TestCreateAndGet() {
	out, err := s.repo.Create(s.ctx, dicesession.CreateInput{EntityID: "char_1", Context: "ability_scores", Rolls: s.rolls()})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(15*time.Minute), out.Session.ExpiresAt)

	key := dicesession.SessionKey("char_1", "ability_scores")
	s.Equal("roll_session:char_1:ability_scores", key)
	s.Equal(15*time.Minute, s.mr.TTL(key))

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "char_1", Context: "ability_scores"})
	s.Require().NoError(err)
	s.Len(got.Session.Rolls, 2)
	roll, ok := got.Session.Roll("roll_2")
	s.True(ok)
	s.Equal(8, roll.Total)
}

func (s *RedisSessionTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "char_1", Context: "ability_scores"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{Context: "ability_scores"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisSessionTestSuite) TestExpiredByClock() {
	_, err := s.repo.Create(s.ctx, dicesession.CreateInput{EntityID: "char_1", Context: "hp", Rolls: s.rolls(), TTL: time.Minute})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)
	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "char_1", Context: "hp"})
	s.True(errors.IsNotFound(err))
	s.False(s.mr.Exists(dicesession.SessionKey("char_1", "hp")))
}

func (s *RedisSessionTestSuite) TestUpdateMarksUsed() {
	out, err := s.repo.Create(s.ctx, dicesession.CreateInput{EntityID: "char_1", Context: "ability_scores", Rolls: s.rolls()})
	s.Require().NoError(err)

	roll, _ := out.Session.Roll("roll_1")
	roll.Used = true
	s.clock.Advance(5 * time.Minute)
	s.Require().NoError(s.repo.Update(s.ctx, out.Session))
	s.Equal(10*time.Minute, s.mr.TTL(dicesession.SessionKey("char_1", "ability_scores")))

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: "char_1", Context: "ability_scores"})
	s.Require().NoError(err)
	unused := got.Session.Unused()
	s.Require().Len(unused, 1)
	s.Equal("roll_2", unused[0].RollID)
}

func (s *RedisSessionTestSuite) TestUpdateExpired() {
	out, err := s.repo.Create(s.ctx, dicesession.CreateInput{EntityID: "char_1", Context: "hp", TTL: time.Minute})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	err = s.repo.Update(s.ctx, out.Session)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RedisSessionTestSuite) TestDelete() {
	_, err := s.repo.Create(s.ctx, dicesession.CreateInput{EntityID: "char_1", Context: "hp", Rolls: s.rolls()})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, dicesession.DeleteInput{EntityID: "char_1", Context: "hp"})
	s.Require().NoError(err)
	s.Equal(2, out.RollsDeleted)

	out, err = s.repo.Delete(s.ctx, dicesession.DeleteInput{EntityID: "char_1", Context: "hp"})
	s.Require().NoError(err)
	s.Equal(0, out.RollsDeleted)
}

func TestRedisSessionSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionTestSuite))
}
