package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	redismocks "github.com/KirkDiggler/rpg-compendium/internal/redis/mocks"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
)

const testCharID = "char_123"

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	mr    *miniredis.Miniredis
	clock *clock.Fixed
	repo  character.Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.T().Cleanup(mr.Close)

	client, err := redisclient.NewClient(mr.Addr(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })

	s.clock = clock.NewFixed(time.Unix(1_750_000_000, 0))
	s.repo, err = character.NewRedis(&character.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) newCharacter(id string, tags ...string) *dnd5e.Character {
	return &dnd5e.Character{
		ID:       id,
		Name:     "Test Hero",
		RaceSlug: "human",
		Classes:  []dnd5e.CharacterClassLink{{ClassSlug: "fighter", Level: 1, IsPrimary: true}},
		Tags:     tags,
	}
}

func (s *RedisRepositoryTestSuite) TestCreate() {
	out, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter(testCharID, "wizard-flow")})
	s.Require().NoError(err)
	s.Equal(int64(1_750_000_000), out.Character.CreatedAt)
	s.True(s.mr.Exists(character.Key(testCharID)))

	members, err := s.mr.Members(character.TagKey("wizard-flow"))
	s.Require().NoError(err)
	s.Equal([]string{testCharID}, members)

	_, err = s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter(testCharID)})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestCreateValidation() {
	testCases := []struct {
		name  string
		input character.CreateInput
	}{
		{name: "nil character"},
		{name: "empty id", input: character.CreateInput{Character: &dnd5e.Character{}}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Create(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *RedisRepositoryTestSuite) TestGet() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter(testCharID)})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
	s.Require().NoError(err)
	s.Equal("human", out.Character.RaceSlug)
	s.Equal(1, out.Character.TotalLevel())

	_, err = s.repo.Get(s.ctx, character.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateMovesTags() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter(testCharID, "old")})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	updated := s.newCharacter(testCharID, "new")
	updated.Name = "Renamed"
	out, err := s.repo.Update(s.ctx, character.UpdateInput{Character: updated})
	s.Require().NoError(err)
	s.Equal(int64(1_750_000_000), out.Character.CreatedAt)
	s.Equal(int64(1_750_000_060), out.Character.UpdatedAt)

	list, err := s.repo.List(s.ctx, character.ListInput{Tag: "old"})
	s.Require().NoError(err)
	s.Empty(list.Characters)

	list, err = s.repo.List(s.ctx, character.ListInput{Tag: "new"})
	s.Require().NoError(err)
	s.Require().Len(list.Characters, 1)
	s.Equal("Renamed", list.Characters[0].Name)

	_, err = s.repo.Update(s.ctx, character.UpdateInput{Character: s.newCharacter("missing")})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter(testCharID, "wizard-flow")})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: testCharID})
	s.Require().NoError(err)
	s.False(s.mr.Exists(character.Key(testCharID)))
	s.False(s.mr.Exists(character.TagKey("wizard-flow")))

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: testCharID})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListPrunesStaleIDs() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter("char_a")})
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter("char_b")})
	s.Require().NoError(err)
	s.mr.Del(character.Key("char_a"))

	out, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Characters, 1)
	s.Equal("char_b", out.Characters[0].ID)

	members, err := s.mr.Members("character:index:all")
	s.Require().NoError(err)
	s.Equal([]string{"char_b"}, members)
}

func (s *RedisRepositoryTestSuite) TestAuditFindsCorruptCharacters() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter("char_ok", "smoke")})
	s.Require().NoError(err)
	s.Require().NoError(s.mr.Set(character.Key("char_bad"), `{"id": 7`))
	s.Require().NoError(s.mr.Set(character.Key("char_moved"), `{"id":"char_other"}`))

	out, err := s.repo.Audit(s.ctx, character.AuditInput{})
	s.Require().NoError(err)
	s.Equal(3, out.Checked)

	ids := make([]string, 0, len(out.Corrupt))
	for _, c := range out.Corrupt {
		ids = append(ids, c.ID)
		s.NotEmpty(c.Reason)
	}
	s.ElementsMatch([]string{"char_bad", "char_moved"}, ids)
}

func (s *RedisRepositoryTestSuite) TestPurge() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter("char_a", "smoke")})
	s.Require().NoError(err)
	s.Require().NoError(s.mr.Set(character.Key("char_bad"), "garbage"))
	_, err = s.mr.SetAdd(character.TagKey("smoke"), "char_bad")
	s.Require().NoError(err)

	out, err := s.repo.Purge(s.ctx, character.PurgeInput{IDs: []string{"char_bad", "char_missing"}})
	s.Require().NoError(err)
	s.Equal(1, out.Removed)
	s.False(s.mr.Exists(character.Key("char_bad")))

	members, err := s.mr.Members(character.TagKey("smoke"))
	s.Require().NoError(err)
	s.Equal([]string{"char_a"}, members)

	_, err = s.repo.Purge(s.ctx, character.PurgeInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func TestGetRedisFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := redismocks.NewMockClient(ctrl)
	repo, err := character.NewRedis(&character.RedisConfig{Client: mockClient})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	mockClient.EXPECT().
		Get(ctx, character.Key(testCharID)).
		Return(redis.NewStringResult("", errors.Internal("connection reset")))

	_, err = repo.Get(ctx, character.GetInput{ID: testCharID})
	if errors.GetCode(err) != errors.CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
