package dice_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
	dicesessionmock "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session/mock"
)

// queueRoller returns queued values in order, then 1s
type queueRoller struct {
	values []int
}

func (q *queueRoller) next() int {
	if len(q.values) == 0 {
		return 1
	}
	v := q.values[0]
	q.values = q.values[1:]
	return v
}

func (q *queueRoller) Roll(_ int) (int, error) { return q.next(), nil }

func (q *queueRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = q.next()
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx    context.Context
	roller *queueRoller
	svc    dice.Service
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.T().Cleanup(mr.Close)

	client, err := redisclient.NewClient(mr.Addr(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })

	repo, err := dicesession.NewRedisRepository(&dicesession.Config{Client: client})
	s.Require().NoError(err)

	s.roller = &queueRoller{}
	s.svc, err = dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: repo,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          s.roller,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := dice.NewOrchestrator(&dice.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "DiceSessionRepo")
	s.Contains(err.Error(), "IDGenerator")
}

func (s *OrchestratorTestSuite) TestRollDiceAppendsToSession() {
	s.roller.values = []int{3, 4, 6}

	out, err := s.svc.RollDice(s.ctx, &dice.RollDiceInput{EntityID: "char_1", Context: "attack", Notation: "2d6+1"})
	s.Require().NoError(err)
	s.Equal("roll_1", out.Roll.RollID)
	s.Equal([]int{3, 4}, out.Roll.Dice)
	s.Equal(1, out.Roll.Modifier)
	s.Equal(8, out.Roll.Total)

	out, err = s.svc.RollDice(s.ctx, &dice.RollDiceInput{EntityID: "char_1", Context: "attack", Notation: "d20"})
	s.Require().NoError(err)
	s.Equal("1d20", out.Roll.Notation)
	s.Equal(6, out.Roll.Total)
	s.Len(out.Session.Rolls, 2)

	got, err := s.svc.GetRollSession(s.ctx, &dice.GetRollSessionInput{EntityID: "char_1", Context: "attack"})
	s.Require().NoError(err)
	s.Len(got.Session.Rolls, 2)
}

func (s *OrchestratorTestSuite) TestRollDiceValidation() {
	testCases := []struct {
		name  string
		input *dice.RollDiceInput
	}{
		{name: "nil input"},
		{name: "missing entity", input: &dice.RollDiceInput{Context: "c", Notation: "1d6"}},
		{name: "missing notation", input: &dice.RollDiceInput{EntityID: "e", Context: "c"}},
		{name: "bad notation", input: &dice.RollDiceInput{EntityID: "e", Context: "c", Notation: "fireball"}},
		{name: "zero dice", input: &dice.RollDiceInput{EntityID: "e", Context: "c", Notation: "0d6"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.RollDice(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err), "got %v", err)
		})
	}
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresDropsLowest() {
	// six rolls of 4d6
	s.roller.values = []int{
		6, 5, 4, 1,
		3, 3, 3, 3,
		2, 6, 6, 6,
		1, 1, 1, 1,
		5, 2, 4, 3,
		6, 6, 6, 6,
	}

	out, err := s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1"})
	s.Require().NoError(err)
	s.Require().Len(out.Rolls, 6)

	totals := make([]int, 0, 6)
	for _, r := range out.Rolls {
		s.Len(r.Dice, 3)
		s.Len(r.Dropped, 1)
		totals = append(totals, r.Total)
	}
	s.Equal([]int{15, 9, 18, 3, 12, 18}, totals)
	s.Equal([]int{6, 5, 4}, out.Rolls[0].Dice)
	s.Equal([]int{1}, out.Rolls[0].Dropped)
	s.Equal(dice.ContextAbilityScores, out.Session.Context)
}

func (s *OrchestratorTestSuite) TestRollAbilityScoresMethods() {
	out, err := s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1", Method: dice.MethodClassic})
	s.Require().NoError(err)
	for _, r := range out.Rolls {
		s.Equal("3d6", r.Notation)
		s.Empty(r.Dropped)
	}

	// queue runs dry, so every die is a 1 and gets rerolled to 2
	out, err = s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1", Method: dice.MethodHeroic})
	s.Require().NoError(err)
	for _, r := range out.Rolls {
		s.Equal(6, r.Total)
	}

	_, err = s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1", Method: "point_buy"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestRollHitPoints() {
	s.roller.values = []int{1}
	out, err := s.svc.RollHitPoints(s.ctx, &dice.RollHitPointsInput{EntityID: "char_1", HitDie: 8, ConModifier: -2})
	s.Require().NoError(err)
	s.Equal(-1, out.Roll.Total)
	s.Equal(1, out.HitPoints)
	s.Equal("1d8-2", out.Roll.Notation)

	s.roller.values = []int{9}
	out, err = s.svc.RollHitPoints(s.ctx, &dice.RollHitPointsInput{EntityID: "char_1", HitDie: 10, ConModifier: 2})
	s.Require().NoError(err)
	s.Equal(11, out.HitPoints)

	_, err = s.svc.RollHitPoints(s.ctx, &dice.RollHitPointsInput{EntityID: "char_1", HitDie: 20})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestUseRolls() {
	out, err := s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1"})
	s.Require().NoError(err)
	first, second := out.Rolls[0].RollID, out.Rolls[1].RollID

	used, err := s.svc.UseRolls(s.ctx, &dice.UseRollsInput{EntityID: "char_1", Context: dice.ContextAbilityScores, RollIDs: []string{second, first}})
	s.Require().NoError(err)
	s.Equal(second, used.Rolls[0].RollID)
	s.True(used.Rolls[0].Used)

	_, err = s.svc.UseRolls(s.ctx, &dice.UseRollsInput{EntityID: "char_1", Context: dice.ContextAbilityScores, RollIDs: []string{first}})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.svc.UseRolls(s.ctx, &dice.UseRollsInput{EntityID: "char_1", Context: dice.ContextAbilityScores, RollIDs: []string{"roll_99"}})
	s.True(errors.IsNotFound(err))

	session, err := s.svc.GetRollSession(s.ctx, &dice.GetRollSessionInput{EntityID: "char_1", Context: dice.ContextAbilityScores})
	s.Require().NoError(err)
	s.Len(session.Session.Unused(), 4)
}

func (s *OrchestratorTestSuite) TestClearRollSession() {
	_, err := s.svc.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: "char_1"})
	s.Require().NoError(err)

	out, err := s.svc.ClearRollSession(s.ctx, &dice.ClearRollSessionInput{EntityID: "char_1", Context: dice.ContextAbilityScores})
	s.Require().NoError(err)
	s.Equal(6, out.RollsDeleted)

	_, err = s.svc.GetRollSession(s.ctx, &dice.GetRollSessionInput{EntityID: "char_1", Context: dice.ContextAbilityScores})
	s.True(errors.IsNotFound(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestRollDiceStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := dicesessionmock.NewMockRepository(ctrl)

	svc, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: mockRepo,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          dice.NewSeededRoller(7),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	mockRepo.EXPECT().
		Get(ctx, dicesession.GetInput{EntityID: "char_1", Context: "attack"}).
		Return(nil, errors.Unavailable("redis down"))

	_, err = svc.RollDice(ctx, &dice.RollDiceInput{EntityID: "char_1", Context: "attack", Notation: "1d20"})
	if errors.GetCode(err) != errors.CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestSeededRollerRepeats(t *testing.T) {
	a, b := dice.NewSeededRoller(42), dice.NewSeededRoller(42)
	for range 20 {
		x, _ := a.RollN(4, 6)
		y, _ := b.RollN(4, 6)
		for i := range x {
			if x[i] != y[i] || x[i] < 1 || x[i] > 6 {
				t.Fatalf("rolls differ or out of range: %v %v", x, y)
			}
		}
	}
	if _, err := a.Roll(0); err == nil {
		t.Fatal("expected error for zero-sided die")
	}
}

func TestParseNotation(t *testing.T) {
	testCases := []struct {
		in      string
		want    dice.Notation
		wantErr bool
	}{
		{in: "2d6", want: dice.Notation{Count: 2, Size: 6}},
		{in: "D20", want: dice.Notation{Count: 1, Size: 20}},
		{in: "1d8 + 3", want: dice.Notation{Count: 1, Size: 8, Modifier: 3}},
		{in: "3d4-1", want: dice.Notation{Count: 3, Size: 4, Modifier: -1}},
		{in: "101d6", wantErr: true},
		{in: "2x6", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.ParseNotation(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParseNotation(%q) = %+v, %v", tc.in, got, err)
			}
		})
	}
}
