package levelupflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ExecutorTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
}

func (s *ExecutorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 11)
}

// build creates a complete level 1 character through the wizard
func (s *ExecutorTestSuite) build(seed int64, class, subclass string) string {
	rand := wizardflow.NewRandomizer(dice.NewSeededRoller(seed), s.wizard.Service, nil)
	exec, err := wizardflow.NewExecutor(&wizardflow.ExecutorConfig{Service: s.wizard.Service, Randomizer: rand})
	s.Require().NoError(err)
	res := exec.Run(s.ctx, wizardflow.NewGenerator(rand).Linear(), wizardflow.RunOptions{
		Seed:          seed,
		ForceClass:    class,
		ForceSubclass: subclass,
	})
	s.Require().Equal(wizardflow.StatusPassed, res.Status)
	return res.CharacterID
}

func (s *ExecutorTestSuite) run(seed int64, input *levelupflow.ExecuteInput) *levelupflow.Result {
	exec, err := levelupflow.NewExecutor(&levelupflow.ExecutorConfig{
		Service:    s.wizard.Service,
		Randomizer: wizardflow.NewRandomizer(dice.NewSeededRoller(seed), s.wizard.Service, nil),
	})
	s.Require().NoError(err)
	input.Seed = seed
	return exec.Run(s.ctx, input)
}

func (s *ExecutorTestSuite) failures(res *levelupflow.Result) []string {
	var out []string
	for _, f := range res.Failures() {
		out = append(out, f.Error)
		if f.Validation != nil {
			out = append(out, f.Validation.Errors...)
		}
	}
	if res.Error != nil {
		out = append(out, res.Error.Message)
	}
	return out
}

func (s *ExecutorTestSuite) TestConfigValidation() {
	_, err := levelupflow.NewExecutor(&levelupflow.ExecutorConfig{Service: s.wizard.Service})
	s.ErrorContains(err, "Randomizer")
}

func (s *ExecutorTestSuite) TestLinearFighterToFive() {
	id := s.build(1, testutils.ClassFighter, "champion")

	res := s.run(2, &levelupflow.ExecuteInput{CharacterID: id, TargetLevel: 5, Mode: levelupflow.ModeLinear, ForceSubclass: "champion"})
	s.Require().Equal(wizardflow.StatusPassed, res.Status, s.failures(res))
	s.Equal(1, res.StartLevel)
	s.Equal(5, res.FinalLevel)
	s.Nil(res.Plan)
	s.Require().Len(res.Steps, 4)

	for i, step := range res.Steps {
		s.Equal(i+2, step.Level)
		s.Equal(testutils.ClassFighter, step.ClassSlug)
		s.False(step.Multiclass)
		s.Positive(step.HPGained)
		s.GreaterOrEqual(step.Choices, 1, "hit points at least")
		s.Zero(step.After.PendingCount())
	}
	s.Contains(res.Steps[0].FeaturesGained, "Action Surge")
	s.Contains(res.Steps[3].FeaturesGained, "Extra Attack")
	s.Equal(3, res.Steps[3].After.ProficiencyBonus)
	s.Equal(map[string]int{testutils.ClassFighter: 4}, levelupflow.LevelDistribution(res.Steps))

	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	link := got.Character.ClassLink(testutils.ClassFighter)
	s.Require().NotNil(link)
	s.Equal(5, link.Level)
	s.Equal("champion", link.SubclassSlug)
	s.Len(got.Character.HitPointRolls, 4)
	for _, roll := range got.Character.HitPointRolls {
		s.False(roll.Rolled, "linear mode takes the average")
	}
}

func (s *ExecutorTestSuite) TestChaosMode() {
	for seed := int64(30); seed < 36; seed++ {
		id := s.build(seed, testutils.ClassFighter, "")
		res := s.run(seed, &levelupflow.ExecuteInput{CharacterID: id, TargetLevel: 8, Mode: levelupflow.ModeChaos})
		s.Require().Equal(wizardflow.StatusPassed, res.Status, "seed %d: %v", seed, s.failures(res))
		s.Equal(8, res.FinalLevel)
		s.Len(res.Steps, 7)

		total := 0
		for _, step := range res.Steps {
			if step.Multiclass {
				s.Greater(step.Level, 2, "chaos multiclasses after level 2")
				s.Equal(1, step.After.ClassLevels[step.ClassSlug])
				s.NotEqual(testutils.ClassFighter, step.ClassSlug)
			}
		}
		for _, n := range levelupflow.LevelDistribution(res.Steps) {
			total += n
		}
		s.Equal(7, total)
	}
}

func (s *ExecutorTestSuite) TestRealisticMode() {
	for seed := int64(50); seed < 56; seed++ {
		id := s.build(seed, testutils.ClassCleric, "")
		res := s.run(seed, &levelupflow.ExecuteInput{CharacterID: id, TargetLevel: 6, Mode: levelupflow.ModeRealistic})
		s.Require().NotNil(res.Plan)
		s.Require().Equal(wizardflow.StatusPassed, res.Status, "seed %d: %v", seed, s.failures(res))
		s.Equal(6, res.FinalLevel)

		for _, step := range res.Steps {
			if step.Multiclass {
				s.True(res.Plan.MulticlassAt(step.Level), "multiclass only at planned levels")
			}
		}
	}
}

func (s *ExecutorTestSuite) TestAlreadyAtTarget() {
	id := s.build(3, testutils.ClassWizard, "")
	res := s.run(3, &levelupflow.ExecuteInput{CharacterID: id, TargetLevel: 1, Mode: levelupflow.ModeLinear})
	s.Equal(wizardflow.StatusPassed, res.Status)
	s.Empty(res.Steps)
	s.Equal(1, res.FinalLevel)
}

func (s *ExecutorTestSuite) TestIncompleteCharacter() {
	out, err := s.wizard.Service.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{Name: "Draft"})
	s.Require().NoError(err)

	res := s.run(4, &levelupflow.ExecuteInput{CharacterID: out.Character.ID, TargetLevel: 3, Mode: levelupflow.ModeLinear})
	s.Equal(wizardflow.StatusError, res.Status)
	s.Require().NotNil(res.Error)
	s.Contains(res.Error.Message, "not complete")
	s.Empty(res.Steps)
}

func (s *ExecutorTestSuite) TestUnknownCharacter() {
	res := s.run(5, &levelupflow.ExecuteInput{CharacterID: "char_404", TargetLevel: 3, Mode: levelupflow.ModeLinear})
	s.Equal(wizardflow.StatusError, res.Status)
	s.Require().NotNil(res.Error)
	s.Equal(1, res.Error.AtLevel)
}

func (s *ExecutorTestSuite) TestCanceledContext() {
	id := s.build(6, testutils.ClassFighter, "")
	ctx, cancel := context.WithCancel(s.ctx)
	exec, err := levelupflow.NewExecutor(&levelupflow.ExecutorConfig{
		Service:    s.wizard.Service,
		Randomizer: wizardflow.NewRandomizer(dice.NewSeededRoller(6), s.wizard.Service, nil),
	})
	s.Require().NoError(err)
	cancel()

	res := exec.Run(ctx, &levelupflow.ExecuteInput{CharacterID: id, TargetLevel: 4, Mode: levelupflow.ModeLinear})
	s.Equal(wizardflow.StatusError, res.Status)
	s.NotNil(res.Error)
	s.Empty(res.Steps)
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}
