package wizardflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ExecutorTestSuite struct {
	suite.Suite
	ctx    context.Context
	wizard *testutils.Wizard
	logs   *observer.ObservedLogs
	logger *zap.Logger
}

func (s *ExecutorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 11)
	core, logs := observer.New(zap.DebugLevel)
	s.logs = logs
	s.logger = zap.New(core)
}

// run executes the flow built by build with a randomizer seeded with seed
func (s *ExecutorTestSuite) run(seed int64, opts wizardflow.RunOptions, build func(*wizardflow.Generator) *wizardflow.Flow) (*wizardflow.Flow, *wizardflow.FlowResult) {
	rand := wizardflow.NewRandomizer(dice.NewSeededRoller(seed), s.wizard.Service, nil)
	exec, err := wizardflow.NewExecutor(&wizardflow.ExecutorConfig{
		Service:    s.wizard.Service,
		Randomizer: rand,
		Dice:       s.wizard.Dice,
		Logger:     s.logger,
	})
	s.Require().NoError(err)
	flow := build(wizardflow.NewGenerator(rand))
	opts.Seed = seed
	return flow, exec.Run(s.ctx, flow, opts)
}

func (s *ExecutorTestSuite) requirePassed(res *wizardflow.FlowResult) {
	s.T().Helper()
	for _, f := range res.Failures() {
		s.T().Logf("step %d %s: error=%q validation=%+v", f.Index, f.Action, f.Error, f.Validation)
	}
	s.Require().Equal(wizardflow.StatusPassed, res.Status, "seed %d %s flow", res.Seed, res.FlowType)
}

func (s *ExecutorTestSuite) character(id string) *dnd5e.Character {
	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	return got.Character
}

func (s *ExecutorTestSuite) TestConfigValidation() {
	_, err := wizardflow.NewExecutor(nil)
	s.Error(err)

	_, err = wizardflow.NewExecutor(&wizardflow.ExecutorConfig{Service: s.wizard.Service})
	s.ErrorContains(err, "Randomizer")
}

func (s *ExecutorTestSuite) TestLinearFlowsBuildCompleteCharacters() {
	for seed := int64(1); seed <= 8; seed++ {
		flow, res := s.run(seed, wizardflow.RunOptions{Iteration: int(seed)}, (*wizardflow.Generator).Linear)

		s.requirePassed(res)
		s.Len(res.Steps, len(flow.Steps))
		s.NotEmpty(res.CharacterID)

		char := s.character(res.CharacterID)
		s.True(char.IsComplete, "seed %d", seed)
		s.NotEmpty(char.Name)
		s.Contains(char.Tags, wizardflow.TagFlowTest)
	}
}

func (s *ExecutorTestSuite) TestForcedClassAndSubclass() {
	_, res := s.run(4, wizardflow.RunOptions{
		ForceClass:    testutils.ClassCleric,
		ForceSubclass: testutils.SubclassLife,
	}, (*wizardflow.Generator).Linear)
	s.requirePassed(res)

	link := s.character(res.CharacterID).ClassLink(testutils.ClassCleric)
	s.Require().NotNil(link)
	s.Equal(testutils.SubclassLife, link.SubclassSlug)

	sub := res.Steps[4]
	s.Equal(wizardflow.ActionSetSubclass, sub.Action)
	s.Equal(wizardflow.StatusPassed, sub.Status)
	s.NotEmpty(sub.Changes)
}

func (s *ExecutorTestSuite) TestSubclassStepSkippedForLaterSubclasses() {
	_, res := s.run(2, wizardflow.RunOptions{ForceClass: testutils.ClassFighter}, (*wizardflow.Generator).Linear)
	s.requirePassed(res)
	s.Equal(wizardflow.StatusSkipped, res.Steps[4].Status)
}

func (s *ExecutorTestSuite) TestNamedSwitches() {
	for _, name := range []string{"race", "background", "class"} {
		_, res := s.run(21, wizardflow.RunOptions{}, func(g *wizardflow.Generator) *wizardflow.Flow {
			flow, err := g.WithSwitches([]string{name})
			s.Require().NoError(err)
			return flow
		})
		s.requirePassed(res)

		var switched bool
		for _, step := range res.Steps {
			if step.Action.IsSwitch() {
				switched = true
				s.NotNil(step.Validation, name)
				s.NotEmpty(step.Changes, name)
			}
		}
		s.True(switched, name)
		s.True(s.character(res.CharacterID).IsComplete, name)
	}
}

func (s *ExecutorTestSuite) TestChaosFlows() {
	for seed := int64(100); seed < 110; seed++ {
		flow, res := s.run(seed, wizardflow.RunOptions{}, func(g *wizardflow.Generator) *wizardflow.Flow {
			return g.Chaos(1, 3)
		})
		s.requirePassed(res)
		s.GreaterOrEqual(flow.SwitchCount(), 1)
		s.True(s.character(res.CharacterID).IsComplete, "seed %d", seed)
	}
}

func (s *ExecutorTestSuite) TestEquipmentModeChaos() {
	for seed := int64(30); seed < 36; seed++ {
		_, res := s.run(seed, wizardflow.RunOptions{}, (*wizardflow.Generator).EquipmentModeChaos)
		s.requirePassed(res)

		char := s.character(res.CharacterID)
		switch char.EquipmentMode {
		case dnd5e.EquipmentModeGold:
			s.Positive(char.Gold)
		case dnd5e.EquipmentModeEquipment:
			s.Zero(char.Gold)
		default:
			s.Failf("no equipment mode", "seed %d", seed)
		}
	}
}

func (s *ExecutorTestSuite) TestClassTypeSwitch() {
	_, res := s.run(8, wizardflow.RunOptions{}, func(g *wizardflow.Generator) *wizardflow.Flow {
		return g.ClassTypeSwitch(wizardflow.ClassTypeCaster, wizardflow.ClassTypeMartial)
	})
	s.requirePassed(res)

	char := s.character(res.CharacterID)
	s.Equal(testutils.ClassFighter, char.PrimaryClass().ClassSlug)
	for _, sp := range char.Spells {
		s.NotEqual(dnd5e.SourceClass, sp.Source, "class spell %s survived the switch", sp.Name)
	}
}

func (s *ExecutorTestSuite) TestForcedRace() {
	_, res := s.run(5, wizardflow.RunOptions{}, func(g *wizardflow.Generator) *wizardflow.Flow {
		return g.AllRaces([]string{testutils.RaceElf}, 0, 0)[0]
	})
	s.NotEqual(wizardflow.StatusError, res.Status)
	s.Equal(testutils.RaceElf, res.Steps[1].Detail)
}

func (s *ExecutorTestSuite) TestUnknownClassErrorsAndStops() {
	flow, res := s.run(1, wizardflow.RunOptions{ForceClass: "bard"}, (*wizardflow.Generator).Linear)

	s.Equal(wizardflow.StatusError, res.Status)
	s.Less(len(res.Steps), len(flow.Steps))
	last := res.Steps[len(res.Steps)-1]
	s.Equal(wizardflow.ActionSetClass, last.Action)
	s.NotEmpty(last.Error)
	s.Equal([]string{wizardflow.PatternAPIError}, res.Patterns())
	s.NotZero(s.logs.FilterMessage("flow step errored").Len())
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}
