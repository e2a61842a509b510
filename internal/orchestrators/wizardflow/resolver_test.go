package wizardflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ResolverTestSuite struct {
	suite.Suite
	ctx      context.Context
	wizard   *testutils.Wizard
	rand     *wizardflow.Randomizer
	resolver *wizardflow.Resolver
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.wizard = testutils.NewTestWizard(s.T(), 1)
	s.rand = wizardflow.NewRandomizer(dice.NewSeededRoller(3), s.wizard.Service, nil)
	s.resolver = wizardflow.NewResolver(s.wizard.Service, s.rand)
}

// build creates a character with race, class, background and scores set
func (s *ResolverTestSuite) build(race, class, background string) string {
	svc := s.wizard.Service
	out, err := svc.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{})
	s.Require().NoError(err)
	id := out.Character.ID

	_, err = svc.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: race})
	s.Require().NoError(err)
	_, err = svc.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: class})
	s.Require().NoError(err)
	_, err = svc.SetBackground(s.ctx, &charactersvc.SetBackgroundInput{CharacterID: id, BackgroundSlug: background})
	s.Require().NoError(err)
	_, err = svc.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id,
		Method:      dnd5e.AbilityMethodStandardArray,
		Scores:      s.rand.AbilityScores(),
	})
	s.Require().NoError(err)
	return id
}

func (s *ResolverTestSuite) pendingTypes(id string) []dnd5e.ChoiceType {
	out, err := s.wizard.Service.PendingChoices(s.ctx, &charactersvc.PendingChoicesInput{CharacterID: id})
	s.Require().NoError(err)
	var types []dnd5e.ChoiceType
	for _, p := range out.PendingChoices {
		types = append(types, p.Type)
	}
	return types
}

func (s *ResolverTestSuite) TestResolvesOnlyWantedTypes() {
	id := s.build(testutils.RaceHuman, testutils.ClassFighter, testutils.BackSoldier)

	resolved, err := s.resolver.ResolvePending(s.ctx, id, wizardflow.ResolveOptions{
		Types: []dnd5e.ChoiceType{dnd5e.ChoiceTypeProficiency},
	})
	s.Require().NoError(err)

	s.NotEmpty(resolved)
	for _, r := range resolved {
		s.Equal(dnd5e.ChoiceTypeProficiency, r.Type)
		s.NotEmpty(r.Selections)
	}
	types := s.pendingTypes(id)
	s.NotContains(types, dnd5e.ChoiceTypeProficiency)
	s.Contains(types, dnd5e.ChoiceTypeLanguage, "human language choice is left alone")
}

func (s *ResolverTestSuite) TestSelectionsDoNotRepeatHeldValues() {
	id := s.build(testutils.RaceHalfElf, testutils.ClassFighter, testutils.BackSoldier)

	_, err := s.resolver.ResolvePending(s.ctx, id, wizardflow.ResolveOptions{
		Types: []dnd5e.ChoiceType{dnd5e.ChoiceTypeProficiency, dnd5e.ChoiceTypeAbilityScore},
	})
	s.Require().NoError(err)

	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	seen := map[string]int{}
	for _, p := range got.Character.Proficiencies {
		seen[p.Name]++
	}
	for name, n := range seen {
		s.Equal(1, n, "%s granted %d times", name, n)
	}
}

func (s *ResolverTestSuite) TestEquipmentResolutionCarriesItems() {
	id := s.build(testutils.RaceHuman, testutils.ClassFighter, testutils.BackAcolyte)
	_, err := s.wizard.Service.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{
		CharacterID: id,
		Mode:        dnd5e.EquipmentModeEquipment,
	})
	s.Require().NoError(err)

	resolved, err := s.resolver.ResolvePending(s.ctx, id, wizardflow.ResolveOptions{
		Types: []dnd5e.ChoiceType{dnd5e.ChoiceTypeEquipment},
	})
	s.Require().NoError(err)

	s.Len(resolved, 2, "fighter has two equipment groups")
	for _, r := range resolved {
		s.Len(r.Selections, 1)
		s.NotEmpty(r.Items)
	}
}

func (s *ResolverTestSuite) TestForceSubclass() {
	id := s.build(testutils.RaceHuman, testutils.ClassCleric, testutils.BackAcolyte)

	resolved, err := s.resolver.ResolvePending(s.ctx, id, wizardflow.ResolveOptions{
		Types:         []dnd5e.ChoiceType{dnd5e.ChoiceTypeSubclass},
		ForceSubclass: testutils.SubclassLife,
	})
	s.Require().NoError(err)
	s.Require().Len(resolved, 1)
	s.Equal([]string{testutils.SubclassLife}, resolved[0].Selections)

	got, err := s.wizard.Service.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	s.Equal(testutils.SubclassLife, got.Character.ClassLink(testutils.ClassCleric).SubclassSlug)
}

func (s *ResolverTestSuite) TestSelectASIStaysUnderCap() {
	char := &dnd5e.Character{AbilityScores: map[string]int{}}
	for _, code := range dnd5e.AbilityCodes {
		char.AbilityScores[code] = 20
	}
	char.AbilityScores[dnd5e.AbilityWisdom] = 19
	char.AbilityScores[dnd5e.AbilityCharisma] = 18

	choice := &dnd5e.PendingChoice{ID: "level_up:asi:4", Type: dnd5e.ChoiceTypeASI, Quantity: 2}
	for range 20 {
		got := s.resolver.Select(char, choice, wizardflow.ResolveOptions{})
		s.Require().Len(got, 2)
		for _, code := range got {
			s.Contains([]string{dnd5e.AbilityWisdom, dnd5e.AbilityCharisma}, code)
		}
		if got[0] == got[1] {
			s.Equal(dnd5e.AbilityCharisma, got[0], "only charisma can take +2")
		}
	}
}

func (s *ResolverTestSuite) TestSelectHitPoints() {
	choice := &dnd5e.PendingChoice{
		ID:       "level_up:hit_points:2",
		Type:     dnd5e.ChoiceTypeHitPoints,
		Quantity: 1,
		Options:  []dnd5e.ChoiceOption{{ID: "roll"}, {ID: "average"}},
	}
	s.Equal([]string{"average"}, s.resolver.Select(nil, choice, wizardflow.ResolveOptions{}))
	s.Equal([]string{"roll"}, s.resolver.Select(nil, choice, wizardflow.ResolveOptions{RollHitPointsPercent: 100}))
}

func (s *ResolverTestSuite) TestSelectSkipsTakenValues() {
	char := &dnd5e.Character{Selections: map[string][]string{
		"race:language:1": {"Dwarvish"},
	}}
	choice := &dnd5e.PendingChoice{
		ID:       "background:language:0",
		Type:     dnd5e.ChoiceTypeLanguage,
		Quantity: 1,
		Options:  []dnd5e.ChoiceOption{{ID: "Dwarvish"}, {ID: "Giant"}},
	}
	for range 10 {
		s.Equal([]string{"Giant"}, s.resolver.Select(char, choice, wizardflow.ResolveOptions{}))
	}
}

func (s *ResolverTestSuite) TestUnknownCharacter() {
	_, err := s.resolver.ResolvePending(s.ctx, "char-missing", wizardflow.ResolveOptions{})
	s.Error(err)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}
