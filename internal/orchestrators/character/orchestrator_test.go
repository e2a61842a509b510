package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	character "github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	dicemock "github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice/mock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	dicesession "github.com/KirkDiggler/rpg-compendium/internal/repositories/dice_session"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

// queueRoller returns queued values in order, then 1s
type queueRoller struct {
	values []int
}

func (q *queueRoller) push(values ...int) { q.values = append(q.values, values...) }

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
	ctx          context.Context
	store        *compendium.Store
	charRepo     characterrepo.Repository
	roller       *queueRoller
	dice         dice.Service
	clock        *clock.Fixed
	orchestrator *character.Orchestrator
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, _ := testutils.NewTestRedis(s.T())
	s.store = testutils.NewTestStore(s.T())
	testutils.SeedCompendium(s.T(), s.store)

	s.clock = clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.charRepo, err = characterrepo.NewRedis(&characterrepo.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)

	sessions, err := dicesession.NewRedisRepository(&dicesession.Config{Client: client})
	s.Require().NoError(err)
	s.roller = &queueRoller{}
	s.dice, err = dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: sessions,
		IDGenerator:     idgen.NewSequential("roll"),
		Roller:          s.roller,
	})
	s.Require().NoError(err)

	s.orchestrator = s.newOrchestrator(s.dice)
}

func (s *OrchestratorTestSuite) newOrchestrator(d dice.Service) *character.Orchestrator {
	o, err := character.New(&character.Config{
		CharacterRepo: s.charRepo,
		Store:         s.store,
		Dice:          d,
		IDGenerator:   idgen.NewSequential("char"),
		Clock:         s.clock,
	})
	s.Require().NoError(err)
	return o
}

func (s *OrchestratorTestSuite) create() string {
	out, err := s.orchestrator.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{})
	s.Require().NoError(err)
	return out.Character.ID
}

func (s *OrchestratorTestSuite) must(out *charactersvc.UpdateOutput, err error) *charactersvc.UpdateOutput {
	s.T().Helper()
	s.Require().NoError(err)
	s.Require().NotNil(out)
	return out
}

func (s *OrchestratorTestSuite) resolve(id, choiceID string, selections ...string) *charactersvc.UpdateOutput {
	s.T().Helper()
	return s.must(s.orchestrator.ResolveChoice(s.ctx, &charactersvc.ResolveChoiceInput{
		CharacterID: id, ChoiceID: choiceID, Selections: selections,
	}))
}

func (s *OrchestratorTestSuite) pending(id string) []dnd5e.PendingChoice {
	s.T().Helper()
	out, err := s.orchestrator.PendingChoices(s.ctx, &charactersvc.PendingChoicesInput{CharacterID: id})
	s.Require().NoError(err)
	return out.PendingChoices
}

func findChoice(choices []dnd5e.PendingChoice, id string) *dnd5e.PendingChoice {
	for i := range choices {
		if choices[i].ID == id {
			return &choices[i]
		}
	}
	return nil
}

func grantNames(grants []dnd5e.Grant) []string {
	out := make([]string, 0, len(grants))
	for _, g := range grants {
		out = append(out, g.Name)
	}
	return out
}

func itemNames(items []dnd5e.GrantedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func standardScores() map[string]int {
	return map[string]int{
		dnd5e.AbilityStrength:     15,
		dnd5e.AbilityDexterity:    13,
		dnd5e.AbilityConstitution: 14,
		dnd5e.AbilityIntelligence: 8,
		dnd5e.AbilityWisdom:       12,
		dnd5e.AbilityCharisma:     10,
	}
}

// buildFighter walks a human fighter soldier through every creation step
func (s *OrchestratorTestSuite) buildFighter() string {
	id := s.create()
	s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceHuman}))
	s.resolve(id, "race:language:1", "Dwarvish")

	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))
	s.resolve(id, "class:proficiency:skill_choice_1", "Acrobatics", "Perception")
	s.resolve(id, "class:optional_feature:fighting_style", "fighting-style-defense")
	s.must(s.orchestrator.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{
		CharacterID: id, Mode: dnd5e.EquipmentModeEquipment,
	}))
	s.resolve(id, "class:equipment:1", "a")
	s.resolve(id, "class:equipment:2", "a")

	s.must(s.orchestrator.SetBackground(s.ctx, &charactersvc.SetBackgroundInput{CharacterID: id, BackgroundSlug: testutils.BackSoldier}))
	s.resolve(id, "background:proficiency:tool_2", "Dice Set")

	s.must(s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodStandardArray, Scores: standardScores(),
	}))
	s.must(s.orchestrator.SetDetails(s.ctx, &charactersvc.SetDetailsInput{
		CharacterID: id, Name: "Bruenor", Alignment: "Lawful Good",
	}))
	return id
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := character.New(&character.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "CharacterRepo")
	s.Contains(err.Error(), "Dice")

	_, err = character.New(nil)
	s.Require().Error(err)
}

func (s *OrchestratorTestSuite) TestCreateAndGet() {
	out, err := s.orchestrator.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{
		Name: "Aelar", Tags: []string{"smoke"},
	})
	s.Require().NoError(err)
	s.Equal("char_1", out.Character.ID)
	s.Equal("Aelar", out.Character.Name)

	got, err := s.orchestrator.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: "char_1"})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Unix(), got.Character.CreatedAt)

	list, err := s.orchestrator.ListCharacters(s.ctx, &charactersvc.ListCharactersInput{Tag: "smoke"})
	s.Require().NoError(err)
	s.Len(list.Characters, 1)

	_, err = s.orchestrator.DeleteCharacter(s.ctx, &charactersvc.DeleteCharacterInput{CharacterID: "char_1"})
	s.Require().NoError(err)
	_, err = s.orchestrator.GetCharacter(s.ctx, &charactersvc.GetCharacterInput{CharacterID: "char_1"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestListOptions() {
	testCases := []struct {
		name   string
		input  *charactersvc.ListOptionsInput
		expect []string
	}{
		{"races", &charactersvc.ListOptionsInput{Kind: charactersvc.OptionRace}, []string{"elf", "half-elf", "human"}},
		{"subraces", &charactersvc.ListOptionsInput{Kind: charactersvc.OptionSubrace, Parent: "elf"}, []string{"high-elf", "wood-elf"}},
		{"classes", &charactersvc.ListOptionsInput{Kind: charactersvc.OptionClass}, []string{"cleric", "fighter", "wizard"}},
		{"subclasses", &charactersvc.ListOptionsInput{Kind: charactersvc.OptionSubclass, Parent: "fighter"}, []string{"champion", "battle-master"}},
		{"backgrounds", &charactersvc.ListOptionsInput{Kind: charactersvc.OptionBackground}, []string{"acolyte", "sage", "soldier"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.orchestrator.ListOptions(s.ctx, tc.input)
			s.Require().NoError(err)
			slugs := make([]string, 0, len(out.Options))
			for _, opt := range out.Options {
				slugs = append(slugs, opt.Slug)
			}
			s.Equal(tc.expect, slugs)
		})
	}

	classes, err := s.orchestrator.ListOptions(s.ctx, &charactersvc.ListOptionsInput{Kind: charactersvc.OptionClass})
	s.Require().NoError(err)
	fighter := classes.Options[1]
	s.Equal([]string{"Explorer's Pack"}, fighter.Equipment)
	s.Equal(2, fighter.EquipmentChoices)
	s.False(fighter.Spellcaster)
	s.Equal(3, fighter.SubclassLevel)

	backgrounds, err := s.orchestrator.ListOptions(s.ctx, &charactersvc.ListOptionsInput{Kind: charactersvc.OptionBackground})
	s.Require().NoError(err)
	s.Equal([]string{"Holy Symbol", "Prayer Book"}, backgrounds.Options[0].Equipment)

	_, err = s.orchestrator.ListOptions(s.ctx, &charactersvc.ListOptionsInput{Kind: "feat"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestSetRaceGrantsAndSwitchClears() {
	id := s.create()
	out := s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceHuman}))
	s.Len(out.Character.AbilityBonuses, 6)
	s.Equal([]string{"Common"}, grantNames(out.Character.Languages))

	lang := findChoice(out.PendingChoices, "race:language:1")
	s.Require().NotNil(lang)
	s.False(lang.HasOption("Common"), "a held language is not offered")
	s.resolve(id, "race:language:1", "Dwarvish")

	out = s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceElf}))
	s.ElementsMatch([]string{"Common", "Elvish"}, grantNames(out.Character.Languages))
	s.Empty(out.Character.Selections, "the human language selection is gone")
	s.Require().Len(out.Character.AbilityBonuses, 1)
	s.Equal(dnd5e.AbilityDexterity, out.Character.AbilityBonuses[0].Ability)
	s.Contains(grantNames(out.Character.Proficiencies), "Perception")
	s.Contains(grantNames(out.Character.Features), "Darkvision")

	out = s.must(s.orchestrator.SetSubrace(s.ctx, &charactersvc.SetSubraceInput{CharacterID: id, SubraceSlug: testutils.SubraceHigh}))
	s.Contains(out.Character.AbilityBonuses, dnd5e.AbilityGrant{
		Ability: dnd5e.AbilityIntelligence, Value: 1, Source: dnd5e.SourceSubrace,
	})

	cantrip := findChoice(out.PendingChoices, "subrace:spell:0")
	s.Require().NotNil(cantrip)
	s.Equal(1, cantrip.Quantity)
	s.ElementsMatch([]string{"fire-bolt", "light", "mage-hand", "prestidigitation"}, cantrip.OptionIDs())
	s.NotNil(findChoice(out.PendingChoices, "subrace:language:0"))

	s.resolve(id, "subrace:spell:0", "mage-hand")
	out = s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceHuman}))
	s.Empty(out.Character.SubraceSlug)
	s.Empty(out.Character.Spells, "the subrace cantrip goes with the subrace")
}

func (s *OrchestratorTestSuite) TestSetRaceRejects() {
	id := s.create()

	_, err := s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.SubraceHigh})
	s.True(errors.IsInvalidArgument(err), "a subrace is not a race")

	_, err = s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: "tortle"})
	s.True(errors.IsNotFound(err))

	s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceHuman}))
	_, err = s.orchestrator.SetSubrace(s.ctx, &charactersvc.SetSubraceInput{CharacterID: id, SubraceSlug: testutils.SubraceHigh})
	s.True(errors.IsInvalidArgument(err), "high elf does not belong to human")
}

func (s *OrchestratorTestSuite) TestHalfElfAbilityChoice() {
	id := s.create()
	out := s.must(s.orchestrator.SetRace(s.ctx, &charactersvc.SetRaceInput{CharacterID: id, RaceSlug: testutils.RaceHalfElf}))

	choice := findChoice(out.PendingChoices, "race:ability_score:0")
	s.Require().NotNil(choice)
	s.Equal(2, choice.Quantity)
	s.False(choice.HasOption(dnd5e.AbilityCharisma), "the fixed bonus ability is excluded")

	_, err := s.orchestrator.ResolveChoice(s.ctx, &charactersvc.ResolveChoiceInput{
		CharacterID: id, ChoiceID: choice.ID, Selections: []string{dnd5e.AbilityStrength, dnd5e.AbilityStrength},
	})
	s.True(errors.IsInvalidArgument(err), "different abilities are required")

	out = s.resolve(id, choice.ID, dnd5e.AbilityStrength, dnd5e.AbilityDexterity)
	s.Nil(findChoice(out.PendingChoices, choice.ID))
	s.Len(out.Character.AbilityBonuses, 3)

	skills := findChoice(out.PendingChoices, "race:proficiency:skill_choice_1")
	s.Require().NotNil(skills)
	s.Len(skills.Options, len(dnd5e.Skills))
}

func (s *OrchestratorTestSuite) TestSetClassGrantsAndChoices() {
	id := s.create()
	out := s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))

	s.Require().Len(out.Character.Classes, 1)
	s.Equal(1, out.Character.Classes[0].Level)
	s.Subset(grantNames(out.Character.Proficiencies), []string{"Strength", "Heavy Armor", "Martial Weapons"})
	s.ElementsMatch([]string{"Fighting Style", "Second Wind"}, grantNames(out.Character.Features))

	skills := findChoice(out.PendingChoices, "class:proficiency:skill_choice_1")
	s.Require().NotNil(skills)
	s.Equal(2, skills.Quantity)
	s.Len(skills.Options, 5)

	s.NotNil(findChoice(out.PendingChoices, "class:equipment_mode"))
	style := findChoice(out.PendingChoices, "class:optional_feature:fighting_style")
	s.Require().NotNil(style)
	s.Len(style.Options, 3, "maneuvers wait for the battle master")
	s.Nil(findChoice(out.PendingChoices, "class:equipment:1"), "equipment choices follow the mode")
}

func (s *OrchestratorTestSuite) TestSetClassSwitchClearsChoices() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))
	s.resolve(id, "class:proficiency:skill_choice_1", "Athletics", "Survival")
	s.resolve(id, "class:optional_feature:fighting_style", "fighting-style-archery")

	out := s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard}))
	names := grantNames(out.Character.Proficiencies)
	s.NotContains(names, "Athletics")
	s.NotContains(names, "Heavy Armor")
	s.NotContains(grantNames(out.Character.Features), "Fighting Style: Archery")
	s.Empty(out.Character.Selections)

	cantrips := findChoice(out.PendingChoices, "class:spell:cantrips")
	s.Require().NotNil(cantrips)
	s.Equal(3, cantrips.Quantity)
	s.Len(cantrips.Options, 4)

	spells := findChoice(out.PendingChoices, "class:spell:spells")
	s.Require().NotNil(spells)
	s.Equal(6, spells.Quantity)
	s.Len(spells.Options, 8, "only first level spells")
}

func (s *OrchestratorTestSuite) TestResolveChoiceRejectsBadSelections() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))

	testCases := []struct {
		name       string
		choiceID   string
		selections []string
		check      func(error) bool
	}{
		{"wrong count", "class:proficiency:skill_choice_1", []string{"Athletics"}, errors.IsInvalidArgument},
		{"not an option", "class:proficiency:skill_choice_1", []string{"Athletics", "Arcana"}, errors.IsInvalidArgument},
		{"duplicate", "class:proficiency:skill_choice_1", []string{"Athletics", "athletics"}, errors.IsInvalidArgument},
		{"unknown choice", "class:language:9", []string{"Elvish"}, errors.IsNotFound},
		{"no selections", "class:proficiency:skill_choice_1", nil, errors.IsInvalidArgument},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orchestrator.ResolveChoice(s.ctx, &charactersvc.ResolveChoiceInput{
				CharacterID: id, ChoiceID: tc.choiceID, Selections: tc.selections,
			})
			s.Require().Error(err)
			s.True(tc.check(err), "unexpected error %v", err)
		})
	}
}

func (s *OrchestratorTestSuite) TestResolveAgainReplaces() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))
	s.resolve(id, "class:proficiency:skill_choice_1", "Athletics", "Survival")
	out := s.resolve(id, "class:proficiency:skill_choice_1", "Acrobatics", "Perception")

	names := grantNames(out.Character.Proficiencies)
	s.Subset(names, []string{"Acrobatics", "Perception"})
	s.NotContains(names, "Athletics")
	s.NotContains(names, "Survival")
	s.Equal([]string{"Acrobatics", "Perception"}, out.Character.Selections["class:proficiency:skill_choice_1"])
}

func (s *OrchestratorTestSuite) TestBackgroundOverlapReopensClassChoice() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))
	s.resolve(id, "class:proficiency:skill_choice_1", "Athletics", "Intimidation")

	out := s.must(s.orchestrator.SetBackground(s.ctx, &charactersvc.SetBackgroundInput{CharacterID: id, BackgroundSlug: testutils.BackSoldier}))

	skills := findChoice(out.PendingChoices, "class:proficiency:skill_choice_1")
	s.Require().NotNil(skills, "the class skill picks now duplicate the background")
	s.Equal(2, skills.Remaining)
	s.ElementsMatch([]string{"Acrobatics", "Perception", "Survival"}, skills.OptionIDs())

	tools := findChoice(out.PendingChoices, "background:proficiency:tool_2")
	s.Require().NotNil(tools)
	s.True(tools.HasOption("Dice Set"))
	s.Contains(grantNames(out.Character.Features), "Military Rank")
}

func (s *OrchestratorTestSuite) TestSetAbilityScores() {
	testCases := []struct {
		name   string
		method string
		scores func() map[string]int
		valid  bool
	}{
		{"standard array", dnd5e.AbilityMethodStandardArray, standardScores, true},
		{"standard array repeats", dnd5e.AbilityMethodStandardArray, func() map[string]int {
			m := standardScores()
			m[dnd5e.AbilityCharisma] = 15
			return m
		}, false},
		{"point buy within budget", dnd5e.AbilityMethodPointBuy, func() map[string]int {
			return map[string]int{"STR": 15, "DEX": 14, "CON": 13, "INT": 12, "WIS": 10, "CHA": 8}
		}, true},
		{"point buy over budget", dnd5e.AbilityMethodPointBuy, func() map[string]int {
			return map[string]int{"STR": 15, "DEX": 15, "CON": 15, "INT": 15, "WIS": 8, "CHA": 8}
		}, false},
		{"manual out of range", dnd5e.AbilityMethodManual, func() map[string]int {
			m := standardScores()
			m[dnd5e.AbilityStrength] = 19
			return m
		}, false},
		{"missing ability", dnd5e.AbilityMethodManual, func() map[string]int {
			m := standardScores()
			delete(m, dnd5e.AbilityWisdom)
			return m
		}, false},
		{"unknown method", "bribery", standardScores, false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			id := s.create()
			out, err := s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
				CharacterID: id, Method: tc.method, Scores: tc.scores(),
			})
			if !tc.valid {
				s.Require().Error(err)
				s.True(errors.IsInvalidArgument(err))
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.scores(), out.Character.AbilityScores)
			s.Equal(tc.method, out.Character.AbilityMethod)
		})
	}
}

func (s *OrchestratorTestSuite) TestRolledAbilityScores() {
	id := s.create()
	s.roller.push(
		6, 6, 6, 1,
		5, 5, 5, 1,
		4, 4, 4, 1,
		3, 3, 3, 1,
		6, 5, 4, 1,
		2, 2, 2, 1,
	)
	rolled, err := s.dice.RollAbilityScores(s.ctx, &dice.RollAbilityScoresInput{EntityID: id, Method: dice.MethodStandard})
	s.Require().NoError(err)
	s.Require().Len(rolled.Rolls, 6)

	assign := map[string]string{}
	for i, code := range dnd5e.AbilityCodes {
		assign[code] = rolled.Rolls[i].RollID
	}
	out := s.must(s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodRolled, RollAssignments: assign,
	}))
	s.Equal(map[string]int{"STR": 18, "DEX": 15, "CON": 12, "INT": 9, "WIS": 15, "CHA": 6}, out.Character.AbilityScores)

	_, err = s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodRolled, RollAssignments: assign,
	})
	s.True(errors.IsFailedPrecondition(err), "rolls are used once")
}

func (s *OrchestratorTestSuite) TestEquipmentModes() {
	id := s.create()
	_, err := s.orchestrator.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{
		CharacterID: id, Mode: dnd5e.EquipmentModeGold,
	})
	s.True(errors.IsFailedPrecondition(err), "a class comes first")

	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))
	out := s.must(s.orchestrator.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{
		CharacterID: id, Mode: dnd5e.EquipmentModeEquipment,
	}))
	s.Equal([]string{"Explorer's Pack"}, itemNames(out.Character.Equipment))
	s.NotNil(findChoice(out.PendingChoices, "class:equipment:1"))
	s.NotNil(findChoice(out.PendingChoices, "class:equipment:2"))
	s.Nil(findChoice(out.PendingChoices, "class:equipment_mode"))

	out = s.resolve(id, "class:equipment:1", "b")
	s.Subset(itemNames(out.Character.Equipment), []string{"Leather Armor", "Longbow", "Arrows"})

	s.roller.push(4, 4, 4, 4, 4)
	out = s.must(s.orchestrator.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{
		CharacterID: id, Mode: dnd5e.EquipmentModeGold,
	}))
	s.Empty(out.Character.Equipment)
	s.Equal(200, out.Character.Gold)
	s.Nil(findChoice(out.PendingChoices, "class:equipment:1"))
	s.NotContains(out.Character.Selections, "class:equipment:1")

	session, err := s.dice.GetRollSession(s.ctx, &dice.GetRollSessionInput{EntityID: id, Context: character.ContextStartingWealth})
	s.Require().NoError(err)
	s.Len(session.Session.Rolls, 1)
}

func (s *OrchestratorTestSuite) TestGoldModeRollsClassWealth() {
	ctrl := gomock.NewController(s.T())
	mockDice := dicemock.NewMockService(ctrl)
	o := s.newOrchestrator(mockDice)

	out, err := o.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{})
	s.Require().NoError(err)
	id := out.Character.ID
	s.must(o.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard}))

	mockDice.EXPECT().
		RollDice(gomock.Any(), &dice.RollDiceInput{
			EntityID:    id,
			Context:     character.ContextStartingWealth,
			Notation:    "4d4",
			Description: "starting wealth for Wizard",
		}).
		Return(&dice.RollDiceOutput{Roll: &dicesession.Roll{Total: 9}}, nil)

	updated := s.must(o.SetEquipmentMode(s.ctx, &charactersvc.SetEquipmentModeInput{CharacterID: id, Mode: dnd5e.EquipmentModeGold}))
	s.Equal(90, updated.Character.Gold)
}

func (s *OrchestratorTestSuite) TestSubclassAtFirstLevel() {
	id := s.create()
	out := s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassCleric}))

	sub := findChoice(out.PendingChoices, "class:subclass")
	s.Require().NotNil(sub)
	s.Equal([]string{testutils.SubclassLife}, sub.OptionIDs())
	s.Nil(findChoice(out.PendingChoices, "class:spell:spells"), "clerics prepare spells")

	out = s.resolve(id, "class:subclass", testutils.SubclassLife)
	s.Equal(testutils.SubclassLife, out.Character.Classes[0].SubclassSlug)
	s.Contains(grantNames(out.Character.Features), "Disciple of Life")
	s.Nil(findChoice(out.PendingChoices, "class:subclass"))
}

func (s *OrchestratorTestSuite) TestSetSubclassTooEarly() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter}))

	_, err := s.orchestrator.SetSubclass(s.ctx, &charactersvc.SetSubclassInput{CharacterID: id, SubclassSlug: "champion"})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.orchestrator.SetSubclass(s.ctx, &charactersvc.SetSubclassInput{CharacterID: id, SubclassSlug: "eldritch-knight"})
	s.Require().Error(err)
}

func (s *OrchestratorTestSuite) TestValidateAndStats() {
	id := s.create()
	v, err := s.orchestrator.Validate(s.ctx, &charactersvc.ValidateInput{CharacterID: id})
	s.Require().NoError(err)
	s.False(v.Valid)
	s.Contains(v.Errors, "race is not set")
	s.Contains(v.Errors, "class is not set")

	id = s.buildFighter()
	v, err = s.orchestrator.Validate(s.ctx, &charactersvc.ValidateInput{CharacterID: id})
	s.Require().NoError(err)
	s.True(v.Valid, "errors: %v", v.Errors)
	s.Empty(v.Warnings)
	s.True(v.Character.IsComplete)

	out, err := s.orchestrator.Stats(s.ctx, &charactersvc.StatsInput{CharacterID: id})
	s.Require().NoError(err)
	stats := out.Stats
	s.Equal(12, stats.HitPoints, "d10 plus CON 15")
	s.Equal(18, stats.ArmorClass, "chain mail and shield")
	s.Equal(2, stats.ProficiencyBonus)
	s.Equal(30, stats.Speed)
	s.Equal(5, stats.SavingThrows[dnd5e.AbilityStrength])
	s.Equal(-1, stats.SavingThrows[dnd5e.AbilityIntelligence])
	s.Equal(3, stats.Skills["Perception"])
	s.Equal(5, stats.Skills["Athletics"])
	s.Empty(stats.Spellcasting)
}

func (s *OrchestratorTestSuite) TestSpellcastingStats() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard}))
	scores := standardScores()
	scores[dnd5e.AbilityStrength], scores[dnd5e.AbilityIntelligence] = 8, 15
	s.must(s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodStandardArray, Scores: scores,
	}))
	s.resolve(id, "class:equipment_mode", dnd5e.EquipmentModeEquipment)

	out, err := s.orchestrator.Stats(s.ctx, &charactersvc.StatsInput{CharacterID: id})
	s.Require().NoError(err)
	s.Require().Len(out.Stats.Spellcasting, 1)
	sc := out.Stats.Spellcasting[0]
	s.Equal(dnd5e.AbilityIntelligence, sc.Ability)
	s.Equal(12, sc.SaveDC)
	s.Equal(4, sc.AttackBonus)
	s.Equal(2, sc.Slots[0])
	s.Equal(10+1, out.Stats.ArmorClass, "unarmored")
	s.Equal(8, out.Stats.HitPoints)
}

func (s *OrchestratorTestSuite) TestExportImport() {
	for _, name := range []string{"Aelar", "Bruenor"} {
		_, err := s.orchestrator.CreateCharacter(s.ctx, &charactersvc.CreateCharacterInput{Name: name, Tags: []string{"fixture"}})
		s.Require().NoError(err)
	}
	s.create()

	exported, err := s.orchestrator.Export(s.ctx, &charactersvc.ExportInput{Tag: "fixture"})
	s.Require().NoError(err)
	s.Equal(charactersvc.FixtureVersion, exported.Fixture.Version)
	s.Len(exported.Fixture.Characters, 2)
	s.Equal(s.clock.Now().Unix(), exported.Fixture.ExportedAt)

	_, err = s.orchestrator.DeleteCharacter(s.ctx, &charactersvc.DeleteCharacterInput{CharacterID: "char_1"})
	s.Require().NoError(err)

	imported, err := s.orchestrator.Import(s.ctx, &charactersvc.ImportInput{Fixture: exported.Fixture})
	s.Require().NoError(err)
	s.Equal(&charactersvc.ImportOutput{Created: 1, Skipped: 1}, imported)

	imported, err = s.orchestrator.Import(s.ctx, &charactersvc.ImportInput{Fixture: exported.Fixture, Overwrite: true})
	s.Require().NoError(err)
	s.Equal(&charactersvc.ImportOutput{Updated: 2}, imported)

	exported.Fixture.Version = 99
	_, err = s.orchestrator.Import(s.ctx, &charactersvc.ImportInput{Fixture: exported.Fixture})
	s.True(errors.IsInvalidArgument(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
