package character_test

import (
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	character "github.com/KirkDiggler/rpg-compendium/internal/orchestrators/character"
	charactersvc "github.com/KirkDiggler/rpg-compendium/internal/services/character"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

func (s *OrchestratorTestSuite) levelUp(id string) *charactersvc.UpdateOutput {
	s.T().Helper()
	return s.must(s.orchestrator.LevelUp(s.ctx, &charactersvc.LevelUpInput{CharacterID: id}))
}

func (s *OrchestratorTestSuite) TestLevelUpFighterToFour() {
	id := s.buildFighter()

	out := s.levelUp(id)
	s.Equal(2, out.Character.TotalLevel())
	s.Contains(grantNames(out.Character.Features), "Action Surge")
	s.Require().Len(out.PendingChoices, 1)
	s.Equal("level_up:fighter:2:hit_points", out.PendingChoices[0].ID)
	s.Equal(dnd5e.ChoiceTypeHitPoints, out.PendingChoices[0].Type)

	out = s.resolve(id, "level_up:fighter:2:hit_points", character.HitPointsAverage)
	s.Empty(out.Character.PendingLevelUp)
	s.Equal([]dnd5e.HitPointRoll{{ClassSlug: testutils.ClassFighter, Level: 2, Value: 6}}, out.Character.HitPointRolls)

	stats, err := s.orchestrator.Stats(s.ctx, &charactersvc.StatsInput{CharacterID: id})
	s.Require().NoError(err)
	s.Equal(10+6+2*2, stats.Stats.HitPoints)

	out = s.levelUp(id)
	s.NotNil(findChoice(out.PendingChoices, "level_up:fighter:3:hit_points"))
	s.NotNil(findChoice(out.PendingChoices, "level_up:fighter:3:subclass"))

	_, err = s.orchestrator.LevelUp(s.ctx, &charactersvc.LevelUpInput{CharacterID: id})
	s.True(errors.IsFailedPrecondition(err), "pending level up choices block the next level")

	out = s.resolve(id, "level_up:fighter:3:subclass", "battle-master")
	s.Equal("battle-master", out.Character.Classes[0].SubclassSlug)
	s.Contains(grantNames(out.Character.Features), "Combat Superiority")

	maneuvers := findChoice(out.PendingChoices, "subclass:fighter:optional_feature:maneuver")
	s.Require().NotNil(maneuvers)
	s.Equal(3, maneuvers.Quantity)
	s.Len(maneuvers.Options, 4)

	out = s.resolve(id, maneuvers.ID, "maneuver-riposte", "maneuver-parry", "maneuver-trip-attack")
	s.Subset(grantNames(out.Character.Features), []string{"Maneuver: Riposte", "Maneuver: Parry", "Maneuver: Trip Attack"})

	s.roller.push(7)
	out = s.resolve(id, "level_up:fighter:3:hit_points", character.HitPointsRoll)
	s.Require().Len(out.Character.HitPointRolls, 2)
	s.Equal(7, out.Character.HitPointRolls[1].Value)
	s.True(out.Character.HitPointRolls[1].Rolled)
	s.Empty(s.pending(id))

	out = s.levelUp(id)
	asi := findChoice(out.PendingChoices, "level_up:fighter:4:asi")
	s.Require().NotNil(asi)
	s.Equal(2, asi.Quantity)

	before := out.Character.FinalAbilityScores()[dnd5e.AbilityStrength]
	out = s.resolve(id, asi.ID, dnd5e.AbilityStrength, dnd5e.AbilityStrength)
	s.Equal(before+2, out.Character.FinalAbilityScores()[dnd5e.AbilityStrength])

	_, err = s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard})
	s.True(errors.IsFailedPrecondition(err), "the starting class is fixed after level one")
}

func (s *OrchestratorTestSuite) TestASICapsAtTwenty() {
	id := s.buildFighter()
	scores := standardScores()
	scores[dnd5e.AbilityStrength] = 18
	s.must(s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodManual, Scores: scores,
	}))

	for level := 2; level <= 4; level++ {
		out := s.levelUp(id)
		for _, c := range out.PendingChoices {
			switch c.Type {
			case dnd5e.ChoiceTypeHitPoints:
				s.resolve(id, c.ID, character.HitPointsAverage)
			case dnd5e.ChoiceTypeSubclass:
				s.resolve(id, c.ID, "champion")
			}
		}
	}

	out := s.resolve(id, "level_up:fighter:4:asi", dnd5e.AbilityStrength, dnd5e.AbilityStrength)
	s.Equal(20, out.Character.FinalAbilityScores()[dnd5e.AbilityStrength])
}

func (s *OrchestratorTestSuite) TestLevelUpWizardSpells() {
	id := s.create()
	s.must(s.orchestrator.SetClass(s.ctx, &charactersvc.SetClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard}))
	s.resolve(id, "class:spell:spells",
		"magic-missile", "shield", "sleep", "burning-hands", "detect-magic", "thunderwave")

	out := s.levelUp(id)
	s.NotNil(findChoice(out.PendingChoices, "level_up:wizard:2:subclass"))
	s.Nil(findChoice(out.PendingChoices, "level_up:wizard:2:spell:cantrips"), "no new cantrips at level 2")

	spells := findChoice(out.PendingChoices, "level_up:wizard:2:spell:spells")
	s.Require().NotNil(spells)
	s.Equal(2, spells.Quantity)
	s.ElementsMatch([]string{"feather-fall", "mage-armor"}, spells.OptionIDs(), "known spells are not offered again")

	out = s.resolve(id, "level_up:wizard:2:subclass", testutils.SubclassEvoke)
	s.Contains(grantNames(out.Character.Features), "Evocation Savant")
}

func (s *OrchestratorTestSuite) TestAddClassRequirements() {
	id := s.buildFighter()

	_, err := s.orchestrator.AddClass(s.ctx, &charactersvc.AddClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Contains(err.Error(), "INT 13")

	_, err = s.orchestrator.AddClass(s.ctx, &charactersvc.AddClassInput{CharacterID: id, ClassSlug: testutils.ClassFighter})
	s.True(errors.IsAlreadyExists(err))

	_, err = s.orchestrator.LevelUp(s.ctx, &charactersvc.LevelUpInput{CharacterID: id, ClassSlug: testutils.ClassWizard})
	s.True(errors.IsFailedPrecondition(err), "new classes go through AddClass")

	scores := standardScores()
	scores[dnd5e.AbilityIntelligence] = 12
	s.must(s.orchestrator.SetAbilityScores(s.ctx, &charactersvc.SetAbilityScoresInput{
		CharacterID: id, Method: dnd5e.AbilityMethodManual, Scores: scores,
	}))

	out := s.must(s.orchestrator.AddClass(s.ctx, &charactersvc.AddClassInput{CharacterID: id, ClassSlug: testutils.ClassWizard}))
	s.Len(out.Character.Classes, 2)
	s.Equal(2, out.Character.TotalLevel())
	s.Equal(testutils.ClassFighter, out.Character.PrimaryClass().ClassSlug)

	s.NotNil(findChoice(out.PendingChoices, "level_up:wizard:1:hit_points"))
	cantrips := findChoice(out.PendingChoices, "level_up:wizard:1:spell:cantrips")
	s.Require().NotNil(cantrips)
	s.Equal(3, cantrips.Quantity)
	spells := findChoice(out.PendingChoices, "level_up:wizard:1:spell:spells")
	s.Require().NotNil(spells)
	s.Equal(6, spells.Quantity)
	s.Nil(findChoice(out.PendingChoices, "class:spell:cantrips"), "creation choices follow the starting class only")

	out = s.resolve(id, cantrips.ID, "fire-bolt", "light", "mage-hand")
	s.Len(out.Character.Spells, 3)

	stats, err := s.orchestrator.Stats(s.ctx, &charactersvc.StatsInput{CharacterID: id})
	s.Require().NoError(err)
	s.Require().Len(stats.Stats.Spellcasting, 1)
	s.Equal(testutils.ClassWizard, stats.Stats.Spellcasting[0].ClassSlug)
}

func (s *OrchestratorTestSuite) TestAddClassForceSkipsRequirements() {
	id := s.buildFighter()

	out := s.must(s.orchestrator.AddClass(s.ctx, &charactersvc.AddClassInput{
		CharacterID: id, ClassSlug: testutils.ClassWizard, Force: true,
	}))
	s.Len(out.Character.Classes, 2)
	s.Equal(1, out.Character.ClassLink(testutils.ClassWizard).Level)

	_, err := s.orchestrator.AddClass(s.ctx, &charactersvc.AddClassInput{
		CharacterID: id, ClassSlug: testutils.ClassCleric, Force: true,
	})
	s.True(errors.IsFailedPrecondition(err), "pending choices still block a new class")
}
