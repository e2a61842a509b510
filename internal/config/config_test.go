package config_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestLoadDefaults() {
	cfg, err := config.Load()
	s.Require().NoError(err)
	s.Equal("compendium.db", cfg.DBPath)
	s.Equal(50051, cfg.GRPCPort)
	s.Equal("15m0s", cfg.CacheTTL.String())
}

func (s *ConfigTestSuite) TestLoadFromEnv() {
	s.T().Setenv("COMPENDIUM_DB_PATH", "/tmp/x.db")
	s.T().Setenv("COMPENDIUM_GRPC_PORT", "9000")
	s.T().Setenv("COMPENDIUM_CACHE_TTL", "1h")

	cfg, err := config.Load()
	s.Require().NoError(err)
	s.Equal("/tmp/x.db", cfg.DBPath)
	s.Equal(9000, cfg.GRPCPort)
	s.Equal("1h0m0s", cfg.CacheTTL.String())
}

func (s *ConfigTestSuite) TestLoadInvalid() {
	s.T().Setenv("COMPENDIUM_GRPC_PORT", "0")

	_, err := config.Load()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "COMPENDIUM_GRPC_PORT")
}

func (s *ConfigTestSuite) TestRules() {
	rules, err := config.LoadRules()
	s.Require().NoError(err)

	xp, ok := rules.XPForChallengeRating("1/4")
	s.True(ok)
	s.Equal(50, xp)

	xp, ok = rules.XPForChallengeRating("30")
	s.True(ok)
	s.Equal(155000, xp)

	_, ok = rules.XPForChallengeRating("31")
	s.False(ok)

	s.True(rules.IsASILevel("fighter", 6))
	s.False(rules.IsASILevel("wizard", 6))
	s.True(rules.IsASILevel("Wizard", 19))

	s.Equal(config.StartingWealth{Dice: 5, Multiplier: 1}, rules.WealthFor("monk"))
	s.Equal(config.StartingWealth{Dice: 4, Multiplier: 10}, rules.WealthFor("blood-hunter"))
	s.Equal([]int{5, 11, 17}, rules.CantripScalingLevels)
	s.NotEmpty(rules.CharacterNames)
}

func (s *ConfigTestSuite) TestSpellcastingProgression() {
	rules := config.MustRules()

	wizard, ok := rules.SpellcastingFor("Wizard")
	s.Require().True(ok)
	s.Equal(config.SpellcastingSpellbook, wizard.Type)
	s.Equal(3, wizard.CantripsAt(1))
	s.Equal(4, wizard.CantripsAt(9))
	s.Equal(6, wizard.SpellsKnownAt(1))

	ranger, ok := rules.SpellcastingFor("ranger")
	s.Require().True(ok)
	s.Equal(0, ranger.SpellsKnownAt(1))
	s.Equal(3, ranger.SpellsKnownAt(4))

	_, ok = rules.SpellcastingFor("barbarian")
	s.False(ok)
}

func (s *ConfigTestSuite) TestFeatureTracks() {
	rules := config.MustRules()

	warlock := rules.FeatureTracksFor("warlock", "")
	s.Require().Contains(warlock, "eldritch_invocation")
	s.Equal(0, warlock["eldritch_invocation"].KnownAt(1))
	s.Equal(3, warlock["eldritch_invocation"].KnownAt(6))

	fighter := rules.FeatureTracksFor("fighter", "fighter-battle-master")
	s.Contains(fighter, "maneuver")
	s.Contains(fighter, "fighting_style")
	s.NotContains(fighter, "rune")

	for featureType, track := range rules.OptionalFeatures {
		s.NotEmpty(track.Name, featureType)
		s.NotEmpty(track.CounterNames, featureType)
	}
	s.Equal([]string{"Eldritch Invocations Known", "Eldritch Invocations"}, warlock["eldritch_invocation"].CounterNames)
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
