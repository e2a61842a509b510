package counteraudit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/counteraudit"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type AuditorTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *compendium.Store
	rules *config.Rules
}

func (s *AuditorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutils.NewTestStore(s.T())
	s.rules = &config.Rules{OptionalFeatures: map[string]config.FeatureTrack{
		"eldritch_invocation": {
			Name:         "Eldritch Invocations",
			Class:        "warlock",
			CounterNames: []string{"Eldritch Invocations Known", "Eldritch Invocations"},
			Progression:  map[int]int{2: 2, 5: 3},
		},
		"maneuver": {
			Name:         "Battle Master Maneuvers",
			Class:        "fighter",
			Subclass:     "battle-master",
			CounterNames: []string{"Maneuvers Known"},
			Progression:  map[int]int{3: 3, 7: 5},
		},
	}}
}

func (s *AuditorTestSuite) upsert(cls *dnd5e.CharacterClass, parentID *int64) int64 {
	cls.SetIdentity()
	out, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: cls, ParentID: parentID})
	s.Require().NoError(err)
	return out.ID
}

func (s *AuditorTestSuite) audit() *counteraudit.Report {
	auditor, err := counteraudit.New(&counteraudit.Config{Store: s.store, Rules: s.rules})
	s.Require().NoError(err)
	report, err := auditor.Audit(s.ctx)
	s.Require().NoError(err)
	return report
}

func (s *AuditorTestSuite) seedFighter(maneuvers []dnd5e.Counter) {
	fighterID := s.upsert(&dnd5e.CharacterClass{
		Record: dnd5e.Record{Name: "Fighter"},
		HitDie: 10,
		// subclass counters on the parent row are ignored
		Counters: []dnd5e.Counter{{Name: "Maneuvers Known", Level: 3, Value: 99, Subclass: "Battle Master"}},
	}, nil)
	s.upsert(&dnd5e.CharacterClass{
		Record:     dnd5e.Record{Name: "Battle Master", Slug: "fighter-battle-master"},
		ParentSlug: "fighter",
		HitDie:     10,
		Counters:   maneuvers,
	}, &fighterID)
}

func (s *AuditorTestSuite) TestMatchingCounters() {
	s.upsert(&dnd5e.CharacterClass{
		Record: dnd5e.Record{Name: "Warlock"},
		HitDie: 8,
		Counters: []dnd5e.Counter{
			{Name: "Eldritch Invocations", Level: 2, Value: 2},
			{Name: "Eldritch Invocations", Level: 5, Value: 3},
		},
	}, nil)
	s.seedFighter([]dnd5e.Counter{
		{Name: "Maneuvers Known", Level: 3, Value: 3},
		{Name: "Maneuvers Known", Level: 7, Value: 5},
	})

	report := s.audit()

	s.Len(report.Checks, 4)
	s.Empty(report.Issues())
	for _, c := range report.Checks {
		if c.Feature == "eldritch_invocation" {
			s.Equal("Eldritch Invocations", c.CounterName)
		}
	}
	s.Contains(report.Table(true), "Maneuvers Known")
}

func (s *AuditorTestSuite) TestMismatchAndMissingLevel() {
	s.upsert(&dnd5e.CharacterClass{
		Record:   dnd5e.Record{Name: "Warlock"},
		HitDie:   8,
		Counters: []dnd5e.Counter{{Name: "Eldritch Invocations Known", Level: 2, Value: 3}},
	}, nil)
	s.seedFighter([]dnd5e.Counter{
		{Name: "Maneuvers Known", Level: 3, Value: 3},
		{Name: "Maneuvers Known", Level: 7, Value: 5},
	})

	issues := s.audit().Issues()

	s.Require().Len(issues, 2)
	s.Equal(counteraudit.ProblemMismatch, issues[0].Problem)
	s.Equal(2, issues[0].Level)
	s.Equal(2, issues[0].Expected)
	s.Require().NotNil(issues[0].Actual)
	s.Equal(3, *issues[0].Actual)
	s.Equal(counteraudit.ProblemCounterNotFound, issues[1].Problem)
	s.Equal(5, issues[1].Level)
	s.Nil(issues[1].Actual)
}

func (s *AuditorTestSuite) TestSubclassCountersAreRead() {
	s.upsert(&dnd5e.CharacterClass{
		Record: dnd5e.Record{Name: "Warlock"},
		HitDie: 8,
		Counters: []dnd5e.Counter{
			{Name: "Eldritch Invocations Known", Level: 2, Value: 2},
			{Name: "Eldritch Invocations Known", Level: 5, Value: 3},
		},
	}, nil)
	s.seedFighter([]dnd5e.Counter{{Name: "Maneuvers Known", Level: 3, Value: 3}})

	issues := s.audit().Issues()

	s.Require().Len(issues, 1)
	s.Equal("maneuver", issues[0].Feature)
	s.Equal(7, issues[0].Level)
	s.Equal(counteraudit.ProblemCounterNotFound, issues[0].Problem)
}

func (s *AuditorTestSuite) TestMissingClasses() {
	s.upsert(&dnd5e.CharacterClass{Record: dnd5e.Record{Name: "Fighter"}, HitDie: 10}, nil)

	issues := s.audit().Issues()

	s.Require().Len(issues, 2)
	s.Equal(counteraudit.ProblemClassNotFound, issues[0].Problem)
	s.Equal("warlock", issues[0].Class)
	s.Equal(counteraudit.ProblemSubclassNotFound, issues[1].Problem)
	s.Equal("battle-master", issues[1].Subclass)
	s.Contains(s.audit().Table(false), counteraudit.ProblemSubclassNotFound)
}

func (s *AuditorTestSuite) TestConfigValidation() {
	_, err := counteraudit.New(&counteraudit.Config{Store: s.store})
	s.Error(err)
	_, err = counteraudit.New(nil)
	s.Error(err)
}

func TestAuditorTestSuite(t *testing.T) {
	suite.Run(t, new(AuditorTestSuite))
}
