package entityfixtures_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/entityfixtures"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type ExtractorTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *compendium.Store
	extractor *entityfixtures.Extractor
	dir       string
}

func (s *ExtractorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutils.NewTestStore(s.T())
	testutils.SeedCompendium(s.T(), s.store)
	s.dir = s.T().TempDir()
	var err error
	s.extractor, err = entityfixtures.New(&entityfixtures.Config{Store: s.store})
	s.Require().NoError(err)
}

// names reads a written fixture and returns the entity names in file order
func (s *ExtractorTestSuite) names(path string) []string {
	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	var records []dnd5e.Record
	s.Require().NoError(json.Unmarshal(data, &records))
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func (s *ExtractorTestSuite) TestSpellsCoverEveryLevel() {
	out, err := s.extractor.Extract(s.ctx, &entityfixtures.ExtractInput{
		Types:     []dnd5e.EntityType{dnd5e.EntityTypeSpell},
		OutputDir: s.dir,
		Limit:     5,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Files, 1)
	s.Equal(filepath.Join(s.dir, "entities", "spell.json"), out.Files[0].Path)
	s.Equal(5, out.Files[0].Count)

	// one spell per level 0-3 in name order, then the first unpicked spell
	s.Equal([]string{"Fire Bolt", "Bless", "Invisibility", "Counterspell", "Burning Hands"}, s.names(out.Files[0].Path))
}

func (s *ExtractorTestSuite) TestBaseClassesBeforeSubclasses() {
	out, err := s.extractor.Extract(s.ctx, &entityfixtures.ExtractInput{
		Types:     []dnd5e.EntityType{dnd5e.EntityTypeClass},
		OutputDir: s.dir,
		Limit:     4,
	})
	s.Require().NoError(err)
	s.Equal([]string{"Cleric", "Fighter", "Wizard", "Battle Master"}, s.names(out.Files[0].Path))
}

func (s *ExtractorTestSuite) TestMonsterCoverageIsKeptPastTheLimit() {
	for _, m := range []*dnd5e.Monster{
		{Record: dnd5e.Record{Name: "Adult Red Dragon"}, ChallengeRating: "17", SizeCode: "H", Type: "dragon"},
		{Record: dnd5e.Record{Name: "Bandit"}, ChallengeRating: "1/8", SizeCode: "M", Type: "humanoid"},
		{Record: dnd5e.Record{Name: "Goblin"}, ChallengeRating: "1/4", SizeCode: "S", Type: "humanoid"},
		{Record: dnd5e.Record{Name: "Orc"}, ChallengeRating: "1/2", SizeCode: "M", Type: "Humanoid"},
		{Record: dnd5e.Record{Name: "Skeleton"}, ChallengeRating: "1/4", SizeCode: "M", Type: "undead"},
		{Record: dnd5e.Record{Name: "Zombie"}, ChallengeRating: "1/4", SizeCode: "M", Type: "undead"},
	} {
		m.SetIdentity()
		_, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: m})
		s.Require().NoError(err)
	}

	out, err := s.extractor.Extract(s.ctx, &entityfixtures.ExtractInput{
		Types:     []dnd5e.EntityType{dnd5e.EntityTypeMonster},
		OutputDir: s.dir,
		Limit:     2,
	})
	s.Require().NoError(err)
	// one per rating in numeric order, then an unpicked medium creature for
	// size coverage; every type is covered by then
	s.Equal([]string{"Bandit", "Goblin", "Orc", "Adult Red Dragon", "Skeleton"}, s.names(out.Files[0].Path))
}

func (s *ExtractorTestSuite) TestEveryType() {
	out, err := s.extractor.Extract(s.ctx, &entityfixtures.ExtractInput{OutputDir: s.dir})
	s.Require().NoError(err)
	s.Len(out.Files, len(dnd5e.AllEntityTypes()))
	for _, f := range out.Files {
		s.FileExists(f.Path)
		if f.Type == dnd5e.EntityTypeMonster {
			s.Zero(f.Count)
			s.Empty(s.names(f.Path))
		}
	}
}

func (s *ExtractorTestSuite) TestOutputDirRequired() {
	_, err := s.extractor.Extract(s.ctx, &entityfixtures.ExtractInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}
