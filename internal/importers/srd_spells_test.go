package importers_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/clients/external"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type fakeSpellClient struct {
	spells []*dnd5e.Spell
	err    error
}

func (c *fakeSpellClient) ListSpells(_ context.Context, _ *external.ListSpellsInput) ([]*dnd5e.Spell, error) {
	return c.spells, c.err
}

func (c *fakeSpellClient) GetSpell(_ context.Context, index string) (*dnd5e.Spell, error) {
	for _, s := range c.spells {
		if s.Slug == index {
			return s, nil
		}
	}
	return nil, errors.NotFoundf("spell %s not found", index)
}

func srdSpell(name string, level int) *dnd5e.Spell {
	s := &dnd5e.Spell{
		Record:     dnd5e.Record{Name: name, Sources: []dnd5e.SourceCitation{{Code: external.SourceCode}}},
		Level:      level,
		SchoolCode: "EV",
	}
	s.SetIdentity()
	return s
}

type SRDSpellImporterTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *compendium.Store
	client *fakeSpellClient
	srd    *importers.SRDSpellImporter
	config *importers.Config
}

func (s *SRDSpellImporterTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := compendium.Open(s.ctx, &compendium.Config{Path: filepath.Join(s.T().TempDir(), "srd.db")})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })

	s.config = &importers.Config{Store: store, Logger: zap.NewNop()}
	s.client = &fakeSpellClient{}
	s.srd, err = importers.NewSRDSpellImporter(&importers.SRDSpellImporterConfig{Importer: s.config, Client: s.client})
	s.Require().NoError(err)
}

func (s *SRDSpellImporterTestSuite) TestImportsNewSpells() {
	s.client.spells = []*dnd5e.Spell{srdSpell("Fire Bolt", 0), srdSpell("Magic Missile", 1)}

	result, err := s.srd.Run(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal("srd-spells", result.Importer)
	s.Equal(2, result.Total)
	s.Equal(2, result.Created)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fire-bolt")
	s.Require().NoError(err)
	s.Equal("srd:fire-bolt", row.FullSlug)
}

func (s *SRDSpellImporterTestSuite) TestSkipsSpellsFromCompendiumFiles() {
	spells, err := importers.NewSpellImporter(s.config)
	s.Require().NoError(err)
	_, err = spells.ImportReader(s.ctx, strings.NewReader(compendiumXML(fireballXML)), "spells-phb.xml")
	s.Require().NoError(err)

	s.client.spells = []*dnd5e.Spell{srdSpell("Fireball", 3), srdSpell("Light", 0)}
	result, err := s.srd.Run(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(2, result.Total)
	s.Equal(1, result.Skipped)
	s.Equal(1, result.Created)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	s.Equal("phb:fireball", row.FullSlug)
}

func (s *SRDSpellImporterTestSuite) TestRerunUpdatesSRDSpells() {
	s.client.spells = []*dnd5e.Spell{srdSpell("Light", 0)}
	_, err := s.srd.Run(s.ctx, nil)
	s.Require().NoError(err)

	s.client.spells = []*dnd5e.Spell{srdSpell("Light", 0)}
	result, err := s.srd.Run(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(1, result.Updated)
	s.Equal(0, result.Skipped)
}

func (s *SRDSpellImporterTestSuite) TestClientError() {
	s.client.err = errors.Unavailable("api down")
	_, err := s.srd.Run(s.ctx, nil)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *SRDSpellImporterTestSuite) TestRequiresClient() {
	_, err := importers.NewSRDSpellImporter(&importers.SRDSpellImporterConfig{Importer: s.config})
	s.True(errors.IsInvalidArgument(err))
}

func TestSRDSpellImporterSuite(t *testing.T) {
	suite.Run(t, new(SRDSpellImporterTestSuite))
}
