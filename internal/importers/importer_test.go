package importers_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

func compendiumXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><compendium version="5">` + body + `</compendium>`
}

// recordingCache records invalidated types
type recordingCache struct {
	mu    sync.Mutex
	types []dnd5e.EntityType
	err   error
}

func (c *recordingCache) Invalidate(_ context.Context, t dnd5e.EntityType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, t)
	return c.err
}

const wizardXML = `<class>
	<name>Wizard</name>
	<hd>6</hd>
	<spellAbility>Intelligence</spellAbility>
	<autolevel level="1">
		<feature>
			<name>Arcane Recovery</name>
			<text>You have learned to regain some of your magical energy by studying your spellbook.</text>
		</feature>
	</autolevel>
</class>`

const fireballXML = `<spell>
	<name>Fireball</name>
	<level>3</level>
	<school>EV</school>
	<time>1 action</time>
	<range>150 feet</range>
	<components>V, S, M (a tiny ball of bat guano and sulfur)</components>
	<duration>Instantaneous</duration>
	<classes>Wizard, Bard</classes>
	<text>Each creature in a 20-foot sphere must make a Dexterity saving throw. A target takes 8d6 fire damage on a failed save, or half as much damage on a successful one.</text>
	<roll description="Fire Damage">8d6</roll>
</spell>`

type ImporterTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *compendium.Store
	cache  *recordingCache
	logs   *observer.ObservedLogs
	config *importers.Config
}

func (s *ImporterTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := compendium.Open(s.ctx, &compendium.Config{
		Path: filepath.Join(s.T().TempDir(), "compendium.db"),
	})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })

	core, logs := observer.New(zap.DebugLevel)
	s.logs = logs
	s.cache = &recordingCache{}
	s.config = &importers.Config{Store: store, Cache: s.cache, Logger: zap.New(core)}
}

func (s *ImporterTestSuite) importClasses(xml string) *importers.FileResult {
	classes, err := importers.NewClassImporter(s.config)
	s.Require().NoError(err)
	result, err := classes.ImportReader(s.ctx, strings.NewReader(compendiumXML(xml)), "classes.xml")
	s.Require().NoError(err)
	return result
}

func (s *ImporterTestSuite) importSpells(xml string) *importers.FileResult {
	spells, err := importers.NewSpellImporter(s.config)
	s.Require().NoError(err)
	result, err := spells.ImportReader(s.ctx, strings.NewReader(compendiumXML(xml)), "spells.xml")
	s.Require().NoError(err)
	return result
}

func (s *ImporterTestSuite) TestConfigRequiresStore() {
	_, err := importers.NewSpellImporter(&importers.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ImporterTestSuite) TestSpellLinksToStoredClasses() {
	s.importClasses(wizardXML)

	result := s.importSpells(fireballXML)
	s.Equal(1, result.Total)
	s.Equal(1, result.Created)
	s.Equal(0, result.Failed)
	s.Contains(result.Warnings, "fireball: class not found: Bard")

	rows, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: "wizard"})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("fireball", rows[0].Slug)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	counts, err := s.store.ChildCounts(s.ctx, row.ID)
	s.Require().NoError(err)
	s.Equal(1, counts["entity_sources"])
	s.Equal(1, counts["spell_effects"])
}

func (s *ImporterTestSuite) TestReimportUpdates() {
	s.Equal(1, s.importSpells(fireballXML).Created)

	result := s.importSpells(fireballXML)
	s.Equal(0, result.Created)
	s.Equal(1, result.Updated)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	counts, err := s.store.ChildCounts(s.ctx, row.ID)
	s.Require().NoError(err)
	s.Equal(1, counts["spell_effects"])
}

func (s *ImporterTestSuite) TestBadRecordDoesNotStopFile() {
	result := s.importSpells(`<spell><level>1</level></spell>` + fireballXML)
	s.Equal(2, result.Total)
	s.Equal(1, result.Created)
	s.Equal(1, result.Failed)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0].Message, "has no slug")
	s.Equal(1, s.logs.FilterMessage("failed to import record").Len())
}

func (s *ImporterTestSuite) TestCacheInvalidatedAfterImport() {
	s.importSpells(fireballXML)
	s.Equal([]dnd5e.EntityType{dnd5e.EntityTypeSpell}, s.cache.types)
}

func (s *ImporterTestSuite) TestCacheFailureIsAWarning() {
	s.cache.err = errors.Unavailable("redis down")

	result := s.importSpells(fireballXML)
	s.Equal(1, result.Created)
	s.Contains(result.Warnings, "cache invalidation failed: UNAVAILABLE: redis down")
}

func (s *ImporterTestSuite) TestSpellClassMappingAddsClasses() {
	s.importClasses(wizardXML + `<class><name>Sorcerer</name><hd>6</hd></class>`)
	s.importSpells(fireballXML)

	mappings, err := importers.NewSpellClassMappingImporter(s.config)
	s.Require().NoError(err)
	result, err := mappings.ImportReader(s.ctx, strings.NewReader(compendiumXML(`
		<spell><name>Fireball</name><classes>Sorcerer</classes></spell>
		<spell><name>Mind Spike</name><classes>Sorcerer</classes></spell>`)), "spells-phb+xge.xml")
	s.Require().NoError(err)
	s.Equal(1, result.Updated)
	s.Equal(1, result.Skipped)
	s.Contains(result.Warnings, "mind-spike: spell not found: Mind Spike")

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	spell := &dnd5e.Spell{}
	s.Require().NoError(row.Decode(spell))
	s.Equal([]string{"Wizard", "Bard", "Sorcerer"}, spell.Classes)
	s.Equal(3, spell.Level)

	rows, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: "sorcerer"})
	s.Require().NoError(err)
	s.Len(rows, 1)
}

func (s *ImporterTestSuite) TestSupplementalClassMerges() {
	s.importClasses(wizardXML)

	result := s.importClasses(`<class>
		<name>Wizard</name>
		<autolevel level="2">
			<feature>
				<name>Bladesong Study</name>
				<text>You study the ways of the blade.</text>
			</feature>
		</autolevel>
	</class>`)
	s.Equal(1, result.Updated)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeClass, "wizard")
	s.Require().NoError(err)
	wizard := &dnd5e.CharacterClass{}
	s.Require().NoError(row.Decode(wizard))
	s.Equal(6, wizard.HitDie)

	var names []string
	for _, f := range wizard.Features {
		names = append(names, f.Name)
	}
	s.Contains(names, "Arcane Recovery")
	s.Contains(names, "Bladesong Study")
}

func (s *ImporterTestSuite) TestSupplementWithoutBaseCreatesStub() {
	result := s.importClasses(`<class><name>Artificer</name></class>`)
	s.Equal(1, result.Created)
	s.Contains(result.Warnings, "artificer: base class not stored yet, creating stub")
}

func (s *ImporterTestSuite) TestSupplementBeforeBaseKeepsSubclasses() {
	s.importClasses(`<class>
		<name>Fighter</name>
		<autolevel level="3">
			<feature>
				<name>Martial Archetype: Echo Knight</name>
				<text>You summon an echo of yourself.</text>
			</feature>
		</autolevel>
	</class>`)

	result := s.importClasses(`<class>
		<name>Fighter</name>
		<hd>10</hd>
		<autolevel level="1">
			<feature>
				<name>Second Wind</name>
				<text>You have a limited well of stamina.</text>
			</feature>
		</autolevel>
		<autolevel level="3">
			<feature>
				<name>Martial Archetype: Champion</name>
				<text>You focus on raw physical power.</text>
			</feature>
		</autolevel>
	</class>`)
	s.Equal(1, result.Updated)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeClass, "fighter")
	s.Require().NoError(err)
	fighter := &dnd5e.CharacterClass{}
	s.Require().NoError(row.Decode(fighter))
	s.Equal(10, fighter.HitDie)

	var subclasses []string
	for _, sc := range fighter.Subclasses {
		subclasses = append(subclasses, sc.Name)
	}
	s.ElementsMatch([]string{"Champion", "Echo Knight"}, subclasses)

	echo, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeClass, importers.SubclassSlug("fighter", "Echo Knight"))
	s.Require().NoError(err)
	s.Require().NotNil(echo.ParentID)
	s.Equal(row.ID, *echo.ParentID)
}

func (s *ImporterTestSuite) TestImportFileMissing() {
	spells, err := importers.NewSpellImporter(s.config)
	s.Require().NoError(err)
	_, err = spells.ImportFile(s.ctx, filepath.Join(s.T().TempDir(), "nope.xml"))
	s.True(errors.IsNotFound(err))
}

func (s *ImporterTestSuite) TestImportFile() {
	path := filepath.Join(s.T().TempDir(), "spells-phb.xml")
	s.Require().NoError(os.WriteFile(path, []byte(compendiumXML(fireballXML)), 0o600))

	spells, err := importers.NewSpellImporter(s.config)
	s.Require().NoError(err)
	result, err := spells.ImportFile(s.ctx, path)
	s.Require().NoError(err)
	s.Equal(path, result.Path)
	s.Equal("spells", result.Importer)

	logged := s.logs.FilterMessage("imported file").All()
	s.Require().Len(logged, 1)
	s.Equal(int64(1), logged[0].ContextMap()["created"])
}

func (s *ImporterTestSuite) TestImportCanceled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	spells, err := importers.NewSpellImporter(s.config)
	s.Require().NoError(err)
	_, err = spells.ImportReader(ctx, strings.NewReader(compendiumXML(fireballXML)), "spells.xml")
	s.Require().Error(err)
	s.Equal(errors.CodeCanceled, errors.GetCode(err))
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterTestSuite))
}
