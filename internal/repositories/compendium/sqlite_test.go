package compendium_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *fixedClock
	store *compendium.Store
	logs  *observer.ObservedLogs
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fixedClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}

	core, logs := observer.New(zap.InfoLevel)
	s.logs = logs

	store, err := compendium.Open(s.ctx, &compendium.Config{
		Path:   filepath.Join(s.T().TempDir(), "compendium.db"),
		Clock:  s.clock,
		Logger: zap.New(core),
	})
	s.Require().NoError(err)
	s.store = store
	s.T().Cleanup(func() { _ = store.Close() })
}

func (s *StoreTestSuite) fireball() *dnd5e.Spell {
	return &dnd5e.Spell{
		Record: dnd5e.Record{Slug: "fireball", FullSlug: "phb:fireball", Name: "Fireball"},
		Level:  3,
	}
}

func (s *StoreTestSuite) TestOpenAppliesMigrationsOnce() {
	s.Equal(2, s.logs.FilterMessage("applied migration").Len())

	s.Require().NoError(s.store.Migrate(s.ctx))
	s.Equal(2, s.logs.FilterMessage("applied migration").Len())
}

func (s *StoreTestSuite) TestConfigValidate() {
	_, err := compendium.Open(s.ctx, &compendium.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = compendium.Open(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestUpsertEntity() {
	spell := s.fireball()

	out, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: spell})
	s.Require().NoError(err)
	s.True(out.Created)
	s.Equal(out.ID, spell.ID)

	s.clock.now = s.clock.now.Add(time.Hour)
	spell.Level = 4
	again, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: spell})
	s.Require().NoError(err)
	s.False(again.Created)
	s.Equal(out.ID, again.ID)

	row, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.Require().NoError(err)
	s.Equal("phb:fireball", row.FullSlug)
	s.True(row.UpdatedAt.After(row.CreatedAt))

	var decoded dnd5e.Spell
	s.Require().NoError(row.Decode(&decoded))
	s.Equal(4, decoded.Level)

	entity, err := row.Entity()
	s.Require().NoError(err)
	s.Equal(out.ID, entity.EntityID())
	s.Equal("spell", entity.GetType())
}

func (s *StoreTestSuite) TestUpsertEntityValidation() {
	testCases := []struct {
		name  string
		input compendium.UpsertEntityInput
	}{
		{name: "nil entity", input: compendium.UpsertEntityInput{}},
		{name: "missing slug", input: compendium.UpsertEntityInput{Entity: &dnd5e.Feat{Record: dnd5e.Record{Name: "Alert"}}}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.store.UpsertEntity(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *StoreTestSuite) TestGetEntityNotFound() {
	_, err := s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "wish")
	s.True(errors.IsNotFound(err))

	_, err = s.store.GetEntityByID(s.ctx, 999)
	s.True(errors.IsNotFound(err))
}

func (s *StoreTestSuite) TestListEntities() {
	for _, name := range []string{"Magic Missile", "Fireball", "Mage Hand"} {
		spell := &dnd5e.Spell{Record: dnd5e.Record{Slug: dnd5e.Slugify(name), FullSlug: "phb:" + dnd5e.Slugify(name), Name: name}}
		_, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: spell})
		s.Require().NoError(err)
	}

	s.Run("all ordered by name", func() {
		out, err := s.store.ListEntities(s.ctx, compendium.ListEntitiesInput{Type: dnd5e.EntityTypeSpell})
		s.Require().NoError(err)
		s.Equal(3, out.Total)
		s.Require().Len(out.Rows, 3)
		s.Equal("Fireball", out.Rows[0].Name)
	})

	s.Run("name filter with paging", func() {
		out, err := s.store.ListEntities(s.ctx, compendium.ListEntitiesInput{
			Type:         dnd5e.EntityTypeSpell,
			NameContains: "ma",
			Limit:        1,
			Offset:       1,
		})
		s.Require().NoError(err)
		s.Equal(2, out.Total)
		s.Require().Len(out.Rows, 1)
		s.Equal("Magic Missile", out.Rows[0].Name)
	})

	s.Run("unknown type", func() {
		_, err := s.store.ListEntities(s.ctx, compendium.ListEntitiesInput{Type: "vehicle"})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *StoreTestSuite) TestClassSpells() {
	wizard := &dnd5e.CharacterClass{Record: dnd5e.Record{Slug: "wizard", FullSlug: "phb:wizard", Name: "Wizard"}}
	wizOut, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: wizard})
	s.Require().NoError(err)

	evoker := &dnd5e.CharacterClass{Record: dnd5e.Record{Slug: "school-of-evocation", FullSlug: "phb:school-of-evocation", Name: "School of Evocation"}, ParentSlug: "wizard"}
	_, err = s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: evoker, ParentID: &wizOut.ID})
	s.Require().NoError(err)

	fireball := s.fireball()
	fbOut, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: fireball})
	s.Require().NoError(err)
	light := &dnd5e.Spell{Record: dnd5e.Record{Slug: "light", FullSlug: "phb:light", Name: "Light"}}
	lightOut, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: light})
	s.Require().NoError(err)

	added, err := s.store.LinkClassSpell(s.ctx, wizOut.ID, fbOut.ID)
	s.Require().NoError(err)
	s.True(added)
	added, err = s.store.LinkClassSpell(s.ctx, wizOut.ID, fbOut.ID)
	s.Require().NoError(err)
	s.False(added)
	_, err = s.store.LinkClassSpell(s.ctx, wizOut.ID, lightOut.ID)
	s.Require().NoError(err)

	s.Run("all levels ordered by level", func() {
		rows, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: "wizard"})
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("Light", rows[0].Name)
	})

	s.Run("subclass resolves to parent", func() {
		maxLevel := 0
		rows, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: "school-of-evocation", MaxLevel: &maxLevel})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("light", rows[0].Slug)
	})

	s.Run("unknown class", func() {
		_, err := s.store.ClassSpells(s.ctx, compendium.ClassSpellsInput{ClassSlug: "artificer"})
		s.True(errors.IsNotFound(err))
	})
}

func (s *StoreTestSuite) TestReplaceChildren() {
	spell := s.fireball()
	out, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: spell})
	s.Require().NoError(err)

	phb, err := s.store.LookupID(s.ctx, compendium.LookupSources, "phb")
	s.Require().NoError(err)
	fire, err := s.store.LookupID(s.ctx, compendium.LookupDamageTypes, "Fire")
	s.Require().NoError(err)
	dex, err := s.store.LookupID(s.ctx, compendium.LookupAbilityScores, "DEX")
	s.Require().NoError(err)

	children := &compendium.Children{
		Sources: []compendium.SourceRow{{SourceID: phb, Pages: "241"}},
		SpellEffects: []compendium.SpellEffectRow{{
			SpellEffect:  dnd5e.SpellEffect{EffectType: "damage", DiceFormula: "8d6", ScalingType: dnd5e.ScalingSpellSlotLevel, MinSpellSlot: 3},
			DamageTypeID: &fire,
		}},
		SavingThrows: []compendium.SavingThrowRow{{
			SavingThrow:    dnd5e.SavingThrow{Ability: "Dexterity", EffectOnSave: "half"},
			AbilityScoreID: &dex,
		}},
		RandomTables: []dnd5e.RandomTable{{
			Name:    "Scorch",
			Entries: []dnd5e.RandomTableEntry{{RollMin: 1, RollMax: 2, Result: "smoke"}},
		}},
		Tags: []string{"aoe", "aoe"},
	}
	s.Require().NoError(s.store.WithTx(s.ctx, func(q compendium.Queries) error {
		return q.ReplaceChildren(s.ctx, out.ID, children)
	}))

	counts, err := s.store.ChildCounts(s.ctx, out.ID)
	s.Require().NoError(err)
	s.Equal(map[string]int{
		"entity_sources": 1,
		"spell_effects":  1,
		"saving_throws":  1,
		"random_tables":  1,
		"entity_tags":    1,
	}, counts)

	s.Require().NoError(s.store.ReplaceChildren(s.ctx, out.ID, &compendium.Children{Tags: []string{"fire"}}))
	counts, err = s.store.ChildCounts(s.ctx, out.ID)
	s.Require().NoError(err)
	s.Equal(map[string]int{"entity_tags": 1}, counts)
}

func (s *StoreTestSuite) TestWithTxRollsBack() {
	err := s.store.WithTx(s.ctx, func(q compendium.Queries) error {
		if _, err := q.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: s.fireball()}); err != nil {
			return err
		}
		return errors.Internal("boom")
	})
	s.True(errors.IsInternal(err))

	_, err = s.store.GetEntity(s.ctx, dnd5e.EntityTypeSpell, "fireball")
	s.True(errors.IsNotFound(err))
}

func (s *StoreTestSuite) TestDeleteAllCascades() {
	out, err := s.store.UpsertEntity(s.ctx, compendium.UpsertEntityInput{Entity: s.fireball()})
	s.Require().NoError(err)
	s.Require().NoError(s.store.ReplaceChildren(s.ctx, out.ID, &compendium.Children{Tags: []string{"aoe"}}))

	n, err := s.store.DeleteAll(s.ctx, dnd5e.EntityTypeSpell)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	counts, err := s.store.ChildCounts(s.ctx, out.ID)
	s.Require().NoError(err)
	s.Empty(counts)
}

func (s *StoreTestSuite) TestLookups() {
	s.Run("by code and name", func() {
		byCode, err := s.store.LookupID(s.ctx, compendium.LookupSkills, "sleight-of-hand")
		s.Require().NoError(err)
		byName, err := s.store.LookupID(s.ctx, compendium.LookupSkills, "sleight of hand")
		s.Require().NoError(err)
		s.Equal(byCode, byName)
	})

	s.Run("unknown key", func() {
		_, err := s.store.LookupID(s.ctx, compendium.LookupLanguages, "Klingon")
		s.True(errors.IsNotFound(err))
	})

	s.Run("unknown table", func() {
		_, err := s.store.LookupID(s.ctx, "planes", "Astral")
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("whole table", func() {
		sizes, err := s.store.Lookups(s.ctx, compendium.LookupSizes)
		s.Require().NoError(err)
		s.Equal(sizes["m"], sizes["medium"])
		s.Contains(sizes, "g")
	})
}

func (s *StoreTestSuite) TestReports() {
	first := &compendium.Report{ID: "run-1", Kind: "wizard-flow", Seed: 42, Passed: 9, Failed: 1, Payload: []byte(`{"ok":false}`)}
	s.Require().NoError(s.store.SaveReport(s.ctx, first))
	s.Equal(s.clock.now, first.CreatedAt)

	s.clock.now = s.clock.now.Add(time.Minute)
	s.Require().NoError(s.store.SaveReport(s.ctx, &compendium.Report{ID: "run-2", Kind: "wizard-flow"}))
	s.Require().NoError(s.store.SaveReport(s.ctx, &compendium.Report{ID: "lvl-1", Kind: "level-up-flow"}))

	s.Run("duplicate id", func() {
		err := s.store.SaveReport(s.ctx, &compendium.Report{ID: "run-1", Kind: "wizard-flow"})
		s.True(errors.IsAlreadyExists(err))
	})

	s.Run("get", func() {
		got, err := s.store.GetReport(s.ctx, "run-1")
		s.Require().NoError(err)
		s.Equal(int64(42), got.Seed)
		s.JSONEq(`{"ok":false}`, string(got.Payload))
	})

	s.Run("missing", func() {
		_, err := s.store.GetReport(s.ctx, "nope")
		s.True(errors.IsNotFound(err))
	})

	s.Run("list newest first", func() {
		reports, err := s.store.ListReports(s.ctx, "wizard-flow", 10)
		s.Require().NoError(err)
		s.Require().Len(reports, 2)
		s.Equal("run-2", reports[0].ID)
	})
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	if got := compendium.ExtractUpMigration(content); got != "\nCREATE TABLE a (id INTEGER);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
	if got := compendium.ExtractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("unexpected whole file %q", got)
	}
}

func TestApplyMigrationsSkipsEmptyUp(t *testing.T) {
	store, err := compendium.Open(context.Background(), &compendium.Config{
		Path:           filepath.Join(t.TempDir(), "empty.db"),
		SkipMigrations: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;")},
		"0002_b.sql": {Data: []byte("-- +migrate Up\n-- +migrate Down\n")},
	}
	applied, err := compendium.ApplyMigrations(context.Background(), store.DB(), fsys, func() int64 { return 1 })
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 1 || applied[0] != "0001_a.sql" {
		t.Fatalf("unexpected applied list %v", applied)
	}
}
