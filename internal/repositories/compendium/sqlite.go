package compendium

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium/migrations"
)

const dsnPragmas = "?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

const entityColumns = "id, entity_type, slug, full_slug, name, parent_id, payload, created_at, updated_at"

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Config contains configuration for the SQLite compendium store
type Config struct {
	Path           string
	Clock          clock.Clock
	Logger         *zap.Logger
	SkipMigrations bool
}

// Validate validates the Config
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("path", cfg.Path, vb)
	return vb.Build()
}

// Store is the SQLite backed Repository
type Store struct {
	*queries
	sqlDB  *sql.DB
	logger *zap.Logger
}

type queries struct {
	db    querier
	clock clock.Clock
}

// Open opens the database at cfg.Path and applies pending migrations
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	path := filepath.Clean(cfg.Path)
	sqlDB, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to open sqlite db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to ping sqlite db")
	}

	store := &Store{
		queries: &queries{db: sqlDB, clock: clk},
		sqlDB:   sqlDB,
		logger:  logger,
	}

	if !cfg.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return store, nil
}

// Migrate applies any migrations not yet recorded
func (s *Store) Migrate(ctx context.Context) error {
	applied, err := ApplyMigrations(ctx, s.sqlDB, migrations.FS, func() int64 {
		return toMillis(s.clock.Now())
	})
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	for _, name := range applied {
		s.logger.Info("applied migration", zap.String("migration", name))
	}
	return nil
}

// DB exposes the connection pool for maintenance tasks
func (s *Store) DB() *sql.DB {
	return s.sqlDB
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// WithTx runs fn in a transaction
func (s *Store) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(&queries{db: tx, clock: s.clock}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (q *queries) UpsertEntity(ctx context.Context, input UpsertEntityInput) (*UpsertEntityOutput, error) {
	if input.Entity == nil {
		return nil, errors.InvalidArgument("entity is required")
	}
	entity := input.Entity
	slug := entity.EntitySlug()
	if slug == "" {
		return nil, errors.InvalidArgumentf("%s %q has no slug", entity.GetType(), entity.EntityName())
	}
	entityType := entity.GetType()
	now := toMillis(q.clock.Now())

	var id int64
	err := q.db.QueryRowContext(ctx,
		`SELECT id FROM entities WHERE entity_type = ? AND slug = ?`, entityType, slug,
	).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrapf(err, "failed to look up %s %s", entityType, slug)
	}

	if err == sql.ErrNoRows {
		payload, err := json.Marshal(entity)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal %s %s", entityType, slug)
		}
		res, err := q.db.ExecContext(ctx,
			`INSERT INTO entities (entity_type, slug, full_slug, name, parent_id, payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entityType, slug, entity.GetID(), entity.EntityName(), input.ParentID, string(payload), now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, errors.AlreadyExistsf("%s %s already exists", entityType, slug)
			}
			return nil, errors.Wrapf(err, "failed to insert %s %s", entityType, slug)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read id for %s %s", entityType, slug)
		}
		entity.SetEntityID(id)
		return &UpsertEntityOutput{ID: id, Created: true}, nil
	}

	entity.SetEntityID(id)
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s %s", entityType, slug)
	}
	if _, err := q.db.ExecContext(ctx,
		`UPDATE entities SET full_slug = ?, name = ?, parent_id = ?, payload = ?, updated_at = ? WHERE id = ?`,
		entity.GetID(), entity.EntityName(), input.ParentID, string(payload), now, id,
	); err != nil {
		return nil, errors.Wrapf(err, "failed to update %s %s", entityType, slug)
	}
	return &UpsertEntityOutput{ID: id}, nil
}

func (q *queries) GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*EntityRow, error) {
	if slug == "" {
		return nil, errors.InvalidArgument("slug is required")
	}
	row := q.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE entity_type = ? AND slug = ?`, entityType, slug)
	entity, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("%s %s not found", entityType, slug).WithEntity(string(entityType), slug)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s %s", entityType, slug)
	}
	return entity, nil
}

func (q *queries) GetEntityByID(ctx context.Context, id int64) (*EntityRow, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	entity, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("entity %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get entity %d", id)
	}
	return entity, nil
}

func (q *queries) ListEntities(ctx context.Context, input ListEntitiesInput) (*ListEntitiesOutput, error) {
	if _, ok := dnd5e.ParseEntityType(string(input.Type)); !ok {
		return nil, errors.InvalidArgumentf("unknown entity type %q", input.Type)
	}
	if input.Limit < 0 || input.Offset < 0 {
		return nil, errors.InvalidArgument("limit and offset must not be negative")
	}

	where := []string{"entity_type = ?"}
	args := []any{input.Type}
	if input.NameContains != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(input.NameContains)+"%")
	}
	if input.ParentID != nil {
		where = append(where, "parent_id = ?")
		args = append(args, *input.ParentID)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, errors.Wrapf(err, "failed to count %s entities", input.Type)
	}

	limit := input.Limit
	if limit == 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE `+clause+` ORDER BY name, slug LIMIT ? OFFSET ?`,
		append(args, limit, input.Offset)...,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s entities", input.Type)
	}
	out, err := scanEntities(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s entities", input.Type)
	}
	return &ListEntitiesOutput{Rows: out, Total: total}, nil
}

func (q *queries) LinkClassSpell(ctx context.Context, classID, spellID int64) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO class_spells (class_id, spell_id) VALUES (?, ?)`, classID, spellID)
	if err != nil {
		return false, errors.Wrapf(err, "failed to link spell %d to class %d", spellID, classID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read link result")
	}
	return n > 0, nil
}

func (q *queries) ClassSpells(ctx context.Context, input ClassSpellsInput) ([]*EntityRow, error) {
	class, err := q.GetEntity(ctx, dnd5e.EntityTypeClass, input.ClassSlug)
	if err != nil {
		return nil, err
	}
	classID := class.ID
	if class.ParentID != nil {
		classID = *class.ParentID
	}

	query := `SELECT e.id, e.entity_type, e.slug, e.full_slug, e.name, e.parent_id, e.payload, e.created_at, e.updated_at
		FROM class_spells cs JOIN entities e ON e.id = cs.spell_id
		WHERE cs.class_id = ?`
	args := []any{classID}
	if input.MaxLevel != nil {
		query += ` AND json_extract(e.payload, '$.level') <= ?`
		args = append(args, *input.MaxLevel)
	}
	query += ` ORDER BY json_extract(e.payload, '$.level'), e.name`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list spells for %s", input.ClassSlug)
	}
	out, err := scanEntities(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read spells for %s", input.ClassSlug)
	}
	return out, nil
}

func (q *queries) DeleteAll(ctx context.Context, entityType dnd5e.EntityType) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM entities WHERE entity_type = ?`, entityType)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete %s entities", entityType)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read delete result")
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*EntityRow, error) {
	var (
		e          EntityRow
		entityType string
		parentID   sql.NullInt64
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&e.ID, &entityType, &e.Slug, &e.FullSlug, &e.Name, &parentID, &e.Payload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Type = dnd5e.EntityType(entityType)
	if parentID.Valid {
		id := parentID.Int64
		e.ParentID = &id
	}
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return &e, nil
}

func scanEntities(rows *sql.Rows) ([]*EntityRow, error) {
	defer func() { _ = rows.Close() }()
	var out []*EntityRow
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ Repository = (*Store)(nil)
