package compendium

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

const (
	migrationTable = "schema_migrations"
	markerUp       = "-- +migrate Up"
	markerDown     = "-- +migrate Down"
)

// ApplyMigrations executes every *.sql file in migrationFS at most once, in
// name order. Each file runs in its own transaction.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationFS fs.FS, now func() int64) ([]string, error) {
	if db == nil {
		return nil, errors.InvalidArgument("sql db is required")
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations dir")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return nil, errors.Wrap(err, "failed to ensure migration table")
	}

	var applied []string
	for _, file := range files {
		done, err := isApplied(ctx, db, file)
		if err != nil {
			return applied, errors.Wrapf(err, "failed to check migration %s", file)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return applied, errors.Wrapf(err, "failed to read migration %s", file)
		}

		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		if err := applyOne(ctx, db, file, upSQL, now()); err != nil {
			return applied, err
		}
		applied = append(applied, file)
	}

	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, file, upSQL string, appliedAt int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to begin migration %s", file)
	}

	if _, err := tx.ExecContext(ctx, upSQL); err != nil && !isAlreadyExists(err) {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to execute migration %s", file)
	}

	insert := fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", migrationTable)
	if _, err := tx.ExecContext(ctx, insert, file, appliedAt); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to record migration %s", file)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit migration %s", file)
	}
	return nil
}

// ExtractUpMigration returns the SQL between the Up and Down markers.
// Files without markers are applied whole.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, markerUp)
	if upIdx == -1 {
		return content
	}
	body := content[upIdx+len(markerUp):]
	if downIdx := strings.Index(body, markerDown); downIdx != -1 {
		return body[:downIdx]
	}
	return body
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
