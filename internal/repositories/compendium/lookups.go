package compendium

import (
	"context"
	"database/sql"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// LookupTable names a seeded reference table
type LookupTable string

// Lookup tables
const (
	LookupSources          LookupTable = "sources"
	LookupAbilityScores    LookupTable = "ability_scores"
	LookupSkills           LookupTable = "skills"
	LookupDamageTypes      LookupTable = "damage_types"
	LookupSizes            LookupTable = "sizes"
	LookupSpellSchools     LookupTable = "spell_schools"
	LookupConditions       LookupTable = "conditions"
	LookupLanguages        LookupTable = "languages"
	LookupProficiencyTypes LookupTable = "proficiency_types"
)

// AllLookupTables lists every lookup table
func AllLookupTables() []LookupTable {
	return []LookupTable{
		LookupSources,
		LookupAbilityScores,
		LookupSkills,
		LookupDamageTypes,
		LookupSizes,
		LookupSpellSchools,
		LookupConditions,
		LookupLanguages,
		LookupProficiencyTypes,
	}
}

func (t LookupTable) valid() bool {
	for _, known := range AllLookupTables() {
		if t == known {
			return true
		}
	}
	return false
}

func (q *queries) LookupID(ctx context.Context, table LookupTable, key string) (int64, error) {
	if !table.valid() {
		return 0, errors.InvalidArgumentf("unknown lookup table %q", table)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, errors.InvalidArgumentf("%s key is required", table)
	}

	var id int64
	err := q.db.QueryRowContext(ctx,
		`SELECT id FROM `+string(table)+` WHERE code = ? OR name = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		key, key,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.NotFoundf("%s %q not found", table, key)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to look up %s %q", table, key)
	}
	return id, nil
}

func (q *queries) Lookups(ctx context.Context, table LookupTable) (map[string]int64, error) {
	if !table.valid() {
		return nil, errors.InvalidArgumentf("unknown lookup table %q", table)
	}
	rows, err := q.db.QueryContext(ctx, `SELECT id, code, name FROM `+string(table))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", table)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			id         int64
			code, name string
		)
		if err := rows.Scan(&id, &code, &name); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", table)
		}
		out[strings.ToLower(code)] = id
		if _, taken := out[strings.ToLower(name)]; !taken {
			out[strings.ToLower(name)] = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", table)
	}
	return out, nil
}
