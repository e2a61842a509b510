package importers

import (
	"context"
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// LookupLoader reads a whole lookup table
type LookupLoader interface {
	Lookups(ctx context.Context, table compendium.LookupTable) (map[string]int64, error)
}

// Lookups caches the lookup tables for the lifetime of an importer
type Lookups struct {
	loader LookupLoader

	mu     sync.RWMutex
	tables map[compendium.LookupTable]map[string]int64
}

// NewLookups creates an empty cache over loader
func NewLookups(loader LookupLoader) *Lookups {
	return &Lookups{loader: loader}
}

// Load reads every lookup table once
func (l *Lookups) Load(ctx context.Context) error {
	l.mu.RLock()
	loaded := l.tables != nil
	l.mu.RUnlock()
	if loaded {
		return nil
	}

	tables := make(map[compendium.LookupTable]map[string]int64)
	for _, table := range compendium.AllLookupTables() {
		values, err := l.loader.Lookups(ctx, table)
		if err != nil {
			return err
		}
		tables[table] = values
	}

	l.mu.Lock()
	l.tables = tables
	l.mu.Unlock()
	return nil
}

// Reset forgets the cached tables
func (l *Lookups) Reset() {
	l.mu.Lock()
	l.tables = nil
	l.mu.Unlock()
}

// ID returns the row id for key, matched against code or name without case.
// Skill and language keys also match by slug.
func (l *Lookups) ID(table compendium.LookupTable, key string) (int64, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return 0, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	values := l.tables[table]
	if id, ok := values[key]; ok {
		return id, true
	}
	id, ok := values[dnd5e.Slugify(key)]
	return id, ok
}

// resolve returns a pointer to the id of key. Unknown keys are recorded as
// warnings on rec and resolve to nil.
func (l *Lookups) resolve(table compendium.LookupTable, key string, rec *RecordResult) *int64 {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	id, ok := l.ID(table, key)
	if !ok {
		rec.warn("unknown " + lookupNoun(table) + " " + quote(key))
		return nil
	}
	return &id
}

func lookupNoun(table compendium.LookupTable) string {
	noun := strings.TrimSuffix(string(table), "s")
	return strings.ReplaceAll(noun, "_", " ")
}

func quote(s string) string {
	return `"` + s + `"`
}
