// Package entityfixtures writes small, coverage based samples of the
// compendium to JSON files that tests can seed from
package entityfixtures

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

const (
	// DefaultLimit is the number of entities written per type
	DefaultLimit = 100

	// picks per spell property beyond one per level and school
	spellVariantPicks = 3
	maxSpellLevel     = 9
)

// Config holds the dependencies of an extractor
type Config struct {
	Store  compendium.Queries
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	vb.RequiredIf(c.Store == nil, "Store")
	if err := vb.Build(); err != nil {
		return err
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Extractor samples stored entities into fixture files
type Extractor struct {
	store  compendium.Queries
	logger *zap.Logger
}

// New creates an extractor
func New(cfg *Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Extractor{store: cfg.Store, logger: cfg.Logger.With(zap.String("component", "entity-fixtures"))}, nil
}

// ExtractInput selects what is written where
type ExtractInput struct {
	// Types defaults to every entity type
	Types     []dnd5e.EntityType
	OutputDir string
	// Limit caps the entities per type once coverage picks are made
	Limit int
}

// File is one written fixture
type File struct {
	Type  dnd5e.EntityType
	Path  string
	Count int
}

// ExtractOutput lists the written fixtures
type ExtractOutput struct {
	Files []File
}

// Extract writes <OutputDir>/entities/<type>.json for every type. Spells and
// monsters are picked for coverage first (every spell level and school,
// every challenge rating, size and creature type) and the rest of the limit
// is filled in name order. Other types take base entities before children.
func (e *Extractor) Extract(ctx context.Context, input *ExtractInput) (*ExtractOutput, error) {
	if input == nil || input.OutputDir == "" {
		return nil, errors.InvalidArgument("output directory is required")
	}
	if input.Limit <= 0 {
		input.Limit = DefaultLimit
	}
	types := input.Types
	if len(types) == 0 {
		types = dnd5e.AllEntityTypes()
	}
	dir := filepath.Join(input.OutputDir, "entities")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}

	out := &ExtractOutput{}
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := e.store.ListEntities(ctx, compendium.ListEntitiesInput{Type: t})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s entities", t)
		}
		picked, err := pick(t, rows.Rows, input.Limit)
		if err != nil {
			return nil, err
		}

		payloads := make([]json.RawMessage, len(picked))
		for i, r := range picked {
			payloads[i] = r.Payload
		}
		data, err := json.MarshalIndent(payloads, "", "  ")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode %s fixtures", t)
		}
		path := filepath.Join(dir, string(t)+".json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", path)
		}
		e.logger.Info("fixtures extracted",
			zap.String("type", string(t)),
			zap.Int("stored", rows.Total),
			zap.Int("written", len(picked)),
			zap.String("path", path))
		out.Files = append(out.Files, File{Type: t, Path: path, Count: len(picked)})
	}
	return out, nil
}

// picker collects rows without repeats
type picker struct {
	rows   []*compendium.EntityRow
	picked map[int64]bool
}

func newPicker() *picker {
	return &picker{picked: make(map[int64]bool)}
}

func (p *picker) add(r *compendium.EntityRow) {
	if r == nil || p.picked[r.ID] {
		return
	}
	p.picked[r.ID] = true
	p.rows = append(p.rows, r)
}

// first adds the first row matching each key, in key order
func (p *picker) first(rows []*compendium.EntityRow, keys []string, key func(i int) string) {
	for _, k := range keys {
		for i, r := range rows {
			if !p.picked[r.ID] && key(i) == k {
				p.add(r)
				break
			}
		}
	}
}

// take adds up to n rows matching match
func (p *picker) take(rows []*compendium.EntityRow, n int, match func(i int) bool) {
	for i, r := range rows {
		if n <= 0 {
			return
		}
		if !p.picked[r.ID] && match(i) {
			p.add(r)
			n--
		}
	}
}

// fill tops the picks up to limit in row order
func (p *picker) fill(rows []*compendium.EntityRow, limit int) []*compendium.EntityRow {
	p.take(rows, limit-len(p.rows), func(int) bool { return true })
	return p.rows
}

func pick(t dnd5e.EntityType, rows []*compendium.EntityRow, limit int) ([]*compendium.EntityRow, error) {
	p := newPicker()
	switch t {
	case dnd5e.EntityTypeSpell:
		spells := make([]*dnd5e.Spell, len(rows))
		for i, r := range rows {
			spells[i] = &dnd5e.Spell{}
			if err := r.Decode(spells[i]); err != nil {
				return nil, err
			}
		}
		levels := make([]string, 0, maxSpellLevel+1)
		for l := 0; l <= maxSpellLevel; l++ {
			levels = append(levels, strconv.Itoa(l))
		}
		p.first(rows, levels, func(i int) string { return strconv.Itoa(spells[i].Level) })
		p.first(rows, distinct(len(spells), func(i int) string { return spells[i].SchoolCode }),
			func(i int) string { return spells[i].SchoolCode })
		p.take(rows, spellVariantPicks, func(i int) bool { return spells[i].NeedsConcentration })
		p.take(rows, spellVariantPicks, func(i int) bool { return spells[i].IsRitual })

	case dnd5e.EntityTypeMonster:
		monsters := make([]*dnd5e.Monster, len(rows))
		for i, r := range rows {
			monsters[i] = &dnd5e.Monster{}
			if err := r.Decode(monsters[i]); err != nil {
				return nil, err
			}
		}
		ratings := distinct(len(monsters), func(i int) string { return monsters[i].ChallengeRating })
		slices.SortStableFunc(ratings, compareRatings)
		p.first(rows, ratings, func(i int) string { return monsters[i].ChallengeRating })
		p.first(rows, distinct(len(monsters), func(i int) string { return monsters[i].SizeCode }),
			func(i int) string { return monsters[i].SizeCode })
		p.first(rows, distinct(len(monsters), func(i int) string { return strings.ToLower(monsters[i].Type) }),
			func(i int) string { return strings.ToLower(monsters[i].Type) })

	default:
		p.take(rows, limit, func(i int) bool { return rows[i].ParentID == nil })
	}
	return p.fill(rows, limit), nil
}

// distinct returns the sorted non-empty values of key over n rows
func distinct(n int, key func(i int) string) []string {
	var out []string
	for i := range n {
		if k := key(i); k != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// compareRatings orders challenge ratings such as "1/8", "1/2" and "10"
func compareRatings(a, b string) int {
	va, vb := ratingValue(a), ratingValue(b)
	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func ratingValue(cr string) float64 {
	if num, den, ok := strings.Cut(cr, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return -1
		}
		return n / d
	}
	v, err := strconv.ParseFloat(cr, 64)
	if err != nil {
		return -1
	}
	return v
}
