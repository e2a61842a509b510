// Package importers writes parsed compendium entities into the store.
//
// Every entity type has an importer. A file is parsed as a whole, then each
// record is written inside its own transaction: the entity row is upserted by
// slug and its child records are cleared and recreated. A bad record is
// reported in the FileResult and never stops the rest of the file.
package importers

//go:generate mockgen -destination=mock/mock_importer.go -package=importersmock github.com/KirkDiggler/rpg-compendium/internal/importers Importer,CacheInvalidator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// CacheInvalidator drops cached entities of a type after an import
type CacheInvalidator interface {
	Invalidate(ctx context.Context, entityType dnd5e.EntityType) error
}

// Importer imports one entity type
type Importer interface {
	// Name identifies the importer in summaries, e.g. "spells"
	Name() string
	EntityType() dnd5e.EntityType

	// ParseFile reads a compendium file without touching the store
	// Returns errors.InvalidArgument for malformed XML
	ParseFile(path string) (*Batch, error)

	// ImportBatch writes parsed entities. Record failures are collected in
	// the result; the error is only set when the batch could not run at all.
	ImportBatch(ctx context.Context, batch *Batch) (*FileResult, error)

	// ImportFile is ParseFile followed by ImportBatch
	ImportFile(ctx context.Context, path string) (*FileResult, error)

	// ImportReader parses and imports a document; name labels the result
	ImportReader(ctx context.Context, r io.Reader, name string) (*FileResult, error)

	// Import writes a single entity
	Import(ctx context.Context, entity dnd5e.Entity) (*RecordResult, error)
}

// Config contains the dependencies shared by every importer
type Config struct {
	Store  compendium.Repository
	Cache  CacheInvalidator // optional
	Logger *zap.Logger
}

// Validate validates the Config
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Store == nil {
		vb.RequiredField("store")
	}
	return vb.Build()
}

// Batch is the parsed content of one file
type Batch struct {
	Path     string
	Entities []dnd5e.Entity
}

// RecordError is a record that could not be imported
type RecordError struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Message string `json:"message"`
	// Related is the type/slug of another record the failure points at,
	// e.g. "class/artificer" for a spell whose class is missing
	Related string `json:"related,omitempty"`
}

// StrategyStat sums what one strategy did over a file
type StrategyStat struct {
	Count    int            `json:"count"`
	Warnings int            `json:"warnings"`
	Metrics  map[string]int `json:"metrics,omitempty"`
}

// FileResult summarises one imported file
type FileResult struct {
	Path          string                  `json:"path"`
	Importer      string                  `json:"importer"`
	Type          dnd5e.EntityType        `json:"type"`
	Total         int                     `json:"total"`
	Created       int                     `json:"created"`
	Updated       int                     `json:"updated"`
	Skipped       int                     `json:"skipped"`
	Failed        int                     `json:"failed"`
	Warnings      []string                `json:"warnings,omitempty"`
	Errors        []RecordError           `json:"errors,omitempty"`
	StrategyStats map[string]StrategyStat `json:"strategy_stats,omitempty"`
}

// Succeeded is the number of records written
func (r *FileResult) Succeeded() int {
	return r.Created + r.Updated
}

// RecordResult describes one imported record
type RecordResult struct {
	Slug     string
	Created  bool
	Skipped  bool
	Warnings []string
	// Strategy names the strategy applied to the record, if any
	Strategy string
	Metrics  map[string]int
}

func (r *RecordResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *RecordResult) incr(metric string, n int) {
	if n == 0 {
		return
	}
	if r.Metrics == nil {
		r.Metrics = map[string]int{}
	}
	r.Metrics[metric] += n
}

// recordWriter is implemented by each entity type
type recordWriter interface {
	parse(r io.Reader) ([]dnd5e.Entity, error)
	write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error
}

// importer carries the file loop shared by every entity type
type importer struct {
	name       string
	entityType dnd5e.EntityType
	store      compendium.Repository
	cache      CacheInvalidator
	logger     *zap.Logger
	lookups    *Lookups
	writer     recordWriter
}

func newImporter(cfg *Config, name string, entityType dnd5e.EntityType) (*importer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &importer{
		name:       name,
		entityType: entityType,
		store:      cfg.Store,
		cache:      cfg.Cache,
		logger:     logger.With(zap.String("importer", name)),
		lookups:    NewLookups(cfg.Store),
	}, nil
}

func (i *importer) Name() string { return i.name }

func (i *importer) EntityType() dnd5e.EntityType { return i.entityType }

func (i *importer) ParseFile(path string) (*Batch, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	entities, err := i.writer.parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &Batch{Path: path, Entities: entities}, nil
}

func (i *importer) ImportFile(ctx context.Context, path string) (*FileResult, error) {
	batch, err := i.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return i.ImportBatch(ctx, batch)
}

func (i *importer) ImportReader(ctx context.Context, r io.Reader, name string) (*FileResult, error) {
	entities, err := i.writer.parse(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return i.ImportBatch(ctx, &Batch{Path: name, Entities: entities})
}

func (i *importer) ImportBatch(ctx context.Context, batch *Batch) (*FileResult, error) {
	if batch == nil {
		return nil, errors.InvalidArgument("batch is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCanceled, "import canceled")
	}
	if err := i.lookups.Load(ctx); err != nil {
		return nil, err
	}

	result := &FileResult{
		Path:     batch.Path,
		Importer: i.name,
		Type:     i.entityType,
		Total:    len(batch.Entities),
	}
	for _, entity := range batch.Entities {
		if err := ctx.Err(); err != nil {
			return result, errors.WrapWithCode(err, errors.CodeCanceled, "import canceled")
		}
		rec, err := i.Import(ctx, entity)
		if err != nil {
			result.Failed++
			recErr := RecordError{
				Slug:    entity.EntitySlug(),
				Name:    entity.EntityName(),
				Message: err.Error(),
			}
			if t, slug, ok := errors.EntityOf(err); ok && slug != entity.EntitySlug() {
				recErr.Related = t + "/" + slug
			}
			result.Errors = append(result.Errors, recErr)
			i.logger.Warn("failed to import record",
				zap.String("slug", entity.EntitySlug()),
				zap.Error(err),
			)
			continue
		}
		result.add(rec)
	}

	if i.cache != nil && result.Succeeded() > 0 {
		if err := i.cache.Invalidate(ctx, i.entityType); err != nil {
			result.Warnings = append(result.Warnings, "cache invalidation failed: "+err.Error())
			i.logger.Warn("failed to invalidate cache", zap.Error(err))
		}
	}

	i.logger.Info("imported file",
		zap.String("path", batch.Path),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (i *importer) Import(ctx context.Context, entity dnd5e.Entity) (*RecordResult, error) {
	if entity == nil {
		return nil, errors.InvalidArgument("entity is required")
	}
	if entity.EntitySlug() == "" {
		return nil, errors.InvalidArgumentf("%s %q has no slug", i.entityType, entity.EntityName())
	}
	if err := i.lookups.Load(ctx); err != nil {
		return nil, err
	}

	rec := &RecordResult{Slug: entity.EntitySlug()}
	err := i.store.WithTx(ctx, func(q compendium.Queries) error {
		return i.writer.write(ctx, q, entity, rec)
	})
	if err != nil {
		return nil, err
	}
	rec.Slug = entity.EntitySlug()

	if rec.Strategy != "" {
		i.logger.Debug("strategy applied",
			zap.String("channel", "import-strategy"),
			zap.String("slug", rec.Slug),
			zap.String("strategy", rec.Strategy),
			zap.Strings("warnings", rec.Warnings),
			zap.Any("metrics", rec.Metrics),
		)
	}
	return rec, nil
}

func (r *FileResult) add(rec *RecordResult) {
	switch {
	case rec.Skipped:
		r.Skipped++
	case rec.Created:
		r.Created++
	default:
		r.Updated++
	}
	for _, w := range rec.Warnings {
		r.Warnings = append(r.Warnings, rec.Slug+": "+w)
	}
	if rec.Strategy == "" {
		return
	}
	if r.StrategyStats == nil {
		r.StrategyStats = map[string]StrategyStat{}
	}
	stat := r.StrategyStats[rec.Strategy]
	stat.Count++
	stat.Warnings += len(rec.Warnings)
	for k, v := range rec.Metrics {
		if stat.Metrics == nil {
			stat.Metrics = map[string]int{}
		}
		stat.Metrics[k] += v
	}
	r.StrategyStats[rec.Strategy] = stat
}

// StrategyNames lists the strategies seen in the result, sorted
func (r *FileResult) StrategyNames() []string {
	names := make([]string, 0, len(r.StrategyStats))
	for name := range r.StrategyStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// asEntities converts the parser output of one type to entities
func asEntities[T dnd5e.Entity](items []T, err error) ([]dnd5e.Entity, error) {
	if err != nil {
		return nil, err
	}
	out := make([]dnd5e.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func unexpectedEntity(want dnd5e.EntityType, got dnd5e.Entity) error {
	return errors.InvalidArgumentf("expected %s entity, got %s", want, got.GetType())
}
