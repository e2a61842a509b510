package importers

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/clients/external"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// SRDSpellImporter loads spells from the SRD API. Spells already imported
// from a compendium file are left alone.
type SRDSpellImporter struct {
	client external.Client
	spells *SpellImporter
	logger *zap.Logger
}

// SRDSpellImporterConfig contains the dependencies of an SRDSpellImporter
type SRDSpellImporterConfig struct {
	Importer *Config
	Client   external.Client
}

// NewSRDSpellImporter creates an SRDSpellImporter
func NewSRDSpellImporter(cfg *SRDSpellImporterConfig) (*SRDSpellImporter, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return nil, errors.InvalidArgument("client is required")
	}
	spells, err := NewSpellImporter(cfg.Importer)
	if err != nil {
		return nil, err
	}
	return &SRDSpellImporter{
		client: cfg.Client,
		spells: spells,
		logger: spells.logger.With(zap.String("source", external.SourceCode)),
	}, nil
}

// Run imports every spell the API lists for input; a nil input imports all
func (i *SRDSpellImporter) Run(ctx context.Context, input *external.ListSpellsInput) (*FileResult, error) {
	spells, err := i.client.ListSpells(ctx, input)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Path: "srd-api"}
	result := &FileResult{
		Path:     batch.Path,
		Importer: "srd-spells",
		Type:     dnd5e.EntityTypeSpell,
	}
	for _, spell := range spells {
		skip, err := i.fromCompendiumFile(ctx, spell.Slug)
		if err != nil {
			return nil, err
		}
		if skip {
			result.Total++
			result.add(&RecordResult{Slug: spell.Slug, Skipped: true})
			continue
		}
		batch.Entities = append(batch.Entities, spell)
	}

	imported, err := i.spells.ImportBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	imported.Importer = result.Importer
	imported.Total += result.Total
	imported.Skipped += result.Skipped

	i.logger.Info("imported SRD spells",
		zap.Int("listed", len(spells)),
		zap.Int("skipped", imported.Skipped),
		zap.Int("written", imported.Succeeded()),
	)
	return imported, nil
}

// fromCompendiumFile reports whether slug is already stored from a
// non-SRD source
func (i *SRDSpellImporter) fromCompendiumFile(ctx context.Context, slug string) (bool, error) {
	row, err := i.spells.store.GetEntity(ctx, dnd5e.EntityTypeSpell, slug)
	if errors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(row.FullSlug, strings.ToLower(external.SourceCode)+":"), nil
}
