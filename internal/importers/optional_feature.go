package importers

import (
	"context"
	"io"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// PrerequisiteLevel is a minimum character level prerequisite
const PrerequisiteLevel = "level"

// OptionalFeatureImporter imports invocations, maneuvers, metamagic and the
// other class options
type OptionalFeatureImporter struct {
	*importer
	parser *parsers.OptionalFeatureParser
}

// NewOptionalFeatureImporter creates an OptionalFeatureImporter
func NewOptionalFeatureImporter(cfg *Config) (*OptionalFeatureImporter, error) {
	base, err := newImporter(cfg, "optional-features", dnd5e.EntityTypeOptionalFeature)
	if err != nil {
		return nil, err
	}
	i := &OptionalFeatureImporter{importer: base, parser: parsers.NewOptionalFeatureParser()}
	base.writer = i
	return i, nil
}

func (i *OptionalFeatureImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *OptionalFeatureImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	feature, ok := entity.(*dnd5e.OptionalFeature)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeOptionalFeature, entity)
	}
	id, err := upsert(ctx, q, feature, nil, rec)
	if err != nil {
		return err
	}

	b := i.children(rec)
	b.check(compendium.LookupSpellSchools, feature.SpellSchoolCode)

	tags := []string{feature.FeatureType}
	for _, c := range feature.Classes {
		tags = append(tags, "class:"+dnd5e.Slugify(c.Class))
		if c.Subclass != "" {
			tags = append(tags, "subclass:"+SubclassSlug(dnd5e.Slugify(c.Class), c.Subclass))
		}
	}

	var prereqs []dnd5e.Prerequisite
	if feature.LevelRequirement > 0 {
		prereqs = append(prereqs, dnd5e.Prerequisite{Type: PrerequisiteLevel, MinimumValue: feature.LevelRequirement})
	}
	if feature.PrerequisiteText != "" {
		prereqs = append(prereqs, dnd5e.Prerequisite{
			Type:        dnd5e.PrerequisiteFeature,
			Description: feature.PrerequisiteText,
			GroupID:     1,
		})
	}

	var counters []dnd5e.Counter
	if feature.ResourceType == dnd5e.ResourceCharges && feature.ResourceCost > 0 {
		counters = append(counters, dnd5e.Counter{Name: feature.Name, Level: feature.LevelRequirement, Value: feature.ResourceCost})
	}

	return q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:       b.sources(feature.Sources),
		Counters:      counters,
		Prerequisites: prereqs,
		Tags:          tags,
	})
}
