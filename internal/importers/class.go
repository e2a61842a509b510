package importers

import (
	"context"
	"io"
	"strconv"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// ClassImporter imports classes and their subclasses.
//
// A class with a hit die is a full definition and replaces the stored core
// fields, keeping subclasses, features and counters that supplemental files
// added. A class without one comes from a supplemental file: the stored class
// keeps its core fields and gains the new subclasses, features and counters.
// A supplemental class that is not stored yet is created as a stub, so files
// can arrive in any order.
type ClassImporter struct {
	*importer
	parser *parsers.ClassParser
}

// NewClassImporter creates a ClassImporter
func NewClassImporter(cfg *Config) (*ClassImporter, error) {
	base, err := newImporter(cfg, "classes", dnd5e.EntityTypeClass)
	if err != nil {
		return nil, err
	}
	i := &ClassImporter{importer: base, parser: parsers.NewClassParser()}
	base.writer = i
	return i, nil
}

func (i *ClassImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *ClassImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	class, ok := entity.(*dnd5e.CharacterClass)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeClass, entity)
	}

	var err error
	if class.HitDie == 0 {
		class, err = mergeSupplementalClass(ctx, q, class, rec)
	} else {
		class, err = keepSupplementalContent(ctx, q, class, rec)
	}
	if err != nil {
		return err
	}

	id, err := upsert(ctx, q, class, nil, rec)
	if err != nil {
		return err
	}
	if err := q.ReplaceChildren(ctx, id, i.classChildren(class, rec)); err != nil {
		return err
	}

	for _, sc := range class.Subclasses {
		if err := i.writeSubclass(ctx, q, class, id, sc, rec); err != nil {
			return errors.Wrapf(err, "failed to import subclass %s", sc.Name)
		}
	}
	return nil
}

// mergeSupplementalClass folds a hit-die-less class into the stored class
func mergeSupplementalClass(ctx context.Context, q compendium.Queries, supplement *dnd5e.CharacterClass, rec *RecordResult) (*dnd5e.CharacterClass, error) {
	existing, err := storedClass(ctx, q, supplement.Slug)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		rec.warn("base class not stored yet, creating stub")
		return supplement, nil
	}
	added := foldClass(existing, supplement)
	rec.incr("subclasses_added", added.subclasses)
	rec.incr("features_added", added.features)
	return existing, nil
}

// keepSupplementalContent carries what supplemental files stored for the
// class over to its full definition
func keepSupplementalContent(ctx context.Context, q compendium.Queries, class *dnd5e.CharacterClass, rec *RecordResult) (*dnd5e.CharacterClass, error) {
	existing, err := storedClass(ctx, q, class.Slug)
	if err != nil || existing == nil {
		return class, err
	}
	kept := foldClass(class, existing)
	rec.incr("subclasses_kept", kept.subclasses)
	rec.incr("features_kept", kept.features)
	return class, nil
}

// storedClass returns nil when the class is not stored
func storedClass(ctx context.Context, q compendium.Queries, slug string) (*dnd5e.CharacterClass, error) {
	row, err := q.GetEntity(ctx, dnd5e.EntityTypeClass, slug)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	class := &dnd5e.CharacterClass{}
	if err := row.Decode(class); err != nil {
		return nil, err
	}
	return class, nil
}

type foldCounts struct {
	subclasses int
	features   int
}

// foldClass appends the subclasses, features, counters and sources of add
// that dst does not have yet
func foldClass(dst, add *dnd5e.CharacterClass) foldCounts {
	var n foldCounts

	have := make(map[string]bool, len(dst.Subclasses))
	for _, sc := range dst.Subclasses {
		have[sc.Name] = true
	}
	for _, sc := range add.Subclasses {
		if have[sc.Name] {
			continue
		}
		dst.Subclasses = append(dst.Subclasses, sc)
		n.subclasses++
	}

	features := make(map[string]bool, len(dst.Features))
	for _, f := range dst.Features {
		features[featureKey(f)] = true
	}
	for _, f := range add.Features {
		if features[featureKey(f)] {
			continue
		}
		f.SortOrder = len(dst.Features)
		dst.Features = append(dst.Features, f)
		n.features++
	}

	counters := make(map[string]bool, len(dst.Counters))
	for _, c := range dst.Counters {
		counters[counterKey(c)] = true
	}
	for _, c := range add.Counters {
		if !counters[counterKey(c)] {
			dst.Counters = append(dst.Counters, c)
		}
	}

	dst.Sources = mergeSources(dst.Sources, add.Sources)
	return n
}

func (i *ClassImporter) writeSubclass(ctx context.Context, q compendium.Queries, parent *dnd5e.CharacterClass, parentID int64, sc dnd5e.Subclass, rec *RecordResult) error {
	ability := sc.SpellcastingAbility
	if ability == "" {
		ability = parent.SpellcastingAbility
	}
	progression := sc.SpellProgression
	if len(progression) == 0 {
		progression = parent.SpellProgression
	}
	sub := &dnd5e.CharacterClass{
		Record: dnd5e.Record{
			Name:    sc.Name,
			Slug:    SubclassSlug(parent.Slug, sc.Name),
			Sources: parent.Sources,
		},
		ParentSlug:          parent.Slug,
		HitDie:              parent.HitDie,
		SpellcastingAbility: ability,
		Archetype:           parent.Archetype,
		Features:            sc.Features,
		Counters:            sc.Counters,
		SpellProgression:    progression,
	}
	sub.SetIdentity()

	subRec := &RecordResult{}
	id, err := upsert(ctx, q, sub, &parentID, subRec)
	if err != nil {
		return err
	}
	if err := q.ReplaceChildren(ctx, id, i.classChildren(sub, subRec)); err != nil {
		return err
	}
	for _, w := range subRec.Warnings {
		rec.warn(sub.Slug + ": " + w)
	}
	rec.incr("subclasses", 1)
	return nil
}

func (i *ClassImporter) classChildren(class *dnd5e.CharacterClass, rec *RecordResult) *compendium.Children {
	b := i.children(rec)
	var mods []dnd5e.Modifier
	for _, f := range class.Features {
		mods = append(mods, f.Modifiers...)
	}
	var counters []dnd5e.Counter
	for _, c := range class.Counters {
		if c.Subclass == "" || class.IsSubclass() {
			counters = append(counters, c)
		}
	}
	var sources []dnd5e.SourceCitation
	sources = mergeSources(sources, class.Sources)
	for _, t := range class.Traits {
		sources = mergeSources(sources, t.Sources)
	}
	return &compendium.Children{
		Sources:       b.sources(sources),
		Modifiers:     b.modifiers(mods),
		Proficiencies: b.proficiencies(class.Proficiencies),
		Traits:        class.Traits,
		Counters:      counters,
		Features:      class.Features,
		Languages:     b.languages(class.Languages),
	}
}

// SubclassSlug is "<parent>-<subclass>", e.g. "wizard-school-of-evocation"
func SubclassSlug(parentSlug, subclass string) string {
	return parentSlug + "-" + dnd5e.Slugify(subclass)
}

// mergeSources appends citations of books not yet cited
func mergeSources(dst, add []dnd5e.SourceCitation) []dnd5e.SourceCitation {
	for _, c := range add {
		found := false
		for _, have := range dst {
			if have.Code == c.Code {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, c)
		}
	}
	return dst
}

func featureKey(f dnd5e.ClassFeature) string {
	return dnd5e.Slugify(f.Name) + "@" + strconv.Itoa(f.Level)
}

func counterKey(c dnd5e.Counter) string {
	return c.Subclass + "/" + c.Name + "@" + strconv.Itoa(c.Level)
}
