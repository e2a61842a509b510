package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var featureTypePrefixes = []struct {
	prefix      string
	featureType string
}{
	{"Invocation:", dnd5e.OptionalFeatureEldritchInvocation},
	{"Elemental Discipline:", dnd5e.OptionalFeatureElementalDiscipline},
	{"Maneuver:", dnd5e.OptionalFeatureManeuver},
	{"Metamagic:", dnd5e.OptionalFeatureMetamagic},
	{"Fighting Style:", dnd5e.OptionalFeatureFightingStyle},
	{"Infusion:", dnd5e.OptionalFeatureArtificerInfusion},
	{"Rune:", dnd5e.OptionalFeatureRune},
	{"Arcane Shot:", dnd5e.OptionalFeatureArcaneShot},
}

// pseudo class names used by the <classes> element of option lists
var optionListClasses = map[string]dnd5e.ClassAssociation{
	"Eldritch Invocations": {Class: "Warlock"},
	"Maneuver Options":     {Class: "Fighter", Subclass: "Battle Master"},
	"Metamagic Options":    {Class: "Sorcerer"},
	"Artificer Infusions":  {Class: "Artificer"},
}

var featureTypeClasses = map[string][]dnd5e.ClassAssociation{
	dnd5e.OptionalFeatureEldritchInvocation:  {{Class: "Warlock"}},
	dnd5e.OptionalFeatureElementalDiscipline: {{Class: "Monk", Subclass: "Way of the Four Elements"}},
	dnd5e.OptionalFeatureManeuver:            {{Class: "Fighter", Subclass: "Battle Master"}},
	dnd5e.OptionalFeatureMetamagic:           {{Class: "Sorcerer"}},
	dnd5e.OptionalFeatureArtificerInfusion:   {{Class: "Artificer"}},
	dnd5e.OptionalFeatureFightingStyle:       {{Class: "Fighter"}, {Class: "Paladin"}, {Class: "Ranger"}},
	dnd5e.OptionalFeatureArcaneShot:          {{Class: "Fighter", Subclass: "Arcane Archer"}},
	dnd5e.OptionalFeatureRune:                {{Class: "Fighter", Subclass: "Rune Knight"}},
}

var (
	featurePrereqRe     = regexp.MustCompile(`(?s)^Prerequisite:\s*(.+?)(?:\n\n|\z)`)
	featurePrereqLineRe = regexp.MustCompile(`^Prerequisite:[^\n]*(?:\n\n|\n)?`)
	ordinalLevelRe      = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)\s+level`)
	kiCostRe            = regexp.MustCompile(`(?i)\((\d+)\s+ki\s+points?\)`)
	sorceryCostRe       = regexp.MustCompile(`(?i)\((\d+)\s+sorcery\s+points?\)`)
	superiorityCostRe   = regexp.MustCompile(`(?i)\((\d+)\s+superiority\s+di(?:ce|e)\)`)
	chargesCostRe       = regexp.MustCompile(`(?i)\((\d+)\s+charges?\)`)
	spellLevelCostRe    = regexp.MustCompile(`(?i)equal to the spell'?s level`)
	expendOneDieRe      = regexp.MustCompile(`(?i)expend (?:one|a) superiority`)
	expendDiceRe        = regexp.MustCompile(`(?i)expend (\d+) superiority`)
	classSubclassRe     = regexp.MustCompile(`^(.+?)\s*\((.+?)\)$`)
	trailingAfterParen  = regexp.MustCompile(`\)[^)]*$`)
)

// OptionalFeatureParser parses invocations, disciplines, maneuvers and other
// class options from <spell> and <feat> elements
type OptionalFeatureParser struct{}

// NewOptionalFeatureParser creates an OptionalFeatureParser
func NewOptionalFeatureParser() *OptionalFeatureParser {
	return &OptionalFeatureParser{}
}

// Parse reads <spell> elements first, then <feat> elements
func (p *OptionalFeatureParser) Parse(r io.Reader) ([]*dnd5e.OptionalFeature, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	out := make([]*dnd5e.OptionalFeature, 0, len(doc.Spells)+len(doc.Feats))
	for _, el := range doc.Spells {
		out = append(out, optionalFeatureFromSpell(el))
	}
	for _, el := range doc.Feats {
		out = append(out, optionalFeatureFromFeat(el))
	}
	return out, nil
}

// ParseBytes parses an in-memory document
func (p *OptionalFeatureParser) ParseBytes(data []byte) ([]*dnd5e.OptionalFeature, error) {
	return p.Parse(bytes.NewReader(data))
}

func optionalFeatureFromSpell(el spellXML) *dnd5e.OptionalFeature {
	text := joinText(el.Text)
	featureType, name := FeatureTypeAndName(el.Name)
	prereq, level, description := splitFeaturePrerequisite(text)
	description = StripSourceCitations(description)

	f := &dnd5e.OptionalFeature{
		Record: dnd5e.Record{
			Name:    name,
			Sources: sourcesOrDefault(ParseSourceCitations(text)),
		},
		FeatureType:      featureType,
		LevelRequirement: level,
		PrerequisiteText: prereq,
		Description:      strings.TrimSpace(description),
		CastingTime:      strings.TrimSpace(el.Time),
		Range:            strings.TrimSpace(el.Range),
		Duration:         strings.TrimSpace(el.Duration),
		SpellSchoolCode:  strings.TrimSpace(el.School),
		Classes:          classAssociations(el.Classes, featureType),
	}
	f.ResourceType, f.ResourceCost, f.CostFormula = componentResourceCost(el.Components)
	if f.ResourceType == "" {
		f.ResourceType, f.ResourceCost, f.CostFormula = descriptionResourceCost(f.Description)
	}
	f.SetIdentity()
	return f
}

func optionalFeatureFromFeat(el featXML) *dnd5e.OptionalFeature {
	text := joinText(el.Text)
	featureType, name := FeatureTypeAndName(el.Name)

	f := &dnd5e.OptionalFeature{
		Record: dnd5e.Record{
			Name:    name,
			Sources: sourcesOrDefault(ParseSourceCitations(text)),
		},
		FeatureType:      featureType,
		PrerequisiteText: strings.TrimSpace(el.Prerequisite),
		Description:      strings.TrimSpace(StripSourceCitations(text)),
		Classes:          featureTypeClasses[featureType],
	}
	f.ResourceType, f.ResourceCost, f.CostFormula = descriptionResourceCost(f.Description)
	f.SetIdentity()
	return f
}

// FeatureTypeAndName strips the "Maneuver: " style prefix. Names without a
// known prefix are eldritch invocations.
func FeatureTypeAndName(full string) (string, string) {
	full = strings.TrimSpace(full)
	for _, p := range featureTypePrefixes {
		if len(full) > len(p.prefix) && strings.EqualFold(full[:len(p.prefix)], p.prefix) {
			return p.featureType, strings.TrimSpace(full[len(p.prefix):])
		}
	}
	return dnd5e.OptionalFeatureEldritchInvocation, full
}

// splitFeaturePrerequisite pulls a leading "Prerequisite: 5th level" paragraph
// off the description
func splitFeaturePrerequisite(text string) (string, int, string) {
	m := featurePrereqRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, text
	}
	prereq := strings.TrimSpace(m[1])
	var level int
	if lm := ordinalLevelRe.FindStringSubmatch(prereq); lm != nil {
		level = atoi(lm[1])
	}
	return prereq, level, featurePrereqLineRe.ReplaceAllString(text, "")
}

func componentResourceCost(components string) (string, int, string) {
	for _, c := range []struct {
		re       *regexp.Regexp
		resource string
	}{
		{kiCostRe, dnd5e.ResourceKiPoints},
		{sorceryCostRe, dnd5e.ResourceSorceryPoints},
		{superiorityCostRe, dnd5e.ResourceSuperiorityDie},
		{chargesCostRe, dnd5e.ResourceCharges},
	} {
		if m := c.re.FindStringSubmatch(components); m != nil {
			return c.resource, atoi(m[1]), ""
		}
	}
	return "", 0, ""
}

func descriptionResourceCost(description string) (string, int, string) {
	switch {
	case spellLevelCostRe.MatchString(description):
		return dnd5e.ResourceSorceryPoints, 0, "spell_level"
	case expendOneDieRe.MatchString(description):
		return dnd5e.ResourceSuperiorityDie, 1, ""
	}
	if m := expendDiceRe.FindStringSubmatch(description); m != nil {
		return dnd5e.ResourceSuperiorityDie, atoi(m[1]), ""
	}
	return "", 0, ""
}

// classAssociations reads "Eldritch Invocations", "Monk (Way of the Four
// Elements)" or "Fighter (Arcane Archer): Arcane Shot"
func classAssociations(classes, featureType string) []dnd5e.ClassAssociation {
	classes = strings.TrimSpace(classes)
	if classes == "" {
		return featureTypeClasses[featureType]
	}
	if a, ok := optionListClasses[classes]; ok {
		return []dnd5e.ClassAssociation{a}
	}
	cleaned := trailingAfterParen.ReplaceAllString(classes, ")")
	if m := classSubclassRe.FindStringSubmatch(cleaned); m != nil {
		return []dnd5e.ClassAssociation{{Class: strings.TrimSpace(m[1]), Subclass: strings.TrimSpace(m[2])}}
	}
	return []dnd5e.ClassAssociation{{Class: classes}}
}
