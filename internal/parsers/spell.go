package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	materialRe          = regexp.MustCompile(`M \(([^)]+)\)`)
	parentheticalRe     = regexp.MustCompile(`\s*\([^)]+\)`)
	schoolPrefixRe      = regexp.MustCompile(`^School:\s*[^,]+,\s*`)
	higherLevelsRe      = regexp.MustCompile(`(?s)At Higher Levels:\s*(.+?)(?:\n\n|$)`)
	higherLevelsStripRe = regexp.MustCompile(`(?s)\n*At Higher Levels:\s*.+?(\n\n|$)`)
	damageTypeRe        = regexp.MustCompile(`(?i)^(\w+)\s+damage$`)
	scalingIncrementRe  = regexp.MustCompile(`(?i)increases by (\d+d\d+)`)
	projectileMoreRe    = regexp.MustCompile(`(?i)(?:creates?|fires?|hurls?) (\w+) (?:more|additional) (darts?|rays?|beams?|bolts?|missiles?|motes?)`)
	projectileBaseRe    = regexp.MustCompile(`(?i)(?:create|creates|hurl|hurls|fire|fires)\s+(\w+)\s+(?:\w+\s+)?(darts|rays|beams|bolts|motes|missiles)`)
	beamLevelRe         = regexp.MustCompile(`(?i)creates? more than one beam when you reach higher levels: two beams at 5th level`)
)

// SpellParser parses <spell> elements
type SpellParser struct{}

// NewSpellParser creates a SpellParser
func NewSpellParser() *SpellParser {
	return &SpellParser{}
}

// Parse reads every spell in a compendium document
func (p *SpellParser) Parse(r io.Reader) ([]*dnd5e.Spell, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	spells := make([]*dnd5e.Spell, 0, len(doc.Spells))
	for _, el := range doc.Spells {
		spells = append(spells, p.parseSpell(el))
	}
	return spells, nil
}

// ParseBytes is Parse over an in-memory document
func (p *SpellParser) ParseBytes(data []byte) ([]*dnd5e.Spell, error) {
	return p.Parse(bytes.NewReader(data))
}

func (p *SpellParser) parseSpell(el spellXML) *dnd5e.Spell {
	components := strings.TrimSpace(el.Components)
	var material string
	if m := materialRe.FindStringSubmatch(components); m != nil {
		material = m[1]
		components = parentheticalRe.ReplaceAllString(components, "")
	}

	duration := strings.TrimSpace(el.Duration)
	classes, tags := splitSpellClasses(el.Classes)

	var (
		description  strings.Builder
		higherLevels string
		sources      []dnd5e.SourceCitation
	)
	for _, text := range el.Text {
		if s := ParseSourceCitations(text); len(s) > 0 {
			sources = s
			text = StripSourceCitations(text)
		}
		if m := higherLevelsRe.FindStringSubmatch(text); m != nil {
			higherLevels = strings.TrimSpace(m[1])
			text = higherLevelsStripRe.ReplaceAllString(text, "$1")
		}
		if strings.TrimSpace(text) != "" {
			description.WriteString(text)
			description.WriteString("\n\n")
		}
	}

	spell := &dnd5e.Spell{
		Record: dnd5e.Record{
			Name:    strings.TrimSpace(el.Name),
			Sources: sourcesOrDefault(sources),
		},
		Level:              atoi(el.Level),
		SchoolCode:         strings.TrimSpace(el.School),
		CastingTime:        strings.TrimSpace(el.Time),
		Range:              strings.TrimSpace(el.Range),
		Components:         components,
		MaterialComponents: material,
		Duration:           duration,
		NeedsConcentration: strings.Contains(strings.ToLower(duration), "concentration"),
		IsRitual:           isYes(el.Ritual),
		Description:        strings.TrimSpace(description.String()),
		HigherLevels:       higherLevels,
		Classes:            classes,
		Tags:               tags,
	}
	spell.SetIdentity()

	spell.Effects = parseSpellEffects(el.Rolls, spell.Level, higherLevels)
	applyProjectileScaling(spell)
	spell.SavingThrows = ParseSavingThrows(spell.Description)
	spell.RandomTables = ParseRandomTables(spell.Description)
	return spell
}

// splitSpellClasses separates class and subclass names from other tags.
// Anything with a parenthesis or naming a base class is a class.
func splitSpellClasses(raw string) (classes, tags []string) {
	raw = schoolPrefixRe.ReplaceAllString(strings.TrimSpace(raw), "")
	for _, part := range splitList(raw) {
		if strings.Contains(part, "(") || dnd5e.IsBaseClass(part) {
			classes = append(classes, part)
		} else {
			tags = append(tags, part)
		}
	}
	return classes, tags
}

func parseSpellEffects(rolls []rollXML, spellLevel int, higherLevels string) []dnd5e.SpellEffect {
	var effects []dnd5e.SpellEffect
	increment := ""
	if m := scalingIncrementRe.FindStringSubmatch(higherLevels); m != nil {
		increment = m[1]
	}

	for _, r := range parseRolls(rolls) {
		effect := dnd5e.SpellEffect{
			EffectType:  spellEffectType(r.Description),
			Description: r.Description,
			DiceFormula: r.Formula,
			ScalingType: dnd5e.ScalingNone,
		}
		if m := damageTypeRe.FindStringSubmatch(strings.TrimSpace(r.Description)); m != nil {
			effect.DamageType = titleWords(m[1])
		}
		if r.Level != nil {
			if spellLevel == 0 && isCantripScalingLevel(*r.Level) {
				effect.ScalingType = dnd5e.ScalingCharacterLevel
				effect.MinCharacterLevel = *r.Level
			} else {
				effect.ScalingType = dnd5e.ScalingSpellSlotLevel
				effect.MinSpellSlot = *r.Level
			}
		}
		if increment != "" && (effect.EffectType == "damage" || effect.EffectType == "healing") {
			effect.ScalingIncrement = increment
		}
		effects = append(effects, effect)
	}
	return effects
}

func isCantripScalingLevel(level int) bool {
	switch level {
	case 0, 5, 11, 17:
		return true
	}
	return false
}

func spellEffectType(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "damage"):
		return "damage"
	case strings.Contains(lower, "heal"), strings.Contains(lower, "regain"):
		return "healing"
	default:
		return "other"
	}
}

// applyProjectileScaling records the starting number of darts, rays or beams
// on the first damage effect
func applyProjectileScaling(spell *dnd5e.Spell) {
	count := 0
	if m := projectileBaseRe.FindStringSubmatch(spell.Description); m != nil {
		count = WordToNumber(m[1])
	}
	if count == 0 && spell.Level == 0 && beamLevelRe.MatchString(spell.Description) {
		count = 1
	}
	if count == 0 && projectileMoreRe.MatchString(spell.HigherLevels) {
		count = 1
	}
	if count == 0 {
		return
	}
	for i := range spell.Effects {
		if spell.Effects[i].EffectType == "damage" {
			spell.Effects[i].ProjectileCount = count
			return
		}
	}
}
