package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Feat condition effect types
const (
	EffectAdvantage           = "advantage"
	EffectDisadvantage        = "disadvantage"
	EffectNegatesDisadvantage = "negates_disadvantage"
)

var (
	featProfChoiceRe    = regexp.MustCompile(`(?i)gain proficiency (?:with|in)(?: any combination of)?\s+(one|two|three|four|five|six)\s+(.+?)\s+of your choice`)
	featProfFixedRe     = regexp.MustCompile(`(?im)gain proficiency (?:with|in)\s+([^.]+?)\.?$`)
	andSplitRe          = regexp.MustCompile(`(?i)\s+and\s+|,\s*`)
	orSplitRe           = regexp.MustCompile(`(?i)\s+or\s+`)
	advantageOnTextRe   = regexp.MustCompile(`(?i)you have advantage on ([^.]+)`)
	disadvantageOnRe    = regexp.MustCompile(`(?i)you have disadvantage on ([^.]+)`)
	noDisadvantageRe    = regexp.MustCompile(`(?i)(?:doesn't|does not) impose disadvantage on ([^.]+)`)
	skillCheckRe        = regexp.MustCompile(`(?i)^[A-Z][a-z]+\s*\(([^)]+)\)(?:\s+and\s+[A-Z][a-z]+\s*\(([^)]+)\))?\s+checks?\b`)
	resistDealtByRe     = regexp.MustCompile(`(?i)you have resistance to (the damage dealt by [^.]+)`)
	resistTypesRe       = regexp.MustCompile(`(?i)you have resistance to ([^.]+?) damage`)
	abilityPrereqRe     = regexp.MustCompile(`(?i)^((?:Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma)(?:\s+or\s+(?:Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma))*)\s+(\d+)\s+or\s+higher$`)
	proficiencyPrereqRe = regexp.MustCompile(`(?i)^Proficiency (with|in)\s+(?:the\s+)?(.+?)(?:\s+skill)?$`)
	trailingProfRe      = regexp.MustCompile(`(?i),\s+(Proficiency (?:with|in)\s+.+)$`)
	raceSubraceRe       = regexp.MustCompile(`^[A-Z][a-z]+(?:-[A-Z][a-z]+)?\s*\([A-Z][a-z]+\)$`)
	raceOrRaceRe        = regexp.MustCompile(`^[A-Z][a-z]+(?:-[A-Z][a-z]+)?\s+or\s+[A-Z][a-z]+(?:-[A-Z][a-z]+)?$`)
	raceListRe          = regexp.MustCompile(`^[A-Z][a-z]+(?:-[A-Z][a-z]+)?(?:\s+[A-Z][a-z]+)?(?:,\s+[A-Z][a-z]+(?:-[A-Z][a-z]+)?(?:\s+[A-Z][a-z]+)*)*$`)
	learnSpellRe        = regexp.MustCompile(`(?i)you learn the ([a-z][a-z\s']+?) spell`)
	levelSpellChoiceRe  = regexp.MustCompile(`(?i)(one|two|three)\s+(\d+)(?:st|nd|rd|th)-level spells? of your choice`)
	schoolConstraintRe  = regexp.MustCompile(`(?i)must be from the ([a-z]+)(?: or ([a-z]+))? school`)
	classCantripRe      = regexp.MustCompile(`(?i)(one|two|three|four)\s+([a-z]+)\s+cantrips?\s+of your choice`)
	classSpellChoiceRe  = regexp.MustCompile(`(?i)(?:choose\s+)?(one|two|three)\s+(\d+)(?:st|nd|rd|th)-level\s+([a-z]+)\s+spells?`)
	ritualOnlyRe        = regexp.MustCompile(`(?i)must have the ritual tag`)
	passiveBonusRe      = regexp.MustCompile(`(?i)\+(\d+)\s+bonus\s+to\s+(?:your\s+)?passive`)
	passiveSkillRe      = regexp.MustCompile(`(?i)passive\s+(Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma)\s*\(([^)]+)\)`)
	learnLanguagesRe    = regexp.MustCompile(`(?i)you learn (one|two|three|four|five|six) languages? of your choice`)
	asiRe               = regexp.MustCompile(`(?i)increase your ([A-Za-z, ]+?) score by (\d+)`)
	asiAnyRe            = regexp.MustCompile(`(?i)increase one ability score of your choice by (\d+)`)
)

// FeatParser parses <feat> elements
type FeatParser struct{}

// NewFeatParser creates a FeatParser
func NewFeatParser() *FeatParser {
	return &FeatParser{}
}

// Parse reads every <feat> element
func (p *FeatParser) Parse(r io.Reader) ([]*dnd5e.Feat, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	feats := make([]*dnd5e.Feat, 0, len(doc.Feats))
	for _, el := range doc.Feats {
		feats = append(feats, parseFeat(el))
	}
	return feats, nil
}

// ParseBytes parses an in-memory document
func (p *FeatParser) ParseBytes(data []byte) ([]*dnd5e.Feat, error) {
	return p.Parse(bytes.NewReader(data))
}

func parseFeat(el featXML) *dnd5e.Feat {
	text := joinText(el.Text)
	description := StripSourceCitations(text)
	prereq := strings.TrimSpace(el.Prerequisite)

	xmlMods := parseModifierElements(el.Modifiers)
	mods := make([]dnd5e.Modifier, 0, len(xmlMods))
	for _, m := range xmlMods {
		// replaced by the specific passive_score modifier below
		if m.Category == ModifierPassive && m.SkillName == "" {
			continue
		}
		mods = append(mods, m)
	}
	mods = append(mods, passiveScoreModifiers(description, xmlMods)...)
	mods = append(mods, skillAdvantageModifiers(description)...)
	mods = append(mods, hitPointsPerLevelModifiers(description)...)
	mods = append(mods, speedIncreaseModifiers(description)...)
	mods = append(mods, asiModifiers(description, xmlMods)...)

	feat := &dnd5e.Feat{
		Record: dnd5e.Record{
			Name:    strings.TrimSpace(el.Name),
			Sources: sourcesOrDefault(ParseSourceCitations(text)),
		},
		PrerequisiteText: prereq,
		Prerequisites:    ParsePrerequisites(prereq),
		Description:      description,
		Modifiers:        mods,
		Proficiencies:    append(featProficiencyElements(el.Proficiency), featProficiencies(description)...),
		Conditions:       featConditions(description),
		Spells:           FeatSpells(description),
		Languages:        featLanguages(description),
		ResetsOn:         ParseRestTiming(description),
		Resistances:      featResistances(description),
	}
	feat.SetIdentity()
	return feat
}

func featProficiencyElements(elems []string) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	for _, raw := range elems {
		for _, name := range splitList(raw) {
			out = append(out, dnd5e.Proficiency{Name: name, Type: InferProficiencyType(name), Grants: true})
		}
	}
	return out
}

// featProficiencies reads "gain proficiency with four weapons of your choice"
// and "gain proficiency with medium armor and shields"
func featProficiencies(text string) []dnd5e.Proficiency {
	if m := featProfChoiceRe.FindStringSubmatch(text); m != nil {
		kind := strings.TrimSpace(m[2])
		return []dnd5e.Proficiency{{
			Name:        kind,
			Type:        InferProficiencyType(kind),
			Grants:      true,
			IsChoice:    true,
			ChoiceGroup: "feat_choice_1",
			Quantity:    WordToNumber(m[1]),
		}}
	}
	m := featProfFixedRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []dnd5e.Proficiency
	for _, name := range andSplitRe.Split(strings.TrimSpace(m[1]), -1) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, dnd5e.Proficiency{Name: name, Type: InferProficiencyType(name), Grants: true})
	}
	return out
}

// featConditions reads advantage and disadvantage grants; skill check
// advantages become modifiers instead
func featConditions(text string) []dnd5e.ConditionEffect {
	var out []dnd5e.ConditionEffect
	for _, m := range advantageOnTextRe.FindAllStringSubmatch(text, -1) {
		if skillCheckRe.MatchString(m[1]) {
			continue
		}
		out = append(out, dnd5e.ConditionEffect{Condition: strings.TrimSpace(m[1]), EffectType: EffectAdvantage})
	}
	for _, m := range noDisadvantageRe.FindAllStringSubmatch(text, -1) {
		out = append(out, dnd5e.ConditionEffect{Condition: strings.TrimSpace(m[1]), EffectType: EffectNegatesDisadvantage})
	}
	for _, m := range disadvantageOnRe.FindAllStringSubmatch(text, -1) {
		if skillCheckRe.MatchString(m[1]) {
			continue
		}
		out = append(out, dnd5e.ConditionEffect{Condition: strings.TrimSpace(m[1]), EffectType: EffectDisadvantage})
	}
	return out
}

// skillAdvantageModifiers reads "advantage on Charisma (Deception) and
// Charisma (Performance) checks"
func skillAdvantageModifiers(text string) []dnd5e.Modifier {
	var out []dnd5e.Modifier
	for _, m := range advantageOnTextRe.FindAllStringSubmatch(text, -1) {
		sm := skillCheckRe.FindStringSubmatch(strings.TrimSpace(m[1]))
		if sm == nil {
			continue
		}
		for _, skill := range sm[1:] {
			if skill = strings.TrimSpace(skill); skill == "" {
				continue
			}
			out = append(out, dnd5e.Modifier{Category: ModifierSkill, SkillName: skill, Value: EffectAdvantage})
		}
	}
	return out
}

// featResistances returns damage type names, or "all" with a qualifier for
// "resistance to the damage dealt by traps"
func featResistances(text string) []string {
	if m := resistDealtByRe.FindStringSubmatch(text); m != nil {
		return []string{"all (" + strings.TrimSpace(m[1]) + ")"}
	}
	m := resistTypesRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, t := range andSplitRe.Split(m[1], -1) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParsePrerequisites reads feat prerequisites. Entries sharing a GroupID are
// alternatives; different groups must all be met.
func ParsePrerequisites(text string) []dnd5e.Prerequisite {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if m := abilityPrereqRe.FindStringSubmatch(text); m != nil {
		var out []dnd5e.Prerequisite
		for _, name := range orSplitRe.Split(m[1], -1) {
			out = append(out, dnd5e.Prerequisite{
				Type:         dnd5e.PrerequisiteAbilityScore,
				Reference:    dnd5e.AbilityCode(name),
				MinimumValue: atoi(m[2]),
				GroupID:      1,
			})
		}
		return out
	}
	if p, ok := proficiencyPrerequisite(text, 1); ok {
		return []dnd5e.Prerequisite{p}
	}
	if looksLikeRaceList(text) {
		return racePrerequisites(text)
	}
	return []dnd5e.Prerequisite{{Description: text, GroupID: 1}}
}

func proficiencyPrerequisite(text string, group int) (dnd5e.Prerequisite, bool) {
	m := proficiencyPrereqRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return dnd5e.Prerequisite{}, false
	}
	return dnd5e.Prerequisite{
		Type:      dnd5e.PrerequisiteProficiency,
		Reference: strings.TrimSpace(m[2]),
		GroupID:   group,
	}, true
}

func looksLikeRaceList(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "ability to") || strings.Contains(lower, "feature") {
		return false
	}
	withoutProf := trailingProfRe.ReplaceAllString(text, "")
	if strings.Contains(strings.ToLower(withoutProf), "the ") {
		return false
	}
	return raceSubraceRe.MatchString(withoutProf) || raceOrRaceRe.MatchString(withoutProf) || raceListRe.MatchString(withoutProf)
}

// racePrerequisites reads "Dwarf, Gnome, Halfling, Small Race, Proficiency in
// Acrobatics": the races are one group, the trailing proficiency a second
func racePrerequisites(text string) []dnd5e.Prerequisite {
	var out []dnd5e.Prerequisite
	races := text
	var prof string
	if m := trailingProfRe.FindStringSubmatch(text); m != nil {
		prof = m[1]
		races = trailingProfRe.ReplaceAllString(text, "")
	}
	for _, name := range splitList(orSplitRe.ReplaceAllString(races, ", ")) {
		if prof != "" && strings.EqualFold(name, "Small Race") {
			continue
		}
		out = append(out, dnd5e.Prerequisite{Type: dnd5e.PrerequisiteRace, Reference: name, GroupID: 1})
	}
	if prof != "" {
		if p, ok := proficiencyPrerequisite(prof, 2); ok {
			out = append(out, p)
		}
	}
	return out
}

// FeatSpells reads fixed spells and spell choices a feat grants
func FeatSpells(text string) []dnd5e.InnateSpell {
	var out []dnd5e.InnateSpell
	usage := featUsageLimit(text)
	for _, m := range learnSpellRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		lower := strings.ToLower(name)
		if strings.Contains(lower, "-level") || strings.Contains(lower, "cantrip") || strings.Contains(lower, "of your choice") {
			continue
		}
		out = append(out, dnd5e.InnateSpell{SpellName: titleWords(name), UsageLimit: usage})
	}

	school := schoolConstraintRe.FindStringSubmatch(text)
	if m := levelSpellChoiceRe.FindStringSubmatch(text); m != nil && school != nil {
		spell := dnd5e.InnateSpell{IsChoice: true, ChoiceCount: WordToNumber(m[1]), MaxLevel: atoi(m[2])}
		for _, s := range school[1:] {
			if s != "" {
				spell.Schools = append(spell.Schools, strings.ToLower(s))
			}
		}
		out = append(out, spell)
	}
	if m := classCantripRe.FindStringSubmatch(text); m != nil {
		out = append(out, dnd5e.InnateSpell{
			IsChoice:    true,
			IsCantrip:   true,
			ChoiceCount: WordToNumber(m[1]),
			ClassName:   strings.ToLower(m[2]),
		})
	}
	if m := classSpellChoiceRe.FindStringSubmatch(text); m != nil && school == nil {
		out = append(out, dnd5e.InnateSpell{
			IsChoice:    true,
			ChoiceCount: WordToNumber(m[1]),
			MaxLevel:    atoi(m[2]),
			ClassName:   strings.ToLower(m[3]),
			RitualOnly:  ritualOnlyRe.MatchString(text),
		})
	}
	return out
}

func featUsageLimit(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "finish a short or long rest"), strings.Contains(lower, "finish a short rest"):
		return "1/short rest"
	case strings.Contains(lower, "finish a long rest"):
		return "1/long rest"
	default:
		return ""
	}
}

// passiveScoreModifiers reads "+5 bonus to your passive Wisdom (Perception)
// and passive Intelligence (Investigation) scores", keeping the skill that
// matches the ability the feat's XML modifier increases
func passiveScoreModifiers(text string, xmlMods []dnd5e.Modifier) []dnd5e.Modifier {
	bonus := passiveBonusRe.FindStringSubmatch(text)
	if bonus == nil {
		return nil
	}
	var chosen string
	for _, m := range xmlMods {
		if m.Category == ModifierAbilityScore && m.AbilityCode != "" {
			chosen = m.AbilityCode
			break
		}
	}
	if chosen == "" {
		return nil
	}
	for _, m := range passiveSkillRe.FindAllStringSubmatch(text, -1) {
		if dnd5e.AbilityCode(m[1]) == chosen {
			return []dnd5e.Modifier{{Category: ModifierPassive, Value: "+" + bonus[1], SkillName: strings.TrimSpace(m[2])}}
		}
	}
	return nil
}

func featLanguages(text string) []dnd5e.LanguageGrant {
	if m := learnLanguagesRe.FindStringSubmatch(text); m != nil {
		return []dnd5e.LanguageGrant{{IsChoice: true, Quantity: WordToNumber(m[1])}}
	}
	return nil
}

// asiModifiers reads half-feat increases: "Increase your Strength or
// Dexterity score by 1" becomes a choice, a single ability a fixed increase.
// Abilities already covered by an XML modifier are skipped.
func asiModifiers(text string, xmlMods []dnd5e.Modifier) []dnd5e.Modifier {
	covered := map[string]bool{}
	for _, m := range xmlMods {
		if m.Category == ModifierAbilityScore {
			covered[m.AbilityCode] = true
		}
	}
	if m := asiAnyRe.FindStringSubmatch(text); m != nil {
		return []dnd5e.Modifier{{
			Category: ModifierAbilityScore, Value: "+" + m[1],
			IsChoice: true, ChoiceCount: 1, ChoiceConstraint: "any",
		}}
	}
	m := asiRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var codes []string
	for _, part := range andSplitRe.Split(orSplitRe.ReplaceAllString(m[1], ", "), -1) {
		if code := dnd5e.AbilityCode(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	switch {
	case len(codes) == 1 && !covered[codes[0]]:
		return []dnd5e.Modifier{{Category: ModifierAbilityScore, AbilityCode: codes[0], Value: "+" + m[2]}}
	case len(codes) > 1 && len(covered) == 0:
		return []dnd5e.Modifier{{
			Category: ModifierAbilityScore, Value: "+" + m[2],
			IsChoice: true, ChoiceCount: 1, ChoiceConstraint: "specific:" + strings.Join(codes, ","),
		}}
	default:
		return nil
	}
}
