package parsers

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	archetypeRe          = regexp.MustCompile(`(?i)^(Martial Archetype|Primal Path|Monastic Tradition|Otherworldly Patron|Divine Domain|Arcane Tradition|Sacred Oath|Ranger Archetype|Roguish Archetype|Sorcerous Origin|Bard College|Druid Circle|College of|Artificer Specialist):\s*(.+)$`)
	subclassSuffixRe     = regexp.MustCompile(`\(([^)]+)\)$`)
	spellcastingFeatRe   = regexp.MustCompile(`^Spellcasting\s*\((.+)\)$`)
	abilityMinimumRe     = regexp.MustCompile(`(?s)Ability Score Minimum:(.+?)(?:Proficiencies Gained:|$)`)
	abilityBulletRe      = regexp.MustCompile(`(?i)•\s*(Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma)\s+(\d+)`)
	abilityOrBulletRe    = regexp.MustCompile(`(?i)•\s*(?:Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma)\s+\d+\s*,\s*or\b`)
	atLeastOneOfRe       = regexp.MustCompile(`(?i)at least 1 of`)
	toolChoiceQuantityRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five)\b`)
	musicalInstrumentRe  = regexp.MustCompile(`(?i)musical\s+instruments?`)
)

var subclassFalsePositives = []*regexp.Regexp{
	regexp.MustCompile(`^CR\s+\d+`),
	regexp.MustCompile(`(?i)^\d+\s*/\s*(rest|day)`),
	regexp.MustCompile(`(?i)^\d+(st|nd|rd|th)\b`),
	regexp.MustCompile(`(?i)\buses?\b`),
	regexp.MustCompile(`(?i)^\d+\s+slots?`),
	regexp.MustCompile(`(?i)^level\s+\d+`),
	regexp.MustCompile(`(?i)^\d+\s+times?`),
}

var subclassQualifiers = map[string]bool{
	"revised": true, "alternative": true, "optional": true, "variant": true,
}

// secretLanguages are granted by a class feature of the same name
var secretLanguages = map[string]string{
	"thieves' cant": "Thieves' Cant",
	"druidic":       "Druidic",
}

// ClassParser parses <class> elements
type ClassParser struct{}

// NewClassParser creates a ClassParser
func NewClassParser() *ClassParser {
	return &ClassParser{}
}

// Parse reads every class in a compendium document
func (p *ClassParser) Parse(r io.Reader) ([]*dnd5e.CharacterClass, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	classes := make([]*dnd5e.CharacterClass, 0, len(doc.Classes))
	for _, el := range doc.Classes {
		classes = append(classes, p.parseClass(el))
	}
	return classes, nil
}

// ParseBytes is Parse over an in-memory document
func (p *ClassParser) ParseBytes(data []byte) ([]*dnd5e.CharacterClass, error) {
	return p.Parse(bytes.NewReader(data))
}

func (p *ClassParser) parseClass(el classXML) *dnd5e.CharacterClass {
	class := &dnd5e.CharacterClass{
		Record:      dnd5e.Record{Name: strings.TrimSpace(el.Name)},
		HitDie:      atoi(el.HD),
		Description: joinText(el.Text),
	}
	if strings.TrimSpace(el.SpellAbility) != "" && hasNonOptionalSlots(el) {
		class.SpellcastingAbility = strings.TrimSpace(el.SpellAbility)
	}
	class.Proficiencies = parseClassProficiencies(el)
	class.SkillChoices = atoi(el.NumSkills)
	class.Traits = parseTraits(el.Traits)

	features := parseClassFeatures(el)
	class.MulticlassRequirements = parseMulticlassRequirements(features, class.Name)
	class.SpellProgression = parseSpellProgression(el)
	class.Counters = parseClassCounters(el)

	optional := parseOptionalSpellProgression(el)
	class.Subclasses, class.Features, class.Archetype = detectSubclasses(features, class.Counters, optional)

	class.StartingWealth = strings.TrimSpace(el.Wealth)
	class.Equipment, class.EquipmentChoices = parseStartingEquipment(el)
	class.Languages = parseClassLanguages(class.Features)

	// The class file rarely cites itself; features and traits do.
	var sources []dnd5e.SourceCitation
	for _, t := range class.Traits {
		if len(t.Sources) > 0 {
			sources = t.Sources
			break
		}
	}
	if sources == nil {
		for _, f := range features {
			if len(f.Sources) > 0 {
				sources = f.Sources
				break
			}
		}
	}
	class.Sources = sourcesOrDefault(sources)
	class.SetIdentity()
	return class
}

func parseClassProficiencies(el classXML) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	choiceCounter := 1

	for _, armor := range splitList(el.Armor) {
		out = append(out, dnd5e.Proficiency{Name: armor, Type: dnd5e.ProficiencyTypeArmor, Grants: true})
	}
	for _, weapon := range splitList(el.Weapons) {
		out = append(out, dnd5e.Proficiency{Name: weapon, Type: dnd5e.ProficiencyTypeWeapon, Grants: true})
	}
	for _, tool := range splitList(el.Tools) {
		if isToolChoice(tool) {
			out = append(out, dnd5e.Proficiency{
				Name:        tool,
				Type:        dnd5e.ProficiencyTypeTool,
				Grants:      true,
				IsChoice:    true,
				ChoiceGroup: fmt.Sprintf("tool_choice_%d", choiceCounter),
				Quantity:    toolChoiceQuantity(tool),
			})
			choiceCounter++
			continue
		}
		out = append(out, dnd5e.Proficiency{Name: tool, Type: dnd5e.ProficiencyTypeTool, Grants: true})
	}

	var skills []string
	for _, item := range splitList(el.Proficiency) {
		if code := dnd5e.AbilityCode(item); code != "" && len(item) > 3 {
			out = append(out, dnd5e.Proficiency{Name: item, Type: dnd5e.ProficiencyTypeSavingThrow, Grants: true})
			continue
		}
		skills = append(skills, item)
	}

	numSkills := strings.TrimSpace(el.NumSkills)
	if numSkills == "" {
		for _, s := range skills {
			out = append(out, dnd5e.Proficiency{Name: s, Type: dnd5e.ProficiencyTypeSkill, Grants: true})
		}
		return out
	}
	group := fmt.Sprintf("skill_choice_%d", choiceCounter)
	for i, s := range skills {
		prof := dnd5e.Proficiency{
			Name:        s,
			Type:        dnd5e.ProficiencyTypeSkill,
			Grants:      true,
			IsChoice:    true,
			ChoiceGroup: group,
		}
		if i == 0 {
			prof.Quantity = atoi(numSkills)
		}
		out = append(out, prof)
	}
	return out
}

// isToolChoice detects "one type of artisan's tools of your choice" and
// "three musical instruments of your choice"
func isToolChoice(tool string) bool {
	lower := strings.ToLower(tool)
	choice := strings.Contains(lower, "your choice") || strings.Contains(lower, "any ")
	if strings.Contains(lower, "artisan") {
		return choice
	}
	if musicalInstrumentRe.MatchString(lower) {
		return choice || toolChoiceQuantityRe.MatchString(lower)
	}
	return false
}

func toolChoiceQuantity(tool string) int {
	if m := toolChoiceQuantityRe.FindStringSubmatch(tool); m != nil {
		return WordToNumber(m[1])
	}
	return 1
}

func parseClassFeatures(el classXML) []dnd5e.ClassFeature {
	var features []dnd5e.ClassFeature
	sortOrder := 0
	for _, al := range el.Autolevels {
		grantsASI := isYes(al.ScoreImprovement)
		for _, f := range al.Features {
			text := joinText(f.Text)
			var tags []string
			for _, s := range f.Special {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
			features = append(features, dnd5e.ClassFeature{
				Level:       al.Level,
				Name:        strings.TrimSpace(f.Name),
				Description: text,
				IsOptional:  isYes(f.Optional),
				Sources:     ParseSourceCitations(text),
				SortOrder:   sortOrder,
				Rolls:       parseRolls(f.Rolls),
				SpecialTags: tags,
				Modifiers:   parseModifierElements(f.Modifiers),
				GrantsASI:   grantsASI,
				ResetsOn:    ParseRestTiming(text),
			})
			sortOrder++
		}
	}
	return features
}

// parseMulticlassRequirements reads the "Multiclass <Class>" feature:
//
//	Ability Score Minimum:
//	• Strength 13, or
//	• Dexterity 13
func parseMulticlassRequirements(features []dnd5e.ClassFeature, className string) []dnd5e.MulticlassRequirement {
	name := "Multiclass " + className
	var description string
	found := false
	for _, f := range features {
		if f.Name == name {
			description = f.Description
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	section := abilityMinimumRe.FindStringSubmatch(description)
	if section == nil {
		return nil
	}
	text := section[1]
	alternative := atLeastOneOfRe.MatchString(text) || abilityOrBulletRe.MatchString(text)

	var out []dnd5e.MulticlassRequirement
	for _, m := range abilityBulletRe.FindAllStringSubmatch(text, -1) {
		minimum, _ := strconv.Atoi(m[2])
		out = append(out, dnd5e.MulticlassRequirement{
			Ability:       dnd5e.AbilityCode(m[1]),
			Minimum:       minimum,
			IsAlternative: alternative,
		})
	}
	return out
}

func hasNonOptionalSlots(el classXML) bool {
	for _, al := range el.Autolevels {
		if al.Slots != nil && !isYes(al.Slots.Optional) {
			return true
		}
	}
	return false
}

func parseSlotRow(level int, value string) dnd5e.SpellProgression {
	row := dnd5e.SpellProgression{Level: level}
	for i, part := range strings.Split(value, ",") {
		n := atoi(part)
		if i == 0 {
			row.CantripsKnown = n
			continue
		}
		if i-1 < len(row.Slots) {
			row.Slots[i-1] = n
		}
	}
	return row
}

func spellsKnownByLevel(el classXML) map[int]int {
	known := map[int]int{}
	for _, al := range el.Autolevels {
		for _, c := range al.Counters {
			if strings.TrimSpace(c.Name) == "Spells Known" {
				known[al.Level] = atoi(c.Value)
				break
			}
		}
	}
	return known
}

// parseSpellProgression reads the base class slot table. Optional slots belong
// to a subclass and are skipped; Spells Known is merged only for full
// base class casters.
func parseSpellProgression(el classXML) []dnd5e.SpellProgression {
	var rows []dnd5e.SpellProgression
	index := map[int]int{}
	hasOptional := false
	for _, al := range el.Autolevels {
		if al.Slots == nil {
			continue
		}
		if isYes(al.Slots.Optional) {
			hasOptional = true
			continue
		}
		if i, ok := index[al.Level]; ok {
			rows[i] = parseSlotRow(al.Level, al.Slots.Value)
			continue
		}
		index[al.Level] = len(rows)
		rows = append(rows, parseSlotRow(al.Level, al.Slots.Value))
	}
	if len(rows) == 0 || hasOptional {
		return rows
	}
	for level, n := range spellsKnownByLevel(el) {
		if i, ok := index[level]; ok {
			rows[i].SpellsKnown = n
		}
	}
	return rows
}

type optionalSpellcasting struct {
	subclass    string
	ability     string
	progression []dnd5e.SpellProgression
}

// parseOptionalSpellProgression assigns optional slots to the subclass named
// by a "Spellcasting (Subclass)" feature
func parseOptionalSpellProgression(el classXML) *optionalSpellcasting {
	var rows []dnd5e.SpellProgression
	for _, al := range el.Autolevels {
		if al.Slots != nil && isYes(al.Slots.Optional) {
			rows = append(rows, parseSlotRow(al.Level, al.Slots.Value))
		}
	}
	if len(rows) == 0 {
		return nil
	}

	subclass := ""
	for _, al := range el.Autolevels {
		for _, f := range al.Features {
			if m := spellcastingFeatRe.FindStringSubmatch(strings.TrimSpace(f.Name)); m != nil {
				subclass = strings.TrimSpace(m[1])
				break
			}
		}
		if subclass != "" {
			break
		}
	}
	if subclass == "" {
		return nil
	}

	known := spellsKnownByLevel(el)
	for i := range rows {
		rows[i].SpellsKnown = known[rows[i].Level]
	}
	return &optionalSpellcasting{
		subclass:    subclass,
		ability:     strings.TrimSpace(el.SpellAbility),
		progression: rows,
	}
}

func parseClassCounters(el classXML) []dnd5e.Counter {
	var out []dnd5e.Counter
	for _, al := range el.Autolevels {
		for _, c := range al.Counters {
			out = append(out, dnd5e.Counter{
				Name:        strings.TrimSpace(c.Name),
				Level:       al.Level,
				Value:       atoi(c.Value),
				ResetTiming: parseCounterReset(c.Reset),
				Subclass:    strings.TrimSpace(c.Subclass),
			})
		}
	}
	return out
}

// subclassFromSuffix returns the "(Name)" suffix of a feature name when it
// looks like a subclass rather than a usage note
func subclassFromSuffix(name string) string {
	m := subclassSuffixRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	candidate := strings.TrimSpace(m[1])
	for _, re := range subclassFalsePositives {
		if re.MatchString(candidate) {
			return ""
		}
	}
	if subclassQualifiers[strings.ToLower(candidate)] {
		return ""
	}
	if _, err := strconv.ParseFloat(candidate, 64); err == nil {
		return ""
	}
	if candidate == "" || candidate[0] < 'A' || candidate[0] > 'Z' {
		return ""
	}
	return candidate
}

// featureBelongsToSubclass matches only the explicit naming patterns so a
// subclass name that is a substring of another feature is not misassigned
func featureBelongsToSubclass(featureName, subclass string) bool {
	if m := archetypeRe.FindStringSubmatch(featureName); m != nil && strings.EqualFold(strings.TrimSpace(m[2]), subclass) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(featureName), "("+strings.ToLower(subclass)+")")
}

// detectSubclasses groups features and counters by subclass and returns the
// remaining base class features
func detectSubclasses(features []dnd5e.ClassFeature, counters []dnd5e.Counter, optional *optionalSpellcasting) ([]dnd5e.Subclass, []dnd5e.ClassFeature, string) {
	names := map[string]bool{}
	archetype := ""
	for _, f := range features {
		if m := archetypeRe.FindStringSubmatch(f.Name); m != nil {
			if archetype == "" {
				archetype = strings.TrimSpace(m[1])
			}
			names[strings.TrimSpace(m[2])] = true
		}
		if s := subclassFromSuffix(f.Name); s != "" {
			names[s] = true
		}
	}
	for _, c := range counters {
		if c.Subclass != "" {
			names[c.Subclass] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	claimed := make([]bool, len(features))
	subclasses := make([]dnd5e.Subclass, 0, len(sorted))
	for _, name := range sorted {
		sc := dnd5e.Subclass{Name: name}
		for i, f := range features {
			if featureBelongsToSubclass(f.Name, name) {
				sc.Features = append(sc.Features, f)
				claimed[i] = true
			}
		}
		for _, c := range counters {
			if c.Subclass == name {
				sc.Counters = append(sc.Counters, c)
			}
		}
		if optional != nil && optional.subclass == name {
			sc.SpellProgression = optional.progression
			sc.SpellcastingAbility = optional.ability
		}
		subclasses = append(subclasses, sc)
	}

	base := make([]dnd5e.ClassFeature, 0, len(features))
	for i, f := range features {
		if !claimed[i] {
			base = append(base, f)
		}
	}
	return subclasses, base, archetype
}

func parseClassLanguages(features []dnd5e.ClassFeature) []dnd5e.LanguageGrant {
	var out []dnd5e.LanguageGrant
	for _, f := range features {
		if lang, ok := secretLanguages[strings.ToLower(f.Name)]; ok {
			out = append(out, dnd5e.LanguageGrant{Name: lang})
		}
	}
	return out
}
