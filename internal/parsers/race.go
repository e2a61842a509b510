package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Trait categories on race elements
const (
	TraitCategorySpecies    = "species"
	TraitCategorySubspecies = "subspecies"
)

// ModifierBonusFeat marks a race that grants a feat of the player's choice
const ModifierBonusFeat = "bonus_feat"

var (
	parenSubraceRe    = regexp.MustCompile(`^(.+?)\s*\((.+)\)$`)
	abilityBonusRe    = regexp.MustCompile(`^([A-Za-z]{3})\s*([+\-]?\d+)$`)
	differentScoresRe = regexp.MustCompile(`(?i)(\w+)\s+(?:different|other)\s+ability scores?\s+of your choice\s+increases?\s+by\s+(\d+)`)
	oneOtherScoreRe   = regexp.MustCompile(`(?i)one (?:other )?ability score of your choice increases by (\d+)`)
	eitherScoreRe     = regexp.MustCompile(`(?i)Increase either your (\w+) or (\w+) score by (\d+)`)
	cantripChoiceRe   = regexp.MustCompile(`(?i)You know (?:one|a) (?:\w+ )?cantrip of your choice from the ([\w\s]+?) spell list`)
	knownCantripRe    = regexp.MustCompile(`(?i)You know the ([\w\s']+?) cantrip`)
	levelSpellRe      = regexp.MustCompile(`(?i)(?:Once you reach|When you reach|Starting at) (\d+)(?:st|nd|rd|th) level[^.]*?cast the ([\w\s']+?) spell`)
	castOnceRe        = regexp.MustCompile(`(?i)You can cast the ([\w\s']+?) spell once`)
	skillAndToolRe    = regexp.MustCompile(`(?i)(\w+)\s+skill\s+proficienc(?:y|ies)\s+and\s+(\w+)\s+tool\s+proficienc(?:y|ies)\s+of your choice`)
	gainSkillChoiceRe = regexp.MustCompile(`(?i)You gain proficienc(?:y|ies) in (\w+)\s+(?:other\s+)?skills?\s+of your choice`)
	skillChoiceRe     = regexp.MustCompile(`(?i)(\w+)\s+skill\s+proficienc(?:y|ies)\s+of your choice`)
	gainToolChoiceRe  = regexp.MustCompile(`(?i)You gain proficienc(?:y|ies) (?:in|with) (\w+)\s+tools?\s+of your choice`)
	toolChoiceRe      = regexp.MustCompile(`(?i)(\w+)\s+tool\s+proficienc(?:y|ies)\s+of your choice`)
	bonusFeatRe       = regexp.MustCompile(`(?i)you gain (?:one|a) feat of your choice`)
	replacesTraitRe   = regexp.MustCompile(`(?i)replaces\s+the\s+([A-Za-z\s]+?)\s+trait`)
)

const variantBundleSuffix = ", Variants"

// RaceParser parses <race> elements. "Base, Variants" bundles expand into one
// subrace per variant trait.
type RaceParser struct{}

// NewRaceParser creates a RaceParser
func NewRaceParser() *RaceParser {
	return &RaceParser{}
}

// Parse reads every <race> element
func (p *RaceParser) Parse(r io.Reader) ([]*dnd5e.Race, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	races := make([]*dnd5e.Race, 0, len(doc.Races))
	for _, el := range doc.Races {
		if isVariantBundle(el) {
			races = append(races, expandVariantBundle(el)...)
			continue
		}
		races = append(races, parseRace(el))
	}
	return races, nil
}

// ParseBytes parses an in-memory document
func (p *RaceParser) ParseBytes(data []byte) ([]*dnd5e.Race, error) {
	return p.Parse(bytes.NewReader(data))
}

// SplitRaceName reads "Dwarf, Mark of Warding" and "Dwarf (Hill)". For the
// comma form the subrace name drops the base; the parenthesised form keeps
// the full name.
func SplitRaceName(full string) (base, name string) {
	full = strings.TrimSpace(full)
	if b, sub, ok := strings.Cut(full, ","); ok {
		return strings.TrimSpace(b), strings.TrimSpace(sub)
	}
	if m := parenSubraceRe.FindStringSubmatch(full); m != nil {
		return strings.TrimSpace(m[1]), full
	}
	return "", full
}

func parseRace(el raceXML) *dnd5e.Race {
	base, name := SplitRaceName(el.Name)
	traits := parseTraits(el.Traits)

	race := &dnd5e.Race{
		Record: dnd5e.Record{
			Name:    name,
			Sources: sourcesOrDefault(traitSources(traits)),
		},
		BaseRaceName: base,
		Traits:       traits,
	}
	race.BaseTraits, race.SubraceTraits = splitTraitsByCategory(traits)
	applyRaceCommon(race, el, traits)
	race.Spellcasting = raceSpellcasting(el.SpellAbility, traits)
	race.SetIdentity()
	return race
}

// applyRaceCommon sets the fields shared by plain races and expanded variants
func applyRaceCommon(race *dnd5e.Race, el raceXML, traits []dnd5e.Trait) {
	race.SizeCode = strings.TrimSpace(el.Size)
	race.Speed = atoi(el.Speed)
	race.AbilityBonuses = ParseAbilityBonuses(el.Ability)
	race.AbilityChoices = raceAbilityChoices(traits)
	race.Proficiencies = append(raceProficiencies(el), proficiencyChoicesFromTraits(traits)...)
	race.Languages = raceLanguages(traits)
	race.Conditions = traitConditions(traits)
	race.Resistances = raceResistances(el.Resist)
	race.Modifiers = append(raceModifiers(el), bonusFeatModifiers(traits)...)
}

func traitSources(traits []dnd5e.Trait) []dnd5e.SourceCitation {
	for _, t := range traits {
		if len(t.Sources) > 0 {
			return t.Sources
		}
	}
	return nil
}

// splitTraitsByCategory puts subspecies traits on the subrace and everything
// else on the base race
func splitTraitsByCategory(traits []dnd5e.Trait) (base, sub []dnd5e.Trait) {
	for _, t := range traits {
		if t.Category == TraitCategorySubspecies {
			sub = append(sub, t)
		} else {
			base = append(base, t)
		}
	}
	return base, sub
}

// ParseAbilityBonuses reads "Str +2, Cha +1"; the sign is optional
func ParseAbilityBonuses(s string) []dnd5e.AbilityBonus {
	var out []dnd5e.AbilityBonus
	for _, part := range splitList(s) {
		m := abilityBonusRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		code := dnd5e.AbilityCode(m[1])
		if code == "" {
			continue
		}
		v, _ := strconv.Atoi(m[2])
		out = append(out, dnd5e.AbilityBonus{Ability: code, Value: v})
	}
	return out
}

func raceAbilityChoices(traits []dnd5e.Trait) []dnd5e.AbilityBonus {
	var out []dnd5e.AbilityBonus
	for _, t := range traits {
		if t.Name != "Ability Score Increase" && t.Name != "Ability Score Increases" {
			continue
		}
		text := t.Description
		switch {
		case differentScoresRe.MatchString(text):
			m := differentScoresRe.FindStringSubmatch(text)
			out = append(out, dnd5e.AbilityBonus{
				IsChoice: true, ChoiceCount: WordToNumber(m[1]), Value: atoi(m[2]), ChoiceConstraint: "different",
			})
		case oneOtherScoreRe.MatchString(text):
			m := oneOtherScoreRe.FindStringSubmatch(text)
			out = append(out, dnd5e.AbilityBonus{
				IsChoice: true, ChoiceCount: 1, Value: atoi(m[1]), ChoiceConstraint: "any",
			})
		case eitherScoreRe.MatchString(text):
			m := eitherScoreRe.FindStringSubmatch(text)
			out = append(out, dnd5e.AbilityBonus{
				IsChoice: true, ChoiceCount: 1, Value: atoi(m[3]),
				ChoiceConstraint: "specific:" + dnd5e.AbilityCode(m[1]) + "," + dnd5e.AbilityCode(m[2]),
			})
		}
	}
	return out
}

func raceProficiencies(el raceXML) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	for _, raw := range el.Proficiency {
		for _, name := range splitList(raw) {
			out = append(out, dnd5e.Proficiency{Name: name, Type: InferProficiencyType(name), Grants: true})
		}
	}
	for _, name := range splitList(el.Weapons) {
		out = append(out, dnd5e.Proficiency{Name: name, Type: dnd5e.ProficiencyTypeWeapon, Grants: true})
	}
	for _, name := range splitList(el.Armor) {
		out = append(out, dnd5e.Proficiency{Name: name, Type: dnd5e.ProficiencyTypeArmor, Grants: true})
	}
	return out
}

// proficiencyChoicesFromTraits reads "one skill proficiency and one tool
// proficiency of your choice" and the single-kind variants
func proficiencyChoicesFromTraits(traits []dnd5e.Trait) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	group := 0
	choice := func(kind, word string) {
		n := WordToNumber(word)
		if n == 0 {
			return
		}
		group++
		out = append(out, dnd5e.Proficiency{
			Type:        kind,
			Grants:      true,
			IsChoice:    true,
			ChoiceGroup: kind + "_choice_" + strconv.Itoa(group),
			Quantity:    n,
		})
	}
	for _, t := range traits {
		text := t.Description
		if m := skillAndToolRe.FindStringSubmatch(text); m != nil {
			choice(dnd5e.ProficiencyTypeSkill, m[1])
			choice(dnd5e.ProficiencyTypeTool, m[2])
			continue
		}
		if m := gainSkillChoiceRe.FindStringSubmatch(text); m != nil {
			choice(dnd5e.ProficiencyTypeSkill, m[1])
		} else if m := skillChoiceRe.FindStringSubmatch(text); m != nil {
			choice(dnd5e.ProficiencyTypeSkill, m[1])
		}
		if m := gainToolChoiceRe.FindStringSubmatch(text); m != nil {
			choice(dnd5e.ProficiencyTypeTool, m[1])
		} else if m := toolChoiceRe.FindStringSubmatch(text); m != nil {
			choice(dnd5e.ProficiencyTypeTool, m[1])
		}
	}
	return out
}

func raceLanguages(traits []dnd5e.Trait) []dnd5e.LanguageGrant {
	for _, t := range traits {
		if t.Name == "Languages" {
			return ExtractLanguages(t.Description)
		}
	}
	return nil
}

func traitConditions(traits []dnd5e.Trait) []dnd5e.ConditionEffect {
	var out []dnd5e.ConditionEffect
	seen := map[dnd5e.ConditionEffect]bool{}
	for _, t := range traits {
		for _, c := range conditionEffects(t.Description) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func raceResistances(resist []string) []string {
	var out []string
	for _, r := range resist {
		out = append(out, splitList(r)...)
	}
	return out
}

// raceModifiers reads <modifier> elements on the race and inside its traits
func raceModifiers(el raceXML) []dnd5e.Modifier {
	mods := parseModifierElements(el.Modifiers)
	for _, t := range el.Traits {
		mods = append(mods, parseModifierElements(t.Modifiers)...)
	}
	return mods
}

func bonusFeatModifiers(traits []dnd5e.Trait) []dnd5e.Modifier {
	var out []dnd5e.Modifier
	for _, t := range traits {
		if strings.EqualFold(t.Name, "feat") && bonusFeatRe.MatchString(t.Description) {
			out = append(out, dnd5e.Modifier{Category: ModifierBonusFeat, Value: "1"})
		}
	}
	return out
}

// raceSpellcasting reads innate cantrips and spells from trait text
func raceSpellcasting(ability string, traits []dnd5e.Trait) *dnd5e.RaceSpellcasting {
	sc := &dnd5e.RaceSpellcasting{Ability: dnd5e.AbilityCode(ability)}
	for _, t := range traits {
		sc.Spells = append(sc.Spells, InnateSpells(t.Description)...)
	}
	if sc.Ability == "" && len(sc.Spells) == 0 {
		return nil
	}
	return sc
}

// InnateSpells reads the cantrips and level-gated spells a trait grants
func InnateSpells(text string) []dnd5e.InnateSpell {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "cantrip") && !strings.Contains(lower, "cast") && !strings.Contains(lower, "spell") {
		return nil
	}

	var out []dnd5e.InnateSpell
	if m := cantripChoiceRe.FindStringSubmatch(text); m != nil {
		for _, class := range strings.Split(strings.ToLower(strings.TrimSpace(m[1])), " or ") {
			out = append(out, dnd5e.InnateSpell{
				IsCantrip:   true,
				IsChoice:    true,
				ChoiceCount: 1,
				ClassName:   strings.TrimSpace(class),
			})
		}
	}
	for _, m := range knownCantripRe.FindAllStringSubmatch(text, -1) {
		out = append(out, dnd5e.InnateSpell{SpellName: titleWords(m[1]), IsCantrip: true})
	}

	usage := "1/long rest"
	if ParseRestTiming(text) == dnd5e.ResetShortRest {
		usage = "1/short rest"
	}
	for _, m := range levelSpellRe.FindAllStringSubmatch(text, -1) {
		out = append(out, dnd5e.InnateSpell{
			SpellName:        titleWords(m[2]),
			LevelRequirement: atoi(m[1]),
			UsageLimit:       usage,
		})
	}
	if len(out) == 0 {
		for _, m := range castOnceRe.FindAllStringSubmatch(text, -1) {
			out = append(out, dnd5e.InnateSpell{SpellName: titleWords(m[1]), UsageLimit: usage})
		}
	}
	return out
}

func isVariantBundle(el raceXML) bool {
	if !strings.HasSuffix(strings.TrimSpace(el.Name), variantBundleSuffix) {
		return false
	}
	count := 0
	for _, t := range el.Traits {
		name := strings.TrimSpace(t.Name)
		if strings.TrimSpace(t.Category) == TraitCategorySubspecies &&
			strings.HasPrefix(name, "Variant:") && !strings.Contains(name, "Appearance") {
			count++
		}
	}
	return count >= 2
}

// expandVariantBundle turns "Tiefling, Variants" into a Feral subrace that
// keeps the replaceable trait plus one subrace per "Variant:" trait
func expandVariantBundle(el raceXML) []*dnd5e.Race {
	base, _ := SplitRaceName(el.Name)
	all := parseTraits(el.Traits)

	var variants []dnd5e.Trait
	var appearance *dnd5e.Trait
	replaced := map[string]bool{}
	for i := range all {
		t := all[i]
		if t.Category != TraitCategorySubspecies {
			continue
		}
		switch {
		case strings.Contains(t.Name, "Appearance"):
			appearance = &all[i]
		case strings.HasPrefix(t.Name, "Variant:"):
			variants = append(variants, t)
			if m := replacesTraitRe.FindStringSubmatch(t.Description); m != nil {
				replaced[strings.TrimSpace(m[1])] = true
			}
		}
	}

	var shared []dnd5e.Trait
	var replaceable *dnd5e.Trait
	for i := range all {
		t := all[i]
		if t.Category == TraitCategorySubspecies {
			continue
		}
		if t.Category == TraitCategorySpecies && replaced[t.Name] {
			replaceable = &all[i]
			continue
		}
		shared = append(shared, t)
	}
	sources := sourcesOrDefault(traitSources(shared))

	build := func(name string, traits []dnd5e.Trait, spellTraits []dnd5e.Trait) *dnd5e.Race {
		if appearance != nil {
			traits = append(traits, *appearance)
		}
		race := &dnd5e.Race{
			Record:       dnd5e.Record{Name: name, Sources: sources},
			BaseRaceName: base,
			Traits:       traits,
		}
		applyRaceCommon(race, el, all)
		race.Spellcasting = raceSpellcasting(el.SpellAbility, spellTraits)
		race.SetIdentity()
		return race
	}

	feral := append([]dnd5e.Trait(nil), shared...)
	if replaceable != nil {
		feral = append(feral, *replaceable)
	}
	out := []*dnd5e.Race{build("Feral", feral, feral)}
	for _, v := range variants {
		traits := append(append([]dnd5e.Trait(nil), shared...), v)
		name := strings.TrimSpace(strings.TrimPrefix(v.Name, "Variant:"))
		out = append(out, build(name, traits, []dnd5e.Trait{v}))
	}
	return out
}
