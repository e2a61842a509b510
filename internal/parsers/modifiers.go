package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Modifier categories
const (
	ModifierSavingThrow      = "saving_throw"
	ModifierSpellAttack      = "spell_attack"
	ModifierSpellDC          = "spell_dc"
	ModifierACMagic          = "ac_magic"
	ModifierAC               = "ac"
	ModifierInitiative       = "initiative"
	ModifierMeleeAttack      = "melee_attack"
	ModifierMeleeDamage      = "melee_damage"
	ModifierRangedAttack     = "ranged_attack"
	ModifierRangedDamage     = "ranged_damage"
	ModifierWeaponAttack     = "weapon_attack"
	ModifierWeaponDamage     = "weapon_damage"
	ModifierAttackBonus      = "attack_bonus"
	ModifierDamageBonus      = "damage_bonus"
	ModifierAbilityScore     = "ability_score"
	ModifierSkill            = "skill"
	ModifierSpeed            = "speed"
	ModifierHitPoints        = "hp"
	ModifierPassive          = "passive_score"
	ModifierDamageResist     = "damage_resistance"
	ModifierDamageImmune     = "damage_immunity"
	ModifierDamageVulnerable = "damage_vulnerability"
	ModifierBonus            = "bonus"
)

var modifierTextRe = regexp.MustCompile(`([\w\s]+?)\s*([+\-]\d+)`)

// ParseModifierText converts "<modifier category="bonus">ac +1</modifier>"
// style text into a Modifier. Returns nil when no signed value is present.
func ParseModifierText(text, xmlCategory string) *dnd5e.Modifier {
	m := modifierTextRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	target := strings.ToLower(collapseSpaces(m[1]))
	value := m[2]
	xmlCategory = strings.ToLower(strings.TrimSpace(xmlCategory))

	mod := &dnd5e.Modifier{Value: value}
	switch {
	case strings.Contains(target, "saving throw"):
		mod.Category = ModifierSavingThrow
	case strings.Contains(target, "spell attack"):
		mod.Category = ModifierSpellAttack
	case strings.Contains(target, "spell dc"):
		mod.Category = ModifierSpellDC
	case target == "ac" || strings.Contains(target, "armor class"):
		if xmlCategory == "bonus" {
			mod.Category = ModifierACMagic
		} else {
			mod.Category = ModifierAC
		}
	case strings.Contains(target, "initiative"):
		mod.Category = ModifierInitiative
	case strings.Contains(target, "melee attack"):
		mod.Category = ModifierMeleeAttack
	case strings.Contains(target, "melee damage"):
		mod.Category = ModifierMeleeDamage
	case strings.Contains(target, "ranged attack"):
		mod.Category = ModifierRangedAttack
	case strings.Contains(target, "ranged damage"):
		mod.Category = ModifierRangedDamage
	case strings.Contains(target, "weapon attack"):
		mod.Category = ModifierWeaponAttack
	case strings.Contains(target, "weapon damage"):
		mod.Category = ModifierWeaponDamage
	case strings.Contains(target, "attack"):
		mod.Category = ModifierAttackBonus
	case strings.Contains(target, "damage"):
		mod.Category = ModifierDamageBonus
	case strings.Contains(target, "speed"):
		mod.Category = ModifierSpeed
	case target == "hp" || strings.Contains(target, "hit point"):
		mod.Category = ModifierHitPoints
	case strings.Contains(target, "passive"):
		mod.Category = ModifierPassive
		mod.SkillName = titleWords(strings.TrimSpace(strings.TrimPrefix(target, "passive")))
	case xmlCategory == "ability score" || dnd5e.AbilityCode(target) != "":
		mod.Category = ModifierAbilityScore
		mod.AbilityCode = dnd5e.AbilityCode(target)
	case xmlCategory == "skill" || dnd5e.IsSkill(target):
		mod.Category = ModifierSkill
		mod.SkillName = titleWords(target)
	default:
		mod.Category = ModifierBonus
	}
	return mod
}

// parseModifierElements converts every <modifier> element, skipping ones
// without a signed value
func parseModifierElements(elems []modifierXML) []dnd5e.Modifier {
	var out []dnd5e.Modifier
	for _, e := range elems {
		if mod := ParseModifierText(e.Text, e.Category); mod != nil {
			out = append(out, *mod)
		}
	}
	return out
}

var (
	speedReducedRe  = regexp.MustCompile(`(?i)speed is reduced by (\d+) feet`)
	setScoreRe      = regexp.MustCompile(`(?i)your (\w+) score is (\d+)(?: (while [^.]+))?`)
	resistAllRe     = regexp.MustCompile(`(?i)resistance to all damage`)
	resistTypeRe    = regexp.MustCompile(`(?i)you (?:gain|have) resistance to (\w+) damage(?:[^.]*?(for [^.]+|while [^.]+))?`)
	advantageOnRe   = regexp.MustCompile(`(?i)advantage on (?:saving throws against being )?(\w+)`)
	immuneConditRe  = regexp.MustCompile(`(?i)(?:immune to|can't be) (?:being )?(\w+)`)
	hpTimesLevelRe  = regexp.MustCompile(`(?i)increases by an amount equal to (twice|\w+ times) your level`)
	hpPerLevelRe    = regexp.MustCompile(`(?i)hit point maximum increases by (?:an additional )?(\d+|\w+)`)
	speedIncreaseRe = regexp.MustCompile(`(?i)your (?:walking )?speed increases by (\d+) feet`)
)

// speedPenaltyModifier returns the heavy armor speed penalty of an item
func speedPenaltyModifier(text string, strengthRequirement *int) *dnd5e.Modifier {
	if strengthRequirement == nil {
		return nil
	}
	m := speedReducedRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &dnd5e.Modifier{
		Category:  ModifierSpeed,
		Value:     "-" + m[1],
		Condition: "strength < " + strconv.Itoa(*strengthRequirement),
	}
}

// setScoreModifiers reads "Your Strength score is 19 while you wear this belt"
func setScoreModifiers(text string) []dnd5e.Modifier {
	var out []dnd5e.Modifier
	for _, m := range setScoreRe.FindAllStringSubmatch(text, -1) {
		code := dnd5e.AbilityCode(m[1])
		if code == "" {
			continue
		}
		out = append(out, dnd5e.Modifier{
			Category:    ModifierAbilityScore,
			Value:       "set:" + m[2],
			AbilityCode: code,
			Condition:   strings.TrimSpace(m[3]),
		})
	}
	return out
}

// resistanceModifiers reads resistance grants from item or feat text
func resistanceModifiers(text string) []dnd5e.Modifier {
	if resistAllRe.MatchString(text) {
		return []dnd5e.Modifier{{Category: ModifierDamageResist, Value: "resistance:all"}}
	}
	var out []dnd5e.Modifier
	for _, m := range resistTypeRe.FindAllStringSubmatch(text, -1) {
		out = append(out, dnd5e.Modifier{
			Category:       ModifierDamageResist,
			Value:          "resistance",
			DamageTypeName: titleWords(m[1]),
			Condition:      strings.TrimSpace(m[2]),
		})
	}
	return out
}

// speedIncreaseModifiers reads "Your speed increases by 10 feet"
func speedIncreaseModifiers(text string) []dnd5e.Modifier {
	var out []dnd5e.Modifier
	for _, m := range speedIncreaseRe.FindAllStringSubmatch(text, -1) {
		out = append(out, dnd5e.Modifier{Category: ModifierSpeed, Value: "+" + m[1]})
	}
	return out
}

// hitPointsPerLevelModifiers reads Tough-style "increases by an amount equal
// to twice your level" and "increases by 1 every time you gain a level"
func hitPointsPerLevelModifiers(text string) []dnd5e.Modifier {
	perLevel := func(n int) []dnd5e.Modifier {
		return []dnd5e.Modifier{{Category: ModifierHitPoints, Value: "+" + strconv.Itoa(n), Condition: "per_level"}}
	}
	if m := hpTimesLevelRe.FindStringSubmatch(text); m != nil {
		word := strings.TrimSuffix(strings.ToLower(m[1]), " times")
		if n := WordToNumber(word); n > 0 {
			return perLevel(n)
		}
	}
	if !strings.Contains(strings.ToLower(text), "level") {
		return nil
	}
	if m := hpPerLevelRe.FindStringSubmatch(text); m != nil {
		if n := WordToNumber(m[1]); n > 0 {
			return perLevel(n)
		}
	}
	return nil
}

// conditionEffects reads immunities and advantages against conditions
func conditionEffects(text string) []dnd5e.ConditionEffect {
	lower := strings.ToLower(text)
	var out []dnd5e.ConditionEffect
	seen := map[string]bool{}
	add := func(cond, effect string) {
		key := cond + "|" + effect
		if cond == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, dnd5e.ConditionEffect{Condition: cond, EffectType: effect})
	}

	if strings.Contains(lower, "immune to disease") {
		add("disease", "immunity")
	}
	if strings.Contains(lower, "magically aged") || strings.Contains(lower, "magical aging") {
		add("magical aging", "immunity")
	}
	for _, m := range immuneConditRe.FindAllStringSubmatch(text, -1) {
		if cond := conditionName(m[1]); cond != "" {
			add(cond, "immunity")
		}
	}
	for _, m := range advantageOnRe.FindAllStringSubmatch(text, -1) {
		if cond := conditionName(m[1]); cond != "" {
			add(cond, "advantage")
		}
	}
	if strings.Contains(lower, "against poison") {
		add("poisoned", "advantage")
	}
	return out
}

var conditions = map[string]string{
	"blinded": "blinded", "charmed": "charmed", "deafened": "deafened",
	"frightened": "frightened", "grappled": "grappled", "incapacitated": "incapacitated",
	"invisible": "invisible", "paralyzed": "paralyzed", "petrified": "petrified",
	"poisoned": "poisoned", "prone": "prone", "restrained": "restrained",
	"stunned": "stunned", "exhaustion": "exhaustion", "exhausted": "exhaustion",
	"sleep": "sleep", "asleep": "sleep",
}

func conditionName(word string) string {
	return conditions[strings.ToLower(strings.TrimSpace(word))]
}

// titleWords capitalises each word: "sleight of hand" -> "Sleight Of Hand"
// except short connectives
func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if i > 0 && (w == "of" || w == "and" || w == "the") {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
