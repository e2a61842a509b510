package dnd5e

import "strings"

// Ability codes as they appear in the compendium XML
const (
	AbilityStrength     = "STR"
	AbilityDexterity    = "DEX"
	AbilityConstitution = "CON"
	AbilityIntelligence = "INT"
	AbilityWisdom       = "WIS"
	AbilityCharisma     = "CHA"
)

// AbilityCodes lists ability codes in sheet order
var AbilityCodes = []string{
	AbilityStrength,
	AbilityDexterity,
	AbilityConstitution,
	AbilityIntelligence,
	AbilityWisdom,
	AbilityCharisma,
}

var abilityNames = map[string]string{
	AbilityStrength:     "Strength",
	AbilityDexterity:    "Dexterity",
	AbilityConstitution: "Constitution",
	AbilityIntelligence: "Intelligence",
	AbilityWisdom:       "Wisdom",
	AbilityCharisma:     "Charisma",
}

// AbilityName returns the full ability name for a code
func AbilityName(code string) string {
	return abilityNames[strings.ToUpper(code)]
}

// AbilityCode maps a full name or three letter abbreviation to its code.
// Returns "" when the input is not an ability.
func AbilityCode(name string) string {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return ""
	}
	code := strings.ToUpper(name[:3])
	full, ok := abilityNames[code]
	if !ok {
		return ""
	}
	if len(name) > 3 && !strings.EqualFold(name, full) {
		return ""
	}
	return code
}

// Skills maps each skill to its governing ability
var Skills = map[string]string{
	"Acrobatics":      AbilityDexterity,
	"Animal Handling": AbilityWisdom,
	"Arcana":          AbilityIntelligence,
	"Athletics":       AbilityStrength,
	"Deception":       AbilityCharisma,
	"History":         AbilityIntelligence,
	"Insight":         AbilityWisdom,
	"Intimidation":    AbilityCharisma,
	"Investigation":   AbilityIntelligence,
	"Medicine":        AbilityWisdom,
	"Nature":          AbilityIntelligence,
	"Perception":      AbilityWisdom,
	"Performance":     AbilityCharisma,
	"Persuasion":      AbilityCharisma,
	"Religion":        AbilityIntelligence,
	"Sleight of Hand": AbilityDexterity,
	"Stealth":         AbilityDexterity,
	"Survival":        AbilityWisdom,
}

// IsSkill reports whether name is one of the eighteen skills
func IsSkill(name string) bool {
	for s := range Skills {
		if strings.EqualFold(s, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// SelectableLanguages are the languages a "one of your choice" grant can pick
var SelectableLanguages = []string{
	"Common", "Dwarvish", "Elvish", "Giant", "Gnomish", "Goblin", "Halfling", "Orc",
	"Abyssal", "Celestial", "Draconic", "Deep Speech", "Infernal", "Primordial", "Sylvan", "Undercommon",
}

// Armor type codes of compendium items
const (
	ItemTypeLightArmor  = "LA"
	ItemTypeMediumArmor = "MA"
	ItemTypeHeavyArmor  = "HA"
	ItemTypeShield      = "S"
)

// Alignments accepted by the wizard
var Alignments = []string{
	"Lawful Good",
	"Neutral Good",
	"Chaotic Good",
	"Lawful Neutral",
	"True Neutral",
	"Chaotic Neutral",
	"Lawful Evil",
	"Neutral Evil",
	"Chaotic Evil",
}

// Ability score methods
const (
	AbilityMethodManual        = "manual"
	AbilityMethodStandardArray = "standard_array"
	AbilityMethodPointBuy      = "point_buy"
	AbilityMethodRolled        = "rolled"
)

// StandardArray is the fixed score set for the standard array method
var StandardArray = []int{15, 14, 13, 12, 10, 8}

// PointBuyBudget is the number of points available in point buy
const PointBuyBudget = 27

// PointBuyCost returns the cost of a score under point buy, or -1 when the
// score is outside 8..15
func PointBuyCost(score int) int {
	switch {
	case score < 8 || score > 15:
		return -1
	case score <= 13:
		return score - 8
	case score == 14:
		return 7
	default:
		return 9
	}
}

// Equipment modes
const (
	EquipmentModeEquipment = "equipment"
	EquipmentModeGold      = "gold"
)

// Sizes by code
var Sizes = map[string]string{
	"T": "Tiny",
	"S": "Small",
	"M": "Medium",
	"L": "Large",
	"H": "Huge",
	"G": "Gargantuan",
}

// Base classes of the core rules
var BaseClasses = []string{
	"Artificer", "Barbarian", "Bard", "Cleric", "Druid", "Fighter",
	"Monk", "Paladin", "Ranger", "Rogue", "Sorcerer", "Warlock", "Wizard",
}

// IsBaseClass reports whether name is one of BaseClasses
func IsBaseClass(name string) bool {
	for _, c := range BaseClasses {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// MaxLevel is the highest character level
const MaxLevel = 20

// ProficiencyBonus returns the proficiency bonus for a total character level
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// AbilityModifier returns the modifier for a score
func AbilityModifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return (score - 11) / 2
}
