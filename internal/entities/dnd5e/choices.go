package dnd5e

import "strings"

// ChoiceType represents the type of choice to be made
type ChoiceType string

const (
	// ChoiceTypeProficiency represents skill or tool proficiency picks
	ChoiceTypeProficiency ChoiceType = "proficiency"
	// ChoiceTypeLanguage represents language picks
	ChoiceTypeLanguage ChoiceType = "language"
	// ChoiceTypeEquipment represents an (a)/(b) starting equipment choice
	ChoiceTypeEquipment ChoiceType = "equipment"
	// ChoiceTypeEquipmentMode represents the equipment vs gold decision
	ChoiceTypeEquipmentMode ChoiceType = "equipment_mode"
	// ChoiceTypeSpell represents cantrip and spell picks
	ChoiceTypeSpell ChoiceType = "spell"
	// ChoiceTypeSubclass represents picking a subclass once the class reaches its subclass level
	ChoiceTypeSubclass ChoiceType = "subclass"
	// ChoiceTypeASI represents an ability score improvement
	ChoiceTypeASI ChoiceType = "asi"
	// ChoiceTypeHitPoints represents the roll-or-average hit point decision on level up
	ChoiceTypeHitPoints ChoiceType = "hit_points"
	// ChoiceTypeAbilityScore represents racial "choose N abilities" bonuses
	ChoiceTypeAbilityScore ChoiceType = "ability_score"
	// ChoiceTypeOptionalFeature represents invocations, maneuvers and similar picks
	ChoiceTypeOptionalFeature ChoiceType = "optional_feature"
)

// Sources of character data. Every granted piece of data is tagged with one
// so switches can remove exactly what they granted.
const (
	SourceRace       = "race"
	SourceSubrace    = "subrace"
	SourceClass      = "class"
	SourceSubclass   = "subclass"
	SourceBackground = "background"
	SourceFeat       = "feat"
	SourceLevelUp    = "level_up"
)

// PendingChoice is an unresolved decision the wizard still needs
type PendingChoice struct {
	ID        string            `json:"id"`
	Type      ChoiceType        `json:"type"`
	Source    string            `json:"source"`
	Label     string            `json:"label,omitempty"`
	Quantity  int               `json:"quantity"`
	Remaining int               `json:"remaining"`
	Options   []ChoiceOption    `json:"options,omitempty"`
	Level     int               `json:"level,omitempty"`
	ClassSlug string            `json:"class_slug,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ChoiceOption is one selectable value of a PendingChoice
type ChoiceOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []EquipmentItem `json:"items,omitempty"`
}

// OptionIDs returns the ids of every option
func (p *PendingChoice) OptionIDs() []string {
	ids := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

// HasOption reports whether id is a valid option
func (p *PendingChoice) HasOption(id string) bool {
	if len(p.Options) == 0 {
		return true
	}
	for _, o := range p.Options {
		if strings.EqualFold(o.ID, id) {
			return true
		}
	}
	return false
}

// ChoiceID builds a choice identifier prefixed with its source
func ChoiceID(source string, parts ...string) string {
	return source + ":" + strings.Join(parts, ":")
}

// ChoiceSource returns the source prefix of a choice id
func ChoiceSource(id string) string {
	source, _, _ := strings.Cut(id, ":")
	return source
}
