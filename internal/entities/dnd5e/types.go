package dnd5e

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// EntityType names a top-level compendium entity
type EntityType string

// Compendium entity types
const (
	EntityTypeSpell           EntityType = "spell"
	EntityTypeClass           EntityType = "class"
	EntityTypeItem            EntityType = "item"
	EntityTypeMonster         EntityType = "monster"
	EntityTypeRace            EntityType = "race"
	EntityTypeFeat            EntityType = "feat"
	EntityTypeBackground      EntityType = "background"
	EntityTypeOptionalFeature EntityType = "optional_feature"
)

// AllEntityTypes returns every entity type in import order
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypeClass,
		EntityTypeSpell,
		EntityTypeRace,
		EntityTypeItem,
		EntityTypeBackground,
		EntityTypeFeat,
		EntityTypeOptionalFeature,
		EntityTypeMonster,
	}
}

// ParseEntityType validates a user supplied type name
func ParseEntityType(s string) (EntityType, bool) {
	for _, t := range AllEntityTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Entity is implemented by every compendium record
type Entity interface {
	core.Entity
	EntitySlug() string
	EntityName() string
	EntityID() int64
	SetEntityID(id int64)
}

// Record holds the identity columns shared by all compendium entities
type Record struct {
	ID       int64            `json:"id,omitempty"`
	Slug     string           `json:"slug"`
	FullSlug string           `json:"full_slug"`
	Name     string           `json:"name"`
	Sources  []SourceCitation `json:"sources,omitempty"`
}

// EntitySlug returns the slug the record is stored under
func (r *Record) EntitySlug() string { return r.Slug }

// EntityName returns the display name
func (r *Record) EntityName() string { return r.Name }

// EntityID returns the store row id, zero before the first import
func (r *Record) EntityID() int64 { return r.ID }

// SetEntityID records the store row id
func (r *Record) SetEntityID(id int64) { r.ID = id }

// GetID returns the stable identifier used by rpg-toolkit
func (r *Record) GetID() string { return r.FullSlug }

// SourceCitation points at a book and page range
type SourceCitation struct {
	Code  string `json:"code"`
	Pages string `json:"pages,omitempty"`
}

// Roll is a <roll> element from the compendium
type Roll struct {
	Description string `json:"description,omitempty"`
	Formula     string `json:"formula"`
	Level       *int   `json:"level,omitempty"`
}

// Trait is a named block of rules text
type Trait struct {
	Name        string           `json:"name"`
	Category    string           `json:"category,omitempty"`
	Description string           `json:"description"`
	Rolls       []Roll           `json:"rolls,omitempty"`
	Sources     []SourceCitation `json:"sources,omitempty"`
	SortOrder   int              `json:"sort_order"`
}

// Modifier changes a number or grants a condition on the owning entity.
// Value is a signed integer ("+1", "-10") or a notation such as "set:19",
// "disadvantage" or "resistance:all".
type Modifier struct {
	Category         string `json:"category"`
	Value            string `json:"value"`
	Condition        string `json:"condition,omitempty"`
	AbilityCode      string `json:"ability_code,omitempty"`
	SkillName        string `json:"skill_name,omitempty"`
	DamageTypeName   string `json:"damage_type_name,omitempty"`
	IsChoice         bool   `json:"is_choice,omitempty"`
	ChoiceCount      int    `json:"choice_count,omitempty"`
	ChoiceConstraint string `json:"choice_constraint,omitempty"`
}

// Proficiency types
const (
	ProficiencyTypeSkill       = "skill"
	ProficiencyTypeTool        = "tool"
	ProficiencyTypeWeapon      = "weapon"
	ProficiencyTypeArmor       = "armor"
	ProficiencyTypeSavingThrow = "saving_throw"
	ProficiencyTypeLanguage    = "language"
)

// Proficiency is either granted outright or offered as part of a choice group
type Proficiency struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Grants      bool     `json:"grants"`
	IsChoice    bool     `json:"is_choice,omitempty"`
	ChoiceGroup string   `json:"choice_group,omitempty"`
	Quantity    int      `json:"quantity,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// Reset timings
const (
	ResetShortRest = "short_rest"
	ResetLongRest  = "long_rest"
	ResetDawn      = "dawn"
)

// Counter tracks uses of a feature at a given level
type Counter struct {
	Name        string `json:"name"`
	Level       int    `json:"level"`
	Value       int    `json:"value"`
	ResetTiming string `json:"reset_timing,omitempty"`
	Subclass    string `json:"subclass,omitempty"`
}

// RandomTable is a dice table embedded in rules text
type RandomTable struct {
	Name      string             `json:"name"`
	DiceType  string             `json:"dice_type,omitempty"`
	TraitName string             `json:"trait_name,omitempty"`
	Entries   []RandomTableEntry `json:"entries"`
}

// RandomTableEntry is one row of a RandomTable
type RandomTableEntry struct {
	RollMin   int    `json:"roll_min"`
	RollMax   int    `json:"roll_max"`
	Result    string `json:"result"`
	SortOrder int    `json:"sort_order"`
}

// LanguageGrant is a known language or a number of free picks
type LanguageGrant struct {
	Name     string `json:"name,omitempty"`
	IsChoice bool   `json:"is_choice,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// ConditionEffect grants immunity or advantage against a condition
type ConditionEffect struct {
	Condition  string `json:"condition"`
	EffectType string `json:"effect_type"`
}

// Prerequisite types
const (
	PrerequisiteAbilityScore = "ability_score"
	PrerequisiteProficiency  = "proficiency"
	PrerequisiteRace         = "race"
	PrerequisiteFeature      = "feature"
)

// Prerequisite is one requirement; entries sharing GroupID are alternatives
type Prerequisite struct {
	Type         string `json:"type,omitempty"`
	Reference    string `json:"reference,omitempty"`
	MinimumValue int    `json:"minimum_value,omitempty"`
	Description  string `json:"description,omitempty"`
	GroupID      int    `json:"group_id"`
}

// EquipmentItem is an item reference with a quantity
type EquipmentItem struct {
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	Category          string `json:"category,omitempty"`
	IsChoice          bool   `json:"is_choice,omitempty"`
	ChoiceDescription string `json:"choice_description,omitempty"`
}

// EquipmentOption is one lettered option of an EquipmentChoice
type EquipmentOption struct {
	Letter string          `json:"letter"`
	Text   string          `json:"text"`
	Items  []EquipmentItem `json:"items"`
}

// EquipmentChoice is "(a) ... or (b) ..." from starting equipment
type EquipmentChoice struct {
	Group   int               `json:"group"`
	Options []EquipmentOption `json:"options"`
}
