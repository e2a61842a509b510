package dnd5e

// Spell scaling types
const (
	ScalingNone           = "none"
	ScalingCharacterLevel = "character_level"
	ScalingSpellSlotLevel = "spell_slot_level"
)

// Spell is a compendium spell
type Spell struct {
	Record
	Level              int           `json:"level"`
	SchoolCode         string        `json:"school_code"`
	CastingTime        string        `json:"casting_time"`
	Range              string        `json:"range"`
	Components         string        `json:"components"`
	MaterialComponents string        `json:"material_components,omitempty"`
	Duration           string        `json:"duration"`
	NeedsConcentration bool          `json:"needs_concentration"`
	IsRitual           bool          `json:"is_ritual"`
	Description        string        `json:"description"`
	HigherLevels       string        `json:"higher_levels,omitempty"`
	Classes            []string      `json:"classes,omitempty"`
	Tags               []string      `json:"tags,omitempty"`
	Effects            []SpellEffect `json:"effects,omitempty"`
	SavingThrows       []SavingThrow `json:"saving_throws,omitempty"`
	RandomTables       []RandomTable `json:"random_tables,omitempty"`
}

// GetType implements core.Entity
func (s *Spell) GetType() string { return string(EntityTypeSpell) }

// SpellEffect is a damage, healing or other roll from a spell
type SpellEffect struct {
	EffectType        string `json:"effect_type"`
	Description       string `json:"description,omitempty"`
	DiceFormula       string `json:"dice_formula"`
	DamageType        string `json:"damage_type,omitempty"`
	ScalingType       string `json:"scaling_type"`
	MinCharacterLevel int    `json:"min_character_level,omitempty"`
	MinSpellSlot      int    `json:"min_spell_slot,omitempty"`
	ScalingIncrement  string `json:"scaling_increment,omitempty"`
	ProjectileCount   int    `json:"projectile_count,omitempty"`
}

// SavingThrow is a save a spell or effect forces
type SavingThrow struct {
	Ability      string `json:"ability"`
	EffectOnSave string `json:"effect_on_save,omitempty"`
	Recurring    bool   `json:"recurring,omitempty"`
	Modifier     string `json:"modifier,omitempty"`
}

// CharacterClass is a base class; subclasses are stored as classes with a ParentSlug
type CharacterClass struct {
	Record
	ParentSlug             string                  `json:"parent_slug,omitempty"`
	HitDie                 int                     `json:"hit_die"`
	SpellcastingAbility    string                  `json:"spellcasting_ability,omitempty"`
	Description            string                  `json:"description,omitempty"`
	Archetype              string                  `json:"archetype,omitempty"`
	Proficiencies          []Proficiency           `json:"proficiencies,omitempty"`
	SkillChoices           int                     `json:"skill_choices,omitempty"`
	Traits                 []Trait                 `json:"traits,omitempty"`
	Features               []ClassFeature          `json:"features,omitempty"`
	Counters               []Counter               `json:"counters,omitempty"`
	SpellProgression       []SpellProgression      `json:"spell_progression,omitempty"`
	Subclasses             []Subclass              `json:"subclasses,omitempty"`
	MulticlassRequirements []MulticlassRequirement `json:"multiclass_requirements,omitempty"`
	Equipment              []EquipmentItem         `json:"equipment,omitempty"`
	EquipmentChoices       []EquipmentChoice       `json:"equipment_choices,omitempty"`
	StartingWealth         string                  `json:"starting_wealth,omitempty"`
	Languages              []LanguageGrant         `json:"languages,omitempty"`
}

// GetType implements core.Entity
func (c *CharacterClass) GetType() string { return string(EntityTypeClass) }

// IsSubclass reports whether the class hangs off a parent class
func (c *CharacterClass) IsSubclass() bool { return c.ParentSlug != "" }

// SubclassLevel is the lowest level any subclass feature appears at.
// Zero when the class has no subclasses.
func (c *CharacterClass) SubclassLevel() int {
	level := 0
	for _, sc := range c.Subclasses {
		for _, f := range sc.Features {
			if level == 0 || f.Level < level {
				level = f.Level
			}
		}
	}
	return level
}

// ProgressionAt returns the spell progression row for level, if any
func (c *CharacterClass) ProgressionAt(level int) (SpellProgression, bool) {
	for _, p := range c.SpellProgression {
		if p.Level == level {
			return p, true
		}
	}
	return SpellProgression{}, false
}

// SavingThrowProficiencies lists the ability names the class is proficient in
func (c *CharacterClass) SavingThrowProficiencies() []string {
	var out []string
	for _, p := range c.Proficiencies {
		if p.Type == ProficiencyTypeSavingThrow {
			out = append(out, p.Name)
		}
	}
	return out
}

// Subclass groups the features detected for one archetype
type Subclass struct {
	Name                string             `json:"name"`
	Features            []ClassFeature     `json:"features,omitempty"`
	Counters            []Counter          `json:"counters,omitempty"`
	SpellProgression    []SpellProgression `json:"spell_progression,omitempty"`
	SpellcastingAbility string             `json:"spellcasting_ability,omitempty"`
}

// ClassFeature is a feature gained at a class level
type ClassFeature struct {
	Level       int              `json:"level"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IsOptional  bool             `json:"is_optional,omitempty"`
	Sources     []SourceCitation `json:"sources,omitempty"`
	SortOrder   int              `json:"sort_order"`
	Rolls       []Roll           `json:"rolls,omitempty"`
	SpecialTags []string         `json:"special_tags,omitempty"`
	Modifiers   []Modifier       `json:"modifiers,omitempty"`
	GrantsASI   bool             `json:"grants_asi,omitempty"`
	ResetsOn    string           `json:"resets_on,omitempty"`
}

// SpellProgression is one row of a class spell slot table
type SpellProgression struct {
	Level         int    `json:"level"`
	CantripsKnown int    `json:"cantrips_known"`
	SpellsKnown   int    `json:"spells_known,omitempty"`
	Slots         [9]int `json:"slots"`
}

// MaxSlotLevel returns the highest spell level with at least one slot
func (p SpellProgression) MaxSlotLevel() int {
	for i := len(p.Slots) - 1; i >= 0; i-- {
		if p.Slots[i] > 0 {
			return i + 1
		}
	}
	return 0
}

// MulticlassRequirement is an ability minimum for taking a level in a class
type MulticlassRequirement struct {
	Ability       string `json:"ability"`
	Minimum       int    `json:"minimum"`
	IsAlternative bool   `json:"is_alternative,omitempty"`
}

// Item is a compendium item
type Item struct {
	Record
	TypeCode            string            `json:"type_code"`
	Detail              string            `json:"detail,omitempty"`
	Rarity              string            `json:"rarity"`
	RequiresAttunement  bool              `json:"requires_attunement"`
	IsMagic             bool              `json:"is_magic"`
	CostCP              *int              `json:"cost_cp,omitempty"`
	Weight              *float64          `json:"weight,omitempty"`
	DamageDice          string            `json:"damage_dice,omitempty"`
	VersatileDamage     string            `json:"versatile_damage,omitempty"`
	DamageTypeCode      string            `json:"damage_type_code,omitempty"`
	RangeNormal         *int              `json:"range_normal,omitempty"`
	RangeLong           *int              `json:"range_long,omitempty"`
	ArmorClass          *int              `json:"armor_class,omitempty"`
	StrengthRequirement *int              `json:"strength_requirement,omitempty"`
	StealthDisadvantage bool              `json:"stealth_disadvantage"`
	Description         string            `json:"description"`
	Properties          []string          `json:"properties,omitempty"`
	Proficiencies       []Proficiency     `json:"proficiencies,omitempty"`
	Modifiers           []Modifier        `json:"modifiers,omitempty"`
	Abilities           []ItemAbility     `json:"abilities,omitempty"`
	ChargesMax          *int              `json:"charges_max,omitempty"`
	RechargeFormula     string            `json:"recharge_formula,omitempty"`
	RechargeTiming      string            `json:"recharge_timing,omitempty"`
	RandomTables        []RandomTable     `json:"random_tables,omitempty"`
	Spells              []ItemSpell       `json:"spells,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
}

// GetType implements core.Entity
func (i *Item) GetType() string { return string(EntityTypeItem) }

// ItemAbility is a usable roll granted by an item
type ItemAbility struct {
	AbilityType string `json:"ability_type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RollFormula string `json:"roll_formula,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// ItemSpell is a spell an item lets its wielder cast
type ItemSpell struct {
	SpellName          string `json:"spell_name"`
	ChargesCostMin     int    `json:"charges_cost_min,omitempty"`
	ChargesCostMax     int    `json:"charges_cost_max,omitempty"`
	ChargesCostFormula string `json:"charges_cost_formula,omitempty"`
}

// MonsterSpeed holds every movement mode in feet
type MonsterSpeed struct {
	Walk     int  `json:"walk"`
	Fly      int  `json:"fly,omitempty"`
	Swim     int  `json:"swim,omitempty"`
	Climb    int  `json:"climb,omitempty"`
	Burrow   int  `json:"burrow,omitempty"`
	CanHover bool `json:"can_hover,omitempty"`
}

// Sense is a special sense with its range
type Sense struct {
	Type        string `json:"type"`
	Range       int    `json:"range"`
	BlindBeyond bool   `json:"blind_beyond,omitempty"`
}

// Monster action kinds
const (
	ActionKindTrait     = "trait"
	ActionKindAction    = "action"
	ActionKindReaction  = "reaction"
	ActionKindLegendary = "legendary"
)

// MonsterAction is a trait, action or reaction of a monster
type MonsterAction struct {
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AttackData  []string `json:"attack_data,omitempty"`
	Recharge    string   `json:"recharge,omitempty"`
	SortOrder   int      `json:"sort_order"`
}

// LegendaryAction is a legendary or lair action
type LegendaryAction struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category,omitempty"`
	ActionCost   int      `json:"action_cost"`
	IsLairAction bool     `json:"is_lair_action,omitempty"`
	AttackData   []string `json:"attack_data,omitempty"`
	SortOrder    int      `json:"sort_order"`
}

// Monster is a compendium creature
type Monster struct {
	Record
	SizeCode              string            `json:"size_code"`
	Type                  string            `json:"type"`
	CreatureType          string            `json:"creature_type,omitempty"`
	Alignment             string            `json:"alignment,omitempty"`
	ArmorClass            int               `json:"armor_class"`
	ArmorType             string            `json:"armor_type,omitempty"`
	HitPoints             int               `json:"hit_points"`
	HitDice               string            `json:"hit_dice,omitempty"`
	Speed                 MonsterSpeed      `json:"speed"`
	AbilityScores         map[string]int    `json:"ability_scores"`
	SavingThrows          map[string]int    `json:"saving_throws,omitempty"`
	Skills                map[string]int    `json:"skills,omitempty"`
	DamageVulnerabilities string            `json:"damage_vulnerabilities,omitempty"`
	DamageResistances     string            `json:"damage_resistances,omitempty"`
	DamageImmunities      string            `json:"damage_immunities,omitempty"`
	ConditionImmunities   string            `json:"condition_immunities,omitempty"`
	Senses                []Sense           `json:"senses,omitempty"`
	PassivePerception     int               `json:"passive_perception"`
	Languages             string            `json:"languages,omitempty"`
	ChallengeRating       string            `json:"challenge_rating"`
	ExperiencePoints      int               `json:"experience_points"`
	Traits                []MonsterAction   `json:"traits,omitempty"`
	Actions               []MonsterAction   `json:"actions,omitempty"`
	Reactions             []MonsterAction   `json:"reactions,omitempty"`
	LegendaryActions      []LegendaryAction `json:"legendary_actions,omitempty"`
	Spells                []string          `json:"spells,omitempty"`
	SpellSlots            []int             `json:"spell_slots,omitempty"`
	Description           string            `json:"description,omitempty"`
	Environment           string            `json:"environment,omitempty"`
	Tags                  []string          `json:"tags,omitempty"`
	Modifiers             []Modifier        `json:"modifiers,omitempty"`
}

// GetType implements core.Entity
func (m *Monster) GetType() string { return string(EntityTypeMonster) }

// AbilityBonus is a fixed racial ability increase or a choice of increases
type AbilityBonus struct {
	Ability          string `json:"ability,omitempty"`
	Value            int    `json:"value"`
	IsChoice         bool   `json:"is_choice,omitempty"`
	ChoiceCount      int    `json:"choice_count,omitempty"`
	ChoiceConstraint string `json:"choice_constraint,omitempty"`
}

// InnateSpell is a spell granted by a race or feat
type InnateSpell struct {
	SpellName        string   `json:"spell_name,omitempty"`
	IsCantrip        bool     `json:"is_cantrip,omitempty"`
	LevelRequirement int      `json:"level_requirement,omitempty"`
	UsageLimit       string   `json:"usage_limit,omitempty"`
	IsChoice         bool     `json:"is_choice,omitempty"`
	ChoiceCount      int      `json:"choice_count,omitempty"`
	ClassName        string   `json:"class_name,omitempty"`
	MaxLevel         int      `json:"max_level,omitempty"`
	Schools          []string `json:"schools,omitempty"`
	RitualOnly       bool     `json:"ritual_only,omitempty"`
}

// RaceSpellcasting lists innate spells and their ability
type RaceSpellcasting struct {
	Ability string        `json:"ability,omitempty"`
	Spells  []InnateSpell `json:"spells,omitempty"`
}

// Race is a race or, when ParentSlug is set, a subrace
type Race struct {
	Record
	BaseRaceName    string            `json:"base_race_name,omitempty"`
	ParentSlug      string            `json:"parent_slug,omitempty"`
	SizeCode        string            `json:"size_code"`
	Speed           int               `json:"speed"`
	Traits          []Trait           `json:"traits,omitempty"`
	BaseTraits      []Trait           `json:"-"`
	SubraceTraits   []Trait           `json:"-"`
	AbilityBonuses  []AbilityBonus    `json:"ability_bonuses,omitempty"`
	AbilityChoices  []AbilityBonus    `json:"ability_choices,omitempty"`
	Proficiencies   []Proficiency     `json:"proficiencies,omitempty"`
	Languages       []LanguageGrant   `json:"languages,omitempty"`
	Conditions      []ConditionEffect `json:"conditions,omitempty"`
	Spellcasting    *RaceSpellcasting `json:"spellcasting,omitempty"`
	Resistances     []string          `json:"resistances,omitempty"`
	Modifiers       []Modifier        `json:"modifiers,omitempty"`
	SubraceRequired bool              `json:"subrace_required,omitempty"`
}

// GetType implements core.Entity
func (r *Race) GetType() string { return string(EntityTypeRace) }

// IsSubrace reports whether the race hangs off a base race
func (r *Race) IsSubrace() bool { return r.ParentSlug != "" }

// Feat is a compendium feat
type Feat struct {
	Record
	PrerequisiteText string            `json:"prerequisite_text,omitempty"`
	Prerequisites    []Prerequisite    `json:"prerequisites,omitempty"`
	Description      string            `json:"description"`
	Modifiers        []Modifier        `json:"modifiers,omitempty"`
	Proficiencies    []Proficiency     `json:"proficiencies,omitempty"`
	Conditions       []ConditionEffect `json:"conditions,omitempty"`
	Spells           []InnateSpell     `json:"spells,omitempty"`
	Languages        []LanguageGrant   `json:"languages,omitempty"`
	ResetsOn         string            `json:"resets_on,omitempty"`
	Resistances      []string          `json:"resistances,omitempty"`
}

// GetType implements core.Entity
func (f *Feat) GetType() string { return string(EntityTypeFeat) }

// Background is a compendium background
type Background struct {
	Record
	Proficiencies []Proficiency   `json:"proficiencies,omitempty"`
	Traits        []Trait         `json:"traits,omitempty"`
	Languages     []LanguageGrant `json:"languages,omitempty"`
	Equipment     []EquipmentItem `json:"equipment,omitempty"`
	RandomTables  []RandomTable   `json:"random_tables,omitempty"`
}

// GetType implements core.Entity
func (b *Background) GetType() string { return string(EntityTypeBackground) }

// Optional feature types
const (
	OptionalFeatureEldritchInvocation  = "eldritch_invocation"
	OptionalFeatureElementalDiscipline = "elemental_discipline"
	OptionalFeatureManeuver            = "maneuver"
	OptionalFeatureMetamagic           = "metamagic"
	OptionalFeatureFightingStyle       = "fighting_style"
	OptionalFeatureArtificerInfusion   = "artificer_infusion"
	OptionalFeatureRune                = "rune"
	OptionalFeatureArcaneShot          = "arcane_shot"
)

// Resource types spent by optional features
const (
	ResourceKiPoints       = "ki_points"
	ResourceSorceryPoints  = "sorcery_points"
	ResourceSuperiorityDie = "superiority_die"
	ResourceCharges        = "charges"
)

// ClassAssociation links an optional feature to a class and optional subclass
type ClassAssociation struct {
	Class    string `json:"class"`
	Subclass string `json:"subclass,omitempty"`
}

// OptionalFeature is an invocation, maneuver, metamagic and the like
type OptionalFeature struct {
	Record
	FeatureType      string             `json:"feature_type"`
	LevelRequirement int                `json:"level_requirement,omitempty"`
	PrerequisiteText string             `json:"prerequisite_text,omitempty"`
	Description      string             `json:"description"`
	CastingTime      string             `json:"casting_time,omitempty"`
	Range            string             `json:"range,omitempty"`
	Duration         string             `json:"duration,omitempty"`
	SpellSchoolCode  string             `json:"spell_school_code,omitempty"`
	ResourceType     string             `json:"resource_type,omitempty"`
	ResourceCost     int                `json:"resource_cost,omitempty"`
	CostFormula      string             `json:"cost_formula,omitempty"`
	Classes          []ClassAssociation `json:"classes,omitempty"`
}

// GetType implements core.Entity
func (o *OptionalFeature) GetType() string { return string(EntityTypeOptionalFeature) }

var (
	_ Entity = (*Spell)(nil)
	_ Entity = (*CharacterClass)(nil)
	_ Entity = (*Item)(nil)
	_ Entity = (*Monster)(nil)
	_ Entity = (*Race)(nil)
	_ Entity = (*Feat)(nil)
	_ Entity = (*Background)(nil)
	_ Entity = (*OptionalFeature)(nil)
)
