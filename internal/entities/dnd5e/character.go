// Package dnd5e implements the D&D 5e entities
package dnd5e

import "strings"

// Character is the aggregate the creation wizard builds.
// NOTE: This is a data-only struct. Derived numbers (HP, AC, saves) are
// computed by the wizard, not here.
type Character struct {
	ID             string               `json:"id"`
	Name           string               `json:"name,omitempty"`
	Alignment      string               `json:"alignment,omitempty"`
	RaceSlug       string               `json:"race_slug,omitempty"`
	SubraceSlug    string               `json:"subrace_slug,omitempty"`
	BackgroundSlug string               `json:"background_slug,omitempty"`
	Classes        []CharacterClassLink `json:"classes,omitempty"`
	AbilityMethod  string               `json:"ability_method,omitempty"`
	AbilityScores  map[string]int       `json:"ability_scores,omitempty"`
	AbilityBonuses []AbilityGrant       `json:"ability_bonuses,omitempty"`
	EquipmentMode  string               `json:"equipment_mode,omitempty"`
	Gold           int                  `json:"gold,omitempty"`
	Equipment      []GrantedItem        `json:"equipment,omitempty"`
	Spells         []Grant              `json:"spells,omitempty"`
	Features       []Grant              `json:"features,omitempty"`
	Languages      []Grant              `json:"languages,omitempty"`
	Proficiencies  []Grant              `json:"proficiencies,omitempty"`
	Selections     map[string][]string  `json:"selections,omitempty"`
	HitPointRolls  []HitPointRoll       `json:"hit_point_rolls,omitempty"`
	PendingLevelUp []PendingChoice      `json:"pending_level_up,omitempty"`
	IsComplete     bool                 `json:"is_complete"`
	Tags           []string             `json:"tags,omitempty"`
	CreatedAt      int64                `json:"created_at"`
	UpdatedAt      int64                `json:"updated_at"`
}

// GetID implements core.Entity
func (c *Character) GetID() string { return c.ID }

// GetType implements core.Entity
func (c *Character) GetType() string { return "character" }

// CharacterClassLink is one class the character has levels in
type CharacterClassLink struct {
	ClassSlug    string `json:"class_slug"`
	SubclassSlug string `json:"subclass_slug,omitempty"`
	Level        int    `json:"level"`
	IsPrimary    bool   `json:"is_primary,omitempty"`
}

// Grant is a named piece of data tagged with where it came from
type Grant struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Type     string `json:"type,omitempty"`
	Level    int    `json:"level,omitempty"`
	ChoiceID string `json:"choice_id,omitempty"`
}

// GrantedItem is a piece of equipment tagged with its source
type GrantedItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Source   string `json:"source"`
	ChoiceID string `json:"choice_id,omitempty"`
}

// AbilityGrant is an ability increase tagged with its source
type AbilityGrant struct {
	Ability  string `json:"ability"`
	Value    int    `json:"value"`
	Source   string `json:"source"`
	ChoiceID string `json:"choice_id,omitempty"`
}

// HitPointRoll records how HP were gained for one level
type HitPointRoll struct {
	ClassSlug string `json:"class_slug"`
	Level     int    `json:"level"`
	Value     int    `json:"value"`
	Rolled    bool   `json:"rolled,omitempty"`
}

// TotalLevel sums every class level
func (c *Character) TotalLevel() int {
	total := 0
	for _, cl := range c.Classes {
		total += cl.Level
	}
	return total
}

// PrimaryClass returns the first class taken, or nil
func (c *Character) PrimaryClass() *CharacterClassLink {
	for i := range c.Classes {
		if c.Classes[i].IsPrimary {
			return &c.Classes[i]
		}
	}
	if len(c.Classes) > 0 {
		return &c.Classes[0]
	}
	return nil
}

// ClassLink returns the entry for classSlug, or nil
func (c *Character) ClassLink(classSlug string) *CharacterClassLink {
	for i := range c.Classes {
		if c.Classes[i].ClassSlug == classSlug {
			return &c.Classes[i]
		}
	}
	return nil
}

// OptionalFeatureCount counts the granted optional features of featureType,
// e.g. maneuver or eldritch_invocation
func (c *Character) OptionalFeatureCount(featureType string) int {
	suffix := ":" + string(ChoiceTypeOptionalFeature) + ":" + featureType
	n := 0
	for _, f := range c.Features {
		if f.Type == string(ChoiceTypeOptionalFeature) && strings.HasSuffix(f.ChoiceID, suffix) {
			n++
		}
	}
	return n
}

// FinalAbilityScores returns base scores plus every bonus
func (c *Character) FinalAbilityScores() map[string]int {
	out := make(map[string]int, len(AbilityCodes))
	for _, code := range AbilityCodes {
		out[code] = c.AbilityScores[code]
	}
	for _, b := range c.AbilityBonuses {
		out[b.Ability] += b.Value
	}
	return out
}

// RemoveSource drops every grant, item, selection and bonus tagged with source
func (c *Character) RemoveSource(source string) {
	c.Spells = filterGrants(c.Spells, source)
	c.Features = filterGrants(c.Features, source)
	c.Languages = filterGrants(c.Languages, source)
	c.Proficiencies = filterGrants(c.Proficiencies, source)

	items := c.Equipment[:0]
	for _, it := range c.Equipment {
		if it.Source != source {
			items = append(items, it)
		}
	}
	c.Equipment = items

	bonuses := c.AbilityBonuses[:0]
	for _, b := range c.AbilityBonuses {
		if b.Source != source {
			bonuses = append(bonuses, b)
		}
	}
	c.AbilityBonuses = bonuses

	for id := range c.Selections {
		if ChoiceSource(id) == source {
			delete(c.Selections, id)
		}
	}
}

// RemoveChoice drops everything granted by resolving choiceID
func (c *Character) RemoveChoice(choiceID string) {
	keep := func(grants []Grant) []Grant {
		out := grants[:0]
		for _, g := range grants {
			if g.ChoiceID != choiceID {
				out = append(out, g)
			}
		}
		return out
	}
	c.Spells = keep(c.Spells)
	c.Features = keep(c.Features)
	c.Languages = keep(c.Languages)
	c.Proficiencies = keep(c.Proficiencies)

	items := c.Equipment[:0]
	for _, it := range c.Equipment {
		if it.ChoiceID != choiceID {
			items = append(items, it)
		}
	}
	c.Equipment = items

	bonuses := c.AbilityBonuses[:0]
	for _, b := range c.AbilityBonuses {
		if b.ChoiceID != choiceID {
			bonuses = append(bonuses, b)
		}
	}
	c.AbilityBonuses = bonuses

	delete(c.Selections, choiceID)
}

// HasGrant reports whether a grant of the given kind already carries name
func HasGrant(grants []Grant, name string) bool {
	for _, g := range grants {
		if g.Name == name {
			return true
		}
	}
	return false
}

// GrantsFrom returns the names of grants tagged with source
func GrantsFrom(grants []Grant, source string) []string {
	var out []string
	for _, g := range grants {
		if g.Source == source {
			out = append(out, g.Name)
		}
	}
	return out
}

func filterGrants(grants []Grant, source string) []Grant {
	out := grants[:0]
	for _, g := range grants {
		if g.Source != source {
			out = append(out, g)
		}
	}
	return out
}
