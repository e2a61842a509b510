package itemstrategy

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Potion effect categories
const (
	EffectHealing    = "healing"
	EffectResistance = "resistance"
	EffectBuff       = "buff"
	EffectDebuff     = "debuff"
	EffectUtility    = "utility"
)

var (
	potionDurationRe = regexp.MustCompile(`(?i)\bfor (\d+ (?:minute|hour)s?)`)
	regainHPRe       = regexp.MustCompile(`(?i)regains?\s+.*hit points`)
	advantageRe      = regexp.MustCompile(`(?i)\badvantage\b`)
	disadvantageRe   = regexp.MustCompile(`(?i)\bdisadvantage\b`)
	statIncreaseRe   = regexp.MustCompile(`(?i)score (?:is increased|increases|becomes)`)
)

var (
	buffNames    = []string{"heroism", "giant strength", "invulnerability", "speed", "vitality", "superior"}
	utilityNames = []string{"invisibility", "diminution", "gaseous form", "water breathing", "climbing", "growth", "flying", "animal friendship", "longevity"}
)

// Potion classifies a potion's effect and duration
type Potion struct {
	base
}

// NewPotion creates a Potion strategy
func NewPotion() *Potion {
	s := &Potion{}
	s.Reset()
	return s
}

// Name implements Strategy
func (s *Potion) Name() string { return "PotionStrategy" }

// AppliesTo implements Strategy
func (s *Potion) AppliesTo(item *dnd5e.Item) bool {
	return strings.EqualFold(item.TypeCode, "P")
}

// EnhanceModifiers implements Strategy
func (s *Potion) EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	if m := potionDurationRe.FindStringSubmatch(item.Description); m != nil {
		s.set("duration", strings.ToLower(m[1]))
		setAttribute(item, "duration", strings.ToLower(m[1]))
	}
	if category := PotionEffectCategory(item.Name, item.Description, modifiers); category != "" {
		s.set("effect_category", category)
		s.incr("effect_" + category)
		setAttribute(item, "effect_category", category)
	}
	return modifiers
}

// PotionEffectCategory classifies a potion; empty when nothing matches
func PotionEffectCategory(name, description string, modifiers []dnd5e.Modifier) string {
	lowerName := strings.ToLower(name)
	lowerDesc := strings.ToLower(description)

	if strings.Contains(lowerName, "healing") || strings.Contains(lowerName, "health") || regainHPRe.MatchString(description) {
		return EffectHealing
	}
	for _, m := range modifiers {
		if m.Category == "damage_resistance" {
			return EffectResistance
		}
	}
	if strings.Contains(lowerDesc, "resistance to") || strings.Contains(lowerName, "resistance") {
		return EffectResistance
	}
	if strings.Contains(lowerName, "poison") || strings.Contains(lowerDesc, "poisoned") || disadvantageRe.MatchString(description) {
		return EffectDebuff
	}
	for _, n := range buffNames {
		if strings.Contains(lowerName, n) {
			return EffectBuff
		}
	}
	for _, n := range utilityNames {
		if strings.Contains(lowerName, n) {
			return EffectUtility
		}
	}
	if advantageRe.MatchString(description) || statIncreaseRe.MatchString(description) || strings.Contains(lowerDesc, "temporary hit points") {
		return EffectBuff
	}
	return ""
}
