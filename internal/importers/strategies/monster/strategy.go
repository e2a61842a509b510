// Package monster holds the per-creature-type enhancements applied while
// importing monsters
package monster

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

//go:generate mockgen -destination=mock/mock_strategy.go -package=monstermock github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster Strategy,SpellStore

// SpellStore is the part of the compendium store AfterCreate needs
type SpellStore interface {
	GetEntity(ctx context.Context, entityType dnd5e.EntityType, slug string) (*compendium.EntityRow, error)
	LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error)
}

// Strategy enhances one family of monsters
type Strategy interface {
	Name() string
	AppliesTo(m *dnd5e.Monster) bool
	Reset()
	EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction
	EnhanceActions(m *dnd5e.Monster, actions []dnd5e.MonsterAction) []dnd5e.MonsterAction
	EnhanceLegendaryActions(m *dnd5e.Monster, legendary []dnd5e.LegendaryAction) []dnd5e.LegendaryAction
	// AfterCreate runs once the monster row exists and m.ID is set
	AfterCreate(ctx context.Context, store SpellStore, m *dnd5e.Monster) error
	Metadata() Metadata
}

// Metadata is what a strategy observed for the last monster
type Metadata struct {
	Warnings []string
	Metrics  map[string]int
	Tags     []string
}

// Default returns every strategy in selection order. The fallback is last.
func Default() []Strategy {
	return []Strategy{
		NewSpellcaster(),
		NewFiend(),
		NewCelestial(),
		NewConstruct(),
		NewElemental(),
		NewAberration(),
		NewBeast(),
		NewShapechanger(),
		NewDragon(),
		NewUndead(),
		NewSwarm(),
		NewFallback(),
	}
}

// Select returns the first strategy that applies to m
func Select(strategies []Strategy, m *dnd5e.Monster) Strategy {
	for _, s := range strategies {
		if s.AppliesTo(m) {
			return s
		}
	}
	return NewFallback()
}

// CreatureType reduces a type line to its base creature type:
// "humanoid (elf)" is "humanoid", "swarm of tiny beasts" is "swarm"
func CreatureType(typeLine string) string {
	t := strings.ToLower(strings.TrimSpace(typeLine))
	if strings.HasPrefix(t, "swarm") {
		return "swarm"
	}
	if before, _, ok := strings.Cut(t, "("); ok {
		return strings.TrimSpace(before)
	}
	return t
}

var rechargeRe = regexp.MustCompile(`(?i)\(\s*(recharge\s+[0-9]+(?:\s*[-–]\s*[0-9]+)?|recharges after a (?:short or long|long|short) rest)\s*\)`)

// tagRule adds Tag when Check matches. Check is "trait:<text>",
// "action:<text>", "immunity:<damage>", "resistance:<damage>",
// "condition:<condition>" or "language:<text>".
type tagRule struct {
	Check  string
	Tag    string
	Metric string
}

type base struct {
	name     string
	warnings []string
	metrics  map[string]int
	tags     []string
}

func newBase(name string) base {
	return base{name: name, metrics: map[string]int{}}
}

func (b *base) Name() string { return b.name }

func (b *base) Reset() {
	b.warnings = nil
	b.metrics = map[string]int{}
	b.tags = nil
}

func (b *base) Metadata() Metadata {
	metrics := make(map[string]int, len(b.metrics))
	for k, v := range b.metrics {
		metrics[k] = v
	}
	return Metadata{
		Warnings: append([]string(nil), b.warnings...),
		Metrics:  metrics,
		Tags:     append([]string(nil), b.tags...),
	}
}

func (b *base) warn(msg string) {
	b.warnings = append(b.warnings, msg)
}

func (b *base) incr(metric string) {
	b.metrics[metric]++
}

func (b *base) tag(tag string) {
	for _, t := range b.tags {
		if t == tag {
			return
		}
	}
	b.tags = append(b.tags, tag)
	sort.Strings(b.tags)
}

func (b *base) EnhanceTraits(_ *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	return traits
}

// EnhanceActions pulls a recharge notation out of the action name when the
// XML did not carry one
func (b *base) EnhanceActions(_ *dnd5e.Monster, actions []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	for i := range actions {
		if actions[i].Recharge != "" {
			continue
		}
		if m := rechargeRe.FindStringSubmatch(actions[i].Name); m != nil {
			actions[i].Recharge = m[1]
			actions[i].Name = strings.TrimSpace(rechargeRe.ReplaceAllString(actions[i].Name, ""))
		}
	}
	return actions
}

// EnhanceLegendaryActions fills the action cost from "(Costs N Actions)"
// and flags lair actions by category
func (b *base) EnhanceLegendaryActions(_ *dnd5e.Monster, legendary []dnd5e.LegendaryAction) []dnd5e.LegendaryAction {
	for i := range legendary {
		legendary[i].ActionCost = parsers.LegendaryActionCost(legendary[i].Name)
		legendary[i].IsLairAction = strings.EqualFold(legendary[i].Category, "lair")
	}
	return legendary
}

func (b *base) AfterCreate(context.Context, SpellStore, *dnd5e.Monster) error {
	return nil
}

// applyConditionalTags tags the monster with primary and counts primaryMetric,
// then applies every matching rule. A tag is recorded once; its metric counts
// every rule that matched.
func (b *base) applyConditionalTags(m *dnd5e.Monster, primary, primaryMetric string, rules []tagRule) {
	b.tag(primary)
	if primaryMetric != "" {
		b.incr(primaryMetric)
	}
	for _, r := range rules {
		if !matches(m, r.Check) {
			continue
		}
		b.tag(r.Tag)
		metric := r.Metric
		if metric == "" {
			metric = r.Tag + "_count"
		}
		b.incr(metric)
	}
}

func matches(m *dnd5e.Monster, check string) bool {
	kind, value, ok := strings.Cut(check, ":")
	if !ok {
		return false
	}
	switch kind {
	case "trait":
		return hasTraitContaining(m.Traits, value)
	case "action":
		return hasTraitContaining(m.Actions, value)
	case "immunity":
		return hasDamageImmunity(m, value)
	case "resistance":
		return hasDamageResistance(m, value)
	case "condition":
		return hasConditionImmunity(m, value)
	case "language":
		return containsFold(m.Languages, value)
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasDamageImmunity(m *dnd5e.Monster, damageType string) bool {
	return containsFold(m.DamageImmunities, damageType)
}

func hasDamageResistance(m *dnd5e.Monster, damageType string) bool {
	return containsFold(m.DamageResistances, damageType)
}

func hasConditionImmunity(m *dnd5e.Monster, condition string) bool {
	return containsFold(m.ConditionImmunities, condition)
}

// hasTraitContaining searches names and descriptions case-insensitively
func hasTraitContaining(traits []dnd5e.MonsterAction, keyword string) bool {
	for _, t := range traits {
		if containsFold(t.Name, keyword) || containsFold(t.Description, keyword) {
			return true
		}
	}
	return false
}

func typeContains(m *dnd5e.Monster, word string) bool {
	return containsFold(m.Type, word)
}
