// Package itemstrategy holds item type specific enhancements applied after
// the generic item parse. Each strategy decides whether it applies from the
// parsed item and records warnings and metrics about what it found.
package itemstrategy

import (
	"strings"
	"unicode"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

//go:generate mockgen -destination=mock/mock_strategy.go -package=itemstrategymock github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy Strategy

// Strategy enhances one kind of item
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string
	// Reset clears warnings and metrics from the previous item
	Reset()
	AppliesTo(item *dnd5e.Item) bool
	EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier
	EnhanceAbilities(item *dnd5e.Item, abilities []dnd5e.ItemAbility) []dnd5e.ItemAbility
	// EnhanceRelationships sets spells and attributes on the item
	EnhanceRelationships(item *dnd5e.Item)
	Metadata() Metadata
}

// Metadata is what a strategy observed while enhancing an item
type Metadata struct {
	Warnings []string
	Metrics  map[string]any
}

// Default returns the strategies in the order they are applied
func Default() []Strategy {
	return []Strategy{
		NewChargedItem(),
		NewScroll(),
		NewPotion(),
		NewTattoo(),
		NewLegendary(),
	}
}

// base carries the metadata bookkeeping shared by every strategy
type base struct {
	warnings []string
	metrics  map[string]any
}

func (b *base) Reset() {
	b.warnings = nil
	b.metrics = map[string]any{}
}

func (b *base) Metadata() Metadata {
	metrics := make(map[string]any, len(b.metrics))
	for k, v := range b.metrics {
		metrics[k] = v
	}
	return Metadata{Warnings: append([]string(nil), b.warnings...), Metrics: metrics}
}

func (b *base) warn(msg string) {
	b.warnings = append(b.warnings, msg)
}

func (b *base) set(key string, value any) {
	if b.metrics == nil {
		b.metrics = map[string]any{}
	}
	b.metrics[key] = value
}

func (b *base) incr(key string) {
	if b.metrics == nil {
		b.metrics = map[string]any{}
	}
	n, _ := b.metrics[key].(int)
	b.metrics[key] = n + 1
}

func (b *base) EnhanceModifiers(_ *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	return modifiers
}

func (b *base) EnhanceAbilities(_ *dnd5e.Item, abilities []dnd5e.ItemAbility) []dnd5e.ItemAbility {
	return abilities
}

func (b *base) EnhanceRelationships(_ *dnd5e.Item) {}

func setAttribute(item *dnd5e.Item, key, value string) {
	if value == "" {
		return
	}
	if item.Attributes == nil {
		item.Attributes = map[string]string{}
	}
	item.Attributes[key] = value
}

// upperWords capitalises the first letter of every space separated word
func upperWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
