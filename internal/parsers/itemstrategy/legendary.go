package itemstrategy

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	sentientRe    = regexp.MustCompile(`(?i)\bsentient\b|\b(?:intelligence|wisdom|charisma) score of \d+|\btelepath(?:y|ically)\b|\bspeaks?\b|\bcommunicates?\b`)
	alignmentRe   = regexp.MustCompile(`(?i)\b(?:(?:lawful|neutral|chaotic) (?:good|neutral|evil)|true neutral|unaligned)\b`)
	destroyRe     = regexp.MustCompile(`(?i)destroy`)
	personalityRe = regexp.MustCompile(`(?i)\b(arrogant|kind|cruel|benevolent|malevolent|proud|humble|greedy|generous|wrathful|patient|impulsive|cunning|straightforward)\b`)
	itemSensesRe  = regexp.MustCompile(`(?i)\b(hearing and (?:normal )?vision|darkvision|blindsight|truesight)(?: out to(?: a range of)?| to a range of)? (\d+) feet`)
)

// Legendary records sentience, alignment and personality of legendary items
// and artifacts
type Legendary struct {
	base
}

// NewLegendary creates a Legendary strategy
func NewLegendary() *Legendary {
	s := &Legendary{}
	s.Reset()
	return s
}

// Name implements Strategy
func (s *Legendary) Name() string { return "LegendaryStrategy" }

// AppliesTo implements Strategy
func (s *Legendary) AppliesTo(item *dnd5e.Item) bool {
	rarity := strings.ToLower(item.Rarity)
	return rarity == "legendary" || rarity == "artifact"
}

// EnhanceModifiers implements Strategy
func (s *Legendary) EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	if strings.EqualFold(item.Rarity, "artifact") {
		s.incr("artifacts")
	} else {
		s.incr("legendary_items")
	}

	text := item.Description + "\n" + item.Detail
	sentient := sentientRe.MatchString(text)
	s.set("is_sentient", sentient)
	if sentient {
		s.incr("sentient_items")
		setAttribute(item, "sentient", "true")
	}
	if alignment := ItemAlignment(text); alignment != "" {
		s.set("alignment", alignment)
		setAttribute(item, "alignment", alignment)
	}
	if destroyRe.MatchString(item.Description) {
		s.set("has_destruction_method", true)
		setAttribute(item, "destruction_method", "true")
	}
	if traits := PersonalityTraits(item.Description); len(traits) > 0 {
		s.set("personality_traits", traits)
		setAttribute(item, "personality", strings.Join(traits, ","))
	}
	return modifiers
}

// EnhanceRelationships implements Strategy
func (s *Legendary) EnhanceRelationships(item *dnd5e.Item) {
	var senses []string
	for _, m := range itemSensesRe.FindAllStringSubmatch(item.Description, -1) {
		senses = append(senses, strings.ToLower(m[1])+" "+m[2]+" ft.")
	}
	if len(senses) == 0 {
		return
	}
	s.set("senses", senses)
	setAttribute(item, "senses", strings.Join(senses, ", "))
}

// ItemAlignment returns the first alignment named in the text, lowercased
func ItemAlignment(text string) string {
	return strings.ToLower(alignmentRe.FindString(text))
}

// PersonalityTraits returns the distinct personality words in the text in
// the order they appear
func PersonalityTraits(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range personalityRe.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		if seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}
