package itemstrategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	scrollLevelRe    = regexp.MustCompile(`(?i)^Spell Scroll \((\d)(?:st|nd|rd|th) Level\)$`)
	scrollCantripRe  = regexp.MustCompile(`(?i)^Spell Scroll \(Cantrip\)$`)
	scrollDurationRe = regexp.MustCompile(`(?i)\bfor (\d+ (?:minute|hour)s?)`)
)

// scrollDCs is the save DC and attack bonus of a spell scroll by spell level
var scrollDCs = [10][2]int{
	{13, 5}, {13, 5}, {13, 5}, {15, 7}, {15, 7}, {17, 9}, {17, 9}, {18, 10}, {18, 10}, {19, 11},
}

// Scroll handles spell scrolls and scrolls of protection
type Scroll struct {
	base
}

// NewScroll creates a Scroll strategy
func NewScroll() *Scroll {
	s := &Scroll{}
	s.Reset()
	return s
}

// Name implements Strategy
func (s *Scroll) Name() string { return "ScrollStrategy" }

// AppliesTo implements Strategy
func (s *Scroll) AppliesTo(item *dnd5e.Item) bool {
	return strings.EqualFold(item.TypeCode, "SC")
}

func isProtectionScroll(name string) bool {
	return strings.Contains(strings.ToLower(name), "protection from")
}

// EnhanceModifiers implements Strategy. Scrolls carry no modifiers; this is
// where the scroll kind is counted.
func (s *Scroll) EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	if isProtectionScroll(item.Name) {
		s.incr("protection_scrolls")
		if m := scrollDurationRe.FindStringSubmatch(item.Description); m != nil {
			s.set("protection_duration", strings.ToLower(m[1]))
		}
		return modifiers
	}
	s.incr("spell_scrolls")
	return modifiers
}

// EnhanceRelationships implements Strategy
func (s *Scroll) EnhanceRelationships(item *dnd5e.Item) {
	if item.Name == "" || isProtectionScroll(item.Name) {
		return
	}
	level, ok := ScrollSpellLevel(item.Name)
	if !ok {
		s.warn(fmt.Sprintf("Could not extract spell level from scroll name: %s", item.Name))
		return
	}
	s.set("spell_level", level)
	setAttribute(item, "spell_level", strconv.Itoa(level))
	setAttribute(item, "save_dc", strconv.Itoa(scrollDCs[level][0]))
	setAttribute(item, "attack_bonus", "+"+strconv.Itoa(scrollDCs[level][1]))
}

// ScrollSpellLevel reads "Spell Scroll (3rd Level)" and "Spell Scroll (Cantrip)"
func ScrollSpellLevel(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if scrollCantripRe.MatchString(name) {
		return 0, true
	}
	if m := scrollLevelRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n >= 1 && n <= 9
	}
	return 0, false
}
