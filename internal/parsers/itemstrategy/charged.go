package itemstrategy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	chargeCostRe     = regexp.MustCompile(`(?i)\((\d+)\s+charges?(?:\s+per\s+spell\s+level(?:,\s*up\s+to\s+(\d+)(?:st|nd|rd|th))?)?\)`)
	spellChargesRe   = regexp.MustCompile(`(?i)charges?.{0,80}\bcast\b|\bcast\b.{0,80}\(\d+\s+charges?`)
	spellNameStartRe = regexp.MustCompile(`(?i)(?:\bcast(?:\s+the\s+following\s+spells)?:?\s+|:\s+|,\s+(?:or\s+|and\s+)?|\s+or\s+|\s+and\s+)`)
)

var chargedTypeCodes = map[string]bool{"ST": true, "WD": true, "RD": true}

// ChargedItem finds the spells a staff, wand or rod casts by expending charges
type ChargedItem struct {
	base
}

// NewChargedItem creates a ChargedItem strategy
func NewChargedItem() *ChargedItem {
	s := &ChargedItem{}
	s.Reset()
	return s
}

// Name implements Strategy
func (s *ChargedItem) Name() string { return "ChargedItemStrategy" }

// AppliesTo implements Strategy
func (s *ChargedItem) AppliesTo(item *dnd5e.Item) bool {
	if item.IsMagic && chargedTypeCodes[strings.ToUpper(item.TypeCode)] {
		return true
	}
	if item.IsMagic && item.ChargesMax != nil {
		return true
	}
	return spellChargesRe.MatchString(item.Description)
}

// EnhanceRelationships implements Strategy
func (s *ChargedItem) EnhanceRelationships(item *dnd5e.Item) {
	spells := ParseChargedSpells(item.Description)
	if len(spells) == 0 {
		return
	}
	item.Spells = spells
	s.set("spell_references_found", len(spells))
}

// ParseChargedSpells reads "cast burning hands (1 charge) or fireball (3 charges)"
func ParseChargedSpells(description string) []dnd5e.ItemSpell {
	var out []dnd5e.ItemSpell
	for _, loc := range chargeCostRe.FindAllStringSubmatchIndex(description, -1) {
		name := spellNameBefore(description[:loc[0]])
		if name == "" {
			continue
		}
		cost, _ := strconv.Atoi(description[loc[2]:loc[3]])
		spell := dnd5e.ItemSpell{
			SpellName:      name,
			ChargesCostMin: cost,
			ChargesCostMax: cost,
		}
		if strings.Contains(strings.ToLower(description[loc[0]:loc[1]]), "per spell level") {
			spell.ChargesCostFormula = strconv.Itoa(cost) + " per spell level"
			if loc[4] >= 0 {
				spell.ChargesCostMax, _ = strconv.Atoi(description[loc[4]:loc[5]])
			}
		}
		out = append(out, spell)
	}
	return out
}

// spellNameBefore returns the words between the last separator and the
// charge cost parenthesis
func spellNameBefore(prefix string) string {
	prefix = strings.TrimRight(prefix, " ")
	start := 0
	for _, m := range spellNameStartRe.FindAllStringIndex(prefix, -1) {
		start = m[1]
	}
	name := strings.TrimSpace(prefix[start:])
	if name == "" || len(strings.Fields(name)) > 5 {
		return ""
	}
	return upperWords(name)
}
