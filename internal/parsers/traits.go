package parsers

import (
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// parseTraits converts <trait> elements; sources are read from the trait text
// and stripped from the description
func parseTraits(elems []traitXML) []dnd5e.Trait {
	if len(elems) == 0 {
		return nil
	}
	out := make([]dnd5e.Trait, 0, len(elems))
	for i, el := range elems {
		text := joinText(el.Text)
		out = append(out, dnd5e.Trait{
			Name:        strings.TrimSpace(el.Name),
			Category:    strings.TrimSpace(el.Category),
			Description: StripSourceCitations(text),
			Rolls:       parseRolls(el.Rolls),
			Sources:     ParseSourceCitations(text),
			SortOrder:   i,
		})
	}
	return out
}

// parseCounterReset maps the single letter <reset> codes
func parseCounterReset(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "S":
		return dnd5e.ResetShortRest
	case "L":
		return dnd5e.ResetLongRest
	case "D":
		return dnd5e.ResetDawn
	default:
		return ""
	}
}
