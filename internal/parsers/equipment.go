package parsers

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	startingFeatureRe   = regexp.MustCompile(`(?i)^Starting\s+\w+$`)
	followingEquipRe    = regexp.MustCompile(`You (?:begin play|start) with the following equipment`)
	anyWeaponChoiceRe   = regexp.MustCompile(`(?i)^any\s+(?:(two|three|four|five|one|\d+)\s+)?(simple|martial)(?:\s+(melee|ranged))?\s+weapons?\s*(?:of\s+your\s+choice)?$`)
	yourChoiceOfRe      = regexp.MustCompile(`(?i)^your\s+choice\s+of\s+(.+?)\s+or\s+(.+)$`)
	optionMarkerRe      = regexp.MustCompile(`(?i)\(([a-z])\)`)
	optionTrailingOrRe  = regexp.MustCompile(`(?i)\s*,?\s*or\s*$`)
	simpleItemSplitRe   = regexp.MustCompile(`(?i),\s+(?:and\s+)?|\s+and\s+`)
	compoundSplitRe     = regexp.MustCompile(`(?i),?\s+and\s+`)
	leadingArticleRe    = regexp.MustCompile(`(?i)^(a|an|the)\s+`)
	wordQuantityRe      = regexp.MustCompile(`(?i)^(two|three|four|five|six|seven|eight|nine|ten|twenty)\s+`)
	numericQuantityRe   = regexp.MustCompile(`^(\d+)\s+`)
	weaponCategoryRe    = regexp.MustCompile(`(?i)^(?:any\s+)?(martial|simple)\s+(?:(melee|ranged)\s+)?weapons?$`)
	armorCategoryRe     = regexp.MustCompile(`(?i)^(?:any\s+)?(light|medium|heavy)\s+armou?r$`)
	instrumentCategory  = regexp.MustCompile(`(?i)^(?:any\s+)?(?:other\s+)?(?:one\s+)?musical\s+instruments?(?:\s+of\s+your\s+choice)?$`)
	parenQuantityRe     = regexp.MustCompile(`(?i)(?:quiver\s+of\s+)?(\w+)\s*\((\d+)\)`)
	trailingParenNoteRe = regexp.MustCompile(`\s*\([^)]+\)\s*$`)
	hasParenRe          = regexp.MustCompile(`\([^)]+\)`)
)

var extraWordNumbers = map[string]int{"twenty": 20}

// parseStartingEquipment reads the level 1 "Starting <Class>" feature
func parseStartingEquipment(el classXML) ([]dnd5e.EquipmentItem, []dnd5e.EquipmentChoice) {
	for _, al := range el.Autolevels {
		if al.Level != 1 {
			continue
		}
		for _, f := range al.Features {
			if !startingFeatureRe.MatchString(strings.TrimSpace(f.Name)) {
				continue
			}
			return ParseEquipmentText(equipmentSection(joinText(f.Text)))
		}
	}
	return nil, nil
}

// equipmentSection cuts the bullet list out of the starting equipment text
func equipmentSection(text string) string {
	loc := followingEquipRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := text[loc[1]:]
	if i := strings.IndexAny(rest, "•-"); i >= 0 {
		rest = rest[i:]
	}
	if i := strings.Index(rest, "\n\nIf you forgo"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// equipmentBullets splits "• ..." or "- ..." lines; a bullet runs until the
// next bullet or a blank line
func equipmentBullets(text string) []string {
	var (
		bullets []string
		current strings.Builder
		open    bool
	)
	flush := func() {
		if open {
			if b := strings.TrimSpace(current.String()); b != "" {
				bullets = append(bullets, b)
			}
		}
		current.Reset()
		open = false
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-"):
			flush()
			open = true
			current.WriteString(strings.TrimLeft(trimmed, "•- \t"))
		case trimmed == "":
			flush()
		case open:
			current.WriteString(" ")
			current.WriteString(trimmed)
		}
	}
	flush()
	return bullets
}

// ParseEquipmentText turns a starting equipment bullet list into fixed items
// and lettered choices
func ParseEquipmentText(text string) ([]dnd5e.EquipmentItem, []dnd5e.EquipmentChoice) {
	var (
		items   []dnd5e.EquipmentItem
		choices []dnd5e.EquipmentChoice
	)
	group := 1
	for _, bullet := range equipmentBullets(text) {
		if m := anyWeaponChoiceRe.FindStringSubmatch(bullet); m != nil {
			quantity := 1
			if m[1] != "" {
				quantity = WordToNumber(m[1])
			}
			category := strings.ToLower(m[2])
			if m[3] != "" {
				category += "_" + strings.ToLower(m[3])
			}
			choices = append(choices, dnd5e.EquipmentChoice{
				Group: group,
				Options: []dnd5e.EquipmentOption{{
					Letter: "a",
					Text:   bullet,
					Items:  []dnd5e.EquipmentItem{{Name: category, Quantity: quantity, Category: category}},
				}},
			})
			group++
			continue
		}

		if m := yourChoiceOfRe.FindStringSubmatch(bullet); m != nil {
			a := leadingArticleRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			b := leadingArticleRe.ReplaceAllString(strings.TrimSpace(m[2]), "")
			choices = append(choices, dnd5e.EquipmentChoice{
				Group: group,
				Options: []dnd5e.EquipmentOption{
					{Letter: "a", Text: a, Items: parseCompoundItem(a)},
					{Letter: "b", Text: b, Items: parseCompoundItem(b)},
				},
			})
			group++
			continue
		}

		if markers := optionMarkerRe.FindAllStringSubmatchIndex(bullet, -1); len(markers) > 0 {
			choice := dnd5e.EquipmentChoice{Group: group}
			for i, mk := range markers {
				end := len(bullet)
				if i+1 < len(markers) {
					end = markers[i+1][0]
				}
				option := strings.TrimSpace(bullet[mk[1]:end])
				option = optionTrailingOrRe.ReplaceAllString(option, "")
				option = strings.TrimSpace(strings.TrimSuffix(option, ","))
				if option == "" {
					continue
				}
				choice.Options = append(choice.Options, dnd5e.EquipmentOption{
					Letter: strings.ToLower(bullet[mk[2]:mk[3]]),
					Text:   option,
					Items:  parseCompoundItem(option),
				})
			}
			if len(choice.Options) > 0 {
				choices = append(choices, choice)
				group++
			}
			continue
		}

		for _, part := range simpleItemSplitRe.Split(bullet, -1) {
			items = append(items, parseCompoundItem(part)...)
		}
	}
	return items, choices
}

// parseCompoundItem splits "a martial weapon and a shield" into its items
func parseCompoundItem(text string) []dnd5e.EquipmentItem {
	var out []dnd5e.EquipmentItem
	for _, part := range compoundSplitRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, ",") && !hasParenRe.MatchString(part) {
			for _, sub := range strings.Split(part, ",") {
				if item, ok := parseSingleItem(sub); ok {
					out = append(out, item)
				}
			}
			continue
		}
		if item, ok := parseSingleItem(part); ok {
			out = append(out, item)
		}
	}
	return out
}

func parseSingleItem(part string) (dnd5e.EquipmentItem, bool) {
	part = strings.TrimSpace(part)
	if part == "" {
		return dnd5e.EquipmentItem{}, false
	}
	quantity := 1
	if m := wordQuantityRe.FindStringSubmatch(part); m != nil {
		quantity = WordToNumber(m[1])
		if n, ok := extraWordNumbers[strings.ToLower(m[1])]; ok {
			quantity = n
		}
		part = part[len(m[0]):]
	}
	if m := numericQuantityRe.FindStringSubmatch(part); m != nil {
		quantity = atoi(m[1])
		part = part[len(m[0]):]
	}
	part = leadingArticleRe.ReplaceAllString(part, "")

	if m := weaponCategoryRe.FindStringSubmatch(part); m != nil {
		category := strings.ToLower(m[1])
		if m[2] != "" {
			category += "_" + strings.ToLower(m[2])
		}
		return dnd5e.EquipmentItem{Name: category, Quantity: quantity, Category: category}, true
	}
	if m := armorCategoryRe.FindStringSubmatch(part); m != nil {
		category := strings.ToLower(m[1]) + "_armor"
		return dnd5e.EquipmentItem{Name: category, Quantity: quantity, Category: category}, true
	}
	if instrumentCategory.MatchString(part) {
		return dnd5e.EquipmentItem{Name: "musical_instrument", Quantity: quantity, Category: "musical_instrument"}, true
	}
	if m := parenQuantityRe.FindStringSubmatch(part); m != nil {
		return dnd5e.EquipmentItem{Name: strings.ToLower(m[1]), Quantity: atoi(m[2])}, true
	}
	name := strings.TrimSpace(trailingParenNoteRe.ReplaceAllString(part, ""))
	if name == "" {
		return dnd5e.EquipmentItem{}, false
	}
	return dnd5e.EquipmentItem{Name: name, Quantity: quantity}, true
}
