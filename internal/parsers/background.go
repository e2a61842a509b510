package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Background trait categories
const (
	TraitCategoryFeature         = "feature"
	TraitCategoryCharacteristics = "characteristics"
	TraitCategoryFlavor          = "flavor"
)

var (
	bulletLanguagesRe  = regexp.MustCompile(`(?m)• Languages:\s*(.+?)\s*$`)
	bulletToolsRe      = regexp.MustCompile(`(?m)• Tool Proficiencies:\s*(.+?)\s*$`)
	bulletEquipmentRe  = regexp.MustCompile(`(?m)• Equipment:\s*(.+?)\s*$`)
	oneTypeOfRe        = regexp.MustCompile(`(?i)^one\s+type\s+of\s+(.+)$`)
	choiceParenRe      = regexp.MustCompile(`(?i)\s*\(([^)]*choice[^)]*)\)`)
	leadingAndRe       = regexp.MustCompile(`(?i)^and\s+`)
	setOfRe            = regexp.MustCompile(`(?i)\s*set\s+of\s+`)
	containingGoldRe   = regexp.MustCompile(`(?i)^(.+?)\s+containing\s+(\d+)\s+gp$`)
	numericLeadQtyRe   = regexp.MustCompile(`^(\d+)\s+`)
	languageChoiceWord = regexp.MustCompile(`(?i)one.*?choice`)
)

// BackgroundParser parses <background> elements
type BackgroundParser struct{}

// NewBackgroundParser creates a BackgroundParser
func NewBackgroundParser() *BackgroundParser {
	return &BackgroundParser{}
}

// Parse reads every <background> element
func (p *BackgroundParser) Parse(r io.Reader) ([]*dnd5e.Background, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	out := make([]*dnd5e.Background, 0, len(doc.Backgrounds))
	for _, el := range doc.Backgrounds {
		out = append(out, parseBackground(el))
	}
	return out, nil
}

// ParseBytes parses an in-memory document
func (p *BackgroundParser) ParseBytes(data []byte) ([]*dnd5e.Background, error) {
	return p.Parse(bytes.NewReader(data))
}

func parseBackground(el backgroundXML) *dnd5e.Background {
	var description string
	if len(el.Traits) > 0 {
		description = joinText(el.Traits[0].Text)
	}

	traits := parseTraits(el.Traits)
	var tables []dnd5e.RandomTable
	for i := range traits {
		traits[i].Category = backgroundTraitCategory(traits[i].Name)
		for _, t := range ParseRandomTables(traits[i].Description) {
			t.TraitName = traits[i].Name
			tables = append(tables, t)
		}
	}

	bg := &dnd5e.Background{
		Record: dnd5e.Record{
			Name:    strings.TrimSpace(el.Name),
			Sources: sourcesOrDefault(ParseSourceCitations(description)),
		},
		Proficiencies: append(backgroundProficiencies(el.Proficiency), backgroundToolProficiencies(description)...),
		Traits:        traits,
		Languages:     backgroundLanguages(description),
		Equipment:     BackgroundEquipment(description),
		RandomTables:  tables,
	}
	bg.SetIdentity()
	return bg
}

func backgroundTraitCategory(name string) string {
	switch {
	case name == "Description":
		return ""
	case strings.HasPrefix(name, "Feature:"):
		return TraitCategoryFeature
	case name == "Suggested Characteristics":
		return TraitCategoryCharacteristics
	default:
		return TraitCategoryFlavor
	}
}

// backgroundProficiencies reads the comma separated <proficiency> element;
// anything not a tool or language is a skill
func backgroundProficiencies(s string) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	for _, name := range splitList(s) {
		out = append(out, dnd5e.Proficiency{Name: name, Type: backgroundProficiencyType(name), Grants: true})
	}
	return out
}

func backgroundProficiencyType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "kit"), strings.Contains(lower, "tools"),
		strings.Contains(lower, "gaming set"), strings.Contains(lower, "instrument"):
		return dnd5e.ProficiencyTypeTool
	case strings.Contains(lower, "language"):
		return dnd5e.ProficiencyTypeLanguage
	default:
		return dnd5e.ProficiencyTypeSkill
	}
}

// backgroundToolProficiencies reads "• Tool Proficiencies: One type of
// artisan's tools" or a comma separated list
func backgroundToolProficiencies(text string) []dnd5e.Proficiency {
	m := bulletToolsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	tools := strings.TrimSpace(m[1])
	if cm := oneTypeOfRe.FindStringSubmatch(tools); cm != nil {
		return []dnd5e.Proficiency{{
			Name:     strings.TrimSpace(cm[1]),
			Type:     dnd5e.ProficiencyTypeTool,
			Grants:   true,
			IsChoice: true,
			Quantity: 1,
		}}
	}
	var out []dnd5e.Proficiency
	for _, name := range splitList(tools) {
		out = append(out, dnd5e.Proficiency{Name: name, Type: dnd5e.ProficiencyTypeTool, Grants: true, Quantity: 1})
	}
	return out
}

func backgroundLanguages(text string) []dnd5e.LanguageGrant {
	m := bulletLanguagesRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	langs := strings.TrimSpace(m[1])
	if languageChoiceWord.MatchString(langs) && !strings.Contains(strings.ToLower(langs), "two") {
		return []dnd5e.LanguageGrant{{IsChoice: true, Quantity: 1}}
	}
	return ExtractLanguages(langs)
}

// BackgroundEquipment reads "• Equipment: A set of artisan's tools (one of
// your choice), a letter of introduction, and a belt pouch containing 15 gp"
func BackgroundEquipment(text string) []dnd5e.EquipmentItem {
	m := bulletEquipmentRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []dnd5e.EquipmentItem
	for _, part := range splitOutsideParens(m[1]) {
		part = strings.TrimSpace(leadingAndRe.ReplaceAllString(strings.TrimSpace(part), ""))
		if part == "" {
			continue
		}

		item := dnd5e.EquipmentItem{Quantity: 1}
		if cm := choiceParenRe.FindStringSubmatch(part); cm != nil {
			item.IsChoice = true
			item.ChoiceDescription = strings.TrimSpace(cm[1])
			part = strings.TrimSpace(choiceParenRe.ReplaceAllString(part, ""))
		}
		if qm := numericLeadQtyRe.FindStringSubmatch(part); qm != nil {
			item.Quantity, _ = strconv.Atoi(qm[1])
			part = strings.TrimSpace(part[len(qm[0]):])
		}
		name := leadingArticleRe.ReplaceAllString(part, "")
		name = strings.TrimSpace(setOfRe.ReplaceAllString(name, ""))
		name = strings.TrimSuffix(name, ".")

		if gm := containingGoldRe.FindStringSubmatch(name); gm != nil {
			item.Name = strings.TrimSpace(gm[1])
			gp, _ := strconv.Atoi(gm[2])
			out = append(out, item, dnd5e.EquipmentItem{Name: "gp", Quantity: gp})
			continue
		}
		item.Name = name
		out = append(out, item)
	}
	return out
}

// splitOutsideParens splits on commas that are not inside parentheses
func splitOutsideParens(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
