package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var bookCodes = map[string]string{
	"player's handbook":                                 "PHB",
	"dungeon master's guide":                            "DMG",
	"monster manual":                                    "MM",
	"xanathar's guide to everything":                    "XGE",
	"tasha's cauldron of everything":                    "TCE",
	"volo's guide to monsters":                          "VGM",
	"sword coast adventurer's guide":                    "SCAG",
	"eberron: rising from the last war":                 "ERLW",
	"mordenkainen's tome of foes":                       "MTF",
	"fizban's treasury of dragons":                      "FTD",
	"mordenkainen presents: monsters of the multiverse": "MPMM",
	"explorer's guide to wildemount":                    "EGW",
	"guildmasters' guide to ravnica":                    "GGR",
	"mythic odysseys of theros":                         "MOT",
	"van richten's guide to ravenloft":                  "VRGR",
	"the wild beyond the witchlight":                    "WBtW",
	"acquisitions incorporated":                         "AI",
	"tomb of annihilation":                              "ToA",
	"curse of strahd":                                   "CoS",
	"basic rules":                                       "BR",
	"system reference document":                         "SRD",
}

var (
	sourceBlockRe   = regexp.MustCompile(`(?s)Source:\s*(.+)`)
	sourceStripRe   = regexp.MustCompile(`(?s)\n*\s*Source:\s*.*$`)
	citationRe      = regexp.MustCompile(`([^,\n\t]+?)\s+p\.\s*(\d+(?:\s*[-–]\s*\d+)?(?:\s*,\s*\d+(?:\s*[-–]\s*\d+)?)*)`)
	citationNoPage  = regexp.MustCompile(`^\s*([^,\n]+?)\s*$`)
	yearSuffixRe    = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	whitespaceRunRe = regexp.MustCompile(`[ \t]+`)
	diceFormulaRe   = regexp.MustCompile(`\d*d\d+(?:\s*[+\-]\s*\d+)?`)
)

// BookCode maps a book title to its source code. Unknown titles fall back to
// the uppercase initials of their words.
func BookCode(title string) string {
	title = strings.TrimSpace(yearSuffixRe.ReplaceAllString(title, ""))
	if code, ok := bookCodes[strings.ToLower(title)]; ok {
		return code
	}
	var b strings.Builder
	for _, w := range strings.Fields(title) {
		r := []rune(w)
		if len(r) > 0 && (r[0] >= 'A' && r[0] <= 'Z' || r[0] >= '0' && r[0] <= '9') {
			b.WriteRune(r[0])
		}
	}
	if b.Len() == 0 {
		return strings.ToUpper(title)
	}
	return b.String()
}

// ParseSourceCitations reads the "Source:" block of text, e.g.
// "Source: Player's Handbook (2014) p. 241, Xanathar's Guide to Everything p. 5"
func ParseSourceCitations(text string) []dnd5e.SourceCitation {
	m := sourceBlockRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	block := m[1]

	var out []dnd5e.SourceCitation
	seen := map[string]bool{}
	for _, c := range citationRe.FindAllStringSubmatch(block, -1) {
		code := BookCode(strings.TrimSpace(c[1]))
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, dnd5e.SourceCitation{
			Code:  code,
			Pages: strings.Join(strings.Fields(c[2]), " "),
		})
	}
	if len(out) == 0 {
		if nm := citationNoPage.FindStringSubmatch(strings.SplitN(block, "\n", 2)[0]); nm != nil {
			out = append(out, dnd5e.SourceCitation{Code: BookCode(nm[1])})
		}
	}
	return out
}

// StripSourceCitations removes the trailing "Source:" block
func StripSourceCitations(text string) string {
	return strings.TrimSpace(sourceStripRe.ReplaceAllString(text, ""))
}

// sourcesOrDefault returns sources, or the default PHB citation when empty
func sourcesOrDefault(sources []dnd5e.SourceCitation) []dnd5e.SourceCitation {
	if len(sources) == 0 {
		return []dnd5e.SourceCitation{{Code: dnd5e.DefaultSourceCode}}
	}
	return sources
}

// joinText trims each block and joins the non-empty ones with a blank line
func joinText(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// sourcesFromTexts returns the citations of the first text carrying one
func sourcesFromTexts(texts []string) []dnd5e.SourceCitation {
	for _, t := range texts {
		if s := ParseSourceCitations(t); len(s) > 0 {
			return s
		}
	}
	return nil
}

func parseRolls(rolls []rollXML) []dnd5e.Roll {
	if len(rolls) == 0 {
		return nil
	}
	out := make([]dnd5e.Roll, 0, len(rolls))
	for _, r := range rolls {
		roll := dnd5e.Roll{
			Description: strings.TrimSpace(r.Description),
			Formula:     strings.TrimSpace(r.Formula),
		}
		if lvl := strings.TrimSpace(r.Level); lvl != "" {
			if n, err := strconv.Atoi(lvl); err == nil {
				roll.Level = &n
			}
		}
		out = append(out, roll)
	}
	return out
}

var wordNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"once": 1, "twice": 2, "single": 1,
}

// WordToNumber converts "two" or "2" to 2; unknown words return 0
func WordToNumber(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if n, err := strconv.Atoi(word); err == nil {
		return n
	}
	return wordNumbers[word]
}

// InferProficiencyType guesses the proficiency type of a free-text name
func InferProficiencyType(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case dnd5e.AbilityCode(name) != "" && len(lower) > 3:
		return dnd5e.ProficiencyTypeSavingThrow
	case dnd5e.IsSkill(name):
		return dnd5e.ProficiencyTypeSkill
	case strings.Contains(lower, "language"):
		return dnd5e.ProficiencyTypeLanguage
	case strings.Contains(lower, "armor") || lower == "shields" || lower == "shield":
		return dnd5e.ProficiencyTypeArmor
	case strings.Contains(lower, "kit") || strings.Contains(lower, "tools") ||
		strings.Contains(lower, "supplies") || strings.Contains(lower, "gaming set") ||
		strings.Contains(lower, "instrument") || strings.Contains(lower, "utensils") ||
		strings.Contains(lower, "vehicles"):
		return dnd5e.ProficiencyTypeTool
	default:
		return dnd5e.ProficiencyTypeWeapon
	}
}

// ParseRestTiming finds the recharge timing described in text
func ParseRestTiming(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "short or long rest"), strings.Contains(lower, "short rest"):
		return dnd5e.ResetShortRest
	case strings.Contains(lower, "long rest"):
		return dnd5e.ResetLongRest
	case strings.Contains(lower, "at dawn"), strings.Contains(lower, "daily at dawn"), strings.Contains(lower, "next dawn"):
		return dnd5e.ResetDawn
	default:
		return ""
	}
}

var (
	chargesRe         = regexp.MustCompile(`(?i)has (\d+|\w+) charges?`)
	rechargeFormulaRe = regexp.MustCompile(`(?i)regains? (\d*d\d+(?:\s*[+\-]\s*\d+)?|\d+|all) (?:expended )?charges?`)
)

// Charges is the charge information found in item text
type Charges struct {
	Max     *int
	Formula string
	Timing  string
}

// ParseCharges reads "has 7 charges" and "regains 1d6 + 1 expended charges daily at dawn"
func ParseCharges(text string) Charges {
	var c Charges
	if m := chargesRe.FindStringSubmatch(text); m != nil {
		if n := WordToNumber(m[1]); n > 0 {
			c.Max = &n
		}
	}
	if m := rechargeFormulaRe.FindStringSubmatch(text); m != nil {
		c.Formula = strings.ReplaceAll(m[1], " ", "")
		c.Timing = ParseRestTiming(text)
	}
	return c
}

// splitList splits a comma separated list and drops blanks and "none"
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		out = append(out, part)
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}

func intPtr(n int) *int {
	return &n
}
