package parsers

import (
	"regexp"
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// KnownLanguages are the language names recognised in free text
var KnownLanguages = []string{
	"Common", "Dwarvish", "Elvish", "Giant", "Gnomish", "Goblin", "Halfling", "Orc",
	"Abyssal", "Celestial", "Draconic", "Deep Speech", "Infernal", "Primordial",
	"Sylvan", "Undercommon", "Aquan", "Auran", "Ignan", "Terran", "Druidic",
	"Thieves' Cant", "Gith", "Giant Eagle", "Sahuagin", "Aarakocra", "Gnoll",
	"Grung", "Leonin", "Loxodon", "Minotaur", "Quori", "Vedalken",
}

var (
	firstSentenceRe      = regexp.MustCompile(`\.(?:\s|$)`)
	ofYourChoiceRe       = regexp.MustCompile(`(?i)\b(one|two|three|four|any|a|an)\s+of\s+your\s+choice\b`)
	extraLanguagesRe     = regexp.MustCompile(`(?i)\b(one|two|three|four|any|a|an)\s+(?:(?:extra|other|additional)\s+)?languages?\b`)
	plusOneOfFollowingRe = regexp.MustCompile(`(?i)\bplus\s+one\s+of\s+the\s+following\b`)
	languagePatterns     = compileLanguagePatterns()
	languageMatchOrder   = longestFirst(KnownLanguages)
)

// longestFirst returns indexes into names ordered by descending length
func longestFirst(names []string) []int {
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return len(names[order[i]]) > len(names[order[j]]) })
	return order
}

func compileLanguagePatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(KnownLanguages))
	for i, name := range KnownLanguages {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	}
	return out
}

// ExtractLanguages reads the first sentence of a language description:
// "Common, Elvish, and one extra language of your choice" yields two known
// languages and one choice slot.
func ExtractLanguages(text string) []dnd5e.LanguageGrant {
	remaining := text
	if loc := firstSentenceRe.FindStringIndex(text); loc != nil {
		remaining = text[:loc[0]]
	}

	var out []dnd5e.LanguageGrant
	addChoice := func(word string) {
		n := WordToNumber(word)
		if strings.EqualFold(word, "any") || n == 0 {
			n = 1
		}
		out = append(out, dnd5e.LanguageGrant{IsChoice: true, Quantity: n})
	}

	if m := ofYourChoiceRe.FindStringSubmatch(remaining); m != nil && !extraLanguagesRe.MatchString(remaining) {
		addChoice(m[1])
		remaining = strings.Replace(remaining, m[0], "", 1)
	}
	for _, m := range extraLanguagesRe.FindAllStringSubmatch(remaining, -1) {
		addChoice(m[1])
		remaining = strings.Replace(remaining, m[0], "", 1)
	}

	// longest names first so "Giant Eagle" is not also read as "Giant"
	type found struct {
		pos  int
		name string
	}
	var named []found
	for _, idx := range languageMatchOrder {
		loc := languagePatterns[idx].FindStringIndex(remaining)
		if loc == nil {
			continue
		}
		named = append(named, found{pos: loc[0], name: KnownLanguages[idx]})
		remaining = remaining[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + remaining[loc[1]:]
	}
	sort.Slice(named, func(i, j int) bool { return named[i].pos < named[j].pos })
	for _, n := range named {
		out = append(out, dnd5e.LanguageGrant{Name: n.name})
	}

	if plusOneOfFollowingRe.MatchString(remaining) {
		out = append(out, dnd5e.LanguageGrant{IsChoice: true, Quantity: 1})
	}
	return out
}
