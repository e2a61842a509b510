package parsers

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

// Save effects
const (
	SaveEndsEffect      = "ends_effect"
	SaveHalfDamage      = "half_damage"
	SaveFullDamage      = "full_damage"
	SaveNegates         = "negates"
	SaveReducedDuration = "reduced_duration"
)

var (
	saveThrowRe         = regexp.MustCompile(`(?i)(Strength|Dexterity|Constitution|Intelligence|Wisdom|Charisma)\s+saving\s+throw`)
	saveWithAdvantageRe = regexp.MustCompile(`(?i)saving\s+throws?.{0,20}with\s+advantage\b`)
	saveEndsRe          = regexp.MustCompile(`(?i)(?:to\s+)?end\s+(?:the\s+|this\s+)?(?:effect|condition)`)
	saveNegatesRe       = regexp.MustCompile(`(?i)or\s+(?:be|become|becomes?)\s+(?:charmed|frightened|paralyzed|stunned|poisoned|restrained|blinded|deafened|petrified|banished|incapacitated|cursed)`)

	saveAdvantageRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)makes?\s+(?:all\s+)?.*saving\s+throws?\s+with\s+advantage\b`),
		regexp.MustCompile(`(?i)\badvantage\s+on.{0,50}?saving\s+throws?`),
	}

	saveDisadvantageRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)makes?\s+(?:this\s+)?.*saving\s+throws?\s+with\s+disadvantage`),
		regexp.MustCompile(`(?i)disadvantage\s+on.{0,50}?saving\s+throws?`),
		regexp.MustCompile(`(?i)does\s+so\s+with\s+advantage\s+if`),
	}

	saveHalfRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btakes?\s+(?:half|1/2)`),
		regexp.MustCompile(`(?i)half\s+(?:the\s+|as\s+much\s+)?damage`),
		regexp.MustCompile(`(?i)or\s+takes?\s+.*?damage`),
		regexp.MustCompile(`(?i)on\s+a\s+successful\s+(?:one|save)`),
	}

	saveFullRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)on\s+a\s+failed\s+save.*takes?\s+\d+d\d+`),
		regexp.MustCompile(`(?i)takes?\s+\d+d\d+.*on\s+a\s+failed\s+save`),
	}
)

var recurringPhrases = []string{
	"at the end of each of its turns",
	"on each of your turns",
	"end of each turn",
	"repeat the save",
	"can repeat",
	"can make another",
	"make another",
	"each time",
}

// ParseSavingThrows finds "<Ability> saving throw" mentions and classifies
// what a successful save does. Duplicates of the same ability, recurrence and
// modifier are dropped.
func ParseSavingThrows(description string) []dnd5e.SavingThrow {
	var out []dnd5e.SavingThrow
	seen := map[string]bool{}

	for _, loc := range saveThrowRe.FindAllStringSubmatchIndex(description, -1) {
		pos := loc[0]
		ability := dnd5e.AbilityCode(description[loc[2]:loc[3]])
		start := max(0, pos-100)

		recurringCtx := window(description, start, pos-start+50)
		recurring := false
		lowerRecurring := strings.ToLower(recurringCtx)
		for _, phrase := range recurringPhrases {
			if strings.Contains(lowerRecurring, phrase) {
				recurring = true
				break
			}
		}

		modifier := saveModifier(window(description, max(0, pos-80), 160))

		effectLen := 200
		if recurring {
			effectLen = 250
		}
		effect := saveEffect(window(description, start, effectLen))

		key := ability + "|" + boolKey(recurring) + "|" + modifier
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, dnd5e.SavingThrow{
			Ability:      ability,
			EffectOnSave: effect,
			Recurring:    recurring,
			Modifier:     modifier,
		})
	}
	return out
}

func saveModifier(ctx string) string {
	for _, re := range saveAdvantageRes {
		if re.MatchString(ctx) {
			return "advantage"
		}
	}
	if saveWithAdvantageRe.MatchString(ctx) && !saveDisadvantageRes[2].MatchString(ctx) {
		return "advantage"
	}
	for _, re := range saveDisadvantageRes {
		if re.MatchString(ctx) {
			return "disadvantage"
		}
	}
	return "none"
}

func saveEffect(ctx string) string {
	lower := strings.ToLower(ctx)
	if saveEndsRe.MatchString(ctx) {
		return SaveEndsEffect
	}
	for _, re := range saveHalfRes {
		if re.MatchString(ctx) {
			return SaveHalfDamage
		}
	}
	for _, re := range saveFullRes {
		if re.MatchString(ctx) {
			return SaveFullDamage
		}
	}
	if saveNegatesRe.MatchString(ctx) || strings.Contains(lower, "negates") || strings.Contains(lower, "avoids") {
		return SaveNegates
	}
	if strings.Contains(lower, "duration") && (strings.Contains(lower, "reduced") || strings.Contains(lower, "shorter")) {
		return SaveReducedDuration
	}
	return ""
}

// window returns up to length bytes of s starting at start
func window(s string, start, length int) string {
	if start >= len(s) {
		return ""
	}
	end := min(len(s), start+length)
	return s[start:end]
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
