package dnd5e

import (
	"strings"
	"unicode"
)

// DefaultSourceCode is assumed when an entity has no citation
const DefaultSourceCode = "PHB"

// Slugify lowercases name, drops apostrophes and joins the remaining
// alphanumeric runs with "-"
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}

// FullSlug prefixes slug with the lowercased code of the first source,
// e.g. "phb:fireball"
func FullSlug(sources []SourceCitation, slug string) string {
	code := DefaultSourceCode
	if len(sources) > 0 && sources[0].Code != "" {
		code = sources[0].Code
	}
	return strings.ToLower(code) + ":" + slug
}

// SetIdentity fills Slug and FullSlug from Name and Sources when unset
func (r *Record) SetIdentity() {
	if r.Slug == "" {
		r.Slug = Slugify(r.Name)
	}
	if r.FullSlug == "" {
		r.FullSlug = FullSlug(r.Sources, r.Slug)
	}
}
