package itemstrategy

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	tattooSuffixRe  = regexp.MustCompile(`(?i)\s+tattoo$`)
	bonusActionRe   = regexp.MustCompile(`(?i)\bbonus action\b`)
	actionRe        = regexp.MustCompile(`(?i)\b(?:as an|use(?: an?)?|take|an) action\b`)
	reactionRe      = regexp.MustCompile(`(?i)\breaction\b`)
	passiveRe       = regexp.MustCompile(`(?i)^(?:while|whenever)\b|\. (?:while|whenever)\b`)
	bodyLocationRe  = regexp.MustCompile(`(?i)\b(arm|chest|back|leg|hand|face|neck|shoulder|torso)s?\b`)
	activationOrder = []string{"action", "bonus_action", "reaction", "passive"}
)

// Tattoo reads the type, activation and body location of magic tattoos
type Tattoo struct {
	base
}

// NewTattoo creates a Tattoo strategy
func NewTattoo() *Tattoo {
	s := &Tattoo{}
	s.Reset()
	return s
}

// Name implements Strategy
func (s *Tattoo) Name() string { return "TattooStrategy" }

// AppliesTo implements Strategy
func (s *Tattoo) AppliesTo(item *dnd5e.Item) bool {
	return strings.EqualFold(item.TypeCode, "W") && strings.Contains(strings.ToLower(item.Name), "tattoo")
}

// EnhanceModifiers implements Strategy
func (s *Tattoo) EnhanceModifiers(item *dnd5e.Item, modifiers []dnd5e.Modifier) []dnd5e.Modifier {
	if item.Name != "" {
		kind := strings.ToLower(tattooSuffixRe.ReplaceAllString(strings.TrimSpace(item.Name), ""))
		kind = strings.Join(strings.Fields(kind), "_")
		s.set("tattoo_type", kind)
		s.incr("type_" + kind)
		setAttribute(item, "tattoo_type", kind)
	}

	methods := TattooActivation(item.Description)
	s.set("activation_methods", methods)
	setAttribute(item, "activation", strings.Join(methods, ","))

	if m := bodyLocationRe.FindStringSubmatch(item.Description); m != nil {
		loc := strings.ToLower(m[1])
		s.set("body_location", loc)
		setAttribute(item, "body_location", loc)
	}
	return modifiers
}

// TattooActivation lists how a tattoo is activated: action, bonus_action,
// reaction or passive
func TattooActivation(description string) []string {
	found := map[string]bool{}
	withoutBonus := bonusActionRe.ReplaceAllString(description, "")
	if bonusActionRe.MatchString(description) {
		found["bonus_action"] = true
	}
	if actionRe.MatchString(withoutBonus) {
		found["action"] = true
	}
	if reactionRe.MatchString(description) {
		found["reaction"] = true
	}
	if passiveRe.MatchString(strings.TrimSpace(description)) {
		found["passive"] = true
	}
	methods := []string{}
	for _, m := range activationOrder {
		if found[m] {
			methods = append(methods, m)
		}
	}
	return methods
}
