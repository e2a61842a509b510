package parsers

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	leadingNumberRe = regexp.MustCompile(`^\s*(\d+)`)
	parenContentRe  = regexp.MustCompile(`\(([^)]+)\)`)
	speedModeRe     = regexp.MustCompile(`(?i)(?:(\w+)\s+)?(\d+)\s*ft`)
	bonusEntryRe    = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z\s]*?)\s*([+\-]\d+)`)
	monsterSenseRe  = regexp.MustCompile(`(?i)(darkvision|blindsight|tremorsense|truesight)\s+(\d+)\s*ft\.?(?:\s+or\s+\d+\s*ft\.?\s+while\s+\w+)?\s*(?:\(([^)]+)\))?`)
	legendaryCostRe = regexp.MustCompile(`(?i)\(Costs?\s+(\d+)\s+Actions?\)`)
)

// MonsterParser parses <monster> elements
type MonsterParser struct {
	rules *config.Rules
}

// NewMonsterParser creates a MonsterParser using the embedded rules for XP
func NewMonsterParser() *MonsterParser {
	return &MonsterParser{rules: config.MustRules()}
}

// Parse reads every <monster> element
func (p *MonsterParser) Parse(r io.Reader) ([]*dnd5e.Monster, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	monsters := make([]*dnd5e.Monster, 0, len(doc.Monsters))
	for _, el := range doc.Monsters {
		monsters = append(monsters, p.parseMonster(el))
	}
	return monsters, nil
}

// ParseBytes parses an in-memory document
func (p *MonsterParser) ParseBytes(data []byte) ([]*dnd5e.Monster, error) {
	return p.Parse(bytes.NewReader(data))
}

func (p *MonsterParser) parseMonster(el monsterXML) *dnd5e.Monster {
	description := strings.TrimSpace(el.Description)
	cr := strings.TrimSpace(el.CR)
	xp, _ := p.rules.XPForChallengeRating(cr)

	m := &dnd5e.Monster{
		Record: dnd5e.Record{
			Name:    strings.TrimSpace(el.Name),
			Sources: sourcesOrDefault(monsterSources(el, description)),
		},
		SizeCode:   strings.TrimSpace(el.Size),
		Type:       strings.TrimSpace(el.Type),
		Alignment:  strings.TrimSpace(el.Alignment),
		ArmorClass: leadingNumber(el.AC),
		ArmorType:  parenContent(el.AC),
		HitPoints:  leadingNumber(el.HP),
		HitDice:    parenContent(el.HP),
		Speed:      ParseMonsterSpeed(el.Speed),
		AbilityScores: map[string]int{
			dnd5e.AbilityStrength:     atoi(el.Str),
			dnd5e.AbilityDexterity:    atoi(el.Dex),
			dnd5e.AbilityConstitution: atoi(el.Con),
			dnd5e.AbilityIntelligence: atoi(el.Int),
			dnd5e.AbilityWisdom:       atoi(el.Wis),
			dnd5e.AbilityCharisma:     atoi(el.Cha),
		},
		SavingThrows:          monsterSaves(el.Save),
		Skills:                monsterSkills(el.Skill),
		DamageVulnerabilities: strings.TrimSpace(el.Vulnerable),
		DamageResistances:     strings.TrimSpace(el.Resist),
		DamageImmunities:      strings.TrimSpace(el.Immune),
		ConditionImmunities:   strings.TrimSpace(el.ConditionImmune),
		Senses:                ParseMonsterSenses(el.Senses),
		PassivePerception:     atoi(el.Passive),
		Languages:             strings.TrimSpace(el.Languages),
		ChallengeRating:       cr,
		ExperiencePoints:      xp,
		Traits:                monsterActions(el.Traits, dnd5e.ActionKindTrait),
		Actions:               monsterActions(el.Actions, dnd5e.ActionKindAction),
		Reactions:             monsterActions(el.Reactions, dnd5e.ActionKindReaction),
		LegendaryActions:      legendaryActions(el.Legendary),
		Spells:                splitList(el.Spells),
		SpellSlots:            monsterSlots(el.Slots),
		Description:           StripSourceCitations(description),
		Environment:           strings.TrimSpace(el.Environment),
	}
	m.SetIdentity()
	return m
}

// monsterSources reads citations from the description, then from traits
func monsterSources(el monsterXML, description string) []dnd5e.SourceCitation {
	if s := ParseSourceCitations(description); len(s) > 0 {
		return s
	}
	for _, t := range el.Traits {
		if s := sourcesFromTexts(t.Text); len(s) > 0 {
			return s
		}
	}
	return nil
}

func leadingNumber(s string) int {
	if m := leadingNumberRe.FindStringSubmatch(s); m != nil {
		return atoi(m[1])
	}
	return 0
}

func parenContent(s string) string {
	if m := parenContentRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ParseMonsterSpeed reads "30 ft., fly 60 ft. (hover), swim 30 ft."
func ParseMonsterSpeed(s string) dnd5e.MonsterSpeed {
	var speed dnd5e.MonsterSpeed
	for _, m := range speedModeRe.FindAllStringSubmatch(s, -1) {
		n := atoi(m[2])
		switch strings.ToLower(m[1]) {
		case "fly":
			speed.Fly = n
		case "swim":
			speed.Swim = n
		case "climb":
			speed.Climb = n
		case "burrow":
			speed.Burrow = n
		default:
			speed.Walk = n
		}
	}
	speed.CanHover = strings.Contains(strings.ToLower(s), "hover")
	return speed
}

// monsterSaves reads "Dex +7, Con +12" keyed by ability code
func monsterSaves(s string) map[string]int {
	out := map[string]int{}
	for _, part := range splitList(s) {
		m := bonusEntryRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(m[1]))
		if len(code) >= 3 {
			code = code[:3]
		}
		if dnd5e.AbilityName(code) == "" {
			continue
		}
		out[code] = atoi(strings.TrimPrefix(m[2], "+"))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// monsterSkills reads "Perception +16, Animal Handling +5"
func monsterSkills(s string) map[string]int {
	out := map[string]int{}
	for _, part := range splitList(s) {
		if m := bonusEntryRe.FindStringSubmatch(part); m != nil {
			out[strings.TrimSpace(m[1])] = atoi(strings.TrimPrefix(m[2], "+"))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseMonsterSenses reads special senses and their ranges, flagging
// "blind beyond this radius"
func ParseMonsterSenses(s string) []dnd5e.Sense {
	var out []dnd5e.Sense
	for _, m := range monsterSenseRe.FindAllStringSubmatch(s, -1) {
		out = append(out, dnd5e.Sense{
			Type:        strings.ToLower(m[1]),
			Range:       atoi(m[2]),
			BlindBeyond: strings.Contains(strings.ToLower(m[3]), "blind beyond"),
		})
	}
	return out
}

func monsterActions(elems []traitXML, kind string) []dnd5e.MonsterAction {
	var out []dnd5e.MonsterAction
	for i, el := range elems {
		out = append(out, dnd5e.MonsterAction{
			Kind:        kind,
			Name:        strings.TrimSpace(el.Name),
			Description: joinText(el.Text),
			AttackData:  attackData(el.Attack),
			Recharge:    strings.TrimSpace(el.Recharge),
			SortOrder:   i,
		})
	}
	return out
}

func legendaryActions(elems []traitXML) []dnd5e.LegendaryAction {
	var out []dnd5e.LegendaryAction
	for i, el := range elems {
		name := strings.TrimSpace(el.Name)
		category := strings.ToLower(strings.TrimSpace(el.Category))
		out = append(out, dnd5e.LegendaryAction{
			Name:         name,
			Description:  joinText(el.Text),
			Category:     category,
			ActionCost:   LegendaryActionCost(name),
			IsLairAction: category == "lair",
			AttackData:   attackData(el.Attack),
			SortOrder:    i,
		})
	}
	return out
}

// LegendaryActionCost reads "Wing Attack (Costs 2 Actions)"; the default is 1
func LegendaryActionCost(name string) int {
	if m := legendaryCostRe.FindStringSubmatch(name); m != nil {
		return atoi(m[1])
	}
	return 1
}

func attackData(attacks []string) []string {
	var out []string
	for _, a := range attacks {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// monsterSlots reads "4,3,3,1" into slots per spell level
func monsterSlots(s string) []int {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		out = append(out, atoi(p))
	}
	return out
}
