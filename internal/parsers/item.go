package parsers

import (
	"bytes"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers/itemstrategy"
)

var (
	requiredProficiencyRe = regexp.MustCompile(`(?i)Proficienc(?:y|ies):\s*([^\n]+)`)
	grantedProficiencyRe  = regexp.MustCompile(`(?i)you (?:have|gain) proficiency with (?:the )?([^.;]+)`)
	abilityFormulaRe      = regexp.MustCompile(`(\d+d\d+(?:\s*[+\-]\s*\d+)?)`)
)

// rarities are matched in order so "very rare" wins over "rare"
var rarities = []string{"very rare", "legendary", "artifact", "uncommon", "rare", "common"}

// ItemParserConfig configures an ItemParser
type ItemParserConfig struct {
	Logger *zap.Logger
	// Strategies defaults to itemstrategy.Default()
	Strategies []itemstrategy.Strategy
}

// ItemParser parses <item> elements and applies item strategies
type ItemParser struct {
	logger     *zap.Logger
	strategies []itemstrategy.Strategy
}

// NewItemParser creates an ItemParser; cfg may be nil
func NewItemParser(cfg *ItemParserConfig) *ItemParser {
	if cfg == nil {
		cfg = &ItemParserConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	strategies := cfg.Strategies
	if strategies == nil {
		strategies = itemstrategy.Default()
	}
	return &ItemParser{logger: logger, strategies: strategies}
}

// Parse reads every <item> element
func (p *ItemParser) Parse(r io.Reader) ([]*dnd5e.Item, error) {
	doc, err := decodeCompendium(r)
	if err != nil {
		return nil, err
	}
	items := make([]*dnd5e.Item, 0, len(doc.Items))
	for _, el := range doc.Items {
		items = append(items, p.parseItem(el))
	}
	return items, nil
}

// ParseBytes parses an in-memory document
func (p *ItemParser) ParseBytes(data []byte) ([]*dnd5e.Item, error) {
	return p.Parse(bytes.NewReader(data))
}

func (p *ItemParser) parseItem(el itemXML) *dnd5e.Item {
	text := joinText(el.Text)
	detail := strings.TrimSpace(el.Detail)

	item := &dnd5e.Item{
		Record: dnd5e.Record{
			Name:    strings.TrimSpace(el.Name),
			Sources: sourcesOrDefault(ParseSourceCitations(text)),
		},
		TypeCode:            strings.TrimSpace(el.Type),
		Detail:              detail,
		Rarity:              parseRarity(detail),
		RequiresAttunement:  parseAttunement(text, detail),
		IsMagic:             isYes(el.Magic),
		CostCP:              parseCost(el.Value),
		Weight:              parseFloat(el.Weight),
		DamageDice:          strings.TrimSpace(el.Dmg1),
		VersatileDamage:     strings.TrimSpace(el.Dmg2),
		DamageTypeCode:      strings.TrimSpace(el.DmgType),
		ArmorClass:          optionalInt(el.AC),
		StrengthRequirement: optionalInt(el.Strength),
		StealthDisadvantage: isYes(el.Stealth),
		Description:         text,
		Properties:          splitList(el.Property),
		Proficiencies:       itemProficiencies(text),
		Abilities:           itemAbilities(el.Rolls),
		RandomTables:        ParseRandomTables(text),
	}
	item.RangeNormal, item.RangeLong = parseRange(el.Range)
	item.Modifiers = itemModifiers(el, text, item.StrengthRequirement)

	charges := ParseCharges(text)
	item.ChargesMax = charges.Max
	item.RechargeFormula = charges.Formula
	item.RechargeTiming = charges.Timing

	item.SetIdentity()
	p.applyStrategies(item)
	return item
}

func (p *ItemParser) applyStrategies(item *dnd5e.Item) {
	for _, s := range p.strategies {
		s.Reset()
		if !s.AppliesTo(item) {
			continue
		}
		item.Modifiers = s.EnhanceModifiers(item, item.Modifiers)
		item.Abilities = s.EnhanceAbilities(item, item.Abilities)
		s.EnhanceRelationships(item)

		md := s.Metadata()
		p.logger.Debug("strategy applied",
			zap.String("item", item.Name),
			zap.String("strategy", s.Name()),
			zap.Strings("warnings", md.Warnings),
			zap.Any("metrics", md.Metrics),
		)
	}
}

func parseRarity(detail string) string {
	lower := strings.ToLower(detail)
	for _, r := range rarities {
		if strings.Contains(lower, r) {
			return r
		}
	}
	return "common"
}

func parseAttunement(text, detail string) bool {
	if strings.Contains(strings.ToLower(detail), "requires attunement") {
		return true
	}
	return strings.Contains(strings.ToLower(text), "requires attunement")
}

// parseCost converts a gold piece value to copper
func parseCost(value string) *int {
	f := parseFloat(value)
	if f == nil {
		return nil
	}
	cp := int(math.Round(*f * 100))
	return &cp
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func optionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseRange reads "80/320" or a single number
func parseRange(s string) (*int, *int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if normal, long, ok := strings.Cut(s, "/"); ok {
		return intPtr(atoi(normal)), intPtr(atoi(long))
	}
	return optionalInt(s), nil
}

// itemProficiencies separates "Proficiency: martial, longsword" requirements
// from "you have proficiency with" grants
func itemProficiencies(text string) []dnd5e.Proficiency {
	var out []dnd5e.Proficiency
	if m := requiredProficiencyRe.FindStringSubmatch(text); m != nil {
		for _, name := range splitList(m[1]) {
			out = append(out, dnd5e.Proficiency{Name: name, Type: InferProficiencyType(name)})
		}
	}
	for _, m := range grantedProficiencyRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		out = append(out, dnd5e.Proficiency{Name: name, Type: InferProficiencyType(name), Grants: true})
	}
	return out
}

func itemModifiers(el itemXML, text string, strengthRequirement *int) []dnd5e.Modifier {
	mods := parseModifierElements(el.Modifiers)
	if isYes(el.Stealth) {
		mods = append(mods, dnd5e.Modifier{
			Category:    ModifierSkill,
			SkillName:   "Stealth",
			AbilityCode: dnd5e.AbilityDexterity,
			Value:       "disadvantage",
		})
	}
	if mod := speedPenaltyModifier(text, strengthRequirement); mod != nil {
		mods = append(mods, *mod)
	}
	mods = append(mods, setScoreModifiers(text)...)
	mods = append(mods, resistanceModifiers(text)...)
	return mods
}

func itemAbilities(rolls []rollXML) []dnd5e.ItemAbility {
	var out []dnd5e.ItemAbility
	for i, r := range rolls {
		rollText := strings.TrimSpace(r.Formula)
		name := strings.TrimSpace(r.Description)
		if name == "" {
			name = rollText
		}
		out = append(out, dnd5e.ItemAbility{
			AbilityType: "roll",
			Name:        name,
			Description: rollText,
			RollFormula: abilityFormulaRe.FindString(rollText),
			SortOrder:   i,
		})
	}
	return out
}
