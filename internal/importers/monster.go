package importers

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/importers/strategies/monster"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// MonsterImporter imports monsters, enhancing each with the first monster
// strategy that applies
type MonsterImporter struct {
	*importer
	parser     *parsers.MonsterParser
	strategies []monster.Strategy
}

// NewMonsterImporter creates a MonsterImporter with the default strategies
func NewMonsterImporter(cfg *Config) (*MonsterImporter, error) {
	base, err := newImporter(cfg, "monsters", dnd5e.EntityTypeMonster)
	if err != nil {
		return nil, err
	}
	i := &MonsterImporter{
		importer:   base,
		parser:     parsers.NewMonsterParser(),
		strategies: monster.Default(),
	}
	base.writer = i
	return i, nil
}

func (i *MonsterImporter) parse(r io.Reader) ([]dnd5e.Entity, error) {
	return asEntities(i.parser.Parse(r))
}

func (i *MonsterImporter) write(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, rec *RecordResult) error {
	m, ok := entity.(*dnd5e.Monster)
	if !ok {
		return unexpectedEntity(dnd5e.EntityTypeMonster, entity)
	}

	strategy := monster.Select(i.strategies, m)
	strategy.Reset()
	m.Traits = strategy.EnhanceTraits(m, m.Traits)
	m.Actions = strategy.EnhanceActions(m, m.Actions)
	m.Reactions = strategy.EnhanceActions(m, m.Reactions)
	m.LegendaryActions = strategy.EnhanceLegendaryActions(m, m.LegendaryActions)
	m.CreatureType = monster.CreatureType(m.Type)
	m.Modifiers = MonsterModifiers(m)
	m.Tags = strategy.Metadata().Tags

	id, err := upsert(ctx, q, m, nil, rec)
	if err != nil {
		return err
	}

	b := i.children(rec)
	b.check(compendium.LookupSizes, m.SizeCode)
	err = q.ReplaceChildren(ctx, id, &compendium.Children{
		Sources:        b.sources(m.Sources),
		Modifiers:      b.modifiers(m.Modifiers),
		MonsterActions: monsterActionRows(m),
		Conditions:     b.conditions(conditionImmunities(m.ConditionImmunities)),
		Tags:           m.Tags,
	})
	if err != nil {
		return err
	}

	if err := strategy.AfterCreate(ctx, q, m); err != nil {
		return err
	}

	md := strategy.Metadata()
	rec.Strategy = strategy.Name()
	for _, w := range md.Warnings {
		rec.warn(w)
	}
	for k, v := range md.Metrics {
		rec.incr(k, v)
	}
	return nil
}

// MonsterModifiers derives modifiers from saves, skills and damage
// resistances, immunities and vulnerabilities
func MonsterModifiers(m *dnd5e.Monster) []dnd5e.Modifier {
	var mods []dnd5e.Modifier
	for _, code := range sortedKeys(m.SavingThrows) {
		mods = append(mods, dnd5e.Modifier{
			Category:    parsers.ModifierSavingThrow + "_" + strings.ToLower(code),
			Value:       signed(m.SavingThrows[code]),
			AbilityCode: code,
		})
	}
	for _, name := range sortedKeys(m.Skills) {
		mods = append(mods, dnd5e.Modifier{
			Category:  parsers.ModifierSkill + "_" + strings.ReplaceAll(dnd5e.Slugify(name), "-", "_"),
			Value:     signed(m.Skills[name]),
			SkillName: name,
		})
	}
	damage := []struct {
		category string
		text     string
	}{
		{parsers.ModifierDamageResist, m.DamageResistances},
		{parsers.ModifierDamageImmune, m.DamageImmunities},
		{parsers.ModifierDamageVulnerable, m.DamageVulnerabilities},
	}
	for _, d := range damage {
		if text := strings.TrimSpace(d.text); text != "" {
			mods = append(mods, dnd5e.Modifier{Category: d.category, Condition: text})
		}
	}
	return mods
}

func monsterActionRows(m *dnd5e.Monster) []compendium.MonsterActionRow {
	var rows []compendium.MonsterActionRow
	for _, group := range [][]dnd5e.MonsterAction{m.Traits, m.Actions, m.Reactions} {
		for _, a := range group {
			rows = append(rows, compendium.MonsterActionRow{
				Kind:        a.Kind,
				Name:        a.Name,
				Description: a.Description,
				AttackData:  a.AttackData,
				Recharge:    a.Recharge,
				SortOrder:   a.SortOrder,
			})
		}
	}
	for _, la := range m.LegendaryActions {
		rows = append(rows, compendium.MonsterActionRow{
			Kind:         dnd5e.ActionKindLegendary,
			Name:         la.Name,
			Description:  la.Description,
			AttackData:   la.AttackData,
			ActionCost:   la.ActionCost,
			IsLairAction: la.IsLairAction,
			SortOrder:    la.SortOrder,
		})
	}
	return rows
}

func conditionImmunities(text string) []dnd5e.ConditionEffect {
	var out []dnd5e.ConditionEffect
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' }) {
		if c := strings.TrimSpace(part); c != "" {
			out = append(out, dnd5e.ConditionEffect{Condition: strings.ToLower(c), EffectType: "immunity"})
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
