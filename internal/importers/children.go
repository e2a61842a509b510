package importers

import (
	"context"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// childBuilder resolves the lookups of child records for one entity
type childBuilder struct {
	lookups *Lookups
	rec     *RecordResult
}

func (i *importer) children(rec *RecordResult) childBuilder {
	return childBuilder{lookups: i.lookups, rec: rec}
}

// sources drops unknown books with a warning and keeps the first citation
// of each book
func (b childBuilder) sources(citations []dnd5e.SourceCitation) []compendium.SourceRow {
	if len(citations) == 0 {
		citations = []dnd5e.SourceCitation{{Code: dnd5e.DefaultSourceCode}}
	}
	seen := make(map[int64]bool, len(citations))
	rows := make([]compendium.SourceRow, 0, len(citations))
	for _, c := range citations {
		id := b.lookups.resolve(compendium.LookupSources, c.Code, b.rec)
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		rows = append(rows, compendium.SourceRow{SourceID: *id, Pages: c.Pages})
	}
	return rows
}

func (b childBuilder) modifiers(mods []dnd5e.Modifier) []compendium.ModifierRow {
	if len(mods) == 0 {
		return nil
	}
	rows := make([]compendium.ModifierRow, 0, len(mods))
	for _, m := range mods {
		rows = append(rows, compendium.ModifierRow{
			Modifier:       m,
			AbilityScoreID: b.lookups.resolve(compendium.LookupAbilityScores, m.AbilityCode, b.rec),
			SkillID:        b.lookups.resolve(compendium.LookupSkills, m.SkillName, b.rec),
			DamageTypeID:   b.lookups.resolve(compendium.LookupDamageTypes, m.DamageTypeName, b.rec),
		})
	}
	return rows
}

func (b childBuilder) proficiencies(profs []dnd5e.Proficiency) []compendium.ProficiencyRow {
	if len(profs) == 0 {
		return nil
	}
	rows := make([]compendium.ProficiencyRow, 0, len(profs))
	for _, p := range profs {
		row := compendium.ProficiencyRow{
			Proficiency:       p,
			ProficiencyTypeID: b.lookups.resolve(compendium.LookupProficiencyTypes, p.Type, b.rec),
		}
		if p.Type == dnd5e.ProficiencyTypeSkill && p.Name != "" {
			row.SkillID = b.lookups.resolve(compendium.LookupSkills, p.Name, b.rec)
		}
		rows = append(rows, row)
	}
	return rows
}

// languages keeps grants for unknown languages by name
func (b childBuilder) languages(grants []dnd5e.LanguageGrant) []compendium.LanguageRow {
	if len(grants) == 0 {
		return nil
	}
	rows := make([]compendium.LanguageRow, 0, len(grants))
	for _, g := range grants {
		row := compendium.LanguageRow{LanguageGrant: g}
		if !g.IsChoice {
			row.LanguageID = b.lookups.resolve(compendium.LookupLanguages, g.Name, b.rec)
		}
		rows = append(rows, row)
	}
	return rows
}

func (b childBuilder) conditions(effects []dnd5e.ConditionEffect) []compendium.ConditionRow {
	if len(effects) == 0 {
		return nil
	}
	rows := make([]compendium.ConditionRow, 0, len(effects))
	for _, e := range effects {
		rows = append(rows, compendium.ConditionRow{
			ConditionEffect: e,
			ConditionID:     b.lookups.resolve(compendium.LookupConditions, e.Condition, b.rec),
		})
	}
	return rows
}

func (b childBuilder) savingThrows(saves []dnd5e.SavingThrow) []compendium.SavingThrowRow {
	if len(saves) == 0 {
		return nil
	}
	rows := make([]compendium.SavingThrowRow, 0, len(saves))
	for _, s := range saves {
		rows = append(rows, compendium.SavingThrowRow{
			SavingThrow:    s,
			AbilityScoreID: b.lookups.resolve(compendium.LookupAbilityScores, s.Ability, b.rec),
		})
	}
	return rows
}

func (b childBuilder) spellEffects(effects []dnd5e.SpellEffect) []compendium.SpellEffectRow {
	if len(effects) == 0 {
		return nil
	}
	rows := make([]compendium.SpellEffectRow, 0, len(effects))
	for _, e := range effects {
		rows = append(rows, compendium.SpellEffectRow{
			SpellEffect:  e,
			DamageTypeID: b.lookups.resolve(compendium.LookupDamageTypes, e.DamageType, b.rec),
		})
	}
	return rows
}

// check records a warning when key is not in table
func (b childBuilder) check(table compendium.LookupTable, key string) {
	b.lookups.resolve(table, key, b.rec)
}

// resistanceModifiers turns damage type names into damage_resistance modifiers
func resistanceModifiers(resistances []string) []dnd5e.Modifier {
	mods := make([]dnd5e.Modifier, 0, len(resistances))
	for _, r := range resistances {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		mods = append(mods, dnd5e.Modifier{
			Category:       parsers.ModifierDamageResist,
			Value:          "resistance",
			DamageTypeName: r,
		})
	}
	return mods
}

// linkSpells links castable spells to an entity by name. Missing spells are
// warnings.
func linkSpells(ctx context.Context, q compendium.Queries, entityID int64, names []string, rec *RecordResult) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		slug := dnd5e.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		spell, err := q.GetEntity(ctx, dnd5e.EntityTypeSpell, slug)
		if errors.IsNotFound(err) {
			rec.warn("spell not found: " + name)
			rec.incr("spells_not_found", 1)
			continue
		}
		if err != nil {
			return err
		}
		if _, err := q.LinkEntitySpell(ctx, entityID, spell.ID); err != nil {
			return err
		}
		rec.incr("spells_linked", 1)
	}
	return nil
}

// upsert writes the entity row and records whether it was created
func upsert(ctx context.Context, q compendium.Queries, entity dnd5e.Entity, parentID *int64, rec *RecordResult) (int64, error) {
	out, err := q.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: entity, ParentID: parentID})
	if err != nil {
		return 0, err
	}
	rec.Created = out.Created
	return out.ID, nil
}
