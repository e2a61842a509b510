package compendium

import (
	"context"
	"encoding/json"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Children holds every child record of one entity. Lookup ids are resolved
// by the caller; a nil id stores NULL.
type Children struct {
	Sources        []SourceRow
	Modifiers      []ModifierRow
	Proficiencies  []ProficiencyRow
	Traits         []dnd5e.Trait
	Counters       []dnd5e.Counter
	RandomTables   []dnd5e.RandomTable
	Features       []dnd5e.ClassFeature
	MonsterActions []MonsterActionRow
	SpellEffects   []SpellEffectRow
	SavingThrows   []SavingThrowRow
	Languages      []LanguageRow
	Conditions     []ConditionRow
	Prerequisites  []dnd5e.Prerequisite
	Tags           []string
}

// SourceRow links an entity to a source book
type SourceRow struct {
	SourceID int64
	Pages    string
}

// ModifierRow is a modifier with its resolved lookups
type ModifierRow struct {
	dnd5e.Modifier
	AbilityScoreID *int64
	SkillID        *int64
	DamageTypeID   *int64
}

// ProficiencyRow is a proficiency with its resolved lookups
type ProficiencyRow struct {
	dnd5e.Proficiency
	ProficiencyTypeID *int64
	SkillID           *int64
}

// MonsterActionRow covers traits, actions, reactions and legendary actions
type MonsterActionRow struct {
	Kind         string
	Name         string
	Description  string
	AttackData   []string
	Recharge     string
	ActionCost   int
	IsLairAction bool
	SortOrder    int
}

// SpellEffectRow is a spell effect with its damage type resolved
type SpellEffectRow struct {
	dnd5e.SpellEffect
	DamageTypeID *int64
}

// SavingThrowRow is a saving throw with its ability resolved
type SavingThrowRow struct {
	dnd5e.SavingThrow
	AbilityScoreID *int64
}

// LanguageRow is a language grant with its language resolved
type LanguageRow struct {
	dnd5e.LanguageGrant
	LanguageID *int64
}

// ConditionRow is a condition effect with its condition resolved
type ConditionRow struct {
	dnd5e.ConditionEffect
	ConditionID *int64
}

// childTables are cleared before children are written. random_table_entries
// cascade from random_tables; class_spells are managed by LinkClassSpell.
var childTables = []string{
	"entity_sources",
	"entity_modifiers",
	"entity_proficiencies",
	"entity_traits",
	"entity_counters",
	"random_tables",
	"class_features",
	"monster_actions",
	"spell_effects",
	"saving_throws",
	"entity_languages",
	"entity_conditions",
	"entity_prerequisites",
	"entity_tags",
	"entity_spells",
}

func (q *queries) ReplaceChildren(ctx context.Context, entityID int64, children *Children) error {
	if entityID <= 0 {
		return errors.InvalidArgument("entity id is required")
	}
	for _, table := range childTables {
		if _, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE entity_id = ?`, entityID); err != nil {
			return errors.Wrapf(err, "failed to clear %s for entity %d", table, entityID)
		}
	}
	if children == nil {
		return nil
	}

	writers := []func(context.Context, int64, *Children) error{
		q.insertSources,
		q.insertModifiers,
		q.insertProficiencies,
		q.insertTraits,
		q.insertCounters,
		q.insertRandomTables,
		q.insertFeatures,
		q.insertMonsterActions,
		q.insertSpellEffects,
		q.insertSavingThrows,
		q.insertLanguages,
		q.insertConditions,
		q.insertPrerequisites,
		q.insertTags,
	}
	for _, write := range writers {
		if err := write(ctx, entityID, children); err != nil {
			return err
		}
	}
	return nil
}

func (q *queries) insertSources(ctx context.Context, entityID int64, c *Children) error {
	for _, s := range c.Sources {
		if _, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO entity_sources (entity_id, source_id, pages) VALUES (?, ?, ?)`,
			entityID, s.SourceID, s.Pages,
		); err != nil {
			return errors.Wrapf(err, "failed to insert source %d", s.SourceID)
		}
	}
	return nil
}

func (q *queries) insertModifiers(ctx context.Context, entityID int64, c *Children) error {
	for _, m := range c.Modifiers {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_modifiers (entity_id, category, value, condition, ability_score_id, skill_id,
			 damage_type_id, is_choice, choice_count, choice_constraint) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, m.Category, m.Value, m.Condition, m.AbilityScoreID, m.SkillID,
			m.DamageTypeID, m.IsChoice, m.ChoiceCount, m.ChoiceConstraint,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %s modifier", m.Category)
		}
	}
	return nil
}

func (q *queries) insertProficiencies(ctx context.Context, entityID int64, c *Children) error {
	for _, p := range c.Proficiencies {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_proficiencies (entity_id, name, proficiency_type_id, skill_id, grants,
			 is_choice, choice_group, quantity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, p.Name, p.ProficiencyTypeID, p.SkillID, p.Grants, p.IsChoice, p.ChoiceGroup, p.Quantity,
		); err != nil {
			return errors.Wrapf(err, "failed to insert proficiency %s", p.Name)
		}
	}
	return nil
}

func (q *queries) insertTraits(ctx context.Context, entityID int64, c *Children) error {
	for _, t := range c.Traits {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_traits (entity_id, name, category, description, sort_order) VALUES (?, ?, ?, ?, ?)`,
			entityID, t.Name, t.Category, t.Description, t.SortOrder,
		); err != nil {
			return errors.Wrapf(err, "failed to insert trait %s", t.Name)
		}
	}
	return nil
}

func (q *queries) insertCounters(ctx context.Context, entityID int64, c *Children) error {
	for _, ctr := range c.Counters {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_counters (entity_id, name, level, value, reset_timing) VALUES (?, ?, ?, ?, ?)`,
			entityID, ctr.Name, ctr.Level, ctr.Value, ctr.ResetTiming,
		); err != nil {
			return errors.Wrapf(err, "failed to insert counter %s", ctr.Name)
		}
	}
	return nil
}

func (q *queries) insertRandomTables(ctx context.Context, entityID int64, c *Children) error {
	for _, t := range c.RandomTables {
		res, err := q.db.ExecContext(ctx,
			`INSERT INTO random_tables (entity_id, name, dice_type, trait_name) VALUES (?, ?, ?, ?)`,
			entityID, t.Name, t.DiceType, t.TraitName,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert table %s", t.Name)
		}
		tableID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrapf(err, "failed to read id for table %s", t.Name)
		}
		for _, e := range t.Entries {
			if _, err := q.db.ExecContext(ctx,
				`INSERT INTO random_table_entries (table_id, roll_min, roll_max, result, sort_order) VALUES (?, ?, ?, ?, ?)`,
				tableID, e.RollMin, e.RollMax, e.Result, e.SortOrder,
			); err != nil {
				return errors.Wrapf(err, "failed to insert entry for table %s", t.Name)
			}
		}
	}
	return nil
}

func (q *queries) insertFeatures(ctx context.Context, entityID int64, c *Children) error {
	for _, f := range c.Features {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO class_features (entity_id, level, name, description, is_optional, grants_asi, resets_on, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, f.Level, f.Name, f.Description, f.IsOptional, f.GrantsASI, f.ResetsOn, f.SortOrder,
		); err != nil {
			return errors.Wrapf(err, "failed to insert feature %s", f.Name)
		}
	}
	return nil
}

func (q *queries) insertMonsterActions(ctx context.Context, entityID int64, c *Children) error {
	for _, a := range c.MonsterActions {
		attack := ""
		if len(a.AttackData) > 0 {
			raw, err := json.Marshal(a.AttackData)
			if err != nil {
				return errors.Wrapf(err, "failed to marshal attack data for %s", a.Name)
			}
			attack = string(raw)
		}
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO monster_actions (entity_id, kind, name, description, attack_data, recharge, action_cost,
			 is_lair_action, sort_order) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, a.Kind, a.Name, a.Description, attack, a.Recharge, a.ActionCost, a.IsLairAction, a.SortOrder,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %s %s", a.Kind, a.Name)
		}
	}
	return nil
}

func (q *queries) insertSpellEffects(ctx context.Context, entityID int64, c *Children) error {
	for _, e := range c.SpellEffects {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO spell_effects (entity_id, effect_type, dice_formula, damage_type_id, scaling_type,
			 min_character_level, min_spell_slot, scaling_increment, projectile_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entityID, e.EffectType, e.DiceFormula, e.DamageTypeID, e.ScalingType,
			e.MinCharacterLevel, e.MinSpellSlot, e.ScalingIncrement, e.ProjectileCount,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %s effect", e.EffectType)
		}
	}
	return nil
}

func (q *queries) insertSavingThrows(ctx context.Context, entityID int64, c *Children) error {
	for _, st := range c.SavingThrows {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO saving_throws (entity_id, ability_score_id, effect_on_save, recurring, modifier) VALUES (?, ?, ?, ?, ?)`,
			entityID, st.AbilityScoreID, st.EffectOnSave, st.Recurring, st.Modifier,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %s saving throw", st.Ability)
		}
	}
	return nil
}

func (q *queries) insertLanguages(ctx context.Context, entityID int64, c *Children) error {
	for _, l := range c.Languages {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_languages (entity_id, language_id, name, is_choice, quantity) VALUES (?, ?, ?, ?, ?)`,
			entityID, l.LanguageID, l.Name, l.IsChoice, l.Quantity,
		); err != nil {
			return errors.Wrapf(err, "failed to insert language %s", l.Name)
		}
	}
	return nil
}

func (q *queries) insertConditions(ctx context.Context, entityID int64, c *Children) error {
	for _, cond := range c.Conditions {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_conditions (entity_id, condition_id, description, effect_type) VALUES (?, ?, ?, ?)`,
			entityID, cond.ConditionID, cond.Condition, cond.EffectType,
		); err != nil {
			return errors.Wrapf(err, "failed to insert condition %s", cond.Condition)
		}
	}
	return nil
}

func (q *queries) insertPrerequisites(ctx context.Context, entityID int64, c *Children) error {
	for _, p := range c.Prerequisites {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO entity_prerequisites (entity_id, prerequisite_type, reference, minimum_value, description, group_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entityID, p.Type, p.Reference, p.MinimumValue, p.Description, p.GroupID,
		); err != nil {
			return errors.Wrap(err, "failed to insert prerequisite")
		}
	}
	return nil
}

func (q *queries) insertTags(ctx context.Context, entityID int64, c *Children) error {
	for _, tag := range c.Tags {
		if _, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO entity_tags (entity_id, tag) VALUES (?, ?)`, entityID, tag,
		); err != nil {
			return errors.Wrapf(err, "failed to insert tag %s", tag)
		}
	}
	return nil
}

// LinkEntitySpell records that an entity such as a monster can cast a spell
func (q *queries) LinkEntitySpell(ctx context.Context, entityID, spellID int64) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO entity_spells (entity_id, spell_id) VALUES (?, ?)`, entityID, spellID)
	if err != nil {
		return false, errors.Wrapf(err, "failed to link spell %d to entity %d", spellID, entityID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read link result")
	}
	return n > 0, nil
}

// ChildCounts reports how many rows of each child table belong to an entity
func (q *queries) ChildCounts(ctx context.Context, entityID int64) (map[string]int, error) {
	counts := make(map[string]int, len(childTables))
	for _, table := range childTables {
		var n int
		if err := q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE entity_id = ?`, entityID,
		).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", table)
		}
		if n > 0 {
			counts[table] = n
		}
	}
	return counts, nil
}
