package character

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	characterrepo "github.com/KirkDiggler/rpg-compendium/internal/repositories/character"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

const (
	baseArmorClass  = 10
	shieldBonus     = 2
	maxMediumDexMod = 2
)

// Validate checks every creation step is done and records the outcome on
// IsComplete
func (o *Orchestrator) Validate(ctx context.Context, input *character.ValidateInput) (*character.ValidateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	char, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	defs, _, err := o.reconcile(ctx, char)
	if err != nil {
		return nil, err
	}

	var problems, warnings []string
	if char.RaceSlug == "" {
		problems = append(problems, "race is not set")
	} else {
		race, err := o.race(ctx, char.RaceSlug)
		if err != nil {
			return nil, err
		}
		if race.SubraceRequired && char.SubraceSlug == "" {
			problems = append(problems, fmt.Sprintf("%s requires a subrace", race.Name))
		}
	}

	link := char.PrimaryClass()
	if link == nil {
		problems = append(problems, "class is not set")
	}
	if char.BackgroundSlug == "" {
		problems = append(problems, "background is not set")
	}
	if !hasAllScores(char.AbilityScores) {
		problems = append(problems, "ability scores are incomplete")
	}
	if link != nil && char.EquipmentMode == "" {
		problems = append(problems, "equipment mode is not set")
	}
	if strings.TrimSpace(char.Name) == "" {
		problems = append(problems, "name is not set")
	}
	for _, l := range char.Classes {
		cls, err := o.class(ctx, l.ClassSlug)
		if err != nil {
			return nil, err
		}
		if lvl := cls.SubclassLevel(); lvl > 0 && l.Level >= lvl && l.SubclassSlug == "" {
			problems = append(problems, fmt.Sprintf("%s level %d requires a subclass", cls.Name, l.Level))
		}
	}
	for _, p := range pendingOnly(char, defs) {
		if p.Type == dnd5e.ChoiceTypeEquipmentMode || p.Type == dnd5e.ChoiceTypeSubclass {
			continue
		}
		problems = append(problems, fmt.Sprintf("choice %s is unresolved", p.ID))
	}
	if char.Alignment == "" {
		warnings = append(warnings, "alignment is not set")
	}

	char.IsComplete = len(problems) == 0
	out, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{Character: char})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save character %s", char.ID)
	}

	o.logger.Debug("character validated",
		zap.String("character_id", char.ID),
		zap.Bool("valid", char.IsComplete),
		zap.Int("errors", len(problems)))

	return &character.ValidateOutput{
		Character: out.Character,
		Valid:     char.IsComplete,
		Errors:    problems,
		Warnings:  warnings,
	}, nil
}

func hasAllScores(scores map[string]int) bool {
	for _, code := range dnd5e.AbilityCodes {
		if scores[code] == 0 {
			return false
		}
	}
	return true
}

// Stats derives hit points, armor class and the other sheet numbers
func (o *Orchestrator) Stats(ctx context.Context, input *character.StatsInput) (*character.StatsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	char, err := o.load(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	stats, err := o.stats(ctx, char)
	if err != nil {
		return nil, err
	}
	return &character.StatsOutput{Stats: stats}, nil
}

func (o *Orchestrator) stats(ctx context.Context, char *dnd5e.Character) (*character.Stats, error) {
	scores := char.FinalAbilityScores()
	mods := make(map[string]int, len(scores))
	for code, v := range scores {
		mods[code] = dnd5e.AbilityModifier(v)
	}
	level := max(char.TotalLevel(), 1)
	pb := dnd5e.ProficiencyBonus(level)

	stats := &character.Stats{
		ProficiencyBonus: pb,
		AbilityScores:    scores,
		AbilityModifiers: mods,
		SavingThrows:     make(map[string]int, len(dnd5e.AbilityCodes)),
		Skills:           make(map[string]int, len(dnd5e.Skills)),
	}

	if err := o.raceStats(ctx, char, stats); err != nil {
		return nil, err
	}

	classes := make(map[string]*dnd5e.CharacterClass, len(char.Classes))
	for _, l := range char.Classes {
		cls, err := o.class(ctx, l.ClassSlug)
		if err != nil {
			return nil, err
		}
		classes[l.ClassSlug] = cls
	}

	// first level takes the full hit die, later levels what was rolled, and
	// every level gains at least 1
	if primary := char.PrimaryClass(); primary != nil {
		con := mods[dnd5e.AbilityConstitution]
		hp := max(classes[primary.ClassSlug].HitDie+con, 1)
		for _, r := range char.HitPointRolls {
			hp += max(r.Value+con, 1)
		}
		stats.HitPoints = hp
	}

	saves := map[string]bool{}
	if primary := char.PrimaryClass(); primary != nil {
		for _, name := range classes[primary.ClassSlug].SavingThrowProficiencies() {
			if code := dnd5e.AbilityCode(name); code != "" {
				saves[code] = true
			}
		}
	}
	for _, code := range dnd5e.AbilityCodes {
		stats.SavingThrows[code] = mods[code]
		if saves[code] {
			stats.SavingThrows[code] += pb
		}
	}

	proficient := map[string]bool{}
	for _, p := range char.Proficiencies {
		proficient[strings.ToLower(p.Name)] = true
	}
	for skill, ability := range dnd5e.Skills {
		stats.Skills[skill] = mods[ability]
		if proficient[strings.ToLower(skill)] {
			stats.Skills[skill] += pb
		}
	}

	ac, err := o.armorClass(ctx, char, mods)
	if err != nil {
		return nil, err
	}
	stats.ArmorClass = ac

	for _, l := range char.Classes {
		cls := classes[l.ClassSlug]
		ability := cls.SpellcastingAbility
		var slots [9]int
		if p, ok := cls.ProgressionAt(l.Level); ok {
			slots = p.Slots
		}
		if ability == "" && l.SubclassSlug != "" {
			if sub, ok := findSubclass(cls, l.SubclassSlug); ok && sub.SpellcastingAbility != "" {
				ability = sub.SpellcastingAbility
				for _, p := range sub.SpellProgression {
					if p.Level == l.Level {
						slots = p.Slots
					}
				}
			}
		}
		code := dnd5e.AbilityCode(ability)
		if code == "" {
			continue
		}
		stats.Spellcasting = append(stats.Spellcasting, character.SpellcastingStats{
			ClassSlug:   l.ClassSlug,
			Ability:     code,
			SaveDC:      8 + pb + mods[code],
			AttackBonus: pb + mods[code],
			Slots:       slots,
		})
	}
	return stats, nil
}

func (o *Orchestrator) raceStats(ctx context.Context, char *dnd5e.Character, stats *character.Stats) error {
	stats.Speed = 30
	stats.Size = dnd5e.Sizes["M"]
	for _, slug := range []string{char.RaceSlug, char.SubraceSlug} {
		if slug == "" {
			continue
		}
		race, err := o.race(ctx, slug)
		if err != nil {
			return err
		}
		if race.Speed > 0 {
			stats.Speed = race.Speed
		}
		if size, ok := dnd5e.Sizes[race.SizeCode]; ok {
			stats.Size = size
		}
	}
	return nil
}

// armorClass picks the best armor carried and adds a shield. Barbarians and
// monks without armor use their unarmored defense.
func (o *Orchestrator) armorClass(ctx context.Context, char *dnd5e.Character, mods map[string]int) (int, error) {
	dex := mods[dnd5e.AbilityDexterity]
	best := 0
	shield := 0
	for _, carried := range char.Equipment {
		it, err := o.item(ctx, carried.Name)
		if err != nil {
			return 0, err
		}
		if it == nil || it.ArmorClass == nil {
			continue
		}
		base := *it.ArmorClass
		var ac int
		switch it.TypeCode {
		case dnd5e.ItemTypeLightArmor:
			ac = base + dex
		case dnd5e.ItemTypeMediumArmor:
			ac = base + min(dex, maxMediumDexMod)
		case dnd5e.ItemTypeHeavyArmor:
			ac = base
		case dnd5e.ItemTypeShield:
			shield = max(shield, base, shieldBonus)
			continue
		default:
			continue
		}
		best = max(best, ac)
	}

	if best == 0 {
		best = baseArmorClass + dex
		switch {
		case char.ClassLink("barbarian") != nil:
			best += mods[dnd5e.AbilityConstitution]
		case char.ClassLink("monk") != nil && shield == 0:
			best += mods[dnd5e.AbilityWisdom]
		}
	}
	return best + shield, nil
}
