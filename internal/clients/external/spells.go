package external

import (
	"fmt"
	"strings"

	"github.com/fadedpez/dnd5e-api/entities"

	internalDnd5e "github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// schoolCodes maps API school names to compendium school codes
var schoolCodes = map[string]string{
	"abjuration":    "A",
	"conjuration":   "C",
	"divination":    "D",
	"enchantment":   "EN",
	"evocation":     "EV",
	"illusion":      "I",
	"necromancy":    "N",
	"transmutation": "T",
}

// ConvertSpell converts a dnd5e-api spell to a compendium spell cited to the SRD
func ConvertSpell(spell *entities.Spell) (*internalDnd5e.Spell, error) {
	if spell == nil {
		return nil, errors.InvalidArgument("spell is nil")
	}

	out := &internalDnd5e.Spell{
		Record: internalDnd5e.Record{
			Name:    spell.Name,
			Sources: []internalDnd5e.SourceCitation{{Code: SourceCode}},
		},
		Level:              spell.SpellLevel,
		CastingTime:        spell.CastingTime,
		Range:              spell.Range,
		Duration:           spell.Duration,
		IsRitual:           spell.Ritual,
		NeedsConcentration: spell.Concentration,
		Description:        buildSpellDescription(spell),
	}
	if spell.SpellSchool != nil {
		out.SchoolCode = schoolCodes[strings.ToLower(spell.SpellSchool.Name)]
	}
	for _, class := range spell.SpellClasses {
		if class != nil {
			out.Classes = append(out.Classes, class.Name)
		}
	}
	if effect, ok := damageEffect(spell); ok {
		out.Effects = []internalDnd5e.SpellEffect{effect}
	}
	if spell.DC != nil && spell.DC.DCType != nil {
		out.SavingThrows = []internalDnd5e.SavingThrow{{
			Ability:      spell.DC.DCType.Name,
			EffectOnSave: saveEffect(spell.DC.DCSuccess),
		}}
	}
	out.SetIdentity()
	return out, nil
}

func damageEffect(spell *entities.Spell) (internalDnd5e.SpellEffect, bool) {
	if spell.SpellDamage == nil || spell.SpellDamage.SpellDamageAtSlotLevel == nil {
		return internalDnd5e.SpellEffect{}, false
	}
	formula := getBaseDamageForSpellLevel(spell.SpellLevel, spell.SpellDamage.SpellDamageAtSlotLevel)
	if formula == "" {
		return internalDnd5e.SpellEffect{}, false
	}
	effect := internalDnd5e.SpellEffect{
		EffectType:  "damage",
		DiceFormula: strings.ReplaceAll(formula, " ", ""),
		ScalingType: internalDnd5e.ScalingSpellSlotLevel,
	}
	if spell.SpellLevel == 0 {
		effect.ScalingType = internalDnd5e.ScalingCharacterLevel
	} else {
		effect.MinSpellSlot = spell.SpellLevel
	}
	if spell.SpellDamage.SpellDamageType != nil {
		effect.DamageType = spell.SpellDamage.SpellDamageType.Name
	}
	return effect, true
}

func saveEffect(success string) string {
	switch strings.ToLower(success) {
	case "half":
		return "half"
	case "none":
		return "negates"
	default:
		return ""
	}
}

// buildSpellDescription creates a description from the structured spell data
func buildSpellDescription(spell *entities.Spell) string {
	var parts []string
	parts = append(parts, buildSpellHeader(spell))

	if spell.CastingTime != "" {
		parts = append(parts, fmt.Sprintf("Casting Time: %s", spell.CastingTime))
	}
	if spell.Range != "" {
		parts = append(parts, fmt.Sprintf("Range: %s", spell.Range))
	}
	if spell.Duration != "" {
		parts = append(parts, fmt.Sprintf("Duration: %s", spell.Duration))
	}

	if spell.SpellDamage != nil && spell.SpellDamage.SpellDamageType != nil {
		parts = append(parts, fmt.Sprintf("Damage Type: %s", spell.SpellDamage.SpellDamageType.Name))
	}

	if spell.DC != nil {
		dcInfo := "Saving Throw"
		if spell.DC.DCType != nil {
			dcInfo = fmt.Sprintf("%s Save", spell.DC.DCType.Name)
		}
		if spell.DC.DCSuccess != "" {
			dcInfo += fmt.Sprintf(" (%s)", spell.DC.DCSuccess)
		}
		parts = append(parts, dcInfo)
	}

	if spell.AreaOfEffect != nil {
		parts = append(parts, fmt.Sprintf("Area: %s (%d ft)", spell.AreaOfEffect.Type, spell.AreaOfEffect.Size))
	}

	return strings.Join(parts, ". ")
}

// getBaseDamageForSpellLevel returns the damage at the spell's lowest slot
func getBaseDamageForSpellLevel(level int, damageAtSlotLevel *entities.SpellDamageAtSlotLevel) string {
	switch level {
	case 0, 1:
		return damageAtSlotLevel.FirstLevel
	case 2:
		return damageAtSlotLevel.SecondLevel
	case 3:
		return damageAtSlotLevel.ThirdLevel
	case 4:
		return damageAtSlotLevel.FourthLevel
	case 5:
		return damageAtSlotLevel.FifthLevel
	case 6:
		return damageAtSlotLevel.SixthLevel
	case 7:
		return damageAtSlotLevel.SeventhLevel
	case 8:
		return damageAtSlotLevel.EighthLevel
	case 9:
		return damageAtSlotLevel.NinthLevel
	default:
		return ""
	}
}

func buildSpellHeader(spell *entities.Spell) string {
	levelStr := "Cantrip"
	if spell.SpellLevel > 0 {
		levelStr = fmt.Sprintf("Level %d", spell.SpellLevel)
	}
	schoolName := "Unknown School"
	if spell.SpellSchool != nil {
		schoolName = spell.SpellSchool.Name
	}
	return fmt.Sprintf("%s %s spell", levelStr, schoolName)
}
