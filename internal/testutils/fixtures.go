package testutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/importers"
	"github.com/KirkDiggler/rpg-compendium/internal/repositories/compendium"
)

// Slugs of the seeded compendium
const (
	RaceHuman     = "human"
	RaceElf       = "elf"
	SubraceHigh   = "high-elf"
	SubraceWood   = "wood-elf"
	RaceHalfElf   = "half-elf"
	ClassFighter  = "fighter"
	ClassWizard   = "wizard"
	ClassCleric   = "cleric"
	BackAcolyte   = "acolyte"
	BackSoldier   = "soldier"
	BackSage      = "sage"
	SubclassLife  = "life-domain"
	SubclassEvoke = "school-of-evocation"

	// SubclassEvokeEntity is the stored slug of the School of Evocation row
	SubclassEvokeEntity = "wizard-school-of-evocation"
)

func record(name string) dnd5e.Record {
	r := dnd5e.Record{Name: name, Sources: []dnd5e.SourceCitation{{Code: "PHB"}}}
	r.SetIdentity()
	return r
}

func saves(names ...string) []dnd5e.Proficiency {
	out := make([]dnd5e.Proficiency, 0, len(names))
	for _, n := range names {
		out = append(out, dnd5e.Proficiency{Name: n, Type: dnd5e.ProficiencyTypeSavingThrow, Grants: true})
	}
	return out
}

func skillChoice(quantity int, names ...string) []dnd5e.Proficiency {
	out := make([]dnd5e.Proficiency, 0, len(names))
	for i, n := range names {
		p := dnd5e.Proficiency{Name: n, Type: dnd5e.ProficiencyTypeSkill, Grants: true, IsChoice: true, ChoiceGroup: "skill_choice_1"}
		if i == 0 {
			p.Quantity = quantity
		}
		out = append(out, p)
	}
	return out
}

func granted(kind string, names ...string) []dnd5e.Proficiency {
	out := make([]dnd5e.Proficiency, 0, len(names))
	for _, n := range names {
		out = append(out, dnd5e.Proficiency{Name: n, Type: kind, Grants: true})
	}
	return out
}

func concat[T any](parts ...[]T) []T {
	var out []T
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func item(name string, qty int) dnd5e.EquipmentItem {
	return dnd5e.EquipmentItem{Name: name, Quantity: qty}
}

func fullCaster(levels int) []dnd5e.SpellProgression {
	slots := [][9]int{
		{2}, {3}, {4, 2}, {4, 3}, {4, 3, 2},
	}
	out := make([]dnd5e.SpellProgression, 0, levels)
	for l := 1; l <= levels && l <= len(slots); l++ {
		cantrips := 3
		if l >= 4 {
			cantrips = 4
		}
		out = append(out, dnd5e.SpellProgression{Level: l, CantripsKnown: cantrips, Slots: slots[l-1]})
	}
	return out
}

// Races returns the seeded races and subraces
func Races() []*dnd5e.Race {
	human := &dnd5e.Race{Record: record("Human"), SizeCode: "M", Speed: 30,
		Languages: []dnd5e.LanguageGrant{{Name: "Common"}, {IsChoice: true, Quantity: 1}},
	}
	for _, code := range dnd5e.AbilityCodes {
		human.AbilityBonuses = append(human.AbilityBonuses, dnd5e.AbilityBonus{Ability: code, Value: 1})
	}

	elf := &dnd5e.Race{Record: record("Elf"), SizeCode: "M", Speed: 30, SubraceRequired: true,
		AbilityBonuses: []dnd5e.AbilityBonus{{Ability: dnd5e.AbilityDexterity, Value: 2}},
		Proficiencies:  granted(dnd5e.ProficiencyTypeSkill, "Perception"),
		Languages:      []dnd5e.LanguageGrant{{Name: "Common"}, {Name: "Elvish"}},
		Traits:         []dnd5e.Trait{{Name: "Darkvision", Description: "You can see in dim light within 60 feet."}},
	}
	high := &dnd5e.Race{Record: record("High Elf"), ParentSlug: RaceElf, BaseRaceName: "Elf", SizeCode: "M",
		AbilityBonuses: []dnd5e.AbilityBonus{{Ability: dnd5e.AbilityIntelligence, Value: 1}},
		Languages:      []dnd5e.LanguageGrant{{IsChoice: true, Quantity: 1}},
		Spellcasting: &dnd5e.RaceSpellcasting{Ability: dnd5e.AbilityIntelligence, Spells: []dnd5e.InnateSpell{
			{IsCantrip: true, IsChoice: true, ChoiceCount: 1, ClassName: "wizard"},
		}},
		Traits: []dnd5e.Trait{{Name: "Cantrip", Description: "You know one cantrip of your choice from the wizard spell list."}},
	}
	wood := &dnd5e.Race{Record: record("Wood Elf"), ParentSlug: RaceElf, BaseRaceName: "Elf", SizeCode: "M", Speed: 35,
		AbilityBonuses: []dnd5e.AbilityBonus{{Ability: dnd5e.AbilityWisdom, Value: 1}},
		Traits:         []dnd5e.Trait{{Name: "Mask of the Wild", Description: "You can attempt to hide when lightly obscured."}},
	}
	halfElf := &dnd5e.Race{Record: record("Half-Elf"), SizeCode: "M", Speed: 30,
		AbilityBonuses: []dnd5e.AbilityBonus{{Ability: dnd5e.AbilityCharisma, Value: 2}},
		AbilityChoices: []dnd5e.AbilityBonus{{IsChoice: true, ChoiceCount: 2, Value: 1, ChoiceConstraint: "different"}},
		Proficiencies: []dnd5e.Proficiency{
			{Type: dnd5e.ProficiencyTypeSkill, Grants: true, IsChoice: true, ChoiceGroup: "skill_choice_1", Quantity: 2},
		},
		Languages: []dnd5e.LanguageGrant{{Name: "Common"}, {Name: "Elvish"}, {IsChoice: true, Quantity: 1}},
	}
	return []*dnd5e.Race{human, elf, high, wood, halfElf}
}

// Classes returns the seeded classes
func Classes() []*dnd5e.CharacterClass {
	fighter := &dnd5e.CharacterClass{Record: record("Fighter"), HitDie: 10, SkillChoices: 2,
		Proficiencies: concat(
			saves("Strength", "Constitution"),
			granted(dnd5e.ProficiencyTypeArmor, "Light Armor", "Medium Armor", "Heavy Armor", "Shields"),
			granted(dnd5e.ProficiencyTypeWeapon, "Simple Weapons", "Martial Weapons"),
			skillChoice(2, "Acrobatics", "Athletics", "Intimidation", "Perception", "Survival"),
		),
		Features: []dnd5e.ClassFeature{
			{Level: 1, Name: "Fighting Style"},
			{Level: 1, Name: "Second Wind"},
			{Level: 2, Name: "Action Surge"},
			{Level: 5, Name: "Extra Attack"},
		},
		Subclasses: []dnd5e.Subclass{
			{Name: "Champion", Features: []dnd5e.ClassFeature{{Level: 3, Name: "Improved Critical"}}},
			{Name: "Battle Master", Features: []dnd5e.ClassFeature{{Level: 3, Name: "Combat Superiority"}}},
		},
		Equipment: []dnd5e.EquipmentItem{item("Explorer's Pack", 1)},
		EquipmentChoices: []dnd5e.EquipmentChoice{
			{Group: 1, Options: []dnd5e.EquipmentOption{
				{Letter: "a", Text: "chain mail", Items: []dnd5e.EquipmentItem{item("Chain Mail", 1)}},
				{Letter: "b", Text: "leather armor, longbow, and 20 arrows", Items: []dnd5e.EquipmentItem{
					item("Leather Armor", 1), item("Longbow", 1), item("Arrows", 20),
				}},
			}},
			{Group: 2, Options: []dnd5e.EquipmentOption{
				{Letter: "a", Text: "a longsword and a shield", Items: []dnd5e.EquipmentItem{item("Longsword", 1), item("Shield", 1)}},
				{Letter: "b", Text: "two handaxes", Items: []dnd5e.EquipmentItem{item("Handaxe", 2)}},
			}},
		},
		MulticlassRequirements: []dnd5e.MulticlassRequirement{
			{Ability: dnd5e.AbilityStrength, Minimum: 13, IsAlternative: true},
			{Ability: dnd5e.AbilityDexterity, Minimum: 13, IsAlternative: true},
		},
	}

	wizard := &dnd5e.CharacterClass{Record: record("Wizard"), HitDie: 6, SkillChoices: 2,
		SpellcastingAbility: dnd5e.AbilityIntelligence,
		Proficiencies: concat(
			saves("Intelligence", "Wisdom"),
			granted(dnd5e.ProficiencyTypeWeapon, "Daggers", "Quarterstaffs"),
			skillChoice(2, "Arcana", "History", "Insight", "Investigation", "Medicine", "Religion"),
		),
		Features: []dnd5e.ClassFeature{
			{Level: 1, Name: "Spellcasting"},
			{Level: 1, Name: "Arcane Recovery"},
		},
		SpellProgression: fullCaster(5),
		Subclasses: []dnd5e.Subclass{
			{Name: "School of Evocation", Features: []dnd5e.ClassFeature{{Level: 2, Name: "Evocation Savant"}}},
		},
		Equipment: []dnd5e.EquipmentItem{item("Spellbook", 1)},
		EquipmentChoices: []dnd5e.EquipmentChoice{
			{Group: 1, Options: []dnd5e.EquipmentOption{
				{Letter: "a", Text: "a quarterstaff", Items: []dnd5e.EquipmentItem{item("Quarterstaff", 1)}},
				{Letter: "b", Text: "a dagger", Items: []dnd5e.EquipmentItem{item("Dagger", 1)}},
			}},
		},
		MulticlassRequirements: []dnd5e.MulticlassRequirement{{Ability: dnd5e.AbilityIntelligence, Minimum: 13}},
	}

	cleric := &dnd5e.CharacterClass{Record: record("Cleric"), HitDie: 8, SkillChoices: 2,
		SpellcastingAbility: dnd5e.AbilityWisdom,
		Proficiencies: concat(
			saves("Wisdom", "Charisma"),
			granted(dnd5e.ProficiencyTypeArmor, "Light Armor", "Medium Armor", "Shields"),
			granted(dnd5e.ProficiencyTypeWeapon, "Simple Weapons"),
			skillChoice(2, "History", "Insight", "Medicine", "Persuasion", "Religion"),
		),
		Features:         []dnd5e.ClassFeature{{Level: 1, Name: "Spellcasting"}, {Level: 2, Name: "Channel Divinity"}},
		SpellProgression: fullCaster(5),
		Subclasses: []dnd5e.Subclass{
			{Name: "Life Domain", Features: []dnd5e.ClassFeature{{Level: 1, Name: "Disciple of Life"}}},
		},
		EquipmentChoices: []dnd5e.EquipmentChoice{
			{Group: 1, Options: []dnd5e.EquipmentOption{
				{Letter: "a", Text: "scale mail", Items: []dnd5e.EquipmentItem{item("Scale Mail", 1)}},
				{Letter: "b", Text: "leather armor", Items: []dnd5e.EquipmentItem{item("Leather Armor", 1)}},
			}},
		},
		MulticlassRequirements: []dnd5e.MulticlassRequirement{{Ability: dnd5e.AbilityWisdom, Minimum: 13}},
	}
	return []*dnd5e.CharacterClass{fighter, wizard, cleric}
}

// Backgrounds returns the seeded backgrounds
func Backgrounds() []*dnd5e.Background {
	return []*dnd5e.Background{
		{Record: record("Acolyte"),
			Proficiencies: granted(dnd5e.ProficiencyTypeSkill, "Insight", "Religion"),
			Languages:     []dnd5e.LanguageGrant{{IsChoice: true, Quantity: 2}},
			Equipment:     []dnd5e.EquipmentItem{item("Holy Symbol", 1), item("Prayer Book", 1)},
			Traits:        []dnd5e.Trait{{Name: "Shelter of the Faithful", Category: "feature"}},
		},
		{Record: record("Soldier"),
			Proficiencies: concat(
				granted(dnd5e.ProficiencyTypeSkill, "Athletics", "Intimidation"),
				[]dnd5e.Proficiency{{Name: "gaming set", Type: dnd5e.ProficiencyTypeTool, Grants: true, IsChoice: true, Quantity: 1}},
			),
			Equipment: []dnd5e.EquipmentItem{item("Insignia of Rank", 1)},
			Traits:    []dnd5e.Trait{{Name: "Military Rank", Category: "feature"}},
		},
		{Record: record("Sage"),
			Proficiencies: granted(dnd5e.ProficiencyTypeSkill, "Arcana", "History"),
			Languages:     []dnd5e.LanguageGrant{{IsChoice: true, Quantity: 2}},
			Equipment:     []dnd5e.EquipmentItem{item("Bottle of Black Ink", 1)},
			Traits:        []dnd5e.Trait{{Name: "Researcher", Category: "feature"}},
		},
	}
}

// Items returns the seeded items
func Items() []*dnd5e.Item {
	armor := func(name, code string, ac int) *dnd5e.Item {
		return &dnd5e.Item{Record: record(name), TypeCode: code, Rarity: "common", ArmorClass: &ac}
	}
	weapon := func(name, dice string) *dnd5e.Item {
		return &dnd5e.Item{Record: record(name), TypeCode: "M", Rarity: "common", DamageDice: dice}
	}
	return []*dnd5e.Item{
		armor("Chain Mail", dnd5e.ItemTypeHeavyArmor, 16),
		armor("Scale Mail", dnd5e.ItemTypeMediumArmor, 14),
		armor("Leather Armor", dnd5e.ItemTypeLightArmor, 11),
		armor("Shield", dnd5e.ItemTypeShield, 2),
		weapon("Longsword", "1d8"),
		weapon("Handaxe", "1d6"),
		weapon("Dagger", "1d4"),
		weapon("Quarterstaff", "1d6"),
	}
}

type seededSpell struct {
	name    string
	level   int
	classes []string
}

var spells = []seededSpell{
	{"Fire Bolt", 0, []string{ClassWizard}},
	{"Light", 0, []string{ClassWizard, ClassCleric}},
	{"Mage Hand", 0, []string{ClassWizard}},
	{"Prestidigitation", 0, []string{ClassWizard}},
	{"Sacred Flame", 0, []string{ClassCleric}},
	{"Guidance", 0, []string{ClassCleric}},
	{"Spare the Dying", 0, []string{ClassCleric}},
	{"Magic Missile", 1, []string{ClassWizard}},
	{"Shield", 1, []string{ClassWizard}},
	{"Sleep", 1, []string{ClassWizard}},
	{"Burning Hands", 1, []string{ClassWizard}},
	{"Detect Magic", 1, []string{ClassWizard, ClassCleric}},
	{"Thunderwave", 1, []string{ClassWizard}},
	{"Feather Fall", 1, []string{ClassWizard}},
	{"Mage Armor", 1, []string{ClassWizard}},
	{"Cure Wounds", 1, []string{ClassCleric}},
	{"Bless", 1, []string{ClassCleric}},
	{"Misty Step", 2, []string{ClassWizard}},
	{"Scorching Ray", 2, []string{ClassWizard}},
	{"Invisibility", 2, []string{ClassWizard}},
	{"Web", 2, []string{ClassWizard}},
	{"Fireball", 3, []string{ClassWizard}},
	{"Counterspell", 3, []string{ClassWizard}},
}

// OptionalFeatures returns the seeded fighting styles and maneuvers
func OptionalFeatures() []*dnd5e.OptionalFeature {
	feature := func(name, kind string, subclass string) *dnd5e.OptionalFeature {
		return &dnd5e.OptionalFeature{Record: record(name), FeatureType: kind,
			Classes: []dnd5e.ClassAssociation{{Class: "Fighter", Subclass: subclass}}}
	}
	return []*dnd5e.OptionalFeature{
		feature("Fighting Style: Defense", dnd5e.OptionalFeatureFightingStyle, ""),
		feature("Fighting Style: Archery", dnd5e.OptionalFeatureFightingStyle, ""),
		feature("Fighting Style: Dueling", dnd5e.OptionalFeatureFightingStyle, ""),
		feature("Maneuver: Riposte", dnd5e.OptionalFeatureManeuver, "Battle Master"),
		feature("Maneuver: Parry", dnd5e.OptionalFeatureManeuver, "Battle Master"),
		feature("Maneuver: Trip Attack", dnd5e.OptionalFeatureManeuver, "Battle Master"),
		feature("Maneuver: Precision Attack", dnd5e.OptionalFeatureManeuver, "Battle Master"),
	}
}

// SeedCompendium writes a small rules set into store: five races and
// subraces, three classes with their subclass rows, three backgrounds, armor
// and weapons, wizard and cleric spells linked to their classes, and fighter
// optional features. Subraces and subclasses are child rows of their parent
// the way the importers write them.
func SeedCompendium(t testing.TB, store compendium.Queries) {
	t.Helper()
	ctx := context.Background()

	upsert := func(e dnd5e.Entity, parentID *int64) int64 {
		out, err := store.UpsertEntity(ctx, compendium.UpsertEntityInput{Entity: e, ParentID: parentID})
		require.NoError(t, err, "seed %s", e.EntitySlug())
		return out.ID
	}

	raceIDs := make(map[string]int64)
	for _, r := range Races() {
		if r.IsSubrace() {
			parentID, ok := raceIDs[r.ParentSlug]
			require.True(t, ok, "subrace %s seeded before %s", r.Slug, r.ParentSlug)
			upsert(r, &parentID)
			continue
		}
		raceIDs[r.Slug] = upsert(r, nil)
	}
	classIDs := make(map[string]int64)
	for _, c := range Classes() {
		id := upsert(c, nil)
		classIDs[c.Slug] = id
		for _, sc := range c.Subclasses {
			sub := &dnd5e.CharacterClass{
				Record: dnd5e.Record{
					Name:    sc.Name,
					Slug:    importers.SubclassSlug(c.Slug, sc.Name),
					Sources: c.Sources,
				},
				ParentSlug:          c.Slug,
				HitDie:              c.HitDie,
				SpellcastingAbility: c.SpellcastingAbility,
				Features:            sc.Features,
				SpellProgression:    c.SpellProgression,
			}
			sub.SetIdentity()
			upsert(sub, &id)
		}
	}
	for _, b := range Backgrounds() {
		upsert(b, nil)
	}
	for _, i := range Items() {
		upsert(i, nil)
	}
	for _, f := range OptionalFeatures() {
		upsert(f, nil)
	}
	for _, sp := range spells {
		spellID := upsert(&dnd5e.Spell{Record: record(sp.name), Level: sp.level, Classes: sp.classes}, nil)
		for _, class := range sp.classes {
			_, err := store.LinkClassSpell(ctx, classIDs[class], spellID)
			require.NoError(t, err)
		}
	}
}
