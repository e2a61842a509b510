package monster

import (
	"context"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Spellcaster links the monster to the spells it can cast
type Spellcaster struct{ base }

// NewSpellcaster creates the spellcaster strategy
func NewSpellcaster() *Spellcaster { return &Spellcaster{base: newBase("spellcaster")} }

// AppliesTo matches monsters with a spell list, slots or a Spellcasting trait
func (s *Spellcaster) AppliesTo(m *dnd5e.Monster) bool {
	if len(m.Spells) > 0 || len(m.SpellSlots) > 0 {
		return true
	}
	for _, t := range m.Traits {
		if strings.Contains(strings.ToLower(t.Name), "spellcasting") {
			return true
		}
	}
	return false
}

// EnhanceTraits tags the casting style
func (s *Spellcaster) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "spellcaster", "spellcasters_enhanced", []tagRule{
		{Check: "trait:innate spellcasting", Tag: "innate_spellcasting"},
	})
	return traits
}

// AfterCreate links every known spell; missing spells are warnings
func (s *Spellcaster) AfterCreate(ctx context.Context, store SpellStore, m *dnd5e.Monster) error {
	for _, name := range m.Spells {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		row, err := store.GetEntity(ctx, dnd5e.EntityTypeSpell, dnd5e.Slugify(name))
		if errors.IsNotFound(err) {
			s.incr("spells_not_found")
			s.warn("spell not found: " + name)
			continue
		}
		if err != nil {
			return err
		}
		if _, err := store.LinkEntitySpell(ctx, m.ID, row.ID); err != nil {
			return err
		}
		s.incr("spells_matched")
	}
	return nil
}

// Fiend tags demons and devils
type Fiend struct{ base }

// NewFiend creates the fiend strategy
func NewFiend() *Fiend { return &Fiend{base: newBase("fiend")} }

// AppliesTo matches the fiend creature type
func (s *Fiend) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "fiend") }

// EnhanceTraits applies fiend tags
func (s *Fiend) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "fiend", "fiends_enhanced", []tagRule{
		{Check: "immunity:fire", Tag: "fire_immune"},
		{Check: "immunity:poison", Tag: "poison_immune"},
		{Check: "trait:magic resistance", Tag: "magic_resistance", Metric: "magic_resistant_fiends"},
		{Check: "trait:devil's sight", Tag: "devils_sight"},
	})
	return traits
}

// Celestial tags angels and other celestials
type Celestial struct{ base }

// NewCelestial creates the celestial strategy
func NewCelestial() *Celestial { return &Celestial{base: newBase("celestial")} }

// AppliesTo matches the celestial creature type
func (s *Celestial) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "celestial") }

// EnhanceTraits applies celestial tags
func (s *Celestial) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "celestial", "celestials_enhanced", []tagRule{
		{Check: "action:radiant damage", Tag: "radiant_damage"},
		{Check: "action:healing touch", Tag: "healer"},
		{Check: "trait:magic resistance", Tag: "magic_resistance"},
	})
	return traits
}

// Construct tags golems and animated objects
type Construct struct{ base }

// NewConstruct creates the construct strategy
func NewConstruct() *Construct { return &Construct{base: newBase("construct")} }

// AppliesTo matches the construct creature type
func (s *Construct) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "construct") }

// EnhanceTraits applies construct tags
func (s *Construct) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "construct", "constructs_enhanced", []tagRule{
		{Check: "immunity:poison", Tag: "poison_immune"},
		{Check: "condition:charmed", Tag: "charm_immune"},
		{Check: "condition:exhaustion", Tag: "exhaustion_immune"},
		{Check: "trait:immutable form", Tag: "immutable_form"},
		{Check: "trait:antimagic susceptibility", Tag: "antimagic_susceptible"},
	})
	return traits
}

// Elemental tags elementals by their element
type Elemental struct{ base }

// NewElemental creates the elemental strategy
func NewElemental() *Elemental { return &Elemental{base: newBase("elemental")} }

// AppliesTo matches the elemental creature type
func (s *Elemental) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "elemental") }

// EnhanceTraits applies elemental tags
func (s *Elemental) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "elemental", "elementals_enhanced", []tagRule{
		{Check: "immunity:fire", Tag: "fire_immune"},
		{Check: "immunity:cold", Tag: "cold_immune"},
		{Check: "immunity:lightning", Tag: "lightning_immune"},
		{Check: "immunity:poison", Tag: "poison_immune"},
		{Check: "resistance:bludgeoning", Tag: "physical_resistant"},
	})
	return traits
}

// Aberration tags beholders, mind flayers and the like
type Aberration struct{ base }

// NewAberration creates the aberration strategy
func NewAberration() *Aberration { return &Aberration{base: newBase("aberration")} }

// AppliesTo matches the aberration creature type
func (s *Aberration) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "aberration") }

// EnhanceTraits applies aberration tags
func (s *Aberration) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "aberration", "aberrations_enhanced", []tagRule{
		{Check: "language:telepathy", Tag: "telepathic"},
		{Check: "action:psychic damage", Tag: "psychic_damage"},
		{Check: "trait:magic resistance", Tag: "magic_resistance"},
	})
	return traits
}

// Beast tags animals
type Beast struct{ base }

// NewBeast creates the beast strategy
func NewBeast() *Beast { return &Beast{base: newBase("beast")} }

// AppliesTo matches beasts that are not swarms
func (s *Beast) AppliesTo(m *dnd5e.Monster) bool {
	return CreatureType(m.Type) == "beast"
}

// EnhanceTraits applies beast tags
func (s *Beast) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "beast", "beasts_enhanced", []tagRule{
		{Check: "trait:keen smell", Tag: "keen_senses"},
		{Check: "trait:keen sight", Tag: "keen_senses"},
		{Check: "trait:keen hearing", Tag: "keen_senses"},
		{Check: "trait:pack tactics", Tag: "pack_tactics"},
		{Check: "trait:charge", Tag: "charge"},
		{Check: "trait:pounce", Tag: "charge"},
	})
	return traits
}

// Shapechanger tags creatures that change form
type Shapechanger struct{ base }

// NewShapechanger creates the shapechanger strategy
func NewShapechanger() *Shapechanger { return &Shapechanger{base: newBase("shapechanger")} }

// AppliesTo matches the shapechanger subtype or trait
func (s *Shapechanger) AppliesTo(m *dnd5e.Monster) bool {
	return typeContains(m, "shapechanger") || hasTraitContaining(m.Traits, "shapechanger")
}

// EnhanceTraits applies shapechanger tags
func (s *Shapechanger) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "shapechanger", "shapechangers_enhanced", []tagRule{
		{Check: "trait:regeneration", Tag: "regeneration"},
		{Check: "immunity:nonmagical", Tag: "nonmagical_immune"},
	})
	return traits
}

// Dragon tags true dragons and their breath weapons
type Dragon struct{ base }

// NewDragon creates the dragon strategy
func NewDragon() *Dragon { return &Dragon{base: newBase("dragon")} }

// AppliesTo matches the dragon creature type
func (s *Dragon) AppliesTo(m *dnd5e.Monster) bool { return CreatureType(m.Type) == "dragon" }

// EnhanceTraits applies dragon tags
func (s *Dragon) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "dragon", "dragons_enhanced", []tagRule{
		{Check: "action:breath", Tag: "breath_weapon"},
		{Check: "action:frightful presence", Tag: "frightful_presence"},
		{Check: "trait:legendary resistance", Tag: "legendary_resistance"},
	})
	return traits
}

// EnhanceActions also counts breath weapons missing a recharge
func (s *Dragon) EnhanceActions(m *dnd5e.Monster, actions []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	actions = s.base.EnhanceActions(m, actions)
	for _, a := range actions {
		if strings.Contains(strings.ToLower(a.Name), "breath") && a.Recharge == "" {
			s.warn("breath weapon without recharge: " + a.Name)
		}
	}
	return actions
}

// Undead tags zombies, vampires and liches
type Undead struct{ base }

// NewUndead creates the undead strategy
func NewUndead() *Undead { return &Undead{base: newBase("undead")} }

// AppliesTo matches the undead creature type
func (s *Undead) AppliesTo(m *dnd5e.Monster) bool { return typeContains(m, "undead") }

// EnhanceTraits applies undead tags
func (s *Undead) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "undead", "undead_enhanced", []tagRule{
		{Check: "immunity:poison", Tag: "poison_immune"},
		{Check: "condition:exhaustion", Tag: "exhaustion_immune"},
		{Check: "trait:sunlight", Tag: "sunlight_sensitivity"},
		{Check: "trait:turn resistance", Tag: "turn_resistance"},
		{Check: "trait:turn defiance", Tag: "turn_resistance"},
	})
	return traits
}

// Swarm tags swarms of tiny creatures
type Swarm struct{ base }

// NewSwarm creates the swarm strategy
func NewSwarm() *Swarm { return &Swarm{base: newBase("swarm")} }

// AppliesTo matches "swarm of ..." type lines
func (s *Swarm) AppliesTo(m *dnd5e.Monster) bool { return CreatureType(m.Type) == "swarm" }

// EnhanceTraits applies swarm tags
func (s *Swarm) EnhanceTraits(m *dnd5e.Monster, traits []dnd5e.MonsterAction) []dnd5e.MonsterAction {
	s.applyConditionalTags(m, "swarm", "swarms_enhanced", nil)
	return traits
}

// Fallback applies to every monster and adds no tags
type Fallback struct{ base }

// NewFallback creates the fallback strategy
func NewFallback() *Fallback { return &Fallback{base: newBase("default")} }

// AppliesTo always matches
func (s *Fallback) AppliesTo(*dnd5e.Monster) bool { return true }
