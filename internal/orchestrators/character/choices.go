package character

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/config"
	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Choice metadata keys
const (
	metaProficiencyType = "proficiency_type"
	metaAbilityValue    = "value"
	metaSpellType       = "spell_type"
	metaFeatureType     = "feature_type"
	metaHitDie          = "hit_die"
)

// equipmentChoicePrefix prefixes the ids of every (a)/(b) class equipment choice
var equipmentChoicePrefix = dnd5e.ChoiceID(dnd5e.SourceClass, string(dnd5e.ChoiceTypeEquipment))

// creationLevel is the class level creation choices are computed at, so a
// later level up never changes what creation asked for
const creationLevel = 1

var toolCategories = map[string][]string{
	"gaming set": {"Dice Set", "Dragonchess Set", "Playing Card Set", "Three-Dragon Ante Set"},
	"musical instrument": {
		"Bagpipes", "Drum", "Dulcimer", "Flute", "Horn", "Lute", "Lyre", "Pan Flute", "Shawm", "Viol",
	},
	"artisan's tools": {
		"Alchemist's Supplies", "Brewer's Supplies", "Calligrapher's Supplies", "Carpenter's Tools",
		"Cartographer's Tools", "Cobbler's Tools", "Cook's Utensils", "Glassblower's Tools",
		"Jeweler's Tools", "Leatherworker's Tools", "Mason's Tools", "Painter's Supplies",
		"Potter's Tools", "Smith's Tools", "Tinker's Tools", "Weaver's Tools", "Woodcarver's Tools",
	},
}

func allTools() []string {
	var out []string
	for _, tools := range toolCategories {
		out = append(out, tools...)
	}
	slices.Sort(out)
	return out
}

func allSkills() []string {
	return slices.Sorted(maps.Keys(dnd5e.Skills))
}

// held returns the lowercased names of grants not made by choiceID
func held(grants []dnd5e.Grant, choiceID string) map[string]bool {
	out := make(map[string]bool, len(grants))
	for _, g := range grants {
		if g.ChoiceID != choiceID {
			out[strings.ToLower(g.Name)] = true
		}
	}
	return out
}

func namedOptions(names []string, exclude map[string]bool) []dnd5e.ChoiceOption {
	out := make([]dnd5e.ChoiceOption, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if exclude[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, dnd5e.ChoiceOption{ID: n, Name: n})
	}
	return out
}

func newChoice(id string, kind dnd5e.ChoiceType, source, label string, quantity int, options []dnd5e.ChoiceOption) *dnd5e.PendingChoice {
	quantity = max(quantity, 1)
	if len(options) < quantity {
		quantity = len(options)
	}
	if quantity == 0 {
		return nil
	}
	return &dnd5e.PendingChoice{
		ID:       id,
		Type:     kind,
		Source:   source,
		Label:    label,
		Quantity: quantity,
		Options:  options,
		Metadata: map[string]string{},
	}
}

// creationChoices computes every choice offered by the race, subrace, class
// and background, resolved or not
func (o *Orchestrator) creationChoices(ctx context.Context, char *dnd5e.Character) ([]dnd5e.PendingChoice, error) {
	var defs []*dnd5e.PendingChoice

	raceChoices := func(slug, source string) error {
		race, err := o.race(ctx, slug)
		if err != nil {
			return err
		}
		defs = append(defs, proficiencyChoices(char, race.Proficiencies, source)...)
		defs = append(defs, languageChoices(char, race.Languages, source)...)
		defs = append(defs, abilityChoices(race, source)...)
		spells, err := o.raceSpellChoices(ctx, char, race, source)
		if err != nil {
			return err
		}
		defs = append(defs, spells...)
		return nil
	}

	if char.RaceSlug != "" {
		if err := raceChoices(char.RaceSlug, dnd5e.SourceRace); err != nil {
			return nil, err
		}
	}
	if char.SubraceSlug != "" {
		if err := raceChoices(char.SubraceSlug, dnd5e.SourceSubrace); err != nil {
			return nil, err
		}
	}
	if link := char.PrimaryClass(); link != nil {
		classDefs, err := o.classChoices(ctx, char, link)
		if err != nil {
			return nil, err
		}
		defs = append(defs, classDefs...)
	}
	if char.BackgroundSlug != "" {
		bg, err := o.background(ctx, char.BackgroundSlug)
		if err != nil {
			return nil, err
		}
		defs = append(defs, proficiencyChoices(char, bg.Proficiencies, dnd5e.SourceBackground)...)
		defs = append(defs, languageChoices(char, bg.Languages, dnd5e.SourceBackground)...)
	}

	out := make([]dnd5e.PendingChoice, 0, len(defs))
	for _, d := range defs {
		if d == nil {
			continue
		}
		switch d.Type {
		case dnd5e.ChoiceTypeEquipmentMode, dnd5e.ChoiceTypeSubclass:
			// resolved state lives on the character, set by the builders
		default:
			d.Remaining = 0
			if len(char.Selections[d.ID]) == 0 {
				d.Remaining = d.Quantity
			}
		}
		out = append(out, *d)
	}
	return out, nil
}

// reconcile drops resolved choices the current race, class and background
// no longer offer, or whose selections stopped being valid, and returns the
// fresh definitions
func (o *Orchestrator) reconcile(ctx context.Context, char *dnd5e.Character) ([]dnd5e.PendingChoice, bool, error) {
	defs, err := o.creationChoices(ctx, char)
	if err != nil {
		return nil, false, err
	}

	byID := make(map[string]*dnd5e.PendingChoice, len(defs))
	for i := range defs {
		byID[defs[i].ID] = &defs[i]
	}

	changed := false
	for _, id := range slices.Sorted(maps.Keys(char.Selections)) {
		switch dnd5e.ChoiceSource(id) {
		case dnd5e.SourceLevelUp, dnd5e.SourceSubclass:
			continue
		}
		sel := char.Selections[id]
		def, ok := byID[id]
		if ok && len(sel) == def.Quantity && allOptions(def, sel) {
			continue
		}
		char.RemoveChoice(id)
		changed = true
	}
	if !changed {
		return defs, false, nil
	}

	defs, err = o.creationChoices(ctx, char)
	if err != nil {
		return nil, false, err
	}
	return defs, true, nil
}

func allOptions(def *dnd5e.PendingChoice, selections []string) bool {
	for _, s := range selections {
		if !def.HasOption(s) {
			return false
		}
	}
	return true
}

// proficiencyChoices groups choice proficiencies by ChoiceGroup. A group's
// named entries are its options; an unnamed entry offers every skill or
// tool, and a tool category such as "gaming set" expands to its members.
func proficiencyChoices(char *dnd5e.Character, profs []dnd5e.Proficiency, source string) []*dnd5e.PendingChoice {
	type group struct {
		key      string
		kind     string
		quantity int
		names    []string
	}
	var groups []*group
	byKey := map[string]*group{}
	for i, p := range profs {
		if !p.IsChoice {
			continue
		}
		key := p.ChoiceGroup
		if key == "" {
			key = fmt.Sprintf("%s_%d", p.Type, i)
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, kind: p.Type}
			byKey[key] = g
			groups = append(groups, g)
		}
		if g.quantity == 0 && p.Quantity > 0 {
			g.quantity = p.Quantity
		}
		names := p.Options
		if p.Name != "" {
			names = append([]string{p.Name}, names...)
		}
		g.names = append(g.names, expandTools(names)...)
	}

	out := make([]*dnd5e.PendingChoice, 0, len(groups))
	for _, g := range groups {
		id := dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeProficiency), g.key)
		names := g.names
		if len(names) == 0 {
			switch g.kind {
			case dnd5e.ProficiencyTypeTool:
				names = allTools()
			default:
				names = allSkills()
			}
		}
		label := fmt.Sprintf("Choose %d %s proficiencies", max(g.quantity, 1), g.kind)
		c := newChoice(id, dnd5e.ChoiceTypeProficiency, source, label, g.quantity, namedOptions(names, held(char.Proficiencies, id)))
		if c == nil {
			continue
		}
		c.Metadata[metaProficiencyType] = g.kind
		out = append(out, c)
	}
	return out
}

func expandTools(names []string) []string {
	var out []string
	for _, n := range names {
		expanded := false
		lower := strings.ToLower(n)
		for category, tools := range toolCategories {
			if strings.Contains(lower, category) {
				out = append(out, tools...)
				expanded = true
				break
			}
		}
		if !expanded {
			out = append(out, n)
		}
	}
	return out
}

func languageChoices(char *dnd5e.Character, langs []dnd5e.LanguageGrant, source string) []*dnd5e.PendingChoice {
	var out []*dnd5e.PendingChoice
	for i, l := range langs {
		if !l.IsChoice {
			continue
		}
		id := dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeLanguage), strconv.Itoa(i))
		quantity := max(l.Quantity, 1)
		label := fmt.Sprintf("Choose %d languages", quantity)
		if c := newChoice(id, dnd5e.ChoiceTypeLanguage, source, label, quantity,
			namedOptions(dnd5e.SelectableLanguages, held(char.Languages, id))); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// abilityChoices turns "+1 to two other abilities" style bonuses into a
// choice. "different" excludes the abilities the race already raises and
// "specific:A,B" limits the options to the listed abilities.
func abilityChoices(race *dnd5e.Race, source string) []*dnd5e.PendingChoice {
	fixed := map[string]bool{}
	for _, b := range race.AbilityBonuses {
		if !b.IsChoice && b.Ability != "" {
			fixed[b.Ability] = true
		}
	}

	var out []*dnd5e.PendingChoice
	n := 0
	for _, b := range slices.Concat(race.AbilityBonuses, race.AbilityChoices) {
		if !b.IsChoice {
			continue
		}
		id := dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeAbilityScore), strconv.Itoa(n))
		n++

		codes := dnd5e.AbilityCodes
		switch {
		case b.ChoiceConstraint == "different":
			codes = slices.DeleteFunc(slices.Clone(codes), func(c string) bool { return fixed[c] })
		case strings.HasPrefix(b.ChoiceConstraint, "specific:"):
			codes = nil
			for _, part := range strings.Split(strings.TrimPrefix(b.ChoiceConstraint, "specific:"), ",") {
				if code := dnd5e.AbilityCode(part); code != "" {
					codes = append(codes, code)
				}
			}
		}

		options := make([]dnd5e.ChoiceOption, 0, len(codes))
		for _, code := range codes {
			options = append(options, dnd5e.ChoiceOption{ID: code, Name: dnd5e.AbilityName(code)})
		}
		value := max(b.Value, 1)
		label := fmt.Sprintf("Increase %d abilities by %d", max(b.ChoiceCount, 1), value)
		if c := newChoice(id, dnd5e.ChoiceTypeAbilityScore, source, label, b.ChoiceCount, options); c != nil {
			c.Metadata[metaAbilityValue] = strconv.Itoa(value)
			out = append(out, c)
		}
	}
	return out
}

func (o *Orchestrator) raceSpellChoices(ctx context.Context, char *dnd5e.Character, race *dnd5e.Race, source string) ([]*dnd5e.PendingChoice, error) {
	if race.Spellcasting == nil {
		return nil, nil
	}
	var out []*dnd5e.PendingChoice
	for i, sp := range race.Spellcasting.Spells {
		if !sp.IsChoice {
			continue
		}
		className := sp.ClassName
		if className == "" {
			className = "wizard"
		}
		minLevel, maxLevel, kind := 1, max(sp.MaxLevel, 1), grantTypeSpell
		if sp.IsCantrip {
			minLevel, maxLevel, kind = 0, 0, grantTypeCantrip
		}
		id := dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeSpell), strconv.Itoa(i))
		c, err := o.spellChoice(ctx, char, id, source, dnd5e.Slugify(className), minLevel, maxLevel, sp.ChoiceCount, kind)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// spellChoice offers spells of a class list the character does not know yet
func (o *Orchestrator) spellChoice(ctx context.Context, char *dnd5e.Character, id, source, classSlug string, minLevel, maxLevel, quantity int, kind string) (*dnd5e.PendingChoice, error) {
	spells, err := o.classSpells(ctx, classSlug, minLevel, maxLevel)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	known := held(char.Spells, id)
	options := make([]dnd5e.ChoiceOption, 0, len(spells))
	for _, sp := range spells {
		if known[strings.ToLower(sp.Name)] {
			continue
		}
		options = append(options, dnd5e.ChoiceOption{ID: sp.Slug, Name: sp.Name})
	}

	noun := "spells"
	if kind == grantTypeCantrip {
		noun = "cantrips"
	}
	c := newChoice(id, dnd5e.ChoiceTypeSpell, source, fmt.Sprintf("Choose %d %s", max(quantity, 1), noun), quantity, options)
	if c != nil {
		c.Metadata[metaSpellType] = kind
		c.ClassSlug = classSlug
	}
	return c, nil
}

// spellCounts returns the cantrips and spells a class knows at a level.
// Prepared casters choose no spells.
func (o *Orchestrator) spellCounts(cls *dnd5e.CharacterClass, level int) (cantrips, spells int) {
	if sc, ok := o.rules.SpellcastingFor(cls.Slug); ok {
		cantrips = sc.CantripsAt(level)
		if sc.Type != config.SpellcastingPrepared {
			spells = sc.SpellsKnownAt(level)
		}
		return cantrips, spells
	}
	if p, ok := cls.ProgressionAt(level); ok {
		return p.CantripsKnown, p.SpellsKnown
	}
	return 0, 0
}

// maxSpellLevel is the highest spell level a class can learn at a level
func maxSpellLevel(cls *dnd5e.CharacterClass, level int) int {
	if p, ok := cls.ProgressionAt(level); ok && p.MaxSlotLevel() > 0 {
		return p.MaxSlotLevel()
	}
	return 1
}

func (o *Orchestrator) classChoices(ctx context.Context, char *dnd5e.Character, link *dnd5e.CharacterClassLink) ([]*dnd5e.PendingChoice, error) {
	cls, err := o.class(ctx, link.ClassSlug)
	if err != nil {
		return nil, err
	}
	source := dnd5e.SourceClass

	defs := proficiencyChoices(char, cls.Proficiencies, source)
	defs = append(defs, languageChoices(char, cls.Languages, source)...)

	mode := newChoice(dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeEquipmentMode)), dnd5e.ChoiceTypeEquipmentMode, source,
		"Take starting equipment or starting gold", 1, []dnd5e.ChoiceOption{
			{ID: dnd5e.EquipmentModeEquipment, Name: "Starting equipment"},
			{ID: dnd5e.EquipmentModeGold, Name: "Starting gold"},
		})
	if char.EquipmentMode == "" {
		mode.Remaining = 1
	}
	defs = append(defs, mode)

	if char.EquipmentMode == dnd5e.EquipmentModeEquipment {
		for _, g := range cls.EquipmentChoices {
			options := make([]dnd5e.ChoiceOption, 0, len(g.Options))
			for _, opt := range g.Options {
				options = append(options, dnd5e.ChoiceOption{ID: opt.Letter, Name: opt.Text, Items: opt.Items})
			}
			id := dnd5e.ChoiceID(equipmentChoicePrefix, strconv.Itoa(g.Group))
			defs = append(defs, newChoice(id, dnd5e.ChoiceTypeEquipment, source, "Choose starting equipment", 1, options))
		}
	}

	cantrips, spells := o.spellCounts(cls, creationLevel)
	if cantrips > 0 {
		c, err := o.spellChoice(ctx, char, dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeSpell), "cantrips"),
			source, cls.Slug, 0, 0, cantrips, grantTypeCantrip)
		if err != nil {
			return nil, err
		}
		defs = append(defs, c)
	}
	if spells > 0 {
		c, err := o.spellChoice(ctx, char, dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeSpell), "spells"),
			source, cls.Slug, 1, maxSpellLevel(cls, creationLevel), spells, grantTypeSpell)
		if err != nil {
			return nil, err
		}
		defs = append(defs, c)
	}

	if cls.SubclassLevel() == creationLevel {
		c := subclassChoice(cls, dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeSubclass)), source, creationLevel)
		if c != nil && link.SubclassSlug == "" {
			c.Remaining = c.Quantity
		}
		defs = append(defs, c)
	}

	tracks := o.rules.FeatureTracksFor(cls.Slug, "")
	for _, featureType := range slices.Sorted(maps.Keys(tracks)) {
		track := tracks[featureType]
		if track.Subclass != "" {
			continue
		}
		n := track.KnownAt(creationLevel)
		if n == 0 {
			continue
		}
		c, err := o.optionalFeatureChoice(ctx, char, cls, link.SubclassSlug, creationLevel, featureType, n,
			dnd5e.ChoiceID(source, string(dnd5e.ChoiceTypeOptionalFeature), featureType), source)
		if err != nil {
			return nil, err
		}
		defs = append(defs, c)
	}
	return defs, nil
}

func subclassChoice(cls *dnd5e.CharacterClass, id, source string, level int) *dnd5e.PendingChoice {
	options := make([]dnd5e.ChoiceOption, 0, len(cls.Subclasses))
	for _, sc := range cls.Subclasses {
		options = append(options, dnd5e.ChoiceOption{ID: dnd5e.Slugify(sc.Name), Name: sc.Name})
	}
	c := newChoice(id, dnd5e.ChoiceTypeSubclass, source, "Choose a "+cls.Name+" subclass", 1, options)
	if c != nil {
		c.ClassSlug = cls.Slug
		c.Level = level
	}
	return c
}

func (o *Orchestrator) optionalFeatureChoice(ctx context.Context, char *dnd5e.Character, cls *dnd5e.CharacterClass, subclassSlug string, level int, featureType string, quantity int, id, source string) (*dnd5e.PendingChoice, error) {
	features, err := o.optionalFeatures(ctx, featureType, cls, subclassSlug, level)
	if err != nil {
		return nil, err
	}
	known := held(char.Features, id)
	options := make([]dnd5e.ChoiceOption, 0, len(features))
	for _, f := range features {
		if known[strings.ToLower(f.Name)] {
			continue
		}
		options = append(options, dnd5e.ChoiceOption{ID: f.Slug, Name: f.Name})
	}

	label := fmt.Sprintf("Choose %d %s", quantity, strings.ReplaceAll(featureType, "_", " "))
	c := newChoice(id, dnd5e.ChoiceTypeOptionalFeature, source, label, quantity, options)
	if c == nil {
		return nil, nil
	}
	c.Metadata[metaFeatureType] = featureType
	c.ClassSlug = cls.Slug
	c.Level = level
	c.Remaining = c.Quantity
	return c, nil
}
