package character

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

const asiPicks = 2

// LevelUp gains one level in a class the character already has. The level
// grants its features at once and queues the choices it opens: hit points,
// subclass, ability score improvement, new spells and optional features.
func (o *Orchestrator) LevelUp(ctx context.Context, input *character.LevelUpInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		classSlug := input.ClassSlug
		if classSlug == "" {
			if p := char.PrimaryClass(); p != nil {
				classSlug = p.ClassSlug
			}
		}
		if err := checkCanLevel(char); err != nil {
			return err
		}
		link := char.ClassLink(classSlug)
		if link == nil {
			return errors.FailedPreconditionf("character has no levels in %s, use AddClass", classSlug)
		}
		cls, err := o.class(ctx, link.ClassSlug)
		if err != nil {
			return err
		}

		link.Level++
		return o.gainLevel(ctx, char, cls, link)
	})
}

// AddClass takes a first level in a new class. Both the current classes and
// the new one must meet their multiclass ability requirements.
func (o *Orchestrator) AddClass(ctx context.Context, input *character.AddClassInput) (*character.UpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	cls, err := o.class(ctx, input.ClassSlug)
	if err != nil {
		return nil, err
	}
	if cls.IsSubclass() {
		return nil, errors.InvalidArgumentf("%s is a subclass", cls.Slug)
	}

	return o.update(ctx, input.CharacterID, func(char *dnd5e.Character) error {
		if char.PrimaryClass() == nil {
			return errors.FailedPrecondition("character needs a starting class before multiclassing, use SetClass")
		}
		if char.ClassLink(cls.Slug) != nil {
			return errors.AlreadyExistsf("character already has levels in %s, use LevelUp", cls.Slug)
		}
		if err := checkCanLevel(char); err != nil {
			return err
		}

		if !input.Force {
			if err := o.checkRequirements(ctx, char, cls); err != nil {
				return err
			}
		}

		char.Classes = append(char.Classes, dnd5e.CharacterClassLink{ClassSlug: cls.Slug, Level: 1})
		return o.gainLevel(ctx, char, cls, char.ClassLink(cls.Slug))
	})
}

// checkRequirements applies the multiclass requirements of every current
// class and of the new one
func (o *Orchestrator) checkRequirements(ctx context.Context, char *dnd5e.Character, cls *dnd5e.CharacterClass) error {
	scores := char.FinalAbilityScores()
	for _, l := range char.Classes {
		current, err := o.class(ctx, l.ClassSlug)
		if err != nil {
			return err
		}
		if unmet := unmetRequirements(current, scores); unmet != "" {
			return errors.FailedPreconditionf("cannot multiclass out of %s: %s", current.Name, unmet)
		}
	}
	if unmet := unmetRequirements(cls, scores); unmet != "" {
		return errors.FailedPreconditionf("cannot multiclass into %s: %s", cls.Name, unmet)
	}
	return nil
}

func checkCanLevel(char *dnd5e.Character) error {
	if char.TotalLevel() >= dnd5e.MaxLevel {
		return errors.FailedPreconditionf("character is already level %d", dnd5e.MaxLevel)
	}
	if len(char.PendingLevelUp) > 0 {
		return errors.FailedPreconditionf("%d level up choices are still pending", len(char.PendingLevelUp))
	}
	return nil
}

// unmetRequirements describes the failed multiclass requirements of a
// class. Alternatives are satisfied when any one of them is met.
func unmetRequirements(cls *dnd5e.CharacterClass, scores map[string]int) string {
	var missing, alternatives []string
	altMet := false
	for _, r := range cls.MulticlassRequirements {
		ok := scores[r.Ability] >= r.Minimum
		desc := fmt.Sprintf("%s %d", r.Ability, r.Minimum)
		if r.IsAlternative {
			alternatives = append(alternatives, desc)
			altMet = altMet || ok
			continue
		}
		if !ok {
			missing = append(missing, desc)
		}
	}
	if len(alternatives) > 0 && !altMet {
		missing = append(missing, strings.Join(alternatives, " or "))
	}
	if len(missing) == 0 {
		return ""
	}
	return "requires " + strings.Join(missing, " and ")
}

// gainLevel grants what link's new level gives and queues its choices
func (o *Orchestrator) gainLevel(ctx context.Context, char *dnd5e.Character, cls *dnd5e.CharacterClass, link *dnd5e.CharacterClassLink) error {
	level := link.Level
	grantClassFeatures(char, cls, level, level, dnd5e.SourceLevelUp)
	if link.SubclassSlug != "" {
		if sub, ok := findSubclass(cls, link.SubclassSlug); ok {
			for _, f := range sub.Features {
				if f.Level == level {
					char.Features = append(char.Features, dnd5e.Grant{
						Name: f.Name, Source: dnd5e.SourceSubclass, Type: subclassGrantType(cls.Slug), Level: level,
					})
				}
			}
		}
	}

	id := func(kind string, parts ...string) string {
		return dnd5e.ChoiceID(dnd5e.SourceLevelUp, append([]string{cls.Slug, strconv.Itoa(level), kind}, parts...)...)
	}
	queue := func(c *dnd5e.PendingChoice) {
		if c == nil {
			return
		}
		c.Source = dnd5e.SourceLevelUp
		c.ClassSlug = cls.Slug
		c.Level = level
		c.Remaining = c.Quantity
		char.PendingLevelUp = append(char.PendingLevelUp, *c)
	}

	hp := newChoice(id(string(dnd5e.ChoiceTypeHitPoints)), dnd5e.ChoiceTypeHitPoints, dnd5e.SourceLevelUp,
		fmt.Sprintf("Hit points for %s level %d (d%d)", cls.Name, level, cls.HitDie), 1, []dnd5e.ChoiceOption{
			{ID: HitPointsRoll, Name: fmt.Sprintf("Roll 1d%d", cls.HitDie)},
			{ID: HitPointsAverage, Name: fmt.Sprintf("Take %d", cls.HitDie/2+1)},
		})
	hp.Metadata[metaHitDie] = strconv.Itoa(cls.HitDie)
	queue(hp)

	if cls.SubclassLevel() == level && link.SubclassSlug == "" {
		queue(subclassChoice(cls, id(string(dnd5e.ChoiceTypeSubclass)), dnd5e.SourceLevelUp, level))
	}

	if o.rules.IsASILevel(cls.Slug, level) {
		options := make([]dnd5e.ChoiceOption, 0, len(dnd5e.AbilityCodes))
		for _, code := range dnd5e.AbilityCodes {
			options = append(options, dnd5e.ChoiceOption{ID: code, Name: dnd5e.AbilityName(code)})
		}
		queue(newChoice(id(string(dnd5e.ChoiceTypeASI)), dnd5e.ChoiceTypeASI, dnd5e.SourceLevelUp,
			"Increase one ability by 2 or two abilities by 1", asiPicks, options))
	}

	cantrips, spells := o.spellCounts(cls, level)
	prevCantrips, prevSpells := 0, 0
	if level > 1 {
		prevCantrips, prevSpells = o.spellCounts(cls, level-1)
	}
	if n := cantrips - prevCantrips; n > 0 {
		c, err := o.spellChoice(ctx, char, id(string(dnd5e.ChoiceTypeSpell), "cantrips"), dnd5e.SourceLevelUp,
			cls.Slug, 0, 0, n, grantTypeCantrip)
		if err != nil {
			return err
		}
		queue(c)
	}
	if n := spells - prevSpells; n > 0 {
		c, err := o.spellChoice(ctx, char, id(string(dnd5e.ChoiceTypeSpell), "spells"), dnd5e.SourceLevelUp,
			cls.Slug, 1, maxSpellLevel(cls, level), n, grantTypeSpell)
		if err != nil {
			return err
		}
		queue(c)
	}

	tracks := o.rules.FeatureTracksFor(cls.Slug, link.SubclassSlug)
	for _, featureType := range slices.Sorted(maps.Keys(tracks)) {
		track := tracks[featureType]
		if track.Subclass != "" && link.SubclassSlug == "" {
			continue
		}
		n := track.KnownAt(level) - track.KnownAt(level-1)
		if n <= 0 {
			continue
		}
		c, err := o.optionalFeatureChoice(ctx, char, cls, link.SubclassSlug, level, featureType, n,
			id(string(dnd5e.ChoiceTypeOptionalFeature), featureType), dnd5e.SourceLevelUp)
		if err != nil {
			return err
		}
		queue(c)
	}

	o.logger.Debug("level gained",
		zap.String("character_id", char.ID),
		zap.String("class", cls.Slug),
		zap.Int("class_level", level),
		zap.Int("total_level", char.TotalLevel()),
		zap.Int("pending_choices", len(char.PendingLevelUp)))
	return nil
}
