package wizardflow

import (
	"context"
	"slices"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/services/character"
)

// Source is a random number stream. *dice.SeededRoller implements it.
type Source interface {
	Intn(n int) int
}

var standardArray = []int{15, 14, 13, 12, 10, 8}

var alignments = []string{
	"Lawful Good", "Neutral Good", "Chaotic Good",
	"Lawful Neutral", "True Neutral", "Chaotic Neutral",
	"Lawful Evil", "Neutral Evil", "Chaotic Evil",
}

var namePrefixes = []string{"Ael", "Bran", "Cor", "Dal", "Eri", "Fen", "Gar", "Hal", "Isa", "Jor", "Kael", "Lyr"}
var nameSuffixes = []string{"dor", "wyn", "ric", "ath", "iel", "on", "mir", "ara", "eth", "us"}

// Randomizer picks what a player would pick. It reads the available races,
// classes and backgrounds from the wizard.
type Randomizer struct {
	src   Source
	svc   character.Service
	names []string
	calls int
}

// NewRandomizer creates a randomizer. names may be empty, in which case
// names are built from syllables.
func NewRandomizer(src Source, svc character.Service, names []string) *Randomizer {
	return &Randomizer{src: src, svc: svc, names: names}
}

// Calls counts the random draws made so far
func (r *Randomizer) Calls() int { return r.calls }

// Intn returns a value in [0, n)
func (r *Randomizer) Intn(n int) int {
	r.calls++
	if n <= 1 {
		return 0
	}
	return r.src.Intn(n)
}

// Int returns a value in [lo, hi]
func (r *Randomizer) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance is true percent times in a hundred
func (r *Randomizer) Chance(percent int) bool {
	return r.Int(1, 100) <= percent
}

// Pick returns a random element, or the zero value of an empty slice
func Pick[T any](r *Randomizer, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.Intn(len(items))]
}

// PickN returns n distinct random elements, or all of them when there are
// fewer than n
func PickN[T any](r *Randomizer, items []T, n int) []T {
	out := slices.Clone(items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func (r *Randomizer) options(ctx context.Context, kind, parent string) ([]character.Option, error) {
	out, err := r.svc.ListOptions(ctx, &character.ListOptionsInput{Kind: kind, Parent: parent})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s options", kind)
	}
	return out.Options, nil
}

func (r *Randomizer) pick(ctx context.Context, kind, parent string, keep func(character.Option) bool) (*character.Option, error) {
	options, err := r.options(ctx, kind, parent)
	if err != nil {
		return nil, err
	}
	if keep != nil {
		options = slices.DeleteFunc(options, func(o character.Option) bool { return !keep(o) })
	}
	if len(options) == 0 {
		return nil, errors.NotFoundf("no %s options left", kind)
	}
	o := Pick(r, options)
	return &o, nil
}

// Race picks a base race
func (r *Randomizer) Race(ctx context.Context) (*character.Option, error) {
	return r.pick(ctx, character.OptionRace, "", nil)
}

// DifferentRace picks a base race other than current
func (r *Randomizer) DifferentRace(ctx context.Context, current string) (*character.Option, error) {
	return r.pick(ctx, character.OptionRace, "", func(o character.Option) bool { return o.Slug != current })
}

// Subrace picks a subrace of race. It returns nil when the race has none.
func (r *Randomizer) Subrace(ctx context.Context, race string) (*character.Option, error) {
	options, err := r.options(ctx, character.OptionSubrace, race)
	if err != nil || len(options) == 0 {
		return nil, err
	}
	o := Pick(r, options)
	return &o, nil
}

// Class picks a class. classType narrows the pick to casters or martial
// classes; empty means any.
func (r *Randomizer) Class(ctx context.Context, classType string) (*character.Option, error) {
	return r.DifferentClass(ctx, "", classType)
}

// DifferentClass picks a class other than current
func (r *Randomizer) DifferentClass(ctx context.Context, current, classType string) (*character.Option, error) {
	return r.pick(ctx, character.OptionClass, "", func(o character.Option) bool {
		if o.Slug == current {
			return false
		}
		switch classType {
		case ClassTypeCaster:
			return o.Spellcaster
		case ClassTypeMartial:
			return !o.Spellcaster
		}
		return true
	})
}

// Subclass picks a subclass of class. It returns nil when the class has none.
func (r *Randomizer) Subclass(ctx context.Context, class string) (*character.Option, error) {
	options, err := r.options(ctx, character.OptionSubclass, class)
	if err != nil || len(options) == 0 {
		return nil, err
	}
	o := Pick(r, options)
	return &o, nil
}

// Background picks a background
func (r *Randomizer) Background(ctx context.Context) (*character.Option, error) {
	return r.pick(ctx, character.OptionBackground, "", nil)
}

// DifferentBackground picks a background other than current
func (r *Randomizer) DifferentBackground(ctx context.Context, current string) (*character.Option, error) {
	return r.pick(ctx, character.OptionBackground, "", func(o character.Option) bool { return o.Slug != current })
}

// AbilityScores deals the standard array across the six abilities
func (r *Randomizer) AbilityScores() map[string]int {
	values := PickN(r, standardArray, len(standardArray))
	out := make(map[string]int, len(dnd5e.AbilityCodes))
	for i, code := range dnd5e.AbilityCodes {
		out[code] = values[i]
	}
	return out
}

// EquipmentMode picks class equipment or starting gold
func (r *Randomizer) EquipmentMode() string {
	if r.Chance(50) {
		return dnd5e.EquipmentModeGold
	}
	return dnd5e.EquipmentModeEquipment
}

// Name picks a character name
func (r *Randomizer) Name() string {
	if len(r.names) > 0 {
		return Pick(r, r.names)
	}
	return Pick(r, namePrefixes) + Pick(r, nameSuffixes)
}

// Alignment picks an alignment
func (r *Randomizer) Alignment() string {
	return Pick(r, alignments)
}
