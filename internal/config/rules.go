package config

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Rules holds the static tables loaded from rules.yaml
type Rules struct {
	ChallengeRatingXP    map[string]int            `yaml:"challenge_rating_xp"`
	CantripScalingLevels []int                     `yaml:"cantrip_scaling_levels"`
	ASILevels            map[string][]int          `yaml:"asi_levels"`
	StartingWealth       map[string]StartingWealth `yaml:"starting_wealth"`
	Spellcasting         map[string]Spellcasting   `yaml:"spellcasting"`
	OptionalFeatures     map[string]FeatureTrack   `yaml:"optional_features"`
	CharacterNames       []string                  `yaml:"character_names"`
}

// StartingWealth is rolled as Dice d4 times Multiplier gold
type StartingWealth struct {
	Dice       int `yaml:"dice"`
	Multiplier int `yaml:"multiplier"`
}

// Spellcasting types
const (
	SpellcastingKnown     = "known"
	SpellcastingPrepared  = "prepared"
	SpellcastingSpellbook = "spellbook"
)

// Spellcasting describes how many cantrips and spells a class picks
type Spellcasting struct {
	Type        string      `yaml:"type"`
	Cantrips    map[int]int `yaml:"cantrips"`
	SpellsKnown map[int]int `yaml:"spells_known"`
}

// CantripsAt returns the cantrips known at classLevel
func (s Spellcasting) CantripsAt(classLevel int) int {
	return progressionAt(s.Cantrips, classLevel)
}

// SpellsKnownAt returns the spells known (or in the spellbook) at classLevel
func (s Spellcasting) SpellsKnownAt(classLevel int) int {
	return progressionAt(s.SpellsKnown, classLevel)
}

// FeatureTrack is the progression of an optional feature type
type FeatureTrack struct {
	Name     string `yaml:"name"`
	Class    string `yaml:"class"`
	Subclass string `yaml:"subclass"`
	// CounterNames are the class counter names that track the number known
	CounterNames []string    `yaml:"counter_names"`
	Progression  map[int]int `yaml:"progression"`
}

// KnownAt returns how many features of the track are known at classLevel
func (t FeatureTrack) KnownAt(classLevel int) int {
	return progressionAt(t.Progression, classLevel)
}

func progressionAt(table map[int]int, level int) int {
	best, value := 0, 0
	for l, v := range table {
		if l <= level && l > best {
			best, value = l, v
		}
	}
	return value
}

var (
	rulesOnce sync.Once
	rules     *Rules
	rulesErr  error
)

// LoadRules parses the embedded rules once
func LoadRules() (*Rules, error) {
	rulesOnce.Do(func() {
		r := &Rules{}
		if err := yaml.Unmarshal(rulesYAML, r); err != nil {
			rulesErr = err
			return
		}
		rules = r
	})
	return rules, rulesErr
}

// MustRules returns the embedded rules and panics when they fail to parse
func MustRules() *Rules {
	r, err := LoadRules()
	if err != nil {
		panic("config: embedded rules.yaml is invalid: " + err.Error())
	}
	return r
}

// XPForChallengeRating returns the experience award for a challenge rating
func (r *Rules) XPForChallengeRating(cr string) (int, bool) {
	xp, ok := r.ChallengeRatingXP[strings.TrimSpace(cr)]
	return xp, ok
}

// ASILevelsFor returns the levels a class gains an ability score improvement
func (r *Rules) ASILevelsFor(classSlug string) []int {
	if levels, ok := r.ASILevels[strings.ToLower(classSlug)]; ok {
		return levels
	}
	return r.ASILevels["default"]
}

// IsASILevel reports whether classLevel grants an ability score improvement
func (r *Rules) IsASILevel(classSlug string, classLevel int) bool {
	for _, l := range r.ASILevelsFor(classSlug) {
		if l == classLevel {
			return true
		}
	}
	return false
}

// WealthFor returns the starting wealth dice for a class
func (r *Rules) WealthFor(classSlug string) StartingWealth {
	if w, ok := r.StartingWealth[strings.ToLower(classSlug)]; ok {
		return w
	}
	return r.StartingWealth["default"]
}

// SpellcastingFor returns the spellcasting progression of a class
func (r *Rules) SpellcastingFor(classSlug string) (Spellcasting, bool) {
	sc, ok := r.Spellcasting[strings.ToLower(classSlug)]
	return sc, ok
}

// FeatureTracksFor returns the optional feature tracks available to a class
// and subclass, keyed by feature type
func (r *Rules) FeatureTracksFor(classSlug, subclassSlug string) map[string]FeatureTrack {
	out := make(map[string]FeatureTrack)
	for featureType, track := range r.OptionalFeatures {
		if !strings.EqualFold(track.Class, classSlug) {
			continue
		}
		if track.Subclass != "" && !strings.HasSuffix(strings.ToLower(subclassSlug), track.Subclass) {
			continue
		}
		out[featureType] = track
	}
	return out
}
