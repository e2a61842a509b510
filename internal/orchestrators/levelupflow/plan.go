package levelupflow

import (
	"slices"

	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

// Modes pick how classes are chosen on each level up
const (
	// ModeLinear levels the starting class only
	ModeLinear = "linear"
	// ModeChaos may multiclass on any level after 2 and levels a random class
	ModeChaos = "chaos"
	// ModeRealistic follows a multiclass plan rolled up front
	ModeRealistic = "realistic"
)

// chaosMulticlassPercent is how often chaos mode multiclasses past level 2
const chaosMulticlassPercent = 20

// Plan is when a realistic character picks up new classes
type Plan struct {
	ClassCount       int   `json:"class_count"`
	MulticlassLevels []int `json:"multiclass_levels,omitempty"`
}

// MulticlassAt reports whether the plan adds a class at level
func (p *Plan) MulticlassAt(level int) bool {
	return p != nil && slices.Contains(p.MulticlassLevels, level)
}

// NewRealisticPlan rolls a plan for leveling from current to target: six in
// ten characters stay single class, three take a second class early and one
// takes a second class early and a third one later
func NewRealisticPlan(rand *wizardflow.Randomizer, current, target int) *Plan {
	roll := rand.Int(1, 100)
	if roll <= 60 || target-current < 2 {
		return &Plan{ClassCount: 1}
	}

	if roll <= 90 {
		plan := &Plan{ClassCount: 2}
		lo, hi := max(current+1, 2), min(current+4, target-1)
		if lo <= hi {
			plan.MulticlassLevels = append(plan.MulticlassLevels, rand.Int(lo, hi))
		}
		return plan
	}

	plan := &Plan{ClassCount: 3}
	lo, hi := max(current+1, 2), min(current+4, target-2)
	if lo > hi {
		return plan
	}
	first := rand.Int(lo, hi)
	plan.MulticlassLevels = append(plan.MulticlassLevels, first)
	lo, hi = max(first+1, 6), min(current+9, target-1)
	if lo <= hi {
		plan.MulticlassLevels = append(plan.MulticlassLevels, rand.Int(lo, hi))
	}
	return plan
}
