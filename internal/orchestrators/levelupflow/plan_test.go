package levelupflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/levelupflow"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

func randomizer(seed int64) *wizardflow.Randomizer {
	return wizardflow.NewRandomizer(dice.NewSeededRoller(seed), nil, nil)
}

func TestRealisticPlanDistribution(t *testing.T) {
	counts := map[int]int{}
	for seed := int64(1); seed <= 500; seed++ {
		plan := levelupflow.NewRealisticPlan(randomizer(seed), 1, 20)
		counts[plan.ClassCount]++

		assert.Len(t, plan.MulticlassLevels, plan.ClassCount-1, "seed %d", seed)
		prev := 1
		for _, lvl := range plan.MulticlassLevels {
			assert.Greater(t, lvl, prev, "seed %d levels %v", seed, plan.MulticlassLevels)
			assert.Less(t, lvl, 20)
			prev = lvl
		}
		if plan.ClassCount > 1 {
			assert.LessOrEqual(t, plan.MulticlassLevels[0], 5, "first multiclass is early")
		}
		if plan.ClassCount == 3 {
			assert.GreaterOrEqual(t, plan.MulticlassLevels[1], 6)
		}
	}

	assert.InDelta(t, 300, counts[1], 60)
	assert.InDelta(t, 150, counts[2], 50)
	assert.InDelta(t, 50, counts[3], 35)
}

func TestRealisticPlanShortRange(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		plan := levelupflow.NewRealisticPlan(randomizer(seed), 4, 5)
		assert.Equal(t, 1, plan.ClassCount)
		assert.Empty(t, plan.MulticlassLevels)
	}
}

func TestPlanMulticlassAt(t *testing.T) {
	plan := &levelupflow.Plan{ClassCount: 3, MulticlassLevels: []int{3, 7}}
	assert.True(t, plan.MulticlassAt(3))
	assert.True(t, plan.MulticlassAt(7))
	assert.False(t, plan.MulticlassAt(4))

	var none *levelupflow.Plan
	assert.False(t, none.MulticlassAt(3))
}
