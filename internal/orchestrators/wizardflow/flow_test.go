package wizardflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

func newGenerator(seed int64) *wizardflow.Generator {
	return wizardflow.NewGenerator(wizardflow.NewRandomizer(dice.NewSeededRoller(seed), nil, nil))
}

var switchTargets = map[wizardflow.Action]wizardflow.Action{
	wizardflow.ActionSwitchRace:       wizardflow.ActionSetRace,
	wizardflow.ActionSwitchBackground: wizardflow.ActionSetBackground,
	wizardflow.ActionSwitchClass:      wizardflow.ActionSetClass,
}

// assertSwitchPlacement checks every switch sits after the step it revisits
// and before validation
func assertSwitchPlacement(t *testing.T, flow *wizardflow.Flow) {
	t.Helper()
	validate := flow.Index(wizardflow.ActionValidate)
	require.Equal(t, len(flow.Steps)-1, validate, "validate must be the last step")
	for i, s := range flow.Steps {
		if !s.Action.IsSwitch() {
			continue
		}
		target := flow.Index(switchTargets[s.Action])
		assert.Greater(t, i, target, "%s at %d must follow %s", s.Action, i, switchTargets[s.Action])
		assert.Less(t, i, validate)
	}
}

func TestLinear(t *testing.T) {
	flow := newGenerator(1).Linear()

	assert.Equal(t, wizardflow.FlowLinear, flow.Type)
	assert.Len(t, flow.Steps, 14)
	assert.Equal(t, wizardflow.ActionCreate, flow.Steps[0].Action)
	assert.Equal(t, wizardflow.ActionValidate, flow.Steps[13].Action)
	assert.Zero(t, flow.SwitchCount())
	assert.Less(t, flow.Index(wizardflow.ActionSetClass), flow.Index(wizardflow.ActionSetEquipmentMode))
	assert.Less(t, flow.Index(wizardflow.ActionSetEquipmentMode), flow.Index(wizardflow.ActionResolveEquipmentChoices))
}

func TestChaos(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		flow := newGenerator(seed).Chaos(1, 3)

		assert.Equal(t, wizardflow.FlowChaos, flow.Type)
		assert.GreaterOrEqual(t, flow.SwitchCount(), 1, "seed %d", seed)
		assert.LessOrEqual(t, flow.SwitchCount(), 3, "seed %d", seed)
		assert.Len(t, flow.Steps, 14+flow.SwitchCount())
		assertSwitchPlacement(t, flow)
	}
}

func TestChaosIsDeterministic(t *testing.T) {
	a := newGenerator(42).Chaos(2, 4)
	b := newGenerator(42).Chaos(2, 4)
	assert.Equal(t, a.Actions(), b.Actions())
}

func TestChaosFixedSwitchCount(t *testing.T) {
	flow := newGenerator(7).Chaos(2, 2)
	assert.Equal(t, 2, flow.SwitchCount())
}

func TestWithSwitches(t *testing.T) {
	flow, err := newGenerator(1).WithSwitches([]string{"race", "switch_class", " background "})
	require.NoError(t, err)

	assert.Equal(t, wizardflow.FlowSwitches, flow.Type)
	assert.Equal(t, 3, flow.SwitchCount())
	assertSwitchPlacement(t, flow)
	for _, a := range []wizardflow.Action{wizardflow.ActionSwitchRace, wizardflow.ActionSwitchClass, wizardflow.ActionSwitchBackground} {
		i := flow.Index(a)
		require.GreaterOrEqual(t, i, 0, "%s missing", a)
		assert.Contains(t, flow.Steps[i].Description, "SWITCH")
	}
}

func TestWithSwitchesUnknown(t *testing.T) {
	_, err := newGenerator(1).WithSwitches([]string{"alignment"})
	assert.ErrorContains(t, err, "switch_alignment")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestEquipmentModeChaos(t *testing.T) {
	seen := map[wizardflow.Action]bool{}
	for seed := int64(1); seed <= 20; seed++ {
		flow := newGenerator(seed).EquipmentModeChaos()

		assert.Equal(t, wizardflow.FlowEquipmentChaos, flow.Type)
		require.Equal(t, 1, flow.SwitchCount())
		step := flow.Steps[flow.Index(wizardflow.ActionResolveEquipmentChoices)+1]
		assert.True(t, step.Action.IsSwitch())
		assert.NotEqual(t, wizardflow.ActionSwitchRace, step.Action)
		assert.Equal(t, "true", step.Params[wizardflow.ParamEquipmentModeTest])
		seen[step.Action] = true
	}
	assert.Len(t, seen, 2, "both background and class switches should be drawn")
}

func TestClassTypeSwitch(t *testing.T) {
	flow := newGenerator(1).ClassTypeSwitch(wizardflow.ClassTypeCaster, wizardflow.ClassTypeMartial)

	assert.Equal(t, wizardflow.FlowClassTypeSwitch, flow.Type)
	setClass := flow.Steps[flow.Index(wizardflow.ActionSetClass)]
	assert.Equal(t, wizardflow.ClassTypeCaster, setClass.Params[wizardflow.ParamClassType])

	i := flow.Index(wizardflow.ActionSwitchClass)
	assert.Equal(t, flow.Index(wizardflow.ActionResolveSpellChoices)+1, i)
	assert.Equal(t, wizardflow.ClassTypeMartial, flow.Steps[i].Params[wizardflow.ParamClassTypeTo])
}

func TestAllRaces(t *testing.T) {
	races := []string{"human", "elf", "half-elf"}
	flows := newGenerator(3).AllRaces(races, 1, 2)

	require.Len(t, flows, len(races))
	for i, flow := range flows {
		assert.Equal(t, wizardflow.FlowAllRaces, flow.Type)
		setRace := flow.Steps[flow.Index(wizardflow.ActionSetRace)]
		assert.Equal(t, races[i], setRace.Params[wizardflow.ParamForceRace])
		assertSwitchPlacement(t, flow)
	}
}

func TestLinearStepsAreIndependent(t *testing.T) {
	gen := newGenerator(1)
	a := gen.ClassTypeSwitch(wizardflow.ClassTypeMartial, wizardflow.ClassTypeCaster)
	b := gen.Linear()

	assert.NotEmpty(t, a.Steps[a.Index(wizardflow.ActionSetClass)].Params)
	assert.Empty(t, b.Steps[b.Index(wizardflow.ActionSetClass)].Params)
}
