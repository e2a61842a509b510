package wizardflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/orchestrators/wizardflow"
)

const scenarios = `
scenario "fighter-chaos" {
  count        = 20
  chaos        = true
  seed         = var.seed
  min_switches = 2
  max_switches = 4
  force_class  = "fighter"
}

scenario "casters-to-martial" {
  class_types = ["caster", "martial"]
}

scenario "named" {
  switches        = ["race", "class"]
  equipment_modes = false
  all_races       = true
}
`

func TestParseScenarios(t *testing.T) {
	got, err := wizardflow.ParseScenarios([]byte(scenarios), "flows.hcl", map[string]string{"seed": "1234"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	chaos := got[0]
	assert.Equal(t, "fighter-chaos", chaos.Name)
	require.NotNil(t, chaos.Count)
	assert.Equal(t, 20, *chaos.Count)
	require.NotNil(t, chaos.Seed)
	assert.Equal(t, int64(1234), *chaos.Seed)
	assert.Nil(t, chaos.AllRaces)

	input := &wizardflow.RunInput{Count: 1, ForceSubclass: "champion"}
	chaos.Apply(input)
	assert.Equal(t, &wizardflow.RunInput{
		Count:         20,
		Seed:          1234,
		Chaos:         true,
		MinSwitches:   2,
		MaxSwitches:   4,
		ForceClass:    "fighter",
		ForceSubclass: "champion",
		Scenario:      "fighter-chaos",
	}, input)

	input = &wizardflow.RunInput{}
	got[1].Apply(input)
	assert.Equal(t, [2]string{wizardflow.ClassTypeCaster, wizardflow.ClassTypeMartial}, input.ClassTypes)

	input = &wizardflow.RunInput{EquipmentModes: true}
	got[2].Apply(input)
	assert.Equal(t, []string{"race", "class"}, input.Switches)
	assert.False(t, input.EquipmentModes)
	assert.True(t, input.AllRaces)
}

func TestParseScenariosErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax",
			src:  `scenario "broken" {`,
			want: "failed to parse",
		},
		{
			name: "unknown attribute",
			src:  `scenario "x" { colour = "red" }`,
			want: "failed to decode",
		},
		{
			name: "missing variable",
			src:  `scenario "x" { seed = var.seed }`,
			want: "failed to decode",
		},
		{
			name: "duplicate",
			src:  "scenario \"x\" {}\nscenario \"x\" {}",
			want: "defined twice",
		},
		{
			name: "count out of range",
			src:  `scenario "x" { count = 0 }`,
			want: "count",
		},
		{
			name: "switch bounds",
			src:  "scenario \"x\" {\n  min_switches = 3\n  max_switches = 1\n}",
			want: "min_switches",
		},
		{
			name: "class types",
			src:  `scenario "x" { class_types = ["caster", "healer"] }`,
			want: "class_types",
		},
		{
			name: "single class type",
			src:  `scenario "x" { class_types = ["caster"] }`,
			want: "class_types",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wizardflow.ParseScenarios([]byte(tt.src), "bad.hcl", nil)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`scenario "smoke" { count = 2 }`), 0o600))

	got, err := wizardflow.LoadScenarios(path, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "smoke", got[0].Name)

	_, err = wizardflow.LoadScenarios(filepath.Join(t.TempDir(), "missing.hcl"), nil)
	assert.Error(t, err)
}
