package wizardflow

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Scenario is a named, repeatable flow run read from an HCL file:
//
//	scenario "fighter-chaos" {
//	  count        = 20
//	  chaos        = true
//	  seed         = var.seed
//	  min_switches = 1
//	  max_switches = 3
//	  force_class  = "fighter"
//	}
type Scenario struct {
	Name           string   `hcl:"name,label"`
	Count          *int     `hcl:"count,optional"`
	Seed           *int64   `hcl:"seed,optional"`
	Chaos          *bool    `hcl:"chaos,optional"`
	MinSwitches    *int     `hcl:"min_switches,optional"`
	MaxSwitches    *int     `hcl:"max_switches,optional"`
	Switches       []string `hcl:"switches,optional"`
	ForceClass     *string  `hcl:"force_class,optional"`
	ForceSubclass  *string  `hcl:"force_subclass,optional"`
	EquipmentModes *bool    `hcl:"equipment_modes,optional"`
	ClassTypes     []string `hcl:"class_types,optional"`
	AllRaces       *bool    `hcl:"all_races,optional"`
}

type scenarioFile struct {
	Scenarios []*Scenario `hcl:"scenario,block"`
}

// LoadScenarios reads the scenarios of an HCL file. vars are exposed to the
// file as var.<name>.
func LoadScenarios(path string, vars map[string]string) ([]*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario file %s", path)
	}
	return ParseScenarios(src, path, vars)
}

// ParseScenarios decodes scenarios from HCL source
func ParseScenarios(src []byte, filename string, vars map[string]string) ([]*Scenario, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.InvalidArgumentf("failed to parse %s: %s", filename, diags.Error())
	}

	values := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{"var": cty.ObjectVal(values)}}

	var parsed scenarioFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &parsed); diags.HasErrors() {
		return nil, errors.InvalidArgumentf("failed to decode %s: %s", filename, diags.Error())
	}

	seen := map[string]bool{}
	for _, s := range parsed.Scenarios {
		if seen[s.Name] {
			return nil, errors.InvalidArgumentf("scenario %q is defined twice in %s", s.Name, filename)
		}
		seen[s.Name] = true
		if err := s.validate(); err != nil {
			return nil, errors.Wrapf(err, "scenario %q", s.Name)
		}
	}
	return parsed.Scenarios, nil
}

func (s *Scenario) validate() error {
	vb := errors.NewValidationBuilder()
	if s.Count != nil {
		errors.ValidateRange("count", *s.Count, 1, 10000, vb)
	}
	if s.MinSwitches != nil && s.MaxSwitches != nil && *s.MinSwitches > *s.MaxSwitches {
		vb.Field("min_switches", "must not exceed max_switches")
	}
	if len(s.ClassTypes) != 0 && len(s.ClassTypes) != 2 {
		vb.Field("class_types", "must name a from and a to class type")
	}
	for _, t := range s.ClassTypes {
		errors.ValidateEnum("class_types", t, []string{ClassTypeCaster, ClassTypeMartial}, vb)
	}
	return vb.Build()
}

// Apply overlays the scenario's settings onto input
func (s *Scenario) Apply(input *RunInput) {
	if s.Count != nil {
		input.Count = *s.Count
	}
	if s.Seed != nil {
		input.Seed = *s.Seed
	}
	if s.Chaos != nil {
		input.Chaos = *s.Chaos
	}
	if s.MinSwitches != nil {
		input.MinSwitches = *s.MinSwitches
	}
	if s.MaxSwitches != nil {
		input.MaxSwitches = *s.MaxSwitches
	}
	if len(s.Switches) > 0 {
		input.Switches = s.Switches
	}
	if s.ForceClass != nil {
		input.ForceClass = *s.ForceClass
	}
	if s.ForceSubclass != nil {
		input.ForceSubclass = *s.ForceSubclass
	}
	if s.EquipmentModes != nil {
		input.EquipmentModes = *s.EquipmentModes
	}
	if len(s.ClassTypes) == 2 {
		input.ClassTypes = [2]string{s.ClassTypes[0], s.ClassTypes[1]}
	}
	if s.AllRaces != nil {
		input.AllRaces = *s.AllRaces
	}
	input.Scenario = s.Name
}
