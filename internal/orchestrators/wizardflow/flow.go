// Package wizardflow replays randomized character creation flows against the
// character wizard and checks that switching race, class or background in
// the middle of a flow leaves a consistent character behind
package wizardflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Action is one wizard step of a flow
type Action string

// Flow actions
const (
	ActionCreate                    Action = "create"
	ActionSetRace                   Action = "set_race"
	ActionSetSubrace                Action = "set_subrace"
	ActionSetClass                  Action = "set_class"
	ActionSetSubclass               Action = "set_subclass"
	ActionSetBackground             Action = "set_background"
	ActionSetAbilityScores          Action = "set_ability_scores"
	ActionResolveProficiencyChoices Action = "resolve_proficiency_choices"
	ActionResolveLanguageChoices    Action = "resolve_language_choices"
	ActionSetEquipmentMode          Action = "set_equipment_mode"
	ActionResolveEquipmentChoices   Action = "resolve_equipment_choices"
	ActionResolveSpellChoices       Action = "resolve_spell_choices"
	ActionSetDetails                Action = "set_details"
	ActionValidate                  Action = "validate"
	ActionSwitchRace                Action = "switch_race"
	ActionSwitchBackground          Action = "switch_background"
	ActionSwitchClass               Action = "switch_class"
)

// IsSwitch reports whether a changes an earlier decision
func (a Action) IsSwitch() bool {
	return strings.HasPrefix(string(a), "switch_")
}

// Flow types
const (
	FlowLinear          = "linear"
	FlowChaos           = "chaos"
	FlowSwitches        = "switches"
	FlowEquipmentChaos  = "equipment_chaos"
	FlowClassTypeSwitch = "class_type_switch"
	FlowAllRaces        = "all_races"
)

// Class types used by class type switch flows
const (
	ClassTypeCaster  = "caster"
	ClassTypeMartial = "martial"
)

// Step parameters
const (
	ParamForceRace         = "force_race"
	ParamForceClass        = "force_class"
	ParamForceSubclass     = "force_subclass"
	ParamClassType         = "class_type"
	ParamClassTypeFrom     = "class_type_from"
	ParamClassTypeTo       = "class_type_to"
	ParamEquipmentModeTest = "equipment_mode_test"
)

// Step is one action of a flow. Conditional steps are skipped when they do
// not apply to the character, e.g. a subrace step for a race without any.
type Step struct {
	Action      Action            `json:"action"`
	Description string            `json:"description"`
	Conditional bool              `json:"conditional,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

// Flow is an ordered list of steps
type Flow struct {
	Type  string `json:"type"`
	Steps []Step `json:"steps"`
}

// Actions lists the flow's actions in order
func (f *Flow) Actions() []Action {
	out := make([]Action, 0, len(f.Steps))
	for _, s := range f.Steps {
		out = append(out, s.Action)
	}
	return out
}

// Index returns the position of the first step with action, or -1
func (f *Flow) Index(action Action) int {
	return slices.IndexFunc(f.Steps, func(s Step) bool { return s.Action == action })
}

// SwitchCount counts the switch steps
func (f *Flow) SwitchCount() int {
	n := 0
	for _, s := range f.Steps {
		if s.Action.IsSwitch() {
			n++
		}
	}
	return n
}

func (f *Flow) insert(at int, step Step) {
	f.Steps = slices.Insert(f.Steps, at, step)
}

func (f *Flow) setParam(action Action, key, value string) {
	i := f.Index(action)
	if i < 0 {
		return
	}
	if f.Steps[i].Params == nil {
		f.Steps[i].Params = map[string]string{}
	}
	f.Steps[i].Params[key] = value
}

var linearSteps = []Step{
	{Action: ActionCreate, Description: "Create character"},
	{Action: ActionSetRace, Description: "Select race"},
	{Action: ActionSetSubrace, Description: "Select subrace", Conditional: true},
	{Action: ActionSetClass, Description: "Select class"},
	{Action: ActionSetSubclass, Description: "Select subclass", Conditional: true},
	{Action: ActionSetBackground, Description: "Select background"},
	{Action: ActionSetAbilityScores, Description: "Assign ability scores"},
	{Action: ActionResolveProficiencyChoices, Description: "Resolve proficiency choices", Conditional: true},
	{Action: ActionResolveLanguageChoices, Description: "Resolve language choices", Conditional: true},
	{Action: ActionSetEquipmentMode, Description: "Choose equipment or gold"},
	{Action: ActionResolveEquipmentChoices, Description: "Resolve equipment choices", Conditional: true},
	{Action: ActionResolveSpellChoices, Description: "Resolve spell choices", Conditional: true},
	{Action: ActionSetDetails, Description: "Set name and alignment"},
	{Action: ActionValidate, Description: "Validate character"},
}

// switchTargets maps each switch to the step it revisits
var switchTargets = map[Action]Action{
	ActionSwitchRace:       ActionSetRace,
	ActionSwitchBackground: ActionSetBackground,
	ActionSwitchClass:      ActionSetClass,
}

var switchOrder = []Action{ActionSwitchRace, ActionSwitchBackground, ActionSwitchClass}

func switchStep(action Action) Step {
	var what string
	switch action {
	case ActionSwitchRace:
		what = "race"
	case ActionSwitchBackground:
		what = "background"
	case ActionSwitchClass:
		what = "class"
	}
	return Step{Action: action, Description: fmt.Sprintf("SWITCH: Change %s (should cascade reset)", what)}
}

// Generator builds flows. Random placement draws from the randomizer so a
// seed always produces the same flow.
type Generator struct {
	rand *Randomizer
}

// NewGenerator creates a generator drawing from rand
func NewGenerator(rand *Randomizer) *Generator {
	return &Generator{rand: rand}
}

// Linear returns the straight path through the wizard
func (g *Generator) Linear() *Flow {
	steps := make([]Step, len(linearSteps))
	for i, s := range linearSteps {
		steps[i] = s
		steps[i].Params = nil
	}
	return &Flow{Type: FlowLinear, Steps: steps}
}

// Chaos returns a linear flow with between minSwitches and maxSwitches
// random switches. Each switch lands somewhere after the step it revisits
// and before validation.
func (g *Generator) Chaos(minSwitches, maxSwitches int) *Flow {
	flow := g.Linear()
	flow.Type = FlowChaos
	n := g.rand.Int(minSwitches, max(minSwitches, maxSwitches))
	for range n {
		action := switchOrder[g.rand.Intn(len(switchOrder))]
		lo, hi := g.switchRange(flow, action)
		flow.insert(g.rand.Int(lo, hi), switchStep(action))
	}
	return flow
}

// WithSwitches returns a linear flow with the named switches placed halfway
// through their allowed range. Names may omit the "switch_" prefix.
func (g *Generator) WithSwitches(names []string) (*Flow, error) {
	flow := g.Linear()
	flow.Type = FlowSwitches
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "switch_") {
			name = "switch_" + name
		}
		action := Action(name)
		if _, ok := switchTargets[action]; !ok {
			return nil, errors.InvalidArgumentf("unknown switch %q", name)
		}
		lo, hi := g.switchRange(flow, action)
		flow.insert(lo+(hi-lo)/2, switchStep(action))
	}
	return flow, nil
}

// EquipmentModeChaos switches the background or class right after the
// equipment choices are resolved, so equipment has to be rebuilt
func (g *Generator) EquipmentModeChaos() *Flow {
	flow := g.Linear()
	flow.Type = FlowEquipmentChaos
	action := ActionSwitchBackground
	if g.rand.Chance(50) {
		action = ActionSwitchClass
	}
	step := switchStep(action)
	step.Params = map[string]string{ParamEquipmentModeTest: "true"}
	flow.insert(flow.Index(ActionResolveEquipmentChoices)+1, step)
	return flow
}

// ClassTypeSwitch starts with a class of type from and switches to a class
// of type to after the spell choices are made
func (g *Generator) ClassTypeSwitch(from, to string) *Flow {
	flow := g.Linear()
	flow.Type = FlowClassTypeSwitch
	flow.setParam(ActionSetClass, ParamClassType, from)
	step := switchStep(ActionSwitchClass)
	step.Params = map[string]string{ParamClassTypeFrom: from, ParamClassTypeTo: to}
	flow.insert(flow.Index(ActionResolveSpellChoices)+1, step)
	return flow
}

// AllRaces returns one chaos flow per race, each forcing that race
func (g *Generator) AllRaces(races []string, minSwitches, maxSwitches int) []*Flow {
	out := make([]*Flow, 0, len(races))
	for _, race := range races {
		flow := g.Chaos(minSwitches, maxSwitches)
		flow.Type = FlowAllRaces
		flow.setParam(ActionSetRace, ParamForceRace, race)
		out = append(out, flow)
	}
	return out
}

// switchRange is the inclusive range of insert positions for a switch
func (g *Generator) switchRange(flow *Flow, action Action) (int, int) {
	lo := flow.Index(switchTargets[action]) + 1
	hi := flow.Index(ActionValidate)
	return lo, max(lo, hi)
}
