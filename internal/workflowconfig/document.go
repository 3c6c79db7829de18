// Package workflowconfig parses and represents the flowspec_workflow.yml
// document: states, workflows (phases), transitions, agent loops, and
// role-scoped command groupings.
package workflowconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the parsed, untyped-free representation of a workflow document.
// Schema validation (ValidateSchema) runs against the raw decoded tree and
// semantic validation (ValidateSemantics) runs against a Document; a
// Document with only structural defects still parses.
type Document struct {
	Version     string              `yaml:"version"`
	States      []State             `yaml:"states"`
	Workflows   map[string]Workflow `yaml:"workflows"`
	Transitions []Transition        `yaml:"transitions"`
	AgentLoops  *AgentLoops         `yaml:"agent_loops,omitempty"`
	Roles       map[string]Role     `yaml:"roles,omitempty"`
	Telemetry   Telemetry           `yaml:"telemetry,omitempty"`
	Metadata    map[string]any      `yaml:"metadata,omitempty"`
}

// State is a position in the feature lifecycle. The document may declare a
// state as a bare string or as an object carrying optional display metadata,
// supplemented from StatusMetadata's color/phase/agent-type fields.
type State struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Color       string   `yaml:"color,omitempty"`
	Phase       string   `yaml:"phase,omitempty"`
	AgentTypes  []string `yaml:"agent_types,omitempty"`
}

// UnmarshalYAML accepts either a bare scalar state name or a mapping with a
// required `name` key plus optional display fields.
func (s *State) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&s.Name)
	}

	type rawState State
	var raw rawState
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("state entry: %w", err)
	}
	*s = State(raw)
	return nil
}

// Workflow is a named operation (a "phase") that moves a task from one of
// InputStates into exactly OutputState.
type Workflow struct {
	Command               string  `yaml:"command"`
	Agents                []Agent `yaml:"agents"`
	InputStates           []string `yaml:"input_states"`
	OutputState           string   `yaml:"output_state"`
	Description           string   `yaml:"description,omitempty"`
	Optional               bool    `yaml:"optional,omitempty"`
	ExecutionMode          string  `yaml:"execution_mode,omitempty"`
	RequiresHumanApproval  bool    `yaml:"requires_human_approval,omitempty"`
	CreatesBacklogTasks    bool    `yaml:"creates_backlog_tasks,omitempty"`
	RequiresBacklogTasks   bool    `yaml:"requires_backlog_tasks,omitempty"`
	BuildsConstitution     bool    `yaml:"builds_constitution,omitempty"`

	// Name is the workflow's key in the `workflows` map, filled in by the
	// parser after decoding so downstream consumers don't need the map key.
	Name string `yaml:"-"`

	// OrchestratorAction declares what the orchestrator should hand off to an
	// agent once this workflow's transition lands; optional.
	OrchestratorAction *OrchestratorAction `yaml:"orchestrator_action,omitempty"`
}

// Agent is a named actor engaged by a workflow. May be declared as a bare
// `@handle` string or as an object with identity/description/responsibilities.
type Agent struct {
	Name             string   `yaml:"name"`
	Identity         string   `yaml:"identity,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	Responsibilities []string `yaml:"responsibilities,omitempty"`
}

// UnmarshalYAML accepts a bare agent name/identity string or a full mapping.
func (a *Agent) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		a.Name = name
		if len(name) > 0 && name[0] == '@' {
			a.Identity = name
		}
		return nil
	}

	type rawAgent Agent
	var raw rawAgent
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("agent entry: %w", err)
	}
	*a = Agent(raw)
	return nil
}

// Transition is a directed edge (From, To) traversable via Via, a workflow
// name or one of the special types init|reset|complete.
type Transition struct {
	From            string     `yaml:"from"`
	To              string     `yaml:"to"`
	Via             string     `yaml:"via"`
	Name            string     `yaml:"name,omitempty"`
	InputArtifacts  []Artifact `yaml:"input_artifacts,omitempty"`
	OutputArtifacts []Artifact `yaml:"output_artifacts,omitempty"`
	Validation      string     `yaml:"validation,omitempty"`
}

// SpecialTransitionTypes are the non-workflow `via` values.
var SpecialTransitionTypes = map[string]bool{"init": true, "reset": true, "complete": true}

// Artifact describes an expected input or output document for a transition.
type Artifact struct {
	Type     string `yaml:"type"`
	Path     string `yaml:"path"`
	Required bool   `yaml:"required,omitempty"`
	Multiple bool   `yaml:"multiple,omitempty"`
}

// AgentLoops groups agents into the inner (tight, per-task) and outer
// (cross-task, orchestrator) loops. Both the nested form and the legacy flat
// form (`inner_loop`/`outer_loop` arrays) are accepted on read; nested is
// canonical.
type AgentLoops struct {
	Inner AgentLoopGroup `yaml:"inner"`
	Outer AgentLoopGroup `yaml:"outer"`
}

// AgentLoopGroup is the set of agents participating in one loop tier.
type AgentLoopGroup struct {
	Agents []string `yaml:"agents"`
}

// UnmarshalYAML normalizes the legacy flat shape
// `{inner_loop: [...], outer_loop: [...]}` into the nested canonical shape.
func (a *AgentLoops) UnmarshalYAML(value *yaml.Node) error {
	type nestedForm struct {
		Inner AgentLoopGroup `yaml:"inner"`
		Outer AgentLoopGroup `yaml:"outer"`
	}
	type flatForm struct {
		InnerLoop []string `yaml:"inner_loop"`
		OuterLoop []string `yaml:"outer_loop"`
	}

	var nested nestedForm
	if err := value.Decode(&nested); err != nil {
		return fmt.Errorf("agent_loops: %w", err)
	}
	if len(nested.Inner.Agents) > 0 || len(nested.Outer.Agents) > 0 {
		a.Inner = nested.Inner
		a.Outer = nested.Outer
		return nil
	}

	var flat flatForm
	if err := value.Decode(&flat); err != nil {
		return fmt.Errorf("agent_loops: %w", err)
	}
	a.Inner = AgentLoopGroup{Agents: flat.InnerLoop}
	a.Outer = AgentLoopGroup{Agents: flat.OuterLoop}
	return nil
}

// Role groups commands and agents under a role key (pm|arch|dev|sec|qa|ops|all).
type Role struct {
	Commands    []string `yaml:"commands"`
	Agents      []string `yaml:"agents"`
	Description string   `yaml:"description,omitempty"`
}

// Telemetry is the opt-in lifecycle-event configuration. Disabled by default.
type Telemetry struct {
	Enabled     bool   `yaml:"enabled"`
	ConsentDate string `yaml:"consent_date,omitempty"`
	Version     string `yaml:"version,omitempty"`
}

// OrchestratorAction is carried on a workflow's output state. Mirrors
// config.OrchestratorAction one-for-one.
type OrchestratorAction struct {
	Action              string   `yaml:"action"`
	AgentType           string   `yaml:"agent_type,omitempty"`
	Skills              []string `yaml:"skills,omitempty"`
	InstructionTemplate string   `yaml:"instruction_template"`
}

// PopulateTemplate substitutes {task_id} in the instruction template.
func (oa *OrchestratorAction) PopulateTemplate(taskID string) string {
	return strings.Replace(oa.InstructionTemplate, "{task_id}", taskID, -1)
}

// StateNames returns the declared state names in document order.
func (d *Document) StateNames() []string {
	names := make([]string, len(d.States))
	for i, s := range d.States {
		names[i] = s.Name
	}
	return names
}

// InitialState returns the default initial state: the first declared state.
func (d *Document) InitialState() string {
	if len(d.States) == 0 {
		return ""
	}
	return d.States[0].Name
}
