package workflowconfig

import "sort"

// Model is the immutable, query-optimized view of a workflow document. It is
// built once by BuildModel after schema and semantic validation both pass,
// and is safe for concurrent read access since nothing mutates it after
// construction.
//
// Grounded on internal/config's WorkflowConfig, which likewise wraps a
// parsed document with derived lookup maps (StatusMetadata, phase ordering)
// computed once at load time rather than on every query.
type Model struct {
	doc         *Document
	contentHash string

	stateIndex      map[string]State
	byFromState     map[string][]Transition
	byCommand       map[string]Workflow
	byRole          map[string]Role
	commandToRoles  map[string][]string
}

// ContentHash returns the hash of the source bytes this Model was built
// from, used by callers to detect staleness.
func (m *Model) ContentHash() string { return m.contentHash }

// Document returns the underlying parsed document, for callers (the
// materializer, the overlay engine) that need fields BuildModel does not
// index.
func (m *Model) Document() *Document { return m.doc }

// States returns the declared states in document order.
func (m *Model) States() []State { return m.doc.States }

// GetState looks up a state by name.
func (m *Model) GetState(name string) (State, bool) {
	s, ok := m.stateIndex[name]
	return s, ok
}

// GetWorkflow resolves a workflow by its slash command (e.g. "/specify").
func (m *Model) GetWorkflow(command string) (Workflow, bool) {
	wf, ok := m.byCommand[command]
	return wf, ok
}

// GetWorkflowByName resolves a workflow by its document key.
func (m *Model) GetWorkflowByName(name string) (Workflow, bool) {
	wf, ok := m.doc.Workflows[name]
	return wf, ok
}

// GetAgents returns the agents assigned to a workflow's command.
func (m *Model) GetAgents(command string) []Agent {
	wf, ok := m.byCommand[command]
	if !ok {
		return nil
	}
	return wf.Agents
}

// TransitionsFrom returns every transition whose From equals state.
func (m *Model) TransitionsFrom(state string) []Transition {
	return m.byFromState[state]
}

// GetNextState returns the state reached from `state` via workflow command
// `command`, if such a transition exists.
func (m *Model) GetNextState(state, command string) (string, bool) {
	wf, ok := m.byCommand[command]
	if !ok {
		return "", false
	}
	for _, t := range m.byFromState[state] {
		if t.Via == wf.Name {
			return t.To, true
		}
	}
	return "", false
}

// IsValidTransition reports whether `command` can legally fire while a task
// is in `state`, i.e. state is among the workflow's declared input_states
// and a matching transition edge exists.
func (m *Model) IsValidTransition(state, command string) bool {
	wf, ok := m.byCommand[command]
	if !ok {
		return false
	}
	if !containsString(wf.InputStates, state) {
		return false
	}
	_, ok = m.GetNextState(state, command)
	return ok
}

// LegalCommands returns every workflow command whose input_states include
// state, regardless of role, sorted by command.
func (m *Model) LegalCommands(state string) []string {
	var out []string
	for _, wf := range m.byCommand {
		if containsString(wf.InputStates, state) {
			out = append(out, wf.Command)
		}
	}
	sort.Strings(out)
	return out
}

// LegalCommandsForRole intersects LegalCommands(state) with the commands
// permitted to role.
func (m *Model) LegalCommandsForRole(state, role string) []string {
	r, ok := m.byRole[role]
	if !ok {
		return nil
	}
	allowed := make(map[string]bool, len(r.Commands))
	for _, c := range r.Commands {
		allowed[c] = true
	}

	var out []string
	for _, cmd := range m.LegalCommands(state) {
		if allowed[cmd] {
			out = append(out, cmd)
		}
	}
	return out
}

// RoleMayInvoke reports whether role is permitted to invoke command at all
// (independent of current state), consulting both explicit role.Commands
// and role.Agents membership against the workflow's agent list.
func (m *Model) RoleMayInvoke(role, command string) bool {
	r, ok := m.byRole[role]
	if !ok {
		return false
	}
	if containsString(r.Commands, command) {
		return true
	}
	wf, ok := m.byCommand[command]
	if !ok {
		return false
	}
	for _, agentName := range r.Agents {
		for _, a := range wf.Agents {
			if a.Name == agentName || a.Identity == agentName {
				return true
			}
		}
	}
	return false
}

// RolesForCommand lists every role permitted to invoke command.
func (m *Model) RolesForCommand(command string) []string {
	return m.commandToRoles[command]
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// BuildModel constructs a Model from a validated Document. Callers must run
// ValidateSchema and ValidateSemantics first; BuildModel does not
// re-validate and assumes doc is internally consistent.
func BuildModel(doc *Document, contentHash string) *Model {
	m := &Model{
		doc:            doc,
		contentHash:    contentHash,
		stateIndex:     make(map[string]State, len(doc.States)),
		byFromState:    make(map[string][]Transition),
		byCommand:      make(map[string]Workflow, len(doc.Workflows)),
		byRole:         doc.Roles,
		commandToRoles: make(map[string][]string),
	}
	if m.byRole == nil {
		m.byRole = make(map[string]Role)
	}

	for _, s := range doc.States {
		m.stateIndex[s.Name] = s
	}
	for _, t := range doc.Transitions {
		m.byFromState[t.From] = append(m.byFromState[t.From], t)
	}
	for name, wf := range doc.Workflows {
		wf.Name = name
		m.byCommand[wf.Command] = wf
	}
	for roleName, role := range doc.Roles {
		for _, cmd := range role.Commands {
			m.commandToRoles[cmd] = append(m.commandToRoles[cmd], roleName)
		}
	}

	return m
}
