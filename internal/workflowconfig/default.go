package workflowconfig

// DefaultDocument returns the default SDD state machine shipped with new
// projects by `flowspec init`: To Do →
// Specified → Researched → Planned → In Implementation → Validated →
// Deployed → Done, with a reset transition back to To Do and a research/plan
// fork that both feed into Planned.
//
// Grounded on internal/init/profiles.go's default-profile pattern, which
// likewise ships a ready-to-use config rather than forcing every new project
// to hand-author one from scratch.
func DefaultDocument() *Document {
	states := []State{
		{Name: "To Do", Color: "gray", Phase: "intake"},
		{Name: "Specified", Color: "blue", Phase: "specify"},
		{Name: "Researched", Color: "blue", Phase: "research"},
		{Name: "Planned", Color: "cyan", Phase: "plan"},
		{Name: "In Implementation", Color: "yellow", Phase: "implement"},
		{Name: "Validated", Color: "green", Phase: "validate"},
		{Name: "Deployed", Color: "green", Phase: "operate"},
		{Name: "Done", Color: "black", Phase: "done"},
	}

	workflows := map[string]Workflow{
		"specify": {
			Command:     "/flow:specify",
			Description: "Write the feature specification from a task's problem statement.",
			Agents:      []Agent{{Name: "spec-writer", Identity: "@spec-writer"}},
			InputStates: []string{"To Do"},
			OutputState: "Specified",
		},
		"research": {
			Command:     "/flow:research",
			Description: "Investigate unknowns surfaced by the specification.",
			Agents:      []Agent{{Name: "researcher", Identity: "@researcher"}},
			InputStates: []string{"Specified"},
			OutputState: "Researched",
		},
		"plan": {
			Command:               "/flow:plan",
			Description:           "Produce an implementation plan, directly from the spec or from research.",
			Agents:                []Agent{{Name: "planner", Identity: "@planner"}},
			InputStates:           []string{"Specified", "Researched"},
			OutputState:           "Planned",
			CreatesBacklogTasks:   true,
			RequiresHumanApproval: true,
		},
		"implement": {
			Command:              "/flow:implement",
			Description:          "Carry out the plan.",
			Agents:               []Agent{{Name: "developer", Identity: "@developer"}},
			InputStates:          []string{"Planned"},
			OutputState:          "In Implementation",
			RequiresBacklogTasks: true,
		},
		"validate": {
			Command:     "/flow:validate",
			Description: "Run tests and review against acceptance criteria.",
			Agents:      []Agent{{Name: "qa", Identity: "@qa"}},
			InputStates: []string{"In Implementation"},
			OutputState: "Validated",
		},
		"operate": {
			Command:               "/flow:operate",
			Description:           "Deploy the validated change.",
			Agents:                []Agent{{Name: "ops", Identity: "@ops"}},
			InputStates:           []string{"Validated"},
			OutputState:           "Deployed",
			RequiresHumanApproval: true,
		},
		"complete": {
			Command:     "/flow:complete",
			Description: "Close out the task once deployed work has settled.",
			Agents:      []Agent{{Name: "pm", Identity: "@pm"}},
			InputStates: []string{"Deployed"},
			OutputState: "Done",
		},
	}

	transitions := []Transition{
		{From: "To Do", To: "Specified", Via: "specify"},
		{From: "Specified", To: "Researched", Via: "research"},
		{From: "Specified", To: "Planned", Via: "plan"},
		{From: "Researched", To: "Planned", Via: "plan"},
		{From: "Planned", To: "In Implementation", Via: "implement"},
		{From: "In Implementation", To: "Validated", Via: "validate"},
		{From: "Validated", To: "Deployed", Via: "operate"},
		{From: "Deployed", To: "Done", Via: "complete"},
		{From: "Specified", To: "To Do", Via: "reset"},
		{From: "Researched", To: "To Do", Via: "reset"},
		{From: "Planned", To: "To Do", Via: "reset"},
	}

	roles := map[string]Role{
		"pm":        {Commands: []string{"/flow:complete"}, Agents: []string{"pm"}},
		"architect": {Commands: []string{"/flow:plan"}, Agents: []string{"planner"}},
		"dev":       {Commands: []string{"/flow:implement"}, Agents: []string{"developer"}},
		"qa":        {Commands: []string{"/flow:validate"}, Agents: []string{"qa"}},
		"ops":       {Commands: []string{"/flow:operate"}, Agents: []string{"ops"}},
		"all": {
			Commands: []string{
				"/flow:specify", "/flow:research", "/flow:plan",
				"/flow:implement", "/flow:validate", "/flow:operate", "/flow:complete",
			},
		},
	}

	return &Document{
		Version:     "1.0",
		States:      states,
		Workflows:   workflows,
		Transitions: transitions,
		AgentLoops: &AgentLoops{
			Inner: AgentLoopGroup{Agents: []string{"@spec-writer", "@researcher", "@planner", "@developer"}},
			Outer: AgentLoopGroup{Agents: []string{"@qa", "@ops", "@pm"}},
		},
		Roles: roles,
		Telemetry: Telemetry{
			Enabled: false,
			Version: "1.0",
		},
	}
}
