package workflowconfig

import "fmt"

// ValidateSemantics runs the semantic validation passes: reference
// resolution, reachability, cycle detection, role/command
// single-source-of-truth, and agent-loop usage warnings. It never panics on
// user data; every problem becomes a Finding.
//
// Grounded on internal/config/workflow_validator.go's BFS reachability /
// reverse-BFS terminal-path checks, generalized from a flat status_flow map
// to the richer transitions-plus-workflows document shape.
func ValidateSemantics(doc *Document) Findings {
	var findings Findings

	if len(doc.States) == 0 {
		findings = append(findings, errorf(RuleNoStates, "/states", "states must be non-empty"))
		return findings
	}

	// A document with exactly one state and no transitions is a legal,
	// degenerate boundary case: the Model builds with an empty
	// legal_commands set rather than failing validation. Beyond a single
	// state, an empty workflows/transitions list means no task can ever
	// progress, so those stay errors.
	if len(doc.States) > 1 {
		if len(doc.Workflows) == 0 {
			findings = append(findings, errorf(RuleNoWorkflows, "/workflows", "workflows must have at least one entry"))
		}
		if len(doc.Transitions) == 0 {
			findings = append(findings, errorf(RuleNoTransitions, "/transitions", "transitions must be non-empty"))
		}
	}

	stateSet := make(map[string]bool, len(doc.States))
	for _, s := range doc.States {
		stateSet[s.Name] = true
	}

	findings = append(findings, validateWorkflowReferences(doc, stateSet)...)
	findings = append(findings, validateTransitionReferences(doc, stateSet)...)
	findings = append(findings, validateReachability(doc, stateSet)...)
	findings = append(findings, validateNoOrphanCycles(doc)...)
	findings = append(findings, validateAgentLoops(doc)...)
	findings = append(findings, validateRoleConsistency(doc)...)

	return findings
}

// validateWorkflowReferences checks that every workflow's input_states and
// output_state reference declared states.
func validateWorkflowReferences(doc *Document, stateSet map[string]bool) Findings {
	var findings Findings
	for name, wf := range doc.Workflows {
		for _, in := range wf.InputStates {
			if !stateSet[in] {
				findings = append(findings, errorf(RuleUndefinedState,
					fmt.Sprintf("/workflows/%s/input_states", name),
					"workflow %q references undefined input state %q", name, in))
			}
		}
		if wf.OutputState != "" && !stateSet[wf.OutputState] {
			findings = append(findings, errorf(RuleUndefinedState,
				fmt.Sprintf("/workflows/%s/output_state", name),
				"workflow %q references undefined output state %q", name, wf.OutputState))
		}
	}
	return findings
}

// validateTransitionReferences checks that every transition's from/to
// reference declared states and via references a workflow name or a
// special type (init|reset|complete).
func validateTransitionReferences(doc *Document, stateSet map[string]bool) Findings {
	var findings Findings
	for i, t := range doc.Transitions {
		path := fmt.Sprintf("/transitions/%d", i)
		if !stateSet[t.From] {
			findings = append(findings, errorf(RuleUndefinedState, path+"/from", "transition references undefined state %q", t.From))
		}
		if !stateSet[t.To] {
			findings = append(findings, errorf(RuleUndefinedState, path+"/to", "transition references undefined state %q", t.To))
		}
		if _, isWorkflow := doc.Workflows[t.Via]; !isWorkflow && !SpecialTransitionTypes[t.Via] {
			findings = append(findings, errorf(RuleUndefinedWorkflow, path+"/via",
				"transition via %q is neither a declared workflow nor a special type (init|reset|complete)", t.Via))
		}
	}
	return findings
}

// validateReachability runs a BFS from the initial state (states[0] unless
// declared otherwise) over the transition graph and flags any declared
// state that is never reached.
func validateReachability(doc *Document, stateSet map[string]bool) Findings {
	adjacency := buildAdjacency(doc.Transitions)
	initial := doc.InitialState()
	if initial == "" {
		return nil
	}

	reachable := map[string]bool{initial: true}
	queue := []string{initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	var findings Findings
	for i, s := range doc.States {
		if !reachable[s.Name] {
			findings = append(findings, errorf(RuleUnreachableState,
				fmt.Sprintf("/states/%d", i),
				"state %q is not reachable from the initial state %q", s.Name, initial))
		}
	}
	return findings
}

func buildAdjacency(transitions []Transition) map[string][]string {
	adjacency := make(map[string][]string)
	for _, t := range transitions {
		adjacency[t.From] = append(adjacency[t.From], t.To)
	}
	return adjacency
}

// validateNoOrphanCycles detects any closed transition chain that does not
// include at least one edge whose `via` names an actual workflow). A cycle composed entirely of special-type edges (reset/init/
// complete) would let a task loop forever without ever passing through a
// reviewable phase.
func validateNoOrphanCycles(doc *Document) Findings {
	type edge struct {
		to        string
		viaWorkflow bool
	}
	adjacency := make(map[string][]edge)
	for _, t := range doc.Transitions {
		_, isWorkflow := doc.Workflows[t.Via]
		adjacency[t.From] = append(adjacency[t.From], edge{to: t.To, viaWorkflow: isWorkflow})
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var findings Findings

	var visit func(node string, sawWorkflowEdge bool, path []string)
	visit = func(node string, sawWorkflowEdge bool, path []string) {
		color[node] = gray
		path = append(path, node)
		for _, e := range adjacency[node] {
			// Only special-type edges are followed, so any cycle closed
			// here consists entirely of edges that name no workflow.
			if e.viaWorkflow {
				continue
			}
			nextSaw := sawWorkflowEdge || e.viaWorkflow
			if color[e.to] == gray {
				findings = append(findings, errorf(RuleCycleWithoutExit, "/transitions",
					"cycle %s -> %s has no transition via a workflow", node, e.to))
			} else if color[e.to] == white {
				visit(e.to, nextSaw, path)
			}
		}
		color[node] = black
	}

	for _, s := range doc.States {
		if color[s.Name] == white {
			visit(s.Name, false, nil)
		}
	}

	return findings
}

// cycleHasWorkflowEdge checks whether the sub-path of path starting at the
// last occurrence of target contains at least one edge whose `via` names a
// workflow.
func cycleHasWorkflowEdge(doc *Document, path []string, target string) bool {
	start := -1
	for i, n := range path {
		if n == target {
			start = i
		}
	}
	if start < 0 {
		return true // can't determine the cycle's extent; don't false-positive
	}
	cycleNodes := append(append([]string{}, path[start:]...), target)
	for i := 0; i+1 < len(cycleNodes); i++ {
		from, to := cycleNodes[i], cycleNodes[i+1]
		for _, t := range doc.Transitions {
			if t.From == from && t.To == to {
				if _, isWorkflow := doc.Workflows[t.Via]; isWorkflow {
					return true
				}
			}
		}
	}
	return false
}

// validateAgentLoops checks that every agent named in a workflow also
// appears in agent_loops (when declared), and warns about agent_loops
// entries that are never used by any workflow/(e)).
func validateAgentLoops(doc *Document) Findings {
	if doc.AgentLoops == nil {
		return nil
	}

	loopAgents := make(map[string]bool)
	for _, a := range doc.AgentLoops.Inner.Agents {
		loopAgents[a] = true
	}
	for _, a := range doc.AgentLoops.Outer.Agents {
		loopAgents[a] = true
	}

	usedAgents := make(map[string]bool)
	var findings Findings
	for name, wf := range doc.Workflows {
		for _, agent := range wf.Agents {
			key := agent.Identity
			if key == "" {
				key = agent.Name
			}
			usedAgents[key] = true
			if len(loopAgents) > 0 && !loopAgents[key] {
				findings = append(findings, errorf(RuleAgentMismatch,
					fmt.Sprintf("/workflows/%s/agents", name),
					"agent %q is used by workflow %q but is not declared in agent_loops", key, name))
			}
		}
	}

	for agent := range loopAgents {
		if !usedAgents[agent] {
			findings = append(findings, warnf(RuleUnusedAgent, "/agent_loops",
				"agent %q is declared in agent_loops but used by no workflow", agent))
		}
	}

	return findings
}

// validateRoleConsistency checks that no command name is assigned to two
// roles with conflicting definitions, single-source-of-truth).
// Two roles may legally share a command only if their agent lists match.
// The `all` role, which may list every command, is not compared.
func validateRoleConsistency(doc *Document) Findings {
	if len(doc.Roles) == 0 {
		return nil
	}

	type commandOwner struct {
		role     string
		agents   []string
	}
	seen := make(map[string]commandOwner)
	var findings Findings

	for roleName, role := range doc.Roles {
		if roleName == "all" {
			continue
		}
		for _, cmd := range role.Commands {
			if prior, ok := seen[cmd]; ok {
				if !stringSlicesEqual(prior.agents, role.Agents) {
					findings = append(findings, errorf(RuleRoleConflict,
						fmt.Sprintf("/roles/%s/commands", roleName),
						"command %q is defined under both role %q and role %q with different agent lists",
						cmd, prior.role, roleName))
				}
				continue
			}
			seen[cmd] = commandOwner{role: roleName, agents: role.Agents}
		}
	}

	return findings
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
