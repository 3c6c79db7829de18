package workflowconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestValidateSemanticsDefaultDocumentIsClean(t *testing.T) {
	findings := ValidateSemantics(DefaultDocument())
	require.False(t, findings.HasErrors(), "expected the default document to be semantically valid, got: %v", findings.Errors())
}

func TestValidateSemanticsDetectsUnreachableState(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Specified, Orphaned]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Specified
transitions:
  - from: To Do
    to: Specified
    via: specify
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleUnreachableState), "expected %s, got %v", RuleUnreachableState, findings)
}

func TestValidateSemanticsDetectsUndefinedStateReference(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Nonexistent
transitions:
  - from: To Do
    to: Nonexistent
    via: specify
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleUndefinedState), "expected %s, got %v", RuleUndefinedState, findings)
}

func TestValidateSemanticsDetectsUndefinedWorkflowReference(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Specified]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Specified
transitions:
  - from: To Do
    to: Specified
    via: nonexistent_workflow
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleUndefinedWorkflow), "expected %s, got %v", RuleUndefinedWorkflow, findings)
}

func TestValidateSemanticsDetectsCycleWithoutWorkflow(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Blocked]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Blocked
transitions:
  - from: To Do
    to: Blocked
    via: specify
  - from: Blocked
    to: To Do
    via: reset
  - from: To Do
    to: Blocked
    via: reset
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleCycleWithoutExit), "expected %s, got %v", RuleCycleWithoutExit, findings)
}

func TestValidateSemanticsDetectsRoleCommandConflict(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Specified]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Specified
transitions:
  - from: To Do
    to: Specified
    via: specify
roles:
  pm:
    commands: ["/flow:specify"]
    agents: ["pm"]
  architect:
    commands: ["/flow:specify"]
    agents: ["architect"]
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleRoleConflict), "expected %s, got %v", RuleRoleConflict, findings)
}

func TestValidateSemanticsWarnsOnUnusedLoopAgent(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Specified]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Specified
transitions:
  - from: To Do
    to: Specified
    via: specify
agent_loops:
  inner:
    agents: ["@spec-writer", "@unused-agent"]
`)
	findings := ValidateSemantics(doc)
	var found bool
	for _, f := range findings.Warnings() {
		if f.RuleID == RuleUnusedAgent {
			found = true
		}
	}
	assert.True(t, found, "expected a %s warning, got %v", RuleUnusedAgent, findings)
}

func TestValidateSemanticsAllowsSingleStateWithNoTransitions(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [Idle]
`)
	findings := ValidateSemantics(doc)
	assert.False(t, findings.HasErrors(), "a single state with no transitions is a legal boundary document, got: %v", findings.Errors())
}

func TestValidateSemanticsRejectsMultiStateWithNoTransitions(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Done]
`)
	findings := ValidateSemantics(doc)
	assert.True(t, hasRule(findings, RuleNoTransitions), "expected %s, got %v", RuleNoTransitions, findings)
	assert.True(t, hasRule(findings, RuleNoWorkflows), "expected %s, got %v", RuleNoWorkflows, findings)
}

func TestValidateSemanticsAllowsMultipleTerminalStates(t *testing.T) {
	doc := mustDoc(t, `
version: "1.0"
states: [To Do, Done, Abandoned]
workflows:
  specify:
    command: /flow:specify
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Done
  abandon:
    command: /flow:abandon
    agents: ["@spec-writer"]
    input_states: [To Do]
    output_state: Abandoned
transitions:
  - from: To Do
    to: Done
    via: specify
  - from: To Do
    to: Abandoned
    via: abandon
`)
	findings := ValidateSemantics(doc)
	assert.False(t, findings.HasErrors(), "two zero-out-degree terminal states should both be legal, got: %v", findings.Errors())
}

func hasRule(findings Findings, ruleID string) bool {
	for _, f := range findings {
		if f.RuleID == ruleID {
			return true
		}
	}
	return false
}
