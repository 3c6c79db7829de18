// Package dispatcher implements the Command Dispatcher & Role Router: the
// central brain that turns a command invocation into a validated execution
// plan, cross-checking the Workflow Model against the Backlog Store.
package dispatcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/flowspec-dev/flowspec/internal/backlog"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

// Options carries caller-supplied flags for one dispatch call.
type Options struct {
	Approved bool
}

// Transition describes the state change a dispatch would (or did) perform.
type Transition struct {
	From string
	To   string
	Via  string
}

// PlannedAgent is one agent engaged by the plan, with its instructions
// populated if the workflow carries an orchestrator action.
type PlannedAgent struct {
	Name         string
	Identity     string
	Instructions string
}

// Plan is the prepared execution plan returned alongside a successful
// dispatch.
type Plan struct {
	ExecutionMode string
	Agents        []PlannedAgent
	OutputArtifacts []workflowconfig.Artifact
}

// Status is the outcome of a dispatch call.
type Status string

const (
	StatusOK Status = "OK"
)

// Result is the return value of Dispatch.
type Result struct {
	Status     Status
	Plan       Plan
	Transition Transition

	task       backlog.Task
	workflow   workflowconfig.Workflow
}

// Dispatcher wires the Workflow Model and the Backlog Store together to
// resolve, validate, and plan command invocations.
type Dispatcher struct {
	model *workflowconfig.Model
	store *backlog.Store
}

// New constructs a Dispatcher over an already-built Model and Store. Callers
// typically obtain model via workflowconfig.LoadCached.
func New(model *workflowconfig.Model, store *backlog.Store) *Dispatcher {
	return &Dispatcher{model: model, store: store}
}

// Dispatch runs the eight-step resolution algorithm: resolve workflow,
// resolve or create the task, verify role and state legality, gate on human
// approval, and prepare an execution plan.
func (d *Dispatcher) Dispatch(commandToken, taskID, invokerRole string, opts Options) (Result, error) {
	wf, ok := d.model.GetWorkflow(commandToken)
	if !ok {
		return Result{}, &Error{Rule: RuleUnknownCommand, Message: fmt.Sprintf("no workflow registered for command %q", commandToken)}
	}

	task, err := d.resolveTask(taskID, wf)
	if err != nil {
		return Result{}, err
	}

	if err := verifyRole(commandToken, invokerRole, d.model); err != nil {
		return Result{}, err
	}

	if !contains(wf.InputStates, task.Status) {
		return Result{}, stateError(task.Status, commandToken, wf, d.model)
	}

	if wf.RequiresHumanApproval && !opts.Approved {
		return Result{}, &Error{
			Rule:    RuleApprovalRequired,
			Message: fmt.Sprintf("command %q requires human approval before it runs", commandToken),
		}
	}

	plan := preparePlan(wf, task, d.model)

	return Result{
		Status: StatusOK,
		Plan:   plan,
		Transition: Transition{
			From: task.Status,
			To:   wf.OutputState,
			Via:  wf.Name,
		},
		task:     task,
		workflow: wf,
	}, nil
}

func (d *Dispatcher) resolveTask(taskID string, wf workflowconfig.Workflow) (backlog.Task, error) {
	t, err := d.store.Get(taskID)
	if err != nil {
		return backlog.Task{}, fmt.Errorf("resolving task %s: %w", taskID, err)
	}
	if t != nil {
		return *t, nil
	}

	if !wf.CreatesBacklogTasks {
		return backlog.Task{}, &Error{Rule: RuleTaskNotFound, Message: fmt.Sprintf("no such task: %s", taskID)}
	}

	initial := ""
	if len(d.model.States()) > 0 {
		initial = d.model.States()[0].Name
	}
	created, err := d.store.Create(taskID, backlog.CreateParams{Status: initial})
	if err != nil {
		return backlog.Task{}, fmt.Errorf("creating placeholder task: %w", err)
	}
	return created, nil
}

// verifyRole checks the namespace of a role-namespaced command (e.g.
// "/pm:assess") against invokerRole. Commands whose namespace does not name
// a declared role (e.g. "/flow:specify") are not role-namespaced and always
// pass.
func verifyRole(commandToken, invokerRole string, model *workflowconfig.Model) error {
	namespace := commandNamespace(commandToken)
	if namespace == "" {
		return nil
	}
	if _, isRole := model.Document().Roles[namespace]; !isRole {
		return nil
	}
	if invokerRole == namespace || invokerRole == "all" {
		return nil
	}
	return &Error{
		Rule:    RuleRoleMismatch,
		Message: fmt.Sprintf("command %q is namespaced to role %q, invoker is %q", commandToken, namespace, invokerRole),
	}
}

func commandNamespace(commandToken string) string {
	token := strings.TrimPrefix(commandToken, "/")
	idx := strings.Index(token, ":")
	if idx == -1 {
		return ""
	}
	return token[:idx]
}

func stateError(currentStatus, commandToken string, wf workflowconfig.Workflow, model *workflowconfig.Model) *Error {
	suggestion := ""
	if suggested := findWorkflowFor(currentStatus, wf.InputStates, model); suggested != "" {
		suggestion = fmt.Sprintf("task is in `%s`; the `%s` command requires `%s`. Run `%s` first.",
			currentStatus, commandToken, wf.InputStates, suggested)
	} else {
		suggestion = fmt.Sprintf("task is in `%s`; the `%s` command requires `%s`.",
			currentStatus, commandToken, wf.InputStates)
	}
	return &Error{
		Rule:       RuleInvalidStateTransition,
		Message:    fmt.Sprintf("task is in state %q, command %q requires one of %v", currentStatus, commandToken, wf.InputStates),
		Suggestion: suggestion,
	}
}

// findWorkflowFor suggests a command that would move a task from
// currentStatus into one of the required input states, if any such
// transition exists.
func findWorkflowFor(currentStatus string, requiredStates []string, model *workflowconfig.Model) string {
	for _, cmd := range model.LegalCommands(currentStatus) {
		wf, ok := model.GetWorkflow(cmd)
		if !ok {
			continue
		}
		if contains(requiredStates, wf.OutputState) {
			return cmd
		}
	}
	return ""
}

func preparePlan(wf workflowconfig.Workflow, task backlog.Task, model *workflowconfig.Model) Plan {
	plan := Plan{ExecutionMode: wf.ExecutionMode}

	for _, a := range wf.Agents {
		agent := PlannedAgent{Name: a.Name, Identity: a.Identity}
		if wf.OrchestratorAction != nil {
			agent.Instructions = wf.OrchestratorAction.PopulateTemplate(task.ID)
		}
		plan.Agents = append(plan.Agents, agent)
	}

	plan.OutputArtifacts = matchingTransitionArtifacts(wf, task.Status, model)

	return plan
}

// matchingTransitionArtifacts collects the declared output_artifacts of every
// transition this workflow fires from the task's current status.
func matchingTransitionArtifacts(wf workflowconfig.Workflow, fromState string, model *workflowconfig.Model) []workflowconfig.Artifact {
	var artifacts []workflowconfig.Artifact
	for _, t := range model.TransitionsFrom(fromState) {
		if t.Via == wf.Name {
			artifacts = append(artifacts, t.OutputArtifacts...)
		}
	}
	return artifacts
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// nowUTC stamps audit entries with an ISO8601 UTC timestamp.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
