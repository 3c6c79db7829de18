package dispatcher

import (
	"fmt"
	"path/filepath"

	"github.com/flowspec-dev/flowspec/internal/backlog"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

// Outcome is what the caller reports happened during execution of a
// dispatched plan, used by CommitTransition to validate artifacts and
// finalize the task's state.
type Outcome struct{}

// CommitTransition is the post-execution hook: it validates declared output artifacts exist, writes the task's
// new status, and appends an audit note. It must be called with the same
// Result Dispatch returned; Dispatch itself never changes a task's status
// (it only creates a placeholder task when the workflow allows it).
func (d *Dispatcher) CommitTransition(result Result, outcome Outcome) (backlog.Task, error) {
	if err := checkArtifacts(result.Plan.OutputArtifacts); err != nil {
		return backlog.Task{}, err
	}

	audit := fmt.Sprintf("— transitioned %s → %s via %s — %s",
		result.Transition.From, result.Transition.To, result.Transition.Via, nowUTC())

	outputState := result.Transition.To
	updated, err := d.store.Edit(result.task.ID, backlog.Mutations{
		Status:    &outputState,
		AuditNote: audit,
	})
	if err != nil {
		return backlog.Task{}, fmt.Errorf("committing transition for %s: %w", result.task.ID, err)
	}

	return updated, nil
}

// checkArtifacts validates each declared output artifact exists at its
// declared path, supporting glob patterns and the required flag.
func checkArtifacts(artifacts []workflowconfig.Artifact) error {
	for _, a := range artifacts {
		matches, err := filepath.Glob(a.Path)
		if err != nil {
			return fmt.Errorf("invalid artifact glob %q: %w", a.Path, err)
		}
		if len(matches) == 0 && a.Required {
			return &Error{
				Rule:    RuleOutputArtifactMissing,
				Message: fmt.Sprintf("required output artifact not found: %s", a.Path),
			}
		}
	}
	return nil
}
