package workflowconfig

import "fmt"

// Severity classifies a Finding. Only Error findings block Model construction.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single structural or semantic problem reported by the
// validator, carrying enough context for both a human remediation message
// and a machine-readable rule_id.
type Finding struct {
	Severity Severity
	Path     string
	Message  string
	RuleID   string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s (%s): %s", f.Severity, f.RuleID, f.Path, f.Message)
}

// Findings is an ordered list of Finding values.
type Findings []Finding

// HasErrors reports whether any finding is error-severity.
func (fs Findings) HasErrors() bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity subset.
func (fs Findings) Errors() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warning-severity subset.
func (fs Findings) Warnings() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

func errorf(ruleID, path, format string, args ...any) Finding {
	return Finding{Severity: SeverityError, RuleID: ruleID, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warnf(ruleID, path, format string, args ...any) Finding {
	return Finding{Severity: SeverityWarning, RuleID: ruleID, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Rule IDs, grouped by category.
const (
	// Configuration errors (E0xx)
	RuleFileNotFound = "E001_FILE_NOT_FOUND"
	RuleYAMLParse    = "E002_YAML_PARSE"
	RuleSchemaError  = "E003_SCHEMA_VIOLATION"
	RuleNoStates     = "E100_NO_STATES"

	// Semantic errors (E1xx)
	RuleUnreachableState  = "E101_UNREACHABLE_STATE"
	RuleUndefinedState    = "E103_UNDEFINED_STATE_REFERENCE"
	RuleUndefinedWorkflow = "E104_UNDEFINED_WORKFLOW_REFERENCE"
	RuleCycleWithoutExit  = "E105_CYCLE_WITHOUT_WORKFLOW"
	RuleAgentMismatch     = "E106_AGENT_LOOP_MISMATCH"
	RuleRoleConflict      = "E107_ROLE_COMMAND_CONFLICT"
	RuleNoWorkflows       = "E108_NO_WORKFLOWS"
	RuleNoTransitions     = "E109_NO_TRANSITIONS"

	// Warnings (W1xx)
	RuleUnusedAgent = "W101_AGENT_LOOP_UNUSED"
)
