package backlog

import "fmt"

// RuleID is a machine-readable error code in the E3xx backlog namespace.
type RuleID string

const (
	RuleTaskNotFound      RuleID = "E300_TASK_NOT_FOUND"
	RuleACIndexOutOfRange RuleID = "E301_AC_INDEX_OUT_OF_RANGE"
	RuleBacklogLocked     RuleID = "E302_BACKLOG_LOCKED"
	RuleIDCollision       RuleID = "E303_ID_COLLISION"
	RuleInvalidFilename   RuleID = "E304_INVALID_FILENAME"
)

// Error is a backlog-store failure carrying a machine-readable RuleID,
// mirroring the schema validator's Finding shape for consistency across
// components.
type Error struct {
	Rule    RuleID
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func newError(rule RuleID, format string, args ...any) *Error {
	return &Error{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
