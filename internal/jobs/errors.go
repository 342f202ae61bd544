package jobs

import "fmt"

// ValidationError reports a malformed run request. Field names the offending
// input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConflictError reports a lifecycle operation that the current job state does
// not permit, such as starting while a run is active.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
