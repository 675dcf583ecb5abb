package enums

import "fmt"

// CompletionStatus maps to the completion_status enum in Postgres. It is owned
// by the enrollment roster; the engine only ever reads it.
type CompletionStatus string

const (
	CompletionStatusEnrolled  CompletionStatus = "enrolled"
	CompletionStatusCompleted CompletionStatus = "completed"
	CompletionStatusDropped   CompletionStatus = "dropped"
)

var validCompletionStatuses = []CompletionStatus{
	CompletionStatusEnrolled,
	CompletionStatusCompleted,
	CompletionStatusDropped,
}

// String implements fmt.Stringer.
func (c CompletionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical completion_status enum.
func (c CompletionStatus) IsValid() bool {
	for _, candidate := range validCompletionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCompletionStatus converts raw input into CompletionStatus.
func ParseCompletionStatus(value string) (CompletionStatus, error) {
	for _, candidate := range validCompletionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid completion status %q", value)
}
