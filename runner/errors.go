package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Abort causes passed to the run context's cancel function. Executors use
// them to label why an in-flight or never-started task was terminated.
var (
	// ErrFastFail is the cancellation cause when a sibling task failed and
	// the fast-fail policy aborted the rest of the batch.
	ErrFastFail = errors.New("fast fail")

	// ErrAborted is the cancellation cause for an out-of-band Handle.Abort.
	ErrAborted = errors.New("execution aborted")
)

// DuplicateLabelError is returned by Add/AddCommand when the label is already
// registered on the runner.
type DuplicateLabelError struct {
	Label string
}

// Error implements the error interface
func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate task label: %q already exists", e.Label)
}

// UsageError indicates the runner was used outside its one-shot lifecycle,
// for example registering tasks after the run started or calling Run twice.
type UsageError struct {
	Op     string
	Reason string
}

// Error implements the error interface
func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// AggregateError is returned by Verify when one or more tasks failed.
// It carries the failing labels and one error per failing task.
type AggregateError struct {
	Message string
	Labels  []string
	Errors  []error
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString(fmt.Sprintf(": %d task(s) failed", len(e.Labels)))
	if len(e.Labels) > 0 {
		sb.WriteString(" [" + strings.Join(e.Labels, ", ") + "]")
	}
	for _, err := range e.Errors {
		sb.WriteString("\n  " + err.Error())
	}
	return sb.String()
}

// Unwrap returns the per-task errors for errors.Is/As compatibility
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// IsDuplicateLabel checks if an error is a duplicate-label registration error
func IsDuplicateLabel(err error) bool {
	var dup *DuplicateLabelError
	return errors.As(err, &dup)
}

// IsUsageError checks if an error is a lifecycle usage error
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}
