package runner

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/avinashk/batchrun/internal/util"
)

// Status is the lifecycle state of a task record.
type Status string

const (
	// StatusPending means the task is registered but not yet dispatched
	StatusPending Status = "Pending"
	// StatusRunning means an executor is currently running the task
	StatusRunning Status = "Running"
	// StatusSuccessful means the task returned normally
	StatusSuccessful Status = "Successful"
	// StatusFailed means the task returned an error or panicked
	StatusFailed Status = "Failed"
	// StatusTerminated means the task was forcibly ended (timeout or abort)
	StatusTerminated Status = "Terminated"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	return s == StatusSuccessful || s == StatusFailed || s == StatusTerminated
}

// Failed reports whether s counts as a failure (Failed or Terminated).
func (s Status) Failed() bool {
	return s == StatusFailed || s == StatusTerminated
}

// TaskFunc is the unit of work captured at registration time. Arguments are
// bound via closure; the context is cancelled when the run is aborted.
type TaskFunc func(ctx context.Context) (any, error)

// commandSpec is a serializable payload executed in a separate process.
type commandSpec struct {
	name string
	args []string
}

// Record holds one registered task and its mutable execution state.
// The executor that accepted the record is its only writer until the record
// reaches a terminal state; afterwards it is read-only.
type Record struct {
	label    string
	taskName string

	// exactly one of fn, cmd is set
	fn  TaskFunc
	cmd *commandSpec

	mu        sync.Mutex
	status    Status
	terminal  bool
	startTime time.Time
	endTime   time.Time
	value     any
	errText   string
	trace     string
}

func newFuncRecord(label string, fn TaskFunc) *Record {
	return &Record{
		label:    label,
		taskName: funcName(fn),
		fn:       fn,
		status:   StatusPending,
	}
}

func newCommandRecord(label, name string, args []string) *Record {
	return &Record{
		label:    label,
		taskName: name,
		cmd:      &commandSpec{name: name, args: args},
		status:   StatusPending,
	}
}

// Label returns the record's unique label.
func (r *Record) Label() string { return r.label }

// TaskName returns the human-readable task name (function or command name).
func (r *Record) TaskName() string { return r.taskName }

// Status returns the record's current status.
func (r *Record) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// markRunning transitions Pending -> Running and stamps the start time.
func (r *Record) markRunning(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPending {
		return
	}
	r.status = StatusRunning
	r.startTime = now
}

// finishSuccess claims the terminal transition with a successful outcome.
// Returns false if the record already reached a terminal state (for example a
// timed-out goroutine completing after it was abandoned); the outcome is then
// discarded.
func (r *Record) finishSuccess(value any, end time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal {
		return false
	}
	r.terminal = true
	r.status = StatusSuccessful
	r.value = value
	r.endTime = end
	r.fixTimes()
	return true
}

// finishFailure claims the terminal transition with a failed outcome.
func (r *Record) finishFailure(errText, trace string, end time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal {
		return false
	}
	r.terminal = true
	r.status = StatusFailed
	r.errText = errText
	r.trace = trace
	r.endTime = end
	r.fixTimes()
	return true
}

// terminate claims the terminal transition with a Terminated outcome. It is
// valid from both Running (timeout, abort of in-flight work) and Pending
// (abort before the task was ever dispatched).
func (r *Record) terminate(errText string, end time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal {
		return false
	}
	r.terminal = true
	r.status = StatusTerminated
	r.errText = errText
	r.endTime = end
	r.fixTimes()
	return true
}

// fixTimes guarantees end >= start even for records that never started.
// Must be called with the mutex held.
func (r *Record) fixTimes() {
	if r.startTime.IsZero() {
		r.startTime = r.endTime
	}
	if r.endTime.Before(r.startTime) {
		r.endTime = r.startTime
	}
}

// snapshot freezes the record into an immutable Result. Only meaningful once
// the record is terminal.
func (r *Record) snapshot() Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := r.endTime.Sub(r.startTime)
	return Result{
		Label:           r.label,
		TaskName:        r.taskName,
		Status:          r.status,
		StartTime:       r.startTime,
		EndTime:         r.endTime,
		Duration:        duration,
		DurationSeconds: util.RoundSeconds(duration),
		DurationDisplay: util.DurationDisplay(duration),
		Value:           r.value,
		Error:           r.errText,
		Trace:           r.trace,
		HasFailed:       r.status.Failed(),
	}
}

// funcName derives a task name from the function pointer, trimming the
// package path the way a caller would write it.
func funcName(fn TaskFunc) string {
	if fn == nil {
		return "<nil>"
	}
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if full == "" {
		return fmt.Sprintf("%T", fn)
	}
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		full = full[idx+1:]
	}
	return full
}
