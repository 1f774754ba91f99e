package runner

import "time"

// ProgressFunc receives aggregate progress after every task reaches a
// terminal state: how many tasks completed, how many were registered in
// total, and the wall-clock time elapsed since the run started.
type ProgressFunc func(completed, total int, elapsed time.Duration)

// Reporter consumes a frozen Results snapshot once a run has completed.
// Implementations render progress/report output; they hold no run state and
// must treat the snapshot as read-only.
type Reporter interface {
	Report(results Results) error
}

// Metrics receives execution telemetry. Implementations must be safe for
// concurrent use; workers call these from multiple goroutines.
type Metrics interface {
	// TaskStarted is called when a worker begins executing a task.
	TaskStarted(runner string)

	// TaskFinished is called when an executed task reaches a terminal state.
	// Paired with a preceding TaskStarted.
	TaskFinished(runner string, status Status, duration time.Duration)

	// TaskAborted is called when a task is terminated without ever starting
	// (dequeued after the abort signal). No TaskStarted precedes it.
	TaskAborted(runner string)
}

type noopMetrics struct{}

func (noopMetrics) TaskStarted(string)                         {}
func (noopMetrics) TaskFinished(string, Status, time.Duration) {}
func (noopMetrics) TaskAborted(string)                         {}
