package runner

import (
	"context"

	"github.com/google/uuid"
)

// Handle tracks a background run started with Runner.Start.
type Handle struct {
	id      string
	cancel  context.CancelCauseFunc
	done    chan struct{}
	results Results
}

func newHandle(cancel context.CancelCauseFunc) *Handle {
	return &Handle{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// finish publishes the frozen results. Called exactly once by the
// coordinator goroutine.
func (h *Handle) finish(results Results) {
	h.results = results
	close(h.done)
}

// ID returns the unique identifier of this run.
func (h *Handle) ID() string { return h.id }

// Done returns a channel closed when every task has reached a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run completes and returns the frozen results.
func (h *Handle) Wait() Results {
	<-h.done
	return h.results
}

// Poll returns the results and true if the run has completed, or a zero
// snapshot and false while tasks are still running.
func (h *Handle) Poll() (Results, bool) {
	select {
	case <-h.done:
		return h.results, true
	default:
		return Results{}, false
	}
}

// Abort cancels the run out of band: in-flight tasks are terminated
// (best-effort for goroutine workers, guaranteed for process workers) and
// never-started tasks are marked Terminated without running. It blocks until
// every record is terminal and returns the frozen results.
func (h *Handle) Abort() Results {
	h.cancel(ErrAborted)
	return h.Wait()
}
