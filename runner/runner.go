package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/avinashk/batchrun/internal/util"
)

// runState is the one-shot lifecycle of a Runner.
type runState int

const (
	stateNotStarted runState = iota
	stateRunning
	stateCompleted
)

// Options configures a Runner. The zero value is usable: host parallelism,
// no timeout, no fast fail, goroutine workers.
type Options struct {
	// MaxConcurrency bounds how many tasks run at once.
	// Defaults to the host's logical CPU count.
	MaxConcurrency int

	// Name identifies the runner in logs, progress lines and metrics.
	Name string

	// Timeout is the per-task execution ceiling, measured from each task's
	// own dispatch time. Zero means no limit.
	Timeout time.Duration

	// ProgressStats enables a progress notification on every task completion.
	ProgressStats bool

	// FastFail aborts the whole batch on the first task failure or timeout.
	FastFail bool

	// Processes selects isolated-memory workers: every task must be a
	// command payload, executed in its own child process. Forced termination
	// is then guaranteed rather than best-effort.
	Processes bool

	// LogErrors logs each task failure as it happens.
	LogErrors bool

	// Logger receives structured execution logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Reporter, if set, receives the frozen Results snapshot after Run and
	// renders verification reports.
	Reporter Reporter

	// Progress, if set, overrides the default log-based progress line.
	Progress ProgressFunc

	// Metrics, if set, receives per-task execution telemetry.
	Metrics Metrics
}

// Runner owns a batch of independent tasks and drives their concurrent
// execution exactly once. Register tasks with Add/AddCommand, then call Run
// (or Start for background execution). A Runner is not reusable; create a
// new one for the next batch.
type Runner struct {
	opts   Options
	logger *slog.Logger
	pool   *Pool

	mu     sync.Mutex
	state  runState
	recs   []*Record
	labels map[string]struct{}
}

// New creates a Runner from opts, applying defaults for any zero fields.
func New(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	if opts.Name == "" {
		opts.Name = "batchrun"
	}

	return &Runner{
		opts:   opts,
		logger: opts.Logger,
		pool:   newPool(opts.MaxConcurrency, opts.Logger, opts.Metrics),
		labels: make(map[string]struct{}),
	}
}

// Add registers a function task under label. An empty label is replaced with
// an auto-generated "task-<n>". Registration fails once execution has
// started, on a duplicate label, or when the runner uses process workers
// (functions cannot cross address spaces; use AddCommand).
func (r *Runner) Add(label string, fn TaskFunc) error {
	if fn == nil {
		return &UsageError{Op: "add task", Reason: "task function is nil"}
	}
	if r.opts.Processes {
		return &UsageError{
			Op:     "add task",
			Reason: "process workers require command payloads, use AddCommand",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(newFuncRecord(r.resolveLabel(label), fn))
}

// AddCommand registers a command task under label, executed in a child
// process. Command tasks work with both worker strategies; the command's
// trimmed stdout becomes the task result and stderr its trace on failure.
func (r *Runner) AddCommand(label, name string, args ...string) error {
	if name == "" {
		return &UsageError{Op: "add task", Reason: "command name is empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(newCommandRecord(r.resolveLabel(label), name, args))
}

// register appends a record to the registry. Must be called with the mutex
// held.
func (r *Runner) register(rec *Record) error {
	if r.state != stateNotStarted {
		return &UsageError{Op: "add task", Reason: "execution has already started"}
	}
	if _, exists := r.labels[rec.label]; exists {
		return &DuplicateLabelError{Label: rec.label}
	}

	r.labels[rec.label] = struct{}{}
	r.recs = append(r.recs, rec)
	r.logger.Debug("task registered", "label", rec.label, "task", rec.taskName, "total_tasks", len(r.recs))
	return nil
}

// resolveLabel fills in an auto-generated label. Must be called with the
// mutex held.
func (r *Runner) resolveLabel(label string) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("task-%d", len(r.recs))
}

// TaskCount returns the number of registered tasks.
func (r *Runner) TaskCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}

// IsRunning reports whether execution is in progress.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRunning
}

// Run executes all registered tasks and blocks until every one reaches a
// terminal state, then reports the snapshot through the configured Reporter.
// Task failures never surface as Run's error; use Results.Verify or
// Runner.Verify to escalate them. The returned error is non-nil only for
// lifecycle misuse (the runner already ran).
func (r *Runner) Run(ctx context.Context) (Results, error) {
	handle, err := r.Start(ctx)
	if err != nil {
		return Results{}, err
	}
	results := handle.Wait()
	r.report(results)
	return results, nil
}

// Start begins execution in the background and returns a Handle for waiting,
// polling and out-of-band aborting. The runner transitions NotStarted ->
// Running exactly once; a second Start (or Run) fails with a *UsageError.
func (r *Runner) Start(ctx context.Context) (*Handle, error) {
	r.mu.Lock()
	if r.state != stateNotStarted {
		r.mu.Unlock()
		return nil, &UsageError{
			Op:     "run",
			Reason: "runner has already started execution, create a new runner to run again",
		}
	}
	r.state = stateRunning
	recs := make([]*Record, len(r.recs))
	copy(recs, r.recs)
	r.mu.Unlock()

	abortCtx, cancel := context.WithCancelCause(ctx)
	handle := newHandle(cancel)

	go func() {
		results := r.execute(abortCtx, cancel, recs)
		r.mu.Lock()
		r.state = stateCompleted
		r.mu.Unlock()
		cancel(nil)
		handle.finish(results)
	}()

	return handle, nil
}

// execute drives the pool until every record is terminal, applying progress
// reporting and the fast-fail policy, then freezes the result mapping.
func (r *Runner) execute(ctx context.Context, cancel context.CancelCauseFunc, recs []*Record) Results {
	started := time.Now()
	total := len(recs)

	r.logger.Info("starting task execution",
		"runner", r.opts.Name,
		"workers", r.opts.MaxConcurrency,
		"tasks", total,
		"fast_fail", r.opts.FastFail)

	events := make(chan *Record, total)
	go r.pool.Run(ctx, r.opts.Name, recs, r.opts.Timeout, events)

	completed := 0
	aborted := false
	for rec := range events {
		completed++
		snap := rec.snapshot()

		if r.opts.ProgressStats || r.opts.Progress != nil {
			r.reportProgress(completed, total, time.Since(started))
		}

		if !snap.HasFailed {
			continue
		}
		if r.opts.LogErrors || r.opts.FastFail {
			r.logger.Error("task failed",
				"runner", r.opts.Name,
				"label", snap.Label,
				"error", snap.Error)
		}
		// Only genuine failures and per-task timeouts trigger fast fail;
		// records terminated by the abort itself must not re-trigger it.
		// Keyed off status, not the full error text: a failing payload
		// controls its own message, while Terminated records carry only
		// executor-generated text ("timeout: ..." or an abort kind).
		genuine := snap.Status == StatusFailed || strings.HasPrefix(snap.Error, "timeout:")
		if r.opts.FastFail && !aborted && genuine {
			aborted = true
			r.logger.Error("terminating execution", "runner", r.opts.Name, "failed_label", snap.Label)
			cancel(ErrFastFail)
		}
	}

	results := newResults(recs)
	summary := results.Summarize()

	r.logger.Info("task execution completed",
		"runner", r.opts.Name,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"terminated", summary.Terminated,
		"duration", time.Since(started))

	return results
}

// reportProgress notifies the caller's callback, or logs a structured
// progress line when none is configured.
func (r *Runner) reportProgress(completed, total int, elapsed time.Duration) {
	if r.opts.Progress != nil {
		r.opts.Progress(completed, total, elapsed)
		return
	}
	percent := float64(completed) / float64(total) * 100
	r.logger.Info("progress",
		"runner", r.opts.Name,
		"completed", completed,
		"total", total,
		"percent", fmt.Sprintf("%.1f%%", percent),
		"elapsed", util.Elapsed(elapsed))
}

// report renders the finished snapshot through the configured Reporter.
func (r *Runner) report(results Results) {
	if r.opts.Reporter == nil {
		return
	}
	if err := r.opts.Reporter.Report(results); err != nil {
		r.logger.Warn("report rendering failed", "runner", r.opts.Name, "error", err)
	}
}

// Verify inspects the frozen results. When any task failed: with
// raiseException it returns an *AggregateError carrying errorMessage (or a
// default) and the failing labels; otherwise it logs the failure and renders
// the report, returning nil. Verifying before completion is a usage error.
func (r *Runner) Verify(raiseException bool, errorMessage string) error {
	r.mu.Lock()
	state := r.state
	recs := make([]*Record, len(r.recs))
	copy(recs, r.recs)
	r.mu.Unlock()

	if state != stateCompleted {
		return &UsageError{Op: "verify", Reason: "execution has not completed"}
	}

	results := newResults(recs)
	err := results.Verify(errorMessage)
	if err == nil {
		r.report(results)
		return nil
	}
	if raiseException {
		return err
	}
	r.logger.Error("verification failed", "runner", r.opts.Name, "error", err)
	r.report(results)
	return nil
}
