package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

// outcome is what a payload produced: a value, or a failure with diagnostics.
type outcome struct {
	value   any
	failed  bool
	errText string
	trace   string
}

// Executor runs a single task record to a terminal state. It never returns
// control with the record still Running: on normal completion the record
// becomes Successful or Failed, on timeout or abort it becomes Terminated.
type Executor struct {
	logger *slog.Logger
}

func newExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

// Run executes rec with the given per-task timeout. The timeout clock starts
// here, at dispatch time, not at run start. A timeout of zero means no limit.
//
// Function payloads run on a goroutine in this process; if they overrun the
// timeout the goroutine is abandoned and its eventual outcome discarded. The
// abandoned work may keep consuming resources until it returns on its own.
// Command payloads run in a child process and are killed, which is guaranteed.
func (e *Executor) Run(ctx context.Context, rec *Record, timeout time.Duration) {
	start := time.Now()
	rec.markRunning(start)

	e.logger.Debug("executing task", "label", rec.label, "task", rec.taskName)

	// Buffered so an abandoned payload's send never blocks.
	done := make(chan outcome, 1)

	var kill func()
	if rec.cmd != nil {
		var err error
		kill, err = e.startCommand(rec, done)
		if err != nil {
			rec.finishFailure(err.Error(), "", time.Now())
			e.logger.Warn("task failed to start", "label", rec.label, "error", err)
			return
		}
	} else {
		go runFunc(ctx, rec.fn, done)
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case out := <-done:
		end := time.Now()
		if out.failed {
			rec.finishFailure(out.errText, out.trace, end)
			e.logger.Debug("task failed", "label", rec.label, "error", out.errText, "duration", end.Sub(start))
		} else {
			rec.finishSuccess(out.value, end)
			e.logger.Debug("task succeeded", "label", rec.label, "duration", end.Sub(start))
		}

	case <-timeoutCh:
		if kill != nil {
			kill()
		}
		rec.terminate(fmt.Sprintf("timeout: exceeded %s", timeout), start.Add(timeout))
		e.logger.Warn("task timed out", "label", rec.label, "timeout", timeout)

	case <-ctx.Done():
		if kill != nil {
			kill()
		}
		rec.terminate(abortReason(ctx), time.Now())
		e.logger.Debug("task aborted", "label", rec.label, "reason", context.Cause(ctx))
	}
}

// runFunc invokes a function payload, converting error returns and panics
// into failed outcomes.
func runFunc(ctx context.Context, fn TaskFunc, done chan<- outcome) {
	defer func() {
		if r := recover(); r != nil {
			done <- outcome{
				failed:  true,
				errText: fmt.Sprintf("panic: %v", r),
				trace:   string(debug.Stack()),
			}
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		done <- outcome{failed: true, errText: err.Error()}
		return
	}
	done <- outcome{value: value}
}

// startCommand launches a command payload in a child process. It returns a
// kill function used for timeout/abort termination; the process outcome is
// delivered on done by a waiter goroutine.
func (e *Executor) startCommand(rec *Record, done chan<- outcome) (func(), error) {
	cmd := exec.Command(rec.cmd.name, rec.cmd.args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command %q: %w", rec.cmd.name, err)
	}

	go func() {
		err := cmd.Wait()
		if err != nil {
			done <- outcome{
				failed:  true,
				errText: fmt.Sprintf("%s: %v", rec.cmd.name, err),
				trace:   stderr.String(),
			}
			return
		}
		done <- outcome{value: strings.TrimRight(stdout.String(), "\n")}
	}()

	return func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}, nil
}

// abortReason labels a termination caused by run-context cancellation.
// Fast-fail aborts are deliberately distinct from timeout errors.
func abortReason(ctx context.Context) string {
	cause := context.Cause(ctx)
	switch {
	case cause == nil, cause == context.Canceled:
		return "aborted: run cancelled"
	case cause == context.DeadlineExceeded:
		return "aborted: run deadline exceeded"
	default:
		return fmt.Sprintf("aborted: %v", cause)
	}
}
