package runner

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecutor_Success(t *testing.T) {
	exec := newExecutor(nil)
	rec := newFuncRecord("ok", func(ctx context.Context) (any, error) {
		return 16, nil
	})

	exec.Run(context.Background(), rec, 0)

	snap := rec.snapshot()
	if snap.Status != StatusSuccessful {
		t.Fatalf("status = %s, want %s", snap.Status, StatusSuccessful)
	}
	if snap.Value != 16 {
		t.Errorf("value = %v, want 16", snap.Value)
	}
	if snap.Error != "" {
		t.Errorf("unexpected error: %q", snap.Error)
	}
}

func TestExecutor_Failure(t *testing.T) {
	exec := newExecutor(nil)
	rec := newFuncRecord("fail", func(ctx context.Context) (any, error) {
		return nil, errors.New("intentional failure")
	})

	exec.Run(context.Background(), rec, 0)

	snap := rec.snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
	if !strings.Contains(snap.Error, "intentional failure") {
		t.Errorf("error = %q, want it to contain the task's message", snap.Error)
	}
	if snap.Value != nil {
		t.Errorf("failed task leaked a value: %v", snap.Value)
	}
}

func TestExecutor_PanicIsCaptured(t *testing.T) {
	exec := newExecutor(nil)
	rec := newFuncRecord("panics", func(ctx context.Context) (any, error) {
		var zero int
		return 10 / zero, nil
	})

	exec.Run(context.Background(), rec, 0)

	snap := rec.snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
	if !strings.Contains(snap.Error, "divide by zero") {
		t.Errorf("error = %q, want a divide-by-zero kind", snap.Error)
	}
	if snap.Trace == "" {
		t.Error("panic should record a stack trace")
	}
}

func TestExecutor_Timeout(t *testing.T) {
	exec := newExecutor(nil)
	rec := newFuncRecord("slow", func(ctx context.Context) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return "done", nil
	})

	timeout := 50 * time.Millisecond
	startedAt := time.Now()
	exec.Run(context.Background(), rec, timeout)
	waited := time.Since(startedAt)

	snap := rec.snapshot()
	if snap.Status != StatusTerminated {
		t.Fatalf("status = %s, want %s", snap.Status, StatusTerminated)
	}
	if !strings.HasPrefix(snap.Error, "timeout:") {
		t.Errorf("error = %q, want timeout kind", snap.Error)
	}
	// End time is pinned to start + timeout.
	if snap.Duration != timeout {
		t.Errorf("duration = %v, want exactly %v", snap.Duration, timeout)
	}
	if waited >= 500*time.Millisecond {
		t.Errorf("executor waited %v, should return within bounded overhead of the timeout", waited)
	}
}

func TestExecutor_AbortInFlight(t *testing.T) {
	exec := newExecutor(nil)
	rec := newFuncRecord("aborted", func(ctx context.Context) (any, error) {
		time.Sleep(2 * time.Second)
		return "done", nil
	})

	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel(ErrFastFail)
	}()

	exec.Run(ctx, rec, 0)

	snap := rec.snapshot()
	if snap.Status != StatusTerminated {
		t.Fatalf("status = %s, want %s", snap.Status, StatusTerminated)
	}
	if snap.Error != "aborted: fast fail" {
		t.Errorf("error = %q, want %q", snap.Error, "aborted: fast fail")
	}
}

func TestExecutor_Command(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command tests require a POSIX shell")
	}

	tests := []struct {
		name       string
		command    string
		args       []string
		timeout    time.Duration
		wantStatus Status
		wantValue  any
		wantErr    string
	}{
		{
			name:       "stdout becomes the result",
			command:    "echo",
			args:       []string{"hello"},
			wantStatus: StatusSuccessful,
			wantValue:  "hello",
		},
		{
			name:       "non-zero exit is a failure",
			command:    "sh",
			args:       []string{"-c", "exit 3"},
			wantStatus: StatusFailed,
			wantErr:    "exit status 3",
		},
		{
			name:       "missing binary is a failure",
			command:    "definitely-not-a-real-binary",
			wantStatus: StatusFailed,
			wantErr:    "failed to start",
		},
		{
			name:       "overrunning command is killed",
			command:    "sleep",
			args:       []string{"5"},
			timeout:    50 * time.Millisecond,
			wantStatus: StatusTerminated,
			wantErr:    "timeout:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newExecutor(nil)
			rec := newCommandRecord(tt.name, tt.command, tt.args)

			startedAt := time.Now()
			exec.Run(context.Background(), rec, tt.timeout)

			if tt.wantStatus == StatusTerminated && time.Since(startedAt) > 2*time.Second {
				t.Errorf("kill took %v, want bounded overhead of the timeout", time.Since(startedAt))
			}

			snap := rec.snapshot()
			if snap.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s (error: %q)", snap.Status, tt.wantStatus, snap.Error)
			}
			if tt.wantValue != nil && snap.Value != tt.wantValue {
				t.Errorf("value = %v, want %v", snap.Value, tt.wantValue)
			}
			if tt.wantErr != "" && !strings.Contains(snap.Error, tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", snap.Error, tt.wantErr)
			}
		})
	}
}

func TestExecutor_CommandStderrInTrace(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command tests require a POSIX shell")
	}

	exec := newExecutor(nil)
	rec := newCommandRecord("stderr", "sh", []string{"-c", "echo details >&2; exit 1"})

	exec.Run(context.Background(), rec, 0)

	snap := rec.snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", snap.Status, StatusFailed)
	}
	if !strings.Contains(snap.Trace, "details") {
		t.Errorf("trace = %q, want captured stderr", snap.Trace)
	}
}

func TestAbortReason(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"fast fail", ErrFastFail, "aborted: fast fail"},
		{"explicit abort", ErrAborted, "aborted: execution aborted"},
		{"plain cancel", nil, "aborted: run cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancelCause(context.Background())
			cancel(tt.cause)

			if got := abortReason(ctx); got != tt.want {
				t.Errorf("abortReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAbortReason_DistinctFromTimeout(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(ErrFastFail)

	reason := abortReason(ctx)
	if strings.HasPrefix(reason, "timeout:") {
		t.Errorf("fast-fail abort %q must not look like a timeout", reason)
	}
	if !strings.HasPrefix(reason, "aborted:") {
		t.Errorf("fast-fail abort %q should carry the abort kind", reason)
	}
}
