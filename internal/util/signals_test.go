package util

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler(context.Background())

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled before any signal")
	default:
	}

	// Sends SIGTERM to the current process; the handler installed above
	// receives it.
	go func() {
		time.Sleep(10 * time.Millisecond)
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != context.Canceled {
			t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
		}
	case <-time.After(1 * time.Second):
		t.Fatal("context was not cancelled after SIGTERM")
	}
}

func TestSetupSignalHandler_NilParent(t *testing.T) {
	ctx := SetupSignalHandler(nil)
	if ctx == nil {
		t.Fatal("expected a usable context for a nil parent")
	}
	select {
	case <-ctx.Done():
		t.Fatal("context should start uncancelled")
	default:
	}
}

func TestSetupSignalHandler_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := SetupSignalHandler(parent)

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(1 * time.Second):
		t.Fatal("derived context should follow parent cancellation")
	}
}
