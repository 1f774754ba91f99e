// Package runner executes a batch of independent tasks with bounded
// parallelism, per-task timeouts, structured result capture, and an optional
// fast-fail abort policy.
//
// A Runner is a one-shot coordinator: register tasks, run them exactly once,
// consume the frozen Results snapshot.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{MaxConcurrency: 4})
//
//	r.Add("square", func(ctx context.Context) (any, error) {
//	    return 4 * 4, nil
//	})
//	r.AddCommand("lint", "golangci-lint", "run")
//
//	results, err := r.Run(context.Background())
//	if err != nil {
//	    // lifecycle misuse, not a task failure
//	}
//	if err := results.Verify(""); err != nil {
//	    // one or more tasks failed
//	}
//
// # Worker Strategies
//
// By default tasks run on goroutines sharing the caller's address space.
// That is cheap and needs no serialization, but a task that overruns its
// timeout can only be abandoned, not killed: the engine marks it Terminated
// and discards its eventual outcome, while the goroutine may keep consuming
// resources until it returns on its own.
//
// With Options.Processes each task runs in its own child process. Tasks must
// then be command payloads (AddCommand); forced termination on timeout or
// abort is guaranteed.
//
// # Timeouts and Fast Fail
//
// Options.Timeout is an independent ceiling per task, measured from the
// task's own dispatch time. With Options.FastFail the first failure or
// timeout aborts the batch: in-flight tasks are terminated and tasks that
// never started are marked Terminated without their payload ever being
// invoked.
//
// # Background Execution
//
// Start returns a Handle for non-blocking use:
//
//	h, err := r.Start(ctx)
//	...
//	if results, ok := h.Poll(); ok { ... }
//	results := h.Abort() // or h.Wait()
//
// # Concurrency Guarantees
//
// The engine guarantees:
//   - At most MaxConcurrency tasks are Running at any time
//   - Exactly one terminal transition per task; late outcomes are discarded
//   - Task records have a single writer until terminal, read-only after
//   - The abort signal is one-way and idempotent
//   - Results, once produced, are never mutated
package runner
