package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pool runs task records with bounded concurrency. It owns a fixed set of
// worker goroutines fed from a buffered queue; submission never busy-spins.
//
// Workers that dequeue a record after the run context was cancelled mark it
// Terminated without ever invoking its payload, so an aborted batch produces
// no partial side effects from tasks that had not started.
type Pool struct {
	workers int
	logger  *slog.Logger
	exec    *Executor
	metrics Metrics
}

func newPool(workers int, logger *slog.Logger, metrics Metrics) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Pool{
		workers: workers,
		logger:  logger,
		exec:    newExecutor(logger),
		metrics: metrics,
	}
}

// Run executes all records, sending each one to events exactly once when it
// reaches a terminal state. It blocks until every record is terminal and
// every worker has exited, then closes events.
func (p *Pool) Run(ctx context.Context, name string, recs []*Record, timeout time.Duration, events chan<- *Record) {
	defer close(events)

	if len(recs) == 0 {
		return
	}

	// Buffer size = record count so workers never block on either channel.
	taskCh := make(chan *Record, len(recs))
	for _, rec := range recs {
		taskCh <- rec
	}
	close(taskCh)

	workerCount := p.workers
	if workerCount > len(recs) {
		workerCount = len(recs)
	}

	p.logger.Debug("starting workers", "count", workerCount, "tasks", len(recs))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, name, i, taskCh, timeout, events, &wg)
	}
	wg.Wait()
}

// worker drains the task queue, running one record at a time. Each record is
// owned exclusively by the worker that dequeued it until it turns terminal.
func (p *Pool) worker(
	ctx context.Context,
	name string,
	workerID int,
	taskCh <-chan *Record,
	timeout time.Duration,
	events chan<- *Record,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	p.logger.Debug("worker started", "worker_id", workerID)

	for rec := range taskCh {
		if ctx.Err() != nil {
			// Abort signal observed before dispatch: the payload is never
			// invoked and the record goes Pending -> Terminated directly.
			// Never-started tasks must not touch the running gauge.
			rec.terminate(abortReason(ctx), time.Now())
			p.metrics.TaskAborted(name)
			events <- rec
			continue
		}

		p.metrics.TaskStarted(name)
		start := time.Now()
		p.exec.Run(ctx, rec, timeout)
		p.metrics.TaskFinished(name, rec.Status(), time.Since(start))
		events <- rec
	}

	p.logger.Debug("worker finished", "worker_id", workerID)
}
