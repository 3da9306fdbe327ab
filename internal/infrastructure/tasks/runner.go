package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/altlend/decisioning/internal/domain/port"
)

// Handler processes one recompute job.
type Handler func(ctx context.Context, job port.RecomputeJob) error

// Runner implements port.TaskRunner with a bounded in-process queue and a
// fixed worker pool. Submit never blocks the request path: when the queue is
// full the job is dropped with a warning, since a missed background refresh
// is recoverable and a stalled decision request is not.
type Runner struct {
	queue   chan port.RecomputeJob
	handler Handler
	workers int
	logger  *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewRunner creates a runner with the given queue size and worker count.
func NewRunner(queueSize, workers int, handler Handler, logger *slog.Logger) *Runner {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		queue:   make(chan port.RecomputeJob, queueSize),
		handler: handler,
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool. Safe to call once; workers run until Stop.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.work(ctx)
		}
	})
}

// Stop drains in-flight work and shuts the pool down.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		close(r.queue)
		r.wg.Wait()
	})
}

// Submit implements port.TaskRunner.
func (r *Runner) Submit(job port.RecomputeJob) {
	select {
	case r.queue <- job:
	default:
		r.logger.Warn("task queue full, dropping recompute job",
			"borrower_id", job.BorrowerID,
			"feature_set", job.FeatureSet,
		)
	}
}

func (r *Runner) work(ctx context.Context) {
	defer r.wg.Done()
	for job := range r.queue {
		r.run(ctx, job)
	}
}

// run isolates one job so a panicking handler cannot take the worker down.
func (r *Runner) run(ctx context.Context, job port.RecomputeJob) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("recompute job panicked",
				"borrower_id", job.BorrowerID,
				"panic", rec,
			)
		}
	}()
	if err := r.handler(ctx, job); err != nil {
		r.logger.Warn("recompute job failed",
			"borrower_id", job.BorrowerID,
			"error", err,
		)
	}
}
