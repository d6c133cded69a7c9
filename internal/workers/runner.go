package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"giveaway-settlement/internal/common/metrics"

	"go.uber.org/zap"
)

// Job is one periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner ticks every job on its own goroutine. A failing tick is logged and retried on the
// next tick.
type Runner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    []Job
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewRunner(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics, jobs ...Job) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    jobs,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

func (r *Runner) Start() {
	r.logger.Info("Starting background workers", zap.Int("jobs", len(r.jobs)))

	for _, job := range r.jobs {
		r.wg.Add(1)
		go func(job Job) {
			defer r.wg.Done()
			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					r.RunOnce(job)
				case <-r.ctx.Done():
					return
				}
			}
		}(job)
	}
}

// Stop cancels in-flight jobs and waits for every loop to exit.
func (r *Runner) Stop() {
	r.logger.Info("Stopping background workers")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("Background workers stopped")
}

// RunOnce executes one tick of job, recovering panics.
func (r *Runner) RunOnce(job Job) (err error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, rec)
		}
		r.metrics.JobRun(job.Name, err)
		if err != nil {
			r.logger.Error("Job failed", zap.String("job", job.Name), zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		r.logger.Debug("Job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	}()

	return job.Run(ctx)
}
