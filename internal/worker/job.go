package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"r2d2-service/internal/services"
	"r2d2-service/internal/types"

	"go.uber.org/zap"
)

type QueueSweeper interface {
	Sweep(ctx context.Context, trigger string) (services.SweepReport, error)
}

// Job sweeps the email queue on every tick and whenever it is triggered. Sweeps run one
// after another on the job goroutine.
type Job struct {
	interval time.Duration
	quit     chan struct{}
	trigger  chan struct{}
	sweeper  QueueSweeper
	log      *zap.SugaredLogger
	stopOnce sync.Once
}

func NewJob(interval time.Duration, sweeper QueueSweeper, log *zap.SugaredLogger) *Job {
	return &Job{
		interval: interval,
		quit:     make(chan struct{}),
		trigger:  make(chan struct{}, 1),
		sweeper:  sweeper,
		log:      log,
	}
}

func (j *Job) Start(ctx context.Context, wg *sync.WaitGroup) {
	j.log.Info("Queue sweep job started")
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		// pick up whatever was queued while the job was not running
		j.sweep(ctx, "startup")

		for {
			select {
			case <-ticker.C:
				j.sweep(ctx, "timer")
			case <-j.trigger:
				j.sweep(ctx, "enqueue")
			case <-j.quit:
				j.log.Info("Stopping queue sweep job by toggle")
				return
			case <-ctx.Done():
				j.log.Info("Application shutdown signal received, stopping queue sweep job")
				return
			}
		}
	}()
}

func (j *Job) Stop() {
	j.stopOnce.Do(func() { close(j.quit) })
}

// Trigger asks for a sweep as soon as the current one is done. Triggers coalesce.
func (j *Job) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

func (j *Job) sweep(ctx context.Context, trigger string) {
	report, err := j.sweeper.Sweep(ctx, trigger)
	if errors.Is(err, types.ErrSweepInProgress) {
		j.log.Debugw("Another sweep holds the lock, skipping this run", "trigger", trigger)
		return
	}
	if err != nil {
		j.log.Errorw("Unexpected error while sweeping queued emails", "trigger", trigger, "error", err)
		return
	}
	if report.Attempted > 0 {
		j.log.Infow("Queue sweep done", "trigger", trigger, "sent", report.Sent, "failed", report.Failed, "rateLimited", report.RateLimited)
	}
}
