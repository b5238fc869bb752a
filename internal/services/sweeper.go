package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"r2d2-service/internal/cache"
	"r2d2-service/internal/domain"
	"r2d2-service/internal/metrics"
	"r2d2-service/internal/types"

	"go.uber.org/zap"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, record *domain.EmailRecord) error
}

type EmailLister interface {
	ListEmails(ctx context.Context, status *domain.EmailStatus) ([]domain.EmailRecord, error)
}

// RecordFailure is one record a sweep could not send.
type RecordFailure struct {
	EmailID int64  `json:"email_id"`
	Error   string `json:"error"`
}

type SweepReport struct {
	Attempted   int             `json:"attempted"`
	Sent        int             `json:"sent"`
	RateLimited int             `json:"rate_limited"`
	Failed      int             `json:"failed"`
	Skipped     int             `json:"skipped"`
	Failures    []RecordFailure `json:"failures,omitempty"`
}

// Sweeper walks QUEUED records one at a time and dispatches each of them.
type Sweeper struct {
	lister     EmailLister
	dispatcher Dispatcher
	lock       cache.SweepLock
	log        *zap.SugaredLogger
}

// NewSweeper builds a sweeper. lock may be nil when a single process owns the queue.
func NewSweeper(lister EmailLister, dispatcher Dispatcher, lock cache.SweepLock, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		lister:     lister,
		dispatcher: dispatcher,
		lock:       lock,
		log:        log,
	}
}

// Sweep takes the sweep lock and runs RunOnce over all QUEUED records.
func (s *Sweeper) Sweep(ctx context.Context, trigger string) (SweepReport, error) {
	if s.lock != nil {
		release, ok, err := s.lock.TryLock(ctx)
		if err != nil {
			return SweepReport{}, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			return SweepReport{}, types.ErrSweepInProgress
		}
		defer release()
	}

	metrics.SweepRuns.WithLabelValues(trigger).Inc()
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	return s.RunOnce(ctx, nil)
}

// RunOnce dispatches the given records, or every QUEUED record when records is nil.
// A failing record never stops the remaining ones. A cancelled ctx stops the loop and
// leaves the rest QUEUED.
func (s *Sweeper) RunOnce(ctx context.Context, records []domain.EmailRecord) (SweepReport, error) {
	var report SweepReport

	if records == nil {
		queued := domain.StatusQueued
		loaded, err := s.lister.ListEmails(ctx, &queued)
		if err != nil {
			return report, err
		}
		records = loaded
	}

	s.log.Infow("Sweeping queued emails", "count", len(records))

	for i := range records {
		if ctx.Err() != nil {
			s.log.Infow("Sweep cancelled, remaining emails stay queued", "remaining", len(records)-i)
			break
		}

		record := records[i]
		report.Attempted++
		err := s.dispatchIsolated(ctx, &record)

		var sendFailure *types.SendFailure
		switch {
		case err == nil:
			report.Sent++
		case errors.Is(err, types.ErrRateLimitExceeded):
			report.RateLimited++
		case errors.Is(err, types.ErrAlreadyClaimed):
			report.Skipped++
		case errors.As(err, &sendFailure):
			report.Failed++
			report.Failures = append(report.Failures, RecordFailure{EmailID: record.ID, Error: sendFailure.Err.Error()})
		default:
			report.Failed++
			report.Failures = append(report.Failures, RecordFailure{EmailID: record.ID, Error: err.Error()})
			s.log.Errorw("Failed to dispatch queued email", "emailID", record.ID, "error", err)
		}
	}

	s.log.Infow("Sweep finished",
		"attempted", report.Attempted,
		"sent", report.Sent,
		"rateLimited", report.RateLimited,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *Sweeper) dispatchIsolated(ctx context.Context, record *domain.EmailRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch of email %d panicked: %v", record.ID, r)
		}
	}()
	return s.dispatcher.Dispatch(ctx, record)
}
