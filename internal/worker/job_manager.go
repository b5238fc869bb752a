package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type JobManager struct {
	currentJob *Job
	mu         sync.Mutex
	sweeper    QueueSweeper
	interval   time.Duration
	wg         *sync.WaitGroup
	log        *zap.SugaredLogger
}

func NewJobManager(sweeper QueueSweeper, interval time.Duration, wg *sync.WaitGroup, log *zap.SugaredLogger) *JobManager {
	return &JobManager{
		sweeper:  sweeper,
		interval: interval,
		wg:       wg,
		log:      log,
	}
}

// Starts a new job
func (m *JobManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentJob != nil {
		return errors.New("job is already running")
	}

	m.currentJob = NewJob(m.interval, m.sweeper, m.log)
	m.currentJob.Start(ctx, m.wg)
	return nil
}

// Stops the active job
func (m *JobManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentJob == nil {
		return errors.New("actively running job not found")
	}

	m.currentJob.Stop()
	m.currentJob = nil
	return nil
}

func (m *JobManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentJob != nil
}

// Trigger nudges the running job. Without a running job the records wait in QUEUED
// until the job is started again or the cron endpoint is called.
func (m *JobManager) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentJob == nil {
		m.log.Debug("Sweep trigger ignored, job is stopped")
		return
	}
	m.currentJob.Trigger()
}
