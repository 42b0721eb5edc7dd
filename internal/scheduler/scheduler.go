package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"group-lead-scraper-go/internal/config"
	"group-lead-scraper-go/internal/metrics"
	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/pipeline"
)

// ErrBatchInProgress is returned when a batch is requested while another one runs
var ErrBatchInProgress = errors.New("a batch is already running")

// BatchRunner runs one pass over a list of groups
type BatchRunner interface {
	RunBatch(ctx context.Context, groups []models.Group) pipeline.BatchReport
}

// Scheduler manages the periodic batch runs
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	runner    BatchRunner
	metrics   *metrics.Metrics
	groups    []models.Group
	last      *pipeline.BatchReport
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
	batchMu   sync.Mutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, runner BatchRunner, groups []models.Group, metrics *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:    cron.New(),
		config:  cfg,
		runner:  runner,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.SetGroups(groups)
	return s
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if s.config.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	// A stopped scheduler has a cancelled context and a stopped cron
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
		s.cron = cron.New()
	}

	schedule := fmt.Sprintf("@every %dm", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.runScheduledBatch)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the scheduler and cancels an in-flight batch
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	c := s.cron
	s.mu.Unlock()

	// The batch takes mu to record its report, so wait without holding it
	ctx := c.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// SetGroups replaces the group list used by the next batch
func (s *Scheduler) SetGroups(groups []models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append([]models.Group(nil), groups...)
	if s.metrics != nil {
		s.metrics.ConfiguredGroups.Set(float64(len(groups)))
	}
}

// Groups returns a copy of the current group list
func (s *Scheduler) Groups() []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]models.Group, len(s.groups))
	copy(groups, s.groups)
	return groups
}

// LastReport returns the report of the most recent finished batch, or nil
func (s *Scheduler) LastReport() *pipeline.BatchReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) runScheduledBatch() {
	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping batch")
		return
	}
	ctx := s.ctx
	s.mu.RUnlock()

	if _, err := s.runBatch(ctx); err != nil {
		logrus.Warnf("Skipping scheduled batch: %v", err)
	}
}

// runBatch runs a batch unless another one holds the batch lock
func (s *Scheduler) runBatch(ctx context.Context) (pipeline.BatchReport, error) {
	if !s.batchMu.TryLock() {
		return pipeline.BatchReport{}, ErrBatchInProgress
	}
	defer s.batchMu.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	logrus.Info("Starting batch cycle")
	report := s.runner.RunBatch(ctx, s.Groups())

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	logrus.Infof("Batch cycle completed in %v", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// RunOnce runs one batch now (for manual triggering).
// It fails with ErrBatchInProgress instead of queueing behind a running batch.
func (s *Scheduler) RunOnce(ctx context.Context) (pipeline.BatchReport, error) {
	logrus.Info("Running batch once")
	return s.runBatch(ctx)
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last scheduled run
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Interval returns the configured interval in minutes
func (s *Scheduler) Interval() int {
	return s.config.IntervalMinutes
}

// Wait waits for an in-flight batch to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
