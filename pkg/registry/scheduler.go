package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule. The manager uses it to rescan the
// schema directory on file systems where change notifications are unreliable
// (network mounts, some container volumes).
type Scheduler struct {
	schedule string
	job      func()
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for a standard five-field cron expression.
func NewScheduler(schedule string, job func(), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(),
		logger:   logger.With("component", "registry.scheduler"),
	}
}

// Start schedules the job. The scheduler stops by itself when ctx is done.
//
// Common cron expressions:
//   - "*/5 * * * *"  - Every five minutes
//   - "0 * * * *"    - Hourly
//
// An empty schedule does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("rescan schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.job); err != nil {
		return fmt.Errorf("failed to schedule rescan: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("rescan scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("rescan scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
