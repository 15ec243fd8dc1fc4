package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery registers fn to run every interval. A run that is still in progress
// when the next one is due causes that tick to be skipped.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (uuid.UUID, error) {
	if interval <= 0 {
		return uuid.Nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create periodic job %s: %w", name, err)
	}
	slog.Info("Scheduled periodic job", logfields.JobName(name), slog.Duration("interval", interval))
	return job.ID(), nil
}

// Reschedule changes the interval of an existing job.
func (s *Scheduler) Reschedule(id uuid.UUID, name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	_, err := s.scheduler.Update(id,
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule job %s: %w", name, err)
	}
	slog.Info("Rescheduled periodic job", logfields.JobName(name), slog.Duration("interval", interval))
	return nil
}

// RunNow triggers the job immediately, outside its schedule.
func (s *Scheduler) RunNow(id uuid.UUID) error {
	for _, j := range s.scheduler.Jobs() {
		if j.ID() == id {
			return j.RunNow()
		}
	}
	return fmt.Errorf("job %s not found", id)
}
