// Package maintenance runs SQLite housekeeping once or on a cron schedule.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Target is the store being maintained.
type Target interface {
	Optimize(ctx context.Context) error
	Vacuum(ctx context.Context) error
}

// Config controls what a pass does.
type Config struct {
	Vacuum   bool
	Schedule string
}

// Result describes one completed pass.
type Result struct {
	StartedAt time.Time
	Duration  time.Duration
	Vacuumed  bool
}

// Scheduler runs maintenance passes against a Target.
type Scheduler struct {
	target      Target
	config      Config
	cron        *cron.Cron
	cronEntryID cron.EntryID
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool
	lastRun     *Result
	lastErr     error
}

// NewScheduler creates a scheduler for target.
func NewScheduler(target Target, config Config) *Scheduler {
	return &Scheduler{
		target: target,
		config: config,
		cron:   cron.New(),
	}
}

// RunNow runs one pass synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	log.Info().Bool("vacuum", s.config.Vacuum).Msg("Running database maintenance")

	if err := s.target.Optimize(ctx); err != nil {
		s.record(nil, err)
		return nil, err
	}

	if s.config.Vacuum {
		if err := s.target.Vacuum(ctx); err != nil {
			s.record(nil, err)
			return nil, err
		}
		result.Vacuumed = true
	}

	result.Duration = time.Since(result.StartedAt)
	s.record(result, nil)

	log.Info().Dur("duration", result.Duration).Msg("Database maintenance complete")
	return result, nil
}

// Start registers the schedule and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.config.Schedule == "" {
		return fmt.Errorf("no maintenance schedule configured")
	}

	id, err := s.cron.AddFunc(s.config.Schedule, s.scheduledRun)
	if err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.config.Schedule, err)
	}
	s.cronEntryID = id

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron.Start()
	s.running = true

	log.Info().Str("schedule", s.config.Schedule).Bool("vacuum", s.config.Vacuum).Msg("Maintenance scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	// A pass in flight needs the lock to record its result.
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.cron.Remove(s.cronEntryID)
	s.cronEntryID = 0
	s.mu.Unlock()

	log.Info().Msg("Maintenance scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns the next scheduled run, or the zero time when not scheduled.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cronEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.cronEntryID).Next
}

// LastRun returns the last successful pass and the last error, if any.
func (s *Scheduler) LastRun() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) record(result *Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result != nil {
		s.lastRun = result
	}
	s.lastErr = err
}

func (s *Scheduler) scheduledRun() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()

	if _, err := s.RunNow(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled database maintenance failed")
	}
}
