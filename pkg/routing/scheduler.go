package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler reloads the route table on a cron schedule.
//
// Common schedules:
//   - "@every 1m"   - every minute
//   - "*/5 * * * *" - every five minutes
type Scheduler struct {
	spec   string
	source Source
	store  *Store
	cron   *cron.Cron
	logger *slog.Logger

	// OnReload, if set, is called after every scheduled reload attempt.
	OnReload func(*Table, error)

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a Scheduler. The spec is validated by Start.
func NewScheduler(spec string, source Source, store *Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		spec:   spec,
		source: source,
		store:  store,
		cron:   cron.New(),
		logger: logger.With("component", "routing.scheduler"),
	}
}

// Start registers the reload job and starts the cron runner. An empty spec
// disables the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == "" {
		s.logger.Info("route reload schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.runReload(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule route reload: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("route reload scheduler started", "schedule", s.spec, "source", s.source.Name())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runReload(ctx context.Context) {
	t, err := Reload(ctx, s.source, s.store)
	if err != nil {
		s.logger.Error("scheduled route reload failed", "error", err)
	} else {
		s.logger.Debug("scheduled route reload completed", "routes", t.Len())
	}
	if s.OnReload != nil {
		s.OnReload(t, err)
	}
}

// Stop stops the scheduler and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("route reload scheduler stopped")
	}
}

// NextRun returns the next scheduled reload time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
