// internal/service/listening/supervisor.go

package listening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/robfig/cron/v3"

	"trendpulse/internal/domain/trend"
)

// Default supervision policy
const (
	DefaultCycleInterval = 72 * time.Hour
	DefaultRetryBackoff  = 60 * time.Second
)

// Cycle runs one monitoring pass
type Cycle interface {
	RunCycle(ctx context.Context) (*trend.Summary, error)
}

// SupervisorConfig contains configuration for the supervisor loop
type SupervisorConfig struct {
	// Schedule decides when the next cycle starts after a success
	Schedule cron.Schedule
	// Backoff decides the wait before retrying a failed cycle
	Backoff backoff.BackOff
	// MaxRetries stops the loop after that many consecutive failures,
	// zero retries forever
	MaxRetries int
}

// Supervisor runs cycles forever, retrying failed ones with backoff
type Supervisor struct {
	cycle  Cycle
	config SupervisorConfig
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewSupervisor creates a supervisor. A nil schedule runs every 72 hours,
// a nil backoff waits a constant 60 seconds.
func NewSupervisor(cycle Cycle, config SupervisorConfig, logger *slog.Logger) *Supervisor {
	if config.Schedule == nil {
		config.Schedule = cron.Every(DefaultCycleInterval)
	}
	if config.Backoff == nil {
		config.Backoff = backoff.NewConstantBackOff(DefaultRetryBackoff)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Supervisor{
		cycle:  cycle,
		config: config,
		now:    time.Now,
		sleep:  waitContext,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled or the retry ceiling is hit
func (s *Supervisor) Run(ctx context.Context) error {
	failures := 0

	for {
		summary, err := s.cycle.RunCycle(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			failures++
			if s.config.MaxRetries > 0 && failures > s.config.MaxRetries {
				return fmt.Errorf("giving up after %d consecutive failed cycles: %w", failures, err)
			}

			delay := s.config.Backoff.NextBackOff()
			if delay == backoff.Stop {
				return fmt.Errorf("backoff policy stopped retries: %w", err)
			}

			s.logger.Error("monitoring cycle failed, retrying", "error", err, "attempt", failures, "retry_in", delay)
			if err := s.sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		failures = 0
		s.config.Backoff.Reset()

		now := s.now()
		next := s.config.Schedule.Next(now)
		s.logger.Info("generated summary",
			"name", summary.Name,
			"ticker", summary.Ticker,
			"next_cycle", next.UTC().Format(time.RFC3339),
		)

		if err := s.sleep(ctx, next.Sub(now)); err != nil {
			return err
		}
	}
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
