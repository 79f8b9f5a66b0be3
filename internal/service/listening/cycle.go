// internal/service/listening/cycle.go

package listening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trendpulse/internal/domain/trend"
	"trendpulse/internal/metrics"
)

// DefaultLookback is how far back posts are considered
const DefaultLookback = 24 * time.Hour

// CycleRunnerConfig contains configuration for the cycle runner
type CycleRunnerConfig struct {
	Lookback time.Duration
}

// CycleRunner performs one fetch, analyze and publish pass
type CycleRunner struct {
	fetcher    trend.TimelineFetcher
	analyzer   trend.Analyzer
	namer      trend.Namer
	publishers []trend.Publisher
	accounts   []trend.AccountConfig
	config     CycleRunnerConfig
	now        func() time.Time
	logger     *slog.Logger
}

// NewCycleRunner creates a new cycle runner over a fixed account set
func NewCycleRunner(
	fetcher trend.TimelineFetcher,
	analyzer trend.Analyzer,
	namer trend.Namer,
	publishers []trend.Publisher,
	accounts []trend.AccountConfig,
	config CycleRunnerConfig,
	logger *slog.Logger,
) *CycleRunner {
	if config.Lookback <= 0 {
		config.Lookback = DefaultLookback
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CycleRunner{
		fetcher:    fetcher,
		analyzer:   analyzer,
		namer:      namer,
		publishers: publishers,
		accounts:   append([]trend.AccountConfig(nil), accounts...),
		config:     config,
		now:        time.Now,
		logger:     logger,
	}
}

// Accounts returns the tracked accounts
func (r *CycleRunner) Accounts() []trend.AccountConfig {
	return append([]trend.AccountConfig(nil), r.accounts...)
}

// RunCycle fetches every account in order, analyzes the snapshot and
// publishes the summary. Account failures are absorbed; endpoint selection
// failures and publisher failures abort the cycle. Publishers are called in
// order and stop at the first failure.
func (r *CycleRunner) RunCycle(ctx context.Context) (*trend.Summary, error) {
	start := r.now()
	cycleID := uuid.New().String()
	logger := r.logger.With("cycle_id", cycleID)

	summary, err := r.runCycle(ctx, cycleID, start, logger)

	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.RecordCycle(status, r.now().Sub(start).Seconds())

	return summary, err
}

func (r *CycleRunner) runCycle(ctx context.Context, cycleID string, start time.Time, logger *slog.Logger) (*trend.Summary, error) {
	cutoff := start.Add(-r.config.Lookback).UTC()
	logger.Info("starting monitoring cycle", "accounts", len(r.accounts), "cutoff", cutoff)

	// The snapshot lives only for this cycle
	snapshot := make(trend.Snapshot, len(r.accounts))

	for _, acc := range r.accounts {
		posts, err := r.fetcher.FetchTimeline(ctx, acc, cutoff)
		if err != nil {
			var fetchErr *trend.AccountFetchError
			if errors.As(err, &fetchErr) {
				logger.Warn("account fetch failed", "account", acc.Username(), "error", err)
				snapshot[acc.Username()] = nil
				continue
			}
			return nil, fmt.Errorf("fetch timeline for %s: %w", acc.Username(), err)
		}
		snapshot[acc.Username()] = posts
	}
	logger.Info("timelines fetched")

	insights := r.analyzer.Analyze(snapshot, r.accounts)
	logger.Info("analysis completed", "posts", insights.PostCount, "trending", len(insights.Trending))

	name, ticker := r.namer.ProjectName()
	summary := trend.Summary{
		CycleID:          cycleID,
		Name:             name,
		Ticker:           ticker,
		TrendingTopics:   insights.Trending,
		CategoryInsights: insights.Categories,
		Sentiment:        trend.Sentiment,
		PostCount:        insights.PostCount,
		TotalEngagement:  insights.TotalEngagement,
		Timestamp:        r.now().UTC().Format(time.RFC3339),
	}

	// The first failure stops the remaining publishers
	for _, p := range r.publishers {
		if err := p.Publish(ctx, summary); err != nil {
			return nil, fmt.Errorf("publish summary: %w", err)
		}
	}

	metrics.SetTopicScores(summary)
	logger.Info("monitoring cycle completed", "name", summary.Name, "ticker", summary.Ticker)
	return &summary, nil
}
