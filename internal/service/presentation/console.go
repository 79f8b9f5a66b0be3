package presentation

import (
	"context"
	"fmt"
	"log/slog"

	"trendpulse/internal/domain/trend"
)

// ConsoleReporter writes a finished summary to the status log
type ConsoleReporter struct {
	logger *slog.Logger
}

// NewConsoleReporter creates a reporter writing to logger
func NewConsoleReporter(logger *slog.Logger) *ConsoleReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleReporter{logger: logger}
}

// Publish logs trending topics, then each category that has data
func (r *ConsoleReporter) Publish(ctx context.Context, summary trend.Summary) error {
	r.logger.InfoContext(ctx, "trending topics",
		"name", summary.Name,
		"ticker", summary.Ticker,
		"topics", formatTopics(summary.TrendingTopics),
	)

	for _, ci := range summary.CategoryInsights {
		if len(ci.Topics) == 0 {
			continue
		}
		r.logger.InfoContext(ctx, "category insight",
			"category", ci.Category,
			"topics", formatTopics(ci.Topics),
		)
	}
	return nil
}

// formatTopics renders topics as "keyword: score" with whole-number scores
func formatTopics(topics []trend.TopicScore) []string {
	out := make([]string, 0, len(topics))
	for _, ts := range topics {
		out = append(out, fmt.Sprintf("%s: %.0f", ts.Keyword, ts.Score))
	}
	return out
}
