// Package metrics provides Prometheus metrics for the trend monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"trendpulse/internal/domain/trend"
)

const namespace = "trendpulse"

var (
	// CyclesTotal counts finished monitoring cycles by outcome.
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of monitoring cycles",
		},
		[]string{"status"},
	)

	// CycleDuration measures how long a full fetch-analyze-publish pass takes.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of monitoring cycles in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// EndpointProbes counts mirror liveness probes.
	EndpointProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_probes_total",
			Help:      "Total number of mirror liveness probes",
		},
		[]string{"endpoint", "status"},
	)

	// AccountFetches counts timeline requests per account.
	AccountFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_fetches_total",
			Help:      "Total number of account timeline fetches",
		},
		[]string{"account", "status"},
	)

	// PostsFetched counts posts kept after cutoff filtering.
	PostsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_fetched_total",
			Help:      "Total number of posts kept from account timelines",
		},
		[]string{"account"},
	)

	// EntriesSkipped counts timeline entries that could not be used.
	EntriesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Total number of skipped timeline entries",
		},
		[]string{"reason"},
	)

	// TopicScore exposes the ranked scores of the latest cycle.
	TopicScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "topic_score",
			Help:      "Weighted engagement score of ranked topics in the latest cycle",
		},
		[]string{"scope", "keyword"},
	)
)

// RecordCycle records a finished cycle.
func RecordCycle(status string, seconds float64) {
	CyclesTotal.WithLabelValues(status).Inc()
	CycleDuration.Observe(seconds)
}

// RecordProbe records a mirror probe outcome.
func RecordProbe(endpoint, status string) {
	EndpointProbes.WithLabelValues(endpoint, status).Inc()
}

// RecordAccountFetch records a timeline fetch and the posts it kept.
func RecordAccountFetch(account, status string, posts int) {
	AccountFetches.WithLabelValues(account, status).Inc()
	if posts > 0 {
		PostsFetched.WithLabelValues(account).Add(float64(posts))
	}
}

// RecordSkippedEntry records a skipped timeline entry.
func RecordSkippedEntry(reason string) {
	EntriesSkipped.WithLabelValues(reason).Inc()
}

// SetTopicScores replaces the topic gauges with the given summary.
// Scope is "overall" for trending topics and the category name otherwise.
func SetTopicScores(summary trend.Summary) {
	TopicScore.Reset()
	for _, ts := range summary.TrendingTopics {
		TopicScore.WithLabelValues("overall", ts.Keyword).Set(ts.Score)
	}
	for _, ci := range summary.CategoryInsights {
		for _, ts := range ci.Topics {
			TopicScore.WithLabelValues(ci.Category, ts.Keyword).Set(ts.Score)
		}
	}
}
