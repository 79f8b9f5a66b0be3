// internal/adapter/storage/summary_store.go

package storage

import (
	"context"
	"sync"

	"trendpulse/internal/domain/trend"
)

// SummaryStore keeps the most recent cycle summary in memory.
// Each publish replaces the previous one; nothing is kept across restarts.
type SummaryStore struct {
	mu      sync.RWMutex
	latest  trend.Summary
	present bool
}

// NewSummaryStore creates an empty summary store
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{}
}

// Publish replaces the stored summary
func (s *SummaryStore) Publish(ctx context.Context, summary trend.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = summary
	s.present = true
	return nil
}

// Latest returns the stored summary, false before the first cycle completes
func (s *SummaryStore) Latest() (trend.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest, s.present
}
