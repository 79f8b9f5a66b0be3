// internal/service/listening/endpoint.go

package listening

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"trendpulse/internal/domain/trend"
	"trendpulse/internal/metrics"
)

// DefaultUserAgent mimics a desktop browser, mirrors reject obvious bots
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// MirrorSelector probes a fixed, ordered list of mirror endpoints
type MirrorSelector struct {
	candidates []string
	client     *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewMirrorSelector creates a selector over the given candidates. The
// client's timeout bounds every probe.
func NewMirrorSelector(candidates []string, client *http.Client, userAgent string, logger *slog.Logger) *MirrorSelector {
	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimRight(strings.TrimSpace(c), "/")
		if c != "" {
			normalized = append(normalized, c)
		}
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MirrorSelector{
		candidates: normalized,
		client:     client,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Candidates returns the normalized candidate list
func (s *MirrorSelector) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

// SelectEndpoint returns the first candidate whose root answers 200.
// Candidates are probed once each, in order.
func (s *MirrorSelector) SelectEndpoint(ctx context.Context) (string, error) {
	for _, candidate := range s.candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := s.probe(ctx, candidate); err != nil {
			metrics.RecordProbe(candidate, "failed")
			s.logger.Warn("mirror probe failed", "endpoint", candidate, "error", err)
			continue
		}

		metrics.RecordProbe(candidate, "ok")
		s.logger.Info("using mirror endpoint", "endpoint", candidate)
		return candidate, nil
	}

	return "", trend.ErrNoEndpointAvailable
}

// probe issues the liveness request against the mirror root
func (s *MirrorSelector) probe(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror returned status code %d", resp.StatusCode)
	}
	return nil
}
