// internal/service/listening/fetcher.go

package listening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trendpulse/internal/domain/trend"
	"trendpulse/internal/metrics"
)

// TimestampLayout is the tooltip format of a post's absolute time
const TimestampLayout = "Jan 2, 2006 · 3:04 PM UTC"

// Markup selectors of the mirror timeline page
const (
	entrySelector     = "div.timeline-item"
	timestampSelector = "span.tweet-date a"
	contentSelector   = "div.tweet-content"
	statsSelector     = "div.tweet-stats"
)

// TimelineFetcherConfig contains configuration for the timeline fetcher
type TimelineFetcherConfig struct {
	UserAgent    string
	AccountDelay time.Duration
}

// TimelineFetcher retrieves and parses one account's timeline page
type TimelineFetcher struct {
	selector trend.EndpointSelector
	client   *http.Client
	parser   *StatsParser
	config   TimelineFetcherConfig
	sleep    func(ctx context.Context, d time.Duration)
	logger   *slog.Logger
}

// NewTimelineFetcher creates a new timeline fetcher
func NewTimelineFetcher(
	selector trend.EndpointSelector,
	client *http.Client,
	parser *StatsParser,
	config TimelineFetcherConfig,
	logger *slog.Logger,
) *TimelineFetcher {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = NewStatsParser(logger)
	}

	return &TimelineFetcher{
		selector: selector,
		client:   client,
		parser:   parser,
		config:   config,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// FetchTimeline returns the account's posts created at or after cutoff.
//
// Endpoint selection failures are returned as is and abort the cycle.
// Request failures come back as *trend.AccountFetchError with an empty
// list. Malformed entries are logged and skipped.
func (f *TimelineFetcher) FetchTimeline(ctx context.Context, account trend.AccountConfig, cutoff time.Time) ([]trend.Post, error) {
	endpoint, err := f.selector.SelectEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	// Pause after the request whatever its outcome
	defer f.sleep(ctx, f.config.AccountDelay)

	username := account.Username()
	posts, err := f.fetch(ctx, endpoint, username, cutoff)
	if err != nil {
		metrics.RecordAccountFetch(username, "failed", 0)
		return []trend.Post{}, err
	}

	metrics.RecordAccountFetch(username, "ok", len(posts))
	f.logger.Info("fetched timeline", "account", username, "posts", len(posts), "endpoint", endpoint)
	return posts, nil
}

func (f *TimelineFetcher) fetch(ctx context.Context, endpoint, username string, cutoff time.Time) ([]trend.Post, error) {
	fetchErr := func(status int, err error) error {
		return &trend.AccountFetchError{Username: username, Endpoint: endpoint, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, fetchErr(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchErr(0, fmt.Errorf("failed to connect to mirror: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fetchErr(resp.StatusCode, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fetchErr(resp.StatusCode, fmt.Errorf("failed to parse timeline page: %w", err))
	}

	return f.parseTimeline(doc, username, cutoff), nil
}

// parseTimeline scans every entry; order on the page is not relied on
func (f *TimelineFetcher) parseTimeline(doc *goquery.Document, username string, cutoff time.Time) []trend.Post {
	posts := []trend.Post{}

	doc.Find(entrySelector).Each(func(i int, entry *goquery.Selection) {
		post, err := f.parseEntry(entry, username, i)
		if err != nil {
			var entryErr *trend.EntryParseError
			if errors.As(err, &entryErr) {
				metrics.RecordSkippedEntry(entryErr.Reason)
			}
			f.logger.Debug("skipping timeline entry", "account", username, "error", err)
			return
		}

		if post.CreatedAt().Before(cutoff) {
			return
		}
		posts = append(posts, post)
	})

	return posts
}

func (f *TimelineFetcher) parseEntry(entry *goquery.Selection, username string, index int) (trend.Post, error) {
	entryErr := func(reason string, err error) error {
		return &trend.EntryParseError{Username: username, Index: index, Reason: reason, Err: err}
	}

	title, ok := entry.Find(timestampSelector).First().Attr("title")
	if !ok || strings.TrimSpace(title) == "" {
		return trend.Post{}, entryErr("missing timestamp", nil)
	}
	createdAt, err := ParseTimestamp(title)
	if err != nil {
		return trend.Post{}, entryErr("bad timestamp", err)
	}

	content := entry.Find(contentSelector).First()
	if content.Length() == 0 {
		return trend.Post{}, entryErr("missing content", nil)
	}
	text := collapseWhitespace(content.Text())

	stats := entry.Find(statsSelector).First()
	if stats.Length() == 0 {
		return trend.Post{}, entryErr("missing stats", nil)
	}

	post, err := trend.NewPost(text, createdAt, f.parser.Parse(stats.Text()))
	if err != nil {
		return trend.Post{}, entryErr("invalid post", err)
	}
	return post, nil
}

// ParseTimestamp reads a tooltip time such as "Mar 5, 2024 · 3:04 PM UTC"
func ParseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, collapseWhitespace(raw))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// collapseWhitespace trims and joins runs of whitespace, including NBSP
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
