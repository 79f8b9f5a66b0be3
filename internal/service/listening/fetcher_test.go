package listening

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/trend"
)

type fixedSelector struct {
	endpoint string
	err      error
	calls    int
}

func (s *fixedSelector) SelectEndpoint(ctx context.Context) (string, error) {
	s.calls++
	return s.endpoint, s.err
}

const timelinePage = `<html><body><div class="timeline">
<div class="timeline-item">
  <span class="tweet-date"><a href="/alice/status/1" title="Mar 5, 2024 · 3:04 PM UTC">2h</a></span>
  <div class="tweet-content">Shipping   <b>AI</b> agents
    on Solana</div>
  <div class="tweet-stats"><span>12</span> <span>3</span> <span>1.5K</span></div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 4, 2024 · 3:04 PM UTC">1d</a></span>
  <div class="tweet-content">exactly at the cutoff</div>
  <div class="tweet-stats">1 2 3</div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 4, 2024 · 3:03 PM UTC">1d</a></span>
  <div class="tweet-content">too old</div>
  <div class="tweet-stats">9 9 9</div>
</div>
<div class="timeline-item">
  <div class="tweet-content">no timestamp</div>
  <div class="tweet-stats">1 1 1</div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="yesterday">1d</a></span>
  <div class="tweet-content">bad timestamp</div>
  <div class="tweet-stats">1 1 1</div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 5, 2024 · 1:00 PM UTC">4h</a></span>
  <div class="tweet-stats">1 1 1</div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 5, 2024 · 2:00 PM UTC">3h</a></span>
  <div class="tweet-content">pinned without stats</div>
</div>
</div></body></html>`

func newTestFetcher(selector trend.EndpointSelector, client *http.Client) (*TimelineFetcher, *[]time.Duration) {
	fetcher := NewTimelineFetcher(selector, client, nil, TimelineFetcherConfig{AccountDelay: 2 * time.Second}, nil)

	var slept []time.Duration
	fetcher.sleep = func(ctx context.Context, d time.Duration) {
		slept = append(slept, d)
	}
	return fetcher, &slept
}

func mustAccount(t *testing.T, username string) trend.AccountConfig {
	t.Helper()
	acc, err := trend.NewAccountConfig(username, []trend.CategoryKeywords{{Name: "AI", Keywords: []string{"ai"}}}, 1)
	require.NoError(t, err)
	return acc
}

func TestTimelineFetcher_ParsesTimeline(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, timelinePage)
	}))
	defer srv.Close()

	selector := &fixedSelector{endpoint: srv.URL}
	fetcher, slept := newTestFetcher(selector, srv.Client())

	cutoff := time.Date(2024, time.March, 4, 15, 4, 0, 0, time.UTC)
	posts, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "alice"), cutoff)
	require.NoError(t, err)

	assert.Equal(t, "/alice", gotPath)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, 1, selector.calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)

	require.Len(t, posts, 2)

	assert.Equal(t, "Shipping AI agents on Solana", posts[0].Text())
	assert.Equal(t, time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC), posts[0].CreatedAt())
	assert.Equal(t, trend.EngagementMetrics{RepostCount: 12, ReplyCount: 3, LikeCount: 1500}, posts[0].Metrics())

	// The cutoff itself is inclusive
	assert.Equal(t, "exactly at the cutoff", posts[1].Text())
	assert.Equal(t, cutoff, posts[1].CreatedAt())
}

func TestTimelineFetcher_ScansPastOlderEntries(t *testing.T) {
	page := `<html><body><div class="timeline">
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 1, 2024 · 9:00 AM UTC">4d</a></span>
  <div class="tweet-content">retweeted from last week</div>
  <div class="tweet-stats">5 5 5</div>
</div>
<div class="timeline-item">
  <span class="tweet-date"><a title="Mar 5, 2024 · 9:00 AM UTC">1h</a></span>
  <div class="tweet-content">fresh post below an old one</div>
  <div class="tweet-stats">1 2 3</div>
</div>
</div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	fetcher, _ := newTestFetcher(&fixedSelector{endpoint: srv.URL}, srv.Client())

	cutoff := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	posts, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "alice"), cutoff)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "fresh post below an old one", posts[0].Text())
}

func TestTimelineFetcher_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="timeline"></div></body></html>`)
	}))
	defer srv.Close()

	fetcher, _ := newTestFetcher(&fixedSelector{endpoint: srv.URL}, srv.Client())

	posts, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "alice"), time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestTimelineFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher, slept := newTestFetcher(&fixedSelector{endpoint: srv.URL}, srv.Client())

	posts, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "ghost"), time.Time{})
	require.Error(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	var fetchErr *trend.AccountFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "ghost", fetchErr.Username)
	assert.Equal(t, srv.URL, fetchErr.Endpoint)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)

	// The delay applies after failed requests too
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
}

func TestTimelineFetcher_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	fetcher, _ := newTestFetcher(&fixedSelector{endpoint: endpoint}, &http.Client{Timeout: time.Second})

	_, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "alice"), time.Time{})

	var fetchErr *trend.AccountFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestTimelineFetcher_SelectionFailure(t *testing.T) {
	fetcher, slept := newTestFetcher(&fixedSelector{err: trend.ErrNoEndpointAvailable}, http.DefaultClient)

	posts, err := fetcher.FetchTimeline(context.Background(), mustAccount(t, "alice"), time.Time{})
	assert.Nil(t, posts)
	assert.ErrorIs(t, err, trend.ErrNoEndpointAvailable)

	var fetchErr *trend.AccountFetchError
	assert.NotErrorAs(t, err, &fetchErr)
	assert.Empty(t, *slept)
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("  Dec 31, 2023 ·  11:59 PM UTC ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC), got)

	_, err = ParseTimestamp("2023-12-31T23:59:00Z")
	assert.Error(t, err)
}
