package listening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/trend"
)

type fetchResult struct {
	posts []trend.Post
	err   error
}

type fakeFetcher struct {
	results map[string]fetchResult
	calls   []string
	cutoffs []time.Time
}

func (f *fakeFetcher) FetchTimeline(ctx context.Context, account trend.AccountConfig, cutoff time.Time) ([]trend.Post, error) {
	f.calls = append(f.calls, account.Username())
	f.cutoffs = append(f.cutoffs, cutoff)
	r := f.results[account.Username()]
	return r.posts, r.err
}

type fakeNamer struct{}

func (fakeNamer) ProjectName() (string, string) {
	return "NeuralLabs", "$NEU"
}

type fakePublisher struct {
	summaries []trend.Summary
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, summary trend.Summary) error {
	p.summaries = append(p.summaries, summary)
	return p.err
}

var cycleNow = time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

func newTestRunner(fetcher trend.TimelineFetcher, publishers []trend.Publisher, accounts []trend.AccountConfig) *CycleRunner {
	runner := NewCycleRunner(fetcher, NewAnalyzer(AnalyzerConfig{}), fakeNamer{}, publishers, accounts, CycleRunnerConfig{}, nil)
	runner.now = func() time.Time { return cycleNow }
	return runner
}

func TestCycleRunner_AbsorbsAccountFailures(t *testing.T) {
	ai := trend.CategoryKeywords{Name: "AI", Keywords: []string{"ai"}}
	accounts := []trend.AccountConfig{
		account(t, "alice", 1.0, ai),
		account(t, "bob", 1.0, ai),
		account(t, "carol", 2.0, ai),
	}
	fetcher := &fakeFetcher{results: map[string]fetchResult{
		"alice": {posts: []trend.Post{post(t, "AI everywhere", 1, 2, 3)}},
		"bob":   {posts: []trend.Post{}, err: &trend.AccountFetchError{Username: "bob", StatusCode: 500}},
		"carol": {posts: []trend.Post{post(t, "more ai", 1, 1, 1)}},
	}}
	publisher := &fakePublisher{}

	summary, err := newTestRunner(fetcher, []trend.Publisher{publisher}, accounts).RunCycle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, []string{"alice", "bob", "carol"}, fetcher.calls)
	for _, cutoff := range fetcher.cutoffs {
		assert.Equal(t, cycleNow.Add(-24*time.Hour), cutoff)
	}

	assert.NotEmpty(t, summary.CycleID)
	assert.Equal(t, "NeuralLabs", summary.Name)
	assert.Equal(t, "$NEU", summary.Ticker)
	assert.Equal(t, trend.Sentiment, summary.Sentiment)
	assert.Equal(t, "2024-03-05T12:00:00Z", summary.Timestamp)
	assert.Equal(t, []trend.TopicScore{{Keyword: "ai", Score: 12}}, summary.TrendingTopics)
	assert.Equal(t, 2, summary.PostCount)

	require.Len(t, publisher.summaries, 1)
	assert.Equal(t, *summary, publisher.summaries[0])
}

func TestCycleRunner_AbortsWhenNoEndpoint(t *testing.T) {
	ai := trend.CategoryKeywords{Name: "AI", Keywords: []string{"ai"}}
	accounts := []trend.AccountConfig{account(t, "alice", 1.0, ai), account(t, "bob", 1.0, ai)}
	fetcher := &fakeFetcher{results: map[string]fetchResult{
		"alice": {err: trend.ErrNoEndpointAvailable},
	}}
	publisher := &fakePublisher{}

	summary, err := newTestRunner(fetcher, []trend.Publisher{publisher}, accounts).RunCycle(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, trend.ErrNoEndpointAvailable)
	assert.Equal(t, []string{"alice"}, fetcher.calls)
	assert.Empty(t, publisher.summaries)
}

func TestCycleRunner_PublisherFailureFailsCycle(t *testing.T) {
	accounts := []trend.AccountConfig{account(t, "alice", 1.0, trend.CategoryKeywords{Name: "AI", Keywords: []string{"ai"}})}
	fetcher := &fakeFetcher{results: map[string]fetchResult{"alice": {posts: []trend.Post{}}}}

	broken := &fakePublisher{err: errors.New("bus down")}
	healthy := &fakePublisher{}

	summary, err := newTestRunner(fetcher, []trend.Publisher{broken, healthy}, accounts).RunCycle(context.Background())
	assert.Nil(t, summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus down")

	// Publishers after the failing one never see the failed cycle
	assert.Len(t, broken.summaries, 1)
	assert.Empty(t, healthy.summaries)
}

func TestCycleRunner_AccountsIsACopy(t *testing.T) {
	accounts := []trend.AccountConfig{account(t, "alice", 1.0)}
	runner := newTestRunner(&fakeFetcher{}, nil, accounts)

	got := runner.Accounts()
	got[0] = account(t, "mallory", 1.0)
	assert.Equal(t, "alice", runner.Accounts()[0].Username())
}
