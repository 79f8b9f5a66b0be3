// internal/domain/trend/model.go

package trend

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultWeight is applied to accounts configured without a weight
const DefaultWeight = 1.0

// EngagementMetrics holds the three engagement counters shown under a post
type EngagementMetrics struct {
	RepostCount int64 `json:"repost_count"`
	ReplyCount  int64 `json:"reply_count"`
	LikeCount   int64 `json:"like_count"`
}

// Total returns the unweighted sum of all counters. The sum saturates at
// math.MaxInt64 instead of wrapping.
func (m EngagementMetrics) Total() int64 {
	total := int64(0)
	for _, v := range []int64{m.RepostCount, m.ReplyCount, m.LikeCount} {
		if v > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += v
	}
	return total
}

// CategoryKeywords is a named, ordered group of keyword phrases
type CategoryKeywords struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// AccountConfig describes one tracked account. It is immutable once built
// with NewAccountConfig.
type AccountConfig struct {
	username   string
	categories []CategoryKeywords
	weight     float64
}

// NewAccountConfig validates and normalizes an account configuration.
// Keywords are lowercased and trimmed, duplicates within a category keep
// their first position, and a zero weight falls back to DefaultWeight.
func NewAccountConfig(username string, categories []CategoryKeywords, weight float64) (AccountConfig, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return AccountConfig{}, fmt.Errorf("account username is required")
	}

	if weight < 0 {
		return AccountConfig{}, fmt.Errorf("account %s: weight must be positive, got %v", username, weight)
	}
	if weight == 0 {
		weight = DefaultWeight
	}

	seenCategories := make(map[string]bool, len(categories))
	normalized := make([]CategoryKeywords, 0, len(categories))

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return AccountConfig{}, fmt.Errorf("account %s: category name is required", username)
		}
		if seenCategories[name] {
			return AccountConfig{}, fmt.Errorf("account %s: duplicate category %q", username, name)
		}
		seenCategories[name] = true

		seenKeywords := make(map[string]bool, len(c.Keywords))
		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return AccountConfig{}, fmt.Errorf("account %s: empty keyword in category %q", username, name)
			}
			if seenKeywords[kw] {
				continue
			}
			seenKeywords[kw] = true
			keywords = append(keywords, kw)
		}

		normalized = append(normalized, CategoryKeywords{Name: name, Keywords: keywords})
	}

	return AccountConfig{
		username:   username,
		categories: normalized,
		weight:     weight,
	}, nil
}

// Username returns the account handle without a leading @
func (a AccountConfig) Username() string {
	return a.username
}

// Weight returns the engagement multiplier
func (a AccountConfig) Weight() float64 {
	return a.weight
}

// Categories returns a copy of the ordered keyword categories
func (a AccountConfig) Categories() []CategoryKeywords {
	out := make([]CategoryKeywords, len(a.categories))
	for i, c := range a.categories {
		out[i] = CategoryKeywords{
			Name:     c.Name,
			Keywords: append([]string(nil), c.Keywords...),
		}
	}
	return out
}

// MarshalJSON exposes the account for the read API
func (a AccountConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Username   string             `json:"username"`
		Weight     float64            `json:"weight"`
		Categories []CategoryKeywords `json:"categories"`
	}{
		Username:   a.username,
		Weight:     a.weight,
		Categories: a.Categories(),
	})
}

// Post is a single parsed timeline entry
type Post struct {
	text      string
	createdAt time.Time
	metrics   EngagementMetrics
}

// NewPost validates a parsed entry and stores its timestamp in UTC
func NewPost(text string, createdAt time.Time, metrics EngagementMetrics) (Post, error) {
	if strings.TrimSpace(text) == "" {
		return Post{}, fmt.Errorf("post text is empty")
	}
	if createdAt.IsZero() {
		return Post{}, fmt.Errorf("post timestamp is required")
	}
	if metrics.RepostCount < 0 || metrics.ReplyCount < 0 || metrics.LikeCount < 0 {
		return Post{}, fmt.Errorf("post metrics must be non-negative: %+v", metrics)
	}

	return Post{
		text:      text,
		createdAt: createdAt.UTC(),
		metrics:   metrics,
	}, nil
}

// Text returns the post body with its display case
func (p Post) Text() string {
	return p.text
}

// CreatedAt returns the post time in UTC
func (p Post) CreatedAt() time.Time {
	return p.createdAt
}

// Metrics returns the engagement counters
func (p Post) Metrics() EngagementMetrics {
	return p.metrics
}

// Snapshot maps a username to the posts fetched for it in one cycle
type Snapshot map[string][]Post

// TopicScore is a ranked (keyword, score) pair
type TopicScore struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// CategoryInsight holds the ranked keywords of one category
type CategoryInsight struct {
	Category string
	Topics   []TopicScore
}

// CategoryInsights keeps categories in the order they were configured
type CategoryInsights []CategoryInsight

// Get returns the ranked topics for a category
func (ci CategoryInsights) Get(category string) ([]TopicScore, bool) {
	for _, c := range ci {
		if c.Category == category {
			return c.Topics, true
		}
	}
	return nil, false
}

// MarshalJSON writes an object whose keys keep category order
func (ci CategoryInsights) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range ci {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		topics := c.Topics
		if topics == nil {
			topics = []TopicScore{}
		}
		value, err := json.Marshal(topics)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON reads the object form, preserving key order
func (ci *CategoryInsights) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category insights: expected object")
	}

	out := CategoryInsights{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("category insights: expected string key")
		}
		var topics []TopicScore
		if err := dec.Decode(&topics); err != nil {
			return fmt.Errorf("category insights %q: %w", category, err)
		}
		out = append(out, CategoryInsight{Category: category, Topics: topics})
	}

	*ci = out
	return nil
}

// Insights is the analyzer output for one cycle
type Insights struct {
	Categories      CategoryInsights
	Trending        []TopicScore
	PostCount       int
	TotalEngagement float64
}

// Sentiment is a static placeholder, sentiment is never computed
const Sentiment = "neutral"

// Summary is the result object handed to presentation collaborators
type Summary struct {
	CycleID          string           `json:"cycle_id"`
	Name             string           `json:"name"`
	Ticker           string           `json:"ticker"`
	TrendingTopics   []TopicScore     `json:"trending_topics"`
	CategoryInsights CategoryInsights `json:"category_insights"`
	Sentiment        string           `json:"sentiment"`
	PostCount        int              `json:"post_count"`
	TotalEngagement  float64          `json:"total_engagement"`
	Timestamp        string           `json:"timestamp"`
}
