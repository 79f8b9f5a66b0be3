package listening

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/domain/trend"
)

func TestStatsParser_Parse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want trend.EngagementMetrics
	}{
		{"plain numbers", "12 34 56", trend.EngagementMetrics{RepostCount: 12, ReplyCount: 34, LikeCount: 56}},
		{"suffixes", "1.2K 3M 5", trend.EngagementMetrics{RepostCount: 1200, ReplyCount: 3_000_000, LikeCount: 5}},
		{"lowercase suffixes", "2k 1.5m 0", trend.EngagementMetrics{RepostCount: 2000, ReplyCount: 1_500_000, LikeCount: 0}},
		{"rounding", "1.2346K 0.5 2.5M", trend.EngagementMetrics{RepostCount: 1235, ReplyCount: 1, LikeCount: 2_500_000}},
		{"thousands separators", "1,234 5,678,901 7", trend.EngagementMetrics{RepostCount: 1234, ReplyCount: 5_678_901, LikeCount: 7}},
		{"surrounding markup text", "\n  4   reposts 9 replies 1.1K likes\n", trend.EngagementMetrics{RepostCount: 4, ReplyCount: 9, LikeCount: 1100}},
		{"extra tokens ignored", "1 2 3 4 5", trend.EngagementMetrics{RepostCount: 1, ReplyCount: 2, LikeCount: 3}},
		{"two tokens", "7 8", trend.EngagementMetrics{RepostCount: 7, ReplyCount: 8}},
		{"one token", "42", trend.EngagementMetrics{RepostCount: 42}},
		{"empty", "", trend.EngagementMetrics{}},
		{"no numbers", "no numbers here", trend.EngagementMetrics{}},
	}

	parser := NewStatsParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.Parse(tt.raw))
		})
	}
}

func TestParseStatsStrict_ReportsMissingNumbers(t *testing.T) {
	_, err := ParseStatsStrict("replies likes")
	require.Error(t, err)

	var statsErr *trend.StatsParseError
	require.ErrorAs(t, err, &statsErr)
	assert.Equal(t, "replies likes", statsErr.Raw)
	assert.Equal(t, "no numeric tokens", statsErr.Reason)
}

func TestStatsParser_GroupedDigitsAreOneToken(t *testing.T) {
	m := NewStatsParser(nil).Parse("100,200,300")
	assert.Equal(t, trend.EngagementMetrics{RepostCount: 100_200_300}, m)
}

func TestStatsParser_HugeCountersDoNotWrap(t *testing.T) {
	m := NewStatsParser(nil).Parse("99999999999999999999 99999999999999999999 5")
	assert.Equal(t, int64(math.MaxInt64), m.RepostCount)
	assert.Equal(t, int64(math.MaxInt64), m.ReplyCount)
	assert.Equal(t, int64(math.MaxInt64), m.Total())
}

func TestStatsParser_TotalIsSum(t *testing.T) {
	m := NewStatsParser(nil).Parse("10 20 1K")
	assert.Equal(t, int64(1030), m.Total())
}
