package listening

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"trendpulse/internal/domain/trend"
)

// statTokenRegex matches a number with optional thousands separators and
// decimals, followed by an optional magnitude suffix
var statTokenRegex = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)([KkMm])?`)

// StatsParser converts free-text engagement blocks into counters.
// The first three numbers are taken as repost, reply and like counts in
// that order, matching the fixed visual layout of the stats row.
type StatsParser struct {
	logger *slog.Logger
}

// NewStatsParser creates a parser that reports malformed input to logger
func NewStatsParser(logger *slog.Logger) *StatsParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsParser{logger: logger}
}

// Parse never fails: malformed input yields zero metrics and a diagnostic
func (p *StatsParser) Parse(raw string) trend.EngagementMetrics {
	m, err := ParseStatsStrict(raw)
	if err != nil {
		p.logger.Debug("unusable stats text", "error", err)
		return trend.EngagementMetrics{}
	}
	return m
}

// ParseStatsStrict is Parse with the diagnostic returned instead of logged
func ParseStatsStrict(raw string) (trend.EngagementMetrics, error) {
	matches := statTokenRegex.FindAllStringSubmatch(raw, 3)
	if len(matches) == 0 {
		return trend.EngagementMetrics{}, &trend.StatsParseError{Raw: raw, Reason: "no numeric tokens"}
	}

	var values [3]int64
	for i, m := range matches {
		v, err := tokenValue(m[1], m[2])
		if err != nil {
			return trend.EngagementMetrics{}, &trend.StatsParseError{Raw: raw, Reason: err.Error()}
		}
		values[i] = v
	}

	return trend.EngagementMetrics{
		RepostCount: values[0],
		ReplyCount:  values[1],
		LikeCount:   values[2],
	}, nil
}

func tokenValue(number, suffix string) (int64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
	if err != nil {
		return 0, err
	}

	switch suffix {
	case "K", "k":
		f *= 1_000
	case "M", "m":
		f *= 1_000_000
	}

	f = math.Round(f)
	if f >= math.MaxInt64 {
		return math.MaxInt64, nil
	}
	return int64(f), nil
}
