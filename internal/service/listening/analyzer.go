package listening

import (
	"strings"

	"trendpulse/internal/domain/trend"
)

// Default ranking sizes
const (
	DefaultCategoryLimit = 3
	DefaultOverallLimit  = 5
)

// AnalyzerConfig contains ranking limits for the analyzer
type AnalyzerConfig struct {
	CategoryLimit int
	OverallLimit  int
}

// Analyzer implements weighted keyword scoring and ranking
type Analyzer struct {
	config AnalyzerConfig
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	if config.CategoryLimit <= 0 {
		config.CategoryLimit = DefaultCategoryLimit
	}
	if config.OverallLimit <= 0 {
		config.OverallLimit = DefaultOverallLimit
	}
	return &Analyzer{config: config}
}

// Analyze scores the snapshot and ranks keywords per category and overall
func (a *Analyzer) Analyze(snapshot trend.Snapshot, accounts []trend.AccountConfig) trend.Insights {
	table := a.Score(snapshot, accounts)

	insights := trend.Insights{
		Categories: make(trend.CategoryInsights, 0, len(table.Categories())),
		Trending:   trend.Rank(table.Merged(), a.config.OverallLimit),
	}

	for _, category := range table.Categories() {
		insights.Categories = append(insights.Categories, trend.CategoryInsight{
			Category: category,
			Topics:   trend.Rank(table.Topics(category), a.config.CategoryLimit),
		})
	}

	for _, acc := range accounts {
		for _, post := range snapshot[acc.Username()] {
			insights.PostCount++
			insights.TotalEngagement += float64(post.Metrics().Total()) * acc.Weight()
		}
	}

	return insights
}

// Score builds the category score table. Every configured category is
// registered first, so categories without matches still show up.
// A post adds its full engagement to each keyword it mentions.
func (a *Analyzer) Score(snapshot trend.Snapshot, accounts []trend.AccountConfig) *trend.ScoreTable {
	table := trend.NewScoreTable()

	for _, acc := range accounts {
		for _, c := range acc.Categories() {
			table.AddCategory(c.Name)
		}
	}

	for _, acc := range accounts {
		categories := acc.Categories()

		for _, post := range snapshot[acc.Username()] {
			engagement := float64(post.Metrics().Total()) * acc.Weight()
			text := strings.ToLower(post.Text())

			for _, c := range categories {
				for _, kw := range c.Keywords {
					if strings.Contains(text, kw) {
						table.Add(c.Name, kw, engagement)
					}
				}
			}
		}
	}

	return table
}
