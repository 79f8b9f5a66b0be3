package trend

import "sort"

// ScoreTable accumulates weighted engagement per category and keyword.
// It remembers the order categories were registered and the order each
// keyword was first encountered, which is what ranking ties fall back to.
type ScoreTable struct {
	categories []string
	scores     map[string]*keywordScores
}

type keywordScores struct {
	order  []string
	values map[string]float64
}

// NewScoreTable creates an empty table
func NewScoreTable() *ScoreTable {
	return &ScoreTable{
		scores: make(map[string]*keywordScores),
	}
}

// AddCategory registers a category so it is reported even without matches
func (t *ScoreTable) AddCategory(category string) {
	if _, ok := t.scores[category]; ok {
		return
	}
	t.categories = append(t.categories, category)
	t.scores[category] = &keywordScores{values: make(map[string]float64)}
}

// Add accumulates score for a keyword within a category
func (t *ScoreTable) Add(category, keyword string, score float64) {
	t.AddCategory(category)

	ks := t.scores[category]
	if _, ok := ks.values[keyword]; !ok {
		ks.order = append(ks.order, keyword)
	}
	ks.values[keyword] += score
}

// Categories returns category names in registration order
func (t *ScoreTable) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Score returns the accumulated score of a keyword in a category
func (t *ScoreTable) Score(category, keyword string) float64 {
	ks, ok := t.scores[category]
	if !ok {
		return 0
	}
	return ks.values[keyword]
}

// Topics returns every keyword of a category in first-encountered order
func (t *ScoreTable) Topics(category string) []TopicScore {
	ks, ok := t.scores[category]
	if !ok {
		return nil
	}

	out := make([]TopicScore, 0, len(ks.order))
	for _, kw := range ks.order {
		out = append(out, TopicScore{Keyword: kw, Score: ks.values[kw]})
	}
	return out
}

// Merged sums identical keywords across all categories. Order follows
// category registration, then keyword first encounter.
func (t *ScoreTable) Merged() []TopicScore {
	index := make(map[string]int)
	var out []TopicScore

	for _, category := range t.categories {
		for _, ts := range t.Topics(category) {
			if i, ok := index[ts.Keyword]; ok {
				out[i].Score += ts.Score
				continue
			}
			index[ts.Keyword] = len(out)
			out = append(out, ts)
		}
	}
	return out
}

// Rank keeps positive scores, sorts them descending and truncates to limit.
// The sort is stable so equal scores keep their input order.
func Rank(topics []TopicScore, limit int) []TopicScore {
	ranked := make([]TopicScore, 0, len(topics))
	for _, ts := range topics {
		if ts.Score > 0 {
			ranked = append(ranked, ts)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
