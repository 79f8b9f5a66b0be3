// internal/server/handlers/trend.go

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"trendpulse/internal/domain/trend"
)

// SummaryReader gives access to the latest cycle summary
type SummaryReader interface {
	Latest() (trend.Summary, bool)
}

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	summaries SummaryReader
	accounts  []trend.AccountConfig
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(summaries SummaryReader, accounts []trend.AccountConfig) *TrendHandler {
	return &TrendHandler{
		summaries: summaries,
		accounts:  accounts,
	}
}

// GetSummary returns the latest summary
func (h *TrendHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.latest(w)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GetTrendingTopics returns the overall ranked topics
func (h *TrendHandler) GetTrendingTopics(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.latest(w)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, summary.TrendingTopics)
}

// GetCategory returns the ranked topics of one category
func (h *TrendHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "Missing category")
		return
	}

	summary, ok := h.latest(w)
	if !ok {
		return
	}

	topics, found := summary.CategoryInsights.Get(category)
	if !found {
		respondWithError(w, http.StatusNotFound, "Category not found")
		return
	}
	if topics == nil {
		topics = []trend.TopicScore{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"topics":   topics,
	})
}

// GetAccounts returns the tracked accounts
func (h *TrendHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.accounts)
}

func (h *TrendHandler) latest(w http.ResponseWriter) (trend.Summary, bool) {
	summary, ok := h.summaries.Latest()
	if !ok {
		respondWithError(w, http.StatusServiceUnavailable, "No completed cycle yet")
	}
	return summary, ok
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	jsonResponse, _ := json.Marshal(map[string]string{"error": message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
