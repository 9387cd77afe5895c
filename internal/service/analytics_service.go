package service

import (
	"log"
	"net/http"

	"github.com/finsight-app/backend/internal/auth"
)

// ============================================================================
// Analytics Handlers
// ============================================================================
//
// Each handler is a thin wrapper: resolve the user from auth claims, run one
// engine operation, serialize the result. A store failure surfaces as a
// generic error; sparse data never does (the engine guarantees well-formed
// results for empty accounts).

const analyticsErrMsg = "could not compute analytics"

// handleHealthScore returns the composite 0-100 financial health score.
func (s *FinanceService) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	score, err := s.engine.ComputeHealthScore(r.Context(), claims.UID)
	if err != nil {
		log.Printf("health score for %s: %v", claims.UID, err)
		writeError(w, http.StatusBadGateway, analyticsErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, score)
}

// handleSpendingPatterns returns weekday distribution, recurring expenses and
// anomalies over the user's recent records.
func (s *FinanceService) handleSpendingPatterns(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	patterns, err := s.engine.AnalyzeSpendingPatterns(r.Context(), claims.UID)
	if err != nil {
		log.Printf("spending patterns for %s: %v", claims.UID, err)
		writeError(w, http.StatusBadGateway, analyticsErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, patterns)
}

// handleCategoryTrends returns the month-over-month category comparison.
func (s *FinanceService) handleCategoryTrends(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	trends, err := s.engine.GetCategoryTrends(r.Context(), claims.UID)
	if err != nil {
		log.Printf("category trends for %s: %v", claims.UID, err)
		writeError(w, http.StatusBadGateway, analyticsErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}

// handleForecast returns the month-end spending projection.
func (s *FinanceService) handleForecast(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	forecast, err := s.engine.ForecastSpending(r.Context(), claims.UID)
	if err != nil {
		log.Printf("forecast for %s: %v", claims.UID, err)
		writeError(w, http.StatusBadGateway, analyticsErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, forecast)
}

// handleInsights returns budget warnings, goal predictions, recommendations
// and savings opportunities.
func (s *FinanceService) handleInsights(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	insights, err := s.engine.GetPredictiveInsights(r.Context(), claims.UID)
	if err != nil {
		log.Printf("insights for %s: %v", claims.UID, err)
		writeError(w, http.StatusBadGateway, analyticsErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, insights)
}
