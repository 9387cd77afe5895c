package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/importer"
	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

// FinanceService exposes the CRUD plumbing and the analytics engine over
// JSON/HTTP.
type FinanceService struct {
	store  store.Store
	engine *analytics.Engine
}

// NewFinanceService creates the service with its store and analytics engine.
func NewFinanceService(s store.Store, engine *analytics.Engine) *FinanceService {
	return &FinanceService{
		store:  s,
		engine: engine,
	}
}

// RegisterRoutes attaches all service endpoints to the mux.
func (s *FinanceService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/v1/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/v1/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/v1/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/v1/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /api/v1/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /api/v1/budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /api/v1/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/v1/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /api/v1/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/v1/goals", s.handleListGoals)
	mux.HandleFunc("GET /api/v1/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/v1/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/v1/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/v1/goals/{id}/contributions", s.handleContributeToGoal)

	mux.HandleFunc("GET /api/v1/analytics/health-score", s.handleHealthScore)
	mux.HandleFunc("GET /api/v1/analytics/spending-patterns", s.handleSpendingPatterns)
	mux.HandleFunc("GET /api/v1/analytics/category-trends", s.handleCategoryTrends)
	mux.HandleFunc("GET /api/v1/analytics/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/v1/analytics/insights", s.handleInsights)

	mux.HandleFunc("POST /api/v1/import/statement", s.handleImportStatement)
}

// ============================================================================
// Expense Handlers
// ============================================================================

type createExpenseRequest struct {
	Category    model.Category `json:"category"`
	Amount      float64        `json:"amount"`
	Description string         `json:"description"`
	Date        *time.Time     `json:"date"`
}

func (s *FinanceService) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-negative")
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}
	if !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	expense := &model.Expense{
		ID:          uuid.New().String(),
		UserID:      claims.UID,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeStoreError(w, "create expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (s *FinanceService) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	var startDate, endDate *time.Time
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be RFC 3339")
			return
		}
		startDate = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be RFC 3339")
			return
		}
		endDate = &t
	}

	expenses, nextPageToken, err := s.store.ListExpenses(r.Context(), claims.UID, startDate, endDate, 100, r.URL.Query().Get("pageToken"))
	if err != nil {
		writeStoreError(w, "list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expenses":      expenses,
		"nextPageToken": nextPageToken,
	})
}

func (s *FinanceService) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	expense, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (s *FinanceService) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	expense, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-negative")
		return
	}
	if req.Category != "" && !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	if req.Category != "" {
		expense.Category = req.Category
	}
	expense.Amount = req.Amount
	expense.Description = req.Description
	if req.Date != nil {
		expense.Date = req.Date.UTC()
	}
	expense.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		writeStoreError(w, "update expense", err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (s *FinanceService) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	expense, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), expense.ID); err != nil {
		writeStoreError(w, "delete expense", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Budget Handlers
// ============================================================================

type createBudgetRequest struct {
	Category    model.Category `json:"category"`
	LimitAmount float64        `json:"limitAmount"`
	Period      time.Time      `json:"period"`
}

func (s *FinanceService) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if req.LimitAmount < 0 {
		writeError(w, http.StatusBadRequest, "limitAmount must be non-negative")
		return
	}
	if req.Period.IsZero() {
		req.Period = time.Now().UTC()
	}
	period := model.MonthStart(req.Period)

	// One budget per (user, category, period).
	existing, _, err := s.store.ListBudgets(r.Context(), claims.UID, &period, 1000, "")
	if err != nil {
		writeStoreError(w, "list budgets", err)
		return
	}
	for _, b := range existing {
		if b.Category == req.Category {
			writeError(w, http.StatusConflict, "budget already exists for this category and period")
			return
		}
	}

	now := time.Now().UTC()
	budget := &model.Budget{
		ID:          uuid.New().String(),
		UserID:      claims.UID,
		Category:    req.Category,
		LimitAmount: req.LimitAmount,
		Period:      period,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBudget(r.Context(), budget); err != nil {
		writeStoreError(w, "create budget", err)
		return
	}

	writeJSON(w, http.StatusCreated, budget)
}

func (s *FinanceService) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	var period *time.Time
	if v := r.URL.Query().Get("period"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "period must be RFC 3339")
			return
		}
		t = model.MonthStart(t)
		period = &t
	}

	budgets, nextPageToken, err := s.store.ListBudgets(r.Context(), claims.UID, period, 100, r.URL.Query().Get("pageToken"))
	if err != nil {
		writeStoreError(w, "list budgets", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"budgets":       budgets,
		"nextPageToken": nextPageToken,
	})
}

func (s *FinanceService) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	budget, err := s.store.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get budget", err)
		return
	}
	if budget.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	writeJSON(w, http.StatusOK, budget)
}

func (s *FinanceService) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	budget, err := s.store.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get budget", err)
		return
	}
	if budget.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	var req struct {
		LimitAmount float64 `json:"limitAmount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.LimitAmount < 0 {
		writeError(w, http.StatusBadRequest, "limitAmount must be non-negative")
		return
	}

	budget.LimitAmount = req.LimitAmount
	budget.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBudget(r.Context(), budget); err != nil {
		writeStoreError(w, "update budget", err)
		return
	}

	writeJSON(w, http.StatusOK, budget)
}

func (s *FinanceService) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	budget, err := s.store.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get budget", err)
		return
	}
	if budget.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	if err := s.store.DeleteBudget(r.Context(), budget.ID); err != nil {
		writeStoreError(w, "delete budget", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Saving Goal Handlers
// ============================================================================

type createGoalRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetAmount float64    `json:"targetAmount"`
	Deadline     *time.Time `json:"deadline"`
}

func (s *FinanceService) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.TargetAmount <= 0 {
		writeError(w, http.StatusBadRequest, "targetAmount must be positive")
		return
	}

	now := time.Now().UTC()
	goal := &model.SavingGoal{
		ID:           uuid.New().String(),
		UserID:       claims.UID,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateGoal(r.Context(), goal); err != nil {
		writeStoreError(w, "create goal", err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (s *FinanceService) handleListGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	goals, nextPageToken, err := s.store.ListGoals(r.Context(), claims.UID, includeArchived, 100, r.URL.Query().Get("pageToken"))
	if err != nil {
		writeStoreError(w, "list goals", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"goals":         goals,
		"nextPageToken": nextPageToken,
	})
}

func (s *FinanceService) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	goal, err := s.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get goal", err)
		return
	}
	if goal.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (s *FinanceService) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	goal, err := s.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get goal", err)
		return
	}
	if goal.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	var req struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		TargetAmount float64    `json:"targetAmount"`
		Deadline     *time.Time `json:"deadline"`
		Archived     *bool      `json:"archived"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title != "" {
		goal.Title = req.Title
	}
	if req.Description != "" {
		goal.Description = req.Description
	}
	if req.TargetAmount > 0 {
		goal.TargetAmount = req.TargetAmount
	}
	if req.Deadline != nil {
		goal.Deadline = req.Deadline
	}
	if req.Archived != nil {
		goal.Archived = *req.Archived
	}
	goal.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoal(r.Context(), goal); err != nil {
		writeStoreError(w, "update goal", err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (s *FinanceService) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	goal, err := s.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get goal", err)
		return
	}
	if goal.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	if err := s.store.DeleteGoal(r.Context(), goal.ID); err != nil {
		writeStoreError(w, "delete goal", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) handleContributeToGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	goal, err := s.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "get goal", err)
		return
	}
	if goal.UserID != claims.UID {
		writeError(w, http.StatusForbidden, "cannot access another user's resources")
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	goal.CurrentAmount += req.Amount
	goal.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoal(r.Context(), goal); err != nil {
		writeStoreError(w, "update goal", err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// ============================================================================
// Import Handler
// ============================================================================

func (s *FinanceService) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.RequireAuth(w, r)
	if !ok {
		return
	}

	result, err := importer.ParseStatement(r.Body, claims.UID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(result.Expenses) > 0 {
		if err := s.store.BatchCreateExpenses(r.Context(), result.Expenses); err != nil {
			writeStoreError(w, "import expenses", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(result.Expenses),
		"skipped":  result.Skipped,
	})
}
