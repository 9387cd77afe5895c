// Package analytics derives financial-health metrics, spending patterns,
// forecasts and predictive insights from a user's raw expense, budget and
// saving-goal records. Every operation recomputes from the store on demand;
// the engine holds no state between calls and never writes.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

// listPageSize is large enough to fetch a user's full record set in one page.
const listPageSize = 10000

// Engine computes analytics on demand from the record store.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Date-dependent computations (current
// month, days elapsed, goal age) become deterministic under a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an analytics engine backed by the given store.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// listExpenses fetches a user's expenses in the given window (nil bounds mean
// unbounded). Store failures propagate untouched; the engine never retries.
func (e *Engine) listExpenses(ctx context.Context, userID string, startDate, endDate *time.Time) ([]*model.Expense, error) {
	expenses, _, err := e.store.ListExpenses(ctx, userID, startDate, endDate, listPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// monthExpenses fetches a user's expenses for the calendar month containing t.
func (e *Engine) monthExpenses(ctx context.Context, userID string, t time.Time) ([]*model.Expense, error) {
	start := model.MonthStart(t)
	end := model.MonthEnd(t)
	return e.listExpenses(ctx, userID, &start, &end)
}

// periodBudgets fetches the user's budgets for the calendar month containing t.
func (e *Engine) periodBudgets(ctx context.Context, userID string, t time.Time) ([]*model.Budget, error) {
	period := model.MonthStart(t)
	budgets, _, err := e.store.ListBudgets(ctx, userID, &period, listPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// activeGoals fetches the user's non-archived saving goals.
func (e *Engine) activeGoals(ctx context.Context, userID string) ([]*model.SavingGoal, error) {
	goals, _, err := e.store.ListGoals(ctx, userID, false, listPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}
