package analytics

import (
	"context"
	"testing"

	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

func TestGetCategoryTrendsMonthOverMonth(t *testing.T) {
	s := store.NewMemoryStore()
	userID := "user-1"

	// Transport: 100 last month, 150 this month.
	seedExpense(t, s, userID, model.CategoryTransport, 100, priorMonthDay(15), "fuel")
	seedExpense(t, s, userID, model.CategoryTransport, 90, currentMonthDay(2), "fuel")
	seedExpense(t, s, userID, model.CategoryTransport, 60, currentMonthDay(7), "train")

	engine := newTestEngine(s)
	trends, err := engine.GetCategoryTrends(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	tr := trends[0]
	if tr.Category != model.CategoryTransport {
		t.Errorf("expected Transport, got %s", tr.Category)
	}
	if tr.CurrentMonthTotal != 150 {
		t.Errorf("expected current total 150, got %v", tr.CurrentMonthTotal)
	}
	if tr.LastMonthTotal != 100 {
		t.Errorf("expected last total 100, got %v", tr.LastMonthTotal)
	}
	if tr.ChangePercentage != 50 {
		t.Errorf("expected change 50%%, got %v", tr.ChangePercentage)
	}
	if tr.Trend != "increasing" {
		t.Errorf("expected trend %q, got %q", "increasing", tr.Trend)
	}
	if tr.TransactionCount != 2 {
		t.Errorf("expected 2 transactions, got %d", tr.TransactionCount)
	}
	if tr.AverageTransactionSize != 75 {
		t.Errorf("expected average 75, got %v", tr.AverageTransactionSize)
	}
}

func TestGetCategoryTrendsNoPriorMonth(t *testing.T) {
	s := store.NewMemoryStore()
	userID := "user-1"

	seedExpense(t, s, userID, model.CategoryFood, 80, currentMonthDay(3), "groceries")

	engine := newTestEngine(s)
	trends, err := engine.GetCategoryTrends(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	// No prior-month data: change is 0, not infinite, and classifies stable.
	if trends[0].ChangePercentage != 0 {
		t.Errorf("expected change 0, got %v", trends[0].ChangePercentage)
	}
	if trends[0].Trend != "stable" {
		t.Errorf("expected trend %q, got %q", "stable", trends[0].Trend)
	}
}

func TestGetCategoryTrendsExcludesPriorOnlyCategories(t *testing.T) {
	s := store.NewMemoryStore()
	userID := "user-1"

	// Entertainment only appears last month: no trend entry for it.
	seedExpense(t, s, userID, model.CategoryEntertainment, 40, priorMonthDay(20), "cinema")
	seedExpense(t, s, userID, model.CategoryFood, 80, currentMonthDay(3), "groceries")

	engine := newTestEngine(s)
	trends, err := engine.GetCategoryTrends(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trends) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(trends))
	}
	if trends[0].Category != model.CategoryFood {
		t.Errorf("expected Food only, got %s", trends[0].Category)
	}
}

func TestGetCategoryTrendsOrderedByCurrentTotal(t *testing.T) {
	s := store.NewMemoryStore()
	userID := "user-1"

	seedExpense(t, s, userID, model.CategoryFood, 50, currentMonthDay(1), "")
	seedExpense(t, s, userID, model.CategoryHousing, 900, currentMonthDay(1), "")
	seedExpense(t, s, userID, model.CategoryTransport, 120, currentMonthDay(1), "")

	engine := newTestEngine(s)
	trends, err := engine.GetCategoryTrends(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trends) != 3 {
		t.Fatalf("expected 3 trends, got %d", len(trends))
	}
	want := []model.Category{model.CategoryHousing, model.CategoryTransport, model.CategoryFood}
	for i, cat := range want {
		if trends[i].Category != cat {
			t.Errorf("position %d: expected %s, got %s", i, cat, trends[i].Category)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{50, "increasing"},
		{10.1, "increasing"},
		{10, "stable"},
		{0, "stable"},
		{-10, "stable"},
		{-10.1, "decreasing"},
		{-40, "decreasing"},
	}
	for _, tc := range cases {
		if got := classifyTrend(tc.change); got != tc.want {
			t.Errorf("classifyTrend(%v) = %q, want %q", tc.change, got, tc.want)
		}
	}
}
