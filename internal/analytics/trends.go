package analytics

import (
	"context"
	"sort"

	"github.com/finsight-app/backend/internal/model"
)

// trendChangeThreshold is the month-over-month change (in percent) beyond
// which a category is classified as increasing or decreasing.
const trendChangeThreshold = 10.0

// CategoryTrend compares one category's spending between the current and the
// prior calendar month.
type CategoryTrend struct {
	Category               model.Category `json:"category"`
	Label                  string         `json:"label"`
	CurrentMonthTotal      float64        `json:"currentMonthTotal"`
	LastMonthTotal         float64        `json:"lastMonthTotal"`
	ChangePercentage       float64        `json:"changePercentage"`
	Trend                  string         `json:"trend"`
	AverageTransactionSize float64        `json:"averageTransactionSize"`
	TransactionCount       int            `json:"transactionCount"`
}

// GetCategoryTrends returns a month-over-month comparison for every category
// with at least one current-month expense, ordered by current-month total
// descending.
func (e *Engine) GetCategoryTrends(ctx context.Context, userID string) ([]CategoryTrend, error) {
	now := e.now()

	currentExpenses, err := e.monthExpenses(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	priorExpenses, err := e.monthExpenses(ctx, userID, now.AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}

	current := aggregateByCategory(currentExpenses)
	prior := aggregateByCategory(priorExpenses)

	trends := make([]CategoryTrend, 0, len(current))
	for cat, agg := range current {
		var lastTotal float64
		if priorAgg, ok := prior[cat]; ok {
			lastTotal = priorAgg.Total
		}

		var changePercentage float64
		if lastTotal > 0 {
			changePercentage = (agg.Total - lastTotal) / lastTotal * 100
		}

		var averageSize float64
		if agg.Count > 0 {
			averageSize = agg.Total / float64(agg.Count)
		}

		trends = append(trends, CategoryTrend{
			Category:               cat,
			Label:                  cat.Label(),
			CurrentMonthTotal:      agg.Total,
			LastMonthTotal:         lastTotal,
			ChangePercentage:       changePercentage,
			Trend:                  classifyTrend(changePercentage),
			AverageTransactionSize: averageSize,
			TransactionCount:       agg.Count,
		})
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].CurrentMonthTotal != trends[j].CurrentMonthTotal {
			return trends[i].CurrentMonthTotal > trends[j].CurrentMonthTotal
		}
		return trends[i].Category < trends[j].Category
	})

	return trends, nil
}

func classifyTrend(changePercentage float64) string {
	switch {
	case changePercentage > trendChangeThreshold:
		return "increasing"
	case changePercentage < -trendChangeThreshold:
		return "decreasing"
	default:
		return "stable"
	}
}
