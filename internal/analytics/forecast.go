package analytics

import (
	"context"
	"math"
	"sort"

	"github.com/finsight-app/backend/internal/model"
)

// CategoryForecast projects one category's spending to month end and compares
// it against that category's budget limit for the current period.
type CategoryForecast struct {
	Category          model.Category `json:"category"`
	Label             string         `json:"label"`
	CurrentSpending   float64        `json:"currentSpending"`
	ProjectedSpending float64        `json:"projectedSpending"`
	BudgetLimit       float64        `json:"budgetLimit"`
	WillExceedBudget  bool           `json:"willExceedBudget"`
	ExcessAmount      float64        `json:"excessAmount"`
}

// SpendingForecast is the result of ForecastSpending.
type SpendingForecast struct {
	ProjectedMonthEnd           float64            `json:"projectedMonthEnd"`
	CurrentSpending             float64            `json:"currentSpending"`
	DaysElapsed                 int                `json:"daysElapsed"`
	DaysRemaining               int                `json:"daysRemaining"`
	DailyAverage                float64            `json:"dailyAverage"`
	ProjectedAdditionalSpending float64            `json:"projectedAdditionalSpending"`
	CategoryForecasts           []CategoryForecast `json:"categoryForecasts"`
}

// ForecastSpending extrapolates the current month's spending to a projected
// month-end total, overall and per category. The model is a deliberate naive
// linear extrapolation of the daily average observed so far; downstream
// insight generation depends on its exact numeric behavior, so no seasonality
// or weighting is applied.
func (e *Engine) ForecastSpending(ctx context.Context, userID string) (*SpendingForecast, error) {
	now := e.now()

	expenses, err := e.monthExpenses(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	budgets, err := e.periodBudgets(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	daysElapsed := now.Day()
	daysInMonth := model.MonthStart(now).AddDate(0, 1, -1).Day()
	daysRemaining := daysInMonth - daysElapsed

	currentSpending := sumAmounts(expenses)

	var dailyAverage float64
	if daysElapsed > 0 {
		dailyAverage = currentSpending / float64(daysElapsed)
	}
	projectedAdditional := dailyAverage * float64(daysRemaining)

	limitByCategory := make(map[model.Category]float64, len(budgets))
	for _, b := range budgets {
		limitByCategory[b.Category] = b.LimitAmount
	}

	byCategory := aggregateByCategory(expenses)
	forecasts := make([]CategoryForecast, 0, len(byCategory))
	for cat, agg := range byCategory {
		var catDaily float64
		if daysElapsed > 0 {
			catDaily = agg.Total / float64(daysElapsed)
		}
		projected := agg.Total + catDaily*float64(daysRemaining)

		limit := limitByCategory[cat]
		var excess float64
		if limit > 0 {
			excess = math.Max(0, projected-limit)
		}

		forecasts = append(forecasts, CategoryForecast{
			Category:          cat,
			Label:             cat.Label(),
			CurrentSpending:   agg.Total,
			ProjectedSpending: projected,
			BudgetLimit:       limit,
			WillExceedBudget:  limit > 0 && projected > limit,
			ExcessAmount:      excess,
		})
	}

	sort.Slice(forecasts, func(i, j int) bool {
		if forecasts[i].ProjectedSpending != forecasts[j].ProjectedSpending {
			return forecasts[i].ProjectedSpending > forecasts[j].ProjectedSpending
		}
		return forecasts[i].Category < forecasts[j].Category
	})

	return &SpendingForecast{
		ProjectedMonthEnd:           currentSpending + projectedAdditional,
		CurrentSpending:             currentSpending,
		DaysElapsed:                 daysElapsed,
		DaysRemaining:               daysRemaining,
		DailyAverage:                dailyAverage,
		ProjectedAdditionalSpending: projectedAdditional,
		CategoryForecasts:           forecasts,
	}, nil
}
