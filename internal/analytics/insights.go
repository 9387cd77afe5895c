package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

const (
	criticalExcessRatio    = 0.2  // excess beyond 20% of the limit is critical
	savingsGrowthThreshold = 20.0 // percent month-over-month growth worth flagging
	savingsReductionRate   = 0.15
	suggestedBudgetHeadway = 1.1
	daysPerMonth           = 30

	maxBudgetRecommendations = 3
	maxSavingsOpportunities  = 3
)

// BudgetWarning flags a category whose forecasted month-end spend exceeds its
// budget limit.
type BudgetWarning struct {
	Category          model.Category `json:"category"`
	Label             string         `json:"label"`
	BudgetLimit       float64        `json:"budgetLimit"`
	ProjectedSpending float64        `json:"projectedSpending"`
	ExcessAmount      float64        `json:"excessAmount"`
	Severity          string         `json:"severity"`
	Message           string         `json:"message"`
}

// GoalPrediction projects when a saving goal will complete based on the
// contribution rate observed since the goal was created.
type GoalPrediction struct {
	GoalID              string     `json:"goalId"`
	Title               string     `json:"title"`
	TargetAmount        float64    `json:"targetAmount"`
	CurrentAmount       float64    `json:"currentAmount"`
	MonthlyContribution float64    `json:"monthlyContribution"`
	MonthsToComplete    float64    `json:"monthsToComplete"`
	ProjectedCompletion time.Time  `json:"projectedCompletion"`
	Deadline            *time.Time `json:"deadline,omitempty"`
	OnTrack             bool       `json:"onTrack"`
	Status              string     `json:"status"`
}

// Recommendation is a prioritized, actionable suggestion.
type Recommendation struct {
	Type            string         `json:"type"`
	Priority        string         `json:"priority"`
	Message         string         `json:"message"`
	Category        model.Category `json:"category,omitempty"`
	SuggestedAmount float64        `json:"suggestedAmount,omitempty"`
}

// SavingsOpportunity pairs a fast-growing category with a suggested reduction
// target.
type SavingsOpportunity struct {
	Category                model.Category `json:"category"`
	Label                   string         `json:"label"`
	CurrentMonthTotal       float64        `json:"currentMonthTotal"`
	ChangePercentage        float64        `json:"changePercentage"`
	SuggestedReduction      float64        `json:"suggestedReduction"`
	EstimatedMonthlySavings float64        `json:"estimatedMonthlySavings"`
}

// PredictiveInsights is the result of GetPredictiveInsights.
type PredictiveInsights struct {
	BudgetWarnings       []BudgetWarning      `json:"budgetWarnings"`
	GoalPredictions      []GoalPrediction     `json:"goalPredictions"`
	Recommendations      []Recommendation     `json:"recommendations"`
	SavingsOpportunities []SavingsOpportunity `json:"savingsOpportunities"`
}

// GetPredictiveInsights composes the spending forecast with the user's budgets
// and active goals into budget-exceedance warnings, goal-completion
// predictions, prioritized recommendations and savings opportunities.
func (e *Engine) GetPredictiveInsights(ctx context.Context, userID string) (*PredictiveInsights, error) {
	now := e.now()

	forecast, err := e.ForecastSpending(ctx, userID)
	if err != nil {
		return nil, err
	}
	trends, err := e.GetCategoryTrends(ctx, userID)
	if err != nil {
		return nil, err
	}
	budgets, err := e.periodBudgets(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	goals, err := e.activeGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PredictiveInsights{
		BudgetWarnings:       buildBudgetWarnings(forecast.CategoryForecasts),
		GoalPredictions:      buildGoalPredictions(goals, now),
		Recommendations:      buildRecommendations(forecast.CategoryForecasts, budgets, goals),
		SavingsOpportunities: buildSavingsOpportunities(trends),
	}, nil
}

func buildBudgetWarnings(forecasts []CategoryForecast) []BudgetWarning {
	var warnings []BudgetWarning
	for _, f := range forecasts {
		if !f.WillExceedBudget {
			continue
		}

		severity := "warning"
		if f.ExcessAmount > criticalExcessRatio*f.BudgetLimit {
			severity = "critical"
		}

		warnings = append(warnings, BudgetWarning{
			Category:          f.Category,
			Label:             f.Label,
			BudgetLimit:       f.BudgetLimit,
			ProjectedSpending: f.ProjectedSpending,
			ExcessAmount:      f.ExcessAmount,
			Severity:          severity,
			Message: fmt.Sprintf("%s spending is projected to exceed its budget by $%.2f this month",
				f.Label, f.ExcessAmount),
		})
	}
	return warnings
}

func buildGoalPredictions(goals []*model.SavingGoal, now time.Time) []GoalPrediction {
	predictions := make([]GoalPrediction, 0, len(goals))
	for _, g := range goals {
		daysSinceCreation := now.Sub(g.CreatedAt).Hours() / 24

		var monthsSinceCreation float64
		if daysSinceCreation > 0 {
			monthsSinceCreation = daysSinceCreation / daysPerMonth
		}

		var monthlyContribution float64
		if monthsSinceCreation > 0 {
			monthlyContribution = g.CurrentAmount / monthsSinceCreation
		}

		remaining := g.TargetAmount - g.CurrentAmount
		var monthsToComplete float64
		if monthlyContribution > 0 {
			monthsToComplete = remaining / monthlyContribution
		}
		if monthsToComplete < 0 {
			monthsToComplete = 0
		}

		projected := now.AddDate(0, 0, int(math.Round(monthsToComplete*daysPerMonth)))

		onTrack := g.Deadline != nil && !projected.After(*g.Deadline)
		status := "behind"
		if onTrack {
			status = "on-track"
		}

		predictions = append(predictions, GoalPrediction{
			GoalID:              g.ID,
			Title:               g.Title,
			TargetAmount:        g.TargetAmount,
			CurrentAmount:       g.CurrentAmount,
			MonthlyContribution: monthlyContribution,
			MonthsToComplete:    monthsToComplete,
			ProjectedCompletion: projected,
			Deadline:            g.Deadline,
			OnTrack:             onTrack,
			Status:              status,
		})
	}
	return predictions
}

func buildRecommendations(forecasts []CategoryForecast, budgets []*model.Budget, goals []*model.SavingGoal) []Recommendation {
	var recommendations []Recommendation

	if len(budgets) == 0 {
		// Suggest budgets for the top forecasted categories, with some headway
		// above the projection. Forecasts arrive sorted by projection descending.
		top := forecasts
		if len(top) > maxBudgetRecommendations {
			top = top[:maxBudgetRecommendations]
		}
		for _, f := range top {
			suggested := f.ProjectedSpending * suggestedBudgetHeadway
			recommendations = append(recommendations, Recommendation{
				Type:            "budget",
				Priority:        "medium",
				Category:        f.Category,
				SuggestedAmount: suggested,
				Message: fmt.Sprintf("Set a monthly budget of $%.2f for %s based on your projected spending",
					suggested, f.Label),
			})
		}
	}

	if len(goals) == 0 {
		recommendations = append(recommendations, Recommendation{
			Type:     "goal",
			Priority: "high",
			Message:  "Create a saving goal to start building toward a target",
		})
	}

	return recommendations
}

func buildSavingsOpportunities(trends []CategoryTrend) []SavingsOpportunity {
	var opportunities []SavingsOpportunity
	for _, t := range trends {
		if t.ChangePercentage <= savingsGrowthThreshold {
			continue
		}
		reduction := t.CurrentMonthTotal * savingsReductionRate
		opportunities = append(opportunities, SavingsOpportunity{
			Category:                t.Category,
			Label:                   t.Label,
			CurrentMonthTotal:       t.CurrentMonthTotal,
			ChangePercentage:        t.ChangePercentage,
			SuggestedReduction:      reduction,
			EstimatedMonthlySavings: reduction,
		})
		if len(opportunities) == maxSavingsOpportunities {
			break
		}
	}
	return opportunities
}
