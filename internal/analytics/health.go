package analytics

import (
	"context"
	"math"
	"strings"

	"github.com/finsight-app/backend/internal/model"
)

// Maximum contribution of each health score dimension.
const (
	maxSavingsScore       = 30
	maxBudgetScore        = 25
	maxGoalScore          = 20
	maxTrendScore         = 15
	maxEmergencyScore     = 10
	defaultBudgetScore    = 10 // no budgets set for the current period
	neutralTrendScore     = 10 // no prior-month history
	emergencyFundMultiple = 3  // months of spending an emergency fund should cover
)

// ScoreComponent is one scored dimension of the health score.
type ScoreComponent struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// HealthScore is the composite 0-100 financial health result.
type HealthScore struct {
	TotalScore      float64          `json:"totalScore"`
	Rating          string           `json:"rating"`
	Trend           string           `json:"trend"`
	Components      []ScoreComponent `json:"components"`
	Recommendations []string         `json:"recommendations"`
}

// ComputeHealthScore derives the composite financial health score for a user
// from five independently scored dimensions: savings rate (30), budget
// adherence (25), saving goals (20), spending trend (15) and emergency fund
// (10). Sparse data never errors; each dimension defines its own fallback.
func (e *Engine) ComputeHealthScore(ctx context.Context, userID string) (*HealthScore, error) {
	now := e.now()

	currentExpenses, err := e.monthExpenses(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	priorExpenses, err := e.monthExpenses(ctx, userID, now.AddDate(0, -1, 0))
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

	currentTotal := sumAmounts(currentExpenses)
	byCategory := aggregateByCategory(currentExpenses)

	savingsScore := scoreSavings(byCategory)
	budgetScore := scoreBudgets(budgets, byCategory)
	goalScore := scoreGoals(goals)
	trendScore := scoreTrend(currentTotal, sumAmounts(priorExpenses))
	emergencyScore := scoreEmergencyFund(goals, currentTotal)

	total := savingsScore + budgetScore + goalScore + trendScore + emergencyScore

	result := &HealthScore{
		TotalScore: total,
		Rating:     ratingFor(total),
		Trend:      trendLabel(trendScore),
		Components: []ScoreComponent{
			{Name: "savings", Score: savingsScore, MaxScore: maxSavingsScore},
			{Name: "budget", Score: budgetScore, MaxScore: maxBudgetScore},
			{Name: "goals", Score: goalScore, MaxScore: maxGoalScore},
			{Name: "trend", Score: trendScore, MaxScore: maxTrendScore},
			{Name: "emergencyFund", Score: emergencyScore, MaxScore: maxEmergencyScore},
		},
	}

	if savingsScore < 20 {
		result.Recommendations = append(result.Recommendations,
			"Increase your savings rate; aim to set aside at least 20% of what you spend each month.")
	}
	if budgetScore < 15 {
		result.Recommendations = append(result.Recommendations,
			"Keep spending within your budget limits to improve budget adherence.")
	}
	if goalScore < 10 {
		result.Recommendations = append(result.Recommendations,
			"Create saving goals to give your savings a concrete target.")
	}
	if trendScore < 10 {
		result.Recommendations = append(result.Recommendations,
			"Your spending is rising month over month; review recent expenses for cuts.")
	}
	if emergencyScore == 0 {
		result.Recommendations = append(result.Recommendations,
			"Build an emergency fund covering 3-6 months of expenses.")
	}

	return result, nil
}

// scoreSavings scores the share of monthly outflow going to savings:
// min(30, savingsRate*100), where the rate is savings / (spending + savings).
func scoreSavings(byCategory map[model.Category]*CategoryAggregate) float64 {
	var savings, spending float64
	for cat, agg := range byCategory {
		if cat == model.CategorySavings {
			savings += agg.Total
		} else {
			spending += agg.Total
		}
	}

	denominator := spending + savings
	if denominator == 0 {
		return 0
	}
	savingsRate := savings / denominator
	return math.Min(maxSavingsScore, savingsRate*100)
}

// scoreBudgets scores the fraction of current-period budgets the user stayed
// within. With no budgets set, a fixed default applies rather than 0 or full
// marks.
func scoreBudgets(budgets []*model.Budget, byCategory map[model.Category]*CategoryAggregate) float64 {
	if len(budgets) == 0 {
		return defaultBudgetScore
	}

	within := 0
	for _, b := range budgets {
		var spent float64
		if agg, ok := byCategory[b.Category]; ok {
			spent = agg.Total
		}
		if spent <= b.LimitAmount {
			within++
		}
	}

	adherenceRate := float64(within) / float64(len(budgets))
	return math.Round(adherenceRate * maxBudgetScore)
}

// scoreGoals scores goal-setting behavior: having goals, having several, and
// having contributed to at least one.
func scoreGoals(goals []*model.SavingGoal) float64 {
	if len(goals) == 0 {
		return 0
	}

	score := 10.0
	if len(goals) >= 3 {
		score += 5
	}
	for _, g := range goals {
		if g.CurrentAmount > 0 {
			score += 5
			break
		}
	}
	return math.Min(score, maxGoalScore)
}

// scoreTrend compares current-month spending against the prior month. A prior
// month with no records scores neutral rather than penalizing new users.
func scoreTrend(currentTotal, priorTotal float64) float64 {
	if priorTotal == 0 {
		return neutralTrendScore
	}

	change := (currentTotal - priorTotal) / priorTotal
	switch {
	case change < -0.05:
		return maxTrendScore
	case change < 0.05:
		return 10
	default:
		return 5
	}
}

// scoreEmergencyFund looks for an active goal titled like an emergency fund
// and scores it against three months of current spending.
func scoreEmergencyFund(goals []*model.SavingGoal, currentMonthTotal float64) float64 {
	var fund *model.SavingGoal
	for _, g := range goals {
		if strings.Contains(strings.ToLower(g.Title), "emergency") {
			fund = g
			break
		}
	}
	if fund == nil {
		return 0
	}

	score := 5.0
	if fund.CurrentAmount >= emergencyFundMultiple*currentMonthTotal {
		score += 5
	}
	return score
}

func ratingFor(total float64) string {
	switch {
	case total >= 70:
		return "Excellent"
	case total >= 50:
		return "Good"
	case total >= 30:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func trendLabel(trendScore float64) string {
	switch {
	case trendScore >= maxTrendScore:
		return "improving"
	case trendScore >= neutralTrendScore:
		return "stable"
	default:
		return "declining"
	}
}
