package analytics

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finsight-app/backend/internal/model"
)

const (
	// patternWindow is the number of most recent expense records analyzed,
	// counted by record, not by calendar days.
	patternWindow = 90

	maxRecurringExpenses   = 5
	maxAnomaliesPerCat     = 3
	maxAnomaliesTotal      = 5
	anomalyStdDevThreshold = 2.0

	anomalyReason = "significantly higher than average"
)

var titleCaser = cases.Title(language.English)

// RecurringExpense is a merchant/description that repeats within the pattern
// window.
type RecurringExpense struct {
	Description    string    `json:"description"`
	AverageAmount  float64   `json:"averageAmount"`
	Frequency      string    `json:"frequency"`
	Occurrences    int       `json:"occurrences"`
	LastOccurrence time.Time `json:"lastOccurrence"`
}

// Anomaly is an expense whose amount deviates from its category mean by more
// than two standard deviations.
type Anomaly struct {
	ExpenseID        string         `json:"expenseId"`
	Description      string         `json:"description,omitempty"`
	Category         model.Category `json:"category"`
	Amount           float64        `json:"amount"`
	CategoryAverage  float64        `json:"categoryAverage"`
	DeviationPercent float64        `json:"deviationPercent"`
	Date             time.Time      `json:"date"`
	Reason           string         `json:"reason"`
}

// SpendingPatterns is the result of AnalyzeSpendingPatterns.
type SpendingPatterns struct {
	SpendingByDayOfWeek map[string]float64 `json:"spendingByDayOfWeek"`
	CategoryTrends      []CategoryTrend    `json:"categoryTrends"`
	RecurringExpenses   []RecurringExpense `json:"recurringExpenses"`
	Anomalies           []Anomaly          `json:"anomalies"`
}

// AnalyzeSpendingPatterns examines the user's most recent expense records for
// weekday distribution, recurring merchants and statistical outliers. Category
// trends are delegated to GetCategoryTrends rather than recomputed here.
func (e *Engine) AnalyzeSpendingPatterns(ctx context.Context, userID string) (*SpendingPatterns, error) {
	expenses, err := e.listExpenses(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}

	recent := sortByDateDesc(expenses)
	if len(recent) > patternWindow {
		recent = recent[:patternWindow]
	}

	trends, err := e.GetCategoryTrends(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SpendingPatterns{
		SpendingByDayOfWeek: sumByWeekday(recent),
		CategoryTrends:      trends,
		RecurringExpenses:   detectRecurringExpenses(recent),
		Anomalies:           detectAnomalies(recent),
	}, nil
}

// detectRecurringExpenses groups the window's records by normalized
// description and reports groups with at least two occurrences. Two records
// with the same description are treated as monthly-recurring regardless of
// their actual spacing.
func detectRecurringExpenses(expenses []*model.Expense) []RecurringExpense {
	type group struct {
		total int
		sum   float64
		last  time.Time
	}
	groups := make(map[string]*group)

	for _, e := range expenses {
		normalized := strings.ToLower(strings.TrimSpace(e.Description))
		if normalized == "" {
			continue
		}
		g, ok := groups[normalized]
		if !ok {
			g = &group{}
			groups[normalized] = g
		}
		g.total++
		g.sum += e.Amount
		if e.Date.After(g.last) {
			g.last = e.Date
		}
	}

	var recurring []RecurringExpense
	for desc, g := range groups {
		if g.total < 2 {
			continue
		}
		recurring = append(recurring, RecurringExpense{
			Description:    titleCaser.String(desc),
			AverageAmount:  g.sum / float64(g.total),
			Frequency:      "monthly",
			Occurrences:    g.total,
			LastOccurrence: g.last,
		})
	}

	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].Occurrences != recurring[j].Occurrences {
			return recurring[i].Occurrences > recurring[j].Occurrences
		}
		return recurring[i].AverageAmount > recurring[j].AverageAmount
	})

	if len(recurring) > maxRecurringExpenses {
		recurring = recurring[:maxRecurringExpenses]
	}
	return recurring
}

// detectAnomalies flags expenses deviating from their category mean by more
// than two population standard deviations. A singleton category has zero
// deviation and can never flag.
func detectAnomalies(expenses []*model.Expense) []Anomaly {
	byCategory := make(map[model.Category][]*model.Expense)
	for _, e := range expenses {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	var anomalies []Anomaly
	for cat, catExpenses := range byCategory {
		amounts := make([]float64, len(catExpenses))
		for i, e := range catExpenses {
			amounts[i] = e.Amount
		}
		mean, stdDev := meanAndStdDev(amounts)

		var catAnomalies []Anomaly
		for _, e := range catExpenses {
			if math.Abs(e.Amount-mean) <= anomalyStdDevThreshold*stdDev {
				continue
			}
			var deviationPercent float64
			if mean > 0 {
				deviationPercent = (e.Amount - mean) / mean * 100
			}
			catAnomalies = append(catAnomalies, Anomaly{
				ExpenseID:        e.ID,
				Description:      e.Description,
				Category:         cat,
				Amount:           e.Amount,
				CategoryAverage:  mean,
				DeviationPercent: deviationPercent,
				Date:             e.Date,
				Reason:           anomalyReason,
			})
		}

		sort.Slice(catAnomalies, func(i, j int) bool {
			return math.Abs(catAnomalies[i].DeviationPercent) > math.Abs(catAnomalies[j].DeviationPercent)
		})
		if len(catAnomalies) > maxAnomaliesPerCat {
			catAnomalies = catAnomalies[:maxAnomaliesPerCat]
		}
		anomalies = append(anomalies, catAnomalies...)
	}

	sort.Slice(anomalies, func(i, j int) bool {
		return math.Abs(anomalies[i].DeviationPercent) > math.Abs(anomalies[j].DeviationPercent)
	})
	if len(anomalies) > maxAnomaliesTotal {
		anomalies = anomalies[:maxAnomaliesTotal]
	}
	return anomalies
}
