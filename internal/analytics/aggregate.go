package analytics

import (
	"math"
	"sort"

	"github.com/finsight-app/backend/internal/model"
)

// CategoryAggregate holds the summed amount and record count for one category.
type CategoryAggregate struct {
	Total float64
	Count int
}

// sumAmounts returns the total amount across all expenses.
func sumAmounts(expenses []*model.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// aggregateByCategory groups expenses by category, summing amounts and
// counting records per group.
func aggregateByCategory(expenses []*model.Expense) map[model.Category]*CategoryAggregate {
	byCategory := make(map[model.Category]*CategoryAggregate)
	for _, e := range expenses {
		agg, ok := byCategory[e.Category]
		if !ok {
			agg = &CategoryAggregate{}
			byCategory[e.Category] = agg
		}
		agg.Total += e.Amount
		agg.Count++
	}
	return byCategory
}

// sumByWeekday groups expenses by the weekday name of their date, summing
// amounts per weekday.
func sumByWeekday(expenses []*model.Expense) map[string]float64 {
	byWeekday := make(map[string]float64)
	for _, e := range expenses {
		byWeekday[e.Date.Weekday().String()] += e.Amount
	}
	return byWeekday
}

// meanAndStdDev returns the arithmetic mean and population standard deviation
// of the values. Both are 0 for an empty input.
func meanAndStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	stdDev = math.Sqrt(varianceSum / float64(len(values)))
	return mean, stdDev
}

// sortByDateDesc orders expenses newest first without mutating the input.
func sortByDateDesc(expenses []*model.Expense) []*model.Expense {
	sorted := make([]*model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}
