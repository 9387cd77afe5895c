// Package importer turns CSV bank statements into expense records. Rows with
// malformed dates or amounts are skipped rather than failing the whole
// import; a negative amount (a credit on the statement) is skipped too since
// expenses are non-negative by definition.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight-app/backend/internal/model"
)

// maxStatementRows bounds a single import.
const maxStatementRows = 5000

// Result reports what a statement parse produced.
type Result struct {
	Expenses []*model.Expense
	Skipped  int
}

// categoryKeywords maps description substrings to categories for rows that
// carry no explicit category column.
var categoryKeywords = []struct {
	keyword  string
	category model.Category
}{
	{"grocer", model.CategoryFood},
	{"restaurant", model.CategoryFood},
	{"cafe", model.CategoryFood},
	{"uber", model.CategoryTransport},
	{"fuel", model.CategoryTransport},
	{"petrol", model.CategoryTransport},
	{"transit", model.CategoryTransport},
	{"rent", model.CategoryHousing},
	{"mortgage", model.CategoryHousing},
	{"electric", model.CategoryUtilities},
	{"water", model.CategoryUtilities},
	{"internet", model.CategoryUtilities},
	{"pharmacy", model.CategoryHealthcare},
	{"clinic", model.CategoryHealthcare},
	{"cinema", model.CategoryEntertainment},
	{"spotify", model.CategoryEntertainment},
	{"netflix", model.CategoryEntertainment},
	{"tuition", model.CategoryEducation},
	{"savings", model.CategorySavings},
}

// ParseStatement reads a CSV statement with columns
// date,description,amount[,category] (header row required) and returns the
// expense records it yields for the given user.
func ParseStatement(r io.Reader, userID string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read statement header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("statement must have date, description and amount columns")
	}

	result := &Result{}
	now := time.Now().UTC()

	for i := 0; i < maxStatementRows; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read statement row: %w", err)
		}
		if len(row) < 3 {
			result.Skipped++
			continue
		}

		date, err := parseDate(row[0])
		if err != nil {
			result.Skipped++
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil || amount.IsNegative() {
			result.Skipped++
			continue
		}

		description := strings.TrimSpace(row[1])

		var category model.Category
		if len(row) >= 4 && strings.TrimSpace(row[3]) != "" {
			category = model.Category(strings.ToUpper(strings.TrimSpace(row[3])))
			if !category.Valid() {
				result.Skipped++
				continue
			}
		} else {
			category = categorize(description)
		}

		value, _ := amount.Round(2).Float64()
		result.Expenses = append(result.Expenses, &model.Expense{
			ID:          uuid.New().String(),
			UserID:      userID,
			Category:    category,
			Amount:      value,
			Description: description,
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return result, nil
}

// parseDate accepts the date layouts banks commonly emit.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"2006-01-02", "02/01/2006", "2006/01/02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

func categorize(description string) model.Category {
	lowered := strings.ToLower(description)
	for _, kw := range categoryKeywords {
		if strings.Contains(lowered, kw.keyword) {
			return kw.category
		}
	}
	return model.CategoryOther
}
