package model

import "time"

// Category identifies the spending category of an expense or budget.
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryHousing       Category = "HOUSING"
	CategoryUtilities     Category = "UTILITIES"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryHealthcare    Category = "HEALTHCARE"
	CategoryShopping      Category = "SHOPPING"
	CategoryEducation     Category = "EDUCATION"
	CategorySavings       Category = "SAVINGS"
	CategoryOther         Category = "OTHER"
)

// CategoryLabels maps each category to its display name. Handlers and the
// analytics engine use this table instead of deriving names at runtime.
var CategoryLabels = map[Category]string{
	CategoryFood:          "Food",
	CategoryTransport:     "Transport",
	CategoryHousing:       "Housing",
	CategoryUtilities:     "Utilities",
	CategoryEntertainment: "Entertainment",
	CategoryHealthcare:    "Healthcare",
	CategoryShopping:      "Shopping",
	CategoryEducation:     "Education",
	CategorySavings:       "Savings",
	CategoryOther:         "Other",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// Label returns the display name for the category, falling back to the raw
// value for unknown categories.
func (c Category) Label() string {
	if label, ok := CategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Expense is a single spending record. The analytics engine treats expenses
// as immutable snapshots; only the CRUD layer writes them.
type Expense struct {
	ID          string    `json:"id" firestore:"Id"`
	UserID      string    `json:"userId" firestore:"UserId"`
	Category    Category  `json:"category" firestore:"Category"`
	Amount      float64   `json:"amount" firestore:"Amount"`
	Description string    `json:"description,omitempty" firestore:"Description"`
	Date        time.Time `json:"date" firestore:"Date"`
	CreatedAt   time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}

// Budget is a per-category spending limit for one calendar month. Period is
// normalized to midnight UTC on the first day of its month; at most one
// budget exists per (user, category, period).
type Budget struct {
	ID          string    `json:"id" firestore:"Id"`
	UserID      string    `json:"userId" firestore:"UserId"`
	Category    Category  `json:"category" firestore:"Category"`
	LimitAmount float64   `json:"limitAmount" firestore:"LimitAmount"`
	Period      time.Time `json:"period" firestore:"Period"`
	CreatedAt   time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}

// SavingGoal tracks progress toward a savings target.
type SavingGoal struct {
	ID            string     `json:"id" firestore:"Id"`
	UserID        string     `json:"userId" firestore:"UserId"`
	Title         string     `json:"title" firestore:"Title"`
	Description   string     `json:"description,omitempty" firestore:"Description"`
	TargetAmount  float64    `json:"targetAmount" firestore:"TargetAmount"`
	CurrentAmount float64    `json:"currentAmount" firestore:"CurrentAmount"`
	Deadline      *time.Time `json:"deadline,omitempty" firestore:"Deadline"`
	Archived      bool       `json:"archived" firestore:"Archived"`
	CreatedAt     time.Time  `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt     time.Time  `json:"updatedAt" firestore:"UpdatedAt"`
}

// MonthStart normalizes t to midnight UTC on the first day of its month.
// Budget periods and month-window queries use this form everywhere.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last instant of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
