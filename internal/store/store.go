package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/finsight-app/backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist. Implementations
// wrap it so callers can test with errors.Is.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations used by the service
// and the analytics engine.
type Store interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error)
	BatchCreateExpenses(ctx context.Context, expenses []*model.Expense) error

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgets(ctx context.Context, userID string, period *time.Time, pageSize int32, pageToken string) ([]*model.Budget, string, error)

	// Saving goal operations
	CreateGoal(ctx context.Context, goal *model.SavingGoal) error
	GetGoal(ctx context.Context, goalID string) (*model.SavingGoal, error)
	UpdateGoal(ctx context.Context, goal *model.SavingGoal) error
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoals(ctx context.Context, userID string, includeArchived bool, pageSize int32, pageToken string) ([]*model.SavingGoal, string, error)
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
