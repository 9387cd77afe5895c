package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/model"
)

// MemoryStore implements Store interface with in-memory storage. It is used
// for local development and as the test double in service tests.
type MemoryStore struct {
	mu sync.RWMutex

	expenses map[string]*model.Expense
	budgets  map[string]*model.Budget
	goals    map[string]*model.SavingGoal
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[string]*model.Expense),
		budgets:  make(map[string]*model.Budget),
		goals:    make(map[string]*model.SavingGoal),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	m.expenses[expense.ID] = expense
	return nil
}

// BatchCreateExpenses creates multiple expenses in the memory store.
func (m *MemoryStore) BatchCreateExpenses(ctx context.Context, expenses []*model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, expense := range expenses {
		if expense.ID == "" {
			expense.ID = uuid.New().String()
		}
		m.expenses[expense.ID] = expense
	}
	return nil
}

func (m *MemoryStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}

	return expense, nil
}

func (m *MemoryStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expense.ID]; !ok {
		return fmt.Errorf("expense %s: %w", expense.ID, ErrNotFound)
	}

	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// First pass: collect matching IDs
	var matchingIDs []string
	for id, expense := range m.expenses {
		if userID != "" && expense.UserID != userID {
			continue
		}
		if startDate != nil && expense.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && expense.Date.After(*endDate) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Expense, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.expenses[id])
	}
	return result, nextToken, nil
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}

	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}

	return budget, nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budget.ID]; !ok {
		return fmt.Errorf("budget %s: %w", budget.ID, ErrNotFound)
	}

	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, period *time.Time, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, budget := range m.budgets {
		if userID != "" && budget.UserID != userID {
			continue
		}
		if period != nil && !budget.Period.Equal(model.MonthStart(*period)) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Budget, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.budgets[id])
	}
	return result, nextToken, nil
}

// Saving goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *model.SavingGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}

	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*model.SavingGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}

	return goal, nil
}

func (m *MemoryStore) UpdateGoal(ctx context.Context, goal *model.SavingGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return fmt.Errorf("goal %s: %w", goal.ID, ErrNotFound)
	}

	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.goals, goalID)
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string, includeArchived bool, pageSize int32, pageToken string) ([]*model.SavingGoal, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, goal := range m.goals {
		if userID != "" && goal.UserID != userID {
			continue
		}
		if !includeArchived && goal.Archived {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.SavingGoal, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, m.goals[id])
	}
	return result, nextToken, nil
}
