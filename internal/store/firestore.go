package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/finsight-app/backend/internal/model"
)

// Collection names. Field filters below must match the Go struct firestore
// tags (PascalCase).
const (
	expensesCollection = "expenses"
	budgetsCollection  = "budgets"
	goalsCollection    = "savingGoals"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("Date") + OrderBy(__name__).
// The cursor must include both the Date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		// Fetch the cursor document to get its Date value for composite StartAfter
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// wrapNotFound converts a Firestore NotFound status into ErrNotFound so the
// HTTP layer can map it without string matching.
func wrapNotFound(kind, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", kind, id, err)
}

// Expense operations

// CreateExpense creates a new expense in Firestore
func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// BatchCreateExpenses writes multiple expenses in one bulk operation.
func (s *FirestoreStore) BatchCreateExpenses(ctx context.Context, expenses []*model.Expense) error {
	bw := s.client.BulkWriter(ctx)
	for _, expense := range expenses {
		if _, err := bw.Set(s.client.Collection(expensesCollection).Doc(expense.ID), expense); err != nil {
			return fmt.Errorf("failed to enqueue expense %s: %w", expense.ID, err)
		}
	}
	bw.End()
	return nil
}

// GetExpense retrieves an expense from Firestore
func (s *FirestoreStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	doc, err := s.client.Collection(expensesCollection).Doc(expenseID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("expense", expenseID, err)
	}

	var expense model.Expense
	if err := doc.DataTo(&expense); err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	return &expense, nil
}

// UpdateExpense updates an existing expense in Firestore
func (s *FirestoreStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// DeleteExpense deletes an expense from Firestore
func (s *FirestoreStore) DeleteExpense(ctx context.Context, expenseID string) error {
	_, err := s.client.Collection(expensesCollection).Doc(expenseID).Delete(ctx)
	return err
}

// ListExpenses lists expenses from Firestore
func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	query := s.client.Collection(expensesCollection).Query

	if userID != "" {
		query = query.Where("UserId", "==", userID)
	}

	hasDateFilter := startDate != nil || endDate != nil
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	// When date range filters are present, Firestore requires OrderBy on the
	// range field first, so the pagination cursor has to carry the Date value.
	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, expensesCollection, pageSize, pageToken)
	} else {
		query, err = s.applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list expenses: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	// Detect next page
	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	expenses := make([]*model.Expense, 0, len(docs))
	for _, doc := range docs {
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, "", fmt.Errorf("failed to parse expense: %w", err)
		}
		expenses = append(expenses, &expense)
	}

	return expenses, nextPageToken, nil
}

// Budget operations

// CreateBudget creates a new budget in Firestore
func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

// GetBudget retrieves a budget from Firestore
func (s *FirestoreStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	doc, err := s.client.Collection(budgetsCollection).Doc(budgetID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("budget", budgetID, err)
	}

	var budget model.Budget
	if err := doc.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget in Firestore
func (s *FirestoreStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

// DeleteBudget deletes a budget from Firestore
func (s *FirestoreStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budgetID).Delete(ctx)
	return err
}

// ListBudgets lists budgets from Firestore, optionally filtered to one period.
func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string, period *time.Time, pageSize int32, pageToken string) ([]*model.Budget, string, error) {
	query := s.client.Collection(budgetsCollection).Query

	if userID != "" {
		query = query.Where("UserId", "==", userID)
	}
	if period != nil {
		query = query.Where("Period", "==", model.MonthStart(*period))
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list budgets: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	budgets := make([]*model.Budget, 0, len(docs))
	for _, doc := range docs {
		var budget model.Budget
		if err := doc.DataTo(&budget); err != nil {
			return nil, "", fmt.Errorf("failed to parse budget: %w", err)
		}
		budgets = append(budgets, &budget)
	}

	return budgets, nextPageToken, nil
}

// Saving goal operations

// CreateGoal creates a new saving goal in Firestore
func (s *FirestoreStore) CreateGoal(ctx context.Context, goal *model.SavingGoal) error {
	_, err := s.client.Collection(goalsCollection).Doc(goal.ID).Set(ctx, goal)
	return err
}

// GetGoal retrieves a saving goal from Firestore
func (s *FirestoreStore) GetGoal(ctx context.Context, goalID string) (*model.SavingGoal, error) {
	doc, err := s.client.Collection(goalsCollection).Doc(goalID).Get(ctx)
	if err != nil {
		return nil, wrapNotFound("goal", goalID, err)
	}

	var goal model.SavingGoal
	if err := doc.DataTo(&goal); err != nil {
		return nil, fmt.Errorf("failed to parse goal: %w", err)
	}
	return &goal, nil
}

// UpdateGoal updates an existing saving goal in Firestore
func (s *FirestoreStore) UpdateGoal(ctx context.Context, goal *model.SavingGoal) error {
	_, err := s.client.Collection(goalsCollection).Doc(goal.ID).Set(ctx, goal)
	return err
}

// DeleteGoal deletes a saving goal from Firestore
func (s *FirestoreStore) DeleteGoal(ctx context.Context, goalID string) error {
	_, err := s.client.Collection(goalsCollection).Doc(goalID).Delete(ctx)
	return err
}

// ListGoals lists saving goals from Firestore
func (s *FirestoreStore) ListGoals(ctx context.Context, userID string, includeArchived bool, pageSize int32, pageToken string) ([]*model.SavingGoal, string, error) {
	query := s.client.Collection(goalsCollection).Query

	if userID != "" {
		query = query.Where("UserId", "==", userID)
	}
	if !includeArchived {
		query = query.Where("Archived", "==", false)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list goals: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	goals := make([]*model.SavingGoal, 0, len(docs))
	for _, doc := range docs {
		var goal model.SavingGoal
		if err := doc.DataTo(&goal); err != nil {
			return nil, "", fmt.Errorf("failed to parse goal: %w", err)
		}
		goals = append(goals, &goal)
	}

	return goals, nextPageToken, nil
}
