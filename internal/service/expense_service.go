package service

import (
	"context"
	"time"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

// ExpenseService is the thin read/delete surface over stored expenses.
// Creation happens through imports, forecast generation and merges.
type ExpenseService struct {
	store store.Store
}

func NewExpenseService(st store.Store) *ExpenseService {
	return &ExpenseService{store: st}
}

// List returns a user's expenses, newest first, optionally bounded by
// date and capped at limit (0 means no cap).
func (s *ExpenseService) List(ctx context.Context, userID string, from, to *time.Time, limit int) ([]*model.Expense, error) {
	return s.store.ListExpenses(ctx, userID, from, to, limit)
}

// Get returns one expense owned by userID.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*model.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, store.ErrNotFound
	}
	return e, nil
}

// Delete removes one expense owned by userID.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.store.DeleteExpense(ctx, id)
}
