package service

import (
	"context"
	"fmt"
	"time"

	"github.com/granaflow/backend/internal/forecast"
	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

// ForecastService exposes user-facing operations on individual pending
// forecasts. Maturation and extension live in ForecastJobs.
type ForecastService struct {
	store store.Store
	now   func() time.Time
}

func NewForecastService(st store.Store) *ForecastService {
	return &ForecastService{store: st, now: time.Now}
}

// UpdateOccurrence patches a single pending forecast. Matured expenses
// are rejected; they are edited through the regular expense flow.
func (s *ForecastService) UpdateOccurrence(ctx context.Context, id string, patch model.ExpensePatch) (*model.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsForecast {
		return nil, Validationf("expense %s is not a pending forecast", id)
	}
	patch.Apply(e, s.now().UTC())
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("updating forecast: %w", err)
	}
	return e, nil
}

// UpdateAllFuture patches every pending forecast of a template dated on
// or after from. Returns the number of forecasts updated.
func (s *ForecastService) UpdateAllFuture(ctx context.Context, templateID string, from time.Time, patch model.ExpensePatch) (int, error) {
	n, err := s.store.UpdateFutureForecasts(ctx, templateID, forecast.MidnightUTC(from), patch)
	if err != nil {
		return 0, fmt.Errorf("updating future forecasts: %w", err)
	}
	return n, nil
}

// Confirm flips one pending forecast into an actual expense ahead of its
// scheduled maturation.
func (s *ForecastService) Confirm(ctx context.Context, id string) error {
	n, err := s.store.ConfirmForecastsByID(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("confirming forecast: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// BulkConfirm confirms a set of pending forecasts. IDs that do not name
// a pending forecast are skipped; the count of flipped rows is returned.
func (s *ForecastService) BulkConfirm(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no forecast ids given")
	}
	return s.store.ConfirmForecastsByID(ctx, ids)
}

// BulkDelete removes a set of pending forecasts. Matured expenses among
// the ids are skipped.
func (s *ForecastService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, Validationf("no forecast ids given")
	}
	return s.store.DeleteForecastsByID(ctx, ids)
}

// Upcoming lists pending forecasts due within the next days days,
// starting today, ordered by forecast date.
func (s *ForecastService) Upcoming(ctx context.Context, days int) ([]*model.Expense, error) {
	if days <= 0 {
		days = 30
	}
	from := forecast.MidnightUTC(s.now())
	to := from.AddDate(0, 0, days)
	return s.store.ListUpcomingForecasts(ctx, from, to)
}

// ForTemplate lists every pending forecast of a template, ordered by
// forecast date.
func (s *ForecastService) ForTemplate(ctx context.Context, templateID string) ([]*model.Expense, error) {
	return s.store.ListForecasts(ctx, templateID)
}
