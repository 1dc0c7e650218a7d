package store

import (
	"context"
	"errors"
	"time"

	"github.com/granaflow/backend/internal/model"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations used by the services.
// Bulk operations return the number of documents they touched so sweeps can
// report per-run counts.
type Store interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	InsertExpenses(ctx context.Context, expenses []*model.Expense) error
	ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, limit int) ([]*model.Expense, error)

	// Forecast operations. A forecast is an expense with isForecast set; these
	// queries and bulk mutations only ever touch pending forecasts.
	LatestForecast(ctx context.Context, templateID string) (*model.Expense, error)
	ListForecasts(ctx context.Context, templateID string) ([]*model.Expense, error)
	ListUpcomingForecasts(ctx context.Context, from, to time.Time) ([]*model.Expense, error)
	FindMatchingForecasts(ctx context.Context, dateFrom, dateTo time.Time, minAbsAmount, maxAbsAmount float64, limit int) ([]*model.Expense, error)
	MatureForecasts(ctx context.Context, until time.Time) (int, error)
	DeleteForecasts(ctx context.Context, templateID string, after *time.Time) (int, error)
	UpdateFutureForecasts(ctx context.Context, templateID string, from time.Time, patch model.ExpensePatch) (int, error)
	DeleteForecastsByID(ctx context.Context, ids []string) (int, error)
	ConfirmForecastsByID(ctx context.Context, ids []string) (int, error)

	// Recurring template operations
	CreateRecurring(ctx context.Context, tmpl *model.RecurringExpense) error
	GetRecurring(ctx context.Context, templateID string) (*model.RecurringExpense, error)
	UpdateRecurring(ctx context.Context, tmpl *model.RecurringExpense) error
	DeleteRecurring(ctx context.Context, templateID string) error
	ListRecurring(ctx context.Context, userID string, activeOnly bool) ([]*model.RecurringExpense, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CountCategories(ctx context.Context) (int, error)

	// Split event operations
	CreateSplitEvent(ctx context.Context, event *model.SplitEvent) error
	GetSplitEvent(ctx context.Context, eventID string) (*model.SplitEvent, error)
	UpdateSplitEvent(ctx context.Context, event *model.SplitEvent) error
	DeleteSplitEvent(ctx context.Context, eventID string) error
	ListSplitEvents(ctx context.Context, hostUserID string) ([]*model.SplitEvent, error)
}
