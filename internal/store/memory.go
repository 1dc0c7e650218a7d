package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/granaflow/backend/internal/model"
)

// MemoryStore implements Store with in-memory maps. It backs local development
// and is the storage double used by service tests.
type MemoryStore struct {
	mu sync.RWMutex

	expenses    map[string]*model.Expense
	recurring   map[string]*model.RecurringExpense
	categories  map[string]*model.Category
	splitEvents map[string]*model.SplitEvent
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:    make(map[string]*model.Expense),
		recurring:   make(map[string]*model.RecurringExpense),
		categories:  make(map[string]*model.Category),
		splitEvents: make(map[string]*model.SplitEvent),
	}
}

func cloneExpense(e *model.Expense) *model.Expense {
	c := *e
	if e.ForecastDate != nil {
		d := *e.ForecastDate
		c.ForecastDate = &d
	}
	if e.Insights != nil {
		ins := *e.Insights
		c.Insights = &ins
	}
	c.Tags = append([]string(nil), e.Tags...)
	return &c
}

func cloneRecurring(r *model.RecurringExpense) *model.RecurringExpense {
	c := *r
	if r.EndDate != nil {
		d := *r.EndDate
		c.EndDate = &d
	}
	if r.DayOfMonth != nil {
		v := *r.DayOfMonth
		c.DayOfMonth = &v
	}
	if r.DayOfWeek != nil {
		v := *r.DayOfWeek
		c.DayOfWeek = &v
	}
	c.Tags = append([]string(nil), r.Tags...)
	return &c
}

func cloneCategory(cat *model.Category) *model.Category {
	c := *cat
	c.Subcategories = append([]model.Subcategory(nil), cat.Subcategories...)
	return &c
}

func cloneSplitEvent(e *model.SplitEvent) *model.SplitEvent {
	c := *e
	c.Participants = append([]model.Participant(nil), e.Participants...)
	c.Receipts = append([]model.Receipt(nil), e.Receipts...)
	return &c
}

// CreateExpense stores a new expense.
func (s *MemoryStore) CreateExpense(_ context.Context, expense *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	s.expenses[expense.ID] = cloneExpense(expense)
	return nil
}

// GetExpense retrieves an expense by id.
func (s *MemoryStore) GetExpense(_ context.Context, expenseID string) (*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneExpense(e), nil
}

// UpdateExpense overwrites an existing expense.
func (s *MemoryStore) UpdateExpense(_ context.Context, expense *model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expense.ID]; !ok {
		return ErrNotFound
	}
	s.expenses[expense.ID] = cloneExpense(expense)
	return nil
}

// DeleteExpense removes an expense by id.
func (s *MemoryStore) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expenseID]; !ok {
		return ErrNotFound
	}
	delete(s.expenses, expenseID)
	return nil
}

// InsertExpenses stores a batch of expenses, assigning ids where missing.
func (s *MemoryStore) InsertExpenses(_ context.Context, expenses []*model.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		s.expenses[e.ID] = cloneExpense(e)
	}
	return nil
}

// ListExpenses returns expenses for a user, optionally bounded by date, newest
// first.
func (s *MemoryStore) ListExpenses(_ context.Context, userID string, startDate, endDate *time.Time, limit int) ([]*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Expense
	for _, e := range s.expenses {
		if userID != "" && e.UserID != userID {
			continue
		}
		if startDate != nil && e.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && e.Date.After(*endDate) {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) forecastsForTemplate(templateID string) []*model.Expense {
	var out []*model.Expense
	for _, e := range s.expenses {
		if e.IsForecast && e.RecurringExpenseID == templateID && e.ForecastDate != nil {
			out = append(out, e)
		}
	}
	return out
}

// LatestForecast returns the pending forecast with the greatest forecastDate
// for the given template, or ErrNotFound when none remain.
func (s *MemoryStore) LatestForecast(_ context.Context, templateID string) (*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.Expense
	for _, e := range s.forecastsForTemplate(templateID) {
		if latest == nil || e.ForecastDate.After(*latest.ForecastDate) {
			latest = e
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneExpense(latest), nil
}

// ListForecasts returns all pending forecasts for a template ordered by
// forecastDate.
func (s *MemoryStore) ListForecasts(_ context.Context, templateID string) ([]*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Expense
	for _, e := range s.forecastsForTemplate(templateID) {
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ForecastDate.Before(*out[j].ForecastDate) })
	return out, nil
}

// ListUpcomingForecasts returns pending forecasts with forecastDate in
// [from, to], ordered by forecastDate.
func (s *MemoryStore) ListUpcomingForecasts(_ context.Context, from, to time.Time) ([]*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Expense
	for _, e := range s.expenses {
		if !e.IsForecast || e.ForecastDate == nil {
			continue
		}
		if e.ForecastDate.Before(from) || e.ForecastDate.After(to) {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ForecastDate.Before(*out[j].ForecastDate) })
	return out, nil
}

// FindMatchingForecasts returns up to limit pending forecasts with
// forecastDate in [dateFrom, dateTo] and |amount| in [minAbsAmount,
// maxAbsAmount].
func (s *MemoryStore) FindMatchingForecasts(_ context.Context, dateFrom, dateTo time.Time, minAbsAmount, maxAbsAmount float64, limit int) ([]*model.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Expense
	for _, e := range s.expenses {
		if !e.IsForecast || e.ForecastDate == nil {
			continue
		}
		if e.ForecastDate.Before(dateFrom) || e.ForecastDate.After(dateTo) {
			continue
		}
		abs := math.Abs(e.Amount)
		if abs < minAbsAmount || abs > maxAbsAmount {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MatureForecasts flips every pending forecast with forecastDate <= until into
// an ordinary expense. Already-matured records are never touched, so re-runs
// are no-ops.
func (s *MemoryStore) MatureForecasts(_ context.Context, until time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now().UTC()
	for _, e := range s.expenses {
		if e.IsForecast && e.ForecastDate != nil && !e.ForecastDate.After(until) {
			e.IsForecast = false
			e.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

// DeleteForecasts removes pending forecasts for a template. With a non-nil
// after cutoff only forecasts strictly past it are removed.
func (s *MemoryStore) DeleteForecasts(_ context.Context, templateID string, after *time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, e := range s.expenses {
		if !e.IsForecast || e.RecurringExpenseID != templateID || e.ForecastDate == nil {
			continue
		}
		if after != nil && !e.ForecastDate.After(*after) {
			continue
		}
		delete(s.expenses, id)
		count++
	}
	return count, nil
}

// UpdateFutureForecasts applies a patch to every pending forecast of a
// template with forecastDate >= from.
func (s *MemoryStore) UpdateFutureForecasts(_ context.Context, templateID string, from time.Time, patch model.ExpensePatch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now().UTC()
	for _, e := range s.expenses {
		if !e.IsForecast || e.RecurringExpenseID != templateID || e.ForecastDate == nil {
			continue
		}
		if e.ForecastDate.Before(from) {
			continue
		}
		patch.Apply(e, now)
		count++
	}
	return count, nil
}

// DeleteForecastsByID removes the given records, skipping any that are not
// pending forecasts.
func (s *MemoryStore) DeleteForecastsByID(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range ids {
		if e, ok := s.expenses[id]; ok && e.IsForecast {
			delete(s.expenses, id)
			count++
		}
	}
	return count, nil
}

// ConfirmForecastsByID manually matures the given records, skipping any that
// are not pending forecasts.
func (s *MemoryStore) ConfirmForecastsByID(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now().UTC()
	for _, id := range ids {
		if e, ok := s.expenses[id]; ok && e.IsForecast {
			e.IsForecast = false
			e.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

// CreateRecurring stores a new recurring template.
func (s *MemoryStore) CreateRecurring(_ context.Context, tmpl *model.RecurringExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	s.recurring[tmpl.ID] = cloneRecurring(tmpl)
	return nil
}

// GetRecurring retrieves a recurring template by id.
func (s *MemoryStore) GetRecurring(_ context.Context, templateID string) (*model.RecurringExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recurring[templateID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecurring(r), nil
}

// UpdateRecurring overwrites an existing recurring template.
func (s *MemoryStore) UpdateRecurring(_ context.Context, tmpl *model.RecurringExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[tmpl.ID]; !ok {
		return ErrNotFound
	}
	s.recurring[tmpl.ID] = cloneRecurring(tmpl)
	return nil
}

// DeleteRecurring removes a recurring template.
func (s *MemoryStore) DeleteRecurring(_ context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[templateID]; !ok {
		return ErrNotFound
	}
	delete(s.recurring, templateID)
	return nil
}

// ListRecurring returns templates for a user (all users when userID is empty),
// newest first.
func (s *MemoryStore) ListRecurring(_ context.Context, userID string, activeOnly bool) ([]*model.RecurringExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.RecurringExpense
	for _, r := range s.recurring {
		if userID != "" && r.UserID != userID {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, cloneRecurring(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CreateCategory stores a new category.
func (s *MemoryStore) CreateCategory(_ context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	s.categories[category.ID] = cloneCategory(category)
	return nil
}

// GetCategory retrieves a category by id.
func (s *MemoryStore) GetCategory(_ context.Context, categoryID string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCategory(c), nil
}

// UpdateCategory overwrites an existing category.
func (s *MemoryStore) UpdateCategory(_ context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[category.ID]; !ok {
		return ErrNotFound
	}
	s.categories[category.ID] = cloneCategory(category)
	return nil
}

// DeleteCategory removes a category.
func (s *MemoryStore) DeleteCategory(_ context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[categoryID]; !ok {
		return ErrNotFound
	}
	delete(s.categories, categoryID)
	return nil
}

// ListCategories returns all categories in display order.
func (s *MemoryStore) ListCategories(_ context.Context) ([]*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Category
	for _, c := range s.categories {
		out = append(out, cloneCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// CountCategories returns the number of stored categories.
func (s *MemoryStore) CountCategories(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories), nil
}

// CreateSplitEvent stores a new split event.
func (s *MemoryStore) CreateSplitEvent(_ context.Context, event *model.SplitEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	s.splitEvents[event.ID] = cloneSplitEvent(event)
	return nil
}

// GetSplitEvent retrieves a split event by id.
func (s *MemoryStore) GetSplitEvent(_ context.Context, eventID string) (*model.SplitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.splitEvents[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSplitEvent(e), nil
}

// UpdateSplitEvent overwrites an existing split event.
func (s *MemoryStore) UpdateSplitEvent(_ context.Context, event *model.SplitEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.splitEvents[event.ID]; !ok {
		return ErrNotFound
	}
	s.splitEvents[event.ID] = cloneSplitEvent(event)
	return nil
}

// DeleteSplitEvent removes a split event.
func (s *MemoryStore) DeleteSplitEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.splitEvents[eventID]; !ok {
		return ErrNotFound
	}
	delete(s.splitEvents, eventID)
	return nil
}

// ListSplitEvents returns events hosted by a user, most recent event first.
func (s *MemoryStore) ListSplitEvents(_ context.Context, hostUserID string) ([]*model.SplitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.SplitEvent
	for _, e := range s.splitEvents {
		if hostUserID != "" && e.HostUserID != hostUserID {
			continue
		}
		out = append(out, cloneSplitEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	return out, nil
}
