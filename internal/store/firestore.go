package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/granaflow/backend/internal/model"
)

const (
	expensesCollection    = "expenses"
	recurringCollection   = "recurringExpenses"
	categoriesCollection  = "categories"
	splitEventsCollection = "splitEvents"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{client: client}
}

func mapNotFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// CreateExpense creates a new expense document.
func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = s.client.Collection(expensesCollection).NewDoc().ID
	}
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// GetExpense retrieves an expense document.
func (s *FirestoreStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	doc, err := s.client.Collection(expensesCollection).Doc(expenseID).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var expense model.Expense
	if err := doc.DataTo(&expense); err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	return &expense, nil
}

// UpdateExpense overwrites an existing expense document.
func (s *FirestoreStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(expensesCollection).Doc(expense.ID).Set(ctx, expense)
	return err
}

// DeleteExpense removes an expense document.
func (s *FirestoreStore) DeleteExpense(ctx context.Context, expenseID string) error {
	_, err := s.client.Collection(expensesCollection).Doc(expenseID).Delete(ctx)
	return err
}

// InsertExpenses writes a batch of expenses through a BulkWriter.
func (s *FirestoreStore) InsertExpenses(ctx context.Context, expenses []*model.Expense) error {
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(expenses))
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = s.client.Collection(expensesCollection).NewDoc().ID
		}
		job, err := bw.Set(s.client.Collection(expensesCollection).Doc(e.ID), e)
		if err != nil {
			return fmt.Errorf("failed to enqueue expense write: %w", err)
		}
		jobs = append(jobs, job)
	}
	_, err := flushBulkWriter(bw, jobs)
	return err
}

// flushBulkWriter waits for every enqueued write and returns how many
// committed. BulkWriter flushes are not atomic, so a partial failure must
// not be reported as full success.
func flushBulkWriter(bw *firestore.BulkWriter, jobs []*firestore.BulkWriterJob) (int, error) {
	bw.End()
	committed := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		committed++
	}
	if firstErr != nil {
		return committed, fmt.Errorf("bulk write failed: %w", firstErr)
	}
	return committed, nil
}

// ListExpenses returns expenses for a user, optionally bounded by date, newest
// first.
func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, startDate, endDate *time.Time, limit int) ([]*model.Expense, error) {
	query := s.client.Collection(expensesCollection).Query
	if userID != "" {
		query = query.Where("userId", "==", userID)
	}
	if startDate != nil {
		query = query.Where("date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("date", "<=", *endDate)
	}
	query = query.OrderBy("date", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return s.collectExpenses(ctx, query)
}

func (s *FirestoreStore) collectExpenses(ctx context.Context, query firestore.Query) ([]*model.Expense, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*model.Expense
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate expenses: %w", err)
		}
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, fmt.Errorf("failed to parse expense: %w", err)
		}
		out = append(out, &expense)
	}
	return out, nil
}

// LatestForecast returns the pending forecast with the greatest forecastDate
// for a template.
func (s *FirestoreStore) LatestForecast(ctx context.Context, templateID string) (*model.Expense, error) {
	query := s.client.Collection(expensesCollection).
		Where("recurringExpenseId", "==", templateID).
		Where("isForecast", "==", true).
		OrderBy("forecastDate", firestore.Desc).
		Limit(1)

	forecasts, err := s.collectExpenses(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(forecasts) == 0 {
		return nil, ErrNotFound
	}
	return forecasts[0], nil
}

// ListForecasts returns all pending forecasts for a template ordered by
// forecastDate.
func (s *FirestoreStore) ListForecasts(ctx context.Context, templateID string) ([]*model.Expense, error) {
	query := s.client.Collection(expensesCollection).
		Where("recurringExpenseId", "==", templateID).
		Where("isForecast", "==", true).
		OrderBy("forecastDate", firestore.Asc)
	return s.collectExpenses(ctx, query)
}

// ListUpcomingForecasts returns pending forecasts with forecastDate in
// [from, to] ordered by forecastDate.
func (s *FirestoreStore) ListUpcomingForecasts(ctx context.Context, from, to time.Time) ([]*model.Expense, error) {
	query := s.client.Collection(expensesCollection).
		Where("isForecast", "==", true).
		Where("forecastDate", ">=", from).
		Where("forecastDate", "<=", to).
		OrderBy("forecastDate", firestore.Asc)
	return s.collectExpenses(ctx, query)
}

// FindMatchingForecasts returns up to limit pending forecasts inside the date
// window whose |amount| falls inside [minAbsAmount, maxAbsAmount]. Firestore
// cannot express abs() in a predicate, so the amount filter runs over the
// date-window candidates in memory.
func (s *FirestoreStore) FindMatchingForecasts(ctx context.Context, dateFrom, dateTo time.Time, minAbsAmount, maxAbsAmount float64, limit int) ([]*model.Expense, error) {
	query := s.client.Collection(expensesCollection).
		Where("isForecast", "==", true).
		Where("forecastDate", ">=", dateFrom).
		Where("forecastDate", "<=", dateTo)

	candidates, err := s.collectExpenses(ctx, query)
	if err != nil {
		return nil, err
	}

	var out []*model.Expense
	for _, e := range candidates {
		abs := math.Abs(e.Amount)
		if abs < minAbsAmount || abs > maxAbsAmount {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MatureForecasts bulk-flips every pending forecast with forecastDate <= until
// into an ordinary expense and returns the number updated.
func (s *FirestoreStore) MatureForecasts(ctx context.Context, until time.Time) (int, error) {
	query := s.client.Collection(expensesCollection).
		Where("isForecast", "==", true).
		Where("forecastDate", "<=", until)

	return s.bulkUpdate(ctx, query, []firestore.Update{
		{Path: "isForecast", Value: false},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

// DeleteForecasts bulk-deletes pending forecasts for a template, all of them
// or only those strictly after the cutoff.
func (s *FirestoreStore) DeleteForecasts(ctx context.Context, templateID string, after *time.Time) (int, error) {
	query := s.client.Collection(expensesCollection).
		Where("recurringExpenseId", "==", templateID).
		Where("isForecast", "==", true)
	if after != nil {
		query = query.Where("forecastDate", ">", *after)
	}
	return s.bulkDelete(ctx, query)
}

// UpdateFutureForecasts applies a patch to every pending forecast of a
// template with forecastDate >= from.
func (s *FirestoreStore) UpdateFutureForecasts(ctx context.Context, templateID string, from time.Time, patch model.ExpensePatch) (int, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now().UTC()}}
	if patch.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *patch.Description})
	}
	if patch.Amount != nil {
		updates = append(updates, firestore.Update{Path: "amount", Value: *patch.Amount})
	}
	if patch.CategoryID != nil {
		updates = append(updates, firestore.Update{Path: "categoryId", Value: *patch.CategoryID})
	}
	if patch.SubcategoryID != nil {
		updates = append(updates, firestore.Update{Path: "subcategoryId", Value: *patch.SubcategoryID})
	}
	if patch.MerchantName != nil {
		updates = append(updates, firestore.Update{Path: "merchantName", Value: *patch.MerchantName})
	}

	query := s.client.Collection(expensesCollection).
		Where("recurringExpenseId", "==", templateID).
		Where("isForecast", "==", true).
		Where("forecastDate", ">=", from)

	return s.bulkUpdate(ctx, query, updates)
}

// DeleteForecastsByID deletes the given records, skipping any that are not
// pending forecasts.
func (s *FirestoreStore) DeleteForecastsByID(ctx context.Context, ids []string) (int, error) {
	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return len(jobs), err
		}
		if !expense.IsForecast {
			continue
		}
		job, err := bw.Delete(s.client.Collection(expensesCollection).Doc(id))
		if err != nil {
			return len(jobs), fmt.Errorf("failed to enqueue delete: %w", err)
		}
		jobs = append(jobs, job)
	}
	return flushBulkWriter(bw, jobs)
}

// ConfirmForecastsByID manually matures the given records, skipping any that
// are not pending forecasts.
func (s *FirestoreStore) ConfirmForecastsByID(ctx context.Context, ids []string) (int, error) {
	bw := s.client.BulkWriter(ctx)
	now := time.Now().UTC()
	var jobs []*firestore.BulkWriterJob
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return len(jobs), err
		}
		if !expense.IsForecast {
			continue
		}
		updates := []firestore.Update{
			{Path: "isForecast", Value: false},
			{Path: "updatedAt", Value: now},
		}
		job, err := bw.Update(s.client.Collection(expensesCollection).Doc(id), updates)
		if err != nil {
			return len(jobs), fmt.Errorf("failed to enqueue update: %w", err)
		}
		jobs = append(jobs, job)
	}
	return flushBulkWriter(bw, jobs)
}

func (s *FirestoreStore) bulkUpdate(ctx context.Context, query firestore.Query, updates []firestore.Update) (int, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return len(jobs), fmt.Errorf("failed to iterate documents: %w", err)
		}
		job, err := bw.Update(doc.Ref, updates)
		if err != nil {
			return len(jobs), fmt.Errorf("failed to enqueue update: %w", err)
		}
		jobs = append(jobs, job)
	}
	return flushBulkWriter(bw, jobs)
}

func (s *FirestoreStore) bulkDelete(ctx context.Context, query firestore.Query) (int, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return len(jobs), fmt.Errorf("failed to iterate documents: %w", err)
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			return len(jobs), fmt.Errorf("failed to enqueue delete: %w", err)
		}
		jobs = append(jobs, job)
	}
	return flushBulkWriter(bw, jobs)
}

// CreateRecurring creates a new recurring template document.
func (s *FirestoreStore) CreateRecurring(ctx context.Context, tmpl *model.RecurringExpense) error {
	if tmpl.ID == "" {
		tmpl.ID = s.client.Collection(recurringCollection).NewDoc().ID
	}
	_, err := s.client.Collection(recurringCollection).Doc(tmpl.ID).Set(ctx, tmpl)
	return err
}

// GetRecurring retrieves a recurring template document.
func (s *FirestoreStore) GetRecurring(ctx context.Context, templateID string) (*model.RecurringExpense, error) {
	doc, err := s.client.Collection(recurringCollection).Doc(templateID).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var tmpl model.RecurringExpense
	if err := doc.DataTo(&tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse recurring template: %w", err)
	}
	return &tmpl, nil
}

// UpdateRecurring overwrites an existing recurring template document.
func (s *FirestoreStore) UpdateRecurring(ctx context.Context, tmpl *model.RecurringExpense) error {
	_, err := s.client.Collection(recurringCollection).Doc(tmpl.ID).Set(ctx, tmpl)
	return err
}

// DeleteRecurring removes a recurring template document.
func (s *FirestoreStore) DeleteRecurring(ctx context.Context, templateID string) error {
	_, err := s.client.Collection(recurringCollection).Doc(templateID).Delete(ctx)
	return err
}

// ListRecurring returns templates for a user (all users when userID is empty),
// newest first.
func (s *FirestoreStore) ListRecurring(ctx context.Context, userID string, activeOnly bool) ([]*model.RecurringExpense, error) {
	query := s.client.Collection(recurringCollection).Query
	if userID != "" {
		query = query.Where("userId", "==", userID)
	}
	if activeOnly {
		query = query.Where("isActive", "==", true)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*model.RecurringExpense
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate recurring templates: %w", err)
		}
		var tmpl model.RecurringExpense
		if err := doc.DataTo(&tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse recurring template: %w", err)
		}
		out = append(out, &tmpl)
	}
	return out, nil
}

// CreateCategory creates a new category document.
func (s *FirestoreStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = s.client.Collection(categoriesCollection).NewDoc().ID
	}
	_, err := s.client.Collection(categoriesCollection).Doc(category.ID).Set(ctx, category)
	return err
}

// GetCategory retrieves a category document.
func (s *FirestoreStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	doc, err := s.client.Collection(categoriesCollection).Doc(categoryID).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var category model.Category
	if err := doc.DataTo(&category); err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}
	return &category, nil
}

// UpdateCategory overwrites an existing category document.
func (s *FirestoreStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	_, err := s.client.Collection(categoriesCollection).Doc(category.ID).Set(ctx, category)
	return err
}

// DeleteCategory removes a category document.
func (s *FirestoreStore) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := s.client.Collection(categoriesCollection).Doc(categoryID).Delete(ctx)
	return err
}

// ListCategories returns all categories in display order.
func (s *FirestoreStore) ListCategories(ctx context.Context) ([]*model.Category, error) {
	iter := s.client.Collection(categoriesCollection).OrderBy("order", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*model.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate categories: %w", err)
		}
		var category model.Category
		if err := doc.DataTo(&category); err != nil {
			return nil, fmt.Errorf("failed to parse category: %w", err)
		}
		out = append(out, &category)
	}
	return out, nil
}

// CountCategories returns the number of category documents.
func (s *FirestoreStore) CountCategories(ctx context.Context) (int, error) {
	docs, err := s.client.Collection(categoriesCollection).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return len(docs), nil
}

// CreateSplitEvent creates a new split event document.
func (s *FirestoreStore) CreateSplitEvent(ctx context.Context, event *model.SplitEvent) error {
	if event.ID == "" {
		event.ID = s.client.Collection(splitEventsCollection).NewDoc().ID
	}
	_, err := s.client.Collection(splitEventsCollection).Doc(event.ID).Set(ctx, event)
	return err
}

// GetSplitEvent retrieves a split event document.
func (s *FirestoreStore) GetSplitEvent(ctx context.Context, eventID string) (*model.SplitEvent, error) {
	doc, err := s.client.Collection(splitEventsCollection).Doc(eventID).Get(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var event model.SplitEvent
	if err := doc.DataTo(&event); err != nil {
		return nil, fmt.Errorf("failed to parse split event: %w", err)
	}
	return &event, nil
}

// UpdateSplitEvent overwrites an existing split event document.
func (s *FirestoreStore) UpdateSplitEvent(ctx context.Context, event *model.SplitEvent) error {
	_, err := s.client.Collection(splitEventsCollection).Doc(event.ID).Set(ctx, event)
	return err
}

// DeleteSplitEvent removes a split event document.
func (s *FirestoreStore) DeleteSplitEvent(ctx context.Context, eventID string) error {
	_, err := s.client.Collection(splitEventsCollection).Doc(eventID).Delete(ctx)
	return err
}

// ListSplitEvents returns events hosted by a user, most recent event first.
func (s *FirestoreStore) ListSplitEvents(ctx context.Context, hostUserID string) ([]*model.SplitEvent, error) {
	query := s.client.Collection(splitEventsCollection).Query
	if hostUserID != "" {
		query = query.Where("hostUserId", "==", hostUserID)
	}
	query = query.OrderBy("eventDate", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*model.SplitEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate split events: %w", err)
		}
		var event model.SplitEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, fmt.Errorf("failed to parse split event: %w", err)
		}
		out = append(out, &event)
	}
	return out, nil
}
