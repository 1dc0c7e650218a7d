package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/granaflow/backend/internal/forecast"
	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

const defaultForecastMonths = 6

// RecurringService manages recurring expense templates and the forecast
// rows derived from them.
type RecurringService struct {
	store store.Store
	now   func() time.Time
}

func NewRecurringService(st store.Store) *RecurringService {
	return &RecurringService{store: st, now: time.Now}
}

// RecurringInput carries the fields needed to create a template.
type RecurringInput struct {
	Description    string
	Amount         float64
	CategoryID     string
	SubcategoryID  string
	MerchantName   string
	Tags           []string
	Frequency      model.Frequency
	DayOfMonth     *int
	DayOfWeek      *int
	StartDate      time.Time
	EndDate        *time.Time
	ForecastMonths int
}

// RecurringUpdate is a partial update. Nil fields are left untouched.
// Updating a template never regenerates forecasts that already exist;
// new values only show up in occurrences generated after the change.
type RecurringUpdate struct {
	Description   *string
	Amount        *float64
	CategoryID    *string
	SubcategoryID *string
	MerchantName  *string
	Tags          []string
	DayOfMonth    *int
	DayOfWeek     *int
	EndDate       *time.Time
	IsActive      *bool
}

func validateAnchor(freq model.Frequency, dayOfMonth, dayOfWeek *int) error {
	switch freq {
	case model.FrequencyMonthly:
		if dayOfMonth == nil {
			return Validationf("monthly templates require dayOfMonth")
		}
		if *dayOfMonth < 1 || *dayOfMonth > 31 {
			return Validationf("dayOfMonth must be between 1 and 31, got %d", *dayOfMonth)
		}
		if dayOfWeek != nil {
			return Validationf("monthly templates must not set dayOfWeek")
		}
	case model.FrequencyWeekly:
		if dayOfWeek == nil {
			return Validationf("weekly templates require dayOfWeek")
		}
		if *dayOfWeek < 0 || *dayOfWeek > 6 {
			return Validationf("dayOfWeek must be between 0 and 6, got %d", *dayOfWeek)
		}
		if dayOfMonth != nil {
			return Validationf("weekly templates must not set dayOfMonth")
		}
	default:
		return Validationf("unknown frequency %q", freq)
	}
	return nil
}

// Create stores a new template and generates its initial forecast window.
func (s *RecurringService) Create(ctx context.Context, userID string, in RecurringInput) (*model.RecurringExpense, error) {
	if in.Description == "" {
		return nil, Validationf("description is required")
	}
	if in.Amount == 0 {
		return nil, Validationf("amount must be non-zero")
	}
	if err := validateAnchor(in.Frequency, in.DayOfMonth, in.DayOfWeek); err != nil {
		return nil, err
	}
	months := in.ForecastMonths
	if months <= 0 {
		months = defaultForecastMonths
	}

	now := s.now().UTC()
	tmpl := &model.RecurringExpense{
		ID:             uuid.New().String(),
		UserID:         userID,
		Description:    in.Description,
		Amount:         in.Amount,
		CategoryID:     in.CategoryID,
		SubcategoryID:  in.SubcategoryID,
		MerchantName:   in.MerchantName,
		Tags:           in.Tags,
		Frequency:      in.Frequency,
		DayOfMonth:     in.DayOfMonth,
		DayOfWeek:      in.DayOfWeek,
		StartDate:      forecast.MidnightUTC(in.StartDate),
		EndDate:        in.EndDate,
		ForecastMonths: months,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateRecurring(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("creating recurring template: %w", err)
	}

	forecasts := forecast.Generate(tmpl, tmpl.StartDate, tmpl.ForecastMonths)
	if len(forecasts) > 0 {
		if err := s.store.InsertExpenses(ctx, forecasts); err != nil {
			return nil, fmt.Errorf("inserting initial forecasts: %w", err)
		}
		forecastsGeneratedTotal.Add(float64(len(forecasts)))
	}
	slog.Info("recurring template created",
		"templateId", tmpl.ID,
		"frequency", tmpl.Frequency,
		"forecasts", len(forecasts))
	return tmpl, nil
}

// Get returns a template owned by userID.
func (s *RecurringService) Get(ctx context.Context, userID, id string) (*model.RecurringExpense, error) {
	tmpl, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.UserID != userID {
		return nil, store.ErrNotFound
	}
	return tmpl, nil
}

// List returns templates for a user, optionally only active ones.
func (s *RecurringService) List(ctx context.Context, userID string, activeOnly bool) ([]*model.RecurringExpense, error) {
	return s.store.ListRecurring(ctx, userID, activeOnly)
}

// RecurringDetail is a template with display fields resolved for listing.
type RecurringDetail struct {
	*model.RecurringExpense
	CategoryName    string `json:"categoryName,omitempty"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
	Cadence         string `json:"cadence"`
}

// ListDetailed returns templates with category names and a human-readable
// cadence resolved.
func (s *RecurringService) ListDetailed(ctx context.Context, userID string, activeOnly bool) ([]RecurringDetail, error) {
	templates, err := s.store.ListRecurring(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	byID := make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	details := make([]RecurringDetail, 0, len(templates))
	for _, tmpl := range templates {
		d := RecurringDetail{
			RecurringExpense: tmpl,
			Cadence:          forecast.FormatCadence(string(tmpl.Frequency), tmpl.DayOfMonth, tmpl.DayOfWeek),
		}
		if cat, ok := byID[tmpl.CategoryID]; ok {
			d.CategoryName = cat.Name
			if sub, ok := cat.Subcategory(tmpl.SubcategoryID); ok {
				d.SubcategoryName = sub.Name
			}
		}
		details = append(details, d)
	}
	return details, nil
}

// Update applies a partial update to a template. Existing forecasts are
// left alone; use ForecastService.UpdateAllFuture to propagate changes.
func (s *RecurringService) Update(ctx context.Context, userID, id string, in RecurringUpdate) (*model.RecurringExpense, error) {
	tmpl, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		tmpl.Description = *in.Description
	}
	if in.Amount != nil {
		if *in.Amount == 0 {
			return nil, Validationf("amount must be non-zero")
		}
		tmpl.Amount = *in.Amount
	}
	if in.CategoryID != nil {
		tmpl.CategoryID = *in.CategoryID
	}
	if in.SubcategoryID != nil {
		tmpl.SubcategoryID = *in.SubcategoryID
	}
	if in.MerchantName != nil {
		tmpl.MerchantName = *in.MerchantName
	}
	if in.Tags != nil {
		tmpl.Tags = in.Tags
	}
	if in.DayOfMonth != nil {
		tmpl.DayOfMonth = in.DayOfMonth
	}
	if in.DayOfWeek != nil {
		tmpl.DayOfWeek = in.DayOfWeek
	}
	if in.EndDate != nil {
		tmpl.EndDate = in.EndDate
	}
	if in.IsActive != nil {
		tmpl.IsActive = *in.IsActive
	}
	if err := validateAnchor(tmpl.Frequency, tmpl.DayOfMonth, tmpl.DayOfWeek); err != nil {
		return nil, err
	}
	tmpl.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateRecurring(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("updating recurring template: %w", err)
	}
	return tmpl, nil
}

// Stop deactivates a template and removes its future forecasts. Forecasts
// dated today or earlier, and all matured occurrences, are kept.
func (s *RecurringService) Stop(ctx context.Context, userID, id string) error {
	tmpl, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	tmpl.IsActive = false
	tmpl.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateRecurring(ctx, tmpl); err != nil {
		return fmt.Errorf("deactivating recurring template: %w", err)
	}
	today := forecast.MidnightUTC(s.now())
	deleted, err := s.store.DeleteForecasts(ctx, id, &today)
	if err != nil {
		return fmt.Errorf("deleting future forecasts: %w", err)
	}
	slog.Info("recurring template stopped", "templateId", id, "deletedForecasts", deleted)
	return nil
}

// Delete removes the template and every remaining forecast derived from
// it, past or future. Matured occurrences are not touched.
func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	deleted, err := s.store.DeleteForecasts(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("deleting forecasts: %w", err)
	}
	if err := s.store.DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("deleting recurring template: %w", err)
	}
	slog.Info("recurring template deleted", "templateId", id, "deletedForecasts", deleted)
	return nil
}
