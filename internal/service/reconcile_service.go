package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/granaflow/backend/internal/forecast"
	"github.com/granaflow/backend/internal/importer"
	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

const (
	// matchWindowDays is the calendar-day tolerance either side of a
	// forecast date when looking for matches.
	matchWindowDays = 1
	// amountTolerance is the relative tolerance on absolute amounts.
	amountTolerance = 0.10
	// maxMatchCandidates caps how many candidates one transaction gets.
	maxMatchCandidates = 5
)

// ReconcileService matches imported transactions against pending
// forecasts and applies the user's merge decision. It never merges on
// its own; candidates are surfaced and the user picks.
type ReconcileService struct {
	store store.Store
	now   func() time.Time
}

func NewReconcileService(st store.Store) *ReconcileService {
	return &ReconcileService{store: st, now: time.Now}
}

// ImportedTransaction is the incoming row involved in a merge. Optional
// category fields override the forecast's when set.
type ImportedTransaction struct {
	Description        string          `json:"description"`
	Amount             float64         `json:"amount"`
	Date               time.Time       `json:"date"`
	RawSource          string          `json:"rawSource,omitempty"`
	MerchantName       *string         `json:"merchantName,omitempty"`
	CategoryID         *string         `json:"categoryId,omitempty"`
	SubcategoryID      *string         `json:"subcategoryId,omitempty"`
	CategoryConfidence *float64        `json:"categoryConfidence,omitempty"`
	Insights           *model.Insights `json:"insights,omitempty"`
}

// FindMatches returns pending forecasts within one calendar day of date
// whose absolute amount is within 10% of the transaction's, capped at
// five candidates ordered deterministically.
func (s *ReconcileService) FindMatches(ctx context.Context, date time.Time, amount float64) ([]*model.Expense, error) {
	if amount == 0 {
		return nil, nil
	}
	day := forecast.MidnightUTC(date)
	from := day.AddDate(0, 0, -matchWindowDays)
	to := day.AddDate(0, 0, matchWindowDays)
	abs := math.Abs(amount)
	minAbs := abs * (1 - amountTolerance)
	maxAbs := abs * (1 + amountTolerance)
	return s.store.FindMatchingForecasts(ctx, from, to, minAbs, maxAbs, maxMatchCandidates)
}

// RowMatches pairs a statement row index with its forecast candidates.
// Rows without candidates are omitted.
type RowMatches struct {
	RowIndex   int              `json:"rowIndex"`
	Candidates []*model.Expense `json:"candidates"`
}

// CheckBatch runs FindMatches over a parsed statement. Rows whose date
// cannot be parsed are skipped.
func (s *ReconcileService) CheckBatch(ctx context.Context, rows []importer.Row) ([]RowMatches, error) {
	var matches []RowMatches
	for i, row := range rows {
		date, err := importer.ParseDate(row.Date)
		if err != nil {
			slog.Warn("skipping unparseable date during match check", "row", i, "date", row.Date)
			continue
		}
		candidates, err := s.FindMatches(ctx, date, row.Amount)
		if err != nil {
			return nil, fmt.Errorf("matching row %d: %w", i, err)
		}
		if len(candidates) > 0 {
			matches = append(matches, RowMatches{RowIndex: i, Candidates: candidates})
		}
	}
	return matches, nil
}

// ConfirmMerge folds an imported transaction into the chosen forecast:
// the forecast keeps its identity and ForecastDate but takes the real
// amount, date and description, and stops being a forecast. Keeping both
// instead of merging is just not calling this.
func (s *ReconcileService) ConfirmMerge(ctx context.Context, forecastID string, in ImportedTransaction) (*model.Expense, error) {
	if forecastID == "" {
		return nil, Validationf("no forecast selected for merge")
	}
	e, err := s.store.GetExpense(ctx, forecastID)
	if err == store.ErrNotFound {
		return nil, Validationf("forecast %s not found or already confirmed", forecastID)
	}
	if err != nil {
		return nil, err
	}
	if !e.IsForecast {
		return nil, Validationf("forecast %s not found or already confirmed", forecastID)
	}

	e.Description = in.Description
	e.Amount = in.Amount
	e.Date = forecast.MidnightUTC(in.Date)
	e.IsForecast = false
	if in.RawSource != "" {
		e.RawSource = in.RawSource
	}
	if in.MerchantName != nil {
		e.MerchantName = *in.MerchantName
	}
	if in.CategoryID != nil {
		e.CategoryID = *in.CategoryID
	}
	if in.SubcategoryID != nil {
		e.SubcategoryID = *in.SubcategoryID
	}
	if in.CategoryConfidence != nil {
		e.CategoryConfidence = *in.CategoryConfidence
	}
	if in.Insights != nil {
		e.Insights = in.Insights
	}
	e.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("merging into forecast: %w", err)
	}
	forecastMergesTotal.Inc()
	slog.Info("imported transaction merged into forecast", "forecastId", forecastID)
	return e, nil
}
