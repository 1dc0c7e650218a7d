package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/granaflow/backend/internal/forecast"
	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

const (
	// runwayMonths is the minimum forward coverage a template must keep.
	// Templates whose latest forecast is closer than this get extended.
	runwayMonths = 3
	// extendMonths is how far a single extension generates past the
	// latest known occurrence.
	extendMonths = 3
)

// SweepResult reports the outcome of one template in a sweep. Err is set
// when that template failed; other templates are unaffected.
type SweepResult struct {
	TemplateID string `json:"templateId"`
	Created    int    `json:"created"`
	Err        error  `json:"-"`
}

// ForecastJobs runs the scheduled sweeps that keep forecast windows
// rolling: extension and maturation. Both are idempotent, so an
// overlapping or repeated invocation is harmless.
type ForecastJobs struct {
	store store.Store
	now   func() time.Time
}

func NewForecastJobs(st store.Store) *ForecastJobs {
	return &ForecastJobs{store: st, now: time.Now}
}

// ExtendWindow scans every active template and tops up the ones whose
// forecast runway has shrunk below runwayMonths. A failure on one
// template is recorded in its SweepResult and the sweep moves on.
func (j *ForecastJobs) ExtendWindow(ctx context.Context) ([]SweepResult, error) {
	templates, err := j.store.ListRecurring(ctx, "", true)
	if err != nil {
		return nil, fmt.Errorf("listing active templates: %w", err)
	}

	threshold := forecast.MidnightUTC(j.now()).AddDate(0, runwayMonths, 0)
	results := make([]SweepResult, 0, len(templates))
	created, failed := 0, 0
	for _, tmpl := range templates {
		res := j.extendOne(ctx, tmpl, threshold)
		if res.Err != nil {
			failed++
			forecastSweepErrorsTotal.Inc()
			slog.Error("forecast extension failed",
				"templateId", tmpl.ID,
				"error", res.Err)
		}
		created += res.Created
		results = append(results, res)
	}
	if created > 0 {
		forecastsGeneratedTotal.Add(float64(created))
	}
	slog.Info("forecast extension sweep finished",
		"templates", len(templates),
		"created", created,
		"failed", failed)
	return results, nil
}

func (j *ForecastJobs) extendOne(ctx context.Context, tmpl *model.RecurringExpense, threshold time.Time) SweepResult {
	res := SweepResult{TemplateID: tmpl.ID}

	startFrom := tmpl.StartDate
	latest, err := j.store.LatestForecast(ctx, tmpl.ID)
	switch {
	case err == nil:
		// Generation starts strictly after the last known occurrence,
		// which is what makes re-running the sweep idempotent.
		startFrom = *latest.ForecastDate
		if !latest.ForecastDate.Before(threshold) {
			return res
		}
	case err == store.ErrNotFound:
		// No forecasts left (all matured or deleted). Restart from the
		// start date, clamped to today so past occurrences are not
		// regenerated.
		today := forecast.MidnightUTC(j.now())
		if startFrom.Before(today) {
			startFrom = today
		}
	default:
		res.Err = fmt.Errorf("finding latest forecast: %w", err)
		return res
	}

	batch := forecast.Generate(tmpl, startFrom, extendMonths)
	if len(batch) == 0 {
		return res
	}
	if err := j.store.InsertExpenses(ctx, batch); err != nil {
		res.Err = fmt.Errorf("inserting forecasts: %w", err)
		return res
	}
	res.Created = len(batch)
	return res
}

// Mature flips every forecast dated today (UTC midnight) or earlier into
// an actual expense. The conversion is monotonic; matured rows are never
// turned back into forecasts.
func (j *ForecastJobs) Mature(ctx context.Context) (int, error) {
	until := forecast.MidnightUTC(j.now())
	matured, err := j.store.MatureForecasts(ctx, until)
	if err != nil {
		return 0, fmt.Errorf("maturing forecasts: %w", err)
	}
	if matured > 0 {
		forecastsMaturedTotal.Add(float64(matured))
	}
	slog.Info("forecast maturation sweep finished", "matured", matured, "until", until)
	return matured, nil
}
