package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

func newForecastJobs(st store.Store) *ForecastJobs {
	j := NewForecastJobs(st)
	j.now = fixedClock(testNow)
	return j
}

func seedTemplate(t *testing.T, st store.Store, svc *RecurringService, months int) *model.RecurringExpense {
	t.Helper()
	tmpl, err := svc.Create(context.Background(), "user-1", RecurringInput{
		Description:    "Rent",
		Amount:         -1500,
		Frequency:      model.FrequencyMonthly,
		DayOfMonth:     intPtr(1),
		StartDate:      testNow,
		ForecastMonths: months,
	})
	require.NoError(t, err)
	return tmpl
}

func TestExtendWindowTopsUpShortRunway(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	tmpl := seedTemplate(t, st, newRecurringService(st), 2)

	// Two months of coverage is below the three month runway.
	results, err := newForecastJobs(st).ExtendWindow(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tmpl.ID, results[0].TemplateID)
	assert.NoError(t, results[0].Err)
	assert.Positive(t, results[0].Created)

	forecasts, err := st.ListForecasts(ctx, tmpl.ID)
	require.NoError(t, err)
	latest := forecasts[len(forecasts)-1]
	threshold := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, latest.ForecastDate.Before(threshold))
}

func TestExtendWindowSkipsHealthyRunway(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedTemplate(t, st, newRecurringService(st), 6)

	results, err := newForecastJobs(st).ExtendWindow(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Created)
}

func TestExtendWindowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	tmpl := seedTemplate(t, st, newRecurringService(st), 2)
	jobs := newForecastJobs(st)

	_, err := jobs.ExtendWindow(ctx)
	require.NoError(t, err)
	after, err := st.ListForecasts(ctx, tmpl.ID)
	require.NoError(t, err)
	count := len(after)

	// Re-running the sweep must not duplicate occurrences.
	for i := 0; i < 3; i++ {
		_, err := jobs.ExtendWindow(ctx)
		require.NoError(t, err)
	}
	again, err := st.ListForecasts(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, again, count)

	seen := make(map[time.Time]bool, count)
	for _, f := range again {
		require.False(t, seen[*f.ForecastDate], "duplicate occurrence at %v", f.ForecastDate)
		seen[*f.ForecastDate] = true
	}
}

func TestExtendWindowIgnoresInactiveTemplates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newRecurringService(st)
	tmpl := seedTemplate(t, st, svc, 2)
	require.NoError(t, svc.Stop(ctx, "user-1", tmpl.ID))

	results, err := newForecastJobs(st).ExtendWindow(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExtendWindowRestartsAfterFullMaturation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newRecurringService(st)
	tmpl := seedTemplate(t, st, svc, 2)
	jobs := newForecastJobs(st)

	// Mature everything so the template has no pending forecasts left.
	far := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.MatureForecasts(ctx, far)
	require.NoError(t, err)

	results, err := jobs.ExtendWindow(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Positive(t, results[0].Created)

	// Regenerated occurrences all land strictly in the future.
	forecasts, err := st.ListForecasts(ctx, tmpl.ID)
	require.NoError(t, err)
	require.NotEmpty(t, forecasts)
	for _, f := range forecasts {
		assert.True(t, f.ForecastDate.After(testNow.Truncate(24*time.Hour)))
	}
}

func TestMatureFlipsDueForecastsOnce(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newRecurringService(st)
	jobs := newForecastJobs(st)

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tmpl, err := svc.Create(ctx, "user-1", RecurringInput{
		Description:    "Internet",
		Amount:         -60,
		Frequency:      model.FrequencyMonthly,
		DayOfMonth:     intPtr(5),
		StartDate:      start,
		ForecastMonths: 6,
	})
	require.NoError(t, err)

	// testNow is March 10: Feb 5 and Mar 5 are due.
	matured, err := jobs.Mature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, matured)

	again, err := jobs.Mature(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	pending, err := st.ListForecasts(ctx, tmpl.ID)
	require.NoError(t, err)
	for _, f := range pending {
		assert.True(t, f.ForecastDate.After(testNow.Truncate(24*time.Hour)))
	}
}
