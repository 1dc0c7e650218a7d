package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func forecastExpense(id, templateID string, amount float64, forecastDate time.Time) *model.Expense {
	return &model.Expense{
		ID:                 id,
		UserID:             "user-1",
		Description:        "forecast " + id,
		Amount:             amount,
		Date:               forecastDate,
		RecurringExpenseID: templateID,
		IsForecast:         true,
		ForecastDate:       &forecastDate,
	}
}

func TestMemoryStore_LatestForecast(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		forecastExpense("f1", "tmpl-1", -50, day(2025, time.March, 5)),
		forecastExpense("f2", "tmpl-1", -50, day(2025, time.May, 5)),
		forecastExpense("f3", "tmpl-1", -50, day(2025, time.April, 5)),
		forecastExpense("f4", "tmpl-2", -50, day(2025, time.June, 5)),
	}))

	latest, err := s.LatestForecast(ctx, "tmpl-1")
	require.NoError(t, err)
	assert.Equal(t, "f2", latest.ID)

	_, err = s.LatestForecast(ctx, "tmpl-none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MatureForecasts_Monotonic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		forecastExpense("due1", "tmpl-1", -50, day(2025, time.March, 1)),
		forecastExpense("due2", "tmpl-1", -50, day(2025, time.March, 10)),
		forecastExpense("future", "tmpl-1", -50, day(2025, time.April, 1)),
	}))

	n, err := s.MatureForecasts(ctx, day(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Matured records stay matured; a second run touches nothing.
	n, err = s.MatureForecasts(ctx, day(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	e, err := s.GetExpense(ctx, "due1")
	require.NoError(t, err)
	assert.False(t, e.IsForecast)
	require.NotNil(t, e.ForecastDate) // kept as history
	e, err = s.GetExpense(ctx, "future")
	require.NoError(t, err)
	assert.True(t, e.IsForecast)
}

func TestMemoryStore_DeleteForecasts_FutureOnlyAndAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		forecastExpense("past", "tmpl-1", -50, day(2025, time.February, 1)),
		forecastExpense("today", "tmpl-1", -50, day(2025, time.March, 1)),
		forecastExpense("future", "tmpl-1", -50, day(2025, time.April, 1)),
		forecastExpense("other", "tmpl-2", -50, day(2025, time.April, 1)),
	}))

	cutoff := day(2025, time.March, 1)
	n, err := s.DeleteForecasts(ctx, "tmpl-1", &cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, n) // only "future" is strictly past the cutoff

	_, err = s.GetExpense(ctx, "today")
	assert.NoError(t, err)

	n, err = s.DeleteForecasts(ctx, "tmpl-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetExpense(ctx, "other")
	assert.NoError(t, err, "other template's forecasts are untouched")
}

func TestMemoryStore_FindMatchingForecasts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		forecastExpense("inside", "tmpl-1", -50, day(2025, time.March, 10)),
		forecastExpense("edge", "tmpl-1", -52, day(2025, time.March, 11)),
		forecastExpense("far-date", "tmpl-1", -50, day(2025, time.March, 14)),
		forecastExpense("far-amount", "tmpl-1", -80, day(2025, time.March, 10)),
	}))

	got, err := s.FindMatchingForecasts(ctx,
		day(2025, time.March, 9), day(2025, time.March, 11), 45, 55, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "edge", got[0].ID)
	assert.Equal(t, "inside", got[1].ID)
}

func TestMemoryStore_FindMatchingForecasts_Cap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var batch []*model.Expense
	for i := 0; i < 8; i++ {
		batch = append(batch, forecastExpense(
			string(rune('a'+i)), "tmpl-1", -50, day(2025, time.March, 10)))
	}
	require.NoError(t, s.InsertExpenses(ctx, batch))

	got, err := s.FindMatchingForecasts(ctx,
		day(2025, time.March, 9), day(2025, time.March, 11), 45, 55, 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestMemoryStore_UpdateFutureForecasts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		forecastExpense("before", "tmpl-1", -50, day(2025, time.February, 5)),
		forecastExpense("at", "tmpl-1", -50, day(2025, time.March, 5)),
		forecastExpense("after", "tmpl-1", -50, day(2025, time.April, 5)),
	}))

	newAmount := -60.0
	n, err := s.UpdateFutureForecasts(ctx, "tmpl-1", day(2025, time.March, 5),
		model.ExpensePatch{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, err := s.GetExpense(ctx, "before")
	require.NoError(t, err)
	assert.Equal(t, -50.0, e.Amount)
	e, err = s.GetExpense(ctx, "at")
	require.NoError(t, err)
	assert.Equal(t, -60.0, e.Amount)
}

func TestMemoryStore_ConfirmAndDeleteByID_SkipNonForecasts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	real := forecastExpense("real", "tmpl-1", -50, day(2025, time.March, 5))
	real.IsForecast = false
	require.NoError(t, s.InsertExpenses(ctx, []*model.Expense{
		real,
		forecastExpense("pending", "tmpl-1", -50, day(2025, time.April, 5)),
	}))

	n, err := s.ConfirmForecastsByID(ctx, []string{"real", "pending", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteForecastsByID(ctx, []string{"real", "pending"})
	require.NoError(t, err)
	assert.Equal(t, 0, n) // "pending" was just confirmed, "real" never was one

	_, err = s.GetExpense(ctx, "real")
	assert.NoError(t, err)
}

func TestMemoryStore_ListRecurring(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	dom := 5
	for i, id := range []string{"r1", "r2", "r3"} {
		tmpl := &model.RecurringExpense{
			ID:         id,
			UserID:     "user-1",
			Frequency:  model.FrequencyMonthly,
			DayOfMonth: &dom,
			IsActive:   id != "r2",
			CreatedAt:  day(2025, time.January, 1+i),
		}
		require.NoError(t, s.CreateRecurring(ctx, tmpl))
	}

	all, err := s.ListRecurring(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID, "newest first")

	active, err := s.ListRecurring(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
