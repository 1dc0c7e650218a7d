package forecast

import (
	"log/slog"
	"time"

	"github.com/granaflow/backend/internal/model"
)

// Generate walks the template's cadence forward from startFrom and returns one
// forecast expense per occurrence. Generation stops at startFrom + months
// calendar months, at the template's end date if that comes first, or at the
// iteration cap (months occurrences for monthly cadence, months*5 for weekly)
// so a malformed template can never loop forever.
//
// The first occurrence is strictly after startFrom, which is what makes window
// extension idempotent: generating "past the latest known forecast" never
// re-emits that forecast.
//
// A template whose anchor does not match its frequency yields whatever was
// produced before the anchor was consulted (nothing, in practice). That is a
// logged anomaly rather than an error so one corrupt template cannot poison a
// sweep; persistence is entirely the caller's concern.
func Generate(tmpl *model.RecurringExpense, startFrom time.Time, months int) []*model.Expense {
	var out []*model.Expense

	windowEnd := MidnightUTC(startFrom).AddDate(0, months, 0)
	current := MidnightUTC(startFrom)

	maxIterations := months
	if tmpl.Frequency == model.FrequencyWeekly {
		maxIterations = months * 5
	}

	now := time.Now().UTC()
	for i := 0; i < maxIterations; i++ {
		switch {
		case tmpl.Frequency == model.FrequencyMonthly && tmpl.DayOfMonth != nil:
			current = NextMonthly(current, *tmpl.DayOfMonth)
		case tmpl.Frequency == model.FrequencyWeekly && tmpl.DayOfWeek != nil:
			current = NextWeekly(current, *tmpl.DayOfWeek)
		default:
			slog.Error("recurring template has no valid anchor for its frequency",
				"templateId", tmpl.ID, "frequency", tmpl.Frequency)
			return out
		}

		if current.After(windowEnd) {
			return out
		}
		if tmpl.EndDate != nil && current.After(MidnightUTC(*tmpl.EndDate)) {
			return out
		}

		occurrence := current
		out = append(out, &model.Expense{
			UserID:             tmpl.UserID,
			Description:        tmpl.Description,
			Amount:             tmpl.Amount,
			Date:               occurrence,
			CategoryID:         tmpl.CategoryID,
			SubcategoryID:      tmpl.SubcategoryID,
			CategoryConfidence: 1.0, // user-defined template, not a guess
			MerchantName:       tmpl.MerchantName,
			StatementMonth:     int(occurrence.Month()),
			StatementYear:      occurrence.Year(),
			RawSource:          "FORECAST:" + tmpl.ID,
			Tags:               tmpl.Tags,
			Insights: &model.Insights{
				IsRecurring: true,
				Notes:       "Auto-generated from recurring template",
			},
			RecurringExpenseID: tmpl.ID,
			IsForecast:         true,
			ForecastDate:       &occurrence,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	return out
}
