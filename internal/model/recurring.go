package model

import "time"

// Frequency is the cadence of a recurring expense template.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyWeekly  Frequency = "weekly"
)

// RecurringExpense is a template from which forecast expenses are generated.
// Exactly one anchor field is populated, matching Frequency: DayOfMonth (1-31)
// for monthly, DayOfWeek (0-6, Sunday = 0) for weekly.
type RecurringExpense struct {
	ID             string     `firestore:"id" json:"id"`
	UserID         string     `firestore:"userId" json:"userId"`
	Description    string     `firestore:"description" json:"description"`
	Amount         float64    `firestore:"amount" json:"amount"`
	CategoryID     string     `firestore:"categoryId" json:"categoryId"`
	SubcategoryID  string     `firestore:"subcategoryId" json:"subcategoryId"`
	Frequency      Frequency  `firestore:"frequency" json:"frequency"`
	StartDate      time.Time  `firestore:"startDate" json:"startDate"`
	EndDate        *time.Time `firestore:"endDate" json:"endDate,omitempty"`
	DayOfMonth     *int       `firestore:"dayOfMonth" json:"dayOfMonth,omitempty"`
	DayOfWeek      *int       `firestore:"dayOfWeek" json:"dayOfWeek,omitempty"`
	ForecastMonths int        `firestore:"forecastMonths" json:"forecastMonths"`
	MerchantName   string     `firestore:"merchantName" json:"merchantName,omitempty"`
	Tags           []string   `firestore:"tags" json:"tags,omitempty"`
	IsActive       bool       `firestore:"isActive" json:"isActive"`
	CreatedAt      time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

// HasValidAnchor reports whether the anchor field matching the declared
// frequency is present and in range.
func (r *RecurringExpense) HasValidAnchor() bool {
	switch r.Frequency {
	case FrequencyMonthly:
		return r.DayOfMonth != nil && *r.DayOfMonth >= 1 && *r.DayOfMonth <= 31
	case FrequencyWeekly:
		return r.DayOfWeek != nil && *r.DayOfWeek >= 0 && *r.DayOfWeek <= 6
	}
	return false
}
