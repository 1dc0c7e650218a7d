package model

import "time"

// Expense is a single transaction. Forecast records share this shape: a
// forecast is an expense with IsForecast set and a ForecastDate recording the
// originally scheduled occurrence. Maturation flips IsForecast to false and the
// record becomes an ordinary expense; ForecastDate is kept as history.
type Expense struct {
	ID                 string     `firestore:"id" json:"id"`
	UserID             string     `firestore:"userId" json:"userId"`
	Description        string     `firestore:"description" json:"description"`
	Amount             float64    `firestore:"amount" json:"amount"` // signed, negative = money out
	Date               time.Time  `firestore:"date" json:"date"`
	CategoryID         string     `firestore:"categoryId" json:"categoryId"`
	SubcategoryID      string     `firestore:"subcategoryId" json:"subcategoryId"`
	CategoryConfidence float64    `firestore:"categoryConfidence" json:"categoryConfidence"`
	MerchantName       string     `firestore:"merchantName" json:"merchantName,omitempty"`
	StatementMonth     int        `firestore:"statementMonth" json:"statementMonth"`
	StatementYear      int        `firestore:"statementYear" json:"statementYear"`
	RawSource          string     `firestore:"rawSource" json:"rawSource,omitempty"`
	Tags               []string   `firestore:"tags" json:"tags,omitempty"`
	Insights           *Insights  `firestore:"insights" json:"insights,omitempty"`
	RecurringExpenseID string     `firestore:"recurringExpenseId" json:"recurringExpenseId,omitempty"`
	IsForecast         bool       `firestore:"isForecast" json:"isForecast"`
	ForecastDate       *time.Time `firestore:"forecastDate" json:"forecastDate,omitempty"`
	CreatedAt          time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

// Insights holds categorization metadata attached at import or generation time.
type Insights struct {
	IsRecurring bool   `firestore:"isRecurring" json:"isRecurring"`
	Notes       string `firestore:"notes" json:"notes,omitempty"`
}

// ExpensePatch is a partial update applied to forecast records. Nil fields are
// left untouched.
type ExpensePatch struct {
	Description   *string  `json:"description,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	CategoryID    *string  `json:"categoryId,omitempty"`
	SubcategoryID *string  `json:"subcategoryId,omitempty"`
	MerchantName  *string  `json:"merchantName,omitempty"`
}

// Apply copies the non-nil patch fields onto e and bumps UpdatedAt.
func (p ExpensePatch) Apply(e *Expense, now time.Time) {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.SubcategoryID != nil {
		e.SubcategoryID = *p.SubcategoryID
	}
	if p.MerchantName != nil {
		e.MerchantName = *p.MerchantName
	}
	e.UpdatedAt = now
}
