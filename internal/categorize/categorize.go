// Package categorize wraps the external categorization oracle: an opaque
// service mapping a transaction description and amount to category labels.
// The oracle may be down or unconfigured; import flows fall back to
// Other/Uncategorized rather than failing.
package categorize

import "context"

// Result is the oracle's answer for a single transaction.
type Result struct {
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Confidence   float64 `json:"confidence"`
	MerchantName string  `json:"merchantName"`
	IsRecurring  bool    `json:"isRecurring"`
	Notes        string  `json:"notes"`
}

// Oracle categorizes transactions.
type Oracle interface {
	Categorize(ctx context.Context, description string, amount float64) (Result, error)
}

// Fallback is the result used when the oracle is unavailable or returns an
// unusable answer.
func Fallback() Result {
	return Result{
		Category:    "Other",
		Subcategory: "Uncategorized",
		Confidence:  0,
	}
}

// Disabled is an Oracle that always reports unavailability. It stands in when
// no oracle endpoint is configured.
type Disabled struct{}

// Categorize always returns an unavailable error.
func (Disabled) Categorize(context.Context, string, float64) (Result, error) {
	return Result{}, &OracleError{
		Code:    ErrOracleUnavailable,
		Message: "categorization oracle not configured",
	}
}
