package categorize

import "fmt"

// OracleErrorCode represents specific oracle failure types.
type OracleErrorCode string

const (
	ErrOracleUnavailable OracleErrorCode = "ORACLE_UNAVAILABLE"
	ErrOracleTimeout     OracleErrorCode = "ORACLE_TIMEOUT"
	ErrOracleRateLimited OracleErrorCode = "ORACLE_RATE_LIMITED"
	ErrBadResponse       OracleErrorCode = "BAD_RESPONSE"
)

// OracleError is a structured error for categorization failures.
type OracleError struct {
	Code      OracleErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *OracleError) IsRetryable() bool {
	return e.Retryable
}
