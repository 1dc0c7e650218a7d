package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is an HTTP Oracle implementation. It POSTs the transaction to the
// configured endpoint and retries transient failures with backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

// NewClient creates an oracle client for the given endpoint.
func NewClient(baseURL string) *Client {
	return NewClientWithRetry(baseURL, DefaultRetryConfig)
}

// NewClientWithRetry creates an oracle client with an explicit retry policy.
// The client is the single retry layer; callers should not wrap Categorize
// in WithRetry again.
func NewClientWithRetry(baseURL string, retry RetryConfig) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: retry,
	}
}

type categorizeRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Categorize asks the oracle to label a single transaction.
func (c *Client) Categorize(ctx context.Context, description string, amount float64) (Result, error) {
	return WithRetry(ctx, c.retry, func(ctx context.Context) (Result, error) {
		return c.categorizeOnce(ctx, description, amount)
	})
}

func (c *Client) categorizeOnce(ctx context.Context, description string, amount float64) (Result, error) {
	body, err := json.Marshal(categorizeRequest{Description: description, Amount: amount})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode categorize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/categorize", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build categorize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &OracleError{
			Code:      ErrOracleUnavailable,
			Message:   "categorization request failed",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, &OracleError{
			Code:      ErrOracleRateLimited,
			Message:   "oracle rate limited",
			Retryable: true,
		}
	case resp.StatusCode >= 500:
		return Result{}, &OracleError{
			Code:      ErrOracleUnavailable,
			Message:   fmt.Sprintf("oracle returned status %d", resp.StatusCode),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return Result{}, &OracleError{
			Code:      ErrBadResponse,
			Message:   fmt.Sprintf("oracle returned status %d", resp.StatusCode),
			Retryable: false,
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, &OracleError{
			Code:      ErrBadResponse,
			Message:   "failed to decode oracle response",
			Retryable: false,
			Cause:     err,
		}
	}
	if result.Category == "" {
		return Result{}, &OracleError{
			Code:      ErrBadResponse,
			Message:   "oracle response missing category",
			Retryable: false,
		}
	}
	return result, nil
}
