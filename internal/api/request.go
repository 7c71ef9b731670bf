package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError represents an HTTP-level error from a Polymarket API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polymarket api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// DegradedError represents source degradation reported inside an otherwise
// successful response body (the Data-API surfaces indexer trouble this way
// rather than via status codes).
type DegradedError struct {
	Message string
}

func (e *DegradedError) Error() string {
	return "data api degraded: " + e.Message
}

// degradedPhrases are the indexer-failure markers observed in degraded
// response bodies. Matched case-insensitively.
var degradedPhrases = []string{
	"bad indexers",
	"unavailable",
	"too far behind",
}

func isDegradedMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range degradedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isRetryable classifies an error for the retry loop: HTTP 429/5xx,
// source-reported degradation, and transport-level failures are transient;
// everything else (including context cancellation) is terminal.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	var degErr *DegradedError
	if errors.As(err, &degErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// doRequest performs a GET against base+path and returns the raw body.
func (c *Client) doRequest(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	fullURL := base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// withRetry runs fn with exponential backoff until it succeeds, returns a
// terminal error, or the retry budget is spent. fn owns the request and any
// body-level error classification.
func (c *Client) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"op", op,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a GET with retries and unmarshals the response via parse.
func (c *Client) get(ctx context.Context, op, base, path string, query url.Values, parse func([]byte) error) error {
	return c.withRetry(ctx, op, func(ctx context.Context) error {
		body, err := c.doRequest(ctx, base, path, query)
		if err != nil {
			return err
		}
		return parse(body)
	})
}
