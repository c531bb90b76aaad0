// Package ratesource implements the upstream fiat and crypto rate providers over HTTP.
package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SscSPs/expense_tracker_bot/internal/apperrors"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 512

// NewHTTPClient returns the client shared by the providers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and decodes a 200 response into out.
// Every failure wraps apperrors.ErrRateUnavailable.
func getJSON(ctx context.Context, client *http.Client, req *http.Request, out any) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request to %s failed: %w", apperrors.ErrRateUnavailable, req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s answered %d: %s", apperrors.ErrRateUnavailable, req.URL.Host, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", apperrors.ErrRateUnavailable, req.URL.Host, err)
	}
	return nil
}
