package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Benign outcomes. Callers treat both as silent no-ops.
var (
	ErrRequestIgnored = errors.New("request ignored: endpoint busy")
	ErrCancelled      = errors.New("request cancelled")
)

// TransportError is a non-success HTTP status or a network-level failure.
type TransportError struct {
	Status int   // HTTP status, 0 for network failures
	Err    error // Underlying error for network failures
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error: status %d", e.Status)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a logical failure the remote embeds in a response body.
// The wire protocol reports 200 OK even for these.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "api error: " + e.Message
}

// Request fetches the endpoint's JSON body with params substituted into its
// URL template. At most one request per endpoint runs at a time; a call
// while one is in flight fails immediately with ErrRequestIgnored. The
// in-flight flag is reset on every outcome.
func (c *Client) Request(ctx context.Context, ep *Endpoint, params map[string]string) (json.RawMessage, error) {
	reqCtx, cancel := context.WithCancel(ctx)

	if !ep.begin(cancel) {
		cancel()
		return nil, ErrRequestIgnored
	}
	defer ep.finish()
	defer cancel()

	reqID := uuid.NewString()
	start := time.Now()

	body, err := c.do(reqCtx, ep.expand(params))
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("request cancelled",
				"endpoint", ep.Name(),
				"request_id", reqID,
				"duration", elapsed,
			)
			return nil, ErrCancelled
		}

		c.logger.Warn("request failed",
			"endpoint", ep.Name(),
			"request_id", reqID,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	// A success status can still carry an application-level error field.
	var probe struct {
		Error string `json:"error"`
	}
	if jsonErr := json.Unmarshal(body, &probe); jsonErr == nil && probe.Error != "" {
		c.logger.Warn("request failed",
			"endpoint", ep.Name(),
			"request_id", reqID,
			"duration", elapsed,
			"error", probe.Error,
		)
		return nil, &APIError{Message: probe.Error}
	}

	c.logger.Debug("request complete",
		"endpoint", ep.Name(),
		"request_id", reqID,
		"duration", elapsed,
		"bytes", len(body),
	)

	return body, nil
}

// do performs a single GET against a fully-expanded URL.
func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &TransportError{Status: resp.StatusCode}
	}

	return body, nil
}
