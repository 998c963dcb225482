// Package bridge implements the HTTP/JSON transport to the simulator
// bridge: request/response services plus publish-only topic endpoints.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"awsim-client/internal/config"
	"awsim-client/internal/scenario"
	"awsim-client/internal/utils"
)

// Client represents the bridge client
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	metrics    *utils.Metrics
}

// NewClient creates a new bridge client. metrics may be nil.
func NewClient(cfg *config.Config, metrics *utils.Metrics) *Client {
	return &Client{
		baseURL:   cfg.Bridge.BaseURL,
		authToken: cfg.Bridge.AuthToken,
		httpClient: &http.Client{
			Timeout: cfg.Bridge.Timeout,
		},
		metrics: metrics,
	}
}

// call executes a single HTTP request against a named bridge endpoint.
// Connection failures and 503 responses are reported as
// scenario.ErrServiceUnavailable so callers can apply their availability
// wait; other failures surface as *HTTPError or plain errors.
func (c *Client) call(ctx context.Context, service, method, path string, body interface{}, target interface{}) error {
	start := time.Now()
	err := c.executeRequest(ctx, method, path, body, target)
	if c.metrics != nil {
		c.metrics.RecordCall(service, err == nil, time.Since(start))
	}
	return err
}

// executeRequest performs a single HTTP request
func (c *Client) executeRequest(ctx context.Context, method, path string, body interface{}, target interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%s: %w", path, scenario.ErrServiceUnavailable)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%s: %w", path, scenario.ErrServiceUnavailable)
	}

	if resp.StatusCode >= 400 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// isConnectionError reports whether err means the bridge endpoint is not
// reachable at all, as opposed to a request that reached it and failed.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
