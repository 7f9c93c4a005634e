// Package api provides the HTTP clients for the Tablero backend, one per
// resource. Every call reads the bearer token fresh from a TokenFunc so a
// login or logout between construction and call time is always observed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// TokenFunc yields the current bearer token, or "" when signed out.
type TokenFunc func() string

// Client is the shared transport for all resource clients.
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
}

// New creates a client against baseURL. token may not be nil.
func New(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// Tasks returns the task resource client.
func (c *Client) Tasks() *TaskClient { return &TaskClient{c} }

// Users returns the user resource client.
func (c *Client) Users() *UserClient { return &UserClient{c} }

// Notifications returns the notification resource client.
func (c *Client) Notifications() *NotificationClient { return &NotificationClient{c} }

// Logs returns the activity log client.
func (c *Client) Logs() *LogClient { return &LogClient{c} }

// Dashboard returns the dashboard stats client.
func (c *Client) Dashboard() *DashboardClient { return &DashboardClient{c} }

// Auth returns the authentication client.
func (c *Client) Auth() *AuthClient { return &AuthClient{c} }

// do issues one request and decodes the JSON response into out (when out is
// non-nil). One shot: no retry, no backoff. fallback is the per-operation
// message used when the server gives no parseable error body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	raw, err := c.doRaw(ctx, method, path, body, fallback, true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, fallback, err)
	}
	return nil
}

// doRaw issues one request and returns the raw response body. When authed is
// true the call short-circuits with ErrUnauthenticated if no token is
// present at call time.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}, fallback string, authed bool) ([]byte, error) {
	var tok string
	if authed {
		tok = c.token()
		if tok == "" {
			return nil, ErrUnauthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		msg := fallback
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		return nil, &RequestError{Status: resp.StatusCode, Message: msg}
	}

	return raw, nil
}
