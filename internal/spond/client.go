// Package spond is a minimal client for the Spond core API.
//
// It covers exactly the four calls this server needs — list groups,
// list events in a window, fetch one event, change a member's response —
// plus authentication. No retries: failures are returned to the caller
// and surfaced at the tool boundary.
package spond

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Spond core API.
const DefaultBaseURL = "https://api.spond.com/core/v1"

// maxEventsPerRequest caps the page size on event listing. Spond's own
// clients use 100.
const maxEventsPerRequest = 100

// Client talks to the Spond API on behalf of one account. Login happens
// lazily on the first call and the session token is reused afterwards.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	limiter  *rate.Limiter

	mu    sync.Mutex
	token string // guarded by mu
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given account. No network traffic
// happens until the first API call.
func NewClient(username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
		// Spond is a consumer API with no published limits; 5 req/s with
		// a small burst keeps us well clear of trouble.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sessionToken returns the session token, logging in first if none is
// held. The lock stays held across the login round trip so concurrent
// first calls share one login instead of racing on the field.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		if err := c.login(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// login authenticates and stores the session token. Callers must hold
// c.mu.
func (c *Client) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"email":    c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("spond: encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("spond: login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spond: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spond: login: %s", readAPIError(resp))
	}

	var result struct {
		LoginToken string `json:"loginToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("spond: decode login: %w", err)
	}
	if result.LoginToken == "" {
		return fmt.Errorf("spond: login: empty token in response")
	}

	c.token = result.LoginToken
	slog.Debug("spond login ok")
	return nil
}

// do performs an authenticated request, logging in first if needed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spond: rate limit wait: %w", err)
	}
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("spond: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("spond: %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spond: %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("spond: %s %s: %s", method, path, readAPIError(resp))
	}
	return resp, nil
}

// Groups lists every group the account belongs to, members included.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	resp, err := c.do(ctx, http.MethodGet, "/groups/", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var groups []Group
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return nil, fmt.Errorf("spond: decode groups: %w", err)
	}
	return groups, nil
}

// Events lists scheduled events starting in [minStart, maxEnd],
// optionally restricted to one group.
func (c *Client) Events(ctx context.Context, minStart, maxEnd time.Time, groupID string) ([]Event, error) {
	query := url.Values{
		"minStartTimestamp": {minStart.UTC().Format(time.RFC3339)},
		"maxEndTimestamp":   {maxEnd.UTC().Format(time.RFC3339)},
		"max":               {strconv.Itoa(maxEventsPerRequest)},
		"order":             {"asc"},
		"scheduled":         {"true"},
	}
	if groupID != "" {
		query.Set("groupId", groupID)
	}

	resp, err := c.do(ctx, http.MethodGet, "/sponds/", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("spond: decode events: %w", err)
	}
	return events, nil
}

// Event fetches one event by id.
func (c *Client) Event(ctx context.Context, eventID string) (*Event, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sponds/"+eventID, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var event Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("spond: decode event %s: %w", eventID, err)
	}
	return &event, nil
}

// ChangeResponse submits a member's answer for an event. The cached
// event snapshot, if any, is not touched — callers refetch when they
// need the updated state.
func (c *Client) ChangeResponse(ctx context.Context, eventID, memberID string, body ChangeResponseBody) error {
	path := fmt.Sprintf("/sponds/%s/responses/%s", eventID, memberID)
	resp, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Close releases the session. Safe to call repeatedly and before any
// login has happened.
func (c *Client) Close() error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	c.http.CloseIdleConnections()
	return nil
}

// readAPIError condenses a non-2xx response into one error string with
// the status and a truncated body.
func readAPIError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(body))
}
