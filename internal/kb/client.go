// Package kb talks to the remote knowledge-base search service and turns its
// responses into document mappings.
package kb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxResponseBytes = 16 << 20
	maxMessageRunes  = 200
)

var (
	ErrMissingCredentials = errors.New("search service API key or URL not configured")
	ErrNoResponse         = errors.New("no search response")
	ErrMalformedResponse  = errors.New("malformed search response")
)

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("search service returned %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	ServiceURL    string
	APIKey        string
	EnvironmentID string
	CollectionID  string
	APIVersion    string
	Count         int
	Timeout       time.Duration
}

type Client struct {
	http *http.Client
	cfg  Config
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.ServiceURL = strings.TrimRight(cfg.ServiceURL, "/")
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Search issues one natural language query against the configured
// collection and returns the raw JSON body.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("natural_language_query", query)
	if c.cfg.Count > 0 {
		params.Set("count", strconv.Itoa(c.cfg.Count))
	}

	path := fmt.Sprintf("/v1/environments/%s/collections/%s/query",
		url.PathEscape(c.cfg.EnvironmentID), url.PathEscape(c.cfg.CollectionID))

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("query failed: %w", ErrMalformedResponse)
	}

	return json.RawMessage(body), nil
}

// Validate checks the credentials by listing the service environments.
func (c *Client) Validate(ctx context.Context) error {
	if _, err := c.get(ctx, "/v1/environments", url.Values{}); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" || c.cfg.ServiceURL == "" {
		return nil, ErrMissingCredentials
	}

	params.Set("version", c.cfg.APIVersion)
	endpoint := c.cfg.ServiceURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("apikey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// errorMessage pulls the service's "error" field out of a failure body.
func errorMessage(body []byte) string {
	var payload struct {
		Error       string `json:"error"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Description != "" {
			return payload.Description
		}
	}

	return truncate(strings.TrimSpace(string(body)), maxMessageRunes)
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
