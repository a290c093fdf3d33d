// Package suggest implements the SerpAPI Google Autocomplete client.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://serpapi.com/search"
	engineName     = "google_autocomplete"

	// rateLimitHeader carries SerpAPI's remaining-quota hint.
	rateLimitHeader = "X-RateLimit-Remaining"

	maxErrorBodyBytes = 300
)

// Suggestion is one autocomplete entry, 1-indexed by result position.
type Suggestion struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
}

// Result is a single successful autocomplete response.
type Result struct {
	Query              string       `json:"query"`
	Suggestions        []Suggestion `json:"suggestions"`
	RateLimitRemaining string       `json:"rate_limit_remaining,omitempty"`
	RequestedAt        time.Time    `json:"requested_at"`
	ResolvedAt         time.Time    `json:"resolved_at"`
}

// APIError reports a non-success response from the suggestion endpoint.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi error %d: %s", e.StatusCode, e.Detail)
}

// Client queries the SerpAPI autocomplete engine. The zero value is not
// usable without an API key; all other fields have working defaults.
type Client struct {
	APIKey string
	// Locale is an open parameter map merged into the request query
	// (gl, hl, client, google_domain, ...). The hl value is normalised
	// to its two-letter base ("en-GB" -> "en").
	Locale  map[string]string
	Client  *http.Client
	BaseURL string
	Clock   func() time.Time
}

// Suggest issues one GET for the query and parses the suggestion list.
// A missing or empty suggestions array is a valid zero-suggestion result.
func (c *Client) Suggest(ctx context.Context, query string) (*Result, error) {
	requestedAt := c.now()

	resp, err := c.get(ctx, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}

	var payload struct {
		Suggestions []struct {
			Value string `json:"value"`
		} `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode autocomplete response: %w", err)
	}

	result := &Result{
		Query:              query,
		RateLimitRemaining: resp.Header.Get(rateLimitHeader),
		RequestedAt:        requestedAt,
		ResolvedAt:         c.now(),
	}
	for _, s := range payload.Suggestions {
		if s.Value == "" {
			continue
		}
		result.Suggestions = append(result.Suggestions, Suggestion{
			Position: len(result.Suggestions) + 1,
			Value:    s.Value,
		})
	}

	return result, nil
}

// Raw issues one GET and returns the unparsed JSON body. Used by the
// single-query playground.
func (c *Client) Raw(ctx context.Context, query string) (json.RawMessage, error) {
	resp, err := c.get(ctx, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read autocomplete response: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("autocomplete response is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func (c *Client) get(ctx context.Context, query string) (*http.Response, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("api key is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	params := url.Values{}
	params.Set("engine", engineName)
	params.Set("q", query)
	params.Set("api_key", c.APIKey)
	for _, key := range sortedKeys(c.Locale) {
		value := strings.TrimSpace(c.Locale[key])
		if value == "" {
			continue
		}
		if key == "hl" {
			value = normalizeLanguage(value)
		}
		params.Set(key, value)
	}

	base := c.baseURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return client.Do(req)
}

func (c *Client) baseURL() string {
	if c != nil && c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

// normalizeLanguage reduces locale tags to the two-letter base the
// autocomplete engine accepts ("en-GB" -> "en").
func normalizeLanguage(value string) string {
	if idx := strings.IndexAny(value, "-_"); idx > 0 {
		return value[:idx]
	}
	return value
}

// readAPIError extracts the endpoint's error/message field from a failed
// response, falling back to a truncated raw body.
func readAPIError(resp *http.Response) *APIError {
	detail := ""

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			detail = payload.Error
			if detail == "" {
				detail = payload.Message
			}
		}
		if detail == "" {
			detail = strings.TrimSpace(string(body))
			if len(detail) > maxErrorBodyBytes {
				detail = detail[:maxErrorBodyBytes]
			}
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
