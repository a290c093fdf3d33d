package suggest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server, locale map[string]string) *Client {
	return &Client{
		APIKey:  "test-key",
		Locale:  locale,
		Client:  server.Client(),
		BaseURL: server.URL,
	}
}

func TestSuggestParsesSuggestions(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestions":[{"value":"coffee shop"},{"value":"coffee beans"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server, map[string]string{"gl": "uk", "hl": "en-GB", "client": "chrome"})

	result, err := client.Suggest(context.Background(), "coffee")
	require.NoError(t, err)
	require.Equal(t, "coffee", result.Query)
	require.Len(t, result.Suggestions, 2)
	require.Equal(t, Suggestion{Position: 1, Value: "coffee shop"}, result.Suggestions[0])
	require.Equal(t, Suggestion{Position: 2, Value: "coffee beans"}, result.Suggestions[1])
	require.Equal(t, "42", result.RateLimitRemaining)

	require.Equal(t, "google_autocomplete", captured.Get("engine"))
	require.Equal(t, "coffee", captured.Get("q"))
	require.Equal(t, "test-key", captured.Get("api_key"))
	require.Equal(t, "uk", captured.Get("gl"))
	require.Equal(t, "en", captured.Get("hl"), "hl must be normalised to two letters")
	require.Equal(t, "chrome", captured.Get("client"))
}

func TestSuggestOpenLocaleMap(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server, map[string]string{"google_domain": "google.co.uk", "gl": "uk", "client": ""})

	_, err := client.Suggest(context.Background(), "tea")
	require.NoError(t, err)
	require.Equal(t, "google.co.uk", captured.Get("google_domain"))
	require.False(t, captured.Has("client"), "blank locale values are omitted")
}

func TestSuggestEmptySuggestionsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server, nil).Suggest(context.Background(), "zzzzz")
	require.NoError(t, err)
	require.Empty(t, result.Suggestions)
}

func TestSuggestSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server, nil).Suggest(context.Background(), "coffee")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "serpapi error 401")
	require.Contains(t, apiErr.Error(), "Invalid API key")
}

func TestSuggestErrorFallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	_, err := newTestClient(server, nil).Suggest(context.Background(), "coffee")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "upstream unavailable", apiErr.Detail)
}

func TestSuggestRequiresAPIKey(t *testing.T) {
	client := &Client{}
	_, err := client.Suggest(context.Background(), "coffee")
	require.Error(t, err)
}

func TestRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestions":[{"value":"coffee shop"}],"search_metadata":{"id":"abc"}}`))
	}))
	defer server.Close()

	raw, err := newTestClient(server, nil).Raw(context.Background(), "coffee")
	require.NoError(t, err)
	require.Contains(t, string(raw), "search_metadata")
}
