package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTavilyProvider_Search(t *testing.T) {
	var gotReq tavilyRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tavilyResponse{
			Query: gotReq.Query,
			Results: []tavilyResult{
				{Title: "t1", URL: "https://example.com/a", Content: "content a", Score: 0.9},
				{Title: "t2", URL: "https://example.org/b", Content: "content b", Score: 0.7},
			},
		})
	}))
	defer server.Close()

	p := NewTavilyProvider(TavilyConfig{APIKey: "key", BaseURL: server.URL, MaxResults: 2}, zap.NewNop())

	results, err := p.Search(context.Background(), "offshore wind research analysis")

	require.NoError(t, err)
	assert.Equal(t, "offshore wind research analysis", results.Query)
	assert.Equal(t, []string{"content a", "content b"}, results.Results)
	assert.Equal(t, []string{"https://example.com/a", "https://example.org/b"}, results.Sources)

	assert.Equal(t, "key", gotReq.APIKey)
	assert.Equal(t, "offshore wind research analysis", gotReq.Query)
	assert.Equal(t, 2, gotReq.MaxResults)
}

func TestTavilyProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewTavilyProvider(TavilyConfig{BaseURL: server.URL}, zap.NewNop())

	_, err := p.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestTavilyProvider_Defaults(t *testing.T) {
	p := NewTavilyProvider(TavilyConfig{}, nil)
	assert.Equal(t, "tavily", p.Name())
	assert.Equal(t, defaultTavilyBaseURL, p.cfg.BaseURL)
	assert.Equal(t, 3, p.cfg.MaxResults)
}
