package evaluation

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

func TestRemoteService_Evaluate(t *testing.T) {
	var gotAuth string
	var gotReq remoteRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/evaluate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remoteResponse{Results: []Result{{
			Success: true,
			Metrics: []MetricResult{{Name: MetricFaithfulness, Score: 0.85, Threshold: 0.7, Success: true}},
		}}})
	}))
	defer server.Close()

	svc := NewRemoteService(RemoteConfig{BaseURL: server.URL, APIKey: "secret"}, zap.NewNop())

	results, err := svc.Evaluate(context.Background(),
		[]Example{{Input: "q", ActualOutput: "a", RetrievalContext: []string{"ctx"}}},
		[]MetricSpec{{Name: MetricFaithfulness, Threshold: 0.7}})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 0.85, results[0].Metrics[0].Score)

	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, gotReq.Examples, 1)
	assert.Equal(t, "q", gotReq.Examples[0].Input)
	require.Len(t, gotReq.Metrics, 1)
	assert.Equal(t, MetricFaithfulness, gotReq.Metrics[0].Name)
}

func TestRemoteService_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewRemoteService(RemoteConfig{BaseURL: server.URL}, zap.NewNop())

	_, err := svc.Evaluate(context.Background(), []Example{{Input: "q"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRemoteService_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(remoteResponse{})
	}))
	defer server.Close()

	svc := NewRemoteService(RemoteConfig{BaseURL: server.URL}, zap.NewNop())

	_, err := svc.Evaluate(context.Background(), []Example{{Input: "q"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty results")
}
