package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is MRV?", body["question"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Measurement, reporting and verification."}`))
	}))
	defer server.Close()

	client, err := NewAPIClientWithConfig(server.URL + "/")
	require.NoError(t, err)

	answer, err := client.Ask(context.Background(), "What is MRV?")
	require.NoError(t, err)
	assert.Equal(t, "Measurement, reporting and verification.", answer)
}

func TestAPIClient_AskError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"json error", http.StatusBadRequest, `{"error":"No question provided"}`, 400, "No question provided"},
		{"strict remote error", http.StatusBadGateway, `{"error":"Timeout error: API request took too long"}`, 502, "Timeout error: API request took too long"},
		{"plain text", http.StatusInternalServerError, "boom\n", 500, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewAPIClientWithConfig(server.URL)
			require.NoError(t, err)

			_, err = client.Ask(context.Background(), "hello")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAPIClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","faq_entries":4,"remote_configured":false}`))
	}))
	defer server.Close()

	client, err := NewAPIClientWithConfig(server.URL)
	require.NoError(t, err)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &HealthStatus{Status: "ok", FAQEntries: 4, RemoteConfigured: false}, status)
}

func TestAPIClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, err := NewAPIClientWithConfig(server.URL)
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "hello")
	assert.ErrorContains(t, err, "failed to parse response")
}

func TestNewAPIClientWithConfig_InvalidURL(t *testing.T) {
	_, err := NewAPIClientWithConfig("localhost:5000")
	assert.Error(t, err)
}
