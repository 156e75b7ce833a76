package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/askai/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpenAIClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	return NewClient(gen, OpenAIProvider, time.Second, zap.NewNop())
}

func TestOpenAI_Success(t *testing.T) {
	var got openai.ChatCompletionRequest
	client := newOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Gold Standard certifies offsets."}}]}`))
	})

	outcome := client.Ask(context.Background(), "What is Gold Standard?")

	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "Gold Standard certifies offsets.", outcome.Text)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Answer in maximum 50 words: What is Gold Standard?", got.Messages[0].Content)
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind domain.OutcomeKind
		wantMsg  string
	}{
		{
			name:     "no choices",
			status:   http.StatusOK,
			body:     `{"choices":[]}`,
			wantKind: domain.OutcomeEmptyContent,
			wantMsg:  "No answer returned from OpenAI API.",
		},
		{
			name:     "json error",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
			wantKind: domain.OutcomeHTTPError,
			wantMsg:  `API Error: 401 - {"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
		},
		{
			name:     "plain text error",
			status:   http.StatusBadGateway,
			body:     "bad gateway",
			wantKind: domain.OutcomeHTTPError,
			wantMsg:  "API Error: 502 - bad gateway",
		},
		{
			name:     "truncated body",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":`,
			wantKind: domain.OutcomeMalformedResponse,
		},
		{
			name:     "empty body",
			status:   http.StatusOK,
			body:     "",
			wantKind: domain.OutcomeMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			outcome := client.Ask(context.Background(), "hello")

			assert.Equal(t, tt.wantKind, outcome.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, outcome.Message())
			}
		})
	}
}
