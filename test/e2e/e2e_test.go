//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/cloo-solutions/askai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Health(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, err := env.Get("/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body["status"])
	assert.Equal(t, float64(2), resp.Body["faq_entries"])
	assert.Equal(t, true, resp.Body["remote_configured"])

	resp, err = env.Get("/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Raw), "<html")
}

func TestE2E_AnswerTiers(t *testing.T) {
	env := SetupE2EEnv(t)

	t.Run("faq match from the bucket", func(t *testing.T) {
		resp, err := env.Ask(map[string]string{"question": "  So, WHAT IS MRV exactly?"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "MRV stands for measurement, reporting and verification.", resp.Body["answer"])
	})

	t.Run("carbon price rule", func(t *testing.T) {
		resp, err := env.Ask(map[string]string{"question": "Current carbon price?"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Current carbon price is $8.5 USD per tCO2e.", resp.Body["answer"])
	})

	assert.Equal(t, 0, env.Gemini.Calls())

	t.Run("remote fallback", func(t *testing.T) {
		resp, err := env.Ask(map[string]string{"question": "What is Verra?"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Verra is a carbon crediting standard.", resp.Body["answer"])
		assert.Equal(t, 1, env.Gemini.Calls())
	})

	t.Run("remote failure is still 200", func(t *testing.T) {
		env.Gemini.Status = http.StatusBadRequest
		defer func() { env.Gemini.Status = http.StatusOK }()

		resp, err := env.Ask(map[string]string{"question": "What is Gold Standard?"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `API Error: 400 - {"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, resp.Body["answer"])
	})

	t.Run("validation", func(t *testing.T) {
		resp, err := env.AskRaw(`{"question":"   "}`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No question provided", resp.Body["error"])

		resp, err = env.AskRaw(`not json`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No JSON data provided", resp.Body["error"])
	})
}

func TestE2E_QuestionLog(t *testing.T) {
	env := SetupE2EEnv(t)

	questions := []string{"what is a carbon credit", "carbon price", "What is Verra?"}
	for _, q := range questions {
		resp, err := env.Ask(map[string]string{"question": q})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	env.StopWorker()

	page, err := env.Repo.ListWithCursor(env.Ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, len(questions))

	byQuestion := make(map[string]domain.Tier, len(page.Items))
	for _, entry := range page.Items {
		byQuestion[entry.Question] = entry.Tier
		assert.NotEmpty(t, entry.RequestID)
	}
	assert.Equal(t, domain.TierFAQ, byQuestion["what is a carbon credit"])
	assert.Equal(t, domain.TierRule, byQuestion["carbon price"])
	assert.Equal(t, domain.TierRemote, byQuestion["What is Verra?"])
}
