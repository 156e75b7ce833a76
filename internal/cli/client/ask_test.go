package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(cmd *cobra.Command) *cobra.Command {
	cmd.PersistentFlags().Bool("output", false, "Output as JSON")
	cmd.PersistentFlags().String("api-url", "", "API base URL")
	return cmd
}

func TestReadQuestion(t *testing.T) {
	q, err := readQuestion([]string{"what", "is", "mrv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "what is mrv", q)

	q, err = readQuestion(nil, strings.NewReader("  carbon price\n"))
	require.NoError(t, err)
	assert.Equal(t, "carbon price", q)

	_, err = readQuestion([]string{"   "}, strings.NewReader(""))
	assert.EqualError(t, err, "no question provided")
}

func TestAskCmd(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body["question"]
		_, _ = w.Write([]byte(`{"answer":"Current carbon price is $8.5 USD per tCO2e."}`))
	}))
	defer server.Close()

	t.Run("plain output", func(t *testing.T) {
		cmd := newTestRoot(AskCmd())
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--api-url", server.URL, "carbon", "price"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "carbon price", got)
		assert.Equal(t, "Current carbon price is $8.5 USD per tCO2e.\n", out.String())
	})

	t.Run("json output", func(t *testing.T) {
		cmd := newTestRoot(AskCmd())
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--api-url", server.URL, "--output", "carbon price"})

		require.NoError(t, cmd.Execute())
		assert.JSONEq(t, `{"question":"carbon price","answer":"Current carbon price is $8.5 USD per tCO2e."}`, out.String())
	})

	t.Run("env url", func(t *testing.T) {
		t.Setenv(envAPIURL, server.URL)
		cmd := newTestRoot(AskCmd())
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader("from stdin"))
		cmd.SetArgs([]string{})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "from stdin", got)
	})
}

func TestHealthCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","faq_entries":2,"remote_configured":true}`))
	}))
	defer server.Close()

	root := newTestRoot(&cobra.Command{Use: "ask"})
	root.AddCommand(HealthCmd())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"health", "--api-url", server.URL})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "FAQ entries:       2")
	assert.Contains(t, out.String(), "Remote configured: true")
}

func TestConfigCmd(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))
	t.Setenv(envAPIURL, "")

	run := func(args ...string) (string, error) {
		root := newTestRoot(&cobra.Command{Use: "ask"})
		root.AddCommand(ConfigCmd())
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}

	_, err := run("config", "set-url", "not-a-url")
	assert.Error(t, err)

	_, err = run("config", "set-url", "https://ask.example.com")
	require.NoError(t, err)

	out, err := run("config", "show")
	require.NoError(t, err)
	assert.Equal(t, "https://ask.example.com (global_config)\n", out)

	_, err = run("config", "reset")
	require.NoError(t, err)

	out, err = run("config", "show")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000 (default)\n", out)
}
