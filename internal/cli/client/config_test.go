package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	old := getConfigPathFunc
	getConfigPathFunc = func() (string, error) { return path, nil }
	t.Cleanup(func() { getConfigPathFunc = old })
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "askai"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	withConfigPath(t, filepath.Join(t.TempDir(), "config.json"))

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))
	withConfigPath(t, configPath)

	config, err := LoadGlobalConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "askai", "config.json")
	withConfigPath(t, configPath)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "https://ask.example.com"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "https://ask.example.com", raw["api_url"])

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "https://ask.example.com", config.APIURL)
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	assert.Error(t, SaveGlobalConfig(nil))
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	withConfigPath(t, configPath)

	require.NoError(t, DeleteGlobalConfig())

	require.NoError(t, os.WriteFile(configPath, []byte(`{}`), 0600))
	require.NoError(t, DeleteGlobalConfig())
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestValidateAPIURL(t *testing.T) {
	assert.NoError(t, ValidateAPIURL("http://localhost:5000"))
	assert.NoError(t, ValidateAPIURL("https://ask.example.com/"))
	assert.Error(t, ValidateAPIURL("localhost:5000"))
	assert.Error(t, ValidateAPIURL("ftp://example.com"))
	assert.Error(t, ValidateAPIURL("http://"))
	assert.Error(t, ValidateAPIURL("://bad"))
}

func TestResolveAPIURL(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	withConfigPath(t, configPath)

	t.Run("default", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		url, source, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, defaultAPIURL, url)
		assert.Equal(t, SourceDefault, source)
	})

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://saved:5000"}))

	t.Run("global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		url, source, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, "http://saved:5000", url)
		assert.Equal(t, SourceGlobalConfig, source)
	})

	t.Run("env overrides global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:5000")
		url, source, err := ResolveAPIURL("")
		require.NoError(t, err)
		assert.Equal(t, "http://env:5000", url)
		assert.Equal(t, SourceEnv, source)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://env:5000")
		url, source, err := ResolveAPIURL("http://flag:5000")
		require.NoError(t, err)
		assert.Equal(t, "http://flag:5000", url)
		assert.Equal(t, SourceFlag, source)
	})
}
