package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"api_key": "file-key",
		"database_url": "postgres://localhost/nexus",
		"port": "9090",
		"models": ["gemini-2.5-pro"]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/nexus", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"gemini-2.5-pro"}, cfg.Models)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfigFile(t, `{not json`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestMergeWithEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("NEXUS_MODELS", "")

	cfg := &Config{APIKey: "file-key", DatabaseURL: "postgres://file"}
	merged := cfg.MergeWithEnv()

	// Env wins where set; file value survives where env is empty.
	assert.Equal(t, "env-key", merged.APIKey)
	assert.Equal(t, "postgres://file", merged.DatabaseURL)

	// Defaults fill the rest.
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultModels, merged.Models)
}

func TestMergeWithEnv_ModelOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("NEXUS_MODELS", "gemini-2.5-pro, gemini-2.5-flash ,")

	merged := (&Config{}).MergeWithEnv()
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, merged.Models)
}

func TestValidate(t *testing.T) {
	cfg := &Config{APIKey: "k", Models: []string{"gemini-2.5-flash"}}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{Models: []string{"m"}}).Validate())
	assert.Error(t, (&Config{APIKey: "k"}).Validate())
	assert.Error(t, (&Config{APIKey: "k", Models: []string{" "}}).Validate())
}
