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

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigLoaderDefaults(t *testing.T) {
	loader, err := NewConfigLoader(writeConfigFile(t, ""))
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "library", cfg.Library.Directory)
	assert.Equal(t, "yaml", cfg.Library.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, uint(3), cfg.OpenAI.RetryAttempts)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestConfigLoaderFileOverrides(t *testing.T) {
	path := writeConfigFile(t, `
library:
  directory: /data/kanshu
  backend: mysql
dictionary:
  base_url: https://jisho.example.com/api/v1
database:
  host: db.example.com
  port: 3307
`)
	loader, err := NewConfigLoader(path)
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/kanshu", cfg.Library.Directory)
	assert.Equal(t, "mysql", cfg.Library.Backend)
	assert.Equal(t, "https://jisho.example.com/api/v1", cfg.Dictionary.BaseURL)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 3307, cfg.Database.Port)
}

func TestConfigLoaderEnvironmentBindings(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("DB_PASSWORD", "hunter2")

	loader, err := NewConfigLoader(writeConfigFile(t, ""))
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestConfigLoaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown backend",
			content: "library:\n  backend: sqlite\n",
			wantErr: "backend",
		},
		{
			name:    "invalid dictionary url",
			content: "dictionary:\n  base_url: not a url\n",
			wantErr: "base_url",
		},
		{
			name:    "invalid database port",
			content: "database:\n  port: -1\n",
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewConfigLoader(writeConfigFile(t, tt.content))
			require.NoError(t, err)

			_, err = loader.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigLoaderMissingFileUsesDefaults(t *testing.T) {
	loader, err := NewConfigLoader("")
	require.NoError(t, err)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Library.Backend)
}
