package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "gemini", cfg.Completion.Provider)
	require.NotNil(t, cfg.Completion.Temperature)
	assert.InDelta(t, 0.7, *cfg.Completion.Temperature, 1e-6)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 8192, cfg.Completion.MaxOutputTokens)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.Client.APIURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
completion:
  provider: OpenAI
  model: gpt-4o
store:
  driver: sqlite
database:
  host: db
  port: 3306
  user: app
  password: pw
  name: aio
`), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "ignored")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Completion.Model)
	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "app:pw@tcp(db:3306)/aio?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	var cfg Config
	env := map[string]string{"PORT": "eighty"}
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.ErrorContains(t, err, "PORT")
}

func TestGeminiKeyIsDefault(t *testing.T) {
	var cfg Config
	env := map[string]string{"GEMINI_API_KEY": "g-key", "OPENAI_API_KEY": "o-key"}
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }))
	cfg.applyDefaults()
	assert.Equal(t, "g-key", cfg.Completion.APIKey)
}

func TestZeroTemperatureIsKept(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion:\n  temperature: 0\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Completion.Temperature)
	assert.Zero(t, *cfg.Completion.Temperature)

	var fromEnv Config
	env := map[string]string{"COMPLETION_TEMPERATURE": "0"}
	require.NoError(t, fromEnv.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	fromEnv.applyDefaults()
	require.NotNil(t, fromEnv.Completion.Temperature)
	assert.Zero(t, *fromEnv.Completion.Temperature)
}

func TestDatabasePortDefaultsPerDriver(t *testing.T) {
	tests := []struct {
		driver string
		port   int
		dsn    string
	}{
		{"mysql", 3306, "app:pw@tcp(db:3306)/aio?parseTime=true&charset=utf8mb4&loc=UTC"},
		{"postgres", 5432, "host=db port=5432 user=app password=pw dbname=aio sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			var cfg Config
			cfg.Store.Driver = tt.driver
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name = "db", "app", "pw", "aio"
			cfg.applyDefaults()

			assert.Equal(t, tt.port, cfg.Database.Port)
			if tt.driver == "mysql" {
				assert.Equal(t, tt.dsn, cfg.MySQLDSN())
			} else {
				assert.Equal(t, tt.dsn, cfg.PostgresDSN())
			}
		})
	}
}
