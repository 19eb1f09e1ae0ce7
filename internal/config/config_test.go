package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-saga/internal/config"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.FromEnv(env(nil))
		require.NoError(t, err)

		assert.Equal(t, config.DefaultModel, cfg.Model)
		assert.Equal(t, config.DefaultPort, cfg.Port)
		assert.Equal(t, config.DefaultSessionDB, cfg.SessionDB)
		assert.False(t, cfg.HasAPIKey())
		assert.False(t, cfg.UsesRedis())
	})

	t.Run("public key is a fallback", func(t *testing.T) {
		cfg, err := config.FromEnv(env(map[string]string{config.EnvPublicAPIKey: "public"}))
		require.NoError(t, err)
		assert.Equal(t, "public", cfg.APIKey)

		cfg, err = config.FromEnv(env(map[string]string{
			config.EnvPublicAPIKey: "public",
			config.EnvAPIKey:       "server",
		}))
		require.NoError(t, err)
		assert.Equal(t, "server", cfg.APIKey)
	})

	t.Run("all values", func(t *testing.T) {
		cfg, err := config.FromEnv(env(map[string]string{
			config.EnvAPIKey:      "key",
			config.EnvModel:       "gemini-2.0-flash",
			config.EnvProviderRPS: "0.5",
			config.EnvRedisAddr:   "localhost:6379",
			config.EnvSessionDB:   "/tmp/s.db",
			config.EnvRelayURL:    "http://localhost:3000/api/generate-story",
			config.EnvPort:        "8080",
		}))
		require.NoError(t, err)

		assert.Equal(t, &config.Config{
			APIKey:      "key",
			Model:       "gemini-2.0-flash",
			ProviderRPS: 0.5,
			RedisAddr:   "localhost:6379",
			SessionDB:   "/tmp/s.db",
			RelayURL:    "http://localhost:3000/api/generate-story",
			Port:        8080,
		}, cfg)
		assert.True(t, cfg.UsesRedis())
	})

	t.Run("invalid values", func(t *testing.T) {
		testCases := map[string]map[string]string{
			"port not a number": {config.EnvPort: "http"},
			"port out of range": {config.EnvPort: "70000"},
			"negative rps":      {config.EnvProviderRPS: "-1"},
			"rps not a number":  {config.EnvProviderRPS: "fast"},
			"relative relay":    {config.EnvRelayURL: "/api/generate-story"},
		}
		for name, values := range testCases {
			t.Run(name, func(t *testing.T) {
				_, err := config.FromEnv(env(values))
				assert.Error(t, err)
			})
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads env file without overriding the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(
			"GEMINI_MODEL=from-file\nPORT=4000\n"), 0o600))

		t.Setenv(config.EnvModel, "from-env")
		t.Setenv(config.EnvPort, "")

		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.Model)
		// an empty but present variable is still present
		assert.Equal(t, config.DefaultPort, cfg.Port)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		t.Setenv(config.EnvModel, "")
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
		assert.NoError(t, err)
	})
}
