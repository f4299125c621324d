package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":                   ":8080",
		"database_dsn":                         "postgres://db/ducky",
		"secret_key":                           "my_secret_key",
		"token_validity_duration":              "48h",
		"verification_token_validity_duration": "1h",
		"frontend_url":                         "https://ducky.app",
		"backend_url":                          "https://api.ducky.app",
		"production":                           true,
		"log_level":                            "warn",
		"email_provider":                       "ses",
		"email_from":                           "noreply@ducky.app",
		"ses_region":                           "eu-west-1",
		"ses_access_key":                       "AKIA",
		"ses_secret_key":                       "shh",
		"ses_endpoint":                         "http://localhost:4566",
		"auth_rate_limit_rps":                  2,
		"auth_rate_limit_burst":                4,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db/ducky", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 48*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, time.Hour, cfg.VerificationTokenValidityDuration)
		assert.Equal(t, "https://ducky.app", cfg.FrontendURL)
		assert.Equal(t, "https://api.ducky.app", cfg.BackendURL)
		assert.True(t, cfg.Production)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "ses", cfg.EmailProvider)
		assert.Equal(t, "noreply@ducky.app", cfg.EmailFrom)
		assert.Equal(t, "eu-west-1", cfg.SESRegion)
		assert.Equal(t, "AKIA", cfg.SESAccessKey)
		assert.Equal(t, "shh", cfg.SESSecretKey)
		assert.Equal(t, "http://localhost:4566", cfg.SESEndpoint)
		assert.Equal(t, 2, cfg.AuthRateLimitRPS)
		assert.Equal(t, 4, cfg.AuthRateLimitBurst)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"secret_key": "only-this",
		})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-this", cfg.SecretKey)
		assert.Equal(t, ":3000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 7*24*time.Hour, cfg.TokenValidityDuration)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{SecretKey: "key", EndpointAddrHTTP: "defaults:1234"}
		parseJson(cfg)

		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
