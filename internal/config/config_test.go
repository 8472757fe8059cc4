package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeFile(t, `
http:
  addr: ":9090"
redis:
  listing_ttl: 90s
auth:
  jwt_secret: from-file
  require_confirmation: false
logging:
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 90*time.Second, cfg.Redis.ListingTTL)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.RequireConfirmation)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "auth:\n  jwt_secret: from-file\n")

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP, cfg.HTTP)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "http: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "missing secret",
			mutate:  func(c *Config) {},
			wantErr: "jwt_secret",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = "s"
			},
			wantErr: "postgres.dsn",
		},
		{
			name: "unknown driver",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = "s"
				c.Storage.Driver = "sqlite"
			},
			wantErr: "storage.driver",
		},
		{
			name: "memory driver is self contained",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = "s"
				c.Storage.Driver = DriverMemory
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
