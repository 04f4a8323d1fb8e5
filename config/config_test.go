package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file:test.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 5*time.Minute, cfg.Server.CacheTTL())
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
	assert.Equal(t, time.Duration(0), cfg.Assignment.Lease, "lease is disabled unless configured")
	assert.Equal(t, 30*time.Second, cfg.Assignment.ReapInterval)
	assert.Equal(t, "printfarm", cfg.Events.SubjectPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Push.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_allowed_origins: ["http://localhost:3000"]
database:
  driver: postgres
  dsn: "host=localhost"
push:
  vapid_public_key: pub
  vapid_private_key: priv
assignment:
  lease_seconds: 120
  reap_interval_seconds: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Push.Enabled())
	assert.Equal(t, 2*time.Minute, cfg.Assignment.Lease)
	assert.Equal(t, 10*time.Second, cfg.Assignment.ReapInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server port must be between 1 and 65535, got 70000",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "invalid database driver: mysql (valid: postgres, sqlite)",
		},
		{
			name:    "missing dsn",
			mutate:  func(c *Config) { c.Database.DSN = "" },
			wantErr: "database dsn is required",
		},
		{
			name:    "negative lease",
			mutate:  func(c *Config) { c.Assignment.LeaseSeconds = -1 },
			wantErr: "assignment lease_seconds must be non-negative",
		},
		{
			name:    "public base url without scheme",
			mutate:  func(c *Config) { c.Storage.PublicBaseURL = "farm.example.com" },
			wantErr: `storage public_base_url must be an http(s) URL, got "farm.example.com"`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid log level: trace (valid: debug, info, warn, error)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", DSN: "file:test.db"}}
			cfg.applyDefaults()
			tc.mutate(cfg)
			assert.EqualError(t, cfg.Validate(), tc.wantErr)
		})
	}
}
