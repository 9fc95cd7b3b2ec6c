package infra

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Store:              StorePostgres,
		ProjectionStore:    StoreRedis,
		MatchProvider:      ProviderFootballData,
		FootballDataAPIKey: "token",
		JWTSecret:          strings.Repeat("s", 32),
		AdminAPIKey:        strings.Repeat("k", 24),
		JWTPlayerExpiry:    "720h",
		JWTAdminExpiry:     "8h",
		BetRateLimit:       30,
		PGMaxConns:         10,
		MatchPollInterval:  time.Minute,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"STORE", "MATCH_POLL_INTERVAL", "CORS_ALLOWED_ORIGINS", "OUTBOX_BATCH_SIZE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, time.Minute, cfg.MatchPollInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("MATCH_POLL_INTERVAL", "15s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BET_RATE_LIMIT", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 15*time.Second, cfg.MatchPollInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.BetRateLimit)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("MATCH_POLL_INTERVAL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.Store = "sqlite" }, "STORE"},
		{"unknown projection store", func(c *Config) { c.ProjectionStore = "memcached" }, "PROJECTION_STORE"},
		{"unknown provider", func(c *Config) { c.MatchProvider = "espn" }, "MATCH_PROVIDER"},
		{"zero rate limit", func(c *Config) { c.BetRateLimit = 0 }, "BET_RATE_LIMIT"},
		{"default secret", func(c *Config) { c.JWTSecret = "change-me-in-production" }, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"short admin key", func(c *Config) { c.AdminAPIKey = "abc" }, "ADMIN_API_KEY"},
		{"missing provider key", func(c *Config) { c.FootballDataAPIKey = "" }, "FOOTBALL_DATA_API_KEY"},
		{"fixture provider needs no key", func(c *Config) {
			c.MatchProvider = ProviderFixture
			c.FootballDataAPIKey = ""
		}, ""},
		{"insecure allowed", func(c *Config) {
			c.AllowInsecureDefaults = true
			c.JWTSecret = "change-me-in-production"
			c.AdminAPIKey = ""
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5432, PGDatabase: "matchday"}
	assert.Equal(t, "postgres://u:p@db:5432/matchday?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestJWTExpiries(t *testing.T) {
	cfg := validConfig()
	player, admin, err := cfg.JWTExpiries()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, player)
	assert.Equal(t, 8*time.Hour, admin)

	cfg.JWTAdminExpiry = "forever"
	_, _, err = cfg.JWTExpiries()
	assert.Error(t, err)
}
