package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
)

// Match providers.
const (
	ProviderFootballData = "football-data"
	ProviderFixture      = "fixture"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"matchday"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"matchday"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"matchday"`
	PGMaxConns    int    `env:"PG_MAX_CONNS" envDefault:"10"`
	Store         string `env:"STORE" envDefault:"postgres"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis
	RedisURL        string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	ProjectionStore string `env:"PROJECTION_STORE" envDefault:"redis"`

	// JWT
	JWTSecret       string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry string `env:"JWT_PLAYER_EXPIRY" envDefault:"720h"`
	JWTAdminExpiry  string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`
	AdminAPIKey     string `env:"ADMIN_API_KEY"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers       string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Match feed
	MatchProvider        string        `env:"MATCH_PROVIDER" envDefault:"football-data"`
	FootballDataAPIKey   string        `env:"FOOTBALL_DATA_API_KEY"`
	FootballDataBaseURL  string        `env:"FOOTBALL_DATA_BASE_URL" envDefault:"https://api.football-data.org"`
	FixturePath          string        `env:"FIXTURE_PATH" envDefault:"testdata/fixtures.json"`
	MatchPollInterval    time.Duration `env:"MATCH_POLL_INTERVAL" envDefault:"1m"`
	FeedFailureThreshold int           `env:"FEED_FAILURE_THRESHOLD" envDefault:"5"`
	FeedResetTimeout     time.Duration `env:"FEED_RESET_TIMEOUT" envDefault:"5m"`

	// Bets
	BetRateLimit  int           `env:"BET_RATE_LIMIT" envDefault:"30"`
	BetRateWindow time.Duration `env:"BET_RATE_WINDOW" envDefault:"1m"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	switch c.ProjectionStore {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("PROJECTION_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, c.ProjectionStore)
	}
	switch c.MatchProvider {
	case ProviderFootballData, ProviderFixture:
	default:
		return fmt.Errorf("MATCH_PROVIDER must be %q or %q, got %q", ProviderFootballData, ProviderFixture, c.MatchProvider)
	}
	if c.BetRateLimit < 1 {
		return fmt.Errorf("BET_RATE_LIMIT must be positive, got %d", c.BetRateLimit)
	}
	if c.PGMaxConns < 1 {
		return fmt.Errorf("PG_MAX_CONNS must be positive, got %d", c.PGMaxConns)
	}
	if c.MatchPollInterval <= 0 {
		return fmt.Errorf("MATCH_POLL_INTERVAL must be positive, got %s", c.MatchPollInterval)
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if len(c.AdminAPIKey) < 24 {
		return fmt.Errorf("ADMIN_API_KEY must be at least 24 characters")
	}
	if c.MatchProvider == ProviderFootballData && c.FootballDataAPIKey == "" {
		return fmt.Errorf("FOOTBALL_DATA_API_KEY is required when MATCH_PROVIDER=%s", ProviderFootballData)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// JWTExpiries parses the realm token lifetimes.
func (c *Config) JWTExpiries() (player, admin time.Duration, err error) {
	if player, err = time.ParseDuration(c.JWTPlayerExpiry); err != nil {
		return 0, 0, fmt.Errorf("parse player JWT expiry: %w", err)
	}
	if admin, err = time.ParseDuration(c.JWTAdminExpiry); err != nil {
		return 0, 0, fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	return player, admin, nil
}
