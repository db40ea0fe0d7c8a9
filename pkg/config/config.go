package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the dataset web API and its import
// pipeline. Configuration can come from a YAML file (config.yaml) or
// environment variables. Environment variables always override YAML values.
// Secrets (database password, API key) must only come from environment
// variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// APIKey protects the read API. Empty disables the API-key check
	// (local development).
	APIKey string `yaml:"-" env:"API_KEY"` // Secret - not in YAML

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Import pipeline configuration
	Import ImportConfig `yaml:"import"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"movies"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`

	// Pool recycling. Hosted Postgres closes idle connections server-side,
	// so the pool retires them first.
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"PGMAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"PGMAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ImportConfig holds defaults for the batch import pipeline.
type ImportConfig struct {
	// BatchSize is the number of source rows processed per batch.
	BatchSize int `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"500"`
	// MinYear and MaxYear bound the plausible release years. Rows outside
	// the bounds are skipped. MaxYear 0 means "current year + 1".
	MinYear int `yaml:"min_year" env:"IMPORT_MIN_YEAR" env-default:"1990"`
	MaxYear int `yaml:"max_year" env:"IMPORT_MAX_YEAR" env-default:"0"`
	// DefaultCountry is the placeholder country assigned to every imported
	// movie; the source export carries no country column.
	DefaultCountry string `yaml:"default_country" env:"IMPORT_DEFAULT_COUNTRY" env-default:"United States"`
	// MigrationsPath points at the schema migration files applied on startup.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables win over YAML values.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	// Resolve the "current year + 1" default for the year upper bound.
	if cfg.Import.MaxYear == 0 {
		cfg.Import.MaxYear = time.Now().Year() + 1
	}

	return cfg, nil
}

// URL builds a PostgreSQL connection string from the database settings.
// DATABASE_URL, when set, overrides the individual PG* fields (Heroku-style
// deployments provide the full URL).
func (c *DatabaseConfig) URL() string {
	if full := os.Getenv("DATABASE_URL"); full != "" {
		return full
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
