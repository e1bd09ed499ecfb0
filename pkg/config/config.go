package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the AOI engine. Values come from
// config.yaml with environment variable overrides; secrets (passwords, API
// keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MigrationsPath points at the golang-migrate SQL directory.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	Database DatabaseConfig `yaml:"database"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
}

// DatabaseConfig holds PostGIS connection configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"naturewatch"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"naturewatch"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// OracleConfig holds the selection-oracle model endpoint. Provider picks the
// wire client: "openai" covers any OpenAI-compatible endpoint (including
// local vLLM/Ollama deployments), "anthropic" uses the Anthropic API.
type OracleConfig struct {
	Provider    string  `yaml:"provider" env:"ORACLE_PROVIDER" env-default:"openai"`
	Endpoint    string  `yaml:"endpoint" env:"ORACLE_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"ORACLE_MODEL" env-default:"gpt-4o"`
	APIKey      string  `yaml:"-" env:"ORACLE_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"ORACLE_TEMPERATURE" env-default:"0"`
	MaxTokens   int     `yaml:"max_tokens" env:"ORACLE_MAX_TOKENS" env-default:"1024"`
}

// SearchConfig tunes candidate search and result guardrails.
type SearchConfig struct {
	// SimilarityFloor is the minimum trigram similarity for a name match.
	SimilarityFloor float64 `yaml:"similarity_floor" env:"SEARCH_SIMILARITY_FLOOR" env-default:"0.2"`
	// PerSourceLimit caps how many candidates each source may return.
	PerSourceLimit int `yaml:"per_source_limit" env:"SEARCH_PER_SOURCE_LIMIT" env-default:"10"`
}

// AuthConfig controls bearer-token principal extraction for custom areas.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated
	// against the JWKS endpoint. Set to false for local development.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSURL is the JSON Web Key Set endpoint used to verify tokens.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL" env-default:""`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config file exists, configuration comes from the
// environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Search.SimilarityFloor < 0 || c.Search.SimilarityFloor > 1 {
		return fmt.Errorf("similarity floor must be within [0, 1], got %v", c.Search.SimilarityFloor)
	}
	if c.Search.PerSourceLimit <= 0 {
		return fmt.Errorf("per-source limit must be positive, got %d", c.Search.PerSourceLimit)
	}
	switch c.Oracle.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Auth.EnableVerification && c.Auth.JWKSURL == "" {
		return fmt.Errorf("auth verification enabled but no JWKS URL configured")
	}
	return nil
}
