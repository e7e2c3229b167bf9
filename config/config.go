// Package config loads the discover service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"vibin_discover/models"

	"gopkg.in/yaml.v3"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Discover DiscoverConfig `yaml:"discover"`
	Backend  BackendConfig  `yaml:"backend"`
	AWS      AWSConfig      `yaml:"aws"`
	Tables   TablesConfig   `yaml:"tables"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DiscoverConfig tunes the swipe sessions
type DiscoverConfig struct {
	// PageSize is the number of candidates requested per fetch
	PageSize int `yaml:"page_size"`
	// RefillThreshold is the remaining count that triggers a refill
	RefillThreshold int `yaml:"refill_threshold"`
	// Dedupe drops refill candidates already in the queue
	Dedupe bool `yaml:"dedupe"`
	// SessionIdleTimeout disposes sessions with no user action for this long
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	// Debug logs ignored swipes and undos
	Debug bool `yaml:"debug"`
}

// BackendConfig selects the data store behind the sessions
type BackendConfig struct {
	Kind        string `yaml:"kind"`
	DatabaseURL string `yaml:"database_url"`
}

// AWSConfig configures DynamoDB and S3 access
type AWSConfig struct {
	Region         string        `yaml:"region"`
	BucketName     string        `yaml:"bucket_name"`
	PhotoURLExpiry time.Duration `yaml:"photo_url_expiry"`
}

// TablesConfig names the DynamoDB tables
type TablesConfig struct {
	Candidates string `yaml:"candidates"`
	Swipes     string `yaml:"swipes"`
	Matches    string `yaml:"matches"`
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Discover: DiscoverConfig{
			PageSize:           10,
			RefillThreshold:    2,
			Dedupe:             true,
			SessionIdleTimeout: 30 * time.Minute,
		},
		Backend: BackendConfig{
			Kind: BackendDynamoDB,
		},
		AWS: AWSConfig{
			PhotoURLExpiry: 5 * time.Minute,
		},
		Tables: TablesConfig{
			Candidates: models.CandidatesTable,
			Swipes:     models.SwipesTable,
			Matches:    models.MatchesTable,
		},
	}
}

// LoadFromFile reads a YAML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("AWS_REGION"); v != "" {
		c.AWS.Region = v
	}
	if v := getenv("S3_BUCKET_NAME"); v != "" {
		c.AWS.BucketName = v
	}
	if v := getenv("DISCOVER_BACKEND"); v != "" {
		c.Backend.Kind = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Backend.DatabaseURL = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getenv("DISCOVER_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DISCOVER_PAGE_SIZE %q: %w", v, err)
		}
		c.Discover.PageSize = n
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Discover.PageSize <= 0 {
		errs = append(errs, errors.New("discover.page_size must be positive"))
	}
	if c.Discover.RefillThreshold <= 0 {
		errs = append(errs, errors.New("discover.refill_threshold must be positive"))
	}
	if c.Discover.RefillThreshold >= c.Discover.PageSize {
		errs = append(errs, errors.New("discover.refill_threshold must be below page_size"))
	}
	switch c.Backend.Kind {
	case BackendDynamoDB:
	case BackendPostgres:
		if c.Backend.DatabaseURL == "" {
			errs = append(errs, errors.New("backend.database_url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend.kind %q", c.Backend.Kind))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	return errors.Join(errs...)
}
