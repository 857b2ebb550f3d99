package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/solar-admin/pkg/circuitbreaker"
)

type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Session      SessionConfig      `mapstructure:"session"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Notification NotificationConfig `mapstructure:"notification"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// BackendConfig points at the commerce backend. BaseURL wins over the
// per-environment table.
type BackendConfig struct {
	BaseURL  string            `mapstructure:"base_url"`
	BaseURLs map[string]string `mapstructure:"base_urls"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Breaker  BreakerConfig     `mapstructure:"breaker"`
}

// BreakerConfig trips the backend breaker once at least MinRequests calls
// were seen in Interval and FailureRatio of them failed.
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

func (b BreakerConfig) Settings(name string) circuitbreaker.Settings {
	s := circuitbreaker.DefaultSettings(name)
	if b.MaxRequests > 0 {
		s.MaxRequests = b.MaxRequests
	}
	if b.Interval > 0 {
		s.Interval = b.Interval
	}
	if b.Timeout > 0 {
		s.Timeout = b.Timeout
	}
	if b.MinRequests > 0 {
		s.MinRequests = b.MinRequests
	}
	if b.FailureRatio > 0 {
		s.FailureRatio = b.FailureRatio
	}
	return s
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	// Driver is "memory" or "redis".
	Driver   string `mapstructure:"driver"`
	RedisURL string `mapstructure:"redis_url"`
}

// DatabaseConfig is optional; an empty DSN disables the audit trail.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AuditRetention  time.Duration `mapstructure:"audit_retention"`
}

type NotificationConfig struct {
	DraftTTL   time.Duration `mapstructure:"draft_ttl"`
	Currency   string        `mapstructure:"currency"`
	DateFormat string        `mapstructure:"date_format"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Secrets are read from ADMIN_* environment variables and override the file.
type Secrets struct {
	JWTSecret      string `envconfig:"JWT_SECRET"`
	BackendBaseURL string `envconfig:"BACKEND_BASE_URL"`
	RedisURL       string `envconfig:"REDIS_URL"`
	DatabaseDSN    string `envconfig:"DATABASE_DSN"`
	Environment    string `envconfig:"ENVIRONMENT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("backend.base_urls", map[string]string{
		"development": "http://localhost:5000/api",
	})
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.breaker.max_requests", 1)
	v.SetDefault("backend.breaker.interval", time.Minute)
	v.SetDefault("backend.breaker.timeout", 30*time.Second)
	v.SetDefault("backend.breaker.min_requests", 5)
	v.SetDefault("backend.breaker.failure_ratio", 0.6)
	v.SetDefault("session.issuer", "solar-admin")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.audit_retention", 90*24*time.Hour)
	v.SetDefault("notification.draft_ttl", 30*time.Minute)
	v.SetDefault("notification.currency", "$")
	v.SetDefault("notification.date_format", "January 2, 2006")
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from . or ./config when present, then applies
// ADMIN_* environment overrides.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("admin", &secrets); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	config.apply(secrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) apply(s Secrets) {
	if s.Environment != "" {
		c.Environment = s.Environment
	}
	if s.JWTSecret != "" {
		c.Session.Secret = s.JWTSecret
	}
	if s.BackendBaseURL != "" {
		c.Backend.BaseURL = s.BackendBaseURL
	}
	if s.RedisURL != "" {
		c.Storage.RedisURL = s.RedisURL
		c.Storage.Driver = "redis"
	}
	if s.DatabaseDSN != "" {
		c.Database.DSN = s.DatabaseDSN
	}
}

// BackendURL is the explicit base URL, else the one configured for the
// current environment.
func (c *Config) BackendURL() string {
	if c.Backend.BaseURL != "" {
		return c.Backend.BaseURL
	}
	return c.Backend.BaseURLs[strings.ToLower(c.Environment)]
}

func (c *Config) Validate() error {
	if c.BackendURL() == "" {
		return fmt.Errorf("no backend base url configured for environment %q", c.Environment)
	}
	if len(c.Session.Secret) < 16 {
		return errors.New("session secret must be at least 16 bytes")
	}
	switch c.Storage.Driver {
	case "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if r := c.Backend.Breaker.FailureRatio; r < 0 || r > 1 {
		return fmt.Errorf("backend.breaker.failure_ratio must be within [0, 1], got %v", r)
	}
	return nil
}
