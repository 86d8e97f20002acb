// Package config provides configuration management for the StackIt client.
// It handles loading and parsing YAML configuration files, applies environment overrides,
// and validates the result before the rest of the application sees it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the API root used when neither the config file nor the environment sets one.
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultRequestTimeout bounds a single HTTP exchange with the API.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultRefreshTimeout bounds a token refresh; the refresh fails closed when it elapses.
	DefaultRefreshTimeout = 15 * time.Second

	// DefaultProfile names the credential pair slot used when none is configured.
	DefaultProfile = "default"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	SDKConfig `yaml:",inline"`

	// BaseURL is the API root all endpoint paths are appended to.
	BaseURL string `yaml:"base-url" json:"base-url" validate:"required,url"`

	// WebURL is the web frontend root notification links are resolved against. Empty derives
	// it from BaseURL by dropping a trailing /api.
	WebURL string `yaml:"web-url" json:"web-url" validate:"omitempty,url"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile switches log output from stderr to a rotating main.log.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsMaxTotalSizeMB caps the size of the log directory. <= 0 disables the cleaner.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb" json:"logs-max-total-size-mb" validate:"gte=0"`

	// RequestTimeout bounds each HTTP exchange. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration `yaml:"request-timeout" json:"request-timeout" validate:"gte=0"`

	// RefreshTimeout bounds each token refresh. Zero means DefaultRefreshTimeout.
	RefreshTimeout time.Duration `yaml:"refresh-timeout" json:"refresh-timeout" validate:"gte=0"`

	// MetricsAddr, when set, exposes Prometheus metrics on this address for long-running commands.
	MetricsAddr string `yaml:"metrics-addr" json:"metrics-addr" validate:"omitempty,hostname_port"`

	// CredentialStore selects and configures the durable backend for access/refresh tokens.
	CredentialStore CredentialStoreConfig `yaml:"credential-store" json:"credential-store"`

	// SessionEvents shares session invalidation events between processes.
	SessionEvents SessionEventsConfig `yaml:"session-events" json:"session-events"`
}

// SessionEventsConfig publishes session invalidation events to Redis streams so that
// processes sharing a credential store stop when any of them logs out or fails a refresh.
type SessionEventsConfig struct {
	// RedisAddr enables the Redis stream transport. Empty keeps events in-process.
	RedisAddr     string `yaml:"redis-addr" json:"redis-addr" validate:"omitempty,hostname_port"`
	RedisPassword string `yaml:"redis-password" json:"redis-password"`
	RedisDB       int    `yaml:"redis-db" json:"redis-db" validate:"gte=0"`

	// Topic is the stream name. Empty uses stackit.session.invalidated.
	Topic string `yaml:"topic" json:"topic"`
}

// CredentialStoreConfig selects the backend that persists the credential pair.
type CredentialStoreConfig struct {
	// Type is one of file, memory, postgres, object, redis. Empty means file.
	Type string `yaml:"type" json:"type" validate:"omitempty,oneof=file memory postgres object redis"`

	// Profile is the key the pair is stored under, allowing several accounts per backend.
	Profile string `yaml:"profile" json:"profile"`

	// Dir is the directory of the file backend. Supports a leading ~.
	Dir string `yaml:"dir" json:"dir"`

	// Watch reloads the file backend when another process rewrites it.
	Watch bool `yaml:"watch" json:"watch"`

	Postgres PostgresStoreConfig `yaml:"postgres" json:"postgres"`
	Object   ObjectStoreConfig   `yaml:"object" json:"object"`
	Redis    RedisStoreConfig    `yaml:"redis" json:"redis"`
}

// PostgresStoreConfig configures the PostgreSQL credential backend.
type PostgresStoreConfig struct {
	DSN    string `yaml:"dsn" json:"dsn"`
	Schema string `yaml:"schema" json:"schema"`
	Table  string `yaml:"table" json:"table"`
}

// ObjectStoreConfig configures the S3-compatible credential backend.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	AccessKey string `yaml:"access-key" json:"access-key"`
	SecretKey string `yaml:"secret-key" json:"secret-key"`
	Region    string `yaml:"region" json:"region"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	UseSSL    bool   `yaml:"use-ssl" json:"use-ssl"`
	PathStyle bool   `yaml:"path-style" json:"path-style"`
}

// RedisStoreConfig configures the Redis credential backend.
type RedisStoreConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

var validate = validator.New()

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and validates the configuration file at configFile.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads the configuration file at configFile. When optional is true a
// missing or empty path yields defaults instead of an error.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	cfg := &Config{}
	configFile = strings.TrimSpace(configFile)
	if configFile == "" {
		if !optional {
			return nil, fmt.Errorf("config: path is empty")
		}
	} else {
		data, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
				return nil, fmt.Errorf("config: parse %s: %w", configFile, errUnmarshal)
			}
		case optional && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if value, ok := lookup(key); ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed, true
				}
			}
		}
		return "", false
	}

	if v, ok := get("STACKIT_BASE_URL", "stackit_base_url"); ok {
		c.BaseURL = v
	}
	if v, ok := get("STACKIT_WEB_URL", "stackit_web_url"); ok {
		c.WebURL = v
	}
	if v, ok := get("STACKIT_PROXY_URL", "stackit_proxy_url"); ok {
		c.ProxyURL = v
	}
	if v, ok := get("STACKIT_CREDENTIAL_STORE", "stackit_credential_store"); ok {
		c.CredentialStore.Type = strings.ToLower(v)
	}
	if v, ok := get("STACKIT_PROFILE", "stackit_profile"); ok {
		c.CredentialStore.Profile = v
	}
	if v, ok := get("PGSTORE_DSN", "pgstore_dsn"); ok {
		c.CredentialStore.Postgres.DSN = v
		if c.CredentialStore.Type == "" {
			c.CredentialStore.Type = "postgres"
		}
	}
	if v, ok := get("PGSTORE_SCHEMA", "pgstore_schema"); ok {
		c.CredentialStore.Postgres.Schema = v
	}
	if v, ok := get("OBJECTSTORE_ENDPOINT", "objectstore_endpoint"); ok {
		c.CredentialStore.Object.Endpoint = v
		if c.CredentialStore.Type == "" {
			c.CredentialStore.Type = "object"
		}
	}
	if v, ok := get("OBJECTSTORE_BUCKET", "objectstore_bucket"); ok {
		c.CredentialStore.Object.Bucket = v
	}
	if v, ok := get("OBJECTSTORE_ACCESS_KEY", "objectstore_access_key"); ok {
		c.CredentialStore.Object.AccessKey = v
	}
	if v, ok := get("OBJECTSTORE_SECRET_KEY", "objectstore_secret_key"); ok {
		c.CredentialStore.Object.SecretKey = v
	}
	if v, ok := get("REDISSTORE_ADDR", "redisstore_addr"); ok {
		c.CredentialStore.Redis.Addr = v
		if c.CredentialStore.Type == "" {
			c.CredentialStore.Type = "redis"
		}
	}
	if v, ok := get("SESSION_EVENTS_REDIS_ADDR", "session_events_redis_addr"); ok {
		c.SessionEvents.RedisAddr = v
	}
	if v, ok := get("REDISSTORE_PASSWORD", "redisstore_password"); ok {
		c.CredentialStore.Redis.Password = v
	}
	if v, ok := get("REDISSTORE_DB", "redisstore_db"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			c.CredentialStore.Redis.DB = db
		}
	}
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.WebURL = strings.TrimRight(strings.TrimSpace(c.WebURL), "/")
	if c.WebURL == "" {
		c.WebURL = strings.TrimSuffix(c.BaseURL, "/api")
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = DefaultRefreshTimeout
	}
	if c.CredentialStore.Type == "" {
		c.CredentialStore.Type = "file"
	}
	if strings.TrimSpace(c.SessionEvents.Topic) == "" {
		c.SessionEvents.Topic = "stackit.session.invalidated"
	}
	if strings.TrimSpace(c.CredentialStore.Profile) == "" {
		c.CredentialStore.Profile = DefaultProfile
	}
}
