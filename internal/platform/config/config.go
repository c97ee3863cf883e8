// Package config loads service configuration in three layers: built-in
// defaults, an optional YAML file, then WILDSIDE_ environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/leynos/wildside-sub003/internal/enrichment"
	"github.com/leynos/wildside-sub003/internal/overpass"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: WILDSIDE_ENRICHMENT__MAX_ATTEMPTS=5.
const EnvPrefix = "WILDSIDE_"

// PathEnvVar overrides the config file location.
const PathEnvVar = EnvPrefix + "CONFIG"

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	Cache       CacheConfig       `koanf:"cache"`
	Kafka       KafkaConfig       `koanf:"kafka"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Overpass    overpass.Config   `koanf:"overpass"`
	Enrichment  enrichment.Config `koanf:"enrichment"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"min=1ms"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"min=1ms"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"oneof=postgres pgx sqlite"`
	DSN             string        `koanf:"dsn" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size" validate:"gte=0"`
	MinIdleConns int           `koanf:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout" validate:"min=0"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`
}

// CacheConfig selects the route cache backend.
type CacheConfig struct {
	Backend    string        `koanf:"backend" validate:"oneof=redis badger memory"`
	KeyPrefix  string        `koanf:"key_prefix"`
	TTL        time.Duration `koanf:"ttl" validate:"min=0"`
	BadgerPath string        `koanf:"badger_path" validate:"required_if=Backend badger"`
}

// KafkaConfig configures the route job queue.
type KafkaConfig struct {
	Brokers           []string      `koanf:"brokers" validate:"required,min=1,dive,required"`
	Topic             string        `koanf:"topic" validate:"required"`
	ConsumerGroup     string        `koanf:"consumer_group" validate:"required"`
	Partitions        int32         `koanf:"partitions" validate:"min=1"`
	ReplicationFactor int16         `koanf:"replication_factor" validate:"min=1"`
	Concurrency       int           `koanf:"concurrency" validate:"min=1"`
	RetryDelay        time.Duration `koanf:"retry_delay" validate:"min=0"`
	MaxDeliveries     int           `koanf:"max_deliveries" validate:"min=1"`
}

// IdempotencyConfig bounds how long idempotency records are honoured.
type IdempotencyConfig struct {
	TTL           time.Duration `koanf:"ttl" validate:"min=1m"`
	PurgeInterval time.Duration `koanf:"purge_interval" validate:"min=1s"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:wildside.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			KeyPrefix: "wildside:",
			TTL:       6 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:           []string{"localhost:9092"},
			Topic:             "route-plans",
			ConsumerGroup:     "wildside-enrichment",
			Partitions:        3,
			ReplicationFactor: 1,
			Concurrency:       2,
			RetryDelay:        30 * time.Second,
			MaxDeliveries:     5,
		},
		Idempotency: IdempotencyConfig{
			TTL:           24 * time.Hour,
			PurgeInterval: time.Hour,
		},
		Overpass: overpass.Config{
			Endpoint:          "https://overpass-api.de/api/interpreter",
			UserAgent:         overpass.DefaultUserAgent,
			Contact:           overpass.DefaultContact,
			QueryTimeout:      180 * time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Enrichment: enrichment.DefaultConfig(),
	}
}

// Load reads configuration. path may be empty, in which case WILDSIDE_CONFIG
// is consulted; a missing file is not an error when no path was requested.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps WILDSIDE_KAFKA__CONSUMER_GROUP to kafka.consumer_group.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if s == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate applies struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Enrichment.Check(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	if c.Cache.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("cache backend redis requires redis.url")
	}
	return nil
}
