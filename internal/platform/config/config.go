package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"imsse/pkg/domain"
)

// Store backends selectable through IMSSE_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string `env:"IMSSE_ADDR" envDefault:":8080"`
	LogLevel  string `env:"IMSSE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"IMSSE_LOG_FORMAT" envDefault:"json"`
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string        `env:"IMSSE_REDIS_URL"`
	PoolSize     int           `env:"IMSSE_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"IMSSE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"IMSSE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"IMSSE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"IMSSE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures query dispatch over Kafka. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers      []string `env:"IMSSE_KAFKA_BROKERS" envSeparator:","`
	RequestTopic string   `env:"IMSSE_KAFKA_REQUEST_TOPIC" envDefault:"imsse.entitlement.requests"`
	ResultTopic  string   `env:"IMSSE_KAFKA_RESULT_TOPIC" envDefault:"imsse.entitlement.results"`
	Group        string   `env:"IMSSE_KAFKA_GROUP" envDefault:"imsse"`
}

// Enabled reports whether brokers are configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Config is the process configuration.
type Config struct {
	Server Server
	Redis  RedisConfig
	Kafka  KafkaConfig

	Store       string `env:"IMSSE_STORE" envDefault:"memory"`
	SQLitePath  string `env:"IMSSE_SQLITE_PATH" envDefault:"imsse.db"`
	PostgresURL string `env:"IMSSE_POSTGRES_URL"`

	CarrierConfigPath string `env:"IMSSE_CARRIER_CONFIG_PATH"`
	BootCountPath     string `env:"IMSSE_BOOT_COUNT_PATH"`
	SystemUser        bool   `env:"IMSSE_SYSTEM_USER" envDefault:"true"`

	SupportedVersions []string      `env:"IMSSE_SUPPORTED_VERSIONS" envSeparator:"," envDefault:"2,8"`
	UpgradeVersion    int           `env:"IMSSE_UPGRADE_VERSION" envDefault:"8"`
	QueryTimeout      time.Duration `env:"IMSSE_QUERY_TIMEOUT" envDefault:"2m"`
	OTLPEndpoint      string        `env:"IMSSE_OTLP_ENDPOINT"`

	versions domain.VersionSet
}

// Versions returns the parsed recognized entitlement versions.
func (c *Config) Versions() domain.VersionSet {
	return c.versions
}

// Upgrade returns the version at which records produced by earlier versions
// stop being trusted.
func (c *Config) Upgrade() domain.EntitlementVersion {
	return domain.EntitlementVersion(c.UpgradeVersion)
}

// Load reads an optional .env file and then parses the environment.
// Variables already present in the environment win over the file.
func Load(dotenvPaths ...string) (*Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("IMSSE_POSTGRES_URL is required for store %q", c.Store)
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("IMSSE_REDIS_URL is required for store %q", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("IMSSE_QUERY_TIMEOUT must be positive")
	}
	versions, err := domain.ParseVersionSet(c.SupportedVersions)
	if err != nil {
		return fmt.Errorf("IMSSE_SUPPORTED_VERSIONS: %w", err)
	}
	c.versions = versions
	if c.UpgradeVersion <= 0 {
		return fmt.Errorf("IMSSE_UPGRADE_VERSION must be positive")
	}
	return nil
}
