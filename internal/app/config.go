package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverStatic   = "static"
)

// Config holds the complete application configuration, loadable from
// environment variables (FOODMAN_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	Storage   StorageConfig
	Catalog   CatalogConfig
	Checkout  CheckoutConfig
	Notify    NotifyConfig
	Chat      ChatConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Graceful  GracefulConfig
}

// StorageConfig selects where carts are persisted.
type StorageConfig struct {
	Driver      string `default:"file" usage:"Cart storage: memory, file, redis or postgres"`
	Dir         string `default:"data" usage:"Directory of the file driver"`
	RedisURL    string `usage:"Redis URL (FOODMAN_STORAGE_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	RedisPrefix string `default:"foodman" usage:"Key prefix of the redis driver"`
	DatabaseURL string `usage:"PostgreSQL URL (FOODMAN_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	CartKey     string `default:"foodmanCart" usage:"Key the cart is stored under"`
}

// CatalogConfig selects where the menu comes from.
type CatalogConfig struct {
	Driver string `default:"static" usage:"Menu source: static (embedded) or postgres"`
}

type CheckoutConfig struct {
	Delay time.Duration `default:"1.5s" usage:"Simulated order processing time"`
}

// NotifyConfig controls the toast lifecycle.
type NotifyConfig struct {
	ShowDelay time.Duration `default:"100ms" usage:"Delay before a toast becomes visible"`
	Display   time.Duration `default:"3s" usage:"How long a toast stays visible"`
	Removal   time.Duration `default:"300ms" usage:"Hide animation before removal"`
}

type ChatConfig struct {
	WebhookURL string        `default:"https://luckyegwu65.app.n8n.cloud/webhook/34d38f6a-d87c-4568-9b09-e066c34c7332/chat" usage:"Chat webhook URL" flag:"chat-webhook-url"`
	Route      string        `default:"general" usage:"Route sent with every chat message"`
	Timeout    time.Duration `default:"10s" usage:"Chat webhook timeout"`
}

// SessionConfig controls how long idle clients are kept in memory.
type SessionConfig struct {
	IdleTimeout   time.Duration `default:"30m" usage:"Evict sessions idle for longer than this"`
	SweepInterval time.Duration `default:"1m" usage:"How often idle sessions are evicted"`
}

// RateLimitConfig throttles chat messages per client.
type RateLimitConfig struct {
	Max    int           `default:"30" usage:"Max chat messages per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags, YAML
// config files and platform defaults, then validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "FOODMAN",
		Files:     []string{"config.yaml", "/etc/foodman/config.yaml"},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	acfg.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed variables hosting platforms
// provide (PORT, DATABASE_URL, REDIS_URL).
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Storage.RedisURL == "" {
		c.Storage.RedisURL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// Validate checks driver names and the URLs they need.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile:
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("redis storage requires a URL: set FOODMAN_STORAGE_REDIS_URL or REDIS_URL")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("postgres storage requires a database URL: set FOODMAN_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Catalog.Driver {
	case DriverStatic:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("postgres catalog requires a database URL: set FOODMAN_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown catalog driver %q", c.Catalog.Driver)
	}

	if c.Chat.WebhookURL == "" {
		return errors.New("chat webhook URL is required")
	}
	return nil
}

// needsPostgres reports whether any component is backed by PostgreSQL.
func (c *Config) needsPostgres() bool {
	return c.Storage.Driver == DriverPostgres || c.Catalog.Driver == DriverPostgres
}
