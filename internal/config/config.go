package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	Storage        string `envconfig:"CART_STORAGE" default:"sqlite"`
	StorageBreaker bool   `envconfig:"STORAGE_BREAKER" default:"true"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	MongoURI       string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName    string `envconfig:"MONGO_DB_NAME" default:"storefront"`

	// CartDBPath is the sqlite file carts are kept in when CART_STORAGE=sqlite.
	CartDBPath string `envconfig:"CART_DB_PATH" default:"./cart.db"`

	CatalogDBPath string `envconfig:"CATALOG_DB_PATH" default:"./phones.db"`

	// AdminWhatsApp is the checkout destination number.
	AdminWhatsApp string `envconfig:"ADMIN_WHATSAPP"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"checkout-events"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageMemory, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("unknown CART_STORAGE %q: want sqlite, memory, redis or mongo", c.Storage)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}
