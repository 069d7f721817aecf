package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported store drivers.
const (
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// DefaultMongoURI is used by the mongo driver when MONGO_URI is unset.
const DefaultMongoURI = "mongodb://localhost:27017"

// Config holds the process configuration, read from the environment.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	StoreDriver          string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI             string `envconfig:"MONGO_URI"`
	MongoDatabase        string `envconfig:"MONGO_DATABASE" default:"nyumba"`
	PropertiesCollection string `envconfig:"PROPERTIES_COLLECTION" default:"properties"`
	ImagesBucket         string `envconfig:"IMAGES_BUCKET" default:"images"`
	MySQLDSN             string `envconfig:"MYSQL_DSN"`

	// Empty disables the shared cache level. Setting it requires RABBITMQ_URL.
	MemcachedHost string        `envconfig:"MEMCACHED_HOST"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Empty disables event publishing and consuming.
	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"properties_events"`

	LogLevel               string `envconfig:"LOG_LEVEL" default:"info"`
	ImageDeleteConcurrency int    `envconfig:"IMAGE_DELETE_CONCURRENCY" default:"4"`
	GinMode                string `envconfig:"GIN_MODE" default:"release"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}
	if cfg.StoreDriver == DriverMongo && cfg.MongoURI == "" {
		cfg.MongoURI = DefaultMongoURI
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required when STORE_DRIVER=%s", DriverMySQL)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverMySQL)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.ImageDeleteConcurrency < 1 {
		return fmt.Errorf("IMAGE_DELETE_CONCURRENCY must be at least 1, got %d", c.ImageDeleteConcurrency)
	}
	// other instances evict their local level only through property events
	if c.MemcachedHost != "" && c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required when MEMCACHED_HOST is set")
	}
	return nil
}

// UsesMongo reports whether any backend needs the MongoDB connection. With the
// mysql driver an empty MONGO_URI leaves image storage unconfigured.
func (c *Config) UsesMongo() bool {
	return c.StoreDriver == DriverMongo || c.MongoURI != ""
}
