// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// Store kinds accepted by STORE.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// ServerEnvironment holds every setting with its default.
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=30s"`
	AllowedOrigins        []string      `env:"ALLOWED_ORIGINS,separator=|"`
	RateLimitRPS          int           `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int           `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestBody        int64         `env:"MAX_REQUEST_BODY,default=1048576"`

	// store settings
	Store               string        `env:"STORE,default=sqlite"`
	DBPath              string        `env:"DB_PATH,default=data/blog.db"`
	BoltPath            string        `env:"BOLT_PATH,default=data/blog.bolt"`
	MongoURI            string        `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase       string        `env:"MONGO_DATABASE,default=blog"`
	StoreConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT,default=10s"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

var validStores = map[string]bool{
	StoreSQLite: true,
	StoreMongo:  true,
	StoreBolt:   true,
	StoreMemory: true,
}

// NewServerConfig loads environment variables into a ServerEnvironment and
// validates them.
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr is the host:port the HTTP server listens on.
func (c *ServerEnvironment) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if !validStores[cfg.Store] {
		return fmt.Errorf("invalid STORE: %s (want sqlite, mongo, bolt or memory)", cfg.Store)
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be 0 or greater")
	}
	if cfg.MaxRequestBody < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY must be at least 1")
	}
	return nil
}
