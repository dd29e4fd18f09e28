// Package config provides configuration management for the catalog server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultServiceName     = "product-catalog"
	DefaultDBDriver        = store.DriverSQLite
	DefaultDBDSN           = "file:catalog.db?_pragma=foreign_keys(1)"
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPageSize        = 20
	DefaultMaxPageSize     = 100
	DefaultCORSOrigins     = "*"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvOTLPEndpoint    = "APP_OTLP_ENDPOINT"
	EnvServiceName     = "APP_SERVICE_NAME"
	EnvDBDriver        = "APP_DB_DRIVER"
	EnvDBDSN           = "APP_DB_DSN"
	EnvMaxOpenConns    = "APP_DB_MAX_OPEN_CONNS"
	EnvMaxIdleConns    = "APP_DB_MAX_IDLE_CONNS"
	EnvConnMaxLifetime = "APP_DB_CONN_MAX_LIFETIME"
	EnvDefaultPageSize = "APP_DEFAULT_PAGE_SIZE"
	EnvMaxPageSize     = "APP_MAX_PAGE_SIZE"
	EnvCORSOrigins     = "APP_CORS_ALLOWED_ORIGINS"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	CORSOrigins     []string

	// Tracing settings. An empty endpoint disables export.
	OTLPEndpoint string
	ServiceName  string

	// Database settings.
	DBDriver        string
	DBDSN           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Paging settings.
	DefaultPageSize int
	MaxPageSize     int
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidServiceName     = errors.New("service name must not be empty")
	ErrInvalidDBDriver        = errors.New("database driver must be one of: sqlite, postgres, memory")
	ErrMissingDBDSN           = errors.New("database DSN must be set for sqlite and postgres")
	ErrInvalidPoolSize        = errors.New("database pool sizes must not be negative")
	ErrInvalidConnLifetime    = errors.New("connection max lifetime must not be negative")
	ErrInvalidPageSize        = errors.New("default page size must be between 1 and max page size")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		CORSOrigins:     []string{DefaultCORSOrigins},
		ServiceName:     DefaultServiceName,
		DBDriver:        DefaultDBDriver,
		DBDSN:           DefaultDBDSN,
		MaxOpenConns:    DefaultMaxOpenConns,
		MaxIdleConns:    DefaultMaxIdleConns,
		ConnMaxLifetime: DefaultConnMaxLifetime,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	if err := c.loadDatabaseEnv(); err != nil {
		return err
	}

	return c.loadPagingEnv()
}

// loadServerEnv loads server and tracing environment variables.
func (c *Config) loadServerEnv() error {
	if err := envInt(EnvServerPort, &c.ServerPort); err != nil {
		return err
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if err := envDuration(EnvShutdownTimeout, &c.ShutdownTimeout); err != nil {
		return err
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvCORSOrigins); val != "" {
		c.CORSOrigins = splitList(val)
	}

	if val := os.Getenv(EnvOTLPEndpoint); val != "" {
		c.OTLPEndpoint = val
	}

	if val, ok := os.LookupEnv(EnvServiceName); ok {
		c.ServiceName = val
	}

	return nil
}

// loadDatabaseEnv loads database environment variables.
func (c *Config) loadDatabaseEnv() error {
	if val := os.Getenv(EnvDBDriver); val != "" {
		c.DBDriver = val
	}

	if val, ok := os.LookupEnv(EnvDBDSN); ok {
		c.DBDSN = val
	}

	if err := envInt(EnvMaxOpenConns, &c.MaxOpenConns); err != nil {
		return err
	}

	if err := envInt(EnvMaxIdleConns, &c.MaxIdleConns); err != nil {
		return err
	}

	return envDuration(EnvConnMaxLifetime, &c.ConnMaxLifetime)
}

// loadPagingEnv loads page size environment variables.
func (c *Config) loadPagingEnv() error {
	if err := envInt(EnvDefaultPageSize, &c.DefaultPageSize); err != nil {
		return err
	}

	return envInt(EnvMaxPageSize, &c.MaxPageSize)
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return ErrInvalidPageSize
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if strings.TrimSpace(c.ServiceName) == "" {
		return ErrInvalidServiceName
	}

	return nil
}

// validateDatabase validates database configuration.
func (c *Config) validateDatabase() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
		if c.DBDSN == "" {
			return ErrMissingDBDSN
		}
	case store.DriverMemory:
	default:
		return ErrInvalidDBDriver
	}

	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return ErrInvalidPoolSize
	}

	if c.ConnMaxLifetime < 0 {
		return ErrInvalidConnLifetime
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Database returns the settings store.Open needs.
func (c *Config) Database() store.DatabaseConfig {
	return store.DatabaseConfig{
		Driver:          c.DBDriver,
		DSN:             c.DBDSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func envInt(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = d
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
