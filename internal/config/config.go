package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

// defaultJWTSecret signs local tokens outside production when JWT_SECRET is unset
const defaultJWTSecret = "secret"

// Backend modes
const (
	// BackendLocal serves the catalog, orders and feeds from the gorm kitchen
	BackendLocal = "local"
	// BackendRemote proxies the hosted Stellar Burgers API
	BackendRemote = "remote"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration, used by the local backend
	Database database.DatabaseConfig `json:"database"`

	// Security Configuration. Required by the local backend, which issues
	// and verifies its own tokens. The remote backend may leave it empty;
	// tokens are then decoded without verification and the upstream API
	// enforces them.
	JWTSecret string `json:"jwt_secret"`

	// Backend configuration
	BackendMode     string        `json:"backend_mode"`
	UpstreamURL     string        `json:"upstream_url"`
	UpstreamWSURL   string        `json:"upstream_ws_url"`
	UpstreamTimeout time.Duration `json:"upstream_timeout"`

	// Cache configuration. Empty RedisAddr disables the order cache.
	RedisAddr     string        `json:"redis_addr"`
	OrderCacheTTL time.Duration `json:"order_cache_ttl"`

	// Feed configuration
	FeedBoardPolicy string `json:"feed_board_policy"`
	FeedBoardLimit  int    `json:"feed_board_limit"`
	FeedMaxOrders   int    `json:"feed_max_orders"`

	// MaxWorkspaces caps the builder sessions held in memory
	MaxWorkspaces int `json:"max_workspaces"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, Database: %s, JWTSecret: %s, BackendMode: %s, UpstreamURL: %s, UpstreamWSURL: %s, UpstreamTimeout: %s, RedisAddr: %s, OrderCacheTTL: %s, FeedBoardPolicy: %s, FeedBoardLimit: %d, FeedMaxOrders: %d, MaxWorkspaces: %d}",
		c.Environment, c.Port, c.Host, c.Database.String(), maskSecret(c.JWTSecret), c.BackendMode,
		maskURL(c.UpstreamURL), maskURL(c.UpstreamWSURL), c.UpstreamTimeout, c.RedisAddr, c.OrderCacheTTL,
		c.FeedBoardPolicy, c.FeedBoardLimit, c.FeedMaxOrders, c.MaxWorkspaces)
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[REDACTED]"
}

// maskURL masks password in a URL
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It validates the backend mode and the upstream URLs the chosen mode needs
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Environment: GetEnvWithDefault("APP_ENV", "development"),
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		Database: database.DatabaseConfig{
			Driver:   strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
			Host:     GetEnvWithDefault("DB_HOST", "localhost"),
			Port:     GetEnvWithDefault("DB_PORT", "5432"),
			User:     GetEnvWithDefault("DB_USER", "postgres"),
			Password: GetEnvWithDefault("DB_PASSWORD", ""),
			Name:     GetEnvWithDefault("DB_NAME", "stellar_burgers"),
			SSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),
			Path:     GetEnvWithDefault("DB_PATH", "stellar-burgers.sqlite"),
		},
		JWTSecret:       os.Getenv("JWT_SECRET"),
		BackendMode:     strings.ToLower(GetEnvWithDefault("BACKEND_MODE", BackendLocal)),
		UpstreamURL:     GetEnvWithDefault("UPSTREAM_URL", "https://norma.nomoreparties.space/api"),
		UpstreamWSURL:   GetEnvWithDefault("UPSTREAM_WS_URL", "wss://norma.nomoreparties.space"),
		UpstreamTimeout: time.Duration(GetEnvAsType("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		OrderCacheTTL:   time.Duration(GetEnvAsType("ORDER_CACHE_TTL_SECONDS", 600)) * time.Second,
		FeedBoardPolicy: strings.ToLower(GetEnvWithDefault("FEED_BOARD_POLICY", "strict")),
		FeedBoardLimit:  GetEnvAsType("FEED_BOARD_LIMIT", 10),
		FeedMaxOrders:   GetEnvAsType("FEED_MAX_ORDERS", 50),
		MaxWorkspaces:   GetEnvAsType("MAX_WORKSPACES", 10000),
	}

	if config.JWTSecret == "" && config.BackendMode == BackendLocal && !config.IsProduction() {
		log.Warn("JWT_SECRET not set, signing local tokens with the development default")
		config.JWTSecret = defaultJWTSecret
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	switch c.BackendMode {
	case BackendLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required by the local backend")
		}
	case BackendRemote:
		if _, err := url.ParseRequestURI(c.UpstreamURL); err != nil {
			return fmt.Errorf("invalid UPSTREAM_URL %q: %w", c.UpstreamURL, err)
		}
		wsURL, err := url.ParseRequestURI(c.UpstreamWSURL)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_WS_URL %q: %w", c.UpstreamWSURL, err)
		}
		if wsURL.Scheme != "ws" && wsURL.Scheme != "wss" {
			return errors.New("UPSTREAM_WS_URL must use the ws or wss scheme")
		}
	default:
		return fmt.Errorf("unsupported BACKEND_MODE %q (supported: local, remote)", c.BackendMode)
	}

	switch c.FeedBoardPolicy {
	case "strict", "split":
	default:
		return fmt.Errorf("unsupported FEED_BOARD_POLICY %q (supported: strict, split)", c.FeedBoardPolicy)
	}

	if c.FeedBoardLimit <= 0 || c.FeedMaxOrders <= 0 {
		return errors.New("FEED_BOARD_LIMIT and FEED_MAX_ORDERS must be positive")
	}
	if c.MaxWorkspaces <= 0 {
		return errors.New("MAX_WORKSPACES must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Environment variable %s is not an integer, using default", key)
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			log.Warnf("Environment variable %s is not a boolean, using default", key)
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
