// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Account sources
const (
	AccountsBuiltin  = "builtin"
	AccountsFile     = "file"
	AccountsPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Monitor     MonitorConfig
	Cycle       CycleConfig
	Trend       TrendConfig
	Log         LogConfig
}

// ServerConfig holds read API server configuration
type ServerConfig struct {
	Enabled         bool
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration. An empty URL disables the event bus.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// MonitorConfig holds timeline collection configuration
type MonitorConfig struct {
	Mirrors        []string
	UserAgent      string
	RequestTimeout time.Duration
	AccountDelay   time.Duration
	Lookback       time.Duration
	AccountsSource string
	AccountsFile   string
}

// CycleConfig holds supervision configuration
type CycleConfig struct {
	Interval        time.Duration
	Schedule        string
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	MaxRetries      int
}

// TrendConfig holds ranking configuration
type TrendConfig struct {
	CategoryLimit int
	OverallLimit  int
	EventsTopic   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// DefaultMirrors are the mirror front-ends probed in order
var DefaultMirrors = []string{
	"https://nitter.net",
	"https://nitter.cz",
	"https://nitter.it",
	"https://nitter.pw",
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Enabled:         getEnvAsBool("SERVER_ENABLED", true),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendpulse"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Monitor: MonitorConfig{
			Mirrors:        getEnvAsSlice("MONITOR_MIRRORS", DefaultMirrors),
			UserAgent:      getEnv("MONITOR_USER_AGENT", ""),
			RequestTimeout: getEnvAsDuration("MONITOR_REQUEST_TIMEOUT", 10*time.Second),
			AccountDelay:   getEnvAsDuration("MONITOR_ACCOUNT_DELAY", 2*time.Second),
			Lookback:       getEnvAsDuration("MONITOR_LOOKBACK", 24*time.Hour),
			AccountsSource: getEnv("ACCOUNTS_SOURCE", AccountsBuiltin),
			AccountsFile:   getEnv("ACCOUNTS_FILE", "accounts.yaml"),
		},
		Cycle: CycleConfig{
			Interval:        getEnvAsDuration("CYCLE_INTERVAL", 72*time.Hour),
			Schedule:        getEnv("CYCLE_SCHEDULE", ""),
			RetryBackoff:    getEnvAsDuration("CYCLE_RETRY_BACKOFF", 60*time.Second),
			RetryBackoffMax: getEnvAsDuration("CYCLE_RETRY_BACKOFF_MAX", 0),
			MaxRetries:      getEnvAsInt("CYCLE_MAX_RETRIES", 0),
		},
		Trend: TrendConfig{
			CategoryLimit: getEnvAsInt("TREND_CATEGORY_LIMIT", 3),
			OverallLimit:  getEnvAsInt("TREND_OVERALL_LIMIT", 5),
			EventsTopic:   getEnv("TREND_EVENTS_TOPIC", "trend"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if len(config.Monitor.Mirrors) == 0 {
		return fmt.Errorf("at least one mirror endpoint is required")
	}
	for _, m := range config.Monitor.Mirrors {
		if !strings.HasPrefix(m, "http://") && !strings.HasPrefix(m, "https://") {
			return fmt.Errorf("mirror %q must be an http(s) URL", m)
		}
	}

	if config.Monitor.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if config.Monitor.AccountDelay < 0 {
		return fmt.Errorf("account delay must not be negative")
	}
	if config.Monitor.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive")
	}

	switch config.Monitor.AccountsSource {
	case AccountsBuiltin, AccountsFile, AccountsPostgres:
	default:
		return fmt.Errorf("unknown accounts source %q", config.Monitor.AccountsSource)
	}

	if config.Cycle.Schedule != "" {
		if _, err := cron.ParseStandard(config.Cycle.Schedule); err != nil {
			return fmt.Errorf("invalid cycle schedule %q: %w", config.Cycle.Schedule, err)
		}
	} else if config.Cycle.Interval < time.Second {
		return fmt.Errorf("cycle interval must be at least one second")
	}

	if config.Cycle.RetryBackoff <= 0 {
		return fmt.Errorf("retry backoff must be positive")
	}
	if config.Cycle.RetryBackoffMax != 0 && config.Cycle.RetryBackoffMax < config.Cycle.RetryBackoff {
		return fmt.Errorf("retry backoff max must not be below retry backoff")
	}
	if config.Cycle.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}

	if config.Trend.CategoryLimit <= 0 || config.Trend.OverallLimit <= 0 {
		return fmt.Errorf("ranking limits must be positive")
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Log.Format)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
