package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Log verbosity values accepted by Config.LogLevel.
const (
	LogAll   = "ALL"
	LogError = "ERROR"
	LogNone  = "NONE"
)

// Config holds the core runtime configuration for the gateway.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	// Master database server the per-request keyspace connections go to.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string

	// APIKey is the standard-tier credential. The service refuses to
	// start when it is empty.
	APIKey string

	// AdminAPIKey grants the privileged tier (full SQL access, no query
	// validation). Leave empty to disable privileged access entirely.
	AdminAPIKey string

	// MaxRequestsPerHour is the per-client-IP sliding window ceiling.
	MaxRequestsPerHour int

	// MaxQueryLength is the maximum query size (bytes) accepted from
	// standard-tier callers.
	MaxQueryLength int

	EnableLogging bool
	LogLevel      string
	LogDir        string

	// KeepLogsForDays bounds log file retention. Zero keeps logs forever.
	KeepLogsForDays int
	AutoCleanupLogs bool

	// RateLimitDBPath is the SQLite database holding rate-limit windows.
	RateLimitDBPath string

	ListenAddr string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	return &Config{
		DBHost:             getenv("APP_DB_HOST", "localhost"),
		DBPort:             getenv("APP_DB_PORT", "3306"),
		DBUser:             os.Getenv("APP_DB_USER"),
		DBPassword:         os.Getenv("APP_DB_PASSWORD"),
		APIKey:             os.Getenv("APP_API_KEY"),
		AdminAPIKey:        os.Getenv("APP_ADMIN_API_KEY"),
		MaxRequestsPerHour: getint("APP_MAX_REQUESTS_PER_HOUR", 1000),
		MaxQueryLength:     getint("APP_MAX_QUERY_LENGTH", 8192),
		EnableLogging:      getbool("APP_ENABLE_LOGGING", true),
		LogLevel:           strings.ToUpper(getenv("APP_LOG_LEVEL", LogAll)),
		LogDir:             getenv("APP_LOG_DIR", "logs"),
		KeepLogsForDays:    getint("APP_KEEP_LOGS_FOR_DAYS", 30),
		AutoCleanupLogs:    getbool("APP_AUTO_CLEANUP_LOGS", true),
		RateLimitDBPath:    getenv("APP_RATE_LIMIT_DB", "remotedb_rate_limit.db"),
		ListenAddr:         getenv("APP_LISTEN_ADDR", ":8080"),
	}
}

// Validate reports whether the configuration is complete enough to serve.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("APP_API_KEY is required")
	}
	switch c.LogLevel {
	case LogAll, LogError, LogNone:
	default:
		return errors.New("APP_LOG_LEVEL must be ALL, ERROR or NONE")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
