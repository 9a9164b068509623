package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/joho/godotenv"
)

type Config struct {
	SigningSecret     string        // Optional: HS256 secret, at least 32 bytes (generated in dev/test when unset)
	SigningSecretFile string        // Optional: file holding the HS256 secret, read when SigningSecret is empty
	AccessTokenTTL    time.Duration // Access token lifetime (default: 15m, AUTH_ACCESS_TOKEN_TTL_MS)
	RefreshTokenTTL   time.Duration // Refresh token lifetime (default: 7d, AUTH_REFRESH_TOKEN_TTL_MS)
	CookieSecure      bool          // Set the Secure attribute on token cookies (default: false)

	SessionTTL       time.Duration // Session record lifetime (default: 24h, AUTH_SESSION_TTL_HOURS)
	SessionOpTimeout time.Duration // Bound on each Redis call (default: 500ms)
	RedisAddr        string        // Redis address (default: localhost:6379)
	RedisPassword    string        // Optional
	RedisDB          int           // Redis logical database (default: 0)

	DatabaseFile string   // Path to SQLite database file (default: ./auth.db)
	PepperFile   string   // Path to file containing pepper for password hashing (default: ./pepper)
	BasePath     string   // Route prefix (default: /api/v1/demo/auth)
	PublicPaths  []string // Optional: replaces the default authentication allow-list

	TrustedProxies    []string              // Optional: CIDRs or addresses allowed to set X-Forwarded-For
	RateLimitStrict   httpx.RateLimitConfig // Optional: signup and per-account login ("5/1m", AUTH_RATELIMIT_STRICT)
	RateLimitModerate httpx.RateLimitConfig // Optional: per-address login, refresh, logout, session changes
	RateLimitLenient  httpx.RateLimitConfig // Optional: reads and health probes

	Env                 string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	StatsInterval       time.Duration // Gauge refresh interval (default: 30s)
}

// LoadConfig reads the environment, after loading a .env file when one is
// present in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		SigningSecret:     os.Getenv("AUTH_SIGNING_SECRET"),
		SigningSecretFile: os.Getenv("AUTH_SIGNING_SECRET_FILE"),
		AccessTokenTTL:    getEnvMillisOrDefault("AUTH_ACCESS_TOKEN_TTL_MS", 15*time.Minute),
		RefreshTokenTTL:   getEnvMillisOrDefault("AUTH_REFRESH_TOKEN_TTL_MS", 7*24*time.Hour),
		CookieSecure:      getEnvBoolOrDefault("AUTH_COOKIE_SECURE", false),

		SessionTTL:       time.Duration(getEnvIntOrDefault("AUTH_SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionOpTimeout: getEnvDurationOrDefault("SESSION_OP_TIMEOUT", 500*time.Millisecond),
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvIntOrDefault("REDIS_DB", 0),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		BasePath:     getEnvOrDefault("AUTH_BASE_PATH", "/api/v1/demo/auth"),
		PublicPaths:  getEnvListOrDefault("AUTH_PUBLIC_PATHS", nil),

		TrustedProxies:    getEnvListOrDefault("AUTH_TRUSTED_PROXIES", nil),
		RateLimitStrict:   getEnvRateLimit("AUTH_RATELIMIT_STRICT"),
		RateLimitModerate: getEnvRateLimit("AUTH_RATELIMIT_MODERATE"),
		RateLimitLenient:  getEnvRateLimit("AUTH_RATELIMIT_LENIENT"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		StatsInterval:       getEnvDurationOrDefault("STATS_INTERVAL", 30*time.Second),
	}
}

// IsDevelopment reports whether throwaway secrets are acceptable.
func (c Config) IsDevelopment() bool {
	return c.Env == "dev" || c.Env == "test"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvMillisOrDefault reads a whole number of milliseconds.
func getEnvMillisOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvRateLimit reads a "<requests>/<window>[+<burst>]" value. Unset or
// malformed values yield the zero config, which keeps the route default.
func getEnvRateLimit(key string) httpx.RateLimitConfig {
	value := os.Getenv(key)
	if value == "" {
		return httpx.RateLimitConfig{}
	}

	cfg, err := httpx.ParseRateLimit(value)
	if err != nil {
		return httpx.RateLimitConfig{}
	}
	return cfg
}
