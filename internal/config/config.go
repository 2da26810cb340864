package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	DB      DatabaseConfig
	Redis   RedisConfig
	Session SessionConfig
	Auth    AuthConfig
	Metrics MetricsConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// SessionConfig controls the admin session cookie and where session state lives.
// The memory store only suits a single instance.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SecureCookies bool
	Store         string
	MemorySize    int
}

// AuthConfig contains admin login settings.
type AuthConfig struct {
	CookieName      string
	LoginRatePerMin int
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Prefix string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Session = SessionConfig{
		CookieName:    getEnv("SESSION_COOKIE", "stockcentral_session"),
		SecureCookies: getEnvBool("SECURE_COOKIES", false),
		Store:         getEnv("SESSION_STORE", SessionStoreRedis),
		MemorySize:    getEnvInt("SESSION_MEMORY_SIZE", 10000),
	}

	cfg.Auth = AuthConfig{
		CookieName:      getEnv("AUTH_COOKIE", "stockcentral_admin"),
		LoginRatePerMin: getEnvInt("LOGIN_RATE_PER_MIN", 10),
	}

	cfg.Metrics = MetricsConfig{
		Prefix: getEnv("METRICS_PREFIX", "stockcentral"),
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "12h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "12h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	switch cfg.Session.Store {
	case SessionStoreRedis:
	case SessionStoreMemory:
		if cfg.Session.MemorySize <= 0 {
			return nil, errors.New("SESSION_MEMORY_SIZE must be > 0")
		}
	default:
		return nil, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreRedis, SessionStoreMemory, cfg.Session.Store)
	}

	if cfg.Auth.LoginRatePerMin <= 0 {
		return nil, errors.New("LOGIN_RATE_PER_MIN must be > 0")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
