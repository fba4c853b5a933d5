package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// EngineConfig holds attendance engine settings. The threshold and policy values are
// defaults for tenants that have not stored their own attendance policy.
type EngineConfig struct {
	StoreType string // postgres | memory
	LockType  string // memory | redis
	CacheType string // memory | redis

	OvertimeThresholdMinutes int
	MaxShiftMinutes          int
	MaxBreakMinutes          int
	LocationMissingPolicy    string
	RejectedPunchPolicy      string
	DefaultTimezone          string

	GeofenceLookupTimeout time.Duration
	StatusCacheTTL        time.Duration
	StatusFreshnessBound  time.Duration
	StatusLookback        time.Duration
	ReconstructLookahead  time.Duration
	PunchLockTTL          time.Duration
	PunchRateLimit        int
	PunchRateWindow       time.Duration
	StatusPrewarmInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	engine, err := loadEngine()
	if err != nil {
		return nil, err
	}
	config.Engine = engine

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadEngine() (EngineConfig, error) {
	e := EngineConfig{
		StoreType:             getEnv("STORE_TYPE", "postgres"),
		LockType:              getEnv("LOCK_TYPE", "memory"),
		CacheType:             getEnv("CACHE_TYPE", "memory"),
		LocationMissingPolicy: getEnv("LOCATION_MISSING_POLICY", "reject"),
		RejectedPunchPolicy:   getEnv("REJECTED_PUNCH_POLICY", "exclude"),
		DefaultTimezone:       getEnv("DEFAULT_TIMEZONE", "UTC"),
	}

	ints := []struct {
		key      string
		fallback string
		dst      *int
	}{
		{"OVERTIME_THRESHOLD_MINUTES", "480", &e.OvertimeThresholdMinutes},
		{"MAX_SHIFT_MINUTES", "960", &e.MaxShiftMinutes},
		{"MAX_BREAK_MINUTES", "120", &e.MaxBreakMinutes},
		{"PUNCH_RATE_LIMIT", "10", &e.PunchRateLimit},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getEnv(i.key, i.fallback))
		if err != nil {
			return e, fmt.Errorf("invalid %s: %w", i.key, err)
		}
		*i.dst = v
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"GEOFENCE_LOOKUP_TIMEOUT", "2s", &e.GeofenceLookupTimeout},
		{"STATUS_CACHE_TTL", "10s", &e.StatusCacheTTL},
		{"STATUS_FRESHNESS_BOUND", "15s", &e.StatusFreshnessBound},
		{"STATUS_LOOKBACK", "24h", &e.StatusLookback},
		{"RECONSTRUCT_LOOKAHEAD", "24h", &e.ReconstructLookahead},
		{"PUNCH_LOCK_TTL", "5s", &e.PunchLockTTL},
		{"PUNCH_RATE_WINDOW", "1m", &e.PunchRateWindow},
		{"STATUS_PREWARM_INTERVAL", "0s", &e.StatusPrewarmInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return e, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return e, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine.StoreType != "postgres" && c.Engine.StoreType != "memory" {
		return fmt.Errorf("STORE_TYPE must be postgres or memory")
	}
	if c.Engine.StoreType == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Engine.LockType != "memory" && c.Engine.LockType != "redis" {
		return fmt.Errorf("LOCK_TYPE must be memory or redis")
	}
	if c.Engine.CacheType != "memory" && c.Engine.CacheType != "redis" {
		return fmt.Errorf("CACHE_TYPE must be memory or redis")
	}
	if c.Engine.LocationMissingPolicy != "reject" && c.Engine.LocationMissingPolicy != "flag" {
		return fmt.Errorf("LOCATION_MISSING_POLICY must be reject or flag")
	}
	if c.Engine.RejectedPunchPolicy != "exclude" && c.Engine.RejectedPunchPolicy != "report" {
		return fmt.Errorf("REJECTED_PUNCH_POLICY must be exclude or report")
	}
	if _, err := time.LoadLocation(c.Engine.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	if c.Engine.OvertimeThresholdMinutes < 0 || c.Engine.MaxShiftMinutes <= 0 || c.Engine.MaxBreakMinutes <= 0 {
		return fmt.Errorf("attendance thresholds must be positive")
	}
	if c.Engine.PunchRateLimit <= 0 || c.Engine.PunchRateWindow <= 0 {
		return fmt.Errorf("PUNCH_RATE_LIMIT and PUNCH_RATE_WINDOW must be positive")
	}
	return nil
}

// UsesRedis reports whether any component is configured to use Redis.
func (c *Config) UsesRedis() bool {
	return c.Engine.LockType == "redis" || c.Engine.CacheType == "redis"
}

// DefaultPolicy is the attendance policy of tenants that have not stored one.
func (e EngineConfig) DefaultPolicy() company.AttendancePolicy {
	return company.AttendancePolicy{
		Timezone:                 e.DefaultTimezone,
		OvertimeThresholdMinutes: e.OvertimeThresholdMinutes,
		MaxShiftMinutes:          e.MaxShiftMinutes,
		MaxBreakMinutes:          e.MaxBreakMinutes,
		LocationMissingPolicy:    company.LocationMissingPolicy(e.LocationMissingPolicy),
		RejectedPunchPolicy:      company.RejectedPunchPolicy(e.RejectedPunchPolicy),
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
