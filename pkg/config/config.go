package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session backends.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Override stores.
const (
	OverrideStoreMemory   = "memory"
	OverrideStoreFile     = "file"
	OverrideStoreRedis    = "redis"
	OverrideStorePostgres = "postgres"
)

type Config struct {
	Env  string
	Port int

	Backend   BackendConfig
	Session   SessionConfig
	Overrides OverrideConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// BackendConfig points at the REST backend the portal fronts.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls where the browser session object lives.
type SessionConfig struct {
	Backend      string
	Secret       string
	CookieName   string
	TTL          time.Duration
	SecureCookie bool
	File         string
}

// OverrideConfig selects the local assignment override store.
type OverrideConfig struct {
	Store    string
	File     string
	RedisKey string
	// MaxAge of zero keeps overrides forever.
	MaxAge time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig throttles login attempts per client IP.
type RateLimitConfig struct {
	LoginPerMinute int
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		Backend:      strings.ToLower(v.GetString("SESSION_BACKEND")),
		Secret:       v.GetString("SESSION_SECRET"),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		SecureCookie: v.GetBool("SESSION_SECURE_COOKIE"),
		File:         v.GetString("SESSION_FILE"),
	}

	cfg.Overrides = OverrideConfig{
		Store:    strings.ToLower(v.GetString("OVERRIDE_STORE")),
		File:     v.GetString("OVERRIDE_FILE"),
		RedisKey: v.GetString("OVERRIDE_REDIS_KEY"),
		MaxAge:   parseDuration(v.GetString("OVERRIDE_MAX_AGE"), 0),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{LoginPerMinute: v.GetInt("LOGIN_RATE_PER_MIN")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("SESSION_BACKEND", SessionBackendCookie)
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_COOKIE_NAME", "portal_session")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("SESSION_FILE", "./data/session.json")

	v.SetDefault("OVERRIDE_STORE", OverrideStoreMemory)
	v.SetDefault("OVERRIDE_FILE", "./data/assignment_overrides.json")
	v.SetDefault("OVERRIDE_REDIS_KEY", "portal:assignment_overrides")
	v.SetDefault("OVERRIDE_MAX_AGE", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOGIN_RATE_PER_MIN", 20)
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
