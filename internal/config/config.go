package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Cloudinary CloudinaryConfig
	Cache      CacheConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	FrontendURL     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	ConnectTimeout     time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	AutoMigrate        bool
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BCryptCost int
}

// CloudinaryConfig holds Cloudinary file-hosting configuration
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadFolder string
	MaxFileSize  int64
	MaxFileCount int
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider      string // "memory" or "redis"
	RedisURL      string
	RedisDB       int
	RedisPassword string
	DefaultTTL    time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	// Missing .env is fine; containers set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3020"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("GO_ENV", "development"),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 15*time.Second),
			MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", "postgres://localhost:5432/educate?sslmode=disable"),
			MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
			SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
			MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
			AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTExpiry:  getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),
			BCryptCost: getIntEnv("BCRYPT_COST", 12),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "educate/resources"),
			MaxFileSize:  getInt64Env("MAX_FILE_SIZE", 10*1024*1024),
			MaxFileCount: getIntEnv("MAX_FILE_COUNT", 5),
		},
		Cache: CacheConfig{
			Provider:      getEnv("CACHE_PROVIDER", "memory"),
			RedisURL:      getEnv("REDIS_URL", ""),
			RedisDB:       getIntEnv("REDIS_DB", 0),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			DefaultTTL:    getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		if c.Server.Environment == "production" {
			return fmt.Errorf("config: JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = "dev-only-insecure-secret"
	}
	if c.Auth.BCryptCost < 10 || c.Auth.BCryptCost > 16 {
		return fmt.Errorf("config: BCRYPT_COST must be between 10 and 16, got %d", c.Auth.BCryptCost)
	}
	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("config: REDIS_URL is required when CACHE_PROVIDER=redis")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the host:port the HTTP server binds to.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
