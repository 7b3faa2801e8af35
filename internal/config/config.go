package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"

	defaultJWTSecret = "default_jwt_secret"
)

// Config holds all configuration for our application
type Config struct {
	Port            string
	Origin          string
	Environment     string
	LogLevel        string
	JWTSecret       string
	StorageDriver   string
	Database        DatabaseConfig
	Directory       DirectoryConfig
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// DirectoryConfig locates the doctor directory and its optional Redis cache.
type DirectoryConfig struct {
	File     string
	RedisURL string
	CacheTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "scheduling"),
	}
	dbConfig.DSN = buildDSN(dbConfig)

	cacheTTL, err := strconv.Atoi(getEnv("DIRECTORY_CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTORY_CACHE_TTL_SECONDS: %w", err)
	}

	shutdownTimeout, err := strconv.Atoi(getEnv("SHUTDOWN_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS: %w", err)
	}

	return &Config{
		Port:          getEnv("PORT", "3001"),
		Origin:        getEnv("ORIGIN", "http://localhost:4200"),
		Environment:   getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageMySQL),
		Database:      dbConfig,
		Directory: DirectoryConfig{
			File:     getEnv("DIRECTORY_FILE", ""),
			RedisURL: getEnv("REDIS_URL", ""),
			CacheTTL: time.Duration(cacheTTL) * time.Second,
		},
		ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
	}, nil
}

// Validate rejects configurations the service cannot run with safely.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMySQL, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %q or %q)", c.StorageDriver, StorageMySQL, StorageMemory)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTSecret == defaultJWTSecret && c.Environment != "development" {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if c.StorageDriver == StorageMemory && c.Directory.File == "" {
		return errors.New("DIRECTORY_FILE is required when STORAGE_DRIVER is memory")
	}
	if c.Directory.CacheTTL < 0 {
		return errors.New("DIRECTORY_CACHE_TTL_SECONDS must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// buildDSN formats the MySQL DSN. ClientFoundRows makes an UPDATE report rows
// it matched, so re-applying a status is not mistaken for a lost race.
func buildDSN(db DatabaseConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = db.Username
	cfg.Passwd = db.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(db.Host, db.Port)
	cfg.DBName = db.Name
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
