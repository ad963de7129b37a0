package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"moneymanager/backend/database"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	EditWindow     time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Database       database.Config
}

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:5000",
}

// Load reads configuration from the environment after loading envFile (if it exists)
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables alone
func FromEnv() *Config {
	return &Config{
		Port:           GetEnv("PORT", "5000"),
		Env:            GetEnv("ENV", "development"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),
		AllowedOrigins: GetEnvAsList("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		EditWindow:     time.Duration(GetEnvAsInt("EDIT_WINDOW_HOURS", 12)) * time.Hour,
		ReadTimeout:    GetEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   GetEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		Database: database.Config{
			Driver:     GetEnv("DB_DRIVER", database.DriverSQLite),
			SQLitePath: GetEnv("DB_PATH", "./money-manager.db"),
			Postgres: database.PostgresConfig{
				URL:      GetEnv("DATABASE_URL", ""),
				Host:     GetEnv("DB_HOST", "localhost"),
				Port:     GetEnv("DB_PORT", "5432"),
				User:     GetEnv("DB_USER", "postgres"),
				Password: GetEnv("DB_PASSWORD", "postgres"),
				DBName:   GetEnv("DB_NAME", "money_manager"),
				SSLMode:  GetEnv("DB_SSL_MODE", "disable"),
			},
		},
	}
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns the value of key, or defaultValue when it is unset or empty
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		log.Printf("Warning: Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsList splits a comma-separated variable, dropping blank entries
func GetEnvAsList(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
