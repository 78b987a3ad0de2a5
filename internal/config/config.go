// Package config provides configuration for the backend and the validator
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// StorageBackendLocal keeps artifacts on the local filesystem
	StorageBackendLocal = "local"
	// StorageBackendMinIO keeps artifacts in a MinIO bucket
	StorageBackendMinIO = "minio"
)

// Config holds all configuration for the backend API
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Token    TokenConfig
	Callback CallbackConfig
	Storage  StorageConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings.
// File is optional; when set, logs are also written to a rotated file.
type LoggingConfig struct {
	Level string
	File  string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the secret used to verify user access tokens
type AuthConfig struct {
	JWTSecret string
}

// TokenConfig holds record token settings
type TokenConfig struct {
	Secret string
	MaxAge time.Duration
}

// CallbackConfig guards the verdict callback endpoint.
// An empty APIKey leaves the endpoint open.
type CallbackConfig struct {
	APIKey string
}

// StorageConfig selects where audio and alignment artifacts live
type StorageConfig struct {
	Backend   string
	AudioPath string
	MinIO     MinIOConfig
}

// MinIOConfig holds MinIO connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string
}

// ValidatorConfig holds configuration of the validation pipeline
type ValidatorConfig struct {
	Logging         LoggingConfig
	Storage         StorageConfig
	CallbackURL     string
	CallbackAPIKey  string
	CallbackTimeout time.Duration
	MaxMiscues      int
}

// Load reads the backend configuration from environment variables
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	var err error

	if cfg.Database, err = loadDatabase(""); err != nil {
		return nil, err
	}

	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}

	cfg.Logging = loadLogging()
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	if cfg.Auth.JWTSecret, err = requiredEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	if cfg.Token.Secret, err = requiredEnv("RECORD_TOKEN_SECRET"); err != nil {
		return nil, err
	}
	if cfg.Token.MaxAge, err = durationEnv("RECORD_TOKEN_MAX_AGE", time.Hour); err != nil {
		return nil, err
	}

	cfg.Callback.APIKey = os.Getenv("CALLBACK_API_KEY")

	if cfg.Storage, err = loadStorage(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadValidator reads the validation pipeline configuration from environment variables
func LoadValidator() (*ValidatorConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ValidatorConfig{
		Logging:        loadLogging(),
		CallbackURL:    stringEnv("CALLBACK_URL", "http://web/api/log-audio"),
		CallbackAPIKey: os.Getenv("CALLBACK_API_KEY"),
	}
	var err error

	if cfg.CallbackTimeout, err = durationEnv("CALLBACK_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxMiscues, err = intEnv("MAX_MISCUES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxMiscues < 0 {
		return nil, fmt.Errorf("MAX_MISCUES must not be negative")
	}
	if cfg.Storage, err = loadStorage(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return c.Database.DSN()
}

// DSN returns the MySQL connection string of the database settings
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}

// loadDotEnv loads a .env file when one exists
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// loadDatabase reads DB_* variables, with an optional prefix such as "TEST_"
func loadDatabase(prefix string) (DatabaseConfig, error) {
	var (
		db  DatabaseConfig
		err error
	)
	if db.Host, err = requiredEnv(prefix + "DB_HOST"); err != nil {
		return db, err
	}
	portStr, err := requiredEnv(prefix + "DB_PORT")
	if err != nil {
		return db, err
	}
	if db.Port, err = strconv.Atoi(portStr); err != nil {
		return db, fmt.Errorf("invalid %sDB_PORT: %w", prefix, err)
	}
	if db.User, err = requiredEnv(prefix + "DB_USER"); err != nil {
		return db, err
	}
	if db.Password, err = requiredEnv(prefix + "DB_PASSWORD"); err != nil {
		return db, err
	}
	if db.DBName, err = requiredEnv(prefix + "DB_NAME"); err != nil {
		return db, err
	}
	return db, nil
}

func loadLogging() LoggingConfig {
	return LoggingConfig{
		Level: stringEnv("LOG_LEVEL", "info"),
		File:  os.Getenv("LOG_FILE"),
	}
}

func loadStorage() (StorageConfig, error) {
	storage := StorageConfig{
		Backend:   stringEnv("STORAGE_BACKEND", StorageBackendLocal),
		AudioPath: stringEnv("AUDIO_STORE_PATH", "./audio"),
	}

	switch storage.Backend {
	case StorageBackendLocal:
		return storage, nil
	case StorageBackendMinIO:
	default:
		return storage, fmt.Errorf("unknown STORAGE_BACKEND %q", storage.Backend)
	}

	var err error
	if storage.MinIO.Endpoint, err = requiredEnv("MINIO_ENDPOINT"); err != nil {
		return storage, err
	}
	if storage.MinIO.AccessKey, err = requiredEnv("MINIO_ACCESS_KEY"); err != nil {
		return storage, err
	}
	if storage.MinIO.SecretKey, err = requiredEnv("MINIO_SECRET_KEY"); err != nil {
		return storage, err
	}
	storage.MinIO.Bucket = stringEnv("MINIO_BUCKET", "audio")
	storage.MinIO.Prefix = os.Getenv("MINIO_PREFIX")
	storage.MinIO.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	return storage, nil
}

// parseOrigins splits a comma separated origin list, allowing all origins when empty
func parseOrigins(value string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func requiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
