// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Import  ImportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig selects the catalog backend.
type StorageConfig struct {
	Driver  string // sqlite (default) or badger
	DataDir string // Directory holding the database and lock file
}

// DatabasePath returns where the selected driver keeps its data.
func (s StorageConfig) DatabasePath() string {
	if s.Driver == DriverBadger {
		return filepath.Join(s.DataDir, "badger")
	}
	return filepath.Join(s.DataDir, "catalog.db")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: any)
	WriteRateLimit float64       // Write requests per second per client
	WriteBurst     int
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// AdminKey guards write endpoints. Empty disables writes over HTTP.
	AdminKey string
}

// ImportConfig holds ingestion configuration.
type ImportConfig struct {
	InboxPath      string        // Drop folder watched for CSV files; empty disables it
	SettleDelay    time.Duration // Quiet period before a dropped file is read
	MaxUploadBytes int64         // Largest accepted upload
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("shelfmatch", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	driver := fs.String("storage-driver", "", "Storage driver (sqlite, badger)")
	dataDir := fs.String("data-dir", "", "Directory for catalog data")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("cors-origins", "", "Comma separated allowed CORS origins")
	writeRate := fs.String("write-rate", "", "Write requests per second per client (default: 2)")
	writeBurst := fs.String("write-burst", "", "Write request burst per client (default: 10)")

	adminKey := fs.String("admin-key", "", "Admin key for write endpoints")

	inboxPath := fs.String("inbox-path", "", "Drop folder for CSV files")
	settleDelay := fs.String("settle-delay", "", "Quiet period before reading dropped files (default: 2s)")
	maxUpload := fs.String("max-upload-bytes", "", "Largest accepted upload in bytes (default: 10485760)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine; variables already set win over the file.
	_ = godotenv.Load(*envFile) //nolint:errcheck // Optional file

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(getConfigValue(*driver, "STORAGE_DRIVER", DriverSQLite)),
			DataDir: getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*origins, "CORS_ORIGINS", "")),
			WriteRateLimit: getFloatConfigValue(*writeRate, "WRITE_RATE_LIMIT", 2),
			WriteBurst:     getIntConfigValue(*writeBurst, "WRITE_BURST", 10),
		},
		Auth: AuthConfig{
			AdminKey: getConfigValue(*adminKey, "ADMIN_KEY", ""),
		},
		Import: ImportConfig{
			InboxPath:      getConfigValue(*inboxPath, "IMPORT_INBOX_PATH", ""),
			MaxUploadBytes: int64(getIntConfigValue(*maxUpload, "IMPORT_MAX_UPLOAD_BYTES", 10<<20)),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Import.SettleDelay, err = getDurationConfigValue(*settleDelay, "IMPORT_SETTLE_DELAY", "2s"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	if cfg.Import.InboxPath != "" {
		if cfg.Import.InboxPath, err = expandPath(cfg.Import.InboxPath, ""); err != nil {
			return nil, fmt.Errorf("invalid inbox path: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("invalid storage driver: %s (must be sqlite or badger)", c.Storage.Driver)
	}

	if c.Storage.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.Server.WriteRateLimit <= 0 || c.Server.WriteBurst <= 0 {
		return errors.New("write rate limit and burst must be positive")
	}

	if c.Import.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	if c.Import.SettleDelay < 0 {
		return errors.New("settle delay cannot be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataDir defaults the data directory to ~/.shelfmatch.
func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".shelfmatch")

	expanded, err := expandPath(c.Storage.DataDir, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataDir = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
