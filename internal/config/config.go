// Package config provides unified configuration for the Aquatel job.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the unified configuration for the Aquatel job.
type Config struct {
	// Storage configuration for the credential artifact store
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Wallet configuration for credential staging
	Wallet WalletConfig `json:"wallet" yaml:"wallet"`

	// Database connection configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Job scheduling configuration
	Job JobConfig `json:"job" yaml:"job"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// WalletConfig holds credential staging configuration.
type WalletConfig struct {
	// Container is the storage container (object key prefix) holding
	// the credential artifacts
	Container string `json:"container" yaml:"container"`

	// ConfigDir is the staging directory for non-secret config artifacts
	ConfigDir string `json:"config_dir" yaml:"config_dir"`

	// WalletDir is the staging directory for wallet files
	WalletDir string `json:"wallet_dir" yaml:"wallet_dir"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Driver is the database/sql driver name
	Driver string `json:"driver" yaml:"driver"`

	// User is the database username
	User string `json:"user" yaml:"user"`

	// Password is the database password
	Password string `json:"password" yaml:"password"`

	// DSN is a net service alias resolved through the staged
	// tnsnames.ora, or a literal connection string
	DSN string `json:"dsn" yaml:"dsn"`

	// WalletPassword unlocks the staged wallet
	WalletPassword string `json:"wallet_password" yaml:"wallet_password"`

	// Table is the target table name
	Table string `json:"table" yaml:"table"`

	// CreateTable bootstraps the target table when absent (local
	// development only; production schema is owned by the DBA)
	CreateTable bool `json:"create_table" yaml:"create_table"`
}

// JobConfig holds scheduling configuration.
type JobConfig struct {
	// BatchSize is the number of records generated and inserted per run
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Interval is the time between scheduled runs
	Interval time.Duration `json:"interval" yaml:"interval"`

	// RunOnStart triggers an immediate run when the scheduler starts
	RunOnStart bool `json:"run_on_start" yaml:"run_on_start"`

	// LateTolerance is how far past its scheduled time a trigger may
	// fire before the run logs a past-due warning
	LateTolerance time.Duration `json:"late_tolerance" yaml:"late_tolerance"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
		Wallet: WalletConfig{
			Container: "config",
			ConfigDir: "",
			WalletDir: "",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Table:  "water_consumption_data",
		},
		Job: JobConfig{
			BatchSize:     10,
			Interval:      10 * time.Second,
			RunOnStart:    true,
			LateTolerance: 2 * time.Second,
		},
	}
}

// Resolve resolves staging paths, defaulting under the system temp
// directory the way the deployed function environment does.
func (c *Config) Resolve() {
	if c.Wallet.ConfigDir == "" {
		c.Wallet.ConfigDir = filepath.Join(os.TempDir(), "config")
	}
	if c.Wallet.WalletDir == "" {
		c.Wallet.WalletDir = filepath.Join(os.TempDir(), "wallet")
	}
	if c.Storage.Type == "local" && c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(os.TempDir(), "aquatel_storage")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.Wallet.Container == "" {
		return fmt.Errorf("wallet.container is required")
	}

	if c.Database.Driver == "" {
		return fmt.Errorf("database.driver is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Database.Table == "" {
		return fmt.Errorf("database.table is required")
	}

	if c.Job.BatchSize < 1 {
		return fmt.Errorf("job.batch_size must be at least 1, got %d", c.Job.BatchSize)
	}

	if c.Job.Interval <= 0 {
		return fmt.Errorf("job.interval must be positive, got %s", c.Job.Interval)
	}

	return nil
}

// EnsureDirectories creates the staging directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Wallet.ConfigDir,
		c.Wallet.WalletDir,
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the AQUATEL_ prefix.
func LoadFromEnv(cfg *Config) {
	// Storage configuration
	if v := os.Getenv("AQUATEL_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("AQUATEL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("AQUATEL_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("AQUATEL_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("AQUATEL_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}

	// Wallet configuration
	if v := os.Getenv("AQUATEL_CONFIG_CONTAINER"); v != "" {
		cfg.Wallet.Container = v
	}
	if v := os.Getenv("AQUATEL_CONFIG_DIR"); v != "" {
		cfg.Wallet.ConfigDir = v
	}
	if v := os.Getenv("AQUATEL_WALLET_LOCATION"); v != "" {
		cfg.Wallet.WalletDir = v
	}

	// Database configuration
	if v := os.Getenv("AQUATEL_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("AQUATEL_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("AQUATEL_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("AQUATEL_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AQUATEL_DB_WALLET_PASSWORD"); v != "" {
		cfg.Database.WalletPassword = v
	}
	if v := os.Getenv("AQUATEL_DB_TABLE"); v != "" {
		cfg.Database.Table = v
	}
	if v := os.Getenv("AQUATEL_DB_CREATE_TABLE"); v != "" {
		cfg.Database.CreateTable = v == "true" || v == "1"
	}

	// Job configuration
	if v := os.Getenv("AQUATEL_JOB_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Job.BatchSize = n
		}
	}
	if v := os.Getenv("AQUATEL_JOB_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Job.Interval = d
		}
	}
	if v := os.Getenv("AQUATEL_JOB_RUN_ON_START"); v != "" {
		cfg.Job.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("AQUATEL_JOB_LATE_TOLERANCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Job.LateTolerance = d
		}
	}
}
