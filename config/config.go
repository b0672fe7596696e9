// Package config loads the application settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"ffebudget/autosave"
)

// Snapshot backends.
const (
	BackendPocketBase = "pocketbase"
	BackendFile       = "file"
	BackendMemory     = "memory"
)

type Config struct {
	// Storage
	DataDir      string
	DocumentsDir string

	// Auto-save
	AutosaveDelay   time.Duration
	SnapshotBackend string
	RecoverySlot    string

	// Formatting
	CurrencySymbol string
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("FFE_DATA_DIR", filepath.Join(xdg.DataHome, "ffebudget"))
	return &Config{
		DataDir:      dataDir,
		DocumentsDir: getEnv("FFE_DOCUMENTS_DIR", filepath.Join(dataDir, "documents")),

		AutosaveDelay:   getEnvDuration("FFE_AUTOSAVE_DELAY", autosave.DefaultDelay),
		SnapshotBackend: getEnv("FFE_SNAPSHOT_BACKEND", BackendPocketBase),
		RecoverySlot:    getEnv("FFE_RECOVERY_SLOT", autosave.DefaultSlot),

		CurrencySymbol: getEnv("FFE_CURRENCY_SYMBOL", "$"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.DocumentsDir, validation.Required),
		validation.Field(&c.AutosaveDelay,
			validation.Min(100*time.Millisecond),
			validation.Max(time.Minute),
		),
		validation.Field(&c.SnapshotBackend,
			validation.Required,
			validation.In(BackendPocketBase, BackendFile, BackendMemory),
		),
		validation.Field(&c.RecoverySlot, validation.Required),
	)
}

// SnapshotDir is where the file backend keeps recovery snapshots.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration falls back when the value is missing or does not parse;
// Validate reports out-of-range values.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
