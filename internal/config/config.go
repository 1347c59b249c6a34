// Package config provides configuration management functionality.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/chartpresets/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	LogFile  string // Optional rotating log file, empty logs to stderr only
	Port     int
	DevMode  bool

	// AllowedOrigins feeds CORS and the chart stream origin check.
	AllowedOrigins []string

	DatasetServiceURL string
	DatasetPayloadKey string // Hex-encoded 32-byte AES key shared with the dataset service
	DatasetTimeout    time.Duration

	// ServeDatasets mounts the reference dataset service on this server.
	ServeDatasets bool

	CanvasSettle         time.Duration
	RenderLogRetention   time.Duration
	RenderLogCleanupCron string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("CHARTS_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	port := getEnvAsInt("GO_PORT", 8001)
	cfg := &Config{
		DataDir:              absDataDir,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              getEnv("LOG_FILE", ""),
		Port:                 port,
		DevMode:              getEnvAsBool("DEV_MODE", false),
		AllowedOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DatasetServiceURL:    getEnv("DATASET_SERVICE_URL", fmt.Sprintf("http://localhost:%d", port)),
		DatasetPayloadKey:    getEnv("DATASET_PAYLOAD_KEY", ""),
		DatasetTimeout:       time.Duration(getEnvAsInt("DATASET_TIMEOUT_SECONDS", 15)) * time.Second,
		ServeDatasets:        getEnvAsBool("SERVE_DATASETS", true),
		CanvasSettle:         time.Duration(getEnvAsInt("CANVAS_SETTLE_MS", 250)) * time.Millisecond,
		RenderLogRetention:   time.Duration(getEnvAsInt("RENDER_LOG_RETENTION_DAYS", 30)) * 24 * time.Hour,
		RenderLogCleanupCron: getEnv("RENDER_LOG_CLEANUP_CRON", "0 30 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatasetPayloadKey == "" {
		return fmt.Errorf("DATASET_PAYLOAD_KEY is required")
	}
	key, err := hex.DecodeString(c.DatasetPayloadKey)
	if err != nil {
		return fmt.Errorf("DATASET_PAYLOAD_KEY must be hex: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("DATASET_PAYLOAD_KEY must decode to 32 bytes, got %d", len(key))
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT out of range: %d", c.Port)
	}
	if c.RenderLogRetention <= 0 {
		return fmt.Errorf("RENDER_LOG_RETENTION_DAYS must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if values := utils.ParseCSV(os.Getenv(key)); len(values) > 0 {
		return values
	}
	return defaultValue
}
