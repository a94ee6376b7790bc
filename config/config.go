package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultServerURL      = "http://localhost:8080"
	defaultUIOrigin       = "http://localhost:5173"
	defaultRequestTimeout = 30 // seconds; uploads stream within this budget
)

const (
	defaultUploadQueueSize  = 100
	defaultNumUploadWorkers = 2
)

type Config struct {
	// remote PhotoMS server this companion talks to
	ServerURL string

	// local UI origin allowed through CORS
	UIOrigin string

	// data directory (database + asset cache live under it)
	DataDir        string
	DatabasePath   string
	AssetCachePath string

	// transport settings
	RequestTimeout time.Duration

	// upload worker settings
	UploadQueueSize  int
	NumUploadWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dataDir := getEnvOrDefault("DATA_DIR", filepath.Join(".", "companion_data"))
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data directory '%s': %w", dataDir, err)
	}

	timeoutSeconds := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)

	cfg := Config{
		ServerURL:        getEnvOrDefault("PHOTOMS_SERVER_URL", defaultServerURL),
		UIOrigin:         getEnvOrDefault("UI_ORIGIN", defaultUIOrigin),
		DataDir:          absDataDir,
		DatabasePath:     filepath.Join(absDataDir, "companion.db"),
		AssetCachePath:   filepath.Join(absDataDir, "assets"),
		RequestTimeout:   time.Duration(timeoutSeconds) * time.Second,
		UploadQueueSize:  getEnvIntOrDefault("UPLOAD_QUEUE_SIZE", defaultUploadQueueSize),
		NumUploadWorkers: getEnvIntOrDefault("NUM_UPLOAD_WORKERS", defaultNumUploadWorkers),
	}

	return cfg, nil
}
