/**
 * Configuration for the Entrusted pipeline
 *
 * Loads process configuration from environment variables, optionally
 * layered with a .env file via godotenv for local/dev runs. Mirrors the
 * worker's getEnvOrDefault/getEnvAsIntOrDefault helper style and its
 * Validate() method.
 */

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process configuration loaded by cmd/entrusted-worker.
// cmd/entrusted-sanitize does not load it; it reads the environment
// variables it needs directly.
type Config struct {
	// Translator / locale
	LangID string // ENTRUSTED_LANGID

	// Input decryption, masked in echoed command lines
	DocPassword string // ENTRUSTED_DOC_PASSWD

	// OCR
	TesseractTessdataDir string // ENTRUSTED_TESSERACT_TESSDATA_DIR

	// Office conversion
	LibreOfficeProgramDir string // ENTRUSTED_LIBREOFFICE_PROGRAM_DIR

	// Sandbox
	SeccompEnabled  bool   // ENTRUSTED_AUTOMATED_SECCOMP_ENABLEMENT
	NativeRuntime   bool   // ENTRUSTED_NATIVE_RUNTIME
	ContainerEngine string // docker | podman, auto-detected if empty
	ContainerImage  string

	// Worker tuning
	WorkerTempDir string
	MaxFileSize   int64
}

// LoadConfig loads configuration from environment variables, applying
// defaults for anything unset. Unlike the worker's getEnvOrThrow, nothing
// in this pipeline has a required external credential, so nothing panics
// here.
func LoadConfig() (*Config, error) {
	// Best-effort; a missing .env file is not an error since every setting
	// has a workable default.
	_ = godotenv.Load(".env.entrusted")

	cfg := &Config{
		LangID:                getEnvOrDefault("ENTRUSTED_LANGID", "en"),
		DocPassword:           os.Getenv("ENTRUSTED_DOC_PASSWD"),
		TesseractTessdataDir:  getEnvOrDefault("ENTRUSTED_TESSERACT_TESSDATA_DIR", "/usr/share/tessdata"),
		LibreOfficeProgramDir: os.Getenv("ENTRUSTED_LIBREOFFICE_PROGRAM_DIR"),
		SeccompEnabled:        getEnvAsBoolOrDefault("ENTRUSTED_AUTOMATED_SECCOMP_ENABLEMENT", true),
		NativeRuntime:         getEnvAsBoolOrDefault("ENTRUSTED_NATIVE_RUNTIME", false),
		ContainerEngine:       getEnvOrDefault("ENTRUSTED_CONTAINER_ENGINE", ""),
		ContainerImage:        getEnvOrDefault("ENTRUSTED_CONTAINER_IMAGE", "entrusted-container:latest"),
		WorkerTempDir:         getEnvOrDefault("ENTRUSTED_WORKER_TEMPDIR", os.TempDir()),
		MaxFileSize:           getEnvAsInt64OrDefault("ENTRUSTED_MAX_FILE_SIZE", 5368709120), // 5GB
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants a caller would want enforced before starting a
// batch.
func (c *Config) Validate() error {
	if c.MaxFileSize < 1024 {
		return fmt.Errorf("ENTRUSTED_MAX_FILE_SIZE must be at least 1KB, got %d", c.MaxFileSize)
	}
	if c.WorkerTempDir == "" {
		return fmt.Errorf("ENTRUSTED_WORKER_TEMPDIR must not be empty")
	}
	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBoolOrDefault gets environment variable as bool or returns default
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	switch valueStr {
	case "false", "no", "0":
		return false
	case "true", "yes", "1":
		return true
	default:
		return defaultValue
	}
}

// getEnvAsInt64OrDefault gets environment variable as int64 or returns default
func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
