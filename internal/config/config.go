// Package config provides YAML-based configuration for the front end.
package config

import (
	"compress/gzip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration document.
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Backend the PDFs are submitted to
	Backend BackendConfig `yaml:"backend"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Advanced options
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCORS"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// BackendConfig points at the question-generation service
type BackendConfig struct {
	BaseURL string `yaml:"baseURL"`
}

// StorageConfig contains staging settings
type StorageConfig struct {
	StagingDirectory       string `yaml:"stagingDirectory"`
	StaleUploadMinutes     int    `yaml:"staleUploadMinutes"`
	CleanupIntervalMinutes int    `yaml:"cleanupIntervalMinutes"`
}

// AdvancedConfig contains logging and tuning options
type AdvancedConfig struct {
	LogLevel             string `yaml:"logLevel"`
	EnableRequestLogging bool   `yaml:"enableRequestLogging"`
	EnableCompression    bool   `yaml:"enableCompression"`
	CompressionLevel     int    `yaml:"compressionLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "127.0.0.1",
			EnableCORS:   false,
			AllowOrigins: "",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "12M",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
		},
		Storage: StorageConfig{
			StagingDirectory:       "./data/staging",
			StaleUploadMinutes:     60,
			CleanupIntervalMinutes: 10,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			EnableCompression:    true,
			CompressionLevel:     5,
		},
	}
}

// LoadConfig loads configuration from a YAML file, writing the defaults first
// if the file does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnvironment returns the defaults with environment overrides applied.
// No file is read or written.
func FromEnvironment() (*AppConfig, error) {
	config := DefaultConfig()
	if err := config.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# PDF Q&A front end configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT env variable: %q", port)
		}
		c.Server.Port = p
	}

	if backend := os.Getenv("BACKEND_URL"); backend != "" {
		c.Backend.BaseURL = backend
	}

	if dir := os.Getenv("STAGING_DIR"); dir != "" {
		c.Storage.StagingDirectory = dir
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.StagingDirectory) {
		c.Storage.StagingDirectory = filepath.Join(configDir, c.Storage.StagingDirectory)
	}
}

// Validate checks the values that have no sensible fallback.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend baseURL must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if _, err := bytes.Parse(c.Server.BodyLimit); err != nil {
		return fmt.Errorf("invalid server bodyLimit %q: %w", c.Server.BodyLimit, err)
	}
	if c.Storage.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("storage cleanupIntervalMinutes must be positive, got %d", c.Storage.CleanupIntervalMinutes)
	}
	if c.Storage.StaleUploadMinutes <= 0 {
		return fmt.Errorf("storage staleUploadMinutes must be positive, got %d", c.Storage.StaleUploadMinutes)
	}
	// gzip accepts HuffmanOnly (-2) through BestCompression (9)
	if c.Advanced.CompressionLevel < gzip.HuffmanOnly || c.Advanced.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("advanced compressionLevel must be between %d and %d, got %d",
			gzip.HuffmanOnly, gzip.BestCompression, c.Advanced.CompressionLevel)
	}
	if _, err := ParseLogLevel(c.Advanced.LogLevel); err != nil {
		return err
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetStagingDir returns the absolute staging directory path
func (c *AppConfig) GetStagingDir() string {
	return c.Storage.StagingDirectory
}

// ParseLogLevel maps a config string onto a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// NewLogger builds the process logger for the configured level.
func (c *AppConfig) NewLogger() *slog.Logger {
	level, _ := ParseLogLevel(c.Advanced.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
