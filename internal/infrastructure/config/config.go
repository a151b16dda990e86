package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File permission modes for the preference directory and file.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// Config is the root configuration structure for NanoServer.
// All settings are loaded from YAML and can be overridden by environment
// variables. The same file doubles as the preference store: last-used
// project folder, port, and window geometry are written back on change.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProjectConfig remembers the last project the user worked on.
type ProjectConfig struct {
	// LastRoot is the document root of the most recently served project.
	LastRoot string `yaml:"last_root"`

	// WindowGeometry is the host UI's saved window size ("WIDTHxHEIGHT").
	// The core never interprets it; it is persisted for the presentation layer.
	WindowGeometry string `yaml:"window_geometry"`
}

// ServerConfig contains PHP built-in server settings.
type ServerConfig struct {
	// Host is the interface the PHP server binds to.
	Host string `yaml:"host"`

	// Port is the preferred listen port. If busy, the supervisor probes
	// upward for a free one.
	Port int `yaml:"port"`

	// PHPBinary is the PHP executable to launch. Resolved via PATH when
	// not absolute.
	PHPBinary string `yaml:"php_binary"`

	// GracefulTimeout is how long to wait for the PHP process to exit
	// after SIGTERM before it is killed (seconds).
	GracefulTimeout int `yaml:"graceful_timeout"`
}

// DatabaseConfig contains SQLite query runner settings.
type DatabaseConfig struct {
	// Path is the SQLite file queries run against. Empty until the user
	// selects one.
	Path string `yaml:"path"`

	// ReadOnly blocks all write-classified queries when true.
	ReadOnly bool `yaml:"read_only"`
}

// APIConfig contains settings for the local HTTP control surface.
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultPath returns the default preference file location,
// ~/.nanoserver/config.yaml. Falls back to the working directory when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".nanoserver", "config.yaml")
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file is not an error: this is a preference store, and first
// run starts from defaults. A file that exists but cannot be parsed is an
// error, so a corrupted store is surfaced rather than silently replaced.
//
// Environment variables follow the pattern NANOSERVER_SECTION_KEY,
// for example NANOSERVER_DATABASE_PATH or NANOSERVER_SERVER_PORT.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config file: %w", unmarshalErr)
		}
	case os.IsNotExist(err):
		// First run: defaults only.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration back to the given path, creating the
// directory if needed. The file is written with owner-only permissions.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			WindowGeometry: "700x600",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8000,
			PHPBinary:       "php",
			GracefulTimeout: 5,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8910,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern NANOSERVER_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NANOSERVER_PROJECT_ROOT"); v != "" {
		cfg.Project.LastRoot = v
	}
	if v := os.Getenv("NANOSERVER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NANOSERVER_SERVER_PHP_BINARY"); v != "" {
		cfg.Server.PHPBinary = v
	}
	if v := os.Getenv("NANOSERVER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NANOSERVER_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("NANOSERVER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.PHPBinary == "" {
		errs = append(errs, "server.php_binary is required")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetGracefulTimeout returns the PHP server graceful shutdown window as a
// Duration.
func (c *Config) GetGracefulTimeout() time.Duration {
	return time.Duration(c.Server.GracefulTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
