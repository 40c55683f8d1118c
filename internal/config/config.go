// Package config loads the cluster and logging settings used by the nilql
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nillion/nilql-go/pkg/nilql"
)

// Log formats accepted in Config.LogFormat.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config describes a cluster and how the command should log.
type Config struct {
	Cluster    nilql.Cluster `yaml:"cluster"`
	Operation  string        `yaml:"operation"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	BatchLimit int           `yaml:"batch_limit"`
}

// Default returns the settings used when no file is given: a single node,
// info logging to the console.
func Default() *Config {
	return &Config{
		Cluster:   nilql.NewCluster(1),
		Operation: nilql.Store.String(),
		LogLevel:  "info",
		LogFormat: FormatConsole,
	}
}

// Load reads a YAML (or JSON) configuration file. Fields missing from the
// file keep their Default values. The result is validated.
func Load(path string) (*Config, error) {
	absPath, err := SecurePath(path)
	if err != nil {
		return nil, fmt.Errorf("secure path: %w", err)
	}
	data, err := os.ReadFile(absPath) // #nosec G304 -- absPath validated by SecurePath
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs sanity checks on a Config.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if cfg.Cluster.NodeCount() < 1 {
		return errors.New("cluster must contain at least one node")
	}
	if _, err := cfg.ParsedOperation(); err != nil {
		return fmt.Errorf("operation: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch cfg.LogFormat {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("log_format: unknown format %q", cfg.LogFormat)
	}
	if cfg.BatchLimit < 0 {
		return fmt.Errorf("batch_limit: must not be negative, got %d", cfg.BatchLimit)
	}
	return nil
}

// ParsedOperation returns the configured operation.
func (c *Config) ParsedOperation() (nilql.Operation, error) {
	return nilql.ParseOperation(strings.ToLower(c.Operation))
}

// Level returns the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// SecurePath validates that a file path doesn't escape the working directory.
func SecurePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}
