/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package config provides configuration management for pgmock.

The configuration system supports multiple sources with clear precedence:
 1. Command-line flags (highest priority)
 2. Environment variables
 3. Configuration file
 4. Default values (lowest priority)

Configuration File Format:
The configuration file uses TOML.

Example configuration file:

	# pgmock configuration
	dialect = "postgres"
	grammar_dir = ""        # empty = embedded grammars
	log_level = "warn"
	log_json = false
	history_file = "$HOME/.pgmock_history"
	show_banner = true

Environment Variables:
  - PGMOCK_DIALECT: SQL dialect (postgres)
  - PGMOCK_GRAMMAR_DIR: Directory with grammar overrides (alter_table.yaml, create_sequence.yaml)
  - PGMOCK_LOG_LEVEL: Log level (debug, info, warn, error)
  - PGMOCK_LOG_JSON: Enable JSON logging (true/false)
  - PGMOCK_HISTORY_FILE: Shell history file
  - PGMOCK_CONFIG_FILE: Path to configuration file
*/
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	ferrors "pgmock/internal/errors"
)

// Environment variable names for configuration.
const (
	EnvDialect     = "PGMOCK_DIALECT"
	EnvGrammarDir  = "PGMOCK_GRAMMAR_DIR"
	EnvLogLevel    = "PGMOCK_LOG_LEVEL"
	EnvLogJSON     = "PGMOCK_LOG_JSON"
	EnvHistoryFile = "PGMOCK_HISTORY_FILE"
	EnvShowBanner  = "PGMOCK_SHOW_BANNER"
	EnvConfigFile  = "PGMOCK_CONFIG_FILE"
)

// SupportedDialects lists the dialect identifiers the parser accepts.
var SupportedDialects = []string{"postgres"}

// Default configuration file paths (searched in order).
var DefaultConfigPaths = []string{
	"$HOME/.config/pgmock/pgmock.toml",
	"./pgmock.toml",
}

// Config holds all configuration values for pgmock.
type Config struct {
	// Parsing
	Dialect    string `toml:"dialect" json:"dialect"`
	GrammarDir string `toml:"grammar_dir" json:"grammar_dir"`

	// Logging
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`

	// Shell
	HistoryFile string `toml:"history_file" json:"history_file"`
	ShowBanner  bool   `toml:"show_banner" json:"show_banner"`

	// Path to the loaded config file
	ConfigFile string `toml:"-" json:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dialect:     "postgres",
		GrammarDir:  "",
		LogLevel:    "warn",
		LogJSON:     false,
		HistoryFile: "$HOME/.pgmock_history",
		ShowBanner:  true,
	}
}

// Manager handles configuration loading, validation, and access.
type Manager struct {
	config *Config
	mu     sync.RWMutex

	onReload []func(*Config)
}

// NewManager creates a new configuration manager with default values.
func NewManager() *Manager {
	return &Manager{
		config:   DefaultConfig(),
		onReload: make([]func(*Config), 0),
	}
}

var globalManager = NewManager()

// Global returns the global configuration manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// OnReload registers a callback to be called when configuration is reloaded.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

func (m *Manager) notifyReload() {
	m.mu.RLock()
	callbacks := make([]func(*Config), len(m.onReload))
	copy(callbacks, m.onReload)
	cfg := m.config
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	supported := false
	for _, d := range SupportedDialects {
		if strings.EqualFold(c.Dialect, d) {
			supported = true
			break
		}
	}
	if !supported {
		errs = append(errs, fmt.Sprintf("invalid dialect: %s (must be one of %s)",
			c.Dialect, strings.Join(SupportedDialects, ", ")))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if c.GrammarDir != "" {
		info, err := os.Stat(os.ExpandEnv(c.GrammarDir))
		if err != nil || !info.IsDir() {
			errs = append(errs, fmt.Sprintf("grammar_dir is not a directory: %s", c.GrammarDir))
		}
	}

	if len(errs) > 0 {
		return ferrors.InvalidConfig("configuration", strings.Join(errs, "; "))
	}
	return nil
}

// LoadFromFile loads configuration from a TOML file. Keys missing from the
// file keep their default values.
func (m *Manager) LoadFromFile(path string) error {
	path = os.ExpandEnv(path)

	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ferrors.InvalidConfig("config file", "unknown keys: "+strings.Join(keys, ", "))
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv merges environment variables over the current configuration.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvDialect); v != "" {
		cfg.Dialect = v
	}
	if v := os.Getenv(EnvGrammarDir); v != "" {
		cfg.GrammarDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv(EnvHistoryFile); v != "" {
		cfg.HistoryFile = v
	}
	if v := os.Getenv(EnvShowBanner); v != "" {
		cfg.ShowBanner = parseBool(v)
	}

	m.Set(cfg)
}

func parseBool(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// FindConfigFile searches for a configuration file in default locations.
// Returns the path to the first file found, or empty string if none found.
func FindConfigFile() string {
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(os.ExpandEnv(envPath)); err == nil {
			return os.ExpandEnv(envPath)
		}
	}

	for _, path := range DefaultConfigPaths {
		expandedPath := os.ExpandEnv(path)
		if _, err := os.Stat(expandedPath); err == nil {
			return expandedPath
		}
	}

	return ""
}

// Load loads configuration from all sources with proper precedence.
// Order: defaults -> config file -> environment variables.
// Command-line flags are applied by the caller afterwards.
func (m *Manager) Load() error {
	if configPath := FindConfigFile(); configPath != "" {
		if err := m.LoadFromFile(configPath); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	return nil
}

// Reload reloads configuration from file and environment.
func (m *Manager) Reload() error {
	configPath := m.Get().ConfigFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	m.Set(DefaultConfig())

	if configPath != "" {
		if err := m.LoadFromFile(configPath); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	m.notifyReload()

	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("pgmock Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Dialect:      %s\n", c.Dialect))
	grammars := c.GrammarDir
	if grammars == "" {
		grammars = "(embedded)"
	}
	sb.WriteString(fmt.Sprintf("  Grammars:     %s\n", grammars))
	sb.WriteString(fmt.Sprintf("  Log Level:    %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  Log JSON:     %v\n", c.LogJSON))
	sb.WriteString(fmt.Sprintf("  History File: %s\n", c.HistoryFile))
	if c.ConfigFile != "" {
		sb.WriteString(fmt.Sprintf("  Config File:  %s\n", c.ConfigFile))
	}
	return sb.String()
}

// ToTOML returns the configuration as a TOML document.
func (c *Config) ToTOML() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# pgmock configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.String(), nil
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	path = os.ExpandEnv(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.ToTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
