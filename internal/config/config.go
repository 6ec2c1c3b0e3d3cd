// Package config handles configuration loading, validation and hot reload for
// the text-input plugin and its host-side tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mobileinput/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Policies for CREATE_EDIT addressed to an id that is already registered.
const (
	DuplicateReplace = "replace"
	DuplicateReject  = "reject"
)

// Character limit enforcement modes.
const (
	LimitTrimOne = "trim_one"
	LimitClamp   = "clamp"
)

// Config holds the complete plugin configuration.
type Config struct {
	Version int `toml:"version" json:"version" yaml:"version"`

	Bridge   BridgeConfig   `toml:"bridge" json:"bridge" yaml:"bridge"`
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard" yaml:"keyboard"`
	Widgets  WidgetsConfig  `toml:"widgets" json:"widgets" yaml:"widgets"`
	Logging  LoggingConfig  `toml:"logging" json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics" json:"metrics" yaml:"metrics"`
	Preview  PreviewConfig  `toml:"preview" json:"preview" yaml:"preview"`
}

// BridgeConfig names the host object and method that receive outbound
// messages. The init payload overrides these when it sets them.
type BridgeConfig struct {
	Object   string `toml:"object" json:"object" yaml:"object"`
	Receiver string `toml:"receiver" json:"receiver" yaml:"receiver"`
	Debug    bool   `toml:"debug" json:"debug" yaml:"debug"`
}

// KeyboardConfig tunes keyboard height detection.
type KeyboardConfig struct {
	// NavBarHeight is added to a positive keyboard height. A negative value
	// asks the host for the navigation bar height.
	NavBarHeight int `toml:"nav_bar_height" json:"nav_bar_height" yaml:"nav_bar_height"`
}

// WidgetsConfig holds per-widget behaviour switches.
type WidgetsConfig struct {
	// DuplicateCreate is "replace" or "reject".
	DuplicateCreate string `toml:"duplicate_create" json:"duplicate_create" yaml:"duplicate_create"`

	// CharacterLimitMode is "trim_one" or "clamp".
	CharacterLimitMode string `toml:"character_limit_mode" json:"character_limit_mode" yaml:"character_limit_mode"`

	// FontExtension is appended to font names sent by the host.
	FontExtension string `toml:"font_extension" json:"font_extension" yaml:"font_extension"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level" yaml:"level"`
	Format     string `toml:"format" json:"format" yaml:"format"`
	Output     string `toml:"output" json:"output" yaml:"output"`
	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int64  `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
	RedactText bool   `toml:"redact_text" json:"redact_text" yaml:"redact_text"`
}

// MetricsConfig controls the in-process metrics registry.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	Namespace string `toml:"namespace" json:"namespace" yaml:"namespace"`
}

// PreviewConfig configures the desktop preview window.
type PreviewConfig struct {
	Title       string `toml:"title" json:"title" yaml:"title"`
	Width       int    `toml:"width" json:"width" yaml:"width"`
	Height      int    `toml:"height" json:"height" yaml:"height"`
	Orientation string `toml:"orientation" json:"orientation" yaml:"orientation"`
	FontDir     string `toml:"font_dir" json:"font_dir" yaml:"font_dir"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Bridge: BridgeConfig{
			Object:   "Plugins",
			Receiver: "OnDataReceive",
		},
		Keyboard: KeyboardConfig{
			NavBarHeight: -1,
		},
		Widgets: WidgetsConfig{
			DuplicateCreate:    DuplicateReplace,
			CharacterLimitMode: LimitTrimOne,
			FontExtension:      ".ttf",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(PlatformLogDir(), "mobileinput.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
			RedactText: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "mobileinput",
		},
		Preview: PreviewConfig{
			Title:       "mobileinput preview",
			Width:       480,
			Height:      800,
			Orientation: "portrait",
		},
	}
}

// Load reads the configuration at path. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := autoDetectAndParse(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

// Parse decodes a TOML, JSON or YAML document over the defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := autoDetectAndParse(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func autoDetectAndParse(data []byte, cfg *Config) error {
	if _, err := toml.Decode(string(data), cfg); err == nil {
		return nil
	}
	*cfg = *DefaultConfig()
	if err := json.Unmarshal(data, cfg); err == nil {
		return nil
	}
	*cfg = *DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err == nil {
		return nil
	}
	return fmt.Errorf("unable to parse config file (tried TOML, JSON, YAML)")
}

// ApplyEnvOverrides applies UMI_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("UMI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("UMI_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("UMI_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}
	if v := os.Getenv("UMI_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Bridge.Debug = b
		}
	}
	if v := os.Getenv("UMI_BRIDGE_OBJECT"); v != "" {
		c.Bridge.Object = v
	}
	if v := os.Getenv("UMI_BRIDGE_RECEIVER"); v != "" {
		c.Bridge.Receiver = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = c.Logging.Output
	lc.FilePath = c.Logging.FilePath
	lc.MaxSize = c.Logging.MaxSizeMB
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAge = c.Logging.MaxAgeDays
	lc.Compress = c.Logging.Compress
	lc.RedactText = c.Logging.RedactText
	return lc, nil
}
