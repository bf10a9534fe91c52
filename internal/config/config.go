package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the scribe configuration
type Config struct {
	ListLimit      int      `yaml:"list_limit"`
	MatchWidth     int      `yaml:"match_width"`
	Prompt         string   `yaml:"prompt"`
	LogLevel       string   `yaml:"log_level"`
	IgnoreCommands []string `yaml:"ignore_commands"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListLimit:      20,
		MatchWidth:     500,
		Prompt:         "(scribe): ",
		LogLevel:       "info",
		IgnoreCommands: []string{"scribe"},
	}
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a config manager for config.yaml in the scribe
// root directory
func NewConfigManager(root string) *ConfigManager {
	return NewConfigManagerWithPath(filepath.Join(root, "config.yaml"))
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist.
// Keys missing from the file keep their defaults.
func (cm *ConfigManager) Load() (*Config, error) {
	// If config file doesn't exist, return default config
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cm.validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := cm.validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (cm *ConfigManager) validate(config *Config) error {
	if config.ListLimit <= 0 {
		return fmt.Errorf("list_limit must be greater than 0")
	}

	if config.ListLimit > 1000 {
		return fmt.Errorf("list_limit cannot exceed 1000 items")
	}

	if config.MatchWidth <= 0 {
		return fmt.Errorf("match_width must be greater than 0")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}

	for _, cmd := range config.IgnoreCommands {
		if cmd == "" || strings.ContainsAny(cmd, " \t") {
			return fmt.Errorf("ignore_commands entries must be single words, got %q", cmd)
		}
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Keys returns the configuration keys accepted by Get and Update, sorted.
func Keys() []string {
	keys := []string{"list-limit", "match-width", "prompt", "log-level", "ignore-commands"}
	sort.Strings(keys)
	return keys
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "list-limit":
		var limit int
		if _, err := fmt.Sscanf(value, "%d", &limit); err != nil {
			return fmt.Errorf("invalid integer value for list-limit: %s", value)
		}
		config.ListLimit = limit
	case "match-width":
		var width int
		if _, err := fmt.Sscanf(value, "%d", &width); err != nil {
			return fmt.Errorf("invalid integer value for match-width: %s", value)
		}
		config.MatchWidth = width
	case "prompt":
		config.Prompt = value
	case "log-level":
		config.LogLevel = strings.ToLower(value)
	case "ignore-commands":
		config.IgnoreCommands = splitList(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "list-limit":
		return fmt.Sprintf("%d", config.ListLimit), nil
	case "match-width":
		return fmt.Sprintf("%d", config.MatchWidth), nil
	case "prompt":
		return config.Prompt, nil
	case "log-level":
		return config.LogLevel, nil
	case "ignore-commands":
		return strings.Join(config.IgnoreCommands, ","), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		value, err := cm.Get(key)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, nil
}

// splitList parses a comma separated value. An empty value is an empty list.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
