package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all fridgechat configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Reply source configuration
	Assistant AssistantConfig `yaml:"assistant"`

	// Progressive reveal pacing
	Reveal RevealConfig `yaml:"reveal"`

	// Fridge inventory backend
	Inventory InventoryConfig `yaml:"inventory"`

	// Notification preferences file
	Notifications NotificationsConfig `yaml:"notifications"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RevealConfig configures the progressive reveal.
type RevealConfig struct {
	Interval string `yaml:"interval"`

	// StrictIDs panics on out-of-order assistant message ids instead of
	// logging them. Meant for development.
	StrictIDs bool `yaml:"strict_ids"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fridgechat",
		Version: "0.3.0",

		Assistant: AssistantConfig{
			Provider:    ProviderMock,
			Model:       "gemini-2.5-flash",
			Timeout:     "60s",
			MockLatency: "800ms",
		},

		Reveal: RevealConfig{
			Interval: "600ms",
		},

		Inventory: InventoryConfig{
			Backend:      InventoryYAML,
			Path:         ".fridgechat/inventory.yaml",
			DatabasePath: ".fridgechat/inventory.db",
			Watch:        true,
			Debounce:     "300ms",
		},

		Notifications: NotificationsConfig{
			PreferencesPath: ".fridgechat/preferences.json",
		},

		UI: *DefaultUIConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns the config file of a workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".fridgechat", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Assistant.APIKey = key
		c.Assistant.Provider = ProviderGemini
	}

	if path := os.Getenv("FRIDGECHAT_INVENTORY"); path != "" {
		c.Inventory.Path = path
		c.Inventory.Backend = InventoryYAML
	}
	if path := os.Getenv("FRIDGECHAT_DB"); path != "" {
		c.Inventory.DatabasePath = path
		c.Inventory.Backend = InventorySQLite
	}

	if v := os.Getenv("FRIDGECHAT_DARK_MODE"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			if dark {
				c.UI.Theme = ThemeDark
			} else {
				c.UI.Theme = ThemeLight
			}
		}
	}

	if v := os.Getenv("FRIDGECHAT_STRICT"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			c.Reveal.StrictIDs = strict
		}
	}
}

// GetRevealInterval returns the delay between revealed segments.
func (c *Config) GetRevealInterval() time.Duration {
	d, err := time.ParseDuration(c.Reveal.Interval)
	if err != nil || d <= 0 {
		return 600 * time.Millisecond
	}
	return d
}

// Resolve makes a workspace-relative path absolute.
func Resolve(workspace, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Assistant.validate(); err != nil {
		return err
	}
	if err := c.Inventory.validate(); err != nil {
		return err
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Reveal.Interval); c.Reveal.Interval != "" && err != nil {
		return fmt.Errorf("invalid reveal interval %q: %w", c.Reveal.Interval, err)
	}
	switch c.UI.Theme {
	case "", ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("invalid ui theme: %s (valid: auto, dark, light)", c.UI.Theme)
	}
	return nil
}
