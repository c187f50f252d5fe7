package config

import (
	"fmt"
	"time"
)

// UI themes.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is auto, dark or light
	Theme string `yaml:"theme"`

	// PanelRatio is the share of the width the embedded chat panel takes
	// (0.0-1.0); the rest shows the fridge
	PanelRatio float64 `yaml:"panel_ratio"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:      ThemeAuto,
		PanelRatio: 0.6,
	}
}

// GetPanelRatio returns the panel ratio clamped to a usable range.
func (u UIConfig) GetPanelRatio() float64 {
	if u.PanelRatio < 0.3 || u.PanelRatio > 0.9 {
		return 0.6
	}
	return u.PanelRatio
}

// NotificationsConfig locates the notification preferences.
type NotificationsConfig struct {
	PreferencesPath string `yaml:"preferences_path"`
}

// Inventory backends.
const (
	InventoryYAML   = "yaml"
	InventorySQLite = "sqlite"
)

// InventoryConfig selects the fridge inventory store.
type InventoryConfig struct {
	Backend      string `yaml:"backend"` // yaml, sqlite
	Path         string `yaml:"path"`
	DatabasePath string `yaml:"database_path"`

	// Watch turns inventory file changes into proactive assistant messages
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`

	// LowStockThreshold is the per-category quantity at or below which a
	// "Running low" notification is raised. 0 turns them off.
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

// GetDebounce returns the watcher debounce as a duration.
func (i InventoryConfig) GetDebounce() time.Duration {
	d, err := time.ParseDuration(i.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// WatchedPath returns the file the watcher follows for the configured backend.
func (i InventoryConfig) WatchedPath() string {
	if i.Backend == InventorySQLite {
		return i.DatabasePath
	}
	return i.Path
}

func (i InventoryConfig) validate() error {
	if i.LowStockThreshold < 0 {
		return fmt.Errorf("inventory.low_stock_threshold must not be negative: %d", i.LowStockThreshold)
	}
	switch i.Backend {
	case InventoryYAML:
		if i.Path == "" {
			return fmt.Errorf("inventory.path is required for the yaml backend")
		}
	case InventorySQLite:
		if i.DatabasePath == "" {
			return fmt.Errorf("inventory.database_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid inventory backend: %s (valid: yaml, sqlite)", i.Backend)
	}
	return nil
}
