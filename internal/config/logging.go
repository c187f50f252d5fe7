package config

import "fmt"

// LoggingConfig configures the file logs under .fridgechat/logs. Nothing is
// written unless DebugMode is set.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, text
	DebugMode  bool            `yaml:"debug_mode"` // master switch
	Categories map[string]bool `yaml:"categories"` // e.g. reveal: false
}

// JSONFormat reports whether log lines are JSON encoded.
func (c *LoggingConfig) JSONFormat() bool {
	return c.Format == "json"
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, text)", c.Format)
	}
	return nil
}
