package quickscroll

import (
	"github.com/hazyhaar/quickscroll/internal/config"
)

// Config is the top-level configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome.
type BrowserConfig = config.BrowserConfig

// ProbeConfig controls the wait for the message container.
type ProbeConfig = config.ProbeConfig

// InitConfig holds the per-signal initialisation delays.
type InitConfig = config.InitConfig

// WidgetConfig controls the panel.
type WidgetConfig = config.WidgetConfig

// SinkConfig defines where scan results go.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	return config.Default()
}
