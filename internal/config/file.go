// Package config loads quickscroll configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Probe   ProbeConfig   `yaml:"probe"`
	Init    InitConfig    `yaml:"init"`
	Widget  WidgetConfig  `yaml:"widget"`
	ChatGPT ChatGPTConfig `yaml:"chatgpt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Sinks   []SinkConfig  `yaml:"sinks"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Bin              string        `yaml:"bin"`
	Stealth          bool          `yaml:"stealth"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// ProbeConfig controls the wait for the message container.
type ProbeConfig struct {
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxRetries int           `yaml:"max_retries"`
}

// InitConfig holds the delay applied after each page lifecycle signal.
type InitConfig struct {
	DOMContentLoaded time.Duration `yaml:"dom_content_loaded"`
	Load             time.Duration `yaml:"load"`
	AlreadyComplete  time.Duration `yaml:"already_complete"`
}

// WidgetConfig controls the panel.
type WidgetConfig struct {
	HighlightDuration time.Duration `yaml:"highlight_duration"`
	WordLimit         int           `yaml:"word_limit"`
	CharLimit         int           `yaml:"char_limit"`
}

// ChatGPTConfig holds the localized turn headings that mark user turns.
type ChatGPTConfig struct {
	TurnMarkers []string `yaml:"turn_markers"`
}

// HTTPConfig controls the local inspect server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SinkConfig defines where scan results go.
type SinkConfig struct {
	Type    string `yaml:"type"` // stdout | webhook
	URL     string `yaml:"url"`  // for webhook
	Retries int    `yaml:"retries"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns the configuration used without a file.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills every zero field.
func (c *Config) ApplyDefaults() {
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Probe.BaseDelay <= 0 {
		c.Probe.BaseDelay = 500 * time.Millisecond
	}
	if c.Probe.MaxRetries <= 0 {
		c.Probe.MaxRetries = 10
	}
	if c.Init.DOMContentLoaded <= 0 {
		c.Init.DOMContentLoaded = 500 * time.Millisecond
	}
	if c.Init.Load <= 0 {
		c.Init.Load = 1000 * time.Millisecond
	}
	if c.Init.AlreadyComplete <= 0 {
		c.Init.AlreadyComplete = 1500 * time.Millisecond
	}
	if c.Widget.HighlightDuration <= 0 {
		c.Widget.HighlightDuration = 2 * time.Second
	}
	if c.Widget.WordLimit <= 0 {
		c.Widget.WordLimit = 10
	}
	if c.Widget.CharLimit <= 0 {
		c.Widget.CharLimit = 50
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "stdout"}}
	}
	for i := range c.Sinks {
		if c.Sinks[i].Type == "webhook" && c.Sinks[i].Retries <= 0 {
			c.Sinks[i].Retries = 3
		}
	}
}

func (c *Config) validate() error {
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: sinks[%d]: webhook needs a url", i)
			}
		default:
			return fmt.Errorf("config: sinks[%d]: unknown type %q", i, s.Type)
		}
	}
	return nil
}
