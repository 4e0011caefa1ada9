package config

import "time"

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Catalog CatalogConfig `json:"catalog"`
	Session SessionConfig `json:"session"`
	UI      UIConfig      `json:"ui"`
	Logging LoggingConfig `json:"logging"`
}

type CatalogConfig struct {
	Backend string `json:"backend"` // Default: "locate"
	// Backend-specific options, decoded by the backend (see locate.Options).
	Options map[string]any `json:"options"`
}

type SessionConfig struct {
	MaxBatch       int `json:"max_batch"`        // Default: 256
	PollIntervalMs int `json:"poll_interval_ms"` // Default: 50
}

// PollInterval returns PollIntervalMs as a duration.
func (s SessionConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

type UIConfig struct {
	MaxResults   int    `json:"max_results"`   // Default: 200
	ColorPrimary string `json:"color_primary"` // Default: "63"
	ColorMatch   string `json:"color_match"`   // Default: "212"
	ColorDim     string `json:"color_dim"`     // Default: "241"
	WatchIndex   bool   `json:"watch_index"`   // Default: true
}

type LoggingConfig struct {
	Level string `json:"level"` // Default: "info"
	File  string `json:"file"`  // Default: "" (interactive mode discards logs)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Backend: "locate",
		},
		Session: SessionConfig{
			MaxBatch:       256,
			PollIntervalMs: 50,
		},
		UI: UIConfig{
			MaxResults:   200,
			ColorPrimary: "63",
			ColorMatch:   "212",
			ColorDim:     "241",
			WatchIndex:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
