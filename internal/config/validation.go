package config

import (
	"fmt"
	"log/slog"
)

// Validate checks every value and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Catalog.Backend == "" {
		errs = append(errs, "catalog.backend is required")
	}

	if c.Session.MaxBatch < 1 {
		errs = append(errs, "session.max_batch must be >= 1")
	}
	if c.Session.PollIntervalMs < 1 {
		errs = append(errs, "session.poll_interval_ms must be >= 1")
	}

	if c.UI.MaxResults < 1 {
		errs = append(errs, "ui.max_results must be >= 1")
	}
	if c.UI.ColorPrimary == "" {
		errs = append(errs, "ui.color_primary is required")
	}
	if c.UI.ColorMatch == "" {
		errs = append(errs, "ui.color_match is required")
	}
	if c.UI.ColorDim == "" {
		errs = append(errs, "ui.color_dim is required")
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
