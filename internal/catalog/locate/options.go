package locate

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

var ErrInvalidOptions = errors.New("invalid locate options")

// Options controls how locate and updatedb are invoked. It is decoded from
// the backend's free-form options in the config file.
type Options struct {
	// Command is the locate binary.
	Command string `mapstructure:"command"`
	// Database is passed to locate -d and watched for rebuilds. Empty means
	// the tool's default database.
	Database       string `mapstructure:"database"`
	NullTerminated bool   `mapstructure:"null_terminated"`
	IgnoreCase     bool   `mapstructure:"ignore_case"`
	Basename       bool   `mapstructure:"basename"`
	// Limit caps the matches per query, 0 for none.
	Limit int `mapstructure:"limit"`

	// UpdateCommand rebuilds the database; "updatedb" when empty.
	UpdateCommand  []string      `mapstructure:"update_command"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	UpdateTimeout  time.Duration `mapstructure:"update_timeout"`

	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	GracePeriod  time.Duration `mapstructure:"grace_period"`

	// Prune holds gitignore-style patterns; matching paths are dropped.
	Prune []string `mapstructure:"prune"`
}

// DefaultOptions returns the options used for keys missing from the config.
func DefaultOptions() Options {
	return Options{
		Command:        "locate",
		NullTerminated: true,
		IgnoreCase:     true,
		UpdateInterval: time.Minute,
		UpdateTimeout:  10 * time.Minute,
		ProbeTimeout:   5 * time.Second,
		GracePeriod:    500 * time.Millisecond,
	}
}

// DecodeOptions overlays raw on DefaultOptions. Durations may be given as
// strings such as "30s"; unknown keys are rejected.
func DecodeOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(raw) == 0 {
		return opts, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return opts, opts.Validate()
}

// Validate checks the options for values locate cannot work with.
func (o Options) Validate() error {
	switch {
	case o.Command == "":
		return fmt.Errorf("%w: command is required", ErrInvalidOptions)
	case o.Limit < 0:
		return fmt.Errorf("%w: limit cannot be negative: %d", ErrInvalidOptions, o.Limit)
	case o.UpdateInterval < 0, o.UpdateTimeout < 0, o.ProbeTimeout < 0, o.GracePeriod < 0:
		return fmt.Errorf("%w: durations cannot be negative", ErrInvalidOptions)
	}
	for _, p := range o.Prune {
		if p == "" {
			return fmt.Errorf("%w: empty prune pattern", ErrInvalidOptions)
		}
	}
	return nil
}

func (o Options) updateCommand() []string {
	if len(o.UpdateCommand) == 0 {
		return []string{"updatedb"}
	}
	return o.UpdateCommand
}
