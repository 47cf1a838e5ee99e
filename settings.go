package monitor

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	// DefaultEnabled is the explicit state of a new root monitor, default is true.
	DefaultEnabled = true
	// DefaultStrictSplits is the behavior on stopping a Split twice, default
	// is false: log a warning instead of panicking.
	DefaultStrictSplits = false
)

// The Settings type is used to configure gomonitor. The Default Manager reads
// its settings from environment variables.
type Settings struct {
	// Explicit Enablement of the root monitor, and so the default for the
	// whole tree.
	Enabled bool `envconfig:"GOMONITOR_ENABLED" default:"true"`
	// Panic instead of logging when a Split is stopped more than once.
	StrictSplits bool `envconfig:"GOMONITOR_STRICT_SPLITS" default:"false"`
}

// DefaultSettings returns the Settings used when the environment sets nothing.
func DefaultSettings() Settings {
	return Settings{
		Enabled:      DefaultEnabled,
		StrictSplits: DefaultStrictSplits,
	}
}

// GetSettings returns the Settings read from the environment.
func GetSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return DefaultSettings(), fmt.Errorf("gomonitor: reading settings: %w", err)
	}
	return s, nil
}
