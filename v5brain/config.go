// Package v5brain implements the brain component that owns the smart-port
// bus. Every other component in the module names a brain and gets its device
// handles from it.
package v5brain

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// Config is the config for a brain.
type Config struct {
	// Backend selects the bus implementation. Only "sim" is available today;
	// it is also the default.
	Backend string `json:"backend,omitempty"`
	// Profile is an optional path to a YAML robot profile describing the
	// devices to pre-populate the simulated bus with.
	Profile string `json:"profile,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	switch conf.Backend {
	case "", "sim":
	default:
		return nil, nil, resource.NewConfigValidationError(path,
			errors.Errorf("unknown backend %q", conf.Backend))
	}
	return nil, nil, nil
}
