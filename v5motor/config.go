// Package v5motor adapts the single smart-motor driver onto the Viam motor
// API.
package v5motor

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"

	"vex-v5/hardware"
	vexutils "vex-v5/utils"
)

// Config is the config for a single smart motor.
type Config struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// Port is the signed smart port, 1-21. A negative port reverses the
	// motor's direction.
	Port int `json:"port"`
	// BrakeMode is the stopping behavior: coast (default), brake, or hold.
	BrakeMode string `json:"brake_mode,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	if conf.Brain == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "brain")
	}
	if _, _, err := vexutils.ParseReversiblePort(conf.Port); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	if conf.BrakeMode != "" && hardware.ParseBrakeMode(conf.BrakeMode) == hardware.BrakeModeInvalid {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.Errorf("unknown brake mode %q", conf.BrakeMode))
	}
	return []string{conf.Brain}, nil, nil
}
