// Package v5group adapts the motor group driver onto the Viam motor API. A
// group drives several physically geared-together motors as one logical
// actuator and keeps its reported position continuous while individual motors
// unplug, replug, or are swapped at runtime.
package v5group

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"

	"vex-v5/hardware"
	vexutils "vex-v5/utils"
)

// Config is the config for a motor group.
type Config struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// Ports are the signed smart ports of the group's motors. A negative port
	// reverses that motor. Ports must be distinct.
	Ports []int `json:"ports"`
	// OutputRPM is the group's nominal maximum output velocity after external
	// gearing, in rpm. Per-motor commands and readings are rescaled by each
	// motor's own cartridge against this.
	OutputRPM float64 `json:"output_rpm"`
	// BrakeMode is the group's stopping behavior: coast (default), brake, or
	// hold. It is propagated to every motor, including ones that reconnect
	// later.
	BrakeMode string `json:"brake_mode,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	if conf.Brain == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "brain")
	}
	if len(conf.Ports) == 0 {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "ports")
	}
	seen := map[int]bool{}
	for _, port := range conf.Ports {
		abs, _, err := vexutils.ParseReversiblePort(port)
		if err != nil {
			return nil, nil, resource.NewConfigValidationError(path, err)
		}
		if seen[abs] {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("port %d listed twice", abs))
		}
		seen[abs] = true
	}
	if conf.OutputRPM <= 0 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.Errorf("output_rpm must be positive, got %v", conf.OutputRPM))
	}
	if conf.BrakeMode != "" && hardware.ParseBrakeMode(conf.BrakeMode) == hardware.BrakeModeInvalid {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.Errorf("unknown brake mode %q", conf.BrakeMode))
	}
	return []string{conf.Brain}, nil, nil
}
