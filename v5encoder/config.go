// Package v5encoder adapts the rotation-sensor and three-wire shaft-encoder
// drivers onto the Viam encoder API. Both report angle in degrees.
package v5encoder

import (
	"go.viam.com/rdk/resource"

	vexutils "vex-v5/utils"
)

// Config is the config for a smart-port rotation sensor.
type Config struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// Port is the signed smart port, 1-21. A negative port reverses the
	// measured direction.
	Port int `json:"port"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	if conf.Brain == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "brain")
	}
	if _, _, err := vexutils.ParseReversiblePort(conf.Port); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	return []string{conf.Brain}, nil, nil
}

// AdiConfig is the config for a three-wire optical shaft encoder, wired
// across two adjacent ADI ports.
type AdiConfig struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// TopPort and BottomPort name the ADI port pair, 1-8 or a-h as printed on
	// the brain.
	TopPort    string `json:"top_port"`
	BottomPort string `json:"bottom_port"`
	// Reversed flips the measured direction.
	Reversed bool `json:"reversed,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *AdiConfig) Validate(path string) ([]string, []string, error) {
	if conf.Brain == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "brain")
	}
	if _, err := vexutils.ParseAdiPort(conf.TopPort); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	if _, err := vexutils.ParseAdiPort(conf.BottomPort); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	return []string{conf.Brain}, nil, nil
}
