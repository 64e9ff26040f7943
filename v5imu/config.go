// Package v5imu adapts the inertial-sensor driver onto the Viam movement
// sensor API. The sensor reports yaw orientation, yaw rate, and a compass
// heading derived from the unbounded rotation.
package v5imu

import (
	"go.viam.com/rdk/resource"

	vexutils "vex-v5/utils"
)

// Config is the config for an inertial sensor.
type Config struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// Port is the smart port, 1-21.
	Port int `json:"port"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	if conf.Brain == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "brain")
	}
	if err := vexutils.ValidateSmartPort(conf.Port); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	return []string{conf.Brain}, nil, nil
}
