// Package v5distance adapts the distance-sensor driver onto the Viam sensor
// API.
package v5distance

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	"vex-v5/hardware"
	vexutils "vex-v5/utils"
	"vex-v5/v5brain"
)

// Model is the distance-sensor model.
var Model = vexutils.V5Family.WithModel("distance")

func init() {
	resource.RegisterComponent(
		sensor.API,
		Model,
		resource.Registration[sensor.Sensor, *Config]{
			Constructor: newDistance,
		},
	)
}

// Config is the config for a distance sensor.
type Config struct {
	// Brain is the name of the brain component that owns the bus.
	Brain string `json:"brain"`
	// Port is the smart port, 1-21.
	Port int `json:"port"`
	// OffsetMM is an additive mounting offset applied to every distance
	// reading.
	OffsetMM float64 `json:"offset_mm,omitempty"`
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

type v5Distance struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	hw     *hardware.DistanceSensor
}

func newDistance(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (sensor.Sensor, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	brain, err := v5brain.FromDependencies(deps, newConf.Brain)
	if err != nil {
		return nil, err
	}
	hw, err := hardware.NewDistanceSensor(brain.Bus(), newConf.Port)
	if err != nil {
		return nil, err
	}
	hw.SetOffsetMM(newConf.OffsetMM)
	return &v5Distance{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hw,
	}, nil
}

// Readings returns the current distance and the approach speed of the nearest
// object.
func (d *v5Distance) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	mm, err := d.hw.DistanceMM()
	if err != nil {
		return nil, err
	}
	velocity, err := d.hw.ObjectVelocity()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"distance_mm":         mm,
		"object_velocity_m_s": velocity,
	}, nil
}

// DoCommand exposes connectivity and the mounting offset:
//
//	{"command": "connected"}
//	{"command": "set_offset", "mm": 25}
func (d *v5Distance) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "connected":
		return map[string]interface{}{"connected": d.hw.Connected()}, nil
	case "set_offset":
		mm, ok := cmd["mm"].(float64)
		if !ok {
			return nil, errors.New("missing mm number")
		}
		d.hw.SetOffsetMM(mm)
		return map[string]interface{}{"ok": true}, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

func (d *v5Distance) Close(ctx context.Context) error { return nil }
