package v5imu

import (
	"context"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	"go.viam.com/rdk/components/movementsensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
	rdkutils "go.viam.com/rdk/utils"

	"vex-v5/hardware"
	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/v5brain"
)

// Model is the inertial-sensor model.
var Model = vexutils.V5Family.WithModel("imu")

func init() {
	resource.RegisterComponent(
		movementsensor.API,
		Model,
		resource.Registration[movementsensor.MovementSensor, *Config]{
			Constructor: newImu,
		},
	)
}

type v5Imu struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	hw     *hardware.Imu
}

func newImu(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (movementsensor.MovementSensor, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	brain, err := v5brain.FromDependencies(deps, newConf.Brain)
	if err != nil {
		return nil, err
	}
	hw, err := hardware.NewImu(brain.Bus(), newConf.Port)
	if err != nil {
		return nil, err
	}
	return &v5Imu{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hw,
	}, nil
}

// Orientation returns the yaw measured since power-on (plus any offset) as
// Euler angles. The sensor only measures about its vertical axis, so roll and
// pitch are always zero.
func (i *v5Imu) Orientation(ctx context.Context, extra map[string]interface{}) (spatialmath.Orientation, error) {
	rotation, err := i.hw.Rotation()
	if err != nil {
		return nil, err
	}
	return &spatialmath.EulerAngles{Yaw: rdkutils.DegToRad(rotation.Degrees())}, nil
}

// AngularVelocity returns the yaw rate in degrees per second.
func (i *v5Imu) AngularVelocity(ctx context.Context, extra map[string]interface{}) (spatialmath.AngularVelocity, error) {
	rate, err := i.hw.GyroRate()
	if err != nil {
		return spatialmath.AngularVelocity{}, err
	}
	return spatialmath.AngularVelocity{Z: rate.ToDegPerSec()}, nil
}

// CompassHeading returns the rotation wrapped to [0, 360) degrees.
func (i *v5Imu) CompassHeading(ctx context.Context, extra map[string]interface{}) (float64, error) {
	heading, err := i.hw.Heading()
	if err != nil {
		return 0, err
	}
	return heading.Degrees(), nil
}

// Position is not measured by this sensor.
func (i *v5Imu) Position(ctx context.Context, extra map[string]interface{}) (*geo.Point, float64, error) {
	return nil, 0, movementsensor.ErrMethodUnimplementedPosition
}

// LinearVelocity is not measured by this sensor.
func (i *v5Imu) LinearVelocity(ctx context.Context, extra map[string]interface{}) (r3.Vector, error) {
	return r3.Vector{}, movementsensor.ErrMethodUnimplementedLinearVelocity
}

// LinearAcceleration is not measured by this sensor.
func (i *v5Imu) LinearAcceleration(ctx context.Context, extra map[string]interface{}) (r3.Vector, error) {
	return r3.Vector{}, movementsensor.ErrMethodUnimplementedLinearAcceleration
}

// Accuracy is not reported by this sensor.
func (i *v5Imu) Accuracy(ctx context.Context, extra map[string]interface{}) (*movementsensor.Accuracy, error) {
	return nil, movementsensor.ErrMethodUnimplementedAccuracy
}

// Properties returns what this sensor measures.
func (i *v5Imu) Properties(ctx context.Context, extra map[string]interface{}) (*movementsensor.Properties, error) {
	return &movementsensor.Properties{
		AngularVelocitySupported: true,
		OrientationSupported:     true,
		CompassHeadingSupported:  true,
	}, nil
}

// Readings returns the supported measurements by name.
func (i *v5Imu) Readings(ctx context.Context, extra map[string]interface{}) (map[string]interface{}, error) {
	rotation, err := i.hw.Rotation()
	if err != nil {
		return nil, err
	}
	heading, err := i.hw.Heading()
	if err != nil {
		return nil, err
	}
	rate, err := i.hw.GyroRate()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"rotation_deg":  rotation.Degrees(),
		"heading_deg":   heading.Degrees(),
		"gyro_rate_dps": rate.ToDegPerSec(),
	}, nil
}

// DoCommand exposes the rotation reset:
//
//	{"command": "set_rotation", "degrees": 0}
//	{"command": "connected"}
func (i *v5Imu) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "set_rotation":
		deg, ok := cmd["degrees"].(float64)
		if !ok {
			return nil, errors.New("missing degrees number")
		}
		if err := i.hw.SetRotation(units.AngleFromDeg(deg)); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	case "connected":
		return map[string]interface{}{"connected": i.hw.Connected()}, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

func (i *v5Imu) Close(ctx context.Context) error { return nil }
