package hardware

import (
	"math"

	"github.com/pkg/errors"

	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// Imu is the driver for the smart-port inertial sensor, exposing the Gyro
// capability. Rotation is unbounded; Heading wraps it to [0, 360).
type Imu struct {
	dev    vexdev.InertialDevice
	port   int
	offset units.Angle
}

// NewImu returns a driver for the inertial sensor on the given port.
func NewImu(bus vexdev.Bus, port int) (*Imu, error) {
	if err := vexutils.ValidateSmartPort(port); err != nil {
		return nil, err
	}
	return &Imu{dev: bus.Inertial(port), port: port}, nil
}

// Port returns the port the sensor was constructed with.
func (i *Imu) Port() int { return i.port }

// Connected implements Gyro.
func (i *Imu) Connected() bool { return i.dev.Installed() }

// Rotation implements Gyro.
func (i *Imu) Rotation() (units.Angle, error) {
	deg, err := i.dev.Rotation()
	if err != nil {
		return 0, errors.Wrapf(err, "imu port %d", i.port)
	}
	return units.AngleFromDeg(deg) + i.offset, nil
}

// SetRotation implements Gyro; only the tracked offset changes.
func (i *Imu) SetRotation(rotation units.Angle) error {
	deg, err := i.dev.Rotation()
	if err != nil {
		return errors.Wrapf(err, "imu port %d", i.port)
	}
	i.offset = rotation - units.AngleFromDeg(deg)
	return nil
}

// Heading is the rotation wrapped to [0, 360) degrees.
func (i *Imu) Heading() (units.Angle, error) {
	rotation, err := i.Rotation()
	if err != nil {
		return 0, err
	}
	deg := math.Mod(rotation.Degrees(), 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return units.AngleFromDeg(deg), nil
}

// GyroRate implements Gyro.
func (i *Imu) GyroRate() (units.AngularVelocity, error) {
	dps, err := i.dev.GyroRate()
	if err != nil {
		return 0, errors.Wrapf(err, "imu port %d", i.port)
	}
	return units.DegPerSec(dps), nil
}
