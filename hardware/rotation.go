package hardware

import (
	"github.com/pkg/errors"

	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// RotationSensor is the driver for the smart-port rotation sensor. The device
// reports centidegrees; SetAngle is offset-based, like the motor driver.
type RotationSensor struct {
	dev      vexdev.RotationDevice
	port     int
	reversed bool
	offset   units.Angle
}

// NewRotationSensor returns a driver for the rotation sensor on the given
// signed port. A negative port reverses the measured direction.
func NewRotationSensor(bus vexdev.Bus, port int) (*RotationSensor, error) {
	abs, reversed, err := vexutils.ParseReversiblePort(port)
	if err != nil {
		return nil, err
	}
	return &RotationSensor{dev: bus.Rotation(abs), port: port, reversed: reversed}, nil
}

// Port returns the signed port the sensor was constructed with.
func (r *RotationSensor) Port() int { return r.port }

// Connected implements Encoder.
func (r *RotationSensor) Connected() bool { return r.dev.Installed() }

func (r *RotationSensor) rawAngle() (units.Angle, error) {
	centideg, err := r.dev.Position()
	if err != nil {
		return 0, errors.Wrapf(err, "rotation sensor port %d", r.port)
	}
	angle := units.AngleFromDeg(centideg / 100.0)
	if r.reversed {
		angle = -angle
	}
	return angle, nil
}

// Angle implements Encoder.
func (r *RotationSensor) Angle() (units.Angle, error) {
	raw, err := r.rawAngle()
	if err != nil {
		return 0, err
	}
	return raw + r.offset, nil
}

// SetAngle implements Encoder.
func (r *RotationSensor) SetAngle(angle units.Angle) error {
	raw, err := r.rawAngle()
	if err != nil {
		return err
	}
	r.offset = angle - raw
	return nil
}
