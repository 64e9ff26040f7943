package hardware

import (
	"github.com/pkg/errors"

	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// DistanceSensor is the driver for the smart-port distance sensor. An
// additive offset lets the caller account for where the sensor is mounted
// relative to the robot's reference point.
type DistanceSensor struct {
	dev      vexdev.DistanceDevice
	port     int
	offsetMM float64
}

// NewDistanceSensor returns a driver for the distance sensor on the given
// port.
func NewDistanceSensor(bus vexdev.Bus, port int) (*DistanceSensor, error) {
	if err := vexutils.ValidateSmartPort(port); err != nil {
		return nil, err
	}
	return &DistanceSensor{dev: bus.Distance(port), port: port}, nil
}

// Port returns the port the sensor was constructed with.
func (d *DistanceSensor) Port() int { return d.port }

// Connected reports whether the sensor is currently reachable.
func (d *DistanceSensor) Connected() bool { return d.dev.Installed() }

// DistanceMM is the distance to the nearest object in millimeters, plus the
// configured mounting offset.
func (d *DistanceSensor) DistanceMM() (float64, error) {
	mm, err := d.dev.Distance()
	if err != nil {
		return 0, errors.Wrapf(err, "distance sensor port %d", d.port)
	}
	return mm + d.offsetMM, nil
}

// SetOffsetMM sets the mounting offset added to every reading.
func (d *DistanceSensor) SetOffsetMM(mm float64) { d.offsetMM = mm }

// ObjectVelocity is the approach speed of the nearest object in m/s.
func (d *DistanceSensor) ObjectVelocity() (float64, error) {
	v, err := d.dev.ObjectVelocity()
	if err != nil {
		return 0, errors.Wrapf(err, "distance sensor port %d", d.port)
	}
	return v, nil
}
