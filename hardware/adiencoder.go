package hardware

import (
	"github.com/pkg/errors"

	"vex-v5/units"
	"vex-v5/vexdev"
)

// adiTicksPerRotation is fixed for the three-wire optical shaft encoder.
const adiTicksPerRotation = 360.0

// AdiEncoder is the driver for the three-wire optical shaft encoder wired
// across a pair of ADI ports. ADI devices have no presence detection, so
// Connected is true whenever reads succeed.
type AdiEncoder struct {
	dev      vexdev.AdiEncoderDevice
	top      int
	bottom   int
	reversed bool
	offset   units.Angle
}

// NewAdiEncoder returns a driver for the encoder on the given normalized ADI
// port pair (1-8, see vexutils.ParseAdiPort).
func NewAdiEncoder(bus vexdev.Bus, topPort, bottomPort int, reversed bool) *AdiEncoder {
	return &AdiEncoder{
		dev:      bus.AdiEncoder(topPort, bottomPort),
		top:      topPort,
		bottom:   bottomPort,
		reversed: reversed,
	}
}

// Connected implements Encoder.
func (e *AdiEncoder) Connected() bool {
	_, err := e.dev.Value()
	return err == nil
}

func (e *AdiEncoder) rawAngle() (units.Angle, error) {
	ticks, err := e.dev.Value()
	if err != nil {
		return 0, errors.Wrapf(err, "adi encoder ports %d/%d", e.top, e.bottom)
	}
	angle := units.AngleFromRot(float64(ticks) / adiTicksPerRotation)
	if e.reversed {
		angle = -angle
	}
	return angle, nil
}

// Angle implements Encoder.
func (e *AdiEncoder) Angle() (units.Angle, error) {
	raw, err := e.rawAngle()
	if err != nil {
		return 0, err
	}
	return raw + e.offset, nil
}

// SetAngle implements Encoder.
func (e *AdiEncoder) SetAngle(angle units.Angle) error {
	raw, err := e.rawAngle()
	if err != nil {
		return err
	}
	e.offset = angle - raw
	return nil
}
