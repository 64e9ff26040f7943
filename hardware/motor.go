package hardware

import (
	"math"

	"github.com/pkg/errors"

	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// voltage ceilings of the two motor classes, in millivolts. Both classes
// cover the same velocity range, so percent power scales to the ceiling.
const (
	v5MaxVoltageMV  = 12000
	expMaxVoltageMV = 7200
)

// the encoder on the motor's own shaft measures 50 counts per revolution;
// the cartridge gears it, so ticks per output rotation depend on the
// cartridge: 50 * 3600 / rated rpm.
const baseEncoderScale = 50.0 * 3600.0

// Motor is the driver for a single smart motor. It is a cheap reconstructable
// view over a port, not a long-lived owned resource: holders are expected to
// build a fresh Motor per polling cycle and re-apply any tracked offset via
// SetOffset.
//
// The angle a Motor reports is independent of whatever native encoder unit
// the device happens to be configured in: reads go through raw tick
// conversion, and SetAngle only adjusts the tracked additive offset, so no
// privileged "set absolute position" device call is needed.
type Motor struct {
	dev      vexdev.MotorDevice
	port     int // signed; negative means reversed
	reversed bool
	offset   units.Angle
}

// NewMotor returns a driver for the motor on the given signed port. A
// negative port reverses the motor's direction.
func NewMotor(bus vexdev.Bus, port int) (*Motor, error) {
	abs, reversed, err := vexutils.ParseReversiblePort(port)
	if err != nil {
		return nil, err
	}
	return &Motor{dev: bus.Motor(abs), port: port, reversed: reversed}, nil
}

// Port returns the signed port the motor was constructed with.
func (m *Motor) Port() int { return m.port }

// Reversed reports whether the motor's direction is reversed.
func (m *Motor) Reversed() bool { return m.reversed }

// Connected implements Encoder.
func (m *Motor) Connected() bool { return m.dev.Installed() }

// Type probes the motor's wattage class. There is no introspection call for
// this, so we check whether a cartridge change away from green is honored,
// which only the 11W motor permits; the original cartridge is restored
// afterwards.
func (m *Motor) Type() MotorType {
	oldGearing, err := m.dev.Gearing()
	if err != nil {
		return MotorTypeInvalid
	}
	if err := m.dev.SetGearing(vexdev.GearsetRed); err != nil {
		return MotorTypeInvalid
	}
	newGearing, err := m.dev.Gearing()
	if err != nil {
		return MotorTypeInvalid
	}
	if newGearing != vexdev.GearsetGreen {
		if err := m.dev.SetGearing(oldGearing); err != nil {
			return MotorTypeInvalid
		}
		return MotorTypeV5
	}
	return MotorTypeEXP
}

// Move drives the motor open-loop at a fraction of full power, percent in
// [-1.0, 1.0]. The range is not checked; out-of-range values are forwarded
// to the device as-is.
func (m *Motor) Move(percent float64) error {
	if m.reversed {
		percent = -percent
	}
	switch m.Type() {
	case MotorTypeV5:
		return m.dev.MoveVoltage(int(percent * v5MaxVoltageMV))
	case MotorTypeEXP:
		return m.dev.MoveVoltage(int(percent * expMaxVoltageMV))
	default:
		return errors.Wrapf(vexutils.ErrNoData, "motor port %d: cannot determine motor type", m.port)
	}
}

// MoveVelocity drives the motor closed-loop at the given velocity, measured
// at the motor's own output shaft.
func (m *Motor) MoveVelocity(velocity units.AngularVelocity) error {
	rpm := velocity.ToRPM()
	if m.reversed {
		rpm = -rpm
	}
	// the device takes integer rpm
	return m.dev.MoveVelocity(int(math.Round(rpm)))
}

// Brake stops the motor using its configured brake mode.
func (m *Motor) Brake() error { return m.dev.Brake() }

// BrakeMode returns the motor's brake mode, or BrakeModeInvalid if it could
// not be read.
func (m *Motor) BrakeMode() BrakeMode {
	raw, err := m.dev.BrakeSetting()
	if err != nil {
		return BrakeModeInvalid
	}
	return brakeFromRaw(raw)
}

// SetBrakeMode sets the motor's brake mode.
func (m *Motor) SetBrakeMode(mode BrakeMode) error {
	raw := brakeToRaw(mode)
	if raw == vexdev.BrakeInvalid {
		return errors.Errorf("motor port %d: invalid brake mode", m.port)
	}
	return m.dev.SetBrakeSetting(raw)
}

// Cartridge returns the installed gear cartridge, or CartridgeInvalid if it
// could not be read.
func (m *Motor) Cartridge() Cartridge {
	gearing, err := m.dev.Gearing()
	if err != nil {
		return CartridgeInvalid
	}
	return cartridgeFromGearset(gearing)
}

// rawCounts reads the encoder in raw ticks regardless of the device's
// configured native unit.
func (m *Motor) rawCounts() (float64, error) {
	cartridge := m.Cartridge()
	if cartridge == CartridgeInvalid {
		return 0, errors.Wrapf(vexutils.ErrInvalidCartridge, "motor port %d", m.port)
	}
	position, err := m.dev.Position()
	if err != nil {
		return 0, errors.Wrapf(err, "motor port %d", m.port)
	}
	nativeUnits, err := m.dev.EncoderUnits()
	if err != nil {
		return 0, errors.Wrapf(err, "motor port %d", m.port)
	}
	tpr := baseEncoderScale / float64(cartridge)
	switch nativeUnits {
	case vexdev.UnitsDegrees:
		return position / 360.0 * tpr, nil
	case vexdev.UnitsRotations:
		return position * tpr, nil
	case vexdev.UnitsCounts:
		return position, nil
	default:
		return 0, errors.Wrapf(vexutils.ErrNoData, "motor port %d: unknown encoder units", m.port)
	}
}

// rawAngle is the device-reported shaft angle before the tracked offset.
func (m *Motor) rawAngle() (units.Angle, error) {
	cartridge := m.Cartridge()
	if cartridge == CartridgeInvalid {
		return 0, errors.Wrapf(vexutils.ErrInvalidCartridge, "motor port %d", m.port)
	}
	counts, err := m.rawCounts()
	if err != nil {
		return 0, err
	}
	tpr := baseEncoderScale / float64(cartridge)
	angle := units.AngleFromRot(counts / tpr)
	if m.reversed {
		angle = -angle
	}
	return angle, nil
}

// Angle implements Encoder. The returned angle is the raw device angle plus
// the tracked offset.
func (m *Motor) Angle() (units.Angle, error) {
	raw, err := m.rawAngle()
	if err != nil {
		return 0, err
	}
	return raw + m.offset, nil
}

// SetAngle implements Encoder. Only the tracked offset changes; the device
// is read but never written, so this never blocks.
func (m *Motor) SetAngle(angle units.Angle) error {
	raw, err := m.rawAngle()
	if err != nil {
		return err
	}
	m.offset = angle - raw
	return nil
}

// Offset returns the tracked additive offset.
func (m *Motor) Offset() units.Angle { return m.offset }

// SetOffset restores a previously tracked offset onto this handle.
func (m *Motor) SetOffset(offset units.Angle) { m.offset = offset }

// CurrentLimit returns the motor's configured current limit.
func (m *Motor) CurrentLimit() (units.Current, error) {
	ma, err := m.dev.CurrentLimit()
	if err != nil {
		return 0, errors.Wrapf(err, "motor port %d", m.port)
	}
	return units.MilliAmps(float64(ma)), nil
}

// SetCurrentLimit sets the motor's current limit.
func (m *Motor) SetCurrentLimit(limit units.Current) error {
	return m.dev.SetCurrentLimit(int(math.Round(limit.ToMilliAmps())))
}

// Temperature returns the motor's internal temperature.
func (m *Motor) Temperature() (units.Temperature, error) {
	c, err := m.dev.Temperature()
	if err != nil {
		return 0, errors.Wrapf(err, "motor port %d", m.port)
	}
	return units.Celsius(c), nil
}
