// Package hardware is the device-independent capability layer over the raw
// smart-port devices: the single-motor driver, the motor group, and the
// encoder/gyro/distance drivers. Everything here is built on vexdev handles
// and carries no Viam resource machinery; the v5* packages adapt these types
// onto Viam component APIs.
package hardware

import (
	"vex-v5/units"
	"vex-v5/vexdev"
)

// Encoder is the minimal capability set every angle-producing device
// supports.
type Encoder interface {
	// Connected reports whether the device is currently reachable.
	Connected() bool
	// Angle returns the unbounded relative angle measured since the last
	// reset. Implementations return an error for an unreachable device.
	Angle() (units.Angle, error)
	// SetAngle makes the device report the given angle from now on. It is
	// non-blocking; implementations adjust a tracked offset rather than
	// commanding the device.
	SetAngle(units.Angle) error
}

// Gyro is the capability set of heading devices.
type Gyro interface {
	Connected() bool
	// Rotation is the unbounded heading, clockwise positive.
	Rotation() (units.Angle, error)
	SetRotation(units.Angle) error
	// GyroRate is the current yaw rate.
	GyroRate() (units.AngularVelocity, error)
}

var (
	_ Encoder = (*Motor)(nil)
	_ Encoder = (*MotorGroup)(nil)
	_ Encoder = (*RotationSensor)(nil)
	_ Encoder = (*AdiEncoder)(nil)
	_ Gyro    = (*Imu)(nil)
)

// BrakeMode is how a motor behaves when stopped.
type BrakeMode int

// Brake modes.
const (
	BrakeModeCoast BrakeMode = iota
	BrakeModeBrake
	BrakeModeHold
	BrakeModeInvalid
)

// String implements fmt.Stringer.
func (m BrakeMode) String() string {
	switch m {
	case BrakeModeCoast:
		return "coast"
	case BrakeModeBrake:
		return "brake"
	case BrakeModeHold:
		return "hold"
	default:
		return "invalid"
	}
}

// ParseBrakeMode is the inverse of String.
func ParseBrakeMode(s string) BrakeMode {
	switch s {
	case "coast":
		return BrakeModeCoast
	case "brake":
		return BrakeModeBrake
	case "hold":
		return BrakeModeHold
	default:
		return BrakeModeInvalid
	}
}

// Cartridge is a motor's gear cartridge, identified by its rated output
// speed. The cartridge is physical and swappable, so drivers re-read it on
// every operation instead of caching it.
type Cartridge int

// Cartridges.
const (
	CartridgeInvalid Cartridge = 0
	CartridgeRed     Cartridge = 100
	CartridgeGreen   Cartridge = 200
	CartridgeBlue    Cartridge = 600
)

// RatedVelocity is the cartridge's nominal maximum output speed.
func (c Cartridge) RatedVelocity() units.AngularVelocity {
	return units.RPM(float64(c))
}

func cartridgeFromGearset(g vexdev.Gearset) Cartridge {
	switch g {
	case vexdev.GearsetRed:
		return CartridgeRed
	case vexdev.GearsetGreen:
		return CartridgeGreen
	case vexdev.GearsetBlue:
		return CartridgeBlue
	default:
		return CartridgeInvalid
	}
}

// MotorType is the physical wattage class of a motor. The classes share a
// velocity range but have different voltage ceilings.
type MotorType int

// Motor types.
const (
	MotorTypeV5 MotorType = iota // 11W
	MotorTypeEXP                 // 5.5W
	MotorTypeInvalid
)

func brakeToRaw(m BrakeMode) vexdev.Brake {
	switch m {
	case BrakeModeCoast:
		return vexdev.BrakeCoast
	case BrakeModeBrake:
		return vexdev.BrakeBrake
	case BrakeModeHold:
		return vexdev.BrakeHold
	default:
		return vexdev.BrakeInvalid
	}
}

func brakeFromRaw(b vexdev.Brake) BrakeMode {
	switch b {
	case vexdev.BrakeCoast:
		return BrakeModeCoast
	case vexdev.BrakeBrake:
		return BrakeModeBrake
	case vexdev.BrakeHold:
		return BrakeModeHold
	default:
		return BrakeModeInvalid
	}
}
