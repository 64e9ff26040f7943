// Package vexdev defines the low-level smart-port device primitives the
// hardware layer is built on.
//
// The interfaces here mirror the raw device surface the V5 brain firmware
// exposes per port. A Bus hands out cheap handles keyed by port number; a
// handle stays valid across unplug/replug of the physical device, its calls
// simply start failing while nothing (or the wrong device kind) is on the
// port. Drivers in the hardware package are expected to re-request handles
// freely rather than hold long-lived state in them.
package vexdev

import "github.com/pkg/errors"

// Gearset is the raw gear cartridge identity reported by a motor. The value
// of each cartridge is its rated output speed in rpm.
type Gearset int

// Gearsets reported by V5 smart motors.
const (
	GearsetInvalid Gearset = 0
	GearsetRed     Gearset = 100
	GearsetGreen   Gearset = 200
	GearsetBlue    Gearset = 600
)

// Brake is the raw stopping behavior of a motor.
type Brake int

// Raw brake settings.
const (
	BrakeCoast Brake = iota
	BrakeBrake
	BrakeHold
	BrakeInvalid
)

// EncoderUnits is the native position unit a motor's internal encoder is
// configured to report in. User code may have configured any of the three, so
// drivers must handle all of them.
type EncoderUnits int

// Native encoder units.
const (
	UnitsDegrees EncoderUnits = iota
	UnitsRotations
	UnitsCounts
	UnitsInvalid
)

// ErrNoDevice is returned by device handles when no device of the expected
// kind is currently plugged into the port.
var ErrNoDevice = errors.New("no device on port")

// MotorDevice is the raw handle for one smart motor.
type MotorDevice interface {
	// Installed reports whether a motor is currently plugged into the port.
	Installed() bool
	// MoveVoltage drives the motor open-loop at the given millivolts.
	MoveVoltage(mv int) error
	// MoveVelocity drives the motor closed-loop at the given rpm, measured at
	// the motor's own output shaft.
	MoveVelocity(rpm int) error
	// Brake stops the motor using its configured brake setting.
	Brake() error
	BrakeSetting() (Brake, error)
	SetBrakeSetting(Brake) error
	// Gearing reports the installed cartridge.
	Gearing() (Gearset, error)
	// SetGearing tells the firmware which cartridge is installed. Only the
	// 11W motor honors settings other than green.
	SetGearing(Gearset) error
	EncoderUnits() (EncoderUnits, error)
	// Position is the relative position in the device's native encoder units.
	Position() (float64, error)
	// CurrentLimit and SetCurrentLimit are in milliamps.
	CurrentLimit() (int, error)
	SetCurrentLimit(ma int) error
	// Temperature is in degrees celsius.
	Temperature() (float64, error)
}

// RotationDevice is the raw handle for one rotation sensor.
type RotationDevice interface {
	Installed() bool
	// Position is the unbounded relative position in centidegrees.
	Position() (float64, error)
}

// InertialDevice is the raw handle for one inertial sensor.
type InertialDevice interface {
	Installed() bool
	// Rotation is the unbounded heading in degrees, clockwise positive.
	Rotation() (float64, error)
	// GyroRate is the yaw rate in degrees per second.
	GyroRate() (float64, error)
}

// DistanceDevice is the raw handle for one distance sensor.
type DistanceDevice interface {
	Installed() bool
	// Distance is to the nearest object, in millimeters.
	Distance() (float64, error)
	// ObjectVelocity is the approach speed of the nearest object in m/s.
	ObjectVelocity() (float64, error)
}

// AdiEncoderDevice is the raw handle for a three-wire optical shaft encoder
// occupying a pair of ADI ports.
type AdiEncoderDevice interface {
	// Value is the tick count since the last reset. The encoder produces 360
	// ticks per rotation.
	Value() (int, error)
}

// Bus hands out device handles by port. Implementations must be safe for
// concurrent use; handles themselves are cheap views that may be requested
// per operation.
type Bus interface {
	Motor(port int) MotorDevice
	Rotation(port int) RotationDevice
	Inertial(port int) InertialDevice
	Distance(port int) DistanceDevice
	AdiEncoder(topPort, bottomPort int) AdiEncoderDevice
	Close() error
}
