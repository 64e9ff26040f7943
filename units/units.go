// Package units defines the numeric quantity types used by the hardware layer.
//
// Quantities are plain float64 wrappers with explicit conversions. Angle and
// Current carry a positive-infinity sentinel used by drivers to report
// "no data" instead of an error on read paths.
package units

import "math"

// Angle is an unbounded rotation angle. The underlying value is in degrees.
type Angle float64

// NoAngle is the "no data" sentinel returned by angle reads that could not
// reach any device.
var NoAngle = Angle(math.Inf(1))

// AngleFromDeg returns an Angle of d degrees.
func AngleFromDeg(d float64) Angle { return Angle(d) }

// AngleFromRot returns an Angle of r full rotations.
func AngleFromRot(r float64) Angle { return Angle(r * 360.0) }

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 { return float64(a) }

// Rotations returns the angle in full rotations.
func (a Angle) Rotations() float64 { return float64(a) / 360.0 }

// IsNoData reports whether the angle is the "no data" sentinel.
func (a Angle) IsNoData() bool { return math.IsInf(float64(a), 1) }

// AngularVelocity is a rotational speed. The underlying value is in rpm.
type AngularVelocity float64

// RPM returns an AngularVelocity of r revolutions per minute.
func RPM(r float64) AngularVelocity { return AngularVelocity(r) }

// DegPerSec returns an AngularVelocity of d degrees per second.
func DegPerSec(d float64) AngularVelocity { return AngularVelocity(d / 6.0) }

// ToRPM returns the velocity in revolutions per minute.
func (v AngularVelocity) ToRPM() float64 { return float64(v) }

// ToDegPerSec returns the velocity in degrees per second.
func (v AngularVelocity) ToDegPerSec() float64 { return float64(v) * 6.0 }

// Current is an electrical current. The underlying value is in amps.
type Current float64

// NoCurrent is the "no data" sentinel for current reads.
var NoCurrent = Current(math.Inf(1))

// Amps returns a Current of a amps.
func Amps(a float64) Current { return Current(a) }

// MilliAmps returns a Current of ma milliamps.
func MilliAmps(ma float64) Current { return Current(ma / 1000.0) }

// ToAmps returns the current in amps.
func (c Current) ToAmps() float64 { return float64(c) }

// ToMilliAmps returns the current in milliamps.
func (c Current) ToMilliAmps() float64 { return float64(c) * 1000.0 }

// IsNoData reports whether the current is the "no data" sentinel.
func (c Current) IsNoData() bool { return math.IsInf(float64(c), 1) }

// Temperature is a temperature. The underlying value is in degrees celsius.
type Temperature float64

// Celsius returns a Temperature of c degrees celsius.
func Celsius(c float64) Temperature { return Temperature(c) }

// ToCelsius returns the temperature in degrees celsius.
func (t Temperature) ToCelsius() float64 { return float64(t) }
