// Package vexutils contains shared helpers for the VEX V5 module: port
// validation and the closed error set of the hardware layer.
package vexutils

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// V5Family is the model family for the VEX V5 module.
var V5Family = resource.NewModelFamily("vexhal", "v5")

// smart ports on the brain are numbered 1 through 21
const (
	minSmartPort = 1
	maxSmartPort = 21
)

// ValidateSmartPort checks that port is a valid smart-port number. Port
// numbers in configs are checked here at config-validation time; dynamic
// ports (AddMotor at runtime) are checked by the same function.
func ValidateSmartPort(port int) error {
	if port < minSmartPort || port > maxSmartPort {
		return errors.Errorf("smart port %d out of range [%d, %d]", port, minSmartPort, maxSmartPort)
	}
	return nil
}

// ParseReversiblePort splits a signed port into its absolute port number and
// reversal flag. A negative port means the device's direction is reversed.
func ParseReversiblePort(port int) (abs int, reversed bool, err error) {
	abs, reversed = port, false
	if port < 0 {
		abs, reversed = -port, true
	}
	if err := ValidateSmartPort(abs); err != nil {
		return 0, false, err
	}
	return abs, reversed, nil
}

// ParseAdiPort normalizes an ADI (three-wire) port to a number in [1, 8].
// Accepted forms are the numbers 1-8 and the letters a-h (either case), as
// printed on the brain.
func ParseAdiPort(port string) (int, error) {
	if len(port) != 1 {
		return 0, errors.Errorf("adi port %q is not a single digit or letter", port)
	}
	c := port[0]
	switch {
	case c >= '1' && c <= '8':
		return int(c - '0'), nil
	case c >= 'a' && c <= 'h':
		return int(c-'a') + 1, nil
	case c >= 'A' && c <= 'H':
		return int(c-'A') + 1, nil
	default:
		return 0, errors.Errorf("adi port %q out of range (1-8, a-h)", port)
	}
}
