package vexutils

import "github.com/pkg/errors"

// The hardware layer reports failures from this closed set so callers can
// tell "every motor failed" apart from "nothing is configured" and from a
// duplicate add, instead of collapsing them into one sentinel.
var (
	// ErrDisconnected reports that the device behind a handle is unplugged.
	ErrDisconnected = errors.New("device not connected")
	// ErrInvalidCartridge reports that a motor's gear cartridge could not be
	// read, so no gear ratio can be computed for it.
	ErrInvalidCartridge = errors.New("gear cartridge unreadable")
	// ErrNoData reports that a read produced no usable value.
	ErrNoData = errors.New("no data")
	// ErrAllMotorsFailed reports that no motor in a group accepted an
	// operation.
	ErrAllMotorsFailed = errors.New("all motors in group failed")
	// ErrNoMotors reports that a group has no motors configured at all.
	ErrNoMotors = errors.New("no motors configured")
	// ErrMotorExists reports an attempt to add a port already in a group.
	ErrMotorExists = errors.New("motor already in group")
)
