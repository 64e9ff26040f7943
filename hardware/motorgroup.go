package hardware

import (
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"

	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// motorRecord is the persistent state kept per motor nominally belonging to
// the group. The motor handle itself is rebuilt every poll; only the signed
// port, the last observed connectivity, and the angle offset survive.
type motorRecord struct {
	port               int // signed; negative means reversed
	connectedLastCycle bool
	offset             units.Angle
}

// MotorGroup drives several physically geared-together motors as one logical
// actuator. It keeps reporting a consistent output-shaft angle and velocity
// while individual motors disconnect, reconnect, or are added and removed at
// runtime, each potentially with a different gear cartridge.
//
// Error handling differs from the single-device drivers: as long as one motor
// in the group carries out an operation, the group reports success. A group
// error means every motor failed, which is reported distinctly from "no
// motors configured" and from a duplicate AddMotor.
//
// All public operations are safe for concurrent use; one mutex guards the
// record list and per-record state for the duration of each operation.
type MotorGroup struct {
	mu             sync.Mutex
	bus            vexdev.Bus
	outputVelocity units.AngularVelocity
	brakeMode      BrakeMode
	records        []*motorRecord
	logger         logging.Logger
}

// NewMotorGroup builds a group from signed ports (negative reverses that
// motor) and the group's nominal maximum output velocity after gearing. No
// device I/O happens here; the first operation performs the initial
// reconciliation.
func NewMotorGroup(
	bus vexdev.Bus,
	ports []int,
	outputVelocity units.AngularVelocity,
	logger logging.Logger,
) (*MotorGroup, error) {
	if outputVelocity <= 0 {
		return nil, errors.Errorf("output velocity must be positive, got %v rpm", outputVelocity.ToRPM())
	}
	g := &MotorGroup{
		bus:            bus,
		outputVelocity: outputVelocity,
		brakeMode:      BrakeModeCoast,
		logger:         logger,
	}
	for _, port := range ports {
		abs, _, err := vexutils.ParseReversiblePort(port)
		if err != nil {
			return nil, err
		}
		if g.findRecord(abs) != nil {
			return nil, errors.Wrapf(vexutils.ErrMotorExists, "port %d listed twice", abs)
		}
		g.records = append(g.records, &motorRecord{port: port, connectedLastCycle: true})
	}
	return g, nil
}

// NewMotorGroupFromMotors builds a group around externally constructed motor
// drivers, taking over their signed ports.
func NewMotorGroupFromMotors(
	bus vexdev.Bus,
	motors []*Motor,
	outputVelocity units.AngularVelocity,
	logger logging.Logger,
) (*MotorGroup, error) {
	ports := make([]int, 0, len(motors))
	for _, m := range motors {
		ports = append(ports, m.Port())
	}
	return NewMotorGroup(bus, ports, outputVelocity, logger)
}

// findRecord returns the record with the given absolute port, if any. Caller
// must hold the mutex (or be inside construction).
func (g *MotorGroup) findRecord(absPort int) *motorRecord {
	for _, rec := range g.records {
		p := rec.port
		if p < 0 {
			p = -p
		}
		if p == absPort {
			return rec
		}
	}
	return nil
}

// newMotor builds a handle for a record's port. Ports in records are already
// validated, so this cannot fail.
func (g *MotorGroup) newMotor(port int) *Motor {
	m, err := NewMotor(g.bus, port)
	if err != nil {
		// unreachable: every record's port was validated on entry
		panic(err)
	}
	return m
}

// liveMotor pairs a transient handle with its persistent record so offset
// updates made through the handle can be written back.
type liveMotor struct {
	*Motor
	rec *motorRecord
}

// liveMotors is the polling/reconciliation step every public operation runs
// first. For each record it rebuilds a handle, detects disconnects and
// reconnects, reconfigures motors that came back since the last poll, and
// converges brake modes, returning the motors eligible for this operation.
// The result is for this poll only and is never cached. Caller must hold the
// mutex.
func (g *MotorGroup) liveMotors() []liveMotor {
	live := make([]liveMotor, 0, len(g.records))
	for _, rec := range g.records {
		m := g.newMotor(rec.port)
		m.SetOffset(rec.offset)
		if !m.Connected() {
			rec.connectedLastCycle = false
			continue
		}
		if !rec.connectedLastCycle {
			// the motor silently came back since the last poll: splice it
			// into the group's angle frame before letting it participate
			offset, ok, err := g.reconfigureMotor(rec.port)
			if err != nil {
				g.logger.Debugw("motor reconfiguration failed, retrying next poll",
					"port", rec.port, "error", err)
				continue
			}
			rec.offset = offset
			m.SetOffset(offset)
			if !ok {
				// offset was updated best-effort, but reconfiguration is
				// degraded; keep the motor out of this poll and retry
				g.logger.Debugw("motor reconfiguration degraded, retrying next poll", "port", rec.port)
				continue
			}
			g.logger.Debugw("motor reconfigured after reconnect", "port", rec.port)
		}
		if m.BrakeMode() != g.brakeMode {
			if err := m.SetBrakeMode(g.brakeMode); err != nil {
				continue
			}
		}
		rec.connectedLastCycle = true
		live = append(live, liveMotor{Motor: m, rec: rec})
	}
	return live
}

// reconfigureMotor runs the reconnect protocol for the motor on the given
// signed port: seed its brake mode from the first sibling that reports one,
// then set its angle to the group's current reference angle so the group's
// reported angle stays continuous across the reconnect.
//
// It deliberately never calls public group operations (they would re-enter
// the poll and recurse); all sibling reads are done inline. The returned
// offset is best-effort valid even when ok is false, so a degraded
// reconfiguration bounds the discontinuity to one poll rather than drifting.
// A non-nil error means the offset could not be computed at all.
func (g *MotorGroup) reconfigureMotor(port int) (units.Angle, bool, error) {
	ok := true
	motor := g.newMotor(port)
	abs := port
	if abs < 0 {
		abs = -abs
	}

	// brake mode comes from the first sibling that reports a valid one
	for _, rec := range g.records {
		p := rec.port
		if p < 0 {
			p = -p
		}
		if p == abs {
			continue
		}
		sibling := g.newMotor(rec.port)
		mode := sibling.BrakeMode()
		if mode == BrakeModeInvalid {
			continue
		}
		if err := motor.SetBrakeMode(mode); err != nil {
			ok = false
		}
		break
	}

	// reference angle: ratio-normalized mean over the other connected
	// motors, each with its own stored offset; motors that fail to report
	// are excluded from both sum and divisor
	var sum units.Angle
	count := 0
	for _, rec := range g.records {
		p := rec.port
		if p < 0 {
			p = -p
		}
		if p == abs {
			continue
		}
		sibling := g.newMotor(rec.port)
		sibling.SetOffset(rec.offset)
		if !sibling.Connected() {
			continue
		}
		angle, err := sibling.Angle()
		if err != nil {
			continue
		}
		cartridge := sibling.Cartridge()
		if cartridge == CartridgeInvalid {
			continue
		}
		ratio := g.outputVelocity.ToRPM() / cartridge.RatedVelocity().ToRPM()
		sum += units.Angle(angle.Degrees() * ratio)
		count++
	}
	reference := units.Angle(0)
	if count > 0 {
		reference = sum / units.Angle(count)
	}

	// scale the reference into the reconnecting motor's own frame and store
	// it as the motor's new offset
	cartridge := motor.Cartridge()
	if cartridge == CartridgeInvalid {
		return 0, false, errors.Wrapf(vexutils.ErrInvalidCartridge, "port %d", abs)
	}
	ratio := cartridge.RatedVelocity().ToRPM() / g.outputVelocity.ToRPM()
	if err := motor.SetAngle(units.Angle(reference.Degrees() * ratio)); err != nil {
		return 0, false, err
	}
	return motor.Offset(), ok, nil
}

// groupResult turns an any-success poll outcome into the group's result.
func (g *MotorGroup) groupResult(success bool) error {
	if success {
		return nil
	}
	if len(g.records) == 0 {
		return vexutils.ErrNoMotors
	}
	return vexutils.ErrAllMotorsFailed
}

// Move drives every live motor at a fraction of full power, percent in
// [-1.0, 1.0] (unchecked). Success as long as one motor accepts the command.
func (g *MotorGroup) Move(percent float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	success := false
	for _, m := range g.liveMotors() {
		if m.Move(percent) == nil {
			success = true
		}
	}
	return g.groupResult(success)
}

// MoveVelocity drives every live motor so the group's output shaft turns at
// the given velocity. Each motor's command is rescaled by its own gear ratio,
// so mixed cartridges converge on the same physical speed.
func (g *MotorGroup) MoveVelocity(velocity units.AngularVelocity) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	success := false
	for _, m := range g.liveMotors() {
		cartridge := m.Cartridge()
		if cartridge == CartridgeInvalid {
			continue
		}
		ratio := cartridge.RatedVelocity().ToRPM() / g.outputVelocity.ToRPM()
		if m.MoveVelocity(units.RPM(velocity.ToRPM()*ratio)) == nil {
			success = true
		}
	}
	return g.groupResult(success)
}

// Brake stops every live motor using its configured brake mode.
func (g *MotorGroup) Brake() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	success := false
	for _, m := range g.liveMotors() {
		if m.Brake() == nil {
			success = true
		}
	}
	return g.groupResult(success)
}

// SetBrakeMode sets the group's canonical brake mode. The mode is stored on
// the group; polling propagates it to every connected motor, including ones
// that reconnect later.
func (g *MotorGroup) SetBrakeMode(mode BrakeMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.brakeMode = mode
	g.liveMotors() // propagate now rather than waiting for the next operation
}

// BrakeMode returns the group's canonical brake mode, not a device readback.
// It still polls, for the reconciliation side effects.
func (g *MotorGroup) BrakeMode() BrakeMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.liveMotors()
	return g.brakeMode
}

// Connected reports whether at least one motor in the group is connected.
func (g *MotorGroup) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.liveMotors()) > 0
}

// Size returns the number of currently connected live motors, not the number
// of configured records.
func (g *MotorGroup) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.liveMotors())
}

// Angle returns the gear-ratio-normalized mean angle of the group's output
// shaft across all live motors that report both an angle and a cartridge.
// Motors that fail to report are excluded from both the sum and the divisor.
// Unlike the single-device drivers the group absorbs per-motor failures, so
// the error is always nil; if no motor qualifies the result is units.NoAngle.
func (g *MotorGroup) Angle() (units.Angle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sum units.Angle
	count := 0
	for _, m := range g.liveMotors() {
		angle, err := m.Angle()
		if err != nil {
			continue
		}
		cartridge := m.Cartridge()
		if cartridge == CartridgeInvalid {
			continue
		}
		ratio := g.outputVelocity.ToRPM() / cartridge.RatedVelocity().ToRPM()
		sum += units.Angle(angle.Degrees() * ratio)
		count++
	}
	if count == 0 {
		return units.NoAngle, nil
	}
	return sum / units.Angle(count), nil
}

// SetAngle makes the group report the given output-shaft angle, rescaled into
// each live motor's own frame. Non-blocking; only per-motor offsets change.
func (g *MotorGroup) SetAngle(angle units.Angle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	success := false
	for _, m := range g.liveMotors() {
		cartridge := m.Cartridge()
		if cartridge == CartridgeInvalid {
			continue
		}
		ratio := cartridge.RatedVelocity().ToRPM() / g.outputVelocity.ToRPM()
		if m.SetAngle(units.Angle(angle.Degrees()*ratio)) == nil {
			m.rec.offset = m.Offset()
			success = true
		}
	}
	return g.groupResult(success)
}

// Temperatures returns the temperatures of the live motors that report one.
func (g *MotorGroup) Temperatures() []units.Temperature {
	g.mu.Lock()
	defer g.mu.Unlock()
	var temps []units.Temperature
	for _, m := range g.liveMotors() {
		t, err := m.Temperature()
		if err != nil {
			continue
		}
		temps = append(temps, t)
	}
	return temps
}

// CurrentLimit returns the sum of the live motors' current limits, or
// units.NoCurrent if none reports one.
func (g *MotorGroup) CurrentLimit() units.Current {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sum units.Current
	count := 0
	for _, m := range g.liveMotors() {
		limit, err := m.CurrentLimit()
		if err != nil {
			continue
		}
		sum += limit
		count++
	}
	if count == 0 {
		return units.NoCurrent
	}
	return sum
}

// SetCurrentLimit divides the requested limit evenly across the live motors.
// When only part of the group accepts its share, the full limit is
// redistributed across the motors that did succeed; the narrowing retry is
// capped at the live-set size so it always terminates.
func (g *MotorGroup) SetCurrentLimit(limit units.Current) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	live := g.liveMotors()
	if len(live) == 0 {
		return g.groupResult(false)
	}
	return g.distributeCurrentLimit(limit, live, len(live))
}

func (g *MotorGroup) distributeCurrentLimit(limit units.Current, motors []liveMotor, depth int) error {
	per := units.Amps(limit.ToAmps() / float64(len(motors)))
	accepted := make([]liveMotor, 0, len(motors))
	for _, m := range motors {
		if m.SetCurrentLimit(per) == nil {
			accepted = append(accepted, m)
		}
	}
	switch {
	case len(accepted) == len(motors):
		return nil
	case len(accepted) == 0:
		return vexutils.ErrAllMotorsFailed
	case depth <= 0:
		// partial distribution; the accepted motors carry their last share
		return nil
	default:
		return g.distributeCurrentLimit(limit, accepted, depth-1)
	}
}

// AddMotor adds the motor on the given signed port to the group and runs the
// reconfiguration protocol for it. The record is added even when
// reconfiguration fails, so the motor self-heals on a later poll; the return
// value reports whether reconfiguration succeeded now. Adding a port that is
// already in the group fails with vexutils.ErrMotorExists.
func (g *MotorGroup) AddMotor(port int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	abs, _, err := vexutils.ParseReversiblePort(port)
	if err != nil {
		return err
	}
	if g.findRecord(abs) != nil {
		return errors.Wrapf(vexutils.ErrMotorExists, "port %d", abs)
	}
	offset, ok, err := g.reconfigureMotor(port)
	rec := &motorRecord{port: port, connectedLastCycle: err == nil && ok, offset: offset}
	g.records = append(g.records, rec)
	if err != nil {
		return errors.Wrapf(err, "motor added but not configured")
	}
	if !ok {
		return errors.Wrapf(vexutils.ErrNoData, "motor on port %d added but not fully configured", abs)
	}
	return nil
}

// RemoveMotor removes the motor with the given port (sign ignored) from the
// group. Removing a port that is not in the group is not an error.
func (g *MotorGroup) RemoveMotor(port int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if port < 0 {
		port = -port
	}
	kept := g.records[:0]
	for _, rec := range g.records {
		p := rec.port
		if p < 0 {
			p = -p
		}
		if p != port {
			kept = append(kept, rec)
		}
	}
	g.records = kept
}

// Ports returns the signed ports of every configured record, connected or
// not, in insertion order.
func (g *MotorGroup) Ports() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	ports := make([]int, 0, len(g.records))
	for _, rec := range g.records {
		ports = append(ports, rec.port)
	}
	return ports
}
