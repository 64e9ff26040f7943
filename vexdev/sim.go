package vexdev

import (
	"sync"

	"github.com/pkg/errors"
)

// Wattage is the physical motor class of a simulated motor. The two classes
// share the same velocity range but have different voltage ceilings, and only
// the 11W motor accepts cartridges other than green.
type Wattage int

// Simulated motor classes.
const (
	Wattage11 Wattage = iota // 11W smart motor, swappable cartridges
	Wattage5                 // 5.5W motor, fixed green cartridge
)

// SimBus is an in-memory Bus used by the sim brain backend and by tests.
// Devices are attached to ports explicitly and can be disconnected and
// reconnected at runtime to exercise the recovery paths of the drivers
// layered on top.
type SimBus struct {
	mu        sync.Mutex
	motors    map[int]*SimMotor
	rotations map[int]*SimRotation
	inertials map[int]*SimInertial
	distances map[int]*SimDistance
	adi       map[[2]int]*SimAdiEncoder
}

// NewSimBus returns an empty simulated bus.
func NewSimBus() *SimBus {
	return &SimBus{
		motors:    make(map[int]*SimMotor),
		rotations: make(map[int]*SimRotation),
		inertials: make(map[int]*SimInertial),
		distances: make(map[int]*SimDistance),
		adi:       make(map[[2]int]*SimAdiEncoder),
	}
}

// Close implements Bus.
func (b *SimBus) Close() error { return nil }

// AttachMotor plugs a simulated motor into the given port and returns it.
func (b *SimBus) AttachMotor(port int, gearing Gearset, class Wattage) *SimMotor {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := &SimMotor{
		bus:       b,
		installed: true,
		gearing:   gearing,
		class:     class,
		units:     UnitsDegrees,
		brake:     BrakeCoast,
	}
	b.motors[port] = m
	return m
}

// AttachRotation plugs a simulated rotation sensor into the given port.
func (b *SimBus) AttachRotation(port int) *SimRotation {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &SimRotation{bus: b, installed: true}
	b.rotations[port] = r
	return r
}

// AttachInertial plugs a simulated inertial sensor into the given port.
func (b *SimBus) AttachInertial(port int) *SimInertial {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := &SimInertial{bus: b, installed: true}
	b.inertials[port] = i
	return i
}

// AttachDistance plugs a simulated distance sensor into the given port.
func (b *SimBus) AttachDistance(port int) *SimDistance {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &SimDistance{bus: b, installed: true}
	b.distances[port] = d
	return d
}

// AttachAdiEncoder wires a simulated shaft encoder across an ADI port pair.
func (b *SimBus) AttachAdiEncoder(topPort, bottomPort int) *SimAdiEncoder {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := &SimAdiEncoder{bus: b}
	b.adi[[2]int{topPort, bottomPort}] = e
	return e
}

// SimMotorOn returns the simulated motor on the given port, if any.
func (b *SimBus) SimMotorOn(port int) (*SimMotor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.motors[port]
	return m, ok
}

// SimRotationOn returns the simulated rotation sensor on the given port.
func (b *SimBus) SimRotationOn(port int) (*SimRotation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rotations[port]
	return r, ok
}

// SimInertialOn returns the simulated inertial sensor on the given port.
func (b *SimBus) SimInertialOn(port int) (*SimInertial, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.inertials[port]
	return i, ok
}

// SimDistanceOn returns the simulated distance sensor on the given port.
func (b *SimBus) SimDistanceOn(port int) (*SimDistance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.distances[port]
	return d, ok
}

// Motor implements Bus.
func (b *SimBus) Motor(port int) MotorDevice { return motorHandle{bus: b, port: port} }

// Rotation implements Bus.
func (b *SimBus) Rotation(port int) RotationDevice { return rotationHandle{bus: b, port: port} }

// Inertial implements Bus.
func (b *SimBus) Inertial(port int) InertialDevice { return inertialHandle{bus: b, port: port} }

// Distance implements Bus.
func (b *SimBus) Distance(port int) DistanceDevice { return distanceHandle{bus: b, port: port} }

// AdiEncoder implements Bus.
func (b *SimBus) AdiEncoder(topPort, bottomPort int) AdiEncoderDevice {
	return adiHandle{bus: b, top: topPort, bottom: bottomPort}
}

// SimMotor is the state behind one simulated motor. All fields are guarded by
// the bus mutex; mutate it only through its methods.
type SimMotor struct {
	bus       *SimBus
	installed bool
	gearing   Gearset
	class     Wattage
	units     EncoderUnits
	brake     Brake
	counts    float64 // raw encoder ticks
	limitMA   int

	// last commands issued, for test assertions
	LastVoltageMV int
	LastRPM       int
	Braked        bool

	// failure injection
	FailGearing  bool
	FailBrake    bool
	FailPosition bool
	FailMove     bool
	FailLimit    bool
}

// Disconnect simulates unplugging the motor.
func (m *SimMotor) Disconnect() {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	m.installed = false
}

// Connect simulates replugging the motor. As on real hardware, the encoder
// zeroes and the firmware brake setting resets to coast; the physical
// cartridge is untouched.
func (m *SimMotor) Connect() {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	m.installed = true
	m.counts = 0
	m.brake = BrakeCoast
}

// ticksPerRotation for the installed cartridge. The bare encoder measures 50
// counts per revolution of its own shaft; the cartridge gears it up.
func (m *SimMotor) ticksPerRotation() float64 {
	return 50.0 * 3600.0 / float64(m.gearing)
}

// SetPositionDeg sets the encoder so that it reads the given angle, in
// degrees of the motor's output shaft.
func (m *SimMotor) SetPositionDeg(deg float64) {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	m.counts = deg / 360.0 * m.ticksPerRotation()
}

// PositionDeg reads back the simulated shaft angle in degrees.
func (m *SimMotor) PositionDeg() float64 {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	return m.counts / m.ticksPerRotation() * 360.0
}

// SetEncoderUnits sets the native unit the device reports positions in.
func (m *SimMotor) SetEncoderUnits(u EncoderUnits) {
	m.bus.mu.Lock()
	defer m.bus.mu.Unlock()
	m.units = u
}

type motorHandle struct {
	bus  *SimBus
	port int
}

// get returns the attached, installed motor or an error.
func (h motorHandle) get() (*SimMotor, error) {
	m, ok := h.bus.motors[h.port]
	if !ok || !m.installed {
		return nil, errors.Wrapf(ErrNoDevice, "motor port %d", h.port)
	}
	return m, nil
}

func (h motorHandle) Installed() bool {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, ok := h.bus.motors[h.port]
	return ok && m.installed
}

func (h motorHandle) MoveVoltage(mv int) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailMove {
		return errors.Errorf("motor port %d: move rejected", h.port)
	}
	m.LastVoltageMV = mv
	m.Braked = false
	return nil
}

func (h motorHandle) MoveVelocity(rpm int) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailMove {
		return errors.Errorf("motor port %d: move rejected", h.port)
	}
	m.LastRPM = rpm
	m.Braked = false
	return nil
}

func (h motorHandle) Brake() error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailMove {
		return errors.Errorf("motor port %d: brake rejected", h.port)
	}
	m.Braked = true
	return nil
}

func (h motorHandle) BrakeSetting() (Brake, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return BrakeInvalid, err
	}
	if m.FailBrake {
		return BrakeInvalid, errors.Errorf("motor port %d: brake setting unreadable", h.port)
	}
	return m.brake, nil
}

func (h motorHandle) SetBrakeSetting(b Brake) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailBrake {
		return errors.Errorf("motor port %d: brake setting rejected", h.port)
	}
	m.brake = b
	return nil
}

func (h motorHandle) Gearing() (Gearset, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return GearsetInvalid, err
	}
	if m.FailGearing {
		return GearsetInvalid, errors.Errorf("motor port %d: gearing unreadable", h.port)
	}
	return m.gearing, nil
}

func (h motorHandle) SetGearing(g Gearset) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailGearing {
		return errors.Errorf("motor port %d: gearing rejected", h.port)
	}
	// the 5.5W motor silently keeps its fixed green cartridge
	if m.class == Wattage11 {
		m.gearing = g
	}
	return nil
}

func (h motorHandle) EncoderUnits() (EncoderUnits, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return UnitsInvalid, err
	}
	return m.units, nil
}

func (h motorHandle) Position() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return 0, err
	}
	if m.FailPosition {
		return 0, errors.Errorf("motor port %d: position unreadable", h.port)
	}
	switch m.units {
	case UnitsDegrees:
		return m.counts / m.ticksPerRotation() * 360.0, nil
	case UnitsRotations:
		return m.counts / m.ticksPerRotation(), nil
	default:
		return m.counts, nil
	}
}

func (h motorHandle) CurrentLimit() (int, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return 0, err
	}
	if m.FailLimit {
		return 0, errors.Errorf("motor port %d: current limit unreadable", h.port)
	}
	return m.limitMA, nil
}

func (h motorHandle) SetCurrentLimit(ma int) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return err
	}
	if m.FailLimit {
		return errors.Errorf("motor port %d: current limit rejected", h.port)
	}
	m.limitMA = ma
	return nil
}

func (h motorHandle) Temperature() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	m, err := h.get()
	if err != nil {
		return 0, err
	}
	// simulated motors run cool
	return 25.0, nil
}

// SimRotation is the state behind one simulated rotation sensor.
type SimRotation struct {
	bus       *SimBus
	installed bool
	centideg  float64
}

// Disconnect simulates unplugging the sensor.
func (r *SimRotation) Disconnect() {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	r.installed = false
}

// Connect simulates replugging the sensor. The rotation sensor keeps its
// position across power loss.
func (r *SimRotation) Connect() {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	r.installed = true
}

// SetPositionDeg sets the sensed angle in degrees.
func (r *SimRotation) SetPositionDeg(deg float64) {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	r.centideg = deg * 100.0
}

type rotationHandle struct {
	bus  *SimBus
	port int
}

func (h rotationHandle) Installed() bool {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	r, ok := h.bus.rotations[h.port]
	return ok && r.installed
}

func (h rotationHandle) Position() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	r, ok := h.bus.rotations[h.port]
	if !ok || !r.installed {
		return 0, errors.Wrapf(ErrNoDevice, "rotation port %d", h.port)
	}
	return r.centideg, nil
}

// SimInertial is the state behind one simulated inertial sensor.
type SimInertial struct {
	bus       *SimBus
	installed bool
	rotation  float64 // degrees, unbounded
	gyroRate  float64 // deg/s
}

// Disconnect simulates unplugging the sensor.
func (i *SimInertial) Disconnect() {
	i.bus.mu.Lock()
	defer i.bus.mu.Unlock()
	i.installed = false
}

// Connect simulates replugging the sensor.
func (i *SimInertial) Connect() {
	i.bus.mu.Lock()
	defer i.bus.mu.Unlock()
	i.installed = true
}

// SetRotation sets the sensed unbounded heading in degrees.
func (i *SimInertial) SetRotation(deg float64) {
	i.bus.mu.Lock()
	defer i.bus.mu.Unlock()
	i.rotation = deg
}

// SetGyroRate sets the sensed yaw rate in degrees per second.
func (i *SimInertial) SetGyroRate(dps float64) {
	i.bus.mu.Lock()
	defer i.bus.mu.Unlock()
	i.gyroRate = dps
}

type inertialHandle struct {
	bus  *SimBus
	port int
}

func (h inertialHandle) Installed() bool {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	i, ok := h.bus.inertials[h.port]
	return ok && i.installed
}

func (h inertialHandle) Rotation() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	i, ok := h.bus.inertials[h.port]
	if !ok || !i.installed {
		return 0, errors.Wrapf(ErrNoDevice, "inertial port %d", h.port)
	}
	return i.rotation, nil
}

func (h inertialHandle) GyroRate() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	i, ok := h.bus.inertials[h.port]
	if !ok || !i.installed {
		return 0, errors.Wrapf(ErrNoDevice, "inertial port %d", h.port)
	}
	return i.gyroRate, nil
}

// SimDistance is the state behind one simulated distance sensor.
type SimDistance struct {
	bus       *SimBus
	installed bool
	distMM    float64
	objVel    float64
}

// Disconnect simulates unplugging the sensor.
func (d *SimDistance) Disconnect() {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	d.installed = false
}

// Connect simulates replugging the sensor.
func (d *SimDistance) Connect() {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	d.installed = true
}

// SetDistanceMM sets the sensed distance in millimeters.
func (d *SimDistance) SetDistanceMM(mm float64) {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	d.distMM = mm
}

// SetObjectVelocity sets the sensed approach velocity in m/s.
func (d *SimDistance) SetObjectVelocity(v float64) {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	d.objVel = v
}

type distanceHandle struct {
	bus  *SimBus
	port int
}

func (h distanceHandle) Installed() bool {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	d, ok := h.bus.distances[h.port]
	return ok && d.installed
}

func (h distanceHandle) Distance() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	d, ok := h.bus.distances[h.port]
	if !ok || !d.installed {
		return 0, errors.Wrapf(ErrNoDevice, "distance port %d", h.port)
	}
	return d.distMM, nil
}

func (h distanceHandle) ObjectVelocity() (float64, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	d, ok := h.bus.distances[h.port]
	if !ok || !d.installed {
		return 0, errors.Wrapf(ErrNoDevice, "distance port %d", h.port)
	}
	return d.objVel, nil
}

// SimAdiEncoder is the state behind one simulated shaft encoder. ADI devices
// have no install detection; reads always succeed once wired.
type SimAdiEncoder struct {
	bus   *SimBus
	ticks int
}

// SetTicks sets the tick count.
func (e *SimAdiEncoder) SetTicks(ticks int) {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()
	e.ticks = ticks
}

type adiHandle struct {
	bus         *SimBus
	top, bottom int
}

func (h adiHandle) Value() (int, error) {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()
	e, ok := h.bus.adi[[2]int{h.top, h.bottom}]
	if !ok {
		return 0, errors.Wrapf(ErrNoDevice, "adi ports %d/%d", h.top, h.bottom)
	}
	return e.ticks, nil
}
