package v5group

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	"vex-v5/hardware"
	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/v5brain"
)

// Model is the motor-group model.
var Model = vexutils.V5Family.WithModel("motor-group")

func init() {
	resource.RegisterComponent(
		motor.API,
		Model,
		resource.Registration[motor.Motor, *Config]{
			Constructor: newGroup,
		},
	)
}

type group struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	hw     *hardware.MotorGroup

	mu        sync.Mutex
	lastPower float64
}

func newGroup(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (motor.Motor, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	brain, err := v5brain.FromDependencies(deps, newConf.Brain)
	if err != nil {
		return nil, err
	}
	hw, err := hardware.NewMotorGroup(brain.Bus(), newConf.Ports, units.RPM(newConf.OutputRPM), logger)
	if err != nil {
		return nil, err
	}
	if newConf.BrakeMode != "" {
		hw.SetBrakeMode(hardware.ParseBrakeMode(newConf.BrakeMode))
	}
	return &group{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hw,
	}, nil
}

// SetPower drives every motor in the group open-loop, powerPct in [-1, 1].
// Succeeds as long as one motor accepts the command.
func (g *group) SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
	if err := g.hw.Move(powerPct); err != nil {
		return err
	}
	g.mu.Lock()
	g.lastPower = powerPct
	g.mu.Unlock()
	return nil
}

// SetRPM drives the group's output shaft at the given rpm. Each motor's
// command is rescaled by its own gear cartridge, so mixed cartridges converge
// on the same physical speed.
func (g *group) SetRPM(ctx context.Context, rpm float64, extra map[string]interface{}) error {
	if err := g.hw.MoveVelocity(units.RPM(rpm)); err != nil {
		return err
	}
	g.mu.Lock()
	g.lastPower = rpm
	g.mu.Unlock()
	return nil
}

// GoFor is unsupported; there is no position-profile controller here.
func (g *group) GoFor(ctx context.Context, rpm, revolutions float64, extra map[string]interface{}) error {
	return errors.Errorf("motor group %q does not support GoFor", g.Name().ShortName())
}

// GoTo is unsupported; there is no position-profile controller here.
func (g *group) GoTo(ctx context.Context, rpm, positionRevolutions float64, extra map[string]interface{}) error {
	return errors.Errorf("motor group %q does not support GoTo", g.Name().ShortName())
}

// ResetZeroPosition makes the group's current output-shaft position read as
// the given offset, in revolutions. Only per-motor tracked offsets change;
// nothing moves.
func (g *group) ResetZeroPosition(ctx context.Context, offset float64, extra map[string]interface{}) error {
	return g.hw.SetAngle(units.AngleFromRot(offset))
}

// Position returns the group's output-shaft position in revolutions: the
// gear-ratio-normalized mean over the motors that report one.
func (g *group) Position(ctx context.Context, extra map[string]interface{}) (float64, error) {
	angle, err := g.hw.Angle()
	if err != nil {
		return 0, err
	}
	if angle.IsNoData() {
		return 0, errors.Wrap(vexutils.ErrNoData, "no motor in group reported a position")
	}
	return angle.Rotations(), nil
}

// Properties returns the group's supported properties.
func (g *group) Properties(ctx context.Context, extra map[string]interface{}) (motor.Properties, error) {
	return motor.Properties{PositionReporting: true}, nil
}

// Stop stops every motor using the group's brake mode.
func (g *group) Stop(ctx context.Context, extra map[string]interface{}) error {
	if err := g.hw.Brake(); err != nil {
		return err
	}
	g.mu.Lock()
	g.lastPower = 0
	g.mu.Unlock()
	return nil
}

// IsPowered reports whether the group was last commanded to move, and the
// commanded fraction of full power.
func (g *group) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPower != 0, g.lastPower, nil
}

// IsMoving reports whether the group was last commanded to move.
func (g *group) IsMoving(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPower != 0, nil
}

// DoCommand exposes the group operations the motor API has no verb for:
//
//	{"command": "add_motor", "port": -4}
//	{"command": "remove_motor", "port": 4}
//	{"command": "size"}
//	{"command": "ports"}
//	{"command": "set_brake_mode", "mode": "coast"|"brake"|"hold"}
//	{"command": "get_brake_mode"}
//	{"command": "temperatures"}
//	{"command": "current_limit"}
//	{"command": "set_current_limit", "amps": 10}
func (g *group) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "add_motor":
		portF, ok := cmd["port"].(float64)
		if !ok {
			return nil, errors.New("missing port number")
		}
		if err := g.hw.AddMotor(int(portF)); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	case "remove_motor":
		portF, ok := cmd["port"].(float64)
		if !ok {
			return nil, errors.New("missing port number")
		}
		g.hw.RemoveMotor(int(portF))
		return map[string]interface{}{"ok": true}, nil
	case "size":
		return map[string]interface{}{"size": g.hw.Size()}, nil
	case "ports":
		ports := g.hw.Ports()
		out := make([]interface{}, 0, len(ports))
		for _, p := range ports {
			out = append(out, p)
		}
		return map[string]interface{}{"ports": out}, nil
	case "set_brake_mode":
		modeStr, _ := cmd["mode"].(string)
		mode := hardware.ParseBrakeMode(modeStr)
		if mode == hardware.BrakeModeInvalid {
			return nil, errors.Errorf("unknown brake mode %q", modeStr)
		}
		g.hw.SetBrakeMode(mode)
		return map[string]interface{}{"ok": true}, nil
	case "get_brake_mode":
		return map[string]interface{}{"mode": g.hw.BrakeMode().String()}, nil
	case "temperatures":
		temps := g.hw.Temperatures()
		out := make([]interface{}, 0, len(temps))
		for _, t := range temps {
			out = append(out, t.ToCelsius())
		}
		return map[string]interface{}{"celsius": out}, nil
	case "current_limit":
		limit := g.hw.CurrentLimit()
		if limit.IsNoData() {
			return nil, errors.Wrap(vexutils.ErrNoData, "no motor in group reported a current limit")
		}
		return map[string]interface{}{"amps": limit.ToAmps()}, nil
	case "set_current_limit":
		amps, ok := cmd["amps"].(float64)
		if !ok {
			return nil, errors.New("missing amps number")
		}
		if err := g.hw.SetCurrentLimit(units.Amps(amps)); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

// Close stops the group. A group with no reachable motors still closes
// cleanly.
func (g *group) Close(ctx context.Context) error {
	err := g.Stop(ctx, nil)
	if errors.Is(err, vexutils.ErrNoMotors) || errors.Is(err, vexutils.ErrAllMotorsFailed) {
		return nil
	}
	return err
}
