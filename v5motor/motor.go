package v5motor

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

// Model is the single smart-motor model.
var Model = vexutils.V5Family.WithModel("motor")

func init() {
	resource.RegisterComponent(
		motor.API,
		Model,
		resource.Registration[motor.Motor, *Config]{
			Constructor: newV5Motor,
		},
	)
}

type v5Motor struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	hw     *hardware.Motor

	mu        sync.Mutex
	lastPower float64
}

func newV5Motor(
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
	hw, err := hardware.NewMotor(brain.Bus(), newConf.Port)
	if err != nil {
		return nil, err
	}
	if newConf.BrakeMode != "" {
		if err := hw.SetBrakeMode(hardware.ParseBrakeMode(newConf.BrakeMode)); err != nil {
			logger.CWarnw(ctx, "could not apply configured brake mode, motor may be unplugged",
				"port", newConf.Port, "error", err)
		}
	}
	return &v5Motor{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hw,
	}, nil
}

// SetPower drives the motor open-loop, powerPct in [-1, 1].
func (m *v5Motor) SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
	if err := m.hw.Move(powerPct); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastPower = powerPct
	m.mu.Unlock()
	return nil
}

// SetRPM drives the motor closed-loop at the given rpm, measured at the
// motor's output shaft.
func (m *v5Motor) SetRPM(ctx context.Context, rpm float64, extra map[string]interface{}) error {
	if err := m.hw.MoveVelocity(units.RPM(rpm)); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastPower = rpm
	m.mu.Unlock()
	return nil
}

// GoFor is unsupported; there is no position-profile controller here.
func (m *v5Motor) GoFor(ctx context.Context, rpm, revolutions float64, extra map[string]interface{}) error {
	return errors.Errorf("motor %q does not support GoFor", m.Name().ShortName())
}

// GoTo is unsupported; there is no position-profile controller here.
func (m *v5Motor) GoTo(ctx context.Context, rpm, positionRevolutions float64, extra map[string]interface{}) error {
	return errors.Errorf("motor %q does not support GoTo", m.Name().ShortName())
}

// ResetZeroPosition makes the current position read as the given offset, in
// revolutions. Only a tracked offset changes; the motor never moves.
func (m *v5Motor) ResetZeroPosition(ctx context.Context, offset float64, extra map[string]interface{}) error {
	return m.hw.SetAngle(units.AngleFromRot(offset))
}

// Position returns the motor's position in revolutions since the last reset.
func (m *v5Motor) Position(ctx context.Context, extra map[string]interface{}) (float64, error) {
	angle, err := m.hw.Angle()
	if err != nil {
		return 0, err
	}
	return angle.Rotations(), nil
}

// Properties returns the motor's supported properties.
func (m *v5Motor) Properties(ctx context.Context, extra map[string]interface{}) (motor.Properties, error) {
	return motor.Properties{PositionReporting: true}, nil
}

// Stop stops the motor using its configured brake mode.
func (m *v5Motor) Stop(ctx context.Context, extra map[string]interface{}) error {
	if err := m.hw.Brake(); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastPower = 0
	m.mu.Unlock()
	return nil
}

// IsPowered reports whether the motor was last commanded to move, and the
// commanded fraction of full power.
func (m *v5Motor) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPower != 0, m.lastPower, nil
}

// IsMoving reports whether the motor was last commanded to move.
func (m *v5Motor) IsMoving(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPower != 0, nil
}

// DoCommand exposes the driver operations the motor API has no verb for:
//
//	{"command": "set_brake_mode", "mode": "coast"|"brake"|"hold"}
//	{"command": "get_brake_mode"}
//	{"command": "temperature"}
//	{"command": "current_limit"}
//	{"command": "set_current_limit", "amps": 2.5}
//	{"command": "motor_type"}
func (m *v5Motor) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "set_brake_mode":
		modeStr, _ := cmd["mode"].(string)
		mode := hardware.ParseBrakeMode(modeStr)
		if mode == hardware.BrakeModeInvalid {
			return nil, errors.Errorf("unknown brake mode %q", modeStr)
		}
		if err := m.hw.SetBrakeMode(mode); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	case "get_brake_mode":
		return map[string]interface{}{"mode": m.hw.BrakeMode().String()}, nil
	case "temperature":
		temp, err := m.hw.Temperature()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"celsius": temp.ToCelsius()}, nil
	case "current_limit":
		limit, err := m.hw.CurrentLimit()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"amps": limit.ToAmps()}, nil
	case "set_current_limit":
		amps, ok := cmd["amps"].(float64)
		if !ok {
			return nil, errors.New("missing amps number")
		}
		if err := m.hw.SetCurrentLimit(units.Amps(amps)); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	case "motor_type":
		switch m.hw.Type() {
		case hardware.MotorTypeV5:
			return map[string]interface{}{"type": "11W"}, nil
		case hardware.MotorTypeEXP:
			return map[string]interface{}{"type": "5.5W"}, nil
		default:
			return nil, errors.Wrapf(vexutils.ErrNoData, "motor type unknown")
		}
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

// Close stops the motor.
func (m *v5Motor) Close(ctx context.Context) error {
	return m.Stop(ctx, nil)
}
