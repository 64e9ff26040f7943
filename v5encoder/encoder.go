package v5encoder

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/encoder"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	"vex-v5/hardware"
	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/v5brain"
)

// Models for the two encoder flavors.
var (
	RotationModel = vexutils.V5Family.WithModel("rotation")
	AdiModel      = vexutils.V5Family.WithModel("adi-encoder")
)

func init() {
	resource.RegisterComponent(
		encoder.API,
		RotationModel,
		resource.Registration[encoder.Encoder, *Config]{
			Constructor: newRotation,
		},
	)
	resource.RegisterComponent(
		encoder.API,
		AdiModel,
		resource.Registration[encoder.Encoder, *AdiConfig]{
			Constructor: newAdi,
		},
	)
}

// v5Encoder serves both models; the difference is only which hardware driver
// sits behind the capability interface.
type v5Encoder struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	hw     hardware.Encoder
}

func newRotation(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (encoder.Encoder, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	brain, err := v5brain.FromDependencies(deps, newConf.Brain)
	if err != nil {
		return nil, err
	}
	hw, err := hardware.NewRotationSensor(brain.Bus(), newConf.Port)
	if err != nil {
		return nil, err
	}
	return &v5Encoder{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hw,
	}, nil
}

func newAdi(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (encoder.Encoder, error) {
	newConf, err := resource.NativeConfig[*AdiConfig](conf)
	if err != nil {
		return nil, err
	}
	brain, err := v5brain.FromDependencies(deps, newConf.Brain)
	if err != nil {
		return nil, err
	}
	top, err := vexutils.ParseAdiPort(newConf.TopPort)
	if err != nil {
		return nil, err
	}
	bottom, err := vexutils.ParseAdiPort(newConf.BottomPort)
	if err != nil {
		return nil, err
	}
	return &v5Encoder{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		hw:     hardware.NewAdiEncoder(brain.Bus(), top, bottom, newConf.Reversed),
	}, nil
}

// Position returns the unbounded angle since the last reset, in degrees.
func (e *v5Encoder) Position(
	ctx context.Context,
	positionType encoder.PositionType,
	extra map[string]interface{},
) (float64, encoder.PositionType, error) {
	if positionType == encoder.PositionTypeTicks {
		return 0, encoder.PositionTypeUnspecified,
			errors.Errorf("encoder %q does not report ticks", e.Name().ShortName())
	}
	angle, err := e.hw.Angle()
	if err != nil {
		return 0, encoder.PositionTypeUnspecified, err
	}
	return angle.Degrees(), encoder.PositionTypeDegrees, nil
}

// ResetPosition makes the current angle read as zero. Offset-based, so the
// device itself is never written.
func (e *v5Encoder) ResetPosition(ctx context.Context, extra map[string]interface{}) error {
	return e.hw.SetAngle(units.Angle(0))
}

// Properties returns the encoder's supported position reporting.
func (e *v5Encoder) Properties(ctx context.Context, extra map[string]interface{}) (encoder.Properties, error) {
	return encoder.Properties{
		TicksCountSupported:   false,
		AngleDegreesSupported: true,
	}, nil
}

// DoCommand exposes connectivity:
//
//	{"command": "connected"}
func (e *v5Encoder) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "connected":
		return map[string]interface{}{"connected": e.hw.Connected()}, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

func (e *v5Encoder) Close(ctx context.Context) error { return nil }
