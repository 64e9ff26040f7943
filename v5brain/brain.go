package v5brain

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// Model is the brain model.
var Model = vexutils.V5Family.WithModel("brain")

func init() {
	resource.RegisterComponent(
		generic.API,
		Model,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newBrain,
		},
	)
}

// Brain owns the smart-port bus. Sibling components resolve their Brain
// through FromDependencies and request device handles from Bus.
type Brain struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	bus    vexdev.Bus

	// sim is non-nil when the backend is simulated, which is what the
	// DoCommand connect/disconnect verbs act on.
	sim *vexdev.SimBus
}

func newBrain(
	ctx context.Context,
	_ resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (resource.Resource, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	var sim *vexdev.SimBus
	if newConf.Profile != "" {
		profile, err := vexdev.LoadProfile(newConf.Profile)
		if err != nil {
			return nil, err
		}
		sim, err = vexdev.NewSimBusFromProfile(profile)
		if err != nil {
			return nil, err
		}
		logger.CInfow(ctx, "simulated bus populated from profile", "profile", newConf.Profile)
	} else {
		sim = vexdev.NewSimBus()
	}

	return &Brain{
		Named:  conf.ResourceName().AsNamed(),
		logger: logger,
		bus:    sim,
		sim:    sim,
	}, nil
}

// Bus returns the brain's smart-port bus.
func (b *Brain) Bus() vexdev.Bus { return b.bus }

// DoCommand flips simulated device connectivity at runtime:
//
//	{"command": "disconnect", "device": "motor", "port": 3}
//	{"command": "connect", "device": "motor", "port": 3}
//
// Device kinds are motor, rotation, inertial and distance.
func (b *Brain) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	command, ok := cmd["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch command {
	case "connect", "disconnect":
		if b.sim == nil {
			return nil, errors.New("bus is not simulated")
		}
		device, _ := cmd["device"].(string)
		portF, ok := cmd["port"].(float64)
		if !ok {
			return nil, errors.New("missing port number")
		}
		if err := b.flipSimDevice(device, int(portF), command == "connect"); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}

func (b *Brain) flipSimDevice(device string, port int, connect bool) error {
	switch device {
	case "motor":
		m, ok := b.sim.SimMotorOn(port)
		if !ok {
			return errors.Errorf("no simulated motor on port %d", port)
		}
		if connect {
			m.Connect()
		} else {
			m.Disconnect()
		}
	case "rotation":
		r, ok := b.sim.SimRotationOn(port)
		if !ok {
			return errors.Errorf("no simulated rotation sensor on port %d", port)
		}
		if connect {
			r.Connect()
		} else {
			r.Disconnect()
		}
	case "inertial":
		i, ok := b.sim.SimInertialOn(port)
		if !ok {
			return errors.Errorf("no simulated inertial sensor on port %d", port)
		}
		if connect {
			i.Connect()
		} else {
			i.Disconnect()
		}
	case "distance":
		d, ok := b.sim.SimDistanceOn(port)
		if !ok {
			return errors.Errorf("no simulated distance sensor on port %d", port)
		}
		if connect {
			d.Connect()
		} else {
			d.Disconnect()
		}
	default:
		return errors.Errorf("unknown device kind %q", device)
	}
	return nil
}

// Close shuts the bus down.
func (b *Brain) Close(ctx context.Context) error {
	var err error
	if b.bus != nil {
		err = multierr.Combine(err, b.bus.Close())
	}
	return err
}

// FromDependencies resolves the brain named name from a component's
// dependencies.
func FromDependencies(deps resource.Dependencies, name string) (*Brain, error) {
	res, ok := deps[generic.Named(name)]
	if !ok {
		return nil, errors.Errorf("brain %q missing from dependencies", name)
	}
	brain, ok := res.(*Brain)
	if !ok {
		return nil, errors.Errorf("resource %q is not a v5 brain", name)
	}
	return brain, nil
}
