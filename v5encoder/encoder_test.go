package v5encoder

import (
	"context"
	"testing"

	"go.viam.com/rdk/components/encoder"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/test"

	"vex-v5/v5brain"
	"vex-v5/vexdev"
)

func simBrainDeps(t *testing.T) (resource.Dependencies, *vexdev.SimBus) {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	brainReg, ok := resource.LookupRegistration(generic.API, v5brain.Model)
	test.That(t, ok, test.ShouldBeTrue)
	res, err := brainReg.Constructor(
		ctx,
		nil,
		resource.Config{Name: "brain", ConvertedAttributes: &v5brain.Config{}},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	brain := res.(*v5brain.Brain)
	return resource.Dependencies{generic.Named("brain"): res}, brain.Bus().(*vexdev.SimBus)
}

func TestEncoderConfigValidate(t *testing.T) {
	deps, _, err := (&Config{Brain: "brain", Port: -5}).Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"brain"})
	_, _, err = (&Config{Port: 5}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = (&Config{Brain: "brain", Port: 30}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	deps, _, err = (&AdiConfig{Brain: "brain", TopPort: "a", BottomPort: "b"}).Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"brain"})
	_, _, err = (&AdiConfig{TopPort: "a", BottomPort: "b"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = (&AdiConfig{Brain: "brain", TopPort: "z", BottomPort: "b"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = (&AdiConfig{Brain: "brain", TopPort: "a", BottomPort: "9"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRotationEncoder(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	deps, bus := simBrainDeps(t)
	sim := bus.AttachRotation(5)
	sim.SetPositionDeg(90)

	reg, ok := resource.LookupRegistration(encoder.API, RotationModel)
	test.That(t, ok, test.ShouldBeTrue)
	res, err := reg.Constructor(
		ctx,
		deps,
		resource.Config{
			Name:                "lift-encoder",
			ConvertedAttributes: &Config{Brain: "brain", Port: 5},
		},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	enc := res.(encoder.Encoder)

	t.Run("reports degrees", func(t *testing.T) {
		props, err := enc.Properties(ctx, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, props.AngleDegreesSupported, test.ShouldBeTrue)
		test.That(t, props.TicksCountSupported, test.ShouldBeFalse)

		pos, posType, err := enc.Position(ctx, encoder.PositionTypeUnspecified, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, posType, test.ShouldEqual, encoder.PositionTypeDegrees)
		test.That(t, pos, test.ShouldAlmostEqual, 90)

		_, _, err = enc.Position(ctx, encoder.PositionTypeTicks, nil)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("reset zeroes the reading", func(t *testing.T) {
		test.That(t, enc.ResetPosition(ctx, nil), test.ShouldBeNil)
		pos, _, err := enc.Position(ctx, encoder.PositionTypeDegrees, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos, test.ShouldAlmostEqual, 0)

		sim.SetPositionDeg(135)
		pos, _, err = enc.Position(ctx, encoder.PositionTypeDegrees, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos, test.ShouldAlmostEqual, 45)
	})

	t.Run("connectivity via do command", func(t *testing.T) {
		out, err := enc.DoCommand(ctx, map[string]interface{}{"command": "connected"})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out["connected"], test.ShouldBeTrue)

		sim.Disconnect()
		out, err = enc.DoCommand(ctx, map[string]interface{}{"command": "connected"})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out["connected"], test.ShouldBeFalse)
		_, _, err = enc.Position(ctx, encoder.PositionTypeDegrees, nil)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestAdiEncoderComponent(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	deps, bus := simBrainDeps(t)
	sim := bus.AttachAdiEncoder(1, 2)
	sim.SetTicks(180)

	reg, ok := resource.LookupRegistration(encoder.API, AdiModel)
	test.That(t, ok, test.ShouldBeTrue)
	res, err := reg.Constructor(
		ctx,
		deps,
		resource.Config{
			Name:                "flywheel-encoder",
			ConvertedAttributes: &AdiConfig{Brain: "brain", TopPort: "a", BottomPort: "b", Reversed: true},
		},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	enc := res.(encoder.Encoder)

	// 360 ticks per rotation, reversed
	pos, posType, err := enc.Position(ctx, encoder.PositionTypeDegrees, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, posType, test.ShouldEqual, encoder.PositionTypeDegrees)
	test.That(t, pos, test.ShouldAlmostEqual, -180)

	test.That(t, enc.ResetPosition(ctx, nil), test.ShouldBeNil)
	sim.SetTicks(90)
	pos, _, err = enc.Position(ctx, encoder.PositionTypeDegrees, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldAlmostEqual, 90)
}
