package hardware

import (
	"testing"

	"github.com/pkg/errors"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"vex-v5/units"
	vexutils "vex-v5/utils"
	"vex-v5/vexdev"
)

// threeMotorRig stands up the reference drivetrain used across these tests:
// green motors on ports 1 and 2, a reversed green motor on port 3, group
// output geared 1:1 at 200 rpm.
func threeMotorRig(t *testing.T) (*vexdev.SimBus, *MotorGroup) {
	t.Helper()
	bus := vexdev.NewSimBus()
	bus.AttachMotor(1, vexdev.GearsetGreen, vexdev.Wattage11)
	bus.AttachMotor(2, vexdev.GearsetGreen, vexdev.Wattage11)
	bus.AttachMotor(3, vexdev.GearsetGreen, vexdev.Wattage11)
	g, err := NewMotorGroup(bus, []int{1, 2, -3}, units.RPM(200), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return bus, g
}

func TestMotorGroupConstruction(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bus := vexdev.NewSimBus()

	t.Run("rejects duplicate ports", func(t *testing.T) {
		_, err := NewMotorGroup(bus, []int{1, 2, -1}, units.RPM(200), logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "listed twice")
	})

	t.Run("rejects invalid ports", func(t *testing.T) {
		_, err := NewMotorGroup(bus, []int{1, 25}, units.RPM(200), logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("rejects nonpositive output velocity", func(t *testing.T) {
		_, err := NewMotorGroup(bus, []int{1}, units.RPM(0), logger)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("empty group reports no motors", func(t *testing.T) {
		g, err := NewMotorGroup(bus, nil, units.RPM(200), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g.Move(0.5), test.ShouldEqual, vexutils.ErrNoMotors)
		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.IsNoData(), test.ShouldBeTrue)
	})
}

func TestMotorGroupMove(t *testing.T) {
	bus, g := threeMotorRig(t)
	test.That(t, g.Move(0.5), test.ShouldBeNil)

	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m3, _ := bus.SimMotorOn(3)
	test.That(t, m1.LastVoltageMV, test.ShouldEqual, 6000)
	test.That(t, m2.LastVoltageMV, test.ShouldEqual, 6000)
	// port 3 is reversed
	test.That(t, m3.LastVoltageMV, test.ShouldEqual, -6000)
}

func TestMotorGroupMoveVelocityMixedCartridges(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bus := vexdev.NewSimBus()
	blue := bus.AttachMotor(1, vexdev.GearsetBlue, vexdev.Wattage11)
	green := bus.AttachMotor(2, vexdev.GearsetGreen, vexdev.Wattage11)
	g, err := NewMotorGroup(bus, []int{1, 2}, units.RPM(200), logger)
	test.That(t, err, test.ShouldBeNil)

	// each motor is commanded in its own frame so the shared output shaft
	// turns at the requested speed
	test.That(t, g.MoveVelocity(units.RPM(100)), test.ShouldBeNil)
	test.That(t, blue.LastRPM, test.ShouldEqual, 300)
	test.That(t, green.LastRPM, test.ShouldEqual, 100)
}

func TestMotorGroupAnySuccess(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m3, _ := bus.SimMotorOn(3)

	t.Run("one working motor is success", func(t *testing.T) {
		m1.FailMove = true
		m2.FailMove = true
		test.That(t, g.Move(0.25), test.ShouldBeNil)
		test.That(t, m3.LastVoltageMV, test.ShouldEqual, -3000)
	})

	t.Run("every motor failing is a group error", func(t *testing.T) {
		m3.FailMove = true
		err := g.Move(0.25)
		test.That(t, err, test.ShouldEqual, vexutils.ErrAllMotorsFailed)
		err = g.Brake()
		test.That(t, err, test.ShouldEqual, vexutils.ErrAllMotorsFailed)
	})

	t.Run("recovery clears the error", func(t *testing.T) {
		m2.FailMove = false
		test.That(t, g.Move(0.25), test.ShouldBeNil)
	})
}

func TestMotorGroupAngle(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("mean over identical cartridges", func(t *testing.T) {
		bus, g := threeMotorRig(t)
		m1, _ := bus.SimMotorOn(1)
		m2, _ := bus.SimMotorOn(2)
		m3, _ := bus.SimMotorOn(3)
		m1.SetPositionDeg(80)
		m2.SetPositionDeg(100)
		m3.SetPositionDeg(-90) // reversed, so contributes +90

		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	})

	t.Run("mixed cartridges normalize to the output shaft", func(t *testing.T) {
		bus := vexdev.NewSimBus()
		blue := bus.AttachMotor(1, vexdev.GearsetBlue, vexdev.Wattage11)
		green := bus.AttachMotor(2, vexdev.GearsetGreen, vexdev.Wattage11)
		g, err := NewMotorGroup(bus, []int{1, 2}, units.RPM(200), logger)
		test.That(t, err, test.ShouldBeNil)

		// the blue motor spins 3x faster than the output shaft
		blue.SetPositionDeg(270)
		green.SetPositionDeg(90)
		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	})

	t.Run("failed reads are excluded from the mean", func(t *testing.T) {
		bus, g := threeMotorRig(t)
		m1, _ := bus.SimMotorOn(1)
		m2, _ := bus.SimMotorOn(2)
		m3, _ := bus.SimMotorOn(3)
		m1.SetPositionDeg(90)
		m2.SetPositionDeg(30)
		m3.SetPositionDeg(-90)
		m2.FailPosition = true

		// the failing motor must not drag the mean toward zero
		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	})
}

func TestMotorGroupSetAngle(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m1.SetPositionDeg(80)
	m2.SetPositionDeg(100)

	test.That(t, g.SetAngle(units.AngleFromDeg(10)), test.ShouldBeNil)
	angle, err := g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 10)

	// no device was written; only tracked offsets changed
	test.That(t, m1.PositionDeg(), test.ShouldAlmostEqual, 80)
	test.That(t, m2.PositionDeg(), test.ShouldAlmostEqual, 100)
}

func TestMotorGroupDisconnectInvariance(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m3, _ := bus.SimMotorOn(3)
	m1.SetPositionDeg(90)
	m2.SetPositionDeg(90)
	m3.SetPositionDeg(-90)

	angle, err := g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	test.That(t, g.Size(), test.ShouldEqual, 3)

	// unplugging a motor must not move the reported angle
	m2.Disconnect()
	angle, err = g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	test.That(t, g.Size(), test.ShouldEqual, 2)
	test.That(t, g.Connected(), test.ShouldBeTrue)

	// nor must unplugging all of them; the angle just becomes unknown
	m1.Disconnect()
	m3.Disconnect()
	angle, err = g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.IsNoData(), test.ShouldBeTrue)
	test.That(t, g.Connected(), test.ShouldBeFalse)
}

func TestMotorGroupReconnectContinuity(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m3, _ := bus.SimMotorOn(3)
	m1.SetPositionDeg(90)
	m2.SetPositionDeg(90)
	m3.SetPositionDeg(-90)

	// observe the disconnect so the group knows port 2 was away
	m2.Disconnect()
	angle, err := g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)

	// replugging zeroes the device encoder; the group must splice the motor
	// back into its own angle frame
	m2.Connect()
	test.That(t, m2.PositionDeg(), test.ShouldAlmostEqual, 0)
	angle, err = g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	test.That(t, g.Size(), test.ShouldEqual, 3)

	// and the spliced offset persists across later polls
	angle, err = g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
}

func TestMotorGroupReconnectAfterSetAngle(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)
	m3, _ := bus.SimMotorOn(3)
	m1.SetPositionDeg(90)
	m2.SetPositionDeg(90)
	m3.SetPositionDeg(-90)

	// zero the group, then bounce a motor; the zero must survive because the
	// reconnect reference is computed from the siblings' offsets
	test.That(t, g.SetAngle(units.AngleFromDeg(0)), test.ShouldBeNil)
	m2.Disconnect()
	_, err := g.Angle()
	test.That(t, err, test.ShouldBeNil)
	m2.Connect()

	angle, err := g.Angle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 0)
}

func TestMotorGroupBrakeModeConvergence(t *testing.T) {
	bus, g := threeMotorRig(t)
	m2, _ := bus.SimMotorOn(2)

	g.SetBrakeMode(BrakeModeHold)
	test.That(t, g.BrakeMode(), test.ShouldEqual, BrakeModeHold)

	// replugging resets the device's brake setting to coast; the next poll
	// restores the group's canonical mode
	m2.Disconnect()
	test.That(t, g.Size(), test.ShouldEqual, 2)
	m2.Connect()
	test.That(t, g.Size(), test.ShouldEqual, 3)

	mode, err := bus.Motor(2).BrakeSetting()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode, test.ShouldEqual, vexdev.BrakeHold)
}

func TestMotorGroupAddRemove(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bus := vexdev.NewSimBus()
	m1 := bus.AttachMotor(1, vexdev.GearsetGreen, vexdev.Wattage11)
	bus.AttachMotor(2, vexdev.GearsetGreen, vexdev.Wattage11)
	g, err := NewMotorGroup(bus, []int{1}, units.RPM(200), logger)
	test.That(t, err, test.ShouldBeNil)

	t.Run("added motor adopts the group angle", func(t *testing.T) {
		m1.SetPositionDeg(90)
		test.That(t, g.AddMotor(2), test.ShouldBeNil)
		test.That(t, g.Size(), test.ShouldEqual, 2)
		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	})

	t.Run("duplicate add is rejected regardless of sign", func(t *testing.T) {
		err := g.AddMotor(2)
		test.That(t, errors.Is(err, vexutils.ErrMotorExists), test.ShouldBeTrue)
		err = g.AddMotor(-2)
		test.That(t, errors.Is(err, vexutils.ErrMotorExists), test.ShouldBeTrue)
		test.That(t, g.Size(), test.ShouldEqual, 2)
	})

	t.Run("adding an unplugged motor keeps the record for later", func(t *testing.T) {
		err := g.AddMotor(3)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, len(g.Ports()), test.ShouldEqual, 3)
		test.That(t, g.Size(), test.ShouldEqual, 2)

		// once plugged in, the motor joins on the next poll
		bus.AttachMotor(3, vexdev.GearsetGreen, vexdev.Wattage11)
		test.That(t, g.Size(), test.ShouldEqual, 3)
		angle, err := g.Angle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, angle.Degrees(), test.ShouldAlmostEqual, 90)
	})

	t.Run("remove matches ports by absolute value", func(t *testing.T) {
		g.RemoveMotor(-2)
		test.That(t, g.Size(), test.ShouldEqual, 2)
		test.That(t, len(g.Ports()), test.ShouldEqual, 2)

		// removing an absent port is a no-op
		g.RemoveMotor(17)
		test.That(t, len(g.Ports()), test.ShouldEqual, 2)
	})
}

func TestMotorGroupCurrentLimit(t *testing.T) {
	bus, g := threeMotorRig(t)
	m1, _ := bus.SimMotorOn(1)
	m2, _ := bus.SimMotorOn(2)

	t.Run("limit divides evenly", func(t *testing.T) {
		test.That(t, g.SetCurrentLimit(units.Amps(6)), test.ShouldBeNil)
		total := g.CurrentLimit()
		test.That(t, total.ToAmps(), test.ShouldAlmostEqual, 6)
		one, err := bus.Motor(1).CurrentLimit()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, one, test.ShouldEqual, 2000)
	})

	t.Run("rejected shares are redistributed", func(t *testing.T) {
		m1.FailLimit = true
		m2.FailLimit = true
		test.That(t, g.SetCurrentLimit(units.Amps(6)), test.ShouldBeNil)
		three, err := bus.Motor(3).CurrentLimit()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, three, test.ShouldEqual, 6000)
	})

	t.Run("all rejecting is a group error", func(t *testing.T) {
		m3, _ := bus.SimMotorOn(3)
		m3.FailLimit = true
		err := g.SetCurrentLimit(units.Amps(6))
		test.That(t, err, test.ShouldEqual, vexutils.ErrAllMotorsFailed)
		test.That(t, g.CurrentLimit().IsNoData(), test.ShouldBeTrue)
	})
}

func TestMotorGroupTemperatures(t *testing.T) {
	bus, g := threeMotorRig(t)
	temps := g.Temperatures()
	test.That(t, len(temps), test.ShouldEqual, 3)
	for _, temp := range temps {
		test.That(t, temp.ToCelsius(), test.ShouldAlmostEqual, 25.0)
	}

	m1, _ := bus.SimMotorOn(1)
	m1.Disconnect()
	test.That(t, len(g.Temperatures()), test.ShouldEqual, 2)
}
