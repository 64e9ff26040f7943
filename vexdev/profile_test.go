package vexdev

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robot.yaml")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Run("full robot", func(t *testing.T) {
		path := writeProfile(t, `
motors:
  - port: 1
    gearing: blue
    position_deg: 90
  - port: 2
    wattage: 5
rotations:
  - port: 5
    position_deg: 45
inertials:
  - port: 10
    rotation_deg: 180
distances:
  - port: 7
    distance_mm: 300
adi_encoders:
  - top_port: 1
    bottom_port: 2
    ticks: 90
`)
		p, err := LoadProfile(path)
		test.That(t, err, test.ShouldBeNil)
		bus, err := NewSimBusFromProfile(p)
		test.That(t, err, test.ShouldBeNil)

		test.That(t, bus.Motor(1).Installed(), test.ShouldBeTrue)
		g, err := bus.Motor(1).Gearing()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g, test.ShouldEqual, GearsetBlue)
		pos, err := bus.Motor(1).Position()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos, test.ShouldAlmostEqual, 90)

		// wattage 5 motors keep their fixed green cartridge
		test.That(t, bus.Motor(2).SetGearing(GearsetRed), test.ShouldBeNil)
		g, err = bus.Motor(2).Gearing()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g, test.ShouldEqual, GearsetGreen)

		rot, err := bus.Rotation(5).Position()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rot, test.ShouldAlmostEqual, 4500) // centidegrees

		deg, err := bus.Inertial(10).Rotation()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, deg, test.ShouldAlmostEqual, 180)

		mm, err := bus.Distance(7).Distance()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mm, test.ShouldAlmostEqual, 300)

		ticks, err := bus.AdiEncoder(1, 2).Value()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ticks, test.ShouldEqual, 90)
	})

	t.Run("unknown gearing fails", func(t *testing.T) {
		path := writeProfile(t, "motors:\n  - port: 1\n    gearing: purple\n")
		p, err := LoadProfile(path)
		test.That(t, err, test.ShouldBeNil)
		_, err = NewSimBusFromProfile(p)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unknown gearing")
	})

	t.Run("unknown wattage fails", func(t *testing.T) {
		path := writeProfile(t, "motors:\n  - port: 1\n    wattage: 7\n")
		p, err := LoadProfile(path)
		test.That(t, err, test.ShouldBeNil)
		_, err = NewSimBusFromProfile(p)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unknown wattage")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		path := writeProfile(t, "servos:\n  - port: 1\n")
		_, err := LoadProfile(path)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		test.That(t, err, test.ShouldNotBeNil)
	})
}
