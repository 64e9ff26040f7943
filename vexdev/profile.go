package vexdev

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Profile describes the devices to pre-populate a simulated bus with. It is
// loaded from YAML by the brain's sim backend so a whole robot can be stood
// up without hardware.
type Profile struct {
	Motors []struct {
		Port        int     `yaml:"port"`
		Gearing     string  `yaml:"gearing"` // red, green or blue; default green
		Wattage     int     `yaml:"wattage"` // 11 or 5; default 11
		PositionDeg float64 `yaml:"position_deg"`
	} `yaml:"motors"`
	Rotations []struct {
		Port        int     `yaml:"port"`
		PositionDeg float64 `yaml:"position_deg"`
	} `yaml:"rotations"`
	Inertials []struct {
		Port        int     `yaml:"port"`
		RotationDeg float64 `yaml:"rotation_deg"`
	} `yaml:"inertials"`
	Distances []struct {
		Port       int     `yaml:"port"`
		DistanceMM float64 `yaml:"distance_mm"`
	} `yaml:"distances"`
	AdiEncoders []struct {
		TopPort    int `yaml:"top_port"`
		BottomPort int `yaml:"bottom_port"`
		Ticks      int `yaml:"ticks"`
	} `yaml:"adi_encoders"`
}

// LoadProfile reads a YAML robot profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading robot profile")
	}
	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrapf(err, "parsing robot profile %s", path)
	}
	return &p, nil
}

// NewSimBusFromProfile builds a simulated bus populated with the devices the
// profile describes.
func NewSimBusFromProfile(p *Profile) (*SimBus, error) {
	bus := NewSimBus()
	for _, m := range p.Motors {
		gearing, err := parseGearing(m.Gearing)
		if err != nil {
			return nil, errors.Wrapf(err, "motor on port %d", m.Port)
		}
		class := Wattage11
		switch m.Wattage {
		case 0, 11:
		case 5:
			class = Wattage5
		default:
			return nil, errors.Errorf("motor on port %d: unknown wattage %d", m.Port, m.Wattage)
		}
		sim := bus.AttachMotor(m.Port, gearing, class)
		sim.SetPositionDeg(m.PositionDeg)
	}
	for _, r := range p.Rotations {
		bus.AttachRotation(r.Port).SetPositionDeg(r.PositionDeg)
	}
	for _, i := range p.Inertials {
		bus.AttachInertial(i.Port).SetRotation(i.RotationDeg)
	}
	for _, d := range p.Distances {
		bus.AttachDistance(d.Port).SetDistanceMM(d.DistanceMM)
	}
	for _, e := range p.AdiEncoders {
		bus.AttachAdiEncoder(e.TopPort, e.BottomPort).SetTicks(e.Ticks)
	}
	return bus, nil
}

func parseGearing(s string) (Gearset, error) {
	switch s {
	case "", "green":
		return GearsetGreen, nil
	case "red":
		return GearsetRed, nil
	case "blue":
		return GearsetBlue, nil
	default:
		return GearsetInvalid, errors.Errorf("unknown gearing %q", s)
	}
}
