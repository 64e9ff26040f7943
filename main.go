// Package main is a module exposing VEX V5 hardware as Viam components: the
// brain, single motors, motor groups, rotation and shaft encoders, the
// inertial sensor, and the distance sensor.
package main

import (
	"context"

	"go.viam.com/rdk/components/encoder"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/components/movementsensor"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"
	"go.viam.com/utils"

	"vex-v5/v5brain"
	"vex-v5/v5distance"
	"vex-v5/v5encoder"
	"vex-v5/v5group"
	"vex-v5/v5imu"
	"vex-v5/v5motor"
)

func main() {
	utils.ContextualMain(mainWithArgs, module.NewLoggerFromArgs("vex-v5"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	mod, err := module.NewModuleFromArgs(ctx, logger)
	if err != nil {
		return err
	}

	models := []struct {
		api   resource.API
		model resource.Model
	}{
		{generic.API, v5brain.Model},
		{motor.API, v5motor.Model},
		{motor.API, v5group.Model},
		{encoder.API, v5encoder.RotationModel},
		{encoder.API, v5encoder.AdiModel},
		{movementsensor.API, v5imu.Model},
		{sensor.API, v5distance.Model},
	}
	for _, m := range models {
		if err := mod.AddModelFromRegistry(ctx, m.api, m.model); err != nil {
			return err
		}
	}

	err = mod.Start(ctx)
	defer mod.Close(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
