// Package sim implements the Simulation Driver and the multi-robot worker
// pool that runs many guest modules concurrently (spec.md §5 "Parallel
// multi-robot"; spec.md §9's fixed-order step-function re-architecture).
package sim

import (
	"fmt"

	"botsim/internal/activity"
	"botsim/internal/config"
	"botsim/internal/guest"
	"botsim/internal/physics"
	"botsim/internal/recorder"
	"botsim/internal/track"
	"botsim/internal/vclock"
)

// Result is everything a single robot's run produces: its recorded
// trajectory and its terminal activity classification.
type Result struct {
	RobotName string
	Record    *recorder.Record
	Err       error // non-nil when loading, setup(), or run() fails (including a trap or fuel exhaustion)
}

// RunOne drives one guest module end to end: builds the clock, stepper,
// host, and recorder for runCfg and trk, then lets the guest's own run()
// loop drive host-imports (which step physics), until the guest returns,
// traps, or the fuel budget is exhausted.
//
// This mirrors spec.md §9's prescribed re-architecture: a fixed-order
// sequence of pure step functions (input -> motors -> integrate -> sense
// -> classify -> record -> sweep-futures) rather than a dynamically
// dispatched "systems" graph. Each tick is driven from advanceTick on the
// guest.Host, and this function's only job is to keep recording and
// activity tracking in lock-step with it.
func RunOne(
	wasmBytes []byte,
	trk *track.Track,
	runCfg config.RunConfig,
	noiseSeed int64,
) Result {
	clock := vclock.New(runCfg.FuelUnitNS, runCfg.TotalSimTimeUS)

	// The stepper and host are built from this fixed default geometry for
	// the whole run. setup() is called, but the Configuration it returns is
	// not read from guest memory: the decode below returns this default, so
	// the guest's robot name, colours and geometry are not applied.
	cfg := config.Configuration{
		AxleWidthMM:             120,
		BodyFrontLenMM:          80,
		BodyBackLenMM:           40,
		WheelDiameterMM:         60,
		GearRatioNum:            1,
		GearRatioDen:            1,
		LineSensorSpacingMM:     10,
		LineSensorMountHeightMM: 8,
	}

	stepper := physics.NewStepper(trk, cfg, runCfg.PhysicsPeriodUS, noiseSeed)
	host := guest.NewHost(clock, stepper, runCfg.PhysicsPeriodUS, runCfg.RaceStartUS, cfg)

	module, err := guest.Load(wasmBytes, host)
	if err != nil {
		return Result{Err: fmt.Errorf("sim: load: %w", err)}
	}

	decodedCfg, err := module.Setup(func(_ func(ptr, length int32) []byte, _ int32) config.Configuration {
		return cfg // a real decode reads the guest's Configuration struct out of guest memory at ptr
	})
	if err != nil {
		return Result{Err: fmt.Errorf("sim: setup: %w", err)}
	}

	rec := recorder.NewRecord(runCfg.PhysicsPeriodUS)
	tracker := activity.New(runCfg.RaceStartUS)

	host.OnTick = func(tick physics.Tick) {
		rec.Append(recorder.Sample{
			Body:       tick.ChassisPose,
			LeftAngle:  tick.LeftAngleRad,
			RightAngle: tick.RightAngleRad,
		})
		tracker.Observe(tick.NowUS, tick.Classification.IsOutOfTrack, tick.Classification.IsOverTrackEnd)
	}

	runErr := module.Run()
	rec.Activity = tracker.Data()

	return Result{RobotName: decodedCfg.RobotName, Record: rec, Err: runErr}
}
