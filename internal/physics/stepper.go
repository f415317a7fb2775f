package physics

import (
	"botsim/internal/config"
	"botsim/internal/track"
)

// Tick is the full state produced by one physics step (spec.md §4.4
// steps 1-5); steps 6 and 7 (recording and the async future table sweep)
// are driven by the simulation layer, which owns the recorder and table.
type Tick struct {
	TickIndex      uint64
	NowUS          uint64
	ChassisPose    track.Frame
	LeftAngleRad   float64
	RightAngleRad  float64
	LineReadings   [NumLineSensors]float64
	Gyro           Vec3I16
	IMU            Vec3I16
	Classification Classification
}

// Stepper owns everything the physics step needs between ticks: the rigid
// body arena, the track, the guest Configuration, and the noise source.
// It holds no notion of wall-clock or fuel; the caller supplies `nowUS`
// and `tickIndex` each step.
type Stepper struct {
	Track  *track.Track
	Config config.Configuration
	Motor  MotorConstants
	Body   BodyConstants
	Arena  *Arena
	Noise  *NoiseSource

	periodUS   uint64
	gyroEvery  uint64 // ticks between ReadGyro refreshes (2)
	imuEvery   uint64 // ticks between ReadImuFusedData refreshes (10)
	lastGyro   Vec3I16
	lastIMU    Vec3I16
}

// NewStepper builds a Stepper for one robot: a fresh rigid-body arena
// placed at the track's start frame, the default motor constants, body
// constants derived from cfg, and a deterministic noise source.
func NewStepper(trk *track.Track, cfg config.Configuration, periodUS uint64, noiseSeed int64) *Stepper {
	return &Stepper{
		Track:     trk,
		Config:    cfg,
		Motor:     DefaultMotorConstants(),
		Body:      DeriveBodyConstants(cfg),
		Arena:     NewArena(cfg.AxleWidthMM/2, trk.StartFrame()),
		Noise:     NewNoiseSource(noiseSeed),
		periodUS:  periodUS,
		gyroEvery: 2,
		imuEvery:  10,
	}
}

// Step advances the simulation by one Δt, given tickIndex (0-based, this
// tick's ordinal) and the now-current virtual time in microseconds, and
// the latest commanded duty cycles. It performs spec.md §4.4 steps 1-5 in
// order: read duty cycles (supplied by the caller, already sampled),
// integrate motors/bodies, raycast line sensors, classify on/off-track and
// finish, then derive gyro/IMU on their own cadence, and return the
// recordable Tick. Recording to the Execution Recorder and the async-future sweep
// (steps 6-7) are the caller's responsibility, since both reach outside
// this package.
func (s *Stepper) Step(tickIndex uint64, nowUS uint64, duties DutyCycles) Tick {
	gearRatio := s.Config.GearRatio()
	IntegrateWheels(s.Motor, s.Body, gearRatio, duties, s.Arena, float64(s.periodUS)/1e6)

	chassis := s.Arena.Chassis()
	left := s.Arena.Wheel(true)
	right := s.Arena.Wheel(false)

	readings := ReadLineSensors(s.Track, s.Config, chassis.Pose, s.Noise)
	classification := Classify(s.Track, chassis.Pose, readings)

	if tickIndex%s.gyroEvery == 0 {
		s.lastGyro = ReadGyro(chassis.AngularVel, s.Noise)
	}
	if tickIndex%s.imuEvery == 0 {
		s.lastIMU = ReadImuFusedData(chassis.Pose.HeadingRad, s.Noise)
	}

	return Tick{
		TickIndex:      tickIndex,
		NowUS:          nowUS,
		ChassisPose:    chassis.Pose,
		LeftAngleRad:   left.SpinAngleRad,
		RightAngleRad:  right.SpinAngleRad,
		LineReadings:   readings,
		Gyro:           s.lastGyro,
		IMU:            s.lastIMU,
		Classification: classification,
	}
}
