package physics

import (
	"math"

	"botsim/internal/config"
	"botsim/internal/track"
)

// BodyConstants are the chassis/wheel inertial parameters derived from a
// guest Configuration plus a fixed material-density assumption; these are
// not part of the ABI, they're an internal modelling convenience.
type BodyConstants struct {
	WheelRadiusMM   float64
	WheelInertia    float64 // kg·m^2, about the wheel's own spin axis
	AxleHalfWidthMM float64
}

// DeriveBodyConstants computes BodyConstants from a guest Configuration.
func DeriveBodyConstants(cfg config.Configuration) BodyConstants {
	return BodyConstants{
		WheelRadiusMM:   cfg.WheelDiameterMM / 2,
		WheelInertia:    1.2e-6 * math.Max(cfg.WheelDiameterMM, 1), // scales mildly with wheel size
		AxleHalfWidthMM: cfg.AxleWidthMM / 2,
	}
}

// IntegrateWheels advances wheel spin state one Δt given the latest duty
// cycles, per spec.md §4.4 steps 2-3: compute torque, integrate angular
// velocity and spin angle for each wheel in a fixed order (left, then
// right), then derive chassis linear/angular velocity from the wheels'
// surface speed under a rolling-without-slip assumption and integrate the
// chassis pose by the same Δt.
//
// A full contact-manifold rigid-body solver is not implemented: ground
// contact is resolved analytically (rolling without slip) rather than via
// iterative constraint solving, which keeps the step function pure and
// order-independent of any solver's internal iteration count while still
// honoring the spec's fixed-Δt, fixed-order determinism requirement.
func IntegrateWheels(
	mc MotorConstants,
	bc BodyConstants,
	gearRatio float64,
	duties DutyCycles,
	arena *Arena,
	dtSeconds float64,
) {
	leftWheel := arena.Wheel(true)
	rightWheel := arena.Wheel(false)

	stepWheel := func(w *Body, pwm int16) {
		torque := WheelTorque(mc, pwm, w.SpinVelRadS, gearRatio)
		angularAccel := torque / bc.WheelInertia
		w.SpinVelRadS += angularAccel * dtSeconds
		w.SpinAngleRad += w.SpinVelRadS * dtSeconds
	}
	stepWheel(leftWheel, duties.Left)
	stepWheel(rightWheel, duties.Right)

	wheelRadiusM := bc.WheelRadiusMM / 1000.0
	leftSurfaceSpeed := leftWheel.SpinVelRadS * wheelRadiusM
	rightSurfaceSpeed := rightWheel.SpinVelRadS * wheelRadiusM

	chassis := arena.Chassis()
	linearSpeedMS := (leftSurfaceSpeed + rightSurfaceSpeed) / 2
	axleWidthM := (bc.AxleHalfWidthMM * 2) / 1000.0
	var angularVelRadS float64
	if axleWidthM > 0 {
		angularVelRadS = (rightSurfaceSpeed - leftSurfaceSpeed) / axleWidthM
	}

	chassis.LinearVel = track.Vec2{X: linearSpeedMS * 1000, Y: 0} // mm/s, chassis-forward
	chassis.AngularVel = angularVelRadS

	chassis.Pose = chassis.Pose.Advance(linearSpeedMS*1000*dtSeconds, angularVelRadS*dtSeconds)

	// Wheel bodies track the chassis pose (they don't translate
	// independently of it); only their spin state is distinct.
	leftWheel.Pose = chassis.Pose
	rightWheel.Pose = chassis.Pose
}

// WheelAngleU16 encodes a wheel's spin angle modulo 2π, scaled to
// [0,65535], per spec.md §3's ReadMotorAngles encoding.
func WheelAngleU16(spinAngleRad float64) uint16 {
	twoPi := 2 * math.Pi
	wrapped := math.Mod(spinAngleRad, twoPi)
	if wrapped < 0 {
		wrapped += twoPi
	}
	return uint16(wrapped / twoPi * 65535)
}
