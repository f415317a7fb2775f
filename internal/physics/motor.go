package physics

import "math"

// MotorConstants are the brushed-DC model parameters from spec.md §4.4.
type MotorConstants struct {
	NoLoadSpeedRadS float64 // Ω₀: no-load speed, e.g. 2000rpm → rad/s
	StallTorqueNm   float64 // τ_s
}

// DefaultMotorConstants models a small brushed-DC gearmotor: 2000rpm
// no-load speed, 0.03 N·m stall torque.
func DefaultMotorConstants() MotorConstants {
	return MotorConstants{
		NoLoadSpeedRadS: 2000 * 2 * math.Pi / 60,
		StallTorqueNm:   0.03,
	}
}

// DutyCycles is the latest commanded motor PWM, each in [-1000, 1000].
type DutyCycles struct {
	Left, Right int16
}

// clampDuty restricts a duty cycle to the legal PWM range.
func clampDuty(pwm int16) int16 {
	switch {
	case pwm > 1000:
		return 1000
	case pwm < -1000:
		return -1000
	default:
		return pwm
	}
}

// WheelTorque computes the torque applied at the wheel (N·m) from a
// commanded PWM duty cycle, the wheel's current angular velocity, the
// gear ratio, and the brushed-DC motor model of spec.md §4.4 step 2:
//
//	drive = |pwm| / 1000
//	ω_m = |ω_wheel| · g
//	τ_motor = τ_s · drive · max(0, 1 − ω_m / (Ω₀ · drive))
//	τ_wheel = sign(pwm) · τ_motor · g
func WheelTorque(mc MotorConstants, pwm int16, wheelAngularVelRadS float64, gearRatio float64) float64 {
	pwm = clampDuty(pwm)
	drive := math.Abs(float64(pwm)) / 1000.0
	if drive == 0 {
		return 0
	}

	omegaMotor := math.Abs(wheelAngularVelRadS) * gearRatio
	headroom := 1.0 - omegaMotor/(mc.NoLoadSpeedRadS*drive)
	if headroom < 0 {
		headroom = 0
	}
	motorTorque := mc.StallTorqueNm * drive * headroom

	sign := 1.0
	if pwm < 0 {
		sign = -1.0
	}
	return sign * motorTorque * gearRatio
}
