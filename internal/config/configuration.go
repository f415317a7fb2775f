// Package config holds the data model shared between the guest ABI and the
// physics stepper: the guest-provided Configuration (spec.md §3) and the
// host-side run/track configuration loaded from YAML (SPEC_FULL.md §3.1-3.2).
package config

// RGB is a competitor-chosen display colour.
type RGB struct {
	R, G, B uint8
}

// Configuration is guest-provided via setup() and is read-only afterward.
// All lengths are in millimetres.
type Configuration struct {
	RobotName string
	ColorA    RGB
	ColorB    RGB

	AxleWidthMM       float64
	BodyFrontLenMM    float64
	BodyBackLenMM     float64
	GroundClearanceMM float64
	WheelDiameterMM   float64

	GearRatioNum uint32
	GearRatioDen uint32

	LineSensorSpacingMM      float64
	LineSensorMountHeightMM  float64
}

// GearRatio returns num/max(1,den), per spec.md §4.4.
func (c Configuration) GearRatio() float64 {
	den := c.GearRatioDen
	if den < 1 {
		den = 1
	}
	return float64(c.GearRatioNum) / float64(den)
}
