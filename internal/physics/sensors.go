package physics

import (
	"math"
	"math/rand"

	"botsim/internal/config"
	"botsim/internal/track"
)

// NumLineSensors is the fixed width of the line-sensor bar mounted across
// the front of the chassis.
const NumLineSensors = 16

// lineHalfWidthMM is half the physical width of the printed guide line.
const lineHalfWidthMM = 9.5

// NoiseSource produces the Gaussian sensor noise spec.md §4.4 step 4 calls
// for. It wraps a single math/rand stream seeded once at simulation start,
// so a fixed seed reproduces the exact same noise sequence run over run as
// long as sensors are sampled in the same fixed order every tick.
type NoiseSource struct {
	rng *rand.Rand
}

// NewNoiseSource seeds a NoiseSource. Callers should derive seed
// deterministically (e.g. from RunConfig plus a robot index) rather than
// from wall-clock time, to keep runs reproducible.
func NewNoiseSource(seed int64) *NoiseSource {
	return &NoiseSource{rng: rand.New(rand.NewSource(seed))}
}

// Sample draws one noise value with the given standard deviation.
func (n *NoiseSource) Sample(stddev float64) float64 {
	if n == nil {
		return 0
	}
	return n.rng.NormFloat64() * stddev
}

// smoothstep is the classic Hermite interpolation, clamped to [0,1] outside [edge0,edge1].
func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// SensorPositions returns the 16 line-sensor mounting points in the
// chassis-local frame (forward = +X, left = +Y), evenly spaced about the
// centreline at the front of the chassis.
func SensorPositions(cfg config.Configuration) [NumLineSensors]track.Vec2 {
	var pts [NumLineSensors]track.Vec2
	mid := float64(NumLineSensors-1) / 2
	for i := 0; i < NumLineSensors; i++ {
		lateral := (float64(i) - mid) * cfg.LineSensorSpacingMM
		pts[i] = track.Vec2{X: cfg.BodyFrontLenMM, Y: lateral}
	}
	return pts
}

// reflectance converts a perpendicular distance-to-line-centre (mm) into a
// [0,100] intensity reading: 0 is directly over the line, 100 is plain
// floor. LineSensorMountHeightMM blurs the transition edge, modelling a
// sensor mounted further from the floor seeing a softer gradient.
func reflectance(distOffLineMM float64, mountHeightMM float64) float64 {
	blur := math.Max(1.0, mountHeightMM*0.5)
	edge0 := lineHalfWidthMM
	edge1 := lineHalfWidthMM + blur
	t := smoothstep(edge0, edge1, distOffLineMM)
	return t * 100
}

// ReadLineSensors raycasts all 16 line sensors against the track, mounted
// at chassisPose, and returns their noisy [0,100] readings in the order
// SensorPositions returns them (index 0 at the most negative lateral
// offset, index 15 at the most positive).
func ReadLineSensors(trk *track.Track, cfg config.Configuration, chassisPose track.Frame, noise *NoiseSource) [NumLineSensors]float64 {
	var readings [NumLineSensors]float64
	positions := SensorPositions(cfg)
	for i, local := range positions {
		world := chassisPose.ToWorld(local)

		var distMM float64
		if hit, ok := trk.Locate(world); ok {
			distMM = hit.Distance
		} else {
			distMM = lineHalfWidthMM + cfg.LineSensorMountHeightMM + 50 // well past the blur edge: plain floor
		}

		reading := reflectance(distMM, cfg.LineSensorMountHeightMM)
		reading += noise.Sample(1.5)
		if reading < 0 {
			reading = 0
		}
		if reading > 100 {
			reading = 100
		}
		readings[i] = reading
	}
	return readings
}

// LineLeftRight packs the 16 raw [0,100] sensor readings into the two
// 8-byte DeviceValue payloads the guest ABI exposes (spec.md §3: "8 x u8,
// reflectance 0-255"): the left half (first 8 sensors) and right half
// (last 8), one reading per byte, rescaled from [0,100] to the full u8
// range.
func LineLeftRight(readings [NumLineSensors]float64) (left [8]byte, right [8]byte) {
	scale := func(r float64) byte {
		v := r / 100 * 255
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return byte(v + 0.5)
	}
	for i := 0; i < 8; i++ {
		left[i] = scale(readings[i])
	}
	for i := 0; i < 8; i++ {
		right[i] = scale(readings[i+8])
	}
	return left, right
}

// Vec3I16 is a 3-axis reading (roll, pitch, yaw), the payload shape shared
// by ReadGyro and ReadImuFusedData.
type Vec3I16 struct {
	Roll, Pitch, Yaw int16
}

// ReadGyro synthesizes a 3-axis angular-velocity reading (milliradians/s,
// scaled to int16) from the chassis's current angular velocity. The
// simulated robot moves in the ground plane only, so roll/pitch rate carry
// pure noise and yaw rate carries the chassis's true angular velocity plus
// noise.
func ReadGyro(angularVelRadS float64, noise *NoiseSource) Vec3I16 {
	return Vec3I16{
		Roll:  clampI16(noise.Sample(2.0)),
		Pitch: clampI16(noise.Sample(2.0)),
		Yaw:   clampI16(angularVelRadS*1000 + noise.Sample(2.0)),
	}
}

// ReadImuFusedData synthesizes a 3-axis fused orientation reading
// (milliradians, scaled to int16) from the chassis's current heading.
func ReadImuFusedData(headingRad float64, noise *NoiseSource) Vec3I16 {
	wrapped := math.Mod(headingRad, 2*math.Pi)
	if wrapped > math.Pi {
		wrapped -= 2 * math.Pi
	}
	if wrapped < -math.Pi {
		wrapped += 2 * math.Pi
	}
	return Vec3I16{
		Roll:  clampI16(noise.Sample(1.0)),
		Pitch: clampI16(noise.Sample(1.0)),
		Yaw:   clampI16(wrapped*1000 + noise.Sample(1.0)),
	}
}

func clampI16(x float64) int16 {
	switch {
	case x > 32767:
		return 32767
	case x < -32768:
		return -32768
	default:
		return int16(x)
	}
}
