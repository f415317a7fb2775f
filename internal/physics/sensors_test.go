package physics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/config"
)

func TestReflectance(t *testing.T) {
	Convey("Directly over the line centre, reflectance is 0", t, func() {
		So(reflectance(0, 5), ShouldEqual, 0.0)
	})

	Convey("Far past the line edge and its blur, reflectance saturates at 100", t, func() {
		So(reflectance(1000, 5), ShouldEqual, 100.0)
	})

	Convey("Within the blur band, reflectance is strictly between 0 and 100", t, func() {
		r := reflectance(lineHalfWidthMM+1, 5)
		So(r, ShouldBeGreaterThan, 0.0)
		So(r, ShouldBeLessThan, 100.0)
	})
}

func TestLineLeftRight(t *testing.T) {
	Convey("Given readings of 0 and 100 at the extremes", t, func() {
		var readings [NumLineSensors]float64
		readings[0] = 0
		readings[7] = 100
		readings[8] = 50
		readings[15] = 100

		left, right := LineLeftRight(readings)

		Convey("0 maps to byte 0, and 100 maps to the full byte range 255", func() {
			So(left[0], ShouldEqual, byte(0))
			So(left[7], ShouldEqual, byte(255))
			So(right[7], ShouldEqual, byte(255))
		})

		Convey("50 maps to roughly the midpoint of the byte range", func() {
			So(right[0], ShouldAlmostEqual, float64(128), 2)
		})
	})
}

func TestClampI16(t *testing.T) {
	Convey("clampI16 saturates at int16 bounds", t, func() {
		So(clampI16(1e9), ShouldEqual, int16(32767))
		So(clampI16(-1e9), ShouldEqual, int16(-32768))
		So(clampI16(10), ShouldEqual, int16(10))
	})
}

func TestSensorPositionsSpacing(t *testing.T) {
	Convey("Sensor positions are evenly spaced and symmetric about the centreline", t, func() {
		cfg := config.Configuration{BodyFrontLenMM: 50, LineSensorSpacingMM: 10}
		pts := SensorPositions(cfg)

		So(pts[0].X, ShouldEqual, float64(50))
		So(pts[0].Y+pts[NumLineSensors-1].Y, ShouldAlmostEqual, 0.0, 1e-9)

		for i := 1; i < NumLineSensors; i++ {
			So(pts[i].Y-pts[i-1].Y, ShouldAlmostEqual, float64(10), 1e-9)
		}
	})
}
