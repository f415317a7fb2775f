package physics

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/track"
)

func buildTestTrack() *track.Track {
	return track.Build([]track.Segment{
		track.StartSegment{},
		track.Straight{Length: 500},
		track.End{},
	}, track.Frame{})
}

func TestClassifyOutOfTrack(t *testing.T) {
	Convey("Given a robot parked over the straight's centreline", t, func() {
		trk := buildTestTrack()
		pose := track.Frame{Origin: track.Vec2{X: 250, Y: 0}}

		Convey("All sensors reading on-line yields IsOutOfTrack=false", func() {
			var readings [NumLineSensors]float64
			c := Classify(trk, pose, readings)
			So(c.IsOutOfTrack, ShouldBeFalse)
		})

		Convey("A majority of sensors above the threshold yields IsOutOfTrack=true", func() {
			var readings [NumLineSensors]float64
			for i := range readings {
				readings[i] = 90
			}
			c := Classify(trk, pose, readings)
			So(c.IsOutOfTrack, ShouldBeTrue)
		})

		Convey("Exactly half the sensors above threshold is not yet a majority", func() {
			var readings [NumLineSensors]float64
			for i := 0; i < NumLineSensors/2; i++ {
				readings[i] = 90
			}
			c := Classify(trk, pose, readings)
			So(c.IsOutOfTrack, ShouldBeFalse)
		})
	})

	Convey("A robot centred over the End tile reports IsOverTrackEnd", t, func() {
		trk := buildTestTrack()
		pose := track.Frame{Origin: track.Vec2{X: 505, Y: 0}}
		var readings [NumLineSensors]float64
		c := Classify(trk, pose, readings)
		So(c.IsOverTrackEnd, ShouldBeTrue)
	})
}
