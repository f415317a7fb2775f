package recorder

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/track"
)

func TestAtTimeSecsLookup(t *testing.T) {
	Convey("Given a Record with period_us=500 and 10 appended samples", t, func() {
		r := NewRecord(500)
		for i := 0; i < 10; i++ {
			r.Append(Sample{Body: track.Frame{Origin: track.Vec2{X: float64(i)}}})
		}

		Convey("AtTimeSecs(0) returns the first sample", func() {
			So(r.AtTimeSecs(0).Body.Origin.X, ShouldEqual, float64(0))
		})

		Convey("AtTimeSecs locates the floor(t*1e6/period_us)'th sample", func() {
			// t = 0.0025s -> 2500us / 500us = index 5
			So(r.AtTimeSecs(0.0025).Body.Origin.X, ShouldEqual, float64(5))
		})

		Convey("AtTimeSecs clamps to the last sample when t exceeds the record", func() {
			So(r.AtTimeSecs(1000).Body.Origin.X, ShouldEqual, float64(9))
		})
	})
}

func TestActivityDataDerive(t *testing.T) {
	Convey("An ActivityData with no fields set derives NotStarted", t, func() {
		var a ActivityData
		So(a.Derive().Kind, ShouldEqual, NotStarted)
	})

	Convey("An ActivityData with only start set derives NotEnded", t, func() {
		start := uint64(1000)
		a := ActivityData{StartTimeUS: &start}
		So(a.Derive().Kind, ShouldEqual, NotEnded)
	})

	Convey("An ActivityData with start and out set derives OutAt(out-start)", t, func() {
		start, out := uint64(1000), uint64(1500)
		a := ActivityData{StartTimeUS: &start, OutTimeUS: &out}
		status := a.Derive()
		So(status.Kind, ShouldEqual, OutAt)
		So(status.ElapsedUS, ShouldEqual, uint64(500))
	})

	Convey("An ActivityData with start and end set derives EndedAt(end-start), even if out is also set", t, func() {
		start, out, end := uint64(1000), uint64(1500), uint64(2000)
		a := ActivityData{StartTimeUS: &start, OutTimeUS: &out, EndTimeUS: &end}
		status := a.Derive()
		So(status.Kind, ShouldEqual, EndedAt)
		So(status.ElapsedUS, ShouldEqual, uint64(1000))
	})
}
