package server

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/atomicvalue"
	"botsim/internal/recorder"
	"botsim/internal/sim"
	"botsim/internal/track"
)

func TestActiveConnsGauge(t *testing.T) {
	Convey("activeConns tracks connect/disconnect without a lock", t, func() {
		rs := &ReplayServer{activeConns: atomicvalue.NewUint64(0)}
		rs.activeConns.Add(1)
		rs.activeConns.Add(1)
		So(rs.activeConns.Load(), ShouldEqual, uint64(2))

		rs.activeConns.Add(^uint64(0))
		So(rs.activeConns.Load(), ShouldEqual, uint64(1))
	})
}

func TestSampleToFrame(t *testing.T) {
	Convey("sampleToFrame converts a radian heading to degrees and carries wheel angles", t, func() {
		s := recorder.Sample{
			Body:       track.Frame{Origin: track.Vec2{X: 1, Y: 2}, HeadingRad: 3.14159265358979},
			LeftAngle:  0.5,
			RightAngle: 1.5,
		}
		f := sampleToFrame("bot1", 3, s)
		So(f.RobotName, ShouldEqual, "bot1")
		So(f.TickIndex, ShouldEqual, 3)
		So(f.X, ShouldEqual, float64(1))
		So(f.Y, ShouldEqual, float64(2))
		So(f.HeadingDeg, ShouldAlmostEqual, 180.0, 1e-6)
		So(f.LeftAngle, ShouldEqual, 0.5)
		So(f.RightAngle, ShouldEqual, 1.5)
	})
}

func buildResult(name string, n int) sim.Result {
	r := recorder.NewRecord(500)
	for i := 0; i < n; i++ {
		r.Append(recorder.Sample{})
	}
	return sim.Result{RobotName: name, Record: r}
}

func TestMaxRecordLen(t *testing.T) {
	Convey("maxRecordLen finds the longest record among several robots", t, func() {
		results := []sim.Result{buildResult("a", 3), buildResult("b", 7), buildResult("c", 5)}
		So(maxRecordLen(results), ShouldEqual, 7)
	})

	Convey("A nil Record is skipped without panicking", t, func() {
		results := []sim.Result{buildResult("a", 3), {RobotName: "b", Record: nil}}
		So(maxRecordLen(results), ShouldEqual, 3)
	})

	Convey("An empty result set has max length zero", t, func() {
		So(maxRecordLen(nil), ShouldEqual, 0)
	})
}

func TestFramesAtTick(t *testing.T) {
	Convey("framesAtTick only includes robots whose record still has a sample at that tick", t, func() {
		results := []sim.Result{buildResult("a", 2), buildResult("b", 5)}
		frames := framesAtTick(results, 3)
		So(len(frames), ShouldEqual, 1)
		So(frames[0].RobotName, ShouldEqual, "b")
	})
}

func TestSafeLenAndErrString(t *testing.T) {
	Convey("safeLen returns 0 for a nil Record", t, func() {
		So(safeLen(nil), ShouldEqual, 0)
	})

	Convey("safeLen returns the record's length otherwise", t, func() {
		r := recorder.NewRecord(500)
		r.Append(recorder.Sample{})
		r.Append(recorder.Sample{})
		So(safeLen(r), ShouldEqual, 2)
	})

	Convey("errString returns empty for nil and the message otherwise", t, func() {
		So(errString(nil), ShouldEqual, "")
		So(errString(errors.New("boom")), ShouldEqual, "boom")
	})
}
