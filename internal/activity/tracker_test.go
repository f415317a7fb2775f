package activity

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/recorder"
)

func TestTrackerStateMachine(t *testing.T) {
	Convey("Given a tracker configured with race_start_us = 1_000_000", t, func() {
		tr := New(1_000_000)

		Convey("Before race start, status is NotStarted regardless of events", func() {
			tr.Observe(500_000, true, false)
			So(tr.Data().StartTimeUS, ShouldBeNil)
			So(tr.FinalStatus().Kind, ShouldEqual, recorder.NotStarted)
		})

		Convey("At race start, start_time_us is set to race_start_us exactly", func() {
			tr.Observe(1_000_000, false, false)
			So(tr.Data().StartTimeUS, ShouldNotBeNil)
			So(*tr.Data().StartTimeUS, ShouldEqual, uint64(1_000_000))
			So(tr.FinalStatus().Kind, ShouldEqual, recorder.NotEnded)
		})

		Convey("Once started, an out-of-track event sets out_time_us and is terminal", func() {
			tr.Observe(1_000_000, false, false)
			tr.Observe(1_200_000, true, false)
			So(*tr.Data().OutTimeUS, ShouldEqual, uint64(1_200_000))

			Convey("A subsequent End crossing does not overwrite it", func() {
				tr.Observe(1_400_000, false, true)
				So(tr.Data().EndTimeUS, ShouldBeNil)
				So(*tr.Data().OutTimeUS, ShouldEqual, uint64(1_200_000))

				status := tr.FinalStatus()
				So(status.Kind, ShouldEqual, recorder.OutAt)
				So(status.ElapsedUS, ShouldEqual, uint64(200_000))
			})
		})

		Convey("Once started, reaching the End tile sets end_time_us and is terminal", func() {
			tr.Observe(1_000_000, false, false)
			tr.Observe(1_500_000, false, true)
			status := tr.FinalStatus()
			So(status.Kind, ShouldEqual, recorder.EndedAt)
			So(status.ElapsedUS, ShouldEqual, uint64(500_000))
		})
	})
}

func TestFinalStatusRanking(t *testing.T) {
	Convey("Ended ranks before Out, which ranks before NotEnded, which ranks before NotStarted", t, func() {
		ended := recorder.FinalStatus{Kind: recorder.EndedAt, ElapsedUS: 100}
		out := recorder.FinalStatus{Kind: recorder.OutAt, ElapsedUS: 50}
		notEnded := recorder.FinalStatus{Kind: recorder.NotEnded}
		notStarted := recorder.FinalStatus{Kind: recorder.NotStarted}

		So(ended.Less(out), ShouldBeTrue)
		So(out.Less(notEnded), ShouldBeTrue)
		So(notEnded.Less(notStarted), ShouldBeTrue)
		So(notStarted.Less(ended), ShouldBeFalse)
	})

	Convey("Among two Ended statuses, earlier elapsed time ranks better", t, func() {
		faster := recorder.FinalStatus{Kind: recorder.EndedAt, ElapsedUS: 100}
		slower := recorder.FinalStatus{Kind: recorder.EndedAt, ElapsedUS: 200}
		So(faster.Less(slower), ShouldBeTrue)
		So(slower.Less(faster), ShouldBeFalse)
	})
}
