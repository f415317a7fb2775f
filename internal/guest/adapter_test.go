package guest

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/config"
	"botsim/internal/deviceabi"
	"botsim/internal/physics"
	"botsim/internal/track"
	"botsim/internal/vclock"
)

func newTestHost() *Host {
	trk := track.Build([]track.Segment{
		track.StartSegment{},
		track.Straight{Length: 2_000_000},
		track.End{},
	}, track.Frame{})

	cfg := config.Configuration{AxleWidthMM: 120, BodyFrontLenMM: 80, WheelDiameterMM: 60, GearRatioNum: 1, GearRatioDen: 1}
	clock := vclock.New(50, 2_000_000) // 2s sim, 50ns/fuel unit
	stepper := physics.NewStepper(trk, cfg, 500, 1)
	return NewHost(clock, stepper, 500, 1_000_000, cfg)
}

func TestAdvanceTickCouplesClockToStepper(t *testing.T) {
	Convey("Given a fresh Host with a 500us physics period", t, func() {
		h := newTestHost()

		Convey("Each advanceTick moves current_time_us forward by exactly one period", func() {
			_, err := h.advanceTick()
			So(err, ShouldBeNil)
			now, err := h.Clock.CurrentTimeUS(h.remainingFuel)
			So(err, ShouldBeNil)
			So(now, ShouldEqual, uint64(500))

			_, err = h.advanceTick()
			So(err, ShouldBeNil)
			now, err = h.Clock.CurrentTimeUS(h.remainingFuel)
			So(err, ShouldBeNil)
			So(now, ShouldEqual, uint64(1000))
		})

		Convey("A SleepFor(1_000_000) issued at t=0 resolves after 1_000_000/period ticks, not millions", func() {
			op := deviceabi.Operation{Kind: deviceabi.SleepFor, DurationUS: 1_000_000}
			ticks := 0
			for {
				v, ready := h.pollReady(op, 0)
				if ready {
					_ = v
					break
				}
				_, err := h.advanceTick()
				So(err, ShouldBeNil)
				ticks++
				So(ticks, ShouldBeLessThanOrEqualTo, 2001)
			}
			So(ticks, ShouldEqual, 2000)
		})
	})
}

func TestPollFnSweepsAndAdvancesOnPending(t *testing.T) {
	Convey("Given an async SleepFor future issued at t=0", t, func() {
		h := newTestHost()
		now, err := h.Clock.CurrentTimeUS(h.remainingFuel)
		So(err, ShouldBeNil)
		op := deviceabi.Operation{Kind: deviceabi.SleepFor, DurationUS: 1000}
		id, _ := h.Futures.Issue(op, now, h.PeriodUS)

		Convey("Polling while pending advances one tick and keeps sweeping forward", func() {
			res, err := h.Futures.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeTrue)

			// Mirror pollFn's pending branch: advance one tick, then re-poll.
			ticks := 0
			for {
				res, err = h.Futures.Poll(id)
				So(err, ShouldBeNil)
				if !res.Pending {
					break
				}
				_, err := h.advanceTick()
				So(err, ShouldBeNil)
				ticks++
				So(ticks, ShouldBeLessThanOrEqualTo, 3)
			}
			So(ticks, ShouldEqual, 2)
		})
	})
}
