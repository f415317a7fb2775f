package vclock

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClockBasics(t *testing.T) {
	Convey("Given a clock for a 1s run at 50ns/unit", t, func() {
		c := New(50, 1_000_000)

		Convey("TotalFuel converts the full duration", func() {
			So(c.TotalFuel(), ShouldEqual, uint64(1_000_000*1000/50))
		})

		Convey("CurrentTimeUS at full remaining fuel is zero", func() {
			now, err := c.CurrentTimeUS(c.TotalFuel())
			So(err, ShouldBeNil)
			So(now, ShouldEqual, uint64(0))
		})

		Convey("CurrentTimeUS advances as fuel is consumed", func() {
			consumed := c.usToFuel(250_000)
			now, err := c.CurrentTimeUS(c.TotalFuel() - consumed)
			So(err, ShouldBeNil)
			So(now, ShouldEqual, uint64(250_000))
		})

		Convey("Remaining fuel at or below skipped fuel traps OutOfFuel", func() {
			_, err := c.CurrentTimeUS(0)
			So(err, ShouldEqual, ErrOutOfFuel)
		})

		Convey("SleepFor(1_000_000us) at t=0 lands exactly on 1_000_000us", func() {
			// scenario 1 from spec.md §8: guest issues SleepFor(1_000_000) at t=0.
			// A 2s clock keeps the landing time below total_sim; on the 1s
			// clock remaining fuel would equal skipped fuel, which is OutOfFuel.
			long := New(50, 2_000_000)
			err := long.SkipTime(long.TotalFuel(), 1_000_000)
			So(err, ShouldBeNil)
			now, err := long.CurrentTimeUS(long.TotalFuel())
			So(err, ShouldBeNil)
			So(now, ShouldEqual, uint64(1_000_000))
		})

		Convey("SetCurrentTime at or past total_sim traps TimeOverflow", func() {
			err := c.SetCurrentTime(c.TotalFuel(), 1_000_000)
			So(err, ShouldEqual, ErrTimeOverflow)
		})

		Convey("Fuel conservation invariant holds after a skip", func() {
			remaining := c.TotalFuel() - c.usToFuel(10_000)
			err := c.SkipTime(remaining, 5_000)
			So(err, ShouldBeNil)
			now, err := c.CurrentTimeUS(remaining)
			So(err, ShouldBeNil)
			So(c.FuelConsumed(remaining)+c.SkippedFuel(), ShouldEqual, c.usToFuel(now))
		})
	})
}
