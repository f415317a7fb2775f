package futures

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/deviceabi"
)

func TestIssueAndSweepTimeBased(t *testing.T) {
	Convey("Given a table with a SleepFor future issued at t=0", t, func() {
		tbl := New()
		op := deviceabi.Operation{Kind: deviceabi.SleepFor, DurationUS: 1000}
		id, readyAt := tbl.Issue(op, 0, 500)

		Convey("Its ready_at is t0+duration and it starts Pending", func() {
			So(readyAt, ShouldEqual, uint64(1000))
			res, err := tbl.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeTrue)
		})

		Convey("Sweeping before ready_at leaves it Pending", func() {
			tbl.Sweep(500, false, func(deviceabi.Operation, uint64) deviceabi.Value { return deviceabi.Value{} })
			res, err := tbl.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeTrue)
		})

		Convey("Sweeping at or past ready_at latches Ready, and a second poll is ConsumedHandle", func() {
			tbl.Sweep(1000, false, func(deviceabi.Operation, uint64) deviceabi.Value {
				return deviceabi.Value{}.WithU32(0, 42)
			})
			res, err := tbl.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeFalse)
			So(res.Value.U32(0), ShouldEqual, uint32(42))

			_, err = tbl.Poll(id)
			So(err, ShouldEqual, ErrConsumedHandle)
		})
	})
}

func TestSameReadyTimeOrdersByID(t *testing.T) {
	Convey("Given two SleepUntil futures with the same deadline", t, func() {
		tbl := New()
		op := deviceabi.Operation{Kind: deviceabi.SleepUntil, DeadlineUS: 2000}
		id1, _ := tbl.Issue(op, 0, 500)
		id2, _ := tbl.Issue(op, 0, 500)

		var latched uint32
		tbl.Sweep(2000, false, func(o deviceabi.Operation, readyAt uint64) deviceabi.Value {
			latched++
			return deviceabi.Value{}.WithU32(0, latched)
		})

		Convey("Both become Ready, and their values were latched in issue order", func() {
			var order []uint32
			for _, id := range []uint32{id1, id2} {
				res, err := tbl.Poll(id)
				So(err, ShouldBeNil)
				So(res.Pending, ShouldBeFalse)
				order = append(order, res.Value.U32(0))
			}
			So(order, ShouldResemble, []uint32{1, 2})
		})
	})
}

func TestInvalidAndForgottenHandles(t *testing.T) {
	Convey("Polling a handle that was never issued returns InvalidHandle", t, func() {
		tbl := New()
		_, err := tbl.Poll(999)
		So(err, ShouldEqual, ErrInvalidHandle)
	})

	Convey("Forget removes a pending handle from every index", t, func() {
		tbl := New()
		id, _ := tbl.Issue(deviceabi.Operation{Kind: deviceabi.WaitEnabled}, 0, 500)
		tbl.Forget(id)
		_, err := tbl.Poll(id)
		So(err, ShouldEqual, ErrInvalidHandle)
	})
}

func TestSignalFutureLatchesOnMatchingEdge(t *testing.T) {
	Convey("Given a WaitEnabled future issued while disabled", t, func() {
		tbl := New()
		id, _ := tbl.Issue(deviceabi.Operation{Kind: deviceabi.WaitEnabled}, 0, 500)

		Convey("Sweeping with enabled=false leaves it Pending", func() {
			tbl.Sweep(100, false, nil)
			res, err := tbl.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeTrue)
		})

		Convey("Sweeping with enabled=true latches Ready with an empty payload", func() {
			tbl.Sweep(100, true, nil)
			res, err := tbl.Poll(id)
			So(err, ShouldBeNil)
			So(res.Pending, ShouldBeFalse)
			So(res.Value, ShouldResemble, deviceabi.Value{})
		})
	})
}
