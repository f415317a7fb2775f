package guest

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"botsim/internal/deviceabi"
)

func TestDecodeOperation(t *testing.T) {
	Convey("A SleepFor tag carries its payload as DurationUS", t, func() {
		op := decodeOperation(int32(deviceabi.SleepFor), 1500)
		So(op.Kind, ShouldEqual, deviceabi.SleepFor)
		So(op.DurationUS, ShouldEqual, uint32(1500))
	})

	Convey("A SleepUntil tag carries its payload as DeadlineUS", t, func() {
		op := decodeOperation(int32(deviceabi.SleepUntil), 9000)
		So(op.Kind, ShouldEqual, deviceabi.SleepUntil)
		So(op.DeadlineUS, ShouldEqual, uint32(9000))
	})

	Convey("A tag with no payload semantics ignores the payload word", t, func() {
		op := decodeOperation(int32(deviceabi.ReadGyro), 999)
		So(op.Kind, ShouldEqual, deviceabi.ReadGyro)
		So(op.DurationUS, ShouldEqual, uint32(0))
	})
}

func TestBlockingReadyAt(t *testing.T) {
	Convey("SleepFor deadlines land at t0+duration", t, func() {
		op := deviceabi.Operation{Kind: deviceabi.SleepFor, DurationUS: 2000}
		So(blockingReadyAt(op, 1000, 500), ShouldEqual, uint64(3000))
	})

	Convey("SleepUntil with a deadline already past t0 is clamped to t0", t, func() {
		op := deviceabi.Operation{Kind: deviceabi.SleepUntil, DeadlineUS: 500}
		So(blockingReadyAt(op, 1000, 500), ShouldEqual, uint64(1000))
	})

	Convey("ReadGyro and ReadImuFusedData land 2 and 10 ticks out respectively", t, func() {
		gyro := deviceabi.Operation{Kind: deviceabi.ReadGyro}
		imu := deviceabi.Operation{Kind: deviceabi.ReadImuFusedData}
		So(blockingReadyAt(gyro, 0, 500), ShouldEqual, uint64(1000))
		So(blockingReadyAt(imu, 0, 500), ShouldEqual, uint64(5000))
	})

	Convey("Other tick-aligned reads land exactly one tick out", t, func() {
		op := deviceabi.Operation{Kind: deviceabi.ReadLineLeft}
		So(blockingReadyAt(op, 0, 500), ShouldEqual, uint64(500))
	})
}

func TestClampDuties(t *testing.T) {
	Convey("clampDuties restricts both channels to [-1000, 1000]", t, func() {
		d := clampDuties(5000, -5000)
		So(d.Left, ShouldEqual, int16(1000))
		So(d.Right, ShouldEqual, int16(-1000))
	})
}
