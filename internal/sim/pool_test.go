package sim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPickName(t *testing.T) {
	Convey("A declared entry name always wins over the guest-reported one", t, func() {
		So(pickName("alpha", "bravo"), ShouldEqual, "alpha")
	})

	Convey("An empty declared name falls back to the guest-reported one", t, func() {
		So(pickName("", "bravo"), ShouldEqual, "bravo")
	})

	Convey("Both empty yields an empty name", t, func() {
		So(pickName("", ""), ShouldEqual, "")
	})
}
