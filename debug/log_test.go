package debug

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestLog(t *testing.T) {
	Convey("Debug log", t, func() {
		Reset(Disable)

		Convey("Should drop messages while disabled", func() {
			Disable()
			So(Enabled(), ShouldBeFalse)
			Log("deck", "ignored %d", 1)
		})

		Convey("Should tag messages with their category", func() {
			var buf bytes.Buffer
			EnableWriter(&buf)
			Log("playback", "select slot=%d", 3)
			So(buf.String(), ShouldContainSubstring, "component=playback")
			So(buf.String(), ShouldContainSubstring, "select slot=3")
		})

		Convey("Should record errors and skip nil", func() {
			var buf bytes.Buffer
			EnableWriter(&buf)
			Error("engine", nil)
			So(buf.Len(), ShouldEqual, 0)
			Error("engine", errors.New("socket closed"))
			So(buf.String(), ShouldContainSubstring, "socket closed")
		})

		Convey("Should only emit every nth call", func() {
			var buf bytes.Buffer
			EnableWriter(&buf)
			for i := 0; i < 5; i++ {
				LogEvery(5, "tick", "position")
			}
			So(bytes.Count(buf.Bytes(), []byte("position")), ShouldEqual, 1)
		})

		Convey("Should write to a file on the given fs", func() {
			fs := afero.NewMemMapFs()
			So(Enable(fs, "/logs/debug.log", "info"), ShouldBeNil)
			Warn("deck", "transport lost")
			Disable()

			data, err := afero.ReadFile(fs, "/logs/debug.log")
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "transport lost")
			So(string(data), ShouldContainSubstring, "Debug logging started")
		})
	})
}
