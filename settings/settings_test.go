package settings

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"deck-player/slots"
)

func TestRoundTrip(t *testing.T) {
	Convey("Export then import", t, func() {
		fs := afero.NewMemMapFs()
		limits := Limits{Screens: 2, AudioDevices: 3}

		reg := slots.New()
		So(reg.Assign(0, "/videos/opening.mp4"), ShouldBeNil)
		So(reg.Assign(4, "/videos/loop bed.mov"), ShouldBeNil)
		So(reg.SetLoop(4, true), ShouldBeNil)
		So(reg.Assign(8, "/videos/credits.mkv"), ShouldBeNil)

		prefs := Default()
		prefs.ScreenIndex = 1
		prefs.AudioIndex = 2
		prefs.FontSize = FontLarge
		prefs.ControllerVisible = false

		written, err := Export(fs, "/shows/friday", Capture(reg, prefs))
		So(err, ShouldBeNil)
		So(written, ShouldEqual, "/shows/friday.json")

		Convey("Should reproduce slots and loop flags in a fresh registry", func() {
			s, err := Import(fs, written, limits)
			So(err, ShouldBeNil)

			fresh := slots.New()
			s.Apply(fresh)
			So(fresh.All(), ShouldResemble, reg.All())
		})

		Convey("Should keep preferences", func() {
			s, err := Import(fs, written, limits)
			So(err, ShouldBeNil)
			So(s.ScreenIndex, ShouldEqual, 1)
			So(s.AudioIndex, ShouldEqual, 2)
			So(s.FontSize, ShouldEqual, FontLarge)
			So(s.ControllerVisible, ShouldBeFalse)
		})

		Convey("Should only write assigned slots", func() {
			s := Capture(reg, prefs)
			So(len(s.VideoPaths), ShouldEqual, 3)
			e, ok := s.Slot(4)
			So(ok, ShouldBeTrue)
			So(e.Loop, ShouldBeTrue)
			_, ok = s.Slot(1)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Decode", t, func() {
		limits := Limits{Screens: 2, AudioDevices: 1}

		Convey("Should fail on malformed JSON", func() {
			_, err := Decode([]byte(`{"video_paths": [`), limits)
			So(errors.Is(err, ErrInvalidSettings), ShouldBeTrue)
		})

		Convey("Should fill defaults for missing keys", func() {
			s, err := Decode([]byte(`{}`), limits)
			So(err, ShouldBeNil)
			So(s.FontSize, ShouldEqual, FontMedium)
			So(s.ControllerVisible, ShouldBeTrue)
			So(s.ScreenIndex, ShouldEqual, 0)
			So(s.VideoPaths, ShouldBeEmpty)
		})

		Convey("Should reset out of range indices", func() {
			s, err := Decode([]byte(`{"screen_index": 5, "audio_index": -1, "font_size": "huge"}`), limits)
			So(err, ShouldBeNil)
			So(s.ScreenIndex, ShouldEqual, 0)
			So(s.AudioIndex, ShouldEqual, 0)
			So(s.FontSize, ShouldEqual, FontMedium)
		})

		Convey("Should ignore mistyped values and keep the rest", func() {
			data := `{"video_paths": {"0": {"path": "/a.mp4"}}, "screen_index": "1", "audio_index": 1.5, "font_size": 3, "controller_visible": "no"}`
			s, err := Decode([]byte(data), Limits{Screens: 2, AudioDevices: 2})
			So(err, ShouldBeNil)
			So(s.ScreenIndex, ShouldEqual, 0)
			So(s.AudioIndex, ShouldEqual, 0)
			So(s.FontSize, ShouldEqual, FontMedium)
			So(s.ControllerVisible, ShouldBeTrue)
			So(s.VideoPaths["0"].Path, ShouldEqual, "/a.mp4")

			s, err = Decode([]byte(`{"video_paths": ["/a.mp4"], "screen_index": 1}`), Limits{Screens: 2, AudioDevices: 1})
			So(err, ShouldBeNil)
			So(s.VideoPaths, ShouldBeEmpty)
			So(s.ScreenIndex, ShouldEqual, 1)
		})

		Convey("Should drop unknown slot keys", func() {
			data := `{"video_paths": {"3": {"path": "/a.mp4", "loop": true}, "9": {"path": "/b.mp4"}, "x": {"path": "/c.mp4"}, "5": "bogus", "6": {"path": ""}}}`
			s, err := Decode([]byte(data), limits)
			So(err, ShouldBeNil)
			So(len(s.VideoPaths), ShouldEqual, 1)
			So(s.VideoPaths["3"], ShouldResemble, Entry{Path: "/a.mp4", Loop: true})
		})
	})
}

func TestFontSize(t *testing.T) {
	Convey("Font size presets", t, func() {
		So(FontSmall.Points(), ShouldEqual, 10)
		So(FontMedium.Points(), ShouldEqual, 12)
		So(FontLarge.Points(), ShouldEqual, 14)
		So(FontSize("huge").Points(), ShouldEqual, 12)
		So(FontSize("huge").Valid(), ShouldBeFalse)
	})
}
