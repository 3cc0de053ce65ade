package render

import (
	"image"
	"image/color"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"deck-player/engine"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func TestFormatTime(t *testing.T) {
	Convey("FormatTime", t, func() {
		So(FormatTime(0), ShouldEqual, "00:00:00")
		So(FormatTime(3661*time.Second), ShouldEqual, "01:01:01")
		So(FormatTime(1499*time.Millisecond), ShouldEqual, "00:00:01")
		So(FormatTime(1500*time.Millisecond), ShouldEqual, "00:00:02")
		So(FormatTime(-5*time.Second), ShouldEqual, "00:00:00")
		So(FormatTime(100*time.Hour), ShouldEqual, "100:00:00")
	})

	Convey("Remaining never goes negative", t, func() {
		So(Remaining(10*time.Second, 60*time.Second), ShouldEqual, 50*time.Second)
		So(Remaining(61*time.Second, 60*time.Second), ShouldEqual, time.Duration(0))
		So(FormatTime(Remaining(61*time.Second, 60*time.Second)), ShouldEqual, "00:00:00")
	})
}

func TestWrap(t *testing.T) {
	Convey("Label layout", t, func() {
		Convey("Should keep short labels on one line", func() {
			So(Wrap("intro.mp4", 25, 12), ShouldResemble, []string{"intro.mp4"})
		})

		Convey("Should truncate to the budget with an ellipsis", func() {
			out := Truncate("a_very_long_file_name_for_a_clip.mp4", 25)
			So(out, ShouldEqual, "a_very_long_file_name_...")
			So(len([]rune(out)), ShouldEqual, 25)
		})

		Convey("Should leave labels that fit the budget alone", func() {
			So(Truncate("abcdefghijklmnopqrstuvw", 25), ShouldEqual, "abcdefghijklmnopqrstuvw")
			So(Truncate("abcdefghijklmnopqrstuvwxy", 25), ShouldEqual, "abcdefghijklmnopqrstuvwxy")
			So(Truncate("abcdefghijklmnopqrstuvwxyz", 25), ShouldEqual, "abcdefghijklmnopqrstuv...")
			So(Truncate("intro.mp4", 11), ShouldEqual, "intro.mp4")
			So(Truncate("intro.mp4", 9), ShouldEqual, "intro.mp4")
		})

		Convey("Should wrap on words and hard-break long words", func() {
			lines := Wrap("opening night.mov", 25, 12)
			So(lines, ShouldResemble, []string{"opening", "night.mov"})

			for _, line := range Wrap("abcdefghijklmnopqrstuvwxyz", 25, 12) {
				So(len(line), ShouldBeLessThanOrEqualTo, 12)
			}
		})

		Convey("Should return nothing for an empty label", func() {
			So(Wrap("", 25, 12), ShouldBeEmpty)
		})
	})
}

func marker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, red)
	return img
}

func findRed(img image.Image) image.Point {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r == 0xffff {
				return image.Pt(x, y)
			}
		}
	}
	return image.Pt(-1, -1)
}

func TestTransform(t *testing.T) {
	Convey("Device transform", t, func() {
		Convey("Should leave the image alone without flags", func() {
			So(findRed(Transform(marker(), Format{})), ShouldResemble, image.Pt(0, 0))
		})

		Convey("Should flip horizontally", func() {
			So(findRed(Transform(marker(), Format{FlipX: true})), ShouldResemble, image.Pt(2, 0))
		})

		Convey("Should flip vertically", func() {
			So(findRed(Transform(marker(), Format{FlipY: true})), ShouldResemble, image.Pt(0, 1))
		})

		Convey("Should flip both ways", func() {
			So(findRed(Transform(marker(), Format{FlipX: true, FlipY: true})), ShouldResemble, image.Pt(2, 1))
		})

		Convey("Should rotate counter-clockwise", func() {
			out := Transform(marker(), Format{Rotation: 90})
			So(out.Bounds().Size(), ShouldResemble, image.Pt(2, 3))
			So(findRed(out), ShouldResemble, image.Pt(0, 2))

			So(findRed(Transform(marker(), Format{Rotation: 180})), ShouldResemble, image.Pt(2, 1))

			out = Transform(marker(), Format{Rotation: 270})
			So(findRed(out), ShouldResemble, image.Pt(1, 0))

			So(findRed(Transform(marker(), Format{Rotation: -90})), ShouldResemble, image.Pt(1, 0))
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Encoding", t, func() {
		img := marker()
		for _, enc := range []string{BMP, PNG, JPEG} {
			f := Format{Encoding: enc}
			data, err := Encode(img, f)
			So(err, ShouldBeNil)
			So(len(data), ShouldBeGreaterThan, 0)

			back, err := Decode(data, f)
			So(err, ShouldBeNil)
			So(back.Bounds().Size(), ShouldResemble, image.Pt(3, 2))
		}

		_, err := Encode(img, Format{Encoding: "TIFF"})
		So(err, ShouldNotBeNil)
	})
}

func TestKey(t *testing.T) {
	Convey("Key images", t, func() {
		r := New(nil, DefaultStyle())
		size := image.Pt(72, 72)

		Convey("Should paint the active slot with the highlight color", func() {
			img := r.Key(View{Kind: SlotKey, Slot: 0, Label: "intro.mp4", Highlighted: true}, size)
			So(img.RGBAAt(0, 0), ShouldResemble, red)
			So(img.RGBAAt(71, 71), ShouldResemble, red)
		})

		Convey("Should paint inactive slots neutral", func() {
			img := r.Key(View{Kind: SlotKey, Slot: 3, Label: "intro.mp4"}, size)
			So(img.RGBAAt(0, 0), ShouldResemble, color.RGBA{A: 0xff})
		})

		Convey("Should draw the slot number", func() {
			img := r.Key(View{Kind: SlotKey, Slot: 8}, size)
			lit := 0
			for y := numberTop; y < labelTop; y++ {
				for x := 0; x < 72; x++ {
					if img.RGBAAt(x, y).G > 0x80 {
						lit++
					}
				}
			}
			So(lit, ShouldBeGreaterThan, 0)
		})

		Convey("Should show pause bars while playing", func() {
			img := r.Key(View{Kind: PauseKey, State: engine.Playing}, size)
			barW := 72 / 6
			So(img.RGBAAt(36-barW, 36), ShouldResemble, color.RGBA{0xff, 0xff, 0xff, 0xff})
			So(img.RGBAAt(36, 36), ShouldResemble, color.RGBA{A: 0xff})
		})

		Convey("Should show a triangle while paused", func() {
			img := r.Key(View{Kind: PauseKey, State: engine.Paused}, size)
			So(img.RGBAAt(72/3+2, 36), ShouldResemble, color.RGBA{0xff, 0xff, 0xff, 0xff})
			So(img.RGBAAt(52, 20), ShouldResemble, color.RGBA{A: 0xff})
		})

		Convey("Should leave the toggle blank while stopped", func() {
			img := r.Key(View{Kind: PauseKey, State: engine.Stopped}, size)
			lit := 0
			for y := 0; y < 72; y++ {
				for x := 0; x < 72; x++ {
					if img.RGBAAt(x, y) != (color.RGBA{A: 0xff}) {
						lit++
					}
				}
			}
			So(lit, ShouldEqual, 0)
		})

		Convey("Should render through the device format", func() {
			f := Format{Size: image.Pt(80, 80), Encoding: BMP, FlipX: true, FlipY: true}
			data, err := r.Render(View{Kind: TimeKey, State: engine.Playing, Position: time.Minute, Duration: time.Hour}, f)
			So(err, ShouldBeNil)
			back, err := Decode(data, f)
			So(err, ShouldBeNil)
			So(back.Bounds().Size(), ShouldResemble, image.Pt(80, 80))
		})

		Convey("Should fall back to basicfont for unparseable fonts", func() {
			broken := New([]byte("not a font"), DefaultStyle())
			img := broken.Key(View{Kind: SlotKey, Slot: 1, Label: "x"}, size)
			So(img.Bounds().Size(), ShouldResemble, size)
		})
	})
}
