package theme

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestPalette(t *testing.T) {
	Convey("Palette", t, func() {
		Convey("Should parse the built-in palette", func() {
			p := DefaultPalette()
			So(p.Name, ShouldEqual, "deck")
			So(len(p.Colors), ShouldEqual, 9)
		})

		Convey("Should skip headers and comments", func() {
			src := "GIMP Palette\nName: two\nColumns: 2\n# comment\n0 0 0\tblack\n255 255 255\twhite\n"
			p, err := ParseGPL(strings.NewReader(src))
			So(err, ShouldBeNil)
			So(p.Colors, ShouldResemble, []RGB{{0, 0, 0}, {255, 255, 255}})
		})

		Convey("Should reject a palette without colors", func() {
			_, err := ParseGPL(strings.NewReader("GIMP Palette\nName: empty\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Should interpolate between neighbours", func() {
			p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
			So(p.Lookup(-1), ShouldResemble, RGB{0, 0, 0})
			So(p.Lookup(2), ShouldResemble, RGB{200, 100, 50})
			So(p.Lookup(0.5), ShouldResemble, RGB{100, 50, 25})
		})

		Convey("Should load from a filesystem", func() {
			fs := afero.NewMemMapFs()
			So(afero.WriteFile(fs, "/p.gpl", []byte("GIMP Palette\n1 2 3\n"), 0644), ShouldBeNil)
			p, err := LoadGPL(fs, "/p.gpl")
			So(err, ShouldBeNil)
			So(p.Colors[0], ShouldResemble, RGB{1, 2, 3})

			_, err = LoadGPL(fs, "/missing.gpl")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTheme(t *testing.T) {
	Convey("Theme colors", t, func() {
		th := New(DefaultPalette())
		So(string(th.BG()), ShouldEqual, "#121018")
		So(string(th.Active()), ShouldEqual, "#e62828")
		So(string(th.KeyColor(th.Keys.Highlight)), ShouldEqual, "#ff0000")
		So(th.Keys.Neutral.Color().A, ShouldEqual, 0xff)
	})
}
