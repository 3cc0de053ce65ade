package config

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestLoad(t *testing.T) {
	Convey("Config Load", t, func() {
		fs := afero.NewMemMapFs()
		path := "/home/user/.config/deck-player/config.json"

		Convey("Should return defaults when the file is missing", func() {
			cfg, err := Load(fs, path)
			So(err, ShouldBeNil)
			So(cfg.Deck.Driver, ShouldEqual, DriverAuto)
			So(cfg.Deck.Brightness, ShouldEqual, 50)
			So(cfg.Deck.PauseKey, ShouldBeGreaterThanOrEqualTo, SlotKeys)
			So(cfg.Deck.TimeKey, ShouldBeGreaterThanOrEqualTo, SlotKeys)
			So(cfg.Player.Binary, ShouldEqual, "mpv")
			So(cfg.Render.LabelWidth, ShouldEqual, 12)
			So(cfg.Render.LabelBudget, ShouldEqual, 25)
			So(cfg.Deck.OpenTimeout, ShouldEqual, 3*time.Second)
		})

		Convey("Should read values from the file", func() {
			data := `{"deck": {"driver": "virtual", "brightness": 80}, "render": {"label_width": 10}}`
			So(afero.WriteFile(fs, path, []byte(data), 0644), ShouldBeNil)

			cfg, err := Load(fs, path)
			So(err, ShouldBeNil)
			So(cfg.Deck.Driver, ShouldEqual, DriverVirtual)
			So(cfg.Deck.Brightness, ShouldEqual, 80)
			So(cfg.Render.LabelWidth, ShouldEqual, 10)
			So(cfg.Render.LabelBudget, ShouldEqual, 25)
		})

		Convey("Should apply environment overrides", func() {
			t.Setenv("DECKPLAYER_DECK_DRIVER", "none")
			cfg, err := Load(fs, path)
			So(err, ShouldBeNil)
			So(cfg.Deck.Driver, ShouldEqual, DriverNone)
		})

		Convey("Should reject control keys inside the slot range", func() {
			data := `{"deck": {"pause_key": 4}}`
			So(afero.WriteFile(fs, path, []byte(data), 0644), ShouldBeNil)

			_, err := Load(fs, path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "deck.pause_key")
		})

		Convey("Should reject an unknown driver", func() {
			data := `{"deck": {"driver": "loupedeck"}}`
			So(afero.WriteFile(fs, path, []byte(data), 0644), ShouldBeNil)

			_, err := Load(fs, path)
			So(err, ShouldNotBeNil)
		})

		Convey("Should survive a save and reload", func() {
			cfg := DefaultConfig()
			cfg.Deck.Driver = DriverLaunchpad
			cfg.Deck.Serial = "AL12K1A01234"
			cfg.Player.Args = []string{"--fs"}
			So(cfg.Save(fs, path), ShouldBeNil)

			loaded, err := Load(fs, path)
			So(err, ShouldBeNil)
			So(loaded.Deck.Driver, ShouldEqual, DriverLaunchpad)
			So(loaded.Deck.Serial, ShouldEqual, "AL12K1A01234")
			So(loaded.Player.Args, ShouldResemble, []string{"--fs"})
			So(loaded.Deck.OpenTimeout, ShouldEqual, cfg.Deck.OpenTimeout)
		})
	})
}

func TestEnvKeyReplacer(t *testing.T) {
	Convey("EnvKeyReplacer should convert dots to underscores", t, func() {
		So(EnvKeyReplacer.Replace("deck.pause_key"), ShouldEqual, "deck_pause_key")
	})
}
