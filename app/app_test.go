package app

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"deck-player/config"
	"deck-player/deck"
	"deck-player/engine"
	"deck-player/playback"
	"deck-player/render"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func keyColor(dev *deck.Virtual, key int) color.RGBA {
	data, ok := dev.Image(key)
	if !ok {
		return color.RGBA{}
	}
	img, err := render.Decode(data, dev.KeyImageFormat())
	if err != nil {
		return color.RGBA{}
	}
	b := img.Bounds()
	return color.RGBAModel.Convert(img.At(b.Max.X-1, b.Max.Y-1)).(color.RGBA)
}

// screen collects program output for concurrent readers
type screen struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

const showFile = `{
    "video_paths": {"0": {"path": "/media/intro.mp4", "loop": false}},
    "screen_index": 0,
    "audio_index": 0,
    "font_size": "small",
    "controller_visible": true
}`

func TestRun(t *testing.T) {
	Convey("Given the app running on a virtual deck", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, "/show.json", []byte(showFile), 0644), ShouldBeNil)

		cfg := config.DefaultConfig()
		dev := deck.NewVirtual()
		eng := engine.NewFake()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, Options{
				Config:       cfg,
				Fs:           fs,
				SettingsPath: "/show.json",
				Engine:       eng,
				Opener:       dev.Opener(),
				TeaOptions:   []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard)},
			})
		}()
		Reset(func() {
			cancel()
			<-done
		})

		So(eventually(func() bool { return dev.IsOpen() && dev.Writes() >= 11 }), ShouldBeTrue)

		Convey("Pressing key 0 plays slot 0 and lights it", func() {
			dev.Press(0)
			So(eventually(func() bool { return slices.Contains(eng.Commands(), "play") }), ShouldBeTrue)
			So(eng.Commands(), ShouldContain, "load /media/intro.mp4")

			eng.Emit(engine.Event{Kind: engine.StateChanged, State: engine.Playing})
			So(eventually(func() bool { return keyColor(dev, 0) == color.RGBA{R: 0xff, A: 0xff} }), ShouldBeTrue)

			Convey("and the pause key pauses it", func() {
				dev.Press(cfg.Deck.PauseKey)
				So(eventually(func() bool { return slices.Contains(eng.Commands(), "pause") }), ShouldBeTrue)
			})
		})

		Convey("Pressing an empty slot does nothing", func() {
			dev.Press(5)
			dev.Press(cfg.Deck.TimeKey)
			time.Sleep(50 * time.Millisecond)
			So(slices.Contains(eng.Commands(), "play"), ShouldBeFalse)
		})

		Convey("Shutting down resets and closes the deck", func() {
			cancel()
			So(<-done, ShouldBeNil)
			done <- nil
			So(dev.IsOpen(), ShouldBeFalse)
		})
	})
}

func TestRunWithoutDeck(t *testing.T) {
	Convey("Given no deck can be opened", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, "/show.json", []byte(showFile), 0644), ShouldBeNil)

		eng := engine.NewFake()
		in, keys := io.Pipe()
		out := &screen{}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, Options{
				Config:       config.DefaultConfig(),
				Fs:           fs,
				SettingsPath: "/show.json",
				Engine:       eng,
				Opener: func(context.Context) (deck.Device, error) {
					return nil, deck.ErrDeviceUnavailable
				},
				TeaOptions: []tea.ProgramOption{tea.WithInput(in), tea.WithOutput(out)},
			})
		}()
		Reset(func() {
			cancel()
			keys.Close()
		})

		Convey("The panel reports the deck and still plays clips", func() {
			So(eventually(func() bool { return strings.Contains(out.String(), "deck: unavailable") }), ShouldBeTrue)

			_, err := keys.Write([]byte("1"))
			So(err, ShouldBeNil)
			So(eventually(func() bool { return slices.Contains(eng.Commands(), "play") }), ShouldBeTrue)
			So(eng.Commands(), ShouldContain, "load /media/intro.mp4")

			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}

func TestKeyIntent(t *testing.T) {
	Convey("Hardware keys map to intents", t, func() {
		layout := deck.Layout{PauseKey: 12, TimeKey: 14}
		for key := 0; key < 9; key++ {
			So(KeyIntent(layout, key), ShouldNotBeNil)
		}
		So(KeyIntent(layout, 12), ShouldNotBeNil)
		So(KeyIntent(layout, 14), ShouldBeNil)
		So(KeyIntent(layout, 10), ShouldBeNil)

		var intent playback.Intent = KeyIntent(layout, 9)
		So(intent, ShouldBeNil)
	})
}
