package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"deck-player/engine"
	"deck-player/playback"
	"deck-player/settings"
	"deck-player/slots"
	"deck-player/theme"
	"deck-player/widgets"
)

// direct applies posted intents straight to a coordinator
type direct struct {
	c *playback.Coordinator
}

func (d direct) Post(in playback.Intent) bool {
	in(d.c)
	return true
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel(t *testing.T) {
	th := theme.New(theme.DefaultPalette())

	Convey("Given a control panel wired to a coordinator", t, func() {
		reg := slots.New()
		So(reg.Assign(2, "/media/clip.mp4"), ShouldBeNil)
		eng := engine.NewFake()
		c := playback.NewCoordinator(reg, eng, playback.Options{Screens: 2, AudioDevices: []string{"auto", "hdmi"}})
		fs := afero.NewMemMapFs()
		m := NewModel(direct{c}, nil, fs, th, widgets.NewDeckMirror(th, 12, 14))

		refresh := func(m Model) Model {
			return press(m, SnapshotMsg(c.Snapshot()))
		}

		Convey("A stopped session shows dashes", func() {
			m = refresh(m)
			So(m.TimeLine(), ShouldEqual, "--:--:-- / --:--:--")
			So(m.StatusLine(), ShouldContainSubstring, "Stopped")
		})

		Convey("Number keys play the slot", func() {
			m = refresh(press(m, runes("3")))
			So(c.Session().State, ShouldEqual, engine.Playing)
			So(m.cursor, ShouldEqual, 2)
			So(m.StatusLine(), ShouldContainSubstring, "Playing")
			So(m.StatusLine(), ShouldContainSubstring, "clip.mp4")

			c.HandleEngine(engine.Event{Kind: engine.DurationChanged, Duration: 100 * time.Second})
			c.HandleEngine(engine.Event{Kind: engine.PositionChanged, Position: 40 * time.Second})
			m = refresh(m)
			So(m.TimeLine(), ShouldEqual, "00:00:40 / 00:01:40  (-00:01:00)")
			So(m.fraction(), ShouldAlmostEqual, 0.4)

			Convey("space pauses and s stops", func() {
				m = refresh(press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}))
				So(m.StatusLine(), ShouldContainSubstring, "Paused")
				m = refresh(press(m, runes("s")))
				So(c.Session().State, ShouldEqual, engine.Stopped)
			})

			Convey("arrows seek five seconds", func() {
				press(m, tea.KeyMsg{Type: tea.KeyRight})
				So(c.Session().Position, ShouldEqual, 45*time.Second)
				press(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft})
				So(c.Session().Position, ShouldEqual, 35*time.Second)
			})

			Convey("0 restarts the clip", func() {
				press(m, runes("0"))
				So(c.Session().Position, ShouldEqual, time.Duration(0))
				So(eng.Commands()[len(eng.Commands())-1], ShouldEqual, "seek 0s")
			})
		})

		Convey("Empty slots stay stopped", func() {
			press(m, runes("1"), runes("9"))
			So(c.Session().State, ShouldEqual, engine.Stopped)
			So(eng.Commands(), ShouldBeEmpty)
		})

		Convey("l toggles loop on the cursor slot", func() {
			m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, runes("l"))
			So(m.cursor, ShouldEqual, 2)
			So(c.Snapshot().Slots[2].Loop, ShouldBeTrue)
		})

		Convey("o prompts for a file", func() {
			m = press(m, runes("o"))
			So(m.prompt, ShouldEqual, promptAssign)

			m.input.SetValue("/media/new.mov")
			m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.prompt, ShouldEqual, promptNone)
			So(c.Snapshot().Slots[0].Label(), ShouldEqual, "new.mov")
		})

		Convey("esc cancels a prompt", func() {
			m = press(m, runes("o"), tea.KeyMsg{Type: tea.KeyEsc})
			So(m.prompt, ShouldEqual, promptNone)
			So(c.Snapshot().Slots[0].Source.IsAbsent(), ShouldBeTrue)
		})

		Convey("e exports settings", func() {
			m = press(m, runes("e"))
			m.input.SetValue("/show")
			press(m, tea.KeyMsg{Type: tea.KeyEnter})
			exists, _ := afero.Exists(fs, "/show.json")
			So(exists, ShouldBeTrue)
		})

		Convey("v and a cycle the outputs", func() {
			m = refresh(press(m, runes("v")))
			So(m.snap.Prefs.ScreenIndex, ShouldEqual, 1)
			So(m.View(), ShouldContainSubstring, "screen: 2")
			m = refresh(press(m, runes("a")))
			So(m.snap.Prefs.AudioIndex, ShouldEqual, 1)
			So(m.View(), ShouldContainSubstring, "audio: hdmi")
			So(eng.Commands(), ShouldResemble, []string{"output 1 auto", "output 1 hdmi"})
		})

		Convey("f cycles the deck font size", func() {
			m = refresh(press(m, runes("f")))
			So(m.snap.Prefs.FontSize, ShouldEqual, settings.FontLarge)
			m = refresh(press(m, runes("f")))
			So(m.snap.Prefs.FontSize, ShouldEqual, settings.FontSmall)
		})

		Convey("c hides the deck mirror", func() {
			m = refresh(m)
			So(m.View(), ShouldContainSubstring, "╭")
			m = refresh(press(m, runes("c")))
			So(m.snap.Prefs.ControllerVisible, ShouldBeFalse)
			So(m.View(), ShouldNotContainSubstring, "╭")
		})

		Convey("A narrow terminal gets the slot strip", func() {
			m = refresh(press(m, tea.WindowSizeMsg{Width: 40, Height: 30}))
			So(m.View(), ShouldNotContainSubstring, "╭")
			So(m.View(), ShouldContainSubstring, string(th.Symbols.Solid))
		})

		Convey("q stops and quits", func() {
			m = refresh(press(m, runes("3")))
			next, cmd := m.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(next.(Model).View(), ShouldEqual, "")
			So(c.Session().State, ShouldEqual, engine.Stopped)
		})
	})
}
