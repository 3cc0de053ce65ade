// Package app wires the slot table, engine, deck and control panel
// together and runs them until the panel quits.
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"deck-player/config"
	"deck-player/deck"
	"deck-player/debug"
	"deck-player/engine"
	"deck-player/playback"
	"deck-player/render"
	"deck-player/settings"
	"deck-player/slots"
	"deck-player/theme"
	"deck-player/tui"
	"deck-player/widgets"
)

// Options is what main hands to Run
type Options struct {
	Config *config.Config
	Fs     afero.Fs

	// SettingsPath, when set, is imported before the panel starts
	SettingsPath string

	// Engine overrides the mpv engine (tests)
	Engine engine.Engine
	// Opener overrides the configured deck driver (tests)
	Opener deck.Opener

	TeaOptions []tea.ProgramOption
}

// Run blocks until the control panel exits or ctx ends
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	th, err := loadTheme(opts.Fs, cfg.Theme)
	if err != nil {
		return err
	}
	renderer := render.New(loadFont(opts.Fs, cfg.Render.FontPath), keyStyle(th, cfg.Render))

	eng := opts.Engine
	if eng == nil {
		mpv := engine.NewMPV(engine.Options{
			Binary:       cfg.Player.Binary,
			Args:         cfg.Player.Args,
			SocketPath:   cfg.SocketPath(),
			StartTimeout: cfg.Player.StartTimeout,
		})
		if err := mpv.Start(ctx); err != nil {
			return fmt.Errorf("player: %w", err)
		}
		eng = mpv
	}
	defer eng.Close()

	coord := playback.NewCoordinator(slots.New(), eng, playback.Options{
		Screens:      cfg.Player.Screens,
		AudioDevices: cfg.Player.AudioDevices,
	})
	if opts.SettingsPath != "" {
		coord.Import(opts.Fs, opts.SettingsPath)
	} else {
		coord.ApplySettings(settings.Default())
	}
	loop := playback.NewLoop(coord)

	opener := opts.Opener
	if opener == nil {
		opener = deck.NewOpener(cfg.Deck)
	}
	layout := deck.Layout{PauseKey: cfg.Deck.PauseKey, TimeKey: cfg.Deck.TimeKey}
	surface := deck.NewSurface(opener, renderer, deck.Options{
		Layout:      layout,
		Brightness:  cfg.Deck.Brightness,
		OpenTimeout: cfg.Deck.OpenTimeout,
		OnPress: func(key int) {
			if in := KeyIntent(layout, key); in != nil {
				loop.Post(in)
			}
		},
		OnStatus: func(status deck.Status, err error) {
			loop.Post(playback.DeckStatusChanged(status, err))
		},
	})
	defer surface.Close()

	updates := make(chan playback.Snapshot, 1)
	loop.Observe(&deckObserver{surface: surface, renderer: renderer})
	loop.Observe(playback.ObserverFunc(func(s playback.Snapshot) {
		latest(updates, s)
	}))

	surface.Start(ctx)
	go loop.Run(ctx)

	mirror := widgets.NewDeckMirror(th, cfg.Deck.PauseKey, cfg.Deck.TimeKey)
	model := tui.NewModel(loop, updates, opts.Fs, th, mirror)
	program := tea.NewProgram(model, opts.TeaOptions...)

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err = program.Run()

	// stop the loop before the deck and engine are torn down
	cancel()
	<-loop.Done()
	debug.Log("app", "shutdown")
	return err
}

// KeyIntent maps a hardware key to what it does, or nil for keys with no
// action.
func KeyIntent(layout deck.Layout, key int) playback.Intent {
	switch {
	case slots.Valid(key):
		return playback.Select(key)
	case key == layout.PauseKey:
		return playback.TogglePlayPause()
	default:
		return nil
	}
}

// latest replaces whatever is queued with s
func latest(ch chan playback.Snapshot, s playback.Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// deckObserver pushes every snapshot to the hardware and swaps the label
// size when the preference changes.
type deckObserver struct {
	surface  *deck.Surface
	renderer *render.Renderer
	font     settings.FontSize
}

func (d *deckObserver) Publish(s playback.Snapshot) {
	if s.Prefs.FontSize != d.font {
		d.font = s.Prefs.FontSize
		d.surface.SetRenderer(d.renderer.WithLabelPoints(d.font.Points()))
	}
	d.surface.Push(s.Views())
}

func loadTheme(fs afero.Fs, cfg config.ThemeConfig) (*theme.Theme, error) {
	if cfg.Palette == "" {
		return theme.New(theme.DefaultPalette()), nil
	}
	palette, err := theme.LoadGPL(fs, cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return theme.New(palette), nil
}

// loadFont returns nil (the built-in font) when path is unset or unreadable
func loadFont(fs afero.Fs, path string) []byte {
	if path == "" {
		return nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		debug.Warn("app", "font %s: %v", path, err)
		return nil
	}
	return data
}

func keyStyle(th *theme.Theme, cfg config.RenderConfig) render.Style {
	style := render.DefaultStyle()
	style.Highlight = th.Keys.Highlight.Color()
	style.Neutral = th.Keys.Neutral.Color()
	style.Text = th.Keys.Text.Color()
	style.Glyph = th.Keys.Glyph.Color()
	style.LabelWidth = cfg.LabelWidth
	style.LabelBudget = cfg.LabelBudget
	return style
}
