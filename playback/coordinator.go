// Package playback keeps the slot table, the engine and both surfaces in
// agreement. Everything here runs on one goroutine (see Loop); the
// Coordinator itself does no locking.
package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/spf13/afero"

	"deck-player/deck"
	"deck-player/debug"
	"deck-player/engine"
	"deck-player/settings"
	"deck-player/slots"
)

// ErrPlayback wraps engine failures reported to the user
var ErrPlayback = errors.New("playback failed")

// Options describes the outputs the engine can be pointed at
type Options struct {
	Screens      int
	AudioDevices []string
}

// Session is the transport state the surfaces show. Active is None
// exactly when State is Stopped.
type Session struct {
	State    engine.State
	Active   mo.Option[int]
	Position time.Duration
	Duration time.Duration
}

// Coordinator applies user intents and engine notifications to the slot
// registry and session.
type Coordinator struct {
	reg  *slots.Registry
	eng  engine.Engine
	opts Options

	session Session
	prefs   settings.Settings
	// loading is set from a Select until the engine reports the new clip
	// running; a Stopped seen meanwhile belongs to the previous clip.
	loading bool

	deckStatus deck.Status
	deckErr    error
	err        error
	notice     string
}

func NewCoordinator(reg *slots.Registry, eng engine.Engine, opts Options) *Coordinator {
	if opts.Screens < 1 {
		opts.Screens = 1
	}
	if len(opts.AudioDevices) == 0 {
		opts.AudioDevices = []string{"auto"}
	}
	return &Coordinator{
		reg:     reg,
		eng:     eng,
		opts:    opts,
		session: Session{Active: mo.None[int]()},
		prefs:   settings.Default(),
	}
}

// Session returns the current transport state
func (c *Coordinator) Session() Session {
	return c.session
}

// Select starts the slot's source from the beginning. Empty or invalid
// slots are ignored.
func (c *Coordinator) Select(index int) {
	slot, ok := c.reg.Get(index).Get()
	if !ok {
		debug.Log("playback", "select %d: no such slot", index)
		return
	}
	source, ok := slot.Source.Get()
	if !ok {
		debug.Log("playback", "select %d: empty", index)
		return
	}

	debug.Log("playback", "select %d %s loop=%t", index, source, slot.Loop)
	c.err = nil
	c.notice = ""
	c.session = Session{State: engine.Playing, Active: mo.Some(index)}
	c.loading = true

	if err := c.eng.SetLoop(slot.Loop); err != nil {
		c.fail(fmt.Errorf("loop: %w", err))
		return
	}
	if err := c.eng.Load(source); err != nil {
		c.fail(fmt.Errorf("load %s: %w", slot.Label(), err))
		return
	}
	if err := c.eng.Play(); err != nil {
		c.fail(fmt.Errorf("play: %w", err))
	}
}

// TogglePlayPause pauses a playing slot or resumes a paused one
func (c *Coordinator) TogglePlayPause() {
	switch c.session.State {
	case engine.Playing:
		if err := c.eng.Pause(); err != nil {
			c.fail(fmt.Errorf("pause: %w", err))
			return
		}
		c.session.State = engine.Paused
	case engine.Paused:
		if err := c.eng.Play(); err != nil {
			c.fail(fmt.Errorf("resume: %w", err))
			return
		}
		c.session.State = engine.Playing
	}
}

// Stop halts playback and clears the highlight
func (c *Coordinator) Stop() {
	if err := c.eng.Stop(); err != nil {
		debug.Error("playback", fmt.Errorf("stop: %w", err))
	}
	c.stopped()
}

func (c *Coordinator) stopped() {
	c.session = Session{State: engine.Stopped, Active: mo.None[int]()}
	c.loading = false
}

// Seek moves relative to the current position, clamped to the clip
func (c *Coordinator) Seek(offset time.Duration) {
	c.SeekTo(c.session.Position + offset)
}

// SeekTo jumps to an absolute position in the active clip
func (c *Coordinator) SeekTo(position time.Duration) {
	if c.session.State == engine.Stopped {
		return
	}
	position = max(position, 0)
	if c.session.Duration > 0 {
		position = min(position, c.session.Duration)
	}
	if err := c.eng.Seek(position); err != nil {
		c.fail(fmt.Errorf("seek: %w", err))
		return
	}
	c.session.Position = position
}

// SetLoop records the loop flag and, for the active slot, applies it to
// the running clip.
func (c *Coordinator) SetLoop(index int, enabled bool) {
	if err := c.reg.SetLoop(index, enabled); err != nil {
		c.report(err)
		return
	}
	if active, ok := c.session.Active.Get(); ok && active == index {
		if err := c.eng.SetLoop(enabled); err != nil {
			c.fail(fmt.Errorf("loop: %w", err))
		}
	}
}

// ToggleLoop flips the loop flag of a slot
func (c *Coordinator) ToggleLoop(index int) {
	slot, ok := c.reg.Get(index).Get()
	if !ok {
		c.report(fmt.Errorf("%w: %d", slots.ErrInvalidSlot, index))
		return
	}
	c.SetLoop(index, !slot.Loop)
}

// Assign points a slot at a new source. A clip already playing from the
// slot keeps playing.
func (c *Coordinator) Assign(index int, source string) {
	if err := c.reg.Assign(index, source); err != nil {
		c.report(err)
		return
	}
	c.notice = fmt.Sprintf("slot %d assigned", index+1)
}

// ClearSlot empties a slot, stopping playback if it was active
func (c *Coordinator) ClearSlot(index int) {
	if active, ok := c.session.Active.Get(); ok && active == index {
		c.Stop()
	}
	if err := c.reg.Clear(index); err != nil {
		c.report(err)
	}
}

// ApplySettings replaces the slot table and preferences. Playback stops.
func (c *Coordinator) ApplySettings(s settings.Settings) {
	if c.session.State != engine.Stopped {
		c.Stop()
	}
	s.Apply(c.reg)

	s.VideoPaths = nil
	c.prefs = s
	c.applyOutput()
}

func (c *Coordinator) applyOutput() {
	sel, ok := c.eng.(engine.OutputSelector)
	if !ok {
		return
	}
	if c.prefs.AudioIndex < 0 || c.prefs.AudioIndex >= len(c.opts.AudioDevices) {
		c.prefs.AudioIndex = 0
	}
	if c.prefs.ScreenIndex < 0 || c.prefs.ScreenIndex >= c.opts.Screens {
		c.prefs.ScreenIndex = 0
	}
	audio := c.opts.AudioDevices[c.prefs.AudioIndex]
	if err := sel.SetOutput(c.prefs.ScreenIndex, audio); err != nil {
		c.report(fmt.Errorf("output: %w", err))
	}
}

// SetOutput selects the screen and audio device by index
func (c *Coordinator) SetOutput(screen, audio int) {
	if screen < 0 || screen >= c.opts.Screens || audio < 0 || audio >= len(c.opts.AudioDevices) {
		c.report(fmt.Errorf("output %d/%d out of range", screen, audio))
		return
	}
	c.prefs.ScreenIndex = screen
	c.prefs.AudioIndex = audio
	c.notice = fmt.Sprintf("screen %d, audio %s", screen+1, c.opts.AudioDevices[audio])
	c.applyOutput()
}

// NextScreen moves video to the next screen, wrapping around
func (c *Coordinator) NextScreen() {
	c.SetOutput((c.screenIndex()+1)%c.opts.Screens, c.audioIndex())
}

// NextAudio moves sound to the next audio device, wrapping around
func (c *Coordinator) NextAudio() {
	c.SetOutput(c.screenIndex(), (c.audioIndex()+1)%len(c.opts.AudioDevices))
}

func (c *Coordinator) screenIndex() int {
	if c.prefs.ScreenIndex < 0 || c.prefs.ScreenIndex >= c.opts.Screens {
		return 0
	}
	return c.prefs.ScreenIndex
}

func (c *Coordinator) audioIndex() int {
	if c.prefs.AudioIndex < 0 || c.prefs.AudioIndex >= len(c.opts.AudioDevices) {
		return 0
	}
	return c.prefs.AudioIndex
}

// SetFontSize changes the deck label size
func (c *Coordinator) SetFontSize(f settings.FontSize) {
	if !f.Valid() {
		f = settings.FontMedium
	}
	c.prefs.FontSize = f
}

// SetControllerVisible shows or hides the deck mirror in the panel
func (c *Coordinator) SetControllerVisible(visible bool) {
	c.prefs.ControllerVisible = visible
}

// Limits bounds imported output indices
func (c *Coordinator) Limits() settings.Limits {
	return settings.Limits{Screens: c.opts.Screens, AudioDevices: len(c.opts.AudioDevices)}
}

// Export writes the slot table and preferences to path
func (c *Coordinator) Export(fs afero.Fs, path string) {
	written, err := settings.Export(fs, path, settings.Capture(c.reg, c.prefs))
	if err != nil {
		c.report(err)
		return
	}
	c.err = nil
	c.notice = "exported " + written
}

// Import loads settings from path and applies them
func (c *Coordinator) Import(fs afero.Fs, path string) {
	s, err := settings.Import(fs, path, c.Limits())
	if err != nil {
		c.report(err)
		return
	}
	c.ApplySettings(s)
	c.err = nil
	c.notice = "imported " + path
}

// HandleEngine folds a player notification into the session
func (c *Coordinator) HandleEngine(ev engine.Event) {
	switch ev.Kind {
	case engine.PositionChanged:
		if c.session.State != engine.Stopped {
			c.session.Position = ev.Position
		}
	case engine.DurationChanged:
		if c.session.State != engine.Stopped {
			c.session.Duration = ev.Duration
		}
	case engine.StateChanged:
		if c.session.State == engine.Stopped {
			return
		}
		if c.loading {
			if ev.State == engine.Stopped {
				debug.Log("playback", "stop from the previous clip ignored")
				return
			}
			c.loading = false
		}
		if ev.State == engine.Stopped {
			debug.Log("playback", "clip ended")
			c.stopped()
			return
		}
		c.session.State = ev.State
	case engine.Failed:
		c.fail(fmt.Errorf("%w: %s", ErrPlayback, ev.Message))
	}
}

// SetDeckStatus records the hardware surface state for display
func (c *Coordinator) SetDeckStatus(status deck.Status, err error) {
	c.deckStatus = status
	c.deckErr = err
}

// fail stops playback and reports err
func (c *Coordinator) fail(err error) {
	if err := c.eng.Stop(); err != nil {
		debug.Log("playback", "stop after failure: %v", err)
	}
	c.stopped()
	c.report(err)
}

func (c *Coordinator) report(err error) {
	debug.Error("playback", err)
	c.err = err
	c.notice = ""
}

// Snapshot copies everything the surfaces render
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Slots:   c.reg.All(),
		Session: c.session,
		Prefs:   c.prefs,
		Audio:   c.opts.AudioDevices[c.audioIndex()],
		Deck:    c.deckStatus,
		DeckErr: c.deckErr,
		Err:     c.err,
		Notice:  c.notice,
	}
}
