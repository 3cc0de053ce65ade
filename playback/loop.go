package playback

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"deck-player/deck"
	"deck-player/debug"
	"deck-player/engine"
	"deck-player/settings"
)

// Intent is a request applied on the loop goroutine
type Intent func(c *Coordinator)

func Select(index int) Intent          { return func(c *Coordinator) { c.Select(index) } }
func TogglePlayPause() Intent          { return func(c *Coordinator) { c.TogglePlayPause() } }
func Stop() Intent                     { return func(c *Coordinator) { c.Stop() } }
func Seek(offset time.Duration) Intent { return func(c *Coordinator) { c.Seek(offset) } }
func SeekTo(pos time.Duration) Intent  { return func(c *Coordinator) { c.SeekTo(pos) } }
func ToggleLoop(index int) Intent      { return func(c *Coordinator) { c.ToggleLoop(index) } }
func ClearSlot(index int) Intent       { return func(c *Coordinator) { c.ClearSlot(index) } }

func Assign(index int, source string) Intent {
	return func(c *Coordinator) { c.Assign(index, source) }
}

func ApplySettings(s settings.Settings) Intent {
	return func(c *Coordinator) { c.ApplySettings(s) }
}

func SetFontSize(f settings.FontSize) Intent {
	return func(c *Coordinator) { c.SetFontSize(f) }
}

func SetControllerVisible(visible bool) Intent {
	return func(c *Coordinator) { c.SetControllerVisible(visible) }
}

func NextScreen() Intent { return func(c *Coordinator) { c.NextScreen() } }
func NextAudio() Intent  { return func(c *Coordinator) { c.NextAudio() } }

func Export(fs afero.Fs, path string) Intent {
	return func(c *Coordinator) { c.Export(fs, path) }
}

func Import(fs afero.Fs, path string) Intent {
	return func(c *Coordinator) { c.Import(fs, path) }
}

func DeckStatusChanged(status deck.Status, err error) Intent {
	return func(c *Coordinator) { c.SetDeckStatus(status, err) }
}

// Observer receives every published snapshot on the loop goroutine. It
// must not block for long and must not call back into the loop.
type Observer interface {
	Publish(Snapshot)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }

// Loop is the single goroutine that owns a Coordinator. Hardware
// callbacks, the control panel and the engine all reach it through
// channels.
type Loop struct {
	c         *Coordinator
	intents   chan Intent
	observers []Observer
	done      chan struct{}
}

func NewLoop(c *Coordinator) *Loop {
	return &Loop{
		c:       c,
		intents: make(chan Intent, 64),
		done:    make(chan struct{}),
	}
}

// Observe registers o. Call before Run.
func (l *Loop) Observe(o Observer) {
	l.observers = append(l.observers, o)
}

// Post queues an intent without blocking. It reports false when the queue
// is full or the loop has exited.
func (l *Loop) Post(in Intent) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.intents <- in:
		return true
	default:
		debug.Log("playback", "intent queue full, dropped")
		return false
	}
}

// Done is closed when Run returns
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run applies intents and engine events until ctx ends. Observers see
// a snapshot after every change, including the initial state.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	events := l.c.eng.Events()
	l.publish()
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-l.intents:
			in(l.c)
		case ev, ok := <-events:
			if !ok {
				debug.Log("playback", "engine event stream closed")
				events = nil
				continue
			}
			if ev.Kind != engine.PositionChanged {
				debug.Log("playback", "engine %s", ev)
			}
			l.c.HandleEngine(ev)
		}
		l.publish()
	}
}

func (l *Loop) publish() {
	snap := l.c.Snapshot()
	for _, o := range l.observers {
		o.Publish(snap)
	}
}
