// Package engine drives the media player that renders video on the
// output screen. The rest of the program only sees the narrow command
// set of Engine and the Event stream it produces.
package engine

import (
	"fmt"
	"time"
)

// State is the transport state reported by the player
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// EventKind identifies what an Event carries
type EventKind int

const (
	PositionChanged EventKind = iota
	DurationChanged
	StateChanged
	Failed
)

// Event is a notification from the player. Only the field matching Kind
// is meaningful.
type Event struct {
	Kind     EventKind
	Position time.Duration
	Duration time.Duration
	State    State
	Message  string
}

func (e Event) String() string {
	switch e.Kind {
	case PositionChanged:
		return fmt.Sprintf("position %s", e.Position)
	case DurationChanged:
		return fmt.Sprintf("duration %s", e.Duration)
	case StateChanged:
		return fmt.Sprintf("state %s", e.State)
	default:
		return fmt.Sprintf("error %q", e.Message)
	}
}

// Engine is an opaque playback session
type Engine interface {
	Load(uri string) error
	Play() error
	Pause() error
	Stop() error
	Seek(position time.Duration) error
	SetLoop(infinite bool) error
	Events() <-chan Event
	Close() error
}

// OutputSelector is implemented by engines that can move video to
// another screen or audio to another device.
type OutputSelector interface {
	SetOutput(screen int, audioDevice string) error
}
