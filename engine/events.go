package engine

import (
	"time"
)

// observed properties and their observe_property ids
var observed = []struct {
	id   int
	name string
}{
	{1, "time-pos"},
	{2, "duration"},
	{3, "pause"},
}

// tracker turns raw mpv events into Events. It remembers whether a file
// is loaded so a pause flip before the first file is not reported as
// playback.
type tracker struct {
	loaded bool
	paused bool
	state  State
}

func (t *tracker) transport() State {
	switch {
	case !t.loaded:
		return Stopped
	case t.paused:
		return Paused
	default:
		return Playing
	}
}

// settle emits a StateChanged when the derived transport state moved
func (t *tracker) settle(out []Event) []Event {
	if s := t.transport(); s != t.state {
		t.state = s
		out = append(out, Event{Kind: StateChanged, State: s})
	}
	return out
}

func (t *tracker) translate(msg ipcMessage) []Event {
	var out []Event

	switch msg.Event {
	case "property-change":
		switch msg.Name {
		case "time-pos":
			if secs, ok := msg.Data.(float64); ok {
				out = append(out, Event{Kind: PositionChanged, Position: seconds(secs)})
			}
		case "duration":
			if secs, ok := msg.Data.(float64); ok {
				out = append(out, Event{Kind: DurationChanged, Duration: seconds(secs)})
			}
		case "pause":
			if paused, ok := msg.Data.(bool); ok {
				t.paused = paused
				out = t.settle(out)
			}
		}

	case "file-loaded":
		t.loaded = true
		out = t.settle(out)

	case "end-file":
		switch msg.Reason {
		case "stop", "redirect":
			// superseded by a new loadfile or an explicit stop
			t.loaded = false
			t.state = Stopped
		case "error":
			t.loaded = false
			t.state = Stopped
			reason := msg.FileError
			if reason == "" {
				reason = "playback failed"
			}
			out = append(out, Event{Kind: Failed, Message: reason})
		default:
			// eof, quit
			t.loaded = false
			out = t.settle(out)
		}

	case "shutdown":
		t.loaded = false
		out = t.settle(out)
	}

	return out
}

func seconds(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
