package engine

import "sync"

// eventQueue sits between the IPC reader and the Events channel so the
// reader never waits on a slow consumer and command replies keep flowing.
// A position update replaces one still queued behind it.
type eventQueue struct {
	mu      sync.Mutex
	pending []Event
	ready   chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	n := len(q.pending)
	if n > 0 && ev.Kind == PositionChanged && q.pending[n-1].Kind == PositionChanged {
		q.pending[n-1] = ev
	} else {
		q.pending = append(q.pending, ev)
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) take() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// forward delivers queued events to out, in order, until done closes
func (q *eventQueue) forward(out chan<- Event, done <-chan struct{}) {
	for {
		select {
		case <-q.ready:
		case <-done:
			return
		}
		for _, ev := range q.take() {
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}
}
