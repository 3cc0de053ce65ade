package engine

import (
	"fmt"
	"sync"
	"time"
)

// Fake records commands instead of playing anything. Tests inject it
// through app.Options; Emit injects notifications.
type Fake struct {
	mu       sync.Mutex
	commands []string
	failures map[string]error
	events   chan Event
	closed   bool
}

func NewFake() *Fake {
	return &Fake{
		failures: make(map[string]error),
		events:   make(chan Event, 64),
	}
}

// FailOn makes the named command ("load", "play", ...) return err
func (f *Fake) FailOn(command string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[command] = err
}

// Commands returns every command issued so far
func (f *Fake) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// Reset forgets recorded commands
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
}

// Emit queues a notification as if the player sent it
func (f *Fake) Emit(ev Event) {
	f.events <- ev
}

func (f *Fake) record(name, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if detail != "" {
		f.commands = append(f.commands, name+" "+detail)
	} else {
		f.commands = append(f.commands, name)
	}
	return f.failures[name]
}

func (f *Fake) Load(uri string) error { return f.record("load", uri) }
func (f *Fake) Play() error           { return f.record("play", "") }
func (f *Fake) Pause() error          { return f.record("pause", "") }
func (f *Fake) Stop() error           { return f.record("stop", "") }

func (f *Fake) Seek(position time.Duration) error {
	return f.record("seek", position.String())
}

func (f *Fake) SetLoop(infinite bool) error {
	if infinite {
		return f.record("loop", "inf")
	}
	return f.record("loop", "no")
}

func (f *Fake) SetOutput(screen int, audioDevice string) error {
	return f.record("output", fmt.Sprintf("%d %s", screen, audioDevice))
}

func (f *Fake) Events() <-chan Event { return f.events }

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}
