// Package slots holds the nine numbered clip assignments.
package slots

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Count is the number of slots
const Count = 9

var ErrInvalidSlot = errors.New("invalid slot")

// Slot is one assignment point. Source is None when nothing is loaded.
type Slot struct {
	Index  int
	Source mo.Option[string]
	Loop   bool
}

// Label is the display name of the slot's source (the file's base name).
func (s Slot) Label() string {
	return s.Source.Map(func(p string) (string, bool) {
		return filepath.Base(p), true
	}).OrEmpty()
}

// Registry is the slot table. It is not safe for concurrent use; the
// playback loop is its only writer.
type Registry struct {
	slots [Count]Slot
}

// New returns a registry with nine empty slots
func New() *Registry {
	r := &Registry{}
	for i := range r.slots {
		r.slots[i] = Slot{Index: i, Source: mo.None[string]()}
	}
	return r
}

// Valid reports whether index addresses a slot
func Valid(index int) bool {
	return index >= 0 && index < Count
}

func check(index int) error {
	if !Valid(index) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, index)
	}
	return nil
}

// Assign sets the source for a slot, replacing any previous one
func (r *Registry) Assign(index int, source string) error {
	if err := check(index); err != nil {
		return err
	}
	if source == "" {
		r.slots[index].Source = mo.None[string]()
		return nil
	}
	r.slots[index].Source = mo.Some(source)
	return nil
}

// SetLoop flips the loop flag. Applying it to a running engine is the
// caller's job.
func (r *Registry) SetLoop(index int, enabled bool) error {
	if err := check(index); err != nil {
		return err
	}
	r.slots[index].Loop = enabled
	return nil
}

// Clear empties a slot and resets its loop flag
func (r *Registry) Clear(index int) error {
	if err := check(index); err != nil {
		return err
	}
	r.slots[index] = Slot{Index: index, Source: mo.None[string]()}
	return nil
}

// Get returns the slot, or None for an out of range index
func (r *Registry) Get(index int) mo.Option[Slot] {
	if !Valid(index) {
		return mo.None[Slot]()
	}
	return mo.Some(r.slots[index])
}

// All returns a copy of every slot in index order
func (r *Registry) All() []Slot {
	out := make([]Slot, Count)
	copy(out, r.slots[:])
	return out
}

// Assigned returns the slots that have a source
func (r *Registry) Assigned() []Slot {
	return lo.Filter(r.All(), func(s Slot, _ int) bool {
		return s.Source.IsPresent()
	})
}
