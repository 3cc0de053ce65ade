package playback

import (
	"deck-player/deck"
	"deck-player/render"
	"deck-player/settings"
	"deck-player/slots"
)

// Snapshot is an immutable copy of the coordinator's state, published
// after every change.
type Snapshot struct {
	Slots   []slots.Slot
	Session Session
	Prefs   settings.Settings
	Audio   string
	Deck    deck.Status
	DeckErr error
	Err     error
	Notice  string
}

// Highlighted reports whether index is the active slot
func (s Snapshot) Highlighted(index int) bool {
	active, ok := s.Session.Active.Get()
	return ok && active == index
}

// Views lays the snapshot out as key views: the nine slots, then the
// play/pause key, then the clock.
func (s Snapshot) Views() []render.View {
	views := make([]render.View, 0, len(s.Slots)+2)
	for _, slot := range s.Slots {
		views = append(views, render.View{
			Kind:        render.SlotKey,
			Slot:        slot.Index,
			Label:       slot.Label(),
			Highlighted: s.Highlighted(slot.Index),
		})
	}
	views = append(views,
		render.View{Kind: render.PauseKey, State: s.Session.State},
		render.View{
			Kind:     render.TimeKey,
			State:    s.Session.State,
			Position: s.Session.Position,
			Duration: s.Session.Duration,
		},
	)
	return views
}
