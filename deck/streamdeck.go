package deck

import (
	"context"
	"fmt"
	"strings"

	"rafaelmartins.com/p/streamdeck"

	"deck-player/debug"
	"deck-player/render"
)

// StreamDeck drives an Elgato Stream Deck over HID
type StreamDeck struct {
	dev    *streamdeck.Device
	format render.Format
}

// FindStreamDeck returns the first attached Stream Deck, or the one whose
// serial matches when serial is set. The device is not opened yet.
func FindStreamDeck(_ context.Context, serial string) (*StreamDeck, error) {
	devices, err := streamdeck.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate: %v", ErrDeviceUnavailable, err)
	}
	for _, d := range devices {
		if serial != "" && !strings.EqualFold(d.GetSerialNumber(), serial) {
			continue
		}
		return &StreamDeck{dev: d}, nil
	}
	if serial != "" {
		return nil, fmt.Errorf("%w: no stream deck with serial %s", ErrDeviceUnavailable, serial)
	}
	return nil, fmt.Errorf("%w: no stream deck attached", ErrDeviceUnavailable)
}

func (s *StreamDeck) Name() string {
	return s.dev.GetModelName()
}

func (s *StreamDeck) Open() error {
	if err := s.dev.Open(); err != nil {
		return err
	}
	rect, err := s.dev.GetKeyImageRectangle()
	if err != nil {
		s.dev.Close()
		return err
	}
	// the library scales, orients and encodes for each model itself
	s.format = render.Format{Size: rect.Size(), Encoding: render.PNG}
	return nil
}

func (s *StreamDeck) Close() error {
	return s.dev.Close()
}

func (s *StreamDeck) Reset() error {
	return s.dev.ForEachKey(func(k streamdeck.KeyID) error {
		return s.dev.ClearKey(k)
	})
}

func (s *StreamDeck) SetBrightness(percent int) error {
	return s.dev.SetBrightness(byte(max(0, min(100, percent))))
}

func (s *StreamDeck) KeyCount() int {
	return int(s.dev.GetKeyCount())
}

func (s *StreamDeck) KeyImageFormat() render.Format {
	return s.format
}

func (s *StreamDeck) SetKeyImage(index int, encoded []byte) error {
	img, err := render.Decode(encoded, s.format)
	if err != nil {
		return err
	}
	return s.dev.SetKeyImage(streamdeck.KeyID(index+1), img)
}

// SetKeyCallback registers fn on every key. The library only reports
// presses, so fn always sees pressed=true.
func (s *StreamDeck) SetKeyCallback(fn KeyCallback) {
	s.dev.ForEachKey(func(k streamdeck.KeyID) error {
		return s.dev.AddKeyHandler(k, func(_ *streamdeck.Device, key *streamdeck.Key) error {
			fn(int(key.GetID())-1, true)
			return nil
		})
	})
}

func (s *StreamDeck) Listen(ctx context.Context) error {
	errCh := make(chan error, 8)
	go func() {
		for {
			select {
			case err := <-errCh:
				debug.Error("streamdeck", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return s.dev.Listen(errCh)
}

// ListStreamDecks describes every attached Stream Deck as "model (serial)"
func ListStreamDecks() ([]string, error) {
	devices, err := streamdeck.Enumerate()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range devices {
		out = append(out, fmt.Sprintf("%s (%s)", d.GetModelName(), d.GetSerialNumber()))
	}
	return out, nil
}
