package deck

import (
	"context"
	"errors"
	"image"
	"sync"

	"deck-player/render"
)

// Virtual is an in-memory deck. It stands in for hardware under the
// "virtual" driver and in tests; presses are injected with Press.
type Virtual struct {
	name   string
	keys   int
	format render.Format

	mu         sync.Mutex
	open       bool
	brightness int
	images     map[int][]byte
	writes     int
	failWrite  error
	failOpen   error
	callback   KeyCallback
	gone       chan struct{}
	goneOnce   sync.Once
}

// NewVirtual returns a 15 key deck with 72x72 BMP keys mounted upside
// down, like the original Stream Deck.
func NewVirtual() *Virtual {
	return &Virtual{
		name: "virtual",
		keys: 15,
		format: render.Format{
			Size:     image.Pt(72, 72),
			Encoding: render.BMP,
			FlipX:    true,
			FlipY:    true,
		},
		images: make(map[int][]byte),
		gone:   make(chan struct{}),
	}
}

// WithKeys changes the key count
func (v *Virtual) WithKeys(n int) *Virtual {
	v.keys = n
	return v
}

// WithFormat changes the declared key image format
func (v *Virtual) WithFormat(f render.Format) *Virtual {
	v.format = f
	return v
}

// Opener hands out v
func (v *Virtual) Opener() Opener {
	return func(context.Context) (Device, error) { return v, nil }
}

func (v *Virtual) Name() string { return v.name }

func (v *Virtual) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failOpen != nil {
		return v.failOpen
	}
	v.open = true
	return nil
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	v.open = false
	v.mu.Unlock()
	v.Disconnect()
	return nil
}

func (v *Virtual) Reset() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failWrite != nil {
		return v.failWrite
	}
	clear(v.images)
	return nil
}

func (v *Virtual) SetBrightness(percent int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.brightness = percent
	return nil
}

func (v *Virtual) KeyCount() int { return v.keys }

func (v *Virtual) KeyImageFormat() render.Format { return v.format }

func (v *Virtual) SetKeyImage(index int, encoded []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failWrite != nil {
		return v.failWrite
	}
	if !v.open {
		return errors.New("virtual deck not open")
	}
	v.images[index] = encoded
	v.writes++
	return nil
}

func (v *Virtual) SetKeyCallback(fn KeyCallback) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.callback = fn
}

// Listen blocks until ctx ends or Disconnect is called
func (v *Virtual) Listen(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-v.gone:
		return errors.New("virtual deck disconnected")
	}
}

// Press reports a press and release of key
func (v *Virtual) Press(key int) {
	v.mu.Lock()
	fn := v.callback
	v.mu.Unlock()
	if fn == nil {
		return
	}
	fn(key, true)
	fn(key, false)
}

// FailOpen makes the next Open return err
func (v *Virtual) FailOpen(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failOpen = err
}

// FailWrites makes every write return err; nil restores writes
func (v *Virtual) FailWrites(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failWrite = err
}

// Disconnect ends Listen as if the cable were pulled
func (v *Virtual) Disconnect() {
	v.goneOnce.Do(func() { close(v.gone) })
}

// Image returns the last encoded image written to key
func (v *Virtual) Image(key int) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	data, ok := v.images[key]
	return data, ok
}

// Writes counts successful key image writes
func (v *Virtual) Writes() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.writes
}

func (v *Virtual) Brightness() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.brightness
}

func (v *Virtual) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}
