package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"deck-player/debug"
	"deck-player/render"
)

// Status is the surface lifecycle
type Status int

const (
	Pending Status = iota
	Open
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "connecting"
	case Open:
		return "connected"
	default:
		return "unavailable"
	}
}

// Layout maps the two control keys onto device key indices. Slot n is
// always key n.
type Layout struct {
	PauseKey int
	TimeKey  int
}

// Options configures a Surface
type Options struct {
	Layout      Layout
	Brightness  int
	OpenTimeout time.Duration

	// OnPress runs on the driver goroutine for each rising edge. It must
	// hand the press off without blocking.
	OnPress func(key int)
	// OnStatus runs whenever the status changes, outside the surface lock
	OnStatus func(Status, error)
}

// Surface wraps a Device with the lifecycle the rest of the program
// relies on: asynchronous open, serialized diffed pushes, a sticky
// unavailable state after a transport error, and an idempotent Close.
type Surface struct {
	opener   Opener
	renderer *render.Renderer
	opts     Options

	mu     sync.Mutex
	dev    Device
	format render.Format
	status Status
	err    error
	closed bool
	latest []render.View
	pushed map[int]render.View

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSurface(opener Opener, renderer *render.Renderer, opts Options) *Surface {
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 3 * time.Second
	}
	return &Surface{
		opener:   opener,
		renderer: renderer,
		opts:     opts,
		pushed:   make(map[int]render.View),
	}
}

// Status returns the current state and, when unavailable, why
func (s *Surface) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

// Start discovers and opens the device in the background. It returns
// immediately; progress is reported through OnStatus.
func (s *Surface) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		dev, err := s.discover(ctx)
		if err != nil {
			s.fail(fmt.Errorf("%w: %v", ErrDeviceUnavailable, err))
			return
		}
		s.attach(ctx, dev)
	}()
}

// discover runs the opener with a timeout; a device that turns up after
// the deadline is closed.
func (s *Surface) discover(ctx context.Context) (Device, error) {
	type result struct {
		dev Device
		err error
	}
	ch := make(chan result, 1)
	go func() {
		dev, err := s.opener(ctx)
		ch <- result{dev, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if err := r.dev.Open(); err != nil {
			return nil, fmt.Errorf("open %s: %w", r.dev.Name(), err)
		}
		return r.dev, nil
	case <-time.After(s.opts.OpenTimeout):
		go func() {
			if r := <-ch; r.dev != nil {
				r.dev.Close()
			}
		}()
		return nil, errors.New("timed out looking for a device")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Surface) attach(ctx context.Context, dev Device) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		dev.Close()
		return
	}

	if err := dev.Reset(); err != nil {
		s.mu.Unlock()
		dev.Close()
		s.fail(fmt.Errorf("%w: reset %s: %v", ErrDeviceUnavailable, dev.Name(), err))
		return
	}
	if err := dev.SetBrightness(s.opts.Brightness); err != nil {
		debug.Log("deck", "brightness: %v", err)
	}

	s.dev = dev
	s.format = dev.KeyImageFormat()
	s.status = Open
	s.pushed = make(map[int]render.View)
	dev.SetKeyCallback(s.handleKey)
	debug.Log("deck", "opened %s keys=%d format=%s", dev.Name(), dev.KeyCount(), s.format)

	// catch up with whatever was published while we were opening
	var err error
	if s.latest != nil {
		err = s.pushLocked(s.latest)
	}
	s.mu.Unlock()

	if err != nil {
		s.notify(Unavailable, err)
		return
	}
	s.notify(Open, nil)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := dev.Listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errors.New("listener stopped")
		}
		s.mu.Lock()
		lost := s.markLostLocked(err)
		s.mu.Unlock()
		if lost != nil {
			s.notify(Unavailable, lost)
		}
	}()
}

func (s *Surface) handleKey(index int, pressed bool) {
	if !pressed || s.opts.OnPress == nil {
		return
	}
	s.opts.OnPress(index)
}

// Push brings the device in line with views. Only keys whose visible
// content changed are rewritten, all under one lock so no other push can
// interleave with a frame.
func (s *Surface) Push(views []render.View) error {
	s.mu.Lock()
	s.latest = views
	if s.status != Open {
		s.mu.Unlock()
		return nil
	}
	err := s.pushLocked(views)
	s.mu.Unlock()

	if err != nil {
		s.notify(Unavailable, err)
	}
	return err
}

// SetRenderer swaps the renderer; every key is repainted on the next push
func (s *Surface) SetRenderer(r *render.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer = r
	s.pushed = make(map[int]render.View)
}

func (s *Surface) keyFor(v render.View) int {
	switch v.Kind {
	case render.PauseKey:
		return s.opts.Layout.PauseKey
	case render.TimeKey:
		return s.opts.Layout.TimeKey
	default:
		return v.Slot
	}
}

func (s *Surface) pushLocked(views []render.View) error {
	count := s.dev.KeyCount()
	for _, v := range views {
		key := s.keyFor(v)
		if key < 0 || key >= count {
			continue
		}
		visible := v.Visible()
		if prev, ok := s.pushed[key]; ok && prev == visible {
			continue
		}

		data, err := s.renderer.Render(v, s.format)
		if err != nil {
			debug.Error("deck", fmt.Errorf("render key %d: %w", key, err))
			continue
		}
		if err := s.dev.SetKeyImage(key, data); err != nil {
			return s.markLostLocked(err)
		}
		s.pushed[key] = visible
	}
	return nil
}

// markLostLocked flips an open surface to unavailable. Later pushes are
// dropped; there is no reconnect.
func (s *Surface) markLostLocked(cause error) error {
	if s.status != Open {
		return nil
	}
	err := fmt.Errorf("%w: %v", ErrTransportLost, cause)
	s.status = Unavailable
	s.err = err
	debug.Error("deck", err)
	return err
}

func (s *Surface) fail(err error) {
	s.mu.Lock()
	s.status = Unavailable
	s.err = err
	s.mu.Unlock()
	debug.Error("deck", err)
	s.notify(Unavailable, err)
}

func (s *Surface) notify(status Status, err error) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(status, err)
	}
}

// Close resets and releases the device. It is safe to call more than
// once and from any goroutine.
func (s *Surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	dev := s.dev
	s.dev = nil
	if s.status == Open {
		s.status = Unavailable
		s.err = errors.New("closed")
	}

	var err error
	if dev != nil {
		if rerr := dev.Reset(); rerr != nil {
			debug.Log("deck", "reset on close: %v", rerr)
		}
		err = dev.Close()
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	return err
}
