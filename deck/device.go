// Package deck owns the hardware button surface: opening it off the main
// goroutine, pushing key images, and forwarding presses.
package deck

import (
	"context"
	"errors"

	"deck-player/render"
)

var (
	// ErrDeviceUnavailable means no surface could be opened
	ErrDeviceUnavailable = errors.New("deck unavailable")
	// ErrTransportLost means an open surface stopped accepting writes
	ErrTransportLost = errors.New("deck transport lost")
)

// KeyCallback receives key transitions on the driver's goroutine
type KeyCallback func(index int, pressed bool)

// Device is what a driver implements. Calls other than SetKeyCallback
// and Listen are only made with the Surface lock held.
type Device interface {
	Name() string
	Open() error
	Close() error
	Reset() error
	SetBrightness(percent int) error
	KeyCount() int
	KeyImageFormat() render.Format
	SetKeyImage(index int, encoded []byte) error
	SetKeyCallback(fn KeyCallback)

	// Listen delivers callbacks until ctx ends or the device goes away
	Listen(ctx context.Context) error
}

// Opener discovers a device. It returns ErrDeviceUnavailable (wrapped)
// when nothing is attached.
type Opener func(ctx context.Context) (Device, error)
