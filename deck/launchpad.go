package deck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"deck-player/midi"
	"deck-player/render"
)

const launchpadKeys = 64

// dimContent lights pads whose key shows something on a dark background
var dimContent = [3]uint8{40, 60, 120}

// Launchpad turns the 8x8 grid of a Novation Launchpad into a key
// surface. Key 0 is the top left pad, counting left to right. Pads have
// no screen, so each key image is reduced to a single color.
type Launchpad struct {
	lp       *midi.LaunchpadController
	callback KeyCallback
}

// FindLaunchpad checks that a Launchpad is attached before handing it out
func FindLaunchpad(ctx context.Context) (*Launchpad, error) {
	lp, err := midi.FindLaunchpad(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return &Launchpad{lp: lp}, nil
}

func (l *Launchpad) Name() string { return l.lp.ID() }

// Open is a no-op; FindLaunchpad already opened the ports
func (l *Launchpad) Open() error { return nil }

func (l *Launchpad) Close() error {
	return l.lp.Close()
}

func (l *Launchpad) Reset() error {
	return l.lp.ClearLEDs()
}

func (l *Launchpad) SetBrightness(percent int) error {
	return l.lp.SetBrightness(percent)
}

func (l *Launchpad) KeyCount() int { return launchpadKeys }

func (l *Launchpad) KeyImageFormat() render.Format {
	return render.Format{Size: image.Pt(16, 16), Encoding: render.BMP}
}

func (l *Launchpad) SetKeyImage(index int, encoded []byte) error {
	img, err := render.Decode(encoded, l.KeyImageFormat())
	if err != nil {
		return err
	}
	row, col := keyToPad(index)
	return l.lp.SetPadColors(midi.PadColor{Row: row, Col: col, RGB: padColor(img)})
}

func (l *Launchpad) SetKeyCallback(fn KeyCallback) {
	l.callback = fn
}

func (l *Launchpad) Listen(ctx context.Context) error {
	events := l.lp.PadEvents()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("launchpad closed")
			}
			key, ok := padToKey(ev.Row, ev.Col)
			if ok && l.callback != nil {
				l.callback(key, true)
			}
		}
	}
}

func keyToPad(index int) (row, col int) {
	return 7 - index/8, index % 8
}

// padToKey ignores the top row and side column
func padToKey(row, col int) (int, bool) {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return 0, false
	}
	return (7-row)*8 + col, true
}

// padColor uses the key background, or a dim color when a dark key has
// content drawn on it.
func padColor(img image.Image) [3]uint8 {
	b := img.Bounds()
	bg := toRGB(img.At(b.Min.X, b.Min.Y))
	if luma(bg) > 24 {
		return bg
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if luma(toRGB(img.At(x, y))) > 96 {
				return dimContent
			}
		}
	}
	return [3]uint8{}
}

func toRGB(c color.Color) [3]uint8 {
	n := color.RGBAModel.Convert(c).(color.RGBA)
	return [3]uint8{n.R, n.G, n.B}
}

func luma(c [3]uint8) int {
	return (299*int(c[0]) + 587*int(c[1]) + 114*int(c[2])) / 1000
}
