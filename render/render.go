// Package render paints hardware key images: slot tiles, the play/pause
// toggle and the running clock.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"sync"
	"time"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"deck-player/engine"
)

// Kind says what a key shows
type Kind int

const (
	SlotKey Kind = iota
	PauseKey
	TimeKey
)

// View is everything needed to paint one key
type View struct {
	Kind        Kind
	Slot        int
	Label       string
	Highlighted bool
	State       engine.State
	Position    time.Duration
	Duration    time.Duration
}

// Visible drops whatever the key image does not depend on, so views that
// paint identical pixels compare equal.
func (v View) Visible() View {
	switch v.Kind {
	case SlotKey:
		return View{Kind: SlotKey, Slot: v.Slot, Label: v.Label, Highlighted: v.Highlighted}
	case PauseKey:
		return View{Kind: PauseKey, State: v.State}
	default:
		if v.State == engine.Stopped {
			return View{Kind: TimeKey}
		}
		return View{
			Kind:     TimeKey,
			State:    v.State,
			Position: v.Position.Round(time.Second),
			Duration: Remaining(v.Position, v.Duration).Round(time.Second),
		}
	}
}

// Style holds colors and text metrics
type Style struct {
	Highlight color.Color
	Neutral   color.Color
	Text      color.Color
	Glyph     color.Color

	NumberPoints float64
	LabelPoints  float64
	TimePoints   float64
	LabelWidth   int
	LabelBudget  int
}

// DefaultStyle matches the stock look: red highlight on black keys
func DefaultStyle() Style {
	return Style{
		Highlight:    color.RGBA{R: 0xff, A: 0xff},
		Neutral:      color.RGBA{A: 0xff},
		Text:         color.White,
		Glyph:        color.White,
		NumberPoints: 20,
		LabelPoints:  12,
		TimePoints:   11,
		LabelWidth:   12,
		LabelBudget:  25,
	}
}

const (
	margin      = 5
	numberTop   = 5
	labelTop    = 20
	lineSpacing = 1
)

// Renderer turns Views into key images. Font faces are cached per size
// and are not safe for concurrent drawing; callers serialize Key.
type Renderer struct {
	style Style
	ttf   *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// New parses fontData (TrueType); nil selects the built-in Go font. A
// font that fails to parse falls back to basicfont.
func New(fontData []byte, style Style) *Renderer {
	if fontData == nil {
		fontData = goregular.TTF
	}
	r := &Renderer{style: style, faces: make(map[float64]font.Face)}
	if tt, err := truetype.Parse(fontData); err == nil {
		r.ttf = tt
	}
	return r
}

// Style returns the active style
func (r *Renderer) Style() Style {
	return r.style
}

// WithLabelPoints returns a renderer sharing fonts with a new label size
func (r *Renderer) WithLabelPoints(pts float64) *Renderer {
	s := r.style
	s.LabelPoints = pts
	return &Renderer{style: s, ttf: r.ttf, faces: make(map[float64]font.Face)}
}

func (r *Renderer) face(pts float64) font.Face {
	if r.ttf == nil {
		return basicfont.Face7x13
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[pts]; ok {
		return f
	}
	f := truetype.NewFace(r.ttf, &truetype.Options{Size: pts, DPI: 72, Hinting: font.HintingFull})
	r.faces[pts] = f
	return f
}

// Key paints v onto a size canvas, before any device transform
func (r *Renderer) Key(v View, size image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})

	bg := r.style.Neutral
	if v.Kind == SlotKey && v.Highlighted {
		bg = r.style.Highlight
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	switch v.Kind {
	case SlotKey:
		r.drawSlot(img, v)
	case PauseKey:
		drawTransport(img, v.State, r.style.Glyph)
	case TimeKey:
		r.drawClock(img, v)
	}
	return img
}

// Render paints, transforms and encodes v for a device
func (r *Renderer) Render(v View, f Format) ([]byte, error) {
	return Encode(Transform(r.Key(v, f.Size), f), f)
}

func (r *Renderer) drawSlot(img *image.RGBA, v View) {
	numFace := r.face(r.style.NumberPoints)
	drawCentered(img, strconv.Itoa(v.Slot+1), numberTop, r.style.Text, numFace)

	labelFace := r.face(r.style.LabelPoints)
	y := labelTop
	height := labelFace.Metrics().Height.Ceil()
	for _, line := range Wrap(v.Label, r.style.LabelBudget, r.style.LabelWidth) {
		if y >= img.Bounds().Dy() {
			break
		}
		drawAt(img, line, margin, y, r.style.Text, labelFace)
		y += height + lineSpacing
	}
}

func (r *Renderer) drawClock(img *image.RGBA, v View) {
	face := r.face(r.style.TimePoints)
	h := img.Bounds().Dy()
	lineH := face.Metrics().Height.Ceil()

	if v.State == engine.Stopped {
		drawCentered(img, "--:--:--", (h-lineH)/2, r.style.Text, face)
		return
	}
	top := (h - 2*lineH - lineSpacing) / 2
	drawCentered(img, FormatTime(v.Position), top, r.style.Text, face)
	drawCentered(img, "-"+FormatTime(Remaining(v.Position, v.Duration)), top+lineH+lineSpacing, r.style.Text, face)
}

// drawTransport shows what pressing the key will do: bars while playing,
// a triangle while paused, nothing while stopped.
func drawTransport(img *image.RGBA, state engine.State, c color.Color) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := image.NewUniform(c)

	switch state {
	case engine.Playing:
		barW := w / 6
		top, bottom := h/4, h-h/4
		left := image.Rect(w/2-barW-barW/2, top, w/2-barW/2, bottom)
		right := image.Rect(w/2+barW/2, top, w/2+barW+barW/2, bottom)
		draw.Draw(img, left, src, image.Point{}, draw.Src)
		draw.Draw(img, right, src, image.Point{}, draw.Src)

	case engine.Paused:
		// right-pointing triangle, apex at the right edge of the middle half
		x0, x1 := w/3, w-w/4
		top, bottom := h/4, h-h/4
		mid := float64(top+bottom) / 2
		half := float64(bottom-top) / 2
		for x := x0; x < x1; x++ {
			span := half * float64(x1-x) / float64(x1-x0)
			y0 := int(mid - span + 0.5)
			y1 := int(mid + span + 0.5)
			draw.Draw(img, image.Rect(x, y0, x+1, y1), src, image.Point{}, draw.Src)
		}
	}
}

// drawAt places text with its top edge at y
func drawAt(img *image.RGBA, text string, x, y int, c color.Color, face font.Face) {
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	drawer.Dot = fixed.P(x, y+ascent)
	drawer.DrawString(text)
}

// drawCentered centers text horizontally with its top edge at y
func drawCentered(img *image.RGBA, text string, y int, c color.Color, face font.Face) {
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	width := drawer.MeasureString(text).Ceil()
	x := (img.Bounds().Dx() - width) / 2
	ascent := face.Metrics().Ascent.Ceil()
	drawer.Dot = fixed.P(x, y+ascent)
	drawer.DrawString(text)
}
