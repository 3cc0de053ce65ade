package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
	Keys    KeyColors
}

type Symbols struct {
	// deck mirror
	Solid rune // ■ key with a source
	Empty rune // □ empty key

	// transport
	Playing rune // ▶
	Paused  rune // ⏸
	Stopped rune // ■
	Loop    rune // ↻
	Cursor  rune // ›
}

// KeyColors are the raster colors pushed to hardware keys
type KeyColors struct {
	Highlight RGB // active slot background
	Neutral   RGB // inactive background
	Text      RGB
	Glyph     RGB // pause/play icon
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			Playing: '▶',
			Paused:  '⏸',
			Stopped: '■',
			Loop:    '↻',
			Cursor:  '›',
		},
		Keys: KeyColors{
			Highlight: RGB{255, 0, 0},
			Neutral:   RGB{0, 0, 0},
			Text:      RGB{255, 255, 255},
			Glyph:     RGB{255, 255, 255},
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleMuted   = 0.25
	RoleFG      = 0.375
	RoleAccent  = 0.5
	RoleCursor  = 0.625
	RoleActive  = 0.75
	RoleWarning = 0.875
	RoleSuccess = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.Color(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// KeyColor returns the lipgloss form of a raster key color, used by the
// on-screen deck mirror so both surfaces agree.
func (t *Theme) KeyColor(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
