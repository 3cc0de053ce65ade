package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"deck-player/engine"
	"deck-player/render"
	"deck-player/theme"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(symbol))
}

// DeckMirror draws the hardware keys in the terminal. Keys are laid out
// row-major, Columns wide, the same way a Stream Deck numbers them.
type DeckMirror struct {
	Theme    *theme.Theme
	Columns  int
	Keys     int
	PauseKey int
	TimeKey  int
	CellW    int
}

func NewDeckMirror(th *theme.Theme, pauseKey, timeKey int) DeckMirror {
	return DeckMirror{
		Theme:    th,
		Columns:  5,
		Keys:     max(15, pauseKey+1, timeKey+1),
		PauseKey: pauseKey,
		TimeKey:  timeKey,
		CellW:    11,
	}
}

// Render lays out views (as produced by the coordinator) on the grid
func (d DeckMirror) Render(views []render.View) string {
	byKey := make(map[int]render.View, len(views))
	for _, v := range views {
		switch v.Kind {
		case render.PauseKey:
			byKey[d.PauseKey] = v
		case render.TimeKey:
			byKey[d.TimeKey] = v
		default:
			byKey[v.Slot] = v
		}
	}

	var rows []string
	for start := 0; start < d.Keys; start += d.Columns {
		var cells []string
		for key := start; key < min(start+d.Columns, d.Keys); key++ {
			v, ok := byKey[key]
			cells = append(cells, d.cell(v, ok))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Width is the rendered width of one row in terminal cells
func (d DeckMirror) Width() int {
	return d.Columns * (d.CellW + 2)
}

func (d DeckMirror) cell(v render.View, used bool) string {
	keys := d.Theme.Keys
	style := lipgloss.NewStyle().
		Width(d.CellW).
		Height(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(d.Theme.Muted()).
		Background(d.Theme.KeyColor(keys.Neutral)).
		Foreground(d.Theme.KeyColor(keys.Text))

	if !used {
		return style.Foreground(d.Theme.Muted()).Render("")
	}

	switch v.Kind {
	case render.SlotKey:
		if v.Highlighted {
			style = style.Background(d.Theme.KeyColor(keys.Highlight)).BorderForeground(d.Theme.Active())
		}
		label := render.Truncate(v.Label, d.CellW)
		return style.Render(fmt.Sprintf("%d\n%s", v.Slot+1, label))

	case render.PauseKey:
		return style.Align(lipgloss.Center).Render(d.transport(v.State))

	default:
		if v.State == engine.Stopped {
			return style.Align(lipgloss.Center).Render("--:--:--")
		}
		return style.Align(lipgloss.Center).Render(
			render.FormatTime(v.Position) + "\n-" + render.FormatTime(render.Remaining(v.Position, v.Duration)))
	}
}

// transport shows what pressing the key does, matching the hardware glyph
func (d DeckMirror) transport(state engine.State) string {
	switch state {
	case engine.Playing:
		return string(d.Theme.Symbols.Paused)
	case engine.Paused:
		return string(d.Theme.Symbols.Playing)
	default:
		return ""
	}
}

// RenderSlotStrip is the compact one-line mirror used when the panel is
// narrow: one pad per slot.
func RenderSlotStrip(th *theme.Theme, views []render.View) string {
	var out strings.Builder
	for _, v := range views {
		if v.Kind != render.SlotKey {
			continue
		}
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		switch {
		case v.Highlighted:
			out.WriteString(RenderPad(th.Keys.Highlight, th.Symbols.Solid))
		case v.Label != "":
			out.WriteString(RenderPad(th.Keys.Text, th.Symbols.Solid))
		default:
			out.WriteString(RenderPad(th.Keys.Text, th.Symbols.Empty))
		}
	}
	return out.String()
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
