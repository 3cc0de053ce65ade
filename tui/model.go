// Package tui is the on-screen control panel
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"deck-player/engine"
	"deck-player/playback"
	"deck-player/render"
	"deck-player/settings"
	"deck-player/slots"
	"deck-player/theme"
	"deck-player/widgets"
)

const (
	seekStep    = 5 * time.Second
	labelBudget = 25
)

// Poster hands intents to the playback loop
type Poster interface {
	Post(playback.Intent) bool
}

type promptKind int

const (
	promptNone promptKind = iota
	promptAssign
	promptExport
	promptImport
)

func (p promptKind) title() string {
	switch p {
	case promptAssign:
		return "file for slot"
	case promptExport:
		return "export settings to"
	default:
		return "import settings from"
	}
}

type Model struct {
	loop    Poster
	updates <-chan playback.Snapshot
	fs      afero.Fs
	Theme   *theme.Theme

	snap   playback.Snapshot
	cursor int
	prompt promptKind
	input  textinput.Model
	help   help.Model
	bar    progress.Model
	mirror widgets.DeckMirror
	keys   keyMap

	width    int
	quitting bool
}

// SnapshotMsg carries a published coordinator snapshot
type SnapshotMsg playback.Snapshot

func NewModel(loop Poster, updates <-chan playback.Snapshot, fs afero.Fs, th *theme.Theme, mirror widgets.DeckMirror) Model {
	input := textinput.New()
	input.Placeholder = "/path/to/file"
	input.CharLimit = 1024
	input.Width = 48

	bar := progress.New(progress.WithSolidFill(string(th.Accent())), progress.WithoutPercentage())
	bar.Width = 40

	return Model{
		loop:    loop,
		updates: updates,
		fs:      fs,
		Theme:   th,
		snap: playback.Snapshot{
			Slots: slots.New().All(),
			Prefs: settings.Default(),
		},
		input:  input,
		help:   help.New(),
		bar:    bar,
		mirror: mirror,
		keys:   newKeyMap(),
	}
}

// ListenForUpdates waits for the next snapshot and re-arms on receipt
func ListenForUpdates(updates <-chan playback.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return SnapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case SnapshotMsg:
		m.snap = playback.Snapshot(msg)
		return m, ListenForUpdates(m.updates)

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case matches(msg, k.Quit):
		m.quitting = true
		m.loop.Post(playback.Stop())
		return m, tea.Quit

	case matches(msg, k.Select):
		idx := int(msg.String()[0] - '1')
		m.cursor = idx
		m.loop.Post(playback.Select(idx))

	case matches(msg, k.Up):
		m.cursor = (m.cursor + slots.Count - 1) % slots.Count
	case matches(msg, k.Down):
		m.cursor = (m.cursor + 1) % slots.Count
	case matches(msg, k.Play):
		m.loop.Post(playback.Select(m.cursor))
	case matches(msg, k.Toggle):
		m.loop.Post(playback.TogglePlayPause())
	case matches(msg, k.Stop):
		m.loop.Post(playback.Stop())
	case matches(msg, k.Loop):
		m.loop.Post(playback.ToggleLoop(m.cursor))
	case matches(msg, k.Clear):
		m.loop.Post(playback.ClearSlot(m.cursor))
	case matches(msg, k.Back):
		m.loop.Post(playback.Seek(-seekStep))
	case matches(msg, k.Forward):
		m.loop.Post(playback.Seek(seekStep))
	case matches(msg, k.Restart):
		m.loop.Post(playback.SeekTo(0))
	case matches(msg, k.Screen):
		m.loop.Post(playback.NextScreen())
	case matches(msg, k.Audio):
		m.loop.Post(playback.NextAudio())
	case matches(msg, k.Font):
		m.loop.Post(playback.SetFontSize(nextFont(m.snap.Prefs.FontSize)))
	case matches(msg, k.Controller):
		m.loop.Post(playback.SetControllerVisible(!m.snap.Prefs.ControllerVisible))
	case matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll

	case matches(msg, k.Assign):
		return m.openPrompt(promptAssign, m.snap.Slots[m.cursor].Source.OrEmpty())
	case matches(msg, k.Export):
		return m.openPrompt(promptExport, "deck-player-settings.json")
	case matches(msg, k.Import):
		return m.openPrompt(promptImport, "")
	}
	return m, nil
}

func (m Model) openPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = kind.title() + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		switch kind {
		case promptAssign:
			m.loop.Post(playback.Assign(m.cursor, value))
		case promptExport:
			m.loop.Post(playback.Export(m.fs, value))
		case promptImport:
			m.loop.Post(playback.Import(m.fs, value))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func nextFont(f settings.FontSize) settings.FontSize {
	switch f {
	case settings.FontSmall:
		return settings.FontMedium
	case settings.FontMedium:
		return settings.FontLarge
	default:
		return settings.FontSmall
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	errStyle := lipgloss.NewStyle().Foreground(th.Warning())
	okStyle := lipgloss.NewStyle().Foreground(th.Success())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("deck-player"))
	out.WriteString("  ")
	out.WriteString(dimStyle.Render(m.deckLine()))
	out.WriteString("\n\n")

	out.WriteString(m.slotList())
	out.WriteString("\n")
	out.WriteString(m.StatusLine())
	out.WriteString("\n")
	out.WriteString(m.TimeLine())
	out.WriteString("\n")
	out.WriteString(m.bar.ViewAs(m.fraction()))
	out.WriteString("\n")

	if m.snap.Prefs.ControllerVisible {
		out.WriteString("\n")
		if m.width > 0 && m.width < m.mirror.Width() {
			out.WriteString(widgets.RenderSlotStrip(th, m.snap.Views()))
		} else {
			out.WriteString(m.mirror.Render(m.snap.Views()))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	switch {
	case m.prompt != promptNone:
		out.WriteString(m.input.View())
	case m.snap.Err != nil:
		out.WriteString(errStyle.Render(m.snap.Err.Error()))
	case m.snap.Notice != "":
		out.WriteString(okStyle.Render(m.snap.Notice))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m Model) deckLine() string {
	line := fmt.Sprintf("deck: %s  font: %s  screen: %d  audio: %s", m.snap.Deck, m.snap.Prefs.FontSize, m.snap.Prefs.ScreenIndex+1, m.snap.Audio)
	if m.snap.DeckErr != nil {
		line += "  (" + m.snap.DeckErr.Error() + ")"
	}
	return line
}

func (m Model) slotList() string {
	th := m.Theme
	activeStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor())
	normalStyle := lipgloss.NewStyle().Foreground(th.FG())
	emptyStyle := lipgloss.NewStyle().Foreground(th.Muted())

	var lines []string
	for _, s := range m.snap.Slots {
		cursor := " "
		if s.Index == m.cursor {
			cursor = cursorStyle.Render(string(th.Symbols.Cursor))
		}

		loop := " "
		if s.Loop {
			loop = string(th.Symbols.Loop)
		}

		style := normalStyle
		mark := th.Symbols.Solid
		label := render.Truncate(s.Label(), labelBudget)
		switch {
		case m.snap.Highlighted(s.Index):
			style = activeStyle
		case s.Source.IsAbsent():
			style = emptyStyle
			mark = th.Symbols.Empty
			label = "empty"
		}
		lines = append(lines, fmt.Sprintf("%s %s", cursor, style.Render(fmt.Sprintf("%d %c %s %s", s.Index+1, mark, loop, label))))
	}
	return strings.Join(lines, "\n")
}

// StatusLine is "Playing", "Paused" or "Stopped", plus the active clip
func (m Model) StatusLine() string {
	session := m.snap.Session
	symbol := m.Theme.Symbols.Stopped
	switch session.State {
	case engine.Playing:
		symbol = m.Theme.Symbols.Playing
	case engine.Paused:
		symbol = m.Theme.Symbols.Paused
	}

	line := fmt.Sprintf("%c %s", symbol, session.State)
	if active, ok := session.Active.Get(); ok {
		line += fmt.Sprintf("  slot %d  %s", active+1, render.Truncate(m.snap.Slots[active].Label(), labelBudget))
	}
	return line
}

// TimeLine shows elapsed, total and remaining time
func (m Model) TimeLine() string {
	session := m.snap.Session
	if session.State == engine.Stopped {
		return "--:--:-- / --:--:--"
	}
	return fmt.Sprintf("%s / %s  (-%s)",
		render.FormatTime(session.Position),
		render.FormatTime(session.Duration),
		render.FormatTime(render.Remaining(session.Position, session.Duration)))
}

func (m Model) fraction() float64 {
	session := m.snap.Session
	if session.State == engine.Stopped || session.Duration <= 0 {
		return 0
	}
	return min(1, float64(session.Position)/float64(session.Duration))
}
