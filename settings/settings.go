// Package settings exports and imports the slot table plus UI
// preferences as a JSON document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"deck-player/debug"
	"deck-player/slots"
)

var ErrInvalidSettings = errors.New("invalid settings")

// FontSize is the deck label size preset
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Points returns the label size in points; unknown presets are medium
func (f FontSize) Points() float64 {
	switch f {
	case FontSmall:
		return 10
	case FontLarge:
		return 14
	default:
		return 12
	}
}

// Valid reports whether f is a known preset
func (f FontSize) Valid() bool {
	return f == FontSmall || f == FontMedium || f == FontLarge
}

// Entry is one slot in the video_paths map
type Entry struct {
	Path string `json:"path"`
	Loop bool   `json:"loop"`
}

// Settings is the exported document. VideoPaths is keyed by slot index
// as a decimal string ("0".."8").
type Settings struct {
	VideoPaths        map[string]Entry `json:"video_paths"`
	ScreenIndex       int              `json:"screen_index"`
	AudioIndex        int              `json:"audio_index"`
	FontSize          FontSize         `json:"font_size"`
	ControllerVisible bool             `json:"controller_visible"`
}

// Limits bounds the indices accepted on import
type Limits struct {
	Screens      int
	AudioDevices int
}

// Default returns settings for an empty registry
func Default() Settings {
	return Settings{
		VideoPaths:        map[string]Entry{},
		FontSize:          FontMedium,
		ControllerVisible: true,
	}
}

// Capture snapshots the registry with the given preferences. Only
// assigned slots are written.
func Capture(reg *slots.Registry, prefs Settings) Settings {
	out := prefs
	out.VideoPaths = lo.SliceToMap(reg.Assigned(), func(s slots.Slot) (string, Entry) {
		return strconv.Itoa(s.Index), Entry{Path: s.Source.MustGet(), Loop: s.Loop}
	})
	return out
}

// Apply replaces every slot in reg with the document's assignments
func (s Settings) Apply(reg *slots.Registry) {
	for i := 0; i < slots.Count; i++ {
		reg.Clear(i)
	}
	for key, entry := range s.VideoPaths {
		idx, err := strconv.Atoi(key)
		if err != nil || !slots.Valid(idx) || entry.Path == "" {
			continue
		}
		reg.Assign(idx, entry.Path)
		reg.SetLoop(idx, entry.Loop)
	}
}

// Slot returns the entry for index, if any
func (s Settings) Slot(index int) (Entry, bool) {
	e, ok := s.VideoPaths[strconv.Itoa(index)]
	return e, ok && e.Path != ""
}

// document holds each field undecoded so a missing or mistyped value
// falls back to its default without rejecting the rest.
type document struct {
	VideoPaths        json.RawMessage `json:"video_paths"`
	ScreenIndex       json.RawMessage `json:"screen_index"`
	AudioIndex        json.RawMessage `json:"audio_index"`
	FontSize          json.RawMessage `json:"font_size"`
	ControllerVisible json.RawMessage `json:"controller_visible"`
}

// field decodes one document value; ok is false when it is absent, null
// or of the wrong type
func field[T any](name string, raw json.RawMessage) (v T, ok bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		debug.Warn("settings", "%s ignored: %v", name, err)
		return v, false
	}
	return v, true
}

// Decode parses data. Malformed JSON fails with ErrInvalidSettings.
// Unknown slot keys and mistyped values are dropped, and out of range
// indices reset to their defaults.
func Decode(data []byte, limits Limits) (Settings, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	s := Default()
	paths, _ := field[map[string]json.RawMessage]("video_paths", doc.VideoPaths)
	for key, raw := range paths {
		idx, err := strconv.Atoi(key)
		if err != nil || !slots.Valid(idx) {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil || e.Path == "" {
			continue
		}
		s.VideoPaths[strconv.Itoa(idx)] = e
	}

	if idx, ok := field[int]("screen_index", doc.ScreenIndex); ok {
		s.ScreenIndex = clamp(idx, limits.Screens)
	}
	if idx, ok := field[int]("audio_index", doc.AudioIndex); ok {
		s.AudioIndex = clamp(idx, limits.AudioDevices)
	}
	if f, ok := field[FontSize]("font_size", doc.FontSize); ok && f.Valid() {
		s.FontSize = f
	}
	if visible, ok := field[bool]("controller_visible", doc.ControllerVisible); ok {
		s.ControllerVisible = visible
	}
	return s, nil
}

func clamp(idx, count int) int {
	if idx < 0 || idx >= count {
		return 0
	}
	return idx
}

// Import reads and decodes the document at path
func Import(fs afero.Fs, path string, limits Limits) (Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Settings{}, fmt.Errorf("import %s: %w", path, err)
	}
	return Decode(data, limits)
}

// Export writes s to path, adding a .json extension when missing. It
// returns the path actually written.
func Export(fs afero.Fs, path string, s Settings) (string, error) {
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	if s.VideoPaths == nil {
		s.VideoPaths = map[string]Entry{}
	}

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("export %s: %w", path, err)
	}
	return path, nil
}
