// Package config persists user settings as JSON under the user's
// config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"openpiano/audio"
	"openpiano/debug"
	"openpiano/keymap"
)

// Settings is everything the piano remembers between sessions.
type Settings struct {
	Volume         float64           `json:"volume"`
	Velocity       int               `json:"velocity"`
	Transpose      int               `json:"transpose"`
	SustainPercent int               `json:"sustainPercent"`
	SustainFade    int               `json:"sustainFade"`
	Program        int               `json:"program"`
	PianoMode      string            `json:"pianoMode"`
	InputMode      string            `json:"keyboardInputMode"`
	AudioBackend   string            `json:"audioBackend"`
	MIDIInputPort  string            `json:"midiInputPort,omitempty"`
	MIDIOutputPort string            `json:"midiOutputPort,omitempty"`
	CustomKeybinds map[string]string `json:"customKeybinds,omitempty"`
	Debug          bool              `json:"debug,omitempty"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Volume:       0.60,
		Velocity:     100,
		PianoMode:    string(keymap.Mode61),
		InputMode:    string(keymap.LayoutAware),
		AudioBackend: audio.BackendSynth,
	}
}

// Clamp forces every field into its legal range, so a hand-edited
// file degrades instead of failing.
func (s *Settings) Clamp() {
	s.Volume = min(max(s.Volume, 0), 1)
	s.Velocity = min(max(s.Velocity, 1), 127)
	s.Transpose = min(max(s.Transpose, -21), 21)
	s.SustainPercent = min(max(s.SustainPercent, 0), 100)
	s.SustainFade = min(max(s.SustainFade, 0), 100)
	s.Program = min(max(s.Program, 0), 127)
	if s.PianoMode != string(keymap.Mode88) {
		s.PianoMode = string(keymap.Mode61)
	}
	if s.InputMode != string(keymap.QwertyFixed) {
		s.InputMode = string(keymap.LayoutAware)
	}
	switch s.AudioBackend {
	case audio.BackendMIDI, audio.BackendSilent:
	default:
		s.AudioBackend = audio.BackendSynth
	}
}

// Load reads settings from path. A missing file yields the defaults.
// A corrupt one also yields the defaults, plus the parse error, so
// the caller keeps running and can still mention it.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("config: read %s: %w", path, err)
	}
	s := DefaultSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return DefaultSettings(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	s.Clamp()
	return s, nil
}

// Save writes settings, creating the directory on first run.
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Dir is the piano's config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	return filepath.Join(home, ".config", "openpiano"), nil
}

// SettingsPath is the default settings file location.
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// DebugLogPath is where the debug trace goes when enabled.
func DebugLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

// TakesDir is where recordings land.
func TakesDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recordings"), nil
}

// DecodeKeybinds converts persisted note to binding-id overrides into
// table form, dropping entries that no longer parse so a stale or
// hand-mangled file cannot poison the table.
func DecodeKeybinds(raw map[string]string) map[uint8]keymap.Binding {
	out := make(map[uint8]keymap.Binding, len(raw))
	for noteStr, id := range raw {
		note, err := strconv.Atoi(noteStr)
		if err != nil || note < 0 || note > 127 {
			debug.Log("config", "dropping keybind override", "note", noteStr, "reason", "bad note")
			continue
		}
		b, err := keymap.ParseID(id)
		if err != nil {
			debug.Log("config", "dropping keybind override", "note", noteStr, "err", err)
			continue
		}
		out[uint8(note)] = b
	}
	return out
}

// EncodeKeybinds is the inverse of DecodeKeybinds.
func EncodeKeybinds(overrides map[uint8]keymap.Binding) map[string]string {
	if len(overrides) == 0 {
		return nil
	}
	out := make(map[string]string, len(overrides))
	for note, b := range overrides {
		out[strconv.Itoa(int(note))] = b.ID()
	}
	return out
}
