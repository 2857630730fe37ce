package tui

import (
	"testing"

	"openpiano/keymap"
)

func TestKeyEventFrom(t *testing.T) {
	cases := []struct {
		in   string
		want keymap.KeyEvent
	}{
		{"t", keymap.KeyEvent{Text: "t", KeyName: "t"}},
		{"T", keymap.KeyEvent{Text: "T", KeyName: "T"}},
		{"!", keymap.KeyEvent{Text: "!", KeyName: "!"}},
		{"ctrl+t", keymap.KeyEvent{Text: "t", KeyName: "t", Ctrl: true}},
		{"alt+T", keymap.KeyEvent{Text: "T", KeyName: "T", Alt: true}},
		{"ctrl+alt+x", keymap.KeyEvent{Text: "x", KeyName: "x", Ctrl: true, Alt: true}},
		{"shift+left", keymap.KeyEvent{Text: "left", KeyName: "left", Shift: true}},
	}
	for _, c := range cases {
		if got := keyEventFrom(c.in); got != c.want {
			t.Errorf("keyEventFrom(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
