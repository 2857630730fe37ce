package keymap

import "testing"

func TestBindingIDRoundTrip(t *testing.T) {
	bindings := []Binding{
		Key("q"),
		Shifted("1"),
		Ctrl("t"),
		{Source: Keyboard, Token: "x", Ctrl: true, Shift: true, Alt: true},
		MouseButton("right", false, false, false),
		MouseButton("x2", true, false, true),
	}
	for _, b := range bindings {
		got, err := ParseID(b.ID())
		if err != nil {
			t.Errorf("ParseID(%q): %v", b.ID(), err)
			continue
		}
		if got != b {
			t.Errorf("round trip %q: got %+v, want %+v", b.ID(), got, b)
		}
	}
}

func TestBindingIDFormat(t *testing.T) {
	b := Binding{Source: Keyboard, Token: "q", Ctrl: true, Shift: false, Alt: true}
	if got := b.ID(); got != "kb|1|0|1|q" {
		t.Fatalf("ID = %q, want kb|1|0|1|q", got)
	}
	if got := MouseButton("middle", false, true, false).ID(); got != "mouse|0|1|0|middle" {
		t.Fatalf("ID = %q, want mouse|0|1|0|middle", got)
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"kb|0|0|q",
		"pad|0|0|0|q",
		"kb|2|0|0|q",
		"kb|0|yes|0|q",
		"kb|0|0|0|",
		"kb|0|0|0|esc",
		"kb|0|0|0|Q",
		"mouse|0|0|0|left",
		"mouse|0|0|0|wheel",
	}
	for _, id := range bad {
		if _, err := ParseID(id); err == nil {
			t.Errorf("ParseID(%q) succeeded, want error", id)
		}
	}
}
