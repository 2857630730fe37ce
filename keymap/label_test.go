package keymap

import "testing"

func TestShortLabels(t *testing.T) {
	cases := []struct {
		b    Binding
		want string
	}{
		{Key("q"), "q"},
		{Key("5"), "5"},
		{Shifted("q"), "Q"},
		{Shifted("5"), "%"},
		{Ctrl("t"), "C\n+\nT"},
		{Ctrl("1"), "C\n+\n1"},
		{Binding{Source: Keyboard, Token: "x", Ctrl: true, Shift: true}, "C/S\n+\nX"},
		{Binding{Source: Keyboard, Token: "x", Alt: true}, "A\n+\nX"},
		{Binding{Source: Keyboard, Token: "x", Shift: true, Alt: true}, "S/A\n+\nX"},
		{Binding{Source: Keyboard, Token: "x", Ctrl: true, Shift: true, Alt: true}, "C/S/A\n+\nX"},
		{Binding{Source: Keyboard, Token: "1", Ctrl: true, Shift: true}, "C/S\n+\n1"},
		{MouseButton("right", false, false, false), "RMB"},
		{MouseButton("middle", true, false, false), "C\n+\nMMB"},
	}
	for _, tc := range cases {
		if got := ShortLabel(tc.b); got != tc.want {
			t.Errorf("ShortLabel(%+v) = %q, want %q", tc.b, got, tc.want)
		}
	}
}

func TestInlineLabels(t *testing.T) {
	cases := []struct {
		b    Binding
		want string
	}{
		{Key("q"), "Q"},
		{Shifted("5"), "Shift + 5"},
		{Binding{Source: Keyboard, Token: "x", Ctrl: true, Shift: true}, "Ctrl + Shift + X"},
		{Binding{Source: Keyboard, Token: "x", Ctrl: true, Shift: true, Alt: true}, "Ctrl + Shift + Alt + X"},
		{MouseButton("right", false, false, false), "Right Click"},
		{MouseButton("x2", false, false, true), "Alt + Mouse X2"},
	}
	for _, tc := range cases {
		if got := InlineLabel(tc.b); got != tc.want {
			t.Errorf("InlineLabel(%+v) = %q, want %q", tc.b, got, tc.want)
		}
	}
}
