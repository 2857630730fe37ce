package keymap

import (
	"strings"
	"unicode"
)

// InputMode controls how raw key events are read on non-US layouts.
// LayoutAware trusts the characters the OS produced; QwertyFixed maps
// physical key positions back to US QWERTY regardless of layout.
type InputMode string

const (
	LayoutAware InputMode = "layout"
	QwertyFixed InputMode = "qwerty"
)

// KeyEvent is a raw key press or release as delivered by the host
// surface. Text is the produced character (already layout-resolved),
// KeyName the host's name for the key, ScanCode the physical position
// (0 when the host cannot report one, as terminals cannot).
type KeyEvent struct {
	Text     string
	KeyName  string
	ScanCode uint32
	Ctrl     bool
	Shift    bool
	Alt      bool
}

// shiftedSymbols maps the US-shifted digit row symbols back to their
// digit, so shift+1 arriving as "!" still lands on the "1" binding.
var shiftedSymbols = map[string]string{
	"!": "1", "@": "2", "#": "3", "$": "4", "%": "5",
	"^": "6", "&": "7", "*": "8", "(": "9", ")": "0",
}

// symbolForDigit is the inverse of shiftedSymbols.
var symbolForDigit = func() map[string]string {
	m := make(map[string]string, len(shiftedSymbols))
	for sym, digit := range shiftedSymbols {
		m[digit] = sym
	}
	return m
}()

// keynameSymbols covers hosts that report shifted digits by symbol
// name instead of producing text.
var keynameSymbols = map[string]string{
	"exclam":      "!",
	"at":          "@",
	"numbersign":  "#",
	"dollar":      "$",
	"percent":     "%",
	"asciicircum": "^",
	"ampersand":   "&",
	"asterisk":    "*",
	"parenleft":   "(",
	"parenright":  ")",
}

// modifierKeys are key names that never form a binding on their own.
var modifierKeys = map[string]bool{
	"shift": true, "shift_l": true, "shift_r": true,
	"control": true, "control_l": true, "control_r": true, "ctrl": true,
	"alt": true, "alt_l": true, "alt_r": true,
	"meta": true, "super_l": true, "super_r": true,
}

// Normalizer turns raw key events into bindings under one input mode.
// Localized maps a QWERTY scan code to the character the active OS
// layout assigns to that position; hosts without layout introspection
// leave it nil and LayoutAware degrades to the event text alone.
type Normalizer struct {
	Mode      InputMode
	Localized func(scan uint32) (rune, bool)
}

// Key normalizes a raw key event. The second result is false when the
// event does not form a binding (bare modifiers, space, navigation
// keys, unrecognized text).
func (n Normalizer) Key(ev KeyEvent) (Binding, bool) {
	name := strings.ToLower(ev.KeyName)
	if modifierKeys[name] {
		return Binding{}, false
	}

	text := n.resolveText(ev)

	// Ctrl combos rarely produce usable text (the terminal gives a
	// control character), so the key name wins there.
	if ev.Ctrl {
		if tok, ok := singleAlnum(name); ok {
			return Binding{Source: Keyboard, Token: tok, Ctrl: true, Shift: ev.Shift, Alt: ev.Alt}, true
		}
		if tok, ok := singleAlnum(text); ok {
			return Binding{Source: Keyboard, Token: tok, Ctrl: true, Shift: ev.Shift, Alt: ev.Alt}, true
		}
	}

	if digit, ok := shiftedSymbols[text]; ok {
		return Binding{Source: Keyboard, Token: digit, Ctrl: ev.Ctrl, Shift: true, Alt: ev.Alt}, true
	}
	if len(text) == 1 {
		r := rune(text[0])
		switch {
		case unicode.IsLetter(r):
			shift := ev.Shift || unicode.IsUpper(r)
			return Binding{Source: Keyboard, Token: strings.ToLower(text), Ctrl: ev.Ctrl, Shift: shift, Alt: ev.Alt}, true
		case unicode.IsDigit(r):
			// A plain digit means shift was not involved; the shifted
			// form would have arrived as a symbol.
			return Binding{Source: Keyboard, Token: text, Ctrl: ev.Ctrl, Alt: ev.Alt}, true
		}
	}
	if sym, ok := keynameSymbols[name]; ok {
		return Binding{Source: Keyboard, Token: shiftedSymbols[sym], Ctrl: ev.Ctrl, Shift: true, Alt: ev.Alt}, true
	}
	if tok, ok := singleAlnum(name); ok {
		return Binding{Source: Keyboard, Token: tok, Ctrl: ev.Ctrl, Shift: ev.Shift, Alt: ev.Alt}, true
	}
	return Binding{}, false
}

// resolveText picks the character to normalize from, honoring the
// input mode when a scan code is available.
func (n Normalizer) resolveText(ev KeyEvent) string {
	if ev.ScanCode == 0 {
		return ev.Text
	}
	switch n.Mode {
	case QwertyFixed:
		if r, ok := QwertyChar(ev.ScanCode); ok {
			if ev.Shift {
				if sym, up := shiftRune(r); up {
					return sym
				}
			}
			return string(r)
		}
	default:
		if ev.Text != "" {
			return ev.Text
		}
		if n.Localized != nil {
			if r, ok := n.Localized(ev.ScanCode); ok {
				return string(r)
			}
		}
		if r, ok := QwertyChar(ev.ScanCode); ok {
			return string(r)
		}
	}
	return ev.Text
}

// shiftRune maps an unshifted US key char to its shifted form where
// that matters for binding identity (letters keep their token, digits
// become row symbols).
func shiftRune(r rune) (string, bool) {
	if r >= '0' && r <= '9' {
		return symbolForDigit[string(r)], true
	}
	if unicode.IsLetter(r) {
		return strings.ToUpper(string(r)), true
	}
	return "", false
}

func singleAlnum(s string) (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	r := rune(s[0])
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return strings.ToLower(s), true
	}
	return "", false
}

// mouse button tokens accepted as bindings; the left button is
// reserved for playing the piano surface directly.
var mouseTokens = map[string]bool{"right": true, "middle": true, "x1": true, "x2": true}

// Mouse normalizes a mouse button chord. Returns false for the left
// button and anything else that cannot be bound.
func (n Normalizer) Mouse(button string, ctrl, shift, alt bool) (Binding, bool) {
	button = strings.ToLower(button)
	if !mouseTokens[button] {
		return Binding{}, false
	}
	return Binding{Source: Mouse, Token: button, Ctrl: ctrl, Shift: shift, Alt: alt}, true
}
