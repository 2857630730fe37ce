package keymap

import "strings"

var mouseShort = map[string]string{
	"right": "RMB", "middle": "MMB", "x1": "X1", "x2": "X2",
}

var mouseInline = map[string]string{
	"right": "Right Click", "middle": "Middle Click",
	"x1": "Mouse X1", "x2": "Mouse X2",
}

// ShortLabel renders the compact key-cap form. Shift alone shows
// through the token itself (uppercase letter, shifted digit symbol);
// any other modifiers stack above it, e.g. "C/S\n+\nX".
func ShortLabel(b Binding) string {
	token := b.Token
	if b.Source == Mouse {
		if s, ok := mouseShort[token]; ok {
			token = s
		}
	}

	stacked := b.Ctrl || b.Alt
	var mods []string
	if b.Ctrl {
		mods = append(mods, "C")
	}
	if b.Shift && stacked {
		mods = append(mods, "S")
	}
	if b.Alt {
		mods = append(mods, "A")
	}

	if len(mods) == 0 {
		if b.Shift {
			if sym, ok := symbolForDigit[token]; ok {
				return sym
			}
			return strings.ToUpper(token)
		}
		return token
	}
	return strings.Join(mods, "/") + "\n+\n" + strings.ToUpper(token)
}

// InlineLabel renders the spelled-out form used in the keybind editor,
// e.g. "Ctrl + Shift + X" or "Alt + Right Click".
func InlineLabel(b Binding) string {
	var parts []string
	if b.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if b.Shift {
		parts = append(parts, "Shift")
	}
	if b.Alt {
		parts = append(parts, "Alt")
	}
	if b.Source == Mouse {
		parts = append(parts, mouseInline[b.Token])
	} else {
		parts = append(parts, strings.ToUpper(b.Token))
	}
	return strings.Join(parts, " + ")
}
