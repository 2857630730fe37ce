package keymap

import (
	"strings"
	"unicode"
)

// Physical key positions use PC set-1 make codes, the scan codes most
// host surfaces report. Only the three letter rows and the digit row
// matter here; every default binding token lives on one of them.
var qwertyScans = map[rune]uint32{
	'1': 0x02, '2': 0x03, '3': 0x04, '4': 0x05, '5': 0x06,
	'6': 0x07, '7': 0x08, '8': 0x09, '9': 0x0a, '0': 0x0b,
	'q': 0x10, 'w': 0x11, 'e': 0x12, 'r': 0x13, 't': 0x14,
	'y': 0x15, 'u': 0x16, 'i': 0x17, 'o': 0x18, 'p': 0x19,
	'a': 0x1e, 's': 0x1f, 'd': 0x20, 'f': 0x21, 'g': 0x22,
	'h': 0x23, 'j': 0x24, 'k': 0x25, 'l': 0x26,
	'z': 0x2c, 'x': 0x2d, 'c': 0x2e, 'v': 0x2f, 'b': 0x30,
	'n': 0x31, 'm': 0x32,
}

var qwertyChars = func() map[uint32]rune {
	m := make(map[uint32]rune, len(qwertyScans))
	for r, sc := range qwertyScans {
		m[sc] = r
	}
	return m
}()

// QwertyScan reports the physical position of a US QWERTY character.
func QwertyScan(r rune) (uint32, bool) {
	sc, ok := qwertyScans[unicode.ToLower(r)]
	return sc, ok
}

// QwertyChar reports the US QWERTY character at a physical position.
func QwertyChar(scan uint32) (rune, bool) {
	r, ok := qwertyChars[scan]
	return r, ok
}

// RemapTokens rewrites keyboard binding tokens when the input mode
// changes, so the same physical keys keep their notes. Each token is
// resolved to its physical position under the old mode, then renamed
// to the character that position produces under the new one. With no
// localized mapper both directions collapse to QWERTY and tokens come
// back unchanged, which is exactly right for hosts that cannot see
// the OS layout.
func RemapTokens(m Mapping, from, to InputMode, localized func(uint32) (rune, bool)) Mapping {
	out := make(Mapping, len(m))
	for note, b := range m {
		out[note] = remapToken(b, from, to, localized)
	}
	return out
}

func remapToken(b Binding, from, to InputMode, localized func(uint32) (rune, bool)) Binding {
	if b.Source != Keyboard || len(b.Token) != 1 || from == to {
		return b
	}
	r := rune(b.Token[0])

	var scan uint32
	var ok bool
	if from == LayoutAware {
		scan, ok = localizedScan(r, localized)
	} else {
		scan, ok = QwertyScan(r)
	}
	if !ok {
		return b
	}

	if to == LayoutAware && localized != nil {
		if lr, found := localized(scan); found {
			b.Token = strings.ToLower(string(lr))
			return b
		}
	}
	if qr, found := QwertyChar(scan); found {
		b.Token = string(qr)
	}
	return b
}

// localizedScan finds the physical position producing a character
// under the active layout, falling back to the QWERTY position.
func localizedScan(r rune, localized func(uint32) (rune, bool)) (uint32, bool) {
	if localized != nil {
		r = unicode.ToLower(r)
		for scan := range qwertyChars {
			if lr, ok := localized(scan); ok && unicode.ToLower(lr) == r {
				return scan, true
			}
		}
	}
	return QwertyScan(r)
}
