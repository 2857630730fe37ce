package keymap

import (
	"fmt"
	"sort"
)

// Mode selects the visible keyboard span.
type Mode string

const (
	Mode61 Mode = "61" // classic 61-key span, C2..C7
	Mode88 Mode = "88" // full piano span, A0..C8
)

// Range reports the inclusive MIDI note span of a mode.
func Range(m Mode) (lo, hi uint8) {
	if m == Mode88 {
		return 21, 108
	}
	return 36, 96
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var blackSemitones = map[uint8]bool{1: true, 3: true, 6: true, 8: true, 10: true}

// NoteName renders a MIDI note as pitch class plus octave, middle C
// (60) being C4.
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

// IsBlackKey reports whether a note is a sharp.
func IsBlackKey(note uint8) bool {
	return blackSemitones[note%12]
}

// Mapping assigns one binding per MIDI note.
type Mapping map[uint8]Binding

// defaultTable88 is the stock layout. The 61-key core walks the digit
// and letter rows left to right, sharps taking the shifted form of the
// white key below them; the bass and treble extensions reuse the rows
// under ctrl.
var defaultTable88 = Mapping{
	21: Ctrl("1"), 22: Ctrl("2"), 23: Ctrl("3"), 24: Ctrl("4"), 25: Ctrl("5"),
	26: Ctrl("6"), 27: Ctrl("7"), 28: Ctrl("8"), 29: Ctrl("9"), 30: Ctrl("0"),
	31: Ctrl("q"), 32: Ctrl("w"), 33: Ctrl("e"), 34: Ctrl("r"), 35: Ctrl("t"),

	36: Key("1"), 37: Shifted("1"),
	38: Key("2"), 39: Shifted("2"),
	40: Key("3"),
	41: Key("4"), 42: Shifted("4"),
	43: Key("5"), 44: Shifted("5"),
	45: Key("6"), 46: Shifted("6"),
	47: Key("7"),
	48: Key("8"), 49: Shifted("8"),
	50: Key("9"), 51: Shifted("9"),
	52: Key("0"),
	53: Key("q"), 54: Shifted("q"),
	55: Key("w"), 56: Shifted("w"),
	57: Key("e"), 58: Shifted("e"),
	59: Key("r"),
	60: Key("t"), 61: Shifted("t"),
	62: Key("y"), 63: Shifted("y"),
	64: Key("u"),
	65: Key("i"), 66: Shifted("i"),
	67: Key("o"), 68: Shifted("o"),
	69: Key("p"), 70: Shifted("p"),
	71: Key("a"),
	72: Key("s"), 73: Shifted("s"),
	74: Key("d"), 75: Shifted("d"),
	76: Key("f"),
	77: Key("g"), 78: Shifted("g"),
	79: Key("h"), 80: Shifted("h"),
	81: Key("j"), 82: Shifted("j"),
	83: Key("k"),
	84: Key("l"), 85: Shifted("l"),
	86: Key("z"), 87: Shifted("z"),
	88: Key("x"),
	89: Key("c"), 90: Shifted("c"),
	91: Key("v"), 92: Shifted("v"),
	93: Key("b"), 94: Shifted("b"),
	95: Key("n"),
	96: Key("m"),

	97: Ctrl("y"), 98: Ctrl("u"), 99: Ctrl("i"), 100: Ctrl("o"), 101: Ctrl("p"),
	102: Ctrl("a"), 103: Ctrl("s"), 104: Ctrl("d"), 105: Ctrl("f"), 106: Ctrl("g"),
	107: Ctrl("h"), 108: Ctrl("j"),
}

// DefaultMapping returns a fresh copy of the stock layout for a mode.
func DefaultMapping(m Mode) Mapping {
	lo, hi := Range(m)
	out := make(Mapping, int(hi-lo)+1)
	for note := lo; note <= hi; note++ {
		out[note] = defaultTable88[note]
	}
	return out
}

// ApplyOverrides lays user overrides over a base table. Overrides for
// notes outside the base span are ignored, so an 88-key override set
// degrades cleanly to 61-key mode.
func ApplyOverrides(base Mapping, overrides map[uint8]Binding) Mapping {
	out := make(Mapping, len(base))
	for note, b := range base {
		out[note] = b
	}
	for note, b := range overrides {
		if _, ok := out[note]; ok {
			out[note] = b
		}
	}
	return out
}

// ExtractOverrides diffs a working table against its defaults,
// producing the minimal override set to persist.
func ExtractOverrides(defaults, current Mapping) map[uint8]Binding {
	out := make(map[uint8]Binding)
	for note, b := range current {
		if def, ok := defaults[note]; !ok || def != b {
			out[note] = b
		}
	}
	return out
}

// BuildReverse inverts a mapping for resolver lookups. Users may bind
// one chord to several notes, so values are sorted note slices.
func BuildReverse(m Mapping) map[Binding][]uint8 {
	out := make(map[Binding][]uint8, len(m))
	for note, b := range m {
		out[b] = append(out[b], note)
	}
	for b := range out {
		ns := out[b]
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
		out[b] = ns
	}
	return out
}

// Validate checks a table for full coverage of its mode span and for
// chords claimed by more than one note.
func Validate(m Mapping, mode Mode) error {
	lo, hi := Range(mode)
	seen := make(map[Binding]uint8, len(m))
	for note := lo; note <= hi; note++ {
		b, ok := m[note]
		if !ok {
			return fmt.Errorf("keymap: note %d (%s) has no binding", note, NoteName(note))
		}
		if prev, dup := seen[b]; dup {
			return fmt.Errorf("keymap: binding %s claimed by notes %d and %d", b.ID(), prev, note)
		}
		seen[b] = note
	}
	return nil
}
