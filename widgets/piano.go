package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"openpiano/keymap"
	"openpiano/theme"
)

// Piano renders the two-row keyboard and translates clicks back to
// notes. White keys take two cells on the bottom row; each black key
// takes one cell on the top row, over the right edge of the white key
// below it.
type Piano struct {
	theme   *theme.Theme
	lo, hi  uint8
	whites  []uint8
	blackAt map[int]uint8
}

// State carries everything the keyboard needs to draw one frame.
// Selected is the note targeted in the keybind editor, -1 when none.
type State struct {
	Mapping  keymap.Mapping
	Pressed  func(note uint8) bool
	Selected int
}

func NewPiano(th *theme.Theme) *Piano {
	return &Piano{theme: th}
}

// SetSpan rebuilds the key geometry for a note range.
func (p *Piano) SetSpan(lo, hi uint8) {
	if p.lo == lo && p.hi == hi && p.whites != nil {
		return
	}
	p.lo, p.hi = lo, hi
	p.whites = p.whites[:0]
	p.blackAt = make(map[int]uint8)
	for n := lo; ; n++ {
		if keymap.IsBlackKey(n) {
			if len(p.whites) > 0 {
				p.blackAt[len(p.whites)*2-1] = n
			}
		} else {
			p.whites = append(p.whites, n)
		}
		if n == hi {
			break
		}
	}
}

// Width reports the rendered width in cells.
func (p *Piano) Width() int { return len(p.whites) * 2 }

// Height reports the rendered height in rows, cursor row included.
func (p *Piano) Height() int { return 3 }

// Render draws the cursor, black and white rows.
func (p *Piano) Render(st State) string {
	width := p.Width()
	black := lipgloss.NewStyle().Background(p.theme.Surface()).Foreground(p.theme.FG())
	whiteEven := lipgloss.NewStyle().Background(p.theme.Ivory()).Foreground(p.theme.BG())
	whiteOdd := lipgloss.NewStyle().Background(p.theme.Color(0.64)).Foreground(p.theme.BG())
	pressed := lipgloss.NewStyle().Background(p.theme.Accent()).Foreground(p.theme.BG())
	cursor := lipgloss.NewStyle().Foreground(p.theme.Warning())

	cursorRow := strings.Repeat(" ", width)
	if st.Selected >= 0 {
		if x, ok := p.keyX(uint8(st.Selected)); ok {
			cursorRow = strings.Repeat(" ", x) +
				cursor.Render(string(p.theme.Symbols.Cursor)) +
				strings.Repeat(" ", max(width-x-1, 0))
		}
	}

	var blackRow strings.Builder
	for x := 0; x < width; x++ {
		note, ok := p.blackAt[x]
		if !ok {
			blackRow.WriteString(" ")
			continue
		}
		style := black
		if st.Pressed != nil && st.Pressed(note) {
			style = pressed
		}
		blackRow.WriteString(p.renderCap(style, st, note, 1))
	}

	var whiteRow strings.Builder
	for i, note := range p.whites {
		style := whiteEven
		if i%2 == 1 {
			style = whiteOdd
		}
		if st.Pressed != nil && st.Pressed(note) {
			style = pressed
		}
		whiteRow.WriteString(p.renderCap(style, st, note, 2))
	}

	return strings.Join([]string{cursorRow, blackRow.String(), whiteRow.String()}, "\n")
}

// renderCap draws one key cap of the given cell width.
func (p *Piano) renderCap(style lipgloss.Style, st State, note uint8, cells int) string {
	glyph, stacked := cellGlyph(st.Mapping[note])
	if stacked {
		style = style.Underline(true)
	}
	if pad := cells - len([]rune(glyph)); pad > 0 {
		glyph += strings.Repeat(" ", pad)
	}
	return style.Render(glyph)
}

// HitTest maps a cell inside the widget back to a note. Row 0 is the
// cursor strip and never clicks. Row 1 belongs to black keys where one
// is drawn and falls through to the white key underneath elsewhere, so
// the keyboard clicks like a solid block.
func (p *Piano) HitTest(x, y int) (uint8, bool) {
	if x < 0 || x >= p.Width() || y < 1 || y >= p.Height() {
		return 0, false
	}
	if y == 1 {
		if note, ok := p.blackAt[x]; ok {
			return note, true
		}
	}
	return p.whites[x/2], true
}

// keyX locates a note's glyph cell.
func (p *Piano) keyX(note uint8) (int, bool) {
	for x, n := range p.blackAt {
		if n == note {
			return x, true
		}
	}
	for i, n := range p.whites {
		if n == note {
			return i * 2, true
		}
	}
	return 0, false
}

// cellGlyph compresses a binding into the one character a key cap can
// hold. Ctrl and alt chords come back stacked and render underlined;
// mouse chords and anything else too wide for a cell show as '*'.
func cellGlyph(b keymap.Binding) (string, bool) {
	if b.Token == "" {
		return " ", false
	}
	stacked := b.Ctrl || b.Alt
	if b.Source == keymap.Mouse || len([]rune(b.Token)) != 1 {
		return "*", stacked
	}
	if stacked {
		return strings.ToUpper(b.Token), true
	}
	return keymap.ShortLabel(b), false
}
