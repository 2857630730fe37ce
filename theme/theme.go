package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	RecordOn  rune // ● recording
	RecordOff rune // ○ idle
	Cursor    rune // ▾ edit selection marker
	PedalDown rune // ▂ sustain suppressed
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			RecordOn:  '●',
			RecordOff: '○',
			Cursor:    '▾',
			PedalDown: '▂',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0  // ink
	RoleSurface = 0.14 // dark surface, black keys
	RoleMuted   = 0.29 // slate
	RoleDim     = 0.43 // lavender gray
	RoleFG      = 0.57 // readable foreground
	RoleIvory   = 0.71 // white keys
	RoleAccent  = 0.86 // amber, pressed keys
	RoleWarning = 1.0  // red, record dot and edit cursor
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Dim() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleDim))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Ivory() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleIvory))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
