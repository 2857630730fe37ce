package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"openpiano/stats"
	"openpiano/theme"
)

// StatusState carries the numbers for one status line frame.
type StatusState struct {
	Volume    float64
	Effective int
	PedalDown bool
	KPS       float64
	Held      int
	Peak      int
	Transpose int
	Mode      string
	InputMode string
}

// RenderStatus draws the fixed-width status line under the keyboard.
func RenderStatus(th *theme.Theme, st StatusState) string {
	label := lipgloss.NewStyle().Foreground(th.Muted())
	value := lipgloss.NewStyle().Foreground(th.FG())
	accent := lipgloss.NewStyle().Foreground(th.Accent())

	segs := []string{
		label.Render("VOL ") + value.Render(stats.FormatVolume(st.Volume)),
		label.Render("SUS ") + value.Render(stats.FormatSustain(st.Effective)),
		label.Render("KPS ") + value.Render(stats.FormatKPS(st.KPS)),
		label.Render("HLD ") + value.Render(stats.FormatCount(st.Held)),
		label.Render("POL ") + value.Render(stats.FormatCount(st.Peak)),
		label.Render("TRN ") + value.Render(stats.FormatTranspose(st.Transpose)),
		value.Render(st.Mode + "-key"),
		value.Render(st.InputMode),
	}
	if st.PedalDown {
		segs = append(segs, accent.Render(string(th.Symbols.PedalDown)+" pedal"))
	}
	return strings.Join(segs, "  ")
}
