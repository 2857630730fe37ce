package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"openpiano/keymap"
	"openpiano/theme"
)

// RenderEditBar draws the keybind editor overlay: the targeted note,
// its staged chord, and the session controls.
func RenderEditBar(th *theme.Theme, note uint8, haveNote bool, b keymap.Binding, undoDepth int) string {
	title := lipgloss.NewStyle().Foreground(th.Warning()).Bold(true)
	dim := lipgloss.NewStyle().Foreground(th.Dim())
	value := lipgloss.NewStyle().Foreground(th.FG())

	head := title.Render("KEYBIND EDIT")
	if haveNote {
		head += value.Render(fmt.Sprintf("  %s = %s", keymap.NoteName(note), keymap.InlineLabel(b)))
	} else {
		head += dim.Render("  pick a note to rebind")
	}

	controls := []struct{ key, desc string }{
		{"click / left,right", "pick note"},
		{"any chord", "assign"},
		{"backspace", fmt.Sprintf("undo (%d)", undoDepth)},
		{"enter / f2", "save"},
		{"esc", "discard"},
	}
	lines := []string{head}
	for _, c := range controls {
		lines = append(lines, dim.Render(fmt.Sprintf("  %-18s %s", c.key, c.desc)))
	}
	return strings.Join(lines, "\n")
}
