package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the chrome keys: everything the terminal owns that is
// never a note chord. Letters and digits stay free for the keymap.
type keyMap struct {
	Quit          key.Binding
	Pedal         key.Binding
	KeyMode       key.Binding
	InputMode     key.Binding
	VolumeUp      key.Binding
	VolumeDown    key.Binding
	TransposeDown key.Binding
	TransposeUp   key.Binding
	SustainUp     key.Binding
	SustainDown   key.Binding
	VelocityUp    key.Binding
	VelocityDown  key.Binding
	FadeDown      key.Binding
	FadeUp        key.Binding
	Edit          key.Binding
	Record        key.Binding
	SaveTake      key.Binding
	Program       key.Binding
	Help          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Pedal: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "hold: sustain off"),
		),
		KeyMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "61/88 keys"),
		),
		InputMode: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "layout/qwerty input"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "volume down"),
		),
		TransposeDown: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "transpose down"),
		),
		TransposeUp: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "transpose up"),
		),
		SustainUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "sustain up"),
		),
		SustainDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "sustain down"),
		),
		VelocityUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "velocity up"),
		),
		VelocityDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "velocity down"),
		),
		FadeDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "pedal fade down"),
		),
		FadeUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "pedal fade up"),
		),
		Edit: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "edit keybinds"),
		),
		Record: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "record"),
		),
		SaveTake: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("f6", "save take"),
		),
		Program: key.NewBinding(
			key.WithKeys("f8"),
			key.WithHelp("f8", "next instrument"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp is the one-line footer; FullHelp the '?' overlay columns.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pedal, k.Edit, k.Record, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.VolumeUp, k.VolumeDown, k.VelocityUp, k.VelocityDown},
		{k.SustainUp, k.SustainDown, k.FadeUp, k.FadeDown},
		{k.TransposeUp, k.TransposeDown, k.KeyMode, k.InputMode},
		{k.Edit, k.Record, k.SaveTake, k.Program},
		{k.Pedal, k.Help, k.Quit},
	}
}
