package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"openpiano/audio"
	"openpiano/config"
	"openpiano/debug"
	"openpiano/midi"
	"openpiano/piano"
	"openpiano/record"
	"openpiano/theme"
	"openpiano/tui"
)

func main() {
	settingsPath, err := config.SettingsPath()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		fmt.Printf("warning: %v, using defaults\n", err)
	}

	if settings.Debug {
		if path, err := config.DebugLogPath(); err == nil && debug.Enable(path) == nil {
			defer debug.Close()
		}
	}
	defer midi.CloseDriver()

	// Palette: a user drops a GIMP palette next to the settings file to
	// reskin the whole UI; otherwise the built-in one applies.
	palette := theme.Default()
	if dir, err := config.Dir(); err == nil {
		if p, err := theme.LoadGPL(filepath.Join(dir, "palette.gpl")); err == nil {
			palette = p
		}
	}
	th := theme.New(palette)

	engine := audio.Open(settings.AudioBackend, settings.MIDIOutputPort)

	takesDir, err := config.TakesDir()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	mgr := piano.NewManager(settings, settingsPath, engine, record.NewStore(takesDir))

	// Attach a MIDI keyboard now if one is there; the watcher picks up
	// anything plugged in later.
	var midiIn *midi.Input
	if in, err := midi.OpenInput(settings.MIDIInputPort); err == nil {
		midiIn = in
	} else {
		debug.Log("midi", "no input attached", "err", err)
	}

	watcher := midi.NewWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	m := tui.NewModel(mgr, midiIn, watcher, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())

	_, runErr := p.Run()
	mgr.Shutdown()
	if midiIn != nil {
		midiIn.Close()
	}
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}
