// Package tui is the terminal front end: it owns the bubbletea loop
// and translates terminal input into piano manager calls.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"openpiano/keymap"
	"openpiano/midi"
	"openpiano/piano"
	"openpiano/theme"
	"openpiano/widgets"
)

// Terminals deliver key repeats while a key is held but never the
// release, so a key counts as down until its repeats stop arriving.
// The window must outlast the longest initial repeat delay around.
const keyLiveness = 650 * time.Millisecond

type sustainTickMsg time.Time

type statsTickMsg time.Time

type midiEventMsg midi.NoteEvent

type midiClosedMsg struct{}

type deviceEventMsg midi.DeviceEvent

// layoutBounds holds cached layout info for mouse hit tests.
type layoutBounds struct {
	pianoTop int
}

// pressedSet is the engine's view of the on-screen keyboard. It is a
// shared map so the copies bubbletea makes of the model see the same
// pressed keys.
type pressedSet map[uint8]bool

func (p pressedSet) SetPressed(note uint8, pressed bool) {
	if pressed {
		p[note] = true
	} else {
		delete(p, note)
	}
}

type Model struct {
	Manager *piano.Manager
	Theme   *theme.Theme

	keys  keyMap
	help  help.Model
	piano *widgets.Piano

	pressed  pressedSet
	lastSeen map[keymap.Binding]time.Time

	spaceDown bool
	spaceSeen time.Time

	midiIn  *midi.Input
	watcher *midi.Watcher

	bounds    *layoutBounds
	mouseDown bool
	quitting  bool
	notice    string
}

func NewModel(mgr *piano.Manager, midiIn *midi.Input, watcher *midi.Watcher, th *theme.Theme) Model {
	pressed := make(pressedSet)
	mgr.SetSurface(pressed)

	p := widgets.NewPiano(th)
	lo, hi := keymap.Range(mgr.Mode())
	p.SetSpan(lo, hi)

	return Model{
		Manager:  mgr,
		Theme:    th,
		keys:     newKeyMap(),
		help:     help.New(),
		piano:    p,
		pressed:  pressed,
		lastSeen: make(map[keymap.Binding]time.Time),
		midiIn:   midiIn,
		watcher:  watcher,
		bounds:   &layoutBounds{},
	}
}

func sustainTick() tea.Cmd {
	return tea.Tick(piano.SustainTickInterval, func(t time.Time) tea.Msg {
		return sustainTickMsg(t)
	})
}

func statsTick() tea.Cmd {
	return tea.Tick(piano.StatsTickInterval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

func listenMIDI(in *midi.Input) tea.Cmd {
	if in == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-in.Events()
		if !ok {
			return midiClosedMsg{}
		}
		return midiEventMsg(ev)
	}
}

func listenDevices(w *midi.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		return deviceEventMsg(<-w.Events())
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		sustainTick(),
		statsTick(),
		listenMIDI(m.midiIn),
		listenDevices(m.watcher),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case sustainTickMsg:
		now := time.Time(msg)
		for b, seen := range m.lastSeen {
			if now.Sub(seen) > keyLiveness {
				m.Manager.ReleaseBinding(b)
				delete(m.lastSeen, b)
			}
		}
		if m.spaceDown && now.Sub(m.spaceSeen) > keyLiveness {
			m.spaceDown = false
			m.Manager.SetPedal(false)
		}
		m.Manager.TickSustain()
		return m, sustainTick()

	case statsTickMsg:
		m.Manager.TickStats()
		return m, statsTick()

	case midiEventMsg:
		ev := midi.NoteEvent(msg)
		m.Manager.HandleMIDI(ev.Note, ev.Velocity, ev.On)
		return m, listenMIDI(m.midiIn)

	case midiClosedMsg:
		m.midiIn = nil
		return m, nil

	case deviceEventMsg:
		return m.updateDevice(midi.DeviceEvent(msg))

	case tea.BlurMsg:
		// Releases can no longer reach us; silence everything.
		m.dropHeldInput()
		m.Manager.StopAll()
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.Manager.Editing() {
		return m.updateEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Pedal):
		m.spaceDown = true
		m.spaceSeen = time.Now()
		m.Manager.SetPedal(true)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.KeyMode):
		m.dropHeldInput()
		m.Manager.ToggleKeyMode()
		lo, hi := keymap.Range(m.Manager.Mode())
		m.piano.SetSpan(lo, hi)

	case key.Matches(msg, m.keys.InputMode):
		m.dropHeldInput()
		mode := m.Manager.ToggleInputMode()
		m.notice = "input mode: " + string(mode)

	case key.Matches(msg, m.keys.VolumeUp):
		m.Manager.AdjustVolume(0.05)
	case key.Matches(msg, m.keys.VolumeDown):
		m.Manager.AdjustVolume(-0.05)

	case key.Matches(msg, m.keys.TransposeUp):
		m.Manager.AdjustTranspose(1)
	case key.Matches(msg, m.keys.TransposeDown):
		m.Manager.AdjustTranspose(-1)

	case key.Matches(msg, m.keys.SustainUp):
		m.Manager.AdjustSustain(5)
	case key.Matches(msg, m.keys.SustainDown):
		m.Manager.AdjustSustain(-5)

	case key.Matches(msg, m.keys.VelocityUp):
		m.Manager.AdjustVelocity(5)
	case key.Matches(msg, m.keys.VelocityDown):
		m.Manager.AdjustVelocity(-5)

	case key.Matches(msg, m.keys.FadeUp):
		m.Manager.AdjustFade(10)
	case key.Matches(msg, m.keys.FadeDown):
		m.Manager.AdjustFade(-10)

	case key.Matches(msg, m.keys.Edit):
		m.dropHeldInput()
		m.Manager.EditBegin()

	case key.Matches(msg, m.keys.Record):
		if m.Manager.ToggleRecording() {
			m.notice = "recording"
		} else {
			m.notice = "recording stopped"
		}

	case key.Matches(msg, m.keys.SaveTake):
		if !m.Manager.HasTake() {
			m.notice = "nothing recorded yet"
			break
		}
		path, err := m.Manager.SaveTake()
		if err != nil {
			m.notice = "save failed: " + err.Error()
		} else {
			m.notice = "saved " + filepath.Base(path)
		}

	case key.Matches(msg, m.keys.Program):
		m.notice = fmt.Sprintf("program %d", m.Manager.CycleProgram())

	default:
		b, ok := m.Manager.KeyDown(keyEventFrom(msg.String()))
		if ok || m.Manager.BindingDown(b) {
			m.lastSeen[b] = time.Now()
		}
	}
	return m, nil
}

func (m Model) updateEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Manager.EditDiscard()
		m.notice = "keybind changes discarded"
	case "enter", "f2":
		if err := m.Manager.EditCommit(); err != nil {
			m.notice = "save failed: " + err.Error()
		} else {
			m.notice = "keybinds saved"
		}
	case "backspace":
		m.Manager.EditUndo()
	case "left":
		m.moveEditSelection(-1)
	case "right":
		m.moveEditSelection(1)
	default:
		m.Manager.KeyDown(keyEventFrom(msg.String()))
	}
	return m, nil
}

func (m Model) moveEditSelection(delta int) {
	lo, hi := keymap.Range(m.Manager.Mode())
	cur, ok := m.Manager.EditSelected()
	if !ok {
		m.Manager.EditSelect(60)
		return
	}
	next := int(cur) + delta
	next = min(max(next, int(lo)), int(hi))
	m.Manager.EditSelect(uint8(next))
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonLeft:
		switch msg.Action {
		case tea.MouseActionPress:
			if note, ok := m.hitPiano(msg.X, msg.Y); ok {
				m.mouseDown = true
				m.Manager.PointerDown(note)
			}
		case tea.MouseActionMotion:
			if m.mouseDown {
				if note, ok := m.hitPiano(msg.X, msg.Y); ok {
					m.Manager.PointerDrag(note)
				}
			}
		case tea.MouseActionRelease:
			m.mouseDown = false
			m.Manager.PointerUp()
		}

	case tea.MouseButtonRight, tea.MouseButtonMiddle, tea.MouseButtonBackward, tea.MouseButtonForward:
		token := mouseToken(msg.Button)
		switch msg.Action {
		case tea.MouseActionPress:
			m.Manager.MouseDown(token, msg.Ctrl, msg.Shift, msg.Alt)
		case tea.MouseActionRelease:
			m.Manager.MouseUp(token, msg.Ctrl, msg.Shift, msg.Alt)
		}
	}
	return m, nil
}

func (m Model) updateDevice(ev midi.DeviceEvent) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenDevices(m.watcher)}

	switch ev.Type {
	case midi.DeviceAdded:
		want := m.Manager.MIDIInputPort()
		if m.midiIn == nil && (want == "" || strings.Contains(ev.Name, want)) {
			in, err := midi.OpenInput(ev.Name)
			if err == nil {
				m.midiIn = in
				m.notice = "midi in: " + in.Name()
				cmds = append(cmds, listenMIDI(m.midiIn))
			}
		}
	case midi.DeviceRemoved:
		if m.midiIn != nil && m.midiIn.Name() == ev.Name {
			m.midiIn.Close()
			m.midiIn = nil
			m.Manager.StopAll()
			m.notice = "midi in unplugged"
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Manager.StopAll()
	return m, tea.Quit
}

// dropHeldInput forgets synthesized key state before anything that
// invalidates it (mode switches, editing, focus loss).
func (m *Model) dropHeldInput() {
	for b := range m.lastSeen {
		delete(m.lastSeen, b)
	}
	m.mouseDown = false
	if m.spaceDown {
		m.spaceDown = false
		m.Manager.SetPedal(false)
	}
}

func (m Model) hitPiano(x, y int) (uint8, bool) {
	return m.piano.HitTest(x, y-m.bounds.pianoTop)
}

// keyEventFrom rebuilds a raw key event from bubbletea's string form,
// e.g. "t", "T", "!", "ctrl+t", "alt+T". Terminals report no scan
// codes, so ScanCode stays zero.
func keyEventFrom(s string) keymap.KeyEvent {
	var ev keymap.KeyEvent
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			ev.Ctrl = true
			s = s[len("ctrl+"):]
		case strings.HasPrefix(s, "alt+"):
			ev.Alt = true
			s = s[len("alt+"):]
		case strings.HasPrefix(s, "shift+"):
			ev.Shift = true
			s = s[len("shift+"):]
		default:
			ev.Text = s
			ev.KeyName = s
			return ev
		}
	}
}

func mouseToken(b tea.MouseButton) string {
	switch b {
	case tea.MouseButtonRight:
		return "right"
	case tea.MouseButtonMiddle:
		return "middle"
	case tea.MouseButtonBackward:
		return "x1"
	case tea.MouseButtonForward:
		return "x2"
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	rec := dimStyle.Render(string(m.Theme.Symbols.RecordOff))
	if m.Manager.Recording() {
		rec = warnStyle.Render(string(m.Theme.Symbols.RecordOn))
	}
	port := "no midi in"
	if m.midiIn != nil {
		port = m.midiIn.Name()
	}
	header := headerStyle.Render(fmt.Sprintf("openpiano  %s  prg:%03d", m.Manager.BackendName(), m.Manager.Program())) +
		dimStyle.Render("  "+port+"  ") + rec

	selected := -1
	if m.Manager.Editing() {
		if note, ok := m.Manager.EditSelected(); ok {
			selected = int(note)
		}
	}
	pianoView := m.piano.Render(widgets.State{
		Mapping:  m.Manager.Mapping(),
		Pressed:  func(n uint8) bool { return m.pressed[n] },
		Selected: selected,
	})

	tr := m.Manager.Stats()
	status := widgets.RenderStatus(m.Theme, widgets.StatusState{
		Volume:    m.Manager.Volume(),
		Effective: m.Manager.Effective(),
		PedalDown: m.Manager.PedalDown(),
		KPS:       tr.KPS(),
		Held:      tr.Held(),
		Peak:      tr.Peak(),
		Transpose: m.Manager.Transpose(),
		Mode:      string(m.Manager.Mode()),
		InputMode: string(m.Manager.InputMode()),
	})

	var tail string
	if m.Manager.Editing() {
		note, haveNote := m.Manager.EditSelected()
		b := m.Manager.Mapping()[note]
		tail = widgets.RenderEditBar(m.Theme, note, haveNote, b, m.Manager.EditUndoDepth())
	} else {
		tail = m.help.View(m.keys)
	}

	m.bounds.pianoTop = 1 + lipgloss.Height(header) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(pianoView)
	out.WriteString("\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(tail)
	if m.notice != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.notice))
	}
	return out.String()
}
