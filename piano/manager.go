// Package piano wires the keymap, note, audio, recording and settings
// layers into one instrument.
package piano

import (
	"fmt"
	"time"

	"openpiano/audio"
	"openpiano/config"
	"openpiano/debug"
	"openpiano/keymap"
	"openpiano/notes"
	"openpiano/record"
	"openpiano/stats"
)

// Update cadences for the host loop.
const (
	SustainTickInterval = 40 * time.Millisecond
	StatsTickInterval   = 200 * time.Millisecond
)

const pointerSource = "mouse"

// Manager owns the piano. Every method runs on the update loop; the
// manager is not safe for concurrent use.
type Manager struct {
	settings     *config.Settings
	settingsPath string

	audio    audio.Engine
	engine   *notes.Engine
	resolver *notes.Resolver
	gate     *notes.Gate
	tracker  *stats.Tracker
	recorder *record.Recorder
	takes    *record.Store

	normalizer keymap.Normalizer
	defaults   keymap.Mapping
	table      keymap.Mapping
	editor     keymap.EditSession

	lastEffective int
	pointerNote   int

	now func() time.Time
}

func NewManager(settings *config.Settings, settingsPath string, audioEng audio.Engine, takes *record.Store) *Manager {
	m := &Manager{
		settings:     settings,
		settingsPath: settingsPath,
		audio:        audioEng,
		recorder:     record.NewRecorder(),
		takes:        takes,
		tracker:      stats.NewTracker(),
		gate:         notes.NewGate(SustainTickInterval),
		normalizer:   keymap.Normalizer{Mode: keymap.InputMode(settings.InputMode)},
		pointerNote:  -1,
		now:          time.Now,
	}
	m.engine = notes.NewEngine(audioEng)
	m.engine.SetRecorder(m.recorder)
	m.resolver = notes.NewResolver(m.engine)
	m.gate.SetFade(settings.SustainFade)
	m.lastEffective = m.effective()
	m.rebuildTable()

	if err := m.audio.SetVolume(settings.Volume); err != nil {
		debug.Log("audio", "set volume failed", "err", err)
	}
	if err := m.audio.SetProgram(uint8(settings.Program)); err != nil {
		debug.Log("audio", "program unavailable", "program", settings.Program, "err", err)
		settings.Program = 0
		m.audio.SetProgram(0)
	}
	return m
}

// SetSurface attaches the visual keyboard.
func (m *Manager) SetSurface(s notes.Surface) { m.engine.SetSurface(s) }

func (m *Manager) rebuildTable() {
	mode := keymap.Mode(m.settings.PianoMode)
	m.defaults = keymap.DefaultMapping(mode)
	overrides := config.DecodeKeybinds(m.settings.CustomKeybinds)
	m.table = keymap.ApplyOverrides(m.defaults, overrides)
	if err := keymap.Validate(m.table, mode); err != nil {
		debug.Log("keymap", "table validation", "err", err)
	}
	m.resolver.SetMapping(keymap.BuildReverse(m.table))
}

// KeyDown handles a raw key press. It reports the normalized binding
// so the host can track key liveness, and whether the press did
// anything. In edit mode the press assigns instead of playing.
func (m *Manager) KeyDown(ev keymap.KeyEvent) (keymap.Binding, bool) {
	b, ok := m.normalizer.Key(ev)
	if !ok {
		return keymap.Binding{}, false
	}
	if m.editor.Active() {
		return b, m.editor.Assign(b) == keymap.AssignApplied
	}
	pressed := m.resolver.Press(b, keycodes(ev), uint8(m.settings.Velocity), m.settings.Transpose)
	if pressed {
		m.tracker.KeyPressed(m.now())
		m.observe()
	}
	return b, pressed
}

// KeyUp handles a raw key release.
func (m *Manager) KeyUp(ev keymap.KeyEvent) bool {
	if m.editor.Active() {
		return false
	}
	hint, _ := m.normalizer.Key(ev)
	released := m.resolver.Release(keycodes(ev), hint, m.effective(), m.gate.TemporarilyOff())
	if released {
		m.observe()
	}
	return released
}

// BindingDown reports whether a chord currently holds notes, letting
// the host treat an auto-repeat press as proof the key is still down.
func (m *Manager) BindingDown(b keymap.Binding) bool {
	return m.resolver.Down(b)
}

// ReleaseBinding releases by binding identity, for hosts that must
// synthesize releases because the terminal never delivers key-ups.
func (m *Manager) ReleaseBinding(b keymap.Binding) bool {
	if m.editor.Active() {
		return false
	}
	released := m.resolver.Release(nil, b, m.effective(), m.gate.TemporarilyOff())
	if released {
		m.observe()
	}
	return released
}

func keycodes(ev keymap.KeyEvent) []uint32 {
	if ev.ScanCode == 0 {
		return nil
	}
	return []uint32{ev.ScanCode}
}

// MouseDown handles a bindable mouse button chord going down. In edit
// mode it assigns the chord to the selected note.
func (m *Manager) MouseDown(button string, ctrl, shift, alt bool) bool {
	b, ok := m.normalizer.Mouse(button, ctrl, shift, alt)
	if !ok {
		return false
	}
	if m.editor.Active() {
		return m.editor.Assign(b) == keymap.AssignApplied
	}
	pressed := m.resolver.Press(b, nil, uint8(m.settings.Velocity), m.settings.Transpose)
	if pressed {
		m.tracker.KeyPressed(m.now())
		m.observe()
	}
	return pressed
}

// MouseUp handles the chord's button coming back up. The resolver's
// candidate search covers modifiers that lifted first.
func (m *Manager) MouseUp(button string, ctrl, shift, alt bool) bool {
	b, ok := m.normalizer.Mouse(button, ctrl, shift, alt)
	if !ok {
		return false
	}
	return m.ReleaseBinding(b)
}

// PointerDown presses a key directly on the piano surface. In edit
// mode it selects the note instead.
func (m *Manager) PointerDown(note uint8) {
	if m.editor.Active() {
		m.editor.Select(note)
		return
	}
	m.pointerPlay(note)
}

// PointerDrag slides the pointer press to another key.
func (m *Manager) PointerDrag(note uint8) {
	if m.editor.Active() {
		return
	}
	m.pointerPlay(note)
}

// PointerUp lifts the surface press.
func (m *Manager) PointerUp() {
	if m.pointerNote < 0 {
		return
	}
	m.releasePointer()
	m.observe()
}

func (m *Manager) pointerPlay(note uint8) {
	if m.pointerNote == int(note) {
		return
	}
	m.releasePointer()
	m.engine.Activate(note, pointerSource, uint8(m.settings.Velocity))
	m.pointerNote = int(note)
	m.tracker.KeyPressed(m.now())
	m.observe()
}

func (m *Manager) releasePointer() {
	if m.pointerNote >= 0 {
		m.engine.ReleaseSource(uint8(m.pointerNote), pointerSource, m.effective(), m.gate.TemporarilyOff())
		m.pointerNote = -1
	}
}

// HandleMIDI feeds one event from an attached MIDI keyboard through
// the same lifecycle as every other source.
func (m *Manager) HandleMIDI(note, velocity uint8, on bool) {
	source := fmt.Sprintf("midi:%d", note)
	if on {
		m.engine.Activate(note, source, velocity)
		m.tracker.KeyPressed(m.now())
	} else {
		m.engine.ReleaseSource(note, source, m.effective(), m.gate.TemporarilyOff())
	}
	m.observe()
}

// TickSustain advances the pedal fade and expires due sustain tails.
// Call every SustainTickInterval.
func (m *Manager) TickSustain() {
	m.gate.Tick()
	m.syncEffective()
	if n := m.engine.Tick(); n > 0 {
		m.observe()
	}
	debug.LogEvery(250, "sustain", "tick", "gate", m.gate.Level(), "sustained", m.engine.SustainedCount())
}

// TickStats refreshes the press rate window. Call every
// StatsTickInterval.
func (m *Manager) TickStats() {
	m.tracker.Tick(m.now())
}

func (m *Manager) effective() int {
	return m.gate.Effective(m.settings.SustainPercent)
}

// syncEffective re-times sustain tails whenever the integer effective
// sustain moves.
func (m *Manager) syncEffective() {
	eff := m.effective()
	if eff == m.lastEffective {
		return
	}
	m.engine.RefreshDeadlines(eff)
	m.lastEffective = eff
	m.observe()
}

func (m *Manager) observe() {
	m.tracker.Observe(m.engine.HeldCount(), m.engine.SoundingCount())
}

// SetPedal suppresses sustain while held.
func (m *Manager) SetPedal(down bool) {
	if m.gate.TemporarilyOff() == down {
		return
	}
	m.gate.SetTemporarilyOff(down)
	m.syncEffective()
}

// StopAll is the panic stop: all sources forgotten, one all-notes-off.
func (m *Manager) StopAll() {
	m.resolver.Reset()
	m.pointerNote = -1
	m.engine.StopAll()
	m.observe()
}

// AdjustVolume nudges output volume, clamped to 0..1.
func (m *Manager) AdjustVolume(delta float64) float64 {
	v := min(max(m.settings.Volume+delta, 0), 1)
	m.settings.Volume = v
	if err := m.audio.SetVolume(v); err != nil {
		debug.Log("audio", "set volume failed", "err", err)
	}
	return v
}

// AdjustVelocity nudges the strike velocity, 1..127.
func (m *Manager) AdjustVelocity(delta int) int {
	m.settings.Velocity = min(max(m.settings.Velocity+delta, 1), 127)
	return m.settings.Velocity
}

// AdjustTranspose shifts future presses, -21..21 semitones. Notes
// already held release at the pitch they struck.
func (m *Manager) AdjustTranspose(delta int) int {
	m.settings.Transpose = min(max(m.settings.Transpose+delta, -21), 21)
	return m.settings.Transpose
}

// AdjustSustain changes the configured sustain percent.
func (m *Manager) AdjustSustain(delta int) int {
	m.settings.SustainPercent = min(max(m.settings.SustainPercent+delta, 0), 100)
	m.syncEffective()
	return m.settings.SustainPercent
}

// AdjustFade changes the pedal fade amount.
func (m *Manager) AdjustFade(delta int) int {
	m.settings.SustainFade = min(max(m.settings.SustainFade+delta, 0), 100)
	m.gate.SetFade(m.settings.SustainFade)
	return m.settings.SustainFade
}

// ToggleKeyMode flips between the 61- and 88-key spans. Everything
// stops first so no note outlives its binding.
func (m *Manager) ToggleKeyMode() keymap.Mode {
	m.StopAll()
	if m.settings.PianoMode == string(keymap.Mode88) {
		m.settings.PianoMode = string(keymap.Mode61)
	} else {
		m.settings.PianoMode = string(keymap.Mode88)
	}
	m.rebuildTable()
	return keymap.Mode(m.settings.PianoMode)
}

// ToggleInputMode flips between layout-aware and fixed-QWERTY input,
// remapping custom binding tokens so physical keys keep their notes.
func (m *Manager) ToggleInputMode() keymap.InputMode {
	m.StopAll()
	from := keymap.InputMode(m.settings.InputMode)
	to := keymap.QwertyFixed
	if from == keymap.QwertyFixed {
		to = keymap.LayoutAware
	}
	if overrides := config.DecodeKeybinds(m.settings.CustomKeybinds); len(overrides) > 0 {
		remapped := keymap.RemapTokens(overrides, from, to, m.normalizer.Localized)
		m.settings.CustomKeybinds = config.EncodeKeybinds(remapped)
	}
	m.settings.InputMode = string(to)
	m.normalizer.Mode = to
	m.rebuildTable()
	return to
}

// CycleProgram steps to the next instrument, wrapping when the
// backend rejects it.
func (m *Manager) CycleProgram() int {
	next := (m.settings.Program + 1) % 128
	if err := m.audio.SetProgram(uint8(next)); err != nil {
		next = 0
		if err := m.audio.SetProgram(0); err != nil {
			debug.Log("audio", "set program failed", "err", err)
			return m.settings.Program
		}
	}
	m.settings.Program = next
	return next
}

// EditBegin opens the keybind editor over the committed table. The
// piano goes quiet first; while editing, input assigns instead of
// playing.
func (m *Manager) EditBegin() {
	if m.editor.Active() {
		return
	}
	m.StopAll()
	m.editor.Begin(m.table)
}

func (m *Manager) Editing() bool { return m.editor.Active() }

// EditSelect targets a note, normally by clicking its key.
func (m *Manager) EditSelect(note uint8) bool { return m.editor.Select(note) }

func (m *Manager) EditSelected() (uint8, bool) { return m.editor.Selected() }

// EditUndo rolls back the latest assignment.
func (m *Manager) EditUndo() bool {
	_, ok := m.editor.Undo()
	return ok
}

func (m *Manager) EditUndoDepth() int { return m.editor.UndoDepth() }

// EditCommit promotes the staged table, persists the override delta,
// and closes the session. Overrides for notes outside the current
// span survive untouched.
func (m *Manager) EditCommit() error {
	if !m.editor.Active() {
		return nil
	}
	m.table = m.editor.Commit()
	overrides := keymap.ExtractOverrides(m.defaults, m.table)
	for note, b := range config.DecodeKeybinds(m.settings.CustomKeybinds) {
		if _, inSpan := m.defaults[note]; !inSpan {
			overrides[note] = b
		}
	}
	m.settings.CustomKeybinds = config.EncodeKeybinds(overrides)
	m.resolver.SetMapping(keymap.BuildReverse(m.table))
	if err := keymap.Validate(m.table, keymap.Mode(m.settings.PianoMode)); err != nil {
		debug.Log("keymap", "committed table has conflicts", "err", err)
	}
	return m.SaveSettings()
}

// EditDiscard closes the session, dropping staged changes.
func (m *Manager) EditDiscard() { m.editor.Discard() }

// ToggleRecording arms or disarms the recorder.
func (m *Manager) ToggleRecording() bool {
	if m.recorder.Active() {
		m.recorder.Stop()
	} else {
		m.recorder.Start()
	}
	return m.recorder.Active()
}

func (m *Manager) Recording() bool { return m.recorder.Active() }

func (m *Manager) HasTake() bool { return m.recorder.HasTake() }

// SaveTake writes the captured take to the recordings directory,
// disarming first if needed.
func (m *Manager) SaveTake() (string, error) {
	if m.recorder.Active() {
		m.recorder.Stop()
	}
	return m.takes.Save(m.recorder)
}

// Mapping is the table to render: the staged one while editing.
func (m *Manager) Mapping() keymap.Mapping {
	if m.editor.Active() {
		return m.editor.Staging()
	}
	return m.table
}

func (m *Manager) Mode() keymap.Mode           { return keymap.Mode(m.settings.PianoMode) }
func (m *Manager) InputMode() keymap.InputMode { return keymap.InputMode(m.settings.InputMode) }
func (m *Manager) Volume() float64             { return m.settings.Volume }
func (m *Manager) Velocity() int               { return m.settings.Velocity }
func (m *Manager) Transpose() int              { return m.settings.Transpose }
func (m *Manager) SustainPercent() int         { return m.settings.SustainPercent }
func (m *Manager) SustainFade() int            { return m.settings.SustainFade }
func (m *Manager) Effective() int              { return m.effective() }
func (m *Manager) PedalDown() bool             { return m.gate.TemporarilyOff() }
func (m *Manager) Program() int                { return m.settings.Program }
func (m *Manager) BackendName() string         { return m.audio.Name() }
func (m *Manager) Stats() *stats.Tracker       { return m.tracker }
func (m *Manager) MIDIInputPort() string       { return m.settings.MIDIInputPort }

// SaveSettings persists the current configuration.
func (m *Manager) SaveSettings() error {
	return config.Save(m.settingsPath, m.settings)
}

// Shutdown silences everything and persists settings.
func (m *Manager) Shutdown() {
	m.StopAll()
	if err := m.audio.Close(); err != nil {
		debug.Log("audio", "close failed", "err", err)
	}
	if err := m.SaveSettings(); err != nil {
		debug.Log("config", "save failed", "err", err)
	}
}
