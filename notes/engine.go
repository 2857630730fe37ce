package notes

import (
	"time"

	"openpiano/debug"
)

// Audio is the slice of the sound backend the engine drives.
type Audio interface {
	NoteOn(note, velocity uint8) error
	NoteOff(note uint8) error
	AllNotesOff() error
}

// Surface is the visual keyboard the engine marks pressed keys on.
type Surface interface {
	SetPressed(note uint8, pressed bool)
}

// Recorder hears notes the way the audio backend does: on at the
// first source, off when the sound actually stops.
type Recorder interface {
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
}

type sustainHold struct {
	deadline   time.Time
	indefinite bool
}

// Engine owns the note lifecycle. A note sounds while at least one
// source holds it; when the last source leaves it either stops or
// rides out a sustain tail. Not safe for concurrent use: everything
// runs on the update loop.
type Engine struct {
	audio    Audio
	surface  Surface
	recorder Recorder

	now func() time.Time

	noteSources map[uint8]map[string]struct{}
	sustained   map[uint8]sustainHold
}

func NewEngine(audio Audio) *Engine {
	return &Engine{
		audio:       audio,
		now:         time.Now,
		noteSources: make(map[uint8]map[string]struct{}),
		sustained:   make(map[uint8]sustainHold),
	}
}

func (e *Engine) SetSurface(s Surface)   { e.surface = s }
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// SetAudio swaps the backend. The caller silences the old one first.
func (e *Engine) SetAudio(a Audio) { e.audio = a }

// Activate sounds a note on behalf of a source. Only the first source
// triggers audio; later sources pile onto the refcount, and a source
// re-activating a note it already holds is a no-op. Re-activating a
// sustained note cancels its tail and retriggers.
func (e *Engine) Activate(note uint8, source string, velocity uint8) {
	ss := e.noteSources[note]
	if ss == nil {
		ss = make(map[string]struct{})
		e.noteSources[note] = ss
	}
	first := len(ss) == 0
	ss[source] = struct{}{}
	if !first {
		return
	}
	delete(e.sustained, note)
	if err := e.audio.NoteOn(note, velocity); err != nil {
		debug.Log("audio", "note on failed", "note", note, "err", err)
	}
	if e.recorder != nil {
		e.recorder.NoteOn(note, velocity)
	}
	if e.surface != nil {
		e.surface.SetPressed(note, true)
	}
}

// ReleaseSource withdraws one source from a note. The note keeps
// sounding while other sources hold it. When the last one leaves, the
// note stops immediately if sustain is suppressed or the effective
// percent keeps nothing, and otherwise enters its tail.
func (e *Engine) ReleaseSource(note uint8, source string, effective int, noSustain bool) {
	ss := e.noteSources[note]
	if _, held := ss[source]; !held {
		return
	}
	delete(ss, source)
	if len(ss) > 0 {
		return
	}
	delete(e.noteSources, note)

	hold, indefinite := HoldDuration(effective)
	if noSustain || (!indefinite && hold == 0) {
		e.stop(note)
		return
	}
	if e.surface != nil {
		e.surface.SetPressed(note, false)
	}
	e.sustained[note] = sustainHold{deadline: e.now().Add(hold), indefinite: indefinite}
}

// stop fully silences a note, telling the recorder and surface.
func (e *Engine) stop(note uint8) {
	delete(e.sustained, note)
	if err := e.audio.NoteOff(note); err != nil {
		debug.Log("audio", "note off failed", "note", note, "err", err)
	}
	if e.recorder != nil {
		e.recorder.NoteOff(note)
	}
	if e.surface != nil {
		e.surface.SetPressed(note, false)
	}
}

// Tick expires sustain tails that hit their deadline, reporting how
// many notes stopped.
func (e *Engine) Tick() int {
	now := e.now()
	var due []uint8
	for note, h := range e.sustained {
		if !h.indefinite && !now.Before(h.deadline) {
			due = append(due, note)
		}
	}
	for _, note := range due {
		e.stop(note)
	}
	return len(due)
}

// RefreshDeadlines re-times every sustain tail after the effective
// sustain changed, anchoring new deadlines at the present. Dropping
// to zero cuts every tail at once.
func (e *Engine) RefreshDeadlines(effective int) {
	if effective <= 0 {
		e.ReleaseAllSustained()
		return
	}
	hold, indefinite := HoldDuration(effective)
	deadline := e.now().Add(hold)
	for note, h := range e.sustained {
		h.deadline = deadline
		h.indefinite = indefinite
		e.sustained[note] = h
	}
}

// ReleaseAllSustained stops every note riding a sustain tail.
func (e *Engine) ReleaseAllSustained() {
	for note := range e.sustained {
		e.stop(note)
	}
}

// StopAll silences everything with a single all-notes-off, resetting
// held and sustained state. Used on focus loss, table swaps, backend
// swaps and shutdown.
func (e *Engine) StopAll() {
	for note := range e.noteSources {
		e.noteStopped(note)
	}
	for note := range e.sustained {
		e.noteStopped(note)
	}
	e.noteSources = make(map[uint8]map[string]struct{})
	e.sustained = make(map[uint8]sustainHold)
	if err := e.audio.AllNotesOff(); err != nil {
		debug.Log("audio", "all notes off failed", "err", err)
	}
}

func (e *Engine) noteStopped(note uint8) {
	if e.recorder != nil {
		e.recorder.NoteOff(note)
	}
	if e.surface != nil {
		e.surface.SetPressed(note, false)
	}
}

// HeldCount is the number of notes with at least one live source.
func (e *Engine) HeldCount() int { return len(e.noteSources) }

// SustainedCount is the number of notes riding a tail.
func (e *Engine) SustainedCount() int { return len(e.sustained) }

// SoundingCount counts everything currently audible.
func (e *Engine) SoundingCount() int { return len(e.noteSources) + len(e.sustained) }
