// Package audio hosts the sound backends: an external MIDI output, a
// built-in synthesizer, and a silent fallback.
package audio

import "openpiano/debug"

// Engine is a sound backend. Implementations treat a note-on for an
// already sounding note as a retrigger and tolerate redundant offs.
type Engine interface {
	NoteOn(note, velocity uint8) error
	NoteOff(note uint8) error
	AllNotesOff() error
	SetProgram(program uint8) error
	SetVolume(v float64) error
	Name() string
	Close() error
}

// Backend names as they appear in the config file.
const (
	BackendSynth  = "synth"
	BackendMIDI   = "midi"
	BackendSilent = "silent"
)

// Silent is the engine of last resort. It plays nothing and never
// fails, keeping the piano interactive on machines with no sound
// path at all.
type Silent struct{}

func (Silent) NoteOn(note, velocity uint8) error { return nil }
func (Silent) NoteOff(note uint8) error          { return nil }
func (Silent) AllNotesOff() error                { return nil }
func (Silent) SetProgram(program uint8) error    { return nil }
func (Silent) SetVolume(v float64) error         { return nil }
func (Silent) Name() string                      { return "silent" }
func (Silent) Close() error                      { return nil }

// Open builds the requested backend, degrading through the synth to
// silence rather than failing. Startup never dies over audio.
func Open(backend, midiPort string) Engine {
	switch backend {
	case BackendSilent:
		return Silent{}
	case BackendMIDI:
		eng, err := NewMIDIOut(midiPort)
		if err == nil {
			return eng
		}
		debug.Log("audio", "midi backend unavailable", "port", midiPort, "err", err)
	}
	eng, err := NewSynth()
	if err == nil {
		return eng
	}
	debug.Log("audio", "synth unavailable", "err", err)
	return Silent{}
}
