package audio

import (
	"fmt"
	"math"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const (
	ccChannelVolume = 7
	ccAllNotesOff   = 123
)

// MIDIOut plays through an external device or software synthesizer on
// a MIDI output port.
type MIDIOut struct {
	name    string
	channel uint8
	send    func(gomidi.Message) error
	active  map[uint8]bool
}

// NewMIDIOut connects to the first output port whose name contains
// portName, or to the first port available when portName is empty.
func NewMIDIOut(portName string) (*MIDIOut, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("audio: no midi output ports")
	}
	port := outs[0]
	if portName != "" {
		idx := -1
		for i, p := range outs {
			if strings.Contains(strings.ToLower(p.String()), strings.ToLower(portName)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("audio: midi output %q not found", portName)
		}
		port = outs[idx]
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("audio: open midi output %q: %w", port.String(), err)
	}
	return &MIDIOut{
		name:   port.String(),
		send:   send,
		active: make(map[uint8]bool),
	}, nil
}

// NoteOn retriggers cleanly: an already sounding note is released
// before it strikes again.
func (m *MIDIOut) NoteOn(note, velocity uint8) error {
	if m.active[note] {
		if err := m.send(gomidi.NoteOff(m.channel, note)); err != nil {
			return err
		}
	}
	if err := m.send(gomidi.NoteOn(m.channel, note, velocity)); err != nil {
		return err
	}
	m.active[note] = true
	return nil
}

func (m *MIDIOut) NoteOff(note uint8) error {
	if !m.active[note] {
		return nil
	}
	delete(m.active, note)
	return m.send(gomidi.NoteOff(m.channel, note))
}

// AllNotesOff releases every tracked note, then sends CC 123 for
// anything the tracking missed.
func (m *MIDIOut) AllNotesOff() error {
	var firstErr error
	for note := range m.active {
		if err := m.send(gomidi.NoteOff(m.channel, note)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.active = make(map[uint8]bool)
	if err := m.send(gomidi.ControlChange(m.channel, ccAllNotesOff, 0)); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (m *MIDIOut) SetProgram(program uint8) error {
	if program > 127 {
		return fmt.Errorf("audio: program %d out of range", program)
	}
	return m.send(gomidi.ProgramChange(m.channel, program))
}

func (m *MIDIOut) SetVolume(v float64) error {
	v = math.Min(math.Max(v, 0), 1)
	return m.send(gomidi.ControlChange(m.channel, ccChannelVolume, uint8(math.Round(v*127))))
}

func (m *MIDIOut) Name() string { return "midi:" + m.name }

// Close silences the device; the shared driver stays open for other
// connections and is torn down by the process exit path.
func (m *MIDIOut) Close() error { return m.AllNotesOff() }
