package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"openpiano/debug"
)

// Input streams note events from one MIDI input port. The driver
// callback marshals onto a buffered channel so piano state stays on
// the update loop; when the channel is full the event drops rather
// than stall the driver.
type Input struct {
	name   string
	stop   func()
	events chan NoteEvent
}

// OpenInput attaches to the named port, or the first available port
// when portName is empty.
func OpenInput(portName string) (*Input, error) {
	port, err := findIn(portName)
	if err != nil {
		return nil, err
	}
	in := &Input{
		name:   port.String(),
		events: make(chan NoteEvent, 64),
	}
	stop, err := gomidi.ListenTo(port, in.handle)
	if err != nil {
		return nil, fmt.Errorf("midi: listen on %q: %w", port.String(), err)
	}
	in.stop = stop
	debug.Log("midi", "input open", "port", in.name)
	return in, nil
}

func (in *Input) handle(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		in.push(NoteEvent{Note: note, Velocity: velocity, On: velocity > 0})
	case msg.GetNoteOff(&channel, &note, &velocity):
		in.push(NoteEvent{Note: note, On: false})
	}
}

func (in *Input) push(ev NoteEvent) {
	select {
	case in.events <- ev:
	default:
	}
}

// Events is the stream consumed by the UI loop. It closes when the
// input closes.
func (in *Input) Events() <-chan NoteEvent { return in.events }

func (in *Input) Name() string { return in.name }

// Close detaches from the port and closes the event stream, waking
// any pending listener.
func (in *Input) Close() {
	if in.stop != nil {
		in.stop()
		in.stop = nil
		close(in.events)
		debug.Log("midi", "input closed", "port", in.name)
	}
}
