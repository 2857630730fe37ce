// Package record captures played notes and writes them out as
// standard MIDI files.
package record

import (
	"fmt"
	"sort"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"openpiano/debug"
)

// Event is one captured note edge, stamped in seconds from the start
// of the take.
type Event struct {
	At       float64
	Note     uint8
	Velocity uint8
	On       bool
}

// Recorder captures notes while armed. It hears exactly what the
// audio backend plays: ons at the first source, offs when the sound
// actually stops, sustain tails included.
type Recorder struct {
	active bool
	start  time.Time
	events []Event
	now    func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start arms the recorder, dropping any previous take.
func (r *Recorder) Start() {
	r.active = true
	r.start = r.now()
	r.events = nil
	debug.Log("record", "armed")
}

// Stop disarms, keeping the take around for saving.
func (r *Recorder) Stop() {
	r.active = false
	debug.Log("record", "stopped", "events", len(r.events))
}

func (r *Recorder) Active() bool { return r.active }

// HasTake reports whether there is anything to save.
func (r *Recorder) HasTake() bool { return len(r.events) > 0 }

func (r *Recorder) NoteOn(note, velocity uint8) {
	if !r.active {
		return
	}
	r.events = append(r.events, Event{
		At:       r.now().Sub(r.start).Seconds(),
		Note:     note,
		Velocity: velocity,
		On:       true,
	})
}

func (r *Recorder) NoteOff(note uint8) {
	if !r.active {
		return
	}
	r.events = append(r.events, Event{
		At:   r.now().Sub(r.start).Seconds(),
		Note: note,
	})
}

// Events returns a copy of the take.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

const (
	smfTicksPerQuarter = 960
	smfTempoBPM        = 120
)

// WriteSMF renders the take as a single-track type-0 MIDI file on a
// fixed 120 BPM grid.
func (r *Recorder) WriteSMF(path string) error {
	if !r.HasTake() {
		return fmt.Errorf("record: nothing recorded")
	}
	events := r.Events()
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	ticks := smf.MetricTicks(smfTicksPerQuarter)
	var track smf.Track
	track.Add(0, smf.MetaTempo(smfTempoBPM))

	prev := 0.0
	for _, ev := range events {
		delta := ticks.Ticks(smfTempoBPM, time.Duration((ev.At-prev)*float64(time.Second)))
		if ev.On {
			track.Add(delta, gomidi.NoteOn(0, ev.Note, ev.Velocity))
		} else {
			track.Add(delta, gomidi.NoteOff(0, ev.Note))
		}
		prev = ev.At
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(track); err != nil {
		return fmt.Errorf("record: add track: %w", err)
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("record: write %s: %w", path, err)
	}
	debug.Log("record", "saved", "path", path, "events", len(events))
	return nil
}
