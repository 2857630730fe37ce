package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const synthSampleRate = beep.SampleRate(44100)

// Envelope slopes per sample: a fast strike, a short fade on release.
const (
	attackPerSample  = 0.1
	releasePerSample = 0.001
)

type waveform struct {
	name string
	wave func(phase float64) float64
}

var waveforms = []waveform{
	{"piano", func(p float64) float64 {
		a := math.Sin(2 * math.Pi * p)
		a += 0.5 * math.Sin(4*math.Pi*p)
		a += 0.2 * math.Sin(6*math.Pi*p)
		return a * 0.15
	}},
	{"square", func(p float64) float64 {
		if p < 0.5 {
			return 0.1
		}
		return -0.1
	}},
	{"saw", func(p float64) float64 {
		return (2*p - 1) * 0.1
	}},
	{"triangle", func(p float64) float64 {
		return (4*math.Abs(p-0.5) - 1) * 0.1
	}},
}

// voice is one sounding note. It streams on the speaker goroutine;
// all fields are touched under the speaker lock only.
type voice struct {
	freq      float64
	phase     float64
	wave      func(float64) float64
	gain      *float64
	vel       float64
	env       float64
	releasing bool
	done      bool
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	if v.done {
		return 0, false
	}
	for i := range samples {
		if v.releasing {
			v.env -= releasePerSample
			if v.env <= 0 {
				v.done = true
				for j := i; j < len(samples); j++ {
					samples[j] = [2]float64{}
				}
				return len(samples), true
			}
		} else if v.env < 1 {
			v.env = math.Min(v.env+attackPerSample, 1)
		}
		s := v.wave(v.phase) * v.env * v.vel * *v.gain
		samples[i][0] = s
		samples[i][1] = s
		v.phase += v.freq / float64(synthSampleRate)
		if v.phase >= 1 {
			v.phase -= 1
		}
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }

// Synth is the built-in synthesizer for machines without a MIDI
// synth. Programs select the waveform.
type Synth struct {
	mixer  *beep.Mixer
	voices map[uint8]*voice
	gain   float64
	wave   int
}

func NewSynth() (*Synth, error) {
	if err := speaker.Init(synthSampleRate, synthSampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("audio: speaker init: %w", err)
	}
	s := &Synth{
		mixer:  &beep.Mixer{},
		voices: make(map[uint8]*voice),
		gain:   0.6,
	}
	speaker.Play(s.mixer)
	return s, nil
}

func (s *Synth) NoteOn(note, velocity uint8) error {
	speaker.Lock()
	defer speaker.Unlock()
	if old, ok := s.voices[note]; ok {
		old.releasing = true
	}
	v := &voice{
		freq: noteFreq(note),
		wave: waveforms[s.wave].wave,
		gain: &s.gain,
		vel:  float64(velocity) / 127,
	}
	s.voices[note] = v
	s.mixer.Add(v)
	return nil
}

func (s *Synth) NoteOff(note uint8) error {
	speaker.Lock()
	defer speaker.Unlock()
	if v, ok := s.voices[note]; ok {
		v.releasing = true
		delete(s.voices, note)
	}
	return nil
}

func (s *Synth) AllNotesOff() error {
	speaker.Lock()
	defer speaker.Unlock()
	for note, v := range s.voices {
		v.releasing = true
		delete(s.voices, note)
	}
	return nil
}

func (s *Synth) SetProgram(program uint8) error {
	if int(program) >= len(waveforms) {
		return fmt.Errorf("audio: no such instrument %d", program)
	}
	speaker.Lock()
	s.wave = int(program)
	speaker.Unlock()
	return nil
}

func (s *Synth) SetVolume(v float64) error {
	speaker.Lock()
	s.gain = math.Min(math.Max(v, 0), 1)
	speaker.Unlock()
	return nil
}

func (s *Synth) Name() string {
	speaker.Lock()
	defer speaker.Unlock()
	return "synth:" + waveforms[s.wave].name
}

// Close fades the voices out; the speaker stays open so a later
// backend switch can come back without re-initializing the device.
func (s *Synth) Close() error {
	return s.AllNotesOff()
}

// Programs reports how many built-in instruments exist.
func Programs() int { return len(waveforms) }

func noteFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}
