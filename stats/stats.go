// Package stats tracks live playing statistics for the status bar.
package stats

import (
	"fmt"
	"math"
	"time"
)

const kpsWindow = time.Second

// Tracker accumulates playing statistics. Like the rest of the piano
// state it lives on the update loop and is not safe for concurrent
// use.
type Tracker struct {
	presses []time.Time
	held    int
	peak    int
	total   int
}

func NewTracker() *Tracker { return &Tracker{} }

// KeyPressed records one fresh note-starting press.
func (t *Tracker) KeyPressed(now time.Time) {
	t.total++
	t.presses = append(t.presses, now)
	t.trim(now)
}

// Observe updates the held gauge and the polyphony peak after an
// engine change.
func (t *Tracker) Observe(held, sounding int) {
	t.held = held
	if sounding > t.peak {
		t.peak = sounding
	}
}

// Tick expires presses that left the rate window.
func (t *Tracker) Tick(now time.Time) {
	t.trim(now)
}

func (t *Tracker) trim(now time.Time) {
	cut := now.Add(-kpsWindow)
	i := 0
	for i < len(t.presses) && !t.presses[i].After(cut) {
		i++
	}
	t.presses = t.presses[i:]
}

// KPS is key presses over the last second.
func (t *Tracker) KPS() float64 { return float64(len(t.presses)) }

func (t *Tracker) Held() int  { return t.held }
func (t *Tracker) Peak() int  { return t.peak }
func (t *Tracker) Total() int { return t.total }

// Status bar number formats. Fixed widths keep the bar from dancing
// as values change.

func FormatVolume(v float64) string {
	return fmt.Sprintf("%03d%%", int(math.Round(v*100)))
}

func FormatSustain(effective int) string {
	state := "ON"
	if effective <= 0 {
		state = "OFF"
	}
	return fmt.Sprintf("%-3s %3d%%", state, effective)
}

func FormatKPS(kps float64) string {
	return fmt.Sprintf("%04.1f", kps)
}

func FormatCount(n int) string {
	return fmt.Sprintf("%03d", n)
}

func FormatTranspose(semitones int) string {
	return fmt.Sprintf("%+03d", semitones)
}
