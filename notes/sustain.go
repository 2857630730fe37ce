// Package notes owns the playing state of the piano: which notes
// sound, on whose behalf, and for how long after their sources let go.
package notes

import (
	"math"
	"time"
)

// Sustain tail shaping. Percent 1..99 sweeps the tail between the
// floor and the floor plus the span; 100 holds indefinitely.
const (
	holdFloorMs = 80
	holdSpanMs  = 2320
)

// HoldDuration converts an effective sustain percent into a tail
// length. The second result reports an indefinite hold.
func HoldDuration(percent int) (time.Duration, bool) {
	if percent <= 0 {
		return 0, false
	}
	if percent >= 100 {
		return 0, true
	}
	ms := math.Round(holdFloorMs + float64(percent)/99*holdSpanMs)
	return time.Duration(ms) * time.Millisecond, false
}

// Fade ramp shaping. Fade 1..100 sweeps the ramp duration between the
// floor and the floor plus the span.
const (
	fadeFloorMs = 12
	fadeSpanMs  = 776
	minGateStep = 0.1
)

// Gate scales the configured sustain while the pedal toggles, ramping
// between full and silent so the change fades instead of snapping.
type Gate struct {
	level   float64
	tempOff bool
	fade    int
	tick    time.Duration
}

// NewGate builds a fully open gate advanced once per tick period.
func NewGate(tick time.Duration) *Gate {
	return &Gate{level: 100, tick: tick}
}

// SetFade sets the ramp length control, 0 meaning instant.
func (g *Gate) SetFade(fade int) {
	g.fade = min(max(fade, 0), 100)
}

func (g *Gate) Fade() int { return g.fade }

// SetTemporarilyOff flips the pedal suppression. With no fade the
// gate snaps to its new target at once.
func (g *Gate) SetTemporarilyOff(off bool) {
	g.tempOff = off
	if g.fade <= 0 {
		g.level = g.target()
	}
}

func (g *Gate) TemporarilyOff() bool { return g.tempOff }

func (g *Gate) target() float64 {
	if g.tempOff {
		return 0
	}
	return 100
}

// Tick advances the gate one step toward its target.
func (g *Gate) Tick() {
	target := g.target()
	if g.level == target {
		return
	}
	if g.fade <= 0 {
		g.level = target
		return
	}
	rampMs := fadeFloorMs + float64(g.fade)/100*fadeSpanMs
	step := float64(g.tick.Milliseconds()) / rampMs * 100
	if step < minGateStep {
		step = minGateStep
	}
	if g.level < target {
		g.level = math.Min(g.level+step, target)
	} else {
		g.level = math.Max(g.level-step, target)
	}
}

// Level reports the current gate percent, 0..100.
func (g *Gate) Level() float64 { return g.level }

// Effective scales a configured sustain percent through the gate.
func (g *Gate) Effective(configured int) int {
	eff := int(math.Round(float64(configured) * g.level / 100))
	return min(max(eff, 0), 100)
}
