package notes

import (
	"testing"
	"time"
)

func TestHoldDurationEndpoints(t *testing.T) {
	if d, inf := HoldDuration(0); d != 0 || inf {
		t.Errorf("0%% = (%v, %v), want (0, false)", d, inf)
	}
	if d, inf := HoldDuration(-5); d != 0 || inf {
		t.Errorf("negative = (%v, %v), want (0, false)", d, inf)
	}
	if d, inf := HoldDuration(100); d != 0 || !inf {
		t.Errorf("100%% = (%v, %v), want indefinite", d, inf)
	}
	if d, inf := HoldDuration(1); d != 103*time.Millisecond || inf {
		t.Errorf("1%% = (%v, %v), want 103ms", d, inf)
	}
	if d, inf := HoldDuration(99); d != 2400*time.Millisecond || inf {
		t.Errorf("99%% = (%v, %v), want 2.4s", d, inf)
	}
}

func TestHoldDurationMonotonic(t *testing.T) {
	prev, _ := HoldDuration(1)
	for p := 2; p < 100; p++ {
		d, inf := HoldDuration(p)
		if inf {
			t.Fatalf("%d%% reported indefinite", p)
		}
		if d < prev {
			t.Fatalf("%d%% = %v, shorter than %d%% = %v", p, d, p-1, prev)
		}
		prev = d
	}
}

func TestGateSnapsWithoutFade(t *testing.T) {
	g := NewGate(40 * time.Millisecond)
	if g.Level() != 100 {
		t.Fatalf("fresh gate at %v, want 100", g.Level())
	}
	g.SetTemporarilyOff(true)
	if g.Level() != 0 {
		t.Fatalf("fade 0 did not snap down, level %v", g.Level())
	}
	if got := g.Effective(80); got != 0 {
		t.Fatalf("effective = %d while suppressed, want 0", got)
	}
	g.SetTemporarilyOff(false)
	if g.Level() != 100 {
		t.Fatalf("fade 0 did not snap up, level %v", g.Level())
	}
}

func TestGateRampsWithFade(t *testing.T) {
	g := NewGate(40 * time.Millisecond)
	g.SetFade(50) // 400ms ramp, 10 points per 40ms tick

	g.SetTemporarilyOff(true)
	if g.Level() != 100 {
		t.Fatal("fading gate moved before its first tick")
	}
	g.Tick()
	if g.Level() != 90 {
		t.Fatalf("after one tick level = %v, want 90", g.Level())
	}
	if got := g.Effective(50); got != 45 {
		t.Fatalf("effective mid-ramp = %d, want 45", got)
	}
	for i := 0; i < 20; i++ {
		g.Tick()
	}
	if g.Level() != 0 {
		t.Fatalf("ramp down never finished, level %v", g.Level())
	}

	g.SetTemporarilyOff(false)
	ticks := 0
	for g.Level() < 100 {
		g.Tick()
		if ticks++; ticks > 100 {
			t.Fatal("ramp up never finished")
		}
	}
	if ticks != 10 {
		t.Fatalf("ramp up took %d ticks, want 10", ticks)
	}
}

func TestGateMinimumStep(t *testing.T) {
	g := NewGate(0) // degenerate tick period forces the step floor
	g.SetFade(100)
	g.SetTemporarilyOff(true)
	g.Tick()
	if got := g.Level(); got != 99.9 {
		t.Fatalf("level after clamped step = %v, want 99.9", got)
	}
}

func TestGateEffectiveRounding(t *testing.T) {
	g := NewGate(40 * time.Millisecond)
	if got := g.Effective(67); got != 67 {
		t.Fatalf("open gate effective = %d, want 67", got)
	}
	g.level = 50
	if got := g.Effective(67); got != 34 {
		t.Fatalf("half gate effective = %d, want 34", got)
	}
	g.level = 100
	if got := g.Effective(250); got != 100 {
		t.Fatalf("effective must clamp to 100, got %d", got)
	}
}
