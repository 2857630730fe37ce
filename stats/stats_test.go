package stats

import (
	"testing"
	"time"
)

func TestKPSWindow(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tr.KeyPressed(t0)
	tr.KeyPressed(t0.Add(500 * time.Millisecond))
	tr.KeyPressed(t0.Add(900 * time.Millisecond))
	if got := tr.KPS(); got != 3 {
		t.Fatalf("KPS = %v, want 3", got)
	}

	tr.Tick(t0.Add(time.Second))
	if got := tr.KPS(); got != 2 {
		t.Fatalf("KPS after window edge = %v, want 2", got)
	}

	tr.Tick(t0.Add(3 * time.Second))
	if got := tr.KPS(); got != 0 {
		t.Fatalf("KPS after idle = %v, want 0", got)
	}
	if tr.Total() != 3 {
		t.Fatalf("total = %d, want 3", tr.Total())
	}
}

func TestPolyphonyPeakOnlyRises(t *testing.T) {
	tr := NewTracker()
	tr.Observe(2, 2)
	tr.Observe(5, 8)
	tr.Observe(1, 3)
	if tr.Held() != 1 {
		t.Fatalf("held = %d, want 1", tr.Held())
	}
	if tr.Peak() != 8 {
		t.Fatalf("peak = %d, want 8", tr.Peak())
	}
}

func TestFormats(t *testing.T) {
	cases := []struct{ got, want string }{
		{FormatVolume(0.6), "060%"},
		{FormatVolume(1.0), "100%"},
		{FormatSustain(0), "OFF   0%"},
		{FormatSustain(45), "ON   45%"},
		{FormatSustain(100), "ON  100%"},
		{FormatKPS(4.2), "04.2"},
		{FormatKPS(12.0), "12.0"},
		{FormatCount(7), "007"},
		{FormatTranspose(0), "+00"},
		{FormatTranspose(-3), "-03"},
		{FormatTranspose(21), "+21"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
