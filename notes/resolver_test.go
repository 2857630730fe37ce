package notes

import (
	"testing"

	"openpiano/keymap"
)

func testResolver() (*Resolver, *fakeAudio) {
	audio := &fakeAudio{}
	engine := NewEngine(audio)
	r := NewResolver(engine)
	r.SetMapping(keymap.BuildReverse(keymap.Mapping{
		60:  keymap.Key("t"),
		61:  keymap.Shifted("t"),
		62:  keymap.Key("y"),
		72:  keymap.Key("q"),
		84:  keymap.Key("q"), // chord: one binding, two notes
		108: keymap.Ctrl("j"),
	}))
	return r, audio
}

func TestPressUnmappedBinding(t *testing.T) {
	r, audio := testResolver()
	if r.Press(keymap.Key("z"), nil, 100, 0) {
		t.Fatal("unmapped binding pressed")
	}
	if len(audio.ons) != 0 {
		t.Fatal("unmapped binding made sound")
	}
}

func TestAutoRepeatIsAbsorbed(t *testing.T) {
	r, audio := testResolver()
	if !r.Press(keymap.Key("t"), nil, 100, 0) {
		t.Fatal("first press failed")
	}
	for i := 0; i < 5; i++ {
		if r.Press(keymap.Key("t"), nil, 100, 0) {
			t.Fatal("repeat press reported as fresh")
		}
	}
	if len(audio.ons) != 1 {
		t.Fatalf("ons = %d, want 1", len(audio.ons))
	}
	if audio.ons[0] != (audioCall{60, 100}) {
		t.Fatalf("on = %+v, want note 60 vel 100", audio.ons[0])
	}
}

func TestChordBindingSoundsEveryNote(t *testing.T) {
	r, audio := testResolver()
	if !r.Press(keymap.Key("q"), nil, 90, 0) {
		t.Fatal("chord press failed")
	}
	if len(audio.ons) != 2 {
		t.Fatalf("ons = %d, want 2", len(audio.ons))
	}
	if !r.Release(nil, keymap.Key("q"), 0, false) {
		t.Fatal("chord release failed")
	}
	if len(audio.offs) != 2 {
		t.Fatalf("offs = %d, want 2", len(audio.offs))
	}
}

func TestReleaseByKeycode(t *testing.T) {
	r, audio := testResolver()
	r.Press(keymap.Key("t"), []uint32{0x14}, 100, 0)

	// No hint at all: only the keycode identifies the key.
	if !r.Release([]uint32{0x14}, keymap.Binding{}, 0, false) {
		t.Fatal("keycode release failed")
	}
	if len(audio.offs) != 1 || audio.offs[0] != 60 {
		t.Fatalf("offs = %v, want [60]", audio.offs)
	}
	if r.Down(keymap.Key("t")) {
		t.Fatal("binding still down after release")
	}
}

func TestReleaseFallsBackToModifierCandidates(t *testing.T) {
	r, audio := testResolver()

	// Shift lifted before the letter: the release hint arrives plain.
	r.Press(keymap.Shifted("t"), nil, 100, 0)
	if !r.Release(nil, keymap.Key("t"), 0, false) {
		t.Fatal("candidate release failed")
	}
	if len(audio.offs) != 1 || audio.offs[0] != 61 {
		t.Fatalf("offs = %v, want [61]", audio.offs)
	}
}

func TestReleasePrefersExactHint(t *testing.T) {
	r, audio := testResolver()
	r.Press(keymap.Key("t"), nil, 100, 0)
	r.Press(keymap.Shifted("t"), nil, 100, 0)

	if !r.Release(nil, keymap.Key("t"), 0, false) {
		t.Fatal("release failed")
	}
	if len(audio.offs) != 1 || audio.offs[0] != 60 {
		t.Fatalf("offs = %v, want the exact match [60]", audio.offs)
	}
	if !r.Down(keymap.Shifted("t")) {
		t.Fatal("shifted binding released instead of the exact match")
	}
}

func TestKeycodeEviction(t *testing.T) {
	r, audio := testResolver()
	r.Press(keymap.Key("t"), []uint32{0x14}, 100, 0)
	r.Press(keymap.Key("y"), []uint32{0x14}, 100, 0) // same position reclaimed

	if !r.Release([]uint32{0x14}, keymap.Binding{}, 0, false) {
		t.Fatal("release failed")
	}
	if len(audio.offs) != 1 || audio.offs[0] != 62 {
		t.Fatalf("offs = %v, want the newest claim [62]", audio.offs)
	}
	if !r.Down(keymap.Key("t")) {
		t.Fatal("evicted binding lost its active state")
	}
	if !r.Release(nil, keymap.Key("t"), 0, false) {
		t.Fatal("evicted binding could not release by hint")
	}
}

func TestPressTransposes(t *testing.T) {
	r, audio := testResolver()
	r.Press(keymap.Key("t"), nil, 100, 12)
	if len(audio.ons) != 1 || audio.ons[0].note != 72 {
		t.Fatalf("ons = %+v, want note 72", audio.ons)
	}
	r.Release(nil, keymap.Key("t"), 0, false)
	if len(audio.offs) != 1 || audio.offs[0] != 72 {
		t.Fatalf("offs = %v, want the transposed note", audio.offs)
	}
}

func TestTransposeBeyondRangeSkipsQuietly(t *testing.T) {
	r, audio := testResolver()
	if !r.Press(keymap.Ctrl("j"), nil, 100, 21) { // 108+21 leaves MIDI range
		t.Fatal("press of a mapped binding must still count as handled")
	}
	if len(audio.ons) != 0 {
		t.Fatalf("ons = %d, want 0", len(audio.ons))
	}
	if !r.Down(keymap.Ctrl("j")) {
		t.Fatal("binding must read as down for the repeat guard")
	}
	if !r.Release(nil, keymap.Ctrl("j"), 0, false) {
		t.Fatal("release failed")
	}
}

func TestReleaseWithNothingDown(t *testing.T) {
	r, _ := testResolver()
	if r.Release([]uint32{0x14}, keymap.Key("t"), 0, false) {
		t.Fatal("release succeeded with nothing held")
	}
}

func TestResetClearsHeldState(t *testing.T) {
	r, audio := testResolver()
	r.Press(keymap.Key("t"), []uint32{0x14}, 100, 0)
	r.Reset()

	if r.Release([]uint32{0x14}, keymap.Key("t"), 0, false) {
		t.Fatal("release matched across a reset")
	}
	if !r.Press(keymap.Key("t"), nil, 100, 0) {
		t.Fatal("press swallowed by stale state after reset")
	}
	if len(audio.ons) != 2 {
		t.Fatalf("ons = %d, want 2", len(audio.ons))
	}
}
