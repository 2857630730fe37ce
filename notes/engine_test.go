package notes

import (
	"errors"
	"testing"
	"time"
)

type audioCall struct {
	note, velocity uint8
}

type fakeAudio struct {
	ons     []audioCall
	offs    []uint8
	allOffs int
	err     error
}

func (f *fakeAudio) NoteOn(note, velocity uint8) error {
	f.ons = append(f.ons, audioCall{note, velocity})
	return f.err
}

func (f *fakeAudio) NoteOff(note uint8) error {
	f.offs = append(f.offs, note)
	return f.err
}

func (f *fakeAudio) AllNotesOff() error {
	f.allOffs++
	return f.err
}

type fakeSurface struct {
	pressed map[uint8]bool
}

func (f *fakeSurface) SetPressed(note uint8, pressed bool) {
	if f.pressed == nil {
		f.pressed = make(map[uint8]bool)
	}
	f.pressed[note] = pressed
}

type fakeRecorder struct {
	ons, offs []uint8
}

func (f *fakeRecorder) NoteOn(note, velocity uint8) { f.ons = append(f.ons, note) }
func (f *fakeRecorder) NoteOff(note uint8)          { f.offs = append(f.offs, note) }

// testEngine wires an engine to fakes and a hand-cranked clock.
func testEngine() (*Engine, *fakeAudio, *fakeSurface, *fakeRecorder, *time.Time) {
	audio := &fakeAudio{}
	surface := &fakeSurface{}
	rec := &fakeRecorder{}
	e := NewEngine(audio)
	e.SetSurface(surface)
	e.SetRecorder(rec)
	cur := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return cur }
	return e, audio, surface, rec, &cur
}

func TestOnlyFirstSourceTriggersAudio(t *testing.T) {
	e, audio, surface, rec, _ := testEngine()

	e.Activate(60, "kb:a", 100)
	e.Activate(60, "mouse", 100)
	if len(audio.ons) != 1 {
		t.Fatalf("audio ons = %d, want 1", len(audio.ons))
	}
	if !surface.pressed[60] {
		t.Fatal("surface not marked pressed")
	}
	if e.HeldCount() != 1 {
		t.Fatalf("held = %d, want 1", e.HeldCount())
	}

	e.ReleaseSource(60, "kb:a", 0, false)
	if len(audio.offs) != 0 {
		t.Fatal("note stopped while a source still held it")
	}
	e.ReleaseSource(60, "mouse", 0, false)
	if len(audio.offs) != 1 || audio.offs[0] != 60 {
		t.Fatalf("offs = %v, want [60]", audio.offs)
	}
	if surface.pressed[60] {
		t.Fatal("surface still pressed after stop")
	}
	if len(rec.ons) != 1 || len(rec.offs) != 1 {
		t.Fatalf("recorder saw %d ons, %d offs, want 1 each", len(rec.ons), len(rec.offs))
	}
}

func TestDuplicateSourceIsNoop(t *testing.T) {
	e, audio, _, _, _ := testEngine()
	e.Activate(60, "midi:60", 100)
	e.Activate(60, "midi:60", 100)
	if len(audio.ons) != 1 {
		t.Fatalf("ons = %d, want 1", len(audio.ons))
	}
	e.ReleaseSource(60, "midi:60", 0, false)
	if len(audio.offs) != 1 {
		t.Fatalf("offs = %d, want 1", len(audio.offs))
	}
}

func TestReleaseOfUnknownSourceIsBenign(t *testing.T) {
	e, audio, _, _, _ := testEngine()
	e.ReleaseSource(60, "ghost", 50, false)
	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "ghost", 50, false)
	if len(audio.offs) != 0 || e.HeldCount() != 1 {
		t.Fatal("unknown source release disturbed state")
	}
}

func TestSustainTailExpiresOnTick(t *testing.T) {
	e, audio, surface, rec, cur := testEngine()

	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 50, false) // 1252ms tail
	if len(audio.offs) != 0 {
		t.Fatal("sustained note stopped immediately")
	}
	if surface.pressed[60] {
		t.Fatal("sustained note still shows pressed")
	}
	if len(rec.offs) != 0 {
		t.Fatal("recorder heard the off before the sound stopped")
	}
	if e.SustainedCount() != 1 || e.HeldCount() != 0 {
		t.Fatalf("counts = held %d sustained %d", e.HeldCount(), e.SustainedCount())
	}

	*cur = cur.Add(1251 * time.Millisecond)
	if n := e.Tick(); n != 0 {
		t.Fatalf("tail expired %v early", time.Millisecond)
	}
	*cur = cur.Add(2 * time.Millisecond)
	if n := e.Tick(); n != 1 {
		t.Fatalf("tick stopped %d notes, want 1", n)
	}
	if len(audio.offs) != 1 || len(rec.offs) != 1 {
		t.Fatalf("offs audio=%d rec=%d, want 1 each", len(audio.offs), len(rec.offs))
	}
}

func TestIndefiniteHold(t *testing.T) {
	e, audio, _, _, cur := testEngine()

	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 100, false)
	*cur = cur.Add(time.Hour)
	if n := e.Tick(); n != 0 {
		t.Fatalf("indefinite hold expired, %d stops", n)
	}
	e.ReleaseAllSustained()
	if len(audio.offs) != 1 {
		t.Fatalf("offs = %d after ReleaseAllSustained, want 1", len(audio.offs))
	}
}

func TestSuppressedReleaseSkipsTail(t *testing.T) {
	e, audio, _, _, _ := testEngine()
	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 100, true)
	if len(audio.offs) != 1 || e.SustainedCount() != 0 {
		t.Fatal("suppressed release still grew a tail")
	}
}

func TestReactivationCancelsTailAndRetriggers(t *testing.T) {
	e, audio, _, _, _ := testEngine()

	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 100, false)
	if e.SustainedCount() != 1 {
		t.Fatal("note not sustained")
	}
	e.Activate(60, "kb:a", 90)
	if e.SustainedCount() != 0 {
		t.Fatal("tail survived reactivation")
	}
	if len(audio.ons) != 2 {
		t.Fatalf("ons = %d, want retrigger", len(audio.ons))
	}
	e.ReleaseSource(60, "kb:a", 0, false)
	if len(audio.offs) != 1 {
		t.Fatalf("offs = %d, want 1", len(audio.offs))
	}
}

func TestRefreshDeadlinesRetimesTails(t *testing.T) {
	e, audio, _, _, cur := testEngine()

	e.Activate(60, "kb:a", 100)
	e.Activate(62, "kb:b", 100)
	e.ReleaseSource(60, "kb:a", 99, false)
	e.ReleaseSource(62, "kb:b", 99, false) // 2400ms tails

	e.RefreshDeadlines(1) // 103ms from now
	*cur = cur.Add(104 * time.Millisecond)
	if n := e.Tick(); n != 2 {
		t.Fatalf("tick stopped %d notes after refresh, want 2", n)
	}
	if len(audio.offs) != 2 {
		t.Fatalf("offs = %d, want 2", len(audio.offs))
	}
}

func TestRefreshToZeroCutsTailsNow(t *testing.T) {
	e, audio, _, _, _ := testEngine()
	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 100, false)
	e.RefreshDeadlines(0)
	if len(audio.offs) != 1 || e.SustainedCount() != 0 {
		t.Fatal("refresh to zero left the tail alive")
	}
}

func TestStopAllSilencesEverythingOnce(t *testing.T) {
	e, audio, surface, rec, _ := testEngine()

	e.Activate(60, "kb:a", 100)
	e.Activate(62, "kb:b", 100)
	e.ReleaseSource(62, "kb:b", 100, false) // leave 62 sustained

	e.StopAll()
	if audio.allOffs != 1 {
		t.Fatalf("allOffs = %d, want exactly 1", audio.allOffs)
	}
	if len(audio.offs) != 0 {
		t.Fatalf("StopAll issued %d per-note offs on top of all-notes-off", len(audio.offs))
	}
	if e.HeldCount() != 0 || e.SustainedCount() != 0 {
		t.Fatal("state survived StopAll")
	}
	if surface.pressed[60] || surface.pressed[62] {
		t.Fatal("surface still pressed after StopAll")
	}
	if len(rec.offs) != 2 {
		t.Fatalf("recorder offs = %d, want 2", len(rec.offs))
	}

	// Fresh state must accept new notes.
	e.Activate(60, "kb:a", 100)
	if len(audio.ons) != 3 {
		t.Fatalf("ons = %d after restart, want 3", len(audio.ons))
	}
}

func TestAudioErrorsDoNotDisturbLifecycle(t *testing.T) {
	e, audio, _, rec, _ := testEngine()
	audio.err = errors.New("backend gone")

	e.Activate(60, "kb:a", 100)
	e.ReleaseSource(60, "kb:a", 0, false)
	if len(rec.ons) != 1 || len(rec.offs) != 1 {
		t.Fatal("recorder missed events while audio failed")
	}
	if e.HeldCount() != 0 || e.SustainedCount() != 0 {
		t.Fatal("state desynced while audio failed")
	}
}
