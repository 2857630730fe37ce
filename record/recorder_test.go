package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clockAt(cur *time.Time) func() time.Time {
	return func() time.Time { return *cur }
}

func TestRecorderIsInertUntilArmed(t *testing.T) {
	r := NewRecorder()
	r.NoteOn(60, 100)
	r.NoteOff(60)
	if r.HasTake() {
		t.Fatal("disarmed recorder captured events")
	}
}

func TestRecorderStampsRelativeSeconds(t *testing.T) {
	cur := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRecorder()
	r.now = clockAt(&cur)

	r.Start()
	r.NoteOn(60, 100)
	cur = cur.Add(500 * time.Millisecond)
	r.NoteOn(64, 90)
	cur = cur.Add(1500 * time.Millisecond)
	r.NoteOff(60)
	r.Stop()

	// Events after Stop must not land in the take.
	r.NoteOff(64)

	events := r.Events()
	if len(events) != 3 {
		t.Fatalf("captured %d events, want 3", len(events))
	}
	wantAt := []float64{0, 0.5, 2.0}
	for i, ev := range events {
		if ev.At != wantAt[i] {
			t.Errorf("event %d at %v, want %v", i, ev.At, wantAt[i])
		}
	}
	if !events[0].On || events[0].Velocity != 100 {
		t.Errorf("first event = %+v, want on at velocity 100", events[0])
	}
	if events[2].On {
		t.Error("third event should be an off")
	}
}

func TestRestartDropsOldTake(t *testing.T) {
	r := NewRecorder()
	r.Start()
	r.NoteOn(60, 100)
	r.Stop()
	r.Start()
	if r.HasTake() {
		t.Fatal("new take started with old events")
	}
}

func TestWriteSMFRejectsEmptyTake(t *testing.T) {
	r := NewRecorder()
	if err := r.WriteSMF(filepath.Join(t.TempDir(), "empty.mid")); err == nil {
		t.Fatal("empty take written without error")
	}
}

func TestWriteSMFProducesAFile(t *testing.T) {
	cur := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRecorder()
	r.now = clockAt(&cur)

	r.Start()
	r.NoteOn(60, 100)
	cur = cur.Add(time.Second)
	r.NoteOff(60)
	r.Stop()

	path := filepath.Join(t.TempDir(), "take.mid")
	if err := r.WriteSMF(path); err != nil {
		t.Fatalf("WriteSMF: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("wrote an empty file")
	}
}

func TestStoreSaveAndList(t *testing.T) {
	dir := t.TempDir()
	cur := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)

	store := NewStore(dir)
	store.now = clockAt(&cur)

	r := NewRecorder()
	r.now = clockAt(&cur)

	r.Start()
	r.NoteOn(60, 100)
	cur = cur.Add(time.Second)
	r.NoteOff(60)
	r.Stop()

	first, err := store.Save(r)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(first) != "2026-03-01_10-00-01.mid" {
		t.Fatalf("unexpected take name %s", filepath.Base(first))
	}

	cur = cur.Add(time.Minute)
	if _, err := store.Save(r); err != nil {
		t.Fatalf("second save: %v", err)
	}

	takes, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(takes) != 2 {
		t.Fatalf("listed %d takes, want 2", len(takes))
	}
	if !takes[0].Timestamp.After(takes[1].Timestamp) {
		t.Fatal("takes not sorted newest first")
	}
}

func TestStoreListEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	takes, err := store.List()
	if err != nil || takes != nil {
		t.Fatalf("missing dir: takes=%v err=%v, want nil/nil", takes, err)
	}
}
