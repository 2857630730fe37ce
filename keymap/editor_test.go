package keymap

import "testing"

func TestEditSessionLifecycle(t *testing.T) {
	committed := DefaultMapping(Mode61)
	var e EditSession

	if _, ok := e.Selected(); ok {
		t.Fatal("inactive session reports a selection")
	}
	if e.Assign(Key("z")) != AssignNoSelection {
		t.Fatal("assign before Begin must report no selection")
	}

	e.Begin(committed)
	if !e.Active() {
		t.Fatal("session not active after Begin")
	}
	if e.Select(10) {
		t.Fatal("selected a note outside the table")
	}
	if !e.Select(60) {
		t.Fatal("could not select middle C")
	}

	rmb := MouseButton("right", false, false, false)
	if got := e.Assign(rmb); got != AssignApplied {
		t.Fatalf("assign = %v, want applied", got)
	}
	if got := e.Assign(rmb); got != AssignUnchanged {
		t.Fatalf("re-assign = %v, want unchanged", got)
	}
	if e.UndoDepth() != 1 {
		t.Fatalf("undo depth = %d, want 1", e.UndoDepth())
	}

	// Binding a chord another note already owns is allowed.
	e.Select(62)
	if got := e.Assign(Key("m")); got != AssignApplied {
		t.Fatalf("duplicate assign = %v, want applied", got)
	}

	note, ok := e.Undo()
	if !ok || note != 62 {
		t.Fatalf("undo = (%d, %v), want (62, true)", note, ok)
	}
	if b, _ := e.Binding(62); b != committed[62] {
		t.Fatalf("undo did not restore note 62: %+v", b)
	}
	if sel, _ := e.Selected(); sel != 62 {
		t.Fatalf("undo did not reselect its note, selected %d", sel)
	}

	staged := e.Commit()
	if e.Active() {
		t.Fatal("session still active after Commit")
	}
	if staged[60] != rmb {
		t.Fatalf("committed table lost the edit: %+v", staged[60])
	}
	if committed[60] != Key("t") {
		t.Fatal("staging leaked into the committed table")
	}
}

func TestEditSessionDiscard(t *testing.T) {
	var e EditSession
	e.Begin(DefaultMapping(Mode61))
	e.Select(60)
	e.Assign(Key("z"))
	e.Discard()
	if e.Active() {
		t.Fatal("session still active after Discard")
	}
	if _, ok := e.Undo(); ok {
		t.Fatal("undo after Discard must fail")
	}
}
