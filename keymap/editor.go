package keymap

// AssignResult tells the caller what an assignment attempt did.
type AssignResult int

const (
	AssignNoSelection AssignResult = iota
	AssignUnchanged
	AssignApplied
)

type undoEntry struct {
	note uint8
	prev Binding
}

// EditSession stages keybind changes against a copy of the committed
// table. Nothing touches the live table until Commit; Discard throws
// the whole session away.
type EditSession struct {
	staging  Mapping
	selected int
	undo     []undoEntry
	active   bool
}

// Begin opens a session over a copy of the committed table.
func (e *EditSession) Begin(committed Mapping) {
	e.staging = make(Mapping, len(committed))
	for note, b := range committed {
		e.staging[note] = b
	}
	e.selected = -1
	e.undo = nil
	e.active = true
}

func (e *EditSession) Active() bool { return e.active }

// Select targets a note for the next assignment. Notes outside the
// staged table are rejected.
func (e *EditSession) Select(note uint8) bool {
	if !e.active {
		return false
	}
	if _, ok := e.staging[note]; !ok {
		return false
	}
	e.selected = int(note)
	return true
}

// Selected reports the currently targeted note.
func (e *EditSession) Selected() (uint8, bool) {
	if !e.active || e.selected < 0 {
		return 0, false
	}
	return uint8(e.selected), true
}

// Assign rebinds the selected note. Assigning the binding it already
// has is a no-op and leaves the undo journal alone. Assigning a chord
// another note also uses is allowed; the duplicate shows up in
// Validate and is the player's call.
func (e *EditSession) Assign(b Binding) AssignResult {
	note, ok := e.Selected()
	if !ok {
		return AssignNoSelection
	}
	cur := e.staging[note]
	if cur == b {
		return AssignUnchanged
	}
	e.undo = append(e.undo, undoEntry{note: note, prev: cur})
	e.staging[note] = b
	return AssignApplied
}

// Undo rolls back the most recent assignment and reselects its note.
func (e *EditSession) Undo() (uint8, bool) {
	if !e.active || len(e.undo) == 0 {
		return 0, false
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.staging[last.note] = last.prev
	e.selected = int(last.note)
	return last.note, true
}

// UndoDepth reports how many assignments can still be rolled back.
func (e *EditSession) UndoDepth() int { return len(e.undo) }

// Binding reads a staged binding.
func (e *EditSession) Binding(note uint8) (Binding, bool) {
	b, ok := e.staging[note]
	return b, ok
}

// Staging exposes the staged table for rendering. Callers must treat
// it as read-only.
func (e *EditSession) Staging() Mapping { return e.staging }

// Commit ends the session and hands the staged table to the caller
// for promotion.
func (e *EditSession) Commit() Mapping {
	staged := e.staging
	e.reset()
	return staged
}

// Discard ends the session, dropping every staged change.
func (e *EditSession) Discard() { e.reset() }

func (e *EditSession) reset() {
	e.staging = nil
	e.selected = -1
	e.undo = nil
	e.active = false
}
