package notes

import (
	"fmt"

	"openpiano/keymap"
)

type sourceRef struct {
	note   uint8
	source string
}

// Resolver turns normalized bindings into engine activations. It
// absorbs keyboard auto-repeat, remembers which hardware keycodes
// hold which binding, and recovers releases whose modifier state
// changed while the key was down.
type Resolver struct {
	engine *Engine
	notes  map[keymap.Binding][]uint8
	active map[keymap.Binding][]sourceRef
	byCode map[uint32]keymap.Binding
	codes  map[keymap.Binding]map[uint32]struct{}
}

func NewResolver(engine *Engine) *Resolver {
	return &Resolver{
		engine: engine,
		active: make(map[keymap.Binding][]sourceRef),
		byCode: make(map[uint32]keymap.Binding),
		codes:  make(map[keymap.Binding]map[uint32]struct{}),
	}
}

// SetMapping installs the reverse table used for note lookups.
func (r *Resolver) SetMapping(reverse map[keymap.Binding][]uint8) {
	r.notes = reverse
}

// Down reports whether a binding is currently held.
func (r *Resolver) Down(b keymap.Binding) bool {
	_, down := r.active[b]
	return down
}

// Press activates a binding's notes, transposed. It reports false for
// unmapped bindings and for a binding already down; the latter is
// what makes auto-repeat presses harmless.
func (r *Resolver) Press(b keymap.Binding, keycodes []uint32, velocity uint8, transpose int) bool {
	mapped := r.notes[b]
	if len(mapped) == 0 {
		return false
	}
	if _, down := r.active[b]; down {
		return false
	}
	r.register(b, keycodes)
	refs := make([]sourceRef, 0, len(mapped))
	for _, note := range mapped {
		target, ok := transposeNote(note, transpose)
		if !ok {
			continue
		}
		source := fmt.Sprintf("kb:%s#%d", b.ID(), note)
		r.engine.Activate(target, source, velocity)
		refs = append(refs, sourceRef{note: target, source: source})
	}
	r.active[b] = refs
	return true
}

// Release deactivates the binding owning one of the keycodes, falling
// back to modifier permutations of the hint when no keycode matches.
// The fallback catches releases whose modifiers lifted before the key
// itself did.
func (r *Resolver) Release(keycodes []uint32, hint keymap.Binding, effective int, noSustain bool) bool {
	b, found := r.lookup(keycodes, hint)
	if !found {
		return false
	}
	for kc := range r.codes[b] {
		delete(r.byCode, kc)
	}
	delete(r.codes, b)
	refs := r.active[b]
	delete(r.active, b)
	for _, ref := range refs {
		r.engine.ReleaseSource(ref.note, ref.source, effective, noSustain)
	}
	return true
}

func (r *Resolver) lookup(keycodes []uint32, hint keymap.Binding) (keymap.Binding, bool) {
	for _, kc := range keycodes {
		if b, ok := r.byCode[kc]; ok {
			if _, down := r.active[b]; down {
				return b, true
			}
		}
	}
	if hint.Token == "" {
		return keymap.Binding{}, false
	}
	for _, cand := range releaseCandidates(hint) {
		if _, down := r.active[cand]; down {
			return cand, true
		}
	}
	return keymap.Binding{}, false
}

// releaseCandidates enumerates the hint's modifier permutations with
// the hint itself first, so ambiguous releases resolve the same way
// every time.
func releaseCandidates(hint keymap.Binding) []keymap.Binding {
	out := make([]keymap.Binding, 0, 8)
	out = append(out, hint)
	for _, ctrl := range []bool{false, true} {
		for _, shift := range []bool{false, true} {
			for _, alt := range []bool{false, true} {
				c := hint
				c.Ctrl, c.Shift, c.Alt = ctrl, shift, alt
				if c != hint {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// register claims keycodes for a binding, evicting stale claims so a
// keycode always names the binding most recently pressed on it.
func (r *Resolver) register(b keymap.Binding, keycodes []uint32) {
	for _, kc := range keycodes {
		if prev, ok := r.byCode[kc]; ok && prev != b {
			if set := r.codes[prev]; set != nil {
				delete(set, kc)
			}
		}
		r.byCode[kc] = b
		set := r.codes[b]
		if set == nil {
			set = make(map[uint32]struct{})
			r.codes[b] = set
		}
		set[kc] = struct{}{}
	}
}

// Reset forgets all held bindings and keycode claims. Called after a
// panic stop so stale state cannot swallow the next press.
func (r *Resolver) Reset() {
	r.active = make(map[keymap.Binding][]sourceRef)
	r.byCode = make(map[uint32]keymap.Binding)
	r.codes = make(map[keymap.Binding]map[uint32]struct{})
}

// transposeNote shifts a note, reporting false when it would leave
// MIDI range entirely.
func transposeNote(note uint8, semitones int) (uint8, bool) {
	t := int(note) + semitones
	if t < 0 || t > 127 {
		return 0, false
	}
	return uint8(t), true
}
