// Package keymap maps physical key and mouse-button chords to piano notes.
// A Binding identifies one chord; a Mapping assigns bindings to MIDI notes.
package keymap

import (
	"fmt"
	"strings"
)

// Source tells which device a binding listens on.
type Source uint8

const (
	Keyboard Source = iota
	Mouse
)

func (s Source) String() string {
	if s == Mouse {
		return "mouse"
	}
	return "kb"
}

// Binding is a normalized input chord. Token is a lowercase letter or
// digit for keyboard bindings, or a button name ("right", "middle",
// "x1", "x2") for mouse bindings. The struct is comparable and usable
// as a map key.
type Binding struct {
	Source Source
	Token  string
	Ctrl   bool
	Shift  bool
	Alt    bool
}

// ID renders the binding in the persisted form
// "{source}|{ctrl}|{shift}|{alt}|{token}" with flags as 0/1.
func (b Binding) ID() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		b.Source, flag(b.Ctrl), flag(b.Shift), flag(b.Alt), b.Token)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// ParseID is the inverse of ID. Unknown sources, malformed flags and
// invalid tokens are rejected so stale config entries drop out cleanly.
func ParseID(id string) (Binding, error) {
	parts := strings.SplitN(id, "|", 5)
	if len(parts) != 5 {
		return Binding{}, fmt.Errorf("keymap: malformed binding id %q", id)
	}
	var b Binding
	switch parts[0] {
	case "kb":
		b.Source = Keyboard
	case "mouse":
		b.Source = Mouse
	default:
		return Binding{}, fmt.Errorf("keymap: unknown binding source %q", parts[0])
	}
	flags := [3]*bool{&b.Ctrl, &b.Shift, &b.Alt}
	for i, p := range parts[1:4] {
		switch p {
		case "0":
			*flags[i] = false
		case "1":
			*flags[i] = true
		default:
			return Binding{}, fmt.Errorf("keymap: bad flag %q in binding id %q", p, id)
		}
	}
	b.Token = parts[4]
	if b.Source == Mouse {
		if !mouseTokens[b.Token] {
			return Binding{}, fmt.Errorf("keymap: unknown mouse token in binding id %q", id)
		}
		return b, nil
	}
	if tok, ok := singleAlnum(b.Token); !ok || tok != b.Token {
		return Binding{}, fmt.Errorf("keymap: bad keyboard token in binding id %q", id)
	}
	return b, nil
}

// Key builds a plain keyboard binding. Shifted and Ctrl are the
// constructors for the two modifier forms the default tables use.
func Key(token string) Binding {
	return Binding{Source: Keyboard, Token: token}
}

// Shifted builds a shift+token keyboard binding.
func Shifted(token string) Binding {
	return Binding{Source: Keyboard, Token: token, Shift: true}
}

// Ctrl builds a ctrl+token keyboard binding.
func Ctrl(token string) Binding {
	return Binding{Source: Keyboard, Token: token, Ctrl: true}
}

// MouseButton builds a mouse binding for the given button token.
func MouseButton(token string, ctrl, shift, alt bool) Binding {
	return Binding{Source: Mouse, Token: token, Ctrl: ctrl, Shift: shift, Alt: alt}
}
