// Package bindings implements the compositor's own global key bindings:
// a flat table of (modifiers, keysym) -> action, consulted before any
// key event reaches a client's keyboard focus. It mirrors
// swc_add_key_binding / handle_key's linear scan over a small array;
// there is no reason to reach for anything fancier than a slice given
// the handful of bindings a desktop actually registers.
package bindings

import "github.com/swcgo/swc/internal/xkb"

// Action is invoked when a binding fires.
type Action func(time uint32, sym xkb.Keysym)

type binding struct {
	modifiers xkb.Modifier
	sym       xkb.Keysym
	action    Action
}

// Table is an ordered set of key bindings; the first match wins, same
// as wl_array_for_each's first-hit-returns-true behavior in
// libswc/bindings.c.
type Table struct {
	bindings []binding
}

// NewTable returns an empty binding table.
func NewTable() *Table {
	return &Table{}
}

// Add registers a binding. Pass xkb.ModAny for modifiers to match
// regardless of held modifier state.
func (t *Table) Add(modifiers xkb.Modifier, sym xkb.Keysym, action Action) {
	t.bindings = append(t.bindings, binding{modifiers: modifiers, sym: sym, action: action})
}

// HandleKey implements seat.KeyboardHandler: it only fires bindings on
// key press, matching handle_key's WL_KEYBOARD_KEY_STATE_PRESSED check.
// It returns false for a release because Table never acts on one, but
// seat.Keyboard routes a bound key's release to Table regardless (not
// to the client) since Table was the handler that accepted the press.
func (t *Table) HandleKey(time uint32, sym xkb.Keysym, pressed bool, mods xkb.Modifier) bool {
	if !pressed {
		return false
	}
	for _, b := range t.bindings {
		if b.sym != sym {
			continue
		}
		if b.modifiers != xkb.ModAny && b.modifiers != mods {
			continue
		}
		b.action(time, sym)
		return true
	}
	return false
}
