//go:build linux

package seat

import (
	"github.com/swcgo/swc/internal/xkb"
)

// FocusTarget identifies whatever currently receives keyboard or
// pointer input; the scene package supplies concrete implementations
// (a view's surface), kept opaque here so seat doesn't import scene.
type FocusTarget interface {
	ID() uint64
}

// KeyboardHandler is notified of raw key events before focus delivery,
// giving bindings first refusal the way handle_key does for the
// compositor's own key bindings.
type KeyboardHandler interface {
	// HandleKey returns true if it consumed the event, stopping it from
	// reaching the focused client.
	HandleKey(time uint32, sym xkb.Keysym, pressed bool, mods xkb.Modifier) bool
}

// keyRecord is one held key's evdev code together with whichever
// handler consumed its press, nil if the press fell through to the
// focused client.
type keyRecord struct {
	code    uint32
	handler KeyboardHandler
}

// Keyboard tracks held keys, derived modifiers, and the current focus
// target; it mirrors swc_keyboard's wl_array of pressed keys with a
// small fixed-capacity slice, since a real keyboard never has more than
// a handful of keys down at once.
type Keyboard struct {
	state    *xkb.State
	pressed  []keyRecord
	focus    FocusTarget
	handlers []KeyboardHandler
}

// NewKeyboard returns a keyboard with no keys held and no focus.
func NewKeyboard() *Keyboard {
	return &Keyboard{state: xkb.New()}
}

// AddHandler registers a handler consulted before focus delivery, most
// recently added first (a grab pushes itself to the front).
func (k *Keyboard) AddHandler(h KeyboardHandler) {
	k.handlers = append([]KeyboardHandler{h}, k.handlers...)
}

// RemoveHandler un-registers a previously added handler.
func (k *Keyboard) RemoveHandler(h KeyboardHandler) {
	for i, hh := range k.handlers {
		if hh == h {
			k.handlers = append(k.handlers[:i], k.handlers[i+1:]...)
			return
		}
	}
}

// SetFocus changes which target receives unconsumed key events.
func (k *Keyboard) SetFocus(target FocusTarget) {
	k.focus = target
}

// Focus returns the current keyboard focus target, or nil.
func (k *Keyboard) Focus() FocusTarget { return k.focus }

// Modifiers returns the currently held compact modifier mask.
func (k *Keyboard) Modifiers() xkb.Modifier { return k.state.Mask() }

// HandleKey records a key press/release and dispatches it. A press
// walks registered handlers (bindings, grabs) in order and remembers
// whichever one consumes it; the matching release goes exclusively to
// that same handler, never to deliver, reproducing handle_key's
// pressed_keys/keysyms bookkeeping instead of re-deriving the winner
// from the handler stack as it stands at release time (which may have
// grown or shrunk since the press). A release whose press was never
// consumed (or was never recorded at all, e.g. a key held before this
// keyboard existed) still walks the live handler stack, so a grab
// started after an unconsumed press (an interactive move/resize) can
// claim its terminating release.
func (k *Keyboard) HandleKey(time uint32, code uint32, pressed bool, deliver func(code uint32, pressed bool)) {
	sym := xkb.Lookup(code)
	k.state.UpdateKey(sym, pressed)
	mods := k.state.Mask()

	if !pressed {
		if h, ok := k.release(code); ok && h != nil {
			h.HandleKey(time, sym, pressed, mods)
			return
		}
		for _, h := range k.handlers {
			if h.HandleKey(time, sym, pressed, mods) {
				return
			}
		}
		if deliver != nil {
			deliver(code, pressed)
		}
		return
	}

	for _, h := range k.handlers {
		if h.HandleKey(time, sym, pressed, mods) {
			k.press(code, h)
			return
		}
	}
	k.press(code, nil)
	if deliver != nil {
		deliver(code, pressed)
	}
}

// Pressed returns the currently held evdev keycodes, for wl_keyboard's
// enter(keys) argument.
func (k *Keyboard) Pressed() []uint32 {
	codes := make([]uint32, len(k.pressed))
	for i, r := range k.pressed {
		codes[i] = r.code
	}
	return codes
}

func (k *Keyboard) press(code uint32, handler KeyboardHandler) {
	for _, r := range k.pressed {
		if r.code == code {
			return
		}
	}
	k.pressed = append(k.pressed, keyRecord{code: code, handler: handler})
}

// release drops code's press record, if any, and reports which handler
// (possibly nil) accepted the press.
func (k *Keyboard) release(code uint32) (handler KeyboardHandler, ok bool) {
	for i, r := range k.pressed {
		if r.code == code {
			k.pressed = append(k.pressed[:i], k.pressed[i+1:]...)
			return r.handler, true
		}
	}
	return nil, false
}
