// Package xkb implements the compact keymap/modifier tracking the
// bindings and keyboard subsystems need. There is no xkbcommon binding
// or pure-Go keysym library anywhere in the retrieval pack (gioui's
// app/internal/xkb wraps libxkbcommon via cgo, the opposite of this
// module's CGO-free stance), so this package implements the small,
// fixed piece of XKB surface the compositor actually touches: evdev
// keycode to keysym translation, a compact 4-bit modifier mask, and a
// keymap file clients can mmap.
//
// Only the newer, simpler per-keyboard modifier-mask path is modeled;
// there is no older, redundant modifier-tracking code path to keep in
// sync with it.
package xkb

// Keysym is an XKB keysym value. The constants below are the subset
// in scope for bindings and the client-visible keymap; they reuse the
// upstream XKB keysym numbering so a real xkbcommon-based client still
// interprets them correctly.
type Keysym uint32

// Common keysyms referenced by built-in bindings and example configs.
const (
	KeyNoSymbol    Keysym = 0x000000
	KeyBackSpace   Keysym = 0xff08
	KeyTab         Keysym = 0xff09
	KeyReturn      Keysym = 0xff0d
	KeyEscape      Keysym = 0xff1b
	KeyDelete      Keysym = 0xffff
	KeyShiftL      Keysym = 0xffe1
	KeyShiftR      Keysym = 0xffe2
	KeyControlL    Keysym = 0xffe3
	KeyControlR    Keysym = 0xffe4
	KeyAltL        Keysym = 0xffe9
	KeyAltR        Keysym = 0xffea
	KeySuperL      Keysym = 0xffeb
	KeySuperR      Keysym = 0xffec
	KeySpace       Keysym = 0x0020
	Key_q          Keysym = 0x0071
	Key_Q          Keysym = 0x0051
)

// XF86SwitchVT returns the keysym for VT n (1-12), used by the
// built-in VT-switch bindings.
func XF86SwitchVT(n int) Keysym {
	return Keysym(0x1008fe01 + n - 1)
}

// evdevKeysyms maps unshifted evdev keycodes (linux/input-event-codes.h
// KEY_*) to the keysym produced with no modifiers held. Only the subset
// needed for bindings and client key delivery is populated; an unmapped
// code yields KeyNoSymbol and is still forwarded to clients using its
// raw evdev code (most of the protocol value in swc is in ordering and
// focus routing, not keysym fidelity for every key on the board).
var evdevKeysyms = map[uint32]Keysym{
	1:  KeyEscape,
	14: KeyBackSpace,
	15: KeyTab,
	16: Key_q,
	28: KeyReturn,
	29: KeyControlL,
	42: KeyShiftL,
	56: KeyAltL,
	57: KeySpace,
	97: KeyControlR,
	100: KeyAltR,
	125: KeySuperL,
	126: KeySuperR,
	54: KeyShiftR,
}

// Lookup returns the keysym for an evdev keycode with no modifiers
// applied. Shifted/alt-graph variants are not modeled: bindings match
// on base keysym plus a separate modifier mask, so shift-level
// expansion isn't needed for the in-scope behavior.
func Lookup(evdevCode uint32) Keysym {
	if sym, ok := evdevKeysyms[evdevCode]; ok {
		return sym
	}
	return KeyNoSymbol
}
