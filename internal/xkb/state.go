package xkb

// Modifier is a compact 4-bit modifier field, replacing the raw XKB
// mod mask with {ctrl, alt, super, shift}.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModSuper
	ModShift
	// ModAny is a sentinel that matches any modifier state, passed as
	// the modifiers argument of bindings.Table.Add. It is not a real bit combination and must be
	// checked for before testing bits.
	ModAny Modifier = 1 << 7
)

// State tracks which modifier-producing keys are currently held and
// derives the compact Modifier field from them. It intentionally does
// not model XKB groups/levels/locks beyond this.
type State struct {
	ctrlL, ctrlR     bool
	altL, altR       bool
	superL, superR   bool
	shiftL, shiftR   bool
}

// New returns a fresh, all-released modifier state.
func New() *State {
	return &State{}
}

// UpdateKey records a press/release of a modifier-producing keysym and
// reports whether the compact modifier mask changed as a result. Non-
// modifier keysyms are ignored (returns false).
func (s *State) UpdateKey(sym Keysym, pressed bool) (changed bool) {
	before := s.Mask()
	switch sym {
	case KeyControlL:
		s.ctrlL = pressed
	case KeyControlR:
		s.ctrlR = pressed
	case KeyAltL:
		s.altL = pressed
	case KeyAltR:
		s.altR = pressed
	case KeySuperL:
		s.superL = pressed
	case KeySuperR:
		s.superR = pressed
	case KeyShiftL:
		s.shiftL = pressed
	case KeyShiftR:
		s.shiftR = pressed
	default:
		return false
	}
	return s.Mask() != before
}

// Mask returns the current compact modifier field.
func (s *State) Mask() Modifier {
	var m Modifier
	if s.ctrlL || s.ctrlR {
		m |= ModCtrl
	}
	if s.altL || s.altR {
		m |= ModAlt
	}
	if s.superL || s.superR {
		m |= ModSuper
	}
	if s.shiftL || s.shiftR {
		m |= ModShift
	}
	return m
}

// Reset clears all held modifier keys.
func (s *State) Reset() {
	*s = State{}
}
