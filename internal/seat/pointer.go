//go:build linux

package seat

// PointerHandler is notified of raw pointer events before focus
// delivery, letting a grab (e.g. an interactive window move) consume
// motion without the focused client seeing it.
type PointerHandler interface {
	HandleMotion(time uint32, x, y int32) bool
	HandleButton(time uint32, button uint32, pressed bool) bool
}

// buttonRecord is one held button's code together with whichever
// handler consumed its press, nil if the press fell through to the
// focused client.
type buttonRecord struct {
	code    uint32
	handler PointerHandler
}

// Pointer tracks cursor position, held buttons, and the current focus
// target (the view under the cursor, or whatever grabbed it).
type Pointer struct {
	x, y     int32
	pressed  []buttonRecord
	focus    FocusTarget
	handlers []PointerHandler
}

// NewPointer returns a pointer positioned at the origin.
func NewPointer() *Pointer {
	return &Pointer{}
}

// AddHandler registers a handler consulted before focus delivery, most
// recently added first.
func (p *Pointer) AddHandler(h PointerHandler) {
	p.handlers = append([]PointerHandler{h}, p.handlers...)
}

// RemoveHandler un-registers a previously added handler.
func (p *Pointer) RemoveHandler(h PointerHandler) {
	for i, hh := range p.handlers {
		if hh == h {
			p.handlers = append(p.handlers[:i], p.handlers[i+1:]...)
			return
		}
	}
}

// SetFocus changes which target receives unconsumed pointer events.
func (p *Pointer) SetFocus(target FocusTarget) { p.focus = target }

// Focus returns the current pointer focus target, or nil.
func (p *Pointer) Focus() FocusTarget { return p.focus }

// Position returns the pointer's current location in global coordinates.
func (p *Pointer) Position() (x, y int32) { return p.x, p.y }

// HandleMotion applies a relative motion delta, clamps it to bounds,
// and dispatches to handlers then deliver.
func (p *Pointer) HandleMotion(time uint32, dx, dy int32, clamp func(x, y int32) (int32, int32), deliver func(x, y int32)) {
	x, y := p.x+dx, p.y+dy
	if clamp != nil {
		x, y = clamp(x, y)
	}
	p.x, p.y = x, y

	for _, h := range p.handlers {
		if h.HandleMotion(time, x, y) {
			return
		}
	}
	if deliver != nil {
		deliver(x, y)
	}
}

// HandleButton records a button press/release and dispatches it. A
// press walks handlers in order and remembers whichever one consumes
// it; the matching release goes exclusively to that handler rather
// than re-walking the live handler stack. An unconsumed press leaves
// no winning handler, so a grab started afterward (an interactive
// move/resize begun in response to the client's own request) can still
// claim the terminating release, matching the handler-stack walk
// HandleMotion always uses.
func (p *Pointer) HandleButton(time uint32, button uint32, pressed bool, deliver func(button uint32, pressed bool)) {
	if !pressed {
		if h, ok := p.release(button); ok && h != nil {
			h.HandleButton(time, button, pressed)
			return
		}
		for _, h := range p.handlers {
			if h.HandleButton(time, button, pressed) {
				return
			}
		}
		if deliver != nil {
			deliver(button, pressed)
		}
		return
	}

	for _, h := range p.handlers {
		if h.HandleButton(time, button, pressed) {
			p.press(button, h)
			return
		}
	}
	p.press(button, nil)
	if deliver != nil {
		deliver(button, pressed)
	}
}

// Pressed returns the currently held button codes.
func (p *Pointer) Pressed() []uint32 {
	codes := make([]uint32, len(p.pressed))
	for i, r := range p.pressed {
		codes[i] = r.code
	}
	return codes
}

func (p *Pointer) press(code uint32, handler PointerHandler) {
	for _, r := range p.pressed {
		if r.code == code {
			return
		}
	}
	p.pressed = append(p.pressed, buttonRecord{code: code, handler: handler})
}

// release drops code's press record, if any, and reports which handler
// (possibly nil) accepted the press.
func (p *Pointer) release(code uint32) (handler PointerHandler, ok bool) {
	for i, r := range p.pressed {
		if r.code == code {
			p.pressed = append(p.pressed[:i], p.pressed[i+1:]...)
			return r.handler, true
		}
	}
	return nil, false
}
