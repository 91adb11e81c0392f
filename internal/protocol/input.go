//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/scene"
	"github.com/swcgo/swc/internal/wire"
)

// Clamp restricts (x, y) to the union of every registered screen's
// geometry, the seat.Pointer.HandleMotion clamp callback a server loop
// wires in directly: swc_seat clamps cursor motion to screen_list's
// bounding box the same way.
func (p *Protocol) Clamp(x, y int32) (int32, int32) {
	if len(p.Screens) == 0 {
		return x, y
	}
	b := p.Screens[0].Screen.Geometry()
	for _, sb := range p.Screens[1:] {
		g := sb.Screen.Geometry()
		if g.X < b.X {
			b.X = g.X
		}
		if g.Y < b.Y {
			b.Y = g.Y
		}
		if g.Right() > b.Right() {
			b.W = g.Right() - b.X
		}
		if g.Bottom() > b.Bottom() {
			b.H = g.Bottom() - b.Y
		}
	}
	if x < b.X {
		x = b.X
	}
	if y < b.Y {
		y = b.Y
	}
	if x > b.Right()-1 {
		x = b.Right() - 1
	}
	if y > b.Bottom()-1 {
		y = b.Bottom() - 1
	}
	return x, y
}

// hitTest finds the topmost view under the global point (x, y) across
// every screen, and the surfaceResource that owns it.
func (p *Protocol) hitTest(x, y int32) (sr *surfaceResource, localX, localY int32) {
	for _, sb := range p.Screens {
		view, lx, ly := sb.Stack.HitTest(x, y)
		if view == nil {
			continue
		}
		p.mu.Lock()
		found := p.surfaces[view.Surface.ID()]
		p.mu.Unlock()
		if found != nil {
			return found, lx, ly
		}
	}
	return nil, 0, 0
}

// DeliverPointerMotion implements the deliver callback seat.Pointer.
// HandleMotion expects: it hit-tests the new global position, moves
// focus between surfaces as the cursor crosses their boundaries
// (wl_pointer.leave/enter, the enter carrying the surface-local
// position), and while the cursor stays over the same surface forwards
// the surface-local position to that client's wl_pointer
// (wl_pointer.motion).
func (p *Protocol) DeliverPointerMotion(x, y int32) {
	sr, lx, ly := p.hitTest(x, y)

	prev, _ := p.Seat.Pointer.Focus().(*pointerFocus)
	var prevSurf uint64
	if prev != nil {
		prevSurf = prev.id
	}

	if sr == nil {
		if prev != nil {
			p.sendPointerLeave(prev)
			p.Seat.Pointer.SetFocus(nil)
		}
		return
	}

	if prev == nil || prevSurf != sr.surface.ID() {
		if prev != nil {
			p.sendPointerLeave(prev)
		}
		p.Seat.Pointer.SetFocus(&pointerFocus{id: sr.surface.ID()})
		p.sendPointerEnter(sr, lx, ly)
		return
	}

	sx, sy := wire.FixedFromInt(lx), wire.FixedFromInt(ly)
	for _, pr := range p.pointerResourcesFor(sr.conn) {
		pr.SendMotion(0, sx, sy)
	}
}

// DeliverPointerButton implements the deliver callback seat.Pointer.
// HandleButton expects, forwarding a press/release to whichever
// surface currently has pointer focus. A press also raises keyboard
// focus to the clicked surface (click-to-focus); xdgshell.go and
// panel.go also move keyboard focus through setKeyboardFocus.
func (p *Protocol) DeliverPointerButton(button uint32, pressed bool) {
	focus, ok := p.Seat.Pointer.Focus().(*pointerFocus)
	if !ok || focus == nil {
		return
	}
	p.mu.Lock()
	sr := p.surfaces[focus.id]
	p.mu.Unlock()
	if sr == nil {
		return
	}
	if pressed {
		p.setKeyboardFocus(sr)
	}
	serial := p.nextSerial()
	for _, pr := range p.pointerResourcesFor(sr.conn) {
		pr.SendButton(serial, 0, button, pressed)
	}
}

// setKeyboardFocus moves keyboard focus to sr, sending wl_keyboard
// leave/enter to the previously and newly focused clients.
func (p *Protocol) setKeyboardFocus(sr *surfaceResource) {
	prev, _ := p.Seat.Keyboard.Focus().(*scene.Surface)
	if prev == sr.surface {
		return
	}
	if prev != nil {
		p.mu.Lock()
		prevSR := p.surfaces[prev.ID()]
		p.mu.Unlock()
		if prevSR != nil {
			serial := p.nextSerial()
			for _, kr := range p.keyboardResourcesFor(prevSR.conn) {
				kr.SendLeave(serial, prevSR.id)
			}
		}
	}
	p.Seat.Keyboard.SetFocus(sr.surface)
	serial := p.nextSerial()
	for _, kr := range p.keyboardResourcesFor(sr.conn) {
		kr.SendEnter(serial, sr.id, nil)
	}
	p.offerSelectionToFocus()
}

// DeliverKey implements the deliver callback seat.Keyboard.HandleKey
// expects, forwarding a raw evdev keycode to whichever surface
// currently has keyboard focus.
func (p *Protocol) DeliverKey(code uint32, pressed bool) {
	focus, ok := p.Seat.Keyboard.Focus().(interface{ ID() uint64 })
	if !ok || focus == nil {
		return
	}
	p.mu.Lock()
	sr := p.surfaces[focus.ID()]
	p.mu.Unlock()
	if sr == nil {
		return
	}
	serial := p.nextSerial()
	for _, kr := range p.keyboardResourcesFor(sr.conn) {
		kr.SendKey(serial, 0, code, pressed)
	}
}

func (p *Protocol) sendPointerEnter(sr *surfaceResource, lx, ly int32) {
	serial := p.nextSerial()
	sx, sy := wire.FixedFromInt(lx), wire.FixedFromInt(ly)
	for _, pr := range p.pointerResourcesFor(sr.conn) {
		pr.SendEnter(serial, sr.id, sx, sy)
	}
}

func (p *Protocol) sendPointerLeave(focus *pointerFocus) {
	p.mu.Lock()
	sr := p.surfaces[focus.id]
	p.mu.Unlock()
	if sr == nil {
		return
	}
	serial := p.nextSerial()
	for _, pr := range p.pointerResourcesFor(sr.conn) {
		pr.SendLeave(serial, sr.id)
	}
}

func (p *Protocol) pointerResourcesFor(c *wire.Conn) []*pointerResource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pointers[c]
}

func (p *Protocol) keyboardResourcesFor(c *wire.Conn) []*keyboardResource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keyboards[c]
}

// pointerFocus is the seat.FocusTarget this package installs on
// seat.Pointer: it only needs to remember which scene.Surface id has
// focus, recovered through Protocol.surfaces rather than holding a
// *surfaceResource directly so a destroyed surface can't be
// use-after-freed through a stale focus pointer.
type pointerFocus struct{ id uint64 }

func (f *pointerFocus) ID() uint64 { return f.id }
