package wm

import "github.com/swcgo/swc/internal/seat"

// interaction tracks one active interactive move or resize grab: the
// pointer handler inserted ahead of normal event delivery for the
// duration, and the pointer it was added to. Ending the grab removes
// that handler; the handler that took the initiating button press is
// not recorded or restored. Mirrors struct window_pointer_interaction.
type interaction struct {
	active  bool
	grab    seat.PointerHandler
	pointer *seat.Pointer
}

func (w *Window) beginInteraction(pointer *seat.Pointer, grab seat.PointerHandler) *interaction {
	in := &interaction{active: true, grab: grab, pointer: pointer}
	pointer.AddHandler(grab)
	return in
}

// endInteraction removes a grab's pointer handler, the move/resize
// counterpart of window.c's end_interaction (minus synthesizing a
// button-release event for a cancelled keyboard-initiated interaction,
// which this compositor does not yet support).
func (w *Window) endInteraction(pointer *seat.Pointer, in **interaction) {
	if *in == nil || !(*in).active {
		return
	}
	p := pointer
	if p == nil {
		p = (*in).pointer
	}
	if p != nil {
		p.RemoveHandler((*in).grab)
	}
	(*in).active = false
	*in = nil
}

// moveGrab implements seat.PointerHandler for an active move
// interaction: every motion repositions the window directly under the
// pointer, offset by where the grab started (window.c's move_motion).
type moveGrab struct {
	w *Window
}

func (g *moveGrab) HandleMotion(time uint32, x, y int32) bool {
	nx := x + g.w.move.offsetX
	ny := y + g.w.move.offsetY
	g.w.View.Move(nx, ny)
	g.w.x, g.w.y = nx, ny
	return true
}

func (g *moveGrab) HandleButton(time uint32, button uint32, pressed bool) bool {
	if pressed {
		return false
	}
	g.w.endInteraction(nil, &g.w.move.interaction)
	return true
}

// resizeGrab implements seat.PointerHandler for an active resize
// interaction: motion recomputes width/height from the dragged edge(s)
// and asks the shell implementation to configure the client to match
// (window.c's resize_motion).
type resizeGrab struct {
	w *Window
}

func (g *resizeGrab) HandleMotion(time uint32, x, y int32) bool {
	w := g.w
	width, height := uint32(w.width), uint32(w.height)
	edges := w.resize.edges

	switch {
	case edges&EdgeLeft != 0:
		width = uint32(w.width - (x + w.resize.offsetX - w.x))
	case edges&EdgeRight != 0:
		width = uint32(x + w.resize.offsetX - w.x)
	}
	switch {
	case edges&EdgeTop != 0:
		height = uint32(w.height - (y + w.resize.offsetY - w.y))
	case edges&EdgeBottom != 0:
		height = uint32(y + w.resize.offsetY - w.y)
	}

	w.impl.Configure(w, width, height)
	return true
}

func (g *resizeGrab) HandleButton(time uint32, button uint32, pressed bool) bool {
	if pressed {
		return false
	}
	g.w.endInteraction(nil, &g.w.resize.interaction)
	return true
}

// BeginMove starts an interactive move grab, the Go analogue of
// window_begin_move. Only stacked windows can be moved; a no-op
// otherwise (tiled/fullscreen windows are repositioned by the layout,
// not the pointer).
func (w *Window) BeginMove(pointer *seat.Pointer) {
	if w.mode != ModeStacked || (w.move.interaction != nil && w.move.interaction.active) {
		return
	}
	px, py := pointer.Position()
	w.move.offsetX = w.x - px
	w.move.offsetY = w.y - py
	w.move.interaction = w.beginInteraction(pointer, &moveGrab{w: w})
}

// EndMove cancels an active move grab without waiting for a button release.
func (w *Window) EndMove(pointer *seat.Pointer) {
	w.endInteraction(pointer, &w.move.interaction)
}

// BeginResize starts an interactive resize grab (window_begin_resize).
// If edges is EdgeNone, the nearest corner/edge to the pointer relative
// to the window's center is inferred, matching the original's behavior
// for a keyboard- or menu-initiated resize with no specific edge.
func (w *Window) BeginResize(pointer *seat.Pointer, edges Edge) {
	if w.mode != ModeStacked || (w.resize.interaction != nil && w.resize.interaction.active) {
		return
	}
	px, py := pointer.Position()

	if edges == EdgeNone {
		if px < w.x+w.width/2 {
			edges |= EdgeLeft
		} else {
			edges |= EdgeRight
		}
		if py < w.y+w.height/2 {
			edges |= EdgeTop
		} else {
			edges |= EdgeBottom
		}
	}

	w.resize.offsetX = w.x - px
	w.resize.offsetY = w.y - py
	if edges&EdgeRight != 0 {
		w.resize.offsetX += w.width
	}
	if edges&EdgeBottom != 0 {
		w.resize.offsetY += w.height
	}
	w.resize.edges = edges
	w.resize.interaction = w.beginInteraction(pointer, &resizeGrab{w: w})
}

// EndResize cancels an active resize grab without waiting for a button release.
func (w *Window) EndResize(pointer *seat.Pointer) {
	w.endInteraction(pointer, &w.resize.interaction)
}
