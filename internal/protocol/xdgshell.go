//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/wire"
	"github.com/swcgo/swc/internal/wm"
)

// xdg_wm_base/xdg_positioner/xdg_surface/xdg_toplevel opcodes, matching
// gogpu's client-side numbers for the same interfaces; xdg_popup is
// registered but not wired to a positioned child window (see
// xdgPopupResource).
const (
	xdgWmBaseDestroy          wire.Opcode = 0
	xdgWmBaseCreatePositioner wire.Opcode = 1
	xdgWmBaseGetXdgSurface    wire.Opcode = 2
	xdgWmBasePong             wire.Opcode = 3

	xdgWmBaseEventPing wire.Opcode = 0

	xdgPositionerDestroy wire.Opcode = 0

	xdgSurfaceDestroy           wire.Opcode = 0
	xdgSurfaceGetToplevel       wire.Opcode = 1
	xdgSurfaceGetPopup          wire.Opcode = 2
	xdgSurfaceSetWindowGeometry wire.Opcode = 3
	xdgSurfaceAckConfigure      wire.Opcode = 4

	xdgSurfaceEventConfigure wire.Opcode = 0

	xdgToplevelDestroy         wire.Opcode = 0
	xdgToplevelSetParent       wire.Opcode = 1
	xdgToplevelSetTitle        wire.Opcode = 2
	xdgToplevelSetAppID        wire.Opcode = 3
	xdgToplevelShowWindowMenu  wire.Opcode = 4
	xdgToplevelMove            wire.Opcode = 5
	xdgToplevelResize          wire.Opcode = 6
	xdgToplevelSetMaxSize      wire.Opcode = 7
	xdgToplevelSetMinSize      wire.Opcode = 8
	xdgToplevelSetMaximized    wire.Opcode = 9
	xdgToplevelUnsetMaximized  wire.Opcode = 10
	xdgToplevelSetFullscreen   wire.Opcode = 11
	xdgToplevelUnsetFullscreen wire.Opcode = 12
	xdgToplevelSetMinimized    wire.Opcode = 13

	xdgToplevelEventConfigure wire.Opcode = 0
	xdgToplevelEventClose     wire.Opcode = 1

	xdgPopupDestroy wire.Opcode = 0

	xdgPopupEventPopupDone wire.Opcode = 1
)

// AddXdgWmBase advertises xdg_wm_base, the entry point every desktop
// client uses to give a wl_surface a window role.
func (p *Protocol) AddXdgWmBase() *wire.Global {
	return p.Globals.Add("xdg_wm_base", 1, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &xdgWmBaseResource{proto: p, conn: c, id: id})
	})
}

type xdgWmBaseResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID
}

func (r *xdgWmBaseResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case xdgWmBaseDestroy:
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)

	case xdgWmBaseCreatePositioner:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		c.Register(id, xdgPositionerResource{})

	case xdgWmBaseGetXdgSurface:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		surfID, err := dec.Object()
		if err != nil {
			return err
		}
		h, ok := c.Lookup(surfID)
		if !ok {
			return SendError(c, r.id, DisplayErrorInvalidObject, "xdg_wm_base.get_xdg_surface: unknown wl_surface")
		}
		surf, ok := h.(*surfaceResource)
		if !ok {
			return SendError(c, r.id, DisplayErrorInvalidObject, "xdg_wm_base.get_xdg_surface: object is not a wl_surface")
		}
		xs := &xdgSurfaceResource{proto: r.proto, conn: c, id: id, surf: surf}
		surf.onCommit = xs.handleCommit
		c.Register(id, xs)

	case xdgWmBasePong:
		_, _ = dec.Uint32() // serial; this compositor never pings, nothing to correlate
	}
	return nil
}

// xdgPositionerResource tracks no state: xdg_popup is registered but its
// placement is never computed (see xdgPopupResource), so the anchor/
// gravity/constraint requests a client issues on a positioner have
// nothing to feed into.
type xdgPositionerResource struct{}

func (xdgPositionerResource) HandleRequest(c *wire.Conn, msg *wire.Message) error { return nil }

// xdgSurfaceResource adapts one xdg_surface onto the wl_surface beneath
// it, tracking the configure/ack handshake and, once get_toplevel is
// called, the wm.Window it drives.
type xdgSurfaceResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID
	surf  *surfaceResource

	serial   uint32
	toplevel *xdgToplevelResource
	mapped   bool
}

func (r *xdgSurfaceResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case xdgSurfaceDestroy:
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)

	case xdgSurfaceGetToplevel:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		tl := &xdgToplevelResource{proto: r.proto, conn: c, id: id, xdgSurface: r}
		tl.window = wm.New(r.surf.view, wm.Impl{
			Configure: tl.sendConfigure,
			Close:     func(*wm.Window) { tl.sendClose() },
		}, r.proto.WindowManager())
		r.toplevel = tl
		c.Register(id, tl)
		r.sendConfigure()

	case xdgSurfaceGetPopup:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		_, _ = dec.Object() // parent xdg_surface, unused: popups are never positioned
		_, _ = dec.Object() // positioner, unused for the same reason
		popup := &xdgPopupResource{conn: c, id: id}
		c.Register(id, popup)
		popup.sendDone()

	case xdgSurfaceSetWindowGeometry:
		// The visible-bounds geometry a client declares here excludes
		// client-side shadows/decoration; this compositor does not yet
		// clip views to it, so the values are accepted and discarded.
		_, _ = dec.Int32()
		_, _ = dec.Int32()
		_, _ = dec.Int32()
		_, _ = dec.Int32()

	case xdgSurfaceAckConfigure:
		_, _ = dec.Uint32() // serial, not tracked against sendConfigure's counter
		if r.toplevel != nil {
			r.toplevel.window.HandleConfigureAck()
		}
	}
	return nil
}

// sendConfigure emits xdg_surface.configure with a fresh serial,
// following every xdg_toplevel.configure it pairs with (the protocol
// requires exactly one xdg_surface.configure per state change).
func (r *xdgSurfaceResource) sendConfigure() {
	r.serial++
	b := wire.NewMessageBuilder()
	b.PutUint32(r.serial)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, xdgSurfaceEventConfigure, args, nil)
}

// handleCommit is installed as the underlying wl_surface's onCommit
// hook: the first commit carrying a buffer maps the window (places its
// view and notifies the window manager), matching xdg_surface's
// "initially not mapped until the first buffer is committed" rule;
// later commits just flow the new buffer size into the window model.
func (r *xdgSurfaceResource) handleCommit() {
	if r.toplevel == nil {
		return
	}
	w, h := r.surf.surface.Size()
	if !r.mapped {
		if w == 0 || h == 0 {
			return
		}
		r.surf.place()
		r.toplevel.window.Manage()
		r.proto.setKeyboardFocus(r.surf)
		r.mapped = true
		return
	}
	r.toplevel.window.HandleBufferAttached()
}

// xdgToplevelResource is the server side of xdg_toplevel, forwarding
// requests into the shared wm.Window model and translating its
// Impl callbacks back into xdg_toplevel/xdg_surface events.
type xdgToplevelResource struct {
	proto      *Protocol
	conn       *wire.Conn
	id         wire.ObjectID
	xdgSurface *xdgSurfaceResource
	window     *wm.Window
}

func (r *xdgToplevelResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case xdgToplevelDestroy:
		r.window.Unmanage()
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)

	case xdgToplevelSetParent:
		parentID, _ := dec.Object()
		if parentID == 0 {
			r.window.SetParent(nil)
			break
		}
		if h, ok := c.Lookup(parentID); ok {
			if ptl, ok := h.(*xdgToplevelResource); ok {
				r.window.SetParent(ptl.window)
			}
		}

	case xdgToplevelSetTitle:
		title, err := dec.String()
		if err != nil {
			return err
		}
		r.window.SetTitle(title)

	case xdgToplevelSetAppID:
		appID, err := dec.String()
		if err != nil {
			return err
		}
		r.window.SetAppID(appID)

	case xdgToplevelShowWindowMenu:
		_, _ = dec.Object() // seat
		_, _ = dec.Uint32() // serial
		_, _ = dec.Int32()  // x
		_, _ = dec.Int32()  // y
		// No window menu is implemented.

	case xdgToplevelMove:
		_, _ = dec.Object() // seat, this compositor has exactly one pointer
		_, _ = dec.Uint32() // serial
		r.window.BeginMove(r.proto.Seat.Pointer)

	case xdgToplevelResize:
		_, _ = dec.Object() // seat
		_, _ = dec.Uint32() // serial
		edges, _ := dec.Uint32()
		r.window.BeginResize(r.proto.Seat.Pointer, xdgEdgeToWindowEdge(edges))

	case xdgToplevelSetMaxSize, xdgToplevelSetMinSize:
		_, _ = dec.Int32()
		_, _ = dec.Int32()
		// Size constraints are not enforced against interactive resize.

	case xdgToplevelSetMaximized:
		r.window.SetTiled(r.proto.Seat.Pointer)
	case xdgToplevelUnsetMaximized:
		r.window.SetStacked()
	case xdgToplevelSetFullscreen:
		_, _ = dec.Object() // output, the primary screen is used regardless
		r.window.SetFullscreen()
	case xdgToplevelUnsetFullscreen:
		r.window.SetStacked()
	case xdgToplevelSetMinimized:
		// Minimizing hides the view without unmanaging the window, so a
		// later de-minimize (not exposed by xdg-shell; left to the shell
		// chrome calling back in) can show it again.
		r.window.View.Hide()
	}
	return nil
}

// sendConfigure implements wm.Impl.Configure: xdg_toplevel.configure
// announces the suggested size first, followed by the paired
// xdg_surface.configure every state change must end with.
func (r *xdgToplevelResource) sendConfigure(w *wm.Window, width, height uint32) {
	b := wire.NewMessageBuilder()
	b.PutInt32(int32(width))
	b.PutInt32(int32(height))
	b.PutArray(r.states())
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, xdgToplevelEventConfigure, args, nil)
	r.xdgSurface.sendConfigure()
}

// states encodes the xdg_toplevel_state array for the window's current
// mode; activated is always reported set since this compositor does
// not yet track per-toplevel keyboard-focus state separately from the
// seat's single keyboard focus.
func (r *xdgToplevelResource) states() []byte {
	const (
		stateMaximized  uint32 = 1
		stateFullscreen uint32 = 2
		stateActivated  uint32 = 4
	)
	vals := []uint32{stateActivated}
	switch r.window.Mode() {
	case wm.ModeTiled:
		vals = append(vals, stateMaximized)
	case wm.ModeFullscreen:
		vals = append(vals, stateFullscreen)
	}
	data := make([]byte, len(vals)*4)
	for i, v := range vals {
		data[i*4] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v >> 16)
		data[i*4+3] = byte(v >> 24)
	}
	return data
}

func (r *xdgToplevelResource) sendClose() {
	b := wire.NewMessageBuilder()
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, xdgToplevelEventClose, args, nil)
}

func xdgEdgeToWindowEdge(e uint32) wm.Edge {
	const (
		edgeTop    uint32 = 1
		edgeBottom uint32 = 2
		edgeLeft   uint32 = 4
		edgeRight  uint32 = 8
	)
	var out wm.Edge
	if e&edgeTop != 0 {
		out |= wm.EdgeTop
	}
	if e&edgeBottom != 0 {
		out |= wm.EdgeBottom
	}
	if e&edgeLeft != 0 {
		out |= wm.EdgeLeft
	}
	if e&edgeRight != 0 {
		out |= wm.EdgeRight
	}
	return out
}

// xdgPopupResource answers a created xdg_popup by immediately telling
// the client it's done: positioned transient popups (menus, tooltips)
// are not modeled by internal/wm, and advertising the interface while
// refusing to ever map one would leave clients waiting indefinitely.
type xdgPopupResource struct {
	conn *wire.Conn
	id   wire.ObjectID
}

func (r *xdgPopupResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	if msg.Opcode == xdgPopupDestroy {
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

func (r *xdgPopupResource) sendDone() {
	b := wire.NewMessageBuilder()
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, xdgPopupEventPopupDone, args, nil)
}
