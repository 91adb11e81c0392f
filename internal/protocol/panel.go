//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/shell"
	"github.com/swcgo/swc/internal/wire"
)

// swc_panel_manager/swc_panel opcodes, matching struct
// swc_panel_manager_interface/swc_panel_interface's member order in
// panel_manager.c/panel.c: a single create_panel request, then dock,
// set_offset, set_strut in the order panel.c declares them.
const (
	panelManagerCreatePanel wire.Opcode = 0

	panelDock      wire.Opcode = 0
	panelSetOffset wire.Opcode = 1
	panelSetStrut  wire.Opcode = 2

	panelEventDocked wire.Opcode = 0
)

// Panel edge values, matching enum swc_panel_edge.
const (
	panelEdgeTop    uint32 = 0
	panelEdgeBottom uint32 = 1
	panelEdgeLeft   uint32 = 2
	panelEdgeRight  uint32 = 3
)

// AddPanelManager advertises swc_panel_manager, the compositor-private
// global a status bar or launcher dock binds to turn its surface into
// a docked panel instead of an ordinary xdg_toplevel window.
func (p *Protocol) AddPanelManager() *wire.Global {
	return p.Globals.Add("swc_panel_manager", 1, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &panelManagerResource{proto: p})
	})
}

type panelManagerResource struct {
	proto *Protocol
}

func (r *panelManagerResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	if msg.Opcode != panelManagerCreatePanel {
		return nil
	}
	dec := decoderFor(msg)
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
		return SendError(c, id, DisplayErrorInvalidObject, "swc_panel_manager.create_panel: unknown wl_surface")
	}
	surf, ok := h.(*surfaceResource)
	if !ok {
		return SendError(c, id, DisplayErrorInvalidObject, "swc_panel_manager.create_panel: object is not a wl_surface")
	}
	pr := &panelResource{proto: r.proto, conn: c, id: id, surf: surf, panel: shell.NewPanel(surf.view)}
	surf.onCommit = pr.handleCommit
	c.Register(id, pr)
	return nil
}

// panelResource is the server side of swc_panel, wrapping a
// shell.Panel docked to one of a screen's edges.
type panelResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID
	surf  *surfaceResource
	panel *shell.Panel
}

func (r *panelResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case panelDock:
		edge, err := dec.Uint32()
		if err != nil {
			return err
		}
		_, _ = dec.Object() // screen, a swc_screen global this compositor doesn't expose; the primary screen is always used
		focus, _ := dec.Uint32()

		sb := r.proto.primaryScreen()
		if sb == nil {
			return nil
		}
		length := r.panel.Dock(sb.Screen, panelEdgeToShellEdge(edge))
		r.surf.screen = sb
		r.surf.place()
		if focus != 0 {
			r.proto.setKeyboardFocus(r.surf)
		}
		r.sendDocked(length)

	case panelSetOffset:
		offset, err := dec.Uint32()
		if err != nil {
			return err
		}
		r.panel.SetOffset(offset)

	case panelSetStrut:
		size, err := dec.Uint32()
		if err != nil {
			return err
		}
		_, _ = dec.Uint32() // begin, unused: a panel's strut is always full-edge-length
		_, _ = dec.Uint32() // end, unused for the same reason
		r.panel.SetStrut(size)
	}
	return nil
}

func (r *panelResource) handleCommit() {
	if r.panel.Docked() {
		r.panel.Resized()
	}
}

func (r *panelResource) sendDocked(length uint32) {
	b := wire.NewMessageBuilder()
	b.PutUint32(length)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, panelEventDocked, args, nil)
}

func panelEdgeToShellEdge(e uint32) shell.Edge {
	switch e {
	case panelEdgeBottom:
		return shell.EdgeBottom
	case panelEdgeLeft:
		return shell.EdgeLeft
	case panelEdgeRight:
		return shell.EdgeRight
	default:
		return shell.EdgeTop
	}
}
