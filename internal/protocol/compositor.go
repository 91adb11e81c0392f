//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
	"github.com/swcgo/swc/internal/wire"
)

// wl_compositor request opcodes, matching the client-side numbers
// gogpu's own Wayland package issues requests with (the wire is
// symmetric: a request opcode from the client is the same number the
// server decodes it as).
const (
	compositorCreateSurface wire.Opcode = 0
	compositorCreateRegion  wire.Opcode = 1
)

// wl_surface request opcodes.
const (
	surfaceDestroy            wire.Opcode = 0
	surfaceAttach             wire.Opcode = 1
	surfaceDamage             wire.Opcode = 2
	surfaceFrame              wire.Opcode = 3
	surfaceSetOpaqueRegion    wire.Opcode = 4
	surfaceSetInputRegion     wire.Opcode = 5
	surfaceCommit             wire.Opcode = 6
	surfaceSetBufferTransform wire.Opcode = 7
	surfaceSetBufferScale     wire.Opcode = 8
	surfaceDamageBuffer       wire.Opcode = 9

	surfaceEventEnter wire.Opcode = 0
	surfaceEventLeave wire.Opcode = 1
)

// wl_region request opcodes.
const (
	regionDestroy   wire.Opcode = 0
	regionAdd       wire.Opcode = 1
	regionSubtract  wire.Opcode = 2
)

// AddCompositor advertises wl_compositor, the global every client binds
// first to create surfaces and regions.
func (p *Protocol) AddCompositor() *wire.Global {
	return p.Globals.Add("wl_compositor", 4, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &compositorResource{proto: p})
	})
}

type compositorResource struct {
	proto *Protocol
}

func (r *compositorResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case compositorCreateSurface:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		newSurfaceResource(r.proto, c, id)
	case compositorCreateRegion:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		reg := &region.Region{}
		r.proto.setRegion(c, id, reg)
		c.Register(id, &regionResource{proto: r.proto, id: id, reg: reg})
	}
	return nil
}

type regionResource struct {
	proto *Protocol
	id    wire.ObjectID
	reg   *region.Region
}

func (r *regionResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case regionDestroy:
		r.proto.dropRegion(c, r.id)
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	case regionAdd:
		x, _ := dec.Int32()
		y, _ := dec.Int32()
		w, _ := dec.Int32()
		h, _ := dec.Int32()
		r.reg.AddRect(region.Rect{X: x, Y: y, W: w, H: h})
	case regionSubtract:
		x, _ := dec.Int32()
		y, _ := dec.Int32()
		w, _ := dec.Int32()
		h, _ := dec.Int32()
		r.reg.SubtractRect(region.Rect{X: x, Y: y, W: w, H: h})
	}
	return nil
}

// surfaceResource is the server side of wl_surface: it forwards
// requests into a scene.Surface and, on commit, hands the result to the
// compositor and view stack the surface currently belongs to.
type surfaceResource struct {
	proto   *Protocol
	conn    *wire.Conn
	id      wire.ObjectID
	surface *scene.Surface
	view    *scene.View
	screen  *ScreenBinding
	placed  bool // true once a role handler has pushed view onto screen.Stack

	// onCommit lets a higher-level resource (xdg_surface, swc_panel)
	// observe commits without scene.Surface needing to know about them.
	onCommit func()
}

// place pushes the surface's view onto its screen's stack and shows
// it, called by whatever gives the surface a role (an xdg_toplevel
// mapping, a panel docking) once it is ready to be displayed.
func (r *surfaceResource) place() {
	if r.placed || r.screen == nil {
		return
	}
	r.screen.Stack.Push(r.view)
	r.view.Show()
	r.placed = true
}

func newSurfaceResource(p *Protocol, c *wire.Conn, id wire.ObjectID) *surfaceResource {
	s := scene.NewSurface(p.allocSurfaceID())
	v := scene.NewView(s)
	sr := &surfaceResource{proto: p, conn: c, id: id, surface: s, view: v, screen: p.primaryScreen()}
	c.Register(id, sr)
	p.registerSurface(sr)
	return sr
}

func (r *surfaceResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case surfaceDestroy:
		if r.placed && r.screen != nil {
			r.screen.Stack.Remove(r.view)
		}
		r.proto.unregisterSurface(r)
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)

	case surfaceAttach:
		bufID, err := dec.Object()
		if err != nil {
			return err
		}
		x, _ := dec.Int32()
		y, _ := dec.Int32()
		r.surface.Attach(r.proto.getBuffer(c, bufID), x, y)

	case surfaceDamage, surfaceDamageBuffer:
		x, _ := dec.Int32()
		y, _ := dec.Int32()
		w, _ := dec.Int32()
		h, _ := dec.Int32()
		r.surface.Damage(region.Rect{X: x, Y: y, W: w, H: h})

	case surfaceFrame:
		cb, err := dec.NewID()
		if err != nil {
			return err
		}
		r.surface.AddFrameCallback(func(timeMS uint32) {
			b := wire.NewMessageBuilder()
			b.PutUint32(timeMS)
			args, _ := b.Build()
			_ = c.SendEvent(cb, callbackEventDone, args, nil)
			_ = SendDeleteID(c, cb)
		})

	case surfaceSetOpaqueRegion:
		regID, err := dec.Object()
		if err != nil {
			return err
		}
		if reg := r.proto.getRegion(c, regID); reg != nil {
			r.surface.SetOpaqueRegion(reg.Clone())
		} else {
			r.surface.SetOpaqueRegion(region.Region{})
		}

	case surfaceSetInputRegion:
		regID, err := dec.Object()
		if err != nil {
			return err
		}
		if reg := r.proto.getRegion(c, regID); reg != nil {
			r.surface.SetInputRegion(reg.Clone())
		} else {
			r.surface.SetInputRegion(region.Infinite())
		}

	case surfaceCommit:
		fired, damaged := r.surface.Commit()
		if r.onCommit != nil {
			r.onCommit()
		}
		if r.screen != nil && r.view.Visible() && damaged.NotEmpty() {
			rect := r.view.GlobalRect()
			for _, dr := range damaged.Rects() {
				r.proto.Compositor.Damage(r.screen.Screen.ID, dr.Translate(rect.X, rect.Y))
			}
		}
		// frame callbacks fire at presentation time, not commit time:
		// hold them on the screen they'll be shown on until its next
		// page flip completes (dropped if the surface isn't on a screen
		// at all, matching a callback nothing will ever present).
		if r.screen != nil && len(fired) > 0 {
			r.proto.Compositor.QueueFrameCallbacks(r.screen.Screen.ID, fired)
		}

	case surfaceSetBufferTransform, surfaceSetBufferScale:
		// Buffer transform and non-1 scale are not implemented; every
		// client buffer is treated as already matching output
		// orientation and scale.
	}
	return nil
}
