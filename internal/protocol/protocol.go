//go:build linux

// Package protocol implements the Wayland wire-protocol globals a
// client actually talks to: wl_compositor, wl_shm, wl_output, wl_seat,
// wl_data_device_manager, xdg_wm_base, and the compositor-private
// swc_panel_manager, each translating wire requests into calls on the
// already-built scene/buffer/seat/wm/datadevice/shell engine packages
// and translating engine state changes back into events. It plays the
// role split between swc_compositor.c, swc_seat.c, swc_data_device.c,
// xdg_shell.c, and panel.c in the original: this package is the
// wl_resource-facing half, the rest of internal/ is the
// protocol-agnostic half it drives.
package protocol

import (
	"sync"

	"github.com/swcgo/swc/internal/bindings"
	"github.com/swcgo/swc/internal/composite"
	"github.com/swcgo/swc/internal/datadevice"
	"github.com/swcgo/swc/internal/drmkms"
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
	"github.com/swcgo/swc/internal/seat"
	"github.com/swcgo/swc/internal/wire"
	"github.com/swcgo/swc/internal/wm"
	"github.com/swcgo/swc/internal/xkb"
)

// ScreenBinding ties one drmkms.Screen into the protocol layer: the
// view stack its repaints walk and the wl_output global advertising it.
type ScreenBinding struct {
	Screen *drmkms.Screen
	Stack  *scene.Stack
	Global *wire.Global
}

// resKey identifies a client-created resource (a wl_buffer or
// wl_region object) by the connection that owns it and its object id;
// two different clients are free to reuse the same numeric id.
type resKey struct {
	c  *wire.Conn
	id wire.ObjectID
}

// Protocol aggregates every engine dependency the wire-protocol globals
// need and tracks the per-connection resource tables (buffers, regions)
// wl_surface's attach/set_opaque_region/set_input_region requests
// reference by object id rather than by value.
type Protocol struct {
	Globals    *wire.GlobalSet
	Compositor *composite.Compositor
	Seat       *seat.Seat
	DataDevice *datadevice.Device
	Bindings   *bindings.Table
	Keymap     *xkb.Keymap

	// DRM is the device zwp_linux_dmabuf_v1 imports client buffers
	// through; left nil disables AddLinuxDmabuf (no GPU, e.g. in tests).
	DRM *drmkms.Device

	// Manager is notified the first time each xdg_toplevel maps; left
	// nil until the composition root installs a placement policy, in
	// which case newly mapped windows simply keep whatever position
	// their view already had.
	Manager wm.Manager

	// Screens holds every registered output; Screens[0] is the primary
	// screen new top-level windows and docked panels are placed on
	// until a tiling/placement policy distributes them across outputs.
	Screens []*ScreenBinding

	mu          sync.Mutex
	nextSurface uint64
	serial      uint32
	buffers     map[resKey]scene.BufferRef
	regions     map[resKey]*region.Region

	// surfaces indexes every live wl_surface by its scene.Surface id, so
	// pointer/keyboard focus routing (input.go) can translate a hit-test
	// result back into the owning connection and wire object id.
	surfaces map[uint64]*surfaceResource

	// pointers/keyboards index every bound wl_pointer/wl_keyboard by the
	// connection that created them, since focus delivery only ever
	// targets the resources belonging to whichever client owns the
	// focused surface.
	pointers  map[*wire.Conn][]*pointerResource
	keyboards map[*wire.Conn][]*keyboardResource

	// dataDevices indexes the wl_data_device ClientID a connection was
	// given (datadevice.ClientID is just that object's id), so a
	// selection change can be offered to whichever connection currently
	// holds keyboard focus without datadevice needing to know about
	// wire connections at all.
	dataDevices map[*wire.Conn]datadevice.ClientID
}

// New creates a Protocol ready to have its globals registered with
// RegisterGlobals.
func New(globals *wire.GlobalSet, comp *composite.Compositor, st *seat.Seat, dd *datadevice.Device, bt *bindings.Table, km *xkb.Keymap) *Protocol {
	p := &Protocol{
		Globals:     globals,
		Compositor:  comp,
		Seat:        st,
		DataDevice:  dd,
		Bindings:    bt,
		Keymap:      km,
		buffers:     make(map[resKey]scene.BufferRef),
		regions:     make(map[resKey]*region.Region),
		surfaces:    make(map[uint64]*surfaceResource),
		pointers:    make(map[*wire.Conn][]*pointerResource),
		keyboards:   make(map[*wire.Conn][]*keyboardResource),
		dataDevices: make(map[*wire.Conn]datadevice.ClientID),
	}
	dd.OnSelectionChanged(p.offerSelectionToFocus)
	return p
}

// offerSelectionToFocus re-announces the current selection to whichever
// connection's data device belongs to the surface holding keyboard
// focus, the same trigger swc_seat's keyboard_focus_listener uses to
// call data_device_offer_selection on every focus change and every
// selection change.
func (p *Protocol) offerSelectionToFocus() {
	focus, ok := p.Seat.Keyboard.Focus().(*scene.Surface)
	if !ok || focus == nil {
		return
	}
	p.mu.Lock()
	sr := p.surfaces[focus.ID()]
	var client datadevice.ClientID
	var hasClient bool
	if sr != nil {
		client, hasClient = p.dataDevices[sr.conn]
	}
	p.mu.Unlock()
	if !hasClient {
		return
	}
	p.DataDevice.OfferSelection(client)
}

func (p *Protocol) setDataDeviceClient(c *wire.Conn, client datadevice.ClientID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dataDevices[c] = client
}

// nextSerial returns a fresh event serial, the same small monotonic
// counter real compositors stamp every input event and configure with
// so a client can correlate requests (ack_configure, set_selection)
// back to the event that triggered them.
func (p *Protocol) nextSerial() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.serial++
	return p.serial
}

func (p *Protocol) registerSurface(sr *surfaceResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surfaces[sr.surface.ID()] = sr
}

func (p *Protocol) unregisterSurface(sr *surfaceResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.surfaces, sr.surface.ID())
}

func (p *Protocol) addPointerResource(c *wire.Conn, pr *pointerResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointers[c] = append(p.pointers[c], pr)
}

func (p *Protocol) removePointerResource(c *wire.Conn, pr *pointerResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.pointers[c]
	for i, v := range list {
		if v == pr {
			p.pointers[c] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (p *Protocol) addKeyboardResource(c *wire.Conn, kr *keyboardResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keyboards[c] = append(p.keyboards[c], kr)
}

func (p *Protocol) removeKeyboardResource(c *wire.Conn, kr *keyboardResource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.keyboards[c]
	for i, v := range list {
		if v == kr {
			p.keyboards[c] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// AddScreen registers scr's view stack with the compositor and
// advertises it as a wl_output global.
func (p *Protocol) AddScreen(scr *drmkms.Screen) *ScreenBinding {
	sb := &ScreenBinding{Screen: scr, Stack: p.Compositor.AddScreen(scr.ID)}
	sb.Global = p.Globals.Add("wl_output", 2, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		bindOutput(c, id, sb)
	})
	p.Screens = append(p.Screens, sb)
	return sb
}

// WindowManager returns the installed placement policy, or a no-op
// manager if none has been set yet.
func (p *Protocol) WindowManager() wm.Manager {
	if p.Manager != nil {
		return p.Manager
	}
	return noopManager{}
}

type noopManager struct{}

func (noopManager) NewWindow(*wm.Window) {}

// primaryScreen returns the output new windows and panels place onto,
// or nil if no screen has been probed yet.
func (p *Protocol) primaryScreen() *ScreenBinding {
	if len(p.Screens) == 0 {
		return nil
	}
	return p.Screens[0]
}

func (p *Protocol) allocSurfaceID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSurface++
	return p.nextSurface
}

func (p *Protocol) setBuffer(c *wire.Conn, id wire.ObjectID, ref scene.BufferRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[resKey{c, id}] = ref
}

func (p *Protocol) getBuffer(c *wire.Conn, id wire.ObjectID) scene.BufferRef {
	if id == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffers[resKey{c, id}]
}

func (p *Protocol) dropBuffer(c *wire.Conn, id wire.ObjectID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buffers, resKey{c, id})
}

func (p *Protocol) setRegion(c *wire.Conn, id wire.ObjectID, r *region.Region) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regions[resKey{c, id}] = r
}

func (p *Protocol) getRegion(c *wire.Conn, id wire.ObjectID) *region.Region {
	if id == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regions[resKey{c, id}]
}

func (p *Protocol) dropRegion(c *wire.Conn, id wire.ObjectID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.regions, resKey{c, id})
}

// decoderFor builds a Decoder over msg, wired to its out-of-band file
// descriptors so a request with an fd argument (wl_shm.create_pool) can
// call Decoder.FD after decoding the preceding int/uint arguments.
func decoderFor(msg *wire.Message) *wire.Decoder {
	d := wire.NewDecoder(msg.Args)
	d.Reset(msg.Args, msg.FDs)
	return d
}
