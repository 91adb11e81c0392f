// Package wm implements the window model a shell protocol (xdg-shell
// and friends) sits on top of: stacked/tiled/fullscreen mode, position
// and size changes with the configure/acknowledge handshake xdg_surface
// uses, and interactive move/resize grabs driven by the pointer. It
// mirrors libswc's window.c, which itself sits between a shell-specific
// implementation (the window_impl vtable) and the generic manager
// upcall every new top-level gets routed through.
package wm

import (
	"github.com/swcgo/swc/internal/scene"
	"github.com/swcgo/swc/internal/seat"
)

// Mode mirrors enum window_mode.
type Mode uint8

const (
	ModeStacked Mode = iota
	ModeTiled
	ModeFullscreen
)

// Edge is a bitflag set of resize edges, matching SWC_WINDOW_EDGE_*.
type Edge uint32

const (
	EdgeNone   Edge = 0
	EdgeTop    Edge = 1 << 0
	EdgeBottom Edge = 1 << 1
	EdgeLeft   Edge = 1 << 2
	EdgeRight  Edge = 1 << 3
)

// Impl is the shell-specific half of a window: the operations that
// differ between xdg-shell, a legacy shell, or an X11 window, supplied
// by whichever protocol implementation created the Window. Configure is
// called without a nil check and must be set; any other field may be
// left nil if the shell doesn't support that operation, mirroring
// struct window_impl's optional function pointers.
type Impl struct {
	Move      func(w *Window, x, y int32)
	Configure func(w *Window, width, height uint32)
	Focus     func(w *Window)
	Unfocus   func(w *Window)
	Close     func(w *Window)
	SetMode   func(w *Window, mode Mode)
}

// Handler receives window lifecycle notifications a shell forwards to
// its client (title/app-id changes, destroy), matching
// swc_window_handler.
type Handler interface {
	TitleChanged()
	AppIDChanged()
	ParentChanged()
	Entered()
	Destroy()
}

type noopHandler struct{}

func (noopHandler) TitleChanged()   {}
func (noopHandler) AppIDChanged()   {}
func (noopHandler) ParentChanged()  {}
func (noopHandler) Entered()        {}
func (noopHandler) Destroy()        {}

// Manager is notified the first time a window becomes visible enough
// to manage, the Go analogue of swc_manager.new_window.
type Manager interface {
	NewWindow(w *Window)
}

// Window is a managed top-level surface: a positioned scene.View plus
// the mode/configure/interaction state every shell implementation
// shares.
type Window struct {
	View    *scene.View
	impl    Impl
	handler Handler
	manager Manager

	Title, AppID string
	Parent       *Window

	managed bool
	mode    Mode

	x, y, width, height int32

	move   moveState
	resize resizeState

	configurePending      bool
	configureAcknowledged bool
	configureWidth        uint32
	configureHeight       uint32
}

type moveState struct {
	interaction *interaction
	offsetX, offsetY int32
	pending          bool
	x, y             int32
}

type resizeState struct {
	interaction *interaction
	offsetX, offsetY int32
	edges            Edge
}

// New creates a managed window around an already-placed view.
func New(view *scene.View, impl Impl, manager Manager) *Window {
	rect := view.GlobalRect()
	return &Window{
		View:    view,
		impl:    impl,
		handler: noopHandler{},
		manager: manager,
		mode:    ModeStacked,
		x:       rect.X,
		y:       rect.Y,
		width:   rect.W,
		height:  rect.H,
	}
}

// SetHandler installs the shell client's lifecycle handler.
func (w *Window) SetHandler(h Handler) {
	if h == nil {
		h = noopHandler{}
	}
	w.handler = h
}

// Mode returns the window's current layout mode.
func (w *Window) Mode() Mode { return w.mode }

// Geometry returns the window's current position and size.
func (w *Window) Geometry() (x, y, width, height int32) { return w.x, w.y, w.width, w.height }

// Manage notifies the manager of this window exactly once
// (window_manage): the point at which a new top-level becomes visible
// to whatever places/decorates windows.
func (w *Window) Manage() {
	if w.managed {
		return
	}
	if w.manager != nil {
		w.manager.NewWindow(w)
	}
	w.managed = true
}

// Unmanage fires the handler's destroy callback and resets the handler,
// the cleanup window_unmanage performs when a window withdraws.
func (w *Window) Unmanage() {
	if !w.managed {
		return
	}
	w.handler.Destroy()
	w.handler = noopHandler{}
	w.managed = false
}

// SetTitle updates the window's title and notifies the handler.
func (w *Window) SetTitle(title string) {
	w.Title = title
	w.handler.TitleChanged()
}

// SetAppID updates the window's application id and notifies the handler.
func (w *Window) SetAppID(appID string) {
	w.AppID = appID
	w.handler.AppIDChanged()
}

// SetParent records a transient-for relationship and notifies the handler.
func (w *Window) SetParent(parent *Window) {
	if w.Parent == parent {
		return
	}
	w.Parent = parent
	w.handler.ParentChanged()
}

// Close asks the shell implementation to request the client close the window.
func (w *Window) Close() {
	if w.impl.Close != nil {
		w.impl.Close(w)
	}
}

// flush applies a pending move once the window's size is settled,
// mirroring window.c's flush(): a move is deferred while a configure
// is outstanding so position and size land in the same visible frame.
func (w *Window) flush() {
	if !w.move.pending {
		return
	}
	if w.impl.Move != nil {
		w.impl.Move(w, w.move.x, w.move.y)
	}
	w.View.Move(w.move.x, w.move.y)
	w.x, w.y = w.move.x, w.move.y
	w.move.pending = false
}

// SetPosition requests a new position (swc_window_set_position): applied
// immediately unless a configure is already in flight, in which case it
// waits for HandleConfigureAck/HandleBufferAttached to flush it.
func (w *Window) SetPosition(x, y int32) {
	if x == w.x && y == w.y {
		w.move.pending = false
		return
	}
	w.move.x, w.move.y = x, y
	w.move.pending = true
	if !w.configurePending {
		w.flush()
	}
}

// SetSize requests a new size (swc_window_set_size): forwarded to the
// shell implementation's Configure unless it repeats the size already
// pending or, with nothing pending, the current size. In tiled mode the
// size is tracked as pending until the next buffer is attached, so a
// duplicate request before then is suppressed.
func (w *Window) SetSize(width, height uint32) {
	if (w.configurePending && width == w.configureWidth && height == w.configureHeight) ||
		(!w.configurePending && uint32(w.width) == width && uint32(w.height) == height) {
		return
	}
	w.impl.Configure(w, width, height)
	if w.mode == ModeTiled {
		w.configureWidth, w.configureHeight = width, height
		w.configurePending = true
	}
}

// SetGeometry is SetSize followed by SetPosition, matching
// swc_window_set_geometry's ordering (size first, so a pending
// position isn't clobbered by a stale size check).
func (w *Window) SetGeometry(x, y int32, width, height uint32) {
	w.SetSize(width, height)
	w.SetPosition(x, y)
}

// SetStacked switches the window to stacked mode, flushing any pending
// move and clearing outstanding configure state first.
func (w *Window) SetStacked() {
	w.flush()
	w.configurePending = false
	w.configureWidth, w.configureHeight = 0, 0
	if w.impl.SetMode != nil {
		w.impl.SetMode(w, ModeStacked)
	}
	w.mode = ModeStacked
}

// SetTiled switches the window to tiled mode, ending any active
// interactive move/resize grab first (tiled windows aren't draggable).
func (w *Window) SetTiled(pointer *seat.Pointer) {
	w.endInteraction(pointer, &w.move.interaction)
	w.endInteraction(pointer, &w.resize.interaction)
	if w.impl.SetMode != nil {
		w.impl.SetMode(w, ModeTiled)
	}
	w.mode = ModeTiled
}

// SetFullscreen switches the window to fullscreen mode.
func (w *Window) SetFullscreen() {
	if w.impl.SetMode != nil {
		w.impl.SetMode(w, ModeFullscreen)
	}
	w.mode = ModeFullscreen
}

// HandleBufferAttached notifies the window that a new buffer has been
// committed, the Go analogue of window.c's view_handler.attach: flushes
// a pending move once the client has acknowledged the resize that
// caused it.
func (w *Window) HandleBufferAttached() {
	rect := w.View.GlobalRect()
	w.width, w.height = rect.W, rect.H
	if w.configureAcknowledged {
		w.flush()
	}
	w.configurePending = false
}

// HandleConfigureAck records that the client has acknowledged the
// outstanding configure (xdg_surface.ack_configure).
func (w *Window) HandleConfigureAck() {
	w.configureAcknowledged = true
}

// HandleResized adjusts position to keep the opposite edge fixed when a
// resize grab on the top or left edge changes the window's size, the
// counterpart of window.c's view_handler.resize.
func (w *Window) HandleResized(oldWidth, oldHeight uint32) {
	if w.resize.interaction == nil || !w.resize.interaction.active {
		return
	}
	edges := w.resize.edges
	if edges&(EdgeTop|EdgeLeft) == 0 {
		return
	}
	x, y := w.x, w.y
	if edges&EdgeLeft != 0 {
		x += int32(oldWidth) - w.width
	}
	if edges&EdgeTop != 0 {
		y += int32(oldHeight) - w.height
	}
	w.View.Move(x, y)
	w.x, w.y = x, y
}
