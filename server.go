// Package swc implements a minimal Wayland compositor: a single binary
// that scans DRM/KMS outputs, aggregates evdev input into one seat, and
// serves the Wayland wire protocol over a Unix socket, the same overall
// shape as swc itself (compositor.c's main plus the protocol modules it
// wires together) reworked as one Go package instead of a libwayland
// plugin.
package swc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/swcgo/swc/internal/bindings"
	"github.com/swcgo/swc/internal/composite"
	"github.com/swcgo/swc/internal/datadevice"
	"github.com/swcgo/swc/internal/drmkms"
	"github.com/swcgo/swc/internal/launcher"
	"github.com/swcgo/swc/internal/protocol"
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/render"
	"github.com/swcgo/swc/internal/seat"
	"github.com/swcgo/swc/internal/wire"
	"github.com/swcgo/swc/internal/wm"
	"github.com/swcgo/swc/internal/xkb"
	"golang.org/x/sys/unix"
)

// Server is a running (or not-yet-started) compositor instance: every
// engine package New/Add call in one place wires up, plus the epoll
// loop that drives them all from one goroutine, the same single-
// threaded event-loop model swc's own wl_event_loop runs.
type Server struct {
	Config Config
	Log    *slog.Logger

	launcherClient *launcher.Client
	drm            *drmkms.Device
	screens        []*drmkms.Screen
	screenByCrtc   map[uint32]uint32

	seat     *seat.Seat
	keymap   *xkb.Keymap
	bindings *bindings.Table

	compositor *composite.Compositor
	renderer   *render.Renderer
	dataDevice *datadevice.Device
	manager    *wm.GridManager
	proto      *protocol.Protocol

	listener *wire.Listener

	epfd    int
	conns   map[int]*wire.Conn
	running bool

	// quitFD is an eventfd registered in the epoll set so Quit can wake
	// runEventLoop from another goroutine without a polling timeout.
	quitFD int
}

// NewServer wires together a Server from cfg without opening any
// device or socket yet; call Run to bring it up.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Seat == "" {
		cfg = cfg.WithSeat("seat0")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	quitFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("swc: create quit eventfd: %w", err)
	}

	s := &Server{
		Config:   cfg,
		Log:      log,
		seat:     seat.New(cfg.Seat),
		bindings: bindings.NewTable(),
		conns:    make(map[int]*wire.Conn),
		quitFD:   quitFD,
	}
	addDefaultBindings(s.bindings, s)
	return s, nil
}

// Run brings up DRM, input, and the Wayland socket, and blocks serving
// clients until Close is called or an unrecoverable error occurs.
func (s *Server) Run() error {
	if s.running {
		return ErrAlreadyRunning
	}

	if err := s.openLauncher(); err != nil {
		return err
	}
	if err := s.openDRM(); err != nil {
		return err
	}
	if err := s.probeScreens(); err != nil {
		return err
	}
	if err := s.seat.AddDevices(); err != nil {
		s.Log.Warn("seat: scanning input devices", "error", err)
	}
	if len(s.seat.Devices()) == 0 {
		s.Log.Warn("no input devices found; compositor will be unresponsive to input")
	}

	km, err := xkb.Compile()
	if err != nil {
		return fmt.Errorf("swc: compile keymap: %w", err)
	}
	s.keymap = km
	s.seat.Keyboard.AddHandler(s.bindings)

	s.renderer = render.New()
	s.compositor = composite.New(s.renderer, s.Config.RepaintDebounce)
	s.compositor.OnSwapError = s.handleSwapError
	s.dataDevice = datadevice.NewDevice()
	s.manager = wm.NewGridManager(s.tileGeometry)

	globals := wire.NewGlobalSet()
	s.proto = protocol.New(globals, s.compositor, s.seat, s.dataDevice, s.bindings, s.keymap)
	s.proto.Manager = s.manager
	s.proto.DRM = s.drm
	s.proto.RegisterGlobals()

	for _, scr := range s.screens {
		s.renderer.AddScreen(scr.ID, scr)
		s.proto.AddScreen(scr)
		scr.OnUsableGeometryChanged = s.manager.Rearrange
	}

	ln, err := wire.Listen(s.socketPath())
	if err != nil {
		return fmt.Errorf("swc: listen: %w", err)
	}
	s.listener = ln
	os.Setenv("WAYLAND_DISPLAY", filepath.Base(ln.Path()))

	if err := s.runEventLoop(); err != nil {
		s.Close()
		return err
	}
	return nil
}

// socketPath resolves the Wayland display socket path under
// XDG_RUNTIME_DIR, picking the first free wayland-N if
// Config.SocketName is empty, mirroring wl_display_add_socket_auto.
func (s *Server) socketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/run/user/0"
	}
	if s.Config.SocketName != "" {
		return filepath.Join(dir, s.Config.SocketName)
	}
	for i := 0; i < 32; i++ {
		name := fmt.Sprintf("wayland-%d", i)
		if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, os.ErrNotExist) {
			return filepath.Join(dir, name)
		}
	}
	return filepath.Join(dir, "wayland-0")
}

// openLauncher connects to the privileged launcher helper this process
// was started under, if any; a process with its own DRM/VT permissions
// (running as root, or granted the right capabilities directly) simply
// has no launch socket to find and proceeds unprivileged-helper-free.
func (s *Server) openLauncher() error {
	client, ok, err := launcher.NewClient()
	if err != nil {
		return fmt.Errorf("swc: launcher client: %w", err)
	}
	if !ok {
		return nil
	}
	s.launcherClient = client
	s.launcherClient.OnActivate = s.handleVTActivate
	s.launcherClient.OnDeactivate = s.handleVTDeactivate
	go func() {
		if err := s.launcherClient.Serve(); err != nil {
			s.Log.Debug("launcher client stopped", "error", err)
		}
	}()
	if s.Config.VT != 0 {
		if err := s.launcherClient.ActivateVT(uint32(s.Config.VT)); err != nil {
			s.Log.Warn("activate VT", "vt", s.Config.VT, "error", err)
		}
	}
	return nil
}

// openDRM opens the primary GPU's DRM node, through the launcher if one
// is attached (the server itself has no permission to open
// /dev/dri/cardN directly in that configuration) or directly otherwise.
func (s *Server) openDRM() error {
	if s.launcherClient != nil {
		card, err := drmkms.FindPrimaryCard()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoGPU, err)
		}
		path := filepath.Join("/dev/dri", card)
		fd, err := s.launcherClient.OpenDevice(path, unix.O_RDWR)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoGPU, err)
		}
		dev, err := drmkms.OpenFD(fd, path)
		if err != nil {
			unix.Close(fd)
			return fmt.Errorf("%w: %v", ErrNoGPU, err)
		}
		s.drm = dev
	} else {
		dev, err := drmkms.OpenPrimary()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoGPU, err)
		}
		s.drm = dev
	}
	return s.drm.SetMaster()
}

// probeScreens mode-sets every connected output and lays them out left
// to right in global screen space, the same simple layout
// swc_screen_add's initial placement uses before any configuration
// tool repositions them.
func (s *Server) probeScreens() error {
	screens, err := s.drm.Probe()
	if err != nil {
		return fmt.Errorf("swc: probe screens: %w", err)
	}
	if len(screens) == 0 {
		return fmt.Errorf("%w: no connected outputs", ErrNoGPU)
	}
	s.screens = screens
	s.screenByCrtc = make(map[uint32]uint32, len(screens))
	for _, scr := range screens {
		s.screenByCrtc[scr.CrtcID] = scr.ID
	}
	return nil
}

// handleFlipComplete is the onFlip callback passed to s.drm.ReadEvents:
// it resolves the completed flip's CRTC back to a screen id and hands
// the event to the compositor, which releases the frontbuffer (by
// clearing its pending-flip bit so the next repaint can swap again)
// and fires that screen's queued frame callbacks at the flip's
// reported time.
func (s *Server) handleFlipComplete(ev drmkms.PageFlipEvent) {
	screenID, ok := s.screenByCrtc[ev.CrtcID]
	if !ok {
		return
	}
	s.compositor.HandleFlipComplete(screenID, flipTimestampMS(ev))
}

// flipTimestampMS converts a page-flip event's CLOCK_MONOTONIC
// seconds/microseconds pair, as the kernel reports it, into the single
// millisecond value wl_callback.done and wl_surface.frame expect.
func flipTimestampMS(ev drmkms.PageFlipEvent) uint32 {
	return ev.Sec*1000 + ev.Usec/1000
}

// handleSwapError reacts to a repaint's page flip failing. EACCES means
// another VT currently holds DRM master (we lost it, or never got it
// back), the same condition handleVTDeactivate guards against; route it
// into the same deactivation path so input freezes and every screen's
// pending flip is abandoned instead of silently wedging repaints.
func (s *Server) handleSwapError(screenID uint32, err error) {
	if !errors.Is(err, unix.EACCES) {
		return
	}
	s.deactivate()
}

// tileGeometry returns the union of every screen's usable geometry, the
// area GridManager lays windows out into.
func (s *Server) tileGeometry() region.Rect {
	if len(s.screens) == 0 {
		return region.Rect{}
	}
	b := s.screens[0].UsableGeometry()
	for _, scr := range s.screens[1:] {
		g := scr.UsableGeometry()
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
	return b
}

// handleVTActivate re-acquires DRM master, resumes input dispatch, and
// repaints every screen after switching back onto this compositor's VT.
func (s *Server) handleVTActivate() {
	if s.drm != nil {
		_ = s.drm.SetMaster()
	}
	s.seat.Unfreeze()
	for _, scr := range s.screens {
		s.compositor.Damage(scr.ID, scr.Geometry())
	}
}

// handleVTDeactivate is the launcher's VT-switch-away notification; it
// just runs the same deactivation an EACCES from a failed flip does.
func (s *Server) handleVTDeactivate() {
	s.deactivate()
}

// deactivate gives up this compositor's claim on the display: DRM
// master is dropped (so the VT we're leaving, or whoever revoked us,
// can take it), input dispatch is frozen, and every screen's pending
// page flip is abandoned since the kernel will never deliver its
// completion event once access is gone.
func (s *Server) deactivate() {
	if s.drm != nil {
		_ = s.drm.DropMaster()
	}
	s.seat.Freeze()
	if s.compositor != nil {
		for _, scr := range s.screens {
			s.compositor.AbandonPendingFlip(scr.ID)
		}
	}
}

// Quit stops the event loop; Run returns nil once the current
// iteration finishes.
func (s *Server) Quit() {
	if !s.running {
		return
	}
	buf := make([]byte, 8)
	buf[0] = 1
	_, _ = unix.Write(s.quitFD, buf)
}

// Close tears down every resource Run opened. Safe to call after Run
// returns, or concurrently to force it to stop.
func (s *Server) Close() error {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for _, c := range s.conns {
		_ = c.Close()
	}
	if s.keymap != nil {
		_ = s.keymap.Close()
	}
	for _, scr := range s.screens {
		scr.Close()
	}
	if s.drm != nil {
		_ = s.drm.Close()
	}
	if s.launcherClient != nil {
		_ = s.launcherClient.Close()
	}
	if s.epfd != 0 {
		_ = unix.Close(s.epfd)
	}
	if s.quitFD != 0 {
		_ = unix.Close(s.quitFD)
	}
	return nil
}

// runEventLoop is the compositor's single-threaded dispatch loop: one
// epoll set holding the listening socket, every client connection,
// every input device, the DRM fd, and quitFD, the Go analogue of the
// wl_event_loop every fd in swc is added to.
func (s *Server) runEventLoop() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("swc: epoll_create1: %w", err)
	}
	s.epfd = epfd

	listenFD, err := s.listener.Fd()
	if err != nil {
		return fmt.Errorf("swc: listener fd: %w", err)
	}
	if err := s.epollAdd(listenFD); err != nil {
		return err
	}
	if err := s.epollAdd(s.quitFD); err != nil {
		return err
	}
	if err := s.epollAdd(s.drm.Fd()); err != nil {
		return err
	}

	devByFD := make(map[int]*seat.Device, len(s.seat.Devices()))
	for _, dev := range s.seat.Devices() {
		if err := s.epollAdd(dev.Fd()); err != nil {
			s.Log.Warn("register input device", "path", dev.Path(), "error", err)
			continue
		}
		devByFD[dev.Fd()] = dev
	}

	s.running = true
	events := make([]unix.EpollEvent, 32)
	for s.running {
		n, err := unix.EpollWait(epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("swc: epoll_wait: %w", err)
		}
		for _, ev := range events[:n] {
			fd := int(ev.Fd)
			switch {
			case fd == s.quitFD:
				s.running = false
			case fd == listenFD:
				s.acceptConn()
			case fd == s.drm.Fd():
				_ = s.drm.ReadEvents(s.handleFlipComplete)
			case devByFD[fd] != nil:
				if err := s.seat.Dispatch(devByFD[fd], s.proto.Clamp,
					s.proto.DeliverKey, s.proto.DeliverPointerMotion, s.proto.DeliverPointerButton); err != nil {
					s.epollDel(fd)
					devByFD[fd].Close()
					delete(devByFD, fd)
				}
			default:
				if c, ok := s.conns[fd]; ok {
					if err := c.Dispatch(); err != nil {
						s.epollDel(fd)
						delete(s.conns, fd)
						_ = c.Close()
					}
				}
			}
		}
	}
	return nil
}

// acceptConn accepts one pending client, bootstraps wl_display on it,
// and registers its fd for dispatch.
func (s *Server) acceptConn() {
	c, err := s.listener.Accept()
	if err != nil {
		s.Log.Warn("accept client", "error", err)
		return
	}
	protocol.Bootstrap(c, s.proto.Globals)
	fd := c.Fd()
	s.conns[fd] = c
	if err := s.epollAdd(fd); err != nil {
		s.Log.Warn("register client fd", "error", err)
	}
}

func (s *Server) epollAdd(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("swc: epoll_ctl add %d: %w", fd, err)
	}
	return nil
}

func (s *Server) epollDel(fd int) {
	_ = unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}
