//go:build linux

package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device majors used to classify an opened fd, from linux/major.h;
// device_is_input/device_is_tty/device_is_drm in the original check
// these same three numbers.
const (
	majorInput = 13
	majorTTY   = 4
	majorDRM   = 226
)

const (
	maxInputFDs = 128
	maxDRMFDs   = 16
)

// Helper is the privileged process: it owns the VT and the DRM/input
// device fds, handing them to an unprivileged server child over a
// socket pair. It mirrors launch/launch.c's global state, gathered
// into a struct instead of package globals since nothing requires
// there to be only one.
type Helper struct {
	log *slog.Logger

	serverSock *os.File // kept open so its fd number stays valid for ExtraFiles
	helperSock *os.File

	ttyFD int

	vtAltered      bool
	originalVT     int
	originalKBMode int
	originalConsoleMode int

	inputFDs []int
	drmFDs   []int
	active   bool

	noSwitch bool
}

// NewHelper creates a helper that logs to log (or slog.Default() if nil).
func NewHelper(log *slog.Logger) *Helper {
	if log == nil {
		log = slog.Default()
	}
	return &Helper{log: log, ttyFD: -1}
}

// Run configures the VT named by ttyPath (auto-detected if empty),
// spawns server with args, and services launch requests until the
// child exits, returning its exit code. noSwitch corresponds to -n:
// configure the VT but don't actually switch to it.
func (h *Helper) Run(ttyPath string, noSwitch bool, server string, args []string) (int, error) {
	h.noSwitch = noSwitch

	sockPair, err := unix.Socketpair(unix.AF_LOCAL, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		return 0, fmt.Errorf("launcher: socketpair: %w", err)
	}
	if _, _, errno := unix.Syscall(unix.SYS_FCNTL, uintptr(sockPair[0]), unix.F_SETFD, unix.FD_CLOEXEC); errno != 0 {
		return 0, fmt.Errorf("launcher: set cloexec: %w", errno)
	}
	h.helperSock = os.NewFile(uintptr(sockPair[0]), "launch-helper")
	h.serverSock = os.NewFile(uintptr(sockPair[1]), "launch-server")
	defer h.helperSock.Close()

	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, syscall.SIGCHLD, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)

	if ttyPath == "" {
		ttyPath, err = findVT()
		if err != nil {
			return 0, err
		}
	}
	h.log.Info("launcher starting", "vt", ttyPath)

	h.ttyFD, err = openTTY(ttyPath)
	if err != nil {
		return 0, err
	}
	if err := h.setupTTY(); err != nil {
		h.cleanup()
		return 0, err
	}

	cmd := exec.Command(server, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.ExtraFiles = []*os.File{h.serverSock}
	cmd.Env = append(os.Environ(), socketEnv+"=3")
	if err := cmd.Start(); err != nil {
		h.cleanup()
		return 0, fmt.Errorf("launcher: spawn %s: %w", server, err)
	}
	h.serverSock.Close()

	reqCh := make(chan decodedRequest)
	go h.readRequests(reqCh)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGCHLD:
				var ws syscall.WaitStatus
				syscall.Wait4(cmd.Process.Pid, &ws, 0, nil)
				h.cleanup()
				return ws.ExitStatus(), nil
			case syscall.SIGUSR1:
				h.deactivate()
				ioctl(h.ttyFD, vtRelDisp, 1)
			case syscall.SIGUSR2:
				ioctl(h.ttyFD, vtRelDisp, vtAckAcq)
				h.activate()
			}
		case r, ok := <-reqCh:
			if !ok {
				continue
			}
			h.handleRequest(r)
		}
	}
}

// decodedRequest is a request plus whatever path bytes followed it in
// the same datagram.
type decodedRequest struct {
	req  request
	path string
}

func (h *Helper) readRequests(out chan<- decodedRequest) {
	defer close(out)
	fd := int(h.helperSock.Fd())
	for {
		buf, _, err := recvMsg(fd, requestSize+unix.PathMax)
		if err != nil {
			return
		}
		if len(buf) < requestSize {
			continue
		}
		req, err := decodeRequest(buf[:requestSize])
		if err != nil {
			continue
		}
		path := ""
		if len(buf) > requestSize {
			path = cString(buf[requestSize:])
		}
		out <- decodedRequest{req: req, path: path}
	}
}

func cString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func (h *Helper) handleRequest(d decodedRequest) {
	resp := event{Type: eventResponse, Serial: d.req.Serial}
	respFD := -1

	switch d.req.Type {
	case requestOpenDevice:
		fd, ok := h.openDevice(d.path, int(d.req.Flags))
		if ok {
			resp.Success = 1
			respFD = fd
		}
	case requestActivateVT:
		if h.active {
			if err := ioctl(h.ttyFD, vtActivate, uintptr(d.req.VT)); err == nil {
				resp.Success = 1
			} else {
				h.log.Warn("failed to activate VT", "vt", d.req.VT, "error", err)
			}
		}
	default:
		h.log.Warn("unknown launch request", "type", d.req.Type)
	}

	if err := sendMsg(int(h.helperSock.Fd()), respFD, encodeEvent(resp)); err != nil {
		h.log.Warn("failed to send launch response", "error", err)
	}
	if respFD != -1 {
		unix.Close(respFD)
	}
}

// openDevice validates and opens a device path on behalf of the
// server, classifying the result as input or DRM the same way
// handle_socket_data's device_is_input/device_is_drm checks do, and
// refusing input devices while the session is inactive.
func (h *Helper) openDevice(path string, flags int) (fd int, ok bool) {
	const allowedFlags = unix.O_ACCMODE | unix.O_NONBLOCK | unix.O_CLOEXEC
	if path == "" || flags&^allowedFlags != 0 {
		return -1, false
	}

	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		h.log.Warn("open device failed", "path", path, "error", err)
		return -1, false
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return -1, false
	}
	major := unix.Major(st.Rdev)

	switch major {
	case majorInput:
		if !h.active || len(h.inputFDs) >= maxInputFDs {
			unix.Close(fd)
			return -1, false
		}
		h.inputFDs = append(h.inputFDs, fd)
	case majorDRM:
		if len(h.drmFDs) >= maxDRMFDs {
			unix.Close(fd)
			return -1, false
		}
		h.drmFDs = append(h.drmFDs, fd)
	default:
		unix.Close(fd)
		return -1, false
	}
	return fd, true
}

// startDevices acquires DRM master on every opened card, done on
// activation before the compositor starts mode-setting again.
func (h *Helper) startDevices() {
	for _, fd := range h.drmFDs {
		if err := ioctl(fd, ioctlSetMaster, 0); err != nil {
			h.log.Error("failed to set DRM master", "error", err)
		}
	}
}

// stopDevices releases DRM master and revokes input devices, done
// before switching away from this session so the next one can claim
// the hardware cleanly.
func (h *Helper) stopDevices() {
	for _, fd := range h.drmFDs {
		ioctl(fd, ioctlDropMaster, 0)
	}
	for _, fd := range h.inputFDs {
		ioctl(fd, evIOCRevoke, 0)
		unix.Close(fd)
	}
	h.inputFDs = h.inputFDs[:0]
}

func (h *Helper) activate() {
	h.startDevices()
	sendMsg(int(h.helperSock.Fd()), -1, encodeEvent(event{Type: eventActivate}))
	h.active = true
}

func (h *Helper) deactivate() {
	sendMsg(int(h.helperSock.Fd()), -1, encodeEvent(event{Type: eventDeactivate}))
	h.stopDevices()
	h.active = false
}

// cleanup restores the VT to its pre-launch state and switches back to
// whichever VT was active before, mirroring launch.c's cleanup().
func (h *Helper) cleanup() {
	if !h.vtAltered {
		return
	}
	mode := vtMode{Mode: vtAuto}
	ioctlPtr(h.ttyFD, vtSetMode, unsafe.Pointer(&mode))
	ioctl(h.ttyFD, kdSetMode, uintptr(h.originalConsoleMode))
	ioctl(h.ttyFD, kdSKBMode, uintptr(h.originalKBMode))
	h.stopDevices()
	ioctl(h.ttyFD, vtActivate, uintptr(h.originalVT))
	h.vtAltered = false
}

// setupTTY claims the VT in graphics mode and process-controlled
// switch mode, the Go analogue of launch.c's setup_tty.
func (h *Helper) setupTTY() error {
	var st unix.Stat_t
	if err := unix.Fstat(h.ttyFD, &st); err != nil {
		return fmt.Errorf("launcher: fstat tty: %w", err)
	}
	vt := int(unix.Minor(st.Rdev))
	if unix.Major(st.Rdev) != majorTTY || vt == 0 {
		return fmt.Errorf("launcher: not a valid VT")
	}

	var state vtStat
	if err := ioctlPtr(h.ttyFD, vtGetState, unsafe.Pointer(&state)); err != nil {
		return fmt.Errorf("launcher: VT_GETSTATE: %w", err)
	}
	h.originalVT = int(state.Active)

	var kbMode, consoleMode int32
	if err := ioctlPtr(h.ttyFD, kdGKBMode, unsafe.Pointer(&kbMode)); err != nil {
		kbMode = kXlate
	}
	if err := ioctlPtr(h.ttyFD, kdGetMode, unsafe.Pointer(&consoleMode)); err != nil {
		consoleMode = kdText
	}
	h.originalKBMode = int(kbMode)
	h.originalConsoleMode = int(consoleMode)

	ioctl(h.ttyFD, kdSKBMode, kOff)
	if err := ioctl(h.ttyFD, kdSetMode, kdGraphics); err != nil {
		return fmt.Errorf("launcher: KDSETMODE KD_GRAPHICS: %w", err)
	}

	mode := vtMode{Mode: vtProcess, Relsig: int16(syscall.SIGUSR1), Acqsig: int16(syscall.SIGUSR2)}
	if err := ioctlPtr(h.ttyFD, vtSetMode, unsafe.Pointer(&mode)); err != nil {
		ioctl(h.ttyFD, kdSetMode, uintptr(h.originalConsoleMode))
		return fmt.Errorf("launcher: VT_SETMODE: %w", err)
	}

	if vt == h.originalVT {
		h.activate()
	} else if !h.noSwitch {
		if err := ioctl(h.ttyFD, vtActivate, uintptr(vt)); err != nil {
			return fmt.Errorf("launcher: VT_ACTIVATE: %w", err)
		}
		if err := ioctl(h.ttyFD, vtWaitActive, uintptr(vt)); err != nil {
			return fmt.Errorf("launcher: VT_WAITACTIVE: %w", err)
		}
	}

	h.vtAltered = true
	return nil
}

// findVT picks a VT the way find_vt does: an existing X/Wayland session
// always gets a fresh VT; otherwise XDG_VTNR is reused if set, falling
// back to querying the kernel for a free one.
func findVT() (string, error) {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		if vtnr := os.Getenv("XDG_VTNR"); vtnr != "" {
			return "/dev/tty" + vtnr, nil
		}
	}

	fd, err := unix.Open("/dev/tty0", unix.O_RDWR, 0)
	if err != nil {
		return "", fmt.Errorf("launcher: open /dev/tty0: %w", err)
	}
	defer unix.Close(fd)

	var vtNum int32
	if err := ioctlPtr(fd, vtOpenQry, unsafe.Pointer(&vtNum)); err != nil {
		return "", fmt.Errorf("launcher: VT_OPENQRY: %w", err)
	}
	return "/dev/tty" + strconv.Itoa(int(vtNum)), nil
}

// openTTY opens tty, reusing stdin's fd if it already refers to the
// same VT (open_tty's ttyname comparison).
func openTTY(tty string) (int, error) {
	if link, err := os.Readlink("/proc/self/fd/0"); err == nil && link == tty {
		return int(os.Stdin.Fd()), nil
	}
	fd, err := unix.Open(tty, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return -1, fmt.Errorf("launcher: open %s: %w", tty, err)
	}
	return fd, nil
}

const (
	ioctlSetMaster  = 0x6400 | 0x1e
	ioctlDropMaster = 0x6400 | 0x1f
)
