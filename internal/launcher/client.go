package launcher

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"
)

// Client is the server-side handle to a Helper's socket, the Go
// analogue of libswc/launch.c's static `launch` state: it turns
// OPEN_DEVICE/ACTIVATE_VT requests into blocking calls and dispatches
// ACTIVATE/DEACTIVATE notifications to callbacks as they arrive.
type Client struct {
	sock *os.File

	mu         sync.Mutex // serializes request/response round-trips
	nextSerial uint32

	OnActivate   func()
	OnDeactivate func()
}

// NewClient opens a Client from the fd the environment names in
// SWC_LAUNCH_SOCKET_ENV, set by a Helper before it spawned this
// process. It returns (nil, false) if the variable isn't set, meaning
// this process was not started under a launch helper (e.g. it already
// has the permissions it needs, running as root or with the right
// capabilities directly).
func NewClient() (*Client, bool, error) {
	s, ok := os.LookupEnv(socketEnv)
	if !ok {
		return nil, false, nil
	}
	os.Unsetenv(socketEnv)

	fd, err := strconv.Atoi(s)
	if err != nil {
		return nil, false, fmt.Errorf("launcher: invalid %s=%q", socketEnv, s)
	}
	if _, _, errno := unix.Syscall(unix.SYS_FCNTL, uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); errno != 0 {
		return nil, false, fmt.Errorf("launcher: set cloexec: %w", errno)
	}

	return &Client{sock: os.NewFile(uintptr(fd), "launch-client")}, true, nil
}

// Serve reads launch events off the socket until it's closed or an
// error occurs, dispatching ACTIVATE/DEACTIVATE to OnActivate/
// OnDeactivate. It is meant to run in its own goroutine for the
// lifetime of the process, the same role wl_event_loop_add_fd's
// callback plays in the original.
func (c *Client) Serve() error {
	for {
		buf, _, err := recvMsg(int(c.sock.Fd()), eventSize)
		if err != nil {
			return err
		}
		ev, err := decodeEvent(buf)
		if err != nil {
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev event) {
	switch ev.Type {
	case eventActivate:
		if c.OnActivate != nil {
			c.OnActivate()
		}
	case eventDeactivate:
		if c.OnDeactivate != nil {
			c.OnDeactivate()
		}
	}
}

// Close releases the socket fd.
func (c *Client) Close() error { return c.sock.Close() }

// OpenDevice asks the helper to open path with flags and hand back the
// resulting fd, the Go analogue of launch_open_device. flags must be
// restricted to O_ACCMODE|O_NONBLOCK|O_CLOEXEC, matching the helper's
// validation.
func (c *Client) OpenDevice(path string, flags int) (int, error) {
	req := request{Type: requestOpenDevice, Flags: int32(flags)}
	payload := append(encodeRequest(req), append([]byte(path), 0)...)

	resp, fd, err := c.roundTrip(&req, payload)
	if err != nil {
		return -1, err
	}
	if resp.Success == 0 {
		return -1, fmt.Errorf("launcher: open device %s refused", path)
	}
	return fd, nil
}

// ActivateVT asks the helper to switch to vt, the Go analogue of
// launch_activate_vt.
func (c *Client) ActivateVT(vt uint32) error {
	req := request{Type: requestActivateVT, VT: vt}
	resp, fd, err := c.roundTrip(&req, encodeRequest(req))
	if fd != -1 {
		unix.Close(fd)
	}
	if err != nil {
		return err
	}
	if resp.Success == 0 {
		return fmt.Errorf("launcher: activate VT %d refused", vt)
	}
	return nil
}

// roundTrip gives req a fresh serial, writes it into payload's header,
// sends payload and blocks until the matching response arrives, forwarding any
// ACTIVATE/DEACTIVATE events it sees along the way exactly as
// send_request's "handle_event(event)" fallthrough does.
func (c *Client) roundTrip(req *request, payload []byte) (event, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSerial++
	req.Serial = c.nextSerial
	// re-encode now that Serial is set; the header is always the first requestSize bytes.
	copy(payload[:requestSize], encodeRequest(*req))

	if err := sendMsg(int(c.sock.Fd()), -1, payload); err != nil {
		return event{}, -1, fmt.Errorf("launcher: send request: %w", err)
	}

	for {
		buf, fd, err := recvMsg(int(c.sock.Fd()), eventSize)
		if err != nil {
			return event{}, -1, fmt.Errorf("launcher: receive response: %w", err)
		}
		ev, err := decodeEvent(buf)
		if err != nil {
			continue
		}
		if ev.Type == eventResponse && ev.Serial == req.Serial {
			return ev, fd, nil
		}
		if fd != -1 {
			unix.Close(fd)
		}
		c.dispatch(ev)
	}
}
