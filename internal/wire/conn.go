//go:build linux

package wire

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Errors returned by Conn operations.
var (
	ErrConnClosed    = errors.New("wire: connection closed")
	ErrUnknownObject = errors.New("wire: unknown object id")
	ErrNoMessage     = errors.New("wire: no message available")
)

// Conn is one client's connection to the compositor: its socket, its
// object table, and the per-connection id allocator for server-created
// objects (outputs, the registry itself, offers, callbacks).
//
// A Conn is driven from the single-threaded server loop; the mutex only
// guards state that destructors running from other call sites (buffer
// release, client teardown) may touch concurrently with a dispatch in
// flight.
type Conn struct {
	uc   *net.UnixConn
	file *os.File
	fd   int

	mu      sync.Mutex
	objects map[ObjectID]Handler
	nextID  atomic.Uint32

	readBuf []byte
	closed  bool

	// Destroyed is set once the connection is torn down; subsystems that
	// stashed a *Conn (focus, data offers) check it before using the
	// reference again.
	Destroyed bool
}

func newConn(uc *net.UnixConn) (*Conn, error) {
	f, err := uc.File()
	if err != nil {
		return nil, fmt.Errorf("wire: conn file: %w", err)
	}
	c := &Conn{
		uc:      uc,
		file:    f,
		fd:      int(f.Fd()),
		objects: make(map[ObjectID]Handler),
		readBuf: make([]byte, maxMessageSize),
	}
	c.nextID.Store(uint32(serverIDBase))
	return c, nil
}

// Fd returns the client socket's file descriptor for epoll registration.
func (c *Conn) Fd() int { return c.fd }

// AllocID allocates a server-owned object id for this connection.
func (c *Conn) AllocID() ObjectID {
	return ObjectID(c.nextID.Add(1) - 1)
}

// Register associates an object id with the handler that will receive
// requests addressed to it. Registering over an existing id replaces the
// handler (used when a resource is destroyed and its id recycled).
func (c *Conn) Register(id ObjectID, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[id] = h
}

// Unregister removes an object id, e.g. on resource destruction.
func (c *Conn) Unregister(id ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, id)
}

// Lookup returns the handler registered for id, if any. Protocol
// adapters use this to recover the concrete resource behind an object
// id a request references (e.g. wl_data_device.set_selection's source
// argument), the same way Dispatch resolves a request's target object.
func (c *Conn) Lookup(id ObjectID) (Handler, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.objects[id]
	return h, ok
}

// SendEvent encodes and writes an event to the client, passing fds via
// SCM_RIGHTS when present.
func (c *Conn) SendEvent(objectID ObjectID, opcode Opcode, args []byte, fds []int) error {
	data, err := EncodeMessage(&Message{ObjectID: objectID, Opcode: opcode, Args: args})
	if err != nil {
		return err
	}
	if len(fds) > 0 {
		return unix.Sendmsg(c.fd, data, unix.UnixRights(fds...), nil, 0)
	}
	_, err = c.uc.Write(data)
	return err
}

// RecvMessage reads one message from the client, non-blocking; callers
// invoke this only after epoll reports the fd readable.
func (c *Conn) RecvMessage() (*Message, error) {
	oob := make([]byte, 256)
	n, oobn, _, _, err := unix.Recvmsg(c.fd, c.readBuf, oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrNoMessage
		}
		return nil, fmt.Errorf("wire: recvmsg: %w", err)
	}
	if n == 0 {
		return nil, ErrConnClosed
	}

	fds, err := parseFileDescriptors(oob[:oobn])
	if err != nil {
		return nil, err
	}

	dec := NewDecoder(c.readBuf[:n])
	dec.fds = fds
	msg, err := dec.DecodeMessage()
	if err != nil {
		return nil, err
	}
	msg.FDs = fds
	return msg, nil
}

// Dispatch reads and routes every pending message to its object's
// Handler. Unknown object ids are a client protocol error (§7 kind 1);
// the caller (server loop) decides whether to report it and continue.
func (c *Conn) Dispatch() error {
	for {
		msg, err := c.RecvMessage()
		if err != nil {
			if errors.Is(err, ErrNoMessage) {
				return nil
			}
			return err
		}

		c.mu.Lock()
		h, ok := c.objects[msg.ObjectID]
		c.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownObject, msg.ObjectID)
		}
		if err := h.HandleRequest(c, msg); err != nil {
			return err
		}
	}
}

// parseFileDescriptors extracts file descriptors from socket control messages.
func parseFileDescriptors(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}

	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("wire: parse control message: %w", err)
	}

	var fds []int
	for _, scm := range scms {
		if scm.Header.Level != unix.SOL_SOCKET || scm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		got, err := unix.ParseUnixRights(&scm)
		if err != nil {
			return nil, fmt.Errorf("wire: parse unix rights: %w", err)
		}
		fds = append(fds, got...)
	}

	return fds, nil
}

// Close tears down the connection. Registered handlers are not notified
// here; the caller (client destruction path) is responsible for running
// per-object destructors before or after calling Close.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.objects = nil
	c.Destroyed = true
	c.mu.Unlock()

	_ = c.file.Close()
	return c.uc.Close()
}
