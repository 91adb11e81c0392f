//go:build linux

// Package wire implements the server side of the Wayland wire protocol:
// object-id allocation, message framing, and global advertisement. The
// request tables of individual shell protocols (wl_shell, xdg-shell,
// subsurface, data-device, decoration, panel) are not implemented here,
// only the framing they are built out of.
//
// # Wire format
//
// Messages consist of a header (object ID + size/opcode) followed by
// arguments, all little-endian 32-bit words:
//
//	+--------+--------+--------+--------+
//	| Object ID (4 bytes)               |
//	+--------+--------+--------+--------+
//	| Size (16 bits) | Opcode (16 bits) |
//	+--------+--------+--------+--------+
//	| Arguments...                      |
//	+--------+--------+--------+--------+
//
// # Object IDs
//
// Clients allocate ids from 1 up; the server allocates from the top of the
// range (serverIDBase and up) for objects it creates unprompted (outputs,
// globals created by request). This mirrors libwayland's split so ids
// never collide without coordination.
//
// # File descriptors
//
// Buffers and keymaps cross the socket via SCM_RIGHTS, handled with
// golang.org/x/sys/unix (Sendmsg/Recvmsg, UnixRights).
package wire
