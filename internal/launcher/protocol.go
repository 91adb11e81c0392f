// Package launcher implements the privileged helper a compositor
// started without root hands VT switching and device opens off to: a
// small process that keeps the VT/DRM master dance out of the
// (potentially much larger) compositor binary, communicating over an
// inherited SOCK_SEQPACKET socket. It mirrors swc's launch/launch.c
// (the helper) and libswc/launch.c (the client side linked into the
// compositor).
package launcher

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// socketEnv is the environment variable the helper sets to tell the
// spawned server which inherited fd to use, matching
// SWC_LAUNCH_SOCKET_ENV.
const socketEnv = "SWC_LAUNCH_SOCKET"

// requestType mirrors swc_launch_request's anonymous enum.
type requestType uint32

const (
	requestOpenDevice requestType = iota
	requestActivateVT
)

// eventType mirrors swc_launch_event's anonymous enum.
type eventType uint32

const (
	eventResponse eventType = iota
	eventActivate
	eventDeactivate
)

// request is the fixed-size header sent with every client request;
// OPEN_DEVICE additionally appends the NUL-terminated path right after
// it in the same datagram, matching swc_launch_request's union read as plain O_* flags
// and swc_launch_request's path-in-iovec convention from the helper.
type request struct {
	Type   requestType
	Serial uint32
	Flags  int32 // open(2) flags for requestOpenDevice
	VT     uint32 // VT number for requestActivateVT
}

// event is the fixed-size response/notification sent back over the
// socket, matching swc_launch_event.
type event struct {
	Type    eventType
	Serial  uint32
	Success uint32 // 0/1, valid only when Type == eventResponse
}

const requestSize = 4 + 4 + 4 + 4
const eventSize = 4 + 4 + 4

// encodeRequest packs a request into its wire form (fixed struct
// layout, no padding concerns since every field is 4 bytes).
func encodeRequest(r request) []byte {
	buf := make([]byte, requestSize)
	putU32(buf[0:4], uint32(r.Type))
	putU32(buf[4:8], r.Serial)
	putU32(buf[8:12], uint32(r.Flags))
	putU32(buf[12:16], r.VT)
	return buf
}

func decodeRequest(buf []byte) (request, error) {
	if len(buf) < requestSize {
		return request{}, fmt.Errorf("launcher: short request (%d bytes)", len(buf))
	}
	return request{
		Type:   requestType(getU32(buf[0:4])),
		Serial: getU32(buf[4:8]),
		Flags:  int32(getU32(buf[8:12])),
		VT:     getU32(buf[12:16]),
	}, nil
}

func encodeEvent(e event) []byte {
	buf := make([]byte, eventSize)
	putU32(buf[0:4], uint32(e.Type))
	putU32(buf[4:8], e.Serial)
	putU32(buf[8:12], e.Success)
	return buf
}

func decodeEvent(buf []byte) (event, error) {
	if len(buf) < eventSize {
		return event{}, fmt.Errorf("launcher: short event (%d bytes)", len(buf))
	}
	return event{
		Type:    eventType(getU32(buf[0:4])),
		Serial:  getU32(buf[4:8]),
		Success: getU32(buf[8:12]),
	}, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// sendMsg writes payload over socket, optionally attaching fd as
// SCM_RIGHTS ancillary data, the Go analogue of send_fd.
func sendMsg(socket int, fd int, payload []byte) error {
	var rights []byte
	if fd >= 0 {
		rights = unix.UnixRights(fd)
	}
	return unix.Sendmsg(socket, payload, rights, nil, 0)
}

// recvMsg reads one datagram from socket into a buffer sized for
// payloadLen, returning any fd passed via SCM_RIGHTS (or -1), the Go
// analogue of receive_fd.
func recvMsg(socket int, payloadLen int) (payload []byte, fd int, err error) {
	buf := make([]byte, payloadLen)
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := unix.Recvmsg(socket, buf, oob, 0)
	if err != nil {
		return nil, -1, err
	}
	if n == 0 {
		return nil, -1, fmt.Errorf("launcher: socket closed")
	}

	fd = -1
	if oobn > 0 {
		cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err == nil {
			for _, c := range cmsgs {
				fds, err := unix.ParseUnixRights(&c)
				if err == nil && len(fds) > 0 {
					fd = fds[0]
					break
				}
			}
		}
	}
	return buf[:n], fd, nil
}
