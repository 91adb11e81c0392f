//go:build linux

package drmkms

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Event types the kernel writes to the DRM fd, mirroring struct
// drm_event's "type" field for the events this compositor cares about.
const (
	eventVblank   = 0x01
	eventFlipComplete = 0x02
)

// PageFlipEvent reports that a previously queued Flip has completed.
type PageFlipEvent struct {
	CrtcID   uint32
	Sequence uint32
	Sec, Usec uint32
}

// ReadEvents drains and decodes pending events on the DRM fd (called
// once epoll reports it readable), invoking onFlip for each
// flip-complete event it finds. It mirrors drmHandleEvent's framing:
// a sequence of { type, length } headers each followed by a
// type-specific payload.
func (d *Device) ReadEvents(onFlip func(PageFlipEvent)) error {
	buf := make([]byte, 1024)
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return fmt.Errorf("drmkms: read event: %w", err)
	}
	buf = buf[:n]

	for len(buf) >= 8 {
		typ := binary.LittleEndian.Uint32(buf[0:4])
		length := binary.LittleEndian.Uint32(buf[4:8])
		if length < 8 || int(length) > len(buf) {
			return fmt.Errorf("drmkms: malformed event (type=%d length=%d)", typ, length)
		}
		payload := buf[8:length]

		switch typ {
		case eventFlipComplete:
			if len(payload) >= 12 {
				ev := PageFlipEvent{
					Sequence: binary.LittleEndian.Uint32(payload[0:4]),
					Sec:      binary.LittleEndian.Uint32(payload[4:8]),
					Usec:     binary.LittleEndian.Uint32(payload[8:12]),
				}
				if len(payload) >= 16 {
					ev.CrtcID = binary.LittleEndian.Uint32(payload[12:16])
				}
				if onFlip != nil {
					onFlip(ev)
				}
			}
		case eventVblank:
			// Not currently consumed; the compositor schedules repaints
			// off page-flip completion, not raw vblank.
		}

		buf = buf[length:]
	}
	return nil
}
