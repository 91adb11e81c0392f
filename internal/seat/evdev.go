//go:build linux

// Package seat aggregates evdev input devices into the keyboard and
// pointer state machines the rest of the compositor consumes: pressed-
// key/button tracking, modifier state, and a pluggable focus target per
// device class. Handling a device's raw events is split from deciding
// what a key or button means to the compositor, the same split
// evdev_device.c (device I/O) and seat.c (routing) keep.
package seat

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Linux input event types/codes this package interprets (a small subset
// of linux/input-event-codes.h).
const (
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	relX = 0x00
	relY = 0x01

	btnMiscStart = 0x100 // BTN_MISC
	btnGearUp    = 0x151 // BTN_GEAR_UP
	btnTriggerHappy = 0x2c0
)

// rawInputEventSize is sizeof(struct input_event) on a 64-bit kernel:
// two 8-byte timeval fields, two 2-byte fields, and a 4-byte value,
// padded to a multiple of 8.
const rawInputEventSize = 24

// InputEvent is a decoded evdev event in compositor-relative time.
type InputEvent struct {
	Time  time.Duration
	Type  uint16
	Code  uint16
	Value int32
}

func isButtonCode(code uint16) bool {
	c := int(code)
	return (c >= btnMiscStart && c <= btnGearUp) || c >= btnTriggerHappy
}

// Device is one open evdev input device (/dev/input/eventN).
type Device struct {
	fd   int
	path string
}

// OpenDevice opens an evdev node for reading.
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("seat: open %s: %w", path, err)
	}
	return &Device{fd: fd, path: path}, nil
}

// Fd returns the device's file descriptor, for epoll registration.
func (d *Device) Fd() int { return d.fd }

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// Close closes the device.
func (d *Device) Close() error { return unix.Close(d.fd) }

// ReadEvents drains pending events from the device, mirroring
// process_events: read a batch of raw input_events, decode each, and
// hand it to onEvent in order.
func (d *Device) ReadEvents(onEvent func(InputEvent)) error {
	buf := make([]byte, rawInputEventSize*32)
	for {
		n, err := unix.Read(d.fd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return fmt.Errorf("seat: read %s: %w", d.path, err)
		}
		if n <= 0 {
			return nil
		}
		for off := 0; off+rawInputEventSize <= n; off += rawInputEventSize {
			onEvent(decodeEvent(buf[off : off+rawInputEventSize]))
		}
	}
}

func decodeEvent(b []byte) InputEvent {
	sec := int64(binary.LittleEndian.Uint64(b[0:8]))
	usec := int64(binary.LittleEndian.Uint64(b[8:16]))
	typ := binary.LittleEndian.Uint16(b[16:18])
	code := binary.LittleEndian.Uint16(b[18:20])
	value := int32(binary.LittleEndian.Uint32(b[20:24]))
	return InputEvent{
		Time:  time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond,
		Type:  typ,
		Code:  code,
		Value: value,
	}
}
