//go:build linux

package seat

import (
	"os"
	"path/filepath"
	"strings"
)

// Seat aggregates every evdev device belonging to one logical seat
// (almost always "seat0" on a single-GPU desktop) into one keyboard and
// one pointer, mirroring swc_seat_add_devices without the udev
// dependency: every /dev/input/eventN node is opened directly, with no
// per-device capability detection; Dispatch routes each event by its
// type and code instead.
type Seat struct {
	Name     string
	Keyboard *Keyboard
	Pointer  *Pointer

	devices []*Device
	frozen  bool
}

// New creates an empty seat with fresh keyboard and pointer state.
func New(name string) *Seat {
	return &Seat{
		Name:     name,
		Keyboard: NewKeyboard(),
		Pointer:  NewPointer(),
	}
}

// AddDevices opens every /dev/input/eventN node and attaches it to the
// seat. A device that fails to open (permissions, or already grabbed by
// another process) is skipped rather than aborting the scan.
func (s *Seat) AddDevices() error {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		dev, err := OpenDevice(filepath.Join("/dev/input", e.Name()))
		if err != nil {
			continue
		}
		s.devices = append(s.devices, dev)
	}
	return nil
}

// Devices returns every device attached to the seat, for epoll
// registration.
func (s *Seat) Devices() []*Device { return s.devices }

// Freeze suspends key/motion/button dispatch, for the VT we've just
// switched away from (or lost DRM access on): events are still drained
// off each device's fd so epoll doesn't spin, but nothing is delivered
// to handlers or clients until Unfreeze.
func (s *Seat) Freeze() { s.frozen = true }

// Unfreeze resumes normal dispatch after switching back onto this VT.
func (s *Seat) Unfreeze() { s.frozen = false }

// Dispatch reads and routes pending events from one device: key events
// go to the keyboard, relative-motion and button events to the
// pointer. deliverKey/deliverMotion/deliverButton forward unconsumed
// events to whatever currently holds focus (wired up by the caller,
// since seat doesn't know about wire protocol objects).
func (s *Seat) Dispatch(dev *Device, clamp func(x, y int32) (int32, int32),
	deliverKey func(code uint32, pressed bool),
	deliverMotion func(x, y int32),
	deliverButton func(button uint32, pressed bool),
) error {
	var dx, dy int32
	err := dev.ReadEvents(func(ev InputEvent) {
		if s.frozen {
			return
		}
		switch ev.Type {
		case evKey:
			t := uint32(ev.Time.Milliseconds())
			if isButtonCode(ev.Code) {
				s.Pointer.HandleButton(t, uint32(ev.Code), ev.Value != 0, deliverButton)
			} else {
				s.Keyboard.HandleKey(t, uint32(ev.Code), ev.Value != 0, deliverKey)
			}
		case evRel:
			switch ev.Code {
			case relX:
				dx += ev.Value
			case relY:
				dy += ev.Value
			}
		case evAbs:
			// Absolute (tablet/touch) positioning is not modeled; only
			// relative pointer motion is in scope.
		}
	})
	if !s.frozen && (dx != 0 || dy != 0) {
		s.Pointer.HandleMotion(0, dx, dy, clamp, deliverMotion)
	}
	return err
}
