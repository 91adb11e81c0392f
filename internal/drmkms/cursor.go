//go:build linux

package drmkms

import (
	"fmt"
	"unsafe"
)

// modeCursor mirrors struct drm_mode_cursor, used for the hardware
// cursor plane: a small (usually 64x64) ARGB buffer the kernel
// composites independently of the primary framebuffer, so moving the
// pointer never requires a full repaint.
type modeCursor struct {
	Flags        uint32
	CrtcID       uint32
	X, Y         int32
	Width, Height uint32
	Handle       uint32
}

const (
	cursorFlagBO   = 1 << 0 // set/replace the cursor image
	cursorFlagMove = 1 << 1 // reposition only
)

var ioctlModeCursor = iowr(0xA3, unsafe.Sizeof(modeCursor{}))

// CursorPlane owns the hardware cursor for one CRTC: a small ARGB dumb
// buffer the kernel scans out on top of the primary plane without a
// full-screen repaint, mirroring swc_cursor_plane's split of "set the
// image" from "move".
type CursorPlane struct {
	dev    *Device
	crtcID uint32
	buf    dumbBuffer
}

// NewCursorPlane allocates the cursor's backing buffer, sized to the
// conventional 64x64 hotspot-free cursor image.
func (d *Device) NewCursorPlane(crtcID uint32) (*CursorPlane, error) {
	buf, err := d.createDumbBuffer(64, 64)
	if err != nil {
		return nil, fmt.Errorf("drmkms: cursor buffer: %w", err)
	}
	return &CursorPlane{dev: d, crtcID: crtcID, buf: buf}, nil
}

// SetImage uploads a new 64x64 ARGB8888 cursor image and tells the
// kernel to start scanning it out.
func (p *CursorPlane) SetImage(pixels []byte) error {
	mem, err := p.dev.mapDumbBuffer(p.buf)
	if err != nil {
		return err
	}
	copy(mem, pixels)

	var c modeCursor
	c.Flags = cursorFlagBO
	c.CrtcID = p.crtcID
	c.Width, c.Height = 64, 64
	c.Handle = p.buf.handle
	if err := ioctlPtr(p.dev.fd, ioctlModeCursor, unsafe.Pointer(&c)); err != nil {
		return fmt.Errorf("drmkms: SET_CURSOR: %w", err)
	}
	return nil
}

// Move repositions the cursor without touching its image, the common
// case on every pointer-motion event.
func (p *CursorPlane) Move(x, y int32) error {
	var c modeCursor
	c.Flags = cursorFlagMove
	c.CrtcID = p.crtcID
	c.X, c.Y = x, y
	if err := ioctlPtr(p.dev.fd, ioctlModeCursor, unsafe.Pointer(&c)); err != nil {
		return fmt.Errorf("drmkms: MOVE_CURSOR: %w", err)
	}
	return nil
}

// Hide removes the cursor image from the screen.
func (p *CursorPlane) Hide() error {
	var c modeCursor
	c.Flags = cursorFlagBO
	c.CrtcID = p.crtcID
	if err := ioctlPtr(p.dev.fd, ioctlModeCursor, unsafe.Pointer(&c)); err != nil {
		return fmt.Errorf("drmkms: HIDE_CURSOR: %w", err)
	}
	return nil
}

// Close releases the cursor plane's backing buffer.
func (p *CursorPlane) Close() {
	p.dev.destroyDumbBuffer(p.buf)
}
