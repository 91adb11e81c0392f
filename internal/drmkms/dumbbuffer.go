//go:build linux

package drmkms

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// dumbBuffer is a CPU-mappable DRM "dumb" scanout buffer: sufficient
// for mode-setting and a software fallback renderer, but not a
// GPU-efficient path (a GEM/DMA-BUF-backed buffer takes over scanout
// once a render backend is attached).
type dumbBuffer struct {
	handle       uint32
	fbID         uint32
	pitch        uint32
	size         uint64
	width        int
	height       int
}

func (d *Device) createDumbBuffer(width, height int) (dumbBuffer, error) {
	var create modeCreateDumb
	create.Width = uint32(width)
	create.Height = uint32(height)
	create.Bpp = 32
	if err := ioctlPtr(d.fd, ioctlModeCreateDumb, unsafe.Pointer(&create)); err != nil {
		return dumbBuffer{}, fmt.Errorf("drmkms: CREATE_DUMB: %w", err)
	}

	var fb modeFbCmd
	fb.Width = create.Width
	fb.Height = create.Height
	fb.Pitch = create.Pitch
	fb.Bpp = 32
	fb.Depth = 24
	fb.Handle = create.Handle
	if err := ioctlPtr(d.fd, ioctlModeAddFB, unsafe.Pointer(&fb)); err != nil {
		d.destroyDumbHandle(create.Handle)
		return dumbBuffer{}, fmt.Errorf("drmkms: ADDFB: %w", err)
	}

	return dumbBuffer{
		handle: create.Handle,
		fbID:   fb.FbID,
		pitch:  create.Pitch,
		size:   create.Size,
		width:  width,
		height: height,
	}, nil
}

// mapDumbBuffer maps a dumb buffer's memory for CPU writes, used by a
// software repaint path when no GPU-backed buffer is attached yet.
func (d *Device) mapDumbBuffer(b dumbBuffer) ([]byte, error) {
	var m modeMapDumb
	m.Handle = b.handle
	if err := ioctlPtr(d.fd, ioctlModeMapDumb, unsafe.Pointer(&m)); err != nil {
		return nil, fmt.Errorf("drmkms: MAP_DUMB: %w", err)
	}
	data, err := unix.Mmap(d.fd, int64(m.Offset), int(b.size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("drmkms: mmap dumb buffer: %w", err)
	}
	return data, nil
}

func (d *Device) destroyDumbBuffer(b dumbBuffer) {
	if b.fbID != 0 {
		fbID := b.fbID
		_ = ioctlPtr(d.fd, ioctlModeRemoveFB, unsafe.Pointer(&fbID))
	}
	d.destroyDumbHandle(b.handle)
}

func (d *Device) destroyDumbHandle(handle uint32) {
	if handle == 0 {
		return
	}
	var destroy modeDestroyDumb
	destroy.Handle = handle
	_ = ioctlPtr(d.fd, ioctlModeDestroyDumb, unsafe.Pointer(&destroy))
}
