//go:build linux

package drmkms

import (
	"fmt"
	"unsafe"
)

// ImportPrimeFD imports a client-supplied DMA-BUF fd as a GEM handle on
// this device, the step gbm_bo_import(..., GBM_BO_IMPORT_WL_BUFFER, ...)
// performs internally for the DRM-buffer branch of swc_renderer_attach.
// The caller owns fd and may close it once import succeeds; the kernel
// takes its own reference.
func (d *Device) ImportPrimeFD(fd int) (handle uint32, err error) {
	var ph primeHandle
	ph.FD = int32(fd)
	if err := ioctlPtr(d.fd, ioctlPrimeFDToHandle, unsafe.Pointer(&ph)); err != nil {
		return 0, fmt.Errorf("drmkms: PRIME_FD_TO_HANDLE: %w", err)
	}
	return ph.Handle, nil
}

// ExportPrimeFD exports a GEM handle as a new DMA-BUF fd, for sharing a
// scanout buffer back out (cursor image updates from a client surface,
// for instance).
func (d *Device) ExportPrimeFD(handle uint32) (fd int, err error) {
	var ph primeHandle
	ph.Handle = handle
	if err := ioctlPtr(d.fd, ioctlPrimeHandleToFD, unsafe.Pointer(&ph)); err != nil {
		return -1, fmt.Errorf("drmkms: PRIME_HANDLE_TO_FD: %w", err)
	}
	return int(ph.FD), nil
}

// CloseGEMHandle releases a GEM handle obtained from ImportPrimeFD once
// the framebuffer (or direct scanout use) built from it is torn down.
func (d *Device) CloseGEMHandle(handle uint32) error {
	var gc gemClose
	gc.Handle = handle
	if err := ioctlPtr(d.fd, ioctlGemClose, unsafe.Pointer(&gc)); err != nil {
		return fmt.Errorf("drmkms: GEM_CLOSE: %w", err)
	}
	return nil
}

// AddFB wraps a GEM handle in a framebuffer object suitable for scanout
// or plane assignment, the ADDFB step swc_buffer_initialize performs
// after creating its backing bo.
func (d *Device) AddFB(handle uint32, width, height int32, pitch uint32) (fbID uint32, err error) {
	var fb modeFbCmd
	fb.Width = uint32(width)
	fb.Height = uint32(height)
	fb.Pitch = pitch
	fb.Bpp = 32
	fb.Depth = 24
	fb.Handle = handle
	if err := ioctlPtr(d.fd, ioctlModeAddFB, unsafe.Pointer(&fb)); err != nil {
		return 0, fmt.Errorf("drmkms: ADDFB: %w", err)
	}
	return fb.FbID, nil
}

// RemoveFB destroys a framebuffer object created by AddFB.
func (d *Device) RemoveFB(fbID uint32) error {
	if err := ioctlPtr(d.fd, ioctlModeRemoveFB, unsafe.Pointer(&fbID)); err != nil {
		return fmt.Errorf("drmkms: RMFB: %w", err)
	}
	return nil
}
