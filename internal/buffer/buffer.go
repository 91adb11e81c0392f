// Package buffer imports client-supplied pixel storage, wl_shm pools
// and DMA-BUF/GEM handles alike, into the scene.BufferRef a Surface
// attaches. It mirrors the split swc_renderer_attach makes between an
// SHM buffer (mmap'd directly, read by the software compositor) and a
// DRM buffer (imported as a GEM bo and scanned out without a copy).
package buffer

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/swcgo/swc/internal/drmkms"
)

// Format enumerates the pixel layouts a client may declare, matching
// the two wl_shm.format values the original's format_wayland_to_pixman
// handles (anything else is rejected at buffer-creation time).
type Format uint32

const (
	FormatXRGB8888 Format = iota
	FormatARGB8888
)

var ErrUnsupportedFormat = errors.New("buffer: unsupported pixel format")

// PixelSource is implemented by buffers the software repaint path (no
// GPU import available) can read directly, exposing the same fields
// repaint_surface_for_output pulls off a pixman image: a pointer to
// packed pixels and the stride between rows.
type PixelSource interface {
	Pixels() []byte
	Stride() int32
	HasAlpha() bool
}

// Pool is an mmap'd wl_shm_pool: a single client-owned fd backing any
// number of ShmBuffer views into it, released together.
type Pool struct {
	data []byte
	fd   int
}

// NewPool maps a client's pool fd for the given size (wl_shm.create_pool).
func NewPool(fd int, size int32) (*Pool, error) {
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("buffer: mmap shm pool: %w", err)
	}
	return &Pool{data: data, fd: fd}, nil
}

// Fd returns the pool's backing file descriptor, the same one passed
// to NewPool: wl_shm_pool.resize grows the existing mapping in place
// rather than handing over a new fd.
func (p *Pool) Fd() int { return p.fd }

// Resize remaps the pool to a new, larger size (wl_shm_pool.resize);
// shrinking is never requested by well-behaved clients and is rejected.
func (p *Pool) Resize(newSize int32) error {
	if newSize < int32(len(p.data)) {
		return fmt.Errorf("buffer: shm pool resize to %d smaller than current %d", newSize, len(p.data))
	}
	data, err := unix.Mmap(p.fd, 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("buffer: remap shm pool: %w", err)
	}
	unix.Munmap(p.data)
	p.data = data
	return nil
}

// Close unmaps the pool. Safe to call once every ShmBuffer view into it
// has been released.
func (p *Pool) Close() error {
	if p.data == nil {
		return nil
	}
	err := unix.Munmap(p.data)
	p.data = nil
	return err
}

// ShmBuffer is a wl_buffer created from a region of a Pool
// (wl_shm_pool.create_buffer): a width/height/stride/format view over
// shared memory, with no copy until the renderer reads it.
type ShmBuffer struct {
	pool          *Pool
	offset        int32
	width, height int32
	stride        int32
	format        Format
	released      func()
}

// NewShmBuffer slices out a buffer's view into an already-mapped pool.
func NewShmBuffer(pool *Pool, offset, width, height, stride int32, format Format) (*ShmBuffer, error) {
	if format != FormatXRGB8888 && format != FormatARGB8888 {
		return nil, ErrUnsupportedFormat
	}
	need := int(offset) + int(stride)*int(height)
	if need > len(pool.data) {
		return nil, fmt.Errorf("buffer: shm buffer %dx%d stride %d at offset %d exceeds pool size %d",
			width, height, stride, offset, len(pool.data))
	}
	return &ShmBuffer{pool: pool, offset: offset, width: width, height: height, stride: stride, format: format}, nil
}

// OnRelease registers the callback fired when the compositor is done
// reading this attachment (wl_buffer.release), letting the client reuse
// the backing memory.
func (b *ShmBuffer) OnRelease(fn func()) { b.released = fn }

func (b *ShmBuffer) Width() int32  { return b.width }
func (b *ShmBuffer) Height() int32 { return b.height }
func (b *ShmBuffer) Stride() int32 { return b.stride }
func (b *ShmBuffer) HasAlpha() bool { return b.format == FormatARGB8888 }

// Pixels returns the buffer's backing bytes directly out of the pool's
// mapping; callers must not retain the slice past Release.
func (b *ShmBuffer) Pixels() []byte {
	end := int(b.offset) + int(b.stride)*int(b.height)
	return b.pool.data[b.offset:end]
}

// Release fires the registered wl_buffer.release callback, if any.
func (b *ShmBuffer) Release() {
	if b.released != nil {
		b.released()
	}
}

// DMABuffer is a wl_buffer backed by an imported DMA-BUF/GEM handle,
// taken over for direct scanout instead of a software copy, mirroring
// swc_renderer_attach's gbm_bo_import branch.
type DMABuffer struct {
	dev           *drmkms.Device
	handle        uint32
	fbID          uint32
	width, height int32
	pitch         uint32
	released      func()
}

// ImportDMABuf imports a client's DMA-BUF fd and wraps it in a
// framebuffer object ready for plane assignment. The caller may close
// fd immediately after this returns; the kernel holds its own reference
// to the underlying buffer object via the imported GEM handle.
func ImportDMABuf(dev *drmkms.Device, fd int, width, height int32, pitch uint32) (*DMABuffer, error) {
	handle, err := dev.ImportPrimeFD(fd)
	if err != nil {
		return nil, err
	}
	fbID, err := dev.AddFB(handle, width, height, pitch)
	if err != nil {
		dev.CloseGEMHandle(handle)
		return nil, err
	}
	return &DMABuffer{dev: dev, handle: handle, fbID: fbID, width: width, height: height, pitch: pitch}, nil
}

func (b *DMABuffer) Width() int32    { return b.width }
func (b *DMABuffer) Height() int32   { return b.height }
func (b *DMABuffer) FBID() uint32    { return b.fbID }
func (b *DMABuffer) GEMHandle() uint32 { return b.handle }

// OnRelease registers the wl_buffer.release callback.
func (b *DMABuffer) OnRelease(fn func()) { b.released = fn }

// Release tears down the framebuffer and GEM handle, then fires the
// client release callback.
func (b *DMABuffer) Release() {
	if b.fbID != 0 {
		b.dev.RemoveFB(b.fbID)
	}
	if b.handle != 0 {
		b.dev.CloseGEMHandle(b.handle)
	}
	if b.released != nil {
		b.released()
	}
}
