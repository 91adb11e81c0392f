// Package scene implements the surface/view graph a screen's repaint
// walks: each Surface carries pending and current double-buffered
// state (buffer, damage, opaque/input regions), and a View is the
// positioned, stacked presentation of one or more surfaces on screen.
// This mirrors struct swc_surface's split of "state" (what a buffer
// commit changes) from "pending" (what accumulates between commits).
package scene

import (
	"sync"

	"github.com/swcgo/swc/internal/region"
)

// BufferRef is an opaque handle to an attached, not-yet-released
// client buffer; internal/buffer supplies the concrete type. Keeping
// it as a small interface here avoids scene depending on the SHM/
// DMA-BUF import machinery it doesn't need to know about.
type BufferRef interface {
	Width() int32
	Height() int32
	Release()
}

// FrameCallback is a client's wl_callback registered via
// wl_surface.frame, fired once the surface's current content has been
// presented.
type FrameCallback func(timeMS uint32)

// state is the double-buffered half of a Surface: everything a
// wl_surface.commit promotes from pending to current.
type state struct {
	buffer  BufferRef
	damage  region.Region
	opaque  region.Region
	input   region.Region
	x, y    int32 // attach offset, relative to the surface's prior position
	callbacks []FrameCallback
	attached  bool // set by Attach; a commit without it keeps the current buffer
}

// Surface is a client's wl_surface: a buffer plus the regions that
// describe how it participates in damage tracking, opaque-area
// optimization, and input hit-testing.
type Surface struct {
	mu      sync.Mutex
	id      uint64
	current state
	pending state

	width, height int32 // current buffer dimensions, 0 until first attach
}

// NewSurface creates an empty surface with no attached buffer. The
// default input region is infinite and the default opaque region is
// empty, matching wl_surface's documented defaults.
func NewSurface(id uint64) *Surface {
	s := &Surface{id: id}
	s.current.input = region.Infinite()
	s.pending.input = region.Infinite()
	return s
}

// ID returns the surface's object id, used as scene.FocusTarget's key.
func (s *Surface) ID() uint64 { return s.id }

// Attach records a new buffer (or detachment, if buf is nil) to take
// effect on the next commit, along with the offset repositioning it
// relative to the surface's prior top-left (wl_surface.attach's x, y).
func (s *Surface) Attach(buf BufferRef, dx, dy int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.buffer = buf
	s.pending.x, s.pending.y = dx, dy
	s.pending.attached = true
}

// Damage accumulates a buffer-local damaged rectangle into the pending
// state, unioned in (wl_surface.damage).
func (s *Surface) Damage(r region.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.damage.AddRect(r)
}

// SetOpaqueRegion replaces the pending opaque region.
func (s *Surface) SetOpaqueRegion(r region.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.opaque = r
}

// SetInputRegion replaces the pending input region.
func (s *Surface) SetInputRegion(r region.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.input = r
}

// AddFrameCallback queues a callback to fire after the next commit this
// surface's content is actually presented.
func (s *Surface) AddFrameCallback(cb FrameCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.callbacks = append(s.pending.callbacks, cb)
}

// Commit promotes pending state to current, clips damage/opaque to the
// buffer rect (the invariant every attach+damage sequence must end in),
// and returns the callbacks now ready to fire along with the damage the
// commit produced (empty if none).
func (s *Surface) Commit() (fired []FrameCallback, damaged region.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending.attached {
		s.pending.buffer = s.current.buffer
	}
	if buf := s.pending.buffer; buf != nil {
		s.width, s.height = buf.Width(), buf.Height()
	}
	bufferRect := region.Rect{X: 0, Y: 0, W: s.width, H: s.height}

	s.pending.damage.Intersect(bufferRect)
	s.pending.opaque.Intersect(bufferRect)

	if s.current.buffer != nil && s.current.buffer != s.pending.buffer {
		s.current.buffer.Release()
	}

	fired = s.pending.callbacks
	damaged = s.pending.damage

	s.current = s.pending
	// Damage resets every commit; opaque and input regions are sticky
	// until the client explicitly replaces them, per wl_surface.
	s.pending = state{
		input:  s.current.input.Clone(),
		opaque: s.current.opaque.Clone(),
	}
	return fired, damaged
}

// Size returns the surface's current buffer dimensions.
func (s *Surface) Size() (w, h int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// HitTest reports whether (x, y), in surface-local coordinates, falls
// within the current input region.
func (s *Surface) HitTest(x, y int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.input.ContainsPoint(x, y)
}

// OpaqueRegion and DamageRegion return clones of the surface's current
// regions, safe for the compositor to read without holding the
// surface's lock.
func (s *Surface) OpaqueRegion() region.Region { s.mu.Lock(); defer s.mu.Unlock(); return s.current.opaque.Clone() }
func (s *Surface) DamageRegion() region.Region { s.mu.Lock(); defer s.mu.Unlock(); return s.current.damage.Clone() }

// Buffer returns the surface's currently committed buffer, or nil if
// nothing has been attached (or the surface has been detached).
func (s *Surface) Buffer() BufferRef { s.mu.Lock(); defer s.mu.Unlock(); return s.current.buffer }
