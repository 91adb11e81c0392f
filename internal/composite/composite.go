// Package composite schedules and coordinates per-screen repaints. It
// mirrors the split swc_compositor/swc_renderer draw between them:
// compositor.c decides *when* a screen needs to be redrawn and *which*
// surfaces are on it (output_mask, schedule_repaint_for_output,
// handle_surface_event's SWC_SURFACE_ATTACH/SWC_SURFACE_REPAINT
// cases), while the actual pixel work is left to a Renderer this
// package only calls into.
package composite

import (
	"sync"
	"time"

	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

// Renderer performs the pixel work for one screen's repaint: compositing
// every visible view in stack, clipped to damage, into that screen's
// back buffer. internal/render supplies the concrete implementation;
// this package only needs the seam, the same way swc_renderer_repaint_output
// is opaque to compositor.c's scheduling logic.
type Renderer interface {
	RepaintScreen(screenID uint32, stack *scene.Stack, damage region.Region) error
	SwapBuffers(screenID uint32) error
}

// target is the compositor's per-screen bookkeeping: its view stack,
// accumulated damage awaiting the next repaint, whether a repaint is
// already scheduled (output->repaint_scheduled), whether a previously
// submitted page flip hasn't completed yet (output->page_flip_pending),
// and the frame callbacks waiting for that flip to complete.
type target struct {
	stack       *scene.Stack
	damage      region.Region
	scheduled   bool
	pendingFlip bool
	timer       *time.Timer
	callbacks   []scene.FrameCallback
}

// Compositor ties a set of screens, each with its own view stack, to a
// Renderer and a repaint scheduler. Surfaces carry an output mask (which
// screens they're visible on) exactly like swc_surface's output_mask
// bitfield.
type Compositor struct {
	mu       sync.Mutex
	renderer Renderer
	debounce time.Duration
	targets  map[uint32]*target

	// afterFunc is time.AfterFunc by default; tests substitute a
	// synchronous stand-in so repaint scheduling doesn't need a real
	// clock.
	afterFunc func(d time.Duration, f func()) *time.Timer

	// OnSwapError, set by the caller that owns DRM access, is invoked
	// when a repaint's SwapBuffers fails (notably EACCES, when another
	// VT holds DRM master) instead of the error being silently dropped.
	OnSwapError func(screenID uint32, err error)
}

// New creates a Compositor. debounce matches Config.RepaintDebounce:
// schedule_repaint_for_output uses wl_event_loop_add_idle (fires on the
// next trip through the event loop, no real delay); a small debounce
// here coalesces bursts of damage from multiple surfaces committing in
// the same tick into one repaint instead of one per surface.
func New(renderer Renderer, debounce time.Duration) *Compositor {
	return &Compositor{
		renderer:  renderer,
		debounce:  debounce,
		targets:   make(map[uint32]*target),
		afterFunc: time.AfterFunc,
	}
}

// AddScreen registers a screen with its own empty view stack.
func (c *Compositor) AddScreen(screenID uint32) *scene.Stack {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &target{stack: &scene.Stack{}}
	c.targets[screenID] = t
	return t.stack
}

// RemoveScreen drops a screen's bookkeeping (output unplugged or VT switched away).
func (c *Compositor) RemoveScreen(screenID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.targets[screenID]; ok && t.timer != nil {
		t.timer.Stop()
	}
	delete(c.targets, screenID)
}

// Stack returns a screen's view stack, or nil if the screen isn't registered.
func (c *Compositor) Stack(screenID uint32) *scene.Stack {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.targets[screenID]
	if t == nil {
		return nil
	}
	return t.stack
}

// Damage marks a rectangle of screenID dirty and schedules a repaint,
// the per-output fan-out handle_surface_event's SWC_SURFACE_REPAINT
// case does via output_mask.
func (c *Compositor) Damage(screenID uint32, r region.Rect) {
	c.mu.Lock()
	t := c.targets[screenID]
	if t == nil {
		c.mu.Unlock()
		return
	}
	t.damage.AddRect(r)
	c.mu.Unlock()
	c.schedule(screenID, t)
}

// DamageOutputs applies a surface's current damage, translated to
// global coordinates, to every screen named in outputMask (bit i set
// means screen i), mirroring output_mask's role in handle_surface_event.
func (c *Compositor) DamageOutputs(outputMask uint32, globalDamage region.Region, screenIDs []uint32) {
	for _, id := range screenIDs {
		if outputMask&(1<<id) == 0 {
			continue
		}
		for _, r := range globalDamage.Rects() {
			c.Damage(id, r)
		}
	}
}

// schedule debounces repeated damage into a single repaint, matching
// repaint_scheduled's guard against queuing more than one idle callback
// per output. A screen with a page flip already in flight is left
// un-scheduled; HandleFlipComplete schedules it once that flip
// completes, the Go analogue of only repainting outputs with
// scheduled_updates ∧ ¬pending_flips set.
func (c *Compositor) schedule(screenID uint32, t *target) {
	c.mu.Lock()
	if t.scheduled || t.pendingFlip {
		c.mu.Unlock()
		return
	}
	t.scheduled = true
	c.mu.Unlock()

	// afterFunc is called without c.mu held: a synchronous stand-in runs
	// repaint, which takes c.mu itself, before returning.
	timer := c.afterFunc(c.debounce, func() { c.repaint(screenID) })
	c.mu.Lock()
	t.timer = timer
	c.mu.Unlock()
}

// QueueFrameCallbacks holds a surface's just-fired wl_surface.frame
// callbacks until screenID's current content is actually presented,
// instead of invoking them at commit time. Dropped silently if the
// screen has since been removed.
func (c *Compositor) QueueFrameCallbacks(screenID uint32, cbs []scene.FrameCallback) {
	if len(cbs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.targets[screenID]; t != nil {
		t.callbacks = append(t.callbacks, cbs...)
	}
}

// repaint hands the accumulated damage to the renderer and submits a
// page flip, the Go analogue of repaint_output: swc_renderer_repaint_output
// followed by swc_output_switch_buffer. pendingFlip is set as soon as
// the flip is submitted and stays set until HandleFlipComplete clears
// it, so a screen mid-flip only accumulates damage rather than
// submitting a second flip on top of the first.
func (c *Compositor) repaint(screenID uint32) {
	c.mu.Lock()
	t := c.targets[screenID]
	if t == nil {
		c.mu.Unlock()
		return
	}
	damage := t.damage.Clone()
	t.damage.Clear()
	t.scheduled = false
	stack := t.stack
	c.mu.Unlock()

	if damage.Empty() {
		return
	}
	if err := c.renderer.RepaintScreen(screenID, stack, damage); err != nil {
		return
	}
	if err := c.renderer.SwapBuffers(screenID); err != nil {
		if c.OnSwapError != nil {
			c.OnSwapError(screenID, err)
		}
		return
	}
	c.mu.Lock()
	t.pendingFlip = true
	c.mu.Unlock()
}

// HandleFlipComplete is the page-flip-complete handler's hook into the
// compositor: it clears screenID's pending-flip bit and fires every
// frame callback queued since the flip was submitted with timeMS, the
// CLOCK_MONOTONIC-ms time the kernel reported the flip at. A screen
// that was damaged again while its flip was outstanding gets its
// backlogged repaint scheduled now instead of waiting for the next
// unrelated Damage call.
func (c *Compositor) HandleFlipComplete(screenID uint32, timeMS uint32) {
	c.mu.Lock()
	t := c.targets[screenID]
	if t == nil {
		c.mu.Unlock()
		return
	}
	t.pendingFlip = false
	cbs := t.callbacks
	t.callbacks = nil
	backlogged := !t.scheduled && t.damage.NotEmpty()
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(timeMS)
	}
	if backlogged {
		c.schedule(screenID, t)
	}
}

// AbandonPendingFlip clears screenID's pending-flip bit without firing
// its queued frame callbacks, for when DRM access is revoked (EACCES)
// mid-flip: the kernel never delivers that flip's completion event, so
// nothing else would clear it. Queued callbacks stay queued; they fire
// once a flip actually completes after access is restored.
func (c *Compositor) AbandonPendingFlip(screenID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.targets[screenID]; t != nil {
		t.pendingFlip = false
	}
}

// VisibleRegion computes the region of screenID actually left to draw
// for a surface at stack position v: its global damage rect minus
// whatever every view above it in paint order opaquely covers. This is
// the occlusion-culling optimization repaint_surface_for_output doesn't
// bother with (it repaints every surface unconditionally) but that
// real compositors use to avoid overdraw; it's grounded in the same
// paint-order walk TopDown already provides.
func VisibleRegion(stack *scene.Stack, v *scene.View, damage region.Region) region.Region {
	visible := damage.Clone()
	var aboveOpaque region.Region
	stack.TopDown(func(cur *scene.View) bool {
		if cur == v {
			return false
		}
		rect := cur.GlobalRect()
		opaque := cur.Surface.OpaqueRegion()
		opaque.Translate(cur.X, cur.Y)
		opaque.Intersect(rect)
		aboveOpaque.Union(opaque)
		return true
	})
	visible.Subtract(aboveOpaque)
	return visible
}
