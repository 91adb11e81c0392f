package composite

import (
	"sync"
	"testing"
	"time"

	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

type fakeBuffer struct{ w, h int32 }

func (b fakeBuffer) Width() int32  { return b.w }
func (b fakeBuffer) Height() int32 { return b.h }
func (b fakeBuffer) Release()      {}

type recordingRenderer struct {
	mu       sync.Mutex
	repaints int
	swaps    int
	lastDamage region.Region
}

func (r *recordingRenderer) RepaintScreen(screenID uint32, stack *scene.Stack, damage region.Region) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repaints++
	r.lastDamage = damage
	return nil
}

func (r *recordingRenderer) SwapBuffers(screenID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps++
	return nil
}

// syncAfterFunc replaces time.AfterFunc with an immediate call, so tests
// don't need to sleep past the debounce window.
func syncAfterFunc(d time.Duration, f func()) *time.Timer {
	f()
	return time.NewTimer(0)
}

func TestDamageTriggersOneRepaintPerBurst(t *testing.T) {
	r := &recordingRenderer{}
	c := New(r, time.Millisecond)
	c.afterFunc = syncAfterFunc
	c.AddScreen(0)

	c.Damage(0, region.Rect{X: 0, Y: 0, W: 10, H: 10})

	if r.repaints != 1 {
		t.Fatalf("expected 1 repaint, got %d", r.repaints)
	}
	if r.swaps != 1 {
		t.Fatalf("expected 1 swap, got %d", r.swaps)
	}
}

func TestDamageOnUnknownScreenIsIgnored(t *testing.T) {
	r := &recordingRenderer{}
	c := New(r, time.Millisecond)
	c.afterFunc = syncAfterFunc

	c.Damage(5, region.Rect{X: 0, Y: 0, W: 10, H: 10})

	if r.repaints != 0 {
		t.Fatalf("expected no repaint for unregistered screen, got %d", r.repaints)
	}
}

func TestEmptyDamageSkipsRepaint(t *testing.T) {
	r := &recordingRenderer{}
	c := New(r, time.Millisecond)
	c.afterFunc = syncAfterFunc
	c.AddScreen(0)

	// Scheduling directly without damage should be a no-op; exercised via
	// repaint() being called with nothing accumulated.
	c.schedule(0, c.targets[0])

	if r.repaints != 0 {
		t.Fatalf("expected no repaint when no damage was accumulated, got %d", r.repaints)
	}
}

func TestVisibleRegionSubtractsOpaqueViewsAbove(t *testing.T) {
	var stack scene.Stack

	bottom := scene.NewView(scene.NewSurface(1))
	bottom.Surface.Attach(fakeBuffer{w: 100, h: 100}, 0, 0)
	bottom.Surface.Commit()
	bottom.Move(0, 0)
	bottom.Show()

	top := scene.NewView(scene.NewSurface(2))
	top.Surface.Attach(fakeBuffer{w: 50, h: 50}, 0, 0)
	top.Surface.SetOpaqueRegion(region.New(region.Rect{X: 0, Y: 0, W: 50, H: 50}))
	top.Surface.Commit()
	top.Move(0, 0)
	top.Show()

	stack.Push(bottom)
	stack.Push(top)

	damage := region.New(region.Rect{X: 0, Y: 0, W: 100, H: 100})
	visible := VisibleRegion(&stack, bottom, damage)

	if visible.ContainsPoint(10, 10) {
		t.Fatal("area under top's opaque region should be culled from bottom's visible damage")
	}
	if !visible.ContainsPoint(75, 75) {
		t.Fatal("area outside top's opaque region should remain visible")
	}
}

func TestVisibleRegionForTopmostViewIsUnclipped(t *testing.T) {
	var stack scene.Stack
	v := scene.NewView(scene.NewSurface(1))
	v.Surface.Attach(fakeBuffer{w: 50, h: 50}, 0, 0)
	v.Surface.Commit()
	v.Show()
	stack.Push(v)

	damage := region.New(region.Rect{X: 0, Y: 0, W: 50, H: 50})
	visible := VisibleRegion(&stack, v, damage)

	if !visible.ContainsPoint(25, 25) {
		t.Fatal("topmost view has nothing above it to occlude its damage")
	}
}

func TestRemoveScreenStopsPendingTimer(t *testing.T) {
	r := &recordingRenderer{}
	c := New(r, time.Hour)
	c.AddScreen(0)
	c.Damage(0, region.Rect{X: 0, Y: 0, W: 10, H: 10})
	c.RemoveScreen(0)

	if r.repaints != 0 {
		t.Fatalf("expected removed screen's pending repaint never to fire, got %d repaints", r.repaints)
	}
}
