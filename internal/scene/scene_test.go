package scene

import (
	"testing"

	"github.com/swcgo/swc/internal/region"
)

type fakeBuffer struct{ w, h int32 }

func (b fakeBuffer) Width() int32  { return b.w }
func (b fakeBuffer) Height() int32 { return b.h }
func (b fakeBuffer) Release()      {}

func TestSurfaceCommitClipsDamageToBuffer(t *testing.T) {
	s := NewSurface(1)
	s.Attach(fakeBuffer{w: 100, h: 50}, 0, 0)
	s.Damage(region.Rect{X: -10, Y: -10, W: 1000, H: 1000})
	_, damaged := s.Commit()

	ext := damaged.Extents()
	if ext.X < 0 || ext.Y < 0 || ext.Right() > 100 || ext.Bottom() > 50 {
		t.Fatalf("damage %+v not clipped to buffer", ext)
	}
}

func TestSurfaceFrameCallbacksFireNextCommit(t *testing.T) {
	s := NewSurface(1)
	var fired bool
	s.AddFrameCallback(func(uint32) { fired = true })

	cbs, _ := s.Commit()
	if len(cbs) != 1 {
		t.Fatalf("expected 1 callback ready after first commit, got %d", len(cbs))
	}
	cbs[0](0)
	if !fired {
		t.Fatal("callback was not invoked")
	}
}

func TestSurfaceInputRegionDefaultsToInfinite(t *testing.T) {
	s := NewSurface(1)
	s.Attach(fakeBuffer{w: 10, h: 10}, 0, 0)
	s.Commit()
	if !s.HitTest(5, 5) {
		t.Fatal("default input region should accept any point")
	}
}

func TestStackRaiseToTopReordersPaintOrder(t *testing.T) {
	var stack Stack
	a := NewView(NewSurface(1))
	b := NewView(NewSurface(2))
	a.Show()
	b.Show()
	stack.Push(a)
	stack.Push(b)

	stack.RaiseToTop(a)

	var order []*View
	stack.TopDown(func(v *View) bool {
		order = append(order, v)
		return true
	})
	if len(order) != 2 || order[0] != a || order[1] != b {
		t.Fatalf("expected [a, b] top-down after raising a, got %v", order)
	}
}

func TestStackHitTestFindsTopmostUnderPoint(t *testing.T) {
	var stack Stack
	a := NewView(NewSurface(1))
	a.Surface.Attach(fakeBuffer{w: 50, h: 50}, 0, 0)
	a.Surface.Commit()
	a.Move(0, 0)
	a.Show()

	b := NewView(NewSurface(2))
	b.Surface.Attach(fakeBuffer{w: 50, h: 50}, 0, 0)
	b.Surface.Commit()
	b.Move(10, 10)
	b.Show()

	stack.Push(a)
	stack.Push(b)

	found, lx, ly := stack.HitTest(15, 15)
	if found != b {
		t.Fatal("expected topmost view b to win the hit test")
	}
	if lx != 5 || ly != 5 {
		t.Fatalf("local coords = (%d, %d), want (5, 5)", lx, ly)
	}
}

func TestStackRemove(t *testing.T) {
	var stack Stack
	a := NewView(NewSurface(1))
	b := NewView(NewSurface(2))
	a.Show()
	b.Show()
	stack.Push(a)
	stack.Push(b)
	stack.Remove(a)

	var count int
	stack.TopDown(func(v *View) bool { count++; return true })
	if count != 1 {
		t.Fatalf("expected 1 view after removal, got %d", count)
	}
}
