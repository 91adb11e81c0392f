package wm

import (
	"testing"

	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

// GridManager always targets tiled windows, so SetGeometry's configure
// handshake leaves the requested size/position pending until the client
// acks; these tests read the pending configureWidth/Height and move.x/y
// fields directly (same package as window.go) rather than driving a
// full ack round-trip, the same shortcut wm_test.go takes for
// SetPosition's deferred-apply behavior.

func fixedGeometry(g region.Rect) func() region.Rect {
	return func() region.Rect { return g }
}

func newManagedWindow(t *testing.T, mgr Manager) *Window {
	t.Helper()
	surf := scene.NewSurface(1)
	surf.Attach(&fakeBuffer{w: 200, h: 100}, 0, 0)
	surf.Commit()
	view := scene.NewView(surf)
	view.Show()
	return New(view, Impl{Configure: func(w *Window, width, height uint32) {}}, mgr)
}

func TestGridManagerArrangesSingleWindowToFullGeometry(t *testing.T) {
	mgr := NewGridManager(fixedGeometry(region.Rect{X: 0, Y: 0, W: 200, H: 100}))
	win := newManagedWindow(t, mgr)

	win.Manage()

	if win.move.x != gridBorder || win.move.y != gridBorder {
		t.Fatalf("pending position = (%d,%d), want (%d,%d)", win.move.x, win.move.y, gridBorder, gridBorder)
	}
	if int32(win.configureWidth) != 200-2*gridBorder || int32(win.configureHeight) != 100-2*gridBorder {
		t.Fatalf("pending size = (%d,%d), want (%d,%d)", win.configureWidth, win.configureHeight, 200-2*gridBorder, 100-2*gridBorder)
	}
}

func TestGridManagerSplitsTwoWindowsIntoColumns(t *testing.T) {
	mgr := NewGridManager(fixedGeometry(region.Rect{X: 0, Y: 0, W: 200, H: 100}))
	a := newManagedWindow(t, mgr)
	b := newManagedWindow(t, mgr)

	a.Manage()
	b.Manage()

	if a.move.x == b.move.x {
		t.Fatal("expected the two windows to occupy distinct columns")
	}
	if int32(a.configureWidth) != 100-2*gridBorder || int32(b.configureWidth) != 100-2*gridBorder {
		t.Fatalf("column widths = (%d,%d), want both %d", a.configureWidth, b.configureWidth, 100-2*gridBorder)
	}
}

func TestGridManagerRearrangesOnRemoval(t *testing.T) {
	mgr := NewGridManager(fixedGeometry(region.Rect{X: 0, Y: 0, W: 200, H: 100}))
	a := newManagedWindow(t, mgr)
	b := newManagedWindow(t, mgr)

	a.Manage()
	b.Manage()
	a.Unmanage()

	if len(mgr.windows) != 1 || mgr.windows[0] != b {
		t.Fatalf("expected only b left in the grid, got %v", mgr.windows)
	}
	if int32(b.configureWidth) != 200-2*gridBorder || int32(b.configureHeight) != 100-2*gridBorder {
		t.Fatalf("remaining window should fill the whole geometry alone, got (%d,%d)", b.configureWidth, b.configureHeight)
	}
}

func TestGridManagerUnmanageBeforeMapIsNoop(t *testing.T) {
	mgr := NewGridManager(fixedGeometry(region.Rect{X: 0, Y: 0, W: 200, H: 100}))
	win := newManagedWindow(t, mgr)

	win.Unmanage() // never managed: must not panic or touch mgr.windows

	if len(mgr.windows) != 0 {
		t.Fatalf("expected no windows tracked, got %v", mgr.windows)
	}
}

func TestGridManagerRearrangeRecomputesOnGeometryChange(t *testing.T) {
	geom := region.Rect{X: 0, Y: 0, W: 200, H: 100}
	mgr := NewGridManager(func() region.Rect { return geom })
	win := newManagedWindow(t, mgr)
	win.Manage()

	geom = region.Rect{X: 0, Y: 0, W: 400, H: 200}
	mgr.Rearrange()

	if int32(win.configureWidth) != 400-2*gridBorder || int32(win.configureHeight) != 200-2*gridBorder {
		t.Fatalf("size after rearrange = (%d,%d), want (%d,%d)", win.configureWidth, win.configureHeight, 400-2*gridBorder, 200-2*gridBorder)
	}
}
