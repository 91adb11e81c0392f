package wm

import (
	"testing"

	"github.com/swcgo/swc/internal/scene"
	"github.com/swcgo/swc/internal/seat"
)

type fakeBuffer struct{ w, h int32 }

func (b *fakeBuffer) Width() int32  { return b.w }
func (b *fakeBuffer) Height() int32 { return b.h }
func (b *fakeBuffer) Release()      {}

func newTestWindow(t *testing.T, configure *func(w *Window, width, height uint32)) (*Window, *scene.View) {
	t.Helper()
	surf := scene.NewSurface(1)
	surf.Attach(&fakeBuffer{w: 200, h: 100}, 0, 0)
	surf.Commit()
	view := scene.NewView(surf)
	view.Show()

	var cfg func(w *Window, width, height uint32)
	if configure != nil {
		cfg = *configure
	} else {
		cfg = func(w *Window, width, height uint32) {}
	}
	win := New(view, Impl{Configure: cfg}, nil)
	return win, view
}

type recordingManager struct {
	got   *Window
	calls int
}

func (m *recordingManager) NewWindow(w *Window) { m.got = w; m.calls++ }

func TestManageNotifiesOnlyOnce(t *testing.T) {
	win, _ := newTestWindow(t, nil)
	mgr := &recordingManager{}
	win.manager = mgr

	win.Manage()
	win.Manage()

	if mgr.got != win {
		t.Fatal("expected manager to be notified of this window")
	}
	if mgr.calls != 1 {
		t.Fatalf("manager notified %d times, want 1", mgr.calls)
	}
}

func TestSetPositionAppliesImmediatelyWithoutPendingConfigure(t *testing.T) {
	win, view := newTestWindow(t, nil)
	win.SetPosition(10, 20)
	if x, y, _, _ := win.Geometry(); x != 10 || y != 20 {
		t.Fatalf("geometry = (%d,%d), want (10,20)", x, y)
	}
	if view.X != 10 || view.Y != 20 {
		t.Fatalf("view position = (%d,%d), want (10,20)", view.X, view.Y)
	}
}

func TestSetPositionDefersUntilConfigureFlushed(t *testing.T) {
	win, view := newTestWindow(t, nil)
	win.SetSize(300, 300) // stacked mode: configurePending stays false, so this alone won't defer.
	win.configurePending = true
	win.SetPosition(50, 60)

	if x, _, _, _ := win.Geometry(); x == 50 {
		t.Fatal("position should not have applied while configure is pending")
	}

	win.HandleConfigureAck()
	win.HandleBufferAttached()

	if x, y, _, _ := win.Geometry(); x != 50 || y != 60 {
		t.Fatalf("geometry after flush = (%d,%d), want (50,60)", x, y)
	}
	if view.X != 50 || view.Y != 60 {
		t.Fatal("view should have moved after flush")
	}
}

func TestBeginMoveTracksPointerMotion(t *testing.T) {
	win, view := newTestWindow(t, nil)
	win.SetPosition(100, 100)

	pointer := seat.NewPointer()
	pointer.HandleMotion(0, 100, 100, nil, nil) // put pointer at (100,100), matching window origin

	win.BeginMove(pointer)

	pointer.HandleMotion(0, 20, 5, nil, nil) // move pointer by (+20, +5)

	if view.X != 120 || view.Y != 105 {
		t.Fatalf("view position = (%d,%d), want (120,105)", view.X, view.Y)
	}
}

func TestBeginMoveIgnoredWhenTiled(t *testing.T) {
	win, view := newTestWindow(t, nil)
	pointer := seat.NewPointer()
	win.SetTiled(pointer)

	win.BeginMove(pointer)
	pointer.HandleMotion(0, 50, 50, nil, nil)

	if view.X != 0 || view.Y != 0 {
		t.Fatal("tiled window should not respond to a move grab")
	}
}

func TestBeginResizeInfersEdgesFromPointerQuadrant(t *testing.T) {
	var lastW, lastH uint32
	cfg := func(w *Window, width, height uint32) { lastW, lastH = width, height }
	win, _ := newTestWindow(t, &cfg)
	win.SetPosition(0, 0)
	// window is 200x100 at (0,0); pointer in the bottom-right quadrant.
	pointer := seat.NewPointer()
	pointer.HandleMotion(0, 150, 80, nil, nil)

	win.BeginResize(pointer, EdgeNone)
	pointer.HandleMotion(0, 30, 10, nil, nil) // drag further right/down

	if lastW <= 180 || lastH <= 90 {
		t.Fatalf("expected width/height to grow from the drag, got %d x %d", lastW, lastH)
	}
}

func TestEndMoveStopsTrackingPointer(t *testing.T) {
	win, view := newTestWindow(t, nil)
	pointer := seat.NewPointer()
	win.BeginMove(pointer)
	win.EndMove(pointer)

	pointer.HandleMotion(0, 500, 500, nil, nil)

	if view.X != 0 || view.Y != 0 {
		t.Fatal("view should not move once the grab has ended")
	}
}
