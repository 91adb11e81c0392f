package render

import (
	"testing"

	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

type fakeScreen struct {
	pixels      []byte
	pitch       uint32
	w, h        int
	flipped     int
}

func newFakeScreen(w, h int) *fakeScreen {
	pitch := uint32(w * 4)
	return &fakeScreen{pixels: make([]byte, int(pitch)*h), pitch: pitch, w: w, h: h}
}

func (f *fakeScreen) Width() int  { return f.w }
func (f *fakeScreen) Height() int { return f.h }
func (f *fakeScreen) BackBufferPixels() ([]byte, uint32, error) { return f.pixels, f.pitch, nil }
func (f *fakeScreen) Flip() error { f.flipped++; return nil }

type fakeBuffer struct {
	w, h, stride int32
	pixels       []byte
	alpha        bool
}

func (b *fakeBuffer) Width() int32    { return b.w }
func (b *fakeBuffer) Height() int32   { return b.h }
func (b *fakeBuffer) Release()        {}
func (b *fakeBuffer) Pixels() []byte  { return b.pixels }
func (b *fakeBuffer) Stride() int32   { return b.stride }
func (b *fakeBuffer) HasAlpha() bool  { return b.alpha }

func solidOpaqueBuffer(w, h int32, r, g, bch, a byte) *fakeBuffer {
	stride := w * 4
	pixels := make([]byte, int(stride)*int(h))
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = bch
		pixels[i+1] = g
		pixels[i+2] = r
		pixels[i+3] = a
	}
	return &fakeBuffer{w: w, h: h, stride: stride, pixels: pixels}
}

func TestRepaintScreenBlitsOpaqueViewIntoBackBuffer(t *testing.T) {
	screen := newFakeScreen(4, 4)
	r := New()
	r.AddScreen(0, screen)

	surf := scene.NewSurface(1)
	buf := solidOpaqueBuffer(4, 4, 0x10, 0x20, 0x30, 0xff)
	surf.Attach(buf, 0, 0)
	surf.Damage(region.Rect{X: 0, Y: 0, W: 4, H: 4})
	surf.Commit()

	view := scene.NewView(surf)
	view.Show()
	var stack scene.Stack
	stack.Push(view)

	damage := region.New(region.Rect{X: 0, Y: 0, W: 4, H: 4})
	if err := r.RepaintScreen(0, &stack, damage); err != nil {
		t.Fatalf("RepaintScreen: %v", err)
	}

	if screen.pixels[0] != 0x30 || screen.pixels[1] != 0x20 || screen.pixels[2] != 0x10 {
		t.Fatalf("top-left pixel = %v, want [0x30 0x20 0x10 ...]", screen.pixels[0:4])
	}

	if err := r.SwapBuffers(0); err != nil {
		t.Fatalf("SwapBuffers: %v", err)
	}
	if screen.flipped != 1 {
		t.Fatalf("flipped = %d, want 1", screen.flipped)
	}
}

func TestRepaintScreenSkipsOccludedView(t *testing.T) {
	screen := newFakeScreen(4, 4)
	r := New()
	r.AddScreen(0, screen)

	back := scene.NewSurface(1)
	backBuf := solidOpaqueBuffer(4, 4, 0xaa, 0xaa, 0xaa, 0xff)
	back.Attach(backBuf, 0, 0)
	back.Damage(region.Rect{X: 0, Y: 0, W: 4, H: 4})
	back.Commit()
	backView := scene.NewView(back)
	backView.Show()

	front := scene.NewSurface(2)
	frontBuf := solidOpaqueBuffer(4, 4, 0x01, 0x02, 0x03, 0xff)
	front.Attach(frontBuf, 0, 0)
	front.Damage(region.Rect{X: 0, Y: 0, W: 4, H: 4})
	front.SetOpaqueRegion(region.New(region.Rect{X: 0, Y: 0, W: 4, H: 4}))
	front.Commit()
	frontView := scene.NewView(front)
	frontView.Show()

	var stack scene.Stack
	stack.Push(backView)
	stack.Push(frontView)

	damage := region.New(region.Rect{X: 0, Y: 0, W: 4, H: 4})
	if err := r.RepaintScreen(0, &stack, damage); err != nil {
		t.Fatalf("RepaintScreen: %v", err)
	}

	if screen.pixels[0] != 0x03 || screen.pixels[1] != 0x02 || screen.pixels[2] != 0x01 {
		t.Fatalf("pixel should come from the opaque front view, got %v", screen.pixels[0:4])
	}
}

func TestRepaintScreenUnknownScreenErrors(t *testing.T) {
	r := New()
	var stack scene.Stack
	if err := r.RepaintScreen(99, &stack, region.New(region.Rect{X: 0, Y: 0, W: 1, H: 1})); err == nil {
		t.Fatal("expected error for unknown screen")
	}
}
