// Package render implements composite.Renderer against a DRM/KMS
// screen's back buffer. It walks a screen's view stack top-down for
// each damaged rectangle and blits surface pixels into the back
// buffer, the same job swc_renderer_repaint_output does with pixman
// image composite calls against the shared framebuffer.
package render

import (
	"fmt"

	"github.com/swcgo/swc/internal/buffer"
	"github.com/swcgo/swc/internal/composite"
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

// Screen is the subset of drmkms.Screen the renderer needs: CPU-mapped
// back-buffer access and a way to present it.
type Screen interface {
	Width() int
	Height() int
	BackBufferPixels() ([]byte, uint32, error)
	Flip() error
}

// Renderer composites every screen's damaged views into its back
// buffer with a straight CPU blit, the fallback path used until a
// surface's buffer is imported for direct scanout through a DRM plane
// (see internal/buffer.DMABuffer, which bypasses this entirely).
type Renderer struct {
	screens map[uint32]Screen
}

// New creates a renderer with no screens attached yet.
func New() *Renderer {
	return &Renderer{screens: make(map[uint32]Screen)}
}

// AddScreen registers a screen's back buffer as a repaint target.
func (r *Renderer) AddScreen(screenID uint32, s Screen) {
	r.screens[screenID] = s
}

// RemoveScreen unregisters a screen, e.g. on disconnect.
func (r *Renderer) RemoveScreen(screenID uint32) {
	delete(r.screens, screenID)
}

// RepaintScreen satisfies composite.Renderer: it blits every visible
// view's damaged area into the screen's back buffer pixels.
func (r *Renderer) RepaintScreen(screenID uint32, stack *scene.Stack, damage region.Region) error {
	s, ok := r.screens[screenID]
	if !ok {
		return fmt.Errorf("render: unknown screen %d", screenID)
	}
	if damage.Empty() {
		return nil
	}

	pixels, pitch, err := s.BackBufferPixels()
	if err != nil {
		return fmt.Errorf("render: map back buffer: %w", err)
	}
	dst := frameBuffer{pixels: pixels, pitch: int(pitch), width: s.Width(), height: s.Height()}

	stack.TopDown(func(v *scene.View) bool {
		viewDamage := composite.VisibleRegion(stack, v, damage)
		if viewDamage.Empty() {
			return true
		}
		src, ok := v.Surface.Buffer().(buffer.PixelSource)
		if !ok {
			return true
		}
		blitView(dst, v, src, viewDamage)
		return true
	})
	return nil
}

// SwapBuffers satisfies composite.Renderer by queuing the page flip.
func (r *Renderer) SwapBuffers(screenID uint32) error {
	s, ok := r.screens[screenID]
	if !ok {
		return fmt.Errorf("render: unknown screen %d", screenID)
	}
	return s.Flip()
}

// frameBuffer is a packed 32bpp XRGB8888 destination surface, the same
// layout every dumb buffer is created with (see drmkms.createDumbBuffer).
type frameBuffer struct {
	pixels        []byte
	pitch         int
	width, height int
}

// blitView copies src's pixels into dst for every rectangle of damage,
// clipped to the view's bounds; ARGB sources are blended with the
// "over" operator, XRGB sources overwrite directly, mirroring pixman's
// PIXMAN_OP_OVER vs PIXMAN_OP_SRC split in the original's attach path.
func blitView(dst frameBuffer, v *scene.View, src buffer.PixelSource, damage region.Region) {
	viewRect := v.GlobalRect()
	srcStride := int(src.Stride())
	srcPixels := src.Pixels()
	hasAlpha := src.HasAlpha()

	for _, rect := range damage.Rects() {
		clipped := rect.Intersection(region.Rect{X: 0, Y: 0, W: int32(dst.width), H: int32(dst.height)})
		clipped = clipped.Intersection(viewRect)
		if clipped.Empty() {
			continue
		}
		for y := clipped.Y; y < clipped.Bottom(); y++ {
			srcY := y - viewRect.Y
			if srcY < 0 {
				continue
			}
			srcRowOff := int(srcY) * srcStride
			if srcRowOff+srcStride > len(srcPixels) {
				continue
			}
			dstRowOff := int(y) * dst.pitch
			for x := clipped.X; x < clipped.Right(); x++ {
				srcX := x - viewRect.X
				if srcX < 0 {
					continue
				}
				srcOff := srcRowOff + int(srcX)*4
				if srcOff+4 > len(srcPixels) {
					continue
				}
				dstOff := dstRowOff + int(x)*4
				if dstOff+4 > len(dst.pixels) {
					continue
				}
				if hasAlpha {
					blendOver(dst.pixels[dstOff:dstOff+4], srcPixels[srcOff:srcOff+4])
				} else {
					copy(dst.pixels[dstOff:dstOff+4], srcPixels[srcOff:srcOff+4])
				}
			}
		}
	}
}

// blendOver composites one BGRX/BGRA little-endian pixel over dst using
// the "over" operator (dst = src + dst * (1 - src.a)).
func blendOver(dst, src []byte) {
	a := uint32(src[3])
	inv := 255 - a
	for i := 0; i < 3; i++ {
		dst[i] = byte((uint32(src[i])*a + uint32(dst[i])*inv) / 255)
	}
	dst[3] = 255
}
