package scene

import "github.com/swcgo/swc/internal/region"

// View positions a Surface in global (screen-space) coordinates and
// links it into the compositor's paint-order stack, the role
// swc_view/swc_compositor_view split between "where" and "how to
// present" in the original.
type View struct {
	Surface *Surface
	X, Y    int32

	// Below is the view immediately behind this one in paint order, or
	// nil if this view is at the bottom of the stack. Subsurfaces are
	// linked in just above their parent, matching the original's
	// parent/child z-ordering.
	Below *View
	Above *View

	visible bool
}

// NewView creates an unplaced, hidden view over a surface.
func NewView(s *Surface) *View {
	return &View{Surface: s}
}

// Move repositions the view in global coordinates.
func (v *View) Move(x, y int32) {
	v.X, v.Y = x, y
}

// Show/Hide control whether the view participates in repaint and
// input hit-testing at all (a minimized or withdrawn window is hidden
// without being destroyed).
func (v *View) Show() { v.visible = true }
func (v *View) Hide() { v.visible = false }

// Visible reports whether the view is currently eligible for painting.
func (v *View) Visible() bool { return v.visible }

// GlobalRect returns the view's bounding rectangle in global
// coordinates, based on its surface's current buffer size.
func (v *View) GlobalRect() region.Rect {
	w, h := v.Surface.Size()
	return region.Rect{X: v.X, Y: v.Y, W: w, H: h}
}

// AddSubsurface inserts child as a subsurface stacked immediately above
// this view, the common case for a simple subsurface tree (arbitrary
// sibling reordering via place_above/place_below is not implemented).
func (v *View) AddSubsurface(child *View) {
	child.Below = v
	child.Above = v.Above
	if v.Above != nil {
		v.Above.Below = child
	}
	v.Above = child
}

// Stack is the screen's paint-ordered list of views, bottom to top.
type Stack struct {
	bottom, top *View
}

// Push adds a view to the top of the stack (the most common case: a new
// top-level window opens above everything else).
func (s *Stack) Push(v *View) {
	v.Below = s.top
	v.Above = nil
	if s.top != nil {
		s.top.Above = v
	}
	s.top = v
	if s.bottom == nil {
		s.bottom = v
	}
}

// Remove unlinks a view from the stack.
func (s *Stack) Remove(v *View) {
	if v.Below != nil {
		v.Below.Above = v.Above
	} else {
		s.bottom = v.Above
	}
	if v.Above != nil {
		v.Above.Below = v.Below
	} else {
		s.top = v.Below
	}
	v.Above, v.Below = nil, nil
}

// RaiseToTop moves an already-stacked view to the top, for click-to-
// focus and similar "bring to front" behavior.
func (s *Stack) RaiseToTop(v *View) {
	if v == s.top {
		return
	}
	s.Remove(v)
	s.Push(v)
}

// TopDown calls fn for every visible view from top to bottom (the
// order a repaint walks them in, so the first opaque hit wins) and
// stops early if fn returns false.
func (s *Stack) TopDown(fn func(*View) bool) {
	for v := s.top; v != nil; v = v.Below {
		if !v.visible {
			continue
		}
		if !fn(v) {
			return
		}
	}
}

// HitTest finds the topmost visible view whose input region contains
// the global point (x, y), and the point translated into that view's
// surface-local coordinates.
func (s *Stack) HitTest(x, y int32) (view *View, localX, localY int32) {
	var found *View
	var lx, ly int32
	s.TopDown(func(v *View) bool {
		rect := v.GlobalRect()
		if !rect.Contains(x, y) {
			return true
		}
		sx, sy := x-v.X, y-v.Y
		if !v.Surface.HitTest(sx, sy) {
			return true
		}
		found, lx, ly = v, sx, sy
		return false
	})
	return found, lx, ly
}
