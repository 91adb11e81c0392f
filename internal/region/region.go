// Package region implements the rectangle-set algebra (union, subtract,
// intersect, translate) that damage and opaque tracking are built on.
// There is no pixman binding anywhere in the retrieval pack, so this is
// a direct implementation: a Region is kept as a small slice of
// non-overlapping Rects, in the same spirit as the compositor's other
// small, linearly-scanned, bounded arrays (pressed keys, pressed
// buttons).
package region

// Rect is an axis-aligned rectangle in surface or screen-local pixel
// coordinates, right/bottom-exclusive (x, y, x+w, y+h).
type Rect struct {
	X, Y, W, H int32
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Right returns the exclusive right edge.
func (r Rect) Right() int32 { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int32 { return r.Y + r.H }

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersection returns the overlapping area of r and o; the result is
// empty if they do not intersect.
func (r Rect) Intersection(o Rect) Rect {
	x0, y0 := max32(r.X, o.X), max32(r.Y, o.Y)
	x1, y1 := min32(r.Right(), o.Right()), min32(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the point (x, y) lies within r.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Inflate returns r grown by n on every side (n may be negative to shrink).
func (r Rect) Inflate(n int32) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, W: r.W + 2*n, H: r.H + 2*n}
}

// Region is an unordered set of non-overlapping, non-empty Rects. The
// zero value is the empty region.
type Region struct {
	rects []Rect
}

// New builds a region containing the given rectangle (empty rects are
// dropped).
func New(r Rect) Region {
	var reg Region
	reg.AddRect(r)
	return reg
}

// Infinite returns a region covering the entire coordinate plane,
// representing a surface's default input region.
func Infinite() Region {
	const big = 1 << 24
	return New(Rect{X: -big, Y: -big, W: 2 * big, H: 2 * big})
}

// Empty reports whether the region covers no area.
func (r *Region) Empty() bool { return len(r.rects) == 0 }

// NotEmpty reports whether the region covers any area.
func (r *Region) NotEmpty() bool { return len(r.rects) > 0 }

// Rects returns the region's rectangles. The caller must not mutate the
// returned slice.
func (r *Region) Rects() []Rect { return r.rects }

// Clear empties the region in place.
func (r *Region) Clear() { r.rects = r.rects[:0] }

// Extents returns the smallest rectangle containing the whole region.
func (r *Region) Extents() Rect {
	if len(r.rects) == 0 {
		return Rect{}
	}
	ext := r.rects[0]
	for _, rc := range r.rects[1:] {
		ext = unionExtents(ext, rc)
	}
	return ext
}

func unionExtents(a, b Rect) Rect {
	x0, y0 := min32(a.X, b.X), min32(a.Y, b.Y)
	x1, y1 := max32(a.Right(), b.Right()), max32(a.Bottom(), b.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// AddRect unions a rectangle into the region (wl_region.add).
func (r *Region) AddRect(add Rect) {
	if add.Empty() {
		return
	}
	// Only the parts of add not already covered are kept, so the
	// rectangles stay non-overlapping.
	pieces := []Rect{add}
	for _, rc := range r.rects {
		var rest []Rect
		for _, p := range pieces {
			rest = append(rest, subtractRect(p, rc)...)
		}
		pieces = rest
	}
	r.rects = append(r.rects, pieces...)
	r.coalesce()
}

// Union merges another region's rectangles in.
func (r *Region) Union(o Region) {
	for _, rc := range o.rects {
		r.AddRect(rc)
	}
}

// SubtractRect removes a rectangle from the region (wl_region.subtract).
func (r *Region) SubtractRect(sub Rect) {
	if sub.Empty() || len(r.rects) == 0 {
		return
	}
	var out []Rect
	for _, rc := range r.rects {
		out = append(out, subtractRect(rc, sub)...)
	}
	r.rects = out
}

// Subtract removes every rectangle of o from the region.
func (r *Region) Subtract(o Region) {
	for _, rc := range o.rects {
		r.SubtractRect(rc)
	}
}

// Intersect clips the region to a single rectangle.
func (r *Region) Intersect(with Rect) {
	var out []Rect
	for _, rc := range r.rects {
		ix := rc.Intersection(with)
		if !ix.Empty() {
			out = append(out, ix)
		}
	}
	r.rects = out
}

// IntersectRegion clips the region to another region.
func (r *Region) IntersectRegion(o Region) {
	var out []Rect
	for _, a := range r.rects {
		for _, b := range o.rects {
			ix := a.Intersection(b)
			if !ix.Empty() {
				out = append(out, ix)
			}
		}
	}
	r.rects = out
}

// Translate shifts every rectangle in the region by (dx, dy), in place.
func (r *Region) Translate(dx, dy int32) {
	for i := range r.rects {
		r.rects[i] = r.rects[i].Translate(dx, dy)
	}
}

// ContainsPoint reports whether any rectangle in the region contains
// (x, y); used for input-region hit testing.
func (r *Region) ContainsPoint(x, y int32) bool {
	for _, rc := range r.rects {
		if rc.Contains(x, y) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the region.
func (r Region) Clone() Region {
	out := Region{rects: make([]Rect, len(r.rects))}
	copy(out.rects, r.rects)
	return out
}

// coalesce merges rectangles that share a full edge, as produced by
// AddRect/Union, to keep the rectangle count from growing without bound
// across repeated commits. It is not a full canonicalization (pixman's
// banded form), just enough to keep typical surface damage/opaque
// regions small — a handful of rects, not one per commit forever.
func (r *Region) coalesce() {
	for {
		merged := false
		for i := 0; i < len(r.rects); i++ {
			for j := i + 1; j < len(r.rects); j++ {
				if u, ok := tryMerge(r.rects[i], r.rects[j]); ok {
					r.rects[i] = u
					r.rects[j] = r.rects[len(r.rects)-1]
					r.rects = r.rects[:len(r.rects)-1]
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
		if !merged {
			return
		}
	}
}

// tryMerge combines a and b into one rectangle if they share a full edge.
func tryMerge(a, b Rect) (Rect, bool) {
	if a.Y == b.Y && a.H == b.H && (a.Right() == b.X || b.Right() == a.X) {
		x0 := min32(a.X, b.X)
		x1 := max32(a.Right(), b.Right())
		return Rect{X: x0, Y: a.Y, W: x1 - x0, H: a.H}, true
	}
	if a.X == b.X && a.W == b.W && (a.Bottom() == b.Y || b.Bottom() == a.Y) {
		y0 := min32(a.Y, b.Y)
		y1 := max32(a.Bottom(), b.Bottom())
		return Rect{X: a.X, Y: y0, W: a.W, H: y1 - y0}, true
	}
	if a == b {
		return a, true
	}
	return Rect{}, false
}

// subtractRect subtracts sub from rc, returning up to four leftover
// rectangles (top/bottom/left/right slivers) covering rc \ sub.
func subtractRect(rc, sub Rect) []Rect {
	ix := rc.Intersection(sub)
	if ix.Empty() {
		return []Rect{rc}
	}

	var out []Rect
	// Top sliver.
	if ix.Y > rc.Y {
		out = append(out, Rect{X: rc.X, Y: rc.Y, W: rc.W, H: ix.Y - rc.Y})
	}
	// Bottom sliver.
	if ix.Bottom() < rc.Bottom() {
		out = append(out, Rect{X: rc.X, Y: ix.Bottom(), W: rc.W, H: rc.Bottom() - ix.Bottom()})
	}
	// Left sliver (within the vertical span of ix).
	if ix.X > rc.X {
		out = append(out, Rect{X: rc.X, Y: ix.Y, W: ix.X - rc.X, H: ix.H})
	}
	// Right sliver (within the vertical span of ix).
	if ix.Right() < rc.Right() {
		out = append(out, Rect{X: ix.Right(), Y: ix.Y, W: rc.Right() - ix.Right(), H: ix.H})
	}
	return out
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
