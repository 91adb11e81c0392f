package region

import "testing"

func TestRectIntersection(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 2, 2}, Rect{2, 2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersection(tt.b); got != tt.want {
				t.Fatalf("Intersection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegionAddRectCoalescesAdjacent(t *testing.T) {
	var r Region
	r.AddRect(Rect{0, 0, 10, 10})
	r.AddRect(Rect{10, 0, 10, 10})

	want := Rect{0, 0, 20, 10}
	if ext := r.Extents(); ext != want {
		t.Fatalf("Extents() = %+v, want %+v", ext, want)
	}
	if len(r.Rects()) != 1 {
		t.Fatalf("expected adjacent rects to coalesce, got %d rects", len(r.Rects()))
	}
}

func TestRegionSubtractRect(t *testing.T) {
	var r Region
	r.AddRect(Rect{0, 0, 10, 10})
	r.SubtractRect(Rect{0, 0, 5, 10})

	if r.ContainsPoint(2, 2) {
		t.Fatal("subtracted area should not contain point")
	}
	if !r.ContainsPoint(7, 2) {
		t.Fatal("remaining area should contain point")
	}
}

func TestRegionSubtractEntireRegionEmpties(t *testing.T) {
	var r Region
	r.AddRect(Rect{0, 0, 10, 10})
	r.SubtractRect(Rect{-5, -5, 20, 20})

	if r.NotEmpty() {
		t.Fatal("region should be empty after subtracting a covering rect")
	}
}

func TestRegionIntersectRegion(t *testing.T) {
	var a, b Region
	a.AddRect(Rect{0, 0, 10, 10})
	b.AddRect(Rect{5, 5, 10, 10})

	a.IntersectRegion(b)
	want := Rect{5, 5, 5, 5}
	if ext := a.Extents(); ext != want {
		t.Fatalf("Extents() = %+v, want %+v", ext, want)
	}
}

func TestRegionTranslate(t *testing.T) {
	var r Region
	r.AddRect(Rect{0, 0, 10, 10})
	r.Translate(3, -2)

	want := Rect{3, -2, 10, 10}
	if ext := r.Extents(); ext != want {
		t.Fatalf("Extents() = %+v, want %+v", ext, want)
	}
}

func TestInfiniteContainsFarPoint(t *testing.T) {
	inf := Infinite()
	if !inf.ContainsPoint(1<<20, -(1 << 20)) {
		t.Fatal("infinite region should contain arbitrary far points")
	}
}

func TestClipToBufferInvariant(t *testing.T) {
	// Damage and opaque regions are clipped to the buffer rect after commit.
	bufferRect := Rect{0, 0, 100, 50}
	var damage Region
	damage.AddRect(Rect{-10, -10, 200, 200})
	damage.Intersect(bufferRect)

	ext := damage.Extents()
	if ext.X < bufferRect.X || ext.Y < bufferRect.Y || ext.Right() > bufferRect.Right() || ext.Bottom() > bufferRect.Bottom() {
		t.Fatalf("damage %+v not clipped to buffer %+v", ext, bufferRect)
	}
}
