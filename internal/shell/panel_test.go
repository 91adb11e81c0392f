package shell

import (
	"testing"

	"github.com/swcgo/swc/internal/drmkms"
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

// fakeScreen is a dockTarget test double standing in for *drmkms.Screen.
type fakeScreen struct {
	geom       region.Rect
	modifiers  []drmkms.Modifier
	recomputes int
}

func (f *fakeScreen) Geometry() region.Rect { return f.geom }
func (f *fakeScreen) Width() int            { return int(f.geom.W) }
func (f *fakeScreen) Height() int           { return int(f.geom.H) }

func (f *fakeScreen) AddModifier(m drmkms.Modifier) {
	f.modifiers = append(f.modifiers, m)
	f.UpdateUsableGeometry()
}

func (f *fakeScreen) RemoveModifier(m drmkms.Modifier) {
	for i, mm := range f.modifiers {
		if mm == m {
			f.modifiers = append(f.modifiers[:i], f.modifiers[i+1:]...)
			break
		}
	}
	f.UpdateUsableGeometry()
}

func (f *fakeScreen) UpdateUsableGeometry() { f.recomputes++ }

type fakeBuffer struct{ w, h int32 }

func (b fakeBuffer) Width() int32  { return b.w }
func (b fakeBuffer) Height() int32 { return b.h }
func (b fakeBuffer) Release()      {}

func newSizedView(w, h int32) *scene.View {
	s := scene.NewSurface(1)
	s.Attach(fakeBuffer{w, h}, 0, 0)
	s.Commit()
	return scene.NewView(s)
}

func TestDockTopPositionsAtOrigin(t *testing.T) {
	screen := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	p := NewPanel(newSizedView(1920, 30))

	length := p.Dock(screen, EdgeTop)

	if length != 1920 {
		t.Fatalf("length = %d, want 1920", length)
	}
	if p.View.X != 0 || p.View.Y != 0 {
		t.Fatalf("position = (%d,%d), want (0,0)", p.View.X, p.View.Y)
	}
	if !p.View.Visible() {
		t.Fatal("expected view to be shown")
	}
	if len(screen.modifiers) != 1 {
		t.Fatalf("expected panel registered as a modifier, got %d", len(screen.modifiers))
	}
}

func TestDockBottomPositionsAtScreenBottom(t *testing.T) {
	screen := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	p := NewPanel(newSizedView(1920, 30))

	p.Dock(screen, EdgeBottom)

	if p.View.Y != 1050 {
		t.Fatalf("y = %d, want 1050", p.View.Y)
	}
}

func TestSetOffsetRepositionsDockedPanel(t *testing.T) {
	screen := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	p := NewPanel(newSizedView(400, 30))
	p.Dock(screen, EdgeTop)

	p.SetOffset(100)

	if p.View.X != 100 {
		t.Fatalf("x = %d, want 100", p.View.X)
	}
}

func TestSetOffsetBeforeDockDoesNotMove(t *testing.T) {
	p := NewPanel(newSizedView(400, 30))
	p.SetOffset(100)
	if p.View.X != 0 {
		t.Fatalf("x = %d, want 0 (undocked panel shouldn't move)", p.View.X)
	}
}

func TestSetStrutRecomputesUsableGeometry(t *testing.T) {
	screen := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	p := NewPanel(newSizedView(1920, 30))
	p.Dock(screen, EdgeTop)

	before := screen.recomputes
	p.SetStrut(30)

	if screen.recomputes != before+1 {
		t.Fatalf("expected a recompute after SetStrut, got %d -> %d", before, screen.recomputes)
	}
}

func TestUndockHidesViewAndRemovesModifier(t *testing.T) {
	screen := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	p := NewPanel(newSizedView(1920, 30))
	p.Dock(screen, EdgeTop)

	p.Undock()

	if p.View.Visible() {
		t.Fatal("expected view to be hidden after undock")
	}
	if len(screen.modifiers) != 0 {
		t.Fatalf("expected modifier removed, got %d remaining", len(screen.modifiers))
	}
	if p.Docked() {
		t.Fatal("expected Docked() to report false")
	}
}

func TestModifyTrimsEachEdge(t *testing.T) {
	geom := region.Rect{X: 0, Y: 0, W: 1000, H: 800}

	cases := []struct {
		edge Edge
		want region.Rect
	}{
		{EdgeTop, region.Rect{X: 0, Y: 40, W: 1000, H: 760}},
		{EdgeBottom, region.Rect{X: 0, Y: 0, W: 1000, H: 760}},
		{EdgeLeft, region.Rect{X: 40, Y: 0, W: 960, H: 800}},
		{EdgeRight, region.Rect{X: 0, Y: 0, W: 960, H: 800}},
	}

	for _, c := range cases {
		p := &Panel{edge: c.edge, strutSize: 40}
		got := p.Modify(geom)
		if got != c.want {
			t.Errorf("edge %v: Modify = %+v, want %+v", c.edge, got, c.want)
		}
	}
}

func TestDockSwitchingScreensRemovesFromOld(t *testing.T) {
	old := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1000, H: 800}}
	next := &fakeScreen{geom: region.Rect{X: 0, Y: 0, W: 1200, H: 900}}
	p := NewPanel(newSizedView(1000, 30))

	p.Dock(old, EdgeTop)
	p.Dock(next, EdgeTop)

	if len(old.modifiers) != 0 {
		t.Fatalf("expected panel removed from old screen, got %d modifiers", len(old.modifiers))
	}
	if len(next.modifiers) != 1 {
		t.Fatalf("expected panel registered on new screen, got %d modifiers", len(next.modifiers))
	}
}
