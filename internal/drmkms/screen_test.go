//go:build linux

package drmkms

import (
	"testing"

	"github.com/swcgo/swc/internal/region"
)

type stubModifier struct{ strut int32 }

func (m stubModifier) Modify(geom region.Rect) region.Rect {
	geom.Y += m.strut
	geom.H -= m.strut
	return geom
}

func TestUsableGeometryDefaultsToFullGeometry(t *testing.T) {
	s := &Screen{Mode: modeInfo{Hdisplay: 1920, Vdisplay: 1080}}
	s.UpdateUsableGeometry()

	if s.UsableGeometry() != s.Geometry() {
		t.Fatalf("usable = %+v, want %+v", s.UsableGeometry(), s.Geometry())
	}
}

func TestAddModifierNarrowsUsableGeometry(t *testing.T) {
	s := &Screen{Mode: modeInfo{Hdisplay: 1920, Vdisplay: 1080}}
	s.AddModifier(stubModifier{strut: 30})

	want := region.Rect{X: 0, Y: 30, W: 1920, H: 1050}
	if s.UsableGeometry() != want {
		t.Fatalf("usable = %+v, want %+v", s.UsableGeometry(), want)
	}
}

func TestRemoveModifierRestoresFullGeometry(t *testing.T) {
	s := &Screen{Mode: modeInfo{Hdisplay: 1920, Vdisplay: 1080}}
	m := stubModifier{strut: 30}
	s.AddModifier(m)
	s.RemoveModifier(m)

	if s.UsableGeometry() != s.Geometry() {
		t.Fatalf("usable = %+v, want %+v", s.UsableGeometry(), s.Geometry())
	}
}

func TestUpdateUsableGeometryFiresCallback(t *testing.T) {
	s := &Screen{Mode: modeInfo{Hdisplay: 1920, Vdisplay: 1080}}
	fired := 0
	s.OnUsableGeometryChanged = func() { fired++ }

	s.AddModifier(stubModifier{strut: 10})
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}
