// Package shell implements supplemental window-management pieces that
// sit above the core compositor engine but below any particular shell
// protocol adapter: docked panels and the usable-geometry they carve
// out of a screen for ordinary windows to be placed and maximized
// into.
package shell

import (
	"github.com/swcgo/swc/internal/drmkms"
	"github.com/swcgo/swc/internal/region"
	"github.com/swcgo/swc/internal/scene"
)

// Edge names which side of a screen a panel docks against.
type Edge uint32

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// dockTarget is the part of *drmkms.Screen a Panel needs: its geometry
// and a place to register itself as a usable-geometry modifier.
// Depending on this narrow interface instead of *drmkms.Screen
// directly keeps docking logic testable without a DRM device;
// *drmkms.Screen satisfies it as-is.
type dockTarget interface {
	Geometry() region.Rect
	Width() int
	Height() int
	AddModifier(m drmkms.Modifier)
	RemoveModifier(m drmkms.Modifier)
	UpdateUsableGeometry()
}

// Panel is a client surface permanently docked to one edge of a
// screen. Docking shows the panel's view, positions it against the
// chosen edge, and registers the panel as a drmkms.Modifier so its
// strut is subtracted from the screen's usable geometry.
type Panel struct {
	View   *scene.View
	screen dockTarget

	edge      Edge
	offset    uint32
	strutSize uint32
	docked    bool
}

// NewPanel wraps view as a not-yet-docked panel.
func NewPanel(view *scene.View) *Panel {
	return &Panel{View: view}
}

// Docked reports whether the panel is currently attached to a screen.
func (p *Panel) Docked() bool { return p.docked }

// Dock attaches the panel to edge of screen and returns the length the
// panel was docked across: width for a top/bottom edge, height for a
// left/right edge. Docking to a different screen than the panel is
// already on removes it from the old screen's modifier list first.
func (p *Panel) Dock(screen dockTarget, edge Edge) uint32 {
	var length uint32
	switch edge {
	case EdgeTop, EdgeBottom:
		length = uint32(screen.Width())
	case EdgeLeft, EdgeRight:
		length = uint32(screen.Height())
	default:
		return 0
	}

	if p.docked && p.screen != screen {
		p.screen.RemoveModifier(p)
	}

	p.screen = screen
	p.edge = edge
	p.docked = true

	p.updatePosition()
	p.View.Show()
	screen.AddModifier(p)

	return length
}

// Undock removes the panel from its screen's modifier list and hides
// its view.
func (p *Panel) Undock() {
	if !p.docked {
		return
	}
	p.docked = false
	p.screen.RemoveModifier(p)
	p.View.Hide()
}

// SetOffset shifts the panel along its edge: horizontally for a
// top/bottom panel, vertically for a left/right one.
func (p *Panel) SetOffset(offset uint32) {
	p.offset = offset
	if p.docked {
		p.updatePosition()
	}
}

// SetStrut sets how much of the screen's usable geometry this panel
// reserves along its docked edge.
func (p *Panel) SetStrut(size uint32) {
	p.strutSize = size
	if p.docked {
		p.screen.UpdateUsableGeometry()
	}
}

// Resized repositions a bottom/right-docked panel after its view's
// buffer size changes. View has no resize-notification list of its
// own, so the surface-commit path that resizes the view calls this
// directly instead of registering a handler.
func (p *Panel) Resized() {
	if p.docked {
		p.updatePosition()
	}
}

func (p *Panel) updatePosition() {
	geom := p.screen.Geometry()
	view := p.View.GlobalRect()

	var x, y int32
	switch p.edge {
	case EdgeTop:
		x = geom.X + int32(p.offset)
		y = geom.Y
	case EdgeBottom:
		x = geom.X + int32(p.offset)
		y = geom.Y + geom.H - view.H
	case EdgeLeft:
		x = geom.X
		y = geom.Y + geom.H - view.H - int32(p.offset)
	case EdgeRight:
		x = geom.X + geom.W - view.W
		y = geom.Y + int32(p.offset)
	default:
		return
	}
	p.View.Move(x, y)
}

// Modify implements drmkms.Modifier: it returns geom narrowed by this
// panel's strut along its docked edge.
func (p *Panel) Modify(geom region.Rect) region.Rect {
	x1, y1, x2, y2 := geom.X, geom.Y, geom.Right(), geom.Bottom()

	switch p.edge {
	case EdgeTop:
		y1 = maxI32(y1, geom.Y+int32(p.strutSize))
	case EdgeBottom:
		y2 = minI32(y2, geom.Bottom()-int32(p.strutSize))
	case EdgeLeft:
		x1 = maxI32(x1, geom.X+int32(p.strutSize))
	case EdgeRight:
		x2 = minI32(x2, geom.Right()-int32(p.strutSize))
	}

	return region.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
