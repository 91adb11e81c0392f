package wm

import (
	"math"

	"github.com/swcgo/swc/internal/region"
)

// gridBorder is the gap left between tiled windows, matching
// example/wm.c's border_width.
const gridBorder = int32(1)

// GridManager tiles every managed window into an equal-area grid
// within Geometry(), re-running the layout whenever a window is added,
// removed, or Rearrange is called (a screen's usable geometry
// narrowing when a panel docks). swc ships no built-in tiling policy of
// its own — window management is left to whatever client embeds the
// library — so this is grounded directly on example/wm.c's arrange(),
// the reference client's grid algorithm, rather than on anything in
// libswc itself.
type GridManager struct {
	// Geometry returns the screen area to tile into; the caller
	// supplies drmkms.Screen.UsableGeometry (or a union of several
	// screens, if this compositor grows multi-output tiling).
	Geometry func() region.Rect

	windows []*Window
}

// NewGridManager creates a manager with no windows yet.
func NewGridManager(geometry func() region.Rect) *GridManager {
	return &GridManager{Geometry: geometry}
}

// NewWindow implements Manager: a newly mapped window always starts
// tiled and is appended to the grid, matching new_window's
// swc_window_set_tiled followed by screen_add_window.
func (m *GridManager) NewWindow(w *Window) {
	w.SetTiled(nil)
	m.windows = append(m.windows, w)
	w.SetHandler(&gridHandler{manager: m, window: w})
	m.arrange()
}

// Rearrange re-runs the grid layout, called when the screen's usable
// geometry changes (screen_usable_geometry_changed).
func (m *GridManager) Rearrange() {
	m.arrange()
}

func (m *GridManager) remove(w *Window) {
	for i, ww := range m.windows {
		if ww == w {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			break
		}
	}
	m.arrange()
}

// arrange lays every window out into a ceil(sqrt(n))-column grid of
// near-equal cells, a direct translation of arrange()'s column/row
// derivation.
func (m *GridManager) arrange() {
	n := len(m.windows)
	if n == 0 || m.Geometry == nil {
		return
	}
	geom := m.Geometry()
	numColumns := int32(math.Ceil(math.Sqrt(float64(n))))
	if numColumns == 0 {
		numColumns = 1
	}
	numRows := int32(n)/numColumns + 1

	i := 0
	for col := int32(0); i < n; col++ {
		x := geom.X + gridBorder + geom.W*col/numColumns
		width := geom.W/numColumns - 2*gridBorder

		if col == int32(n)%numColumns {
			numRows--
		}
		for row := int32(0); row < numRows && i < n; row++ {
			y := geom.Y + gridBorder + geom.H*row/numRows
			height := geom.H/numRows - 2*gridBorder
			m.windows[i].SetGeometry(x, y, uint32(width), uint32(height))
			i++
		}
	}
}

// gridHandler forwards a window's lifecycle back into the manager that
// placed it; destroy removes it from the grid and re-arranges the
// rest, matching window_destroy's screen_remove_window call.
type gridHandler struct {
	noopHandler
	manager *GridManager
	window  *Window
}

func (h *gridHandler) Destroy() {
	h.manager.remove(h.window)
}
