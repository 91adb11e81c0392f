//go:build linux

package drmkms

import (
	"fmt"
	"unsafe"

	"github.com/swcgo/swc/internal/region"
)

// Screen is one connected, mode-set DRM output: a connector driven by a
// CRTC, double-buffered with dumb buffers until a DMA-BUF-capable
// render backend takes over scanout.
type Screen struct {
	dev *Device

	ID          uint32 // compositor-assigned output id (bit index into taken-output-ids)
	ConnectorID uint32
	CrtcID      uint32
	Mode        modeInfo
	X, Y        int32 // position in the global screen-space layout

	front, back  dumbBuffer
	frontIsZero  bool

	mappedHandle uint32
	mapped       []byte

	modifiers []Modifier
	usable    region.Rect

	// OnUsableGeometryChanged fires whenever a modifier is added,
	// removed, or recomputes usable geometry, the signal a tiled
	// window-management policy listens on to relay out.
	OnUsableGeometryChanged func()
}

// Width and Height return the current mode's pixel dimensions.
func (s *Screen) Width() int  { return int(s.Mode.Hdisplay) }
func (s *Screen) Height() int { return int(s.Mode.Vdisplay) }

// RefreshRate returns the current mode's vertical refresh rate in
// milli-Hz, the unit wl_output.mode's refresh argument uses.
func (s *Screen) RefreshRate() int32 { return int32(s.Mode.Vrefresh) * 1000 }

// Geometry returns the screen's full rectangle in global coordinates.
func (s *Screen) Geometry() region.Rect {
	return region.Rect{X: s.X, Y: s.Y, W: int32(s.Width()), H: int32(s.Height())}
}

// Modifier narrows a screen's usable geometry, the role a docked panel
// plays via its strut (swc's screen_modifier).
type Modifier interface {
	// Modify returns geom (the screen's full geometry) reduced to the
	// space this modifier leaves usable.
	Modify(geom region.Rect) region.Rect
}

// AddModifier registers a modifier and recomputes usable geometry.
func (s *Screen) AddModifier(m Modifier) {
	s.modifiers = append(s.modifiers, m)
	s.UpdateUsableGeometry()
}

// RemoveModifier unregisters a modifier and recomputes usable geometry.
func (s *Screen) RemoveModifier(m Modifier) {
	for i, mm := range s.modifiers {
		if mm == m {
			s.modifiers = append(s.modifiers[:i], s.modifiers[i+1:]...)
			break
		}
	}
	s.UpdateUsableGeometry()
}

// UsableGeometry returns the screen's geometry with docked modifiers'
// struts applied, as of the last UpdateUsableGeometry call.
func (s *Screen) UsableGeometry() region.Rect { return s.usable }

// UpdateUsableGeometry recomputes usable geometry from the current
// modifier list and fires OnUsableGeometryChanged. Each modifier is
// applied to the screen's full geometry independently rather than
// chained (matching panel_manager's single-modifier-in-practice
// design): with more than one modifier docked on the same screen, the
// last one registered determines the result.
func (s *Screen) UpdateUsableGeometry() {
	usable := s.Geometry()
	for _, m := range s.modifiers {
		usable = m.Modify(s.Geometry())
	}
	s.usable = usable
	if s.OnUsableGeometryChanged != nil {
		s.OnUsableGeometryChanged()
	}
}

// Probe enumerates connected connectors, assigns each one a free CRTC
// and output id, and mode-sets it to its preferred (or first available)
// mode. This mirrors swc_drm_create_outputs, laid out left to right in
// the order connectors are discovered.
func (d *Device) Probe() ([]*Screen, error) {
	crtcIDs, connectorIDs, encoderIDs, err := d.getResources()
	if err != nil {
		return nil, err
	}

	var screens []*Screen
	var takenCrtcs, takenIDs uint32
	var x int32

	for _, cid := range connectorIDs {
		conn, err := d.getConnector(cid)
		if err != nil {
			continue
		}
		if !conn.Connected || len(conn.Modes) == 0 {
			continue
		}

		encoders := make([]*Encoder, 0, len(conn.Encoders))
		for _, eid := range conn.Encoders {
			enc, err := d.getEncoder(eid)
			if err != nil {
				continue
			}
			encoders = append(encoders, enc)
		}
		if len(encoders) == 0 {
			continue
		}

		crtcIndex, ok := findAvailableCrtc(crtcIDs, encoders, takenCrtcs)
		if !ok {
			continue
		}
		outputID, ok := findAvailableID(takenIDs)
		if !ok {
			break
		}

		mode := preferredMode(conn.Modes)

		screen := &Screen{
			dev:         d,
			ID:          outputID,
			ConnectorID: conn.ID,
			CrtcID:      crtcIDs[crtcIndex],
			Mode:        mode,
			X:           x,
		}
		if err := d.modeSet(screen); err != nil {
			continue
		}

		takenCrtcs |= 1 << uint(crtcIndex)
		takenIDs |= 1 << outputID
		x += int32(mode.Hdisplay)
		screen.UpdateUsableGeometry()
		screens = append(screens, screen)
	}

	if len(screens) == 0 {
		return nil, fmt.Errorf("drmkms: no usable outputs found")
	}
	return screens, nil
}

// preferredMode returns the connector's first mode, which the kernel
// always reports as the preferred one when it has an opinion.
func preferredMode(modes []modeInfo) modeInfo {
	return modes[0]
}

func (d *Device) modeSet(s *Screen) error {
	front, err := d.createDumbBuffer(s.Width(), s.Height())
	if err != nil {
		return fmt.Errorf("drmkms: create front buffer: %w", err)
	}
	back, err := d.createDumbBuffer(s.Width(), s.Height())
	if err != nil {
		d.destroyDumbBuffer(front)
		return fmt.Errorf("drmkms: create back buffer: %w", err)
	}
	s.front, s.back = front, back

	var c modeCrtc
	c.CrtcID = s.CrtcID
	c.FbID = front.fbID
	c.CountConnectors = 1
	c.SetConnectorsPtr = uint64(uintptr(unsafe.Pointer(&s.ConnectorID)))
	c.Mode = s.Mode
	c.ModeValid = 1

	if err := ioctlPtr(d.fd, ioctlModeSetCrtc, unsafe.Pointer(&c)); err != nil {
		d.destroyDumbBuffer(front)
		d.destroyDumbBuffer(back)
		return fmt.Errorf("drmkms: SETCRTC: %w", err)
	}
	return nil
}

// BackBuffer returns the dumb-buffer handle not currently on screen,
// for the renderer to fill before the next flip.
func (s *Screen) BackBuffer() (handle, fbID uint32, pitch uint32) {
	b := s.back
	if s.frontIsZero {
		b = s.front
	}
	return b.handle, b.fbID, b.pitch
}

// BackBufferPixels maps (once per buffer handle) and returns the back
// buffer's CPU-writable pixels as packed 32bpp XRGB8888, along with its
// pitch in bytes, for the software repaint path used until a GEM/DMA-BUF
// backend takes over scanout.
func (s *Screen) BackBufferPixels() ([]byte, uint32, error) {
	b := s.back
	if s.frontIsZero {
		b = s.front
	}
	if s.mapped != nil && s.mappedHandle == b.handle {
		return s.mapped, b.pitch, nil
	}
	data, err := s.dev.mapDumbBuffer(b)
	if err != nil {
		return nil, 0, err
	}
	s.mapped = data
	s.mappedHandle = b.handle
	return data, b.pitch, nil
}

// Flip queues a page flip to the back buffer and swaps front/back once
// the kernel has accepted the request; the actual swap completion is
// signaled asynchronously through the device's event fd.
func (s *Screen) Flip() error {
	back := s.back
	if s.frontIsZero {
		back = s.front
	}
	var pf modeCrtcPageFlip
	pf.CrtcID = s.CrtcID
	pf.FbID = back.fbID
	pf.Flags = pageFlipEvent
	if err := ioctlPtr(s.dev.fd, ioctlModePageFlip, unsafe.Pointer(&pf)); err != nil {
		return fmt.Errorf("drmkms: PAGE_FLIP: %w", err)
	}
	s.frontIsZero = !s.frontIsZero
	return nil
}

// Restore re-applies the CRTC's mode and framebuffer as read back from
// the kernel at call time, with this screen's connector. No CRTC state
// is saved when the screen is set up, so this does not return the CRTC
// to the mode it had before this screen claimed it.
func (s *Screen) Restore() error {
	orig, err := s.dev.getCrtc(s.CrtcID)
	if err != nil {
		return err
	}
	orig.SetConnectorsPtr = uint64(uintptr(unsafe.Pointer(&s.ConnectorID)))
	orig.CountConnectors = 1
	if err := ioctlPtr(s.dev.fd, ioctlModeSetCrtc, unsafe.Pointer(orig)); err != nil {
		return fmt.Errorf("drmkms: restore CRTC: %w", err)
	}
	return nil
}

// Close releases the screen's scanout buffers.
func (s *Screen) Close() {
	s.dev.destroyDumbBuffer(s.front)
	s.dev.destroyDumbBuffer(s.back)
}
