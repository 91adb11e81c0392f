//go:build linux

package drmkms

import (
	"fmt"
	"unsafe"
)

// Connector describes one DRM connector (a physical output socket).
type Connector struct {
	ID, EncoderID      uint32
	Type, TypeID       uint32
	Connected          bool
	MMWidth, MMHeight  uint32
	Encoders           []uint32
	Modes              []modeInfo
}

// Encoder describes one DRM encoder.
type Encoder struct {
	ID             uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
}

// getResources fetches the card's top-level id arrays (CRTCs, connectors,
// encoders), resizing the query buffers across two ioctl calls the way
// drmModeGetResources does: once to learn the counts, once to fill them.
func (d *Device) getResources() (crtcIDs, connectorIDs, encoderIDs []uint32, err error) {
	var res modeCardRes
	if err := ioctlPtr(d.fd, ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, nil, fmt.Errorf("drmkms: GETRESOURCES (sizing): %w", err)
	}

	crtcIDs = make([]uint32, res.CountCrtcs)
	connectorIDs = make([]uint32, res.CountConns)
	encoderIDs = make([]uint32, res.CountEncoders)

	res.CrtcIDPtr = ptrToUint64(crtcIDs)
	res.ConnectorIDPtr = ptrToUint64(connectorIDs)
	res.EncoderIDPtr = ptrToUint64(encoderIDs)

	if err := ioctlPtr(d.fd, ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, nil, fmt.Errorf("drmkms: GETRESOURCES: %w", err)
	}
	return crtcIDs, connectorIDs, encoderIDs, nil
}

func (d *Device) getConnector(id uint32) (*Connector, error) {
	var c modeGetConnector
	c.ConnectorID = id
	if err := ioctlPtr(d.fd, ioctlModeGetConnector, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("drmkms: GETCONNECTOR (sizing) %d: %w", id, err)
	}

	encoders := make([]uint32, c.CountEncoders)
	modes := make([]modeInfo, c.CountModes)
	c.EncodersPtr = ptrToUint64(encoders)
	c.ModesPtr = ptrToUint64(modes)
	c.PropsPtr, c.PropValuesPtr = 0, 0
	c.CountProps = 0

	if err := ioctlPtr(d.fd, ioctlModeGetConnector, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("drmkms: GETCONNECTOR %d: %w", id, err)
	}

	return &Connector{
		ID:        c.ConnectorID,
		EncoderID: c.EncoderID,
		Type:      c.ConnectorType,
		TypeID:    c.ConnectorTypeID,
		Connected: c.Connection == modeConnected,
		MMWidth:   c.MMWidth,
		MMHeight:  c.MMHeight,
		Encoders:  encoders,
		Modes:     modes,
	}, nil
}

func (d *Device) getEncoder(id uint32) (*Encoder, error) {
	var e modeGetEncoder
	e.EncoderID = id
	if err := ioctlPtr(d.fd, ioctlModeGetEncoder, unsafe.Pointer(&e)); err != nil {
		return nil, fmt.Errorf("drmkms: GETENCODER %d: %w", id, err)
	}
	return &Encoder{ID: e.EncoderID, CrtcID: e.CrtcID, PossibleCrtcs: e.PossibleCrtcs}, nil
}

func (d *Device) getCrtc(id uint32) (*modeCrtc, error) {
	var c modeCrtc
	c.CrtcID = id
	if err := ioctlPtr(d.fd, ioctlModeGetCrtc, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("drmkms: GETCRTC %d: %w", id, err)
	}
	return &c, nil
}

// findAvailableCrtc mirrors find_available_crtc: walk the connector's
// encoders, and for each one pick the first CRTC both possible for that
// encoder and not already claimed by an earlier output.
func findAvailableCrtc(crtcIDs []uint32, encoders []*Encoder, taken uint32) (crtcIndex int, ok bool) {
	for _, enc := range encoders {
		for i := range crtcIDs {
			bit := uint32(1) << uint(i)
			if enc.PossibleCrtcs&bit != 0 && taken&bit == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// findAvailableID mirrors find_available_id: the lowest unset bit in
// the taken-output-ids bitmask becomes the new screen's output id.
func findAvailableID(taken uint32) (id uint32, ok bool) {
	for i := 0; i < 32; i++ {
		bit := uint32(1) << uint(i)
		if taken&bit == 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func ptrToUint64(s interface{}) uint64 {
	switch v := s.(type) {
	case []uint32:
		if len(v) == 0 {
			return 0
		}
		return uint64(uintptr(unsafe.Pointer(&v[0])))
	case []modeInfo:
		if len(v) == 0 {
			return 0
		}
		return uint64(uintptr(unsafe.Pointer(&v[0])))
	default:
		panic("drmkms: unsupported slice type for ptrToUint64")
	}
}
