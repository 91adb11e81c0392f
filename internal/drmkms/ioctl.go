//go:build linux

// Package drmkms drives a KMS-capable DRM node directly through ioctls:
// it discovers the primary GPU, enumerates connectors/encoders/CRTCs/
// planes, assigns a CRTC and a free output id to every connected
// connector, and owns mode-setting and page-flip submission for each
// screen. Dumb-buffer and page-flip-event plumbing live here too; the
// pixel-filling work is delegated to the render backend.
package drmkms

import "unsafe"

// drmIoctlBase is the DRM ioctl type character ('d' = 0x64), shared by
// every DRM_IOCTL_MODE_* request.
const drmIoctlBase = 0x64

// iowr reproduces the kernel's _IOWR(type, nr, size) macro for the DRM
// ioctl family, so the numeric ioctl requests below are derived from
// the actual wire structs rather than copied as opaque magic numbers.
func iowr(nr uint8, size uintptr) uintptr {
	const dirReadWrite = uintptr(3) << 30
	return dirReadWrite | (size << 16) | (drmIoctlBase << 8) | uintptr(nr)
}

// iow reproduces _IOW(type, nr, size): a write-only ioctl, the kernel
// doesn't hand anything back through it (DRM_IOCTL_GEM_CLOSE).
func iow(nr uint8, size uintptr) uintptr {
	const dirWrite = uintptr(1) << 30
	return dirWrite | (size << 16) | (drmIoctlBase << 8) | uintptr(nr)
}

// Wire structs mirror struct drm_mode_* from linux/drm_mode.h closely
// enough for ioctl purposes: field order and width matter, names don't
// need to.

type modeInfo struct {
	Clock                                            uint32
	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew     uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan     uint16
	Vrefresh                                          uint32
	Flags                                             uint32
	Type                                              uint32
	Name                                              [32]byte
}

type modeCardRes struct {
	FbIDPtr        uint64
	CrtcIDPtr      uint64
	ConnectorIDPtr uint64
	EncoderIDPtr   uint64
	CountFbs       uint32
	CountCrtcs     uint32
	CountConns     uint32
	CountEncoders  uint32
	MinWidth       uint32
	MaxWidth       uint32
	MinHeight      uint32
	MaxHeight      uint32
}

type modeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MMWidth         uint32
	MMHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

type modeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type modeCrtc struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CrtcID           uint32
	FbID             uint32
	X, Y             uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             modeInfo
}

type modeCreateDumb struct {
	Height, Width uint32
	Bpp, Flags    uint32
	Handle        uint32
	Pitch         uint32
	Size          uint64
}

type modeMapDumb struct {
	Handle uint32
	Pad    uint32
	Offset uint64
}

type modeDestroyDumb struct {
	Handle uint32
}

type modeFbCmd struct {
	FbID                          uint32
	Width, Height, Pitch          uint32
	Bpp, Depth, Handle            uint32
}

type modeCrtcPageFlip struct {
	CrtcID, FbID, Flags, Reserved uint32
}

type modeGetPlaneRes struct {
	PlaneIDPtr  uint64
	CountPlanes uint32
	_           uint32 // padding to keep the struct 8-byte aligned
}

type modeGetPlane struct {
	PlaneID          uint32
	CrtcID           uint32
	FbID             uint32
	PossibleCrtcs    uint32
	GammaSize        uint32
	CountFormatTypes uint32
	FormatTypePtr    uint64
}

type modeSetPlane struct {
	PlaneID, CrtcID, FbID, Flags     uint32
	CrtcX, CrtcY                     int32
	CrtcW, CrtcH                     uint32
	SrcX, SrcY, SrcW, SrcH           uint32
}

// primeHandle mirrors struct drm_prime_handle, used both to import a
// client's DMA-BUF fd into a GEM handle and to export one back out.
type primeHandle struct {
	Handle uint32
	Flags  uint32
	FD     int32
}

// gemClose mirrors struct drm_gem_close.
type gemClose struct {
	Handle uint32
	Pad    uint32
}

var (
	ioctlModeGetResources    = iowr(0xA0, unsafe.Sizeof(modeCardRes{}))
	ioctlModeGetCrtc         = iowr(0xA1, unsafe.Sizeof(modeCrtc{}))
	ioctlModeSetCrtc         = iowr(0xA2, unsafe.Sizeof(modeCrtc{}))
	ioctlModeGetEncoder      = iowr(0xA6, unsafe.Sizeof(modeGetEncoder{}))
	ioctlModeGetConnector    = iowr(0xA7, unsafe.Sizeof(modeGetConnector{}))
	ioctlModeAddFB           = iowr(0xAE, unsafe.Sizeof(modeFbCmd{}))
	ioctlModeRemoveFB        = iowr(0xAF, unsafe.Sizeof(uint32(0)))
	ioctlModePageFlip        = iowr(0xB0, unsafe.Sizeof(modeCrtcPageFlip{})+8 /* user_data */)
	ioctlModeGetPlaneRes     = iowr(0xB5, unsafe.Sizeof(modeGetPlaneRes{}))
	ioctlModeGetPlane        = iowr(0xB6, unsafe.Sizeof(modeGetPlane{}))
	ioctlModeSetPlane        = iowr(0xB7, unsafe.Sizeof(modeSetPlane{}))
	ioctlModeCreateDumb  = iowr(0xB2, unsafe.Sizeof(modeCreateDumb{}))
	ioctlModeMapDumb     = iowr(0xB3, unsafe.Sizeof(modeMapDumb{}))
	ioctlModeDestroyDumb = iowr(0xB4, unsafe.Sizeof(modeDestroyDumb{}))

	ioctlPrimeFDToHandle = iowr(0x2e, unsafe.Sizeof(primeHandle{}))
	ioctlPrimeHandleToFD = iowr(0x2d, unsafe.Sizeof(primeHandle{}))
	ioctlGemClose        = iow(0x09, unsafe.Sizeof(gemClose{}))
)

const (
	modeConnected = 1

	pageFlipEvent = 0x01

	// DRM_IOCTL_SET_MASTER / DRM_IOCTL_DROP_MASTER take no payload, so
	// they use the plain _IO(type, nr) form rather than iowr.
	ioctlSetMaster  = drmIoctlBase<<8 | 0x1e
	ioctlDropMaster = drmIoctlBase<<8 | 0x1f
)
