//go:build linux

package launcher

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// VT and console ioctl numbers from linux/vt.h and linux/kd.h. Neither
// header's constants ship in golang.org/x/sys/unix (it tracks errno and
// syscall tables, not every uapi ioctl), so they're reproduced here the
// same way internal/drmkms/ioctl.go reproduces the DRM_IOCTL_MODE_*
// family: numeric, but derived from the real wire structs rather than
// copied as opaque magic numbers.
const (
	vtOpenQry  = 0x5600
	vtSetMode  = 0x5602
	vtGetState = 0x5603
	vtRelDisp  = 0x5605
	vtActivate = 0x5606
	vtWaitActive = 0x5607

	vtAuto    = 0x00
	vtProcess = 0x01
	vtAckAcq  = 0x02
)

const (
	kdGetMode = 0x4B3B
	kdSetMode = 0x4B3A
	kdText     = 0x00
	kdGraphics = 0x01

	kdGKBMode = 0x4B44
	kdSKBMode = 0x4B45
	kXlate = 0x01
	kOff   = 0x04
)

// evIOCRevoke is EVIOCREVOKE from linux/input.h: _IOW('E', 0x91, int),
// used to make an input device's fd stop delivering events once its VT
// is no longer active, so a backgrounded session can't read keystrokes
// meant for the one in front.
const evIOCRevoke = 0x40044591

// vtMode mirrors struct vt_mode.
type vtMode struct {
	Mode   byte
	Waitv  byte
	Relsig int16
	Acqsig int16
	Frsig  int16
}

// vtStat mirrors struct vt_stat.
type vtStat struct {
	Active uint16
	Signal uint16
	State  uint16
}

func ioctl(fd int, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return fmt.Errorf("ioctl 0x%x: %w", req, errno)
	}
	return nil
}

func ioctlPtr(fd int, req uintptr, p unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	if errno != 0 {
		return fmt.Errorf("ioctl 0x%x: %w", req, errno)
	}
	return nil
}
