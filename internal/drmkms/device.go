//go:build linux

package drmkms

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrNoDevice is returned when no usable KMS-capable DRM node is found.
var ErrNoDevice = errors.New("drmkms: no DRM device found")

// Device is an open handle to a DRM render/primary node.
type Device struct {
	fd   int
	path string
	id   int
}

// OpenPrimary finds and opens the primary GPU's DRM node: the card
// whose PCI "boot_vga" sysfs attribute is 1, falling back to the first
// card[0-9]* device found if none is marked boot_vga. This mirrors
// find_primary_drm_device's udev scan without depending on libudev,
// since /sys/class/drm is a stable kernel ABI on its own.
func OpenPrimary() (*Device, error) {
	card, err := FindPrimaryCard()
	if err != nil {
		return nil, err
	}
	return openCard(card)
}

// FindPrimaryCard returns the /dev/dri card name of the primary GPU
// (see OpenPrimary) without opening it, for a server running under a
// launcher helper: the helper opens the node on the server's behalf
// over OPEN_DEVICE, so the server only needs the path to ask for.
func FindPrimaryCard() (string, error) {
	entries, err := os.ReadDir("/sys/class/drm")
	if err != nil {
		return "", fmt.Errorf("drmkms: read /sys/class/drm: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "card") {
			continue
		}
		if strings.Contains(name, "-") {
			continue // connector subdirectory (cardN-HDMI-A-1), not the card itself
		}
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	var fallback string
	for _, name := range candidates {
		if isBootVGA(name) {
			return name, nil
		}
		if fallback == "" {
			fallback = name
		}
	}
	if fallback == "" {
		return "", ErrNoDevice
	}
	return fallback, nil
}

func isBootVGA(card string) bool {
	link, err := filepath.EvalSymlinks(filepath.Join("/sys/class/drm", card, "device"))
	if err != nil {
		return false
	}
	b, err := os.ReadFile(filepath.Join(link, "boot_vga"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) == "1"
}

func openCard(card string) (*Device, error) {
	path := filepath.Join("/dev/dri", card)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("drmkms: open %s: %w", path, err)
	}
	id, err := parseSysnum(card)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return &Device{fd: fd, path: path, id: id}, nil
}

// OpenFD wraps an already-open DRM fd (obtained from a privileged
// launcher helper via OPEN_DEVICE rather than opening the node
// directly) into a Device, the unprivileged counterpart to openCard
// for a server that doesn't itself have permission to open
// /dev/dri/cardN.
func OpenFD(fd int, path string) (*Device, error) {
	id, err := parseSysnum(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &Device{fd: fd, path: path, id: id}, nil
}

// Fd returns the underlying DRM file descriptor, for epoll registration
// and for exporting to clients over the wl_drm/linux-dmabuf globals.
func (d *Device) Fd() int { return d.fd }

// Path returns the device node path (e.g. /dev/dri/card0).
func (d *Device) Path() string { return d.path }

// ID returns the device's sysnum (the "0" in /dev/dri/card0), used when
// naming the wl_drm global's device path for clients.
func (d *Device) ID() int { return d.id }

// SetMaster acquires DRM master on this fd, required before mode-setting.
func (d *Device) SetMaster() error {
	if err := ioctl(d.fd, ioctlSetMaster, 0); err != nil {
		return fmt.Errorf("drmkms: set master: %w", err)
	}
	return nil
}

// DropMaster releases DRM master, done before VT-switching away.
func (d *Device) DropMaster() error {
	if err := ioctl(d.fd, ioctlDropMaster, 0); err != nil {
		return fmt.Errorf("drmkms: drop master: %w", err)
	}
	return nil
}

// Close closes the device's file descriptor.
func (d *Device) Close() error {
	return unix.Close(d.fd)
}

func ioctl(fd int, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlPtr(fd int, req uintptr, p unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	if errno != 0 {
		return errno
	}
	return nil
}

// parseSysnum extracts the numeric suffix of a card name ("card1" -> 1),
// mirroring the drm device's sysnum used for seat/session bookkeeping.
func parseSysnum(card string) (int, error) {
	n := strings.TrimPrefix(card, "card")
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0, fmt.Errorf("drmkms: bad card name %q: %w", card, err)
	}
	return v, nil
}
