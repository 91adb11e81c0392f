//go:build linux

package xkb

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Keymap is a compiled XKB_KEYMAP_FORMAT_TEXT_V1 document materialized
// on an anonymous, unlinked file so it can be mmap'd read-only by every
// client that binds a wl_keyboard.
type Keymap struct {
	Fd   int
	Size uint32
	text string
}

// minimalKeymapText is a tiny but well-formed XKB keymap text covering
// the keysyms in scope for bindings and client key delivery. A full
// keymap compiler is out of scope; this module does not depend on one.
const minimalKeymapText = `xkb_keymap {
	xkb_keycodes "swc" {
		minimum = 8;
		maximum = 255;
	};
	xkb_types "swc" { include "complete" };
	xkb_compat "swc" { include "complete" };
	xkb_symbols "swc" {
		key <ESC> { [ Escape ] };
		key <BKSP> { [ BackSpace ] };
		key <TAB> { [ Tab ] };
		key <RTRN> { [ Return ] };
		key <SPCE> { [ space ] };
		key <LCTL> { [ Control_L ] };
		key <RCTL> { [ Control_R ] };
		key <LALT> { [ Alt_L ] };
		key <RALT> { [ Alt_R ] };
		key <LWIN> { [ Super_L ] };
		key <RWIN> { [ Super_R ] };
		key <LFSH> { [ Shift_L ] };
		key <RTSH> { [ Shift_R ] };
		key <AD01> { [ q, Q ] };
		modifier_map Control { <LCTL>, <RCTL> };
		modifier_map Mod1 { <LALT>, <RALT> };
		modifier_map Mod4 { <LWIN>, <RWIN> };
		modifier_map Shift { <LFSH>, <RTSH> };
	};
};
`

// Compile builds the keymap text and materializes it on an anonymous,
// unlinked file descriptor, ready to be advertised with
// wl_keyboard.keymap(FORMAT_TEXT_V1, fd, size).
func Compile() (*Keymap, error) {
	text := minimalKeymapText
	fd, err := anonymousFile(text)
	if err != nil {
		return nil, err
	}
	return &Keymap{Fd: fd, Size: uint32(len(text)), text: text}, nil
}

// anonymousFile creates an unlinked tmpfile containing data: open (or
// create+unlink), write, and let the caller mmap the fd as the only
// remaining reference.
func anonymousFile(data string) (int, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	fd, err := unix.Open(dir, unix.O_TMPFILE|unix.O_RDWR|unix.O_CLOEXEC, 0600)
	if err != nil {
		// O_TMPFILE isn't supported by every filesystem; fall back to
		// a regular temp file that is unlinked immediately.
		return mkostempFallback(data)
	}
	if err := writeAll(fd, data); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// mkostempFallback is used on filesystems without O_TMPFILE support: it
// creates a regular temp file, unlinks it immediately (so the only
// remaining reference is the open fd, like mkostemp+unlink), and
// returns a duplicated fd so the *os.File can be closed independently.
func mkostempFallback(data string) (int, error) {
	f, err := os.CreateTemp("", "swc-keymap-*")
	if err != nil {
		return -1, fmt.Errorf("xkb: create temp keymap file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return -1, fmt.Errorf("xkb: write keymap: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return -1, fmt.Errorf("xkb: seek keymap: %w", err)
	}

	fd, err := unix.Dup(int(f.Fd()))
	f.Close()
	if err != nil {
		return -1, fmt.Errorf("xkb: dup keymap fd: %w", err)
	}
	return fd, nil
}

func writeAll(fd int, data string) error {
	b := []byte(data)
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err != nil {
			return fmt.Errorf("xkb: write keymap: %w", err)
		}
		b = b[n:]
	}
	if _, err := unix.Seek(fd, 0, 0); err != nil {
		return fmt.Errorf("xkb: seek keymap: %w", err)
	}
	return nil
}

// Close releases the keymap's file descriptor.
func (k *Keymap) Close() error {
	return unix.Close(k.Fd)
}
