package swc

import "time"

// Config configures a Server before Run is called.
type Config struct {
	// SocketName is the Wayland display socket name advertised through
	// WAYLAND_DISPLAY, relative to XDG_RUNTIME_DIR. Empty picks the
	// first free wayland-0, wayland-1, ...
	SocketName string

	// Seat is the logical seat name (almost always "seat0" on a
	// single-seat desktop).
	Seat string

	// VT is the virtual terminal number to switch into, or 0 to use
	// whatever VT the launcher was started from.
	VT int

	// RepaintDebounce bounds how long the compositor waits after the
	// first damage in a frame before repainting, so bursts of surface
	// commits coalesce into one repaint instead of one per commit.
	RepaintDebounce time.Duration

	// LauncherPath is the path to the privileged launcher helper binary,
	// used when the server is not already running setuid/under a
	// launcher parent.
	LauncherPath string

	// Terminal is the command the SUPER+Return binding spawns, the
	// built-in bindings' equivalent of testwm's handle_test_term.
	Terminal string
}

// DefaultConfig returns sensible defaults for a single-seat desktop.
func DefaultConfig() Config {
	return Config{
		Seat:            "seat0",
		RepaintDebounce: 1 * time.Millisecond,
		LauncherPath:    "swc-launch",
		Terminal:        "xterm",
	}
}

// WithSeat returns a copy of c with the seat name set.
func (c Config) WithSeat(seat string) Config {
	c.Seat = seat
	return c
}

// WithSocketName returns a copy of c with the display socket name set.
func (c Config) WithSocketName(name string) Config {
	c.SocketName = name
	return c
}
