// Package swc implements a minimal Wayland compositor for a single
// DRM/KMS GPU and one evdev-aggregated seat.
//
// # Quick Start
//
// A compositor is a Server, configured then run until terminated:
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/swcgo/swc"
//	)
//
//	func main() {
//	    s, err := swc.NewServer(swc.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := s.Run(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Run blocks serving clients until Quit is called or Close forces it
// to stop; cmd/swc wires SIGINT/SIGTERM to Quit.
//
// # Architecture
//
// Server wires together one instance of each engine package per
// compositor:
//
//   - internal/drmkms: DRM/KMS device, output probing, mode-setting,
//     cursor and dumb-buffer scanout
//   - internal/launcher: privilege-separated device/VT access through
//     an external swc-launch helper, when the server has no direct
//     permissions of its own
//   - internal/seat: evdev aggregation into one keyboard and one
//     pointer
//   - internal/xkb: evdev keycode to keysym translation and the
//     keymap clients mmap
//   - internal/bindings: compositor-global key bindings, consulted
//     before client focus delivery
//   - internal/scene, internal/composite, internal/render: the view
//     stack, damage tracking, and CPU repaint/scanout pipeline
//   - internal/wm: window placement policy (GridManager) and
//     move/resize interaction
//   - internal/datadevice: the clipboard/selection model shared by
//     every connection's wl_data_device
//   - internal/protocol: every advertised Wayland global and the
//     wire-level glue between the packages above
//
// # Configuration
//
// Use Config to customize a server before NewServer:
//
//	cfg := swc.DefaultConfig().WithSeat("seat0").WithSocketName("wayland-1")
//
// # Privilege separation
//
// A server started directly as root (or with the right capabilities)
// opens /dev/dri and the VT itself. A server started under swc-launch
// instead asks the launcher for device fds and VT switches over an
// inherited socket, the split compositor.c and launch.c keep between
// the unprivileged compositor and the small privileged helper.
package swc
