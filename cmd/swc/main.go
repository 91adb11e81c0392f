// Command swc is the compositor server itself, the Go analogue of
// testwm (compositor.c's reference wl_display_run binary): it opens
// DRM, aggregates input into one seat, and serves Wayland clients over
// a Unix socket until terminated.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/swcgo/swc"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := swc.DefaultConfig()

	socketName := flag.String("socket", "", "Wayland display socket name (default: first free wayland-N)")
	seatName := flag.String("seat", cfg.Seat, "logical seat name")
	vt := flag.Int("vt", 0, "VT to switch into (0: whatever the launcher started on)")
	launcherPath := flag.String("launcher", cfg.LauncherPath, "privileged launcher helper binary")
	terminal := flag.String("terminal", cfg.Terminal, "command the SUPER+Return binding spawns")
	debounce := flag.Duration("repaint-debounce", cfg.RepaintDebounce, "delay before repainting after the first damage in a frame")
	flag.Parse()

	cfg.SocketName = *socketName
	cfg.Seat = *seatName
	cfg.VT = *vt
	cfg.LauncherPath = *launcherPath
	cfg.Terminal = *terminal
	cfg.RepaintDebounce = *debounce

	s, err := swc.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swc: %v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		s.Quit()
	}()

	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "swc: %v\n", err)
		_ = s.Close()
		return 1
	}
	_ = s.Close()
	return 0
}
