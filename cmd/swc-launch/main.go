// Command swc-launch is the privileged helper that owns a VT and the
// DRM/input device fds on behalf of an unprivileged compositor, the
// Go analogue of swc's launch/launch.c companion binary: it claims the
// VT, starts the server given on the command line, and answers its
// device-open and VT-activate requests over an inherited socket for as
// long as the server runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/swcgo/swc/internal/launcher"
)

func main() {
	os.Exit(run())
}

func run() int {
	noSwitch := flag.Bool("n", false, "configure the VT but don't switch to it")
	tty := flag.String("t", "", "VT device to use, e.g. /dev/tty2 (auto-detected if unset)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-n] [-t tty] -- server [args...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return 2
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := launcher.NewHelper(log)

	code, err := h.Run(*tty, *noSwitch, args[0], args[1:])
	if err != nil {
		log.Error("launch failed", "error", err)
		return 1
	}
	return code
}
