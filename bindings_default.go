package swc

import (
	"os/exec"

	"github.com/swcgo/swc/internal/bindings"
	"github.com/swcgo/swc/internal/xkb"
)

// addDefaultBindings registers the compositor's own global key bindings,
// consulted before any key reaches client focus: CTRL+ALT+BackSpace
// terminates the compositor, XF86Switch_VT_N switches VTs through the
// launcher, and SUPER+Return spawns a terminal, the same three bindings
// testwm/main.c installs (handle_terminate, handle_switch_vt,
// handle_test_term) minus the weston-client test bindings that had no
// equivalent outside that one developer's machine.
func addDefaultBindings(t *bindings.Table, s *Server) {
	t.Add(xkb.ModCtrl|xkb.ModAlt, xkb.KeyBackSpace, func(time uint32, sym xkb.Keysym) {
		s.Quit()
	})

	for n := 1; n <= 12; n++ {
		vt := uint32(n)
		t.Add(xkb.ModAny, xkb.XF86SwitchVT(n), func(time uint32, sym xkb.Keysym) {
			if s.launcherClient == nil {
				return
			}
			if err := s.launcherClient.ActivateVT(vt); err != nil {
				s.Log.Warn("activate VT", "vt", vt, "error", err)
			}
		})
	}

	t.Add(xkb.ModSuper, xkb.KeyReturn, func(time uint32, sym xkb.Keysym) {
		if s.Config.Terminal == "" {
			return
		}
		cmd := exec.Command(s.Config.Terminal)
		if err := cmd.Start(); err != nil {
			s.Log.Warn("spawn terminal", "command", s.Config.Terminal, "error", err)
			return
		}
		go cmd.Wait()
	})
}
