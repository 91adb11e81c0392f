//go:build linux

package protocol

// RegisterGlobals advertises every global this compositor implements.
// Screens are registered separately via AddScreen as each one is
// probed, since that can happen after the socket is already accepting
// connections (hotplug).
func (p *Protocol) RegisterGlobals() {
	p.AddCompositor()
	p.AddShm()
	p.AddSeat()
	p.AddDataDeviceManager()
	p.AddXdgWmBase()
	p.AddPanelManager()
	if p.DRM != nil {
		p.AddLinuxDmabuf()
	}
}
