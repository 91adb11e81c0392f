//go:build linux

package wire

import "sync"

// wl_registry opcodes.
const (
	RegistryBind Opcode = 0 // bind(name: uint, id: new_id), client request

	registryEventGlobal       Opcode = 0 // global(name, interface, version)
	registryEventGlobalRemove Opcode = 1 // global_remove(name)
)

// Global is one interface the compositor advertises to clients: the
// core globals (wl_compositor, wl_shm, wl_seat, wl_output per screen,
// wl_data_device_manager), the xdg_wm_base shell global,
// zwp_linux_dmabuf_v1 when a DRM device is present, and the
// compositor-specific swc_panel_manager. wl_shell, wl_drm and the
// decoration managers are not advertised.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32

	// Bind is invoked when a client binds this global; it must register
	// a Handler for the new object id with the connection.
	Bind func(c *Conn, id ObjectID, version uint32)
}

// GlobalSet is the server-wide table of advertised globals, shared by
// every client connection's Registry.
type GlobalSet struct {
	mu      sync.RWMutex
	globals map[uint32]*Global
	nextName uint32
}

// NewGlobalSet creates an empty global table.
func NewGlobalSet() *GlobalSet {
	return &GlobalSet{globals: make(map[uint32]*Global)}
}

// Add advertises a new global and returns its assigned name. Existing
// client registries learn about it the next time they are sent a
// global event (the caller is responsible for broadcasting wl_output
// additions to already-connected clients; most globals are only added
// at startup, before any client connects).
func (g *GlobalSet) Add(iface string, version uint32, bind func(c *Conn, id ObjectID, version uint32)) *Global {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextName++
	gl := &Global{Name: g.nextName, Interface: iface, Version: version, Bind: bind}
	g.globals[gl.Name] = gl
	return gl
}

// Remove retracts a global (e.g. a screen's wl_output on destruction).
func (g *GlobalSet) Remove(name uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.globals, name)
}

// All returns a snapshot of currently advertised globals, safe to send
// to a freshly-bound registry without holding the lock during I/O.
func (g *GlobalSet) All() []*Global {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Global, 0, len(g.globals))
	for _, gl := range g.globals {
		out = append(out, gl)
	}
	return out
}

// Lookup finds a global by the name the client passed to bind.
func (g *GlobalSet) Lookup(name uint32) (*Global, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	gl, ok := g.globals[name]
	return gl, ok
}

// Registry is the per-connection wl_registry object: it advertises the
// server's globals to one client and dispatches that client's bind
// requests.
type Registry struct {
	id   ObjectID
	set  *GlobalSet
}

// NewRegistry creates a registry bound to a freshly allocated object id
// and sends the initial global() event for every currently advertised
// global.
func NewRegistry(c *Conn, id ObjectID, set *GlobalSet) *Registry {
	r := &Registry{id: id, set: set}
	c.Register(id, r)
	for _, gl := range set.All() {
		r.advertise(c, gl)
	}
	return r
}

func (r *Registry) advertise(c *Conn, gl *Global) {
	b := NewMessageBuilder()
	b.PutUint32(gl.Name)
	b.PutString(gl.Interface)
	b.PutUint32(gl.Version)
	args, _ := b.Build()
	_ = c.SendEvent(r.id, registryEventGlobal, args, nil)
}

// HandleRequest implements Handler; the only request a registry accepts
// is bind(name, id).
func (r *Registry) HandleRequest(c *Conn, msg *Message) error {
	if msg.Opcode != RegistryBind {
		return nil
	}
	dec := NewDecoder(msg.Args)
	name, err := dec.Uint32()
	if err != nil {
		return err
	}
	newID, err := dec.NewID()
	if err != nil {
		return err
	}
	gl, ok := r.set.Lookup(name)
	if !ok {
		return nil
	}
	gl.Bind(c, newID, gl.Version)
	return nil
}
