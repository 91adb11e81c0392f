//go:build linux

package protocol

import (
	iseat "github.com/swcgo/swc/internal/seat"
	"github.com/swcgo/swc/internal/wire"
	"github.com/swcgo/swc/internal/xkb"
)

// wl_seat/wl_keyboard/wl_pointer opcodes, matching gogpu's client-side
// package numbers for the same interfaces.
const (
	seatGetPointer  wire.Opcode = 0
	seatGetKeyboard wire.Opcode = 1
	seatGetTouch    wire.Opcode = 2

	seatEventCapabilities wire.Opcode = 0
	seatEventName         wire.Opcode = 1

	pointerSetCursor wire.Opcode = 0
	pointerRelease   wire.Opcode = 1

	pointerEventEnter  wire.Opcode = 0
	pointerEventLeave  wire.Opcode = 1
	pointerEventMotion wire.Opcode = 2
	pointerEventButton wire.Opcode = 3
	pointerEventFrame  wire.Opcode = 5

	keyboardRelease wire.Opcode = 0

	keyboardEventKeymap    wire.Opcode = 0
	keyboardEventEnter     wire.Opcode = 1
	keyboardEventLeave     wire.Opcode = 2
	keyboardEventKey       wire.Opcode = 3
	keyboardEventModifiers wire.Opcode = 4
)

const (
	seatCapPointer  uint32 = 1
	seatCapKeyboard uint32 = 2

	keymapFormatTextV1 uint32 = 1

	keyStateReleased uint32 = 0
	keyStatePressed  uint32 = 1

	buttonStateReleased uint32 = 0
	buttonStatePressed  uint32 = 1
)

// AddSeat advertises wl_seat, wired to the single internal/seat.Seat
// every evdev device was attached to at startup.
func (p *Protocol) AddSeat() *wire.Global {
	return p.Globals.Add("wl_seat", 4, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &seatResource{proto: p})
		b := wire.NewMessageBuilder()
		b.PutUint32(seatCapPointer | seatCapKeyboard)
		args, _ := b.Build()
		_ = c.SendEvent(id, seatEventCapabilities, args, nil)
	})
}

type seatResource struct {
	proto *Protocol
}

func (r *seatResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case seatGetPointer:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		pr := &pointerResource{proto: r.proto, conn: c, id: id}
		c.Register(id, pr)
		r.proto.Seat.Pointer.AddHandler(pr)
		r.proto.addPointerResource(c, pr)

	case seatGetKeyboard:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		kr := &keyboardResource{proto: r.proto, conn: c, id: id}
		c.Register(id, kr)
		r.proto.Seat.Keyboard.AddHandler(kr)
		r.proto.addKeyboardResource(c, kr)
		if r.proto.Keymap != nil {
			b := wire.NewMessageBuilder()
			b.PutUint32(keymapFormatTextV1)
			b.PutFD(r.proto.Keymap.Fd)
			b.PutUint32(r.proto.Keymap.Size)
			args, fds := b.Build()
			_ = c.SendEvent(id, keyboardEventKeymap, args, fds)
		}

	case seatGetTouch:
		// Touch input is not modeled; a client asking for it gets an
		// object that never receives events.
		if id, err := dec.NewID(); err == nil {
			c.Register(id, outputResource{})
		}
	}
	return nil
}

// pointerResource is the server side of one client's wl_pointer. It
// implements seat.PointerHandler so raw motion/button events reach
// this client whenever the corresponding surface has pointer focus;
// hit-testing which surface that is is left to the caller wiring
// pointer motion into the seat (see the server composition root).
type pointerResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID
}

func (r *pointerResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	switch msg.Opcode {
	case pointerSetCursor:
		// Cursor image selection is not implemented: this compositor
		// does not yet render a cursor surface of its own.
	case pointerRelease:
		r.proto.Seat.Pointer.RemoveHandler(r)
		r.proto.removePointerResource(c, r)
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

// HandleMotion implements seat.PointerHandler; it never consumes the
// event (returns false) and sends nothing itself, so the seat package
// always proceeds to its own deliver callback, which does the focus
// routing and sends wl_pointer.motion.
func (r *pointerResource) HandleMotion(time uint32, x, y int32) bool { return false }

// HandleButton implements seat.PointerHandler.
func (r *pointerResource) HandleButton(time uint32, button uint32, pressed bool) bool { return false }

// SendMotion delivers a motion event in surface-local fixed-point
// coordinates, called by the focus-routing code once it has resolved
// which surface-local (sx, sy) the pointer is over.
func (r *pointerResource) SendMotion(time uint32, sx, sy wire.Fixed) {
	b := wire.NewMessageBuilder()
	b.PutUint32(time)
	b.PutFixed(sx)
	b.PutFixed(sy)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, pointerEventMotion, args, nil)
	r.sendFrame()
}

// SendEnter announces the pointer entering surfaceID at (sx, sy).
func (r *pointerResource) SendEnter(serial uint32, surfaceID wire.ObjectID, sx, sy wire.Fixed) {
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutObject(surfaceID)
	b.PutFixed(sx)
	b.PutFixed(sy)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, pointerEventEnter, args, nil)
	r.sendFrame()
}

// SendLeave announces the pointer leaving surfaceID.
func (r *pointerResource) SendLeave(serial uint32, surfaceID wire.ObjectID) {
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutObject(surfaceID)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, pointerEventLeave, args, nil)
	r.sendFrame()
}

// SendButton forwards a button press/release.
func (r *pointerResource) SendButton(serial, time, button uint32, pressed bool) {
	state := buttonStateReleased
	if pressed {
		state = buttonStatePressed
	}
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutUint32(time)
	b.PutUint32(button)
	b.PutUint32(state)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, pointerEventButton, args, nil)
	r.sendFrame()
}

func (r *pointerResource) sendFrame() {
	b := wire.NewMessageBuilder()
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, pointerEventFrame, args, nil)
}

// keyboardResource is the server side of one client's wl_keyboard.
type keyboardResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID
}

func (r *keyboardResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	if msg.Opcode == keyboardRelease {
		r.proto.Seat.Keyboard.RemoveHandler(r)
		r.proto.removeKeyboardResource(c, r)
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

// HandleKey implements seat.KeyboardHandler. Keyboard.AddHandler puts
// the most recently added handler first, so this handler, added when a
// client gets its wl_keyboard, runs ahead of the compositor key
// bindings registered at startup; it never consumes the event, so the
// bindings still see every key.
func (r *keyboardResource) HandleKey(time uint32, sym xkb.Keysym, pressed bool, mods xkb.Modifier) bool {
	return false
}

// SendKey forwards a raw key event in evdev keycode space.
func (r *keyboardResource) SendKey(serial, time, code uint32, pressed bool) {
	state := keyStateReleased
	if pressed {
		state = keyStatePressed
	}
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutUint32(time)
	b.PutUint32(code)
	b.PutUint32(state)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, keyboardEventKey, args, nil)
}

// SendModifiers forwards the compact modifier mask translated into the
// depressed/latched/locked/group quadruple wl_keyboard.modifiers
// expects; this compositor tracks no latched or locked state, so only
// mods_depressed ever carries bits.
func (r *keyboardResource) SendModifiers(serial uint32, mods xkb.Modifier) {
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutUint32(uint32(mods))
	b.PutUint32(0)
	b.PutUint32(0)
	b.PutUint32(0)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, keyboardEventModifiers, args, nil)
}

// SendEnter announces keyboard focus entering surfaceID with the given
// currently-pressed evdev keycodes.
func (r *keyboardResource) SendEnter(serial uint32, surfaceID wire.ObjectID, pressed []uint32) {
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutObject(surfaceID)
	data := make([]byte, len(pressed)*4)
	for i, code := range pressed {
		data[i*4] = byte(code)
		data[i*4+1] = byte(code >> 8)
		data[i*4+2] = byte(code >> 16)
		data[i*4+3] = byte(code >> 24)
	}
	b.PutArray(data)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, keyboardEventEnter, args, nil)
}

// SendLeave announces keyboard focus leaving surfaceID.
func (r *keyboardResource) SendLeave(serial uint32, surfaceID wire.ObjectID) {
	b := wire.NewMessageBuilder()
	b.PutUint32(serial)
	b.PutObject(surfaceID)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, keyboardEventLeave, args, nil)
}

var _ iseat.PointerHandler = (*pointerResource)(nil)
var _ iseat.KeyboardHandler = (*keyboardResource)(nil)
