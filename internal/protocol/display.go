//go:build linux

package protocol

import "github.com/swcgo/swc/internal/wire"

// wl_display is always object id 1; sync and get_registry are the only
// two requests every client issues before anything else is possible.
const (
	displaySync       wire.Opcode = 0
	displayGetRegistry wire.Opcode = 1

	displayEventError    wire.Opcode = 0
	displayEventDeleteID wire.Opcode = 1

	callbackEventDone wire.Opcode = 0
)

// Display error codes, sent as the second argument of
// wl_display.error by SendError.
const (
	DisplayErrorInvalidObject  uint32 = 0
	DisplayErrorInvalidMethod  uint32 = 1
	DisplayErrorNoMemory       uint32 = 2
	DisplayErrorImplementation uint32 = 3
)

// Display is the server side of wl_display: the fixed entry point
// every connection starts with, before any other object exists.
type Display struct {
	globals *wire.GlobalSet
}

// Bootstrap registers object id 1 as wl_display on a freshly accepted
// connection.
func Bootstrap(c *wire.Conn, globals *wire.GlobalSet) *Display {
	d := &Display{globals: globals}
	c.Register(1, d)
	return d
}

// HandleRequest implements wire.Handler.
func (d *Display) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case displaySync:
		callback, err := dec.NewID()
		if err != nil {
			return err
		}
		b := wire.NewMessageBuilder()
		b.PutUint32(0)
		args, _ := b.Build()
		if err := c.SendEvent(callback, callbackEventDone, args, nil); err != nil {
			return err
		}
		return SendDeleteID(c, callback)
	case displayGetRegistry:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		wire.NewRegistry(c, id, d.globals)
	}
	return nil
}

// SendDeleteID notifies the client that id is no longer in use so it
// can recycle the number, matching wl_display.delete_id's role after
// any client-created object is destroyed.
func SendDeleteID(c *wire.Conn, id wire.ObjectID) error {
	b := wire.NewMessageBuilder()
	b.PutUint32(uint32(id))
	args, _ := b.Build()
	return c.SendEvent(1, displayEventDeleteID, args, nil)
}

// SendError reports a fatal protocol error on objectID, the event a
// client implementation surfaces to its application before the
// connection is torn down.
func SendError(c *wire.Conn, objectID wire.ObjectID, code uint32, message string) error {
	b := wire.NewMessageBuilder()
	b.PutObject(objectID)
	b.PutUint32(code)
	b.PutString(message)
	args, _ := b.Build()
	return c.SendEvent(1, displayEventError, args, nil)
}
