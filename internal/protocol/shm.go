//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/buffer"
	"github.com/swcgo/swc/internal/wire"
)

// wl_shm/wl_shm_pool/wl_buffer opcodes, matching the numbers gogpu's
// client-side Wayland package already uses for these interfaces.
const (
	shmCreatePool wire.Opcode = 0

	shmEventFormat wire.Opcode = 0

	shmPoolCreateBuffer wire.Opcode = 0
	shmPoolDestroy      wire.Opcode = 1
	shmPoolResize       wire.Opcode = 2

	bufferDestroy      wire.Opcode = 0
	bufferEventRelease wire.Opcode = 0
)

// wl_shm format codes, the subset internal/buffer.Format supports.
const (
	shmFormatARGB8888 uint32 = 0
	shmFormatXRGB8888 uint32 = 1
)

// AddShm advertises wl_shm and the pixel formats the software repaint
// path can read directly.
func (p *Protocol) AddShm() *wire.Global {
	return p.Globals.Add("wl_shm", 1, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &shmResource{proto: p})
		sendFormat(c, id, shmFormatARGB8888)
		sendFormat(c, id, shmFormatXRGB8888)
	})
}

func sendFormat(c *wire.Conn, id wire.ObjectID, format uint32) {
	b := wire.NewMessageBuilder()
	b.PutUint32(format)
	args, _ := b.Build()
	_ = c.SendEvent(id, shmEventFormat, args, nil)
}

type shmResource struct {
	proto *Protocol
}

func (r *shmResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	if msg.Opcode != shmCreatePool {
		return nil
	}
	dec := decoderFor(msg)
	id, err := dec.NewID()
	if err != nil {
		return err
	}
	fd, err := dec.FD()
	if err != nil {
		return err
	}
	size, err := dec.Int32()
	if err != nil {
		return err
	}
	pool, err := buffer.NewPool(fd, size)
	if err != nil {
		return SendError(c, id, DisplayErrorInvalidObject, err.Error())
	}
	c.Register(id, &shmPoolResource{proto: r.proto, id: id, pool: pool})
	return nil
}

type shmPoolResource struct {
	proto *Protocol
	id    wire.ObjectID
	pool  *buffer.Pool
}

func (r *shmPoolResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case shmPoolCreateBuffer:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		offset, _ := dec.Int32()
		width, _ := dec.Int32()
		height, _ := dec.Int32()
		stride, _ := dec.Int32()
		format, _ := dec.Uint32()

		var f buffer.Format
		switch format {
		case shmFormatARGB8888:
			f = buffer.FormatARGB8888
		case shmFormatXRGB8888:
			f = buffer.FormatXRGB8888
		default:
			return SendError(c, id, DisplayErrorInvalidObject, buffer.ErrUnsupportedFormat.Error())
		}
		buf, err := buffer.NewShmBuffer(r.pool, offset, width, height, stride, f)
		if err != nil {
			return SendError(c, id, DisplayErrorInvalidObject, err.Error())
		}
		buf.OnRelease(func() {
			b := wire.NewMessageBuilder()
			args, _ := b.Build()
			_ = c.SendEvent(id, bufferEventRelease, args, nil)
		})
		r.proto.setBuffer(c, id, buf)
		c.Register(id, &bufferResource{proto: r.proto, id: id})

	case shmPoolDestroy:
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)

	case shmPoolResize:
		size, _ := dec.Int32()
		return r.pool.Resize(size)
	}
	return nil
}

type bufferResource struct {
	proto *Protocol
	id    wire.ObjectID
}

func (r *bufferResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	if msg.Opcode == bufferDestroy {
		r.proto.dropBuffer(c, r.id)
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}
