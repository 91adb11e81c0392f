//go:build linux

package protocol

import "github.com/swcgo/swc/internal/wire"

// wl_output event opcodes. wl_output defines no requests until version
// 3's release; every screen this compositor exposes is advertised at
// version 2, matching the geometry/mode/done/scale events every
// upstream client already expects.
const (
	outputEventGeometry wire.Opcode = 0
	outputEventMode     wire.Opcode = 1
	outputEventDone     wire.Opcode = 2
	outputEventScale    wire.Opcode = 3
)

const (
	outputSubpixelUnknown  int32 = 0
	outputTransformNormal  int32 = 0
	outputModeCurrent      uint32 = 0x1
	outputModePreferred    uint32 = 0x2
)

// bindOutput sends a fresh client the full geometry/mode/scale burst
// for one screen, mirroring output_bind's one-shot advertisement: this
// compositor never changes a screen's mode after startup, so there is
// nothing to re-send on a later event.
func bindOutput(c *wire.Conn, id wire.ObjectID, sb *ScreenBinding) {
	c.Register(id, outputResource{})
	geom := sb.Screen.Geometry()

	b := wire.NewMessageBuilder()
	b.PutInt32(geom.X)
	b.PutInt32(geom.Y)
	b.PutInt32(int32(sb.Screen.Width()))  // physical_width, mm unknown so reuse pixel size
	b.PutInt32(int32(sb.Screen.Height())) // physical_height
	b.PutInt32(outputSubpixelUnknown)
	b.PutString("swc")
	b.PutString("drmkms")
	b.PutInt32(outputTransformNormal)
	args, _ := b.Build()
	_ = c.SendEvent(id, outputEventGeometry, args, nil)

	b.Reset()
	b.PutUint32(outputModeCurrent | outputModePreferred)
	b.PutInt32(int32(sb.Screen.Width()))
	b.PutInt32(int32(sb.Screen.Height()))
	b.PutInt32(sb.Screen.RefreshRate())
	args, _ = b.Build()
	_ = c.SendEvent(id, outputEventMode, args, nil)

	b.Reset()
	b.PutInt32(1)
	args, _ = b.Build()
	_ = c.SendEvent(id, outputEventScale, args, nil)

	b.Reset()
	args, _ = b.Build()
	_ = c.SendEvent(id, outputEventDone, args, nil)
}

// outputResource answers wl_output requests; version 2 (what every
// screen is bound at) defines none, so any request is simply ignored.
type outputResource struct{}

func (outputResource) HandleRequest(c *wire.Conn, msg *wire.Message) error { return nil }
