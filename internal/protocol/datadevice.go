//go:build linux

package protocol

import (
	"github.com/swcgo/swc/internal/datadevice"
	"github.com/swcgo/swc/internal/wire"
)

// wl_data_device_manager/wl_data_device/wl_data_source/wl_data_offer
// opcodes, following the same numbering these interfaces have carried
// since they were introduced (wl_data_device_manager has had no
// version bump that renumbers any of these).
const (
	dataDeviceManagerCreateDataSource wire.Opcode = 0
	dataDeviceManagerGetDataDevice    wire.Opcode = 1

	dataSourceOffer   wire.Opcode = 0
	dataSourceDestroy wire.Opcode = 1

	dataSourceEventTarget    wire.Opcode = 0
	dataSourceEventSend      wire.Opcode = 1
	dataSourceEventCancelled wire.Opcode = 2

	dataOfferAccept  wire.Opcode = 0
	dataOfferReceive wire.Opcode = 1
	dataOfferDestroy wire.Opcode = 2

	dataOfferEventOffer wire.Opcode = 0

	dataDeviceSetSelection wire.Opcode = 1
	dataDeviceRelease      wire.Opcode = 2

	dataDeviceEventDataOffer wire.Opcode = 0
	dataDeviceEventSelection wire.Opcode = 5
)

// AddDataDeviceManager advertises wl_data_device_manager, wired to the
// single compositor-wide datadevice.Device every seat shares.
func (p *Protocol) AddDataDeviceManager() *wire.Global {
	return p.Globals.Add("wl_data_device_manager", 2, func(c *wire.Conn, id wire.ObjectID, version uint32) {
		c.Register(id, &dataDeviceManagerResource{proto: p})
	})
}

type dataDeviceManagerResource struct {
	proto *Protocol
}

func (r *dataDeviceManagerResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case dataDeviceManagerCreateDataSource:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		src := &dataSourceResource{proto: r.proto, conn: c, id: id}
		c.Register(id, src)

	case dataDeviceManagerGetDataDevice:
		id, err := dec.NewID()
		if err != nil {
			return err
		}
		_, _ = dec.Object() // seat, ignored: this compositor has exactly one
		dev := &dataDeviceResource{proto: r.proto, conn: c, id: id}
		c.Register(id, dev)
		client := datadevice.ClientID(id)
		r.proto.DataDevice.Bind(&datadevice.Binding{
			Client:        client,
			SendDataOffer: dev.sendDataOffer,
			SendSelection: dev.sendSelection,
		})
		r.proto.setDataDeviceClient(c, client)
	}
	return nil
}

// dataSourceResource adapts a client's wl_data_source into
// datadevice.Source, forwarding target/send/cancelled back over the
// wire the way data.c's source_impl callbacks forward into
// wl_data_source.send_*.
type dataSourceResource struct {
	proto     *Protocol
	conn      *wire.Conn
	id        wire.ObjectID
	mimeTypes []string
}

func (r *dataSourceResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case dataSourceOffer:
		mime, err := dec.String()
		if err != nil {
			return err
		}
		r.mimeTypes = append(r.mimeTypes, mime)
	case dataSourceDestroy:
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

func (r *dataSourceResource) MimeTypes() []string { return r.mimeTypes }

func (r *dataSourceResource) Target(mimeType string) {
	b := wire.NewMessageBuilder()
	b.PutString(mimeType)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, dataSourceEventTarget, args, nil)
}

func (r *dataSourceResource) Send(mimeType string, fd int) {
	b := wire.NewMessageBuilder()
	b.PutString(mimeType)
	b.PutFD(fd)
	args, fds := b.Build()
	_ = r.conn.SendEvent(r.id, dataSourceEventSend, args, fds)
}

func (r *dataSourceResource) Cancelled() {
	b := wire.NewMessageBuilder()
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, dataSourceEventCancelled, args, nil)
}

// dataOfferResource is the server side of one recipient's view of a
// selection, created fresh by sendDataOffer for each client currently
// bound to a data device.
type dataOfferResource struct {
	id    wire.ObjectID
	conn  *wire.Conn
	offer *datadevice.Offer
}

func (r *dataOfferResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case dataOfferAccept:
		_, _ = dec.Uint32() // serial
		mime, _ := dec.String()
		r.offer.Accept(mime)
	case dataOfferReceive:
		mime, err := dec.String()
		if err != nil {
			return err
		}
		fd, err := dec.FD()
		if err != nil {
			return err
		}
		r.offer.Receive(mime, fd)
	case dataOfferDestroy:
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

// dataDeviceResource is one client's handle to the shared selection.
type dataDeviceResource struct {
	proto *Protocol
	conn  *wire.Conn
	id    wire.ObjectID

	// offerIDs remembers the object id sendDataOffer allocated for each
	// outstanding offer, so a later sendSelection for the same offer can
	// reference it in wl_data_device.selection without the caller
	// threading the id through separately.
	offerIDs map[*datadevice.Offer]wire.ObjectID
}

func (r *dataDeviceResource) HandleRequest(c *wire.Conn, msg *wire.Message) error {
	dec := decoderFor(msg)
	switch msg.Opcode {
	case dataDeviceSetSelection:
		srcID, err := dec.Object()
		if err != nil {
			return err
		}
		if srcID == 0 {
			r.proto.DataDevice.ClearSelection()
			return nil
		}
		h, ok := c.Lookup(srcID)
		if !ok {
			return nil
		}
		if src, ok := h.(*dataSourceResource); ok {
			r.proto.DataDevice.SetSelection(src)
		}
	case dataDeviceRelease:
		r.proto.DataDevice.Unbind(datadevice.ClientID(r.id))
		c.Unregister(r.id)
		return SendDeleteID(c, r.id)
	}
	return nil
}

func (r *dataDeviceResource) sendDataOffer(offer *datadevice.Offer) {
	id := r.conn.AllocID()
	off := &dataOfferResource{id: id, conn: r.conn, offer: offer}
	r.conn.Register(id, off)
	if r.offerIDs == nil {
		r.offerIDs = make(map[*datadevice.Offer]wire.ObjectID)
	}
	r.offerIDs[offer] = id

	b := wire.NewMessageBuilder()
	b.PutNewID(id)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, dataDeviceEventDataOffer, args, nil)

	for _, mime := range offer.MimeTypes() {
		b.Reset()
		b.PutString(mime)
		args, _ = b.Build()
		_ = r.conn.SendEvent(id, dataOfferEventOffer, args, nil)
	}
}

// sendSelection announces offer as the current selection; it is always
// called right after sendDataOffer for the same offer (offer_selection's
// ordering), so the object id is already on record.
func (r *dataDeviceResource) sendSelection(offer *datadevice.Offer) {
	id := r.offerIDs[offer]
	delete(r.offerIDs, offer)
	b := wire.NewMessageBuilder()
	b.PutObject(id)
	args, _ := b.Build()
	_ = r.conn.SendEvent(r.id, dataDeviceEventSelection, args, nil)
}
