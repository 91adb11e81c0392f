// Package datadevice implements clipboard/selection sharing between
// clients: a data source advertises the mime types it can produce, a
// data offer is handed to other clients so they can request one of
// those types, and a single data device tracks which source is the
// current selection. It mirrors libswc's data.c/data_device.c split:
// "data" (source/offer mime-type bookkeeping) versus "data_device"
// (the one-per-seat selection singleton every client binds to).
package datadevice

import "golang.org/x/sys/unix"

// Source is a client's advertised clipboard/drag-and-drop content,
// wl_data_source from the requesting client's point of view. The
// concrete implementation forwards Target/Send/Cancelled back to that
// client over its own wl_data_source resource.
type Source interface {
	// MimeTypes returns the mime types this source can produce, in the
	// order the client offered them (source_offer appends to wl_array).
	MimeTypes() []string

	// Target notifies the source which mime type the recipient's cursor
	// is currently hovering (wl_data_source.send_target), sent whenever
	// a recipient accepts a type from one of this source's offers.
	Target(mimeType string)

	// Send asks the source to write its data in mimeType to fd
	// (wl_data_source.send_send); the caller closes fd once Send
	// returns, matching data.c's offer_receive.
	Send(mimeType string, fd int)

	// Cancelled notifies the source it has been replaced as the
	// selection (wl_data_source.send_cancelled).
	Cancelled()
}

// Offer is a recipient-side view of a Source, created fresh each time
// a selection is announced to a client (data_offer_new): recipients
// never see the source directly, only what it's willing to produce.
type Offer struct {
	source Source
}

// NewOffer wraps a source for a single recipient, snapshotting nothing
// itself; MimeTypes always reflects the source's current set, matching
// data_send_mime_types being called at offer-creation time in the
// original (mime types are fixed by the time an offer is announced, in
// practice, since clients stop calling set_mime_type once dragging or
// copying begins).
func NewOffer(source Source) *Offer {
	return &Offer{source: source}
}

// MimeTypes returns the mime types the underlying source can produce.
func (o *Offer) MimeTypes() []string { return o.source.MimeTypes() }

// Accept notifies the source that the recipient has chosen mimeType
// (wl_data_offer.accept forwarding to wl_data_source.send_target).
// mimeType == "" signals the recipient accepts nothing currently under
// the cursor, matching the protocol's documented empty-string case.
func (o *Offer) Accept(mimeType string) {
	o.source.Target(mimeType)
}

// Receive asks the source to write mimeType's data into fd
// (wl_data_offer.receive forwarding to wl_data_source.send_send), and
// closes fd once the source is done, mirroring offer_receive's
// unconditional close(fd) after the request is forwarded.
func (o *Offer) Receive(mimeType string, fd int) {
	o.source.Send(mimeType, fd)
	unix.Close(fd)
}
