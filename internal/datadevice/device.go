package datadevice

// ClientID identifies whichever client a Binding belongs to; the
// caller supplies whatever it already uses to key clients (a
// connection id from internal/wire, typically).
type ClientID uint32

// Binding is one client's handle to the shared Device (the per-client
// wl_resource data_device_bind creates). The two callbacks are how the
// compositor actually notifies a client over its wire connection; both
// may be nil for a client that only ever sets a selection and never
// receives one.
type Binding struct {
	Client ClientID

	// SendDataOffer announces a new data_offer object to the client
	// before SendSelection references it, matching new_offer's
	// wl_data_device.send_data_offer followed by the mime-type events.
	SendDataOffer func(offer *Offer)

	// SendSelection announces that offer (or nil, clearing the
	// selection) is now current for this client
	// (wl_data_device.send_selection).
	SendSelection func(offer *Offer)
}

// Device is the single compositor-wide selection, every client's
// clipboard bound to the same struct just as libswc's one
// struct data_device is shared by every data_device_bind call.
type Device struct {
	selection Source
	bindings  map[ClientID]*Binding

	onSelectionChanged func()
}

// NewDevice creates an empty data device with no current selection.
func NewDevice() *Device {
	return &Device{bindings: make(map[ClientID]*Binding)}
}

// OnSelectionChanged installs a callback fired whenever the selection
// changes (DATA_DEVICE_EVENT_SELECTION_CHANGED); the caller typically
// reacts by calling OfferSelection for whichever client currently has
// keyboard focus.
func (d *Device) OnSelectionChanged(fn func()) { d.onSelectionChanged = fn }

// Bind registers a client's data_device resource.
func (d *Device) Bind(b *Binding) { d.bindings[b.Client] = b }

// Unbind removes a client's data_device resource, e.g. on disconnect.
func (d *Device) Unbind(client ClientID) { delete(d.bindings, client) }

// Selection returns the current selection source, or nil.
func (d *Device) Selection() Source { return d.selection }

// SetSelection installs a new selection source, cancelling whatever it
// replaces (set_selection): a client setting the same source it
// already owns is a no-op, matching the original's early-return guard.
func (d *Device) SetSelection(source Source) {
	if source == d.selection {
		return
	}
	if d.selection != nil {
		d.selection.Cancelled()
	}
	d.selection = source
	if d.onSelectionChanged != nil {
		d.onSelectionChanged()
	}
}

// ClearSelection drops the current selection without installing a new
// one, fired when the selection source's owning resource is destroyed
// (handle_selection_destroy).
func (d *Device) ClearSelection() {
	if d.selection == nil {
		return
	}
	d.selection = nil
	if d.onSelectionChanged != nil {
		d.onSelectionChanged()
	}
}

// OfferSelection announces the current selection to one client
// (data_device_offer_selection): builds a fresh Offer if there is a
// selection and the client has a binding, or clears the client's
// selection if there is none. A client with no binding is silently
// skipped, matching the original's "nothing to do" early return.
func (d *Device) OfferSelection(client ClientID) {
	b, ok := d.bindings[client]
	if !ok {
		return
	}
	if d.selection == nil {
		if b.SendSelection != nil {
			b.SendSelection(nil)
		}
		return
	}
	offer := NewOffer(d.selection)
	if b.SendDataOffer != nil {
		b.SendDataOffer(offer)
	}
	if b.SendSelection != nil {
		b.SendSelection(offer)
	}
}
