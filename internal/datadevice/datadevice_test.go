package datadevice

import "testing"

type fakeSource struct {
	mimeTypes []string
	targets   []string
	sent      []string
	cancelled bool
}

func (s *fakeSource) MimeTypes() []string { return s.mimeTypes }
func (s *fakeSource) Target(mimeType string) { s.targets = append(s.targets, mimeType) }
func (s *fakeSource) Send(mimeType string, fd int) { s.sent = append(s.sent, mimeType) }
func (s *fakeSource) Cancelled() { s.cancelled = true }

func TestOfferAcceptForwardsToSourceTarget(t *testing.T) {
	src := &fakeSource{mimeTypes: []string{"text/plain"}}
	offer := NewOffer(src)

	offer.Accept("text/plain")

	if len(src.targets) != 1 || src.targets[0] != "text/plain" {
		t.Fatalf("targets = %v, want [text/plain]", src.targets)
	}
}

func TestSetSelectionCancelsPreviousSource(t *testing.T) {
	d := NewDevice()
	first := &fakeSource{mimeTypes: []string{"text/plain"}}
	second := &fakeSource{mimeTypes: []string{"text/html"}}

	d.SetSelection(first)
	d.SetSelection(second)

	if !first.cancelled {
		t.Fatal("expected previous selection to be cancelled")
	}
	if d.Selection() != second {
		t.Fatal("expected second source to be the current selection")
	}
}

func TestSetSelectionSameSourceIsNoop(t *testing.T) {
	d := NewDevice()
	src := &fakeSource{}
	d.SetSelection(src)
	src.cancelled = false

	d.SetSelection(src)

	if src.cancelled {
		t.Fatal("setting the same selection again should not cancel it")
	}
}

func TestSetSelectionFiresChangeCallback(t *testing.T) {
	d := NewDevice()
	calls := 0
	d.OnSelectionChanged(func() { calls++ })

	d.SetSelection(&fakeSource{})
	d.ClearSelection()

	if calls != 2 {
		t.Fatalf("onSelectionChanged called %d times, want 2", calls)
	}
}

func TestOfferSelectionSendsOfferThenSelection(t *testing.T) {
	d := NewDevice()
	src := &fakeSource{mimeTypes: []string{"text/plain"}}
	d.SetSelection(src)

	var gotOffer, gotSelection *Offer
	d.Bind(&Binding{
		Client:        1,
		SendDataOffer: func(o *Offer) { gotOffer = o },
		SendSelection: func(o *Offer) { gotSelection = o },
	})

	d.OfferSelection(1)

	if gotOffer == nil || gotSelection == nil {
		t.Fatal("expected both SendDataOffer and SendSelection to fire")
	}
	if gotOffer != gotSelection {
		t.Fatal("expected the same offer passed to both callbacks")
	}
	if len(gotOffer.MimeTypes()) != 1 || gotOffer.MimeTypes()[0] != "text/plain" {
		t.Fatalf("offer mime types = %v", gotOffer.MimeTypes())
	}
}

func TestOfferSelectionWithNoSelectionSendsNilOffer(t *testing.T) {
	d := NewDevice()
	var gotCalled bool
	var gotOffer *Offer
	d.Bind(&Binding{Client: 1, SendSelection: func(o *Offer) { gotCalled = true; gotOffer = o }})

	d.OfferSelection(1)

	if !gotCalled || gotOffer != nil {
		t.Fatal("expected SendSelection(nil) when there is no selection")
	}
}

func TestOfferSelectionSkipsUnboundClient(t *testing.T) {
	d := NewDevice()
	d.SetSelection(&fakeSource{mimeTypes: []string{"text/plain"}})

	d.OfferSelection(99) // no binding registered; must not panic
}

func TestUnbindRemovesClient(t *testing.T) {
	d := NewDevice()
	called := false
	d.Bind(&Binding{Client: 1, SendSelection: func(o *Offer) { called = true }})
	d.Unbind(1)

	d.SetSelection(&fakeSource{})
	d.OfferSelection(1)

	if called {
		t.Fatal("unbound client should not receive selection notifications")
	}
}
