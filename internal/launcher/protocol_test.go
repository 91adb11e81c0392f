package launcher

import "testing"

func TestRequestRoundTrip(t *testing.T) {
	in := request{Type: requestOpenDevice, Serial: 7, Flags: 0x802, VT: 0}
	out, err := decodeRequest(encodeRequest(in))
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestEventRoundTrip(t *testing.T) {
	in := event{Type: eventResponse, Serial: 42, Success: 1}
	out, err := decodeEvent(encodeEvent(in))
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestDecodeRequestTooShort(t *testing.T) {
	if _, err := decodeRequest([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error decoding a short request")
	}
}

func TestDecodeEventTooShort(t *testing.T) {
	if _, err := decodeEvent([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error decoding a short event")
	}
}
