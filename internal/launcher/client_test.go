package launcher

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// fakeHelper answers requests arriving on fd the way Helper's
// handleRequest would, without touching any VT/DRM state, so Client's
// round-trip and event-dispatch logic can be exercised without root.
func fakeHelper(t *testing.T, fd int, openSucceeds bool) {
	t.Helper()
	for {
		buf, _, err := recvMsg(fd, requestSize+unix.PathMax)
		if err != nil {
			return
		}
		if len(buf) < requestSize {
			continue
		}
		req, err := decodeRequest(buf[:requestSize])
		if err != nil {
			continue
		}

		resp := event{Type: eventResponse, Serial: req.Serial}
		respFD := -1
		switch req.Type {
		case requestOpenDevice:
			if openSucceeds {
				resp.Success = 1
				respFD = int(os.Stdin.Fd())
			}
		case requestActivateVT:
			resp.Success = 1
		}
		if err := sendMsg(fd, respFD, encodeEvent(resp)); err != nil {
			return
		}
	}
}

func newClientPair(t *testing.T) (*Client, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_LOCAL, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatal(err)
	}
	client := &Client{sock: os.NewFile(uintptr(fds[0]), "client")}
	t.Cleanup(func() { client.Close() })
	return client, fds[1]
}

func TestClientOpenDeviceSuccess(t *testing.T) {
	client, helperFD := newClientPair(t)
	go fakeHelper(t, helperFD, true)
	defer unix.Close(helperFD)

	fd, err := client.OpenDevice("/dev/null", 0)
	if err != nil {
		t.Fatal(err)
	}
	if fd < 0 {
		t.Fatal("expected a valid fd")
	}
	unix.Close(fd)
}

func TestClientOpenDeviceRefused(t *testing.T) {
	client, helperFD := newClientPair(t)
	go fakeHelper(t, helperFD, false)
	defer unix.Close(helperFD)

	if _, err := client.OpenDevice("/dev/input/event0", 0); err == nil {
		t.Fatal("expected an error when the helper refuses")
	}
}

func TestClientActivateVT(t *testing.T) {
	client, helperFD := newClientPair(t)
	go fakeHelper(t, helperFD, true)
	defer unix.Close(helperFD)

	if err := client.ActivateVT(2); err != nil {
		t.Fatal(err)
	}
}

func TestClientDispatchesActivateEvent(t *testing.T) {
	client, helperFD := newClientPair(t)
	defer unix.Close(helperFD)

	activated := make(chan struct{}, 1)
	client.OnActivate = func() { activated <- struct{}{} }
	go client.Serve()

	if err := sendMsg(helperFD, -1, encodeEvent(event{Type: eventActivate})); err != nil {
		t.Fatal(err)
	}

	select {
	case <-activated:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnActivate")
	}
}
