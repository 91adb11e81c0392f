package buffer

import (
	"os"
	"testing"
)

func tempPoolFile(t *testing.T, size int64) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "shm-pool")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return f
}

func TestNewShmBufferRejectsOversizedView(t *testing.T) {
	f := tempPoolFile(t, 100)
	defer f.Close()

	pool, err := NewPool(int(f.Fd()), 100)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if _, err := NewShmBuffer(pool, 0, 10, 10, 64, FormatXRGB8888); err == nil {
		t.Fatal("expected error for a buffer view exceeding the pool size")
	}
}

func TestNewShmBufferRejectsUnsupportedFormat(t *testing.T) {
	f := tempPoolFile(t, 4096)
	defer f.Close()

	pool, err := NewPool(int(f.Fd()), 4096)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if _, err := NewShmBuffer(pool, 0, 10, 10, 40, Format(99)); err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestShmBufferPixelsSlicesPoolAtOffset(t *testing.T) {
	f := tempPoolFile(t, 4096)
	defer f.Close()

	pool, err := NewPool(int(f.Fd()), 4096)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	buf, err := NewShmBuffer(pool, 100, 4, 4, 16, FormatARGB8888)
	if err != nil {
		t.Fatalf("NewShmBuffer: %v", err)
	}
	if got := len(buf.Pixels()); got != 16*4 {
		t.Fatalf("Pixels() length = %d, want %d", got, 16*4)
	}
	if !buf.HasAlpha() {
		t.Fatal("ARGB8888 buffer should report HasAlpha")
	}
}

func TestShmBufferReleaseFiresCallback(t *testing.T) {
	f := tempPoolFile(t, 4096)
	defer f.Close()

	pool, err := NewPool(int(f.Fd()), 4096)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	buf, err := NewShmBuffer(pool, 0, 4, 4, 16, FormatXRGB8888)
	if err != nil {
		t.Fatalf("NewShmBuffer: %v", err)
	}
	var released bool
	buf.OnRelease(func() { released = true })
	buf.Release()
	if !released {
		t.Fatal("expected release callback to fire")
	}
}
