//go:build linux

package drmkms

import "testing"

func TestFindAvailableCrtcPicksFirstUnclaimed(t *testing.T) {
	crtcIDs := []uint32{10, 11, 12}
	encoders := []*Encoder{{ID: 1, PossibleCrtcs: 0b011}}

	idx, ok := findAvailableCrtc(crtcIDs, encoders, 0)
	if !ok || idx != 0 {
		t.Fatalf("findAvailableCrtc() = (%d, %v), want (0, true)", idx, ok)
	}

	idx, ok = findAvailableCrtc(crtcIDs, encoders, 0b001)
	if !ok || idx != 1 {
		t.Fatalf("findAvailableCrtc() with crtc0 taken = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestFindAvailableCrtcExhausted(t *testing.T) {
	encoders := []*Encoder{{ID: 1, PossibleCrtcs: 0b011}}
	if _, ok := findAvailableCrtc([]uint32{0, 1}, encoders, 0b011); ok {
		t.Fatal("expected no available CRTC when all possible ones are taken")
	}
}

func TestFindAvailableIDAllocatesLowestFreeBit(t *testing.T) {
	id, ok := findAvailableID(0)
	if !ok || id != 0 {
		t.Fatalf("findAvailableID(0) = (%d, %v), want (0, true)", id, ok)
	}

	id, ok = findAvailableID(0b0101)
	if !ok || id != 1 {
		t.Fatalf("findAvailableID(0b0101) = (%d, %v), want (1, true)", id, ok)
	}
}

func TestFindAvailableIDExhausted(t *testing.T) {
	if _, ok := findAvailableID(^uint32(0)); ok {
		t.Fatal("expected no available id once all 32 bits are taken")
	}
}

func TestIoctlNumbersMatchKnownDRMConstants(t *testing.T) {
	// These are cross-checked against the widely deployed
	// DRM_IOCTL_MODE_CREATE_DUMB / ADDFB / SETCRTC / DESTROY_DUMB values
	// (0xc02064b2, 0xc01c64ae, 0xc06864a2, 0xc00464b4), which encode
	// direction, struct size, 'd' type, and ioctl number the same way
	// iowr does here.
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"CREATE_DUMB", ioctlModeCreateDumb, 0xc02064b2},
		{"ADDFB", ioctlModeAddFB, 0xc01c64ae},
		{"SETCRTC", ioctlModeSetCrtc, 0xc06864a2},
		{"DESTROY_DUMB", ioctlModeDestroyDumb, 0xc00464b4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("%s = %#x, want %#x", tt.name, tt.got, tt.want)
			}
		})
	}
}
