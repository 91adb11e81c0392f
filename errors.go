package swc

import "errors"

// Sentinel errors returned by Server and the packages it wires
// together; wrap with fmt.Errorf("%w", ...) to add call-site context.
var (
	// ErrNotInitialized is returned when operations are attempted
	// before Server.Run has brought up DRM, input, and the listener.
	ErrNotInitialized = errors.New("swc: not initialized")

	// ErrNoGPU is returned when no usable DRM/KMS device is found.
	ErrNoGPU = errors.New("swc: no usable DRM device found")

	// ErrNoSeat is returned when no seat is available to attach input
	// devices and screens to.
	ErrNoSeat = errors.New("swc: no seat available")

	// ErrAlreadyRunning is returned by Run if called twice on the same
	// Server.
	ErrAlreadyRunning = errors.New("swc: server already running")
)
