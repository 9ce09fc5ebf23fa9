// Package capture defines the capture-device abstraction consumed by the live
// scanner: a Device that can be acquired with constraints, and a Source that
// yields decoded frames until released.
package capture

import (
	"image"
	"time"
)

// Frame is a single decoded video frame with metadata.
type Frame struct {
	// Image is the decoded frame, directly consumable by the classifier.
	Image image.Image
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Timestamp is when the frame was captured
	Timestamp time.Time
	// Seq is a monotonic sequence number assigned by the source
	Seq uint64
}

// Constraints describe the requested capture configuration. Zero values leave
// the device default in place.
type Constraints struct {
	DeviceID int
	Width    int
	Height   int
	FPS      float64
}

// Device acquires capture sources. Acquire may fail with
// *types.DeviceAccessError when permission is denied or no hardware is
// available.
type Device interface {
	Acquire(constraints Constraints) (Source, error)
}

// Source is an acquired video frame source. It is exclusively owned by one
// live-scan session at a time; Close releases the underlying device and must
// be called on every deactivation path.
type Source interface {
	// Ready reports whether the source is producing frames.
	Ready() bool

	// Read returns the current frame. It blocks at most for one frame
	// interval on real devices.
	Read() (*Frame, error)

	// Close stops the stream and releases the device. Idempotent.
	Close() error
}
