package types

import "fmt"

// ModelLoadError indicates that the classifier could not be initialized.
// The failure is never cached: a later EnsureReady call starts a fresh attempt.
type ModelLoadError struct {
	Message string
	Err     error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model load failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("model load failed: %s", e.Message)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// DecodeError indicates that a still-image input could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DeviceAccessError indicates that the capture device could not be acquired,
// for example denied permission or unavailable hardware.
type DeviceAccessError struct {
	Device string
	Err    error
}

func (e *DeviceAccessError) Error() string {
	return fmt.Sprintf("capture device %s unavailable: %v", e.Device, e.Err)
}

func (e *DeviceAccessError) Unwrap() error { return e.Err }

// InferenceError indicates that a single inference attempt failed after the
// model was ready. Single-shot callers receive it; the live scheduler absorbs
// it and keeps scanning.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
