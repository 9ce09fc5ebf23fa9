// Package webcam implements the capture.Device interface on top of a local
// camera through OpenCV.
package webcam

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/menta2k/waste-scanner/pkg/capture"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// Device opens local cameras by numeric ID.
type Device struct{}

// New creates a webcam device.
func New() *Device {
	return &Device{}
}

// Acquire opens the camera identified by constraints.DeviceID and applies the
// requested resolution and frame rate. Returns *types.DeviceAccessError when
// the camera cannot be opened.
func (d *Device) Acquire(constraints capture.Constraints) (capture.Source, error) {
	cam, err := gocv.OpenVideoCapture(constraints.DeviceID)
	if err != nil {
		return nil, &types.DeviceAccessError{
			Device: fmt.Sprintf("camera %d", constraints.DeviceID),
			Err:    err,
		}
	}
	if !cam.IsOpened() {
		_ = cam.Close()
		return nil, &types.DeviceAccessError{
			Device: fmt.Sprintf("camera %d", constraints.DeviceID),
			Err:    fmt.Errorf("device did not open"),
		}
	}

	if constraints.Width > 0 {
		cam.Set(gocv.VideoCaptureFrameWidth, float64(constraints.Width))
	}
	if constraints.Height > 0 {
		cam.Set(gocv.VideoCaptureFrameHeight, float64(constraints.Height))
	}
	if constraints.FPS > 0 {
		cam.Set(gocv.VideoCaptureFPS, constraints.FPS)
	}

	return &source{cam: cam, mat: gocv.NewMat()}, nil
}

// source wraps an open gocv capture. Read and Close may race with each other
// during deactivation, so all access goes through the mutex.
type source struct {
	mu     sync.Mutex
	cam    *gocv.VideoCapture
	mat    gocv.Mat
	seq    uint64
	closed bool
}

// Ready reports whether the camera is open and producing frames.
func (s *source) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.cam.IsOpened()
}

// Read grabs the current frame and converts it to an image.
func (s *source) Read() (*capture.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("camera source is closed")
	}
	if ok := s.cam.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, fmt.Errorf("camera returned no frame")
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}

	s.seq++
	bounds := img.Bounds()
	return &capture.Frame{
		Image:     img,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Timestamp: time.Now(),
		Seq:       s.seq,
	}, nil
}

// Close stops the camera stream and releases the device.
func (s *source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.mat.Close(); err != nil {
		_ = s.cam.Close()
		return err
	}
	return s.cam.Close()
}
