package scan

import (
	"errors"
	"image"
)

// Default raster dimensions requested from the camera, and assumed when the
// stream has not reported its own yet.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrStreamEnded signals that the underlying camera stream ended and the
// session should wind down. It is distinct from a transient grab failure,
// which only skips the current sample.
var ErrStreamEnded = errors.New("camera stream ended")

// CameraUnavailableError covers every acquisition failure: permission
// denied, no device present, unsatisfiable format constraints. It is fatal
// to the session but never to the process.
type CameraUnavailableError struct {
	Device string
	Reason string
	Err    error
}

func (e *CameraUnavailableError) Error() string {
	msg := "camera unavailable"
	if e.Device != "" {
		msg += " (" + e.Device + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CameraUnavailableError) Unwrap() error { return e.Err }

// Source owns a live camera stream and produces raster snapshots of it.
// Frame returns (nil, nil) when no frame is ready yet; the sampler skips
// those silently. Close releases the underlying hardware tracks and is safe
// to call multiple times.
type Source interface {
	Frame() (*image.RGBA, error)
	Close() error
}

// OpenFunc acquires a camera stream. An empty device string means "pick a
// rear-facing camera when one can be identified, otherwise any camera".
// Failures are reported as *CameraUnavailableError.
type OpenFunc func(device string) (Source, error)

func unavailable(device, reason string, err error) error {
	return &CameraUnavailableError{Device: device, Reason: reason, Err: err}
}

func frameSize(frame *image.RGBA) (int, int) {
	if frame == nil {
		return 0, 0
	}
	b := frame.Bounds()
	return b.Dx(), b.Dy()
}
