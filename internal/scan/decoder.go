package scan

import (
	"errors"
	"image"
	"log/slog"
	"time"
)

// ErrNoCode is returned by a Decoder when the frame contains no readable
// symbol. It is an expected, frequent outcome and is never surfaced to the
// caller; the session simply retries on the next sample.
var ErrNoCode = errors.New("no barcode found in frame")

// Decoded is a single successful read. It is transient: the session hands it
// to the sink and keeps no reference.
type Decoded struct {
	Payload string    `json:"payload"`
	Format  string    `json:"format"`
	At      time.Time `json:"at"`
}

// Decoder reads a barcode out of a raster frame.
type Decoder interface {
	// Decode returns the first symbol found in the frame, or ErrNoCode.
	Decode(frame *image.RGBA) (Decoded, error)

	// Name identifies the decoder in logs.
	Name() string
}

// Chain is the two-stage decode attempt used on every sample: a native
// detector (when the capability probe found one) against the raw frame first,
// then the software decoder against a contrast-stretched copy of the frame.
// The native path is skipped entirely when the probe found nothing, and the
// fallback is skipped when the native path yields a symbol.
type Chain struct {
	native   Decoder
	software Decoder
}

// NewChain builds the decode chain from a capability probe and the software
// fallback. Pass nil for native when no platform detector is available.
func NewChain(native, software Decoder) *Chain {
	return &Chain{native: native, software: software}
}

// DefaultChain probes for a native detector and wires the gozxing fallback.
func DefaultChain() *Chain {
	native, ok := probeNative()
	if !ok {
		native = nil
	}
	return NewChain(native, NewSoftwareDecoder())
}

// Decode runs one sample through the chain. The frame is normalized in place
// before the fallback attempt; callers must not reuse it afterwards.
func (c *Chain) Decode(frame *image.RGBA) (Decoded, bool) {
	if c.native != nil {
		d, err := c.native.Decode(frame)
		if err == nil {
			return d, true
		}
		if !errors.Is(err, ErrNoCode) {
			slog.Debug("native detector error", "decoder", c.native.Name(), "error", err)
		}
	}

	// The software reader needs the contrast stretch that the native
	// detector does not; normalization is best effort and never aborts
	// the sample.
	Normalize(frame)

	if c.software != nil {
		d, err := c.software.Decode(frame)
		if err == nil {
			return d, true
		}
		if !errors.Is(err, ErrNoCode) {
			slog.Debug("software decoder error", "decoder", c.software.Name(), "error", err)
		}
	}
	return Decoded{}, false
}
