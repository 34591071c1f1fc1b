//go:build opencv

package scan

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// nativeDetector wraps the OpenCV graphical barcode detector. It is the fast
// path of the chain and runs against the raw, non-preprocessed frame.
type nativeDetector struct {
	mu  sync.Mutex
	det gocv.BarcodeDetector
}

// probeNative reports the OpenCV detector when the binary was built with the
// opencv tag.
func probeNative() (Decoder, bool) {
	return &nativeDetector{det: gocv.NewBarcodeDetector()}, true
}

// Name implements Decoder.
func (n *nativeDetector) Name() string { return "opencv" }

// Decode implements Decoder.
func (n *nativeDetector) Decode(frame *image.RGBA) (Decoded, error) {
	mat, err := gocv.ImageToMatRGBA(frame)
	if err != nil {
		return Decoded{}, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)

	points := gocv.NewMat()
	defer points.Close()

	var payloads, kinds []string
	n.mu.Lock()
	ok := n.det.DetectAndDecodeWithType(gray, &payloads, &kinds, &points)
	n.mu.Unlock()
	if !ok || len(payloads) == 0 || payloads[0] == "" {
		return Decoded{}, ErrNoCode
	}
	format := ""
	if len(kinds) > 0 {
		format = kinds[0]
	}
	return Decoded{Payload: payloads[0], Format: format}, nil
}
