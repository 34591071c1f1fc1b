package scan

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// SoftwareDecoder is the pure-Go fallback symbology reader. It tries each
// configured reader in order and takes the first hit. Readers cover the
// retail symbologies plus QR for the admin flows.
type SoftwareDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewSoftwareDecoder creates a decoder for EAN-13, EAN-8, UPC-A, UPC-E,
// Code128, Code39 and QR.
func NewSoftwareDecoder() *SoftwareDecoder {
	return &SoftwareDecoder{
		readers: []gozxing.Reader{
			oned.NewEAN13Reader(),
			oned.NewEAN8Reader(),
			oned.NewUPCAReader(),
			oned.NewUPCEReader(),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			qrcode.NewQRCodeReader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Name implements Decoder.
func (d *SoftwareDecoder) Name() string { return "gozxing" }

// Decode implements Decoder. A frame in which no reader finds a symbol
// yields ErrNoCode.
func (d *SoftwareDecoder) Decode(frame *image.RGBA) (Decoded, error) {
	bmp, err := newBinaryBitmap(frame)
	if err != nil {
		return Decoded{}, fmt.Errorf("binarizing frame: %w", err)
	}
	for _, r := range d.readers {
		res, err := r.Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		return Decoded{
			Payload: res.GetText(),
			Format:  res.GetBarcodeFormat().String(),
		}, nil
	}
	return Decoded{}, ErrNoCode
}

func newBinaryBitmap(img image.Image) (*gozxing.BinaryBitmap, error) {
	return gozxing.NewBinaryBitmapFromImage(img)
}
