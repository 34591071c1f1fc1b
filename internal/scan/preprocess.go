package scan

import "image"

// Normalize converts the frame to grayscale and stretches its contrast to
// the full 0..255 range, in place. Each pixel's luminance is
// Y = 0.299R + 0.587G + 0.114B; the frame minimum and maximum are then
// rescaled linearly. The divisor is floored at 1 so a uniform frame does not
// divide by zero. Applying Normalize to an already-normalized frame is a
// no-op pixel-wise.
//
// The software reader tolerates uneven lighting poorly, so this runs before
// every fallback decode. A nil or empty frame is ignored.
func Normalize(frame *image.RGBA) {
	if frame == nil || len(frame.Pix) == 0 {
		return
	}

	pix := frame.Pix
	min, max := 255, 0
	for i := 0; i+3 < len(pix); i += 4 {
		y := (299*int(pix[i]) + 587*int(pix[i+1]) + 114*int(pix[i+2]) + 500) / 1000
		pix[i], pix[i+1], pix[i+2] = uint8(y), uint8(y), uint8(y)
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}

	span := max - min
	if span < 1 {
		span = 1
	}
	for i := 0; i+3 < len(pix); i += 4 {
		v := ((int(pix[i])-min)*255 + span/2) / span
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		pix[i], pix[i+1], pix[i+2] = uint8(v), uint8(v), uint8(v)
	}
}
