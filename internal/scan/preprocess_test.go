package scan

import (
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func gradientFrame(lo, hi uint8) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 1))
	values := []uint8{lo, uint8((int(lo) + int(hi)) / 2), hi, lo}
	for i, v := range values {
		o := i * 4
		frame.Pix[o] = v
		frame.Pix[o+1] = v
		frame.Pix[o+2] = v
		frame.Pix[o+3] = 0xff
	}
	return frame
}

var _ = Describe("Normalize", func() {
	It("stretches a low-contrast frame to the full range", func() {
		frame := gradientFrame(100, 150)
		Normalize(frame)
		Expect(frame.Pix[0]).To(Equal(uint8(0)))
		Expect(frame.Pix[2*4]).To(Equal(uint8(255)))
	})

	It("converts color pixels to gray", func() {
		frame := image.NewRGBA(image.Rect(0, 0, 2, 1))
		frame.Pix[0], frame.Pix[1], frame.Pix[2], frame.Pix[3] = 200, 30, 90, 255
		frame.Pix[4], frame.Pix[5], frame.Pix[6], frame.Pix[7] = 10, 220, 60, 255
		Normalize(frame)
		for _, o := range []int{0, 4} {
			Expect(frame.Pix[o]).To(Equal(frame.Pix[o+1]))
			Expect(frame.Pix[o+1]).To(Equal(frame.Pix[o+2]))
		}
	})

	It("is idempotent on an already-normalized frame", func() {
		frame := gradientFrame(0, 255)
		Normalize(frame)
		once := append([]uint8(nil), frame.Pix...)
		Normalize(frame)
		Expect(frame.Pix).To(Equal(once))
	})

	It("survives a uniform frame without dividing by zero", func() {
		frame := image.NewRGBA(image.Rect(0, 0, 3, 3))
		for i := range frame.Pix {
			frame.Pix[i] = 128
		}
		Expect(func() { Normalize(frame) }).NotTo(Panic())
		// A uniform frame collapses to black; alpha is untouched.
		Expect(frame.Pix[0]).To(Equal(uint8(0)))
		Expect(frame.Pix[3]).To(Equal(uint8(128)))
	})

	It("ignores nil and empty frames", func() {
		Expect(func() { Normalize(nil) }).NotTo(Panic())
		Expect(func() { Normalize(image.NewRGBA(image.Rect(0, 0, 0, 0))) }).NotTo(Panic())
	})

	It("leaves alpha channels alone", func() {
		frame := gradientFrame(50, 200)
		Normalize(frame)
		for i := 3; i < len(frame.Pix); i += 4 {
			Expect(frame.Pix[i]).To(Equal(uint8(0xff)))
		}
	})
})
