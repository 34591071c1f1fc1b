package imaging

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func encode(encoder func(*bytes.Buffer) error) []byte {
	var buf bytes.Buffer
	Expect(encoder(&buf)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("ToPNG", func() {
	It("passes PNG data through untouched", func() {
		data := encode(func(buf *bytes.Buffer) error { return png.Encode(buf, testImage()) })

		out, converted, err := ToPNG(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeFalse())
		Expect(out).To(Equal(data))
	})

	It("converts JPEG to PNG", func() {
		data := encode(func(buf *bytes.Buffer) error { return jpeg.Encode(buf, testImage(), nil) })

		out, converted, err := ToPNG(data, "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeTrue())

		img, format, err := image.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
		Expect(img.Bounds().Dx()).To(Equal(8))
	})

	It("converts GIF to PNG", func() {
		data := encode(func(buf *bytes.Buffer) error { return gif.Encode(buf, testImage(), nil) })

		out, converted, err := ToPNG(data, "image/gif")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeTrue())

		_, format, err := image.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
	})

	It("assumes JPEG when no content type was sent", func() {
		data := encode(func(buf *bytes.Buffer) error { return jpeg.Encode(buf, testImage(), nil) })

		_, converted, err := ToPNG(data, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(converted).To(BeTrue())
	})

	It("rejects data that is not an image", func() {
		_, _, err := ToPNG([]byte("definitely not an image"), "image/jpeg")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("isHEIC", func() {
	heicHeader := func(brand string) []byte {
		return append([]byte{0, 0, 0, 24, 'f', 't', 'y', 'p'}, []byte(brand)...)
	}

	It("recognizes the HEIC ftyp brands", func() {
		for _, brand := range []string{"heic", "heif", "mif1", "msf1"} {
			Expect(isHEIC(heicHeader(brand))).To(BeTrue(), brand)
		}
	})

	It("rejects other containers and short data", func() {
		Expect(isHEIC(heicHeader("isom"))).To(BeFalse())
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\n"))).To(BeFalse())
		Expect(isHEIC(nil)).To(BeFalse())
	})
})

var _ = Describe("SniffContentType", func() {
	It("prefers a usable client content type", func() {
		Expect(SniffContentType("image/jpeg", "photo.png")).To(Equal("image/jpeg"))
		Expect(SniffContentType(" IMAGE/PNG ", "")).To(Equal("image/png"))
	})

	It("falls back to the filename extension", func() {
		Expect(SniffContentType("", "IMG_0042.JPG")).To(Equal("image/jpeg"))
		Expect(SniffContentType("application/octet-stream", "scan.pdf")).To(Equal("application/pdf"))
		Expect(SniffContentType("", "photo.heic")).To(Equal("image/heic"))
	})

	It("gives up on unknown extensions", func() {
		Expect(SniffContentType("", "data.bin")).To(Equal("application/octet-stream"))
	})
})
