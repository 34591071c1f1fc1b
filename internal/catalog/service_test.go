package catalog

import (
	"bytes"
	"image"
	"image/png"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdstore/pos-scanner/internal/label"
)

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		storage *mockStorage
		labeler *mockLabeler
		clock   *mockTimeSource
		service *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		labeler = &mockLabeler{lbl: &label.ProductLabel{Name: "Instant Noodles", Price: 4500}}
		clock = &mockTimeSource{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, storage, labeler, &mockIDGenerator{}, clock)
	})

	Describe("CreateProduct", func() {
		It("stores a product with generated ID and timestamps", func() {
			p, err := service.CreateProduct(ProductInput{Barcode: "8934563000127", Name: "Milk 1L", Price: 28000})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal("id-1"))
			Expect(p.CreatedAt).To(Equal(clock.now))
			Expect(p.UpdatedAt).To(Equal(clock.now))

			stored, err := db.GetProductByBarcode("8934563000127")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Milk 1L"))
		})

		It("trims barcode and name", func() {
			p, err := service.CreateProduct(ProductInput{Barcode: " 123 ", Name: " Milk ", Price: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Barcode).To(Equal("123"))
			Expect(p.Name).To(Equal("Milk"))
		})

		It("rejects missing fields and negative prices", func() {
			_, err := service.CreateProduct(ProductInput{Name: "Milk", Price: 1})
			Expect(err).To(HaveOccurred())

			_, err = service.CreateProduct(ProductInput{Barcode: "123", Price: 1})
			Expect(err).To(HaveOccurred())

			_, err = service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: -1})
			Expect(err).To(HaveOccurred())
		})

		It("passes barcode conflicts through", func() {
			_, err := service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: 1})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateProduct(ProductInput{Barcode: "123", Name: "Other", Price: 2})
			Expect(err).To(MatchError(ErrBarcodeExists))
		})
	})

	Describe("UpdateProduct", func() {
		var created *Product

		BeforeEach(func() {
			var err error
			created, err = service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: 1})
			Expect(err).NotTo(HaveOccurred())
		})

		It("replaces mutable fields and bumps UpdatedAt", func() {
			clock.now = clock.now.Add(time.Hour)
			p, err := service.UpdateProduct(created.ID, ProductInput{Barcode: "456", Name: "Milk 2L", Price: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Barcode).To(Equal("456"))
			Expect(p.Name).To(Equal("Milk 2L"))
			Expect(p.UpdatedAt).To(Equal(clock.now))
			Expect(p.CreatedAt).To(Equal(created.CreatedAt))

			// The old barcode no longer resolves.
			_, err = service.LookupBarcode("123")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns not found for an unknown ID", func() {
			_, err := service.UpdateProduct("missing", ProductInput{Barcode: "1", Name: "x", Price: 0})
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("DeleteProduct", func() {
		It("removes the product and its stored image", func() {
			storage.files["img.png"] = []byte("png")
			p, err := service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: 1, Image: "/uploads/img.png"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteProduct(p.ID)).To(Succeed())
			Expect(storage.deleted).To(Equal([]string{"img.png"}))

			_, err = service.GetProduct(p.ID)
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("still deletes when the image removal fails", func() {
			p, err := service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: 1, Image: "/uploads/gone.png"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteProduct(p.ID)).To(Succeed())
		})

		It("leaves external image URLs alone", func() {
			p, err := service.CreateProduct(ProductInput{Barcode: "123", Name: "Milk", Price: 1, Image: "https://cdn.example/img.png"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteProduct(p.ID)).To(Succeed())
			Expect(storage.deleted).To(BeEmpty())
		})
	})

	Describe("LookupBarcode", func() {
		It("resolves a known barcode", func() {
			_, err := service.CreateProduct(ProductInput{Barcode: "8934563000127", Name: "Milk", Price: 1})
			Expect(err).NotTo(HaveOccurred())

			p, err := service.LookupBarcode("8934563000127")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("Milk"))
		})

		It("returns ErrNotFound for a miss", func() {
			_, err := service.LookupBarcode("0000000000000")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("SaveImage", func() {
		It("stores a PNG under a generated name and returns its URL", func() {
			url, err := service.SaveImage("photo.png", pngBytes(4, 4), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(url).To(Equal("/uploads/id-1.png"))
			Expect(storage.files).To(HaveKey("id-1.png"))
		})

		It("rejects data that is not an image", func() {
			_, err := service.SaveImage("notes.txt", []byte("hello"), "text/plain")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SuggestLabel", func() {
		It("returns the labeler's suggestion", func() {
			lbl, err := service.SuggestLabel(pngBytes(4, 4), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(lbl.Name).To(Equal("Instant Noodles"))
			Expect(lbl.Price).To(Equal(float64(4500)))
			Expect(labeler.calls).To(Equal(1))
		})

		It("errors when no labeler is configured", func() {
			service = NewServiceWithDeps(db, storage, nil, &mockIDGenerator{}, clock)
			_, err := service.SuggestLabel(pngBytes(4, 4), "image/png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("authentication", func() {
		It("verifies the password set by EnsureAdmin", func() {
			Expect(service.EnsureAdmin("admin", "s3cret")).To(Succeed())
			Expect(service.Authenticate("admin", "s3cret")).To(BeTrue())
			Expect(service.Authenticate("admin", "wrong")).To(BeFalse())
			Expect(service.Authenticate("ghost", "s3cret")).To(BeFalse())
		})

		It("never stores the plain password", func() {
			Expect(service.EnsureAdmin("admin", "s3cret")).To(Succeed())
			u, err := db.GetUser("admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).NotTo(ContainSubstring("s3cret"))
		})

		It("requires both username and password", func() {
			Expect(service.EnsureAdmin("", "pw")).NotTo(Succeed())
			Expect(service.EnsureAdmin("admin", "")).NotTo(Succeed())
		})
	})
})
