package pos

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdstore/pos-scanner/internal/catalog"
)

var _ = Describe("Cart", func() {
	var (
		cart *Cart
		milk *catalog.Product
		eggs *catalog.Product
	)

	BeforeEach(func() {
		cart = NewCart()
		milk = &catalog.Product{ID: "p1", Barcode: "8934563000127", Name: "Milk 1L", Price: 28000}
		eggs = &catalog.Product{ID: "p2", Barcode: "12345670", Name: "Eggs x10", Price: 32000}
	})

	Describe("AddScan", func() {
		It("inserts a new line with quantity one", func() {
			Expect(cart.AddScan(milk)).To(BeTrue())
			Expect(cart.Quantity(milk.Barcode)).To(Equal(1))
		})

		It("leaves the quantity alone on a re-scan", func() {
			Expect(cart.AddScan(milk)).To(BeTrue())
			Expect(cart.AddScan(milk)).To(BeFalse())
			Expect(cart.AddScan(milk)).To(BeFalse())
			Expect(cart.Quantity(milk.Barcode)).To(Equal(1))
		})

		It("snapshots the product at scan time", func() {
			cart.AddScan(milk)
			milk.Price = 99999
			Expect(cart.Lines()[0].Product.Price).To(Equal(float64(28000)))
		})
	})

	Describe("quantity controls", func() {
		BeforeEach(func() {
			cart.AddScan(milk)
		})

		It("increments a line", func() {
			cart.Increment(milk.Barcode)
			cart.Increment(milk.Barcode)
			Expect(cart.Quantity(milk.Barcode)).To(Equal(3))
		})

		It("decrements a line, flooring at one", func() {
			cart.Increment(milk.Barcode)
			cart.Decrement(milk.Barcode)
			Expect(cart.Quantity(milk.Barcode)).To(Equal(1))
			cart.Decrement(milk.Barcode)
			Expect(cart.Quantity(milk.Barcode)).To(Equal(1))
		})

		It("ignores unknown barcodes", func() {
			cart.Increment("nope")
			cart.Decrement("nope")
			Expect(cart.Quantity("nope")).To(BeZero())
		})
	})

	Describe("Remove", func() {
		It("deletes the line and keeps the order of the rest", func() {
			cart.AddScan(milk)
			cart.AddScan(eggs)
			cart.Remove(milk.Barcode)

			lines := cart.Lines()
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].Barcode).To(Equal(eggs.Barcode))
		})

		It("is a no-op for an absent barcode", func() {
			cart.AddScan(milk)
			cart.Remove("nope")
			Expect(cart.Lines()).To(HaveLen(1))
		})
	})

	Describe("Lines", func() {
		It("preserves insertion order", func() {
			cart.AddScan(eggs)
			cart.AddScan(milk)

			lines := cart.Lines()
			Expect(lines[0].Barcode).To(Equal(eggs.Barcode))
			Expect(lines[1].Barcode).To(Equal(milk.Barcode))
		})
	})

	Describe("Total", func() {
		It("sums price times quantity", func() {
			cart.AddScan(milk)
			cart.AddScan(eggs)
			cart.Increment(milk.Barcode) // 2 x 28000 + 1 x 32000
			Expect(cart.Total()).To(Equal(float64(88000)))
		})

		It("is zero after Clear", func() {
			cart.AddScan(milk)
			cart.Clear()
			Expect(cart.Total()).To(BeZero())
			Expect(cart.Lines()).To(BeEmpty())
		})
	})
})
