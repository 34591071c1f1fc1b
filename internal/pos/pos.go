// Package pos wires decoded barcodes into the point-of-sale flows: price
// check, cart building and admin field fill. Sinks are UI-agnostic; anything
// a user should see goes through the Display interface.
package pos

import "github.com/tdstore/pos-scanner/internal/catalog"

// Lookup resolves a barcode to a product. Both catalog.Service and
// catalog.Client satisfy it; a miss is catalog.ErrNotFound.
type Lookup interface {
	LookupBarcode(barcode string) (*catalog.Product, error)
}

// Display receives user-facing outcomes of a scan. Implementations render
// to whatever surface the caller has: terminal, web page, nothing.
type Display interface {
	// ShowProduct presents a found product (name, price, image).
	ShowProduct(p *catalog.Product)

	// ShowNotFound notices a barcode with no catalog entry.
	ShowNotFound(barcode string)

	// AcknowledgeLine flashes an already-present cart line; quantity is
	// not changed by re-scanning.
	AcknowledgeLine(barcode string)
}
