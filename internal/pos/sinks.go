package pos

import (
	"errors"
	"log/slog"

	"github.com/tdstore/pos-scanner/internal/catalog"
	"github.com/tdstore/pos-scanner/internal/scan"
)

// PriceSink is the public scanner in price mode: every accepted decode is
// looked up and shown. The session keeps running so consecutive lookups
// need no restart.
type PriceSink struct {
	lookup  Lookup
	display Display
}

// NewPriceSink creates a price-mode sink.
func NewPriceSink(lookup Lookup, display Display) *PriceSink {
	return &PriceSink{lookup: lookup, display: display}
}

// HandleScan implements scan.Sink.
func (s *PriceSink) HandleScan(d scan.Decoded) {
	p, err := s.lookup.LookupBarcode(d.Payload)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.display.ShowNotFound(d.Payload)
			return
		}
		slog.Error("Lookup failed", "barcode", d.Payload, "error", err)
		return
	}
	s.display.ShowProduct(p)
}

// CartSink is the public scanner in cart mode: a found product is inserted
// once; re-scanning a present line only flashes it and leaves the quantity
// alone.
type CartSink struct {
	lookup  Lookup
	display Display
	cart    *Cart
}

// NewCartSink creates a cart-mode sink feeding the given cart.
func NewCartSink(lookup Lookup, display Display, cart *Cart) *CartSink {
	return &CartSink{lookup: lookup, display: display, cart: cart}
}

// HandleScan implements scan.Sink.
func (s *CartSink) HandleScan(d scan.Decoded) {
	p, err := s.lookup.LookupBarcode(d.Payload)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.display.ShowNotFound(d.Payload)
			return
		}
		slog.Error("Lookup failed", "barcode", d.Payload, "error", err)
		return
	}
	if s.cart.AddScan(p) {
		s.display.ShowProduct(p)
		return
	}
	s.display.AcknowledgeLine(d.Payload)
}

// FillSink is the admin barcode-fill flow: the first accepted decode is
// written into a target field and the session ends. Pair it with
// AutoStopOnMatch in the session config; the sink itself is stateless.
type FillSink struct {
	fill func(payload string)
}

// NewFillSink creates a fill sink writing through the given function.
func NewFillSink(fill func(payload string)) *FillSink {
	return &FillSink{fill: fill}
}

// HandleScan implements scan.Sink.
func (s *FillSink) HandleScan(d scan.Decoded) {
	s.fill(d.Payload)
}
