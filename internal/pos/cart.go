package pos

import (
	"sync"

	"github.com/tdstore/pos-scanner/internal/catalog"
)

// CartLine is one product in the cart with its quantity. The product is a
// snapshot taken at scan time; later catalog edits do not reprice a line.
type CartLine struct {
	Barcode  string          `json:"barcode"`
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds at most one line per barcode. Scanning only ever inserts a line
// with quantity 1; quantity changes happen solely through the explicit
// increment and decrement controls.
type Cart struct {
	mu    sync.Mutex
	lines map[string]*CartLine
	order []string
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[string]*CartLine)}
}

// AddScan inserts a line for the product unless one exists. It reports
// whether a new line was added; a false return means the line was already
// present and untouched.
func (c *Cart) AddScan(p *catalog.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[p.Barcode]; ok {
		return false
	}
	c.lines[p.Barcode] = &CartLine{Barcode: p.Barcode, Product: *p, Quantity: 1}
	c.order = append(c.order, p.Barcode)
	return true
}

// Increment raises a line's quantity by one.
func (c *Cart) Increment(barcode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[barcode]; ok {
		line.Quantity++
	}
}

// Decrement lowers a line's quantity by one, flooring at 1. Removing a line
// entirely is a separate, explicit action.
func (c *Cart) Decrement(barcode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[barcode]; ok && line.Quantity > 1 {
		line.Quantity--
	}
}

// Remove deletes a line.
func (c *Cart) Remove(barcode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lines[barcode]; !ok {
		return
	}
	delete(c.lines, barcode)
	for i, b := range c.order {
		if b == barcode {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string]*CartLine)
	c.order = nil
}

// Lines returns the cart contents in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, 0, len(c.order))
	for _, b := range c.order {
		out = append(out, *c.lines[b])
	}
	return out
}

// Quantity reports a line's quantity, zero when absent.
func (c *Cart) Quantity(barcode string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[barcode]; ok {
		return line.Quantity
	}
	return 0
}

// Total sums price times quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, line := range c.lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}
