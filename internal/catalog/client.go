package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client resolves barcodes against a remote catalog server. It satisfies the
// same narrow lookup contract as Service, so the kiosk can run against
// either.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for a catalog server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// LookupBarcode fetches the product for a barcode. A 404 maps to
// ErrNotFound.
func (c *Client) LookupBarcode(barcode string) (*Product, error) {
	resp, err := c.http.Get(c.baseURL + "/api/products/" + url.PathEscape(barcode))
	if err != nil {
		return nil, fmt.Errorf("looking up barcode: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	default:
		return nil, fmt.Errorf("looking up barcode: unexpected status %d", resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	return &p, nil
}
