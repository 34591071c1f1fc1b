package label

// ProductLabel is the suggestion extracted from a product photo: what to
// pre-fill in the admin create form before the operator corrects it.
type ProductLabel struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Labeler suggests catalog fields from a product photo. It is an optional
// admin convenience; the catalog works without one.
type Labeler interface {
	// SuggestLabel analyzes a product image and proposes name and price.
	SuggestLabel(imageData []byte, contentType string) (*ProductLabel, error)
	// Close releases the provider client.
	Close() error
}
