package catalog

import "time"

// Product is a catalog entry, keyed publicly by its barcode.
type Product struct {
	ID        string    `json:"id"`
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	Price     float64   `json:"price,omitempty"`
	Image     string    `json:"image,omitempty"` // URL under /uploads/
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is an admin account. Passwords are stored as bcrypt hashes only.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductInput carries the mutable product fields for create and update.
type ProductInput struct {
	Barcode string  `json:"barcode"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Image   string  `json:"image"`
}
