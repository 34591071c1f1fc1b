package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	productBucket = "products"
	barcodeBucket = "barcodes" // barcode -> product ID
	userBucket    = "users"
)

// ErrNotFound is returned for lookups that match nothing. It is a business
// outcome, not a failure; callers surface it as a notice.
var ErrNotFound = errors.New("not found")

// ErrBarcodeExists rejects a second product with an already-registered
// barcode.
var ErrBarcodeExists = errors.New("barcode already registered")

// DB defines the persistence operations the catalog needs.
type DB interface {
	// SaveProduct inserts or updates a product, maintaining the barcode
	// index. A barcode held by a different product is rejected with
	// ErrBarcodeExists.
	SaveProduct(p *Product) error

	// GetProduct retrieves a product by ID.
	GetProduct(id string) (*Product, error)

	// GetProductByBarcode retrieves a product by its barcode.
	GetProductByBarcode(barcode string) (*Product, error)

	// ListProducts returns all products.
	ListProducts() ([]*Product, error)

	// DeleteProduct removes a product and its barcode index entry.
	DeleteProduct(id string) error

	// SaveUser inserts or updates an admin user.
	SaveUser(u *User) error

	// GetUser retrieves a user by username.
	GetUser(username string) (*User, error)

	// Close closes the database.
	Close() error
}

// BoltDB implements DB over a single bbolt file.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (creating if needed) the catalog database.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{productBucket, barcodeBucket, userBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveProduct implements DB.
func (b *BoltDB) SaveProduct(p *Product) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		products := tx.Bucket([]byte(productBucket))
		barcodes := tx.Bucket([]byte(barcodeBucket))

		if owner := barcodes.Get([]byte(p.Barcode)); owner != nil && string(owner) != p.ID {
			return fmt.Errorf("%w: %s", ErrBarcodeExists, p.Barcode)
		}

		// Drop the stale index entry when the barcode changed.
		if prev := products.Get([]byte(p.ID)); prev != nil {
			var old Product
			if err := json.Unmarshal(prev, &old); err == nil && old.Barcode != p.Barcode {
				if err := barcodes.Delete([]byte(old.Barcode)); err != nil {
					return err
				}
			}
		}

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling product: %w", err)
		}
		if err := products.Put([]byte(p.ID), data); err != nil {
			return err
		}
		return barcodes.Put([]byte(p.Barcode), []byte(p.ID))
	})
}

// GetProduct implements DB.
func (b *BoltDB) GetProduct(id string) (*Product, error) {
	var product *Product
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(productBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProductByBarcode implements DB.
func (b *BoltDB) GetProductByBarcode(barcode string) (*Product, error) {
	var product *Product
	err := b.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(barcodeBucket)).Get([]byte(barcode))
		if id == nil {
			return fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
		}
		data := tx.Bucket([]byte(productBucket)).Get(id)
		if data == nil {
			return fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
		}
		return json.Unmarshal(data, &product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts implements DB.
func (b *BoltDB) ListProducts() ([]*Product, error) {
	products := make([]*Product, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(productBucket)).ForEach(func(k, v []byte) error {
			var p Product
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshaling product: %w", err)
			}
			products = append(products, &p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct implements DB.
func (b *BoltDB) DeleteProduct(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		products := tx.Bucket([]byte(productBucket))
		data := products.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		var p Product
		if err := json.Unmarshal(data, &p); err == nil {
			if err := tx.Bucket([]byte(barcodeBucket)).Delete([]byte(p.Barcode)); err != nil {
				return err
			}
		}
		return products.Delete([]byte(id))
	})
}

// SaveUser implements DB.
func (b *BoltDB) SaveUser(u *User) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshaling user: %w", err)
		}
		return tx.Bucket([]byte(userBucket)).Put([]byte(u.Username), data)
	})
}

// GetUser implements DB.
func (b *BoltDB) GetUser(username string) (*User, error) {
	var user *User
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(userBucket)).Get([]byte(username))
		if data == nil {
			return fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Close implements DB.
func (b *BoltDB) Close() error {
	return b.db.Close()
}
