package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tdstore/pos-scanner/internal/imaging"
	"github.com/tdstore/pos-scanner/internal/label"
)

// IDGenerator generates unique IDs for products.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string { return uuid.NewString() }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Service implements the catalog operations: product CRUD, barcode lookup,
// image upload and the optional label assist. The scan pipeline consumes it
// only through LookupBarcode.
type Service struct {
	db      DB
	storage Storage
	labeler label.Labeler // nil when not configured
	ids     IDGenerator
	clock   TimeSource
}

// NewService creates a Service with the default ID generator and clock.
// labeler may be nil.
func NewService(db DB, storage Storage, labeler label.Labeler) *Service {
	return &Service{
		db:      db,
		storage: storage,
		labeler: labeler,
		ids:     uuidGenerator{},
		clock:   realClock{},
	}
}

// NewServiceWithDeps creates a Service with injected dependencies for tests.
func NewServiceWithDeps(db DB, storage Storage, labeler label.Labeler, ids IDGenerator, clock TimeSource) *Service {
	return &Service{db: db, storage: storage, labeler: labeler, ids: ids, clock: clock}
}

func validateInput(in ProductInput) error {
	if strings.TrimSpace(in.Barcode) == "" {
		return errors.New("barcode is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if in.Price < 0 {
		return errors.New("price must be non-negative")
	}
	return nil
}

// CreateProduct adds a catalog entry.
func (s *Service) CreateProduct(in ProductInput) (*Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p := &Product{
		ID:        s.ids.Generate(),
		Barcode:   strings.TrimSpace(in.Barcode),
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Image:     in.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.SaveProduct(p); err != nil {
		return nil, fmt.Errorf("saving product: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces the mutable fields of an existing product.
func (s *Service) UpdateProduct(id string, in ProductInput) (*Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.db.GetProduct(id)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.Barcode = strings.TrimSpace(in.Barcode)
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Image = in.Image
	p.UpdatedAt = s.clock.Now()
	if err := s.db.SaveProduct(p); err != nil {
		return nil, fmt.Errorf("saving product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product and its stored image, when it has one.
func (s *Service) DeleteProduct(id string) error {
	p, err := s.db.GetProduct(id)
	if err != nil {
		return fmt.Errorf("getting product for deletion: %w", err)
	}
	if name, ok := strings.CutPrefix(p.Image, "/uploads/"); ok {
		if err := s.storage.Delete(name); err != nil {
			slog.Warn("Failed to delete product image", "image", p.Image, "error", err)
		}
	}
	if err := s.db.DeleteProduct(id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID.
func (s *Service) GetProduct(id string) (*Product, error) {
	p, err := s.db.GetProduct(id)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return p, nil
}

// LookupBarcode resolves a scanned barcode to a product. A miss comes back
// as ErrNotFound; scan sinks surface it as a notice and keep running.
func (s *Service) LookupBarcode(barcode string) (*Product, error) {
	p, err := s.db.GetProductByBarcode(barcode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns all catalog entries.
func (s *Service) ListProducts() ([]*Product, error) {
	products, err := s.db.ListProducts()
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// SaveImage normalizes an uploaded product photo to PNG, stores it and
// returns the URL it is served under.
func (s *Service) SaveImage(filename string, data []byte, contentType string) (string, error) {
	pngData, _, err := imaging.ToPNG(data, imaging.SniffContentType(contentType, filename))
	if err != nil {
		return "", err
	}
	name, err := s.storage.Save(fmt.Sprintf("%s.png", s.ids.Generate()), pngData)
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return "/uploads/" + name, nil
}

// GetImage retrieves a stored product image.
func (s *Service) GetImage(name string) ([]byte, error) {
	return s.storage.Get(name)
}

// SuggestLabel proposes name and price for a product photo via the
// configured labeler.
func (s *Service) SuggestLabel(data []byte, contentType string) (*label.ProductLabel, error) {
	if s.labeler == nil {
		return nil, errors.New("label assist is not configured")
	}
	lbl, err := s.labeler.SuggestLabel(data, contentType)
	if err != nil {
		slog.Error("Label suggestion failed", "content_type", contentType, "size", len(data), "error", err)
		return nil, fmt.Errorf("suggesting label: %w", err)
	}
	return lbl, nil
}

// Authenticate verifies an admin credential pair.
func (s *Service) Authenticate(username, password string) bool {
	u, err := s.db.GetUser(username)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// EnsureAdmin creates or resets an admin account with the given password.
func (s *Service) EnsureAdmin(username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return s.db.SaveUser(&User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	})
}
