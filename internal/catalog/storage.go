package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Storage holds uploaded product images.
type Storage interface {
	// Save stores a file and returns the name it is retrievable under.
	Save(filename string, data []byte) (string, error)

	// Get retrieves a stored file.
	Get(name string) ([]byte, error)

	// Delete removes a stored file.
	Delete(name string) error
}

// LocalStorage keeps uploads in a flat directory on disk.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// sanitizeFilename flattens a client-supplied filename to a single safe path
// segment. Phone cameras produce long names with spaces and punctuation.
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if len(name) > 64 {
		ext := filepath.Ext(name)
		name = name[:64-len(ext)] + ext
	}
	if name == "" {
		name = "upload"
	}
	return name
}

// Save implements Storage.
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name := sanitizeFilename(filename)
	if err := os.WriteFile(filepath.Join(l.basePath, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get implements Storage.
func (l *LocalStorage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, sanitizeFilename(name)))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete implements Storage.
func (l *LocalStorage) Delete(name string) error {
	if err := os.Remove(filepath.Join(l.basePath, sanitizeFilename(name))); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
