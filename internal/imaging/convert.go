package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ToPNG normalizes an uploaded product image to PNG. Phone uploads arrive as
// JPEG or HEIC, desktop admins occasionally upload a supplier PDF sheet;
// everything downstream (storage, label assist) only ever sees PNG.
// It returns the PNG bytes and whether a conversion happened.
func ToPNG(data []byte, contentType string) ([]byte, bool, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	switch {
	case mimeType == "application/pdf":
		out, err := pdfToPNG(data)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF: %w", err)
		}
		return out, true, nil
	case mimeType == "image/png" && !isHEIC(data):
		return data, false, nil
	default:
		out, err := imageToPNG(data, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image: %w", err)
		}
		return out, true, nil
	}
}

// pdfToPNG renders the first page of a PDF.
func pdfToPNG(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func imageToPNG(data []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEIC(data) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format (supported: JPEG, PNG, GIF, HEIC, PDF): %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC sniffs the ISO BMFF ftyp box brands used by HEIC/HEIF files.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// SniffContentType resolves a usable MIME type from an upload, falling back
// to the filename extension when the client sent none.
func SniffContentType(contentType, filename string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(name, ".heic"), strings.HasSuffix(name, ".heif"):
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
