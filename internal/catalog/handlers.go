package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// maxUploadSize caps product photo uploads; phone photos run large.
const maxUploadSize = int64(20 << 20) // 20MB

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleListProducts returns the whole catalog; the scanner page caches it
// for offline lookups.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts()
	if err != nil {
		slog.Error("Error listing products", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleLookupBarcode is the lookup(barcode) endpoint the scan sinks use.
func (s *Server) handleLookupBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")
	if barcode == "" {
		writeError(w, http.StatusBadRequest, "Barcode required")
		return
	}
	p, err := s.service.LookupBarcode(barcode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("Error looking up barcode", "barcode", barcode, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product ID required")
		return
	}
	p, err := s.service.GetProduct(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.service.CreateProduct(in)
	if err != nil {
		if errors.Is(err, ErrBarcodeExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("Error creating product", "barcode", in.Barcode, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.service.UpdateProduct(id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, ErrBarcodeExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("Error updating product", "id", id, "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteProduct(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("Error deleting product", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload pulls the image file out of a multipart form.
func readUpload(r *http.Request) (string, []byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", nil, "", errors.New("error parsing form; the file may be too large")
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		return "", nil, "", errors.New("no image file provided")
	}
	defer f.Close()
	if header.Size > maxUploadSize {
		return "", nil, "", errors.New("file is too large (20MB max)")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, "", errors.New("error reading file")
	}
	return header.Filename, data, header.Header.Get("Content-Type"), nil
}

// handleUploadImage stores a product photo and returns its URL.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	filename, data, contentType, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	url, err := s.service.SaveImage(filename, data, contentType)
	if err != nil {
		slog.Error("Error saving image", "filename", filename, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// handleSuggestLabel runs the optional label assist on a product photo.
func (s *Server) handleSuggestLabel(w http.ResponseWriter, r *http.Request) {
	_, data, contentType, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lbl, err := s.service.SuggestLabel(data, contentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lbl)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := s.service.GetImage(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *Server) handleScannerPage(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(scannerHTML)
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(adminHTML)
}
