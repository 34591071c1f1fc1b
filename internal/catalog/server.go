package catalog

import (
	"log/slog"
	"net/http"
)

// Server exposes the catalog over HTTP: public lookup endpoints for the
// scanner page and kiosk, admin endpoints gated by basic auth.
type Server struct {
	service *Service
	mux     *http.ServeMux
}

// NewServer creates a Server with a default mux.
func NewServer(service *Service) *Server {
	return NewServerWithMux(service, http.NewServeMux())
}

// NewServerWithMux creates a Server on a caller-provided mux for testing.
func NewServerWithMux(service *Service, mux *http.ServeMux) *Server {
	s := &Server{service: service, mux: mux}
	s.registerRoutes()
	return s
}

// requireAuth gates admin endpoints with basic auth checked against the
// bcrypt hashes in the users bucket.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !s.service.Authenticate(username, password) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="POS Scanner Admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// corsMiddleware answers preflight requests and stamps CORS headers.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers routes most specific first.
func (s *Server) registerRoutes() {
	// Public catalog reads, used by the scanner page and the kiosk.
	s.mux.HandleFunc("GET /api/products/id/{id}", s.handleGetProductByID)
	s.mux.HandleFunc("GET /api/products/{barcode}", s.handleLookupBarcode)
	s.mux.HandleFunc("GET /api/products", s.handleListProducts)

	// Admin catalog management.
	s.mux.HandleFunc("POST /api/products", s.requireAuth(s.handleCreateProduct))
	s.mux.HandleFunc("PUT /api/products/{id}", s.requireAuth(s.handleUpdateProduct))
	s.mux.HandleFunc("DELETE /api/products/{id}", s.requireAuth(s.handleDeleteProduct))
	s.mux.HandleFunc("POST /api/uploads", s.requireAuth(s.handleUploadImage))
	s.mux.HandleFunc("POST /api/labels/suggest", s.requireAuth(s.handleSuggestLabel))

	// Stored product images.
	s.mux.HandleFunc("GET /uploads/{name}", s.handleGetImage)

	// Embedded pages.
	s.mux.HandleFunc("GET /admin", s.requireAuth(s.handleAdminPage))
	s.mux.HandleFunc("GET /", s.handleScannerPage)
}

// Start runs the HTTP server on addr.
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(s.mux.ServeHTTP)(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
