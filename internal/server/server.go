// Package server exposes share links over HTTP so a QR code scanned on
// another device resolves to the shared document.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lottus/internal/domain"
	"lottus/internal/logger"
	"lottus/internal/qr"
)

// Server serves shared documents: an HTML page, the raw JSON, and the
// QR image for a token.
type Server struct {
	router chi.Router
	codec  domain.Codec
	qrSize int
	log    *logger.Logger
}

// Option configures the server.
type Option func(*Server)

// WithQRSize sets the pixel size of served QR images.
func WithQRSize(px int) Option {
	return func(s *Server) {
		s.qrSize = px
	}
}

// NewServer creates and configures the share server.
func NewServer(codec domain.Codec, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		codec:  codec,
		qrSize: 256,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/documents/{token}", s.handleDocumentJSON)
	r.Get("/{token}/qr.png", s.handleQR)
	r.Get("/{token}", s.handleDocument)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleDocument renders the shared document as an HTML page.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	doc, err := s.codec.Decode(token)
	if err != nil {
		s.log.Debug("server: bad token %q: %v", truncateToken(token), err)
		http.Error(w, "unknown share link", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(w, doc, token); err != nil {
		s.log.Error("server: rendering page: %v", err)
	}
}

// handleQR serves the QR image for a share link. The image encodes the
// link as the client reached it, so it stays scannable across hosts.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := s.codec.Decode(token); err != nil {
		http.Error(w, "unknown share link", http.StatusNotFound)
		return
	}

	link := "http://" + r.Host + "/" + token
	png, err := qr.Render(link, s.qrSize)
	if err != nil {
		s.log.Error("server: qr render: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleDocumentJSON serves the decoded document as JSON.
func (s *Server) handleDocumentJSON(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	doc, err := s.codec.Decode(token)
	if err != nil {
		http.Error(w, `{"error":"unknown share link"}`, http.StatusNotFound)
		return
	}

	type verseJSON struct {
		Text  string `json:"text"`
		Pause int64  `json:"pause"`
	}
	resp := struct {
		Title  string      `json:"title"`
		Verses []verseJSON `json:"verses"`
	}{Title: doc.Title, Verses: make([]verseJSON, len(doc.Verses))}
	for i, v := range doc.Verses {
		resp.Verses[i] = verseJSON{Text: v.Text, Pause: v.Pause.Milliseconds()}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("server: encoding response: %v", err)
	}
}

func truncateToken(token string) string {
	if len(token) > 24 {
		return token[:24] + "..."
	}
	return token
}
