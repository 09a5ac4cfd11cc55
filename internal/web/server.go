// Package web implements the inbound webhook HTTP server: the gateway
// posts incoming messages here, and synthesized audio replies are
// served back out from the media directory.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// TurnHandler processes one inbound message. The real implementation
// is *session.Runner.
type TurnHandler interface {
	HandleMessage(ctx context.Context, from, body, mediaURL string) error
}

// Server is the webhook HTTP server.
type Server struct {
	address  string
	port     int
	runner   TurnHandler
	mediaDir string
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a webhook server.
func NewServer(address string, port int, runner TurnHandler, mediaDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		address:  address,
		port:     port,
		runner:   runner,
		mediaDir: mediaDir,
		logger:   logger,
	}
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /incoming", s.handleIncoming)
	mux.HandleFunc("GET /audio/{file}", s.handleAudio)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting webhook server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// handleIncoming receives one gateway webhook delivery. The form shape
// is the gateway's: From is the sender identity, Body the message
// text, MediaUrl0 an optional voice note URL. The turn runs within the
// request; the reply travels back through the gateway client, so a
// bare 204 is the whole response.
func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	if from == "" {
		http.Error(w, "From is required", http.StatusBadRequest)
		return
	}
	body := r.FormValue("Body")
	mediaURL := r.FormValue("MediaUrl0")

	if err := s.runner.HandleMessage(r.Context(), from, body, mediaURL); err != nil {
		s.logger.Error("inbound turn failed", "from", from, "error", err)
		http.Error(w, "turn failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAudio serves a synthesized reply file. Names are single path
// segments minted by the session runner; anything else is rejected.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, filepath.Join(s.mediaDir, name))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"healthy"}`)
}
