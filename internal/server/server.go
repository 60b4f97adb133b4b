// Package server exposes the latest monitor snapshot over HTTP and streams
// every published snapshot to WebSocket clients.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
)

const readHeaderTimeout = 5 * time.Second

// SnapshotProvider returns the most recent snapshot
type SnapshotProvider interface {
	Latest() monitor.Snapshot
}

type Server struct {
	provider SnapshotProvider
	hub      *Hub
	srv      *http.Server
	log      logger.Logger
}

func New(addr string, provider SnapshotProvider, hub *Hub, log logger.Logger) *Server {
	s := &Server{
		provider: provider,
		hub:      hub,
		log:      log,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Handler returns the routing for all endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reading", s.handleReading)
	mux.HandleFunc("/get_bpm", s.handleLegacy)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.serveWS)
	}

	return mux
}

// Start binds the listener and serves in the background. Bind errors are
// returned; later serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.New().Wrap(ErrListen, err)
	}

	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server running")
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.New().Wrap(ErrStop, err)
	}

	return nil
}

func (s *Server) handleReading(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.provider.Latest())
}

func (s *Server) handleLegacy(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, newLegacyReading(s.provider.Latest()))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug().Err(err).Msg("Failed to write response")
	}
}
