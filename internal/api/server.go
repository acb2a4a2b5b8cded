// Package api exposes the ops HTTP surface for a migration run: health,
// Prometheus metrics, and the current batch progress snapshot.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/progress"
)

// SnapshotFunc supplies the current batch progress.
type SnapshotFunc func() progress.Snapshot

// Server wires the ops routes.
type Server struct {
	router   chi.Router
	snapshot SnapshotFunc
	log      *zap.Logger
}

// NewServer constructs a Server.
func NewServer(snapshot SnapshotFunc, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router:   chi.NewRouter(),
		snapshot: snapshot,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/progress", s.handleProgress)
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the given port until the listener fails. It is meant to
// run in a goroutine for the duration of a batch.
func (s *Server) Start(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("ops server listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("ops server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := progress.Snapshot{}
	if s.snapshot != nil {
		snap = s.snapshot()
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.Warn("encode progress snapshot", zap.Error(err))
	}
}
