package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/internal/logging"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Streamer fans tick reports out to listeners.
type Streamer interface {
	Subscribe(buffer int) (<-chan *domain.TickReport, func())
}

// Server serves the status API of one routine run.
type Server struct {
	Status   ports.StatusReader
	Stream   Streamer
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithStream enables GET /events.
func WithStream(s Streamer) Option {
	return func(srv *Server) {
		srv.Stream = s
	}
}

// WithGatherer sets the registry exposed on GET /metrics.
// Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(srv *Server) {
		srv.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(srv *Server) {
		srv.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the run status.
func NewHandler(status ports.StatusReader, opts ...Option) http.Handler {
	server := &Server{
		Status:   status,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/status", server.GetStatus)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	if server.Stream != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Status.Snapshot(r.Context()))
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "routine",
		"version": strings.TrimSpace(routine.Version),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
// Each tick report is sent as one data frame until the run finishes
// or the client disconnects.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	reports, cancel := s.Stream.Subscribe(16)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case rep, ok := <-reports:
			if !ok {
				fmt.Fprintf(w, "event: finish\ndata: %s\n\n", s.Status.Snapshot(r.Context()).Status)
				flusher.Flush()
				return
			}
			payload, err := json.Marshal(rep)
			if err != nil {
				s.Logger.Error("SSE report encode failed", "tick", rep.Tick, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: tick\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
