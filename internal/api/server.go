// Package api serves the dashboard's REST JSON endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/bordertrade/internal/assistant"
	"github.com/mmynk/bordertrade/internal/auth"
	"github.com/mmynk/bordertrade/internal/metrics"
	"github.com/mmynk/bordertrade/internal/middleware"
	"github.com/mmynk/bordertrade/internal/storage"
)

const maxBodyBytes = 1 << 20

// Server holds the dependencies of the REST handlers.
type Server struct {
	store     storage.Store
	auth      auth.Authenticator
	sessions  *auth.Sessions
	assistant *assistant.Assistant
	metrics   *metrics.Metrics
	now       func() time.Time
	timeout   time.Duration
}

// Config wires a Server. Assistant and Metrics may be nil.
type Config struct {
	Store          storage.Store
	Authenticator  auth.Authenticator
	JWTManager     *auth.JWTManager
	Assistant      *assistant.Assistant
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	// Now defaults to time.Now; it decides "today" for stats and eligibility.
	Now func() time.Time
}

// NewServer creates a REST server.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		auth:      cfg.Authenticator,
		sessions:  auth.NewSessions(cfg.Authenticator, cfg.JWTManager),
		assistant: cfg.Assistant,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		timeout:   cfg.RequestTimeout,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout == 0 {
		s.timeout = 15 * time.Second
	}
	return s
}

// Routes returns a router with every REST endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	if s.metrics != nil {
		r.Use(middleware.Instrument(s.metrics))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.timeout))

		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Get("/stats", s.handleStats)
		r.Get("/nav", s.handleNav)
		r.Get("/groups", s.handleGroups)
		r.Get("/residents", s.handleResidents)

		r.Get("/orders", s.handleOrders)
		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", s.handleOrder)
			r.Get("/suborders", s.handleSubOrders)
			r.Post("/allocation/preview", s.handlePreview)
		})

		r.Post("/assistant/chat", s.handleChat)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// envelope is the response body of every /api endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeInternal logs err and answers with a fixed message.
func writeInternal(w http.ResponseWriter, r *http.Request, op string, err error, message string) {
	slog.Error(op+" failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
