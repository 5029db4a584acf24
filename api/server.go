package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
	"github.com/wricardo/toy-robot/transport/websocket"
	"github.com/wricardo/toy-robot/validate"
)

// AppName is returned by the banner route
const AppName = "Toy Robot Board Server"

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Server represents the REST API server
type Server struct {
	service  service.UnitService
	hub      *websocket.Hub
	gatherer prometheus.Gatherer
	router   *mux.Router
}

// Option configures the server
type Option func(*Server)

// WithGatherer exposes the given registry on /metrics
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(unitService service.UnitService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: unitService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")

	// Commands
	s.handle("/place", s.handlePlace, "POST")
	s.handle("/move", s.handleMove, "POST")
	s.handle("/left", s.handleRotateFixed(engine.Left), "POST")
	s.handle("/right", s.handleRotateFixed(engine.Right), "POST")
	s.handle("/rotate", s.handleRotate, "POST")
	s.handle("/report", s.handleReport, "GET")
	s.handle("/remove", s.handleRemove, "DELETE")

	// Queries
	s.handle("/state", s.handleState, "GET")
	s.handle("/health", s.handleHealth, "GET")

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// handle registers path with and without a trailing slash
func (s *Server) handle(path string, h http.HandlerFunc, methods ...string) {
	s.router.HandleFunc(path, h).Methods(methods...)
	s.router.HandleFunc(path+"/", h).Methods(methods...)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondCommand writes a command result or maps its error to a status
func respondCommand(w http.ResponseWriter, result *service.CommandResult, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func respondServiceError(w http.ResponseWriter, err error) {
	var verr *validate.Error
	switch {
	case errors.Is(err, engine.ErrNotPlaced):
		respondError(w, http.StatusBadRequest, engine.NotPlacedMessage)
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"detail": verr.Fields,
		})
	default:
		log.Printf("Command failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Command Handlers

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	cmd, err := validate.DecodePlace(r.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Place(r.Context(), cmd)
	respondCommand(w, result, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Move(r.Context())
	respondCommand(w, result, err)
}

func (s *Server) handleRotateFixed(dir engine.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.service.Rotate(r.Context(), dir)
		respondCommand(w, result, err)
	}
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	dir, err := validate.DecodeRotate(r.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Rotate(r.Context(), dir)
	respondCommand(w, result, err)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Report(r.Context())
	respondCommand(w, result, err)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Remove(r.Context())
	respondCommand(w, result, err)
}

// Query Handlers

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": AppName})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.State(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// WebSocket Handler

// The upgrader writes its own handshake, so headers set on w by middleware
// must be passed through explicitly.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	if id := w.Header().Get(RequestIDHeader); id != "" {
		header.Set(RequestIDHeader, id)
	}

	s.hub.ServeWS(w, r, header, func() (*service.StateInfo, error) {
		return s.service.State(context.Background())
	})
}

// Middleware

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// requestIDMiddleware tags every request with an ID and logs its outcome
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		log.Printf("%s %s -> %d (%s) id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), id)
	})
}
