// Package api serves recommendations over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 2 * time.Second
)

// Selections remembers the student a UI session has selected.
type Selections interface {
	Select(ctx context.Context, session, studentID string) error
	Selected(ctx context.Context, session string) (string, error)
}

// Checker is a dependency probed by /readyz.
type Checker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Options wires the server's dependencies.
type Options struct {
	Service     *recommend.Service
	Selections  Selections // nil disables the session routes
	Checkers    []Checker
	DefaultMode recommend.Mode
	// OriginPatterns lists extra hosts allowed to open WebSocket connections.
	OriginPatterns []string
	Logger         *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	svc            *recommend.Service
	selections     Selections
	checkers       []Checker
	defaultMode    recommend.Mode
	originPatterns []string
	logger         *slog.Logger
}

// New validates opts and builds a server.
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = recommend.ModeRule
	}
	if _, err := recommend.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:            opts.Service,
		selections:     opts.Selections,
		checkers:       opts.Checkers,
		defaultMode:    mode,
		originPatterns: opts.OriginPatterns,
		logger:         logger,
	}, nil
}

// Handler returns the routed handler with request ids attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /v1/students", s.handleStudents)
	mux.HandleFunc("GET /v1/students/{id}/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /v1/students/{id}/next-steps", s.handleNextSteps)
	mux.HandleFunc("POST /v1/recommendations", s.handleAdHoc)

	mux.HandleFunc("PUT /v1/sessions/{session}/student", s.handleSelect)
	mux.HandleFunc("GET /v1/sessions/{session}/recommendations", s.handleSessionRecommendations)

	mux.HandleFunc("GET /v1/ws", s.handleWS)
	return s.withRequestID(mux)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range s.checkers {
		if err := c.HealthCheck(ctx); err != nil {
			failed[c.Name()] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.log(r).Warn("readiness check failed", "checks", failed)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// mode reads ?mode=, falling back to the server default.
func (s *Server) mode(r *http.Request) (recommend.Mode, error) {
	q := r.URL.Query().Get("mode")
	if q == "" {
		return s.defaultMode, nil
	}
	return recommend.ParseMode(q)
}

func (s *Server) log(r *http.Request) *slog.Logger {
	if id := RequestID(r.Context()); id != "" {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

// fail maps err to a status code and writes an error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log(r).Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, recommend.ErrStudentNotFound), errors.Is(err, learner.ErrNoSelection):
		return http.StatusNotFound
	case errors.Is(err, recommend.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
