package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/codec"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/session"
)

// Server serves the session API.
type Server struct {
	sessions *session.Manager
	parser   *wayfinder.Router
	streams  *StreamManager
	metrics  http.Handler
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a StreamManager whose RouterOptions were given to the
// session manager. Without it the events endpoint never receives anything.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.streams = streams
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithIDGenerator overrides the generator of session ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewHandler creates the HTTP handler of the session API.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}
	// Stateless router used by /parse and /path.
	parser, err := wayfinder.New(sessions.Config(), wayfinder.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	s.parser = parser

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Post("/parse", s.Parse)
	r.Post("/path", s.Path)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Patch("/state", s.ChangeState)
			r.Post("/back", s.Back)
			r.Post("/forward", s.Forward)
			r.Get("/history", s.GetHistory)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionView is the JSON representation of a live session.
type SessionView struct {
	ID            string      `json:"id"`
	Path          string      `json:"path"`
	Current       domain.Tree `json:"current"`
	Previous      domain.Tree `json:"previous"`
	HistoryLength int         `json:"history_length"`
}

// ReportView is the JSON representation of a dispatch pass.
type ReportView struct {
	Generation  uint64           `json:"generation"`
	Queued      bool             `json:"queued,omitempty"`
	Interrupted bool             `json:"interrupted,omitempty"`
	Invocations []InvocationView `json:"invocations"`
	Unmatched   []string         `json:"unmatched,omitempty"`
}

// InvocationView is one handler chain run of a dispatch pass.
type InvocationView struct {
	Key      string `json:"key"`
	Resolved string `json:"resolved"`
	Mode     string `json:"mode"`
}

// StateChangeResponse is returned by PATCH /sessions/{id}/state.
type StateChangeResponse struct {
	Session SessionView `json:"session"`
	Report  ReportView  `json:"report"`
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	URL string `json:"url"`
}

// ParseResponse carries the parsed state, partial when Error is set.
type ParseResponse struct {
	State domain.Tree `json:"state"`
	Error string      `json:"error,omitempty"`
}

// PathRequest is the body of POST /path.
type PathRequest struct {
	State domain.Tree `json:"state"`
}

// PathResponse is the canonical URL of a state.
type PathResponse struct {
	Path string `json:"path"`
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	ID   string `json:"id,omitempty"`
	Href string `json:"href,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":      "wayfinder-http",
		"version":  strings.TrimSpace(wayfinder.Version),
		"base_url": s.parser.BaseURL(),
	})
}

// Parse handles the POST /parse request.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	var body ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "Parse", err)
		return
	}
	state, err := s.parser.GenerateState(r.Context(), body.URL, false)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, ParseResponse{State: state, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, ParseResponse{State: state})
}

// Path handles the POST /path request.
func (s *Server) Path(w http.ResponseWriter, r *http.Request) {
	var body PathRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "Path", err)
		return
	}
	s.writeJSON(w, http.StatusOK, PathResponse{Path: s.parser.GeneratePathFor(body.State)})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles the POST /sessions request. The body is optional.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.badRequest(w, "CreateSession", err)
			return
		}
	}
	if body.ID == "" {
		body.ID = s.newID()
	}
	sess, err := s.sessions.Create(r.Context(), body.ID, body.Href)
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, view(sess))
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view(sess))
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeState handles the PATCH /sessions/{id}/state request. The body is
// a state delta; null values delete keys.
func (s *Server) ChangeState(w http.ResponseWriter, r *http.Request) {
	var delta domain.Tree
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		s.badRequest(w, "ChangeState", err)
		return
	}
	id := chi.URLParam(r, "id")
	report, err := s.sessions.ChangeState(r.Context(), id, delta)
	if err != nil {
		s.writeError(w, "ChangeState", err)
		return
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, "ChangeState", err)
		return
	}
	s.writeJSON(w, http.StatusOK, StateChangeResponse{Session: view(sess), Report: reportView(report)})
}

// Back handles the POST /sessions/{id}/back request.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "Back", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view(sess))
}

// Forward handles the POST /sessions/{id}/forward request.
func (s *Server) Forward(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Forward(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "Forward", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view(sess))
}

// GetHistory handles the GET /sessions/{id}/history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetHistory", err)
		return
	}
	entries, err := sess.History.Entries(r.Context())
	if err != nil {
		s.writeError(w, "GetHistory", err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// The optional watch parameter is a comma separated list of event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	sessionID := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), sessionID); err != nil {
		s.writeError(w, "SubscribeEvents", err)
		return
	}

	watch := make(map[domain.EventType]bool)
	if v := r.URL.Query().Get("watch"); v != "" {
		for _, field := range strings.Split(v, ",") {
			watch[domain.EventType(strings.TrimSpace(field))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: Subscribing to session events", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[msg.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func view(sess *session.Session) SessionView {
	return SessionView{
		ID:            sess.ID,
		Path:          sess.Router.GeneratePath(),
		Current:       sess.Router.Current(),
		Previous:      sess.Router.Previous(),
		HistoryLength: len(sess.Router.History()),
	}
}

func reportView(report dispatch.Report) ReportView {
	out := ReportView{
		Generation:  report.Generation,
		Queued:      report.Queued,
		Interrupted: report.Interrupted,
		Invocations: make([]InvocationView, len(report.Invocations)),
		Unmatched:   report.Unmatched,
	}
	for i, inv := range report.Invocations {
		out.Invocations[i] = InvocationView{Key: inv.Key, Resolved: inv.Resolved, Mode: string(inv.Mode)}
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists), errors.Is(err, domain.ErrNoHistory):
		return http.StatusConflict
	case errors.Is(err, codec.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.logger.Warn(op+": Invalid request body", "err", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// NewServer wraps handler in an http.Server with the timeouts used in
// production. The write timeout is left unset for SSE streams.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
