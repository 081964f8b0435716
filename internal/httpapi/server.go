package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sangkhep/internal/domain"
	"sangkhep/internal/session"

	"github.com/gorilla/mux"
)

// Sessions is the orchestrator surface exposed over HTTP.
type Sessions interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Open(ctx context.Context, id string) (*domain.Session, error)
	Reset(ctx context.Context, id string) error
	Fetch(ctx context.Context, id string, url string) (string, error)
	SetOptions(ctx context.Context, id string, options domain.Options) error
	Summarize(ctx context.Context, id string, params session.SummarizeParams) (string, error)
	Ask(ctx context.Context, id string, params session.AskParams) (string, error)
}

type Server struct {
	sessions Sessions
	newID    func() string
	log      *slog.Logger
}

func NewServer(sessions Sessions, newID func() string, log *slog.Logger) *Server {
	return &Server{
		sessions: sessions,
		newID:    newID,
		log:      log,
	}
}

// Routes builds the JSON API router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/sessions").Subrouter()
	api.HandleFunc("", s.createSessionHandler).Methods(http.MethodPost)

	sess := api.PathPrefix("/{id}").Subrouter()
	sess.Use(s.requireSession)
	sess.HandleFunc("", s.getSessionHandler).Methods(http.MethodGet)
	sess.HandleFunc("", s.deleteSessionHandler).Methods(http.MethodDelete)
	sess.HandleFunc("/fetch", s.fetchHandler).Methods(http.MethodPost)
	sess.HandleFunc("/summarize", s.summarizeHandler).Methods(http.MethodPost)
	sess.HandleFunc("/ask", s.askHandler).Methods(http.MethodPost)
	sess.HandleFunc("/options", s.optionsHandler).Methods(http.MethodPut)

	return r
}

// requireSession answers 404 for unknown session IDs so that actions never
// create sessions implicitly.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.sessions.Get(r.Context(), mux.Vars(r)["id"]); err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.log.InfoContext(r.Context(), "HTTP request is served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
