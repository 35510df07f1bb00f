package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/progress"
	"github.com/claude/ironlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    storage.Store
	progress *progress.Service
	alpha    ingest.Provider
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store storage.Store, alphaProvider ingest.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		progress: progress.NewService(store, log),
		alpha:    alphaProvider,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Progress returns the progress service backing the read endpoints.
func (s *Server) Progress() *progress.Service {
	return s.progress
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/alpha", s.handleAlphaIngest)
	})
	s.router.Route("/api/v1/companion", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/workouts", s.handleCompanionWorkout)
	})

	// Read endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/sessions/{id}/comparison", s.handleSessionComparison)
	s.router.Get("/api/v1/sessions/{id}/supersets", s.handleSessionSupersets)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{name}/progress", s.handleExerciseProgress)
	s.router.Get("/api/v1/exercises/{name}/previous", s.handleExercisePrevious)

	s.router.Route("/api/v1/routines", func(r chi.Router) {
		r.Get("/", s.handleListRoutines)
		r.Get("/{id}", s.handleGetRoutine)
		r.With(APIKeyAuth(s.apiKey)).Put("/{id}", s.handlePutRoutine)
	})
}

// MountMCP serves the given MCP transport at /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
