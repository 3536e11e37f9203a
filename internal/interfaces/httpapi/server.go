package httpapi

import (
	"net/http"

	"github.com/cagepulse/cagepulse/internal/platform/logging"
	"github.com/cagepulse/cagepulse/internal/usecase"
)

// Server exposes the internal job-trigger surface. Schedulers hit these
// endpoints; there is no public read API here.
type Server struct {
	mux *http.ServeMux

	provider   usecase.FightDataProvider
	eventSync  *usecase.EventSyncService
	cardSync   *usecase.CardSyncService
	resultSync *usecase.ResultSyncService
	identity   *usecase.IdentityService
	jobToken   string
	logger     *logging.Logger
}

type ServerConfig struct {
	Provider   usecase.FightDataProvider
	EventSync  *usecase.EventSyncService
	CardSync   *usecase.CardSyncService
	ResultSync *usecase.ResultSyncService
	Identity   *usecase.IdentityService
	JobToken   string
	Logger     *logging.Logger
}

func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	s := &Server{
		mux:        http.NewServeMux(),
		provider:   cfg.Provider,
		eventSync:  cfg.EventSync,
		cardSync:   cfg.CardSync,
		resultSync: cfg.ResultSync,
		identity:   cfg.Identity,
		jobToken:   cfg.JobToken,
		logger:     logger,
	}

	s.mux.HandleFunc("GET /internal/health", s.handleHealth)
	s.mux.HandleFunc("POST /internal/jobs/sync-events", s.requireJobToken(s.handleSyncEvents))
	s.mux.HandleFunc("POST /internal/jobs/sync-card", s.requireJobToken(s.handleSyncCard))
	s.mux.HandleFunc("POST /internal/jobs/sync-results", s.requireJobToken(s.handleSyncResults))
	s.mux.HandleFunc("POST /internal/jobs/map-fighters", s.requireJobToken(s.handleMapFighters))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// requireJobToken guards job triggers; with no token configured the
// surface is open, which is only acceptable for local development.
func (s *Server) requireJobToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobToken != "" && r.Header.Get("X-Internal-Token") != s.jobToken {
			writeError(w, http.StatusUnauthorized, "invalid internal job token")
			return
		}
		next(w, r)
	}
}
