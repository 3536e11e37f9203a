package httpapi

import (
	"io"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/cagepulse/cagepulse/internal/usecase"
)

const maxRequestBody = 1 << 20

type syncEventsRequest struct {
	Force bool `json:"force"`
}

type syncCardRequest struct {
	EventID string `json:"event_id"`
	Force   bool   `json:"force"`
}

type mapFightersRequest struct {
	VerifyOnly bool `json:"verify_only"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.provider.HealthCheck(r.Context())

	code := http.StatusOK
	if status.Status == usecase.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"provider":   status.Provider,
		"status":     status.Status,
		"latency_ms": status.Latency.Milliseconds(),
		"can_fetch":  status.CanFetch,
		"can_parse":  status.CanParse,
		"error":      status.Error,
	})
}

func (s *Server) handleSyncEvents(w http.ResponseWriter, r *http.Request) {
	var req syncEventsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	req.Force = req.Force || queryFlag(r, "force")

	summary, err := s.eventSync.SyncEvents(r.Context(), req.Force)
	if err != nil {
		s.writeSyncError(w, r, err, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSyncCard(w http.ResponseWriter, r *http.Request) {
	var req syncCardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	applyCardQueryFlags(r, &req)

	summary, err := s.cardSync.SyncCard(r.Context(), req.EventID, req.Force)
	if err != nil {
		s.writeSyncError(w, r, err, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSyncResults(w http.ResponseWriter, r *http.Request) {
	var req syncCardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	applyCardQueryFlags(r, &req)

	summary, err := s.resultSync.SyncResults(r.Context(), req.EventID, req.Force)
	if err != nil {
		s.writeSyncError(w, r, err, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMapFighters(w http.ResponseWriter, r *http.Request) {
	var req mapFightersRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	req.VerifyOnly = req.VerifyOnly || queryFlag(r, "verify_only")

	summary, err := s.identity.MapFighters(r.Context(), req.VerifyOnly)
	if err != nil {
		s.writeSyncError(w, r, err, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// queryFlag reads a boolean query parameter; jobs accept flags either
// in the JSON body or as ?force=true style query strings.
func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func applyCardQueryFlags(r *http.Request, req *syncCardRequest) {
	if req.EventID == "" {
		req.EventID = r.URL.Query().Get("event_id")
	}
	req.Force = req.Force || queryFlag(r, "force")
}

// decodeBody tolerates an empty body so jobs can be triggered with a
// bare POST; a malformed body is still a client error.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (s *Server) writeSyncError(w http.ResponseWriter, r *http.Request, err error, summary any) {
	switch {
	case crerr.Is(err, usecase.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case crerr.Is(err, usecase.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case crerr.Is(err, usecase.ErrSuspectSnapshot):
		// The run aborted deliberately; return the summary so the caller
		// can see why, with a conflict status to flag it.
		writeJSON(w, http.StatusConflict, summary)
	case crerr.Is(err, usecase.ErrDependencyUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "sync job failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
