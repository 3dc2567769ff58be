package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/log"
	"github.com/tomcoffee/kimono-sim/internal/planner"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady performs a readiness check. The service is ready once
// the plan has been installed, whether it came from the store or from
// the seed fallback.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch s.planner.Status() {
	case planner.StatusIdle, planner.StatusLoading:
		checks["plan"] = "not_loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	default:
		checks["plan"] = "ok"
	}

	checks["view_cache"] = map[string]any{
		"entries": s.viewCache.Size(),
		"status":  "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleGetPlan returns the derived view of the current plan.
// Profit margins are rounded to one decimal for presentation; the
// underlying state keeps full precision.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, roundedView(s.currentView()))
}

type editRequest struct {
	ID    int64  `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type editResponse struct {
	Applied bool         `json:"applied"`
	Version uint64       `json:"version"`
	View    planner.View `json:"view"`
}

// handleEdit applies a single-field update to one record. An unknown
// field is a client error; a stale record id is a silent no-op.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	logger := log.FromContext(r.Context())

	applied, err := s.planner.Edit(r.Context(), req.ID, core.Field(req.Field), req.Value)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidField) {
			writeError(w, http.StatusUnprocessableEntity, "field is not editable: "+req.Field)
			return
		}
		logger.ErrorContext(r.Context(), "Edit failed",
			log.FieldError, err,
			log.FieldRecordID, req.ID,
			log.FieldEditField, req.Field)
		writeError(w, http.StatusInternalServerError, "edit failed")
		return
	}

	if !applied {
		logger.WarnContext(r.Context(), "Edit target not found, ignoring",
			log.FieldRecordID, req.ID,
			log.FieldEditField, req.Field)
	} else {
		logger.InfoContext(r.Context(), "Record updated",
			log.FieldRecordID, req.ID,
			log.FieldEditField, req.Field,
			log.FieldPlanVersion, s.planner.Version())
	}

	view := roundedView(s.currentView())
	writeJSON(w, http.StatusOK, editResponse{
		Applied: applied,
		Version: view.Version,
		View:    view,
	})
}

// handleSave pushes the whole current plan to the store. This is the
// only path that persists anything; there is no save on edit.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.FromContext(r.Context())

	if err := s.planner.Save(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "Plan save failed", log.FieldError, err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"saved": false,
			"view":  roundedView(s.currentView()),
		})
		return
	}

	view := roundedView(s.currentView())
	logger.InfoContext(r.Context(), "Plan saved",
		log.FieldRecords, len(view.Records),
		log.FieldPlanVersion, view.Version)
	writeJSON(w, http.StatusOK, map[string]any{
		"saved": true,
		"view":  view,
	})
}

// handleReload re-reads the plan from the store, discarding unsaved
// edits. A failed or empty load falls back to the seed plan; reload
// itself never fails the caller.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logger := log.FromContext(r.Context())

	status := s.planner.Load(r.Context())
	view := roundedView(s.currentView())
	logger.InfoContext(r.Context(), "Plan reloaded",
		"status", string(status),
		log.FieldRecords, len(view.Records),
		log.FieldPlanSource, string(view.Source))

	writeJSON(w, http.StatusOK, view)
}

type dismissRequest struct {
	ID int64 `json:"id"`
}

// handleDismissNotice removes one notice by id.
func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dismissRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	dismissed := s.planner.DismissNotice(req.ID)
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": dismissed})
}

// roundedView rounds margins to one decimal for display.
func roundedView(v planner.View) planner.View {
	records := make([]core.EnrichedRecord, len(v.Records))
	copy(records, v.Records)
	for i := range records {
		records[i].ProfitMargin = core.Round1(records[i].ProfitMargin)
	}
	v.Records = records
	v.Summary.ProfitMarginPct = core.Round1(v.Summary.ProfitMarginPct)
	return v
}
