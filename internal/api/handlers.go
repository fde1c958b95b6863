package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourdispatch/internal/dispatch"
	"tourdispatch/internal/metrics"
	"tourdispatch/internal/model"
	"tourdispatch/internal/store"
)

// OptimizeHandler handles POST /v1/dispatch/optimize. The request either
// carries tour runs and guides inline or names a stored dispatch day. The
// optimization itself is a pure in-process pass; only loading inputs and
// persisting the proposal touch the store.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanDispatch() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.OrganizationID == "" {
		req.OrganizationID = p.Org
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}

	runs, guides := req.TourRuns, req.Guides
	if len(runs) == 0 && len(guides) == 0 {
		var err error
		runs, guides, err = s.Store.GetDispatchDay(r.Context(), req.OrganizationID, req.Date)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Dispatch day not found", req.Date, r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Load dispatch day failed", err.Error(), r.URL.Path)
			return
		}
	}

	entries := req.TravelTimes
	if entries == nil {
		// travel data is optional: an empty matrix degrades scoring, it
		// never fails the pass
		stored, err := s.Store.ListTravelTimes(r.Context(), req.OrganizationID)
		if err == nil {
			entries = stored
		}
	}

	token := strings.Split(uuid.New().String(), "-")[0]
	started := time.Now()
	out := dispatch.Optimize(dispatch.Input{
		OrganizationID: req.OrganizationID,
		Date:           req.Date,
		TourRuns:       runs,
		Guides:         guides,
		Matrix:         dispatch.BuildMatrix(entries),
		WarningID: func(seq int) string {
			return fmt.Sprintf("warn_%04d_%s", seq, token)
		},
	})
	metrics.OptimizeDuration.Observe(time.Since(started).Seconds())
	metrics.OptimizePasses.WithLabelValues(req.OrganizationID).Inc()
	metrics.OptimizeEfficiency.Observe(out.Efficiency)
	for _, warn := range out.Warnings {
		metrics.OptimizeWarnings.WithLabelValues(warn.Type, warn.Severity).Inc()
	}

	resp := map[string]any{"output": out}
	if req.Persist {
		prop, err := s.Store.SaveProposal(r.Context(), req.OrganizationID, req.Date, out)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save proposal failed", err.Error(), r.URL.Path)
			return
		}
		resp["proposalId"] = prop.ID
	}

	s.Broker.Publish(req.OrganizationID, Event{Type: "dispatch.optimized", Data: map[string]any{
		"organizationId": req.OrganizationID,
		"date":           req.Date,
		"assignments":    len(out.Assignments),
		"warnings":       len(out.Warnings),
		"efficiency":     out.Efficiency,
	}})
	writeJSON(w, http.StatusOK, resp)
}

// TravelMatrixHandler handles PUT/GET /v1/travel-matrix.
func (s *Server) TravelMatrixHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPut:
		if !p.CanDispatch() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
			return
		}
		var req struct {
			OrganizationID string                  `json:"organizationId"`
			Entries        []model.TravelTimeEntry `json:"entries"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.OrganizationID == "" {
			req.OrganizationID = p.Org
		}
		if err := s.Store.ReplaceTravelTimes(r.Context(), req.OrganizationID, req.Entries); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save travel times failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stored": len(req.Entries)})
	case http.MethodGet:
		entries, err := s.Store.ListTravelTimes(r.Context(), p.Org)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List travel times failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// DispatchDaysHandler handles POST /v1/dispatch-days: upserting a day's tour
// runs and guide pool so later optimize calls can reference them by date.
func (s *Server) DispatchDaysHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanDispatch() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req struct {
		OrganizationID string          `json:"organizationId"`
		Date           string          `json:"date"`
		TourRuns       []model.TourRun `json:"tourRuns"`
		Guides         []model.Guide   `json:"guides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.OrganizationID == "" {
		req.OrganizationID = p.Org
	}
	if req.Date == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid dispatch day", "date is required", r.URL.Path)
		return
	}
	if err := s.Store.SaveDispatchDay(r.Context(), req.OrganizationID, req.Date, req.TourRuns, req.Guides); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save dispatch day failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"date":     req.Date,
		"tourRuns": len(req.TourRuns),
		"guides":   len(req.Guides),
	})
}

// ProposalsHandler handles GET /v1/dispatch/proposals.
func (s *Server) ProposalsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	date := r.URL.Query().Get("date")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListProposals(r.Context(), p.Org, date, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List proposals failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ProposalByIDHandler handles GET /v1/dispatch/proposals/{id}.
func (s *Server) ProposalByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/dispatch/proposals/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	prop, err := s.Store.GetProposal(r.Context(), p.Org, id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Proposal not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get proposal failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
