// ABOUTME: Session lifecycle endpoints: create, load, plan, move, history, report
// ABOUTME: Thin JSON shims over the engine; all placement logic lives there

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/markalston/placement-planner/engine"
	"github.com/markalston/placement-planner/models"
)

// InventoryRequest is the request body for seeding a session.
type InventoryRequest struct {
	Workloads []models.Workload     `json:"workloads"`
	Pools     []models.ResourcePool `json:"pools"`
}

// MoveRequest is the request body for a manual re-assignment.
type MoveRequest struct {
	WorkloadID   string `json:"workload_id"`
	TargetPoolID string `json:"target_pool_id"`
}

// CreateSession registers a new session. When the body carries an
// inventory it is loaded immediately; an empty body creates an empty
// session for a later load.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	s := h.registry.Create()
	if len(req.Workloads) > 0 || len(req.Pools) > 0 {
		if err := s.Load(req.Workloads, req.Pools); err != nil {
			// Seeding failed; don't leave an empty session behind.
			h.registry.Delete(s.ID())
			writeEngineError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, s.Status())
}

// GetSession returns the session status snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

// DeleteSession tears a session down.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	if err := h.registry.Delete(r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadSession replaces the session's inventory, clearing placements and
// history.
func (h *Handler) LoadSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req InventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := s.Load(req.Workloads, req.Pools); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

// PlanSession runs automatic placement. ?force=true discards existing
// placements and re-plans.
func (h *Handler) PlanSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	summary, err := s.RunAutoPlacement(force)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// MoveWorkload applies a manual move, returning the validation outcome.
// Over-capacity moves succeed with a warning; only unknown ids fail.
func (h *Handler) MoveWorkload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	outcome, err := s.Move(req.WorkloadID, req.TargetPoolID)
	if err != nil {
		if outcome.Decision == models.DecisionBlocked {
			writeJSON(w, statusForError(err), outcome)
			return
		}
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// UndoSession reverts the most recent mutation.
func (h *Handler) UndoSession(w http.ResponseWriter, r *http.Request) {
	h.applyHistory(w, r, func(s *engine.Session) error { return s.Undo() })
}

// RedoSession re-applies the most recently undone mutation.
func (h *Handler) RedoSession(w http.ResponseWriter, r *http.Request) {
	h.applyHistory(w, r, func(s *engine.Session) error { return s.Redo() })
}

func (h *Handler) applyHistory(w http.ResponseWriter, r *http.Request, op func(*engine.Session) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := op(s); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

// ReportSession returns the current utilization report and bottlenecks.
func (h *Handler) ReportSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	report, err := s.Report()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
