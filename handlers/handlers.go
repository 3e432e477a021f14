// ABOUTME: HTTP handlers for the placement planner API
// ABOUTME: Maps engine sentinel errors onto JSON responses and status codes

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markalston/placement-planner/config"
	"github.com/markalston/placement-planner/engine"
	"github.com/markalston/placement-planner/models"
	"github.com/markalston/placement-planner/services"
)

type Handler struct {
	cfg       *config.Config
	registry  *engine.Registry
	inventory *services.InventoryService
}

// NewHandler creates the handler set. The inventory service is optional;
// without it the vSphere endpoint reports not-configured.
func NewHandler(cfg *config.Config, registry *engine.Registry, inventory *services.InventoryService) *Handler {
	return &Handler{cfg: cfg, registry: registry, inventory: inventory}
}

// Health returns API health status and feature availability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"sessions":           h.registry.Len(),
		"vsphere_configured": h.inventory != nil,
	})
}

// session resolves the {id} path value, writing the error response itself
// when the session does not exist.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*engine.Session, bool) {
	id := r.PathValue("id")
	s, err := h.registry.Get(id)
	if err != nil {
		writeError(w, "Session not found: "+sanitizeForLog(id), http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeEngineError maps an engine error to its HTTP status.
func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, err.Error(), statusForError(err))
}

// statusForError distinguishes missing resources (404), sequencing
// conflicts (409), and bad input data (400).
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrSessionNotFound),
		errors.Is(err, engine.ErrUnknownWorkload),
		errors.Is(err, engine.ErrUnknownPool):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyPlanned),
		errors.Is(err, engine.ErrNothingPlacedYet),
		errors.Is(err, engine.ErrNotYetPlanned),
		errors.Is(err, engine.ErrNothingToUndo),
		errors.Is(err, engine.ErrNothingToRedo):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoInventory),
		errors.Is(err, engine.ErrDuplicateID),
		errors.Is(err, models.ErrInvalidResourceValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeForLog removes control characters from strings to prevent log
// injection when echoing user input in error messages.
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
