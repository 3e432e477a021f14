// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Sessions
		{Method: http.MethodPost, Path: "/api/v1/sessions", Handler: h.CreateSession},
		{Method: http.MethodGet, Path: "/api/v1/sessions/{id}", Handler: h.GetSession},
		{Method: http.MethodDelete, Path: "/api/v1/sessions/{id}", Handler: h.DeleteSession},
		{Method: http.MethodPost, Path: "/api/v1/sessions/{id}/load", Handler: h.LoadSession},
		{Method: http.MethodPost, Path: "/api/v1/sessions/{id}/plan", Handler: h.PlanSession},
		{Method: http.MethodPost, Path: "/api/v1/sessions/{id}/move", Handler: h.MoveWorkload},
		{Method: http.MethodPost, Path: "/api/v1/sessions/{id}/undo", Handler: h.UndoSession},
		{Method: http.MethodPost, Path: "/api/v1/sessions/{id}/redo", Handler: h.RedoSession},
		{Method: http.MethodGet, Path: "/api/v1/sessions/{id}/report", Handler: h.ReportSession},

		// Inventory
		{Method: http.MethodGet, Path: "/api/v1/inventory/vsphere", Handler: h.GetVSphereInventory},
		{Method: http.MethodPost, Path: "/api/v1/inventory/vsphere/refresh", Handler: h.RefreshVSphereInventory},
	}
}
