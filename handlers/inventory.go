// ABOUTME: vSphere inventory discovery endpoint
// ABOUTME: Serves cached snapshots for seeding sessions from live vCenter data

package handlers

import (
	"log/slog"
	"net/http"
)

// GetVSphereInventory discovers (or serves a cached) vCenter inventory
// ready to POST back into a session load.
func (h *Handler) GetVSphereInventory(w http.ResponseWriter, r *http.Request) {
	if h.inventory == nil {
		writeError(w, "vSphere not configured. Set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and VSPHERE_DATACENTER environment variables.", http.StatusServiceUnavailable)
		return
	}

	inv, err := h.inventory.Fetch(r.Context())
	if err != nil {
		slog.Error("vSphere inventory fetch failed", "error", err)
		writeError(w, "Failed to fetch vSphere inventory: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// RefreshVSphereInventory invalidates the cached snapshot.
func (h *Handler) RefreshVSphereInventory(w http.ResponseWriter, r *http.Request) {
	if h.inventory == nil {
		writeError(w, "vSphere not configured", http.StatusServiceUnavailable)
		return
	}
	h.inventory.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
