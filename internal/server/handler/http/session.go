package http

import (
	"net/http"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// CurrentUser handles GET /api/session.
func (h *InventoryHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Inventory.CurrentUser()
	if !ok {
		http.Error(w, "not logged in", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// SetCurrentUser handles PUT /api/session.
func (h *InventoryHandler) SetCurrentUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !decodeBody(w, r, &u) {
		return
	}
	if u.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	if err := h.Inventory.SetCurrentUser(u); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout handles DELETE /api/session.
func (h *InventoryHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.Logout(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
