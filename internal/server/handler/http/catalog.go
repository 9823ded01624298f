package http

import (
	"net/http"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// PhoneTypes handles GET /api/phone-types.
func (h *InventoryHandler) PhoneTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Inventory.PhoneTypes(r.Context())
	writeRead(w, types, err)
}

// SetPhoneTypes handles PUT /api/phone-types with the full brand to models
// catalog.
func (h *InventoryHandler) SetPhoneTypes(w http.ResponseWriter, r *http.Request) {
	var types models.PhoneTypes
	if !decodeBody(w, r, &types) {
		return
	}
	if err := h.Inventory.SetPhoneTypes(r.Context(), types); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPhoneType handles POST /api/phone-types with a {"brand","model"} body.
func (h *InventoryHandler) AddPhoneType(w http.ResponseWriter, r *http.Request) {
	var req models.PhoneType
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Inventory.AddPhoneType(r.Context(), req.Maker(), req.Model); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeletePhoneType handles DELETE /api/phone-types/{brand}/{model}.
func (h *InventoryHandler) DeletePhoneType(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.DeletePhoneType(r.Context(), pathParam(r, "brand"), pathParam(r, "model")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) AccessoryCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Inventory.AccessoryCategories(r.Context())
	writeRead(w, cats, err)
}

func (h *InventoryHandler) SetAccessoryCategories(w http.ResponseWriter, r *http.Request) {
	var list []models.AccessoryCategory
	if !decodeBody(w, r, &list) {
		return
	}
	if err := h.Inventory.SetAccessoryCategories(r.Context(), list); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) AddAccessoryCategory(w http.ResponseWriter, r *http.Request) {
	var c models.AccessoryCategory
	if !decodeBody(w, r, &c) {
		return
	}
	if err := h.Inventory.AddAccessoryCategory(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteAccessoryCategory handles DELETE /api/accessory-categories/{name};
// name may also be the localized name.
func (h *InventoryHandler) DeleteAccessoryCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.DeleteAccessoryCategory(r.Context(), pathParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
