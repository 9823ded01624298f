// Package http exposes the inventory storage over a JSON REST API.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/models"
	"github.com/atinyakov/ShopKeeper/internal/service"
)

// Inventory is the storage facade consumed by the handlers.
type Inventory interface {
	RemoteEnabled() bool

	Phones(ctx context.Context) ([]models.Phone, error)
	SetPhones(ctx context.Context, phones []models.Phone) error
	AddPhone(ctx context.Context, p models.Phone) (string, error)
	UpdatePhone(ctx context.Context, id string, patch models.Patch) error
	DeletePhone(ctx context.Context, id string) error
	PhoneByNumber(ctx context.Context, number string) (models.Phone, error)
	PhoneBySerial(ctx context.Context, serial string) (models.Phone, error)
	SearchPhones(ctx context.Context, term string) ([]models.Phone, error)

	Accessories(ctx context.Context) ([]models.Accessory, error)
	SetAccessories(ctx context.Context, items []models.Accessory) error
	AddAccessory(ctx context.Context, a models.Accessory) (string, error)
	UpdateAccessory(ctx context.Context, id string, patch models.Patch) error
	DeleteAccessory(ctx context.Context, id string) error
	SearchAccessories(ctx context.Context, term string) ([]models.Accessory, error)

	Sales(ctx context.Context) ([]models.Sale, error)
	SetSales(ctx context.Context, sales []models.Sale) error
	AddSale(ctx context.Context, sale models.Sale) (string, error)
	UpdateSale(ctx context.Context, id string, patch models.Patch) error
	DeleteSale(ctx context.Context, id string) error
	Sale(ctx context.Context, id string) (models.Sale, error)

	PhoneTypes(ctx context.Context) (models.PhoneTypes, error)
	SetPhoneTypes(ctx context.Context, types models.PhoneTypes) error
	AddPhoneType(ctx context.Context, brand, model string) error
	DeletePhoneType(ctx context.Context, brand, model string) error
	AccessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error)
	SetAccessoryCategories(ctx context.Context, list []models.AccessoryCategory) error
	AddAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error
	DeleteAccessoryCategory(ctx context.Context, key string) error

	CurrentUser() (models.User, bool)
	SetCurrentUser(u models.User) error
	Logout() error

	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Stats(ctx context.Context) (service.Stats, error)

	OnPhonesChange(fn func([]models.Phone)) (func(), error)
	OnAccessoriesChange(fn func([]models.Accessory)) (func(), error)
	OnSalesChange(fn func([]models.Sale)) (func(), error)
}

// InventoryHandler serves the inventory API.
type InventoryHandler struct {
	// Inventory performs the underlying storage operations.
	Inventory Inventory
	Log       *zap.Logger
}

// collectionHandler serves list, replace, add, update and delete for one
// record collection.
type collectionHandler[T any] struct {
	list    func(context.Context) ([]T, error)
	replace func(context.Context, []T) error
	add     func(context.Context, T) (string, error)
	update  func(context.Context, string, models.Patch) error
	remove  func(context.Context, string) error
}

func (c collectionHandler[T]) mount(r chi.Router) {
	r.Get("/", c.List)
	r.Put("/", c.Replace)
	r.Post("/", c.Add)
	r.Patch("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
}

// List handles GET requests for the whole collection.
func (c collectionHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.list(r.Context())
	writeRead(w, items, err)
}

// Replace handles PUT requests carrying the full collection.
func (c collectionHandler[T]) Replace(w http.ResponseWriter, r *http.Request) {
	var items []T
	if !decodeBody(w, r, &items) {
		return
	}
	if err := c.replace(r.Context(), items); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Add handles POST requests and answers with the new record id.
func (c collectionHandler[T]) Add(w http.ResponseWriter, r *http.Request) {
	var rec T
	if !decodeBody(w, r, &rec) {
		return
	}
	id, err := c.add(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PATCH requests with a partial record.
func (c collectionHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	if err := c.update(r.Context(), pathParam(r, "id"), patch); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c collectionHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.remove(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) phones() collectionHandler[models.Phone] {
	inv := h.Inventory
	return collectionHandler[models.Phone]{inv.Phones, inv.SetPhones, inv.AddPhone, inv.UpdatePhone, inv.DeletePhone}
}

func (h *InventoryHandler) accessories() collectionHandler[models.Accessory] {
	inv := h.Inventory
	return collectionHandler[models.Accessory]{inv.Accessories, inv.SetAccessories, inv.AddAccessory, inv.UpdateAccessory, inv.DeleteAccessory}
}

func (h *InventoryHandler) sales() collectionHandler[models.Sale] {
	inv := h.Inventory
	return collectionHandler[models.Sale]{inv.Sales, inv.SetSales, inv.AddSale, inv.UpdateSale, inv.DeleteSale}
}

// SearchPhones handles GET /api/phones/search?q=.
func (h *InventoryHandler) SearchPhones(w http.ResponseWriter, r *http.Request) {
	found, err := h.Inventory.SearchPhones(r.Context(), r.URL.Query().Get("q"))
	writeRead(w, found, err)
}

// SearchAccessories handles GET /api/accessories/search?q=.
func (h *InventoryHandler) SearchAccessories(w http.ResponseWriter, r *http.Request) {
	found, err := h.Inventory.SearchAccessories(r.Context(), r.URL.Query().Get("q"))
	writeRead(w, found, err)
}

func (h *InventoryHandler) PhoneByNumber(w http.ResponseWriter, r *http.Request) {
	p, err := h.Inventory.PhoneByNumber(r.Context(), pathParam(r, "number"))
	writeRead(w, p, err)
}

func (h *InventoryHandler) PhoneBySerial(w http.ResponseWriter, r *http.Request) {
	p, err := h.Inventory.PhoneBySerial(r.Context(), pathParam(r, "serial"))
	writeRead(w, p, err)
}

// Sale handles GET /api/sales/{id}.
func (h *InventoryHandler) Sale(w http.ResponseWriter, r *http.Request) {
	s, err := h.Inventory.Sale(r.Context(), pathParam(r, "id"))
	writeRead(w, s, err)
}
