package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/middleware"
)

// NewInventoryHandler creates an InventoryHandler. A nil logger is replaced
// by a no-op one.
func NewInventoryHandler(inv Inventory, log *zap.Logger) *InventoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryHandler{Inventory: inv, Log: log}
}

// NewRouter constructs the HTTP handler serving the inventory API under /api.
//
// Routes:
//
//	GET|PUT|POST /api/{phones,accessories,sales}      list, replace, add
//	PATCH|DELETE /api/{phones,accessories,sales}/{id} update, delete
//	GET    /api/phones/search?q=, /api/accessories/search?q=
//	GET    /api/phones/by-number/{number}, /api/phones/by-serial/{serial}
//	GET    /api/sales/{id}
//	GET|PUT|POST /api/phone-types, DELETE /api/phone-types/{brand}/{model}
//	GET|PUT|POST /api/accessory-categories, DELETE /api/accessory-categories/{name}
//	GET|PUT|DELETE /api/session
//	GET    /api/export, POST /api/import, GET /api/stats
//	GET    /api/events/{collection}  server-sent events
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. WithRequestLogging(logger)
//  3. Recoverer
//  4. AllowContentType("application/json") for request bodies
func NewRouter(h *InventoryHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/phones", func(r chi.Router) {
			r.Get("/search", h.SearchPhones)
			r.Get("/by-number/{number}", h.PhoneByNumber)
			r.Get("/by-serial/{serial}", h.PhoneBySerial)
			h.phones().mount(r)
		})
		r.Route("/accessories", func(r chi.Router) {
			r.Get("/search", h.SearchAccessories)
			h.accessories().mount(r)
		})
		r.Route("/sales", func(r chi.Router) {
			r.Get("/{id}", h.Sale)
			h.sales().mount(r)
		})

		r.Route("/phone-types", func(r chi.Router) {
			r.Get("/", h.PhoneTypes)
			r.Put("/", h.SetPhoneTypes)
			r.Post("/", h.AddPhoneType)
			r.Delete("/{brand}/{model}", h.DeletePhoneType)
		})
		r.Route("/accessory-categories", func(r chi.Router) {
			r.Get("/", h.AccessoryCategories)
			r.Put("/", h.SetAccessoryCategories)
			r.Post("/", h.AddAccessoryCategory)
			r.Delete("/{name}", h.DeleteAccessoryCategory)
		})

		r.Get("/session", h.CurrentUser)
		r.Put("/session", h.SetCurrentUser)
		r.Delete("/session", h.Logout)

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Get("/stats", h.Stats)
		r.Get("/events/{collection}", h.Events)
	})

	return r
}
