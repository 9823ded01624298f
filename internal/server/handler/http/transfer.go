package http

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/service"
)

// maxImportSize bounds the accepted import document.
const maxImportSize = 32 << 20

// Export handles GET /api/export and answers with the export document as an
// attachment.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.Inventory.Export(r.Context())
	if err != nil && !errors.Is(err, service.ErrFallback) {
		writeError(w, err)
		return
	}
	if err != nil {
		w.Header().Set(FallbackHeader, "true")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory-export.json"`)
	_, _ = w.Write(data)
}

// Import handles POST /api/import with an export document body.
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Inventory.Import(r.Context(), data); err != nil {
		h.Log.Error("import failed", zap.Error(err))
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/stats.
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Inventory.Stats(r.Context())
	writeRead(w, stats, err)
}
