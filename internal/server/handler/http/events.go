package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

// eventBuffer is the number of snapshots queued per stream before new ones
// are dropped.
const eventBuffer = 16

// subscribe registers a JSON-encoding callback through on.
func subscribe[T any](on func(func([]T)) (func(), error), out chan<- []byte, log *zap.Logger) (func(), error) {
	return on(func(items []T) {
		data, err := json.Marshal(items)
		if err != nil {
			log.Error("failed to encode change event", zap.Error(err))
			return
		}
		select {
		case out <- data:
		default:
			log.Warn("event stream is behind, dropping snapshot")
		}
	})
}

// Events handles GET /api/events/{collection} as a server-sent event stream
// of collection snapshots. It requires the remote store.
func (h *InventoryHandler) Events(w http.ResponseWriter, r *http.Request) {
	collection := pathParam(r, "collection")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan []byte, eventBuffer)
	var (
		cancel func()
		err    error
	)
	switch collection {
	case models.CollectionPhones:
		cancel, err = subscribe(h.Inventory.OnPhonesChange, events, h.Log)
	case models.CollectionAccessories:
		cancel, err = subscribe(h.Inventory.OnAccessoriesChange, events, h.Log)
	case models.CollectionSales:
		cancel, err = subscribe(h.Inventory.OnSalesChange, events, h.Log)
	default:
		http.Error(w, "unknown collection", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-events:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", collection, data); err != nil {
				h.Log.Debug("event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}
