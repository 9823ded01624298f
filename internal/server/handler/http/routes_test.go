package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/models"
	handler "github.com/atinyakov/ShopKeeper/internal/server/handler/http"
	"github.com/atinyakov/ShopKeeper/internal/service"
)

func newRouter(t *testing.T, inv handler.Inventory) http.Handler {
	t.Helper()
	return handler.NewRouter(handler.NewInventoryHandler(inv, zap.NewNop()), zap.NewNop())
}

func localRouter(t *testing.T) (http.Handler, *service.Storage) {
	t.Helper()
	s := service.NewStorage(context.Background(), nil, kv.NewMemoryStore(), zap.NewNop())
	return newRouter(t, s), s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPhonesCRUD(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodPost, "/api/phones", models.Phone{PhoneNumber: "0501", SerialNumber: "SN-1", Brand: "Apple"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	w = do(t, h, http.MethodPatch, "/api/phones/"+created.ID, map[string]any{"phone_color": "Blue"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/phones/by-serial/SN-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var phone models.Phone
	require.NoError(t, json.NewDecoder(w.Body).Decode(&phone))
	assert.Equal(t, "Blue", phone.Color)
	assert.Empty(t, w.Header().Get(handler.FallbackHeader))

	w = do(t, h, http.MethodGet, "/api/phones/search?q=appl", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []models.Phone
	require.NoError(t, json.NewDecoder(w.Body).Decode(&found))
	assert.Len(t, found, 1)

	w = do(t, h, http.MethodPatch, "/api/phones/missing", map[string]any{"brand": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/api/phones/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/phones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReplaceAndLookupErrors(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodPut, "/api/accessories", []models.Accessory{{ID: "a1", Name: "Cable"}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/accessories/search?q=CAB", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a1"`)

	w = do(t, h, http.MethodPost, "/api/accessories", "not-a-json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid body\n", w.Body.String())

	w = do(t, h, http.MethodGet, "/api/phones/by-number/000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/sales/none", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesRoutes(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodPost, "/api/sales", map[string]any{"total": 99.5, "customer": "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = do(t, h, http.MethodGet, "/api/sales/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sale map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sale))
	assert.Equal(t, created.ID, sale["id"])
	assert.Equal(t, "Omar", sale["customer"])
	assert.Contains(t, sale, "date_created")
}

func TestCatalogRoutes(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodPost, "/api/phone-types", map[string]string{"brand": "Nokia", "model": "3310"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, http.MethodPost, "/api/phone-types", map[string]string{"manufacturer": "Nokia", "model": "3310"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, h, http.MethodPost, "/api/phone-types", map[string]string{"model": "3310"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/phone-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types models.PhoneTypes
	require.NoError(t, json.NewDecoder(w.Body).Decode(&types))
	assert.Equal(t, []string{"3310"}, types["Nokia"])

	w = do(t, h, http.MethodDelete, "/api/phone-types/Samsung/Galaxy%20S24", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/api/phone-types/Samsung/Galaxy%20S24", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/accessory-categories", models.AccessoryCategory{Name: "stand", LocalizedName: "حامل"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, http.MethodDelete, "/api/accessory-categories/"+urlEscape("حامل"), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/accessory-categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []models.AccessoryCategory
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cats))
	assert.Len(t, cats, 7)
}

func TestReplaceCatalogRoutes(t *testing.T) {
	h, s := localRouter(t)
	ctx := context.Background()

	w := do(t, h, http.MethodPut, "/api/phone-types", models.PhoneTypes{"Nokia": {"3310", "105"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	types, err := s.PhoneTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhoneTypes{"Nokia": {"3310", "105"}}, types)

	w = do(t, h, http.MethodPut, "/api/accessory-categories", []models.AccessoryCategory{{Name: "sim", LocalizedName: "شريحة"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	cats, err := s.AccessoryCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.AccessoryCategory{{Name: "sim", LocalizedName: "شريحة"}}, cats)

	w = do(t, h, http.MethodPut, "/api/phone-types", "[1,2]")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func urlEscape(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func TestSessionRoutes(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/api/session", models.User{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPut, "/api/session", models.User{Username: "admin"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin"`)

	w = do(t, h, http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportImportStats(t *testing.T) {
	src, srcStore := localRouter(t)
	_, err := srcStore.AddPhone(context.Background(), models.Phone{PhoneNumber: "1"})
	require.NoError(t, err)

	w := do(t, src, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inventory-export.json")
	exported := w.Body.String()

	dst, _ := localRouter(t)
	w = do(t, dst, http.MethodPost, "/api/import", exported)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, dst, http.MethodPost, "/api/import", "{broken")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, dst, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Phones)
	assert.Equal(t, 12, stats.PhoneTypes)
	assert.False(t, stats.RemoteEnabled)
}

func TestRejectsNonJSONBody(t *testing.T) {
	h, _ := localRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/phones", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestLocalEventsNotImplemented(t *testing.T) {
	h, _ := localRouter(t)

	w := do(t, h, http.MethodGet, "/api/events/phones", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(t, h, http.MethodGet, "/api/events/users", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// remoteInventory overrides the reads of a remote-backed facade. Methods it
// does not override panic through the nil embedded interface.
type remoteInventory struct {
	handler.Inventory
	readErr error
	phones  []models.Phone
}

func (f *remoteInventory) Phones(context.Context) ([]models.Phone, error) {
	return f.phones, f.readErr
}

func (f *remoteInventory) OnPhonesChange(fn func([]models.Phone)) (func(), error) {
	fn(f.phones)
	return func() {}, nil
}

func TestFallbackHeader(t *testing.T) {
	inv := &remoteInventory{
		phones:  []models.Phone{{ID: "cached"}},
		readErr: fmt.Errorf("%w: %w", service.ErrFallback, errors.New("timeout")),
	}
	h := newRouter(t, inv)

	w := do(t, h, http.MethodGet, "/api/phones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(handler.FallbackHeader))
	assert.Contains(t, w.Body.String(), "cached")

	inv.readErr = errors.New("decode failed")
	w = do(t, h, http.MethodGet, "/api/phones", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEventsStream(t *testing.T) {
	inv := &remoteInventory{phones: []models.Phone{{ID: "p1", Brand: "Apple"}}}
	srv := httptest.NewServer(newRouter(t, inv))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/events/phones")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: phones\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	assert.Contains(t, line, `"p1"`)
}
