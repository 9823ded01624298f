// Package service implements the inventory storage facade. A Storage talks
// to the remote document store when it is reachable at construction time and
// to the local key-value store otherwise.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/models"
)

// Storage is the single entry point for inventory data.
type Storage struct {
	backend backend
	codec   *kv.Codec
	log     *zap.Logger
	now     func() time.Time

	remoteEnabled bool
}

// Option configures a Storage.
type Option func(*settings)

type settings struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDGenerator overrides the generator of local record ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) { s.newID = newID }
}

// NewStorage checks the remote store once and builds the facade around the
// selected backend. In local mode missing catalogs and collections are
// seeded; a seeding failure is logged and does not prevent construction.
func NewStorage(ctx context.Context, remote RemoteStore, local kv.Store, log *zap.Logger, opts ...Option) *Storage {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := settings{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec := kv.NewCodec(local, log)
	lb := newLocalBackend(codec, log, cfg.newID, cfg.now)
	s := &Storage{codec: codec, log: log, now: cfg.now}

	if remote != nil {
		if err := remote.Ping(ctx); err != nil {
			log.Warn("remote store unavailable, using local storage", zap.Error(err))
		} else {
			s.remoteEnabled = true
		}
	}

	if s.remoteEnabled {
		s.backend = newRemoteBackend(remote, lb, log, cfg.now)
		log.Info("storage initialised", zap.String("backend", "remote"))
		return s
	}

	if err := lb.seed(); err != nil {
		log.Error("failed to seed local storage", zap.Error(err))
	}
	s.backend = lb
	log.Info("storage initialised", zap.String("backend", "local"))
	return s
}

// RemoteEnabled reports the availability decision made at construction.
func (s *Storage) RemoteEnabled() bool {
	return s.remoteEnabled
}

// SetItem stores v as JSON under key in the local store.
func (s *Storage) SetItem(key string, v any) error {
	return s.codec.Set(key, v)
}

// GetItem returns the local value under key, or def when it is missing or
// unreadable.
func GetItem[T any](s *Storage, key string, def T) T {
	return kv.GetOr(s.codec, key, def)
}

// RemoveItem deletes key from the local store.
func (s *Storage) RemoveItem(key string) error {
	return s.codec.Remove(key)
}

// Phones returns every phone. A remote failure yields the local snapshot
// with an error wrapping ErrFallback.
func (s *Storage) Phones(ctx context.Context) ([]models.Phone, error) {
	return s.backend.phones().List(ctx)
}

// SetPhones overwrites the local phone list. It does nothing in remote mode.
func (s *Storage) SetPhones(ctx context.Context, phones []models.Phone) error {
	return s.backend.phones().Replace(ctx, phones)
}

// AddPhone stamps and stores p and returns the id it was stored under.
func (s *Storage) AddPhone(ctx context.Context, p models.Phone) (string, error) {
	return s.backend.phones().Add(ctx, p)
}

// UpdatePhone merges patch into the phone with id.
func (s *Storage) UpdatePhone(ctx context.Context, id string, patch models.Patch) error {
	return s.backend.phones().Update(ctx, id, patch)
}

// DeletePhone removes the phone with id. A missing id is not an error.
func (s *Storage) DeletePhone(ctx context.Context, id string) error {
	return s.backend.phones().Delete(ctx, id)
}

// PhoneByNumber returns the first phone with exactly this phone number.
func (s *Storage) PhoneByNumber(ctx context.Context, number string) (models.Phone, error) {
	return s.findPhone(ctx, func(p models.Phone) bool { return p.PhoneNumber == number }, "number "+number)
}

// PhoneBySerial returns the first phone with exactly this serial number.
func (s *Storage) PhoneBySerial(ctx context.Context, serial string) (models.Phone, error) {
	return s.findPhone(ctx, func(p models.Phone) bool { return p.SerialNumber == serial }, "serial "+serial)
}

func (s *Storage) findPhone(ctx context.Context, match func(models.Phone) bool, what string) (models.Phone, error) {
	phones, err := s.Phones(ctx)
	if !usable(err) {
		return models.Phone{}, err
	}
	for _, p := range phones {
		if match(p) {
			return p, err
		}
	}
	return models.Phone{}, fmt.Errorf("phone with %s: %w", what, ErrNotFound)
}

// Accessories returns every accessory, like Phones.
func (s *Storage) Accessories(ctx context.Context) ([]models.Accessory, error) {
	return s.backend.accessories().List(ctx)
}

// SetAccessories overwrites the local accessory list. It does nothing in
// remote mode.
func (s *Storage) SetAccessories(ctx context.Context, items []models.Accessory) error {
	return s.backend.accessories().Replace(ctx, items)
}

// AddAccessory stamps and stores a and returns its id.
func (s *Storage) AddAccessory(ctx context.Context, a models.Accessory) (string, error) {
	return s.backend.accessories().Add(ctx, a)
}

// UpdateAccessory merges patch into the accessory with id.
func (s *Storage) UpdateAccessory(ctx context.Context, id string, patch models.Patch) error {
	return s.backend.accessories().Update(ctx, id, patch)
}

// DeleteAccessory removes the accessory with id.
func (s *Storage) DeleteAccessory(ctx context.Context, id string) error {
	return s.backend.accessories().Delete(ctx, id)
}

// Sales returns every sale, like Phones.
func (s *Storage) Sales(ctx context.Context) ([]models.Sale, error) {
	return s.backend.sales().List(ctx)
}

// SetSales overwrites the local sale list. It does nothing in remote mode.
func (s *Storage) SetSales(ctx context.Context, sales []models.Sale) error {
	return s.backend.sales().Replace(ctx, sales)
}

// AddSale stamps and stores sale and returns its id.
func (s *Storage) AddSale(ctx context.Context, sale models.Sale) (string, error) {
	return s.backend.sales().Add(ctx, sale)
}

// UpdateSale merges patch into the sale with id. Sales accept any field.
func (s *Storage) UpdateSale(ctx context.Context, id string, patch models.Patch) error {
	return s.backend.sales().Update(ctx, id, patch)
}

// DeleteSale removes the sale with id.
func (s *Storage) DeleteSale(ctx context.Context, id string) error {
	return s.backend.sales().Delete(ctx, id)
}

// Sale returns one sale by id.
func (s *Storage) Sale(ctx context.Context, id string) (models.Sale, error) {
	return s.backend.sale(ctx, id)
}

// OnPhonesChange registers fn for phone list snapshots. The returned
// function cancels the registration. Local mode returns ErrWatchUnsupported.
func (s *Storage) OnPhonesChange(fn func([]models.Phone)) (func(), error) {
	return s.backend.onPhonesChange(fn)
}

// OnAccessoriesChange is OnPhonesChange for accessories.
func (s *Storage) OnAccessoriesChange(fn func([]models.Accessory)) (func(), error) {
	return s.backend.onAccessoriesChange(fn)
}

// OnSalesChange is OnPhonesChange for sales.
func (s *Storage) OnSalesChange(fn func([]models.Sale)) (func(), error) {
	return s.backend.onSalesChange(fn)
}
